package model

import "strings"

// MedalTier 奖牌等级枚举（闭合集合：ouro/prata/bronze，其他值视为数据错误）
type MedalTier string

const (
	TierGold   MedalTier = "ouro"
	TierSilver MedalTier = "prata"
	TierBronze MedalTier = "bronze"
)

// Valid 校验奖牌等级是否属于闭合集合
func (t MedalTier) Valid() bool {
	switch t {
	case TierGold, TierSilver, TierBronze:
		return true
	}
	return false
}

// AthleteSeparator 运动员列表的存储分隔符。
// 存储格式必须能无损往返 split/join，因此运动员名字本身不允许包含该分隔符
const AthleteSeparator = ", "

// Country 国家表。名字入库前统一小写，唯一约束保证同名国家只有一行
type Country struct {
	ID   uint64 `gorm:"column:id;primaryKey;autoIncrement;comment:自增主键ID"`
	Name string `gorm:"column:nome;type:varchar(128);uniqueIndex:uk_paises_nome;not null;comment:国家名（统一小写）"`
}

// Medal 奖牌记录表。ID 由专用序列生成（不是行自增），pais_id 创建后不可变更
type Medal struct {
	ID         uint64    `gorm:"column:id;primaryKey;comment:奖牌ID（专用序列生成，永不复用）"`
	Discipline string    `gorm:"column:modalidade;type:varchar(128);not null;comment:比赛项目"`
	Gender     string    `gorm:"column:genero;type:varchar(32);not null;comment:项目性别分组"`
	CountryID  uint64    `gorm:"column:pais_id;type:bigint;not null;index;comment:关联国家ID（创建后不可变）"`
	Athletes   string    `gorm:"column:atletas;type:text;not null;comment:运动员列表（', ' 连接存储）"`
	Tier       MedalTier `gorm:"column:medalha;type:varchar(16);not null;comment:奖牌等级 ouro/prata/bronze"`
}

func (Country) TableName() string { return "paises" }
func (Medal) TableName() string   { return "medalhas" }

// JoinAthletes 运动员列表连接为存储格式
func JoinAthletes(athletes []string) string {
	return strings.Join(athletes, AthleteSeparator)
}

// SplitAthletes 存储格式还原为运动员列表
func SplitAthletes(stored string) []string {
	if stored == "" {
		return []string{}
	}
	return strings.Split(stored, AthleteSeparator)
}
