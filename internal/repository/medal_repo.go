package repository

import (
	"context"

	"MedalBoard/internal/model"

	"gorm.io/gorm"
)

// MedalIDSequence 奖牌ID专用序列名。ID 与行数无关，单调递增、永不复用
const MedalIDSequence = "medalhas_id_seq_gen"

// MedalRow 扁平奖牌列表行（已带国家名），只暴露给 service 的轻量视图结构
type MedalRow struct {
	ID         uint64          `gorm:"column:id"`
	Discipline string          `gorm:"column:modalidade"`
	Gender     string          `gorm:"column:genero"`
	Country    string          `gorm:"column:pais"`
	Athletes   string          `gorm:"column:atletas"`
	Tier       model.MedalTier `gorm:"column:medalha"`
}

// RankedRow 奖牌榜聚合行（每国各等级计数），排序已在 SQL 中完成
type RankedRow struct {
	CountryID uint64 `gorm:"column:country_id"`
	Country   string `gorm:"column:pais"`
	Gold      int    `gorm:"column:ouro"`
	Silver    int    `gorm:"column:prata"`
	Bronze    int    `gorm:"column:bronze"`
	Total     int    `gorm:"column:total"`
}

// MedalRepository 奖牌仓储接口
type MedalRepository interface {
	// NextID 从专用序列取下一个奖牌ID（事务内调用；序列递增不随回滚撤销，ID 永不复用）
	NextID(ctx context.Context) (uint64, error)
	// Insert 插入一条奖牌记录
	Insert(ctx context.Context, m *model.Medal) error
	// GetByID 按ID获取奖牌记录
	GetByID(ctx context.Context, id uint64) (*model.Medal, error)
	// Save 整行保存（update 路径，记录已由 GetByID 取出并改好）
	Save(ctx context.Context, m *model.Medal) error
	// Delete 按ID删除奖牌记录
	Delete(ctx context.Context, id uint64) error
	// ListAll 扁平奖牌列表（join 国家名）
	ListAll(ctx context.Context) ([]*MedalRow, error)
	// ListByCountry 某国家的全部奖牌记录
	ListByCountry(ctx context.Context, countryID uint64) ([]*model.Medal, error)
	// RankedRows 奖牌榜聚合：每国各等级计数，金>银>铜降序，全平按国家名升序保证确定性
	RankedRows(ctx context.Context) ([]*RankedRow, error)
}

type medalRepository struct {
	db *gorm.DB
}

// NewMedalRepository 创建 MedalRepository。传入事务句柄时所有操作参与该事务
func NewMedalRepository(db *gorm.DB) MedalRepository {
	return &medalRepository{db: db}
}

func (r *medalRepository) NextID(ctx context.Context) (uint64, error) {
	var id uint64
	if err := r.db.WithContext(ctx).
		Raw("SELECT nextval(?)", MedalIDSequence).
		Scan(&id).Error; err != nil {
		return 0, err
	}
	return id, nil
}

func (r *medalRepository) Insert(ctx context.Context, m *model.Medal) error {
	return r.db.WithContext(ctx).Create(m).Error
}

func (r *medalRepository) GetByID(ctx context.Context, id uint64) (*model.Medal, error) {
	var m model.Medal
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&m).Error; err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *medalRepository) Save(ctx context.Context, m *model.Medal) error {
	return r.db.WithContext(ctx).Save(m).Error
}

func (r *medalRepository) Delete(ctx context.Context, id uint64) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.Medal{}).Error
}

func (r *medalRepository) ListAll(ctx context.Context) ([]*MedalRow, error) {
	var rows []*MedalRow
	if err := r.db.WithContext(ctx).Raw(`
		SELECT m.id, m.modalidade, m.genero, p.nome AS pais, m.atletas, m.medalha
		FROM medalhas m
		JOIN paises p ON p.id = m.pais_id
		ORDER BY m.id ASC
	`).Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *medalRepository) ListByCountry(ctx context.Context, countryID uint64) ([]*model.Medal, error) {
	var medals []*model.Medal
	if err := r.db.WithContext(ctx).
		Where("pais_id = ?", countryID).
		Order("id ASC").
		Find(&medals).Error; err != nil {
		return nil, err
	}
	return medals, nil
}

// RankedRows 每国聚合计数。LEFT JOIN 保证零奖牌国家也出现在榜上（计数全零），
// total 用 COUNT(m.id) 而不是 COUNT(*)，否则零奖牌国家会被 join 出的空行记成 1
func (r *medalRepository) RankedRows(ctx context.Context) ([]*RankedRow, error) {
	var rows []*RankedRow
	if err := r.db.WithContext(ctx).Raw(`
		SELECT p.id AS country_id, p.nome AS pais,
		       COUNT(CASE WHEN m.medalha = 'ouro' THEN 1 END)   AS ouro,
		       COUNT(CASE WHEN m.medalha = 'prata' THEN 1 END)  AS prata,
		       COUNT(CASE WHEN m.medalha = 'bronze' THEN 1 END) AS bronze,
		       COUNT(m.id) AS total
		FROM paises p
		LEFT JOIN medalhas m ON p.id = m.pais_id
		GROUP BY p.id, p.nome
		ORDER BY ouro DESC, prata DESC, bronze DESC, p.nome ASC
	`).Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}
