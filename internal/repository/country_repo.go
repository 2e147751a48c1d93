package repository

import (
	"context"
	"strings"

	"MedalBoard/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CountryRepository 国家仓储：名字归一化后的解析或创建
type CountryRepository interface {
	// ResolveOrCreate 解析国家名（统一小写）为国家ID，不存在则创建。
	// 必须是引擎级的单次 upsert，不能先查后插，否则并发首次写入会产生重复行
	ResolveOrCreate(ctx context.Context, name string) (uint64, error)
	// GetByID 按ID获取国家（零奖牌国家的明细查询需要从这里拿展示名）
	GetByID(ctx context.Context, id uint64) (*model.Country, error)
}

type countryRepository struct {
	db *gorm.DB
}

// NewCountryRepository 创建 CountryRepository。传入事务句柄时所有操作参与该事务
func NewCountryRepository(db *gorm.DB) CountryRepository {
	return &countryRepository{db: db}
}

// ResolveOrCreate 解析或创建国家：INSERT ... ON CONFLICT (nome) DO NOTHING，
// 冲突（已存在）时 ID 不会回填，再按名字补查一次
func (r *countryRepository) ResolveOrCreate(ctx context.Context, name string) (uint64, error) {
	normalized := strings.ToLower(strings.TrimSpace(name))
	c := &model.Country{Name: normalized}
	if err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "nome"}},
		DoNothing: true,
	}).Create(c).Error; err != nil {
		return 0, err
	}
	if c.ID == 0 {
		if err := r.db.WithContext(ctx).Model(&model.Country{}).
			Where("nome = ?", normalized).
			Select("id").First(c).Error; err != nil {
			return 0, err
		}
	}
	return c.ID, nil
}

// GetByID 按ID获取国家
func (r *countryRepository) GetByID(ctx context.Context, id uint64) (*model.Country, error) {
	var c model.Country
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&c).Error; err != nil {
		return nil, err
	}
	return &c, nil
}
