package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"MedalBoard/internal/cache"
	"MedalBoard/internal/metrics"
	"MedalBoard/internal/model"
	"MedalBoard/internal/repository"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

var (
	// ErrNotFound 目标奖牌记录不存在（update/delete 的客户端可见错误，不是服务端故障）
	ErrNotFound = errors.New("奖牌记录不存在")
	// ErrValidation 入参校验失败，在开启任何事务之前返回
	ErrValidation = errors.New("参数校验失败")
)

// MedalInput 创建奖牌的入参。客户端传的 id 一律忽略，ID 只由序列生成
type MedalInput struct {
	Country    string   // 国家名，入库前统一小写
	Discipline string   // 比赛项目
	Gender     string   // 项目性别分组
	Athletes   []string // 运动员列表
	Tier       string   // 奖牌等级 ouro/prata/bronze
}

// MedalPatch 部分更新。nil 表示保持原值；国家不在可更新范围内（创建后不可变更）
type MedalPatch struct {
	Discipline *string
	Gender     *string
	Athletes   *[]string
	Tier       *string
}

// ValidateInput 创建入参校验：必填字段、闭合的奖牌等级、运动员列表非空且
// 名字不含存储分隔符（否则 split/join 无法无损往返）
func ValidateInput(in *MedalInput) error {
	if in == nil {
		return fmt.Errorf("%w: 请求体为空", ErrValidation)
	}
	if strings.TrimSpace(in.Country) == "" {
		return fmt.Errorf("%w: pais 不能为空", ErrValidation)
	}
	if strings.TrimSpace(in.Discipline) == "" {
		return fmt.Errorf("%w: modalidade 不能为空", ErrValidation)
	}
	if strings.TrimSpace(in.Gender) == "" {
		return fmt.Errorf("%w: genero 不能为空", ErrValidation)
	}
	if !model.MedalTier(in.Tier).Valid() {
		return fmt.Errorf("%w: medalha 必须为 ouro/prata/bronze", ErrValidation)
	}
	return validateAthletes(in.Athletes)
}

// ValidatePatch 部分更新入参校验，只校验本次提供的字段
func ValidatePatch(p *MedalPatch) error {
	if p == nil {
		return fmt.Errorf("%w: 请求体为空", ErrValidation)
	}
	if p.Tier != nil && !model.MedalTier(*p.Tier).Valid() {
		return fmt.Errorf("%w: medalha 必须为 ouro/prata/bronze", ErrValidation)
	}
	if p.Athletes != nil {
		return validateAthletes(*p.Athletes)
	}
	return nil
}

func validateAthletes(athletes []string) error {
	if len(athletes) == 0 {
		return fmt.Errorf("%w: atletas 不能为空", ErrValidation)
	}
	for _, a := range athletes {
		if strings.TrimSpace(a) == "" {
			return fmt.Errorf("%w: 运动员名字不能为空", ErrValidation)
		}
		if strings.Contains(a, model.AthleteSeparator) {
			return fmt.Errorf("%w: 运动员名字不能包含分隔符 %q", ErrValidation, model.AthleteSeparator)
		}
	}
	return nil
}

// ApplyPatch 把部分更新应用到已取出的记录上：提供的字段覆盖，缺省字段保持原值。
// pais_id 无论客户端提交什么都不会改动
func ApplyPatch(m *model.Medal, p *MedalPatch) {
	if p.Discipline != nil {
		m.Discipline = *p.Discipline
	}
	if p.Gender != nil {
		m.Gender = *p.Gender
	}
	if p.Athletes != nil {
		m.Athletes = model.JoinAthletes(*p.Athletes)
	}
	if p.Tier != nil {
		m.Tier = model.MedalTier(*p.Tier)
	}
}

// MedalService 奖牌写路径：create/update/delete，每个写操作独占一个数据库事务
type MedalService struct {
	db          *gorm.DB
	logger      *logrus.Logger
	quadroCache *cache.QuadroCache // 可为 nil（未配置 redis）
}

// NewMedalService 创建 MedalService。quadroCache 可为 nil
func NewMedalService(db *gorm.DB, logger *logrus.Logger, quadroCache *cache.QuadroCache) *MedalService {
	return &MedalService{
		db:          db,
		logger:      logger,
		quadroCache: quadroCache,
	}
}

// Create 新建奖牌记录：
// 1. 从专用序列取奖牌ID
// 2. 解析或创建国家（引擎级 upsert，并发首次写入安全）
// 3. 运动员列表连接为存储格式后落库
// 全程一个事务，任一步失败整体回滚；步骤2已创建的国家行幂等可复用，不单独撤销
func (s *MedalService) Create(ctx context.Context, in *MedalInput) (uint64, error) {
	if err := ValidateInput(in); err != nil {
		metrics.MedalWrites.WithLabelValues("create", "invalid").Inc()
		return 0, err
	}

	var medalID uint64
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		medals := repository.NewMedalRepository(tx)
		countries := repository.NewCountryRepository(tx)

		// 1. 序列取ID（序列递增不随回滚撤销，ID 永不复用）
		id, err := medals.NextID(ctx)
		if err != nil {
			return fmt.Errorf("获取奖牌ID失败: %w", err)
		}

		// 2. 解析或创建国家
		countryID, err := countries.ResolveOrCreate(ctx, in.Country)
		if err != nil {
			return fmt.Errorf("解析国家失败 pais=%s: %w", in.Country, err)
		}

		// 3. 落库
		m := &model.Medal{
			ID:         id,
			Discipline: in.Discipline,
			Gender:     in.Gender,
			CountryID:  countryID,
			Athletes:   model.JoinAthletes(in.Athletes),
			Tier:       model.MedalTier(in.Tier),
		}
		if err := medals.Insert(ctx, m); err != nil {
			return fmt.Errorf("保存奖牌记录失败: %w", err)
		}
		medalID = id
		return nil
	})
	if err != nil {
		metrics.MedalWrites.WithLabelValues("create", "error").Inc()
		return 0, err
	}

	metrics.MedalWrites.WithLabelValues("create", "ok").Inc()
	s.invalidateQuadro(ctx)
	s.logger.WithFields(logrus.Fields{
		"medal_id": medalID,
		"pais":     strings.ToLower(strings.TrimSpace(in.Country)),
		"medalha":  in.Tier,
	}).Info("奖牌记录已创建")
	return medalID, nil
}

// Update 部分更新：先按ID取出（不存在报 ErrNotFound，不产生任何写入），
// 再覆盖本次提供的字段并整行保存，同一个事务内完成
func (s *MedalService) Update(ctx context.Context, id uint64, p *MedalPatch) error {
	if err := ValidatePatch(p); err != nil {
		metrics.MedalWrites.WithLabelValues("update", "invalid").Inc()
		return err
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		medals := repository.NewMedalRepository(tx)
		m, err := medals.GetByID(ctx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return fmt.Errorf("查询奖牌记录失败 id=%d: %w", id, err)
		}
		ApplyPatch(m, p)
		if err := medals.Save(ctx, m); err != nil {
			return fmt.Errorf("更新奖牌记录失败 id=%d: %w", id, err)
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			metrics.MedalWrites.WithLabelValues("update", "not_found").Inc()
		} else {
			metrics.MedalWrites.WithLabelValues("update", "error").Inc()
		}
		return err
	}

	metrics.MedalWrites.WithLabelValues("update", "ok").Inc()
	s.invalidateQuadro(ctx)
	s.logger.WithField("medal_id", id).Info("奖牌记录已更新")
	return nil
}

// Delete 删除奖牌记录：不存在报 ErrNotFound（不允许静默成功）
func (s *MedalService) Delete(ctx context.Context, id uint64) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		medals := repository.NewMedalRepository(tx)
		if _, err := medals.GetByID(ctx, id); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return fmt.Errorf("查询奖牌记录失败 id=%d: %w", id, err)
		}
		if err := medals.Delete(ctx, id); err != nil {
			return fmt.Errorf("删除奖牌记录失败 id=%d: %w", id, err)
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			metrics.MedalWrites.WithLabelValues("delete", "not_found").Inc()
		} else {
			metrics.MedalWrites.WithLabelValues("delete", "error").Inc()
		}
		return err
	}

	metrics.MedalWrites.WithLabelValues("delete", "ok").Inc()
	s.invalidateQuadro(ctx)
	s.logger.WithField("medal_id", id).Info("奖牌记录已删除")
	return nil
}

// invalidateQuadro 写操作提交后失效奖牌榜缓存。失败只告警，缓存带 TTL 兜底
func (s *MedalService) invalidateQuadro(ctx context.Context) {
	if s.quadroCache == nil {
		return
	}
	if err := s.quadroCache.Invalidate(ctx); err != nil {
		s.logger.WithError(err).Warn("奖牌榜缓存失效失败，等待 TTL 过期")
	}
}
