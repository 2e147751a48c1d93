package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"MedalBoard/internal/cache"
	"MedalBoard/internal/metrics"
	"MedalBoard/internal/model"
	"MedalBoard/internal/repository"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// MedalItem 扁平奖牌列表的响应条目
type MedalItem struct {
	ID         uint64   `json:"id"`
	Discipline string   `json:"modalidade"`
	Gender     string   `json:"genero"`
	Country    string   `json:"pais"`
	Athletes   []string `json:"atletas"`
	Tier       string   `json:"medalha"`
}

// QuadroEntry 奖牌榜条目。posicao 为排序后的 1 起始名次，三项计数全平时名次依然连续（不并列）
type QuadroEntry struct {
	Position int    `json:"posicao"`
	Country  string `json:"pais"`
	Gold     int    `json:"ouro"`
	Silver   int    `json:"prata"`
	Bronze   int    `json:"bronze"`
	Total    int    `json:"total"`
}

// CountryMedals 单个国家的奖牌明细，按等级分组，每项渲染为 "{genero} {modalidade}"
type CountryMedals struct {
	Country string   `json:"pais"`
	Gold    []string `json:"ouro"`
	Silver  []string `json:"prata"`
	Bronze  []string `json:"bronze"`
}

// RankingService 只读投影：扁平列表、奖牌榜、单国明细。读路径不开事务
type RankingService struct {
	medalRepo   repository.MedalRepository
	countryRepo repository.CountryRepository
	logger      *logrus.Logger
	quadroCache *cache.QuadroCache // 可为 nil（未配置 redis）
}

// NewRankingService 创建 RankingService。quadroCache 可为 nil
func NewRankingService(db *gorm.DB, logger *logrus.Logger, quadroCache *cache.QuadroCache) *RankingService {
	return &RankingService{
		medalRepo:   repository.NewMedalRepository(db),
		countryRepo: repository.NewCountryRepository(db),
		logger:      logger,
		quadroCache: quadroCache,
	}
}

// ListMedals 扁平奖牌列表，运动员字段从存储格式还原为数组
func (s *RankingService) ListMedals(ctx context.Context) ([]*MedalItem, error) {
	rows, err := s.medalRepo.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("查询奖牌列表失败: %w", err)
	}
	items := make([]*MedalItem, 0, len(rows))
	for _, row := range rows {
		items = append(items, &MedalItem{
			ID:         row.ID,
			Discipline: row.Discipline,
			Gender:     row.Gender,
			Country:    row.Country,
			Athletes:   model.SplitAthletes(row.Athletes),
			Tier:       string(row.Tier),
		})
	}
	return items, nil
}

// RankedTable 奖牌榜。配置了 redis 时先读缓存，未命中回源数据库并回填
func (s *RankingService) RankedTable(ctx context.Context) ([]*QuadroEntry, error) {
	if s.quadroCache != nil {
		payload, err := s.quadroCache.Get(ctx)
		if err != nil {
			s.logger.WithError(err).Warn("奖牌榜缓存读取失败，回源数据库")
		} else if payload != nil {
			var cached []*QuadroEntry
			if err := json.Unmarshal(payload, &cached); err != nil {
				s.logger.WithError(err).Warn("奖牌榜缓存内容损坏，回源数据库")
			} else {
				metrics.QuadroCacheHits.Inc()
				return cached, nil
			}
		}
	}
	metrics.QuadroCacheMisses.Inc()

	rows, err := s.medalRepo.RankedRows(ctx)
	if err != nil {
		return nil, fmt.Errorf("查询奖牌榜失败: %w", err)
	}
	entries := BuildQuadro(rows)

	if s.quadroCache != nil {
		if payload, err := json.Marshal(entries); err == nil {
			if err := s.quadroCache.Set(ctx, payload); err != nil {
				s.logger.WithError(err).Warn("奖牌榜缓存写入失败")
			}
		}
	}
	return entries, nil
}

// BuildQuadro 已排序的聚合行折叠成榜单：名次为 1 起始枚举
func BuildQuadro(rows []*repository.RankedRow) []*QuadroEntry {
	entries := make([]*QuadroEntry, 0, len(rows))
	for i, row := range rows {
		entries = append(entries, &QuadroEntry{
			Position: i + 1,
			Country:  row.Country,
			Gold:     row.Gold,
			Silver:   row.Silver,
			Bronze:   row.Bronze,
			Total:    row.Total,
		})
	}
	return entries
}

// CountryBreakdown 单个国家的奖牌明细。国家展示名从国家表取（零奖牌国家也能返回，
// 三个分组为空数组）；国家不存在报 ErrNotFound
func (s *RankingService) CountryBreakdown(ctx context.Context, countryID uint64) (*CountryMedals, error) {
	country, err := s.countryRepo.GetByID(ctx, countryID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("查询国家失败 id=%d: %w", countryID, err)
	}
	medals, err := s.medalRepo.ListByCountry(ctx, countryID)
	if err != nil {
		return nil, fmt.Errorf("查询国家奖牌失败 id=%d: %w", countryID, err)
	}
	return GroupBreakdown(country.Name, medals), nil
}

// GroupBreakdown 奖牌记录按等级分组，渲染为 "{genero} {modalidade}" 展示串
func GroupBreakdown(countryName string, medals []*model.Medal) *CountryMedals {
	out := &CountryMedals{
		Country: countryName,
		Gold:    []string{},
		Silver:  []string{},
		Bronze:  []string{},
	}
	for _, m := range medals {
		display := fmt.Sprintf("%s %s", m.Gender, m.Discipline)
		switch m.Tier {
		case model.TierGold:
			out.Gold = append(out.Gold, display)
		case model.TierSilver:
			out.Silver = append(out.Silver, display)
		case model.TierBronze:
			out.Bronze = append(out.Bronze, display)
		}
	}
	return out
}
