package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"MedalBoard/internal/cache"
	"MedalBoard/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// medalWriter 写路径依赖（便于 handler 单测注入假实现）
type medalWriter interface {
	Create(ctx context.Context, in *service.MedalInput) (uint64, error)
	Update(ctx context.Context, id uint64, p *service.MedalPatch) error
	Delete(ctx context.Context, id uint64) error
}

// medalReader 读路径依赖
type medalReader interface {
	ListMedals(ctx context.Context) ([]*service.MedalItem, error)
	RankedTable(ctx context.Context) ([]*service.QuadroEntry, error)
	CountryBreakdown(ctx context.Context, countryID uint64) (*service.CountryMedals, error)
}

// MedalHandler 奖牌接口：三个查询 + 三个写操作
type MedalHandler struct {
	writer medalWriter
	reader medalReader
	logger *logrus.Logger
}

// NewMedalHandler 创建 MedalHandler。quadroCache 可为 nil（未配置 redis）
func NewMedalHandler(db *gorm.DB, logger *logrus.Logger, quadroCache *cache.QuadroCache) *MedalHandler {
	return &MedalHandler{
		writer: service.NewMedalService(db, logger, quadroCache),
		reader: service.NewRankingService(db, logger, quadroCache),
		logger: logger,
	}
}

// newMedalHandlerWith 注入依赖的构造（测试用）
func newMedalHandlerWith(writer medalWriter, reader medalReader, logger *logrus.Logger) *MedalHandler {
	return &MedalHandler{writer: writer, reader: reader, logger: logger}
}

// medalRequest 创建奖牌请求。客户端传的 id 忽略，ID 只由序列生成
type medalRequest struct {
	Country    string   `json:"pais" binding:"required"`
	Discipline string   `json:"modalidade" binding:"required"`
	Gender     string   `json:"genero" binding:"required"`
	Athletes   []string `json:"atletas" binding:"required"`
	Tier       string   `json:"medalha" binding:"required"`
}

// medalPatchRequest 部分更新请求：缺省字段保持原值。pais 即使提交也不会变更
type medalPatchRequest struct {
	Discipline *string   `json:"modalidade"`
	Gender     *string   `json:"genero"`
	Athletes   *[]string `json:"atletas"`
	Tier       *string   `json:"medalha"`
}

// ListMedals 扁平奖牌列表
// GET /medalhas
func (h *MedalHandler) ListMedals(c *gin.Context) {
	result, err := h.reader.ListMedals(c.Request.Context())
	if err != nil {
		h.serverError(c, err, "ListMedals failed")
		return
	}
	c.JSON(http.StatusOK, result)
}

// GetQuadro 奖牌榜
// GET /medalhas/quadro
func (h *MedalHandler) GetQuadro(c *gin.Context) {
	result, err := h.reader.RankedTable(c.Request.Context())
	if err != nil {
		h.serverError(c, err, "GetQuadro failed")
		return
	}
	c.JSON(http.StatusOK, result)
}

// GetCountryMedals 单个国家的奖牌明细
// GET /medalhas/:id_pais
func (h *MedalHandler) GetCountryMedals(c *gin.Context) {
	countryID, ok := h.parseID(c, c.Param("id_pais"))
	if !ok {
		return
	}
	result, err := h.reader.CountryBreakdown(c.Request.Context(), countryID)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "País não encontrado"})
			return
		}
		h.serverError(c, err, "GetCountryMedals failed")
		return
	}
	c.JSON(http.StatusOK, result)
}

// CreateMedal 新建奖牌记录
// POST /medalhas
func (h *MedalHandler) CreateMedal(c *gin.Context) {
	var req medalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	id, err := h.writer.Create(c.Request.Context(), &service.MedalInput{
		Country:    req.Country,
		Discipline: req.Discipline,
		Gender:     req.Gender,
		Athletes:   req.Athletes,
		Tier:       req.Tier,
	})
	if err != nil {
		if errors.Is(err, service.ErrValidation) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		h.serverError(c, err, "CreateMedal failed")
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Medalha adicionada com sucesso!", "id": id})
}

// UpdateMedal 部分更新奖牌记录
// PUT /medalhas/:id_medalha
func (h *MedalHandler) UpdateMedal(c *gin.Context) {
	medalID, ok := h.parseID(c, c.Param("id_medalha"))
	if !ok {
		return
	}
	var req medalPatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	err := h.writer.Update(c.Request.Context(), medalID, &service.MedalPatch{
		Discipline: req.Discipline,
		Gender:     req.Gender,
		Athletes:   req.Athletes,
		Tier:       req.Tier,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Medalha não encontrada"})
		case errors.Is(err, service.ErrValidation):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			h.serverError(c, err, "UpdateMedal failed")
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Medalha atualizada com sucesso!"})
}

// DeleteMedal 删除奖牌记录
// DELETE /medalhas/:id_medalha
func (h *MedalHandler) DeleteMedal(c *gin.Context) {
	medalID, ok := h.parseID(c, c.Param("id_medalha"))
	if !ok {
		return
	}
	if err := h.writer.Delete(c.Request.Context(), medalID); err != nil {
		if errors.Is(err, service.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Medalha não encontrada"})
			return
		}
		h.serverError(c, err, "DeleteMedal failed")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Medalha deletada com sucesso!"})
}

// parseID 路径参数解析为数字ID，非法时响应 400
func (h *MedalHandler) parseID(c *gin.Context, raw string) (uint64, bool) {
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "id 必须为数字"})
		return 0, false
	}
	return id, true
}

// serverError 存储层错误：细节进日志，客户端只给通用消息
func (h *MedalHandler) serverError(c *gin.Context, err error, msg string) {
	h.logger.WithError(err).WithField("request_id", c.GetString(RequestIDKey)).Error(msg)
	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
}
