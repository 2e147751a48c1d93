package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"MedalBoard/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeWriter / fakeReader 覆盖 handler 的错误映射与请求解析，不触达数据库
type fakeWriter struct {
	createID  uint64
	createErr error
	updateErr error
	deleteErr error
	lastInput *service.MedalInput
	lastPatch *service.MedalPatch
	lastID    uint64
}

func (f *fakeWriter) Create(_ context.Context, in *service.MedalInput) (uint64, error) {
	f.lastInput = in
	return f.createID, f.createErr
}

func (f *fakeWriter) Update(_ context.Context, id uint64, p *service.MedalPatch) error {
	f.lastID = id
	f.lastPatch = p
	return f.updateErr
}

func (f *fakeWriter) Delete(_ context.Context, id uint64) error {
	f.lastID = id
	return f.deleteErr
}

type fakeReader struct {
	medals    []*service.MedalItem
	quadro    []*service.QuadroEntry
	breakdown *service.CountryMedals
	err       error
}

func (f *fakeReader) ListMedals(context.Context) ([]*service.MedalItem, error) {
	return f.medals, f.err
}

func (f *fakeReader) RankedTable(context.Context) ([]*service.QuadroEntry, error) {
	return f.quadro, f.err
}

func (f *fakeReader) CountryBreakdown(context.Context, uint64) (*service.CountryMedals, error) {
	return f.breakdown, f.err
}

func setupRouter(writer medalWriter, reader medalReader) *gin.Engine {
	gin.SetMode(gin.TestMode)
	logger := logrus.New()
	h := newMedalHandlerWith(writer, reader, logger)
	r := gin.New()
	r.GET("/medalhas", h.ListMedals)
	r.GET("/medalhas/quadro", h.GetQuadro)
	r.GET("/medalhas/:id_pais", h.GetCountryMedals)
	r.POST("/medalhas", h.CreateMedal)
	r.PUT("/medalhas/:id_medalha", h.UpdateMedal)
	r.DELETE("/medalhas/:id_medalha", h.DeleteMedal)
	return r
}

func doRequest(r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestCreateMedal(t *testing.T) {
	writer := &fakeWriter{createID: 42}
	r := setupRouter(writer, &fakeReader{})

	body := `{"pais":"Brasil","modalidade":"surfe","genero":"masculino","atletas":["Italo Ferreira"],"medalha":"ouro"}`
	w := doRequest(r, http.MethodPost, "/medalhas", body)

	require.Equal(t, http.StatusCreated, w.Code)
	var resp map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "Medalha adicionada com sucesso!", resp["message"])
	assert.Equal(t, float64(42), resp["id"])
	require.NotNil(t, writer.lastInput)
	assert.Equal(t, []string{"Italo Ferreira"}, writer.lastInput.Athletes)
}

func TestCreateMedalMissingField(t *testing.T) {
	r := setupRouter(&fakeWriter{}, &fakeReader{})
	w := doRequest(r, http.MethodPost, "/medalhas", `{"pais":"Brasil"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCreateMedalValidationError(t *testing.T) {
	writer := &fakeWriter{createErr: fmt.Errorf("%w: medalha 必须为 ouro/prata/bronze", service.ErrValidation)}
	r := setupRouter(writer, &fakeReader{})
	body := `{"pais":"Brasil","modalidade":"surfe","genero":"masculino","atletas":["Italo Ferreira"],"medalha":"platina"}`
	w := doRequest(r, http.MethodPost, "/medalhas", body)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCreateMedalStorageFailure(t *testing.T) {
	writer := &fakeWriter{createErr: fmt.Errorf("保存奖牌记录失败: connection refused")}
	r := setupRouter(writer, &fakeReader{})
	body := `{"pais":"Brasil","modalidade":"surfe","genero":"masculino","atletas":["Italo Ferreira"],"medalha":"ouro"}`
	w := doRequest(r, http.MethodPost, "/medalhas", body)

	require.Equal(t, http.StatusInternalServerError, w.Code)
	// 存储层细节不回给客户端
	assert.NotContains(t, w.Body.String(), "connection refused")
}

func TestUpdateMedalPartialBody(t *testing.T) {
	writer := &fakeWriter{}
	r := setupRouter(writer, &fakeReader{})

	w := doRequest(r, http.MethodPut, "/medalhas/7", `{"medalha":"prata"}`)
	require.Equal(t, http.StatusOK, w.Code)

	assert.Equal(t, uint64(7), writer.lastID)
	require.NotNil(t, writer.lastPatch)
	require.NotNil(t, writer.lastPatch.Tier)
	assert.Equal(t, "prata", *writer.lastPatch.Tier)
	// 未提供的字段必须是 nil（保持原值），不能是零值覆盖
	assert.Nil(t, writer.lastPatch.Discipline)
	assert.Nil(t, writer.lastPatch.Gender)
	assert.Nil(t, writer.lastPatch.Athletes)
}

func TestUpdateMedalNotFound(t *testing.T) {
	writer := &fakeWriter{updateErr: service.ErrNotFound}
	r := setupRouter(writer, &fakeReader{})
	w := doRequest(r, http.MethodPut, "/medalhas/999", `{"medalha":"prata"}`)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestUpdateMedalBadID(t *testing.T) {
	r := setupRouter(&fakeWriter{}, &fakeReader{})
	w := doRequest(r, http.MethodPut, "/medalhas/abc", `{"medalha":"prata"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDeleteMedalNotFound(t *testing.T) {
	writer := &fakeWriter{deleteErr: service.ErrNotFound}
	r := setupRouter(writer, &fakeReader{})
	w := doRequest(r, http.MethodDelete, "/medalhas/999", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDeleteMedal(t *testing.T) {
	writer := &fakeWriter{}
	r := setupRouter(writer, &fakeReader{})
	w := doRequest(r, http.MethodDelete, "/medalhas/3", "")

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, uint64(3), writer.lastID)
	assert.Contains(t, w.Body.String(), "Medalha deletada com sucesso!")
}

func TestGetQuadro(t *testing.T) {
	reader := &fakeReader{quadro: []*service.QuadroEntry{
		{Position: 1, Country: "brasil", Gold: 3, Silver: 2, Bronze: 1, Total: 6},
	}}
	r := setupRouter(&fakeWriter{}, reader)
	w := doRequest(r, http.MethodGet, "/medalhas/quadro", "")

	require.Equal(t, http.StatusOK, w.Code)
	var entries []map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &entries))
	require.Len(t, entries, 1)
	assert.Equal(t, float64(1), entries[0]["posicao"])
	assert.Equal(t, "brasil", entries[0]["pais"])
	assert.Equal(t, float64(6), entries[0]["total"])
}

func TestGetCountryMedalsNotFound(t *testing.T) {
	reader := &fakeReader{err: service.ErrNotFound}
	r := setupRouter(&fakeWriter{}, reader)
	w := doRequest(r, http.MethodGet, "/medalhas/999", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetCountryMedals(t *testing.T) {
	reader := &fakeReader{breakdown: &service.CountryMedals{
		Country: "brasil",
		Gold:    []string{"feminino ginástica artística"},
		Silver:  []string{},
		Bronze:  []string{},
	}}
	r := setupRouter(&fakeWriter{}, reader)
	w := doRequest(r, http.MethodGet, "/medalhas/1", "")

	require.Equal(t, http.StatusOK, w.Code)
	var resp map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "brasil", resp["pais"])
	// 空分组序列化为 []，不能是 null
	assert.Equal(t, []any{}, resp["prata"])
}

func TestListMedals(t *testing.T) {
	reader := &fakeReader{medals: []*service.MedalItem{
		{ID: 1, Discipline: "surfe", Gender: "masculino", Country: "brasil", Athletes: []string{"Italo Ferreira"}, Tier: "ouro"},
	}}
	r := setupRouter(&fakeWriter{}, reader)
	w := doRequest(r, http.MethodGet, "/medalhas", "")

	require.Equal(t, http.StatusOK, w.Code)
	var items []map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &items))
	require.Len(t, items, 1)
	assert.Equal(t, "surfe", items[0]["modalidade"])
	assert.Equal(t, []any{"Italo Ferreira"}, items[0]["atletas"])
}
