package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"testing"
	"time"

	"sysmanager/internal/bon"
	"sysmanager/internal/config"
	"sysmanager/internal/dto"
	"sysmanager/internal/model"
	"sysmanager/internal/repository"
	"sysmanager/internal/router"
	"sysmanager/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// ── Stubs ─────────────────────────────────────────────────────────────────────

type stubProduse struct{ produse map[int]*model.Produs }

var _ repository.ProdusRepository = (*stubProduse)(nil)

func (s *stubProduse) FindByID(_ context.Context, id int) (*model.Produs, error) {
	p, ok := s.produse[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return p, nil
}

func (s *stubProduse) FindProdus(id int) (*model.Produs, error) {
	return s.FindByID(context.Background(), id)
}

func (s *stubProduse) Search(_ context.Context, q string, limit int) ([]model.Produs, error) {
	var out []model.Produs
	for _, p := range s.produse {
		if strings.Contains(strings.ToLower(p.Denumire), strings.ToLower(q)) {
			out = append(out, *p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Denumire < out[j].Denumire })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *stubProduse) DB() *gorm.DB { return nil }

type memBonRepo struct {
	bonuri map[int]*model.BonAsteptare
	seq    int
}

var _ repository.BonAsteptareRepository = (*memBonRepo)(nil)

func (r *memBonRepo) Save(_ context.Context, b *model.BonAsteptare) (int, error) {
	r.seq++
	cp := *b
	cp.ID = r.seq
	r.bonuri[cp.ID] = &cp
	return cp.ID, nil
}

func (r *memBonRepo) ListPending(context.Context) ([]model.BonAsteptare, error) {
	out := []model.BonAsteptare{}
	for _, b := range r.bonuri {
		if b.Status == model.StatusAsteptare {
			h := *b
			h.Detalii = nil
			out = append(out, h)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (r *memBonRepo) LoadFull(_ context.Context, id int) (*model.BonAsteptare, error) {
	b, ok := r.bonuri[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *b
	return &cp, nil
}

func (r *memBonRepo) Delete(_ context.Context, id int) error {
	if _, ok := r.bonuri[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.bonuri, id)
	return nil
}

func (r *memBonRepo) MarkClosed(_ context.Context, id int) error {
	b, ok := r.bonuri[id]
	if !ok {
		return repository.ErrNotFound
	}
	b.Status = model.StatusInchis
	return nil
}

// ── Harness ───────────────────────────────────────────────────────────────────

type testEnv struct {
	engine *gin.Engine
	repo   *memBonRepo
}

func setup(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cod := "99"
	produse := &stubProduse{produse: map[int]*model.Produs{
		1:  {ID: 1, Denumire: "Paine", PretBrut: decimal.RequireFromString("3.00"), UnitateMasura: "buc"},
		2:  {ID: 2, Denumire: "Apa 2L", PretBrut: decimal.RequireFromString("2.00"), CodSGR: &cod, UnitateMasura: "buc"},
		99: {ID: 99, Denumire: "Garantie SGR", PretBrut: decimal.RequireFromString("0.50"), UnitateMasura: "buc"},
	}}
	repo := &memBonRepo{bonuri: make(map[int]*model.BonAsteptare)}
	smCfg := &model.SmConfig{ID: 1, EnabledSGR: 1}

	svc := service.NewBonuriAsteptareService(repo, produse, nil, service.Defaults{IDUtilizator: 1, IDGestiune: 1},
		func() time.Time { return time.Date(2024, 1, 5, 10, 30, 0, 0, time.UTC) })
	sesiuni := service.NewSessionRegistry(func() (*bon.Manager, error) { return bon.NewManager(produse, smCfg) })

	cfg := &config.Config{Env: "test", RateLimitPerMinute: 0}
	r := router.New(cfg, router.Deps{Sesiuni: sesiuni, Produse: produse, Lookup: produse, Bonuri: svc})
	return &testEnv{engine: r, repo: repo}
}

func (e *testEnv) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		req = httptest.NewRequest(method, path, bytes.NewReader(b))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	w := httptest.NewRecorder()
	e.engine.ServeHTTP(w, req)
	return w
}

func decodeBon(t *testing.T, w *httptest.ResponseRecorder) dto.BonResponse {
	t.Helper()
	var resp dto.BonResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

const bonPath = "/v1/terminale/casa-1/bon"

// ── Tests ─────────────────────────────────────────────────────────────────────

func TestHealth_FaraDependente(t *testing.T) {
	e := setup(t)
	w := e.do(t, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestAdaugaProdus_CuGarantie(t *testing.T) {
	e := setup(t)

	w := e.do(t, http.MethodPost, bonPath+"/produse", map[string]any{"id_produs": 2, "cantitate": "4"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	resp := decodeBon(t, w)

	require.Len(t, resp.Linii, 2)
	assert.Equal(t, 2, resp.Linii[0].IDProdus)
	assert.True(t, resp.Linii[1].EsteGarantie)
	require.NotNil(t, resp.Linii[1].GarantiePentruProdusID)
	assert.Equal(t, 2, *resp.Linii[1].GarantiePentruProdusID)
	assert.True(t, resp.Total.Equal(decimal.RequireFromString("10.00")))
	assert.True(t, resp.SGRActiv)
}

func TestAdaugaProdus_CantitateImplicita(t *testing.T) {
	e := setup(t)
	w := e.do(t, http.MethodPost, bonPath+"/produse", map[string]any{"id_produs": 1})
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, decodeBon(t, w).Linii[0].Cantitate.Equal(decimal.NewFromInt(1)))
}

func TestAdaugaProdus_Erori(t *testing.T) {
	e := setup(t)

	w := e.do(t, http.MethodPost, bonPath+"/produse", map[string]any{"id_produs": 555})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = e.do(t, http.MethodPost, bonPath+"/produse", map[string]any{"id_produs": 1, "cantitate": "-1"})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w = e.do(t, http.MethodPost, bonPath+"/produse", map[string]any{"cantitate": "1"})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestCantitati_MaximTreiZecimale(t *testing.T) {
	e := setup(t)

	w := e.do(t, http.MethodPost, bonPath+"/produse", map[string]any{"id_produs": 1, "cantitate": "0.0004"})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), "max_zecimale")

	w = e.do(t, http.MethodPost, bonPath+"/produse", map[string]any{"id_produs": 1, "cantitate": "1.500"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = e.do(t, http.MethodPost, bonPath+"/linii/0/incrementeaza", map[string]any{"delta": "0.0001"})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w = e.do(t, http.MethodPost, bonPath+"/linii/0/decrementeaza", map[string]any{"delta": "0.0001"})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w = e.do(t, http.MethodPut, bonPath+"/linii/0", map[string]any{"cantitate": "1.2345"})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w = e.do(t, http.MethodGet, bonPath, nil)
	resp := decodeBon(t, w)
	require.Len(t, resp.Linii, 1)
	assert.True(t, resp.Linii[0].Cantitate.Equal(decimal.RequireFromString("1.5")))
}

func TestLinii_IncrementDecrementSiGarantie(t *testing.T) {
	e := setup(t)
	e.do(t, http.MethodPost, bonPath+"/produse", map[string]any{"id_produs": 2, "cantitate": "4"})

	w := e.do(t, http.MethodPost, bonPath+"/linii/0/incrementeaza", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	resp := decodeBon(t, w)
	assert.True(t, resp.Linii[1].Cantitate.Equal(decimal.NewFromInt(5)))
	assert.True(t, resp.Total.Equal(decimal.RequireFromString("12.50")))

	// guarantee lines cannot be adjusted directly
	w = e.do(t, http.MethodPost, bonPath+"/linii/1/incrementeaza", nil)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = e.do(t, http.MethodPost, bonPath+"/linii/9/incrementeaza", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = e.do(t, http.MethodPost, bonPath+"/linii/abc/incrementeaza", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = e.do(t, http.MethodPost, bonPath+"/linii/0/decrementeaza", map[string]any{"delta": "2"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, decodeBon(t, w).Linii[1].Cantitate.Equal(decimal.NewFromInt(3)))

	w = e.do(t, http.MethodPut, bonPath+"/linii/0", map[string]any{"cantitate": "0"})
	require.Equal(t, http.StatusOK, w.Code)
	resp = decodeBon(t, w)
	require.Len(t, resp.Linii, 1)
	assert.True(t, resp.Linii[0].EsteGarantie)

	w = e.do(t, http.MethodDelete, bonPath+"/linii/0", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, decodeBon(t, w).Linii)
}

func TestTerminaleIndependente(t *testing.T) {
	e := setup(t)
	e.do(t, http.MethodPost, bonPath+"/produse", map[string]any{"id_produs": 1})

	w := e.do(t, http.MethodGet, "/v1/terminale/casa-2/bon", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, decodeBon(t, w).Linii)

	w = e.do(t, http.MethodDelete, bonPath, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, decodeBon(t, w).Linii)
}

func TestAsteptare_FluxComplet(t *testing.T) {
	e := setup(t)

	w := e.do(t, http.MethodPost, bonPath+"/asteptare", nil)
	assert.Equal(t, http.StatusConflict, w.Code, "empty cart cannot be held")

	e.do(t, http.MethodPost, bonPath+"/produse", map[string]any{"id_produs": 2, "cantitate": "2"})
	e.do(t, http.MethodPost, bonPath+"/produse", map[string]any{"id_produs": 1})

	w = e.do(t, http.MethodPost, bonPath+"/asteptare", map[string]any{"nume_client": "Ion"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var held dto.BonAsteptareResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &held))
	assert.Equal(t, "TEMP20240105103000", held.NrBon)
	assert.Len(t, held.Detalii, 3)

	w = e.do(t, http.MethodGet, bonPath, nil)
	assert.Empty(t, decodeBon(t, w).Linii)

	w = e.do(t, http.MethodGet, "/v1/bonuri-asteptare", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var list []dto.BonAsteptareListItem
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	require.Len(t, list, 1)
	assert.Equal(t, "BON #TEMP20240105103000 - 8.00 LEI", list[0].Text)

	w = e.do(t, http.MethodPost, "/v1/bonuri-asteptare/1/reluare?terminal=casa-2", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var res dto.ResumeBonResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	assert.Equal(t, 2, res.Replayed)
	assert.Equal(t, 1, res.OmittedGuarantees)
	assert.Equal(t, 1, res.RegeneratedGuarantees)
	assert.Zero(t, res.Skipped)
	assert.False(t, res.SnapshotPastrat)
	assert.True(t, res.Bon.Total.Equal(decimal.RequireFromString("8.00")))

	w = e.do(t, http.MethodGet, "/v1/bonuri-asteptare/1", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = e.do(t, http.MethodPost, "/v1/bonuri-asteptare/1/reluare?terminal=casa-2", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAsteptare_StergeSiInchide(t *testing.T) {
	e := setup(t)
	for i := 0; i < 2; i++ {
		e.do(t, http.MethodPost, bonPath+"/produse", map[string]any{"id_produs": 1})
		w := e.do(t, http.MethodPost, bonPath+"/asteptare", nil)
		require.Equal(t, http.StatusCreated, w.Code)
	}

	assert.Equal(t, http.StatusNoContent, e.do(t, http.MethodPost, "/v1/bonuri-asteptare/1/inchide", nil).Code)
	assert.Equal(t, http.StatusNoContent, e.do(t, http.MethodDelete, "/v1/bonuri-asteptare/2", nil).Code)
	assert.Equal(t, http.StatusNotFound, e.do(t, http.MethodDelete, "/v1/bonuri-asteptare/2", nil).Code)

	w := e.do(t, http.MethodGet, "/v1/bonuri-asteptare", nil)
	var list []dto.BonAsteptareListItem
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	assert.Empty(t, list)
	assert.Equal(t, model.StatusInchis, e.repo.bonuri[1].Status)
}

func TestReluare_FaraTerminal(t *testing.T) {
	e := setup(t)
	w := e.do(t, http.MethodPost, "/v1/bonuri-asteptare/1/reluare", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestProduse_Cautare(t *testing.T) {
	e := setup(t)
	w := e.do(t, http.MethodGet, "/v1/produse?q=apa", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var produse []model.Produs
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &produse))
	require.Len(t, produse, 1)
	assert.Equal(t, 2, produse[0].ID)

	assert.Equal(t, http.StatusBadRequest, e.do(t, http.MethodGet, "/v1/produse?limit=0", nil).Code)
	assert.Equal(t, http.StatusOK, e.do(t, http.MethodGet, "/v1/produse/99", nil).Code)
	assert.Equal(t, http.StatusNotFound, e.do(t, http.MethodGet, "/v1/produse/7", nil).Code)
}

func TestSwagger_DoarInAfaraProductiei(t *testing.T) {
	e := setup(t)
	w := e.do(t, http.MethodGet, "/swagger/index.html", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	t.Cleanup(func() { gin.SetMode(gin.TestMode) })
	r := router.New(&config.Config{Env: "production"}, router.Deps{})
	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/swagger/index.html", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}
