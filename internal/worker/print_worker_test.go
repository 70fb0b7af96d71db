package worker

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"testing"

	"sysmanager/internal/model"
	"sysmanager/internal/repository"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubBonRepo struct {
	bonuri  map[int]*model.BonAsteptare
	loadErr error
}

var _ repository.BonAsteptareRepository = (*stubBonRepo)(nil)

func (r *stubBonRepo) Save(context.Context, *model.BonAsteptare) (int, error) { return 0, nil }
func (r *stubBonRepo) ListPending(context.Context) ([]model.BonAsteptare, error) {
	return nil, nil
}
func (r *stubBonRepo) LoadFull(_ context.Context, id int) (*model.BonAsteptare, error) {
	if r.loadErr != nil {
		return nil, r.loadErr
	}
	b, ok := r.bonuri[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return b, nil
}
func (r *stubBonRepo) Delete(context.Context, int) error     { return nil }
func (r *stubBonRepo) MarkClosed(context.Context, int) error { return nil }

func payload(t *testing.T, id int) json.RawMessage {
	t.Helper()
	raw, err := json.Marshal(PrintJobPayload{IDBon: id})
	require.NoError(t, err)
	return raw
}

func TestPrintWorker_GenereazaPDF(t *testing.T) {
	repo := &stubBonRepo{bonuri: map[int]*model.BonAsteptare{
		5: {ID: 5, NrBon: "TEMP20240105103000", Total: decimal.RequireFromString("3.00"),
			Detalii: []model.BonAsteptareDetaliu{{IDProdus: 1, DenumireProdus: "Paine",
				Cantitate: decimal.NewFromInt(1), PretUnitar: decimal.RequireFromString("3.00"), Valoare: decimal.RequireFromString("3.00")}}},
	}}
	dir := t.TempDir()
	w := NewPrintWorker(repo, dir)

	require.NoError(t, w.Process(context.Background(), payload(t, 5)))
	_, err := os.Stat(dir + "/bon_asteptare_5.pdf")
	assert.NoError(t, err)
}

func TestPrintWorker_BonDejaReluat(t *testing.T) {
	rendered := false
	w := NewPrintWorker(&stubBonRepo{bonuri: map[int]*model.BonAsteptare{}}, t.TempDir()).
		WithRenderer(func(*model.BonAsteptare, string) (string, error) { rendered = true; return "", nil })

	assert.NoError(t, w.Process(context.Background(), payload(t, 9)))
	assert.False(t, rendered)
}

func TestPrintWorker_Erori(t *testing.T) {
	w := NewPrintWorker(&stubBonRepo{loadErr: errors.New("db down")}, t.TempDir())
	assert.Error(t, w.Process(context.Background(), payload(t, 1)))
	assert.Error(t, w.Process(context.Background(), json.RawMessage(`{"id_bon":"x"}`)))
}

type recordingHandler struct{ raws []string }

func (h *recordingHandler) Process(_ context.Context, raw json.RawMessage) error {
	h.raws = append(h.raws, string(raw))
	return nil
}

func TestPool_DispatchPeTip(t *testing.T) {
	p := NewPool(nil)
	h := &recordingHandler{}
	p.Handle(JobTypePrint, h)

	job, err := json.Marshal(Job{Type: JobTypePrint, Payload: payload(t, 3)})
	require.NoError(t, err)

	p.dispatch(context.Background(), QueuePrint, string(job))
	p.dispatch(context.Background(), QueuePrint, `{"type":"necunoscut","payload":{}}`)
	p.dispatch(context.Background(), QueuePrint, `not json`)

	assert.Equal(t, []string{`{"id_bon":3}`}, h.raws)
}
