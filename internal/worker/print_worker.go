package worker

// print_worker.go renders the slip of a parked receipt after it was held.
// The job only carries the receipt id; the snapshot is reloaded from the
// store so the slip reflects what was persisted.

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"sysmanager/internal/infra"
	"sysmanager/internal/model"
	"sysmanager/internal/repository"

	"github.com/rs/zerolog/log"
)

// JobTypePrint is the job type handled by PrintWorker.
const JobTypePrint = jobTypePrint

type PrintJobPayload struct {
	IDBon int `json:"id_bon"`
}

// RenderFunc writes the slip of b under dir and returns the file path.
type RenderFunc func(b *model.BonAsteptare, dir string) (string, error)

type PrintWorker struct {
	repo           repository.BonAsteptareRepository
	render         RenderFunc
	pdfStoragePath string
}

func NewPrintWorker(repo repository.BonAsteptareRepository, pdfStoragePath string) *PrintWorker {
	return &PrintWorker{repo: repo, render: infra.GenerateBonAsteptarePDF, pdfStoragePath: pdfStoragePath}
}

// WithRenderer replaces the PDF renderer.
func (w *PrintWorker) WithRenderer(r RenderFunc) *PrintWorker {
	w.render = r
	return w
}

func (w *PrintWorker) Process(ctx context.Context, raw json.RawMessage) error {
	var payload PrintJobPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return fmt.Errorf("print_worker: invalid payload: %w", err)
	}

	b, err := w.repo.LoadFull(ctx, payload.IDBon)
	if errors.Is(err, repository.ErrNotFound) {
		// resumed or deleted before the job ran
		log.Info().Int("id_bon", payload.IDBon).Msg("print_worker: bon no longer held, skipping")
		return nil
	}
	if err != nil {
		return fmt.Errorf("print_worker: load bon %d: %w", payload.IDBon, err)
	}

	path, err := w.render(b, w.pdfStoragePath)
	if err != nil {
		return err
	}
	log.Info().Int("id_bon", b.ID).Str("nr_bon", b.NrBon).Str("pdf", path).Msg("print_worker: slip generated")
	return nil
}
