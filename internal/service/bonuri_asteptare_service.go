package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"sysmanager/internal/bon"
	"sysmanager/internal/dto"
	"sysmanager/internal/model"
	"sysmanager/internal/repository"

	"github.com/rs/zerolog/log"
)

var (
	ErrBonGol = errors.New("nu există produse în bon")
	// ErrStergereBon means the cart was rebuilt but the parked receipt is still stored.
	ErrStergereBon = errors.New("bonul a fost reluat dar nu a putut fi șters din așteptare")
	// ErrCantitatePrecizie rejects a hold whose quantities would be rounded by the store.
	ErrCantitatePrecizie = fmt.Errorf("%w: cantitatea poate avea cel mult %d zecimale",
		bon.ErrInvalidArgument, model.ZecimaleCantitate)
)

// PrintQueue schedules the printable slip of a parked receipt.
type PrintQueue interface {
	EnqueuePrint(ctx context.Context, idBon int) error
}

// Clock returns the current time; tests replace it.
type Clock func() time.Time

type BonuriAsteptareService interface {
	Hold(ctx context.Context, mgr *bon.Manager, req dto.HoldBonRequest) (*model.BonAsteptare, error)
	Resume(ctx context.Context, mgr *bon.Manager, id int) (*dto.ResumeBonResponse, error)
	ListPending(ctx context.Context) ([]model.BonAsteptare, error)
	Get(ctx context.Context, id int) (*model.BonAsteptare, error)
	Delete(ctx context.Context, id int) error
	MarkClosed(ctx context.Context, id int) error
}

// Defaults are used when a hold request does not name the user or the store.
type Defaults struct {
	IDUtilizator int
	IDGestiune   int
}

type bonuriAsteptareService struct {
	repo     repository.BonAsteptareRepository
	produse  bon.ProductLookup
	queue    PrintQueue
	defaults Defaults
	now      Clock
}

func NewBonuriAsteptareService(
	repo repository.BonAsteptareRepository,
	produse bon.ProductLookup,
	queue PrintQueue,
	defaults Defaults,
	now Clock,
) BonuriAsteptareService {
	if now == nil {
		now = time.Now
	}
	return &bonuriAsteptareService{repo: repo, produse: produse, queue: queue, defaults: defaults, now: now}
}

// NrBonTemporar formats the provisional number given to a parked receipt.
func NrBonTemporar(t time.Time) string { return "TEMP" + t.Format("20060102150405") }

// ── Hold ──────────────────────────────────────────────────────────────────────
// Snapshot the cart, persist it, then clear the cart. Nothing is cleared when
// the store fails.

func (s *bonuriAsteptareService) Hold(ctx context.Context, mgr *bon.Manager, req dto.HoldBonRequest) (*model.BonAsteptare, error) {
	if mgr.IsEmpty() {
		return nil, ErrBonGol
	}
	for _, it := range mgr.Items() {
		if !model.CantitateStocabila(it.Cantitate()) {
			return nil, fmt.Errorf("%w: %s × %s", ErrCantitatePrecizie, it.Nume, it.Cantitate())
		}
	}

	now := s.now()
	b := &model.BonAsteptare{
		NrBon:        NrBonTemporar(now),
		DataCreare:   now,
		IDUtilizator: s.defaults.IDUtilizator,
		IDGestiune:   s.defaults.IDGestiune,
		Total:        mgr.Total(),
		Observatii:   req.Observatii,
		NumeClient:   req.NumeClient,
		Status:       model.StatusAsteptare,
	}
	if req.IDUtilizator != nil {
		b.IDUtilizator = *req.IDUtilizator
	}
	if req.IDGestiune != nil {
		b.IDGestiune = *req.IDGestiune
	}

	for _, it := range mgr.Items() {
		b.Detalii = append(b.Detalii, model.BonAsteptareDetaliu{
			IDProdus:       it.IDProdus,
			DenumireProdus: it.Nume,
			Cantitate:      it.Cantitate(),
			PretUnitar:     it.PretBrut(),
			Valoare:        it.Total(),
			EsteGarantie:   it.IsGarantie(),
		})
	}

	id, err := s.repo.Save(ctx, b)
	if err != nil {
		log.Error().Err(err).Str("nr_bon", b.NrBon).Msg("bon in asteptare nesalvat")
		return nil, fmt.Errorf("salvare bon în așteptare: %w", err)
	}
	b.ID = id

	mgr.ClearCart()
	log.Info().
		Int("id_bon", id).
		Str("nr_bon", b.NrBon).
		Int("linii", len(b.Detalii)).
		Str("total", b.Total.StringFixed(2)).
		Msg("bon pus in asteptare")

	if s.queue != nil {
		if err := s.queue.EnqueuePrint(ctx, id); err != nil {
			log.Warn().Err(err).Int("id_bon", id).Msg("tiparire bon in asteptare neprogramata")
		}
	}
	return b, nil
}

// ── Resume ────────────────────────────────────────────────────────────────────
// Guarantee rows are not replayed: AddProduct regenerates them from the
// current SGR setting and catalog.

func (s *bonuriAsteptareService) Resume(ctx context.Context, mgr *bon.Manager, id int) (*dto.ResumeBonResponse, error) {
	b, err := s.repo.LoadFull(ctx, id)
	if err != nil {
		return nil, err
	}

	// resolve products before touching the cart so a catalog failure leaves it as is
	type replay struct {
		p   *model.Produs
		det model.BonAsteptareDetaliu
	}
	var lines []replay
	omitted := 0
	for _, d := range b.Detalii {
		if d.EsteGarantie {
			omitted++
			continue
		}
		p, err := s.produsPentruReluare(d)
		if err != nil {
			return nil, fmt.Errorf("reluare bon %d: %w", id, err)
		}
		lines = append(lines, replay{p: p, det: d})
	}

	mgr.ClearCart()

	regenerated := 0
	sub := mgr.Subscribe(bon.EventItemAdded, func(e bon.Event) {
		if e.Item != nil && e.Item.IsGarantie() {
			regenerated++
		}
	})
	replayed, skipped := 0, 0
	for _, l := range lines {
		if _, err := mgr.AddProduct(l.p, l.det.Cantitate); err != nil {
			// a stored quantity that is no longer positive
			skipped++
			log.Warn().Err(err).Int("id_bon", id).Int("id_produs", l.det.IDProdus).
				Str("cantitate", l.det.Cantitate.String()).Msg("linie ignorata la reluare")
			continue
		}
		replayed++
	}
	mgr.Unsubscribe(sub)

	res := &dto.ResumeBonResponse{
		IDBon:                 id,
		NrBon:                 b.NrBon,
		Replayed:              replayed,
		Skipped:               skipped,
		OmittedGuarantees:     omitted,
		RegeneratedGuarantees: regenerated,
		Bon:                   dto.BonFromManager(mgr),
	}

	// a snapshot that did not replay in full stays parked so nothing is lost
	if skipped > 0 {
		res.SnapshotPastrat = true
		log.Warn().Int("id_bon", id).Int("linii_ignorate", skipped).Msg("bon reluat partial, pastrat in asteptare")
		return res, nil
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		log.Error().Err(err).Int("id_bon", id).Msg("bon reluat dar nesters")
		return res, fmt.Errorf("%w: %v", ErrStergereBon, err)
	}

	log.Info().
		Int("id_bon", id).
		Int("linii", res.Replayed).
		Int("garantii_omise", omitted).
		Int("garantii_regenerate", regenerated).
		Msg("bon reluat din asteptare")
	return res, nil
}

// produsPentruReluare returns the live catalog product carrying the name and
// price recorded in the snapshot. A product no longer in the catalog is
// rebuilt from the snapshot alone and gets no guarantee line.
func (s *bonuriAsteptareService) produsPentruReluare(d model.BonAsteptareDetaliu) (*model.Produs, error) {
	live, err := s.produse.FindProdus(d.IDProdus)
	switch {
	case err == nil && live != nil:
		p := *live
		p.Denumire = d.DenumireProdus
		p.PretBrut = d.PretUnitar
		return &p, nil
	case err == nil || errors.Is(err, repository.ErrNotFound):
		log.Warn().Int("id_produs", d.IDProdus).Msg("produs inexistent in catalog, reluat din bon")
		return &model.Produs{
			ID:            d.IDProdus,
			Denumire:      d.DenumireProdus,
			PretBrut:      d.PretUnitar,
			UnitateMasura: model.UnitateMasuraImplicita,
		}, nil
	default:
		return nil, err
	}
}

// ── Pass-throughs ─────────────────────────────────────────────────────────────

func (s *bonuriAsteptareService) ListPending(ctx context.Context) ([]model.BonAsteptare, error) {
	return s.repo.ListPending(ctx)
}

func (s *bonuriAsteptareService) Get(ctx context.Context, id int) (*model.BonAsteptare, error) {
	return s.repo.LoadFull(ctx, id)
}

func (s *bonuriAsteptareService) Delete(ctx context.Context, id int) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	log.Info().Int("id_bon", id).Msg("bon in asteptare sters")
	return nil
}

func (s *bonuriAsteptareService) MarkClosed(ctx context.Context, id int) error {
	return s.repo.MarkClosed(ctx, id)
}
