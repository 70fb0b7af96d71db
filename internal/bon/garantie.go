package bon

import (
	"errors"
	"slices"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"
)

var errCompanionMissing = errors.New("produsul garanție nu există")

// parseCodSGR turns a deposit code into the companion product id.
func parseCodSGR(cod string) (int, error) {
	return strconv.Atoi(strings.TrimSpace(cod))
}

// insertGuarantee adds the deposit line of host right after it, with the same
// quantity. Any inconsistency is reported through skip and nothing is added.
func (m *Manager) insertGuarantee(host *Item) *Item {
	companionID, err := parseCodSGR(host.CodSGR)
	if err != nil {
		m.skip(&LinkageError{Reason: ReasonInvalidCodSGR, HostID: host.IDProdus, CodSGR: host.CodSGR, Err: err})
		return nil
	}

	companion, err := m.lookup.FindProdus(companionID)
	if err == nil && companion == nil {
		err = errCompanionMissing
	}
	if err != nil {
		m.skip(&LinkageError{
			Reason:   ReasonCompanionNotFound,
			HostID:   host.IDProdus,
			CodSGR:   host.CodSGR,
			Expected: companionID,
			Err:      err,
		})
		return nil
	}

	idx := m.indexOf(host)
	if idx < 0 {
		m.skip(&LinkageError{Reason: ReasonHostNotInCart, HostID: host.IDProdus, CodSGR: host.CodSGR, Expected: companionID})
		return nil
	}

	hostID := host.IDProdus
	g := newItem(companion, host.Cantitate())
	g.GarantiePentruProdusID = &hostID

	m.attach(g)
	m.items = slices.Insert(m.items, idx+1, g)
	m.recomputeTotal()

	log.Info().
		Int("id_produs", hostID).
		Int("id_garantie", g.IDProdus).
		Str("cantitate", g.Cantitate().String()).
		Str("total", g.Total().StringFixed(2)).
		Msg("garantie SGR adaugata")
	return g
}

func (m *Manager) syncIfEnabled(host *Item) {
	if host.CodSGR == "" {
		return
	}
	if !m.sgrEnabled {
		m.skip(&LinkageError{Reason: ReasonSGRDisabled, HostID: host.IDProdus, CodSGR: host.CodSGR})
		return
	}
	m.syncGuarantee(host)
}

// syncGuarantee copies the host quantity onto its guarantee line. The line at
// host index + 1 is accepted only if it is the companion product AND links
// back to this host; otherwise nothing is changed.
func (m *Manager) syncGuarantee(host *Item) {
	if host.IsGarantie() {
		return
	}
	expected, err := parseCodSGR(host.CodSGR)
	if err != nil {
		m.skip(&LinkageError{Reason: ReasonInvalidCodSGR, HostID: host.IDProdus, CodSGR: host.CodSGR, Err: err})
		return
	}

	idx := m.indexOf(host)
	if idx < 0 {
		m.skip(&LinkageError{Reason: ReasonHostNotInCart, HostID: host.IDProdus, CodSGR: host.CodSGR, Expected: expected})
		return
	}
	if idx+1 >= len(m.items) {
		m.skip(&LinkageError{Reason: ReasonGuaranteeMissing, HostID: host.IDProdus, CodSGR: host.CodSGR, Expected: expected})
		return
	}

	cand := m.items[idx+1]
	linked := cand.GarantiePentruProdusID != nil && *cand.GarantiePentruProdusID == host.IDProdus
	if cand.IDProdus != expected || !linked {
		m.skip(&LinkageError{
			Reason:   ReasonGuaranteeMismatch,
			HostID:   host.IDProdus,
			CodSGR:   host.CodSGR,
			Expected: expected,
			Got:      cand,
		})
		return
	}

	if cand.Cantitate().Equal(host.Cantitate()) {
		log.Debug().Int("id_produs", host.IDProdus).Msg("garantie deja sincronizata")
		return
	}
	before := cand.Cantitate()
	cand.SetCantitate(host.Cantitate())
	log.Debug().
		Int("id_produs", host.IDProdus).
		Str("inainte", before.String()).
		Str("dupa", cand.Cantitate().String()).
		Msg("garantie sincronizata")
}

func (m *Manager) skip(le *LinkageError) {
	ev := log.Warn()
	if le.Reason == ReasonSGRDisabled {
		ev = log.Debug()
	}
	ev.Int("id_produs", le.HostID).
		Str("cod_sgr", le.CodSGR).
		Str("motiv", le.Reason.String()).
		Err(le.Err).
		Msg("garantie SGR omisa")
	m.events.emit(Event{Kind: EventLinkageSkipped, Item: le.Got, Linkage: le, Total: m.Total()})
}
