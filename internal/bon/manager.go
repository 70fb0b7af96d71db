// Package bon holds the receipt being built at the till: its ordered lines,
// merge-on-add, deposit guarantee (SGR) lines and the running total.
//
// A Manager is owned by one cashier session and is not safe for concurrent use.
package bon

import (
	"fmt"
	"reflect"

	"sysmanager/internal/model"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// ProductLookup fetches a catalog product by id. It is used to resolve the
// companion product named by a deposit code.
type ProductLookup interface {
	FindProdus(id int) (*model.Produs, error)
}

type Manager struct {
	lookup     ProductLookup
	sgrEnabled bool

	items  []*Item
	detach map[*Item]func()
	events dispatcher

	// lastTotal only tracks what was last announced through EventTotalChanged.
	lastTotal decimal.Decimal
}

// NewManager builds an empty receipt. The SGR flag is read from cfg once and
// kept for the lifetime of the manager. A nil lookup, including a typed nil
// pointer wrapped in the interface, is rejected.
func NewManager(lookup ProductLookup, cfg *model.SmConfig) (*Manager, error) {
	if isNil(lookup) || cfg == nil {
		return nil, ErrMissingDependency
	}
	m := &Manager{
		lookup:     lookup,
		sgrEnabled: cfg.IsSGREnabled(),
		detach:     make(map[*Item]func()),
	}
	log.Debug().Bool("sgr", m.sgrEnabled).Msg("bon manager initializat")
	return m, nil
}

func isNil(v ProductLookup) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Func, reflect.Interface, reflect.Slice, reflect.Chan:
		return rv.IsNil()
	}
	return false
}

func (m *Manager) SGREnabled() bool { return m.sgrEnabled }

// ── State ─────────────────────────────────────────────────────────────────────

// Items returns the lines in receipt order. The slice is a copy; the items are not.
func (m *Manager) Items() []*Item {
	out := make([]*Item, len(m.items))
	copy(out, m.items)
	return out
}

func (m *Manager) Len() int { return len(m.items) }

// At returns the line at index i, or nil when out of range.
func (m *Manager) At(i int) *Item {
	if i < 0 || i >= len(m.items) {
		return nil
	}
	return m.items[i]
}

// Total is always the sum of the current line totals.
func (m *Manager) Total() decimal.Decimal {
	total := decimal.Zero
	for _, it := range m.items {
		total = total.Add(it.Total())
	}
	return total
}

func (m *Manager) LineCount() int { return len(m.items) }

// UnitCount is the sum of the quantities of all lines.
func (m *Manager) UnitCount() decimal.Decimal {
	n := decimal.Zero
	for _, it := range m.items {
		n = n.Add(it.Cantitate())
	}
	return n
}

func (m *Manager) IsEmpty() bool { return len(m.items) == 0 }

func (m *Manager) TaxTotal() decimal.Decimal {
	tva := decimal.Zero
	for _, it := range m.items {
		tva = tva.Add(it.TotalTva())
	}
	return tva
}

func (m *Manager) TotalWithoutTax() decimal.Decimal { return m.Total().Sub(m.TaxTotal()) }

func (m *Manager) Summary() string {
	return fmt.Sprintf("Articole: %d | Bucăți: %s | Total: %s LEI",
		m.LineCount(), m.UnitCount().String(), m.Total().StringFixed(2))
}

// ── Notifications ─────────────────────────────────────────────────────────────

func (m *Manager) Subscribe(kind EventKind, h Handler) Subscription {
	return m.events.subscribe(kind, h)
}

func (m *Manager) Unsubscribe(s Subscription) bool {
	return m.events.unsubscribe(s)
}

// ── Add ───────────────────────────────────────────────────────────────────────

// AddOne adds a single unit of p.
func (m *Manager) AddOne(p *model.Produs) (*Item, error) {
	return m.AddProduct(p, decimal.NewFromInt(1))
}

// AddProduct merges cantitate into the existing line of p, or appends a new
// line followed by its deposit guarantee line when SGR is enabled.
// It returns the host line.
func (m *Manager) AddProduct(p *model.Produs, cantitate decimal.Decimal) (*Item, error) {
	if p == nil {
		return nil, ErrNilProduct
	}
	if !cantitate.IsPositive() {
		return nil, ErrInvalidQuantity
	}

	if existing := m.findHost(p.ID); existing != nil {
		before := existing.Cantitate()
		existing.SetCantitate(before.Add(cantitate))
		log.Debug().
			Int("id_produs", existing.IDProdus).
			Str("inainte", before.String()).
			Str("dupa", existing.Cantitate().String()).
			Msg("cantitate actualizata")

		if p.HasCodSGR() {
			m.syncIfEnabled(existing)
		}
		return existing, nil
	}

	it := newItem(p, cantitate)
	m.attach(it)
	m.items = append(m.items, it)
	m.recomputeTotal()
	log.Debug().Int("id_produs", it.IDProdus).Str("linie", it.String()).Msg("produs nou adaugat")

	var garantie *Item
	if p.HasCodSGR() {
		if m.sgrEnabled {
			garantie = m.insertGuarantee(it)
		} else {
			m.skip(&LinkageError{Reason: ReasonSGRDisabled, HostID: it.IDProdus, CodSGR: it.CodSGR})
		}
	}

	m.events.emit(Event{Kind: EventItemAdded, Item: it, Total: m.Total()})
	if garantie != nil {
		m.events.emit(Event{Kind: EventItemAdded, Item: garantie, Total: m.Total()})
	}
	return it, nil
}

// ── Quantity ──────────────────────────────────────────────────────────────────

// IncrementQuantity adds delta to a host line and re-synchronizes its guarantee.
// It fails for lines not in the cart, guarantee lines and non-positive deltas.
func (m *Manager) IncrementQuantity(it *Item, delta decimal.Decimal) bool {
	if !m.adjustable(it) || !delta.IsPositive() {
		return false
	}
	it.SetCantitate(it.Cantitate().Add(delta))
	m.syncIfEnabled(it)
	return true
}

// DecrementQuantity subtracts delta; a result of zero or less removes the line.
// The guarantee line of a removed host is left in place.
func (m *Manager) DecrementQuantity(it *Item, delta decimal.Decimal) bool {
	if !m.adjustable(it) || !delta.IsPositive() {
		return false
	}
	next := it.Cantitate().Sub(delta)
	if !next.IsPositive() {
		return m.RemoveItem(it)
	}
	it.SetCantitate(next)
	m.syncIfEnabled(it)
	return true
}

// SetQuantity sets an absolute quantity on a host line; zero or less removes it.
func (m *Manager) SetQuantity(it *Item, cantitate decimal.Decimal) bool {
	if !m.adjustable(it) {
		return false
	}
	if !cantitate.IsPositive() {
		return m.RemoveItem(it)
	}
	it.SetCantitate(cantitate)
	m.syncIfEnabled(it)
	return true
}

// ── Remove ────────────────────────────────────────────────────────────────────

// RemoveItem removes exactly the given line. Host and guarantee lines are not
// removed together.
func (m *Manager) RemoveItem(it *Item) bool {
	idx := m.indexOf(it)
	if idx < 0 {
		return false
	}
	m.release(it)
	m.items = append(m.items[:idx:idx], m.items[idx+1:]...)
	m.recomputeTotal()
	log.Debug().Int("id_produs", it.IDProdus).Msg("produs sters din bon")

	m.events.emit(Event{Kind: EventItemRemoved, Item: it, Total: m.Total()})
	return true
}

// RemoveByProductID removes the first line whose own product id is id.
func (m *Manager) RemoveByProductID(id int) bool {
	it := m.FindByProductID(id)
	return it != nil && m.RemoveItem(it)
}

// ClearCart removes every line and returns how many were removed.
func (m *Manager) ClearCart() int {
	n := len(m.items)
	if n == 0 {
		return 0
	}
	for _, it := range m.items {
		m.release(it)
	}
	m.items = nil
	m.recomputeTotal()
	log.Debug().Int("articole", n).Msg("bon golit")

	m.events.emit(Event{Kind: EventCartCleared, Removed: n, Total: m.Total()})
	return n
}

// ── Lookup ────────────────────────────────────────────────────────────────────

// FindByProductID matches on the line's own product id, guarantee lines included.
func (m *Manager) FindByProductID(id int) *Item {
	for _, it := range m.items {
		if it.IDProdus == id {
			return it
		}
	}
	return nil
}

func (m *Manager) ContainsProduct(id int) bool { return m.FindByProductID(id) != nil }

// IndexOf returns the position of it in the receipt, or -1.
func (m *Manager) IndexOf(it *Item) int { return m.indexOf(it) }

// ── Internals ─────────────────────────────────────────────────────────────────

func newItem(p *model.Produs, cantitate decimal.Decimal) *Item {
	return &Item{
		IDProdus:      p.ID,
		Nume:          p.Denumire,
		ValoareTva:    p.ValoareTva,
		ProcentTva:    p.ProcentTva,
		TvaID:         p.TvaID,
		CodSGR:        p.SGR(),
		UnitateMasura: p.UnitateMasura,
		Departament:   p.Departament,
		cantitate:     cantitate,
		pretBrut:      p.PretBrut,
	}
}

// findHost returns the non-guarantee line of product id.
func (m *Manager) findHost(id int) *Item {
	for _, it := range m.items {
		if it.IDProdus == id && !it.IsGarantie() {
			return it
		}
	}
	return nil
}

func (m *Manager) indexOf(it *Item) int {
	if it == nil {
		return -1
	}
	for i, x := range m.items {
		if x == it {
			return i
		}
	}
	return -1
}

func (m *Manager) adjustable(it *Item) bool {
	if m.indexOf(it) < 0 {
		return false
	}
	if it.IsGarantie() {
		log.Warn().Int("id_produs", it.IDProdus).Msg("garantia nu poate fi modificata manual")
		return false
	}
	return true
}

func (m *Manager) attach(it *Item) {
	m.detach[it] = it.Observe(m.onItemChanged)
}

func (m *Manager) release(it *Item) {
	if d, ok := m.detach[it]; ok {
		d()
		delete(m.detach, it)
	}
}

func (m *Manager) onItemChanged(it *Item, field string) {
	switch field {
	case FieldCantitate:
		m.events.emit(Event{Kind: EventQuantityChanged, Item: it, Total: m.Total()})
	case FieldTotal:
		m.recomputeTotal()
	}
}

func (m *Manager) recomputeTotal() {
	total := m.Total()
	if total.Equal(m.lastTotal) {
		return
	}
	m.lastTotal = total
	m.events.emit(Event{Kind: EventTotalChanged, Total: total})
}
