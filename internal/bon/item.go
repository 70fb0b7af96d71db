package bon

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Field names carried by item change notifications.
const (
	FieldCantitate = "Cantitate"
	FieldPretBrut  = "PretBrut"
	FieldTotal     = "Total"
)

// ItemObserver is called after a watched field of an Item changed.
type ItemObserver func(it *Item, field string)

// Item is one line of the active receipt. Quantity and gross unit price are
// mutable; the line total is always derived from them.
type Item struct {
	IDProdus      int
	Nume          string
	ValoareTva    decimal.Decimal
	ProcentTva    decimal.Decimal
	TvaID         int
	CodSGR        string
	UnitateMasura string
	Departament   int

	// GarantiePentruProdusID is set only on deposit guarantee lines and holds
	// the product id of the host line.
	GarantiePentruProdusID *int

	cantitate decimal.Decimal
	pretBrut  decimal.Decimal

	observers []observerEntry
	nextObs   int
}

type observerEntry struct {
	id int
	fn ItemObserver
}

func (it *Item) Cantitate() decimal.Decimal { return it.cantitate }
func (it *Item) PretBrut() decimal.Decimal  { return it.pretBrut }

// Total is Cantitate × PretBrut.
func (it *Item) Total() decimal.Decimal { return it.cantitate.Mul(it.pretBrut) }

func (it *Item) TotalTva() decimal.Decimal { return it.ValoareTva.Mul(it.cantitate) }

func (it *Item) IsGarantie() bool { return it.GarantiePentruProdusID != nil }

// SetCantitate changes the quantity and notifies observers of the field and of
// the derived total. Setting the current value is a no-op.
func (it *Item) SetCantitate(q decimal.Decimal) {
	if it.cantitate.Equal(q) {
		return
	}
	it.cantitate = q
	it.notify(FieldCantitate)
	it.notify(FieldTotal)
}

func (it *Item) SetPretBrut(p decimal.Decimal) {
	if it.pretBrut.Equal(p) {
		return
	}
	it.pretBrut = p
	it.notify(FieldPretBrut)
	it.notify(FieldTotal)
}

// Observe registers fn and returns a function that detaches it.
func (it *Item) Observe(fn ItemObserver) (detach func()) {
	it.nextObs++
	id := it.nextObs
	it.observers = append(it.observers, observerEntry{id: id, fn: fn})
	return func() {
		for i, o := range it.observers {
			if o.id == id {
				it.observers = append(it.observers[:i:i], it.observers[i+1:]...)
				return
			}
		}
	}
}

func (it *Item) notify(field string) {
	// copy so an observer detaching itself does not disturb the loop
	obs := append([]observerEntry(nil), it.observers...)
	for _, o := range obs {
		o.fn(it, field)
	}
}

// Clone returns a detached copy: no observers and no guarantee link.
func (it *Item) Clone() *Item {
	return &Item{
		IDProdus:      it.IDProdus,
		Nume:          it.Nume,
		ValoareTva:    it.ValoareTva,
		ProcentTva:    it.ProcentTva,
		TvaID:         it.TvaID,
		CodSGR:        it.CodSGR,
		UnitateMasura: it.UnitateMasura,
		Departament:   it.Departament,
		cantitate:     it.cantitate,
		pretBrut:      it.pretBrut,
	}
}

func (it *Item) String() string {
	return fmt.Sprintf("%s - %s × %s LEI = %s LEI",
		it.Nume, it.cantitate.String(), it.pretBrut.StringFixed(2), it.Total().StringFixed(2))
}
