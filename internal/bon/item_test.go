package bon_test

import (
	"testing"

	"sysmanager/internal/bon"

	"github.com/stretchr/testify/assert"
)

func TestItem_TotalDerivat(t *testing.T) {
	m := newManager(t, false, newStubLookup())
	it, _ := m.AddProduct(produs(1, "Cafea", "7.50"), dec("2"))

	assert.True(t, it.Total().Equal(dec("15.00")))
	it.SetPretBrut(dec("8"))
	assert.True(t, it.Total().Equal(dec("16")))
	assert.True(t, m.Total().Equal(dec("16")))
}

func TestItem_NotificariCampuri(t *testing.T) {
	it := &bon.Item{IDProdus: 1}
	var fields []string
	detach := it.Observe(func(_ *bon.Item, f string) { fields = append(fields, f) })

	it.SetCantitate(dec("3"))
	it.SetCantitate(dec("3")) // same value, no notification
	it.SetPretBrut(dec("1.10"))
	assert.Equal(t, []string{bon.FieldCantitate, bon.FieldTotal, bon.FieldPretBrut, bon.FieldTotal}, fields)

	detach()
	it.SetCantitate(dec("4"))
	assert.Len(t, fields, 4)
}

func TestItem_ObserverSeDetaseazaInTimpulNotificarii(t *testing.T) {
	it := &bon.Item{}
	calls := 0
	var detach func()
	detach = it.Observe(func(*bon.Item, string) {
		calls++
		detach()
	})
	it.SetCantitate(dec("1"))
	assert.Equal(t, 1, calls)
}

func TestItem_Clone(t *testing.T) {
	m := newManager(t, true, newStubLookup(produs(99, "Garantie SGR", "0.50")))
	_, _ = m.AddProduct(produsSGR(2, "Apa 2L", "2.00", "99"), dec("2"))
	g := m.At(1)

	c := g.Clone()
	assert.False(t, c.IsGarantie())
	assert.Equal(t, g.IDProdus, c.IDProdus)
	assert.True(t, c.Cantitate().Equal(g.Cantitate()))

	// changing the clone must not reach the manager
	before := m.Total()
	c.SetCantitate(dec("50"))
	assert.True(t, before.Equal(m.Total()))
}

func TestItem_CodSGRPreluatDinProdus(t *testing.T) {
	m := newManager(t, false, newStubLookup())
	it, _ := m.AddProduct(produsSGR(2, "Apa 2L", "2.00", " 99 "), dec("1"))
	assert.Equal(t, "99", it.CodSGR)
	assert.Equal(t, "buc", it.UnitateMasura)
}

func TestItem_String(t *testing.T) {
	m := newManager(t, false, newStubLookup())
	it, _ := m.AddProduct(produs(1, "Cafea", "7.5"), dec("2"))
	assert.Equal(t, "Cafea - 2 × 7.50 LEI = 15.00 LEI", it.String())
}
