package model

import (
	"strings"

	"github.com/shopspring/decimal"
)

// UnitateMasuraImplicita is used when the catalog row carries no unit of measure.
const UnitateMasuraImplicita = "buc"

// Produs is a catalog record as returned by the product search procedure.
// It is read-only for the receipt core.
type Produs struct {
	ID            int             `gorm:"column:id;primaryKey"`
	Denumire      string          `gorm:"column:denumire;not null"`
	ValoareTva    decimal.Decimal `gorm:"column:valoare_tva;type:decimal(12,4);not null;default:0"`
	PretBrut      decimal.Decimal `gorm:"column:pret_brut;type:decimal(12,2);not null"`
	ProcentTva    decimal.Decimal `gorm:"column:procent_tva;type:decimal(5,2);not null;default:0"`
	CaleImagine   *string         `gorm:"column:cale_imagine"`
	ShowImage     int             `gorm:"column:show_image;not null;default:0"`
	TvaID         int             `gorm:"column:tva_id;not null;default:0"`
	// CodSGR is either empty or the id of the companion deposit product.
	CodSGR        *string `gorm:"column:cod_sgr"`
	UnitateMasura string  `gorm:"column:u_masura;not null;default:'buc'"`
	Departament   int     `gorm:"column:id_dep;not null;default:0"`
	TvaAmefID     int     `gorm:"column:id_tva_amef;not null;default:0"`
	NumeGestiune  string  `gorm:"column:nume_gestiune"`
}

func (Produs) TableName() string { return "produse" }

// SGR returns the trimmed deposit code, or "" when the product has none.
func (p *Produs) SGR() string {
	if p.CodSGR == nil {
		return ""
	}
	return strings.TrimSpace(*p.CodSGR)
}

// HasCodSGR reports whether the product carries a non-blank deposit code.
func (p *Produs) HasCodSGR() bool { return p.SGR() != "" }

func (p *Produs) AreImagine() bool {
	return p.ShowImage == 1 && p.CaleImagine != nil && strings.TrimSpace(*p.CaleImagine) != ""
}

func (p *Produs) PretFormatat() string { return p.PretBrut.StringFixed(2) + " RON" }

// Normalize trims the text columns and applies the "buc" fallback for the unit.
func (p *Produs) Normalize() {
	p.Denumire = strings.TrimSpace(p.Denumire)
	p.UnitateMasura = strings.TrimSpace(p.UnitateMasura)
	if p.UnitateMasura == "" {
		p.UnitateMasura = UnitateMasuraImplicita
	}
	if p.CodSGR != nil {
		cod := strings.TrimSpace(*p.CodSGR)
		p.CodSGR = &cod
	}
}
