package model

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ZecimaleCantitate is the scale of bonuri_asteptare_detalii.cantitate.
// A quantity with more decimals would be rounded when parked.
const ZecimaleCantitate = 3

// CantitateStocabila reports whether q survives the stored scale unchanged.
func CantitateStocabila(q decimal.Decimal) bool {
	return q.Equal(q.Truncate(ZecimaleCantitate))
}

// Status values of a held receipt.
const (
	StatusAsteptare = "ASTEPTARE"
	StatusInchis    = "INCHIS"
)

// BonAsteptare is a parked receipt. Once written it is never edited; resuming
// it replays the lines into a fresh cart and deletes the row.
type BonAsteptare struct {
	ID           int             `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	NrBon        string          `gorm:"column:nr_bon;not null" json:"nr_bon"`
	DataCreare   time.Time       `gorm:"column:data_creare;not null;index" json:"data_creare"`
	IDUtilizator int             `gorm:"column:id_utilizator;not null" json:"id_utilizator"`
	IDGestiune   int             `gorm:"column:id_gestiune;not null" json:"id_gestiune"`
	Total        decimal.Decimal `gorm:"column:total;type:decimal(12,2);not null" json:"total"`
	Observatii   *string         `gorm:"column:observatii" json:"observatii,omitempty"`
	NumeClient   *string         `gorm:"column:nume_client" json:"nume_client,omitempty"`
	Status       string          `gorm:"column:status;type:varchar(20);not null;default:'ASTEPTARE'" json:"status"`

	Detalii []BonAsteptareDetaliu `gorm:"foreignKey:IDBonAsteptare;constraint:OnDelete:CASCADE" json:"detalii"`
}

func (BonAsteptare) TableName() string { return "bonuri_asteptare" }

func (b *BonAsteptare) DisplayText() string {
	return fmt.Sprintf("BON #%s - %s LEI", b.NrBon, b.Total.StringFixed(2))
}

func (b *BonAsteptare) DisplayInfo() string {
	client := "Client necunoscut"
	if b.NumeClient != nil && *b.NumeClient != "" {
		client = *b.NumeClient
	}
	return fmt.Sprintf("%s | %s", client, b.DataCreare.Format("02.01.2006 15:04"))
}

// CountGarantii returns how many detail rows are deposit guarantee lines.
func (b *BonAsteptare) CountGarantii() int {
	n := 0
	for _, d := range b.Detalii {
		if d.EsteGarantie {
			n++
		}
	}
	return n
}

// BonAsteptareDetaliu is one line of a parked receipt.
// EsteGarantie is stored as a smallint discriminator (0/1) in este_garantie.
type BonAsteptareDetaliu struct {
	ID             int             `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	IDBonAsteptare int             `gorm:"column:id_bon_asteptare;not null;index" json:"id_bon_asteptare"`
	IDProdus       int             `gorm:"column:id_produs;not null" json:"id_produs"`
	DenumireProdus string          `gorm:"column:denumire_produs;not null" json:"denumire_produs"`
	Cantitate      decimal.Decimal `gorm:"column:cantitate;type:decimal(12,3);not null" json:"cantitate"`
	PretUnitar     decimal.Decimal `gorm:"column:pret_unitar;type:decimal(12,2);not null" json:"pret_unitar"`
	Valoare        decimal.Decimal `gorm:"column:valoare;type:decimal(12,2);not null" json:"valoare"`
	EsteGarantie   bool            `gorm:"-" json:"este_garantie"`

	EsteGarantieFlag *int16 `gorm:"column:este_garantie" json:"-"`
}

func (BonAsteptareDetaliu) TableName() string { return "bonuri_asteptare_detalii" }

func (d *BonAsteptareDetaliu) BeforeSave(_ *gorm.DB) error {
	var flag int16
	if d.EsteGarantie {
		flag = 1
	}
	d.EsteGarantieFlag = &flag
	return nil
}

// AfterFind re-derives EsteGarantie; rows written before the column existed are NULL.
func (d *BonAsteptareDetaliu) AfterFind(_ *gorm.DB) error {
	d.EsteGarantie = d.EsteGarantieFlag != nil && *d.EsteGarantieFlag == 1
	return nil
}
