package dto

import (
	"sysmanager/internal/bon"
	"sysmanager/internal/model"

	"github.com/shopspring/decimal"
)

// ─── Request DTOs ────────────────────────────────────────────────────────────

// AdaugaProdusRequest adds a catalog product to the terminal's receipt.
// A missing cantitate means one unit.
type AdaugaProdusRequest struct {
	IDProdus  int             `json:"id_produs" validate:"required,min=1"`
	Cantitate decimal.Decimal `json:"cantitate" validate:"omitempty,gt=0"`
}

// DeltaRequest is the body of the increment/decrement endpoints; missing delta means 1.
type DeltaRequest struct {
	Delta decimal.Decimal `json:"delta" validate:"omitempty,gt=0"`
}

// SetCantitateRequest sets an absolute quantity; zero removes the line.
type SetCantitateRequest struct {
	Cantitate decimal.Decimal `json:"cantitate" validate:"min=0"`
}

type HoldBonRequest struct {
	Observatii   *string `json:"observatii"    validate:"omitempty,max=500"`
	NumeClient   *string `json:"nume_client"   validate:"omitempty,max=200"`
	IDUtilizator *int    `json:"id_utilizator" validate:"omitempty,min=1"`
	IDGestiune   *int    `json:"id_gestiune"   validate:"omitempty,min=1"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type LinieBonResponse struct {
	Index                  int             `json:"index"`
	IDProdus               int             `json:"id_produs"`
	Nume                   string          `json:"nume"`
	Cantitate              decimal.Decimal `json:"cantitate"`
	PretBrut               decimal.Decimal `json:"pret_brut"`
	Total                  decimal.Decimal `json:"total"`
	TotalTva               decimal.Decimal `json:"total_tva"`
	UnitateMasura          string          `json:"unitate_masura"`
	CodSGR                 string          `json:"cod_sgr,omitempty"`
	EsteGarantie           bool            `json:"este_garantie"`
	GarantiePentruProdusID *int            `json:"garantie_pentru_produs_id,omitempty"`
}

type BonResponse struct {
	Linii        []LinieBonResponse `json:"linii"`
	Total        decimal.Decimal    `json:"total"`
	TotalTva     decimal.Decimal    `json:"total_tva"`
	TotalFaraTva decimal.Decimal    `json:"total_fara_tva"`
	NrArticole   int                `json:"nr_articole"`
	NrBucati     decimal.Decimal    `json:"nr_bucati"`
	SGRActiv     bool               `json:"sgr_activ"`
	Rezumat      string             `json:"rezumat"`
}

// BonFromManager renders the current state of a receipt.
func BonFromManager(m *bon.Manager) BonResponse {
	items := m.Items()
	linii := make([]LinieBonResponse, len(items))
	for i, it := range items {
		linii[i] = LinieBonResponse{
			Index:                  i,
			IDProdus:               it.IDProdus,
			Nume:                   it.Nume,
			Cantitate:              it.Cantitate(),
			PretBrut:               it.PretBrut(),
			Total:                  it.Total(),
			TotalTva:               it.TotalTva(),
			UnitateMasura:          it.UnitateMasura,
			CodSGR:                 it.CodSGR,
			EsteGarantie:           it.IsGarantie(),
			GarantiePentruProdusID: it.GarantiePentruProdusID,
		}
	}
	return BonResponse{
		Linii:        linii,
		Total:        m.Total(),
		TotalTva:     m.TaxTotal(),
		TotalFaraTva: m.TotalWithoutTax(),
		NrArticole:   m.LineCount(),
		NrBucati:     m.UnitCount(),
		SGRActiv:     m.SGREnabled(),
		Rezumat:      m.Summary(),
	}
}

type ResumeBonResponse struct {
	IDBon                 int         `json:"id_bon"`
	NrBon                 string      `json:"nr_bon"`
	Replayed              int         `json:"linii_reluate"`
	Skipped               int         `json:"linii_ignorate"`
	OmittedGuarantees     int         `json:"garantii_omise"`
	RegeneratedGuarantees int         `json:"garantii_regenerate"`
	Bon                   BonResponse `json:"bon"`
	// SnapshotPastrat is set when some lines could not be replayed and the
	// parked receipt was kept.
	SnapshotPastrat       bool        `json:"bon_pastrat"`
}

type BonAsteptareListItem struct {
	ID         int             `json:"id"`
	NrBon      string          `json:"nr_bon"`
	DataCreare string          `json:"data_creare"`
	Total      decimal.Decimal `json:"total"`
	NumeClient *string         `json:"nume_client,omitempty"`
	Observatii *string         `json:"observatii,omitempty"`
	Text       string          `json:"text"`
	Info       string          `json:"info"`
}

type BonAsteptareResponse struct {
	BonAsteptareListItem
	Status  string                      `json:"status"`
	Detalii []model.BonAsteptareDetaliu `json:"detalii"`
}

func BonAsteptareToListItem(b *model.BonAsteptare) BonAsteptareListItem {
	return BonAsteptareListItem{
		ID:         b.ID,
		NrBon:      b.NrBon,
		DataCreare: b.DataCreare.Format("2006-01-02T15:04:05Z07:00"),
		Total:      b.Total,
		NumeClient: b.NumeClient,
		Observatii: b.Observatii,
		Text:       b.DisplayText(),
		Info:       b.DisplayInfo(),
	}
}

func BonAsteptareToResponse(b *model.BonAsteptare) BonAsteptareResponse {
	detalii := b.Detalii
	if detalii == nil {
		detalii = []model.BonAsteptareDetaliu{}
	}
	return BonAsteptareResponse{
		BonAsteptareListItem: BonAsteptareToListItem(b),
		Status:               b.Status,
		Detalii:              detalii,
	}
}
