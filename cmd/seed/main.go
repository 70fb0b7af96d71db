// cmd/seed/main.go: upserts the sm_config row and a small demo catalog.
// Usage: go run ./cmd/seed -sgr=true
package main

import (
	"context"
	"flag"

	"sysmanager/internal/config"
	"sysmanager/internal/infra"
	"sysmanager/internal/model"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

func main() {
	sgr := flag.Bool("sgr", true, "enable deposit guarantee lines")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	db, err := infra.NewDatabase(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to postgres")
	}

	enabled := int16(-1)
	if *sgr {
		enabled = 1
	}
	err = db.WithContext(context.Background()).Transaction(func(tx *gorm.DB) error {
		smCfg := model.SmConfig{ID: model.SmConfigID, EnabledSGR: enabled}
		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{"enabled_sgr"}),
		}).Create(&smCfg).Error; err != nil {
			return err
		}
		return tx.Clauses(clause.OnConflict{UpdateAll: true}).Create(demoCatalog()).Error
	})
	if err != nil {
		log.Fatal().Err(err).Msg("seed failed")
	}
	log.Info().Bool("sgr", *sgr).Msg("sm_config and demo catalog seeded")
}

func demoCatalog() *[]model.Produs {
	garantie := "900"
	tva := decimal.RequireFromString("19")
	return &[]model.Produs{
		{ID: 900, Denumire: "Garantie SGR", PretBrut: decimal.RequireFromString("0.50"), UnitateMasura: "buc"},
		{ID: 101, Denumire: "Apa plata 2L", PretBrut: decimal.RequireFromString("3.20"), ProcentTva: tva,
			ValoareTva: decimal.RequireFromString("0.5109"), CodSGR: &garantie, UnitateMasura: "buc"},
		{ID: 102, Denumire: "Bere 0.5L", PretBrut: decimal.RequireFromString("4.50"), ProcentTva: tva,
			ValoareTva: decimal.RequireFromString("0.7185"), CodSGR: &garantie, UnitateMasura: "buc"},
		{ID: 103, Denumire: "Paine alba", PretBrut: decimal.RequireFromString("4.00"),
			ProcentTva: decimal.RequireFromString("9"), ValoareTva: decimal.RequireFromString("0.3303"), UnitateMasura: "buc"},
		{ID: 104, Denumire: "Cafea macinata", PretBrut: decimal.RequireFromString("27.90"), ProcentTva: tva,
			ValoareTva: decimal.RequireFromString("4.4546"), UnitateMasura: "kg"},
	}
}
