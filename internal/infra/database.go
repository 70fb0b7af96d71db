package infra

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDatabase opens a GORM connection backed by pgx and applies the idempotent
// schema statements the application relies on.
func NewDatabase(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)

	if err := applySchemaPatches(db); err != nil {
		return nil, fmt.Errorf("schema patches: %w", err)
	}
	return db, nil
}

// applySchemaPatches runs DDL guarded by IF NOT EXISTS so re-running it on an
// existing database is a no-op. AutoMigrate is not used: column types and the
// smallint discriminator must match the legacy tables exactly.
func applySchemaPatches(db *gorm.DB) error {
	patches := []struct{ descr, sql string }{
		{"produse", `
CREATE TABLE IF NOT EXISTS produse (
    id              INTEGER       PRIMARY KEY,
    denumire        VARCHAR(200)  NOT NULL,
    valoare_tva     DECIMAL(12,4) NOT NULL DEFAULT 0,
    pret_brut       DECIMAL(12,2) NOT NULL,
    procent_tva     DECIMAL(5,2)  NOT NULL DEFAULT 0,
    cale_imagine    VARCHAR(500),
    show_image      INTEGER       NOT NULL DEFAULT 0,
    tva_id          INTEGER       NOT NULL DEFAULT 0,
    cod_sgr         VARCHAR(20),
    u_masura        VARCHAR(10)   NOT NULL DEFAULT 'buc',
    id_dep          INTEGER       NOT NULL DEFAULT 0,
    id_tva_amef     INTEGER       NOT NULL DEFAULT 0,
    nume_gestiune   VARCHAR(100)
)`},
		{"sm_config", `
CREATE TABLE IF NOT EXISTS sm_config (
    id                          SMALLINT PRIMARY KEY,
    imprimanta_nota             VARCHAR(200),
    enabled_sound               SMALLINT,
    sell_negative_stock         SMALLINT,
    cumuleaza_articole_vandute  SMALLINT,
    del_com_nota_print          INTEGER,
    imprimanta_implicita        VARCHAR(200),
    imprimanta_implicita_nota   VARCHAR(200),
    enabled_sgr                 SMALLINT NOT NULL DEFAULT -1
)`},
		{"bonuri_asteptare", `
CREATE TABLE IF NOT EXISTS bonuri_asteptare (
    id             SERIAL        PRIMARY KEY,
    nr_bon         VARCHAR(30)   NOT NULL,
    data_creare    TIMESTAMPTZ   NOT NULL DEFAULT NOW(),
    id_utilizator  INTEGER       NOT NULL,
    id_gestiune    INTEGER       NOT NULL,
    total          DECIMAL(12,2) NOT NULL,
    observatii     VARCHAR(500),
    nume_client    VARCHAR(200),
    status         VARCHAR(20)   NOT NULL DEFAULT 'ASTEPTARE'
)`},
		{"bonuri_asteptare_detalii", `
CREATE TABLE IF NOT EXISTS bonuri_asteptare_detalii (
    id                SERIAL        PRIMARY KEY,
    id_bon_asteptare  INTEGER       NOT NULL REFERENCES bonuri_asteptare(id) ON DELETE CASCADE,
    id_produs         INTEGER       NOT NULL,
    denumire_produs   VARCHAR(200)  NOT NULL,
    cantitate         DECIMAL(12,3) NOT NULL,
    pret_unitar       DECIMAL(12,2) NOT NULL,
    valoare           DECIMAL(12,2) NOT NULL
)`},
		// older databases predate the guarantee discriminator
		{"bonuri_asteptare_detalii.este_garantie",
			`ALTER TABLE bonuri_asteptare_detalii ADD COLUMN IF NOT EXISTS este_garantie SMALLINT DEFAULT 0`},
		{"idx_bonuri_asteptare_pending",
			`CREATE INDEX IF NOT EXISTS idx_bonuri_asteptare_pending ON bonuri_asteptare (data_creare DESC) WHERE status = 'ASTEPTARE'`},
		{"idx_bonuri_asteptare_detalii_bon",
			`CREATE INDEX IF NOT EXISTS idx_bonuri_asteptare_detalii_bon ON bonuri_asteptare_detalii (id_bon_asteptare)`},
	}

	for _, p := range patches {
		if err := db.Exec(p.sql).Error; err != nil {
			return fmt.Errorf("patch %q: %w", p.descr, err)
		}
	}
	return nil
}

// RunMigrations applies the schema patches; integration tests call it on a
// fresh container.
func RunMigrations(db *gorm.DB) error {
	return applySchemaPatches(db)
}
