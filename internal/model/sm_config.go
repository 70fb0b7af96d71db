package model

import "fmt"

// SmConfigID is the only row the application reads from sm_config.
const SmConfigID = 1

// SmConfig holds the general settings of the point of sale (table sm_config).
// Flags are tri-state shorts: 1 = on, anything else (usually -1) = off.
type SmConfig struct {
	ID                       int16   `gorm:"column:id;primaryKey"`
	ImprimantaNota           *string `gorm:"column:imprimanta_nota"`
	EnabledSound             *int16  `gorm:"column:enabled_sound"`
	SellNegativeStock        *int16  `gorm:"column:sell_negative_stock"`
	CumuleazaArticoleVandute *int16  `gorm:"column:cumuleaza_articole_vandute"`
	DelComNotaPrint          *int    `gorm:"column:del_com_nota_print"`
	ImprimantaImplicita      *string `gorm:"column:imprimanta_implicita"`
	ImprimantaImplicitaNota  *string `gorm:"column:imprimanta_implicita_nota"`
	// EnabledSGR decides whether deposit guarantee lines are added automatically.
	EnabledSGR int16 `gorm:"column:enabled_sgr;not null"`
}

func (SmConfig) TableName() string { return "sm_config" }

// flagOn treats a missing column as enabled, which is what the loader did for
// the nullable flags.
func flagOn(v *int16) bool { return v == nil || *v == 1 }

func (c *SmConfig) IsSGREnabled() bool            { return c.EnabledSGR == 1 }
func (c *SmConfig) IsSoundEnabled() bool          { return flagOn(c.EnabledSound) }
func (c *SmConfig) CanSellNegativeStock() bool    { return flagOn(c.SellNegativeStock) }
func (c *SmConfig) ShouldCumuleazaArticole() bool { return flagOn(c.CumuleazaArticoleVandute) }

func (c *SmConfig) DelComNota() int {
	if c.DelComNotaPrint == nil {
		return 0
	}
	return *c.DelComNotaPrint
}

func (c *SmConfig) String() string {
	onOff := func(b bool, yes, no string) string {
		if b {
			return yes
		}
		return no
	}
	return fmt.Sprintf("SmConfig[Id=%d, SGR=%s, Sound=%s, NegativeStock=%s]",
		c.ID,
		onOff(c.IsSGREnabled(), "ENABLED", "DISABLED"),
		onOff(c.IsSoundEnabled(), "ON", "OFF"),
		onOff(c.CanSellNegativeStock(), "YES", "NO"),
	)
}
