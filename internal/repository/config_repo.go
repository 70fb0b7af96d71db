package repository

import (
	"context"
	"errors"

	"sysmanager/internal/model"

	"gorm.io/gorm"
)

type ConfigRepository interface {
	// Get returns the settings row the application runs with.
	Get(ctx context.Context) (*model.SmConfig, error)
}

type configRepo struct{ db *gorm.DB }

func NewConfigRepository(db *gorm.DB) ConfigRepository { return &configRepo{db: db} }

func (r *configRepo) Get(ctx context.Context) (*model.SmConfig, error) {
	var c model.SmConfig
	err := r.db.WithContext(ctx).Where("id = ?", model.SmConfigID).First(&c).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}
