package repository

import (
	"context"
	"errors"
	"fmt"

	"sysmanager/internal/model"

	"gorm.io/gorm"
)

// BonAsteptareRepository stores parked receipts.
type BonAsteptareRepository interface {
	// Save writes the header and all details atomically and returns the new id.
	Save(ctx context.Context, b *model.BonAsteptare) (int, error)
	// ListPending returns headers with status ASTEPTARE, newest first. Details are not loaded.
	ListPending(ctx context.Context) ([]model.BonAsteptare, error)
	// LoadFull returns the header with its details ordered by detail id.
	LoadFull(ctx context.Context, id int) (*model.BonAsteptare, error)
	Delete(ctx context.Context, id int) error
	MarkClosed(ctx context.Context, id int) error
}

type bonAsteptareRepo struct{ db *gorm.DB }

func NewBonAsteptareRepository(db *gorm.DB) BonAsteptareRepository {
	return &bonAsteptareRepo{db: db}
}

func (r *bonAsteptareRepo) Save(ctx context.Context, b *model.BonAsteptare) (int, error) {
	if b.Status == "" {
		b.Status = model.StatusAsteptare
	}
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Detalii").Create(b).Error; err != nil {
			return fmt.Errorf("antet bon: %w", err)
		}
		if len(b.Detalii) == 0 {
			return nil
		}
		for i := range b.Detalii {
			b.Detalii[i].ID = 0
			b.Detalii[i].IDBonAsteptare = b.ID
		}
		if err := tx.Create(&b.Detalii).Error; err != nil {
			return fmt.Errorf("detalii bon: %w", err)
		}
		return nil
	})
	if err != nil {
		b.ID = 0
		return 0, err
	}
	return b.ID, nil
}

func (r *bonAsteptareRepo) ListPending(ctx context.Context) ([]model.BonAsteptare, error) {
	var bonuri []model.BonAsteptare
	err := r.db.WithContext(ctx).
		Where("status = ?", model.StatusAsteptare).
		Order("data_creare DESC").
		Find(&bonuri).Error
	return bonuri, err
}

func (r *bonAsteptareRepo) LoadFull(ctx context.Context, id int) (*model.BonAsteptare, error) {
	var b model.BonAsteptare
	err := r.db.WithContext(ctx).
		Preload("Detalii", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		First(&b, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("bon în așteptare %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// Delete removes the header; details go with it through ON DELETE CASCADE.
func (r *bonAsteptareRepo) Delete(ctx context.Context, id int) error {
	res := r.db.WithContext(ctx).Delete(&model.BonAsteptare{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("bon în așteptare %d: %w", id, ErrNotFound)
	}
	return nil
}

func (r *bonAsteptareRepo) MarkClosed(ctx context.Context, id int) error {
	res := r.db.WithContext(ctx).Model(&model.BonAsteptare{}).
		Where("id = ?", id).
		Update("status", model.StatusInchis)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("bon în așteptare %d: %w", id, ErrNotFound)
	}
	return nil
}
