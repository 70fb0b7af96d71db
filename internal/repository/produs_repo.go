package repository

import (
	"context"
	"errors"
	"fmt"

	"sysmanager/internal/model"

	"gorm.io/gorm"
)

// ProdusRepository reads the product catalog. The receipt core only needs
// FindProdus; the rest backs the product search endpoint.
type ProdusRepository interface {
	FindByID(ctx context.Context, id int) (*model.Produs, error)
	// FindProdus satisfies bon.ProductLookup.
	FindProdus(id int) (*model.Produs, error)
	Search(ctx context.Context, denumire string, limit int) ([]model.Produs, error)
	DB() *gorm.DB
}

type produsRepo struct{ db *gorm.DB }

func NewProdusRepository(db *gorm.DB) ProdusRepository { return &produsRepo{db: db} }

func (r *produsRepo) DB() *gorm.DB { return r.db }

func (r *produsRepo) FindByID(ctx context.Context, id int) (*model.Produs, error) {
	var p model.Produs
	err := r.db.WithContext(ctx).First(&p, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("produs %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	p.Normalize()
	return &p, nil
}

func (r *produsRepo) FindProdus(id int) (*model.Produs, error) {
	return r.FindByID(context.Background(), id)
}

func (r *produsRepo) Search(ctx context.Context, denumire string, limit int) ([]model.Produs, error) {
	if limit <= 0 {
		limit = 50
	}
	var produse []model.Produs
	q := r.db.WithContext(ctx).Model(&model.Produs{})
	if denumire != "" {
		q = q.Where("denumire ILIKE ?", "%"+denumire+"%")
	}
	if err := q.Order("denumire ASC").Limit(limit).Find(&produse).Error; err != nil {
		return nil, err
	}
	for i := range produse {
		produse[i].Normalize()
	}
	return produse, nil
}
