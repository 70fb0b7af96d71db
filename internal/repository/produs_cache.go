package repository

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"sysmanager/internal/infra"
	"sysmanager/internal/model"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// CachedProdusLookup is a read-through Redis cache in front of the catalog.
// Any cache failure falls back to the database; repeated failures open the
// breaker and the cache is skipped until it recovers.
type CachedProdusLookup struct {
	repo ProdusRepository
	rdb  *redis.Client
	ttl  time.Duration
	cb   *infra.CircuitBreaker
}

func NewCachedProdusLookup(repo ProdusRepository, rdb *redis.Client, ttl time.Duration) *CachedProdusLookup {
	return &CachedProdusLookup{
		repo: repo,
		rdb:  rdb,
		ttl:  ttl,
		cb:   infra.NewCircuitBreaker(infra.DefaultCacheCBConfig()),
	}
}

// WithBreaker replaces the breaker guarding the cache.
func (c *CachedProdusLookup) WithBreaker(cb *infra.CircuitBreaker) *CachedProdusLookup {
	c.cb = cb
	return c
}

// CacheState reports the breaker state for the health endpoint.
func (c *CachedProdusLookup) CacheState() string {
	if c.rdb == nil {
		return "disabled"
	}
	return c.cb.State().String()
}

func produsCacheKey(id int) string { return "produs:" + strconv.Itoa(id) }

func isMiss(err error) bool { return errors.Is(err, redis.Nil) }

func (c *CachedProdusLookup) FindByID(ctx context.Context, id int) (*model.Produs, error) {
	if p := c.cached(ctx, id); p != nil {
		return p, nil
	}

	p, err := c.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	c.store(ctx, p)
	return p, nil
}

func (c *CachedProdusLookup) cached(ctx context.Context, id int) *model.Produs {
	if c.rdb == nil {
		return nil
	}
	var s string
	err := c.cb.Execute(func() error {
		var err error
		s, err = c.rdb.Get(ctx, produsCacheKey(id)).Result()
		return err
	}, isMiss)
	switch {
	case err == nil:
		var p model.Produs
		if jerr := json.Unmarshal([]byte(s), &p); jerr == nil {
			return &p
		}
	case isMiss(err), errors.Is(err, infra.ErrCircuitOpen):
	default:
		log.Warn().Err(err).Int("id_produs", id).Msg("cache produse indisponibil")
	}
	return nil
}

func (c *CachedProdusLookup) store(ctx context.Context, p *model.Produs) {
	if c.rdb == nil {
		return
	}
	payload, err := json.Marshal(p)
	if err != nil {
		return
	}
	err = c.cb.Execute(func() error {
		return c.rdb.Set(ctx, produsCacheKey(p.ID), payload, c.ttl).Err()
	}, nil)
	if err != nil && !errors.Is(err, infra.ErrCircuitOpen) {
		log.Warn().Err(err).Int("id_produs", p.ID).Msg("nu s-a putut scrie in cache")
	}
}

// FindProdus satisfies bon.ProductLookup.
func (c *CachedProdusLookup) FindProdus(id int) (*model.Produs, error) {
	return c.FindByID(context.Background(), id)
}

// Invalidate drops the cached copy of a product.
func (c *CachedProdusLookup) Invalidate(ctx context.Context, id int) error {
	if c.rdb == nil {
		return nil
	}
	return c.rdb.Del(ctx, produsCacheKey(id)).Err()
}
