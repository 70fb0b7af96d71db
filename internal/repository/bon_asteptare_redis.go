package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"sysmanager/internal/model"

	"github.com/redis/go-redis/v9"
)

const (
	redisBonSeqKey     = "bonuri_asteptare:seq"
	redisBonPendingKey = "bonuri_asteptare:pending"
)

func redisBonKey(id int) string { return "bon_asteptare:" + strconv.Itoa(id) }

// redisBonAsteptareRepo keeps each parked receipt as one JSON document and
// indexes pending ones in a sorted set scored by creation time.
type redisBonAsteptareRepo struct{ rdb *redis.Client }

// NewRedisBonAsteptareRepository is the alternate store selected with HELD_STORE=redis.
func NewRedisBonAsteptareRepository(rdb *redis.Client) BonAsteptareRepository {
	return &redisBonAsteptareRepo{rdb: rdb}
}

func (r *redisBonAsteptareRepo) Save(ctx context.Context, b *model.BonAsteptare) (int, error) {
	id, err := r.rdb.Incr(ctx, redisBonSeqKey).Result()
	if err != nil {
		return 0, fmt.Errorf("secventa bon: %w", err)
	}

	cp := *b
	cp.ID = int(id)
	if cp.Status == "" {
		cp.Status = model.StatusAsteptare
	}
	cp.Detalii = make([]model.BonAsteptareDetaliu, len(b.Detalii))
	for i, d := range b.Detalii {
		d.ID = i + 1
		d.IDBonAsteptare = cp.ID
		cp.Detalii[i] = d
	}

	payload, err := json.Marshal(&cp)
	if err != nil {
		return 0, err
	}

	_, err = r.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, redisBonKey(cp.ID), payload, 0)
		pipe.ZAdd(ctx, redisBonPendingKey, redis.Z{
			Score:  float64(cp.DataCreare.UnixNano()),
			Member: cp.ID,
		})
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("salvare bon: %w", err)
	}

	*b = cp
	return cp.ID, nil
}

func (r *redisBonAsteptareRepo) ListPending(ctx context.Context) ([]model.BonAsteptare, error) {
	ids, err := r.rdb.ZRevRange(ctx, redisBonPendingKey, 0, -1).Result()
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return []model.BonAsteptare{}, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = "bon_asteptare:" + id
	}
	vals, err := r.rdb.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, err
	}

	out := make([]model.BonAsteptare, 0, len(vals))
	for _, v := range vals {
		s, ok := v.(string)
		if !ok {
			// index entry without a document
			continue
		}
		var b model.BonAsteptare
		if err := json.Unmarshal([]byte(s), &b); err != nil {
			return nil, err
		}
		if b.Status != model.StatusAsteptare {
			continue
		}
		b.Detalii = nil
		out = append(out, b)
	}
	return out, nil
}

func (r *redisBonAsteptareRepo) LoadFull(ctx context.Context, id int) (*model.BonAsteptare, error) {
	s, err := r.rdb.Get(ctx, redisBonKey(id)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("bon în așteptare %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	var b model.BonAsteptare
	if err := json.Unmarshal([]byte(s), &b); err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *redisBonAsteptareRepo) Delete(ctx context.Context, id int) error {
	var del *redis.IntCmd
	_, err := r.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		del = pipe.Del(ctx, redisBonKey(id))
		pipe.ZRem(ctx, redisBonPendingKey, id)
		return nil
	})
	if err != nil {
		return err
	}
	if del.Val() == 0 {
		return fmt.Errorf("bon în așteptare %d: %w", id, ErrNotFound)
	}
	return nil
}

func (r *redisBonAsteptareRepo) MarkClosed(ctx context.Context, id int) error {
	b, err := r.LoadFull(ctx, id)
	if err != nil {
		return err
	}
	b.Status = model.StatusInchis
	payload, err := json.Marshal(b)
	if err != nil {
		return err
	}
	_, err = r.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, redisBonKey(id), payload, 0)
		pipe.ZRem(ctx, redisBonPendingKey, id)
		return nil
	})
	return err
}
