package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"itsg33/internal/assessment/models"
	"itsg33/pkg/sentinel"
)

const (
	assessmentKeyPrefix = "itsg33:assessment:"
	assessmentIndexKey  = "itsg33:assessments"
)

// RedisStore persists assessments as JSON values, one key per assessment,
// with a set index for listing. Update runs under WATCH so a concurrent
// writer aborts the transaction, which surfaces as a version conflict.
type RedisStore struct {
	rdb *redis.Client
}

func NewRedisStore(rdb *redis.Client) *RedisStore {
	return &RedisStore{rdb: rdb}
}

func assessmentKey(id uuid.UUID) string {
	return assessmentKeyPrefix + id.String()
}

func (s *RedisStore) Create(ctx context.Context, a *models.Assessment) error {
	data, err := json.Marshal(a)
	if err != nil {
		return fmt.Errorf("marshal assessment: %w", err)
	}
	ok, err := s.rdb.SetNX(ctx, assessmentKey(a.ID), data, 0).Result()
	if err != nil {
		return fmt.Errorf("create assessment: %w", err)
	}
	if !ok {
		return sentinel.ErrConflict
	}
	if err := s.rdb.SAdd(ctx, assessmentIndexKey, a.ID.String()).Err(); err != nil {
		return fmt.Errorf("index assessment: %w", err)
	}
	return nil
}

func (s *RedisStore) Get(ctx context.Context, id uuid.UUID) (*models.Assessment, error) {
	data, err := s.rdb.Get(ctx, assessmentKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("get assessment: %w", err)
	}
	return unmarshalAssessment(data)
}

func (s *RedisStore) Update(ctx context.Context, a *models.Assessment, expectedVersion int) error {
	key := assessmentKey(a.ID)
	next := a.Clone()
	next.Version = expectedVersion + 1
	data, err := json.Marshal(next)
	if err != nil {
		return fmt.Errorf("marshal assessment: %w", err)
	}

	txn := func(tx *redis.Tx) error {
		current, err := tx.Get(ctx, key).Bytes()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				return sentinel.ErrNotFound
			}
			return err
		}
		stored, err := unmarshalAssessment(current)
		if err != nil {
			return err
		}
		if stored.Version != expectedVersion {
			return sentinel.ErrVersionConflict
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, data, 0)
			return nil
		})
		return err
	}

	if err := s.rdb.Watch(ctx, txn, key); err != nil {
		if errors.Is(err, redis.TxFailedErr) {
			return sentinel.ErrVersionConflict
		}
		if errors.Is(err, sentinel.ErrNotFound) || errors.Is(err, sentinel.ErrVersionConflict) {
			return err
		}
		return fmt.Errorf("update assessment: %w", err)
	}
	a.Version = next.Version
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, id uuid.UUID) error {
	removed, err := s.rdb.Del(ctx, assessmentKey(id)).Result()
	if err != nil {
		return fmt.Errorf("delete assessment: %w", err)
	}
	if removed == 0 {
		return sentinel.ErrNotFound
	}
	if err := s.rdb.SRem(ctx, assessmentIndexKey, id.String()).Err(); err != nil {
		return fmt.Errorf("unindex assessment: %w", err)
	}
	return nil
}

func (s *RedisStore) List(ctx context.Context) ([]*models.Assessment, error) {
	ids, err := s.rdb.SMembers(ctx, assessmentIndexKey).Result()
	if err != nil {
		return nil, fmt.Errorf("list assessments: %w", err)
	}
	out := make([]*models.Assessment, 0, len(ids))
	for _, raw := range ids {
		id, err := uuid.Parse(raw)
		if err != nil {
			continue
		}
		a, err := s.Get(ctx, id)
		if errors.Is(err, sentinel.ErrNotFound) {
			// Index entry outlived its key; reap it.
			_ = s.rdb.SRem(ctx, assessmentIndexKey, raw).Err()
			continue
		}
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, nil
}
