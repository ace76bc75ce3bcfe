package history

import (
	"bytes"
	"context"
	"encoding/gob"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/laittg/chainable/pkg/api"
)

// RedisStore is a RunStore backed by Redis.
// It uses a simple key structure:
//
//	<prefix>run:<id>              => gob-encoded redisRunPayload
//	<prefix>idx:all               => SET of all run IDs
//	<prefix>idx:chain:<name>      => SET of run IDs for a given chain
//	<prefix>idx:status:<status>   => SET of run IDs for a given status
//
// The indexes are best-effort; they are always updated on SaveRun, and
// ListRuns uses set operations for filtering.
type RedisStore struct {
	client *redis.Client
	prefix string
}

var _ api.RunStore = (*RedisStore)(nil)

type redisRunPayload struct {
	ID         string
	Chain      string
	Status     string
	Tasks      int
	Results    []byte
	Error      string
	StartedAt  int64 // unix nanoseconds
	FinishedAt int64
}

// NewRedisStore creates a RedisStore.
// prefix is optional but recommended (e.g. "chainable:").
func NewRedisStore(client *redis.Client, prefix string) *RedisStore {
	if prefix == "" {
		prefix = "chainable:"
	}
	return &RedisStore{
		client: client,
		prefix: prefix,
	}
}

func (s *RedisStore) keyRun(id string) string {
	return s.prefix + "run:" + id
}

func (s *RedisStore) keyAll() string {
	return s.prefix + "idx:all"
}

func (s *RedisStore) keyChain(name string) string {
	return s.prefix + "idx:chain:" + name
}

func (s *RedisStore) keyStatus(status api.Status) string {
	return s.prefix + "idx:status:" + string(status)
}

func encodeRedisPayload(rec *api.RunRecord) ([]byte, error) {
	results, err := encodeResults(rec.Results)
	if err != nil {
		return nil, err
	}

	payload := redisRunPayload{
		ID:         rec.ID,
		Chain:      rec.Chain,
		Status:     string(rec.Status),
		Tasks:      rec.Tasks,
		Results:    results,
		Error:      rec.Error,
		StartedAt:  rec.StartedAt.UnixNano(),
		FinishedAt: rec.FinishedAt.UnixNano(),
	}

	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(&payload); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func decodeRedisPayload(data []byte) (*api.RunRecord, error) {
	if len(data) == 0 {
		return nil, api.ErrRunNotFound
	}
	var payload redisRunPayload
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&payload); err != nil {
		return nil, err
	}

	results, err := decodeResults(payload.Results)
	if err != nil {
		return nil, err
	}

	return &api.RunRecord{
		ID:         payload.ID,
		Chain:      payload.Chain,
		Status:     api.Status(payload.Status),
		Tasks:      payload.Tasks,
		Results:    results,
		Error:      payload.Error,
		StartedAt:  time.Unix(0, payload.StartedAt),
		FinishedAt: time.Unix(0, payload.FinishedAt),
	}, nil
}

func (s *RedisStore) SaveRun(rec *api.RunRecord) error {
	ctx := context.Background()

	data, err := encodeRedisPayload(rec)
	if err != nil {
		return err
	}

	// Set payload
	if err := s.client.Set(ctx, s.keyRun(rec.ID), data, 0).Err(); err != nil {
		return err
	}

	// Update indexes (best-effort; we don't treat index failures as fatal)
	pipe := s.client.TxPipeline()
	pipe.SAdd(ctx, s.keyAll(), rec.ID)
	pipe.SAdd(ctx, s.keyChain(rec.Chain), rec.ID)
	pipe.SAdd(ctx, s.keyStatus(rec.Status), rec.ID)
	_, _ = pipe.Exec(ctx)

	return nil
}

func (s *RedisStore) GetRun(id string) (*api.RunRecord, error) {
	ctx := context.Background()

	data, err := s.client.Get(ctx, s.keyRun(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, api.ErrRunNotFound
		}
		return nil, err
	}
	return decodeRedisPayload(data)
}

func (s *RedisStore) ListRuns(filter api.RunFilter) ([]*api.RunRecord, error) {
	ctx := context.Background()

	var ids []string
	var err error

	switch {
	case filter.Chain != "" && filter.Status != "":
		ids, err = s.client.SInter(ctx,
			s.keyChain(filter.Chain),
			s.keyStatus(filter.Status),
		).Result()
	case filter.Chain != "":
		ids, err = s.client.SMembers(ctx, s.keyChain(filter.Chain)).Result()
	case filter.Status != "":
		ids, err = s.client.SMembers(ctx, s.keyStatus(filter.Status)).Result()
	default:
		ids, err = s.client.SMembers(ctx, s.keyAll()).Result()
	}

	if err != nil {
		if errors.Is(err, redis.Nil) {
			return []*api.RunRecord{}, nil
		}
		return nil, err
	}
	if len(ids) == 0 {
		return []*api.RunRecord{}, nil
	}

	pipe := s.client.Pipeline()
	cmds := make([]*redis.StringCmd, len(ids))
	for i, id := range ids {
		cmds[i] = pipe.Get(ctx, s.keyRun(id))
	}
	if _, err := pipe.Exec(ctx); err != nil && !errors.Is(err, redis.Nil) {
		return nil, err
	}

	var records []*api.RunRecord
	for _, cmd := range cmds {
		data, err := cmd.Bytes()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				continue
			}
			return nil, err
		}
		rec, err := decodeRedisPayload(data)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}

	return records, nil
}
