package sessionstore

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/valkey-io/valkey-go"

	"github.com/heliowatt/heliowatt/internal/domain/session"
)

// ValkeyStore persists session input records in a Valkey-compatible database
// so they survive process restarts.
type ValkeyStore struct {
	client valkey.Client
	prefix string
}

// NewValkeyStore constructs a new store backed by Valkey.
func NewValkeyStore(client valkey.Client, prefix string) *ValkeyStore {
	if prefix == "" {
		prefix = "session"
	}
	return &ValkeyStore{client: client, prefix: prefix}
}

func (s *ValkeyStore) Get(ctx context.Context, userID int64) (session.Record, bool, error) {
	if userID <= 0 {
		return session.Record{}, false, nil
	}
	cmd := s.client.B().Get().Key(s.inputsKey(userID)).Build()
	payload, err := s.client.Do(ctx, cmd).ToString()
	if err != nil {
		if valkey.IsValkeyNil(err) {
			return session.Record{}, false, nil
		}
		return session.Record{}, false, err
	}
	var record session.Record
	if err := json.Unmarshal([]byte(payload), &record); err != nil {
		return session.Record{}, false, err
	}
	return record, true, nil
}

func (s *ValkeyStore) Save(ctx context.Context, record session.Record, ttl time.Duration) error {
	payload, err := json.Marshal(record)
	if err != nil {
		return err
	}
	builder := s.client.B().Set().Key(s.inputsKey(record.UserID)).Value(string(payload))
	var cmd valkey.Completed
	if ttl > 0 {
		if ttl < time.Second {
			ttl = time.Second
		}
		cmd = builder.Ex(ttl).Build()
	} else {
		cmd = builder.Build()
	}
	return s.client.Do(ctx, cmd).Error()
}

func (s *ValkeyStore) Delete(ctx context.Context, userID int64) error {
	if userID <= 0 {
		return nil
	}
	cmd := s.client.B().Del().Key(s.inputsKey(userID)).Build()
	return s.client.Do(ctx, cmd).Error()
}

func (s *ValkeyStore) inputsKey(userID int64) string {
	return fmt.Sprintf("%s:inputs:%d", s.prefix, userID)
}

var _ session.Store = (*ValkeyStore)(nil)
