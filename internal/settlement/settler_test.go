package settlement

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/oggyb/sms-gateway/internal/cache"
	"github.com/oggyb/sms-gateway/internal/domain/message"
	"github.com/oggyb/sms-gateway/internal/worker"
	"github.com/rs/zerolog"
)

// fakeCache implements cache.Cache over in-memory maps.
type fakeCache struct {
	kv    map[string]string
	lists map[string][]string
}

func newFakeCache() *fakeCache {
	return &fakeCache{kv: map[string]string{}, lists: map[string][]string{}}
}

func (f *fakeCache) Ping(ctx context.Context) error { return nil }
func (f *fakeCache) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	f.kv[key] = value
	return nil
}
func (f *fakeCache) Get(ctx context.Context, key string) (string, error) {
	v, ok := f.kv[key]
	if !ok {
		return "", errors.New("not found")
	}
	return v, nil
}
func (f *fakeCache) Del(ctx context.Context, key string) error {
	delete(f.kv, key)
	return nil
}
func (f *fakeCache) Incr(ctx context.Context, key string) (int64, error) { return 0, nil }
func (f *fakeCache) Decr(ctx context.Context, key string) (int64, error) { return 0, nil }
func (f *fakeCache) SetNX(ctx context.Context, key, value string, ttl time.Duration) (bool, error) {
	if _, ok := f.kv[key]; ok {
		return false, nil
	}
	f.kv[key] = value
	return true, nil
}
func (f *fakeCache) LPush(ctx context.Context, key, value string) error {
	f.lists[key] = append([]string{value}, f.lists[key]...)
	return nil
}
func (f *fakeCache) RPop(ctx context.Context, key string) (string, error) {
	l := f.lists[key]
	if len(l) == 0 {
		return "", nil
	}
	v := l[len(l)-1]
	f.lists[key] = l[:len(l)-1]
	return v, nil
}

var _ cache.Cache = (*fakeCache)(nil)

// fakeMessageRepo records each BatchUpdateStatus call.
type batchCall struct {
	sent   []uuid.UUID
	failed []uuid.UUID
	sentAt time.Time
}

type fakeMessageRepo struct {
	calls []batchCall
}

func (f *fakeMessageRepo) Insert(ctx context.Context, m *message.Message) error { return nil }
func (f *fakeMessageRepo) Get(ctx context.Context, tenantID, id uuid.UUID) (*message.Message, error) {
	return nil, errors.New("not found")
}
func (f *fakeMessageRepo) GetByID(ctx context.Context, id uuid.UUID) (*message.Message, error) {
	return nil, errors.New("not found")
}
func (f *fakeMessageRepo) ListByTenant(ctx context.Context, tenantID uuid.UUID, filter message.ListFilter) ([]*message.Message, int64, error) {
	return nil, 0, nil
}
func (f *fakeMessageRepo) BatchUpdateStatus(ctx context.Context, sentIDs, failedIDs []uuid.UUID, sentAt time.Time) error {
	f.calls = append(f.calls, batchCall{sent: sentIDs, failed: failedIDs, sentAt: sentAt})
	return nil
}

var _ message.Repository = (*fakeMessageRepo)(nil)

func pushOutcome(t *testing.T, c *fakeCache, id uuid.UUID, sent bool, at time.Time) {
	t.Helper()
	data, err := json.Marshal(worker.Outcome{MessageID: id.String(), Sent: sent, At: at})
	if err != nil {
		t.Fatalf("marshal outcome: %v", err)
	}
	if err := c.LPush(context.Background(), string(cache.SettlementBuffer), string(data)); err != nil {
		t.Fatalf("push outcome: %v", err)
	}
}

func TestSettler_ProcessBatch_PartitionsOutcomes(t *testing.T) {
	c := newFakeCache()
	repo := &fakeMessageRepo{}
	s := New(repo, c, zerolog.Nop(), 100, time.Second)

	sentID, failedID := uuid.New(), uuid.New()
	earliest := time.Now().Add(-2 * time.Second)
	pushOutcome(t, c, sentID, true, time.Now())
	pushOutcome(t, c, failedID, false, time.Now())
	pushOutcome(t, c, uuid.New(), true, earliest)

	if err := s.ProcessBatch(context.Background()); err != nil {
		t.Fatalf("ProcessBatch returned error: %v", err)
	}

	if len(repo.calls) != 1 {
		t.Fatalf("BatchUpdateStatus called %d times, want 1", len(repo.calls))
	}
	call := repo.calls[0]
	if len(call.sent) != 2 || len(call.failed) != 1 {
		t.Fatalf("batch = %d sent / %d failed, want 2/1", len(call.sent), len(call.failed))
	}
	if call.failed[0] != failedID {
		t.Fatalf("failed ids = %v, want [%s]", call.failed, failedID)
	}
	if !call.sentAt.Equal(earliest) {
		t.Fatalf("batch sent_at = %v, want earliest outcome timestamp %v", call.sentAt, earliest)
	}
}

func TestSettler_ProcessBatch_EmptyBufferIsNoOp(t *testing.T) {
	repo := &fakeMessageRepo{}
	s := New(repo, newFakeCache(), zerolog.Nop(), 100, time.Second)

	if err := s.ProcessBatch(context.Background()); err != nil {
		t.Fatalf("ProcessBatch returned error: %v", err)
	}
	if len(repo.calls) != 0 {
		t.Fatalf("BatchUpdateStatus called on an empty buffer")
	}
}

func TestSettler_ProcessBatch_SkipsWhenLockHeld(t *testing.T) {
	c := newFakeCache()
	repo := &fakeMessageRepo{}
	s := New(repo, c, zerolog.Nop(), 100, time.Second)

	// Another settler instance holds the tick lock.
	c.kv[cache.SettlerLock.Key("tick")] = "someone-else"
	pushOutcome(t, c, uuid.New(), true, time.Now())

	if err := s.ProcessBatch(context.Background()); err != nil {
		t.Fatalf("ProcessBatch returned error: %v", err)
	}
	if len(repo.calls) != 0 {
		t.Fatalf("batch applied while the lock was held elsewhere")
	}
	if len(c.lists[string(cache.SettlementBuffer)]) != 1 {
		t.Fatalf("buffer drained while the lock was held elsewhere")
	}
}

func TestSettler_ProcessBatch_HonorsBatchSize(t *testing.T) {
	c := newFakeCache()
	repo := &fakeMessageRepo{}
	s := New(repo, c, zerolog.Nop(), 2, time.Second)

	for i := 0; i < 5; i++ {
		pushOutcome(t, c, uuid.New(), true, time.Now())
	}

	if err := s.ProcessBatch(context.Background()); err != nil {
		t.Fatalf("ProcessBatch returned error: %v", err)
	}
	if n := len(repo.calls[0].sent); n != 2 {
		t.Fatalf("settled %d outcomes in one tick, want the batch-size bound 2", n)
	}
	if left := len(c.lists[string(cache.SettlementBuffer)]); left != 3 {
		t.Fatalf("%d outcomes left buffered, want 3", left)
	}
}
