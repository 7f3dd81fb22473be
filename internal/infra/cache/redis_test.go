package cache

import (
	"context"
	"testing"
	"time"

	"github.com/MRamiBalles/murmur/internal/memory"
)

type memClient struct {
	kv    map[string]string
	lists map[string][]string
	ttl   map[string]time.Duration
}

func newMemClient() *memClient {
	return &memClient{kv: map[string]string{}, lists: map[string][]string{}, ttl: map[string]time.Duration{}}
}

func (m *memClient) Get(_ context.Context, key string) (string, error) {
	v, ok := m.kv[key]
	if !ok {
		return "", ErrMiss
	}
	return v, nil
}

func (m *memClient) Set(_ context.Context, key string, value interface{}, exp time.Duration) error {
	m.kv[key] = value.(string)
	m.ttl[key] = exp
	return nil
}

func (m *memClient) Del(_ context.Context, keys ...string) error {
	for _, k := range keys {
		delete(m.kv, k)
		delete(m.lists, k)
	}
	return nil
}

func (m *memClient) LPush(_ context.Context, key string, values ...interface{}) error {
	for _, v := range values {
		m.lists[key] = append([]string{v.(string)}, m.lists[key]...)
	}
	return nil
}

func (m *memClient) LTrim(_ context.Context, key string, start, stop int64) error {
	l := m.lists[key]
	if stop+1 < int64(len(l)) {
		l = l[:stop+1]
	}
	m.lists[key] = l[start:]
	return nil
}

func (m *memClient) LRange(_ context.Context, key string, start, stop int64) ([]string, error) {
	l := m.lists[key]
	if stop+1 < int64(len(l)) {
		l = l[:stop+1]
	}
	return l[start:], nil
}

func (m *memClient) Expire(_ context.Context, key string, exp time.Duration) error {
	m.ttl[key] = exp
	return nil
}

func TestRecentOpinionsKeepsNewest(t *testing.T) {
	client := newMemClient()
	c := NewRecentOpinions(client, 3)
	ctx := context.Background()

	for i := int64(1); i <= 5; i++ {
		if err := c.Push(ctx, memory.Entry{Owner: 2, Text: "t", Tick: i}); err != nil {
			t.Fatal(err)
		}
	}

	got, err := c.Recent(ctx, 2, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 cached entries, got %d", len(got))
	}
	if got[0].Tick != 5 || got[2].Tick != 3 {
		t.Errorf("expected ticks 5..3, got %d..%d", got[0].Tick, got[2].Tick)
	}
	if client.ttl["murmur:pawn:2:opinions"] != 30*time.Minute {
		t.Error("expected the list to carry an expiration")
	}

	got, _ = c.Recent(ctx, 2, 1)
	if len(got) != 1 || got[0].Tick != 5 {
		t.Errorf("limit not honored: %+v", got)
	}
}

func TestRecentOpinionsInvalidate(t *testing.T) {
	c := NewRecentOpinions(newMemClient(), 0)
	ctx := context.Background()
	_ = c.Push(ctx, memory.Entry{Owner: 9})
	if err := c.Invalidate(ctx, 9); err != nil {
		t.Fatal(err)
	}
	got, err := c.Recent(ctx, 9, 5)
	if err != nil || len(got) != 0 {
		t.Errorf("expected empty cache, got %v %v", got, err)
	}
}

func TestLastRemark(t *testing.T) {
	c := NewLastRemark(newMemClient())
	ctx := context.Background()
	if _, err := c.Get(ctx, 1); err != ErrMiss {
		t.Fatalf("expected miss, got %v", err)
	}
	_ = c.Set(ctx, 1, "Cold in here.")
	if got, _ := c.Get(ctx, 1); got != "Cold in here." {
		t.Errorf("unexpected remark %q", got)
	}
}
