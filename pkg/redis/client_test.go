package redis

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

func TestFixedWindowAllow(t *testing.T) {
	ctx := context.Background()
	mock := newMockCmdable()
	client := &Client{store: mock}

	allowed, count, err := client.FixedWindowAllow(ctx, "test-scope", 2, time.Second)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !allowed {
		t.Fatalf("expected allowed on first request")
	}
	if count != 1 {
		t.Fatalf("expected counter 1 got %d", count)
	}
	if len(mock.expireCalls) != 1 {
		t.Fatalf("expected expire for first increment")
	}

	allowed, count, err = client.FixedWindowAllow(ctx, "test-scope", 2, time.Second)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !allowed || count != 2 {
		t.Fatalf("unexpected second call state allowed=%v count=%d", allowed, count)
	}
	if len(mock.expireCalls) != 1 {
		t.Fatalf("expire should not be set again")
	}

	allowed, _, err = client.FixedWindowAllow(ctx, "test-scope", 2, time.Second)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if allowed {
		t.Fatalf("expected limit reached")
	}
}

func TestStateRoundTripAndNil(t *testing.T) {
	ctx := context.Background()
	mock := newMockCmdable()
	client := &Client{store: mock}

	key := client.StateKey("session:abc:guest_cart")
	if err := client.Set(ctx, key, []byte(`[{"product_id":"P1"}]`), time.Hour); err != nil {
		t.Fatalf("set failed: %v", err)
	}
	raw, err := client.GetBytes(ctx, key)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if string(raw) != `[{"product_id":"P1"}]` {
		t.Fatalf("unexpected payload %s", raw)
	}

	if err := client.Del(ctx, key); err != nil {
		t.Fatalf("del failed: %v", err)
	}
	if _, err := client.GetBytes(ctx, key); !IsNil(err) {
		t.Fatalf("expected redis.Nil after delete, got %v", err)
	}
}

func TestPublishUsesNamespacedChannel(t *testing.T) {
	mock := newMockCmdable()
	client := &Client{store: mock}

	if err := client.Publish(context.Background(), "visitor_state", "sess-1"); err != nil {
		t.Fatalf("publish failed: %v", err)
	}
	if len(mock.published) != 1 {
		t.Fatalf("expected one publish, got %d", len(mock.published))
	}
	if mock.published[0].channel != "zq:events:visitor_state" || mock.published[0].message != "sess-1" {
		t.Fatalf("unexpected publish %+v", mock.published[0])
	}
}

func TestSubscribeRequiresLiveConnection(t *testing.T) {
	client := &Client{store: newMockCmdable()}
	if _, err := client.Subscribe(context.Background(), "visitor_state"); err == nil {
		t.Fatal("expected error without a raw connection")
	}
}

func TestUninitializedClientErrors(t *testing.T) {
	client := &Client{}
	if err := client.Ping(context.Background()); err == nil {
		t.Fatal("expected ping error")
	}
	if _, err := client.GetBytes(context.Background(), "k"); err == nil {
		t.Fatal("expected get error")
	}
}

type mockCmdable struct {
	data        map[string]string
	incr        map[string]int64
	expireCalls []expireCall
	published   []publishCall
}

type publishCall struct {
	channel string
	message string
}

type expireCall struct {
	key string
	ttl time.Duration
}

func newMockCmdable() *mockCmdable {
	return &mockCmdable{
		data: make(map[string]string),
		incr: make(map[string]int64),
	}
}

func (m *mockCmdable) Ping(context.Context) *redis.StatusCmd {
	return redis.NewStatusResult("PONG", nil)
}

func (m *mockCmdable) Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd {
	if b, ok := value.([]byte); ok {
		m.data[key] = string(b)
		return redis.NewStatusResult("OK", nil)
	}
	m.data[key] = fmt.Sprint(value)
	return redis.NewStatusResult("OK", nil)
}

func (m *mockCmdable) Get(ctx context.Context, key string) *redis.StringCmd {
	v, ok := m.data[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(v, nil)
}

func (m *mockCmdable) SetNX(ctx context.Context, key string, value any, expiration time.Duration) *redis.BoolCmd {
	if _, exists := m.data[key]; exists {
		return redis.NewBoolResult(false, nil)
	}
	m.data[key] = fmt.Sprint(value)
	return redis.NewBoolResult(true, nil)
}

func (m *mockCmdable) Incr(ctx context.Context, key string) *redis.IntCmd {
	m.incr[key]++
	return redis.NewIntResult(m.incr[key], nil)
}

func (m *mockCmdable) Expire(ctx context.Context, key string, expiration time.Duration) *redis.BoolCmd {
	m.expireCalls = append(m.expireCalls, expireCall{key: key, ttl: expiration})
	return redis.NewBoolResult(true, nil)
}

func (m *mockCmdable) Del(ctx context.Context, keys ...string) *redis.IntCmd {
	for _, key := range keys {
		delete(m.data, key)
	}
	return redis.NewIntResult(int64(len(keys)), nil)
}

func (m *mockCmdable) Publish(ctx context.Context, channel string, message any) *redis.IntCmd {
	m.published = append(m.published, publishCall{channel: channel, message: fmt.Sprint(message)})
	return redis.NewIntResult(1, nil)
}
