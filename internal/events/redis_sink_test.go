package events_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/ignite/audience-hub/internal/domain"
	"github.com/ignite/audience-hub/internal/events"
)

func newRedisSink(t *testing.T, channel string) (*events.RedisSink, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return events.NewRedisSink(client, channel), client
}

func TestRedisSinkPublishesJSON(t *testing.T) {
	sink, client := newRedisSink(t, "")

	sub := client.Subscribe(context.Background(), events.DefaultChannel)
	defer sub.Close()
	if _, err := sub.Receive(context.Background()); err != nil {
		t.Fatalf("subscribe: %v", err)
	}

	m := &domain.Member{ID: "m1", Email: "jane@example.com", Subscribed: true}
	sink.Emit(context.Background(), events.Event{
		Name:       events.MemberAdded,
		Member:     m,
		OccurredAt: time.Now().UTC(),
	})

	select {
	case msg := <-sub.Channel():
		var got events.Event
		if err := json.Unmarshal([]byte(msg.Payload), &got); err != nil {
			t.Fatalf("payload is not JSON: %v", err)
		}
		if got.Name != events.MemberAdded {
			t.Errorf("event name = %q, want %q", got.Name, events.MemberAdded)
		}
		if got.Member == nil || got.Member.ID != "m1" {
			t.Errorf("event member = %+v, want m1 snapshot", got.Member)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no message published")
	}
}

func TestRedisSinkCustomChannel(t *testing.T) {
	sink, client := newRedisSink(t, "custom.events")

	sub := client.Subscribe(context.Background(), "custom.events")
	defer sub.Close()
	if _, err := sub.Receive(context.Background()); err != nil {
		t.Fatalf("subscribe: %v", err)
	}

	sink.Emit(context.Background(), events.Event{Name: events.MemberDeleted, OccurredAt: time.Now().UTC()})

	select {
	case msg := <-sub.Channel():
		if msg.Channel != "custom.events" {
			t.Errorf("channel = %q, want custom.events", msg.Channel)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no message published")
	}
}

func TestRedisSinkSwallowsOutage(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()
	sink := events.NewRedisSink(client, "")

	mr.Close()

	// Must not panic or block; the member write that triggered the event
	// already committed.
	sink.Emit(context.Background(), events.Event{Name: events.MemberEdited, OccurredAt: time.Now().UTC()})
}
