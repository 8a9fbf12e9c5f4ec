package chat

import (
	"context"
	"errors"
	"testing"

	"github.com/pskhi/smartstudent/internal/domain"
)

func TestManagerReusesController(t *testing.T) {
	t.Parallel()

	m := NewManager(&stubResponder{reply: &Reply{Text: "ok"}}, &fakeStore{}, &fakeSink{}, Options{})

	first := m.Get(context.Background(), "user-1", "hocsinh_a")
	second := m.Get(context.Background(), "user-1", "hocsinh_a")
	if first != second {
		t.Fatal("expected the same controller for repeated lookups")
	}

	other := m.Get(context.Background(), "user-2", "hocsinh_b")
	if other == first {
		t.Fatal("controllers must be per user")
	}
}

func TestManagerLoadsPersistedHistory(t *testing.T) {
	t.Parallel()

	st := &fakeStore{state: domain.ChatState{
		domain.PersonaFriend: {
			{ID: "m1", Role: domain.RoleUser, Content: "chào cậu"},
		},
	}}
	m := NewManager(&stubResponder{reply: &Reply{Text: "ok"}}, st, &fakeSink{}, Options{})

	c := m.Get(context.Background(), "user-1", "hocsinh_a")
	if err := c.SelectPersona(domain.PersonaFriend); err != nil {
		t.Fatalf("SelectPersona failed: %v", err)
	}
	msgs := c.Messages()
	if len(msgs) != 1 || msgs[0].Content != "chào cậu" {
		t.Fatalf("persisted history not restored: %+v", msgs)
	}
}

func TestManagerLoadFailureStartsEmpty(t *testing.T) {
	t.Parallel()

	st := &fakeStore{loadErr: errors.New("disk gone")}
	m := NewManager(&stubResponder{reply: &Reply{Text: "ok"}}, st, &fakeSink{}, Options{})

	c := m.Get(context.Background(), "user-1", "hocsinh_a")
	if err := c.SelectPersona(domain.PersonaFriend); err != nil {
		t.Fatalf("SelectPersona failed: %v", err)
	}
	if len(c.Messages()) != 0 {
		t.Fatalf("expected empty history after load failure, got %d messages", len(c.Messages()))
	}
}

func TestManagerRemoveCancelsInFlight(t *testing.T) {
	t.Parallel()

	responder := newBlockingResponder(&Reply{Text: "ok"}, nil, true)
	m := NewManager(responder, &fakeStore{}, &fakeSink{}, Options{})

	c := m.Get(context.Background(), "user-1", "hocsinh_a")
	if err := c.SelectPersona(domain.PersonaFriend); err != nil {
		t.Fatalf("SelectPersona failed: %v", err)
	}
	if _, err := c.Send("đang chờ"); err != nil {
		t.Fatalf("Send failed: %v", err)
	}
	<-responder.started

	m.Remove("user-1")

	if c.State() != StateIdle {
		t.Errorf("expected IDLE after eviction, got %s", c.State())
	}
	if fresh := m.Get(context.Background(), "user-1", "hocsinh_a"); fresh == c {
		t.Error("evicted controller must not be reused")
	}
}
