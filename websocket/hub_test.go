package websocket

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/anjiri1684/tutor_connect/models"
	"github.com/anjiri1684/tutor_connect/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeConn struct {
	mu     sync.Mutex
	frames []interface{}
	closed bool
	fail   bool

	// gate, when set, holds every write until the socket is closed.
	gate      chan struct{}
	closeOnce sync.Once
}

func (f *fakeConn) WriteJSON(v interface{}) error {
	if f.gate != nil {
		<-f.gate
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return errors.New("broken pipe")
	}
	f.frames = append(f.frames, v)
	return nil
}

func (f *fakeConn) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	if f.gate != nil {
		f.closeOnce.Do(func() { close(f.gate) })
	}
	return nil
}

func (f *fakeConn) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.frames)
}

func (f *fakeConn) isClosed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}

func startHub(t *testing.T) *Hub {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	h := NewHub()
	go h.Run(ctx)
	return h
}

var conn = models.Connection{ID: "c1", StudentID: "student", TutorID: "tutor"}

func TestHub_MessageGoesToCounterpartOnly(t *testing.T) {
	h := startHub(t)
	studentConn, tutorConn := &fakeConn{}, &fakeConn{}
	h.Register(NewClient("student", studentConn))
	h.Register(NewClient("tutor", tutorConn))

	h.Publish(services.Event{
		Kind:       services.EventMessageAppended,
		Connection: conn,
		Message:    &models.ChatMessage{ID: "m1", ConnectionID: "c1", SenderID: "student", Message: "hola"},
	})

	assert.Eventually(t, func() bool { return tutorConn.count() == 1 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, 0, studentConn.count())
}

func TestHub_ConnectionEvents(t *testing.T) {
	h := startHub(t)
	studentConn, tutorConn := &fakeConn{}, &fakeConn{}
	h.Register(NewClient("student", studentConn))
	h.Register(NewClient("tutor", tutorConn))

	h.Publish(services.Event{Kind: services.EventConnectionRequested, Connection: conn})
	h.Publish(services.Event{Kind: services.EventConnectionAccepted, Connection: conn})
	h.Publish(services.Event{Kind: services.EventReviewSubmitted, Connection: conn})

	assert.Eventually(t, func() bool { return tutorConn.count() == 2 && studentConn.count() == 1 },
		time.Second, 5*time.Millisecond)
}

func TestHub_AllSocketsOfAUser(t *testing.T) {
	h := startHub(t)
	phone, laptop := &fakeConn{}, &fakeConn{}
	h.Register(NewClient("tutor", phone))
	h.Register(NewClient("tutor", laptop))

	h.Publish(services.Event{Kind: services.EventConnectionRequested, Connection: conn})

	assert.Eventually(t, func() bool { return phone.count() == 1 && laptop.count() == 1 },
		time.Second, 5*time.Millisecond)
}

func TestHub_UnregisterAndBrokenClients(t *testing.T) {
	h := startHub(t)
	gone := &fakeConn{}
	goneClient := NewClient("tutor", gone)
	h.Register(goneClient)
	h.Unregister(goneClient)

	broken := &fakeConn{fail: true}
	h.Register(NewClient("student", broken))

	h.Publish(services.Event{Kind: services.EventConnectionRequested, Connection: conn})
	h.Publish(services.Event{Kind: services.EventConnectionRejected, Connection: conn})

	assert.Eventually(t, broken.isClosed, time.Second, 5*time.Millisecond)
	assert.Equal(t, 0, gone.count())
}

func TestHub_SlowClientDoesNotStallOthers(t *testing.T) {
	h := startHub(t)
	slow := &fakeConn{gate: make(chan struct{})}
	h.Register(NewClient("tutor", slow))
	student := &fakeConn{}
	h.Register(NewClient("student", student))

	for i := 0; i < sendBuffer+5; i++ {
		h.Publish(services.Event{Kind: services.EventConnectionRequested, Connection: conn})
	}
	h.Publish(services.Event{Kind: services.EventConnectionAccepted, Connection: conn})

	assert.Eventually(t, func() bool { return student.count() == 1 }, time.Second, 5*time.Millisecond)
	assert.Eventually(t, slow.isClosed, time.Second, 5*time.Millisecond)
}

func TestClient_SendAfterShutdown(t *testing.T) {
	fc := &fakeConn{}
	c := NewClient("student", fc)
	require.True(t, c.Send("hola"))
	assert.Eventually(t, func() bool { return fc.count() == 1 }, time.Second, 5*time.Millisecond)

	c.shutdown()
	c.shutdown()
	assert.False(t, c.Send("adiós"))
	assert.True(t, fc.isClosed())
}

func TestHub_RegisterAndUnregisterAfterRunReturns(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	h := NewHub()
	stopped := make(chan struct{})
	go func() {
		h.Run(ctx)
		close(stopped)
	}()

	live := &fakeConn{}
	liveClient := NewClient("student", live)
	h.Register(liveClient)

	cancel()
	select {
	case <-stopped:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
	assert.True(t, live.isClosed())

	returned := make(chan struct{})
	late := &fakeConn{}
	go func() {
		h.Unregister(liveClient)
		h.Register(NewClient("tutor", late))
		close(returned)
	}()
	select {
	case <-returned:
	case <-time.After(time.Second):
		t.Fatal("Register/Unregister blocked after the hub stopped")
	}
	assert.True(t, late.isClosed())
}

func TestRecipients(t *testing.T) {
	tests := []struct {
		name  string
		event services.Event
		want  []string
	}{
		{name: "request", event: services.Event{Kind: services.EventConnectionRequested, Connection: conn}, want: []string{"tutor"}},
		{name: "reject", event: services.Event{Kind: services.EventConnectionRejected, Connection: conn}, want: []string{"student"}},
		{
			name: "tutor message",
			event: services.Event{Kind: services.EventMessageAppended, Connection: conn,
				Message: &models.ChatMessage{SenderID: "tutor"}},
			want: []string{"student"},
		},
		{name: "message without body", event: services.Event{Kind: services.EventMessageAppended, Connection: conn}, want: nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, recipients(tt.event))
		})
	}
}
