package bot

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ignatzorin/lostfound-bot/internal/event"
	"github.com/ignatzorin/lostfound-bot/internal/worker"
)

type recordingHandler struct {
	mu   sync.Mutex
	seen map[int64][]string
}

func (h *recordingHandler) Handle(_ context.Context, ev event.Event) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.seen[ev.Sender.ID] = append(h.seen[ev.Sender.ID], ev.Text)
	return nil
}

func TestBot_RunKeepsPerUserOrder(t *testing.T) {
	h := &recordingHandler{seen: map[int64][]string{}}
	pool := worker.NewPool(4, 4)
	pool.Start(context.Background())

	events := make(chan event.Event)
	b := New(h, pool)

	done := make(chan error, 1)
	go func() { done <- b.Run(context.Background(), events) }()

	texts := []string{"lost", "wallet", "library", "no", "+7"}
	for _, text := range texts {
		for _, user := range []int64{1, 2, 3} {
			events <- event.Event{Type: event.TextReceived, Sender: event.Sender{ID: user}, Text: text}
		}
	}
	close(events)

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Run не завершился после закрытия канала")
	}
	pool.Stop()

	for _, user := range []int64{1, 2, 3} {
		assert.Equal(t, texts, h.seen[user])
	}
}

func TestBot_RunStopsOnCancel(t *testing.T) {
	pool := worker.NewPool(1, 1)
	pool.Start(context.Background())
	defer pool.Stop()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- New(&recordingHandler{seen: map[int64][]string{}}, pool).Run(ctx, make(chan event.Event)) }()

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Run не завершился после отмены")
	}
}
