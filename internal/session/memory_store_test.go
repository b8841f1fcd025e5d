package session

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ignatzorin/lostfound-bot/internal/models"
)

func TestMemoryStore_Lifecycle(t *testing.T) {
	store := NewMemoryStore(0)
	ctx := context.Background()

	_, ok, err := store.Get(ctx, 1)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, store.Put(ctx, Session{UserID: 1, State: StateAwaitingDescription, Draft: Draft{Kind: models.ReportKindLost}}))
	require.NoError(t, store.Put(ctx, Session{UserID: 1, State: StateAwaitingLocation, Draft: Draft{Kind: models.ReportKindLost, Description: "wallet"}}))

	sess, ok, err := store.Get(ctx, 1)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, StateAwaitingLocation, sess.State)
	assert.Equal(t, "wallet", sess.Draft.Description)
	assert.False(t, sess.UpdatedAt.IsZero())

	require.NoError(t, store.Clear(ctx, 1))
	_, ok, _ = store.Get(ctx, 1)
	assert.False(t, ok)
}

func TestMemoryStore_KeysPerUser(t *testing.T) {
	store := NewMemoryStore(0)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, Session{UserID: 1, State: StateAwaitingContact}))
	require.NoError(t, store.Put(ctx, Session{UserID: 2, State: StateAwaitingImage}))
	require.NoError(t, store.Clear(ctx, 1))

	sess, ok, _ := store.Get(ctx, 2)
	require.True(t, ok)
	assert.Equal(t, StateAwaitingImage, sess.State)
	assert.Equal(t, 1, store.Len())
}

func TestMemoryStore_ExpiresIdleSessions(t *testing.T) {
	store := NewMemoryStore(time.Hour)
	current := time.Date(2024, 9, 1, 10, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return current }
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, Session{UserID: 1, State: StateAwaitingLocation}))
	current = current.Add(30 * time.Minute)
	require.NoError(t, store.Put(ctx, Session{UserID: 2, State: StateAwaitingLocation}))

	current = current.Add(45 * time.Minute)
	_, ok, _ := store.Get(ctx, 1)
	assert.False(t, ok, "сессия старше ttl не должна возвращаться")
	_, ok, _ = store.Get(ctx, 2)
	assert.True(t, ok)

	assert.Equal(t, 1, store.cleanup())
	assert.Equal(t, 1, store.Len())
}

func TestMemoryStore_WithoutTTLKeepsSessions(t *testing.T) {
	store := NewMemoryStore(0)
	current := time.Date(2024, 9, 1, 10, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return current }
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, Session{UserID: 1, State: StateAwaitingContact}))
	current = current.Add(30 * 24 * time.Hour)

	sess, ok, _ := store.Get(ctx, 1)
	require.True(t, ok, "незавершённая заявка живёт до отправки или отмены")
	assert.Equal(t, StateAwaitingContact, sess.State)
	assert.Zero(t, store.cleanup())
}

func TestMemoryStore_RunStopsOnCancel(t *testing.T) {
	store := NewMemoryStore(time.Minute)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		store.Run(ctx, time.Millisecond)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run не завершился после отмены контекста")
	}
}

func TestMemoryStore_ConcurrentAccess(t *testing.T) {
	store := NewMemoryStore(time.Minute)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := int64(0); i < 50; i++ {
		wg.Add(1)
		go func(id int64) {
			defer wg.Done()
			_ = store.Put(ctx, Session{UserID: id, State: StateAwaitingDescription})
			_, _, _ = store.Get(ctx, id)
			if id%2 == 0 {
				_ = store.Clear(ctx, id)
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 25, store.Len())
}
