package goroutine

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRun_RecoversPanic(t *testing.T) {
	var got any
	ok := Run(func() { panic("boom") }, func(r any, stack []byte) {
		got = r
		assert.NotEmpty(t, stack)
	})

	assert.False(t, ok)
	assert.Equal(t, "boom", got)
}

func TestRun_NoPanic(t *testing.T) {
	called := false
	ok := Run(func() { called = true }, nil)

	assert.True(t, ok)
	assert.True(t, called)
}

func TestSafeGo_SurvivesPanic(t *testing.T) {
	var wg sync.WaitGroup
	wg.Add(2)

	SafeGo(func() {
		defer wg.Done()
		panic("boom")
	})
	SafeGoWithContext(context.Background(), func(ctx context.Context) {
		defer wg.Done()
		assert.NoError(t, ctx.Err())
	})

	wg.Wait()
}
