// Package worker выполняет задачи последовательно в рамках ключа и параллельно между ключами.
package worker

import (
	"context"
	"errors"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/ignatzorin/lostfound-bot/internal/goroutine"
	"github.com/ignatzorin/lostfound-bot/internal/logger"
)

// ErrStopped пул уже остановлен.
var ErrStopped = errors.New("worker: пул остановлен")

// Task задача для выполнения в очереди ключа.
type Task func(ctx context.Context)

type job struct {
	key  int64
	task Task
}

// Pool набор очередей фиксированного размера. Ключ (id пользователя) всегда
// попадает в одну и ту же очередь, поэтому его задачи выполняются по порядку.
type Pool struct {
	queues []chan job

	mu      sync.RWMutex
	stopped bool
	wg      sync.WaitGroup
}

// NewPool создаёт пул из queues очередей ёмкостью size.
func NewPool(queues, size int) *Pool {
	if queues <= 0 {
		queues = 1
	}
	if size <= 0 {
		size = 1
	}

	p := &Pool{queues: make([]chan job, queues)}
	for i := range p.queues {
		p.queues[i] = make(chan job, size)
	}
	return p
}

// Start запускает по горутине на очередь. Задачи получают ctx.
func (p *Pool) Start(ctx context.Context) {
	for i, q := range p.queues {
		p.wg.Add(1)
		go p.loop(ctx, i, q)
	}
}

func (p *Pool) loop(ctx context.Context, index int, q <-chan job) {
	defer p.wg.Done()

	for j := range q {
		ok := goroutine.Run(func() { j.task(ctx) }, nil)
		if !ok {
			logger.Get().WithFields(logrus.Fields{
				"queue": index,
				"key":   j.key,
			}).Warn("worker: задача завершилась паникой")
		}
	}
}

// Submit ставит задачу в очередь ключа. Блокируется, пока в очереди нет места
// или пока не отменён ctx.
func (p *Pool) Submit(ctx context.Context, key int64, task Task) error {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.stopped {
		return ErrStopped
	}

	select {
	case p.queues[p.index(key)] <- job{key: key, task: task}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Stop закрывает очереди и ждёт выполнения уже поставленных задач.
func (p *Pool) Stop() {
	p.mu.Lock()
	if p.stopped {
		p.mu.Unlock()
		return
	}
	p.stopped = true
	for _, q := range p.queues {
		close(q)
	}
	p.mu.Unlock()

	p.wg.Wait()
}

func (p *Pool) index(key int64) int {
	u := uint64(key)
	// Перемешиваем биты, чтобы соседние id расходились по разным очередям.
	u ^= u >> 33
	u *= 0xff51afd7ed558ccd
	u ^= u >> 33
	return int(u % uint64(len(p.queues)))
}
