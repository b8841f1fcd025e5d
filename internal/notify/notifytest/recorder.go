// Package notifytest содержит записывающую реализацию notify.Notifier для тестов.
package notifytest

import (
	"context"
	"sync"

	"github.com/ignatzorin/lostfound-bot/internal/notify"
)

// Sent одно отправленное уведомление.
type Sent struct {
	To      notify.Audience
	Message notify.Message
	Ref     notify.MessageRef
}

// Ack одно подтверждение нажатия.
type Ack struct {
	EventRef string
	Text     string
}

// Recorder запоминает все вызовы Notifier. Ошибку доставки можно задать через FailFor.
type Recorder struct {
	mu      sync.Mutex
	nextID  int
	Sent    []Sent
	Cleared []notify.MessageRef
	Acks    []Ack
	FailFor map[notify.AudienceKind]error
}

// New создаёт пустой Recorder.
func New() *Recorder {
	return &Recorder{FailFor: map[notify.AudienceKind]error{}}
}

func (r *Recorder) Notify(_ context.Context, to notify.Audience, msg notify.Message) (notify.Delivery, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err, ok := r.FailFor[to.Kind]; ok {
		return notify.Delivery{}, err
	}

	r.nextID++
	ref := notify.MessageRef{ChatID: chatFor(to), MessageID: r.nextID}
	r.Sent = append(r.Sent, Sent{To: to, Message: msg, Ref: ref})
	return notify.Delivery{Ref: ref}, nil
}

func (r *Recorder) ClearActions(_ context.Context, ref notify.MessageRef) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if ref.IsZero() {
		return nil
	}
	r.Cleared = append(r.Cleared, ref)
	return nil
}

func (r *Recorder) Acknowledge(_ context.Context, eventRef string, text string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if eventRef == "" {
		return nil
	}
	r.Acks = append(r.Acks, Ack{EventRef: eventRef, Text: text})
	return nil
}

// To возвращает уведомления, отправленные указанному типу адресата.
func (r *Recorder) To(kind notify.AudienceKind) []Sent {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []Sent
	for _, s := range r.Sent {
		if s.To.Kind == kind {
			out = append(out, s)
		}
	}
	return out
}

// Last возвращает последнее уведомление.
func (r *Recorder) Last() (Sent, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.Sent) == 0 {
		return Sent{}, false
	}
	return r.Sent[len(r.Sent)-1], true
}

// Reset очищает записанные вызовы.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Sent = nil
	r.Cleared = nil
	r.Acks = nil
}

// ModeratorChatID и PublicChatID условные идентификаторы чатов в записанных ссылках.
const (
	ModeratorChatID = int64(-1001)
	PublicChatID    = int64(-1002)
)

func chatFor(to notify.Audience) int64 {
	switch to.Kind {
	case notify.AudienceModerators:
		return ModeratorChatID
	case notify.AudiencePublic:
		return PublicChatID
	default:
		return to.UserID
	}
}
