package goroutine

import (
	"context"
	"runtime/debug"

	"github.com/sirupsen/logrus"

	"github.com/ignatzorin/lostfound-bot/internal/logger"
)

// PanicHandler получает значение recover и стек упавшей горутины.
type PanicHandler func(recovered any, stack []byte)

// LogPanic пишет панику в общий логгер уровнем error, откуда она уходит в Sentry.
func LogPanic(recovered any, stack []byte) {
	logger.Get().WithFields(logrus.Fields{
		"panic": recovered,
		"stack": string(stack),
	}).Error("panic в горутине")
}

// Recover вызывается через defer и передаёт панику обработчику.
func Recover(onPanic PanicHandler) {
	if r := recover(); r != nil {
		if onPanic == nil {
			onPanic = LogPanic
		}
		onPanic(r, debug.Stack())
	}
}

// Run выполняет fn в текущей горутине и гасит панику.
// Возвращает false, если fn запаниковала.
func Run(fn func(), onPanic PanicHandler) (ok bool) {
	defer Recover(func(r any, stack []byte) {
		ok = false
		if onPanic == nil {
			onPanic = LogPanic
		}
		onPanic(r, stack)
	})
	fn()
	return true
}

// SafeGo запускает горутину с обработкой panic.
func SafeGo(fn func()) {
	go func() {
		defer Recover(LogPanic)
		fn()
	}()
}

// SafeGoWithContext запускает горутину с контекстом и обработкой panic.
func SafeGoWithContext(ctx context.Context, fn func(context.Context)) {
	go func() {
		defer Recover(LogPanic)
		fn(ctx)
	}()
}
