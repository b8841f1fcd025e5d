package logger

import (
	"fmt"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/sirupsen/logrus"
)

// InitSentry подключает Sentry и отправляет в него записи уровня error и выше.
// Пустой DSN отключает интеграцию.
func InitSentry(dsn, env string) error {
	if dsn == "" {
		return nil
	}

	if err := sentry.Init(sentry.ClientOptions{
		Dsn:         dsn,
		Environment: env,
	}); err != nil {
		return fmt.Errorf("logger: не удалось инициализировать sentry: %w", err)
	}

	Get().AddHook(NewSentryHook(sentry.CurrentHub()))
	return nil
}

// Flush дожидается отправки накопленных событий Sentry.
func Flush() {
	sentry.Flush(2 * time.Second)
}

// SentryHook пересылает записи logrus в Sentry.
type SentryHook struct {
	hub *sentry.Hub
}

// NewSentryHook создаёт hook поверх указанного hub.
func NewSentryHook(hub *sentry.Hub) *SentryHook {
	return &SentryHook{hub: hub}
}

// Levels реализует logrus.Hook.
func (h *SentryHook) Levels() []logrus.Level {
	return []logrus.Level{logrus.PanicLevel, logrus.FatalLevel, logrus.ErrorLevel}
}

// Fire реализует logrus.Hook.
func (h *SentryHook) Fire(entry *logrus.Entry) error {
	event := sentry.NewEvent()
	event.Level = sentryLevel(entry.Level)
	event.Message = entry.Message
	event.Timestamp = entry.Time

	extra := make(map[string]interface{}, len(entry.Data))
	for key, value := range entry.Data {
		if err, ok := value.(error); ok {
			extra[key] = err.Error()
			continue
		}
		extra[key] = value
	}
	event.Extra = extra

	h.hub.CaptureEvent(event)
	return nil
}

func sentryLevel(level logrus.Level) sentry.Level {
	switch level {
	case logrus.PanicLevel, logrus.FatalLevel:
		return sentry.LevelFatal
	case logrus.ErrorLevel:
		return sentry.LevelError
	case logrus.WarnLevel:
		return sentry.LevelWarning
	default:
		return sentry.LevelInfo
	}
}
