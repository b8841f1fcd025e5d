// Package event описывает входящие события бота в виде закрытого набора вариантов.
// Разбор данных транспорта выполняется один раз, дальше обработчики работают только с Type.
package event

import (
	"strings"

	"github.com/ignatzorin/lostfound-bot/internal/models"
)

// Type вариант входящего события.
type Type int

const (
	Unrecognized Type = iota
	StartRequested
	PendingRequested
	KindSelected
	TextReceived
	PhotoReceived
	ImageAccepted
	ImageDeclined
	CancelRequested
	DecisionRequested
)

var typeNames = map[Type]string{
	Unrecognized:      "unrecognized",
	StartRequested:    "start_requested",
	PendingRequested:  "pending_requested",
	KindSelected:      "kind_selected",
	TextReceived:      "text_received",
	PhotoReceived:     "photo_received",
	ImageAccepted:     "image_accepted",
	ImageDeclined:     "image_declined",
	CancelRequested:   "cancel_requested",
	DecisionRequested: "decision_requested",
}

func (t Type) String() string {
	if name, ok := typeNames[t]; ok {
		return name
	}
	return "unknown"
}

// Данные inline-кнопок пользовательского диалога.
const (
	ActionLost        = "lost"
	ActionFound       = "found"
	ActionUploadImage = "upload_image"
	ActionSkipImage   = "skip_image"
	ActionCancel      = "cancel"
)

// Команды бота.
const (
	CommandStart   = "start"
	CommandPending = "pending"
)

// Sender отправитель события.
type Sender struct {
	ID        int64
	Username  string
	FirstName string
	LastName  string
}

// Name возвращает подпись отправителя для аудита решений.
func (s Sender) Name() string {
	if s.Username != "" {
		return "@" + s.Username
	}
	if s.FirstName != "" {
		return strings.TrimSpace(s.FirstName + " " + s.LastName)
	}
	return ""
}

// MessageRef ссылка на ранее отправленное сообщение.
type MessageRef struct {
	ChatID    int64
	MessageID int
}

// IsZero сообщает, что ссылка не задана.
func (r MessageRef) IsZero() bool {
	return r.ChatID == 0 && r.MessageID == 0
}

// Event разобранное входящее событие.
type Event struct {
	Type   Type
	Sender Sender
	ChatID int64
	// TraceID сквозной идентификатор события в логах.
	TraceID string

	Text     string
	ImageRef string
	Kind     models.ReportKind
	// Token сырые данные кнопки решения вида "approve:<id>"; разбирает их модерация.
	Token string

	// CallbackID идентификатор нажатия кнопки, на который нужно ответить.
	CallbackID string
	// Message сообщение, к которому была прикреплена нажатая кнопка.
	Message MessageRef
}

// IsCallback сообщает, что событие пришло от нажатия inline-кнопки.
func (e Event) IsCallback() bool {
	return e.CallbackID != ""
}

// FromCallbackData разбирает данные нажатой кнопки.
func FromCallbackData(data string) Event {
	switch data {
	case ActionLost:
		return Event{Type: KindSelected, Kind: models.ReportKindLost}
	case ActionFound:
		return Event{Type: KindSelected, Kind: models.ReportKindFound}
	case ActionUploadImage:
		return Event{Type: ImageAccepted}
	case ActionSkipImage:
		return Event{Type: ImageDeclined}
	case ActionCancel:
		return Event{Type: CancelRequested}
	}

	if strings.Contains(data, ":") {
		return Event{Type: DecisionRequested, Token: data}
	}
	return Event{Type: Unrecognized, Token: data}
}

// FromCommand разбирает команду вида /start.
func FromCommand(command string) Event {
	switch command {
	case CommandStart:
		return Event{Type: StartRequested}
	case CommandPending:
		return Event{Type: PendingRequested}
	}
	return Event{Type: Unrecognized}
}
