package bot

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/ignatzorin/lostfound-bot/internal/conversation"
	"github.com/ignatzorin/lostfound-bot/internal/event"
	"github.com/ignatzorin/lostfound-bot/internal/models"
	"github.com/ignatzorin/lostfound-bot/internal/moderation"
	"github.com/ignatzorin/lostfound-bot/internal/notify"
	"github.com/ignatzorin/lostfound-bot/internal/notify/notifytest"
	"github.com/ignatzorin/lostfound-bot/internal/service"
	"github.com/ignatzorin/lostfound-bot/internal/session"
)

const adminChat = int64(-1001)

type mockConversation struct{ mock.Mock }

func (m *mockConversation) Handle(ctx context.Context, ev event.Event) (conversation.Result, error) {
	args := m.Called(ctx, ev)
	return args.Get(0).(conversation.Result), args.Error(1)
}

func (m *mockConversation) Welcome(ctx context.Context, userID int64) error {
	return m.Called(ctx, userID).Error(0)
}

type mockModeration struct{ mock.Mock }

func (m *mockModeration) DecideToken(ctx context.Context, token, moderator string, message notify.MessageRef, callbackID string) (moderation.Outcome, error) {
	args := m.Called(ctx, token, moderator, message, callbackID)
	return args.Get(0).(moderation.Outcome), args.Error(1)
}

func (m *mockModeration) ListPending(ctx context.Context) ([]models.Report, error) {
	args := m.Called(ctx)
	return args.Get(0).([]models.Report), args.Error(1)
}

type mockUsers struct{ mock.Mock }

func (m *mockUsers) Register(ctx context.Context, sender event.Sender) error {
	return m.Called(ctx, sender).Error(0)
}

type fixture struct {
	router *Router
	conv   *mockConversation
	mod    *mockModeration
	users  *mockUsers
	rec    *notifytest.Recorder
}

func newFixture() fixture {
	f := fixture{
		conv:  new(mockConversation),
		mod:   new(mockModeration),
		users: new(mockUsers),
		rec:   notifytest.New(),
	}
	f.router = NewRouter(f.conv, f.mod, f.users, f.rec, adminChat)
	return f
}

var student = event.Sender{ID: 42, Username: "student"}

func private(ev event.Event) event.Event {
	ev.Sender = student
	ev.ChatID = student.ID
	return ev
}

func inAdminChat(ev event.Event, sender event.Sender) event.Event {
	ev.Sender = sender
	ev.ChatID = adminChat
	return ev
}

func TestRouter_StartRegistersAndWelcomes(t *testing.T) {
	f := newFixture()
	f.users.On("Register", mock.Anything, student).Return(nil).Once()
	f.conv.On("Welcome", mock.Anything, int64(42)).Return(nil).Once()

	require.NoError(t, f.router.Handle(context.Background(), private(event.Event{Type: event.StartRequested})))
	f.users.AssertExpectations(t)
	f.conv.AssertExpectations(t)
}

func TestRouter_StartSurvivesRegistrationFailure(t *testing.T) {
	f := newFixture()
	f.users.On("Register", mock.Anything, student).Return(errors.New("db down")).Once()
	f.conv.On("Welcome", mock.Anything, int64(42)).Return(nil).Once()

	require.NoError(t, f.router.Handle(context.Background(), private(event.Event{Type: event.StartRequested})))
	f.conv.AssertExpectations(t)
}

func TestRouter_ConversationEvents(t *testing.T) {
	for _, typ := range []event.Type{
		event.KindSelected,
		event.TextReceived,
		event.PhotoReceived,
		event.ImageAccepted,
		event.ImageDeclined,
		event.CancelRequested,
	} {
		t.Run(typ.String(), func(t *testing.T) {
			f := newFixture()
			ev := private(event.Event{Type: typ, CallbackID: "cb"})
			f.users.On("Register", mock.Anything, student).Return(nil).Once()
			f.conv.On("Handle", mock.Anything, ev).Return(conversation.Result{To: session.StateIdle}, nil).Once()

			require.NoError(t, f.router.Handle(context.Background(), ev))
			f.conv.AssertExpectations(t)
			f.users.AssertExpectations(t)
			require.Len(t, f.rec.Acks, 1)
			assert.Equal(t, "cb", f.rec.Acks[0].EventRef)
		})
	}
}

func TestRouter_ConversationOnlyInPrivateChat(t *testing.T) {
	f := newFixture()

	ev := inAdminChat(event.Event{Type: event.TextReceived, Text: "hi"}, student)
	require.NoError(t, f.router.Handle(context.Background(), ev))
	f.conv.AssertNotCalled(t, "Handle", mock.Anything, mock.Anything)
	f.users.AssertNotCalled(t, "Register", mock.Anything, mock.Anything)
}

// memoryUsers хранилище пользователей в памяти.
type memoryUsers struct {
	saved map[int64]*models.User
}

func (m *memoryUsers) Exists(_ context.Context, id int64) (bool, error) {
	_, ok := m.saved[id]
	return ok, nil
}

func (m *memoryUsers) Save(_ context.Context, user *models.User) error {
	if _, ok := m.saved[user.ID]; !ok {
		m.saved[user.ID] = user
	}
	return nil
}

func TestRouter_SenderWithoutStartIsRegisteredBeforeSubmit(t *testing.T) {
	repo := &memoryUsers{saved: map[int64]*models.User{}}
	conv := new(mockConversation)
	router := NewRouter(conv, new(mockModeration), service.NewUserService(repo, service.NewCacheService()), notifytest.New(), adminChat)

	// Пользователь без /start сразу присылает контакт в последнем шаге.
	ev := private(event.Event{Type: event.TextReceived, Text: "+1000000"})
	conv.On("Handle", mock.Anything, ev).
		Run(func(mock.Arguments) {
			_, ok := repo.saved[student.ID]
			assert.True(t, ok, "пользователь должен быть сохранён до отправки заявки")
		}).
		Return(conversation.Result{From: session.StateAwaitingContact, To: session.StateIdle, ReportID: 1}, nil).Once()

	require.NoError(t, router.Handle(context.Background(), ev))
	conv.AssertExpectations(t)
	require.Contains(t, repo.saved, student.ID)
	assert.Equal(t, "student", *repo.saved[student.ID].Username)
}

func TestRouter_ConversationContinuesWhenRegistrationFails(t *testing.T) {
	f := newFixture()
	ev := private(event.Event{Type: event.KindSelected, Kind: models.ReportKindLost})
	f.users.On("Register", mock.Anything, student).Return(errors.New("db down")).Once()
	f.conv.On("Handle", mock.Anything, ev).Return(conversation.Result{To: session.StateAwaitingDescription}, nil).Once()

	require.NoError(t, f.router.Handle(context.Background(), ev))
	f.conv.AssertExpectations(t)
}

func TestRouter_DecisionFromAdminChat(t *testing.T) {
	f := newFixture()
	moderator := event.Sender{ID: 7, Username: "moder"}
	ev := inAdminChat(event.Event{
		Type:       event.DecisionRequested,
		Token:      "approve:5",
		CallbackID: "cb",
		Message:    event.MessageRef{ChatID: adminChat, MessageID: 77},
	}, moderator)

	f.mod.On("DecideToken", mock.Anything, "approve:5", "@moder", notify.MessageRef{ChatID: adminChat, MessageID: 77}, "cb").
		Return(moderation.Outcome{Result: moderation.ResultApplied, Status: models.ReportStatusApproved}, nil).Once()

	require.NoError(t, f.router.Handle(context.Background(), ev))
	f.mod.AssertExpectations(t)
}

func TestRouter_DecisionModeratorFallsBackToID(t *testing.T) {
	f := newFixture()
	ev := inAdminChat(event.Event{Type: event.DecisionRequested, Token: "reject:5"}, event.Sender{ID: 7})

	f.mod.On("DecideToken", mock.Anything, "reject:5", "7", notify.MessageRef{}, "").
		Return(moderation.Outcome{Result: moderation.ResultApplied}, nil).Once()

	require.NoError(t, f.router.Handle(context.Background(), ev))
	f.mod.AssertExpectations(t)
}

func TestRouter_DecisionOutsideAdminChatIsRefused(t *testing.T) {
	f := newFixture()
	ev := private(event.Event{Type: event.DecisionRequested, Token: "approve:5", CallbackID: "cb"})

	require.NoError(t, f.router.Handle(context.Background(), ev))
	f.mod.AssertNotCalled(t, "DecideToken", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	require.Len(t, f.rec.Acks, 1)
	assert.Equal(t, textForbidden, f.rec.Acks[0].Text)
}

func TestRouter_DecisionErrorIsReturned(t *testing.T) {
	f := newFixture()
	ev := inAdminChat(event.Event{Type: event.DecisionRequested, Token: "approve:999999"}, event.Sender{ID: 7})
	f.mod.On("DecideToken", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(moderation.Outcome{}, errors.New("not found")).Once()

	assert.Error(t, f.router.Handle(context.Background(), ev))
}

func TestRouter_PendingInAdminChat(t *testing.T) {
	f := newFixture()
	f.mod.On("ListPending", mock.Anything).Return([]models.Report{
		{ID: 3, Kind: models.ReportKindFound, Description: "keys", Location: "gym"},
	}, nil).Once()

	require.NoError(t, f.router.Handle(context.Background(), inAdminChat(event.Event{Type: event.PendingRequested}, event.Sender{ID: 7})))

	sent := f.rec.To(notify.AudienceModerators)
	require.Len(t, sent, 1)
	assert.Contains(t, sent[0].Message.Body, "#3 FOUND: keys (gym)")
}

func TestRouter_PendingElsewhereIsIgnored(t *testing.T) {
	f := newFixture()

	require.NoError(t, f.router.Handle(context.Background(), private(event.Event{Type: event.PendingRequested})))
	f.mod.AssertNotCalled(t, "ListPending", mock.Anything)
	assert.Empty(t, f.rec.Sent)
}

func TestRouter_UnrecognizedIsAcknowledged(t *testing.T) {
	f := newFixture()

	require.NoError(t, f.router.Handle(context.Background(), private(event.Event{Type: event.Unrecognized, CallbackID: "cb"})))
	require.Len(t, f.rec.Acks, 1)
	assert.Empty(t, f.rec.Acks[0].Text)
}

func TestRouter_UnknownType(t *testing.T) {
	f := newFixture()
	assert.Error(t, f.router.Handle(context.Background(), private(event.Event{Type: event.Type(99)})))
}
