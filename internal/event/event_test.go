package event

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ignatzorin/lostfound-bot/internal/models"
)

func TestFromCallbackData(t *testing.T) {
	cases := []struct {
		data string
		want Event
	}{
		{"lost", Event{Type: KindSelected, Kind: models.ReportKindLost}},
		{"found", Event{Type: KindSelected, Kind: models.ReportKindFound}},
		{"upload_image", Event{Type: ImageAccepted}},
		{"skip_image", Event{Type: ImageDeclined}},
		{"cancel", Event{Type: CancelRequested}},
		{"approve:12", Event{Type: DecisionRequested, Token: "approve:12"}},
		{"reject:abc", Event{Type: DecisionRequested, Token: "reject:abc"}},
		{"whatever", Event{Type: Unrecognized, Token: "whatever"}},
	}

	for _, tc := range cases {
		t.Run(tc.data, func(t *testing.T) {
			assert.Equal(t, tc.want, FromCallbackData(tc.data))
		})
	}
}

func TestFromCommand(t *testing.T) {
	assert.Equal(t, StartRequested, FromCommand("start").Type)
	assert.Equal(t, PendingRequested, FromCommand("pending").Type)
	assert.Equal(t, Unrecognized, FromCommand("help").Type)
}

func TestSenderName(t *testing.T) {
	assert.Equal(t, "@moder", Sender{ID: 1, Username: "moder", FirstName: "Иван"}.Name())
	assert.Equal(t, "Иван Петров", Sender{ID: 1, FirstName: "Иван", LastName: "Петров"}.Name())
	assert.Equal(t, "", Sender{ID: 1}.Name())
}

func TestTypeString(t *testing.T) {
	assert.Equal(t, "decision_requested", DecisionRequested.String())
	assert.Equal(t, "unknown", Type(100).String())
}
