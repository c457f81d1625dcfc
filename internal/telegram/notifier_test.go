package telegram_test

import (
	"civicdesk/backend/internal/localization"
	"civicdesk/backend/internal/models"
	"civicdesk/backend/internal/telegram"
	"context"
	"errors"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockSender struct {
	mock.Mock
}

func (m *MockSender) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	args := m.Called(c)
	return args.Get(0).(tgbotapi.Message), args.Error(1)
}

func newNotifier(t *testing.T, sender telegram.Sender, lang string) *telegram.Notifier {
	t.Helper()
	loc, err := localization.NewEmbeddedLocalizer()
	require.NoError(t, err)
	return telegram.NewNotifier(sender, -100123, lang, loc)
}

func textOf(c tgbotapi.Chattable) string {
	msg, ok := c.(tgbotapi.MessageConfig)
	if !ok {
		return ""
	}
	return msg.Text
}

func assignEvent() models.ComplaintEvent {
	officer := uint(7)
	return models.ComplaintEvent{
		Type:        models.OpAssign,
		ComplaintID: "3f1c2a9e-0000-4000-8000-000000000001",
		Department:  models.DepartmentRoads,
		Status:      models.StatusPending,
		OfficerID:   &officer,
		Priority:    models.PriorityHigh,
	}
}

func TestRender(t *testing.T) {
	n := newNotifier(t, &MockSender{}, "en")

	assert.Equal(t, "👷 Complaint 3f1c2a9e (Roads) assigned to officer #7 with priority HIGH.", n.Render(assignEvent()))

	ev := models.ComplaintEvent{
		Type:        models.OpEscalate,
		ComplaintID: "c1",
		Department:  models.DepartmentParks,
		Reason:      " Manual escalation by admin ",
	}
	assert.Equal(t, "🚨 Complaint c1 (Parks) was escalated: Manual escalation by admin", n.Render(ev))
}

func TestRender_Ukrainian(t *testing.T) {
	n := newNotifier(t, &MockSender{}, "uk")

	ev := models.ComplaintEvent{Type: models.OpUpdateStatus, ComplaintID: "c1", Department: models.DepartmentRoads, Status: models.StatusInProgress}
	assert.Equal(t, "🔄 Скарга c1 (Roads) тепер має статус «у роботі».", n.Render(ev))

	// Keys missing in Ukrainian fall back to English.
	rated := models.ComplaintEvent{Type: models.OpRate, ComplaintID: "c1"}
	assert.Equal(t, "⭐ Complaint c1 was rated by the citizen.", n.Render(rated))
}

func TestDeliver(t *testing.T) {
	sender := &MockSender{}
	n := newNotifier(t, sender, "en")

	sender.On("Send", mock.MatchedBy(func(c tgbotapi.Chattable) bool {
		return textOf(c) == n.Render(assignEvent())
	})).Return(tgbotapi.Message{}, nil).Once()

	require.NoError(t, n.Deliver(assignEvent()))
	sender.AssertExpectations(t)
}

func TestDeliver_Error(t *testing.T) {
	sender := &MockSender{}
	n := newNotifier(t, sender, "en")
	sender.On("Send", mock.Anything).Return(tgbotapi.Message{}, errors.New("bad gateway"))

	err := n.Deliver(assignEvent())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad gateway")
}

func TestNotify_FiltersOperations(t *testing.T) {
	n := newNotifier(t, &MockSender{}, "en")

	require.NoError(t, n.Notify(context.Background(), models.ComplaintEvent{Type: models.OpRate}))
	assert.Len(t, n.Send, 0, "rate events are not posted")

	require.NoError(t, n.Notify(context.Background(), assignEvent()))
	assert.Len(t, n.Send, 1)
}

func TestNotify_QueueFull(t *testing.T) {
	n := newNotifier(t, &MockSender{}, "en")
	n.Send = make(chan models.ComplaintEvent, 1)

	require.NoError(t, n.Notify(context.Background(), assignEvent()))
	assert.ErrorIs(t, n.Notify(context.Background(), assignEvent()), telegram.ErrQueueFull)
}

func TestRun_DeliversQueuedEvents(t *testing.T) {
	sender := &MockSender{}
	n := newNotifier(t, sender, "en")

	delivered := make(chan string, 2)
	sender.On("Send", mock.Anything).Return(tgbotapi.Message{}, errors.New("flaky")).Once()
	sender.On("Send", mock.Anything).Run(func(args mock.Arguments) {
		delivered <- textOf(args.Get(0).(tgbotapi.Chattable))
	}).Return(tgbotapi.Message{}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		n.Run(ctx)
		close(done)
	}()

	require.NoError(t, n.Notify(ctx, assignEvent()))
	reject := models.ComplaintEvent{Type: models.OpReject, ComplaintID: "c2", Department: models.DepartmentRoads, Reason: "duplicate"}
	require.NoError(t, n.Notify(ctx, reject))

	select {
	case text := <-delivered:
		assert.Equal(t, "🚫 Complaint c2 (Roads) was rejected: duplicate", text, "a failed send does not stop the pump")
	case <-time.After(time.Second):
		t.Fatal("second event was not delivered")
	}

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
