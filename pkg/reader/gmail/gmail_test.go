package gmail

import (
	"context"
	"encoding/base64"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/gmail/v1"
)

// fakeMailbox implements Mailbox in memory and records deletions.
type fakeMailbox struct {
	labels   []*gmail.Label
	messages map[string]*gmail.Message
	listing  []string
	deleted  []string

	lastQuery string
	listErr   error
}

func (f *fakeMailbox) ListLabels(ctx context.Context) ([]*gmail.Label, error) {
	return f.labels, nil
}

func (f *fakeMailbox) ListMessageIDs(ctx context.Context, labelID, query string) ([]string, error) {
	f.lastQuery = query
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.listing, nil
}

func (f *fakeMailbox) GetMessage(ctx context.Context, id string) (*gmail.Message, error) {
	msg, ok := f.messages[id]
	if !ok {
		return nil, fmt.Errorf("message %s not found", id)
	}
	return msg, nil
}

func (f *fakeMailbox) DeleteMessage(ctx context.Context, id string) error {
	f.deleted = append(f.deleted, id)
	return nil
}

func notification(merchant, amount, card string) *gmail.Message {
	body := fmt.Sprintf(
		"<p>Jan 5, 2024</p><p>Merchant: %s</p><p>Amount: %s</p><p>Account: %s</p>",
		merchant, amount, card,
	)
	return &gmail.Message{
		Payload: &gmail.MessagePart{
			MimeType: "multipart/alternative",
			Parts: []*gmail.MessagePart{
				{
					MimeType: "text/html",
					Body:     &gmail.MessagePartBody{Data: base64.URLEncoding.EncodeToString([]byte(body))},
				},
			},
		},
	}
}

func newTestSession(mailbox *fakeMailbox, label string) *Session {
	s := NewSession(mailbox, label, nil)
	s.now = func() time.Time {
		return time.Date(2024, time.January, 5, 9, 30, 0, 0, time.UTC)
	}
	return s
}

func TestResolveLabelCaseInsensitive(t *testing.T) {
	mailbox := &fakeMailbox{
		labels: []*gmail.Label{
			{Id: "LBL_1", Name: "Receipts"},
			{Id: "LBL_2", Name: "Card Alerts"},
		},
	}

	session := newTestSession(mailbox, "card alerts")

	id, err := session.ResolveLabel(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "LBL_2", id)
}

func TestResolveLabelNotFound(t *testing.T) {
	mailbox := &fakeMailbox{
		labels: []*gmail.Label{
			{Id: "LBL_1", Name: "Receipts"},
			{Id: "LBL_2", Name: "Newsletters"},
		},
	}

	session := newTestSession(mailbox, "Card Alerts")

	_, err := session.ResolveLabel(context.Background())
	require.Error(t, err)
	// The error lists available labels for diagnosis.
	assert.Contains(t, err.Error(), "Receipts")
	assert.Contains(t, err.Error(), "Newsletters")
}

func TestPullNoMessages(t *testing.T) {
	mailbox := &fakeMailbox{
		labels: []*gmail.Label{{Id: "LBL_1", Name: "Card Alerts"}},
	}

	session := newTestSession(mailbox, "Card Alerts")

	_, err := session.Pull(context.Background())
	require.ErrorIs(t, err, ErrNoMessages)
	assert.Empty(t, mailbox.deleted)
}

func TestPullQueryUsesStartDate(t *testing.T) {
	mailbox := &fakeMailbox{
		labels: []*gmail.Label{{Id: "LBL_1", Name: "Card Alerts"}},
	}

	session := newTestSession(mailbox, "Card Alerts")

	_, _ = session.Pull(context.Background())
	assert.Equal(t, "after:2024/01/05", mailbox.lastQuery)
}

func TestPullExtractsAndDeletesInOrder(t *testing.T) {
	mailbox := &fakeMailbox{
		labels:  []*gmail.Label{{Id: "LBL_1", Name: "Card Alerts"}},
		listing: []string{"msg-1", "msg-2"},
		messages: map[string]*gmail.Message{
			"msg-1": notification("CHIPOTLE", "$12.50", "Visa ...1234"),
			"msg-2": notification("SHELL OIL", "$40.00", "Visa ...1234"),
		},
	}

	session := newTestSession(mailbox, "Card Alerts")

	transactions, err := session.Pull(context.Background())
	require.NoError(t, err)
	require.Len(t, transactions, 2)

	// Listing order is preserved.
	assert.Equal(t, "CHIPOTLE", transactions[0].Merchant)
	assert.Equal(t, "SHELL OIL", transactions[1].Merchant)

	// Both source messages were deleted.
	assert.Equal(t, []string{"msg-1", "msg-2"}, mailbox.deleted)
}

func TestPullKeepsUnparsableMessage(t *testing.T) {
	malformed := &gmail.Message{
		Payload: &gmail.MessagePart{
			MimeType: "text/html",
			Body: &gmail.MessagePartBody{
				Data: base64.URLEncoding.EncodeToString([]byte("<p>nothing useful here</p>")),
			},
		},
	}

	mailbox := &fakeMailbox{
		labels:  []*gmail.Label{{Id: "LBL_1", Name: "Card Alerts"}},
		listing: []string{"bad", "good"},
		messages: map[string]*gmail.Message{
			"bad":  malformed,
			"good": notification("CHIPOTLE", "$12.50", "Visa ...1234"),
		},
	}

	session := newTestSession(mailbox, "Card Alerts")

	transactions, err := session.Pull(context.Background())
	require.NoError(t, err)
	require.Len(t, transactions, 1)
	assert.Equal(t, "CHIPOTLE", transactions[0].Merchant)

	// The malformed message stays in the inbox.
	assert.Equal(t, []string{"good"}, mailbox.deleted)
}
