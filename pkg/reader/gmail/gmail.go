// Package gmail pulls labeled transaction notifications from an inbox.
package gmail

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"

	"github.com/imalan123/personal-llm-agent/pkg/api"
	"github.com/imalan123/personal-llm-agent/pkg/extract"
)

// ErrNoMessages is returned by Pull when no messages match the label and
// date query. Callers decide whether this is a clean no-op or a failure.
var ErrNoMessages = errors.New("no messages found")

// Mailbox is the slice of the email service the session uses.
type Mailbox interface {
	// ListLabels returns all labels on the mailbox.
	ListLabels(ctx context.Context) ([]*gmail.Label, error)
	// ListMessageIDs returns the IDs of messages carrying the label and
	// matching the query, in listing order.
	ListMessageIDs(ctx context.Context, labelID, query string) ([]string, error)
	// GetMessage fetches the full content of one message.
	GetMessage(ctx context.Context, id string) (*gmail.Message, error)
	// DeleteMessage removes one message from the mailbox.
	DeleteMessage(ctx context.Context, id string) error
}

// Session pulls a batch of notifications for one label: it resolves the
// label, lists today's messages, extracts a Transaction from each and
// deletes the source email. Messages that fail extraction are kept in the
// inbox and skipped.
type Session struct {
	mailbox Mailbox
	label   string
	logger  *slog.Logger
	now     func() time.Time
}

// NewSession creates a session for the given label name.
func NewSession(mailbox Mailbox, label string, logger *slog.Logger) *Session {
	if logger == nil {
		logger = slog.Default()
	}
	return &Session{
		mailbox: mailbox,
		label:   label,
		logger:  logger,
		now:     time.Now,
	}
}

// ResolveLabel matches the configured label name case-insensitively against
// the mailbox labels and returns its identifier. A miss reports the
// available label names for diagnosis.
func (s *Session) ResolveLabel(ctx context.Context) (string, error) {
	labels, err := s.mailbox.ListLabels(ctx)
	if err != nil {
		return "", fmt.Errorf("listing labels: %w", err)
	}

	names := make([]string, 0, len(labels))
	for _, label := range labels {
		if strings.EqualFold(label.Name, s.label) {
			return label.Id, nil
		}
		names = append(names, label.Name)
	}

	return "", fmt.Errorf("label %q not found (available: %s)", s.label, strings.Join(names, ", "))
}

// Pull lists today's messages under the label and processes each one in
// listing order. The date query is captured once at call start, so a run
// spanning midnight keeps using its starting date. Successfully extracted
// messages are deleted immediately, before the spreadsheet write happens.
func (s *Session) Pull(ctx context.Context) ([]api.Transaction, error) {
	labelID, err := s.ResolveLabel(ctx)
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf("after:%s", s.now().Format("2006/01/02"))
	ids, err := s.mailbox.ListMessageIDs(ctx, labelID, query)
	if err != nil {
		return nil, fmt.Errorf("listing messages: %w", err)
	}
	if len(ids) == 0 {
		return nil, fmt.Errorf("%w under label %q matching today's date", ErrNoMessages, s.label)
	}

	s.logger.Info("found messages", "label", s.label, "count", len(ids))

	transactions := make([]api.Transaction, 0, len(ids))
	for _, id := range ids {
		msg, err := s.mailbox.GetMessage(ctx, id)
		if err != nil {
			return transactions, fmt.Errorf("getting message %s: %w", id, err)
		}

		transaction, err := extract.FromMessage(msg)
		if err != nil {
			// Keep the message so a fixed extractor can reprocess it.
			s.logger.Warn("skipping message", "message_id", id, "error", err)
			continue
		}

		if err := s.mailbox.DeleteMessage(ctx, id); err != nil {
			return transactions, fmt.Errorf("deleting message %s: %w", id, err)
		}

		s.logger.Debug("extracted transaction",
			"message_id", id,
			"merchant", transaction.Merchant,
			"amount", transaction.Amount,
		)
		transactions = append(transactions, transaction)
	}

	return transactions, nil
}

// GoogleMailbox implements Mailbox over the Gmail API.
type GoogleMailbox struct {
	service *gmail.Service
}

// user addresses the authenticated mailbox in every Gmail call.
const user = "me"

// NewGoogleMailbox creates a Gmail-backed mailbox from an authorized
// HTTP client.
func NewGoogleMailbox(httpClient *http.Client) (*GoogleMailbox, error) {
	service, err := gmail.NewService(context.Background(), option.WithHTTPClient(httpClient))
	if err != nil {
		return nil, fmt.Errorf("creating gmail service: %w", err)
	}
	return &GoogleMailbox{service: service}, nil
}

func (m *GoogleMailbox) ListLabels(ctx context.Context) ([]*gmail.Label, error) {
	resp, err := m.service.Users.Labels.List(user).Context(ctx).Do()
	if err != nil {
		return nil, err
	}
	return resp.Labels, nil
}

func (m *GoogleMailbox) ListMessageIDs(ctx context.Context, labelID, query string) ([]string, error) {
	resp, err := m.service.Users.Messages.List(user).
		LabelIds(labelID).
		Q(query).
		Context(ctx).
		Do()
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(resp.Messages))
	for _, msg := range resp.Messages {
		ids = append(ids, msg.Id)
	}
	return ids, nil
}

func (m *GoogleMailbox) GetMessage(ctx context.Context, id string) (*gmail.Message, error) {
	return m.service.Users.Messages.Get(user, id).Format("full").Context(ctx).Do()
}

func (m *GoogleMailbox) DeleteMessage(ctx context.Context, id string) error {
	return m.service.Users.Messages.Delete(user, id).Context(ctx).Do()
}
