// Package extract turns transaction-notification emails into Transactions.
package extract

import (
	"encoding/base64"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"google.golang.org/api/gmail/v1"

	"github.com/imalan123/personal-llm-agent/pkg/api"
)

// ErrFieldNotFound is returned when a required field is absent from the
// email text. The wrapping error names the missing field.
var ErrFieldNotFound = errors.New("field not found")

var (
	datePattern     = regexp.MustCompile(`(Jan|Feb|Mar|Apr|May|Jun|Jul|Aug|Sep|Oct|Nov|Dec)\s+\d{1,2},\s+\d{4}`)
	merchantPattern = regexp.MustCompile(`(?m)^Merchant\s*:?\s*([^\r\n]+)`)
	amountPattern   = regexp.MustCompile(`(?m)^Amount\s*:?\s*([^\r\n]+)`)
	accountPattern  = regexp.MustCompile(`(?m)^Account\s*:?\s*([^\r\n]+)`)
)

// FromMessage converts one Gmail message into a Transaction. It decodes
// every text/html leaf of the MIME part tree, strips the markup, and runs
// the four field searches over the plain text. If any field is missing the
// returned error wraps ErrFieldNotFound and no Transaction is produced.
func FromMessage(msg *gmail.Message) (api.Transaction, error) {
	return fromPlainText(PlainText(msg))
}

// PlainText returns the plain-text rendering of a message's HTML parts.
// Messages without a text/html leaf render as the empty string.
func PlainText(msg *gmail.Message) string {
	if msg == nil || msg.Payload == nil {
		return ""
	}
	return htmlToText(collectHTML(msg.Payload))
}

// collectHTML walks the part tree breadth-first and concatenates the
// decoded bodies of all text/html leaves in traversal order.
func collectHTML(root *gmail.MessagePart) string {
	var sb strings.Builder

	queue := []*gmail.MessagePart{root}
	for len(queue) > 0 {
		part := queue[0]
		queue = queue[1:]

		if part == nil {
			continue
		}
		if part.MimeType == "text/html" && part.Body != nil && part.Body.Data != "" {
			sb.WriteString(decodeBody(part.Body.Data))
		}
		queue = append(queue, part.Parts...)
	}

	return sb.String()
}

// decodeBody decodes a base64url part body, accepting both padded and
// unpadded forms. Bytes that are not valid UTF-8 are discarded rather than
// failing the message.
func decodeBody(data string) string {
	b, err := base64.URLEncoding.DecodeString(data)
	if err != nil {
		if b, err = base64.RawURLEncoding.DecodeString(data); err != nil {
			return ""
		}
	}
	return strings.ToValidUTF8(string(b), "")
}

// fromPlainText runs the four field searches over the plain-text body.
// Search order is fixed: date, merchant, amount, account.
func fromPlainText(text string) (api.Transaction, error) {
	date := datePattern.FindString(text)
	if date == "" {
		return api.Transaction{}, fmt.Errorf("%w: date", ErrFieldNotFound)
	}

	merchant, err := findLabeled(merchantPattern, text, "merchant")
	if err != nil {
		return api.Transaction{}, err
	}
	amount, err := findLabeled(amountPattern, text, "amount")
	if err != nil {
		return api.Transaction{}, err
	}
	account, err := findLabeled(accountPattern, text, "account")
	if err != nil {
		return api.Transaction{}, err
	}

	return api.NewTransaction(account, merchant, amount, date), nil
}

func findLabeled(re *regexp.Regexp, text, field string) (string, error) {
	m := re.FindStringSubmatch(text)
	if len(m) < 2 || strings.TrimSpace(m[1]) == "" {
		return "", fmt.Errorf("%w: %s", ErrFieldNotFound, field)
	}
	return strings.TrimSpace(m[1]), nil
}
