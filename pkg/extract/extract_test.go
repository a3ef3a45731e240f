package extract

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/gmail/v1"
)

const notificationHTML = `<html><body>
<p>A purchase was made on your card.</p>
<table>
<tr><td>Date</td><td>Jan 5, 2024</td></tr>
<tr><td>Merchant: CHIPOTLE</td></tr>
<tr><td>Amount: $12.50</td></tr>
<tr><td>Account: Visa ...1234</td></tr>
</table>
<p>Thank you for shopping with us.</p>
</body></html>`

func htmlPart(body string) *gmail.MessagePart {
	return &gmail.MessagePart{
		MimeType: "text/html",
		Body:     &gmail.MessagePartBody{Data: base64.URLEncoding.EncodeToString([]byte(body))},
	}
}

func messageWithParts(parts ...*gmail.MessagePart) *gmail.Message {
	return &gmail.Message{
		Payload: &gmail.MessagePart{
			MimeType: "multipart/alternative",
			Parts:    parts,
		},
	}
}

func TestFromMessage(t *testing.T) {
	transaction, err := FromMessage(messageWithParts(htmlPart(notificationHTML)))
	require.NoError(t, err)

	assert.Equal(t, "Visa ...1234", transaction.Card)
	assert.Equal(t, "CHIPOTLE", transaction.Merchant)
	assert.Equal(t, "$12.50", transaction.Amount)
	assert.Equal(t, "Jan 5, 2024", transaction.Date)
}

func TestFromMessageLabelWithoutColon(t *testing.T) {
	body := `<div>Jan 15, 2024</div>
<div>Merchant AMAZON MKTPLACE</div>
<div>Amount $99.99</div>
<div>Account Mastercard ...9876</div>`

	transaction, err := FromMessage(messageWithParts(htmlPart(body)))
	require.NoError(t, err)

	assert.Equal(t, "AMAZON MKTPLACE", transaction.Merchant)
	assert.Equal(t, "$99.99", transaction.Amount)
	assert.Equal(t, "Mastercard ...9876", transaction.Card)
	assert.Equal(t, "Jan 15, 2024", transaction.Date)
}

func TestFromMessageMissingField(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		missing string
	}{
		{
			name:    "missing date",
			body:    "<p>Merchant: X</p><p>Amount: Y</p><p>Account: Z</p>",
			missing: "date",
		},
		{
			name:    "missing merchant",
			body:    "<p>Jan 5, 2024</p><p>Amount: Y</p><p>Account: Z</p>",
			missing: "merchant",
		},
		{
			name:    "missing amount",
			body:    "<p>Jan 5, 2024</p><p>Merchant: X</p><p>Account: Z</p>",
			missing: "amount",
		},
		{
			name:    "missing account",
			body:    "<p>Jan 5, 2024</p><p>Merchant: X</p><p>Amount: Y</p>",
			missing: "account",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := FromMessage(messageWithParts(htmlPart(tc.body)))
			require.ErrorIs(t, err, ErrFieldNotFound)
			assert.Contains(t, err.Error(), tc.missing)
		})
	}
}

func TestFromMessageNoHTMLParts(t *testing.T) {
	msg := messageWithParts(&gmail.MessagePart{
		MimeType: "text/plain",
		Body:     &gmail.MessagePartBody{Data: base64.URLEncoding.EncodeToString([]byte("Merchant: X"))},
	})

	_, err := FromMessage(msg)
	require.ErrorIs(t, err, ErrFieldNotFound)
	// Deterministic: always the first field in search order.
	assert.Contains(t, err.Error(), "date")
}

func TestFromMessageNilPayload(t *testing.T) {
	_, err := FromMessage(&gmail.Message{})
	require.ErrorIs(t, err, ErrFieldNotFound)
	assert.Contains(t, err.Error(), "date")
}

func TestFromMessageConcatenatesFragments(t *testing.T) {
	// Fields split across two html parts; both fragments must contribute.
	first := "<p>Jan 5, 2024</p><p>Merchant: SPLIT VENDOR</p>"
	second := "<p>Amount: $1.00</p><p>Account: Visa ...0001</p>"

	transaction, err := FromMessage(messageWithParts(htmlPart(first), htmlPart(second)))
	require.NoError(t, err)

	assert.Equal(t, "SPLIT VENDOR", transaction.Merchant)
	assert.Equal(t, "Visa ...0001", transaction.Card)
}

func TestFromMessageNestedParts(t *testing.T) {
	// The html leaf sits one level down inside a multipart container.
	msg := messageWithParts(&gmail.MessagePart{
		MimeType: "multipart/related",
		Parts:    []*gmail.MessagePart{htmlPart(notificationHTML)},
	})

	transaction, err := FromMessage(msg)
	require.NoError(t, err)
	assert.Equal(t, "CHIPOTLE", transaction.Merchant)
}

func TestDecodeBody(t *testing.T) {
	t.Run("padded", func(t *testing.T) {
		data := base64.URLEncoding.EncodeToString([]byte("hello"))
		assert.Equal(t, "hello", decodeBody(data))
	})

	t.Run("unpadded", func(t *testing.T) {
		data := base64.RawURLEncoding.EncodeToString([]byte("hello"))
		assert.Equal(t, "hello", decodeBody(data))
	})

	t.Run("invalid utf8 dropped", func(t *testing.T) {
		data := base64.URLEncoding.EncodeToString([]byte{'o', 'k', 0xff, 0xfe, '!'})
		assert.Equal(t, "ok!", decodeBody(data))
	})

	t.Run("garbage", func(t *testing.T) {
		assert.Equal(t, "", decodeBody("!!not base64!!"))
	})
}
