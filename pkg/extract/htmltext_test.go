package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHTMLToText(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "block boundaries become line breaks",
			in:   "<div>first</div><div>second</div>",
			want: "first\nsecond",
		},
		{
			name: "inline markup stripped without breaks",
			in:   "<p>Merchant: <b>CHIPOTLE</b></p>",
			want: "Merchant: CHIPOTLE",
		},
		{
			name: "br breaks the line",
			in:   "Amount: $5.00<br>Account: Visa",
			want: "Amount: $5.00\nAccount: Visa",
		},
		{
			name: "script and style contents dropped",
			in:   "<style>p{color:red}</style><p>kept</p><script>var x=1;</script>",
			want: "kept",
		},
		{
			name: "entities decoded",
			in:   "<p>Tom &amp; Co</p>",
			want: "Tom & Co",
		},
		{
			name: "surrounding whitespace trimmed",
			in:   "  <div> padded </div>  ",
			want: "padded",
		},
		{
			name: "empty input",
			in:   "",
			want: "",
		},
		{
			name: "text without markup passes through",
			in:   "plain text only",
			want: "plain text only",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, htmlToText(tc.in))
		})
	}
}
