package extract

import (
	"strings"

	"golang.org/x/net/html"
)

// blockTags are elements whose boundaries become line breaks in the
// plain-text rendering.
var blockTags = map[string]struct{}{
	"address": {}, "article": {}, "aside": {}, "blockquote": {}, "br": {},
	"div": {}, "dl": {}, "dt": {}, "dd": {}, "fieldset": {}, "figure": {},
	"footer": {}, "form": {}, "h1": {}, "h2": {}, "h3": {}, "h4": {},
	"h5": {}, "h6": {}, "header": {}, "hr": {}, "li": {}, "main": {},
	"nav": {}, "ol": {}, "p": {}, "pre": {}, "section": {}, "table": {},
	"tbody": {}, "td": {}, "tfoot": {}, "th": {}, "thead": {}, "tr": {},
	"ul": {},
}

// htmlToText strips markup from an HTML fragment, producing a plain-text
// rendering where block-level boundaries become line breaks. Script and
// style contents are discarded. The result is trimmed of surrounding
// whitespace.
func htmlToText(fragment string) string {
	var sb strings.Builder
	skipDepth := 0

	z := html.NewTokenizer(strings.NewReader(fragment))
	for {
		tt := z.Next()
		switch tt {
		case html.ErrorToken:
			// io.EOF or malformed input; either way we keep what we have.
			return strings.TrimSpace(sb.String())

		case html.TextToken:
			if skipDepth == 0 {
				sb.Write(z.Text())
			}

		case html.StartTagToken, html.EndTagToken, html.SelfClosingTagToken:
			name, _ := z.TagName()
			tag := string(name)

			if tag == "script" || tag == "style" {
				switch tt {
				case html.StartTagToken:
					skipDepth++
				case html.EndTagToken:
					if skipDepth > 0 {
						skipDepth--
					}
				}
				continue
			}

			if _, block := blockTags[tag]; block {
				sb.WriteByte('\n')
			}
		}
	}
}
