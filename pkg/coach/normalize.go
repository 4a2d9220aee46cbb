package coach

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// normalizeText prepares text for phrase matching: NFKC compatibility
// normalization (collapses fullwidth/confusable forms), Unicode case
// folding, and whitespace collapsing. Scripted lines and trainee replies
// both pass through here so width or case tricks cannot dodge the tables.
//
// A cases.Caser carries transform state, so a fresh one is built per call
// rather than shared across goroutines.
func normalizeText(text string) string {
	folded := cases.Fold().String(norm.NFKC.String(text))
	return strings.Join(strings.Fields(folded), " ")
}
