package loader

import (
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

var (
	scriptRe     = regexp.MustCompile(`(?s)<script.*?>.*?</script>`)
	styleRe      = regexp.MustCompile(`(?s)<style.*?>.*?</style>`)
	tagRe        = regexp.MustCompile(`<[^>]+>`)
	hyphenRe     = regexp.MustCompile(`(\w+)-\s*\n\s*(\w+)`)
	pageNumRe    = regexp.MustCompile(`(?i)Page\s+\d+(\s+of\s+\d+)?`)
	blankRunRe   = regexp.MustCompile(`\n{3,}`)
	spaceRunRe   = regexp.MustCompile(`[ \t]{2,}`)
	nullCharRepl = strings.NewReplacer("\x00", "", "\x0c", "")
)

// Clean normalizes extracted text before chunking: NFKC unicode
// normalization, null and form-feed stripping, HTML tag removal,
// de-hyphenation across line breaks, page-number removal, and whitespace
// standardization. Idempotent on already-clean text.
func Clean(text string) string {
	text = norm.NFKC.String(text)
	text = nullCharRepl.Replace(text)
	text = scriptRe.ReplaceAllString(text, "")
	text = styleRe.ReplaceAllString(text, "")
	text = tagRe.ReplaceAllString(text, "")
	text = hyphenRe.ReplaceAllString(text, "$1$2")
	text = pageNumRe.ReplaceAllString(text, "")
	text = blankRunRe.ReplaceAllString(text, "\n\n")
	text = spaceRunRe.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}
