// Package normalize flattens notification emails into plain text for pattern matching.
package normalize

import (
	"regexp"
	"strings"
	"unicode"
)

// SpaceClass is the body of a character class matching \s plus the Unicode spaces that
// decoded HTML alerts carry, such as NBSP from =C2=A0, U+2000..U+200A, U+3000 and the BOM.
// Wrap it in brackets to match a single space.
const SpaceClass = `\s\v\p{Zs}\x{2028}\x{2029}\x{FEFF}`

var (
	reStyle     = regexp.MustCompile(`(?is)<style.*?</style>`)
	reScript    = regexp.MustCompile(`(?is)<script.*?</script>`)
	reLineBreak = regexp.MustCompile(`(?i)<br[` + SpaceClass + `]*/?>`)
	reBlockEnd  = regexp.MustCompile(`(?i)</(?:p|div)>`)
	reTag       = regexp.MustCompile(`<[^>]*>`)
	reHSpace    = regexp.MustCompile(`[ \t]+`)
	reBlankLine = regexp.MustCompile(`\n[` + SpaceClass + `]*\n`)
)

// Text joins subject and body and reduces any HTML in them to whitespace-collapsed text.
// Line structure from <br>, </p> and </div> is kept as newlines; extraction rules use
// those newlines to bound merchant names, so the result is never trimmed.
func Text(subject, body string) string {
	if subject == "" && body == "" {
		return ""
	}

	text := subject + " " + body

	text = reStyle.ReplaceAllString(text, "")
	text = reScript.ReplaceAllString(text, "")

	text = reLineBreak.ReplaceAllString(text, "\n")
	text = reBlockEnd.ReplaceAllString(text, "\n")

	text = reTag.ReplaceAllString(text, " ")

	text = reHSpace.ReplaceAllString(text, " ")
	return reBlankLine.ReplaceAllString(text, "\n")
}

// Preview returns at most n bytes of text for log output, cut on a rune boundary.
func Preview(text string, n int) string {
	if len(text) <= n {
		return text
	}
	cut := n
	for cut > 0 && !isRuneStart(text[cut]) {
		cut--
	}
	return strings.TrimRight(text[:cut], " \n")
}

// TrimSpace trims every rune SpaceClass matches from both ends of s.
func TrimSpace(s string) string {
	return strings.TrimFunc(s, isSpace)
}

func isSpace(r rune) bool {
	return unicode.IsSpace(r) || unicode.Is(unicode.Zs, r) || r == '\uFEFF'
}

func isRuneStart(b byte) bool { return b&0xC0 != 0x80 }
