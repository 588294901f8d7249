package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestText_StripsStyleAndTags(t *testing.T) {
	got := Text("Alert", "<style>.a{color:red}</style><p>Amount: SGD 12.50 to GRAB</p>")

	assert.NotContains(t, got, "color")
	assert.NotContains(t, got, "<p>")
	assert.Equal(t, "Alert Amount: SGD 12.50 to GRAB\n", got)
}

func TestText_RemovesScriptAcrossLines(t *testing.T) {
	got := Text("S", "<SCRIPT type=\"text/javascript\">\nvar a = 'SGD 9.99';\n</Script>hello")
	assert.Equal(t, "S hello", got)
}

func TestText_LineBreakTags(t *testing.T) {
	got := Text("S", "line1<br>line2<BR/>line3<br />line4</div>end")
	assert.Equal(t, "S line1\nline2\nline3\nline4\nend", got)
}

func TestText_CollapsesBlankLines(t *testing.T) {
	got := Text("S", "a</p>\n  \n</P>b")
	assert.Equal(t, "S a\nb", got)
}

func TestText_CollapsesBlankLinesWithUnicodeSpaces(t *testing.T) {
	got := Text("S", "a</p>\n\u00a0\u3000\n</P>b")
	assert.Equal(t, "S a\nb", got)
}

func TestText_NBSPLineBreakTag(t *testing.T) {
	assert.Equal(t, "S a\nb", Text("S", "a<br\u00a0/>b"))
}

func TestTrimSpace(t *testing.T) {
	assert.Equal(t, "SHOPEE", TrimSpace("\u00a0 SHOPEE\ufeff\n"))
	assert.Equal(t, "AMAZON\u00a0SG", TrimSpace("AMAZON\u00a0SG\u2009"))
	assert.Equal(t, "", TrimSpace("\u3000\t"))
}

func TestText_CollapsesHorizontalWhitespace(t *testing.T) {
	assert.Equal(t, "a b c d", Text("a\t\tb", "c   d"))
}

func TestText_Empty(t *testing.T) {
	assert.Equal(t, "", Text("", ""))
	assert.Equal(t, " x", Text("", "x"))
}

func TestText_PlainTextUnchanged(t *testing.T) {
	body := "Amount: SGD 15.00\nTo: SHOPEE SINGAPORE"
	assert.Equal(t, "DBS Alert "+body, Text("DBS Alert", body))
}

func TestText_Deterministic(t *testing.T) {
	body := "<div>Amount: SGD 1.00</div><style>x</style>"
	first := Text("s", body)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, Text("s", body))
	}
}

func TestPreview(t *testing.T) {
	assert.Equal(t, "abc", Preview("abc", 10))
	assert.Equal(t, "hello", Preview("hello world", 5))
	assert.Equal(t, "h", Preview("héllo", 2))
}
