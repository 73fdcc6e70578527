package highlight

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHighlightBasic(t *testing.T) {
	res := Highlight("Cordless drill in the garage", []string{"drill"}, Options{})

	assert.True(t, res.SecurityValidated)
	assert.True(t, res.HasMatches)
	assert.Contains(t, res.HighlightedText, `<mark class="search-highlight">drill</mark>`)
}

func TestHighlightCaseInsensitiveByDefault(t *testing.T) {
	res := Highlight("Drill and DRILL", []string{"drill"}, Options{})

	assert.True(t, res.HasMatches)
	assert.Contains(t, res.HighlightedText, ">Drill</mark>")
	assert.Contains(t, res.HighlightedText, ">DRILL</mark>")
}

func TestHighlightCaseSensitive(t *testing.T) {
	res := Highlight("Drill and drill", []string{"drill"}, Options{CaseSensitive: true})

	assert.True(t, res.HasMatches)
	assert.NotContains(t, res.HighlightedText, ">Drill</mark>")
	assert.Contains(t, res.HighlightedText, ">drill</mark>")
}

func TestHighlightWholeWord(t *testing.T) {
	res := Highlight("drill and drilling", []string{"drill"}, Options{WholeWord: true})

	assert.True(t, res.HasMatches)
	assert.Equal(t, 1, strings.Count(res.HighlightedText, "<mark"))
}

func TestHighlightNoTermsReturnsTextUnchanged(t *testing.T) {
	text := "Winter jackets & <b>boots</b>"

	res := Highlight(text, nil, Options{})
	assert.Equal(t, text, res.HighlightedText)
	assert.False(t, res.HasMatches)
	assert.True(t, res.SecurityValidated)

	res = Highlight(text, []string{"", "   "}, Options{})
	assert.Equal(t, text, res.HighlightedText)
	assert.False(t, res.HasMatches)
	assert.True(t, res.SecurityValidated)
}

func TestHighlightRejectsInjectionPayloads(t *testing.T) {
	payloads := []string{
		"<script>alert(1)</script>",
		"< SCRIPT >alert(1)",
		"javascript:alert(1)",
		"vbscript:msgbox(1)",
		"data:text/html;base64,xxx",
		`" onmouseover=alert(1)`,
		"&#115;cript",
		"&#x73;cript",
	}

	for _, payload := range payloads {
		t.Run(payload, func(t *testing.T) {
			res := Highlight("Hello world", []string{payload}, Options{})

			assert.False(t, res.SecurityValidated)
			assert.Equal(t, "Hello world", res.HighlightedText)
			assert.False(t, res.HasMatches)
			assert.NotContains(t, res.HighlightedText, "<script")
		})
	}
}

func TestHighlightRejectsOversizedInput(t *testing.T) {
	longText := strings.Repeat("a", DefaultMaxTextLength+1)
	res := Highlight(longText, []string{"a"}, Options{})
	assert.False(t, res.SecurityValidated)
	assert.Equal(t, longText, res.HighlightedText)

	longTerm := strings.Repeat("b", DefaultMaxTermLength+1)
	res = Highlight("some text", []string{longTerm}, Options{})
	assert.False(t, res.SecurityValidated)
	assert.Equal(t, "some text", res.HighlightedText)
}

func TestHighlightStripsSourceMarkup(t *testing.T) {
	res := Highlight(`<img src=x onerror=alert(1)> drill`, []string{"drill"}, Options{})

	assert.True(t, res.SecurityValidated)
	assert.NotContains(t, res.HighlightedText, "<img")
	assert.NotContains(t, res.HighlightedText, "onerror")
	assert.Contains(t, res.HighlightedText, "<mark")
}

func TestHighlightRegexMetacharactersAreLiteral(t *testing.T) {
	res := Highlight("price (42) here", []string{"(42)"}, Options{})

	assert.True(t, res.SecurityValidated)
	assert.True(t, res.HasMatches)
	assert.Contains(t, res.HighlightedText, ">(42)</mark>")
}

func TestSanitizeClassName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"match-hit", "match-hit"},
		{"hl_2", "hl_2"},
		{`x" onclick="alert(1)`, "xonclickalert1"},
		{"", DefaultClassName},
		{"<>!", DefaultClassName},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, SanitizeClassName(tt.in), "input %q", tt.in)
	}
}

func TestHighlightCustomClassName(t *testing.T) {
	res := Highlight("red toolbox", []string{"toolbox"}, Options{ClassName: `hit" onclick="alert(1)`})

	assert.True(t, res.HasMatches)
	assert.Contains(t, res.HighlightedText, `<mark class="hitonclickalert1">`)
	assert.NotContains(t, res.HighlightedText, "onclick=")
}

func TestHighlightRecordsProcessingTime(t *testing.T) {
	res := Highlight("quick text", []string{"quick"}, Options{})
	assert.GreaterOrEqual(t, res.ProcessingTime.Nanoseconds(), int64(0))
	assert.Less(t, res.ProcessingTime, SlowThreshold)
}
