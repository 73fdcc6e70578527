package highlight

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractSnippetShortTextReturnedWhole(t *testing.T) {
	snippet := ExtractSnippet("short text", []string{"text"}, 100)

	assert.Equal(t, "short text", snippet.Text)
	assert.False(t, snippet.WasTruncated)
	assert.True(t, snippet.MatchFound)
}

func TestExtractSnippetCentersOnFirstMatch(t *testing.T) {
	text := strings.Repeat("x", 200) + " drill " + strings.Repeat("y", 200)

	snippet := ExtractSnippet(text, []string{"drill"}, 50)

	assert.True(t, snippet.WasTruncated)
	assert.True(t, snippet.MatchFound)
	assert.Contains(t, snippet.Text, "drill")
	assert.True(t, strings.HasPrefix(snippet.Text, Ellipsis))
	assert.True(t, strings.HasSuffix(snippet.Text, Ellipsis))
	assert.LessOrEqual(t, len(snippet.Text), 50+2*len(Ellipsis))
}

func TestExtractSnippetNoMatchStartsAtBeginning(t *testing.T) {
	text := "alpha " + strings.Repeat("z", 300)

	snippet := ExtractSnippet(text, []string{"missing"}, 40)

	assert.True(t, snippet.WasTruncated)
	assert.False(t, snippet.MatchFound)
	assert.True(t, strings.HasPrefix(snippet.Text, "alpha"))
	assert.True(t, strings.HasSuffix(snippet.Text, Ellipsis))
	assert.False(t, strings.HasPrefix(snippet.Text, Ellipsis))
}

func TestExtractSnippetMatchNearStart(t *testing.T) {
	text := "drill " + strings.Repeat("w", 300)

	snippet := ExtractSnippet(text, []string{"drill"}, 60)

	assert.True(t, snippet.MatchFound)
	// Window clamps to the start of the text, no leading ellipsis.
	assert.False(t, strings.HasPrefix(snippet.Text, Ellipsis))
	assert.Contains(t, snippet.Text, "drill")
}

func TestExtractSnippetEarliestTermWins(t *testing.T) {
	text := "first banana then apple " + strings.Repeat("q", 300)

	snippet := ExtractSnippet(text, []string{"apple", "banana"}, 40)

	assert.True(t, snippet.MatchFound)
	assert.Contains(t, snippet.Text, "banana")
}

func TestExtractSnippetCaseInsensitive(t *testing.T) {
	snippet := ExtractSnippet("The DRILL is here", []string{"drill"}, 100)
	assert.True(t, snippet.MatchFound)
}

func TestExtractSnippetDefaultLength(t *testing.T) {
	text := strings.Repeat("a", 500)
	snippet := ExtractSnippet(text, nil, 0)

	assert.True(t, snippet.WasTruncated)
	assert.LessOrEqual(t, len(snippet.Text), DefaultSnippetLength+len(Ellipsis))
}

func TestExtractSnippetMultibyteSafe(t *testing.T) {
	text := strings.Repeat("ö", 100) + "drill" + strings.Repeat("ü", 100)

	snippet := ExtractSnippet(text, []string{"drill"}, 30)

	assert.True(t, snippet.MatchFound)
	assert.Contains(t, snippet.Text, "drill")
	// No broken runes at the window edges.
	assert.True(t, strings.ContainsRune(snippet.Text, 'ö') || strings.ContainsRune(snippet.Text, 'ü') || snippet.Text != "")
}

func TestComposeItemHighlight(t *testing.T) {
	out := ComposeItemHighlight(
		"Cordless drill",
		"A powerful cordless drill stored with the other power tools.",
		"Garage > Shelf B",
		[]string{"drill"},
		Options{},
	)

	assert.True(t, out.SecurityValidated)
	assert.True(t, out.Name.HasMatches)
	assert.NotNil(t, out.Description)
	assert.True(t, out.Description.HasMatches)
	assert.NotNil(t, out.LocationPath)
	assert.False(t, out.LocationPath.HasMatches)
}

func TestComposeItemHighlightOmitsEmptyFields(t *testing.T) {
	out := ComposeItemHighlight("Ladder", "", "", []string{"ladder"}, Options{})

	assert.Nil(t, out.Description)
	assert.Nil(t, out.LocationPath)
	assert.True(t, out.SecurityValidated)
}

func TestComposeItemHighlightValidationIsANDed(t *testing.T) {
	out := ComposeItemHighlight(
		"Ladder",
		strings.Repeat("x", DefaultMaxTextLength+1),
		"Garage",
		[]string{"ladder"},
		Options{},
	)

	assert.False(t, out.SecurityValidated)
	assert.True(t, out.Name.SecurityValidated)
	assert.NotNil(t, out.Description)
	assert.False(t, out.Description.SecurityValidated)
}
