// Package highlight marks up occurrences of search terms inside item
// text for result rendering. It validates terms before any processing and
// sanitizes its own output, so a hostile search term can never reach the
// client as executable markup. All operations are synchronous and never
// return an error: failures surface as SecurityValidated=false with the
// original text untouched.
package highlight

import (
	"regexp"
	"strings"
	"time"

	"github.com/microcosm-cc/bluemonday"
)

// Defaults for Options zero values.
const (
	DefaultMaxTextLength = 10000
	DefaultMaxTermLength = 100
	DefaultClassName     = "search-highlight"

	// SlowThreshold is the soft per-call budget. Exceeding it is not a
	// failure; callers may log Result.ProcessingTime against it.
	SlowThreshold = 50 * time.Millisecond
)

// Options controls matching and markup.
type Options struct {
	CaseSensitive bool
	WholeWord     bool
	ClassName     string // sanitized to [A-Za-z0-9_-] before use
	MaxTextLength int    // 0 means DefaultMaxTextLength
	MaxTermLength int    // 0 means DefaultMaxTermLength
}

// Result is the outcome of a single highlight call.
type Result struct {
	HighlightedText   string
	HasMatches        bool
	SecurityValidated bool
	ProcessingTime    time.Duration
}

// Term patterns that indicate injection attempts rather than legitimate
// search input. Matching any of these rejects the whole call.
var dangerousPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)<\s*/?\s*script`),
	regexp.MustCompile(`(?i)javascript\s*:`),
	regexp.MustCompile(`(?i)vbscript\s*:`),
	regexp.MustCompile(`(?i)data\s*:`),
	regexp.MustCompile(`(?i)\bon[a-z]+\s*=`),
	regexp.MustCompile(`&#x?[0-9a-fA-F]+;?`),
}

var invalidClassChars = regexp.MustCompile(`[^A-Za-z0-9_-]`)

// markupPolicy is the last line of defense: whatever the matcher
// produced, only <mark class="..."> survives sanitization.
var markupPolicy = func() *bluemonday.Policy {
	p := bluemonday.NewPolicy()
	p.AllowAttrs("class").Matching(regexp.MustCompile(`^[A-Za-z0-9_-]+$`)).OnElements("mark")
	return p
}()

// Highlight wraps occurrences of terms in text with a <mark> element.
func Highlight(text string, terms []string, opts Options) (result Result) {
	start := time.Now()

	result = Result{
		HighlightedText:   text,
		SecurityValidated: true,
	}

	// The engine must never panic its caller out of a page render.
	defer func() {
		if r := recover(); r != nil {
			result = Result{
				HighlightedText:   text,
				HasMatches:        false,
				SecurityValidated: false,
			}
		}
		result.ProcessingTime = time.Since(start)
	}()

	maxText := opts.MaxTextLength
	if maxText <= 0 {
		maxText = DefaultMaxTextLength
	}
	maxTerm := opts.MaxTermLength
	if maxTerm <= 0 {
		maxTerm = DefaultMaxTermLength
	}

	if text == "" {
		return result
	}
	if len(text) > maxText {
		result.SecurityValidated = false
		return result
	}

	usable := make([]string, 0, len(terms))
	for _, term := range terms {
		term = strings.TrimSpace(term)
		if term == "" {
			continue
		}
		if len(term) > maxTerm || isDangerous(term) {
			result.SecurityValidated = false
			return result
		}
		usable = append(usable, term)
	}
	if len(usable) == 0 {
		return result
	}

	pattern, err := compilePattern(usable, opts)
	if err != nil {
		result.SecurityValidated = false
		return result
	}

	class := SanitizeClassName(opts.ClassName)
	matches := 0
	marked := pattern.ReplaceAllStringFunc(text, func(m string) string {
		matches++
		return `<mark class="` + class + `">` + m + `</mark>`
	})

	// Strips everything except the highlight element, and escapes any
	// markup that was already present in the source text.
	result.HighlightedText = markupPolicy.Sanitize(marked)
	result.HasMatches = matches > 0
	return result
}

// SanitizeClassName strips every character outside [A-Za-z0-9_-]. An
// empty or fully-stripped name falls back to DefaultClassName, so even a
// hostile configuration value cannot inject attributes.
func SanitizeClassName(name string) string {
	cleaned := invalidClassChars.ReplaceAllString(name, "")
	if cleaned == "" {
		return DefaultClassName
	}
	return cleaned
}

func isDangerous(term string) bool {
	for _, p := range dangerousPatterns {
		if p.MatchString(term) {
			return true
		}
	}
	return false
}

func compilePattern(terms []string, opts Options) (*regexp.Regexp, error) {
	escaped := make([]string, len(terms))
	for i, term := range terms {
		escaped[i] = regexp.QuoteMeta(term)
	}

	expr := "(?:" + strings.Join(escaped, "|") + ")"
	if opts.WholeWord {
		expr = `\b` + expr + `\b`
	}
	if !opts.CaseSensitive {
		expr = "(?i)" + expr
	}
	return regexp.Compile(expr)
}
