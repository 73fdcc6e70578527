package highlight

// ItemHighlight is the per-field highlighted view of one search result
// card: the item name, an optional snippeted description and an optional
// location breadcrumb path.
type ItemHighlight struct {
	Name              Result
	Description       *Result
	LocationPath      *Result
	SecurityValidated bool
}

// descriptionSnippetLength bounds the description context window before
// highlighting.
const descriptionSnippetLength = 200

// ComposeItemHighlight highlights every displayed field of one item. The
// combined SecurityValidated flag is the logical AND of every
// sub-operation, so one rejected field marks the whole card.
func ComposeItemHighlight(name, description, locationPath string, terms []string, opts Options) ItemHighlight {
	out := ItemHighlight{
		Name: Highlight(name, terms, opts),
	}
	out.SecurityValidated = out.Name.SecurityValidated

	if description != "" {
		maxText := opts.MaxTextLength
		if maxText <= 0 {
			maxText = DefaultMaxTextLength
		}
		if len(description) > maxText {
			// The DoS guard applies to the raw description, not the
			// already-shortened snippet.
			out.Description = &Result{HighlightedText: description}
			out.SecurityValidated = false
		} else {
			snippet := ExtractSnippet(description, terms, descriptionSnippetLength)
			highlighted := Highlight(snippet.Text, terms, opts)
			out.Description = &highlighted
			out.SecurityValidated = out.SecurityValidated && highlighted.SecurityValidated
		}
	}

	if locationPath != "" {
		highlighted := Highlight(locationPath, terms, opts)
		out.LocationPath = &highlighted
		out.SecurityValidated = out.SecurityValidated && highlighted.SecurityValidated
	}

	return out
}
