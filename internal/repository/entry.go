package repository

import "strings"

// NestedMarker prefixes a line that points at another repository.
const NestedMarker = "Nested"

// Kind is the classification of a repository line.
type Kind int

const (
	Malformed Kind = iota // Matches neither grammar
	Direct                // A download target
	Nested                // A pointer to a remote repository
)

func (k Kind) String() string {
	switch k {
	case Direct:
		return "direct"
	case Nested:
		return "nested"
	default:
		return "malformed"
	}
}

// Entry is one classified repository line.
type Entry struct {
	Kind Kind
	URL  string // empty for Malformed
	Raw  string // the line as read
}

// Classify parses one comment-free line into an Entry. It never fails:
//
//	<url>          -> Direct
//	Nested <url>   -> Nested
//	anything else  -> Malformed
func Classify(line string) Entry {
	tokens := strings.Fields(line)
	switch {
	case len(tokens) == 1:
		return Entry{Kind: Direct, URL: tokens[0], Raw: line}
	case len(tokens) == 2 && tokens[0] == NestedMarker:
		return Entry{Kind: Nested, URL: tokens[1], Raw: line}
	default:
		return Entry{Kind: Malformed, Raw: line}
	}
}
