// Package lexer implements the plugin-dispatch stage: it evaluates each
// plugin's regular expression(s) against the input with global,
// set-ordered, offset-tracking semantics and hands the resulting match
// structure to that plugin's Recognizer.
package lexer

// Group is one capture group of one match: its text and its byte offset
// into the original input. Group zero is the whole match.
type Group struct {
	Text   string
	Offset int // -1 if the group did not participate in the match
}

// Match is one non-overlapping regex match, expressed as its capture
// groups in order.
type Match struct {
	Groups []Group
}

// Group returns the i'th capture group, or a zero Group (empty text,
// offset -1) if the match has fewer than i+1 groups or the group did not
// participate.
func (m Match) Group(i int) Group {
	if i < 0 || i >= len(m.Groups) {
		return Group{Offset: -1}
	}
	return m.Groups[i]
}

// Text is shorthand for Group(0).Text, the whole match's text.
func (m Match) Text() string { return m.Group(0).Text }

// Pos is shorthand for Group(0).Offset, the whole match's start offset.
func (m Match) Pos() int { return m.Group(0).Offset }
