package serialize

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/gerunddev/mdxbridge/internal/model"
	"github.com/gerunddev/mdxbridge/internal/schema"
)

var (
	lineStartChar   = regexp.MustCompile(`^[:#\-*+>]`)
	lineStartNumber = regexp.MustCompile(`^(\s*\d+)\.\s`)
)

// State accumulates output while a document is rendered. Node rules drive
// it through its methods.
type State struct {
	nodes NodeRules
	marks MarkRules
	opts  Options

	out          []byte
	delim        string
	delimEnd     int
	closed       *model.Node
	inAutolink   bool
	atBlockStart bool
	inTightList  bool
	err          error
}

func newState(nodes NodeRules, marks MarkRules, opts Options) *State {
	return &State{nodes: nodes, marks: marks, opts: opts}
}

// Options returns the options the document is serialized with
func (s *State) Options() Options {
	return s.opts
}

// String returns the output written so far
func (s *State) String() string {
	return string(s.out)
}

// FlushClose writes the pending separation after a closed block: a line
// break plus size-1 delimiter-only lines
func (s *State) FlushClose(size int) {
	if s.closed == nil {
		return
	}
	if !s.atBlank() {
		s.out = append(s.out, '\n')
	}
	if size > 1 {
		delimMin := strings.TrimRightFunc(s.delim, unicode.IsSpace)
		for i := 1; i < size; i++ {
			s.out = append(s.out, delimMin...)
			s.out = append(s.out, '\n')
		}
	}
	s.closed = nil
}

// WrapBlock renders fn with delim prefixed to every line. firstDelim, when
// not empty, replaces delim on the first line.
func (s *State) WrapBlock(delim, firstDelim string, node *model.Node, fn func()) {
	old := s.delim
	if firstDelim != "" {
		s.Write(firstDelim)
	} else {
		s.Write(delim)
	}
	s.delimEnd = len(s.out)
	s.delim += delim
	fn()
	s.delim = old
	s.CloseBlock(node)
}

func (s *State) atBlank() bool {
	return len(s.out) == 0 || s.out[len(s.out)-1] == '\n'
}

// EnsureNewLine starts a new line unless the output is already at one, or
// holds nothing on the current line but a block prefix just opened
func (s *State) EnsureNewLine() {
	if !s.atBlank() && !s.atOpenedBlock() {
		s.out = append(s.out, '\n')
	}
}

func (s *State) atOpenedBlock() bool {
	return s.delimEnd > 0 && s.delimEnd == len(s.out)
}

// Write emits content verbatim, after flushing any closed block and the
// line prefix
func (s *State) Write(content string) {
	s.FlushClose(2)
	if s.delim != "" && s.atBlank() {
		s.out = append(s.out, s.delim...)
	}
	s.out = append(s.out, content...)
}

// CloseBlock marks node as finished. The blank line after it is written
// lazily, when more output follows.
func (s *State) CloseBlock(node *model.Node) {
	s.closed = node
}

// Text writes text line by line, keeping the line prefix, and escapes it
// when escape is set
func (s *State) Text(text string, escape bool) {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		s.Write("")
		// an exclamation mark before a link would turn it into an image
		if !escape && strings.HasPrefix(line, "[") && s.endsWithBang() {
			s.out = append(s.out[:len(s.out)-1], `\!`...)
		}
		if escape {
			line = s.Esc(line, s.atBlockStart || i > 0)
		}
		s.out = append(s.out, line...)
		if i != len(lines)-1 {
			s.out = append(s.out, '\n')
		}
	}
}

func (s *State) endsWithBang() bool {
	n := len(s.out)
	if n == 0 || s.out[n-1] != '!' {
		return false
	}
	return n == 1 || s.out[n-2] != '\\'
}

// Render writes one node with its rule
func (s *State) Render(node, parent *model.Node, index int) {
	if s.err != nil {
		return
	}
	rule, ok := s.nodes[node.Type]
	if !ok {
		s.err = &MissingRuleError{Kind: "node", Type: node.Type}
		return
	}
	rule(s, node, parent, index)
}

// RenderContent renders every child of parent as a block
func (s *State) RenderContent(parent *model.Node) {
	for i, child := range parent.Content {
		s.Render(child, parent, i)
	}
}

// RenderInline renders the inline children of parent, opening and closing
// mark delimiters as the mark set changes between nodes
func (s *State) RenderInline(parent *model.Node) {
	s.atBlockStart = true
	var active []model.Mark
	trailing := ""

	progress := func(node *model.Node, index int) {
		var marks []model.Mark
		if node != nil {
			marks = node.Marks
		}

		// a hard break only keeps marks that continue past it
		if node != nil && node.Type == schema.HardBreak {
			kept := make([]model.Mark, 0, len(marks))
			for _, m := range marks {
				if index+1 == len(parent.Content) {
					continue
				}
				next := parent.Content[index+1]
				if m.IsInSet(next.Marks) && (!next.IsText() || strings.TrimSpace(next.Text) != "") {
					kept = append(kept, m)
				}
			}
			marks = kept
		}

		leading := trailing
		trailing = ""

		if node != nil && node.IsText() && s.anyExpels(marks, func(m model.Mark) bool {
			return !m.IsInSet(active)
		}) {
			inner := strings.TrimLeftFunc(node.Text, unicode.IsSpace)
			if lead := node.Text[:len(node.Text)-len(inner)]; lead != "" {
				leading += lead
				if inner != "" {
					node = node.WithText(inner)
				} else {
					node = nil
					marks = append([]model.Mark(nil), active...)
				}
			}
		}
		if node != nil && node.IsText() && s.anyExpels(marks, func(m model.Mark) bool {
			return index == len(parent.Content)-1 || !m.IsInSet(parent.Content[index+1].Marks)
		}) {
			inner := strings.TrimRightFunc(node.Text, unicode.IsSpace)
			if trail := node.Text[len(inner):]; trail != "" {
				trailing = trail
				if inner != "" {
					node = node.WithText(inner)
				} else {
					node = nil
					marks = append([]model.Mark(nil), active...)
				}
			}
		}

		var innerMark model.Mark
		noEsc := false
		if len(marks) > 0 {
			innerMark = marks[len(marks)-1]
			noEsc = s.marks[innerMark.Type].NoEscape
		}
		n := len(marks)
		if noEsc {
			n--
		}

		// Mixable marks may close in any order in Markdown, so reorder them
		// to match the already open ones.
	outer:
		for i := 0; i < n; i++ {
			mark := marks[i]
			if !s.marks[mark.Type].Mixable {
				break
			}
			for j := 0; j < len(active); j++ {
				other := active[j]
				if !s.marks[other.Type].Mixable {
					break
				}
				if mark.Eq(other) {
					reordered := make([]model.Mark, 0, n)
					if i > j {
						reordered = append(reordered, marks[:j]...)
						reordered = append(reordered, mark)
						reordered = append(reordered, marks[j:i]...)
						reordered = append(reordered, marks[i+1:n]...)
					} else if j > i {
						reordered = append(reordered, marks[:i]...)
						reordered = append(reordered, marks[i+1:j]...)
						reordered = append(reordered, mark)
						reordered = append(reordered, marks[j:n]...)
					} else {
						continue outer
					}
					marks = reordered
					continue outer
				}
			}
		}

		keep := 0
		for keep < min(len(active), n) && marks[keep].Eq(active[keep]) {
			keep++
		}

		for keep < len(active) {
			last := active[len(active)-1]
			active = active[:len(active)-1]
			s.Text(s.MarkString(last, false, parent, index), false)
		}

		if leading != "" {
			s.Text(leading, true)
		}

		if node == nil {
			return
		}
		for len(active) < n {
			add := marks[len(active)]
			active = append(active, add)
			s.Text(s.MarkString(add, true, parent, index), false)
		}
		if noEsc && node.IsText() {
			s.Text(s.MarkString(innerMark, true, parent, index)+node.Text+s.MarkString(innerMark, false, parent, index+1), false)
		} else {
			s.Render(node, parent, index)
		}
		s.atBlockStart = false
	}

	for i, child := range parent.Content {
		progress(child, i)
	}
	progress(nil, len(parent.Content))
	s.atBlockStart = false
}

func (s *State) anyExpels(marks []model.Mark, when func(model.Mark) bool) bool {
	for _, m := range marks {
		if s.marks[m.Type].ExpelEnclosingWhitespace && when(m) {
			return true
		}
	}
	return false
}

// RenderList renders the items of a list, prefixing each item's first
// line with firstDelim(i) and the following lines with delim
func (s *State) RenderList(node *model.Node, delim string, firstDelim func(i int) string) {
	if s.closed != nil && s.closed.Type == node.Type {
		s.FlushClose(3)
	} else if s.inTightList {
		s.FlushClose(1)
	}

	tight := s.opts.TightLists
	if t, ok := node.Attr("tight").(bool); ok {
		tight = t
	}
	prevTight := s.inTightList
	s.inTightList = tight
	for i, child := range node.Content {
		if i > 0 && tight {
			s.FlushClose(1)
		}
		s.WrapBlock(delim, firstDelim(i), node, func() {
			s.Render(child, node, i)
		})
	}
	s.inTightList = prevTight
}

// Esc backslash-escapes Markdown syntax characters in str. With
// startOfLine set, characters that would start a block are escaped too.
func (s *State) Esc(str string, startOfLine bool) string {
	var b strings.Builder
	b.Grow(len(str))
	for i := 0; i < len(str); i++ {
		c := str[i]
		switch c {
		case '`', '*', '\\', '~', '[', ']':
			b.WriteByte('\\')
		case '_':
			intraword := i > 0 && i+1 < len(str) && isWordByte(str[i-1]) && isWordByte(str[i+1])
			if !intraword {
				b.WriteByte('\\')
			}
		}
		b.WriteByte(c)
	}
	out := b.String()
	if startOfLine {
		out = lineStartChar.ReplaceAllString(out, `\$0`)
		out = lineStartNumber.ReplaceAllString(out, `${1}\. `)
	}
	return out
}

func isWordByte(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}

// Quote wraps str in quotes that do not occur in it
func (s *State) Quote(str string) string {
	switch {
	case !strings.Contains(str, `"`):
		return `"` + str + `"`
	case !strings.Contains(str, "'"):
		return "'" + str + "'"
	default:
		return "(" + str + ")"
	}
}

// Repeat returns str repeated n times
func (s *State) Repeat(str string, n int) string {
	if n <= 0 {
		return ""
	}
	return strings.Repeat(str, n)
}

// MarkString returns the opening or closing delimiter of mark
func (s *State) MarkString(mark model.Mark, open bool, parent *model.Node, index int) string {
	rule, ok := s.marks[mark.Type]
	if !ok {
		if s.err == nil {
			s.err = &MissingRuleError{Kind: "mark", Type: mark.Type}
		}
		return ""
	}
	if open {
		return rule.Open.render(s, mark, parent, index)
	}
	return rule.Close.render(s, mark, parent, index)
}
