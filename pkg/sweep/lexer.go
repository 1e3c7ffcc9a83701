package sweep

// The lexer scans template source and splits it into segments of plain text
// and the three tag forms: blocks {% %}, variables {{ }}, and comments {# #}.
// Segments strictly alternate text, tag, text, ... and always start and end
// with a (possibly empty) text segment, so joining their Raw fields yields the
// source unchanged.

// SegmentKind discriminates the raw spans produced by Tokenize.
type SegmentKind int

const (
	SegmentText SegmentKind = iota
	SegmentBlock
	SegmentVariable
	SegmentComment
)

func (k SegmentKind) String() string {
	switch k {
	case SegmentText:
		return "text"
	case SegmentBlock:
		return "block"
	case SegmentVariable:
		return "variable"
	case SegmentComment:
		return "comment"
	}
	return "unknown"
}

// Segment is a raw slice of the template source.
type Segment struct {
	Kind   SegmentKind
	Raw    string
	Offset int // byte offset in source
}

const (
	BlockTagStart    = "{%"
	BlockTagEnd      = "%}"
	VariableTagStart = "{{"
	VariableTagEnd   = "}}"
	CommentTagStart  = "{#"
	CommentTagEnd    = "#}"
)

type lexState int

const (
	stateText lexState = iota
	stateBlock
	stateVariable
	stateComment
)

// tagStates maps the second byte of a start marker to the state it opens.
var tagStates = map[byte]lexState{
	BlockTagStart[1]:    stateBlock,
	VariableTagStart[1]: stateVariable,
	CommentTagStart[1]:  stateComment,
}

var tagEnds = map[lexState]string{
	stateBlock:    BlockTagEnd,
	stateVariable: VariableTagEnd,
	stateComment:  CommentTagEnd,
}

var tagKinds = map[lexState]SegmentKind{
	stateBlock:    SegmentBlock,
	stateVariable: SegmentVariable,
	stateComment:  SegmentComment,
}

type lexer struct {
	src   string
	i     int
	n     int
	state lexState
	segs  []Segment
}

func newLexer(src string) *lexer {
	return &lexer{src: src, n: len(src)}
}

// Tokenize splits src into text and tag segments.
//
// A tag closes at the first end marker after its start marker. A start
// marker without a matching end marker does not open a tag: the source from
// that marker to the end of input is kept as plain text.
func Tokenize(src string) []Segment {
	l := newLexer(src)
	l.run()
	return l.segs
}

func (l *lexer) run() {
	textStart := 0
	tagStart := 0
	for {
		switch l.state {
		case stateText:
			if !l.scanToTagStart() {
				l.emit(SegmentText, textStart, l.n)
				return
			}
			tagStart = l.i
			l.state = tagStates[l.src[l.i+1]]
			l.i += 2
		default:
			end, ok := l.scanUntil(tagEnds[l.state])
			if !ok {
				// Unterminated tag; the rest of the input is text.
				l.emit(SegmentText, textStart, l.n)
				return
			}
			l.emit(SegmentText, textStart, tagStart)
			l.emit(tagKinds[l.state], tagStart, end)
			l.i = end
			textStart = end
			l.state = stateText
		}
	}
}

// scanToTagStart advances to the next start marker and reports whether one
// was found. The cursor is left on the marker's first byte.
func (l *lexer) scanToTagStart() bool {
	for ; l.i+1 < l.n; l.i++ {
		if l.src[l.i] != '{' {
			continue
		}
		if _, ok := tagStates[l.src[l.i+1]]; ok {
			return true
		}
	}
	l.i = l.n
	return false
}

// scanUntil finds the first occurrence of delim at or after the cursor and
// returns the offset just past it. The cursor is not moved.
func (l *lexer) scanUntil(delim string) (int, bool) {
	for j := l.i; j+len(delim) <= l.n; j++ {
		if l.src[j:j+len(delim)] == delim {
			return j + len(delim), true
		}
	}
	return 0, false
}

func (l *lexer) emit(kind SegmentKind, start, end int) {
	l.segs = append(l.segs, Segment{Kind: kind, Raw: l.src[start:end], Offset: start})
}
