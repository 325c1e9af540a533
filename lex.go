// Hypertext template engine that knows which context its holes are in!
// Copyright (C) 2017-2018 Marcus Perlick
package hyxic

import (
	"bytes"
	"fmt"
	"strings"
)

// Classify compiles a segment sequence into a Program. It drives one
// tokenizer automaton over all literal text so that a hole between two
// segments is classified exactly as if the whole template had been
// scanned in one pass. Any structural violation aborts compilation
// with a descriptive error; there is no partial result.
func Classify(name string, segs []Segment) (*Program, error) {
	cl := classifier{tname: name, prog: newProgram(name)}
	for i := range segs {
		if segs[i].hole {
			var next *Segment
			if i+1 < len(segs) {
				next = &segs[i+1]
			}
			if err := cl.hole(segs[i], next); err != nil {
				return nil, err
			}
		} else if err := cl.feed(segs[i].text); err != nil {
			return nil, err
		}
	}
	if cl.state != StData {
		return nil, cl.errf("unexpected end of template")
	}
	cl.flush()
	return foldProgram(cl.prog)
}

// classifier is the scratch state threaded through one classification
// run.
type classifier struct {
	tname   string
	prog    *Program
	state   LexState
	closing bool
	name    []byte // tag name being scanned
	elem    []byte // element name of the last completed start tag
	attr    []byte // current attribute name
	rawElem string // lower-cased element whose rawtext body we are in
	endBuf  []byte // rawtext end tag name candidate
	declBuf []byte // lookahead inside a markup declaration
	pend    []byte // literal output not yet flushed to the program
	recent  []byte // bounded tail of scanned text for error excerpts
}

func isWS(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\f'
}

func isAlpha(c byte) bool {
	return ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z')
}

func (cl *classifier) feed(text string) error {
	for i := 0; i < len(text); i++ {
		c := text[i]
		cl.pend = append(cl.pend, c)
		cl.recent = append(cl.recent, c)
		if len(cl.recent) > 2*excerptLen {
			cl.recent = cl.recent[excerptLen:]
		}
		if err := cl.putc(c); err != nil {
			return err
		}
	}
	return nil
}

func (cl *classifier) putc(c byte) error {
	for {
		redo, err := cl.step(c)
		if err != nil || !redo {
			return err
		}
	}
}

func (cl *classifier) errf(format string, args ...interface{}) error {
	return &LexError{
		Tmpl:    cl.tname,
		State:   cl.state,
		Msg:     fmt.Sprintf(format, args...),
		Excerpt: excerpt(cl.recent),
	}
}

func (cl *classifier) flush() {
	cl.prog.addLit(cl.pend)
	cl.pend = cl.pend[:0]
}

func (cl *classifier) finishName() {
	if !cl.closing {
		cl.elem = append(cl.elem[:0], cl.name...)
	}
}

// endTag leaves the current tag. Completed start tags of rawtext
// elements switch the automaton into rawtext scanning; self-closing
// tags never do.
func (cl *classifier) endTag(selfClose bool) {
	if cl.closing {
		cl.closing = false
		cl.state = StData
		return
	}
	if !selfClose {
		if nm := strings.ToLower(string(cl.elem)); rawtextElems[nm] {
			cl.rawElem = nm
			cl.state = StRawtext
			return
		}
	}
	cl.state = StData
}

func (cl *classifier) endTagMatches() bool {
	return strings.EqualFold(string(cl.endBuf), cl.rawElem)
}

// step advances the automaton by one character. A true result means
// the character must be reconsumed in the new state.
func (cl *classifier) step(c byte) (bool, error) {
	switch cl.state {
	case StData:
		if c == '<' {
			cl.state = StTagOpen
		}

	case StTagOpen:
		switch {
		case c == '!':
			cl.state = StMarkupDeclOpen
			cl.declBuf = cl.declBuf[:0]
		case c == '/':
			cl.state = StEndTagOpen
		case isAlpha(c):
			cl.state = StTagName
			cl.closing = false
			cl.name = cl.name[:0]
			return true, nil
		case c == '?':
			return false, cl.errf("processing instructions are not supported")
		default:
			return false, cl.errf("invalid first character of tag name")
		}

	case StEndTagOpen:
		switch {
		case isAlpha(c):
			cl.state = StTagName
			cl.closing = true
			cl.name = cl.name[:0]
			return true, nil
		case c == '>':
			cl.closing = false
			cl.state = StData
		default:
			return false, cl.errf("invalid first character of end tag name")
		}

	case StTagName:
		switch {
		case isWS(c):
			cl.finishName()
			cl.state = StBeforeAttrName
		case c == '/':
			cl.finishName()
			cl.state = StSelfClosingStart
		case c == '>':
			cl.finishName()
			cl.endTag(false)
		default:
			cl.name = append(cl.name, c)
		}

	case StBeforeAttrName:
		switch {
		case isWS(c):
		case c == '/':
			cl.state = StSelfClosingStart
		case c == '>':
			cl.endTag(false)
		case c == '=':
			return false, cl.errf("unexpected '=' before attribute name")
		default:
			cl.attr = cl.attr[:0]
			cl.state = StAttrName
			return true, nil
		}

	case StAttrName:
		switch {
		case isWS(c):
			cl.state = StAfterAttrName
		case c == '/':
			cl.state = StSelfClosingStart
		case c == '=':
			cl.state = StBeforeAttrValue
		case c == '>':
			cl.endTag(false)
		case c == '"' || c == '\'' || c == '<':
			return false, cl.errf("invalid character %q in attribute name", c)
		default:
			cl.attr = append(cl.attr, c)
		}

	case StAfterAttrName:
		switch {
		case isWS(c):
		case c == '/':
			cl.state = StSelfClosingStart
		case c == '=':
			cl.state = StBeforeAttrValue
		case c == '>':
			cl.endTag(false)
		default:
			cl.attr = cl.attr[:0]
			cl.state = StAttrName
			return true, nil
		}

	case StBeforeAttrValue:
		switch {
		case isWS(c):
		case c == '"':
			cl.state = StAttrValueDouble
		case c == '\'':
			cl.state = StAttrValueSingle
		case c == '>':
			return false, cl.errf("missing value for attribute '%s'", cl.attr)
		default:
			cl.state = StAttrValueUnquoted
			return true, nil
		}

	case StAttrValueDouble:
		if c == '"' {
			cl.state = StAfterAttrValueQuoted
		}

	case StAttrValueSingle:
		if c == '\'' {
			cl.state = StAfterAttrValueQuoted
		}

	case StAttrValueUnquoted:
		switch {
		case isWS(c):
			cl.state = StBeforeAttrName
		case c == '>':
			cl.endTag(false)
		case c == '"' || c == '\'' || c == '<' || c == '=' || c == '`':
			return false, cl.errf(
				"invalid character %q in unquoted attribute value", c)
		}

	case StAfterAttrValueQuoted:
		switch {
		case isWS(c):
			cl.state = StBeforeAttrName
		case c == '/':
			cl.state = StSelfClosingStart
		case c == '>':
			cl.endTag(false)
		default:
			return false, cl.errf("missing whitespace between attributes")
		}

	case StSelfClosingStart:
		if c == '>' {
			cl.endTag(true)
		} else {
			return false, cl.errf("unexpected character after '/'")
		}

	case StMarkupDeclOpen:
		return false, cl.markupDecl(c)

	case StCommentStart:
		switch {
		case c == '-':
			cl.state = StCommentStartDash
		case c == '>':
			return false, cl.errf("abrupt closing of empty comment")
		default:
			cl.state = StComment
			return true, nil
		}

	case StCommentStartDash:
		switch {
		case c == '-':
			cl.state = StCommentEnd
		case c == '>':
			return false, cl.errf("abrupt closing of empty comment")
		default:
			cl.state = StComment
			return true, nil
		}

	case StComment:
		switch c {
		case '<':
			cl.state = StCommentLessThan
		case '-':
			cl.state = StCommentEndDash
		}

	case StCommentLessThan:
		switch c {
		case '!':
			cl.state = StCommentLessThanBang
		case '<':
		default:
			cl.state = StComment
			return true, nil
		}

	case StCommentLessThanBang:
		if c == '-' {
			cl.state = StCommentLessThanBangDash
		} else {
			cl.state = StComment
			return true, nil
		}

	case StCommentLessThanBangDash:
		if c == '-' {
			cl.state = StCommentLessThanBangDashDash
		} else {
			cl.state = StCommentEndDash
			return true, nil
		}

	case StCommentLessThanBangDashDash:
		if c == '>' {
			cl.state = StData
		} else {
			return false, cl.errf("nested comment")
		}

	case StCommentEndDash:
		if c == '-' {
			cl.state = StCommentEnd
		} else {
			cl.state = StComment
			return true, nil
		}

	case StCommentEnd:
		switch {
		case c == '>':
			cl.state = StData
		case c == '!':
			cl.state = StCommentEndBang
		case c == '-':
		default:
			cl.state = StComment
			return true, nil
		}

	case StCommentEndBang:
		switch {
		case c == '-':
			cl.state = StCommentEndDash
		case c == '>':
			return false, cl.errf("comment incorrectly closed by '--!>'")
		default:
			cl.state = StComment
			return true, nil
		}

	case StRawtext:
		if c == '<' {
			cl.state = StRawtextLessThan
		}

	case StRawtextLessThan:
		if c == '/' {
			cl.state = StRawtextEndOpen
			cl.endBuf = cl.endBuf[:0]
		} else {
			cl.state = StRawtext
			return true, nil
		}

	case StRawtextEndOpen:
		if isAlpha(c) {
			cl.state = StRawtextEndName
			return true, nil
		}
		cl.state = StRawtext
		return true, nil

	case StRawtextEndName:
		switch {
		case isAlpha(c):
			cl.endBuf = append(cl.endBuf, c)
		case isWS(c) || c == '/' || c == '>':
			if !cl.endTagMatches() {
				cl.state = StRawtext
				return true, nil
			}
			cl.rawElem = ""
			switch {
			case isWS(c):
				cl.closing = true
				cl.state = StBeforeAttrName
			case c == '/':
				cl.closing = true
				cl.state = StSelfClosingStart
			default:
				cl.state = StData
			}
		default:
			cl.state = StRawtext
			return true, nil
		}
	}
	return false, nil
}

// markupDecl resolves what follows "<!". Only comments are accepted;
// doctype, CDATA and anything else are recognized just far enough to
// name them in the error.
func (cl *classifier) markupDecl(c byte) error {
	cl.declBuf = append(cl.declBuf, c)
	b := cl.declBuf
	if b[0] == '-' {
		if len(b) == 1 {
			return nil
		}
		if b[1] == '-' {
			cl.state = StCommentStart
			cl.declBuf = cl.declBuf[:0]
			return nil
		}
		return cl.errf("invalid markup declaration")
	}
	if up := strings.ToUpper(string(b)); strings.HasPrefix("DOCTYPE", up) {
		if up == "DOCTYPE" {
			return cl.errf("doctype declarations are not supported")
		}
		return nil
	}
	if s := string(b); strings.HasPrefix("[CDATA[", s) {
		if s == "[CDATA[" {
			return cl.errf("CDATA sections are not supported")
		}
		return nil
	}
	return cl.errf("invalid markup declaration")
}

// stripAttrEq rewrites the pending literal of an unquoted attribute
// interpolation: the trailing " name=" is dropped because the hole's
// emit action writes the whole attribute, or nothing at all.
func (cl *classifier) stripAttrEq(name string) {
	p := cl.pend
	p = p[:len(p)-1] // '='
	for len(p) > 0 && isWS(p[len(p)-1]) {
		p = p[:len(p)-1]
	}
	p = p[:len(p)-len(name)]
	for len(p) > 0 && isWS(p[len(p)-1]) {
		p = p[:len(p)-1]
	}
	cl.pend = p
}

func (cl *classifier) trimTrailingSpace() {
	if n := len(cl.pend); n > 0 && (cl.pend[n-1] == ' ' || cl.pend[n-1] == '\t') {
		cl.pend = cl.pend[:n-1]
	}
}

// startsDelim reports whether literal text begins with a character
// that closes the open syntactic slot inside a tag.
func startsDelim(s string) bool {
	if len(s) == 0 {
		return false
	}
	return isWS(s[0]) || s[0] == '/' || s[0] == '>'
}

func (cl *classifier) emitHole(seg Segment, ctx Context, attr string) {
	cl.flush()
	cl.prog.addHole(&holeAct{
		ctx:       ctx,
		name:      seg.name,
		attr:      attr,
		val:       seg.val,
		immediate: seg.immediate,
	})
}

// hole classifies one hole by the live automaton state.
func (cl *classifier) hole(seg Segment, next *Segment) error {
	switch cl.state {
	case StData:
		cl.emitHole(seg, CtxContent, "")

	case StComment:
		cl.emitHole(seg, CtxComment, "")

	case StRawtext:
		switch cl.rawElem {
		case "script":
			cl.emitHole(seg, CtxScript, "")
		case "style":
			cl.emitHole(seg, CtxStyle, "")
		default:
			return cl.errf(
				"interpolation in '%s' body: only script and style rawtext tags are supported",
				cl.rawElem)
		}

	case StBeforeAttrValue:
		name := string(cl.attr)
		if err := CheckName(name); err != nil {
			return err
		}
		if next != nil && !next.hole && !startsDelim(next.text) {
			return &AdjacentError{
				Tmpl:    cl.tname,
				Attr:    name,
				Excerpt: excerpt([]byte(next.text)),
			}
		}
		cl.stripAttrEq(name)
		cl.emitHole(seg, CtxAttrUnquoted, name)
		cl.state = StAttrValueUnquoted

	case StAttrValueUnquoted:
		return &AdjacentError{
			Tmpl:    cl.tname,
			Attr:    string(cl.attr),
			Excerpt: excerpt(cl.recent),
		}

	case StAttrValueDouble:
		cl.emitHole(seg, CtxAttrDouble, string(cl.attr))

	case StAttrValueSingle:
		cl.emitHole(seg, CtxAttrSingle, string(cl.attr))

	case StBeforeAttrName, StAfterAttrName:
		cl.trimTrailingSpace()
		cl.emitHole(seg, CtxInsideTag, "")
		if next != nil && !next.hole && len(next.text) > 0 && !startsDelim(next.text) {
			cl.pend = append(cl.pend, ' ')
		}

	default:
		return cl.errf("unexpected interpolation")
	}
	return nil
}

// foldProgram pre-renders immediate scalar holes into literal bytes so
// rendering does not dispatch on them again. Conversion and guard
// violations that are provable here fail the compilation.
func foldProgram(p *Program) (*Program, error) {
	np := newProgram(p.Name)
	for _, act := range p.acts {
		switch a := act.(type) {
		case litAct:
			np.addLit(a)
		case *holeAct:
			if a.immediate && foldableVal(a.val) {
				b, err := renderHole(a, p.Name)
				if err != nil {
					return nil, err
				}
				np.addLit(b)
			} else {
				np.addHole(&holeAct{
					ctx:       a.ctx,
					name:      a.name,
					attr:      a.attr,
					val:       a.val,
					immediate: a.immediate,
				})
			}
		}
	}
	return np, nil
}

func foldableVal(v interface{}) bool {
	switch v.(type) {
	case nil, missing, bool, string,
		int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64,
		float32, float64:
		return true
	}
	return false
}

func renderHole(a *holeAct, tmpl string) (b []byte, err error) {
	buf := bytes.NewBuffer(nil)
	rd := render{tmpl: tmpl, esc: &EscWriter{Escape: buf}}
	defer func() {
		if rek := recover(); rek != nil {
			if ee, ok := rek.(EmitError); ok {
				err = ee.Err
			} else {
				panic(rek)
			}
		}
	}()
	a.emit(&rd)
	return buf.Bytes(), nil
}
