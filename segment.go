// Hypertext template engine that knows which context its holes are in!
// Copyright (C) 2017-2018 Marcus Perlick
package hyxic

import (
	"io"
	"strings"
)

// Segment is one piece of a template definition: either literal markup
// text or a hole. A hole carries an immediate value (Val) or the name
// it will be bound with at render time (Bind). Segment order is render
// order.
type Segment struct {
	text      string
	hole      bool
	name      string
	val       interface{}
	immediate bool
}

// Lit makes a literal text segment. Line breaks are normalized to a
// single '\n' before the text reaches the tokenizer.
func Lit(text string) Segment {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	return Segment{text: text}
}

// Val makes a hole with an immediate value. Scalar values are folded
// into the surrounding literal text at compile time.
func Val(v interface{}) Segment {
	return Segment{hole: true, val: v, immediate: true}
}

// Bind makes a named hole whose value is supplied per render through a
// Binding.
func Bind(name string) Segment {
	return Segment{hole: true, name: name}
}

// IsHole tells literal segments from holes.
func (s Segment) IsHole() bool { return s.hole }

// Text returns the literal text of a non-hole segment.
func (s Segment) Text() string { return s.text }

// HoleName returns the binding name of a named hole, "" otherwise.
func (s Segment) HoleName() string { return s.name }

type missing int

// Missing is the distinguished absent-value marker. In content and
// attribute contexts it is omitted like nil; in script context it
// serializes as null where nil serializes as undefined.
const Missing missing = 0

// Content is a value capability: anything implementing it is treated
// as already-safe hypertext and written past the escaping stage. Emit
// only reports the byte count and panics with an EmitError on failure,
// the same convention all emitting code in this package follows.
type Content interface {
	Emit(wr io.Writer) (wrbyte int)
}

// Raw marks a string as already-safe hypertext.
type Raw string

func (r Raw) Emit(wr io.Writer) int {
	n, err := io.WriteString(wr, string(r))
	if err != nil {
		panic(EmitError{n, err})
	}
	return n
}

// Pair is one attribute name/value pair for inside-tag expansion.
type Pair struct {
	Name  string
	Value interface{}
}

// Ident is an attribute or style property name derived from a host
// identifier: leading underscores are stripped and the remaining
// underscores become hyphens. Case is preserved so case-sensitive
// SVG attribute names survive.
type Ident string
