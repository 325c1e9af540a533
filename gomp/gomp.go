// Hypertext template engine that knows which context its holes are in!
// Copyright (C) 2017-2018 Marcus Perlick

// Package gomp lets gomponents nodes fill content holes of hyxic
// templates. The node renders its own markup, so it is emitted without
// further escaping.
package gomp

import (
	"io"

	"git.fractalqb.de/fractalqb/hyxic"
	g "maragu.dev/gomponents"
)

type countWr struct {
	wr io.Writer
	n  int
}

func (c *countWr) Write(p []byte) (int, error) {
	n, err := c.wr.Write(p)
	c.n += n
	return n, err
}

// Frag adapts a gomponents Node to hyxic.Content.
type Frag struct {
	N g.Node
}

func (f Frag) Emit(wr io.Writer) int {
	cw := countWr{wr: wr}
	if err := f.N.Render(&cw); err != nil {
		panic(hyxic.EmitError{Count: cw.n, Err: err})
	}
	return cw.n
}

// Node wraps n for use as a hole value.
func Node(n g.Node) Frag { return Frag{N: n} }
