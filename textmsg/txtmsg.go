// Hypertext template engine that knows which context its holes are in!
// Copyright (C) 2017-2018 Marcus Perlick

// Package textmsg binds localized messages into hyxic templates. The
// formatted message is plain text and gets escaped like any other
// string when it is emitted into a content hole.
package textmsg

import (
	"io"

	"git.fractalqb.de/fractalqb/hyxic"
	"golang.org/x/text/message"
)

type Content struct {
	Printer *message.Printer
	Format  string
	Values  []interface{}
}

func (c Content) Emit(wr io.Writer) int {
	esc := hyxic.EscWriter{Escape: wr}
	n, err := c.Printer.Fprintf(&esc, c.Format, c.Values...)
	if err != nil {
		panic(hyxic.EmitError{Count: n, Err: err})
	}
	return n
}

func Msg(pr *message.Printer, fmt string, values ...interface{}) Content {
	return Content{pr, fmt, values}
}
