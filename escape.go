// Hypertext template engine that knows which context its holes are in!
// Copyright (C) 2017-2018 Marcus Perlick
package hyxic

import (
	"bytes"
	"io"
)

// EscWriter escapes hypertext metacharacters on everything written
// through it: '&', '<', '\'' and '"' become entities. Bytes that the
// compiler or a trusted fragment already know to be safe go through
// Bypass untouched. The returned counts are bytes written to the
// underlying writer.
//
// One EscWriter belongs to one render; it must not be shared between
// concurrent renders.
type EscWriter struct {
	Escape io.Writer
}

var (
	escAmp  = []byte("&amp;")
	escLt   = []byte("&lt;")
	escApos = []byte("&apos;")
	escQuot = []byte("&quot;")
)

func escOf(b byte) []byte {
	switch b {
	case '&':
		return escAmp
	case '<':
		return escLt
	case '\'':
		return escApos
	case '"':
		return escQuot
	}
	return nil
}

func (ew *EscWriter) Write(p []byte) (n int, err error) {
	run := 0
	for i := 0; i < len(p); i++ {
		esc := escOf(p[i])
		if esc == nil {
			continue
		}
		if run < i {
			c, err := ew.Escape.Write(p[run:i])
			n += c
			if err != nil {
				return n, err
			}
		}
		c, err := ew.Escape.Write(esc)
		n += c
		if err != nil {
			return n, err
		}
		run = i + 1
	}
	if run < len(p) {
		c, err := ew.Escape.Write(p[run:])
		n += c
		if err != nil {
			return n, err
		}
	}
	return n, nil
}

// Bypass writes p to the underlying writer without escaping.
func (ew *EscWriter) Bypass(p []byte) (n int, err error) {
	return ew.Escape.Write(p)
}

// Esc returns str with all hypertext metacharacters escaped.
func Esc(str string) string {
	buf := bytes.NewBuffer(nil)
	ewr := EscWriter{Escape: buf}
	if _, err := ewr.Write([]byte(str)); err != nil {
		panic(err)
	}
	return buf.String()
}
