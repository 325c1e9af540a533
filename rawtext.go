// Hypertext template engine that knows which context its holes are in!
// Copyright (C) 2017-2018 Marcus Perlick
package hyxic

import "io"

// Guard passes bytes through to a sink while watching for a small set
// of forbidden substrings, case-insensitively and in a single forward
// pass. A match does not alter the stream – it fails the write with a
// RawtextError. The per-needle cursors are the only state, so bulk and
// single-byte writes behave the same and needles may span write
// boundaries.
//
// A Guard belongs to one render and must not be shared.
type Guard struct {
	Sink    io.Writer
	where   string
	needles [][]byte
	fail    [][]int
	pos     []int
}

// NewGuard returns a Guard reporting matches of the given needles as
// content of where (e.g. "script"). Needles must be lower-case.
func NewGuard(sink io.Writer, where string, needles ...string) *Guard {
	g := &Guard{
		Sink:    sink,
		where:   where,
		needles: make([][]byte, len(needles)),
		fail:    make([][]int, len(needles)),
		pos:     make([]int, len(needles)),
	}
	for i, nd := range needles {
		g.needles[i] = []byte(nd)
		g.fail[i] = failOf([]byte(nd))
	}
	return g
}

// ScriptGuard guards a script element body against its end tag and
// against comment openers.
func ScriptGuard(sink io.Writer) *Guard {
	return NewGuard(sink, "script", "</script>", "<!--")
}

// StyleGuard guards a style element body.
func StyleGuard(sink io.Writer) *Guard {
	return NewGuard(sink, "style", "</style>", "<!--")
}

// CommentGuard guards an emitted comment value against sequences that
// would close the surrounding comment or open a nested one.
func CommentGuard(sink io.Writer) *Guard {
	return NewGuard(sink, "comment", "-->", "<!--")
}

// failOf is the KMP failure function for needle.
func failOf(needle []byte) []int {
	fail := make([]int, len(needle))
	for i := 1; i < len(needle); i++ {
		k := fail[i-1]
		for k > 0 && needle[i] != needle[k] {
			k = fail[k-1]
		}
		if needle[i] == needle[k] {
			k++
		}
		fail[i] = k
	}
	return fail
}

func lowByte(b byte) byte {
	if 'A' <= b && b <= 'Z' {
		return b + 'a' - 'A'
	}
	return b
}

func (g *Guard) Write(p []byte) (n int, err error) {
	for _, b := range p {
		c := lowByte(b)
		for i, nd := range g.needles {
			k := g.pos[i]
			for k > 0 && c != nd[k] {
				k = g.fail[i][k-1]
			}
			if c == nd[k] {
				k++
			}
			if k == len(nd) {
				return 0, &RawtextError{Where: g.where, Needle: string(nd)}
			}
			g.pos[i] = k
		}
	}
	return g.Sink.Write(p)
}
