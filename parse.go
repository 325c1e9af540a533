// Hypertext template engine that knows which context its holes are in!
// Copyright (C) 2017-2018 Marcus Perlick
package hyxic

import (
	"fmt"
	"io"
	"strings"
)

// Parser splits template source into segments by scanning for inline
// placeholders. Empty fields select the default "${" / "}" delimiters.
type Parser struct {
	StartInlinePh string
	EndInlinePh   string
}

func (p *Parser) delims() (start, end string) {
	start, end = p.StartInlinePh, p.EndInlinePh
	if start == "" {
		start = "${"
	}
	if end == "" {
		end = "}"
	}
	return start, end
}

// Segments splits src into literal and named hole segments. The
// placeholder name is everything between the delimiters, verbatim, so
// fill specs like "%x path.to.value" survive the split.
func (p *Parser) Segments(src string) ([]Segment, error) {
	start, end := p.delims()
	var segs []Segment
	for {
		tok := strings.Index(src, start)
		if tok < 0 {
			break
		}
		if tok > 0 {
			segs = append(segs, Lit(src[:tok]))
		}
		src = src[tok+len(start):]
		tok = strings.Index(src, end)
		if tok < 0 {
			return nil, fmt.Errorf("unterminated placeholder '%s'",
				excerpt([]byte(src)))
		}
		name := src[:tok]
		if name == "" {
			return nil, fmt.Errorf("empty placeholder between '%s' and '%s'",
				start, end)
		}
		segs = append(segs, Bind(name))
		src = src[tok+len(end):]
	}
	if len(src) > 0 {
		segs = append(segs, Lit(src))
	}
	return segs, nil
}

// Compile splits src and classifies the result into a Program.
func (p *Parser) Compile(name, src string) (*Program, error) {
	segs, err := p.Segments(src)
	if err != nil {
		return nil, err
	}
	return Classify(name, segs)
}

// Parse compiles everything read from rd.
func (p *Parser) Parse(rd io.Reader, name string) (*Program, error) {
	src, err := io.ReadAll(rd)
	if err != nil {
		return nil, err
	}
	return p.Compile(name, string(src))
}

// Compile compiles src with the default placeholder delimiters.
func Compile(name, src string) (*Program, error) {
	var p Parser
	return p.Compile(name, src)
}
