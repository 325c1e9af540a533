// Hypertext template engine that knows which context its holes are in!
// Copyright (C) 2017-2018 Marcus Perlick
package textmsg

import (
	"bytes"
	"testing"

	"git.fractalqb.de/fractalqb/hyxic"
	"github.com/stvp/assert"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

func TestMsg_escapedIntoContent(t *testing.T) {
	prog, err := hyxic.Classify(t.Name(), []hyxic.Segment{
		hyxic.Lit("<p>"), hyxic.Bind("msg"), hyxic.Lit("</p>"),
	})
	assert.Nil(t, err)
	pr := message.NewPrinter(language.English)
	bt := prog.NewBinding(nil)
	bt.BindIfName("msg", Msg(pr, "%s has %d points", "A & B", 1234567))
	buf := bytes.NewBuffer(nil)
	_, renderErr := bt.Render(buf)
	assert.Nil(t, renderErr)
	assert.Equal(t, "<p>A &amp; B has 1,234,567 points</p>", buf.String())
}
