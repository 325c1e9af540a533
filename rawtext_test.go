// Hypertext template engine that knows which context its holes are in!
// Copyright (C) 2017-2018 Marcus Perlick
package hyxic

import (
	"bytes"
	"testing"

	"github.com/stvp/assert"
)

func TestGuard_passthrough(t *testing.T) {
	buf := bytes.NewBuffer(nil)
	g := ScriptGuard(buf)
	n, err := g.Write([]byte("var x = 1; // <scrpt> is no tag"))
	assert.Nil(t, err)
	assert.Equal(t, buf.Len(), n)
	assert.Equal(t, "var x = 1; // <scrpt> is no tag", buf.String())
}

func TestGuard_endTag(t *testing.T) {
	g := ScriptGuard(bytes.NewBuffer(nil))
	_, err := g.Write([]byte("foo</script>bar"))
	assert.NotNil(t, err)
	rerr, ok := err.(*RawtextError)
	if !ok {
		t.Fatalf("want RawtextError, got %T", err)
	}
	assert.Equal(t, "script", rerr.Where)
	assert.Equal(t, "</script>", rerr.Needle)
}

func TestGuard_caseInsensitive(t *testing.T) {
	g := StyleGuard(bytes.NewBuffer(nil))
	_, err := g.Write([]byte("a { } </STYLE >"))
	assert.Nil(t, err)
	_, err = g.Write([]byte("</StYlE>"))
	assert.NotNil(t, err)
}

func TestGuard_acrossWrites(t *testing.T) {
	g := ScriptGuard(bytes.NewBuffer(nil))
	_, err := g.Write([]byte("x = '</scri"))
	assert.Nil(t, err)
	_, err = g.Write([]byte("pt>'"))
	assert.NotNil(t, err)
}

func TestGuard_selfOverlap(t *testing.T) {
	g := CommentGuard(bytes.NewBuffer(nil))
	// the first two dashes must stay live prefixes of "-->"
	_, err := g.Write([]byte("--->"))
	assert.NotNil(t, err)
}

func TestGuard_commentOpener(t *testing.T) {
	g := CommentGuard(bytes.NewBuffer(nil))
	_, err := g.Write([]byte("a <!-- b"))
	assert.NotNil(t, err)
	rerr := err.(*RawtextError)
	assert.Equal(t, "comment", rerr.Where)
	assert.Equal(t, "<!--", rerr.Needle)
}

func TestGuard_rejectBeforeWrite(t *testing.T) {
	buf := bytes.NewBuffer(nil)
	g := ScriptGuard(buf)
	n, err := g.Write([]byte("ok</script>"))
	assert.NotNil(t, err)
	assert.Equal(t, 0, n)
	assert.Equal(t, 0, buf.Len(), "rejected write must not reach the sink")
}
