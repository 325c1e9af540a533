// Hypertext template engine that knows which context its holes are in!
// Copyright (C) 2017-2018 Marcus Perlick
package hyxic

import (
	"bytes"
	"testing"

	"github.com/stvp/assert"
)

func TestEscWriter_Write(t *testing.T) {
	buf := bytes.NewBuffer(nil)
	ewr := EscWriter{Escape: buf}
	n, err := ewr.Write([]byte("<>&\"'"))
	assert.Nil(t, err, "have error: ", err)
	assert.Equal(t, 22, n, "expected bytes written")
	assert.Equal(t, "&lt;>&amp;&quot;&apos;", buf.String(), "wrong output")
}

func TestEscWriter_umls(t *testing.T) {
	buf := bytes.NewBuffer(nil)
	ewr := EscWriter{Escape: buf}
	n, err := ewr.Write([]byte("öäüß"))
	assert.Nil(t, err, "have error: ", err)
	assert.Equal(t, 8, n, "expected bytes written")
	assert.Equal(t, "öäüß", buf.String(), "wrong output")
}

func TestEscWriter_Bypass(t *testing.T) {
	buf := bytes.NewBuffer(nil)
	ewr := EscWriter{Escape: buf}
	n, err := ewr.Bypass([]byte("<em>"))
	assert.Nil(t, err)
	assert.Equal(t, 4, n)
	assert.Equal(t, "<em>", buf.String())
}

func TestEsc(t *testing.T) {
	assert.Equal(t, "Strunk &amp; White", Esc("Strunk & White"))
	assert.Equal(t, "&lt;a href=&quot;x&quot;>", Esc(`<a href="x">`))
}

func BenchmarkEscWriter_umls(b *testing.B) {
	buf := bytes.NewBuffer(nil)
	ewr := EscWriter{Escape: buf}
	txt := []byte("öäüß")
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		ewr.Write(txt)
	}
}
