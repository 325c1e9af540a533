// Hypertext template engine that knows which context its holes are in!
// Copyright (C) 2017-2018 Marcus Perlick
package hyxic

import (
	"bytes"
	"io"
	"os"
	"strings"
	"testing"

	"github.com/stvp/assert"
	"golang.org/x/net/html"
)

func mustProg(t *testing.T, segs ...Segment) *Program {
	t.Helper()
	p, err := Classify(t.Name(), segs)
	if err != nil {
		t.Fatal(err)
	}
	return p
}

func renderStr(t *testing.T, p *Program, bind map[string]interface{}) string {
	t.Helper()
	bt := p.NewBinding(nil)
	for k, v := range bind {
		if err := bt.BindName(k, v); err != nil {
			t.Fatal(err)
		}
	}
	buf := bytes.NewBuffer(nil)
	if _, err := bt.Render(buf); err != nil {
		t.Fatal(err)
	}
	return buf.String()
}

func holeCtx(t *testing.T, p *Program, name string) Context {
	t.Helper()
	idxs := p.HoleIdxs(name)
	if len(idxs) == 0 {
		t.Fatalf("no hole '%s'", name)
	}
	ctx, ok := p.HoleContext(idxs[0])
	if !ok {
		t.Fatalf("no hole action at %d", idxs[0])
	}
	return ctx
}

func TestClassify_content(t *testing.T) {
	p := mustProg(t, Lit("<p>"), Bind("x"), Lit("</p>"))
	assert.Equal(t, CtxContent, holeCtx(t, p, "x"))
	out := renderStr(t, p, map[string]interface{}{"x": "Strunk & White"})
	assert.Equal(t, "<p>Strunk &amp; White</p>", out)
}

func TestClassify_quotedAttr(t *testing.T) {
	p := mustProg(t, Lit(`<a href="`), Bind("u"), Lit(`">link</a>`))
	assert.Equal(t, CtxAttrDouble, holeCtx(t, p, "u"))
	out := renderStr(t, p, map[string]interface{}{"u": `a'b"c`})
	assert.Equal(t, `<a href="a&apos;b&quot;c">link</a>`, out)
}

func TestClassify_singleQuotedAttr(t *testing.T) {
	p := mustProg(t, Lit("<a title='"), Bind("x"), Lit("'>a</a>"))
	assert.Equal(t, CtxAttrSingle, holeCtx(t, p, "x"))
}

func TestClassify_unquotedAttr(t *testing.T) {
	p := mustProg(t, Lit("<input value="), Bind("v"), Lit(">"))
	assert.Equal(t, CtxAttrUnquoted, holeCtx(t, p, "v"))
	assert.Equal(t, "<input value='a b'>",
		renderStr(t, p, map[string]interface{}{"v": "a b"}))
	assert.Equal(t, "<input value=''>",
		renderStr(t, p, map[string]interface{}{"v": true}))
	assert.Equal(t, "<input>",
		renderStr(t, p, map[string]interface{}{"v": false}))
	assert.Equal(t, "<input>",
		renderStr(t, p, map[string]interface{}{"v": nil}))
}

func TestClassify_booleanAttrsFold(t *testing.T) {
	p := mustProg(t,
		Lit("<input checked="), Val(true),
		Lit(" disabled="), Val(false),
		Lit(">"))
	assert.Equal(t, 0, p.HoleNum())
	static, ok := p.Static()
	assert.Equal(t, true, ok)
	assert.Equal(t, "<input checked=''>", string(static))
}

func TestClassify_unquotedFollowedByAttr(t *testing.T) {
	p := mustProg(t, Lit("<tag a="), Bind("x"), Lit(" b=2>"))
	assert.Equal(t, "<tag a='1' b=2>",
		renderStr(t, p, map[string]interface{}{"x": 1}))
}

func TestClassify_unquotedAdjacentText(t *testing.T) {
	_, err := Classify(t.Name(),
		[]Segment{Lit("<tag a="), Bind("x"), Lit("b=2>")})
	if _, ok := err.(*AdjacentError); !ok {
		t.Fatalf("want AdjacentError, got %v", err)
	}
}

func TestClassify_unquotedAdjacentHole(t *testing.T) {
	_, err := Classify(t.Name(),
		[]Segment{Lit("<tag a="), Bind("x"), Bind("y"), Lit(">")})
	if _, ok := err.(*AdjacentError); !ok {
		t.Fatalf("want AdjacentError, got %v", err)
	}
}

func TestClassify_insideTag(t *testing.T) {
	p := mustProg(t, Lit("<div "), Bind("a"), Lit(">"))
	assert.Equal(t, CtxInsideTag, holeCtx(t, p, "a"))
	out := renderStr(t, p, map[string]interface{}{
		"a": map[string]interface{}{"id": "x", "class": "c"},
	})
	assert.Equal(t, "<div class='c' id='x'>", out)
	assert.Equal(t, "<div>", renderStr(t, p, map[string]interface{}{"a": nil}))
	assert.Equal(t, "<div title='t'>",
		renderStr(t, p, map[string]interface{}{"a": Pair{"title", "t"}}))
}

func TestClassify_insideTagSpaceInjection(t *testing.T) {
	p := mustProg(t, Lit("<div "), Bind("a"), Lit("class='c'>"))
	assert.Equal(t, "<div class='c'>",
		renderStr(t, p, map[string]interface{}{"a": nil}))
	assert.Equal(t, "<div id='i' class='c'>",
		renderStr(t, p, map[string]interface{}{"a": Pair{"id", "i"}}))
}

func TestClassify_identAttrKeys(t *testing.T) {
	p := mustProg(t, Lit("<div "), Bind("a"), Lit(">"))
	out := renderStr(t, p, map[string]interface{}{
		"a": map[Ident]interface{}{Ident("data_foo"): 1},
	})
	assert.Equal(t, "<div data-foo='1'>", out)
}

func TestClassify_scriptAttr(t *testing.T) {
	p := mustProg(t, Lit(`<button onclick="`), Bind("js"), Lit(`">x</button>`))
	assert.Equal(t, CtxAttrDouble, holeCtx(t, p, "js"))
	out := renderStr(t, p, map[string]interface{}{"js": "alert('hi')"})
	assert.Equal(t,
		`<button onclick="&quot;alert(&apos;hi&apos;)&quot;">x</button>`, out,
		"on* attribute values serialize as JS literals before quoting")
}

func TestClassify_comment(t *testing.T) {
	p := mustProg(t, Lit("<!-- "), Bind("c"), Lit(" --><p>"), Bind("x"), Lit("</p>"))
	assert.Equal(t, CtxComment, holeCtx(t, p, "c"))
	assert.Equal(t, CtxContent, holeCtx(t, p, "x"),
		"classification continues after the comment closes")
	assert.Equal(t, "<!-- hello --><p>after</p>",
		renderStr(t, p, map[string]interface{}{"c": "hello", "x": "after"}))
	assert.Equal(t, "<!-- a &amp; b --><p></p>",
		renderStr(t, p, map[string]interface{}{"c": "a & b", "x": nil}))
	bt := p.NewBinding(nil)
	bt.BindIfName("c", "x --> y")
	_, err := bt.Render(io.Discard)
	if _, ok := err.(*RawtextError); !ok {
		t.Fatalf("want RawtextError, got %v", err)
	}
}

func TestClassify_script(t *testing.T) {
	p := mustProg(t,
		Lit("<script>var nested = "), Bind("v"), Lit(";</script>"))
	assert.Equal(t, CtxScript, holeCtx(t, p, "v"))
	out := renderStr(t, p, map[string]interface{}{
		"v": "<script>alert(1)</script>",
	})
	assert.Equal(t,
		`<script>var nested = "<\script>alert(1)<\/script>";</script>`, out)
}

func TestClassify_style(t *testing.T) {
	p := mustProg(t, Lit("<style>"), Bind("s"), Lit("</style>"))
	assert.Equal(t, CtxStyle, holeCtx(t, p, "s"))
	out := renderStr(t, p, map[string]interface{}{
		"s": map[Ident]string{
			Ident("padding_left"): "2em",
			Ident("width"):        "20px",
		},
	})
	assert.Equal(t, "<style>padding-left: 2em; width: 20px;</style>", out)
}

func TestClassify_selfClosingScript(t *testing.T) {
	p := mustProg(t, Lit("<script/>"), Bind("x"))
	assert.Equal(t, CtxContent, holeCtx(t, p, "x"),
		"a self-closing tag must not open a rawtext body")
}

func TestClassify_otherRawtextRejectsHoles(t *testing.T) {
	_, err := Classify(t.Name(),
		[]Segment{Lit("<xmp>"), Bind("x"), Lit("</xmp>")})
	assert.NotNil(t, err)
}

func TestClassify_holeInTagName(t *testing.T) {
	_, err := Classify(t.Name(), []Segment{Lit("<di"), Bind("x"), Lit("v>")})
	assert.NotNil(t, err)
}

func TestClassify_unexpectedEnd(t *testing.T) {
	_, err := Classify(t.Name(), []Segment{Lit("<div")})
	lerr, ok := err.(*LexError)
	if !ok {
		t.Fatalf("want LexError, got %v", err)
	}
	assert.Equal(t, "unexpected end of template", lerr.Msg)
}

func TestClassify_rejectedMarkup(t *testing.T) {
	for _, src := range []string{
		"<!DOCTYPE html><p></p>",
		"<![CDATA[x]]>",
		"<?php echo; ?>",
		"<!-- a <!-- b -->",
		"<!-- c --!>",
		"<p <b>></p>",
	} {
		_, err := Classify(t.Name(), []Segment{Lit(src)})
		if err == nil {
			t.Errorf("no error for %q", src)
		}
	}
}

func TestClassify_foldContent(t *testing.T) {
	p := mustProg(t, Lit("<p>"), Val("a&b"), Lit("</p>"))
	assert.Equal(t, 0, p.HoleNum())
	static, ok := p.Static()
	assert.Equal(t, true, ok)
	assert.Equal(t, "<p>a&amp;b</p>", string(static))
}

func TestClassify_foldFailsEarly(t *testing.T) {
	_, err := Classify(t.Name(),
		[]Segment{Lit("<!-- "), Val("-->"), Lit(" -->")})
	if _, ok := err.(*RawtextError); !ok {
		t.Fatalf("want RawtextError, got %v", err)
	}
}

func TestClassify_lineBreakNormalization(t *testing.T) {
	p := mustProg(t, Lit("<p>a\r\nb\rc</p>"))
	static, _ := p.Static()
	assert.Equal(t, "<p>a\nb\nc</p>", string(static))
}

func TestRenderedDocumentTokenizes(t *testing.T) {
	p := mustProg(t,
		Lit("<html><head><style>"), Bind("css"),
		Lit(`</style></head><body><h1 title="`), Bind("title"),
		Lit(`">`), Bind("head"),
		Lit("</h1><script>var cfg = "), Bind("cfg"),
		Lit(";</script></body></html>"))
	out := renderStr(t, p, map[string]interface{}{
		"css":   map[Ident]string{Ident("color"): "red"},
		"title": `a "quoted" & titled`,
		"head":  "Strunk & White",
		"cfg":   map[string]interface{}{"n": 1, "s": "</script>"},
	})
	z := html.NewTokenizer(strings.NewReader(out))
	var tags []string
	for {
		tt := z.Next()
		if tt == html.ErrorToken {
			if z.Err() != io.EOF {
				t.Fatal(z.Err())
			}
			break
		}
		if tt == html.StartTagToken {
			nm, _ := z.TagName()
			tags = append(tags, string(nm))
		}
	}
	assert.Equal(t, "html head style body h1 script", strings.Join(tags, " "))
}

func ExampleClassify() {
	prog, _ := Classify("greet", []Segment{
		Lit("<p title="), Bind("title"), Lit(">Hello, "), Bind("who"),
		Lit("!</p>"),
	})
	bt := prog.NewBinding(nil)
	bt.BindIfName("title", "a 'quote'")
	bt.BindIfName("who", "Strunk & White")
	bt.Emit(os.Stdout)
	// Output:
	// <p title='a &apos;quote&apos;'>Hello, Strunk &amp; White!</p>
}
