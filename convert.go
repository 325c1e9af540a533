// Hypertext template engine that knows which context its holes are in!
// Copyright (C) 2017-2018 Marcus Perlick
package hyxic

import (
	"fmt"
	"io"
	"math"
	"reflect"
	"sort"
	"strconv"
	"sync"
)

// ConvertFunc serializes a host value for one escaping context. For
// content, comment and attribute contexts wr escapes written bytes;
// for script and style contexts wr is the raw, guarded sink.
type ConvertFunc func(wr io.Writer, v interface{}) (int, error)

type convKey struct {
	ty  reflect.Type
	ctx Context
}

var convReg = struct {
	sync.RWMutex
	m map[convKey]ConvertFunc
}{m: make(map[convKey]ConvertFunc)}

// canonCtx folds the contexts that share conversion rules: comment
// holes convert like content, all attribute value flavours convert
// alike.
func canonCtx(ctx Context) Context {
	switch ctx {
	case CtxComment:
		return CtxContent
	case CtxAttrSingle, CtxAttrUnquoted:
		return CtxAttrDouble
	}
	return ctx
}

// RegisterConverter installs a conversion for values of type ty in the
// given context. Registered conversions take precedence over the
// reflection-based defaults but not over the built-in scalar rules.
func RegisterConverter(ty reflect.Type, ctx Context, f ConvertFunc) {
	convReg.Lock()
	defer convReg.Unlock()
	convReg.m[convKey{ty, canonCtx(ctx)}] = f
}

func lookupConv(v interface{}, ctx Context) ConvertFunc {
	convReg.RLock()
	defer convReg.RUnlock()
	return convReg.m[convKey{reflect.TypeOf(v), canonCtx(ctx)}]
}

func convErr(n int, v interface{}, ctx Context) int {
	panic(EmitError{n, &ConversionError{Type: reflect.TypeOf(v), Ctx: ctx}})
}

func wrBytes(w io.Writer, p []byte) int {
	n, err := w.Write(p)
	if err != nil {
		panic(EmitError{n, err})
	}
	return n
}

func wrStr(w io.Writer, s string) int {
	return wrBytes(w, []byte(s))
}

func runConv(f ConvertFunc, w io.Writer, v interface{}) int {
	n, err := f(w, v)
	if err != nil {
		panic(EmitError{n, err})
	}
	return n
}

func scalarString(rv reflect.Value) string {
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(rv.Int(), 10)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32,
		reflect.Uint64, reflect.Uintptr:
		return strconv.FormatUint(rv.Uint(), 10)
	case reflect.Float32:
		return strconv.FormatFloat(rv.Float(), 'g', -1, 32)
	case reflect.Float64:
		return strconv.FormatFloat(rv.Float(), 'g', -1, 64)
	}
	panic("no scalar value")
}

func isIntKind(k reflect.Kind) bool {
	return k >= reflect.Int && k <= reflect.Uintptr
}

func isFloatKind(k reflect.Kind) bool {
	return k == reflect.Float32 || k == reflect.Float64
}

// emitContent converts v for element content: text is escaped, numbers
// are printed, sequences concatenate, trusted fragments pass through.
// Types without any rule fall back to a visibly marked, escaped print
// form so a missed conversion shows up in the document.
func emitContent(ew *EscWriter, v interface{}) (n int) {
	switch x := v.(type) {
	case nil:
		return 0
	case missing:
		return 0
	case Content:
		return x.Emit(ew.Escape)
	case string:
		return wrStr(ew, x)
	case []byte:
		return wrBytes(ew, x)
	case bool:
		if x {
			return wrStr(ew, "true")
		}
		return wrStr(ew, "false")
	case fmt.Stringer:
		return wrStr(ew, x.String())
	}
	if f := lookupConv(v, CtxContent); f != nil {
		return runConv(f, ew, v)
	}
	rv := reflect.ValueOf(v)
	switch {
	case isIntKind(rv.Kind()) || isFloatKind(rv.Kind()):
		n, err := ew.Bypass([]byte(scalarString(rv)))
		if err != nil {
			panic(EmitError{n, err})
		}
		return n
	case rv.Kind() == reflect.String:
		return wrStr(ew, rv.String())
	case rv.Kind() == reflect.Slice || rv.Kind() == reflect.Array:
		for i := 0; i < rv.Len(); i++ {
			n += emitContent(ew, rv.Index(i).Interface())
		}
		return n
	case rv.Kind() == reflect.Map:
		return convErr(0, v, CtxContent)
	case rv.Kind() == reflect.Ptr && rv.IsNil():
		return 0
	}
	n = bypassStr(ew, `<span class="hyxic-fallback">`)
	n += wrStr(ew, fmt.Sprint(v))
	n += bypassStr(ew, "</span>")
	return n
}

func bypassStr(ew *EscWriter, s string) int {
	n, err := ew.Bypass([]byte(s))
	if err != nil {
		panic(EmitError{n, err})
	}
	return n
}

// pairList resolves the value shapes that expand into name/value
// pairs: Pair, []Pair and maps with string or Ident keys. Map pairs
// are emitted in sorted name order so renders are deterministic.
func pairList(v interface{}, f func(name string, val interface{}) int) (n int, ok bool) {
	switch x := v.(type) {
	case Pair:
		nm, err := attrName(x.Name)
		if err != nil {
			panic(EmitError{0, err})
		}
		return f(nm, x.Value), true
	case []Pair:
		for _, p := range x {
			nm, err := attrName(p.Name)
			if err != nil {
				panic(EmitError{n, err})
			}
			n += f(nm, p.Value)
		}
		return n, true
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Map {
		return 0, false
	}
	type pair struct {
		name string
		val  interface{}
	}
	pairs := make([]pair, 0, rv.Len())
	for _, k := range rv.MapKeys() {
		nm, err := attrName(k.Interface())
		if err != nil {
			panic(EmitError{n, err})
		}
		pairs = append(pairs, pair{nm, rv.MapIndex(k).Interface()})
	}
	sort.Slice(pairs, func(i, j int) bool { return pairs[i].name < pairs[j].name })
	for _, p := range pairs {
		n += f(p.name, p.val)
	}
	return n, true
}

// emitAttrValue converts v for a quoted attribute value. Sequences
// join with single spaces, maps serialize as style-like "name: value;"
// pairs. Booleans and trusted fragments have no quoted-value form.
func emitAttrValue(ew *EscWriter, v interface{}) (n int) {
	switch x := v.(type) {
	case nil:
		return 0
	case missing:
		return 0
	case string:
		return wrStr(ew, x)
	case []byte:
		return wrBytes(ew, x)
	case bool:
		return convErr(0, v, CtxAttrDouble)
	case Content:
		return convErr(0, v, CtxAttrDouble)
	case fmt.Stringer:
		return wrStr(ew, x.String())
	}
	if f := lookupConv(v, CtxAttrDouble); f != nil {
		return runConv(f, ew, v)
	}
	rv := reflect.ValueOf(v)
	switch {
	case isIntKind(rv.Kind()) || isFloatKind(rv.Kind()):
		return bypassStr(ew, scalarString(rv))
	case rv.Kind() == reflect.String:
		return wrStr(ew, rv.String())
	case rv.Kind() == reflect.Slice || rv.Kind() == reflect.Array:
		for i := 0; i < rv.Len(); i++ {
			if i > 0 {
				n += bypassStr(ew, " ")
			}
			n += emitAttrValue(ew, rv.Index(i).Interface())
		}
		return n
	case rv.Kind() == reflect.Map:
		first := true
		sn, ok := pairList(v, func(nm string, val interface{}) (c int) {
			if !first {
				c += bypassStr(ew, " ")
			}
			first = false
			c += bypassStr(ew, nm+": ")
			c += emitAttrValue(ew, val)
			c += bypassStr(ew, ";")
			return c
		})
		if ok {
			return sn
		}
	}
	return convErr(0, v, CtxAttrDouble)
}

// emitUnquotedAttr writes a whole attribute for an a=$v interpolation:
// " name='value'", or "name=''" for boolean true, or nothing at all
// for false and absent values.
func emitUnquotedAttr(ew *EscWriter, name string, v interface{}) (n int) {
	switch x := v.(type) {
	case nil:
		return 0
	case missing:
		return 0
	case bool:
		if !x {
			return 0
		}
		return bypassStr(ew, " "+name+"=''")
	}
	n = bypassStr(ew, " "+name+"='")
	n += emitAttrValue(ew, v)
	n += bypassStr(ew, "'")
	return n
}

// emitTagExpansion expands v into zero or more attributes between a
// tag's name and its '>'.
func emitTagExpansion(ew *EscWriter, v interface{}) int {
	if v == nil || v == Missing {
		return 0
	}
	if f := lookupConv(v, CtxInsideTag); f != nil {
		return runConv(f, ew, v)
	}
	n, ok := pairList(v, func(nm string, val interface{}) int {
		return emitUnquotedAttr(ew, nm, val)
	})
	if !ok {
		return convErr(0, v, CtxInsideTag)
	}
	return n
}

// jsStringBytes encodes s as a double-quoted JS string literal. Beside
// the usual escapes, "<" directly before "s", "S", "!" or "/" gets a
// backslash so neither "<script" nor "</script" nor "<!--" can appear
// in the emitted literal.
func jsStringBytes(s string) []byte {
	out := make([]byte, 0, len(s)+2)
	out = append(out, '"')
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch c {
		case '\\':
			out = append(out, '\\', '\\')
		case '"':
			out = append(out, '\\', '"')
		case '\n':
			out = append(out, '\\', 'n')
		case '\r':
			out = append(out, '\\', 'r')
		case '<':
			if i+1 < len(s) {
				switch s[i+1] {
				case 's', 'S', '!', '/':
					out = append(out, '<', '\\')
					continue
				}
			}
			out = append(out, '<')
		case 0xe2:
			if i+2 < len(s) && s[i+1] == 0x80 &&
				(s[i+2] == 0xa8 || s[i+2] == 0xa9) {
				if s[i+2] == 0xa8 {
					out = append(out, `\u2028`...)
				} else {
					out = append(out, `\u2029`...)
				}
				i += 2
				continue
			}
			out = append(out, c)
		default:
			out = append(out, c)
		}
	}
	return append(out, '"')
}

func jsFloat(f float64, bits int) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	}
	return strconv.FormatFloat(f, 'g', -1, bits)
}

// emitScript serializes v as a JS literal into a script body or an
// on* attribute: strings become quoted literals, sequences arrays,
// maps objects with quoted keys.
func emitScript(w io.Writer, v interface{}) (n int) {
	switch x := v.(type) {
	case nil:
		return wrStr(w, "undefined")
	case missing:
		return wrStr(w, "null")
	case string:
		return wrBytes(w, jsStringBytes(x))
	case []byte:
		return wrBytes(w, jsStringBytes(string(x)))
	case bool:
		if x {
			return wrStr(w, "true")
		}
		return wrStr(w, "false")
	case fmt.Stringer:
		return wrBytes(w, jsStringBytes(x.String()))
	}
	if f := lookupConv(v, CtxScript); f != nil {
		return runConv(f, w, v)
	}
	rv := reflect.ValueOf(v)
	switch {
	case isIntKind(rv.Kind()):
		return wrStr(w, scalarString(rv))
	case rv.Kind() == reflect.Float32:
		return wrStr(w, jsFloat(rv.Float(), 32))
	case rv.Kind() == reflect.Float64:
		return wrStr(w, jsFloat(rv.Float(), 64))
	case rv.Kind() == reflect.String:
		return wrBytes(w, jsStringBytes(rv.String()))
	case rv.Kind() == reflect.Slice || rv.Kind() == reflect.Array:
		n = wrStr(w, "[")
		for i := 0; i < rv.Len(); i++ {
			if i > 0 {
				n += wrStr(w, ", ")
			}
			n += emitScript(w, rv.Index(i).Interface())
		}
		return n + wrStr(w, "]")
	case rv.Kind() == reflect.Map:
		n = wrStr(w, "{")
		first := true
		sn, ok := pairListJS(v, func(nm string, val interface{}) (c int) {
			if !first {
				c += wrStr(w, ", ")
			}
			first = false
			c += wrBytes(w, jsStringBytes(nm))
			c += wrStr(w, ": ")
			c += emitScript(w, val)
			return c
		})
		if ok {
			return n + sn + wrStr(w, "}")
		}
	}
	return convErr(0, v, CtxScript)
}

// pairListJS is pairList without the attribute-name validation – any
// key string can be quoted into a JS object literal.
func pairListJS(v interface{}, f func(name string, val interface{}) int) (n int, ok bool) {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Map {
		return 0, false
	}
	type pair struct {
		name string
		val  interface{}
	}
	pairs := make([]pair, 0, rv.Len())
	for _, k := range rv.MapKeys() {
		var nm string
		switch kk := k.Interface().(type) {
		case Ident:
			nm = identName(string(kk))
		case string:
			nm = kk
		default:
			panic(EmitError{n, &NameError{Msg: "name must be a string or Ident"}})
		}
		pairs = append(pairs, pair{nm, rv.MapIndex(k).Interface()})
	}
	sort.Slice(pairs, func(i, j int) bool { return pairs[i].name < pairs[j].name })
	for _, p := range pairs {
		n += f(p.name, p.val)
	}
	return n, true
}

// emitStyle serializes v into a style element body. Style bodies skip
// entity escaping entirely; the surrounding Guard rejects sequences
// that could terminate the element.
func emitStyle(w io.Writer, v interface{}) (n int) {
	switch x := v.(type) {
	case nil:
		return 0
	case missing:
		return 0
	case string:
		return wrStr(w, x)
	case []byte:
		return wrBytes(w, x)
	case fmt.Stringer:
		return wrStr(w, x.String())
	}
	if f := lookupConv(v, CtxStyle); f != nil {
		return runConv(f, w, v)
	}
	rv := reflect.ValueOf(v)
	switch {
	case isIntKind(rv.Kind()) || isFloatKind(rv.Kind()):
		return wrStr(w, scalarString(rv))
	case rv.Kind() == reflect.String:
		return wrStr(w, rv.String())
	case rv.Kind() == reflect.Map:
		first := true
		sn, ok := pairList(v, func(nm string, val interface{}) (c int) {
			if !first {
				c += wrStr(w, " ")
			}
			first = false
			c += wrStr(w, nm+": ")
			c += emitStyle(w, val)
			c += wrStr(w, ";")
			return c
		})
		if ok {
			return sn
		}
	}
	return convErr(0, v, CtxStyle)
}
