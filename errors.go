// Hypertext template engine that knows which context its holes are in!
// Copyright (C) 2017-2018 Marcus Perlick
package hyxic

import (
	"fmt"
	"reflect"
)

// excerptLen bounds the piece of offending input that error messages
// carry along.
const excerptLen = 40

func excerpt(s []byte) string {
	if len(s) <= excerptLen {
		return string(s)
	}
	return string(s[len(s)-excerptLen:]) + "…"
}

// LexError reports malformed markup structure found while classifying a
// template. It is fatal to compilation.
type LexError struct {
	Tmpl    string
	State   LexState
	Msg     string
	Excerpt string
}

func (e *LexError) Error() string {
	if len(e.Excerpt) == 0 {
		return fmt.Sprintf("template '%s': %s in state %s",
			e.Tmpl, e.Msg, e.State)
	}
	return fmt.Sprintf("template '%s': %s in state %s near %q",
		e.Tmpl, e.Msg, e.State, e.Excerpt)
}

// AdjacentError reports an unquoted attribute interpolation that is
// directly followed by more value text or by another hole.
type AdjacentError struct {
	Tmpl    string
	Attr    string
	Excerpt string
}

func (e *AdjacentError) Error() string {
	return fmt.Sprintf(
		"template '%s': unquoted interpolation for attribute '%s' must stand alone near %q",
		e.Tmpl, e.Attr, e.Excerpt)
}

// NameError reports an empty or otherwise unusable attribute name.
type NameError struct {
	Name string
	Msg  string
}

func (e *NameError) Error() string {
	return fmt.Sprintf("attribute name %q: %s", e.Name, e.Msg)
}

// ConversionError reports a value that has no conversion rule for the
// context its hole was classified into. Unless the value is known at
// compile time it surfaces when rendering.
type ConversionError struct {
	Type reflect.Type
	Ctx  Context
}

func (e *ConversionError) Error() string {
	if e.Type == nil {
		return fmt.Sprintf("no conversion for nil in context %s", e.Ctx)
	}
	return fmt.Sprintf("no conversion for type %s in context %s", e.Type, e.Ctx)
}

// RawtextError reports a forbidden byte sequence streaming through a
// script, style or comment body.
type RawtextError struct {
	Where  string
	Needle string
}

func (e *RawtextError) Error() string {
	return fmt.Sprintf("%s content must not contain %q", e.Where, e.Needle)
}
