// Hypertext template engine that knows which context its holes are in!
// Copyright (C) 2017-2018 Marcus Perlick
package hyxic

import "strings"

// badNameChars would let an attribute or style property name break out
// of its syntactic slot.
const badNameChars = "/>='<&%\"`"

// CheckName rejects names that are empty or contain characters with
// markup meaning, whitespace or control characters.
func CheckName(name string) error {
	if len(name) == 0 {
		return &NameError{Name: name, Msg: "empty name"}
	}
	for i := 0; i < len(name); i++ {
		c := name[i]
		if c <= ' ' || c == 0x7f || strings.IndexByte(badNameChars, c) >= 0 {
			return &NameError{Name: name, Msg: "invalid character"}
		}
	}
	return nil
}

// identName maps a structured identifier to an attribute name: leading
// underscores are dropped, the remaining underscores become hyphens.
// Mixed case is kept as is.
func identName(id string) string {
	id = strings.TrimLeft(id, "_")
	return strings.ReplaceAll(id, "_", "-")
}

// attrName resolves a map key or Pair name to the name that is written
// out, applying the identifier rules for Ident keys.
func attrName(key interface{}) (string, error) {
	var nm string
	switch k := key.(type) {
	case Ident:
		nm = identName(string(k))
	case string:
		nm = k
	default:
		return "", &NameError{Msg: "name must be a string or Ident"}
	}
	if err := CheckName(nm); err != nil {
		return "", err
	}
	return nm, nil
}
