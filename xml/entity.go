package xml

import (
	"errors"
	"strconv"
)

// ============================================================================
// ENTITY AND CHARACTER REFERENCE RESOLVER
// ============================================================================
// Entity declarations are not processed (a DOCTYPE is discarded whole by the
// parser), so resolution is a
// single, non-recursive pass: a reference either names one of the five
// predefined entities, decodes as a numeric character reference, or is
// handed to the undefined-entity policy. There is nothing here that could
// recurse, so no expansion-depth guard is needed.

// predefinedEntity returns the character a predefined entity name expands
// to, per production [66]/4.6 of XML 1.0.
func predefinedEntity(name string) (rune, bool) {
	switch name {
	case "amp":
		return '&', true
	case "lt":
		return '<', true
	case "gt":
		return '>', true
	case "apos":
		return '\'', true
	case "quot":
		return '"', true
	}
	return 0, false
}

// decodeCharRef parses the digits of a character reference (everything
// between "&#" or "&#x" and the terminating ";") and validates that the
// resulting code point is a legal XML character.
func decodeCharRef(hex bool, digits string) (rune, error) {
	base := 10
	if hex {
		base = 16
	}
	v, err := strconv.ParseInt(digits, base, 32)
	if err != nil {
		return 0, errInvalidCharRef
	}
	r := rune(v)
	if !isChar(r) {
		return 0, errInvalidCharRef
	}
	return r, nil
}

var errInvalidCharRef = errors.New("character reference does not denote a legal XML character")
