// Package infer decides how free text typed into the editor maps back to
// typed JSON values, and how values are classified for rendering.
package infer

import (
	"encoding/json"
	"fmt"
	"math"
	"regexp"
	"strconv"

	"github.com/mcncl/jsonedit/internal/models"
)

// lenientDecimal accepts the decimal spellings people type that JSON
// itself rejects: a leading plus, leading zeros, ".5" and "5.".
var lenientDecimal = regexp.MustCompile(`^[+-]?([0-9]+\.?[0-9]*|\.[0-9]+)([eE][+-]?[0-9]+)?$`)

// Leaf infers the typed value for text typed into a leaf whose previous
// value had kind prev.
//
// A text that parses in full to a finite number becomes a Number; a
// canonical JSON literal is kept verbatim so "1.50" stays "1.50", other
// accepted spellings are normalised. Booleans and null only survive as
// such when the leaf already held that kind, so a string field that is
// edited to read "true" stays a string. Everything else, including the
// empty text, is a String.
func Leaf(text string, prev models.Kind) models.Value {
	switch {
	case prev == models.KindBool && (text == "true" || text == "false"):
		return models.Bool(text == "true")
	case prev == models.KindNull && text == "null":
		return models.Null()
	}
	if n, ok := Number(text); ok {
		return models.Number(n)
	}
	return models.String(text)
}

// Number reports whether text is a finite decimal number and returns its
// JSON literal.
func Number(text string) (json.Number, bool) {
	if !lenientDecimal.MatchString(text) {
		return "", false
	}
	f, err := strconv.ParseFloat(text, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return "", false
	}
	if models.IsNumberLiteral(text) {
		return json.Number(text), true
	}
	return json.Number(strconv.FormatFloat(f, 'g', -1, 64)), true
}

// Text returns the editable text shown for a leaf. Strings are shown
// without quotes or escapes, numbers as their literal.
func Text(v models.Value) string {
	switch v.Kind() {
	case models.KindString:
		return v.Str()
	case models.KindNumber:
		return string(v.Num())
	case models.KindBool:
		return strconv.FormatBool(v.Truth())
	case models.KindNull:
		return "null"
	default:
		return ""
	}
}

// FromText rebuilds the value a leaf displays from its text and kind.
// For any unedited leaf FromText(Text(v), v.Kind()) equals v.
func FromText(text string, kind models.Kind) (models.Value, error) {
	switch kind {
	case models.KindString:
		return models.String(text), nil
	case models.KindNumber:
		if !models.IsNumberLiteral(text) {
			return models.Value{}, fmt.Errorf("displayed number %q is not a JSON literal", text)
		}
		return models.Number(json.Number(text)), nil
	case models.KindBool:
		b, err := strconv.ParseBool(text)
		if err != nil {
			return models.Value{}, fmt.Errorf("displayed bool %q: %w", text, err)
		}
		return models.Bool(b), nil
	case models.KindNull:
		return models.Null(), nil
	default:
		return models.Value{}, fmt.Errorf("kind %s is not a leaf", kind)
	}
}

// IsLeaf reports whether v renders inline as editable text rather than
// as a nested tree node.
func IsLeaf(v models.Value) bool {
	return v.IsLeaf()
}

// UniqueKey returns base if it is free, otherwise base followed by the
// smallest positive integer that makes it free.
func UniqueKey(base string, taken func(string) bool) string {
	if !taken(base) {
		return base
	}
	for i := 1; ; i++ {
		candidate := base + strconv.Itoa(i)
		if !taken(candidate) {
			return candidate
		}
	}
}
