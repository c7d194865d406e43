// Package ingest loads the semi-structured vessel census file into the
// registry store, normalizing every raw field on the way in.
package ingest

import (
	"strconv"
	"strings"
)

// emptySentinel marks an explicitly absent value in the census file.
const emptySentinel = "-"

// ToFloat coerces a raw census cell to a float. Empty cells, the "-"
// sentinel and anything unparseable become nil; thousands separators are
// stripped first. Never returns an error, ingestion must not abort on one
// bad cell.
func ToFloat(raw string) *float64 {
	if raw == "" || raw == emptySentinel || strings.TrimSpace(raw) == "" {
		return nil
	}
	cleaned := strings.ReplaceAll(strings.TrimSpace(raw), ",", "")
	value, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return nil
	}
	return &value
}

// ToInt coerces a raw census cell to an int via the float path, so inputs
// like "3.0" parse. Same null handling as ToFloat.
func ToInt(raw string) *int {
	f := ToFloat(raw)
	if f == nil {
		return nil
	}
	value := int(*f)
	return &value
}

// ToText coerces a raw census cell to text. Only the "-" sentinel maps to
// nil; an explicitly blank cell stays an empty string so "blank" and
// "absent" remain distinguishable where the source distinguishes them.
func ToText(raw string) *string {
	if raw == emptySentinel {
		return nil
	}
	trimmed := strings.TrimSpace(raw)
	return &trimmed
}
