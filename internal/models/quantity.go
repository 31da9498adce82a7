package models

import (
	"strconv"
	"strings"
)

// QuantityKind discriminates how a stored quantity behaves during
// aggregation: numeric quantities scale and sum, text quantities are counted,
// absent quantities still surface the ingredient with a zero amount.
type QuantityKind int

const (
	QuantityAbsent QuantityKind = iota
	QuantityNumeric
	QuantityText
)

// Quantity is the parsed form of RecipeIngredient.Quantity. The raw column is
// inspected exactly once at read time; everything downstream switches on Kind.
type Quantity struct {
	Kind  QuantityKind
	Value float64
	Text  string
}

// ParseQuantity classifies a raw quantity column value.
func ParseQuantity(raw *string) Quantity {
	if raw == nil {
		return Quantity{Kind: QuantityAbsent}
	}
	s := strings.TrimSpace(*raw)
	if s == "" {
		return Quantity{Kind: QuantityAbsent}
	}
	if v, err := strconv.ParseFloat(s, 64); err == nil {
		return Quantity{Kind: QuantityNumeric, Value: v}
	}
	return Quantity{Kind: QuantityText, Text: s}
}
