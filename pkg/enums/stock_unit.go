package enums

import (
	"fmt"
	"strings"
)

// StockUnit is the unit an item is stocked and ordered in.
type StockUnit string

const (
	StockUnitPieces   StockUnit = "PCS"
	StockUnitBox      StockUnit = "BOX"
	StockUnitKilogram StockUnit = "KG"
	StockUnitLitre    StockUnit = "L"
)

var validStockUnits = []StockUnit{
	StockUnitPieces,
	StockUnitBox,
	StockUnitKilogram,
	StockUnitLitre,
}

// String implements fmt.Stringer.
func (s StockUnit) String() string {
	return string(s)
}

// IsValid reports whether the value is a known StockUnit.
func (s StockUnit) IsValid() bool {
	for _, candidate := range validStockUnits {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseStockUnit converts raw input into a StockUnit. Matching ignores case.
func ParseStockUnit(value string) (StockUnit, error) {
	normalized := strings.ToUpper(strings.TrimSpace(value))
	for _, candidate := range validStockUnits {
		if string(candidate) == normalized {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid stock unit %q", value)
}
