// Package sequence produces the human-readable, zero-padded record numbers
// (ITEM000001, SUP-000001, PO000001) assigned before a record is first saved.
//
// Numbers are derived from the most recently issued value only. There is no
// counter or lock behind them; two concurrent inserts can compute the same
// number and the unique index on the column rejects the second one.
package sequence

import (
	"fmt"
	"strconv"
	"strings"
)

// Format describes one numbering scheme.
type Format struct {
	Prefix string
	Width  int
}

var (
	ItemNumber     = Format{Prefix: "ITEM", Width: 6}
	SupplierNumber = Format{Prefix: "SUP-", Width: 6}
	OrderNumber    = Format{Prefix: "PO", Width: 6}
)

// Format renders n with the prefix and zero padding. Values wider than the
// padding are rendered in full.
func (f Format) Format(n int) string {
	return fmt.Sprintf("%s%0*d", f.Prefix, f.Width, n)
}

// Parse returns the numeric suffix of value.
func (f Format) Parse(value string) (int, error) {
	if !strings.HasPrefix(value, f.Prefix) {
		return 0, fmt.Errorf("sequence %q does not start with %q", value, f.Prefix)
	}
	digits := strings.TrimPrefix(value, f.Prefix)
	if digits == "" {
		return 0, fmt.Errorf("sequence %q has no numeric suffix", value)
	}
	n, err := strconv.Atoi(digits)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("sequence %q has invalid suffix %q", value, digits)
	}
	return n, nil
}

// Next returns the number following last. An empty last means the collection
// is empty and numbering starts at 1.
func (f Format) Next(last string) (string, error) {
	last = strings.TrimSpace(last)
	if last == "" {
		return f.Format(1), nil
	}
	n, err := f.Parse(last)
	if err != nil {
		return "", err
	}
	return f.Format(n + 1), nil
}
