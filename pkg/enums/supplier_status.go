package enums

import "fmt"

// SupplierStatus captures whether a supplier may be ordered from.
type SupplierStatus string

const (
	SupplierStatusActive   SupplierStatus = "Active"
	SupplierStatusInactive SupplierStatus = "Inactive"
	SupplierStatusBlocked  SupplierStatus = "Blocked"
)

var validSupplierStatuses = []SupplierStatus{
	SupplierStatusActive,
	SupplierStatusInactive,
	SupplierStatusBlocked,
}

func (s SupplierStatus) String() string {
	return string(s)
}

func (s SupplierStatus) IsValid() bool {
	for _, candidate := range validSupplierStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseSupplierStatus converts raw input into a SupplierStatus.
func ParseSupplierStatus(value string) (SupplierStatus, error) {
	for _, candidate := range validSupplierStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid supplier status %q", value)
}
