package enums

import "fmt"

// ItemStatus toggles whether an item can be picked for new orders.
type ItemStatus string

const (
	ItemStatusEnabled  ItemStatus = "Enabled"
	ItemStatusDisabled ItemStatus = "Disabled"
)

var validItemStatuses = []ItemStatus{
	ItemStatusEnabled,
	ItemStatusDisabled,
}

func (s ItemStatus) String() string {
	return string(s)
}

func (s ItemStatus) IsValid() bool {
	for _, candidate := range validItemStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseItemStatus converts raw input into an ItemStatus.
func ParseItemStatus(value string) (ItemStatus, error) {
	for _, candidate := range validItemStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid item status %q", value)
}
