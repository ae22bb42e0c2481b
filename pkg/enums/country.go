package enums

import (
	"fmt"
	"strings"
)

// Country is the closed list of supplier countries.
type Country string

const (
	CountryUnitedStates  Country = "United States"
	CountryUnitedKingdom Country = "United Kingdom"
	CountryCanada        Country = "Canada"
	CountryAustralia     Country = "Australia"
	CountryGermany       Country = "Germany"
	CountryFrance        Country = "France"
	CountryJapan         Country = "Japan"
	CountryChina         Country = "China"
	CountryIndia         Country = "India"
)

var validCountries = []Country{
	CountryUnitedStates,
	CountryUnitedKingdom,
	CountryCanada,
	CountryAustralia,
	CountryGermany,
	CountryFrance,
	CountryJapan,
	CountryChina,
	CountryIndia,
}

// Countries returns a copy of the supported list, in display order.
func Countries() []Country {
	return append([]Country(nil), validCountries...)
}

func (c Country) String() string {
	return string(c)
}

func (c Country) IsValid() bool {
	for _, candidate := range validCountries {
		if candidate == c {
			return true
		}
	}
	return false
}

// ParseCountry matches a country name case-insensitively and returns its canonical spelling.
func ParseCountry(value string) (Country, error) {
	trimmed := strings.TrimSpace(value)
	for _, candidate := range validCountries {
		if strings.EqualFold(string(candidate), trimmed) {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid country %q", value)
}
