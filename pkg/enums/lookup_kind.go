package enums

import "fmt"

// LookupKind is a reference list exposed by the catalog backend.
type LookupKind string

const (
	LookupCategories  LookupKind = "categories"
	LookupBrands      LookupKind = "brands"
	LookupDepartments LookupKind = "departments"
	LookupCountries   LookupKind = "countries"
	LookupStates      LookupKind = "states"
	LookupCities      LookupKind = "cities"
	LookupColors      LookupKind = "colors"
)

var validLookupKinds = []LookupKind{
	LookupCategories,
	LookupBrands,
	LookupDepartments,
	LookupCountries,
	LookupStates,
	LookupCities,
	LookupColors,
}

func (k LookupKind) String() string {
	return string(k)
}

func (k LookupKind) IsValid() bool {
	for _, candidate := range validLookupKinds {
		if candidate == k {
			return true
		}
	}
	return false
}

// ParentParam returns the query parameter that scopes a dependent lookup, if any.
func (k LookupKind) ParentParam() string {
	switch k {
	case LookupStates:
		return "country"
	case LookupCities:
		return "state"
	default:
		return ""
	}
}

func ParseLookupKind(value string) (LookupKind, error) {
	for _, candidate := range validLookupKinds {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid lookup kind %q", value)
}
