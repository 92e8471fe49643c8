// Package model holds the plain data types of the game economy. Types here
// carry no behavior beyond small accessors; all mutation goes through the
// stores that own them.
package model

import "fmt"

// Principal is an opaque, already-authenticated caller identity.
type Principal string

// Zero is the null principal. It is never a valid actor or recipient.
const Zero Principal = ""

// Category is the static classification of a board property.
type Category int

const (
	StreetBrown Category = iota
	StreetLightBlue
	StreetPink
	StreetOrange
	StreetRed
	StreetYellow
	StreetGreen
	StreetDarkBlue
	Station
	Utility
)

var categoryNames = map[Category]string{
	StreetBrown:     "STREET_BROWN",
	StreetLightBlue: "STREET_LIGHTBLUE",
	StreetPink:      "STREET_PINK",
	StreetOrange:    "STREET_ORANGE",
	StreetRed:       "STREET_RED",
	StreetYellow:    "STREET_YELLOW",
	StreetGreen:     "STREET_GREEN",
	StreetDarkBlue:  "STREET_DARKBLUE",
	Station:         "STATION",
	Utility:         "UTILITY",
}

func (c Category) String() string {
	if s, ok := categoryNames[c]; ok {
		return s
	}
	return fmt.Sprintf("CATEGORY_%d", int(c))
}

// ParseCategory maps the wire/catalog name back to a Category.
func ParseCategory(s string) (Category, bool) {
	for c, name := range categoryNames {
		if name == s {
			return c, true
		}
	}
	return 0, false
}

// Property is one non-fungible deed. Exactly one owner at all times; the
// approval slot grants a single transfer and is cleared when used.
type Property struct {
	ID          uint64
	Name        string
	Category    Category
	Value       int64
	Rent        int64
	MetadataRef string

	Owner    Principal
	Approved Principal
}

// Offer is one property-for-currency trade proposal. Once Active goes false
// the offer is terminal; a replacement gets a fresh id.
type Offer struct {
	ID         uint64
	From       Principal
	To         Principal
	PropertyID uint64
	Price      int64
	Active     bool
	CreatedAt  int64
}

// Player is the per-principal registry record. Timestamps are unix seconds;
// cooldown and lock remaining are derived from them, never stored.
type Player struct {
	Registered    bool
	PropertyCount int
	LastActionAt  int64
	LockedUntil   int64
}
