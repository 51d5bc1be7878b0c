package types

import (
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Item states, derived from quantity. An item with no row is absent;
// a zero-quantity row is depleted, not deleted, so the user can confirm
// removal (or restock) later.
const (
	StateInStock  = "in_stock"
	StateDepleted = "depleted"
)

// Item represents one kind of food in the freezer.
type Item struct {
	ItemID    string    `json:"item_id"`  // UUID v7, generated on creation.
	Owner     string    `json:"owner"`    // Tenant scoping; DefaultOwner when single-tenant.
	Name      string    `json:"name"`     // Title-cased, unique per owner.
	Quantity  int       `json:"quantity"` // Never negative.
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// State returns the lifecycle state implied by the item's quantity.
func (i *Item) State() string {
	if i.Quantity > 0 {
		return StateInStock
	}
	return StateDepleted
}

// NormalizeName trims surrounding whitespace and title-cases the name so
// that casing and whitespace variants of the same item collapse to one
// key ("  pizza " and "PIZZA" both become "Pizza").
// A fresh Caser per call: Casers are stateful and not goroutine-safe.
func NormalizeName(name string) string {
	return cases.Title(language.Und).String(strings.TrimSpace(name))
}
