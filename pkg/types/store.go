package types

import "errors"

// Store defines the interface for backend-agnostic inventory persistence.
// Callers attach to a backend, mutate items, and detach when done. All
// operations are scoped to the owner given at Attach time.
//
// UpsertAdd is atomic with respect to concurrent adders of the same key:
// backends must implement it as a single conditional insert-or-increment,
// not a read followed by a write. SetQuantity and Delete are plain
// overwrites; two concurrent removers can both observe a stale quantity.
// That lost-update window is an accepted property of the design, not a
// bug for backends to paper over.
type Store interface {
	// Attach connects the Store to the backend described by config.
	// Returns ErrAlreadyAttached if called while already attached.
	Attach(config Config) error

	// Detach releases backend resources. Idempotent: multiple calls
	// succeed. After Detach, operations return ErrStoreDetached.
	Detach() error

	// List returns every item belonging to the attached owner, in no
	// particular order.
	List() ([]*Item, error)

	// UpsertAdd adds delta to the item's quantity, creating the row with
	// quantity = delta if it does not exist. delta must be positive;
	// returns ErrInvalidQuantity otherwise. Returns the resulting item.
	UpsertAdd(name string, delta int) (*Item, error)

	// SetQuantity overwrites the item's quantity. Returns
	// ErrNegativeQuantity if value < 0 and ErrNotFound if no row exists.
	SetQuantity(name string, value int) (*Item, error)

	// Delete removes the item's row. Returns an error wrapping
	// ErrNotDepleted if the row's quantity is still positive (the row is
	// left untouched), and ErrNotFound if no row exists.
	Delete(name string) error
}

// Store lifecycle errors.
var (
	ErrStoreDetached   = errors.New("store is detached")
	ErrAlreadyAttached = errors.New("store is already attached")
)

// Operation errors. ErrAuthExpired signals that the hosted backend's
// credential was rejected and the caller must re-authenticate; retrying
// with the same token will not help.
var (
	ErrNotFound         = errors.New("item not found")
	ErrEmptyName        = errors.New("item name must not be empty")
	ErrInvalidQuantity  = errors.New("quantity must be a positive integer")
	ErrNegativeQuantity = errors.New("quantity must not be negative")
	ErrAmountOutOfRange = errors.New("remove amount exceeds current stock")
	ErrNotDepleted      = errors.New("item still has stock")
	ErrAuthExpired      = errors.New("authentication expired")
)
