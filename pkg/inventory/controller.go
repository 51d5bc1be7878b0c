// Package inventory implements the reconciliation logic between user
// actions and the Store. Each item moves through three states: absent,
// in stock (quantity > 0), and depleted (quantity == 0, row retained).
// Adds create or grow stock, removes shrink it with a floor at zero, and
// deletion is only allowed once an item is depleted.
package inventory

import (
	"fmt"
	"sort"

	"github.com/mesh-intelligence/freezer/pkg/types"
)

// Controller validates user actions and drives Store mutations. It holds
// no item state of its own: every decision re-reads the store, because
// the store may be shared with other sessions and the caller's view can
// go stale between render and click.
type Controller struct {
	store  types.Store
	policy string
}

// New creates a Controller over the given store. policy is one of the
// OnDepleted constants; empty selects the retain default.
func New(store types.Store, policy string) *Controller {
	if policy == "" {
		policy = types.OnDepletedRetain
	}
	return &Controller{store: store, policy: policy}
}

// List returns the owner's items sorted by name. The ordering is a
// presentation nicety; the store itself guarantees none.
func (c *Controller) List() ([]*types.Item, error) {
	items, err := c.store.List()
	if err != nil {
		return nil, fmt.Errorf("listing inventory: %w", err)
	}
	sort.Slice(items, func(i, j int) bool { return items[i].Name < items[j].Name })
	return items, nil
}

// Add puts qty units of the named item into the freezer, creating the
// item if it is absent. The name is normalized first so casing and
// whitespace variants collapse to one row.
func (c *Controller) Add(name string, qty int) (*types.AddedEvent, error) {
	name = types.NormalizeName(name)
	if name == "" {
		return nil, types.ErrEmptyName
	}
	if qty < 1 {
		return nil, types.ErrInvalidQuantity
	}

	item, err := c.store.UpsertAdd(name, qty)
	if err != nil {
		return nil, fmt.Errorf("adding %q: %w", name, err)
	}
	return &types.AddedEvent{Name: item.Name, Added: qty, NewTotal: item.Quantity}, nil
}

// Remove takes amount units of the named item out of the freezer. The
// current quantity is re-read from the store and amount must fall in
// [1, current]; the new quantity is floored at zero either way. When the
// item hits zero a DepletedEvent is returned for the caller to render
// once, and under the delete policy the zeroed row is removed outright.
func (c *Controller) Remove(name string, amount int) (*types.Item, *types.DepletedEvent, error) {
	name = types.NormalizeName(name)
	if name == "" {
		return nil, nil, types.ErrEmptyName
	}

	current, err := c.currentQuantity(name)
	if err != nil {
		return nil, nil, err
	}
	if amount < 1 || amount > current {
		return nil, nil, fmt.Errorf("removing %d of %q with %d in stock: %w",
			amount, name, current, types.ErrAmountOutOfRange)
	}

	newQty := current - amount
	if newQty < 0 {
		newQty = 0
	}

	item, err := c.store.SetQuantity(name, newQty)
	if err != nil {
		return nil, nil, fmt.Errorf("removing from %q: %w", name, err)
	}
	if newQty > 0 {
		return item, nil, nil
	}

	event := &types.DepletedEvent{Name: item.Name, SearchLinks: types.SearchLinks(item.Name)}
	if c.policy == types.OnDepletedDelete {
		if err := c.store.Delete(name); err != nil {
			return nil, nil, fmt.Errorf("removing depleted %q: %w", name, err)
		}
		return nil, event, nil
	}
	return item, event, nil
}

// Delete removes the named item's row. Only valid once the item is
// depleted; the store guard rejects anything still in stock without
// mutating it, and the error names the item.
func (c *Controller) Delete(name string) error {
	name = types.NormalizeName(name)
	if name == "" {
		return types.ErrEmptyName
	}
	return c.store.Delete(name)
}

// currentQuantity reads the item's quantity from the store.
func (c *Controller) currentQuantity(name string) (int, error) {
	items, err := c.store.List()
	if err != nil {
		return 0, fmt.Errorf("reading stock for %q: %w", name, err)
	}
	for _, item := range items {
		if item.Name == name {
			return item.Quantity, nil
		}
	}
	return 0, fmt.Errorf("item %q: %w", name, types.ErrNotFound)
}
