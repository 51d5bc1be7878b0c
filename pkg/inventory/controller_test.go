// Controller tests run against the real SQLite backend so the whole
// stack below the CLI is exercised.
package inventory

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/freezer/internal/sqlite"
	"github.com/mesh-intelligence/freezer/pkg/types"
)

func newTestController(t *testing.T, policy string) *Controller {
	t.Helper()
	b := sqlite.NewBackend()
	err := b.Attach(types.Config{
		Backend: types.BackendSQLite,
		DataDir: t.TempDir(),
		Owner:   types.DefaultOwner,
	})
	require.NoError(t, err)
	t.Cleanup(func() { b.Detach() })
	return New(b, policy)
}

func TestAddAccumulatesUnderOneRow(t *testing.T) {
	c := newTestController(t, "")

	event, err := c.Add("Pizza", 2)
	require.NoError(t, err)
	assert.Equal(t, "Pizza", event.Name)
	assert.Equal(t, 2, event.NewTotal)

	event, err = c.Add("Pizza", 3)
	require.NoError(t, err)
	assert.Equal(t, 5, event.NewTotal)

	items, err := c.List()
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, 5, items[0].Quantity)
}

func TestAddNormalizesName(t *testing.T) {
	c := newTestController(t, "")

	_, err := c.Add(" pizza ", 1)
	require.NoError(t, err)
	_, err = c.Add("PIZZA", 1)
	require.NoError(t, err)

	items, err := c.List()
	require.NoError(t, err)
	require.Len(t, items, 1, "casing and whitespace variants must share one row")
	assert.Equal(t, "Pizza", items[0].Name)
	assert.Equal(t, 2, items[0].Quantity)
}

func TestAddValidation(t *testing.T) {
	c := newTestController(t, "")

	_, err := c.Add("   ", 1)
	assert.ErrorIs(t, err, types.ErrEmptyName)

	_, err = c.Add("Pizza", 0)
	assert.ErrorIs(t, err, types.ErrInvalidQuantity)

	_, err = c.Add("Pizza", -2)
	assert.ErrorIs(t, err, types.ErrInvalidQuantity)

	items, err := c.List()
	require.NoError(t, err)
	assert.Empty(t, items, "rejected adds must not touch the store")
}

func TestRemoveRejectsOutOfRangeAmounts(t *testing.T) {
	c := newTestController(t, "")

	_, err := c.Add("Salmon", 3)
	require.NoError(t, err)

	_, _, err = c.Remove("Salmon", 4)
	assert.ErrorIs(t, err, types.ErrAmountOutOfRange)

	_, _, err = c.Remove("Salmon", 0)
	assert.ErrorIs(t, err, types.ErrAmountOutOfRange)

	// Quantity unchanged after rejections.
	items, err := c.List()
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, 3, items[0].Quantity)

	_, _, err = c.Remove("Tofu", 1)
	assert.ErrorIs(t, err, types.ErrNotFound)
}

func TestRemovePartialKeepsStock(t *testing.T) {
	c := newTestController(t, "")

	_, err := c.Add("Salmon", 3)
	require.NoError(t, err)

	item, depleted, err := c.Remove("Salmon", 2)
	require.NoError(t, err)
	assert.Nil(t, depleted)
	assert.Equal(t, 1, item.Quantity)
	assert.Equal(t, types.StateInStock, item.State())
}

func TestRemoveToZeroRetainsRowAndEmitsEvent(t *testing.T) {
	c := newTestController(t, types.OnDepletedRetain)

	_, err := c.Add("Salmon", 3)
	require.NoError(t, err)

	item, depleted, err := c.Remove("Salmon", 3)
	require.NoError(t, err)
	require.NotNil(t, depleted)
	assert.Equal(t, "Salmon", depleted.Name)
	assert.Len(t, depleted.SearchLinks, 2)
	assert.Equal(t, 0, item.Quantity)
	assert.Equal(t, types.StateDepleted, item.State())

	// The zeroed row is still listed, pending user-confirmed deletion.
	items, err := c.List()
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, 0, items[0].Quantity)
}

func TestRemoveToZeroUnderDeletePolicy(t *testing.T) {
	c := newTestController(t, types.OnDepletedDelete)

	_, err := c.Add("Salmon", 2)
	require.NoError(t, err)

	item, depleted, err := c.Remove("Salmon", 2)
	require.NoError(t, err)
	require.NotNil(t, depleted, "depletion event fires under either policy")
	assert.Nil(t, item, "row is gone under the delete policy")

	items, err := c.List()
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestDeleteOnlyFromDepleted(t *testing.T) {
	c := newTestController(t, "")

	_, err := c.Add("Peas", 2)
	require.NoError(t, err)

	err = c.Delete("Peas")
	assert.ErrorIs(t, err, types.ErrNotDepleted)
	assert.Contains(t, err.Error(), "Peas", "rejection must name the item")

	// Original quantity intact after the rejected delete.
	items, err := c.List()
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, 2, items[0].Quantity)

	_, _, err = c.Remove("Peas", 2)
	require.NoError(t, err)
	require.NoError(t, c.Delete("Peas"))

	items, err = c.List()
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestDeleteNormalizesName(t *testing.T) {
	c := newTestController(t, "")

	_, err := c.Add("Peas", 1)
	require.NoError(t, err)
	_, _, err = c.Remove("Peas", 1)
	require.NoError(t, err)

	require.NoError(t, c.Delete("  peas "))
}

func TestFullLifecycle(t *testing.T) {
	c := newTestController(t, "")

	items, err := c.List()
	require.NoError(t, err)
	require.Empty(t, items)

	_, err = c.Add("salmon", 3)
	require.NoError(t, err)

	items, err = c.List()
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Salmon", items[0].Name)
	assert.Equal(t, 3, items[0].Quantity)

	_, depleted, err := c.Remove("salmon", 3)
	require.NoError(t, err)
	require.NotNil(t, depleted)

	items, err = c.List()
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, 0, items[0].Quantity)

	require.NoError(t, c.Delete("salmon"))

	items, err = c.List()
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestConcurrentAddsResolveWithoutLostUpdate(t *testing.T) {
	c := newTestController(t, "")

	var wg sync.WaitGroup
	errs := make(chan error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := c.Add("Bread", 1); err != nil {
				errs <- err
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Fatalf("concurrent Add failed: %v", err)
	}

	items, err := c.List()
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, 2, items[0].Quantity)
}

func TestListSortedByName(t *testing.T) {
	c := newTestController(t, "")

	for _, name := range []string{"Waffles", "Bread", "Salmon"} {
		_, err := c.Add(name, 1)
		require.NoError(t, err)
	}

	items, err := c.List()
	require.NoError(t, err)
	require.Len(t, items, 3)
	assert.Equal(t, "Bread", items[0].Name)
	assert.Equal(t, "Salmon", items[1].Name)
	assert.Equal(t, "Waffles", items[2].Name)
}
