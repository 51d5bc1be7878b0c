// Tests for the hosted backend against a fake table service.
package hosted

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/freezer/pkg/types"
)

// fakeService is an in-memory stand-in for the hosted table API. It
// implements just enough of the PostgREST surface for the backend:
// filtered GET/PATCH/DELETE on freezer_items and the add_item_quantity
// RPC.
type fakeService struct {
	mu    sync.Mutex
	token string
	rows  []row
}

func (s *fakeService) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/rest/v1/freezer_items", s.handleItems)
	mux.HandleFunc("/rest/v1/rpc/add_item_quantity", s.handleUpsert)
	return mux
}

func (s *fakeService) authorized(r *http.Request) bool {
	return r.Header.Get("Authorization") == "Bearer "+s.token
}

// match reports whether the row passes the request's eq. filters.
func match(r *http.Request, candidate row) bool {
	q := r.URL.Query()
	if v := q.Get("owner"); v != "" && v != "eq."+candidate.Owner {
		return false
	}
	if v := q.Get("item_name"); v != "" && v != "eq."+candidate.ItemName {
		return false
	}
	if v := q.Get("quantity"); v != "" {
		if v != "eq.0" || candidate.Quantity != 0 {
			return false
		}
	}
	return true
}

func (s *fakeService) handleItems(w http.ResponseWriter, r *http.Request) {
	if !s.authorized(r) {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	switch r.Method {
	case http.MethodGet:
		matched := []row{}
		for _, candidate := range s.rows {
			if match(r, candidate) {
				matched = append(matched, candidate)
			}
		}
		json.NewEncoder(w).Encode(matched)

	case http.MethodPatch:
		var patch map[string]any
		if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		updated := []row{}
		for i, candidate := range s.rows {
			if match(r, candidate) {
				if v, ok := patch["quantity"].(float64); ok {
					s.rows[i].Quantity = int(v)
				}
				updated = append(updated, s.rows[i])
			}
		}
		json.NewEncoder(w).Encode(updated)

	case http.MethodDelete:
		kept := s.rows[:0]
		for _, candidate := range s.rows {
			if !match(r, candidate) {
				kept = append(kept, candidate)
			}
		}
		s.rows = kept
		w.WriteHeader(http.StatusNoContent)
	}
}

func (s *fakeService) handleUpsert(w http.ResponseWriter, r *http.Request) {
	if !s.authorized(r) {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}
	var args struct {
		Owner string `json:"p_owner"`
		Name  string `json:"p_name"`
		Delta int    `json:"p_delta"`
	}
	if err := json.NewDecoder(r.Body).Decode(&args); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for i, candidate := range s.rows {
		if candidate.Owner == args.Owner && candidate.ItemName == args.Name {
			s.rows[i].Quantity += args.Delta
			json.NewEncoder(w).Encode(s.rows[i])
			return
		}
	}
	now := time.Now().UTC().Format(time.RFC3339)
	created := row{
		ID:        "row-" + args.Name,
		Owner:     args.Owner,
		ItemName:  args.Name,
		Quantity:  args.Delta,
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.rows = append(s.rows, created)
	json.NewEncoder(w).Encode(created)
}

// newTestBackend attaches a backend to a fresh fake service.
func newTestBackend(t *testing.T) (*Backend, *fakeService) {
	t.Helper()
	svc := &fakeService{token: "secret-token"}
	server := httptest.NewServer(svc.handler())
	t.Cleanup(server.Close)

	b := NewBackend()
	err := b.Attach(types.Config{
		Backend: types.BackendHosted,
		Owner:   "user-42",
		Hosted:  types.HostedConfig{BaseURL: server.URL, Token: "secret-token"},
	})
	require.NoError(t, err)
	t.Cleanup(func() { b.Detach() })
	return b, svc
}

func TestHostedUpsertAddAndList(t *testing.T) {
	b, _ := newTestBackend(t)

	item, err := b.UpsertAdd("Pizza", 2)
	require.NoError(t, err)
	assert.Equal(t, 2, item.Quantity)
	assert.Equal(t, "Pizza", item.Name)

	item, err = b.UpsertAdd("Pizza", 3)
	require.NoError(t, err)
	assert.Equal(t, 5, item.Quantity)

	items, err := b.List()
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "user-42", items[0].Owner)
}

func TestHostedUpsertAddValidation(t *testing.T) {
	b, _ := newTestBackend(t)

	_, err := b.UpsertAdd("Pizza", 0)
	assert.ErrorIs(t, err, types.ErrInvalidQuantity)

	_, err = b.UpsertAdd("", 1)
	assert.ErrorIs(t, err, types.ErrEmptyName)
}

func TestHostedSetQuantity(t *testing.T) {
	b, _ := newTestBackend(t)

	_, err := b.UpsertAdd("Salmon", 3)
	require.NoError(t, err)

	item, err := b.SetQuantity("Salmon", 0)
	require.NoError(t, err)
	assert.Equal(t, 0, item.Quantity)

	// The zeroed row stays listed.
	items, err := b.List()
	require.NoError(t, err)
	assert.Len(t, items, 1)

	_, err = b.SetQuantity("Salmon", -1)
	assert.ErrorIs(t, err, types.ErrNegativeQuantity)

	_, err = b.SetQuantity("Tofu", 2)
	assert.ErrorIs(t, err, types.ErrNotFound)
}

func TestHostedDeleteGuard(t *testing.T) {
	b, _ := newTestBackend(t)

	_, err := b.UpsertAdd("Peas", 2)
	require.NoError(t, err)

	err = b.Delete("Peas")
	assert.ErrorIs(t, err, types.ErrNotDepleted)
	assert.Contains(t, err.Error(), "Peas", "rejection must name the item")

	// Still present with original quantity.
	items, err := b.List()
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, 2, items[0].Quantity)

	_, err = b.SetQuantity("Peas", 0)
	require.NoError(t, err)
	require.NoError(t, b.Delete("Peas"))

	items, err = b.List()
	require.NoError(t, err)
	assert.Empty(t, items)

	assert.ErrorIs(t, b.Delete("Peas"), types.ErrNotFound)
}

func TestHostedExpiredTokenMapsToAuthError(t *testing.T) {
	svc := &fakeService{token: "fresh-token"}
	server := httptest.NewServer(svc.handler())
	t.Cleanup(server.Close)

	b := NewBackend()
	err := b.Attach(types.Config{
		Backend: types.BackendHosted,
		Owner:   "user-42",
		Hosted:  types.HostedConfig{BaseURL: server.URL, Token: "stale-token"},
	})
	require.NoError(t, err)
	t.Cleanup(func() { b.Detach() })

	_, err = b.List()
	assert.ErrorIs(t, err, types.ErrAuthExpired)

	_, err = b.UpsertAdd("Pizza", 1)
	assert.ErrorIs(t, err, types.ErrAuthExpired)
}

func TestHostedServerErrorSurfaced(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "relation does not exist", http.StatusInternalServerError)
	}))
	t.Cleanup(server.Close)

	b := NewBackend()
	err := b.Attach(types.Config{
		Backend: types.BackendHosted,
		Owner:   "user-42",
		Hosted:  types.HostedConfig{BaseURL: server.URL, Token: "tok"},
	})
	require.NoError(t, err)
	t.Cleanup(func() { b.Detach() })

	_, err = b.List()
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "status 500"), "got %v", err)
	assert.True(t, strings.Contains(err.Error(), "relation does not exist"), "got %v", err)
}

func TestHostedDetachedOperations(t *testing.T) {
	b := NewBackend()
	_, err := b.List()
	assert.ErrorIs(t, err, types.ErrStoreDetached)

	require.NoError(t, b.Detach()) // idempotent before attach
}
