// Package hosted implements the Store interface against a hosted
// PostgREST-style table service. All rows live in a shared multi-tenant
// freezer_items table, filtered by owner on every request, with a bearer
// token attached as credential. The add path goes through a server-side
// RPC so the increment stays atomic; a PATCH/POST pair over REST cannot
// increment without a read-modify-write race.
package hosted

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/mesh-intelligence/freezer/pkg/types"
)

const (
	itemsPath     = "/rest/v1/freezer_items"
	upsertRPCPath = "/rest/v1/rpc/add_item_quantity"

	requestTimeout = 10 * time.Second
)

// Backend implements the Store interface over a hosted table API.
type Backend struct {
	mu       sync.RWMutex
	attached bool
	config   types.Config
	client   *http.Client
	baseURL  string
}

// Compile-time interface check: Backend must implement Store.
var _ types.Store = (*Backend)(nil)

// NewBackend creates a new hosted backend instance.
// The backend is not attached; call Attach with a Config to initialize.
func NewBackend() *Backend {
	return &Backend{}
}

// Attach validates the configuration and prepares the HTTP client.
// Returns ErrAlreadyAttached if already attached.
func (b *Backend) Attach(config types.Config) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.attached {
		return types.ErrAlreadyAttached
	}

	config.Normalize()
	if err := config.Validate(); err != nil {
		return err
	}

	b.config = config
	b.baseURL = strings.TrimRight(config.Hosted.BaseURL, "/")
	b.client = &http.Client{Timeout: requestTimeout}
	b.attached = true
	return nil
}

// Detach drops the HTTP client. Idempotent. After Detach, all operations
// return ErrStoreDetached.
func (b *Backend) Detach() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.attached {
		return nil // idempotent
	}
	b.client = nil
	b.attached = false
	return nil
}

// guard returns ErrStoreDetached unless the backend is attached.
// Callers must hold b.mu (read or write lock).
func (b *Backend) guard() error {
	if !b.attached {
		return types.ErrStoreDetached
	}
	return nil
}

// row is the wire shape of a freezer_items record.
type row struct {
	ID        string `json:"id"`
	Owner     string `json:"owner"`
	ItemName  string `json:"item_name"`
	Quantity  int    `json:"quantity"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

// toItem converts a wire row into a *types.Item. Timestamps the service
// omits or formats unexpectedly are left zero rather than failing the
// whole read.
func (r row) toItem() *types.Item {
	item := &types.Item{
		ItemID:   r.ID,
		Owner:    r.Owner,
		Name:     r.ItemName,
		Quantity: r.Quantity,
	}
	if t, err := time.Parse(time.RFC3339, r.CreatedAt); err == nil {
		item.CreatedAt = t
	}
	if t, err := time.Parse(time.RFC3339, r.UpdatedAt); err == nil {
		item.UpdatedAt = t
	}
	return item
}

// List returns every item belonging to the attached owner.
func (b *Backend) List() ([]*types.Item, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if err := b.guard(); err != nil {
		return nil, err
	}

	rows, err := b.fetchRows(url.Values{"owner": {"eq." + b.config.Owner}})
	if err != nil {
		return nil, err
	}
	items := make([]*types.Item, 0, len(rows))
	for _, r := range rows {
		items = append(items, r.toItem())
	}
	return items, nil
}

// UpsertAdd adds delta to the named item's quantity via the
// add_item_quantity RPC, which performs the insert-or-increment in a
// single server-side statement.
func (b *Backend) UpsertAdd(name string, delta int) (*types.Item, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if err := b.guard(); err != nil {
		return nil, err
	}
	if name == "" {
		return nil, types.ErrEmptyName
	}
	if delta <= 0 {
		return nil, types.ErrInvalidQuantity
	}

	payload := map[string]any{
		"p_owner": b.config.Owner,
		"p_name":  name,
		"p_delta": delta,
	}
	body, err := b.do(http.MethodPost, upsertRPCPath, nil, payload, "")
	if err != nil {
		return nil, fmt.Errorf("upserting item %q: %w", name, err)
	}

	rows, err := decodeRows(body)
	if err != nil {
		return nil, fmt.Errorf("upserting item %q: %w", name, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("upserting item %q: empty RPC response", name)
	}
	return rows[0].toItem(), nil
}

// SetQuantity overwrites the named item's quantity with a filtered PATCH.
// Not a compare-and-swap; the lost-update window on concurrent removes is
// accepted by the store contract.
func (b *Backend) SetQuantity(name string, value int) (*types.Item, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if err := b.guard(); err != nil {
		return nil, err
	}
	if value < 0 {
		return nil, types.ErrNegativeQuantity
	}

	query := url.Values{
		"owner":     {"eq." + b.config.Owner},
		"item_name": {"eq." + name},
	}
	payload := map[string]any{
		"quantity":   value,
		"updated_at": time.Now().UTC().Format(time.RFC3339),
	}
	body, err := b.do(http.MethodPatch, itemsPath, query, payload, "return=representation")
	if err != nil {
		return nil, fmt.Errorf("setting quantity for %q: %w", name, err)
	}

	rows, err := decodeRows(body)
	if err != nil {
		return nil, fmt.Errorf("setting quantity for %q: %w", name, err)
	}
	if len(rows) == 0 {
		return nil, types.ErrNotFound
	}
	return rows[0].toItem(), nil
}

// Delete removes the named item's row, guarded on zero quantity. The
// service cannot distinguish "no such row" from "row filtered out by the
// quantity guard" in one call, so the row is read first; the read/delete
// pair sits inside the same weak-consistency envelope as SetQuantity.
func (b *Backend) Delete(name string) error {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if err := b.guard(); err != nil {
		return err
	}

	rows, err := b.fetchRows(url.Values{
		"owner":     {"eq." + b.config.Owner},
		"item_name": {"eq." + name},
	})
	if err != nil {
		return fmt.Errorf("checking item %q: %w", name, err)
	}
	if len(rows) == 0 {
		return types.ErrNotFound
	}
	if rows[0].Quantity > 0 {
		return fmt.Errorf("cannot delete %q with %d in stock: %w", rows[0].ItemName, rows[0].Quantity, types.ErrNotDepleted)
	}

	query := url.Values{
		"owner":     {"eq." + b.config.Owner},
		"item_name": {"eq." + name},
		"quantity":  {"eq.0"},
	}
	if _, err := b.do(http.MethodDelete, itemsPath, query, nil, ""); err != nil {
		return fmt.Errorf("deleting item %q: %w", name, err)
	}
	return nil
}

// fetchRows runs a filtered GET against the items table.
// Callers must hold b.mu (read or write lock).
func (b *Backend) fetchRows(query url.Values) ([]row, error) {
	body, err := b.do(http.MethodGet, itemsPath, query, nil, "")
	if err != nil {
		return nil, fmt.Errorf("fetching items: %w", err)
	}
	return decodeRows(body)
}

// do performs one HTTP request against the service, attaching the bearer
// credential, and returns the response body. Responses map to the error
// taxonomy: 401/403 become ErrAuthExpired (re-authenticate, do not
// retry), any other non-2xx surfaces verbatim as a store failure.
func (b *Backend) do(method, path string, query url.Values, payload any, prefer string) ([]byte, error) {
	reqURL := b.baseURL + path
	if len(query) > 0 {
		reqURL += "?" + query.Encode()
	}

	var reqBody io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("encoding request: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, reqURL, reqBody)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+b.config.Hosted.Token)
	req.Header.Set("apikey", b.config.Hosted.Token)
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if prefer != "" {
		req.Header.Set("Prefer", prefer)
	}

	resp, err := b.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("calling hosted store: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, fmt.Errorf("%s %s: %w", method, path, types.ErrAuthExpired)
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return nil, fmt.Errorf("%s %s: status %d: %s", method, path, resp.StatusCode, strings.TrimSpace(string(body)))
	}
	return body, nil
}

// decodeRows parses a service response into rows. The RPC endpoint may
// return a single object instead of an array; both shapes are accepted.
func decodeRows(body []byte) ([]row, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return nil, nil
	}
	if trimmed[0] == '{' {
		var single row
		if err := json.Unmarshal(trimmed, &single); err != nil {
			return nil, fmt.Errorf("decoding row: %w", err)
		}
		return []row{single}, nil
	}
	var rows []row
	if err := json.Unmarshal(trimmed, &rows); err != nil {
		return nil, fmt.Errorf("decoding rows: %w", err)
	}
	return rows, nil
}
