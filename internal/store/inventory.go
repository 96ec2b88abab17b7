package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"strconv"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/erazemk/motoinvent/internal/model"
)

// InventoryKey is the blob key holding the inventory document. It matches the
// localStorage key of the legacy browser app.
const InventoryKey = "inventarioMotosApp"

// Inventory errors.
var (
	ErrInvalidName        = errors.New("item name is required")
	ErrInvalidQuantity    = errors.New("quantity must be a non-negative integer")
	ErrInvalidLocation    = errors.New("location tag is too long")
	ErrItemNotFound       = errors.New("item not found")
	ErrUnknownModel       = errors.New("unknown model")
	ErrPersistenceCorrupt = errors.New("stored inventory is corrupt")
	ErrInvalidItem        = errors.New("inventory document has an invalid item")

	errDuplicateID = errors.New("duplicate item id")
)

// Change actions passed to the change notifier.
const (
	ChangeCreated  = "created"
	ChangeUpdated  = "updated"
	ChangeDeleted  = "deleted"
	ChangeImported = "imported"
)

// Blobs is a key-value store holding serialized documents.
type Blobs interface {
	// GetBlob returns ok=false when nothing is stored under key.
	GetBlob(ctx context.Context, key string) (data []byte, ok bool, err error)
	PutBlob(ctx context.Context, key string, data []byte) error
}

// Change describes a persisted inventory mutation.
type Change struct {
	ModelID string `json:"model_id,omitempty"`
	ItemID  string `json:"item_id,omitempty"`
	Action  string `json:"action"`
}

// ItemInput carries user-supplied item fields for add and update.
type ItemInput struct {
	Name     string
	Quantity int
	Location string
}

func (in ItemInput) normalize() (ItemInput, error) {
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		return in, ErrInvalidName
	}
	if in.Quantity < 0 {
		return in, ErrInvalidQuantity
	}
	in.Location = strings.ToUpper(strings.TrimSpace(in.Location))
	if utf8.RuneCountInString(in.Location) > model.MaxLocationLen {
		return in, ErrInvalidLocation
	}
	return in, nil
}

// ParseQuantity parses a quantity typed into a form.
func ParseQuantity(s string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 0 {
		return 0, ErrInvalidQuantity
	}
	return n, nil
}

// Inventory holds the per-model item lists in memory and writes the whole
// document to Blobs after every mutation. All methods are safe for concurrent
// use; mutations are serialized and durable before they return.
type Inventory struct {
	mu     sync.Mutex
	blobs  Blobs
	models []model.Model
	data   map[string][]model.Item
	edits  map[string]*EditSession
	notify func(Change)
	newID  func() string
}

// NewInventory creates an inventory for models backed by blobs. Call Load
// before use.
func NewInventory(blobs Blobs, models []model.Model) *Inventory {
	inv := &Inventory{
		blobs:  blobs,
		models: models,
		edits:  make(map[string]*EditSession),
		newID:  uuid.NewString,
	}
	inv.data = inv.emptyData()
	return inv
}

// OnChange registers fn to be called after each persisted mutation.
func (inv *Inventory) OnChange(fn func(Change)) {
	inv.mu.Lock()
	inv.notify = fn
	inv.mu.Unlock()
}

// Models returns the catalog this inventory tracks.
func (inv *Inventory) Models() []model.Model {
	return slices.Clone(inv.models)
}

// Load reads the stored document. A missing document yields empty lists; a
// corrupt one is logged and replaced by empty lists in memory.
func (inv *Inventory) Load(ctx context.Context) error {
	data, ok, err := inv.blobs.GetBlob(ctx, InventoryKey)
	if err != nil {
		return fmt.Errorf("loading inventory: %w", err)
	}

	inv.mu.Lock()
	defer inv.mu.Unlock()

	inv.edits = make(map[string]*EditSession)
	if !ok {
		inv.data = inv.emptyData()
		return nil
	}

	loaded, err := inv.decode(data, false)
	if err != nil {
		slog.Warn("stored inventory unreadable, starting empty", "key", InventoryKey, "error", err)
		inv.data = inv.emptyData()
		return nil
	}
	inv.data = loaded
	return nil
}

// Import replaces the whole inventory with an exported document of the same
// shape as the stored one. The document is rejected with ErrInvalidItem if any
// item breaks the add/update rules or reuses an id.
func (inv *Inventory) Import(ctx context.Context, data []byte) error {
	inv.mu.Lock()
	loaded, err := inv.decode(data, true)
	if err != nil {
		inv.mu.Unlock()
		return err
	}

	prev := inv.data
	inv.data = loaded
	if err := inv.persistLocked(ctx); err != nil {
		inv.data = prev
		inv.mu.Unlock()
		return err
	}
	inv.edits = make(map[string]*EditSession)
	inv.mu.Unlock()

	inv.emit(Change{Action: ChangeImported})
	return nil
}

// Items returns a copy of a model's items in display order.
func (inv *Inventory) Items(modelID string) ([]model.Item, error) {
	inv.mu.Lock()
	defer inv.mu.Unlock()

	if !inv.known(modelID) {
		return nil, ErrUnknownModel
	}
	return slices.Clone(inv.data[modelID]), nil
}

// Item returns a single item.
func (inv *Inventory) Item(modelID, itemID string) (model.Item, error) {
	inv.mu.Lock()
	defer inv.mu.Unlock()

	if !inv.known(modelID) {
		return model.Item{}, ErrUnknownModel
	}
	i := indexOf(inv.data[modelID], itemID)
	if i < 0 {
		return model.Item{}, ErrItemNotFound
	}
	return inv.data[modelID][i], nil
}

// Snapshot returns a copy of every catalog model's items.
func (inv *Inventory) Snapshot() map[string][]model.Item {
	inv.mu.Lock()
	defer inv.mu.Unlock()

	out := make(map[string][]model.Item, len(inv.models))
	for _, m := range inv.models {
		out[m.ID] = slices.Clone(inv.data[m.ID])
	}
	return out
}

// Document returns the full document as stored, including lists of models
// outside the catalog.
func (inv *Inventory) Document() map[string][]model.Item {
	inv.mu.Lock()
	defer inv.mu.Unlock()

	out := make(map[string][]model.Item, len(inv.data))
	for id, items := range inv.data {
		out[id] = slices.Clone(items)
	}
	return out
}

// AddItem validates in, appends a new item with a fresh id and persists.
func (inv *Inventory) AddItem(ctx context.Context, modelID string, in ItemInput) (model.Item, error) {
	in, err := in.normalize()
	if err != nil {
		return model.Item{}, err
	}

	inv.mu.Lock()
	if !inv.known(modelID) {
		inv.mu.Unlock()
		return model.Item{}, ErrUnknownModel
	}

	item := model.Item{
		ID:       inv.newID(),
		Name:     in.Name,
		Location: in.Location,
		Quantity: in.Quantity,
	}

	prev := inv.data[modelID]
	inv.data[modelID] = append(slices.Clip(prev), item)
	if err := inv.persistLocked(ctx); err != nil {
		inv.data[modelID] = prev
		inv.mu.Unlock()
		return model.Item{}, err
	}
	inv.mu.Unlock()

	inv.emit(Change{ModelID: modelID, ItemID: item.ID, Action: ChangeCreated})
	return item, nil
}

// UpdateItem validates in and overwrites the item's fields, keeping its id.
// An edit session on this item ends.
func (inv *Inventory) UpdateItem(ctx context.Context, modelID, itemID string, in ItemInput) (model.Item, error) {
	in, err := in.normalize()
	if err != nil {
		return model.Item{}, err
	}

	inv.mu.Lock()
	if !inv.known(modelID) {
		inv.mu.Unlock()
		return model.Item{}, ErrUnknownModel
	}

	prev := inv.data[modelID]
	i := indexOf(prev, itemID)
	if i < 0 {
		inv.mu.Unlock()
		return model.Item{}, ErrItemNotFound
	}

	items := slices.Clone(prev)
	items[i].Name = in.Name
	items[i].Location = in.Location
	items[i].Quantity = in.Quantity
	inv.data[modelID] = items

	if err := inv.persistLocked(ctx); err != nil {
		inv.data[modelID] = prev
		inv.mu.Unlock()
		return model.Item{}, err
	}
	inv.endEditLocked(modelID, itemID)
	item := items[i]
	inv.mu.Unlock()

	inv.emit(Change{ModelID: modelID, ItemID: itemID, Action: ChangeUpdated})
	return item, nil
}

// RemoveItem deletes an item. Removing an id that is not present is a no-op.
func (inv *Inventory) RemoveItem(ctx context.Context, modelID, itemID string) error {
	inv.mu.Lock()
	if !inv.known(modelID) {
		inv.mu.Unlock()
		return ErrUnknownModel
	}

	prev := inv.data[modelID]
	i := indexOf(prev, itemID)
	if i < 0 {
		inv.mu.Unlock()
		return nil
	}

	inv.data[modelID] = slices.Delete(slices.Clone(prev), i, i+1)
	if err := inv.persistLocked(ctx); err != nil {
		inv.data[modelID] = prev
		inv.mu.Unlock()
		return err
	}
	inv.endEditLocked(modelID, itemID)
	inv.mu.Unlock()

	inv.emit(Change{ModelID: modelID, ItemID: itemID, Action: ChangeDeleted})
	return nil
}

// Persist writes the full document to the blob store.
func (inv *Inventory) Persist(ctx context.Context) error {
	inv.mu.Lock()
	defer inv.mu.Unlock()
	return inv.persistLocked(ctx)
}

func (inv *Inventory) persistLocked(ctx context.Context) error {
	data, err := json.Marshal(inv.data)
	if err != nil {
		return fmt.Errorf("encoding inventory: %w", err)
	}
	if err := inv.blobs.PutBlob(ctx, InventoryKey, data); err != nil {
		return fmt.Errorf("persisting inventory: %w", err)
	}
	return nil
}

// decode parses a document, repairs legacy entries and makes sure every
// catalog model has a list. Unknown model keys are kept. Items are checked
// against the add/update rules: in strict mode the first bad item rejects the
// document, otherwise bad items are dropped and duplicate ids replaced.
func (inv *Inventory) decode(data []byte, strict bool) (map[string][]model.Item, error) {
	var raw map[string][]model.Item
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistenceCorrupt, err)
	}
	if raw == nil {
		return nil, fmt.Errorf("%w: document is null", ErrPersistenceCorrupt)
	}

	seen := make(map[string]bool)
	for _, modelID := range slices.Sorted(maps.Keys(raw)) {
		items := raw[modelID]
		kept := make([]model.Item, 0, len(items))
		for i, stored := range items {
			it, err := inv.repair(stored)
			if err == nil && seen[it.ID] {
				if strict {
					err = fmt.Errorf("%w %q", errDuplicateID, it.ID)
				} else {
					slog.Warn("stored item id reused, assigning a new one", "model", modelID, "id", it.ID)
					it.ID = inv.newID()
				}
			}
			if err != nil {
				if strict {
					return nil, fmt.Errorf("%w: %s item %d: %w", ErrInvalidItem, modelID, i, err)
				}
				slog.Warn("dropping invalid stored item", "model", modelID, "index", i, "error", err)
				continue
			}
			seen[it.ID] = true
			kept = append(kept, it)
		}
		raw[modelID] = kept
	}
	for _, m := range inv.models {
		if _, ok := raw[m.ID]; !ok {
			raw[m.ID] = []model.Item{}
		}
	}
	return raw, nil
}

// repair converts items written by the browser app, which folded the location
// tag into the name as "[TAG] name", then applies the item rules.
func (inv *Inventory) repair(it model.Item) (model.Item, error) {
	if it.ID == "" {
		it.ID = inv.newID()
	}
	it.Location = strings.ToUpper(strings.TrimSpace(it.Location))
	it.Name = strings.TrimSpace(it.Name)
	if it.Location != "" {
		it.Name = strings.TrimPrefix(it.Name, "["+it.Location+"]")
	}

	in, err := ItemInput{Name: it.Name, Quantity: it.Quantity, Location: it.Location}.normalize()
	if err != nil {
		return it, err
	}
	it.Name, it.Location = in.Name, in.Location
	return it, nil
}

func (inv *Inventory) emptyData() map[string][]model.Item {
	data := make(map[string][]model.Item, len(inv.models))
	for _, m := range inv.models {
		data[m.ID] = []model.Item{}
	}
	return data
}

func (inv *Inventory) known(modelID string) bool {
	return slices.ContainsFunc(inv.models, func(m model.Model) bool { return m.ID == modelID })
}

func (inv *Inventory) emit(c Change) {
	inv.mu.Lock()
	fn := inv.notify
	inv.mu.Unlock()

	if fn != nil {
		fn(c)
	}
}

func indexOf(items []model.Item, id string) int {
	return slices.IndexFunc(items, func(it model.Item) bool { return it.ID == id })
}
