package api

import (
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/erazemk/motoinvent/internal/model"
	"github.com/erazemk/motoinvent/internal/printview"
	"github.com/erazemk/motoinvent/internal/store"
)

// maxImportBytes bounds an imported inventory document.
const maxImportBytes = 8 << 20

// InventoryHandler handles the per-model inventory endpoints.
type InventoryHandler struct {
	Inventory *store.Inventory
	// Now stamps printed pages. Defaults to time.Now.
	Now func() time.Time
}

type itemRequest struct {
	Name     string `json:"name"`
	Quantity *int   `json:"quantity"`
	Location string `json:"location"`
}

func (req itemRequest) input() (store.ItemInput, error) {
	if req.Quantity == nil {
		return store.ItemInput{}, store.ErrInvalidQuantity
	}
	return store.ItemInput{Name: req.Name, Quantity: *req.Quantity, Location: req.Location}, nil
}

type beginEditRequest struct {
	ItemID string `json:"item_id"`
}

type modelInventory struct {
	model.Model
	Items   []model.Item       `json:"items"`
	Editing *store.EditSession `json:"editing,omitempty"`
}

// Models handles GET /api/models.
func (h *InventoryHandler) Models(w http.ResponseWriter, r *http.Request) {
	jsonResponse(w, http.StatusOK, h.Inventory.Models())
}

// List handles GET /api/inventory: every model with its items and edit state.
func (h *InventoryHandler) List(w http.ResponseWriter, r *http.Request) {
	snap := h.Inventory.Snapshot()

	out := make([]modelInventory, 0, len(snap))
	for _, m := range h.Inventory.Models() {
		mi := modelInventory{Model: m, Items: snap[m.ID]}
		if s, ok := h.Inventory.Editing(m.ID); ok {
			mi.Editing = &s
		}
		out = append(out, mi)
	}
	jsonResponse(w, http.StatusOK, out)
}

// Export handles GET /api/inventory/export. The body is the whole stored
// document, lists of retired models included, and can be fed back to Import.
func (h *InventoryHandler) Export(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Disposition", `attachment; filename="inventario.json"`)
	jsonResponse(w, http.StatusOK, h.Inventory.Document())
}

// Import handles POST /api/inventory/import.
func (h *InventoryHandler) Import(w http.ResponseWriter, r *http.Request) {
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxImportBytes))
	if err != nil {
		jsonError(w, http.StatusRequestEntityTooLarge, "inventory document too large")
		return
	}

	if err := h.Inventory.Import(r.Context(), data); err != nil {
		inventoryError(w, err)
		return
	}

	claims := GetClaims(r.Context())
	slog.Info("inventory imported", "user", claims.Username, "bytes", len(data))
	h.List(w, r)
}

// ListItems handles GET /api/models/{model}/items.
func (h *InventoryHandler) ListItems(w http.ResponseWriter, r *http.Request) {
	items, err := h.Inventory.Items(r.PathValue("model"))
	if err != nil {
		inventoryError(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, items)
}

// GetItem handles GET /api/models/{model}/items/{id}.
func (h *InventoryHandler) GetItem(w http.ResponseWriter, r *http.Request) {
	item, err := h.Inventory.Item(r.PathValue("model"), r.PathValue("id"))
	if err != nil {
		inventoryError(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, item)
}

// CreateItem handles POST /api/models/{model}/items.
func (h *InventoryHandler) CreateItem(w http.ResponseWriter, r *http.Request) {
	var req itemRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	in, err := req.input()
	if err != nil {
		inventoryError(w, err)
		return
	}

	modelID := r.PathValue("model")
	item, err := h.Inventory.AddItem(r.Context(), modelID, in)
	if err != nil {
		inventoryError(w, err)
		return
	}

	claims := GetClaims(r.Context())
	slog.Info("item added", "user", claims.Username, "model", modelID, "item", item.ID, "name", item.Name, "quantity", item.Quantity)
	jsonResponse(w, http.StatusCreated, item)
}

// UpdateItem handles PUT /api/models/{model}/items/{id}.
func (h *InventoryHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	var req itemRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	in, err := req.input()
	if err != nil {
		inventoryError(w, err)
		return
	}

	modelID := r.PathValue("model")
	item, err := h.Inventory.UpdateItem(r.Context(), modelID, r.PathValue("id"), in)
	if err != nil {
		inventoryError(w, err)
		return
	}

	claims := GetClaims(r.Context())
	slog.Info("item updated", "user", claims.Username, "model", modelID, "item", item.ID, "quantity", item.Quantity)
	jsonResponse(w, http.StatusOK, item)
}

// DeleteItem handles DELETE /api/models/{model}/items/{id}.
func (h *InventoryHandler) DeleteItem(w http.ResponseWriter, r *http.Request) {
	modelID, itemID := r.PathValue("model"), r.PathValue("id")
	if err := h.Inventory.RemoveItem(r.Context(), modelID, itemID); err != nil {
		inventoryError(w, err)
		return
	}

	claims := GetClaims(r.Context())
	slog.Info("item removed", "user", claims.Username, "model", modelID, "item", itemID)
	w.WriteHeader(http.StatusNoContent)
}

// GetEdit handles GET /api/models/{model}/edit.
func (h *InventoryHandler) GetEdit(w http.ResponseWriter, r *http.Request) {
	modelID := r.PathValue("model")
	if _, ok := model.FindModel(modelID); !ok {
		inventoryError(w, store.ErrUnknownModel)
		return
	}

	s, ok := h.Inventory.Editing(modelID)
	if !ok {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	jsonResponse(w, http.StatusOK, s)
}

// BeginEdit handles PUT /api/models/{model}/edit.
func (h *InventoryHandler) BeginEdit(w http.ResponseWriter, r *http.Request) {
	var req beginEditRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	s, err := h.Inventory.BeginEdit(r.PathValue("model"), req.ItemID)
	if err != nil {
		inventoryError(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, s)
}

// CancelEdit handles DELETE /api/models/{model}/edit.
func (h *InventoryHandler) CancelEdit(w http.ResponseWriter, r *http.Request) {
	if err := h.Inventory.CancelEdit(r.PathValue("model")); err != nil {
		inventoryError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Print handles GET /api/models/{model}/print.
func (h *InventoryHandler) Print(w http.ResponseWriter, r *http.Request) {
	RenderPrint(w, h.Inventory, r.PathValue("model"), h.now())
}

func (h *InventoryHandler) now() time.Time {
	if h.Now != nil {
		return h.Now()
	}
	return time.Now()
}

// RenderPrint writes the printable page for a model.
func RenderPrint(w http.ResponseWriter, inv *store.Inventory, modelID string, now time.Time) {
	m, ok := model.FindModel(modelID)
	if !ok {
		http.Error(w, "model not found", http.StatusNotFound)
		return
	}
	items, err := inv.Items(modelID)
	if err != nil {
		http.Error(w, "model not found", http.StatusNotFound)
		return
	}
	printview.Write(w, m.DisplayName, items, now)
}
