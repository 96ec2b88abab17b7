package web

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/erazemk/motoinvent/internal/model"
	"github.com/erazemk/motoinvent/internal/printview"
	"github.com/erazemk/motoinvent/internal/store"
)

// modelCard is one model's section of the dashboard.
type modelCard struct {
	Model   model.Model
	Items   []model.Item
	Editing *store.EditSession
	Form    itemForm
	Error   string
}

type itemForm struct {
	ItemID   string
	Name     string
	Quantity string
	Location string
}

// formError carries a failed submission back to its card.
type formError struct {
	ModelID string
	Form    itemForm
	Message string
}

// Dashboard handles GET /.
func (s *Server) Dashboard(w http.ResponseWriter, r *http.Request) {
	s.renderDashboard(w, r, nil)
}

func (s *Server) renderDashboard(w http.ResponseWriter, r *http.Request, fe *formError) {
	snap := s.Inventory.Snapshot()

	cards := make([]modelCard, 0, len(snap))
	for _, m := range s.Inventory.Models() {
		card := modelCard{Model: m, Items: snap[m.ID]}
		if e, ok := s.Inventory.Editing(m.ID); ok {
			card.Editing = &e
			card.Form = itemForm{
				ItemID:   e.ItemID,
				Name:     e.Name,
				Quantity: strconv.Itoa(e.Quantity),
				Location: e.Location,
			}
		}
		if fe != nil && fe.ModelID == m.ID {
			card.Form = fe.Form
			card.Error = fe.Message
		}
		cards = append(cards, card)
	}

	s.Templates.Render(w, "dashboard.html", &struct {
		PageData
		Cards []modelCard
	}{
		PageData: s.page(r, "Inventario"),
		Cards:    cards,
	})
}

// ItemSubmit handles POST /models/{model}/items. A non-empty item_id saves
// the item being edited; otherwise a new item is added.
func (s *Server) ItemSubmit(w http.ResponseWriter, r *http.Request) {
	modelID := r.PathValue("model")
	form := itemForm{
		ItemID:   r.FormValue("item_id"),
		Name:     r.FormValue("name"),
		Quantity: r.FormValue("quantity"),
		Location: r.FormValue("location"),
	}

	qty, err := store.ParseQuantity(form.Quantity)
	if err == nil {
		in := store.ItemInput{Name: form.Name, Quantity: qty, Location: form.Location}
		if form.ItemID != "" {
			_, err = s.Inventory.UpdateItem(r.Context(), modelID, form.ItemID, in)
		} else {
			_, err = s.Inventory.AddItem(r.Context(), modelID, in)
		}
	}
	if err != nil {
		s.formFailed(w, r, &formError{ModelID: modelID, Form: form, Message: errorMessage(err)}, err)
		return
	}

	action := "item added"
	if form.ItemID != "" {
		action = "item updated"
	}
	slog.Info(action, "user", GetWebClaims(r.Context()).Username, "model", modelID, "name", form.Name, "quantity", qty)
	redirectToModel(w, r, modelID)
}

// ItemDelete handles POST /models/{model}/items/{id}/delete.
func (s *Server) ItemDelete(w http.ResponseWriter, r *http.Request) {
	modelID, itemID := r.PathValue("model"), r.PathValue("id")
	if err := s.Inventory.RemoveItem(r.Context(), modelID, itemID); err != nil {
		s.formFailed(w, r, &formError{ModelID: modelID, Message: errorMessage(err)}, err)
		return
	}

	slog.Info("item removed", "user", GetWebClaims(r.Context()).Username, "model", modelID, "item", itemID)
	redirectToModel(w, r, modelID)
}

// EditBegin handles POST /models/{model}/items/{id}/edit.
func (s *Server) EditBegin(w http.ResponseWriter, r *http.Request) {
	modelID := r.PathValue("model")
	if _, err := s.Inventory.BeginEdit(modelID, r.PathValue("id")); err != nil {
		s.formFailed(w, r, &formError{ModelID: modelID, Message: errorMessage(err)}, err)
		return
	}
	redirectToModel(w, r, modelID)
}

// EditCancel handles POST /models/{model}/edit/cancel.
func (s *Server) EditCancel(w http.ResponseWriter, r *http.Request) {
	modelID := r.PathValue("model")
	if err := s.Inventory.CancelEdit(modelID); err != nil {
		s.formFailed(w, r, &formError{ModelID: modelID, Message: errorMessage(err)}, err)
		return
	}
	redirectToModel(w, r, modelID)
}

// PrintPage handles GET /models/{model}/print.
func (s *Server) PrintPage(w http.ResponseWriter, r *http.Request) {
	m, ok := model.FindModel(r.PathValue("model"))
	if !ok {
		http.NotFound(w, r)
		return
	}
	items, err := s.Inventory.Items(m.ID)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	printview.Write(w, m.DisplayName, items, time.Now())
}

func (s *Server) formFailed(w http.ResponseWriter, r *http.Request, fe *formError, err error) {
	status := http.StatusBadRequest
	switch {
	case errors.Is(err, store.ErrUnknownModel), errors.Is(err, store.ErrItemNotFound):
		status = http.StatusNotFound
	case !isInputError(err):
		status = http.StatusInternalServerError
		slog.Error("inventory update failed", "model", fe.ModelID, "error", err)
	}
	w.WriteHeader(status)
	s.renderDashboard(w, r, fe)
}

func isInputError(err error) bool {
	return errors.Is(err, store.ErrInvalidName) ||
		errors.Is(err, store.ErrInvalidQuantity) ||
		errors.Is(err, store.ErrInvalidLocation)
}

func errorMessage(err error) string {
	switch {
	case errors.Is(err, store.ErrInvalidName):
		return "Escribe el nombre del repuesto."
	case errors.Is(err, store.ErrInvalidQuantity):
		return "Cantidad inválida."
	case errors.Is(err, store.ErrInvalidLocation):
		return "La ubicación admite hasta " + strconv.Itoa(model.MaxLocationLen) + " caracteres."
	case errors.Is(err, store.ErrItemNotFound):
		return "El repuesto ya no existe."
	case errors.Is(err, store.ErrUnknownModel):
		return "Modelo desconocido."
	default:
		return "No se pudo guardar el inventario."
	}
}

func redirectToModel(w http.ResponseWriter, r *http.Request, modelID string) {
	http.Redirect(w, r, "/#modelo-"+modelID, http.StatusSeeOther)
}
