package store

import "time"

// EditSession records which item a model's form is editing and the values it
// was opened with.
type EditSession struct {
	ModelID   string    `json:"model_id"`
	ItemID    string    `json:"item_id"`
	Name      string    `json:"name"`
	Quantity  int       `json:"quantity"`
	Location  string    `json:"location,omitempty"`
	StartedAt time.Time `json:"started_at"`
}

// BeginEdit starts editing an item. A second call replaces the first.
func (inv *Inventory) BeginEdit(modelID, itemID string) (EditSession, error) {
	inv.mu.Lock()
	defer inv.mu.Unlock()

	if !inv.known(modelID) {
		return EditSession{}, ErrUnknownModel
	}
	i := indexOf(inv.data[modelID], itemID)
	if i < 0 {
		return EditSession{}, ErrItemNotFound
	}

	it := inv.data[modelID][i]
	s := &EditSession{
		ModelID:   modelID,
		ItemID:    it.ID,
		Name:      it.Name,
		Quantity:  it.Quantity,
		Location:  it.Location,
		StartedAt: time.Now().UTC(),
	}
	inv.edits[modelID] = s
	return *s, nil
}

// CancelEdit returns the model to idle. It is a no-op when nothing is edited.
func (inv *Inventory) CancelEdit(modelID string) error {
	inv.mu.Lock()
	defer inv.mu.Unlock()

	if !inv.known(modelID) {
		return ErrUnknownModel
	}
	delete(inv.edits, modelID)
	return nil
}

// Editing returns the model's active edit session, if any.
func (inv *Inventory) Editing(modelID string) (EditSession, bool) {
	inv.mu.Lock()
	defer inv.mu.Unlock()

	s, ok := inv.edits[modelID]
	if !ok {
		return EditSession{}, false
	}
	return *s, true
}

func (inv *Inventory) endEditLocked(modelID, itemID string) {
	if s, ok := inv.edits[modelID]; ok && s.ItemID == itemID {
		delete(inv.edits, modelID)
	}
}
