package model

// Model is a motorcycle model with its own independent parts inventory.
type Model struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
}

// Catalog is the fixed set of tracked models, in display order.
var Catalog = []Model{
	{ID: "aguila", DisplayName: "ÁGUILA 150CC"},
	{ID: "condor", DisplayName: "CÓNDOR 150CC"},
	{ID: "canario", DisplayName: "CANARIO 150CC"},
	{ID: "tucan", DisplayName: "TUCÁN 110CC"},
	{ID: "lechuza", DisplayName: "LECHUZA 200CC"},
	{ID: "lechuza2", DisplayName: "LECHUZA II 200CC"},
}

// FindModel returns the catalog entry with the given id.
func FindModel(id string) (Model, bool) {
	for _, m := range Catalog {
		if m.ID == id {
			return m, true
		}
	}
	return Model{}, false
}
