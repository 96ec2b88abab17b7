package web

import (
	"net/http"

	"github.com/erazemk/motoinvent/internal/model"
)

// ScanPage handles GET /scan. Capture, recognition and saving run in the
// browser against the JSON API.
func (s *Server) ScanPage(w http.ResponseWriter, r *http.Request) {
	selected := r.URL.Query().Get("modelo")
	if _, ok := model.FindModel(selected); !ok {
		selected = ""
	}

	s.Templates.Render(w, "scan.html", &struct {
		PageData
		Models   []model.Model
		Selected string
	}{
		PageData: s.page(r, "Escanear etiqueta"),
		Models:   s.Inventory.Models(),
		Selected: selected,
	})
}
