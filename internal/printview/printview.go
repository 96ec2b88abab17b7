// Package printview renders a model's inventory as a standalone printable page.
package printview

import (
	"bytes"
	"fmt"
	"html/template"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/erazemk/motoinvent/internal/model"
)

// DateLayout formats the footer date.
const DateLayout = "02/01/2006"

// Row is one printed line.
type Row struct {
	Name     string
	Quantity int
}

// FromItems converts items to rows in the same order, using their display names.
func FromItems(items []model.Item) []Row {
	rows := make([]Row, 0, len(items))
	for _, it := range items {
		rows = append(rows, Row{Name: it.DisplayName(), Quantity: it.Quantity})
	}
	return rows
}

type page struct {
	Title string
	Rows  []Row
	Date  string
}

var tmpl = template.Must(template.New("print").Parse(`<!DOCTYPE html>
<html lang="es">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1.0">
<title>{{.Title}}</title>
<style>
body { font-family: sans-serif; padding: 1rem; }
h1 { color: #c41e1e; font-size: 1.8rem; }
table { width: 100%; border-collapse: collapse; margin-top: 20px; }
th { background: #e62828; color: white; padding: 12px; text-align: left; }
td { padding: 10px; border-bottom: 1px solid #ffd6d6; }
td.qty { text-align: center; }
td.empty { padding: 40px; text-align: center; }
footer { margin-top: 30px; color: #b71c1c; }
@media print { th { background: #e62828 !important; } }
</style>
</head>
<body>
<h1>{{.Title}}</h1>
<table>
<tr><th>Repuesto</th><th>Cantidad</th></tr>
{{- range .Rows}}
<tr><td>{{.Name}}</td><td class="qty">{{.Quantity}}</td></tr>
{{- else}}
<tr><td class="empty" colspan="2">Inventario vacío</td></tr>
{{- end}}
</table>
<footer>MotoInvent · {{.Date}}</footer>
<script>window.onload = () => setTimeout(() => window.print(), 300);</script>
</body>
</html>
`))

// Render writes the printable page for a model titled title.
func Render(w io.Writer, title string, rows []Row, date time.Time) error {
	if err := tmpl.Execute(w, page{Title: title, Rows: rows, Date: date.Format(DateLayout)}); err != nil {
		return fmt.Errorf("rendering print view: %w", err)
	}
	return nil
}

// Write renders the page for items as an HTTP response.
func Write(w http.ResponseWriter, title string, items []model.Item, now time.Time) {
	var buf bytes.Buffer
	if err := Render(&buf, title, FromItems(items), now); err != nil {
		slog.Error("rendering print view", "title", title, "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	buf.WriteTo(w)
}
