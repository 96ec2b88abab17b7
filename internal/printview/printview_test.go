package printview

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/erazemk/motoinvent/internal/model"
)

var printDate = time.Date(2026, 3, 7, 10, 0, 0, 0, time.UTC)

func TestRender(t *testing.T) {
	rows := FromItems([]model.Item{
		{ID: "1", Name: "Filtro", Location: "A1", Quantity: 3},
		{ID: "2", Name: "Bujía", Quantity: 1},
	})

	var buf bytes.Buffer
	if err := Render(&buf, "ÁGUILA 150CC", rows, printDate); err != nil {
		t.Fatalf("Render: %v", err)
	}
	out := buf.String()

	for _, want := range []string{
		"<title>ÁGUILA 150CC</title>",
		"<th>Repuesto</th><th>Cantidad</th>",
		"<td>[A1] Filtro</td><td class=\"qty\">3</td>",
		"<td>Bujía</td><td class=\"qty\">1</td>",
		"MotoInvent · 07/03/2026",
		"window.print()",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q", want)
		}
	}
	if strings.Index(out, "Filtro") > strings.Index(out, "Bujía") {
		t.Error("rows out of order")
	}
	if strings.Contains(out, "Inventario vacío") {
		t.Error("unexpected empty row")
	}
}

func TestRenderEmpty(t *testing.T) {
	var buf bytes.Buffer
	if err := Render(&buf, "TUCÁN 110CC", nil, printDate); err != nil {
		t.Fatalf("Render: %v", err)
	}
	if !strings.Contains(buf.String(), "Inventario vacío") {
		t.Error("expected empty inventory row")
	}
}

func TestRenderEscapesNames(t *testing.T) {
	rows := []Row{{Name: "<script>alert(1)</script>", Quantity: 1}}

	var buf bytes.Buffer
	if err := Render(&buf, "CANARIO 150CC", rows, printDate); err != nil {
		t.Fatalf("Render: %v", err)
	}
	if strings.Contains(buf.String(), "<script>alert(1)") {
		t.Error("item name not escaped")
	}
}

func TestWrite(t *testing.T) {
	rec := httptest.NewRecorder()
	Write(rec, "CÓNDOR 150CC", []model.Item{{ID: "1", Name: "Espejo", Quantity: 2}}, printDate)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "text/html; charset=utf-8" {
		t.Errorf("unexpected content type %q", ct)
	}
	if !strings.Contains(rec.Body.String(), "<td>Espejo</td>") {
		t.Errorf("missing row in %s", rec.Body.String())
	}
}
