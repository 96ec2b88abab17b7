package api

import (
	"errors"
	"io"
	"log/slog"
	"mime"
	"net/http"

	"github.com/erazemk/motoinvent/internal/imaging"
	"github.com/erazemk/motoinvent/internal/label"
	"github.com/erazemk/motoinvent/internal/scan"
	"github.com/erazemk/motoinvent/internal/store"
)

// ScannedQuantity is the quantity given to items saved from a scan.
const ScannedQuantity = 1

// ScanHandler handles label recognition and saving scanned parts.
type ScanHandler struct {
	Scanner   *scan.Service
	Inventory *store.Inventory
}

type parseRequest struct {
	Text string `json:"text"`
}

type saveScannedRequest struct {
	Name     string `json:"name"`
	Location string `json:"location"`
}

// Parse handles POST /api/scan/parse for text recognized on the device.
func (h *ScanHandler) Parse(w http.ResponseWriter, r *http.Request) {
	var req parseRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	jsonResponse(w, http.StatusOK, h.Scanner.ParseText(req.Text))
}

// Scan handles POST /api/scan. The frame is either the raw request body or
// the "frame" field of a multipart form.
func (h *ScanHandler) Scan(w http.ResponseWriter, r *http.Request) {
	frame, err := readFrame(w, r)
	if err != nil {
		jsonError(w, http.StatusBadRequest, err.Error())
		return
	}

	claims := GetClaims(r.Context())
	res, err := h.Scanner.Scan(r.Context(), claims.SessionKey(), frame)
	if errors.Is(err, scan.ErrNoText) {
		jsonResponse(w, http.StatusUnprocessableEntity, scanFailure{Error: err.Error(), Result: &res})
		return
	}
	if err != nil {
		inventoryError(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, res)
}

type scanFailure struct {
	Error  string        `json:"error"`
	Result *label.Result `json:"result,omitempty"`
}

// SaveScanned handles POST /api/models/{model}/items/scanned.
func (h *ScanHandler) SaveScanned(w http.ResponseWriter, r *http.Request) {
	var req saveScannedRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	modelID := r.PathValue("model")
	item, err := h.Inventory.AddItem(r.Context(), modelID, store.ItemInput{
		Name:     req.Name,
		Quantity: ScannedQuantity,
		Location: req.Location,
	})
	if err != nil {
		inventoryError(w, err)
		return
	}

	claims := GetClaims(r.Context())
	slog.Info("scanned item saved", "user", claims.Username, "model", modelID, "item", item.ID, "name", item.Name)
	jsonResponse(w, http.StatusCreated, item)
}

var errNoFrame = errors.New("missing frame")

func readFrame(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	body := http.MaxBytesReader(w, r.Body, imaging.MaxUploadBytes+1<<20)
	defer body.Close()

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType != "multipart/form-data" {
		data, err := io.ReadAll(body)
		if err != nil {
			return nil, errors.New("frame too large")
		}
		if len(data) == 0 {
			return nil, errNoFrame
		}
		return data, nil
	}

	r.Body = body
	if err := r.ParseMultipartForm(imaging.MaxUploadBytes); err != nil {
		return nil, errors.New("invalid multipart form")
	}
	f, _, err := r.FormFile("frame")
	if err != nil {
		return nil, errNoFrame
	}
	defer f.Close()
	return io.ReadAll(f)
}
