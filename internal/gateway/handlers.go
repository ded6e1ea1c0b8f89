package gateway

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/betbot/polyserve/internal/registry"
)

// GET /search?query=...&max_num_results=N
func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("query")

	maxResults := 0
	if raw := r.URL.Query().Get("max_num_results"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			writeError(w, 400, fmt.Sprintf("invalid max_num_results: %q", raw))
			return
		}
		maxResults = n
	}

	ids := s.reg.Search(query, maxResults)
	writeJSON(w, 200, ids)
}

// GET /get_names?asset_ids=a,b,c
// Unknown ids come back as JSON null slots so the output aligns with the input.
func (s *Server) handleGetNames(w http.ResponseWriter, r *http.Request) {
	ids, err := assetIDsParam(r)
	if err != nil {
		writeError(w, 400, err.Error())
		return
	}
	writeJSON(w, 200, s.reg.LookupNames(ids))
}

// GET /get_id?name=...
func (s *Server) handleGetID(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("name")
	if name == "" {
		writeError(w, 400, "name is required")
		return
	}

	id, err := s.reg.LookupID(name)
	switch {
	case errors.Is(err, registry.ErrNameNotFound):
		writeError(w, 404, err.Error())
	case errors.Is(err, registry.ErrNameAmbiguous):
		writeError(w, 409, err.Error())
	case err != nil:
		writeError(w, 500, err.Error())
	default:
		writeJSON(w, 200, id)
	}
}

// GET /get_books?asset_ids=a,b&depth=N
// One map per input id; a failed fetch renders as a JSON null slot.
func (s *Server) handleGetBooks(w http.ResponseWriter, r *http.Request) {
	ids, err := assetIDsParam(r)
	if err != nil {
		writeError(w, 400, err.Error())
		return
	}

	depth := 0
	if raw := r.URL.Query().Get("depth"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			writeError(w, 400, fmt.Sprintf("invalid depth: %q", raw))
			return
		}
		depth = n
	}

	views := s.books.GetBooks(r.Context(), ids, depth)

	// JSON object keys must be strings; prices are stringified here at the boundary
	out := make([]map[string]float64, len(views))
	for i, view := range views {
		if view.Err != nil {
			continue // nil slot marshals to JSON null
		}
		levels := make(map[string]float64, len(view.Levels))
		for price, size := range view.Levels {
			levels[strconv.FormatFloat(price, 'g', -1, 64)] = size
		}
		out[i] = levels
	}
	writeJSON(w, 200, out)
}

// POST /place_order?asset_id=...&size=...&price=...
// Venue errors are surfaced verbatim, silent retry of a trade order is unsafe.
func (s *Server) handlePlaceOrder(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	assetID := q.Get("asset_id")
	if assetID == "" {
		writeError(w, 400, "asset_id is required")
		return
	}
	size, err := strconv.ParseFloat(q.Get("size"), 64)
	if err != nil {
		writeError(w, 400, fmt.Sprintf("invalid size: %q", q.Get("size")))
		return
	}
	price, err := strconv.ParseFloat(q.Get("price"), 64)
	if err != nil {
		writeError(w, 400, fmt.Sprintf("invalid price: %q", q.Get("price")))
		return
	}

	result, err := s.PlaceOrder(r.Context(), assetID, size, price)
	if err != nil {
		writeError(w, 502, err.Error())
		return
	}
	writeJSON(w, 200, result)
}

// GET /get_orders
func (s *Server) handleGetOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := s.trader.GetOpenOrders(r.Context(), nil)
	if err != nil {
		writeError(w, 502, err.Error())
		return
	}
	writeJSON(w, 200, orders)
}

// assetIDsParam parses the comma-joined asset_ids query parameter.
func assetIDsParam(r *http.Request) ([]string, error) {
	raw := r.URL.Query().Get("asset_ids")
	if raw == "" {
		return nil, errors.New("asset_ids is required")
	}
	parts := strings.Split(raw, ",")
	ids := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			ids = append(ids, p)
		}
	}
	if len(ids) == 0 {
		return nil, errors.New("asset_ids is empty")
	}
	return ids, nil
}
