package gateway

import (
	"errors"
	"net/http"
	"strings"

	"github.com/betbot/polyserve/internal/groups"
)

// POST /set_group?name=...&assets=a,b
// Empty name allocates one from the counter; the chosen name is returned.
func (s *Server) handleSetGroup(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	name := s.groups.Set(q.Get("name"), splitAssets(q.Get("assets")))
	writeJSON(w, 200, map[string]any{"name": name})
}

// PATCH /rename_group?old=...&new=...
func (s *Server) handleRenameGroup(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	oldName, newName := q.Get("old"), q.Get("new")
	if oldName == "" || newName == "" {
		writeError(w, 400, "old and new are required")
		return
	}
	if err := s.groups.Rename(oldName, newName); err != nil {
		writeGroupError(w, err)
		return
	}
	writeJSON(w, 200, map[string]any{"ok": true})
}

// PATCH /extend_group?name=...&assets=a,b
func (s *Server) handleExtendGroup(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if err := s.groups.Extend(q.Get("name"), splitAssets(q.Get("assets"))); err != nil {
		writeGroupError(w, err)
		return
	}
	writeJSON(w, 200, map[string]any{"ok": true})
}

// PATCH /reduce_group?name=...&assets=a,b
func (s *Server) handleReduceGroup(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if err := s.groups.Reduce(q.Get("name"), splitAssets(q.Get("assets"))); err != nil {
		writeGroupError(w, err)
		return
	}
	writeJSON(w, 200, map[string]any{"ok": true})
}

// GET /get_group?name=...
func (s *Server) handleGetGroup(w http.ResponseWriter, r *http.Request) {
	g, err := s.groups.Get(r.URL.Query().Get("name"))
	if err != nil {
		writeGroupError(w, err)
		return
	}
	writeJSON(w, 200, map[string]any{
		"name":     g.Name,
		"assets":   g.Assets,
		"selected": g.Selected,
	})
}

// GET /get_groups
func (s *Server) handleGetGroups(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, 200, s.groups.List())
}

// DELETE /remove_group?name=...
func (s *Server) handleRemoveGroup(w http.ResponseWriter, r *http.Request) {
	if err := s.groups.Remove(r.URL.Query().Get("name")); err != nil {
		writeGroupError(w, err)
		return
	}
	writeJSON(w, 200, map[string]any{"ok": true})
}

func writeGroupError(w http.ResponseWriter, err error) {
	if errors.Is(err, groups.ErrGroupNotFound) {
		writeError(w, 404, err.Error())
		return
	}
	writeError(w, 500, err.Error())
}

func splitAssets(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
