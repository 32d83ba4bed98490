package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/dgallion1/jarbas/internal/store"
	"github.com/go-chi/chi/v5"
)

type listResponse struct {
	Count   int64                  `json:"count"`
	Results []*store.Reimbursement `json:"results"`
}

// handleListReimbursements lists reimbursements, optionally narrowed by
// year and applicant from the path.
func (s *Server) handleListReimbursements(w http.ResponseWriter, r *http.Request) {
	var f store.Filter
	var err error
	if f.Year, err = optionalID(r, "year"); err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	if f.ApplicantID, err = optionalID(r, "applicantID"); err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	page, err := s.page(r)
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}

	results, total, err := s.reimbursements.List(r.Context(), f, page)
	if err != nil {
		s.log.Error("list reimbursements", "error", err)
		jsonError(w, "failed to list reimbursements", http.StatusInternalServerError)
		return
	}
	if results == nil {
		results = []*store.Reimbursement{}
	}
	writeJSON(w, http.StatusOK, listResponse{Count: total, Results: results})
}

// handleGetReimbursement returns the reimbursement with the key in the path.
func (s *Server) handleGetReimbursement(w http.ResponseWriter, r *http.Request) {
	var key [3]int64
	for i, name := range []string{"year", "applicantID", "documentID"} {
		id, err := optionalID(r, name)
		if err != nil {
			jsonError(w, err.Error(), http.StatusBadRequest)
			return
		}
		key[i] = *id
	}

	reimbursement, err := s.reimbursements.Get(r.Context(), key[0], key[1], key[2])
	if errors.Is(err, store.ErrNotFound) {
		jsonError(w, "not found", http.StatusNotFound)
		return
	}
	if err != nil {
		s.log.Error("get reimbursement", "error", err)
		jsonError(w, "failed to get reimbursement", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, reimbursement)
}

// optionalID parses a numeric path parameter. It returns nil when the
// route has no such parameter.
func optionalID(r *http.Request, name string) (*int64, error) {
	raw := chi.URLParam(r, name)
	if raw == "" {
		return nil, nil
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid %s: %q", name, raw)
	}
	return &n, nil
}

func (s *Server) page(r *http.Request) (store.Page, error) {
	p := store.Page{Limit: uint64(s.cfg.PageSize)}
	q := r.URL.Query()
	if v := q.Get("limit"); v != "" {
		n, err := strconv.ParseUint(v, 10, 64)
		if err != nil || n == 0 {
			return p, fmt.Errorf("invalid limit: %q", v)
		}
		p.Limit = min(n, uint64(s.cfg.MaxPageSize))
	}
	if v := q.Get("offset"); v != "" {
		n, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return p, fmt.Errorf("invalid offset: %q", v)
		}
		p.Offset = n
	}
	return p, nil
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	writeJSON(w, code, map[string]string{"error": msg})
}
