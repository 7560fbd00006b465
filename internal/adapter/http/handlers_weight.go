package adapthttp

import (
	"net/http"

	"careportal/internal/domain"
)

func (s *Server) handleWeightProgress(w http.ResponseWriter, r *http.Request) {
	rng, err := rangeQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	p, err := s.svc.Weight.Progress(r.Context(), sessionFrom(r.Context()), rng)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) handleListEntries(w http.ResponseWriter, r *http.Request) {
	q, err := entryQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	entries, err := s.svc.Weight.ListEntries(r.Context(), sessionFrom(r.Context()), q)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	if entries == nil {
		entries = []domain.WeightEntry{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"entries": entries, "page": q.Page, "limit": q.Limit})
}

func entryQuery(r *http.Request) (domain.EntryQuery, error) {
	var (
		q   domain.EntryQuery
		err error
	)
	if q.Page, err = intQuery(r, "page", 0); err != nil {
		return q, err
	}
	if q.Limit, err = intQuery(r, "limit", 0); err != nil {
		return q, err
	}
	if q.StartDate, err = dayQuery(r, "startDate"); err != nil {
		return q, err
	}
	if q.EndDate, err = dayQuery(r, "endDate"); err != nil {
		return q, err
	}
	q.SortBy = r.URL.Query().Get("sortBy")
	q.SortOrder = domain.SortOrder(r.URL.Query().Get("sortOrder"))
	return q, nil
}

func (s *Server) handleGetEntry(w http.ResponseWriter, r *http.Request) {
	e, err := s.svc.Weight.GetEntry(r.Context(), sessionFrom(r.Context()), r.PathValue("id"))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, e)
}

func (s *Server) handleCreateEntry(w http.ResponseWriter, r *http.Request) {
	rng, err := rangeQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	var in domain.WeightEntryInput
	if err := parseJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	e, p, err := s.svc.Weight.CreateEntry(r.Context(), sessionFrom(r.Context()), in, rng)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"entry": e, "progress": p})
}

func (s *Server) handleUpdateEntry(w http.ResponseWriter, r *http.Request) {
	rng, err := rangeQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	var in domain.WeightEntryInput
	if err := parseJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	e, p, err := s.svc.Weight.UpdateEntry(r.Context(), sessionFrom(r.Context()), r.PathValue("id"), in, rng)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"entry": e, "progress": p})
}

func (s *Server) handleDeleteEntry(w http.ResponseWriter, r *http.Request) {
	rng, err := rangeQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	p, err := s.svc.Weight.DeleteEntry(r.Context(), sessionFrom(r.Context()), r.PathValue("id"), rng)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "progress": p})
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	o, err := s.svc.Dashboard.Overview(r.Context(), sessionFrom(r.Context()))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, o)
}
