package adapthttp

import (
	"net/http"

	"careportal/internal/domain"
)

func (s *Server) handleListShipments(w http.ResponseWriter, r *http.Request) {
	list, err := s.svc.Shipments.List(r.Context(), sessionFrom(r.Context()), r.URL.Query().Get("status"))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	if list == nil {
		list = []domain.Shipment{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"shipments": list})
}

func (s *Server) handleCreateShipment(w http.ResponseWriter, r *http.Request) {
	var in domain.ShipmentInput
	if err := parseJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	sh, err := s.svc.Shipments.Create(r.Context(), sessionFrom(r.Context()), in)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, sh)
}

func (s *Server) handleUpdateShipment(w http.ResponseWriter, r *http.Request) {
	var in domain.ShipmentInput
	if err := parseJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	sh, err := s.svc.Shipments.Update(r.Context(), sessionFrom(r.Context()), r.PathValue("id"), in)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sh)
}

func (s *Server) handleDeleteShipment(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.Shipments.Delete(r.Context(), sessionFrom(r.Context()), r.PathValue("id")); err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func (s *Server) handleListMedications(w http.ResponseWriter, r *http.Request) {
	list, err := s.svc.Medications.List(r.Context(), sessionFrom(r.Context()))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	if list == nil {
		list = []domain.Medication{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"medications": list})
}

func (s *Server) handleGetMedication(w http.ResponseWriter, r *http.Request) {
	m, err := s.svc.Medications.Get(r.Context(), sessionFrom(r.Context()), r.PathValue("id"))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, m)
}

func (s *Server) handleCreateMedication(w http.ResponseWriter, r *http.Request) {
	var in domain.MedicationInput
	if err := parseJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	m, err := s.svc.Medications.Create(r.Context(), sessionFrom(r.Context()), in)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, m)
}

func (s *Server) handleUpdateMedication(w http.ResponseWriter, r *http.Request) {
	var in domain.MedicationInput
	if err := parseJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	m, err := s.svc.Medications.Update(r.Context(), sessionFrom(r.Context()), r.PathValue("id"), in)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, m)
}

func (s *Server) handleDeleteMedication(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.Medications.Delete(r.Context(), sessionFrom(r.Context()), r.PathValue("id")); err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func (s *Server) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	v, err := s.svc.Profile.View(r.Context(), sessionFrom(r.Context()))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

func (s *Server) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	var in domain.ProfileInput
	if err := parseJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	p, err := s.svc.Profile.Update(r.Context(), sessionFrom(r.Context()), in)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}
