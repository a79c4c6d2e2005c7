// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/pdiddy/outreach/internal/dispatch"
	"github.com/pdiddy/outreach/internal/export"
	"github.com/pdiddy/outreach/internal/outreach"
	"github.com/pdiddy/outreach/internal/store"
	"github.com/pdiddy/outreach/pkg/types"
)

// maxBodyBytes bounds request bodies.
const maxBodyBytes = 1 << 20

type errorBody struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// statusFor maps pipeline errors to HTTP status codes.
func statusFor(err error) int {
	var svcErr *types.ServiceError
	switch {
	case errors.As(err, &svcErr):
		return http.StatusBadGateway
	case errors.Is(err, store.ErrNotFound), errors.Is(err, outreach.ErrNoCandidate):
		return http.StatusNotFound
	case errors.Is(err, outreach.ErrBusy), errors.Is(err, outreach.ErrAlreadySaved):
		return http.StatusConflict
	case errors.Is(err, types.ErrInvalidStatus),
		errors.Is(err, outreach.ErrInvalidEmail),
		errors.Is(err, dispatch.ErrNoRecipient),
		errors.Is(err, dispatch.ErrSMTPDisabled):
		return http.StatusUnprocessableEntity
	case errors.Is(err, types.ErrMissingAPIKey):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", zap.String("path", r.URL.Path), zap.Error(err))
	}
	writeJSON(w, status, errorBody{Error: err.Error()})
}

func badRequest(w http.ResponseWriter, format string, args ...any) {
	writeJSON(w, http.StatusBadRequest, errorBody{Error: fmt.Sprintf(format, args...)})
}

// decode reads a JSON body into v. An empty body leaves v unchanged.
func decode(w http.ResponseWriter, r *http.Request, v any) error {
	if r.Body == nil || r.ContentLength == 0 {
		return nil
	}
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	var c types.Criteria
	if err := decode(w, r, &c); err != nil {
		badRequest(w, "%v", err)
		return
	}
	st, err := s.svc.Search(r.Context(), c)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

func (s *Server) handleState(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.svc.State())
}

func (s *Server) handleSaveCandidate(w http.ResponseWriter, r *http.Request) {
	idx, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		badRequest(w, "candidate index must be an integer")
		return
	}
	lead, err := s.svc.SaveCandidate(r.Context(), idx)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, lead)
}

func (s *Server) handleSaveAll(w http.ResponseWriter, r *http.Request) {
	sum, err := s.svc.SaveAll(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sum)
}

// filterFrom reads ?status= and ?q= into a store filter.
func filterFrom(r *http.Request) (store.Filter, error) {
	var f store.Filter
	if raw := r.URL.Query().Get("status"); raw != "" {
		st, err := types.ParseStatus(raw)
		if err != nil {
			return f, err
		}
		f.Status = st
	}
	f.Query = r.URL.Query().Get("q")
	return f, nil
}

func (s *Server) handleListLeads(w http.ResponseWriter, r *http.Request) {
	f, err := filterFrom(r)
	if err != nil {
		badRequest(w, "%v", err)
		return
	}
	leads, err := s.svc.Leads(r.Context(), f)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if leads == nil {
		leads = []types.Lead{}
	}
	writeJSON(w, http.StatusOK, leads)
}

func (s *Server) handleGetLead(w http.ResponseWriter, r *http.Request) {
	lead, err := s.svc.Lead(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, lead)
}

func (s *Server) handleGenerateDraft(w http.ResponseWriter, r *http.Request) {
	out, err := s.svc.GenerateDraft(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleUpdateDraft(w http.ResponseWriter, r *http.Request) {
	var d types.Draft
	if err := decode(w, r, &d); err != nil {
		badRequest(w, "%v", err)
		return
	}
	lead, err := s.svc.UpdateLeadDraft(r.Context(), chi.URLParam(r, "id"), d)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, lead)
}

func (s *Server) handleUpdateEmail(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Email string `json:"email"`
	}
	if err := decode(w, r, &body); err != nil {
		badRequest(w, "%v", err)
		return
	}
	lead, err := s.svc.UpdateLeadEmail(r.Context(), chi.URLParam(r, "id"), body.Email)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, lead)
}

func (s *Server) handleUpdateStatus(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Status string `json:"status"`
	}
	if err := decode(w, r, &body); err != nil {
		badRequest(w, "%v", err)
		return
	}
	st, err := types.ParseStatus(body.Status)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	lead, err := s.svc.UpdateLeadStatus(r.Context(), chi.URLParam(r, "id"), st)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, lead)
}

func (s *Server) handleDispatch(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Channel string `json:"channel"`
	}
	if err := decode(w, r, &body); err != nil {
		badRequest(w, "%v", err)
		return
	}
	ch, err := dispatch.ParseChannel(body.Channel)
	if err != nil {
		badRequest(w, "%v", err)
		return
	}
	out, err := s.svc.Dispatch(r.Context(), chi.URLParam(r, "id"), ch)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	st, err := s.svc.Stats(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	format, err := export.ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		badRequest(w, "%v", err)
		return
	}
	f, err := filterFrom(r)
	if err != nil {
		badRequest(w, "%v", err)
		return
	}

	var buf bytes.Buffer
	if err := s.svc.Export(r.Context(), &buf, format, f); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", export.Filename(format, s.now())))
	w.WriteHeader(http.StatusOK)
	buf.WriteTo(w)
}

func (s *Server) handleGetProfile(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.svc.Profile())
}

func (s *Server) handlePutProfile(w http.ResponseWriter, r *http.Request) {
	var u types.UserProfile
	if err := decode(w, r, &u); err != nil {
		badRequest(w, "%v", err)
		return
	}
	got, err := s.svc.SetProfile(u)
	if err != nil {
		badRequest(w, "%v", err)
		return
	}
	writeJSON(w, http.StatusOK, got)
}
