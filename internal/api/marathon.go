package api

import (
	"errors"
	"net/http"

	"marathon-api/internal/apperr"
	"marathon-api/internal/marathon"
)

func (h *handlers) detail(e *marathon.Event) marathon.EventDetail {
	return marathon.Detail(*e, h.Marathon.CertificateURL(e.Certificate))
}

func (h *handlers) listEvents(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	evs, err := h.Marathon.List(r.Context(), marathon.EventFilter{
		Province:  q.Get("province"),
		EventType: marathon.EventType(q.Get("event_type")),
		Year:      marathon.ParseYear(q.Get("year")),
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	out := make([]marathon.EventSummary, 0, len(evs))
	for _, e := range evs {
		out = append(out, marathon.Summarize(e))
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *handlers) getEvent(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	e, err := h.Marathon.Get(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, h.detail(e))
}

func (h *handlers) createEvent(w http.ResponseWriter, r *http.Request) {
	var in marathon.EventInput
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, r, err)
		return
	}
	e, err := h.Marathon.Create(r.Context(), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, h.detail(e))
}

func (h *handlers) updateEvent(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var in marathon.EventInput
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, r, err)
		return
	}
	e, err := h.Marathon.Update(r.Context(), id, in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, h.detail(e))
}

func (h *handlers) deleteEvent(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.Marathon.Delete(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// uploadCertificate：multipart 字段 certificate，替换旧证书
func (h *handlers) uploadCertificate(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, h.MaxUpload)
	f, hdr, err := r.FormFile("certificate")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, r, apperr.Field("certificate", "file too large"))
			return
		}
		writeError(w, r, apperr.Field("certificate", "certificate file is required"))
		return
	}
	defer f.Close()
	e, err := h.Marathon.UploadCertificate(r.Context(), id, f, hdr.Filename)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, h.detail(e))
}

func (h *handlers) listRegistrations(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	regs, err := h.Marathon.ListRegistrations(r.Context(), marathon.RegistrationFilter{
		Status:    marathon.RegistrationStatus(q.Get("status")),
		EventType: marathon.EventType(q.Get("event_type")),
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	out := make([]marathon.RegistrationSummary, 0, len(regs))
	for _, reg := range regs {
		out = append(out, marathon.SummarizeRegistration(reg))
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *handlers) getRegistration(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	reg, err := h.Marathon.GetRegistration(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, marathon.DetailRegistration(*reg))
}

func (h *handlers) createRegistration(w http.ResponseWriter, r *http.Request) {
	var in marathon.RegistrationInput
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, r, err)
		return
	}
	reg, err := h.Marathon.CreateRegistration(r.Context(), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, marathon.DetailRegistration(*reg))
}

func (h *handlers) updateRegistration(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var in marathon.RegistrationInput
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, r, err)
		return
	}
	reg, err := h.Marathon.UpdateRegistration(r.Context(), id, in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, marathon.DetailRegistration(*reg))
}

func (h *handlers) deleteRegistration(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.Marathon.DeleteRegistration(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
