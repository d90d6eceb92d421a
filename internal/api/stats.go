package api

import (
	"net/http"

	"marathon-api/internal/visitor"
)

// recordVisit：前端每次打开页面调用一次，同一 IP 当天只计一次
func (h *handlers) recordVisit(w http.ResponseWriter, r *http.Request) {
	province, err := h.Visits.Record(r.Context(), visitor.ClientIP(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"province": province})
}

func (h *handlers) visitSummary(w http.ResponseWriter, r *http.Request) {
	sum, err := h.Visits.Summary(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	if sum.Provinces == nil {
		sum.Provinces = []visitor.ProvinceCount{}
	}
	writeJSON(w, http.StatusOK, sum)
}
