package api

import (
	"context"
	"net/http"
	"strconv"

	"marathon-api/internal/georef"
)

func (h *handlers) provinces(w http.ResponseWriter, r *http.Request) {
	opts, err := h.Geo.ListProvinces(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, opts)
}

func (h *handlers) cities(w http.ResponseWriter, r *http.Request) {
	h.children(w, r, "province", h.Geo.ListCities)
}

func (h *handlers) districts(w http.ResponseWriter, r *http.Request) {
	h.children(w, r, "city", h.Geo.ListDistricts)
}

// children：缺少父级参数返回 400；非数字的父级 id 按“不存在”处理，返回空列表
func (h *handlers) children(w http.ResponseWriter, r *http.Request, param string, list func(ctx context.Context, id int64) ([]georef.Option, error)) {
	raw := r.URL.Query().Get(param)
	if raw == "" {
		writeMessage(w, http.StatusBadRequest, "missing "+param+" id")
		return
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		writeJSON(w, http.StatusOK, []georef.Option{})
		return
	}
	opts, err := list(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, opts)
}
