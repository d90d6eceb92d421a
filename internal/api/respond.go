package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"marathon-api/internal/apperr"
	"marathon-api/internal/logger"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("content-type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeMessage(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// writeError：领域错误 -> 状态码
// 校验错误输出 {"字段": "信息"}；其余为 {"error": "..."}；未识别的错误记录日志并返回 500。
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	if fe, ok := apperr.AsFields(err); ok {
		writeJSON(w, http.StatusBadRequest, fe)
		return
	}
	switch {
	case errors.Is(err, apperr.ErrNotFound):
		writeMessage(w, http.StatusNotFound, "not found")
	case errors.Is(err, apperr.ErrUnauthorized):
		writeMessage(w, http.StatusUnauthorized, "unauthorized")
	case errors.Is(err, apperr.ErrForbidden):
		writeMessage(w, http.StatusForbidden, "forbidden")
	default:
		logger.L().Error("api_error", "method", r.Method, "path", r.URL.Path, "err", err)
		writeMessage(w, http.StatusInternalServerError, "internal error")
	}
}

// decodeJSON：空请求体视为 {}；未知字段忽略
func decodeJSON(r *http.Request, v any) error {
	err := json.NewDecoder(r.Body).Decode(v)
	if err == nil || errors.Is(err, io.EOF) {
		return nil
	}
	return apperr.Field("body", "invalid json: "+err.Error())
}

// pathID：路径中的 {id}；非法 id 与不存在同样处理
func pathID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, apperr.ErrNotFound
	}
	return id, nil
}
