package api

import (
	"errors"
	"mime"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
	"time"

	"marathon-api/internal/apperr"
	"marathon-api/internal/moments"
)

const dateLayout = "2006-01-02"

func (h *handlers) listPosts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	fe := apperr.FieldErrors{}
	f := moments.Filter{
		Search:    strings.TrimSpace(q.Get("search")),
		StartDate: queryDate(fe, q.Get("start_date"), "start_date"),
		EndDate:   queryDate(fe, q.Get("end_date"), "end_date"),
		Page:      queryInt(q.Get("page")),
		PageSize:  queryInt(q.Get("page_size")),
	}
	if err := fe.Err(); err != nil {
		writeError(w, r, err)
		return
	}
	pg, err := h.Moments.List(r.Context(), f)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, h.Moments.PageView(pg))
}

func (h *handlers) postStats(w http.ResponseWriter, r *http.Request) {
	st, err := h.Moments.Stats(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

func (h *handlers) getPost(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	p, err := h.Moments.Get(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, h.Moments.PostView(*p))
}

// createPost：multipart 表单，media_files 与 media_types 可重复出现且按顺序对应
func (h *handlers) createPost(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.MaxUpload)
	if err := r.ParseMultipartForm(32 << 20); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		writeError(w, r, apperr.Field("media_files", "invalid upload: "+err.Error()))
		return
	}
	if r.MultipartForm != nil {
		defer r.MultipartForm.RemoveAll()
	}
	in := moments.CreateInput{
		Content:  r.FormValue("content"),
		IsPinned: formBool(r.FormValue("is_pinned")),
		Tags:     r.FormValue("tags"),
	}
	if r.MultipartForm != nil {
		in.Types = r.MultipartForm.Value["media_types"]
		files, err := openAll(r.MultipartForm.File["media_files"])
		defer closeAll(files)
		if err != nil {
			writeError(w, r, err)
			return
		}
		for i, fh := range r.MultipartForm.File["media_files"] {
			in.Files = append(in.Files, moments.Upload{Name: fh.Filename, Body: files[i]})
		}
	}
	p, err := h.Moments.Create(r.Context(), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, h.Moments.PostView(*p))
}

// updatePost：PUT 与 PATCH 都是部分更新；接受 JSON 或表单
func (h *handlers) updatePost(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	in, err := decodeUpdate(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	p, err := h.Moments.Update(r.Context(), id, in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, h.Moments.PostView(*p))
}

func (h *handlers) deletePost(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.Moments.Delete(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// listMedia：不带 post_id 返回全部；post_id 非法时返回空列表
func (h *handlers) listMedia(w http.ResponseWriter, r *http.Request) {
	out := []moments.MediaView{}
	var postID int64
	if raw := r.URL.Query().Get("post_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id <= 0 {
			writeJSON(w, http.StatusOK, out)
			return
		}
		postID = id
	}
	media, err := h.Moments.ListMedia(r.Context(), postID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	for _, m := range media {
		out = append(out, h.Moments.MediaView(m))
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *handlers) getMedia(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	m, err := h.Moments.GetMedia(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, h.Moments.MediaView(*m))
}

func (h *handlers) deleteMedia(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.Moments.DeleteMedia(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func decodeUpdate(r *http.Request) (moments.UpdateInput, error) {
	var in moments.UpdateInput
	ct, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if ct != "multipart/form-data" && ct != "application/x-www-form-urlencoded" {
		return in, decodeJSON(r, &in)
	}
	if err := r.ParseMultipartForm(1 << 20); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		return in, apperr.Field("body", "invalid form: "+err.Error())
	}
	if v, ok := r.Form["content"]; ok && len(v) > 0 {
		in.Content = &v[0]
	}
	if v, ok := r.Form["tags"]; ok && len(v) > 0 {
		in.Tags = &v[0]
	}
	if v, ok := r.Form["is_pinned"]; ok && len(v) > 0 {
		b := formBool(v[0])
		in.IsPinned = &b
	}
	return in, nil
}

func openAll(fhs []*multipart.FileHeader) ([]multipart.File, error) {
	files := make([]multipart.File, 0, len(fhs))
	for _, fh := range fhs {
		f, err := fh.Open()
		if err != nil {
			return files, err
		}
		files = append(files, f)
	}
	return files, nil
}

func closeAll(files []multipart.File) {
	for _, f := range files {
		_ = f.Close()
	}
}

func formBool(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "true", "on", "yes":
		return true
	}
	return false
}

func queryInt(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}

func queryDate(fe apperr.FieldErrors, s, field string) *time.Time {
	if s == "" {
		return nil
	}
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		fe.Add(field, "date must be YYYY-MM-DD")
		return nil
	}
	return &t
}
