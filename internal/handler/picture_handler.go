package handler

import (
	"io"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"go-employee-api/internal/service"
	"go-employee-api/internal/util"
)

type PictureHandler struct {
	service *service.PictureService
}

func NewPictureHandler(service *service.PictureService) *PictureHandler {
	return &PictureHandler{service: service}
}

func (h *PictureHandler) Serve(w http.ResponseWriter, r *http.Request) {
	picture, err := h.service.Open(r.Context(), chi.URLParam(r, "name"))
	if err != nil {
		writeError(w, err)
		return
	}

	if picture.RedirectURL != "" {
		http.Redirect(w, r, picture.RedirectURL, http.StatusTemporaryRedirect)
		return
	}
	defer picture.Object.Body.Close()

	if picture.Object.ContentType != "" {
		w.Header().Set("Content-Type", picture.Object.ContentType)
	}
	w.Header().Set("Content-Disposition", mime.FormatMediaType(disposition(picture), map[string]string{"filename": picture.Name}))
	w.Header().Set("Cache-Control", "public, max-age=3600")

	if seeker, ok := picture.Object.Body.(io.ReadSeeker); ok {
		http.ServeContent(w, r, picture.Name, picture.Object.ModTime, seeker)
		return
	}

	if picture.Object.Size > 0 {
		w.Header().Set("Content-Length", strconv.FormatInt(picture.Object.Size, 10))
	}
	w.WriteHeader(http.StatusOK)
	_, _ = io.Copy(w, picture.Object.Body)
}

func (h *PictureHandler) Thumbnail(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	size := parseIntOrDefault(r.URL.Query().Get("size"), service.DefaultThumbnailSize)

	file, info, err := h.service.Thumbnail(r.Context(), name, size)
	if err != nil {
		writeError(w, err)
		return
	}
	defer file.Close()

	filename := strings.TrimSuffix(name, "/") + ".jpg"
	w.Header().Set("Content-Type", "image/jpeg")
	w.Header().Set("Content-Disposition", mime.FormatMediaType("inline", map[string]string{"filename": filename}))
	w.Header().Set("Cache-Control", "public, max-age=3600")
	http.ServeContent(w, r, filename, info.ModTime(), file)
}

// disposition keeps images that can carry script from rendering inline.
func disposition(picture service.Picture) string {
	if util.IsScriptableImage(picture.Name, picture.Object.ContentType) {
		return "attachment"
	}
	return "inline"
}

func parseIntOrDefault(raw string, fallback int) int {
	value, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return fallback
	}
	return value
}
