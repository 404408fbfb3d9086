package util

import (
	"mime"
	"path"
	"strings"
)

func IsImageMIME(mimeType string) bool {
	cleaned := strings.ToLower(strings.TrimSpace(mimeType))
	if parsed, _, err := mime.ParseMediaType(cleaned); err == nil {
		cleaned = parsed
	}
	return strings.HasPrefix(cleaned, "image/") && len(cleaned) > len("image/")
}

func IsImageExtension(extension string) bool {
	switch strings.ToLower(strings.TrimSpace(extension)) {
	case ".png", ".apng", ".jpg", ".jpeg", ".jpe", ".jfif", ".pjpeg", ".pjp", ".gif", ".webp", ".bmp", ".dib", ".tiff", ".tif", ".svg", ".svgz", ".ico", ".cur", ".avif", ".heic", ".heif", ".jxl":
		return true
	default:
		return false
	}
}

// IsThumbnailExtension reports whether images with this extension can be
// decoded for thumbnails.
func IsThumbnailExtension(extension string) bool {
	switch strings.ToLower(strings.TrimSpace(extension)) {
	case ".jpg", ".jpeg", ".jpe", ".jfif", ".pjpeg", ".pjp", ".png", ".gif", ".webp", ".bmp", ".dib", ".tiff", ".tif":
		return true
	default:
		return false
	}
}

// ImageExtension picks the extension a stored image gets: the client
// filename's when it is a known image extension, else one registered for
// the MIME type, else none.
func ImageExtension(filename string, mimeType string) string {
	if ext := clientExtension(filename); IsImageExtension(ext) {
		return ext
	}

	mediaType, _, err := mime.ParseMediaType(mimeType)
	if err != nil {
		return ""
	}
	switch mediaType {
	case "image/jpeg":
		return ".jpg"
	case "image/png":
		return ".png"
	case "image/gif":
		return ".gif"
	case "image/webp":
		return ".webp"
	}

	exts, err := mime.ExtensionsByType(mediaType)
	if err != nil || len(exts) == 0 {
		return ""
	}
	return exts[0]
}

// clientExtension is the lowercased extension of the last element of a
// client filename, which may use either slash. Dot files have none.
func clientExtension(filename string) string {
	base := path.Base(strings.ReplaceAll(strings.TrimSpace(filename), `\`, "/"))
	return strings.ToLower(path.Ext(strings.TrimLeft(base, ".")))
}

// IsScriptableImage reports whether an image can embed script when a
// browser renders it, judged by MIME type or file extension.
func IsScriptableImage(name string, mimeType string) bool {
	if mediaType, _, err := mime.ParseMediaType(mimeType); err == nil && strings.EqualFold(mediaType, "image/svg+xml") {
		return true
	}
	switch clientExtension(name) {
	case ".svg", ".svgz":
		return true
	default:
		return false
	}
}
