package format

// DefaultContentType is served for passthrough objects whose extension has
// no known media type.
const DefaultContentType = "application/octet-stream"

// InferContentType gives a best-effort media type for a passthrough object
// from its key's extension.
func InferContentType(objectKey string) string {
	switch Extension(objectKey) {
	// images
	case "jpg", "jpeg":
		return "image/jpeg"
	case "png":
		return "image/png"
	case "webp":
		return "image/webp"
	case "avif":
		return "image/avif"
	case "gif":
		return "image/gif"
	case "svg":
		return "image/svg+xml"

	// audio
	case "mp3":
		return "audio/mpeg"
	case "m4a":
		return "audio/mp4"
	case "aac":
		return "audio/aac"
	case "oga", "ogg":
		return "audio/ogg"
	case "wav":
		return "audio/wav"
	case "flac":
		return "audio/flac"

	// video
	case "mp4":
		return "video/mp4"
	case "m4v":
		return "video/x-m4v"
	case "mov":
		return "video/quicktime"
	case "webm":
		return "video/webm"
	case "ogv":
		return "video/ogg"
	case "mkv":
		return "video/x-matroska"

	// documents
	case "pdf":
		return "application/pdf"
	case "txt":
		return "text/plain; charset=utf-8"
	case "csv":
		return "text/csv; charset=utf-8"
	case "json":
		return "application/json"
	case "xml":
		return "application/xml"
	case "html", "htm":
		return "text/html; charset=utf-8"
	case "md":
		return "text/markdown; charset=utf-8"

	// web assets
	case "css":
		return "text/css; charset=utf-8"
	case "js", "mjs":
		return "application/javascript; charset=utf-8"

	// archives
	case "zip":
		return "application/zip"
	case "gz":
		return "application/gzip"
	case "tar":
		return "application/x-tar"
	case "7z":
		return "application/x-7z-compressed"
	case "rar":
		return "application/vnd.rar"

	// fonts
	case "woff":
		return "font/woff"
	case "woff2":
		return "font/woff2"
	case "ttf":
		return "font/ttf"
	case "otf":
		return "font/otf"

	// office
	case "doc":
		return "application/msword"
	case "docx":
		return "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	case "xls":
		return "application/vnd.ms-excel"
	case "xlsx":
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	case "ppt":
		return "application/vnd.ms-powerpoint"
	case "pptx":
		return "application/vnd.openxmlformats-officedocument.presentationml.presentation"

	default:
		return DefaultContentType
	}
}
