package mime

import "strings"

type MIME = string

const (
	OctetStream    MIME = "application/octet-stream"
	Plain          MIME = "text/plain"
	HTML           MIME = "text/html"
	XML            MIME = "text/xml"
	JSON           MIME = "application/json"
	YAML           MIME = "application/yaml"
	PDF            MIME = "application/pdf"
	FormUrlencoded MIME = "application/x-www-form-urlencoded"
	Multipart      MIME = "multipart/form-data"
	ZIP            MIME = "application/zip"
	GZIP           MIME = "application/gzip"
	CSS            MIME = "text/css"
	GIF            MIME = "image/gif"
	JPEG           MIME = "image/jpeg"
	PNG            MIME = "image/png"
	SVG            MIME = "image/svg+xml"
	ICO            MIME = "image/vnd.microsoft.icon"
	WEBP           MIME = "image/webp"
	JS             MIME = "text/javascript"
	WASM           MIME = "application/wasm"
	MP4            MIME = "video/mp4"
	WEBM           MIME = "video/webm"
)

var Extension = map[string]MIME{
	".css":  CSS,
	".gif":  GIF,
	".gz":   GZIP,
	".htm":  HTML,
	".html": HTML,
	".ico":  ICO,
	".jpeg": JPEG,
	".jpg":  JPEG,
	".js":   JS,
	".json": JSON,
	".mjs":  JS,
	".mp4":  MP4,
	".pdf":  PDF,
	".png":  PNG,
	".svg":  SVG,
	".txt":  Plain,
	".wasm": WASM,
	".webm": WEBM,
	".webp": WEBP,
	".xml":  XML,
	".yaml": YAML,
	".zip":  ZIP,
}

// Complies returns whether two MIMEs are compatible. Empty MIME is considered
// compatible with any other MIME.
func Complies(mime MIME, with string) bool {
	// get rid of parameters if any
	if semicolon := strings.IndexByte(with, ';'); semicolon != -1 {
		with = with[:semicolon]
	}
	with = strings.TrimSpace(with)

	return len(with) == 0 || with == mime
}
