// Package namedfile serves opened files as responses under the full
// conditional-request and byte-range semantics of RFC 9110: strong entity tags,
// Last-Modified validation, single byte-range slicing and the corresponding
// 206/304/405/412/416 outcomes.
package namedfile

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/corvid-web/corvid/http"
	"github.com/corvid-web/corvid/http/method"
	"github.com/corvid-web/corvid/http/mime"
	"github.com/corvid-web/corvid/http/status"
	"github.com/corvid-web/corvid/internal/httpdate"
)

// File is a responder over an opened file. The zero configuration serves GET
// and HEAD only, derives the content type from the filename extension, carries
// both validators and streams the body in bounded chunks.
//
// The file is closed once the response is rendered, whichever outcome it takes,
// so a File instance responds at most once.
type File struct {
	file     *os.File
	name     string
	size     int64
	modified time.Time
	ident    uint64

	code        status.Code
	contentType mime.MIME
	disposition string
	encoding    string
	methods     []method.Method
	noETag      bool
	noModified  bool
}

// Open opens the file at the path in read-only mode and prepares it for serving.
func Open(path string) (*File, error) {
	fd, err := os.Open(path)
	if err != nil {
		return nil, err
	}

	file, err := FromFile(fd, path)
	if err != nil {
		_ = fd.Close()
		return nil, err
	}

	return file, nil
}

// FromFile prepares a previously opened file for serving. The path needs not
// exist and is only used to derive the content type and the disposition
// filename.
func FromFile(fd *os.File, path string) (*File, error) {
	name := filepath.Base(path)
	if len(name) == 0 || name == "." || name == string(filepath.Separator) {
		return nil, fmt.Errorf("path carries no filename: %q", path)
	}

	info, err := fd.Stat()
	if err != nil {
		return nil, err
	}

	contentType := mime.OctetStream
	if guessed, found := mime.Extension[strings.ToLower(filepath.Ext(name))]; found {
		contentType = guessed
	}

	return &File{
		file:        fd,
		name:        name,
		size:        info.Size(),
		modified:    info.ModTime(),
		ident:       fileIdent(info),
		code:        status.OK,
		contentType: contentType,
		disposition: dispositionFor(contentType, name),
	}, nil
}

// WithCode overrides the response status code. Any code except 200 OK disables
// the conditional and range machinery entirely: the whole file is streamed
// as-is under the given code.
func (f *File) WithCode(code status.Code) *File {
	f.code = code
	return f
}

// WithContentType overrides the content type derived from the filename.
func (f *File) WithContentType(contentType mime.MIME) *File {
	f.contentType = contentType
	return f
}

// WithDisposition overrides the Content-Disposition header value. The default
// is inline for text, image and video content types and attachment otherwise,
// with the filename attached either way.
func (f *File) WithDisposition(disposition string) *File {
	f.disposition = disposition
	return f
}

// WithEncoding sets the Content-Encoding header value.
func (f *File) WithEncoding(encoding string) *File {
	f.encoding = encoding
	return f
}

// WithMethods replaces the allowlist of request methods. The default allows GET
// and HEAD only.
func (f *File) WithMethods(methods ...method.Method) *File {
	f.methods = methods
	return f
}

// WithoutETag disables the entity tag validator.
func (f *File) WithoutETag() *File {
	f.noETag = true
	return f
}

// WithoutLastModified disables the Last-Modified validator.
func (f *File) WithoutLastModified() *File {
	f.noModified = true
	return f
}

// ETag derives the strong validator of the file's current state: the platform
// identity token, the byte length and the modification time at both seconds and
// sub-second nanoseconds precision, as a quoted hexadecimal composite. The
// format is similar to the one Apache uses.
func (f *File) ETag() string {
	if f.modified.IsZero() {
		return ""
	}

	return fmt.Sprintf(
		`"%x:%x:%x:%x"`,
		f.ident, f.size, f.modified.Unix(), f.modified.Nanosecond(),
	)
}

// LastModified returns the modification timestamp truncated to the precision an
// HTTP date carries. The boolean is false when no timestamp is known.
func (f *File) LastModified() (time.Time, bool) {
	if f.modified.IsZero() {
		return time.Time{}, false
	}

	return httpdate.Truncate(f.modified), true
}

// Respond implements the http.Responder interface. The outcome is computed in a
// fixed order: a non-200 code override streams the file unconditionally; a
// disallowed method yields 405; an unparsable or unsatisfiable Range header
// yields 416 before any conditional outcome; failed preconditions yield 412;
// a passing If-None-Match or If-Modified-Since yields 304; otherwise the
// requested window is served as 206 or 200.
func (f *File) Respond(request *http.Request) (*http.Response, error) {
	if f.code != status.OK {
		resp := f.head(request.Respond()).Code(f.code)
		return f.stream(resp, ByteRange{Length: f.size}), nil
	}

	if !f.methodAllowed(request.Method) {
		f.discard()
		return request.Respond().
			Code(status.MethodNotAllowed).
			ContentType(mime.Plain).
			Header("Allow", f.allowed()).
			String("the resource supports " + f.allowed() + " only"), nil
	}

	etag := ""
	if !f.noETag {
		etag = f.ETag()
	}

	lastModified, validateModified := time.Time{}, false
	if !f.noModified {
		lastModified, validateModified = f.LastModified()
	}

	resp := f.head(request.Respond())
	if len(etag) != 0 {
		resp.Header("ETag", etag)
	}
	if validateModified {
		resp.Header("Last-Modified", httpdate.Format(lastModified))
	}
	resp.Header("Accept-Ranges", "bytes")

	preconditionFailed := !anyMatch(etag, request)
	if !preconditionFailed && validateModified {
		if since, found := header(request, "If-Unmodified-Since"); found {
			if ts, err := httpdate.Parse(since); err == nil {
				preconditionFailed = lastModified.After(ts)
			}
		}
	}

	notModified := false
	switch {
	case !noneMatch(etag, request):
		notModified = true
	case request.Headers.Has("If-None-Match"):
		// entities are present yet none matched, so If-Modified-Since must
		// not be consulted
	case validateModified:
		if since, found := header(request, "If-Modified-Since"); found {
			if ts, err := httpdate.Parse(since); err == nil {
				notModified = !lastModified.After(ts)
			}
		}
	}

	window := ByteRange{Length: f.size}

	if raw, found := header(request, "Range"); found {
		parsed, err := ParseRange(raw, f.size)
		if err != nil {
			f.discard()
			return resp.
				Code(status.RequestedRangeNotSatisfiable).
				Header("Content-Range", "bytes */"+strconv.FormatInt(f.size, 10)), nil
		}

		window = parsed
		resp.Header("Content-Range", fmt.Sprintf(
			"bytes %d-%d/%d", window.Start, window.Start+window.Length-1, f.size,
		))
	}

	resp.Header("Content-Length", strconv.FormatInt(window.Length, 10))

	switch {
	case preconditionFailed:
		f.discard()
		return resp.Code(status.PreconditionFailed), nil
	case notModified:
		f.discard()
		return resp.Code(status.NotModified), nil
	}

	if request.Method == method.HEAD {
		f.discard()
		return resp, nil
	}

	if window.Start != 0 || window.Length != f.size {
		resp.Code(status.PartialContent)
	}

	return f.stream(resp, window), nil
}

func (f *File) head(resp *http.Response) *http.Response {
	resp.
		ContentType(f.contentType).
		Header("Content-Disposition", f.disposition)

	if len(f.encoding) != 0 {
		resp.ContentEncoding(f.encoding)
	}

	return resp
}

func (f *File) stream(resp *http.Response, window ByteRange) *http.Response {
	return resp.Attachment(newChunkReader(f.file, window), window.Length)
}

func (f *File) methodAllowed(m method.Method) bool {
	if len(f.methods) == 0 {
		return m == method.GET || m == method.HEAD
	}

	for _, allowed := range f.methods {
		if m == allowed {
			return true
		}
	}

	return false
}

func (f *File) allowed() string {
	if len(f.methods) == 0 {
		return "GET, HEAD"
	}

	names := make([]string, len(f.methods))
	for i, m := range f.methods {
		names[i] = m.String()
	}

	return strings.Join(names, ", ")
}

func (f *File) discard() {
	_ = f.file.Close()
}

// anyMatch reports whether the request carries no If-Match header, or at least
// one of its entity tags matches the validator byte-exactly. Weak tags never
// match, as If-Match requires the strong comparison.
func anyMatch(etag string, request *http.Request) bool {
	raw, found := header(request, "If-Match")
	if !found {
		return true
	}

	if strings.TrimSpace(raw) == "*" {
		return true
	}

	if len(etag) == 0 {
		return false
	}

	for _, candidate := range splitTags(raw) {
		if candidate == etag {
			return true
		}
	}

	return false
}

// noneMatch reports whether none of the If-None-Match entity tags weakly match
// the validator. An absent header counts as no match; an asterisk matches
// whatever state the resource is in.
func noneMatch(etag string, request *http.Request) bool {
	raw, found := header(request, "If-None-Match")
	if !found {
		return true
	}

	if strings.TrimSpace(raw) == "*" {
		return false
	}

	if len(etag) == 0 {
		return true
	}

	for _, candidate := range splitTags(raw) {
		if weakEqual(candidate, etag) {
			return false
		}
	}

	return true
}

func weakEqual(a, b string) bool {
	return strings.TrimPrefix(a, "W/") == strings.TrimPrefix(b, "W/")
}

func splitTags(raw string) []string {
	tags := strings.Split(raw, ",")
	for i := range tags {
		tags[i] = strings.TrimSpace(tags[i])
	}

	return tags
}

func header(request *http.Request, key string) (string, bool) {
	return request.Headers.Get(key)
}

func dispositionFor(contentType mime.MIME, filename string) string {
	kind := "attachment"

	switch {
	case strings.HasPrefix(contentType, "text/"),
		strings.HasPrefix(contentType, "image/"),
		strings.HasPrefix(contentType, "video/"):
		kind = "inline"
	}

	return kind + `; filename="` + filename + `"`
}
