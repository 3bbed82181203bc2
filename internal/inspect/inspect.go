// Package inspect derives best-effort metadata from uploaded bytes.
// Nothing here can fail an upload: unknown content simply yields fewer details.
package inspect

import (
	"bytes"
	"mime"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/gabriel-vasile/mimetype"

	"docgateway/internal/model"
)

// Details is what could be learned about a file's content.
type Details struct {
	MimeHint string
	Width    int
	Height   int
}

var genericMimes = map[string]struct{}{
	"":                         {},
	"application/octet-stream": {},
	"binary/octet-stream":      {},
	"application/unknown":      {},
}

// Inspect returns the declared MIME type when it is specific, otherwise one sniffed
// from data. Images also get their displayed dimensions, honouring EXIF orientation.
func Inspect(data []byte, declaredMime string, class model.ResourceClass) Details {
	d := Details{MimeHint: mimeHint(data, declaredMime)}
	if class != model.ResourceImage || len(data) == 0 {
		return d
	}
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return d
	}
	b := img.Bounds()
	d.Width, d.Height = b.Dx(), b.Dy()
	return d
}

func mimeHint(data []byte, declared string) string {
	mt, _, err := mime.ParseMediaType(declared)
	if err != nil {
		mt = strings.ToLower(strings.TrimSpace(declared))
	}
	if _, generic := genericMimes[mt]; !generic {
		return mt
	}
	if len(data) == 0 {
		return "application/octet-stream"
	}
	sniffed, _, err := mime.ParseMediaType(mimetype.Detect(data).String())
	if err != nil {
		return "application/octet-stream"
	}
	return sniffed
}
