package inspect

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docgateway/internal/model"
)

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	img.Set(0, 0, color.RGBA{R: 255, A: 255})
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestInspect(t *testing.T) {
	pic := pngBytes(t, 4, 3)
	pdf := []byte("%PDF-1.4\n1 0 obj\n<<>>\nendobj\ntrailer\n<<>>\n%%EOF\n")

	tests := []struct {
		name     string
		data     []byte
		declared string
		class    model.ResourceClass
		want     Details
	}{
		{name: "declared type wins", data: pic, declared: "image/png", class: model.ResourceImage, want: Details{MimeHint: "image/png", Width: 4, Height: 3}},
		{name: "sniffed when missing", data: pic, declared: "", class: model.ResourceImage, want: Details{MimeHint: "image/png", Width: 4, Height: 3}},
		{name: "sniffed when generic", data: pdf, declared: "application/octet-stream", class: model.ResourceRaw, want: Details{MimeHint: "application/pdf"}},
		{name: "params dropped", data: pdf, declared: "Application/PDF; q=1", class: model.ResourceRaw, want: Details{MimeHint: "application/pdf"}},
		{name: "undecodable image keeps hint only", data: []byte("not an image"), declared: "image/png", class: model.ResourceImage, want: Details{MimeHint: "image/png"}},
		{name: "empty data", data: nil, declared: "", class: model.ResourceImage, want: Details{MimeHint: "application/octet-stream"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Inspect(tt.data, tt.declared, tt.class))
		})
	}
}
