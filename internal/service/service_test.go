package service

import (
	"bytes"
	"image"
	"image/png"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"docgateway/internal/config"
	"docgateway/internal/storage"
)

func testGatewayConfig() config.GatewayConfig {
	return config.GatewayConfig{
		Folder:            "403notes",
		DefaultMaxResults: 50,
		MaxResultsCap:     100,
		WriteTimeout:      time.Second,
	}
}

// steppingClock returns a clock that starts at start and advances by step on every call.
func steppingClock(start time.Time, step time.Duration) func() time.Time {
	next := start
	return func() time.Time {
		t := next
		next = next.Add(step)
		return t
	}
}

func newTestIngestor(store storage.Store, now func() time.Time) *ingestor {
	ing := NewIngestor(store, nil, testGatewayConfig(), zap.NewNop(), nil).(*ingestor)
	ing.now = now
	return ing
}

func pngFile(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewGray(image.Rect(0, 0, w, h))))
	return buf.Bytes()
}

var pdfFile = []byte("%PDF-1.4\n1 0 obj\n<<>>\nendobj\ntrailer\n<<>>\n%%EOF\n")
