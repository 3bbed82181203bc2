package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGateway(t *testing.T) {
	reg := prometheus.NewRegistry()
	g, err := NewGateway(reg)
	require.NoError(t, err)

	g.Ingested("raw", OutcomeStored)
	g.Ingested("raw", OutcomeStored)
	g.Ingested("image", OutcomeWriteFailed)
	g.ListDegraded()
	g.ListFailed()

	assert.Equal(t, float64(2), testutil.ToFloat64(g.ingestTotal.WithLabelValues("raw", OutcomeStored)))
	assert.Equal(t, float64(1), testutil.ToFloat64(g.ingestTotal.WithLabelValues("image", OutcomeWriteFailed)))
	assert.Equal(t, float64(1), testutil.ToFloat64(g.listDegraded))
	assert.Equal(t, float64(1), testutil.ToFloat64(g.listFailed))
}

func TestGateway_DuplicateRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := NewGateway(reg)
	require.NoError(t, err)

	_, err = NewGateway(reg)
	assert.Error(t, err)
}

func TestGateway_Nil(t *testing.T) {
	var g *Gateway
	assert.NotPanics(t, func() {
		g.Ingested("raw", OutcomeStored)
		g.ListDegraded()
		g.ListFailed()
	})
}
