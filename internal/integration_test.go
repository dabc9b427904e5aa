package internal

import (
	"bytes"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"secret.module/internal/audit"
	"secret.module/internal/metrics"
	"secret.module/internal/security"
	"secret.module/secret"
)

func TestInitializeIntegration(t *testing.T) {
	t.Cleanup(func() {
		secret.SetRegistry(nil)
		secret.SetObserver(nil)
		security.SetResourceManager(nil)
	})

	var log bytes.Buffer
	reg := prometheus.NewRegistry()
	m := InitializeIntegration(Options{
		AuditLogger: audit.NewLogger(&log),
		Metrics:     metrics.NewObserver(reg),
	})
	require.NotNil(t, m)
	assert.Same(t, m, security.GetResourceManager())

	before := m.LiveSecrets()
	s, err := secret.Random(secret.Fast, 16)
	require.NoError(t, err)
	assert.Equal(t, before+1, m.LiveSecrets())

	require.NoError(t, s.ReadOnly(func(secret.ByteView) error { return nil }))
	require.NoError(t, s.Destroy())
	assert.Equal(t, before, m.LiveSecrets())

	assert.Contains(t, log.String(), `"event":"allocated"`)
	assert.Contains(t, log.String(), `"event":"erased"`)

	families, err := reg.Gather()
	require.NoError(t, err)
	assert.NotEmpty(t, families)
	assert.Equal(t, 1, testutil.CollectAndCount(reg, "secret_allocated_total"))
}

func TestInitializeIntegrationWithoutObservers(t *testing.T) {
	t.Cleanup(func() {
		secret.SetRegistry(nil)
		security.SetResourceManager(nil)
	})

	m := InitializeIntegration(Options{})
	s, err := secret.New(secret.Fast, 1)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, m.LiveSecrets(), 1)
	require.NoError(t, s.Destroy())
}
