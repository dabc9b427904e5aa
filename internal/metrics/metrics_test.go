package metrics

import (
	"bytes"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"secret.module/secret"
)

func TestObserverCounts(t *testing.T) {
	reg := prometheus.NewRegistry()
	o := NewObserver(reg)
	secret.SetObserver(o)
	defer secret.SetObserver(nil)

	a, err := secret.Random(secret.Fast, 16)
	require.NoError(t, err)
	b, err := secret.New(secret.Sealed, 8)
	require.NoError(t, err)

	require.NoError(t, a.ReadOnly(func(v secret.ByteView) error { return nil }))
	require.Error(t, b.WithAccess(secret.NoAccess, nil))

	assert.Equal(t, 1.0, testutil.ToFloat64(o.allocated.WithLabelValues("fast")))
	assert.Equal(t, 1.0, testutil.ToFloat64(o.allocated.WithLabelValues("sealed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(o.accessed.WithLabelValues("fast", "readwrite")))
	assert.Equal(t, 1.0, testutil.ToFloat64(o.accessed.WithLabelValues("fast", "readonly")))
	assert.Equal(t, 1.0, testutil.ToFloat64(o.failures.WithLabelValues("sealed", "INVALID_STATE")))
	assert.Equal(t, 1.0, testutil.ToFloat64(o.live.WithLabelValues("fast")))

	require.NoError(t, a.Destroy())
	require.NoError(t, b.Destroy())
	assert.Equal(t, 0.0, testutil.ToFloat64(o.live.WithLabelValues("fast")))
	assert.Equal(t, 0.0, testutil.ToFloat64(o.live.WithLabelValues("sealed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(o.erased.WithLabelValues("sealed")))
}

func TestUnknownFailureCode(t *testing.T) {
	o := NewObserver(prometheus.NewRegistry())
	o.Observe(secret.Event{Kind: secret.EventFailed, Variant: "fast"})
	assert.Equal(t, 1.0, testutil.ToFloat64(o.failures.WithLabelValues("fast", "UNKNOWN")))
}

func TestWriteText(t *testing.T) {
	reg := prometheus.NewRegistry()
	o := NewObserver(reg)
	o.Observe(secret.Event{Kind: secret.EventAllocated, Variant: "protected"})

	var buf bytes.Buffer
	require.NoError(t, WriteText(&buf, reg))
	assert.Contains(t, buf.String(), "# TYPE secret_allocated_total counter")
	assert.Contains(t, buf.String(), `secret_allocated_total{variant="protected"} 1`)
	assert.Contains(t, buf.String(), `secret_live{variant="protected"} 1`)
}

func TestDefaultIsSingleton(t *testing.T) {
	r1, o1 := Default()
	r2, o2 := Default()
	assert.Same(t, r1, r2)
	assert.Same(t, o1, o2)
}
