package secret

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatePermits(t *testing.T) {
	tests := []struct {
		outer, inner State
		want         bool
	}{
		{ReadWrite, ReadOnly, true},
		{ReadWrite, ReadWrite, true},
		{ReadOnly, ReadOnly, true},
		{ReadOnly, ReadWrite, false},
		{NoAccess, ReadOnly, false},
		{ReadWrite, NoAccess, false},
		{Erased, ReadOnly, false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.outer.permits(tt.inner), "%s permits %s", tt.outer, tt.inner)
	}
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "noaccess", NoAccess.String())
	assert.Equal(t, "readonly", ReadOnly.String())
	assert.Equal(t, "readwrite", ReadWrite.String())
	assert.Equal(t, "erased", Erased.String())
	assert.Equal(t, "state(9)", State(9).String())
}

func TestCapability(t *testing.T) {
	c := CapSecureErase | CapLocked | CapNoDump
	assert.True(t, c.Has(CapSecureErase|CapLocked))
	assert.False(t, c.Has(CapLocked|CapGuardPages))
	assert.Equal(t, []string{"secure-erase", "locked", "no-dump"}, c.Names())
	assert.Equal(t, "secure-erase|locked|no-dump", c.String())
	assert.Equal(t, "none", Capability(0).String())
	assert.Equal(t, "stateless|concurrent-read", (CapStateless | CapConcurrentRead).String())
}
