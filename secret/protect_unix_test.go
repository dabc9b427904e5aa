//go:build linux || darwin || freebsd || netbsd || openbsd || dragonfly

package secret

import (
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProtectedLayout(t *testing.T) {
	ps := pageSize()
	for _, size := range []int{0, 1, 10, ps, ps + 1} {
		st, err := Protected(ProtectPolicy{}).Allocate(size)
		require.NoError(t, err)
		pst, ok := st.(*pageStore)
		require.True(t, ok)

		assert.Equal(t, size, pst.Len())
		assert.Zero(t, len(pst.inner)%ps)
		assert.Equal(t, len(pst.inner)+2*ps, len(pst.mem))
		// Flush against the trailing guard page.
		assert.Equal(t, len(pst.region), cap(pst.region))

		pst.Erase()
		require.NoError(t, pst.Free())
	}
}

func TestProtectedCapabilities(t *testing.T) {
	s, err := New(Protected(ProtectPolicy{}), 32)
	require.NoError(t, err)
	defer s.Destroy()

	caps := s.Capabilities()
	assert.True(t, caps.Has(CapSecureErase|CapGuardPages|CapAccessControl))
	if runtime.GOOS == "linux" {
		assert.True(t, caps.Has(CapNoDump))
	} else {
		assert.False(t, caps.Has(CapNoDump))
	}
	assert.False(t, caps.Has(CapEncryptedAtRest))
	assert.Equal(t, "protected", s.Variant())
}

func TestProtectedStrict(t *testing.T) {
	a := Protected(ProtectPolicy{Strict: true})
	assert.Equal(t, "protected-strict", a.Name())

	s, err := New(a, 64)
	if err != nil {
		// RLIMIT_MEMLOCK can be too low in constrained environments.
		require.ErrorIs(t, err, ErrAllocation)
		t.Skipf("strict allocation unavailable: %v", err)
	}
	defer s.Destroy()
	assert.True(t, s.Capabilities().Has(CapLocked|CapGuardPages|CapAccessControl))
}

func TestProtectedEraseZerosWholeSpan(t *testing.T) {
	st, err := Protected(ProtectPolicy{}).Allocate(16)
	require.NoError(t, err)
	pst := st.(*pageStore)

	region, err := pst.Open(ReadWrite, NoAccess)
	require.NoError(t, err)
	for i := range region {
		region[i] = 0xEE
	}
	require.NoError(t, pst.Close(region, ReadWrite, NoAccess))

	pst.Erase()
	assert.Equal(t, make([]byte, len(pst.inner)), pst.inner)
	require.NoError(t, pst.Free())
	assert.Nil(t, pst.mem)
}
