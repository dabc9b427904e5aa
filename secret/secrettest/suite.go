// Package secrettest is the behavioral contract every secret allocator must
// satisfy. Allocator packages run it from their own tests:
//
//	func TestContract(t *testing.T) {
//		secrettest.Run(t, secrettest.Factory{Allocator: myAllocator})
//	}
package secrettest

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"secret.module/secret"
)

// Factory describes the allocator under test.
type Factory struct {
	Allocator secret.Allocator

	// ReadOnly marks allocators whose secrets cannot be written, such as
	// stateless ones. Only the read side of the contract runs for them.
	ReadOnly bool

	// Want returns the content a ReadOnly allocator yields for a secret of
	// size bytes. Required when ReadOnly is set.
	Want func(size int) []byte
}

// RedactedPattern matches every rendering of a secret.
var RedactedPattern = regexp.MustCompile(`^\(\*\*\*SECRET\*\*\*\)$`)

// Run executes the contract suite for f.
func Run(t *testing.T, f Factory) {
	t.Helper()
	require.NotNil(t, f.Allocator, "Factory.Allocator is required")
	if f.ReadOnly {
		require.NotNil(t, f.Want, "Factory.Want is required for read-only allocators")
	}

	t.Run("Contract", func(t *testing.T) {
		t.Run("Introspection", func(t *testing.T) { testIntrospection(t, f) })
		t.Run("NegativeSize", func(t *testing.T) { testNegativeSize(t, f) })
		t.Run("Redaction", func(t *testing.T) { testRedaction(t, f) })
		t.Run("AccessAfterWipe", func(t *testing.T) { testAccessAfterWipe(t, f) })
		t.Run("WipeOnErrorAndPanic", func(t *testing.T) { testWipeOnErrorAndPanic(t, f) })
		t.Run("DestroyIdempotent", func(t *testing.T) { testDestroyIdempotent(t, f) })
		t.Run("ViewOutlivesScope", func(t *testing.T) { testViewOutlivesScope(t, f) })
		t.Run("InvalidMode", func(t *testing.T) { testInvalidMode(t, f) })
		t.Run("Equal", func(t *testing.T) { testEqual(t, f) })
		t.Run("Dup", func(t *testing.T) { testDup(t, f) })
		t.Run("ConcurrentReaders", func(t *testing.T) { testConcurrentReaders(t, f) })
		t.Run("EqualTiming", func(t *testing.T) { testEqualTiming(t, f) })
		t.Run("ReadOnlyBytesGuarded", func(t *testing.T) { testReadOnlyBytesGuarded(t, f) })
		t.Run("WipeInsideScope", func(t *testing.T) { testWipeInsideScope(t, f) })

		if f.ReadOnly {
			t.Run("DerivedContent", func(t *testing.T) { testDerivedContent(t, f) })
			t.Run("ReadWriteRefused", func(t *testing.T) { testReadWriteRefused(t, f) })
			return
		}

		t.Run("ZeroFilled", func(t *testing.T) { testZeroFilled(t, f) })
		t.Run("RandomDiffers", func(t *testing.T) { testRandomDiffers(t, f) })
		t.Run("MoveFrom", func(t *testing.T) { testMoveFrom(t, f) })
		t.Run("CopyFrom", func(t *testing.T) { testCopyFrom(t, f) })
		t.Run("StateRestored", func(t *testing.T) { testStateRestored(t, f) })
		t.Run("Nesting", func(t *testing.T) { testNesting(t, f) })
		t.Run("ReadOnlyViewRejectsWrites", func(t *testing.T) { testReadOnlyViewRejectsWrites(t, f) })
		t.Run("CompareWhileInUse", func(t *testing.T) { testCompareWhileInUse(t, f) })
		t.Run("ConcurrentAccessDetected", func(t *testing.T) { testConcurrentAccessDetected(t, f) })
		t.Run("Fix", func(t *testing.T) { testFix(t, f) })
		t.Run("DupIndependent", func(t *testing.T) { testDupIndependent(t, f) })
	})
}

// Read copies the content of s out of a ReadOnly scope.
func Read(t testing.TB, s *secret.Secret) []byte {
	t.Helper()
	var out []byte
	require.NoError(t, s.ReadOnly(func(v secret.ByteView) error {
		out = make([]byte, v.Len())
		v.CopyTo(out)
		return nil
	}))
	return out
}

// RequireStatePanic asserts that fn panics with an INVALID_STATE error.
func RequireStatePanic(t testing.TB, fn func()) {
	t.Helper()
	RequirePanicIs(t, secret.ErrState, fn)
}

// RequirePanicIs asserts that fn panics with an error matching target.
func RequirePanicIs(t testing.TB, target error, fn func()) {
	t.Helper()
	defer func() {
		r := recover()
		require.NotNil(t, r, "expected a panic")
		err, ok := r.(error)
		require.True(t, ok, "panic value %v is not an error", r)
		require.ErrorIs(t, err, target)
	}()
	fn()
}

func newSecret(t *testing.T, f Factory, size int) *secret.Secret {
	t.Helper()
	s, err := secret.New(f.Allocator, size)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Destroy() })
	return s
}

func fromBytes(t *testing.T, f Factory, b []byte) *secret.Secret {
	t.Helper()
	s, err := secret.CopyFrom(f.Allocator, b)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Destroy() })
	return s
}

func testIntrospection(t *testing.T, f Factory) {
	for _, size := range []int{0, 1, 32, 4097} {
		s := newSecret(t, f, size)
		assert.Equal(t, size, s.Len())
		assert.Equal(t, secret.NoAccess, s.State())
		assert.Equal(t, f.Allocator.Name(), s.Variant())
		assert.Equal(t, s.Capabilities(), s.Capabilities())
	}
}

func testNegativeSize(t *testing.T, f Factory) {
	s, err := secret.New(f.Allocator, -1)
	assert.Nil(t, s)
	require.ErrorIs(t, err, secret.ErrAllocation)
}

func testRedaction(t *testing.T, f Factory) {
	var s *secret.Secret
	plaintext := []byte("hunter2-hunter2!")
	if f.ReadOnly {
		s = newSecret(t, f, 16)
		plaintext = f.Want(16)
	} else {
		s = fromBytes(t, f, plaintext)
	}
	leaks := []string{string(plaintext), fmt.Sprintf("%x", plaintext), "[]byte", "[]uint8"}

	for _, verb := range []string{"%s", "%v", "%+v", "%#v", "%x", "%X", "%q", "%d", "%10s", "%-20v"} {
		out := fmt.Sprintf(verb, s)
		assert.Regexp(t, RedactedPattern, out, "verb %s", verb)
	}
	assert.Regexp(t, RedactedPattern, s.String())
	assert.Regexp(t, RedactedPattern, s.GoString())

	wrapped := struct{ Key *secret.Secret }{s}
	assert.Equal(t, "{Key:(***SECRET***)}", fmt.Sprintf("%+v", wrapped))

	js, err := json.Marshal(wrapped)
	require.NoError(t, err)
	assert.JSONEq(t, `{"Key":"(***SECRET***)"}`, string(js))

	text, err := s.MarshalText()
	require.NoError(t, err)
	assert.Regexp(t, RedactedPattern, string(text))

	var buf bytes.Buffer
	slog.New(slog.NewJSONHandler(&buf, nil)).Info("loaded", "key", s)
	assert.Contains(t, buf.String(), `"key":"(***SECRET***)"`)

	require.NoError(t, s.ReadOnly(func(v secret.ByteView) error {
		assert.Regexp(t, RedactedPattern, fmt.Sprintf("%v", v))
		assert.Regexp(t, RedactedPattern, fmt.Sprintf("%#v", v))
		return nil
	}))

	for _, out := range []string{fmt.Sprintf("%#v", s), buf.String(), string(js)} {
		for _, leak := range leaks {
			assert.NotContains(t, out, leak)
		}
	}
}

func testAccessAfterWipe(t *testing.T, f Factory) {
	s := newSecret(t, f, 8)
	require.NoError(t, s.Wipe(func() error {
		return s.ReadOnly(func(v secret.ByteView) error { return nil })
	}))
	assert.Equal(t, secret.Erased, s.State())

	called := false
	err := s.ReadOnly(func(v secret.ByteView) error {
		called = true
		return nil
	})
	require.ErrorIs(t, err, secret.ErrState)
	assert.False(t, called)
	require.ErrorIs(t, s.Fix(secret.ReadOnly), secret.ErrState)
	_, err = s.Dup()
	require.ErrorIs(t, err, secret.ErrState)
}

func testWipeOnErrorAndPanic(t *testing.T, f Factory) {
	boom := errors.New("boom")
	s := newSecret(t, f, 8)
	require.ErrorIs(t, s.Wipe(func() error { return boom }), boom)
	assert.Equal(t, secret.Erased, s.State())

	p := newSecret(t, f, 8)
	assert.Panics(t, func() {
		_ = p.Wipe(func() error { panic("boom") })
	})
	assert.Equal(t, secret.Erased, p.State())
	require.ErrorIs(t, p.ReadOnly(func(v secret.ByteView) error { return nil }), secret.ErrState)
}

func testDestroyIdempotent(t *testing.T, f Factory) {
	s := newSecret(t, f, 8)
	require.NoError(t, s.Destroy())
	require.NoError(t, s.Destroy())
	require.NoError(t, s.Wipe(nil))
	assert.Equal(t, 8, s.Len())
	assert.Equal(t, secret.Erased, s.State())
}

func testViewOutlivesScope(t *testing.T, f Factory) {
	s := newSecret(t, f, 8)
	var leaked secret.ByteView
	require.NoError(t, s.ReadOnly(func(v secret.ByteView) error {
		leaked = v
		_ = v.At(0)
		return nil
	}))
	RequireStatePanic(t, func() { _ = leaked.At(0) })
	RequireStatePanic(t, func() { _ = leaked.Bytes() })
	RequireStatePanic(t, func() { leaked.CopyTo(make([]byte, 8)) })
}

func testInvalidMode(t *testing.T, f Factory) {
	s := newSecret(t, f, 8)
	for _, mode := range []secret.State{secret.NoAccess, secret.Erased, secret.State(42)} {
		err := s.WithAccess(mode, func(v secret.ByteView) error { return nil })
		require.ErrorIs(t, err, secret.ErrState, "mode %s", mode)
	}
	assert.Equal(t, secret.NoAccess, s.State())
}

func testEqual(t *testing.T, f Factory) {
	var a, b, short *secret.Secret
	if f.ReadOnly {
		a, b, short = newSecret(t, f, 16), newSecret(t, f, 16), newSecret(t, f, 8)
	} else {
		a = fromBytes(t, f, []byte("0123456789abcdef"))
		b = fromBytes(t, f, []byte("0123456789abcdef"))
		short = fromBytes(t, f, []byte("01234567"))
		c := fromBytes(t, f, []byte("0123456789abcdeF"))
		assert.False(t, a.Equal(c))
		equal, err := a.Compare(c)
		require.NoError(t, err)
		assert.False(t, equal)
	}
	assert.True(t, a.Equal(b))
	assert.True(t, a.Equal(a))
	assert.False(t, a.Equal(short))
	assert.False(t, a.Equal(nil))

	equal, err := a.Compare(b)
	require.NoError(t, err)
	assert.True(t, equal)
	equal, err = a.Compare(nil)
	require.NoError(t, err)
	assert.False(t, equal)

	require.NoError(t, b.Destroy())
	assert.False(t, a.Equal(b))
	assert.False(t, b.Equal(a))
	_, err = a.Compare(b)
	require.ErrorIs(t, err, secret.ErrState)
	_, err = b.Compare(a)
	require.ErrorIs(t, err, secret.ErrState)
}

// Comparing secrets that differ in the first byte must take as long as
// comparing secrets that differ only in the last one.
func testEqualTiming(t *testing.T, f Factory) {
	if testing.Short() {
		t.Skip("timing measurement")
	}
	const size = 1 << 14

	var a *secret.Secret
	var base []byte
	if f.ReadOnly {
		a = newSecret(t, f, size)
		base = f.Want(size)
	} else {
		base = bytes.Repeat([]byte{0x5A}, size)
		a = fromBytes(t, f, base)
	}
	first := bytes.Clone(base)
	first[0] ^= 1
	last := bytes.Clone(base)
	last[size-1] ^= 1

	// Read-only allocators cannot be filled, so their counterparts live on
	// the heap.
	mk := func(b []byte) *secret.Secret {
		if !f.ReadOnly {
			return fromBytes(t, f, b)
		}
		s, err := secret.CopyFrom(secret.Fast, b)
		require.NoError(t, err)
		t.Cleanup(func() { _ = s.Destroy() })
		return s
	}
	early, late := mk(first), mk(last)

	median := func(other *secret.Secret) time.Duration {
		samples := make([]time.Duration, 51)
		for i := range samples {
			start := time.Now()
			for j := 0; j < 20; j++ {
				equal, err := a.Compare(other)
				if err != nil || equal {
					t.Fatalf("compare: equal=%v err=%v", equal, err)
				}
			}
			samples[i] = time.Since(start)
		}
		sort.Slice(samples, func(i, j int) bool { return samples[i] < samples[j] })
		return samples[len(samples)/2]
	}
	median(late) // warm up

	e, l := median(early), median(late)
	ratio := float64(e) / float64(l)
	assert.InDelta(t, 1.0, ratio, 0.5, "early=%s late=%s", e, l)
}

// Stores without page protection cannot stop a write through the raw
// slice of a read-only view, but the scope must report it.
func testReadOnlyBytesGuarded(t *testing.T, f Factory) {
	var s *secret.Secret
	if f.ReadOnly {
		s = newSecret(t, f, 4)
	} else {
		s = fromBytes(t, f, []byte{1, 2, 3, 4})
	}
	require.NoError(t, s.ReadOnly(func(v secret.ByteView) error {
		_ = v.Bytes()[0]
		return nil
	}))
	if s.Capabilities().Has(secret.CapAccessControl) {
		t.Skip("read-only regions are mapped without write permission")
	}

	err := s.ReadOnly(func(v secret.ByteView) error {
		v.Bytes()[0] ^= 0xFF
		return nil
	})
	require.ErrorIs(t, err, secret.ErrState)
	assert.Equal(t, secret.NoAccess, s.State())
}

func testDup(t *testing.T, f Factory) {
	var s *secret.Secret
	if f.ReadOnly {
		s = newSecret(t, f, 24)
	} else {
		s = fromBytes(t, f, []byte("duplicate me please....."))
	}
	d, err := s.Dup()
	require.NoError(t, err)
	t.Cleanup(func() { _ = d.Destroy() })

	assert.True(t, s.Equal(d))
	assert.Equal(t, secret.NoAccess, s.State())
	assert.Equal(t, s.Capabilities(), d.Capabilities())

	require.NoError(t, d.Destroy())
	assert.Equal(t, secret.NoAccess, s.State())
	assert.Equal(t, Read(t, s), Read(t, s))
}

func testConcurrentReaders(t *testing.T, f Factory) {
	var s *secret.Secret
	var want []byte
	if f.ReadOnly {
		s = newSecret(t, f, 32)
		want = f.Want(32)
	} else {
		want = []byte("shared by many readers at once!!")
		s = fromBytes(t, f, want)
		require.NoError(t, s.Fix(secret.ReadOnly))
	}
	if !f.ReadOnly {
		assert.True(t, s.Fixed())
	}

	const readers = 8
	var wg sync.WaitGroup
	errs := make(chan error, readers)
	start := make(chan struct{})
	for i := 0; i < readers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			for j := 0; j < 50; j++ {
				err := s.ReadOnly(func(v secret.ByteView) error {
					if !v.Equal(want) {
						return errors.New("content mismatch")
					}
					return nil
				})
				if err != nil {
					errs <- err
					return
				}
			}
		}()
	}
	close(start)
	wg.Wait()
	close(errs)
	for err := range errs {
		assert.NoError(t, err)
	}
}

func testDerivedContent(t *testing.T, f Factory) {
	for _, size := range []int{0, 1, 32, 64} {
		s := newSecret(t, f, size)
		assert.Equal(t, f.Want(size), Read(t, s), "size %d", size)
		assert.Equal(t, secret.NoAccess, s.State())
	}
}

func testReadWriteRefused(t *testing.T, f Factory) {
	s := newSecret(t, f, 8)
	require.ErrorIs(t, s.ReadWrite(func(v secret.ByteView) error { return nil }), secret.ErrState)
	require.ErrorIs(t, s.Fix(secret.ReadWrite), secret.ErrState)

	_, err := secret.Random(f.Allocator, 8)
	require.ErrorIs(t, err, secret.ErrState)
	_, err = secret.CopyFrom(f.Allocator, []byte{1, 2, 3})
	require.ErrorIs(t, err, secret.ErrState)
}

func testZeroFilled(t *testing.T, f Factory) {
	for _, size := range []int{0, 1, 8, 4096, 5000} {
		s := newSecret(t, f, size)
		assert.Equal(t, make([]byte, size), Read(t, s), "size %d", size)
	}
}

func testRandomDiffers(t *testing.T, f Factory) {
	a, err := secret.Random(f.Allocator, 8)
	require.NoError(t, err)
	defer a.Destroy()
	b, err := secret.Random(f.Allocator, 8)
	require.NoError(t, err)
	defer b.Destroy()

	assert.False(t, a.Equal(b))
	assert.NotEqual(t, Read(t, a), Read(t, b))
	assert.NotEqual(t, make([]byte, 8), Read(t, a))
}

func testMoveFrom(t *testing.T, f Factory) {
	src := []byte{0, 1, 0, 0}
	s, err := secret.MoveFrom(f.Allocator, src)
	require.NoError(t, err)
	defer s.Destroy()

	assert.Equal(t, []byte{0, 1, 0, 0}, Read(t, s))
	assert.Equal(t, []byte{0, 0, 0, 0}, src)

	failed := []byte{9, 9, 9}
	_, err = secret.MoveFrom(nil, failed)
	require.ErrorIs(t, err, secret.ErrAllocation)
	assert.Equal(t, []byte{0, 0, 0}, failed)
}

func testCopyFrom(t *testing.T, f Factory) {
	src := []byte{0, 1, 0, 0}
	s, err := secret.CopyFrom(f.Allocator, src)
	require.NoError(t, err)
	defer s.Destroy()

	assert.Equal(t, []byte{0, 1, 0, 0}, Read(t, s))
	assert.Equal(t, []byte{0, 1, 0, 0}, src)
}

func testStateRestored(t *testing.T, f Factory) {
	s := newSecret(t, f, 8)
	boom := errors.New("boom")

	require.NoError(t, s.ReadWrite(func(v secret.ByteView) error {
		assert.Equal(t, secret.ReadWrite, s.State())
		assert.Equal(t, secret.ReadWrite, v.Mode())
		return nil
	}))
	assert.Equal(t, secret.NoAccess, s.State())

	require.ErrorIs(t, s.ReadOnly(func(v secret.ByteView) error {
		assert.Equal(t, secret.ReadOnly, s.State())
		return boom
	}), boom)
	assert.Equal(t, secret.NoAccess, s.State())

	assert.Panics(t, func() {
		_ = s.ReadWrite(func(v secret.ByteView) error { panic("boom") })
	})
	assert.Equal(t, secret.NoAccess, s.State())
	assert.Equal(t, make([]byte, 8), Read(t, s))
}

func testNesting(t *testing.T, f Factory) {
	s := newSecret(t, f, 4)

	require.NoError(t, s.ReadWrite(func(outer secret.ByteView) error {
		outer.Set(0, 7)
		require.NoError(t, s.ReadOnly(func(inner secret.ByteView) error {
			assert.Equal(t, secret.ReadOnly, s.State())
			assert.Equal(t, byte(7), inner.At(0))
			return nil
		}))
		assert.Equal(t, secret.ReadWrite, s.State())
		outer.Set(1, 8)

		require.NoError(t, s.ReadWrite(func(inner secret.ByteView) error {
			inner.Set(2, 9)
			return nil
		}))
		assert.Equal(t, secret.ReadWrite, s.State())
		outer.Set(3, 10)
		return nil
	}))
	assert.Equal(t, []byte{7, 8, 9, 10}, Read(t, s))

	require.NoError(t, s.ReadOnly(func(outer secret.ByteView) error {
		require.NoError(t, s.ReadOnly(func(inner secret.ByteView) error { return nil }))
		err := s.ReadWrite(func(inner secret.ByteView) error {
			t.Error("read-write scope opened inside a read-only scope")
			return nil
		})
		require.ErrorIs(t, err, secret.ErrState)
		assert.Equal(t, secret.ReadOnly, s.State())
		assert.Equal(t, byte(7), outer.At(0))
		return nil
	}))
	assert.Equal(t, secret.NoAccess, s.State())
}

func testReadOnlyViewRejectsWrites(t *testing.T, f Factory) {
	s := fromBytes(t, f, []byte{1, 2, 3})
	require.NoError(t, s.ReadOnly(func(v secret.ByteView) error {
		RequireStatePanic(t, func() { v.Set(0, 0) })
		RequireStatePanic(t, func() { v.Fill(0) })
		RequireStatePanic(t, func() { v.CopyFrom([]byte{0}) })
		return nil
	}))
	assert.Equal(t, []byte{1, 2, 3}, Read(t, s))
}

func testWipeInsideScope(t *testing.T, f Factory) {
	mode := secret.ReadWrite
	var s *secret.Secret
	if f.ReadOnly {
		mode = secret.ReadOnly
		s = newSecret(t, f, 4)
	} else {
		s = fromBytes(t, f, []byte{1, 2, 3, 4})
	}
	var leaked secret.ByteView
	err := s.WithAccess(mode, func(v secret.ByteView) error {
		leaked = v
		return s.Wipe(nil)
	})
	require.NoError(t, err)
	assert.Equal(t, secret.Erased, s.State())
	RequireStatePanic(t, func() { _ = leaked.At(0) })
}

func testCompareWhileInUse(t *testing.T, f Factory) {
	a := fromBytes(t, f, []byte("same"))
	b := fromBytes(t, f, []byte("same"))
	entered := make(chan struct{})
	release := make(chan struct{})
	done := make(chan error, 1)

	go func() {
		done <- b.ReadOnly(func(v secret.ByteView) error {
			close(entered)
			<-release
			return nil
		})
	}()
	<-entered

	equal, err := a.Compare(b)
	require.ErrorIs(t, err, secret.ErrConcurrentAccess)
	assert.False(t, equal)
	RequirePanicIs(t, secret.ErrConcurrentAccess, func() { a.Equal(b) })
	assert.Equal(t, secret.NoAccess, a.State())

	close(release)
	require.NoError(t, <-done)
	equal, err = a.Compare(b)
	require.NoError(t, err)
	assert.True(t, equal)
}

func testConcurrentAccessDetected(t *testing.T, f Factory) {
	s := newSecret(t, f, 8)
	entered := make(chan struct{})
	release := make(chan struct{})
	done := make(chan error, 1)

	go func() {
		done <- s.ReadOnly(func(v secret.ByteView) error {
			close(entered)
			<-release
			return nil
		})
	}()
	<-entered

	err := s.ReadOnly(func(v secret.ByteView) error { return nil })
	require.ErrorIs(t, err, secret.ErrConcurrentAccess)
	require.ErrorIs(t, s.Destroy(), secret.ErrConcurrentAccess)
	assert.Equal(t, secret.ReadOnly, s.State())

	close(release)
	require.NoError(t, <-done)
	assert.Equal(t, secret.NoAccess, s.State())
	require.NoError(t, s.ReadOnly(func(v secret.ByteView) error { return nil }))
}

func testFix(t *testing.T, f Factory) {
	s := fromBytes(t, f, []byte{4, 5, 6})
	require.ErrorIs(t, s.Fix(secret.NoAccess), secret.ErrState)
	require.NoError(t, s.Fix(secret.ReadWrite))
	assert.Equal(t, secret.ReadWrite, s.State())
	require.ErrorIs(t, s.Fix(secret.ReadOnly), secret.ErrState)

	require.NoError(t, s.ReadWrite(func(v secret.ByteView) error {
		v.Set(0, 40)
		return nil
	}))
	require.NoError(t, s.ReadOnly(func(v secret.ByteView) error {
		assert.Equal(t, secret.ReadOnly, v.Mode())
		RequireStatePanic(t, func() { v.Set(0, 0) })
		return nil
	}))
	assert.Equal(t, secret.ReadWrite, s.State())
	assert.Equal(t, []byte{40, 5, 6}, Read(t, s))

	r := fromBytes(t, f, []byte{1})
	require.NoError(t, r.Fix(secret.ReadOnly))
	require.ErrorIs(t, r.ReadWrite(func(v secret.ByteView) error { return nil }), secret.ErrState)
	require.NoError(t, r.Destroy())
	assert.Equal(t, secret.Erased, r.State())

	inside := newSecret(t, f, 1)
	require.NoError(t, inside.ReadOnly(func(v secret.ByteView) error {
		require.ErrorIs(t, inside.Fix(secret.ReadOnly), secret.ErrState)
		return nil
	}))

	own := fromBytes(t, f, []byte{9, 9})
	require.NoError(t, own.Fix(secret.ReadOnly))
	var leaked secret.ByteView
	require.NoError(t, own.ReadOnly(func(v secret.ByteView) error {
		leaked = v
		return own.Wipe(nil)
	}))
	assert.Equal(t, secret.Erased, own.State())
	RequireStatePanic(t, func() { _ = leaked.At(0) })
}

func testDupIndependent(t *testing.T, f Factory) {
	s := fromBytes(t, f, []byte{1, 2, 3, 4})
	d, err := s.Dup()
	require.NoError(t, err)
	defer d.Destroy()

	require.NoError(t, s.ReadWrite(func(v secret.ByteView) error {
		v.Fill(0xAA)
		return nil
	}))
	assert.Equal(t, []byte{1, 2, 3, 4}, Read(t, d))
	assert.Equal(t, []byte{0xAA, 0xAA, 0xAA, 0xAA}, Read(t, s))

	require.NoError(t, s.ReadWrite(func(v secret.ByteView) error {
		inner, err := s.Dup()
		require.NoError(t, err)
		defer inner.Destroy()
		assert.Equal(t, secret.ReadWrite, s.State())
		assert.Equal(t, []byte{0xAA, 0xAA, 0xAA, 0xAA}, Read(t, inner))
		return nil
	}))
}
