package keys

import (
	"encoding/hex"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zalando/go-keyring"

	"secret.module/internal/constants"
	"secret.module/secret"
	"secret.module/secret/secrettest"
)

const testMnemonic = "abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon about"

func mustSecret(t *testing.T, b []byte) *secret.Secret {
	t.Helper()
	s, err := secret.CopyFrom(secret.Fast, b)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Destroy() })
	return s
}

func mustHex(t *testing.T, s string) []byte {
	t.Helper()
	b, err := hex.DecodeString(s)
	require.NoError(t, err)
	return b
}

func derived(t *testing.T, d secret.Deriver, info []byte, size int) *secret.Secret {
	t.Helper()
	s, err := secret.New(secret.Stateless(d, info), size)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Destroy() })
	return s
}

func TestHKDFMatchesRFC5869(t *testing.T) {
	ikm := mustSecret(t, mustHex(t, "0b0b0b0b0b0b0b0b0b0b0b0b0b0b0b0b0b0b0b0b0b0b"))
	salt := mustHex(t, "000102030405060708090a0b0c")
	info := mustHex(t, "f0f1f2f3f4f5f6f7f8f9")

	s := derived(t, HKDF(ikm, salt), info, 42)
	want := mustHex(t, "3cb25f25faacd57a90434f64d0362f2a2d2d0a90cf1a5a4c5db02d56ecc4c5bf34007208d5b887185865")
	assert.Equal(t, want, secrettest.Read(t, s))
}

func TestHKDFInfoSeparatesKeys(t *testing.T) {
	master := mustSecret(t, []byte("master key material"))
	a := derived(t, HKDF(master, nil), []byte("enc"), 32)
	b := derived(t, HKDF(master, nil), []byte("mac"), 32)
	again := derived(t, HKDF(master, nil), []byte("enc"), 32)

	assert.False(t, a.Equal(b))
	assert.True(t, a.Equal(again))
}

func TestHKDFErasedMaster(t *testing.T) {
	master := mustSecret(t, []byte("short lived"))
	s := derived(t, HKDF(master, nil), nil, 16)
	require.NoError(t, master.Destroy())

	err := s.ReadOnly(func(v secret.ByteView) error { return nil })
	require.ErrorIs(t, err, secret.ErrDerivation)
	assert.ErrorIs(t, err, secret.ErrState)
}

func TestEVMDerivation(t *testing.T) {
	mnemonic := mustSecret(t, []byte(testMnemonic))
	key := derived(t, EVM(mnemonic, ""), nil, 32)

	var address string
	require.NoError(t, key.ReadOnly(func(v secret.ByteView) error {
		var err error
		address, err = EVMAddress(v)
		return err
	}))
	assert.Equal(t, "0x9858EfFD232B4033E47d90003D41EC34EcaEda94", address)

	second := derived(t, EVM(mnemonic, ""), []byte(EVMDerivationPath+"/1"), 32)
	assert.False(t, key.Equal(second))

	explicit := derived(t, EVM(mnemonic, EVMDerivationPath+"/0"), nil, 32)
	assert.True(t, key.Equal(explicit))
}

func TestEVMRejectsBadInput(t *testing.T) {
	bad := mustSecret(t, []byte("not a valid mnemonic phrase"))
	s := derived(t, EVM(bad, ""), nil, 32)
	require.ErrorIs(t, s.ReadOnly(func(secret.ByteView) error { return nil }), secret.ErrDerivation)

	mnemonic := mustSecret(t, []byte(testMnemonic))
	short := derived(t, EVM(mnemonic, ""), nil, 16)
	err := short.ReadOnly(func(secret.ByteView) error { return nil })
	require.ErrorIs(t, err, secret.ErrDerivation)
	assert.Contains(t, err.Error(), "derived 32 bytes, 16 requested")

	path := derived(t, EVM(mnemonic, "m/not/a/path"), nil, 32)
	require.ErrorIs(t, path.ReadOnly(func(secret.ByteView) error { return nil }), secret.ErrDerivation)
}

func TestCosmosDerivation(t *testing.T) {
	mnemonic := mustSecret(t, []byte(testMnemonic))
	key := derived(t, Cosmos(mnemonic, ""), nil, 32)
	again := derived(t, Cosmos(mnemonic, CosmosDerivationPath+"/0"), nil, 32)
	other := derived(t, Cosmos(mnemonic, ""), []byte(CosmosDerivationPath+"/1"), 32)
	evm := derived(t, EVM(mnemonic, ""), nil, 32)

	assert.True(t, key.Equal(again))
	assert.False(t, key.Equal(other))
	assert.False(t, key.Equal(evm))

	require.NoError(t, key.ReadOnly(func(v secret.ByteView) error {
		address := CosmosAddress(v)
		assert.Len(t, address, 40)
		assert.Equal(t, strings.ToUpper(address), address)
		return nil
	}))
}

func TestValidateMnemonic(t *testing.T) {
	good := mustSecret(t, []byte(testMnemonic))
	bad := mustSecret(t, []byte("abandon abandon abandon"))
	require.NoError(t, good.ReadOnly(func(v secret.ByteView) error {
		assert.True(t, ValidateMnemonic(v))
		return nil
	}))
	require.NoError(t, bad.ReadOnly(func(v secret.ByteView) error {
		assert.False(t, ValidateMnemonic(v))
		return nil
	}))
}

func TestPassphrase(t *testing.T) {
	fast := Argon2Params{Time: 1, Memory: 1024, Threads: 1}
	pass := mustSecret(t, []byte("correct horse battery staple"))
	salt := []byte("0123456789abcdef")

	a := derived(t, Passphrase(pass, salt, fast), []byte("disk"), 32)
	b := derived(t, Passphrase(pass, salt, fast), []byte("disk"), 32)
	c := derived(t, Passphrase(pass, salt, fast), []byte("backup"), 32)
	d := derived(t, Passphrase(pass, []byte("fedcba9876543210"), fast), []byte("disk"), 32)

	assert.True(t, a.Equal(b))
	assert.False(t, a.Equal(c))
	assert.False(t, a.Equal(d))
	assert.NotEqual(t, make([]byte, 32), secrettest.Read(t, a))
}

func TestKeyring(t *testing.T) {
	keyring.MockInit()
	const service, user = "secret.module.test", "master"

	master := mustSecret(t, []byte("keyring master key"))
	require.NoError(t, StoreMaster(service, user, master))
	defer DeleteMaster(service, user)

	fromKeyring := derived(t, Keyring(service, user, []byte("salt")), []byte("app"), 32)
	direct := derived(t, HKDF(master, []byte("salt")), []byte("app"), 32)
	assert.True(t, fromKeyring.Equal(direct))

	missing := derived(t, Keyring(service, "nobody", nil), nil, 32)
	err := missing.ReadOnly(func(secret.ByteView) error { return nil })
	require.ErrorIs(t, err, secret.ErrDerivation)
	assert.ErrorIs(t, err, keyring.ErrNotFound)

	require.NoError(t, keyring.Set(service, "garbage", "zz-not-hex"))
	garbage := derived(t, Keyring(service, "garbage", nil), nil, 32)
	require.ErrorIs(t, garbage.ReadOnly(func(secret.ByteView) error { return nil }), secret.ErrDerivation)
}

func TestGet(t *testing.T) {
	master := mustSecret(t, []byte(testMnemonic))
	for _, kind := range []string{constants.DeriveEVM, " Cosmos ", constants.DeriveHKDF, constants.DerivePassphrase} {
		d, err := Get(kind, Params{Master: master})
		require.NoError(t, err, kind)
		assert.NotNil(t, d)
	}

	d, err := Get(constants.DeriveKeyring, Params{Service: "svc", User: "u"})
	require.NoError(t, err)
	assert.NotNil(t, d)

	_, err = Get(constants.DeriveEVM, Params{})
	assert.ErrorContains(t, err, "needs a master secret")

	_, err = Get("ed25519", Params{Master: master})
	assert.ErrorContains(t, err, "unsupported derivation kind")
	assert.Len(t, Kinds(), 5)
}
