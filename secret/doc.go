// Package secret holds sensitive byte material such as keys, passwords and
// decrypted payloads.
//
// A Secret is reachable only through scoped access:
//
//	s, err := secret.Random(secret.Protected(secret.ProtectPolicy{}), 32)
//	if err != nil {
//		return err
//	}
//	defer s.Destroy()
//
//	err = s.ReadOnly(func(v secret.ByteView) error {
//		block, err := aes.NewCipher(v.Bytes())
//		...
//	})
//
// The view handed to the callback stops working when the callback returns,
// and the secret goes back to the state it was in before the call. Wipe and
// Destroy zero the region with a write the compiler cannot remove, release
// it and leave the secret Erased; any later access fails with INVALID_STATE.
//
// Where the bytes live is decided by the Allocator:
//
//   - Fast: Go heap, secure erase.
//   - Protected: private mapping with guard pages, locked against swap,
//     excluded from core dumps and page-protected between accesses.
//   - Sealed: memguard enclave, encrypted while not in use.
//   - Stateless: derived on every read from a Deriver, nothing kept.
//   - Insecure: Go heap, plain clear. Tests only.
//
// Each store reports what it provides through Capabilities.
//
// Secrets never print their content. String, GoString, Format, LogValue,
// MarshalText and MarshalJSON all yield the marker (***SECRET***).
// Compare and Equal run in constant time.
package secret
