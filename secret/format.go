// File: secret/format.go

package secret

import (
	"fmt"
	"log/slog"
	"strconv"
)

// redacted is the only rendering a secret or a view ever has.
const redacted = "(***SECRET***)"

// Redacted returns the marker printed in place of secret content.
func Redacted() string {
	return redacted
}

func (s *Secret) String() string {
	return redacted
}

func (s *Secret) GoString() string {
	return redacted
}

// Format renders the marker for every verb and flag.
func (s *Secret) Format(f fmt.State, verb rune) {
	fmt.Fprint(f, redacted)
}

// LogValue keeps secrets out of slog output regardless of handler.
func (s *Secret) LogValue() slog.Value {
	return slog.StringValue(redacted)
}

func (s *Secret) MarshalText() ([]byte, error) {
	return []byte(redacted), nil
}

func (s *Secret) MarshalJSON() ([]byte, error) {
	return []byte(strconv.Quote(redacted)), nil
}

var (
	_ fmt.Stringer   = (*Secret)(nil)
	_ fmt.GoStringer = (*Secret)(nil)
	_ fmt.Formatter  = (*Secret)(nil)
	_ slog.LogValuer = (*Secret)(nil)
	_ fmt.Formatter  = ByteView{}
)
