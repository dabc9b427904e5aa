// File: cmd/utils.go
package cmd

import (
	"bufio"
	"bytes"
	"context"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"secret.module/internal/colors"
	"secret.module/internal/config"
	"secret.module/internal/errors"
	"secret.module/internal/security"
	"secret.module/internal/shutdown"
	"secret.module/secret"
)

func joinVariants() string {
	return strings.Join(config.Variants(), ", ")
}

// secretReader reads secrets from the terminal without echo, or line by
// line when input is not a terminal. Input never passes through a Go
// string: the bytes go straight into MoveFrom, which zeros them.
type secretReader struct {
	in    io.Reader
	out   io.Writer
	lines *bufio.Reader
	alloc secret.Allocator
}

func newSecretReader(cmd *cobra.Command, a secret.Allocator) *secretReader {
	return &secretReader{in: cmd.InOrStdin(), out: cmd.ErrOrStderr(), alloc: a}
}

func (r *secretReader) terminalFd() (int, bool) {
	f, ok := r.in.(*os.File)
	if !ok {
		return 0, false
	}
	fd := int(f.Fd())
	return fd, term.IsTerminal(fd)
}

// Read prompts for one secret. Surrounding whitespace is dropped and empty
// input is rejected.
func (r *secretReader) Read(prompt string) (*secret.Secret, error) {
	var raw []byte
	if fd, ok := r.terminalFd(); ok {
		fmt.Fprint(r.out, colors.SafeColor(prompt+": ", colors.Info))
		b, err := term.ReadPassword(fd)
		fmt.Fprintln(r.out)
		if err != nil {
			return nil, errors.NewTerminalError(err)
		}
		raw = b
	} else {
		if r.lines == nil {
			r.lines = bufio.NewReaderSize(r.in, secret.MaxIngestSize)
		}
		line, err := r.lines.ReadSlice('\n')
		if err == bufio.ErrBufferFull {
			secret.Zero(line)
			return nil, errors.NewInvalidInputError(prompt, fmt.Sprintf("longer than %d bytes", secret.MaxIngestSize))
		}
		if err != nil && err != io.EOF {
			secret.Zero(line)
			return nil, errors.NewTerminalError(err)
		}
		raw = line
	}
	defer secret.Zero(raw)

	value := bytes.TrimSpace(raw)
	if len(value) == 0 {
		return nil, errors.NewInvalidInputError(prompt, "input is empty")
	}
	s, err := secret.MoveFrom(r.alloc, value)
	if err != nil {
		return nil, errors.FromSecret(err)
	}
	return s, nil
}

// copyToClipboard copies the hex form of s and, with a timeout configured,
// blocks until the clipboard is cleared again.
func copyToClipboard(cmd *cobra.Command, s *secret.Secret) error {
	if security.Unsupported() {
		return errors.NewClipboardError("copy", fmt.Errorf("no clipboard utility available"))
	}
	cb := security.GetClipboard()
	if err := cb.CopySecretHex(s); err != nil {
		return errors.NewClipboardError("copy", err)
	}

	timeout := config.Cfg.ClipboardTimeout()
	if timeout <= 0 {
		fmt.Fprintln(cmd.OutOrStdout(), colors.SafeColor("Copied to clipboard.", colors.Success))
		return nil
	}
	// An interrupt while waiting clears the clipboard during shutdown.
	shutdown.RegisterClipboardGlobal("clipboard")
	fmt.Fprintln(cmd.OutOrStdout(), colors.SafeColor(
		fmt.Sprintf("Copied to clipboard. It will be cleared in %s.", timeout), colors.Success))
	return clearClipboardAfter(shutdown.GetManager().Context(), cb, timeout)
}

func clearClipboardAfter(ctx context.Context, cb *security.Clipboard, timeout time.Duration) error {
	if err := cb.ClearAfter(ctx, timeout); err != nil {
		return errors.NewClipboardError("clear", err)
	}
	return nil
}

// printSecret writes the hex form of s with a trailing newline. The
// encoded text lives in a buffer that is zeroed afterwards.
func printSecret(w io.Writer, s *secret.Secret) error {
	return s.ReadOnly(func(v secret.ByteView) error {
		return writeHex(w, v)
	})
}

func writeHex(w io.Writer, v secret.ByteView) error {
	buf := make([]byte, hex.EncodedLen(v.Len())+1)
	defer secret.Zero(buf)
	hex.Encode(buf, v.Bytes())
	buf[len(buf)-1] = '\n'
	_, err := w.Write(buf)
	return err
}

// describe prints the redacted form of s and its properties.
func describe(w io.Writer, s *secret.Secret) {
	fmt.Fprintf(w, "%s %s\n", colors.SafeColor("Secret:", colors.Bold), s)
	fmt.Fprintf(w, "   Variant:      %s\n", colors.SafeColor(s.Variant(), colors.Cyan))
	fmt.Fprintf(w, "   Size:         %d bytes\n", s.Len())
	fmt.Fprintf(w, "   Capabilities: %s\n", colors.SafeColor(s.Capabilities().String(), colors.Dim))
}

// randomSecret draws size random bytes into a secret of the configured
// variant.
func randomSecret(size int) (*secret.Secret, error) {
	s, err := secret.Random(allocator, size)
	if err != nil {
		return nil, errors.FromSecret(err)
	}
	return s, nil
}
