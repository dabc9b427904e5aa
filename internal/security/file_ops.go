// File: internal/security/file_ops.go
package security

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"secret.module/secret"
)

// SecureDeleteFile overwrites a file with random data and removes it.
// A missing file is not an error.
func SecureDeleteFile(filePath string) error {
	fileInfo, err := os.Stat(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to stat file %s: %v", filePath, err)
	}

	fileSize := fileInfo.Size()
	if fileSize == 0 {
		return os.Remove(filePath)
	}

	file, err := os.OpenFile(filePath, os.O_WRONLY, 0)
	if err != nil {
		return fmt.Errorf("failed to open file %s for overwriting: %v", filePath, err)
	}
	defer file.Close()

	const overwritePasses = 3
	buffer := make([]byte, min(4096, int(fileSize)))
	defer secret.Zero(buffer)

	for pass := 0; pass < overwritePasses; pass++ {
		if _, err := file.Seek(0, io.SeekStart); err != nil {
			return fmt.Errorf("failed to seek to beginning of file %s: %v", filePath, err)
		}

		remaining := fileSize
		for remaining > 0 {
			chunk := buffer[:min(int64(len(buffer)), remaining)]
			if _, err := rand.Read(chunk); err != nil {
				return fmt.Errorf("failed to read random data for %s: %v", filePath, err)
			}
			if _, err := file.Write(chunk); err != nil {
				return fmt.Errorf("failed to overwrite file %s: %v", filePath, err)
			}
			remaining -= int64(len(chunk))
		}

		if err := file.Sync(); err != nil {
			return fmt.Errorf("failed to sync file %s: %v", filePath, err)
		}
	}

	file.Close()
	if err := os.Remove(filePath); err != nil {
		return fmt.Errorf("failed to delete file %s: %v", filePath, err)
	}
	return nil
}

// WriteSecretFile writes the content of s to path with mode 0600, as raw
// bytes or hex followed by a newline. The data goes to a temporary file in
// the same directory that is renamed into place, so path never holds a
// partial secret. The temporary file is registered with the resource
// manager while it exists and shredded on failure.
func WriteSecretFile(path string, s *secret.Secret, asHex bool) (err error) {
	tempFile, err := os.CreateTemp(filepath.Dir(path), ".secret-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %v", err)
	}
	tempPath := tempFile.Name()

	if rm := GetResourceManager(); rm != nil {
		rm.RegisterTempFile(tempPath, "secret file "+filepath.Base(path))
		defer rm.UnregisterTempFile(tempPath)
	}
	defer func() {
		if err != nil {
			tempFile.Close()
			_ = SecureDeleteFile(tempPath)
		}
	}()

	if err := tempFile.Chmod(0600); err != nil {
		return fmt.Errorf("failed to set secure permissions on temp file: %v", err)
	}

	err = s.ReadOnly(func(v secret.ByteView) error {
		if !asHex {
			_, err := tempFile.Write(v.Bytes())
			return err
		}
		buf := make([]byte, hex.EncodedLen(v.Len())+1)
		defer secret.Zero(buf)
		hex.Encode(buf, v.Bytes())
		buf[len(buf)-1] = '\n'
		_, err := tempFile.Write(buf)
		return err
	})
	if err != nil {
		return err
	}

	if err := tempFile.Sync(); err != nil {
		return fmt.Errorf("failed to sync temp file: %v", err)
	}
	if err := tempFile.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %v", err)
	}
	if err := os.Rename(tempPath, path); err != nil {
		return fmt.Errorf("failed to move secret file into place: %v", err)
	}
	return nil
}
