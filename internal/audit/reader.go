// File: internal/audit/reader.go
package audit

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"
)

// Entry is one record of the audit log as written by the JSON handler.
type Entry struct {
	Time      time.Time `json:"time"`
	Level     string    `json:"level"`
	Msg       string    `json:"msg"`
	Event     string    `json:"event,omitempty"`
	Op        string    `json:"op,omitempty"`
	Variant   string    `json:"variant,omitempty"`
	Size      int       `json:"size,omitempty"`
	Mode      string    `json:"mode,omitempty"`
	Command   string    `json:"command,omitempty"`
	ErrorCode string    `json:"error_code,omitempty"`
	Error     string    `json:"error_message,omitempty"`
}

// Failed reports whether the entry records an error.
func (e Entry) Failed() bool {
	return e.ErrorCode != "" || e.Level == "WARN" || e.Level == "ERROR"
}

// Summary renders the entry on one line.
func (e Entry) Summary() string {
	var parts []string
	switch {
	case e.Event != "":
		parts = append(parts, e.Event)
		if e.Mode != "" {
			parts = append(parts, e.Mode)
		}
		parts = append(parts, e.Variant, fmt.Sprintf("%dB", e.Size))
		if e.Op != "" {
			parts = append(parts, "op="+e.Op)
		}
	case e.Command != "":
		parts = append(parts, e.Msg, e.Command)
	default:
		parts = append(parts, e.Msg)
	}
	if e.ErrorCode != "" {
		parts = append(parts, e.ErrorCode)
	}
	return strings.Join(parts, " ")
}

// ReadEntries decodes one entry per line. Lines that are not audit records
// are skipped and counted.
func ReadEntries(r io.Reader) (entries []Entry, skipped int, err error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 1024*1024)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		var e Entry
		if err := json.Unmarshal([]byte(line), &e); err != nil || e.Msg == "" {
			skipped++
			continue
		}
		entries = append(entries, e)
	}
	if err := sc.Err(); err != nil {
		return nil, skipped, err
	}
	return entries, skipped, nil
}

// ReadFile reads the audit log at path, or DefaultPath when path is empty.
func ReadFile(path string) ([]Entry, int, error) {
	if path == "" {
		path = DefaultPath
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, err
	}
	defer f.Close()
	return ReadEntries(f)
}
