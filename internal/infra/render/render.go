// Package render produces the human-readable certificate artifact that gets
// pinned to content-addressed storage.
package render

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"wipecert/internal/domain"
)

const wipeTimestampLayout = "20060102T150405Z"

type Renderer struct {
	dir   string
	clock func() time.Time
}

func New(dir string) *Renderer {
	if dir == "" {
		dir = os.TempDir()
	}
	return &Renderer{dir: dir, clock: time.Now}
}

func (r *Renderer) WithClock(clock func() time.Time) *Renderer {
	if r == nil {
		return nil
	}
	r.clock = clock
	return r
}

// Render writes the certificate artifact for one wipe record and returns its
// path. The caller owns the file and removes it once pinning is done.
func (r *Renderer) Render(record domain.WipeRecord, logHash string) (string, error) {
	if err := os.MkdirAll(r.dir, 0o750); err != nil {
		return "", fmt.Errorf("artifact dir: %w", err)
	}
	path := filepath.Join(r.dir, "certificate_"+record.CertificateID+".txt")

	var b strings.Builder
	b.WriteString("CERTIFICATE OF DATA SANITIZATION\n")
	b.WriteString("================================\n\n")

	section(&b, "Device Information", [][2]string{
		{"Device Name", orNA(record.DeviceDetails.Name)},
		{"Device Path", orNA(record.DeviceDetails.Path)},
		{"Storage Size", orNA(record.DeviceDetails.Size)},
		{"Device Model", orNA(record.DeviceDetails.Model)},
		{"Serial Number", orNA(record.DeviceDetails.Serial)},
		{"Mount Point", orNone(record.DeviceDetails.Mountpoint)},
	})
	section(&b, "Wipe Operation Details", [][2]string{
		{"Wipe Method", titleCase(orNA(record.WipeMode))},
		{"Tool Version", orNA(record.ToolVersion)},
		{"Timestamp (UTC)", formatTimestamp(record.TimestampUTC)},
		{"Status", orNA(record.Status)},
		{"Operation Success", yesNo(record.Success)},
	})
	section(&b, "System & Environment", [][2]string{
		{"Hostname", orNA(record.SystemInfo.Hostname)},
		{"Operating System", orNA(record.SystemInfo.OS)},
	})
	section(&b, "Verification & Integrity", [][2]string{
		{"Certificate ID", record.CertificateID},
		{"Log File Hash (SHA-256)", orNA(logHash)},
		{"Certificate Generated", r.clock().UTC().Format("2006-01-02 15:04:05 UTC")},
	})

	if err := os.WriteFile(path, []byte(b.String()), 0o600); err != nil {
		return "", fmt.Errorf("write artifact: %w", err)
	}
	return path, nil
}

func section(b *strings.Builder, title string, rows [][2]string) {
	b.WriteString(title + "\n")
	b.WriteString(strings.Repeat("-", len(title)) + "\n")
	for _, row := range rows {
		fmt.Fprintf(b, "%-26s %s\n", row[0]+":", row[1])
	}
	b.WriteString("\n")
}

func formatTimestamp(raw string) string {
	parsed, err := time.Parse(wipeTimestampLayout, raw)
	if err != nil {
		return orNA(raw)
	}
	return parsed.Format("2006-01-02 15:04:05 UTC")
}

func titleCase(s string) string {
	if s == "" || s == "N/A" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}

func orNone(s string) string {
	if s == "" {
		return "None"
	}
	return s
}

func yesNo(v bool) string {
	if v {
		return "Yes"
	}
	return "No"
}
