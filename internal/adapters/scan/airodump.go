package scan

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/lcalzada-xor/wguard/internal/core/domain"
	"github.com/lcalzada-xor/wguard/internal/core/ports"
)

// execCommandContext allows mocking in tests
var execCommandContext = exec.CommandContext

var macRegex = regexp.MustCompile(`^([0-9A-Fa-f]{2}:){5}[0-9A-Fa-f]{2}$`)

// AirodumpScanner implements ports.Scanner by driving airodump-ng with CSV
// output and parsing the capture file it leaves behind. Each scan works in
// its own temporary directory so concurrent runs never clobber each other's
// capture files.
type AirodumpScanner struct {
	// Channel pins the scan to one channel; 0 lets airodump-ng hop.
	Channel int
}

var _ ports.Scanner = (*AirodumpScanner)(nil)

// NewAirodumpScanner returns a scanner pinned to channel 6, matching the
// band most consumer deployments sit on.
func NewAirodumpScanner() *AirodumpScanner {
	return &AirodumpScanner{Channel: 6}
}

// Scan captures on iface for roughly d and returns one record per access
// point row in the CSV output. airodump-ng runs until killed, so the bounded
// context ending it is the normal exit path, not an error.
func (s *AirodumpScanner) Scan(ctx context.Context, iface string, d time.Duration) ([]domain.ScanRecord, error) {
	dir, err := os.MkdirTemp("", "wguard-scan-*")
	if err != nil {
		return nil, fmt.Errorf("scan workdir: %w", err)
	}
	defer os.RemoveAll(dir)

	prefix := filepath.Join(dir, "capture")
	args := []string{"-w", prefix, "--output-format", "csv"}
	if s.Channel > 0 {
		args = append(args, "-c", fmt.Sprint(s.Channel))
	}
	args = append(args, iface)

	runCtx, cancel := context.WithTimeout(ctx, d)
	defer cancel()

	log.Printf("[SCAN] running airodump-ng on %s for %s", iface, d)
	cmd := execCommandContext(runCtx, "airodump-ng", args...)
	if err := cmd.Run(); err != nil && runCtx.Err() == nil {
		return nil, fmt.Errorf("airodump-ng on %s: %w", iface, err)
	}
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	f, err := os.Open(prefix + "-01.csv")
	if err != nil {
		return nil, fmt.Errorf("open scan output: %w", err)
	}
	defer f.Close()

	return ParseAirodumpCSV(f)
}

// ParseAirodumpCSV extracts the access-point rows from airodump-ng CSV
// output. AP rows have at least 14 columns and start with a MAC address;
// everything else (headers, blank separators, the station section) is
// skipped. Malformed rows are dropped, never fatal.
func ParseAirodumpCSV(r io.Reader) ([]domain.ScanRecord, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true

	var records []domain.ScanRecord
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			// One mangled row (stray quote, truncated capture) is noise.
			continue
		}
		if len(row) < 14 {
			continue
		}
		bssid := strings.TrimSpace(row[0])
		if !macRegex.MatchString(bssid) {
			continue
		}
		records = append(records, domain.ScanRecord{
			BSSID:   bssid,
			Channel: strings.TrimSpace(row[3]),
			Privacy: strings.TrimSpace(row[5]),
			Cipher:  strings.TrimSpace(row[6]),
			Auth:    strings.TrimSpace(row[7]),
			ESSID:   strings.TrimSpace(row[13]),
		})
	}
	return records, nil
}
