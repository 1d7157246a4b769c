// Package gallery tracks rendered graph images in the storage directory
// and formats their embedded timestamps for display.
package gallery

import (
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// PointerFile names the latest-image pointer sidecar. It is the primary
// index for Latest; the directory scan is the recovery path for storage
// directories written before the pointer existed.
const PointerFile = "latest.txt"

// imagePattern matches rendered image files: graph_<millis>.<ext>.
var imagePattern = regexp.MustCompile(`(?i)^graph_(\d+)\.(png|jpg|jpeg|gif)$`)

// deletePattern matches anything reset should remove from storage.
var deletePattern = regexp.MustCompile(`(?i)\.(png|jpg|jpeg|gif)$`)

// Image describes the most recent rendered image.
type Image struct {
	URL        string `json:"imageUrl"`
	Path       string `json:"imagePath"`
	LastUpdate string `json:"lastUpdate"`
}

// Gallery reads and maintains the rendered-image index for one storage
// directory.
type Gallery struct {
	dir         string
	baseURL     string
	pointerPath string
}

// New returns a Gallery over dir. baseURL is the public base used to build
// absolute image URLs; trailing slashes are trimmed.
func New(dir, baseURL string) *Gallery {
	return &Gallery{
		dir:         dir,
		baseURL:     strings.TrimRight(baseURL, "/"),
		pointerPath: filepath.Join(dir, PointerFile),
	}
}

// Latest returns the most recently rendered image, or nil when none exists.
// The pointer sidecar wins when it names a file that is still on disk;
// otherwise the directory is scanned for the highest embedded timestamp.
func (g *Gallery) Latest() (*Image, error) {
	if name, ok := g.readPointer(); ok {
		return g.describe(name)
	}

	name, err := g.scan()
	if err != nil {
		return nil, err
	}
	if name == "" {
		return nil, nil
	}
	return g.describe(name)
}

// SetLatest records name as the most recent rendered image.
func (g *Gallery) SetLatest(name string) error {
	if err := os.WriteFile(g.pointerPath, []byte(name), 0o644); err != nil {
		return fmt.Errorf("failed to write latest pointer: %w", err)
	}
	return nil
}

// Clear deletes every image file in the storage directory along with the
// pointer sidecar. Individual delete failures do not stop the sweep.
func (g *Gallery) Clear() error {
	entries, err := os.ReadDir(g.dir)
	if err != nil {
		return fmt.Errorf("failed to read storage dir %q: %w", g.dir, err)
	}

	for _, e := range entries {
		if e.IsDir() || !deletePattern.MatchString(e.Name()) {
			continue
		}
		_ = os.Remove(filepath.Join(g.dir, e.Name()))
	}

	if err := os.Remove(g.pointerPath); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove latest pointer: %w", err)
	}
	return nil
}

// FileName builds the canonical image file name for a render at t.
func FileName(t time.Time) string {
	return fmt.Sprintf("graph_%d.png", t.UnixMilli())
}

func (g *Gallery) readPointer() (string, bool) {
	b, err := os.ReadFile(g.pointerPath)
	if err != nil {
		return "", false
	}
	name := strings.TrimSpace(string(b))
	if name == "" || !imagePattern.MatchString(name) {
		return "", false
	}
	if _, err := os.Stat(filepath.Join(g.dir, name)); err != nil {
		return "", false
	}
	return name, true
}

func (g *Gallery) scan() (string, error) {
	entries, err := os.ReadDir(g.dir)
	if err != nil {
		return "", fmt.Errorf("failed to read storage dir %q: %w", g.dir, err)
	}

	var (
		best   string
		bestTS int64 = -1
	)
	for _, e := range entries {
		m := imagePattern.FindStringSubmatch(e.Name())
		if m == nil {
			continue
		}
		ts, err := strconv.ParseInt(m[1], 10, 64)
		if err != nil {
			continue
		}
		if ts > bestTS {
			bestTS = ts
			best = e.Name()
		}
	}
	return best, nil
}

func (g *Gallery) describe(name string) (*Image, error) {
	m := imagePattern.FindStringSubmatch(name)
	if m == nil {
		return nil, fmt.Errorf("image name %q does not carry a timestamp", name)
	}
	ts, err := strconv.ParseInt(m[1], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("failed to parse timestamp in %q: %w", name, err)
	}

	return &Image{
		URL:        g.baseURL + "/storage/" + name,
		Path:       path.Join("/storage", name),
		LastUpdate: FormatWIB(ts),
	}, nil
}

// Indonesian day and month names used by the display label.
var (
	wibDays = [...]string{
		"Minggu", "Senin", "Selasa", "Rabu", "Kamis", "Jumat", "Sabtu",
	}
	wibMonths = [...]string{
		"Januari", "Februari", "Maret", "April", "Mei", "Juni",
		"Juli", "Agustus", "September", "Oktober", "November", "Desember",
	}
)

// FormatWIB renders a Unix millisecond timestamp as the service's
// human-readable WIB label, e.g. "Senin, 2 September 2024 15:04 WIB".
//
// The conversion deliberately reproduces the historical behavior consumers
// depend on: calendar fields come from the UTC time and 7 is added to the
// hour with no day rollover, so an instant late in the UTC day can yield an
// hour of 24 or more while keeping the UTC date and weekday.
func FormatWIB(ms int64) string {
	t := time.UnixMilli(ms).UTC()

	day := wibDays[int(t.Weekday())]
	month := wibMonths[int(t.Month())-1]
	hours := t.Hour() + 7

	return fmt.Sprintf("%s, %d %s %d %02d:%02d WIB",
		day, t.Day(), month, t.Year(), hours, t.Minute())
}
