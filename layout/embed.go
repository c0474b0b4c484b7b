package layout

import (
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

//go:embed shows/*.tengo
var ShowsFS embed.FS

// LoadShow reads a camera show script, preferring an on-disk copy so
// edited shows take effect without a rebuild.
func LoadShow(name string) ([]byte, error) {
	clean := cleanShowPath(name)
	if data, err := os.ReadFile(diskLayoutPath(clean)); err == nil {
		return data, nil
	}
	return ShowsFS.ReadFile(clean)
}

//go:embed *.yaml
var LayoutFS embed.FS

// Load reads an arena layout file, preferring an on-disk copy over the
// embedded default.
func Load(name string) ([]byte, error) {
	clean := cleanLayoutPath(name)
	if data, err := os.ReadFile(diskLayoutPath(clean)); err == nil {
		return data, nil
	}
	return LayoutFS.ReadFile(clean)
}

// ModTime reports the on-disk modification time of a layout file, if a
// disk copy exists.
func ModTime(name string) (time.Time, bool) {
	clean := cleanLayoutPath(name)
	info, err := os.Stat(diskLayoutPath(clean))
	if err != nil {
		return time.Time{}, false
	}
	return info.ModTime(), true
}

func cleanLayoutPath(path string) string {
	if path == "" {
		return ""
	}
	s := filepath.ToSlash(path)
	if strings.HasPrefix(s, "layout/") {
		return strings.TrimPrefix(s, "layout/")
	}
	return s
}

func cleanShowPath(path string) string {
	if path == "" {
		return ""
	}

	s := filepath.ToSlash(path)

	if after, ok := strings.CutPrefix(s, "layout/shows/"); ok {
		s = after
	}

	if after, ok := strings.CutPrefix(s, "layout/"); ok {
		s = after
	}

	if after, ok := strings.CutPrefix(s, "shows/"); ok {
		s = after
	}

	return fmt.Sprintf("shows/%s", s)
}

func diskLayoutPath(clean string) string {
	return filepath.Join("layout", filepath.FromSlash(clean))
}
