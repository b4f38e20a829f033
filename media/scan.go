// Package media finds the ornament photos and videos on disk, serves them
// together with the music and gesture stream, and tracks the full-size
// media overlay.
package media

import (
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
)

var (
	ImageExtensions = []string{".jpg", ".jpeg", ".png", ".gif", ".webp"}
	VideoExtensions = []string{".mp4", ".webm", ".mov"}
)

const (
	OrnamentsPrefix = "/ornaments/"
	MusicPrefix     = "/music/"
	thumbsDir       = "thumbs"
	thumbSuffix     = "_thumb.jpg"
)

// ErrOutsideRoot is returned for URLs that do not resolve inside the media
// root.
var ErrOutsideRoot = errors.New("url outside media root")

// File is one listed ornament: the full media URL and the URL of its
// preview.
type File struct {
	Full  string `json:"full"`
	Thumb string `json:"thumb"`
}

func hasExt(name string, exts []string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, e := range exts {
		if ext == e {
			return true
		}
	}
	return false
}

// IsVideo reports whether a media URL or file name is a video.
func IsVideo(name string) bool { return hasExt(name, VideoExtensions) }

// IsImage reports whether a media URL or file name is a still image.
func IsImage(name string) bool { return hasExt(name, ImageExtensions) }

// Scan lists the supported media directly inside dir, sorted by URL. A
// missing dir is created and yields an empty list.
func Scan(dir string) ([]File, error) {
	entries, err := os.ReadDir(dir)
	if errors.Is(err, os.ErrNotExist) {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create ornaments dir: %w", err)
		}
		return []File{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan ornaments: %w", err)
	}

	thumbs := map[string]bool{}
	if tents, err := os.ReadDir(filepath.Join(dir, thumbsDir)); err == nil {
		for _, e := range tents {
			thumbs[e.Name()] = true
		}
	}

	files := []File{}
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !(IsImage(name) || IsVideo(name)) {
			continue
		}
		full := OrnamentsPrefix + name
		f := File{Full: full, Thumb: full}
		if IsImage(name) {
			thumb := strings.TrimSuffix(name, filepath.Ext(name)) + thumbSuffix
			if thumbs[thumb] {
				f.Thumb = OrnamentsPrefix + thumbsDir + "/" + thumb
			}
		}
		files = append(files, f)
	}
	sort.Slice(files, func(i, j int) bool { return files[i].Full < files[j].Full })
	return files, nil
}

// URLs returns the full URL of every file, videos included.
func URLs(files []File) []string {
	out := make([]string, 0, len(files))
	for _, f := range files {
		out = append(out, f.Full)
	}
	return out
}

// Library is a media root holding ornaments/ and music/.
type Library struct {
	Root string
}

// OrnamentsDir is where ornament media live.
func (l Library) OrnamentsDir() string { return filepath.Join(l.Root, "ornaments") }

// MusicDir is where the background tracks live.
func (l Library) MusicDir() string { return filepath.Join(l.Root, "music") }

// Scan lists the library's ornaments.
func (l Library) Scan() ([]File, error) { return Scan(l.OrnamentsDir()) }

// Path maps a media URL such as /ornaments/1.jpg to a file under Root.
func (l Library) Path(url string) (string, error) {
	clean := path.Clean("/" + url)
	if !strings.HasPrefix(clean, OrnamentsPrefix) && !strings.HasPrefix(clean, MusicPrefix) {
		return "", fmt.Errorf("%q: %w", url, ErrOutsideRoot)
	}
	return filepath.Join(l.Root, filepath.FromSlash(clean)), nil
}
