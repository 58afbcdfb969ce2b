// Package picker obtains a photo from the user, either by choosing an
// existing image file or by capturing one with a camera command.
package picker

import (
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// ErrNoCamera is returned when no capture command is configured or the
// configured binary cannot be found.
var ErrNoCamera = errors.New("no camera command available")

type Options struct {
	MediaType      string // only "photo" is supported
	SelectionLimit int
}

// PhotoOptions requests a single photo.
var PhotoOptions = Options{MediaType: "photo", SelectionLimit: 1}

type Asset struct {
	URI      string
	Width    int // 0 when unknown
	Height   int // 0 when unknown
	Type     string
	FileSize int64
}

type Result struct {
	Cancelled bool
	Assets    []Asset
}

// Cancelled is the result returned when the user backs out.
var Cancelled = Result{Cancelled: true}

var imageExts = map[string]string{
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".gif":  "image/gif",
	".bmp":  "image/bmp",
	".tif":  "image/tiff",
	".tiff": "image/tiff",
	".webp": "image/webp",
}

// Extensions lists the recognized image file extensions, sorted.
func Extensions() []string {
	exts := make([]string, 0, len(imageExts))
	for e := range imageExts {
		exts = append(exts, e)
	}
	sort.Strings(exts)
	return exts
}

func IsImage(path string) bool {
	_, ok := imageExts[strings.ToLower(filepath.Ext(path))]
	return ok
}

// Describe builds an Asset for the image at path. Natural dimensions come
// from the image header; an undecodable header leaves them at zero instead
// of failing, since the pipeline degrades display height in that case.
func Describe(path string) (Asset, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return Asset{}, err
	}
	st, err := os.Stat(abs)
	if err != nil {
		return Asset{}, err
	}
	if st.IsDir() {
		return Asset{}, fmt.Errorf("%s is a directory", abs)
	}
	a := Asset{
		URI:      FileURI(abs),
		Type:     imageExts[strings.ToLower(filepath.Ext(abs))],
		FileSize: st.Size(),
	}

	f, err := os.Open(abs)
	if err != nil {
		return Asset{}, err
	}
	defer f.Close()
	if cfg, format, err := image.DecodeConfig(f); err == nil {
		a.Width, a.Height = cfg.Width, cfg.Height
		if a.Type == "" {
			a.Type = "image/" + format
		}
	}
	return a, nil
}

// Single wraps one described file as a successful result.
func Single(path string) (Result, error) {
	a, err := Describe(path)
	if err != nil {
		return Result{}, err
	}
	return Result{Assets: []Asset{a}}, nil
}

func FileURI(abs string) string {
	p := filepath.ToSlash(abs)
	if !strings.HasPrefix(p, "/") {
		p = "/" + p // windows drive letter
	}
	u := url.URL{Scheme: "file", Path: p}
	return u.String()
}

// PathFromURI accepts file:// URIs and bare paths.
func PathFromURI(uri string) (string, error) {
	if !strings.Contains(uri, "://") {
		return uri, nil
	}
	u, err := url.Parse(uri)
	if err != nil {
		return "", fmt.Errorf("parse uri %q: %w", uri, err)
	}
	if u.Scheme != "file" {
		return "", fmt.Errorf("unsupported uri scheme %q", u.Scheme)
	}
	p := u.Path
	if len(p) > 2 && p[0] == '/' && p[2] == ':' {
		p = p[1:]
	}
	return filepath.FromSlash(p), nil
}
