// Package assets resolves static file names to their fingerprinted
// versions when a build manifest is present.
package assets

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

const manifestFile = "manifest.json"

// Manifest maps paths relative to the static directory to hashed names.
type Manifest struct {
	mu        sync.RWMutex
	assets    map[string]string
	staticDir string
}

func NewManifest(staticDir string) *Manifest {
	return &Manifest{
		assets:    make(map[string]string),
		staticDir: staticDir,
	}
}

// Load reads <staticDir>/dist/manifest.json. A missing manifest leaves every
// path unhashed.
func (m *Manifest) Load() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	path := filepath.Join(m.staticDir, "dist", manifestFile)
	// #nosec G304 -- path is built from configuration, not user input
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			m.assets = make(map[string]string)
			return nil
		}
		return fmt.Errorf("reading asset manifest: %w", err)
	}

	assets := make(map[string]string)
	if err := json.Unmarshal(data, &assets); err != nil {
		return fmt.Errorf("parsing asset manifest: %w", err)
	}
	m.assets = assets
	return nil
}

// URL returns the public URL for a static file. A nil Manifest returns the
// unhashed path.
func (m *Manifest) URL(path string) string {
	path = strings.TrimPrefix(path, "/")
	if m == nil {
		return "/static/" + path
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	if hashed, ok := m.assets[path]; ok {
		return "/static/" + hashed
	}
	return "/static/" + path
}

func (m *Manifest) CSS() string {
	return m.URL("css/app.css")
}

func (m *Manifest) AppJS() string {
	return m.URL("js/app.js")
}
