package manifest

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Manifest is the user's list of repository URLs (repos.txt), one per line.
type Manifest struct {
	urls []string
}

// New returns an empty Manifest.
func New() *Manifest {
	return &Manifest{}
}

// Load reads a repos.txt file from the given path.
// If the file does not exist it returns an empty manifest (no error).
// Blank lines are skipped.
func Load(path string) (*Manifest, error) {
	m := New()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return m, nil
		}
		return nil, fmt.Errorf("reading repository list: %w", err)
	}

	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		m.urls = append(m.urls, line)
	}

	return m, nil
}

// Exists reports whether a repository list has been written at path.
func Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// Save writes the manifest back to the given path.
func (m *Manifest) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	var b strings.Builder
	for _, u := range m.urls {
		b.WriteString(u)
		b.WriteByte('\n')
	}

	if err := os.WriteFile(path, []byte(b.String()), 0644); err != nil {
		return fmt.Errorf("writing repository list: %w", err)
	}

	return nil
}

// Add appends a URL. Returns false if the URL is already listed.
func (m *Manifest) Add(url string) bool {
	if m.Contains(url) {
		return false
	}
	m.urls = append(m.urls, url)
	return true
}

// Remove deletes every occurrence of a URL.
// Returns true if the URL was listed, false otherwise.
func (m *Manifest) Remove(url string) bool {
	kept := m.urls[:0]
	found := false
	for _, u := range m.urls {
		if u == url {
			found = true
			continue
		}
		kept = append(kept, u)
	}
	m.urls = kept
	return found
}

// Contains reports whether url is listed.
func (m *Manifest) Contains(url string) bool {
	for _, u := range m.urls {
		if u == url {
			return true
		}
	}
	return false
}

// URLs returns the listed repository URLs in file order.
func (m *Manifest) URLs() []string {
	out := make([]string, len(m.urls))
	copy(out, m.urls)
	return out
}
