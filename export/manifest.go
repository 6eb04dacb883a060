package export

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"sort"
	"time"
)

// ManifestName is the index file kept next to exported conversations.
const ManifestName = "manifest.json"

// Entry describes one exported conversation file.
type Entry struct {
	Channel    string    `json:"target"`
	Format     string    `json:"format"`
	Href       string    `json:"href"` // file name relative to the manifest
	Count      int       `json:"count"`
	LatestID   int64     `json:"latest_id"`
	ExportedAt time.Time `json:"exported_at"`
}

// Manifest holds the list of exported files in a directory.
type Manifest struct {
	Entries []Entry `json:"entries"`
}

// ReadManifest reads a manifest from disk. Returns an empty Manifest if the
// file does not exist.
func ReadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return &Manifest{}, nil
	}
	if err != nil {
		return nil, err
	}

	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	return &m, nil
}

// Upsert adds or replaces an entry matched by channel and format. Entries are
// kept sorted by channel, then format.
func (m *Manifest) Upsert(entry Entry) {
	for i, e := range m.Entries {
		if e.Channel == entry.Channel && e.Format == entry.Format {
			m.Entries[i] = entry
			m.sort()
			return
		}
	}
	m.Entries = append(m.Entries, entry)
	m.sort()
}

func (m *Manifest) sort() {
	sort.Slice(m.Entries, func(i, j int) bool {
		if m.Entries[i].Channel != m.Entries[j].Channel {
			return m.Entries[i].Channel < m.Entries[j].Channel
		}
		return m.Entries[i].Format < m.Entries[j].Format
	})
}

// WriteFile writes the manifest to disk atomically.
func (m *Manifest) WriteFile(path string) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	return writeAtomic(path, func(w io.Writer) error {
		_, err := io.Copy(w, bytes.NewReader(data))
		return err
	})
}

// writeAtomic writes through a temporary file in the target directory and
// renames it into place, so readers never observe a partial file.
func writeAtomic(path string, write func(io.Writer) error) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+"-*")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()

	if err := write(tmp); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return err
	}

	return os.Rename(tmpPath, path)
}
