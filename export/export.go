// Package export writes channel conversations to disk and keeps a manifest of
// what has been exported in each directory.
package export

import (
	"fmt"
	"io"
	"path/filepath"
	"regexp"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/sonnes/dakiya/core"
	"github.com/sonnes/dakiya/render"
)

var unsafeName = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// FileName returns the file an export of channel in format is written to.
// Characters that are unsafe in file names are replaced with "_", and a
// rewritten name gets a hash of the channel appended so that "a/b" and "a_b"
// land in different files.
func FileName(channel, format string) string {
	name := unsafeName.ReplaceAllString(channel, "_")
	if name == "" || name == "." || name == ".." {
		name = "_"
	}
	if name != channel {
		name = fmt.Sprintf("%s-%08x", name, uint32(xxhash.Sum64String(channel)))
	}
	return name + "." + format
}

// Exporter renders conversations into Dir.
type Exporter struct {
	Dir string
	Now func() time.Time
}

// New creates an Exporter writing into dir.
func New(dir string) *Exporter {
	return &Exporter{Dir: dir, Now: time.Now}
}

// Export renders c with r into Dir/<channel>.<format> and records it in the
// directory manifest. Both files are replaced atomically.
func (e *Exporter) Export(c *core.Conversation, format string, r render.Renderer) (Entry, error) {
	name := FileName(c.Channel, format)
	path := filepath.Join(e.Dir, name)

	err := writeAtomic(path, func(w io.Writer) error {
		return r.Render(w, c)
	})
	if err != nil {
		return Entry{}, fmt.Errorf("export %s: %w", c.Channel, err)
	}

	entry := Entry{
		Channel:    c.Channel,
		Format:     format,
		Href:       name,
		Count:      len(c.Messages),
		LatestID:   c.LatestID,
		ExportedAt: e.Now().UTC(),
	}

	manifestPath := filepath.Join(e.Dir, ManifestName)
	m, err := ReadManifest(manifestPath)
	if err != nil {
		return Entry{}, fmt.Errorf("read manifest: %w", err)
	}
	m.Upsert(entry)
	if err := m.WriteFile(manifestPath); err != nil {
		return Entry{}, fmt.Errorf("write manifest: %w", err)
	}
	return entry, nil
}
