// Package content reads artifact files from disk and memoizes them for the
// process lifetime. Artifacts are small, bounded in count, and static, so
// entries are never evicted.
package content

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/edukit/lessond/internal/model"
)

// Loader resolves artifact paths under the assets root and caches loaded
// content by artifact id. Safe for concurrent use: concurrent misses on the
// same id may both read the file, but the cache converges on one value.
type Loader struct {
	root  string
	cache sync.Map // artifact id -> model.ResolvedArtifact

	reads atomic.Int64
}

// NewLoader creates a loader rooted at the assets directory.
func NewLoader(root string) *Loader {
	return &Loader{root: root}
}

// Load returns the content for a record. A missing or unreadable file is a
// soft failure: it returns ok=false and the caller decides whether to
// degrade (a lesson missing one diagram still renders).
func (l *Loader) Load(rec model.ArtifactRecord) (string, bool) {
	res, ok := l.Resolve(rec)
	if !ok {
		return "", false
	}
	return res.Content, true
}

// Resolve is Load plus the record and format tag bundled together.
func (l *Loader) Resolve(rec model.ArtifactRecord) (model.ResolvedArtifact, bool) {
	if v, ok := l.cache.Load(rec.ID); ok {
		return v.(model.ResolvedArtifact), true
	}

	rel := filepath.FromSlash(rec.Path)
	if !filepath.IsLocal(rel) {
		slog.Warn("artifact path escapes assets root, rejected",
			"artifact", rec.ID, "path", rec.Path)
		return model.ResolvedArtifact{}, false
	}

	data, err := os.ReadFile(filepath.Join(l.root, rel))
	l.reads.Add(1)
	if err != nil {
		slog.Warn("artifact file unavailable",
			"artifact", rec.ID, "path", rec.Path, "error", err)
		return model.ResolvedArtifact{}, false
	}

	res := model.ResolvedArtifact{
		ArtifactRecord: rec,
		Content:        string(data),
		Format:         FormatFor(rec.Path),
	}
	v, _ := l.cache.LoadOrStore(rec.ID, res)
	return v.(model.ResolvedArtifact), true
}

// FormatFor infers the content format tag from a file extension.
func FormatFor(path string) model.Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".html", ".htm":
		return model.FormatHTML
	case ".svg":
		return model.FormatSVG
	default:
		return model.FormatText
	}
}
