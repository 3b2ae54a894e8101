// Package index provides phase-scoped lookup structures over a loaded
// manifest. An Index is built in a single pass and never modified after,
// so it is shared across request goroutines without locking.
package index

import (
	"strings"

	"github.com/edukit/lessond/internal/manifest"
	"github.com/edukit/lessond/internal/model"
)

type subjectDifficultyKey struct {
	subject    string
	difficulty string
}

// Index is a set of precomputed lookups for one phase's artifact records.
type Index struct {
	phase    manifest.Phase
	byID     map[string]model.ArtifactRecord
	byLesson map[string][]model.ArtifactRecord
	byType   map[model.ArtifactType][]model.ArtifactRecord
	bySubDif map[subjectDifficultyKey][]model.ArtifactRecord
}

// Build constructs the index from a manifest in one pass over its records.
// Manifests are immutable for the process lifetime, so there is no rebuild.
func Build(m *manifest.Manifest) *Index {
	idx := &Index{
		phase:    m.Phase,
		byID:     make(map[string]model.ArtifactRecord, len(m.Artifacts)),
		byLesson: make(map[string][]model.ArtifactRecord),
		byType:   make(map[model.ArtifactType][]model.ArtifactRecord),
		bySubDif: make(map[subjectDifficultyKey][]model.ArtifactRecord),
	}
	for _, rec := range m.Artifacts {
		idx.byID[rec.ID] = rec
		idx.byLesson[rec.LessonID] = append(idx.byLesson[rec.LessonID], rec)
		idx.byType[rec.Type] = append(idx.byType[rec.Type], rec)
		key := subjectDifficultyKey{
			subject:    strings.ToLower(rec.Subject),
			difficulty: strings.ToLower(string(rec.Difficulty)),
		}
		idx.bySubDif[key] = append(idx.bySubDif[key], rec)
	}
	return idx
}

// Phase returns the phase this index was built for.
func (idx *Index) Phase() manifest.Phase { return idx.phase }

// Len returns the number of indexed records.
func (idx *Index) Len() int { return len(idx.byID) }

// ByLessonID returns all records for a lesson, in manifest order. This is
// the hottest lookup: one call per lesson render.
func (idx *Index) ByLessonID(lessonID string) []model.ArtifactRecord {
	return idx.byLesson[lessonID]
}

// ByID returns the record with the given artifact id.
func (idx *Index) ByID(artifactID string) (model.ArtifactRecord, bool) {
	rec, ok := idx.byID[artifactID]
	return rec, ok
}

// ByType returns all records of the given artifact type, in manifest order.
func (idx *Index) ByType(t model.ArtifactType) []model.ArtifactRecord {
	return idx.byType[t]
}

// BySubjectAndDifficulty returns records matching both fields,
// case-insensitively, in manifest order.
func (idx *Index) BySubjectAndDifficulty(subject string, difficulty model.Difficulty) []model.ArtifactRecord {
	key := subjectDifficultyKey{
		subject:    strings.ToLower(subject),
		difficulty: strings.ToLower(string(difficulty)),
	}
	return idx.bySubDif[key]
}
