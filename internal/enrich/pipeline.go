// Package enrich merges generated artifacts onto lesson records. For each
// content phase in ascending order it looks up the lesson's records, loads
// their content, groups them by category, and writes the groups under the
// lesson's generated_assets field. The merge recomputes the whole subtree,
// so enrichment is idempotent.
package enrich

import (
	"log/slog"
	"sync"

	"github.com/edukit/lessond/internal/content"
	"github.com/edukit/lessond/internal/index"
	"github.com/edukit/lessond/internal/manifest"
	"github.com/edukit/lessond/internal/model"
)

// Category names under generated_assets.
const (
	CategoryASCIIDiagram = "ascii_diagram"
	CategoryTruthTable   = "truth_table"
	CategoryGraphs       = "graphs"
	CategoryPhase3       = "phase3_diagrams"
)

// Phase-3 bucket names inside CategoryPhase3.
const (
	BucketVenn      = "venn_diagrams"
	BucketFlowchart = "flowcharts"
	BucketCircuit   = "circuit_diagrams"
	BucketChemistry = "chemistry_diagrams"
	BucketOther     = "other"
)

// categoryOrder fixes the order category keys are written in, so the merge
// is deterministic regardless of manifest key order.
var categoryOrder = []string{CategoryASCIIDiagram, CategoryTruthTable, CategoryGraphs}

var bucketOrder = []string{BucketVenn, BucketFlowchart, BucketCircuit, BucketChemistry, BucketOther}

// categoryFor maps an artifact type to its top-level category key. Unknown
// types from newer pipelines fall into the phase3 "other" bucket instead of
// being dropped.
func categoryFor(t model.ArtifactType) (category, bucket string) {
	switch t {
	case model.TypeASCIIDiagram:
		return CategoryASCIIDiagram, ""
	case model.TypeTruthTable:
		return CategoryTruthTable, ""
	case model.TypeFunctionGraph:
		return CategoryGraphs, ""
	case model.TypeVenn2, model.TypeVenn3:
		return CategoryPhase3, BucketVenn
	case model.TypeFlowchart:
		return CategoryPhase3, BucketFlowchart
	case model.TypeCircuitElectrical:
		return CategoryPhase3, BucketCircuit
	case model.TypeChemistryReaction:
		return CategoryPhase3, BucketChemistry
	default:
		return CategoryPhase3, BucketOther
	}
}

// Pipeline resolves artifacts for lessons across all content phases.
// Question records are not merged here: questions are fetched by
// subject/topic through the question repository, not by lesson.
type Pipeline struct {
	store  *manifest.Store
	loader *content.Loader

	indexes sync.Map // phase name -> *index.Index
}

// New creates a pipeline over the given manifest store and content loader.
func New(store *manifest.Store, loader *content.Loader) *Pipeline {
	return &Pipeline{store: store, loader: loader}
}

func (p *Pipeline) indexFor(phase manifest.Phase) (*index.Index, error) {
	if v, ok := p.indexes.Load(phase.Name); ok {
		return v.(*index.Index), nil
	}
	m, err := p.store.Load(phase)
	if err != nil {
		return nil, err
	}
	v, _ := p.indexes.LoadOrStore(phase.Name, index.Build(m))
	return v.(*index.Index), nil
}

// ArtifactsForLesson returns the catalog records for a lesson across all
// content phases, in ascending phase order. Content is not loaded.
func (p *Pipeline) ArtifactsForLesson(lessonID string) ([]model.ArtifactRecord, error) {
	var out []model.ArtifactRecord
	for _, phase := range manifest.ContentPhases() {
		idx, err := p.indexFor(phase)
		if err != nil {
			return nil, err
		}
		out = append(out, idx.ByLessonID(lessonID)...)
	}
	return out, nil
}

// ArtifactContent resolves a single artifact by id, searching phases in
// ascending order. found=false covers both an unknown id and a listed
// artifact whose file is missing on disk.
func (p *Pipeline) ArtifactContent(artifactID string) (model.ResolvedArtifact, bool, error) {
	for _, phase := range manifest.ContentPhases() {
		idx, err := p.indexFor(phase)
		if err != nil {
			return model.ResolvedArtifact{}, false, err
		}
		rec, ok := idx.ByID(artifactID)
		if !ok {
			continue
		}
		res, ok := p.loader.Resolve(rec)
		return res, ok, nil
	}
	return model.ResolvedArtifact{}, false, nil
}

// Enrich returns a copy of the lesson with generated_assets recomputed for
// the given lesson id. The caller's lesson value is never mutated. A lesson
// with no matching artifacts gets an empty, non-nil assets map.
func (p *Pipeline) Enrich(lesson model.Lesson, lessonID string) (model.Lesson, error) {
	grouped := make(map[string][]model.ResolvedArtifact)
	phase3 := make(map[string][]model.ResolvedArtifact)

	for _, phase := range manifest.ContentPhases() {
		idx, err := p.indexFor(phase)
		if err != nil {
			return lesson, err
		}
		for _, rec := range idx.ByLessonID(lessonID) {
			res, ok := p.loader.Resolve(rec)
			if !ok {
				// Soft failure: one missing diagram must not block the
				// lesson. Already logged by the loader.
				slog.Debug("skipping unloadable artifact", "artifact", rec.ID, "lesson", lessonID)
				continue
			}
			category, bucket := categoryFor(rec.Type)
			if category == CategoryPhase3 {
				phase3[bucket] = append(phase3[bucket], res)
			} else {
				grouped[category] = append(grouped[category], res)
			}
		}
	}

	assets := make(map[string]any)
	for _, key := range categoryOrder {
		if arts := grouped[key]; len(arts) > 0 {
			assets[key] = arts
		}
	}
	if len(phase3) > 0 {
		sub := make(map[string]any)
		for _, bucket := range bucketOrder {
			if arts := phase3[bucket]; len(arts) > 0 {
				sub[bucket] = arts
			}
		}
		assets[CategoryPhase3] = sub
	}

	enriched := lesson
	enriched.GeneratedAssets = assets
	return enriched, nil
}
