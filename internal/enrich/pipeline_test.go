package enrich

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/edukit/lessond/internal/content"
	"github.com/edukit/lessond/internal/manifest"
	"github.com/edukit/lessond/internal/model"
)

const testDiagramManifest = `{
	"metadata": {"total_count": 3, "generated_at": "2026-01-15T10:00:00Z", "phase": 1},
	"ascii_diagrams": [
		{"id": "ad-1", "lesson_id": "les-1", "type": "ascii_diagram", "subject": "Physics", "title": "Lever", "path": "files/lever.txt"},
		{"id": "ad-missing", "lesson_id": "les-1", "type": "ascii_diagram", "subject": "Physics", "title": "Gone", "path": "files/gone.txt"}
	],
	"truth_tables": [
		{"id": "tt-1", "lesson_id": "les-1", "type": "truth_table", "subject": "Logic", "title": "AND", "path": "files/and.html"}
	]
}`

const testGraphManifest = `{
	"metadata": {"total_count": 1, "generated_at": "2026-01-16T10:00:00Z", "phase": 2},
	"graphs": [
		{"id": "gr-1", "lesson_id": "les-1", "type": "function_graph", "subject": "Mathematics", "title": "Parabola", "path": "files/parabola.svg"}
	]
}`

const testPhase3Manifest = `{
	"metadata": {"total_count": 2, "generated_at": "2026-01-17T10:00:00Z", "phase": 3},
	"diagrams": [
		{"id": "vn-1", "lesson_id": "les-1", "type": "venn_2", "subject": "Mathematics", "title": "Sets", "path": "files/venn.svg"},
		{"id": "xx-1", "lesson_id": "les-1", "type": "mystery_widget", "subject": "Mathematics", "title": "New", "path": "files/widget.svg"}
	]
}`

func newTestPipeline(t *testing.T) *Pipeline {
	t.Helper()
	root := t.TempDir()

	phases := manifest.ContentPhases()
	files := map[string]string{
		phases[0].File:       testDiagramManifest,
		phases[1].File:       testGraphManifest,
		phases[2].File:       testPhase3Manifest,
		"files/lever.txt":    "|---^---|",
		"files/and.html":     "<table>AND</table>",
		"files/parabola.svg": "<svg>y=x^2</svg>",
		"files/venn.svg":     "<svg>venn</svg>",
		"files/widget.svg":   "<svg>widget</svg>",
	}
	for name, body := range files {
		path := filepath.Join(root, name)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatalf("mkdir: %v", err)
		}
		if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	return New(manifest.NewStore(root), content.NewLoader(root))
}

func TestEnrichGroupsByCategory(t *testing.T) {
	p := newTestPipeline(t)
	lesson := model.Lesson{ID: "les-1", Title: "Levers", Subject: "Physics"}

	enriched, err := p.Enrich(lesson, "les-1")
	if err != nil {
		t.Fatalf("Enrich: %v", err)
	}
	assets := enriched.GeneratedAssets

	ascii, ok := assets[CategoryASCIIDiagram].([]model.ResolvedArtifact)
	if !ok || len(ascii) != 1 {
		t.Fatalf("expected 1 ascii diagram (missing file skipped), got %#v", assets[CategoryASCIIDiagram])
	}
	if ascii[0].Content != "|---^---|" || ascii[0].Format != model.FormatText {
		t.Errorf("unexpected ascii artifact: %+v", ascii[0])
	}

	tables, ok := assets[CategoryTruthTable].([]model.ResolvedArtifact)
	if !ok || len(tables) != 1 || tables[0].Format != model.FormatHTML {
		t.Errorf("unexpected truth tables: %#v", assets[CategoryTruthTable])
	}

	graphs, ok := assets[CategoryGraphs].([]model.ResolvedArtifact)
	if !ok || len(graphs) != 1 || graphs[0].Format != model.FormatSVG {
		t.Errorf("unexpected graphs: %#v", assets[CategoryGraphs])
	}

	phase3, ok := assets[CategoryPhase3].(map[string]any)
	if !ok {
		t.Fatalf("expected phase3 map, got %#v", assets[CategoryPhase3])
	}
	venn, ok := phase3[BucketVenn].([]model.ResolvedArtifact)
	if !ok || len(venn) != 1 || venn[0].ID != "vn-1" {
		t.Errorf("unexpected venn bucket: %#v", phase3[BucketVenn])
	}
	other, ok := phase3[BucketOther].([]model.ResolvedArtifact)
	if !ok || len(other) != 1 || other[0].ID != "xx-1" {
		t.Errorf("unknown artifact type must land in the other bucket: %#v", phase3[BucketOther])
	}
}

func TestEnrichIsIdempotent(t *testing.T) {
	p := newTestPipeline(t)
	lesson := model.Lesson{ID: "les-1"}

	once, err := p.Enrich(lesson, "les-1")
	if err != nil {
		t.Fatalf("first Enrich: %v", err)
	}
	twice, err := p.Enrich(once, "les-1")
	if err != nil {
		t.Fatalf("second Enrich: %v", err)
	}
	if !reflect.DeepEqual(once.GeneratedAssets, twice.GeneratedAssets) {
		t.Error("re-enrichment changed generated_assets")
	}
}

func TestEnrichDoesNotMutateCaller(t *testing.T) {
	p := newTestPipeline(t)
	lesson := model.Lesson{ID: "les-1"}

	if _, err := p.Enrich(lesson, "les-1"); err != nil {
		t.Fatalf("Enrich: %v", err)
	}
	if lesson.GeneratedAssets != nil {
		t.Error("caller's lesson was mutated")
	}
}

func TestEnrichNoMatchesYieldsEmptyAssets(t *testing.T) {
	p := newTestPipeline(t)
	enriched, err := p.Enrich(model.Lesson{ID: "les-none"}, "les-none")
	if err != nil {
		t.Fatalf("Enrich: %v", err)
	}
	if enriched.GeneratedAssets == nil {
		t.Fatal("generated_assets must be present, not nil")
	}
	if len(enriched.GeneratedAssets) != 0 {
		t.Errorf("expected empty assets, got %#v", enriched.GeneratedAssets)
	}
}

func TestArtifactsForLesson(t *testing.T) {
	p := newTestPipeline(t)
	recs, err := p.ArtifactsForLesson("les-1")
	if err != nil {
		t.Fatalf("ArtifactsForLesson: %v", err)
	}
	// All catalog records, including the one whose file is missing.
	if len(recs) != 6 {
		t.Fatalf("expected 6 records, got %d", len(recs))
	}
	// Ascending phase order: diagrams, graphs, phase3.
	if recs[0].ID != "ad-1" || recs[3].ID != "gr-1" || recs[4].ID != "vn-1" {
		t.Errorf("unexpected phase order: %v", []string{recs[0].ID, recs[3].ID, recs[4].ID})
	}
}

func TestArtifactContent(t *testing.T) {
	p := newTestPipeline(t)

	res, ok, err := p.ArtifactContent("gr-1")
	if err != nil || !ok {
		t.Fatalf("ArtifactContent(gr-1) = ok=%v err=%v", ok, err)
	}
	if res.Content != "<svg>y=x^2</svg>" {
		t.Errorf("unexpected content %q", res.Content)
	}

	if _, ok, err := p.ArtifactContent("no-such-id"); err != nil || ok {
		t.Errorf("expected not found, got ok=%v err=%v", ok, err)
	}
	if _, ok, err := p.ArtifactContent("ad-missing"); err != nil || ok {
		t.Errorf("missing file must resolve to not found, got ok=%v err=%v", ok, err)
	}
}
