package index

import (
	"testing"

	"github.com/edukit/lessond/internal/manifest"
	"github.com/edukit/lessond/internal/model"
)

func testManifest(t *testing.T) *manifest.Manifest {
	t.Helper()
	return &manifest.Manifest{
		Artifacts: []model.ArtifactRecord{
			{ID: "ad-1", LessonID: "les-1", Type: model.TypeASCIIDiagram, Subject: "Physics", Difficulty: model.DifficultyEasy, Path: "a.txt"},
			{ID: "ad-2", LessonID: "les-1", Type: model.TypeASCIIDiagram, Subject: "Physics", Difficulty: model.DifficultyHard, Path: "b.txt"},
			{ID: "tt-1", LessonID: "les-2", Type: model.TypeTruthTable, Subject: "Logic", Difficulty: model.DifficultyEasy, Path: "c.html"},
		},
	}
}

func TestEveryRecordFindable(t *testing.T) {
	m := testManifest(t)
	idx := Build(m)

	for _, rec := range m.Artifacts {
		got, ok := idx.ByID(rec.ID)
		if !ok {
			t.Fatalf("ByID(%q) not found", rec.ID)
		}
		if got.ID != rec.ID || got.Path != rec.Path {
			t.Errorf("ByID(%q) = %+v, want %+v", rec.ID, got, rec)
		}

		// Each record appears exactly once under its lesson.
		seen := 0
		for _, lr := range idx.ByLessonID(rec.LessonID) {
			if lr.ID == rec.ID {
				seen++
			}
		}
		if seen != 1 {
			t.Errorf("record %q appears %d times in ByLessonID(%q), want 1", rec.ID, seen, rec.LessonID)
		}
	}
}

func TestByLessonIDPreservesManifestOrder(t *testing.T) {
	idx := Build(testManifest(t))
	recs := idx.ByLessonID("les-1")
	if len(recs) != 2 {
		t.Fatalf("expected 2 records for les-1, got %d", len(recs))
	}
	if recs[0].ID != "ad-1" || recs[1].ID != "ad-2" {
		t.Errorf("order not preserved: %q, %q", recs[0].ID, recs[1].ID)
	}
}

func TestByLessonIDUnknownLesson(t *testing.T) {
	idx := Build(testManifest(t))
	if recs := idx.ByLessonID("no-such-lesson"); len(recs) != 0 {
		t.Errorf("expected no records, got %d", len(recs))
	}
}

func TestByType(t *testing.T) {
	idx := Build(testManifest(t))
	if got := len(idx.ByType(model.TypeASCIIDiagram)); got != 2 {
		t.Errorf("expected 2 ascii diagrams, got %d", got)
	}
	if got := len(idx.ByType(model.TypeFunctionGraph)); got != 0 {
		t.Errorf("expected 0 graphs, got %d", got)
	}
}

func TestBySubjectAndDifficultyCaseInsensitive(t *testing.T) {
	idx := Build(testManifest(t))
	recs := idx.BySubjectAndDifficulty("PHYSICS", model.DifficultyEasy)
	if len(recs) != 1 || recs[0].ID != "ad-1" {
		t.Errorf("expected [ad-1], got %+v", recs)
	}
}
