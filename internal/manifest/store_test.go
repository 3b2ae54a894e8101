package manifest

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/edukit/lessond/internal/model"
)

func writeFile(t *testing.T, root, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(root, name), []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
}

func diagramPhase(t *testing.T) Phase {
	t.Helper()
	return Phases()[0]
}

const diagramManifest = `{
	"metadata": {"total_count": 3, "generated_at": "2026-01-15T10:00:00Z", "phase": 1},
	"ascii_diagrams": [
		{"id": "ad-001", "lesson_id": "les-1", "type": "ascii_diagram", "subject": "Physics", "title": "Lever", "path": "diagrams/lever.txt"},
		{"id": "ad-002", "lesson_id": "les-2", "type": "ascii_diagram", "subject": "Physics", "title": "Pulley", "path": "diagrams/pulley.txt"}
	],
	"truth_tables": [
		{"id": "tt-001", "lesson_id": "les-1", "type": "truth_table", "subject": "Logic", "title": "AND", "path": "tables/and.html"}
	]
}`

func TestLoadParsesAllListKeys(t *testing.T) {
	root := t.TempDir()
	phase := diagramPhase(t)
	writeFile(t, root, phase.File, diagramManifest)

	m, err := NewStore(root).Load(phase)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(m.Artifacts) != 3 {
		t.Fatalf("expected 3 artifacts, got %d", len(m.Artifacts))
	}
	if m.Meta.TotalCount != 3 {
		t.Errorf("expected total_count 3, got %d", m.Meta.TotalCount)
	}
	if m.Meta.GeneratedAt.IsZero() {
		t.Error("expected generated_at to be parsed")
	}
	if m.Artifacts[2].Type != model.TypeTruthTable {
		t.Errorf("expected truth_table third, got %q", m.Artifacts[2].Type)
	}
}

func TestLoadMissingFileYieldsEmptyManifest(t *testing.T) {
	phase := diagramPhase(t)
	m, err := NewStore(t.TempDir()).Load(phase)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(m.Artifacts) != 0 || len(m.Questions) != 0 {
		t.Errorf("expected empty manifest, got %d artifacts, %d questions", len(m.Artifacts), len(m.Questions))
	}
	if m.Phase.Name != phase.Name {
		t.Errorf("expected phase %q, got %q", phase.Name, m.Phase.Name)
	}
}

func TestLoadCorruptJSON(t *testing.T) {
	root := t.TempDir()
	phase := diagramPhase(t)
	writeFile(t, root, phase.File, `{"metadata": {`)

	_, err := NewStore(root).Load(phase)
	var ce *CorruptError
	if !errors.As(err, &ce) {
		t.Fatalf("expected CorruptError, got %v", err)
	}
}

func TestLoadSchemaViolation(t *testing.T) {
	root := t.TempDir()
	phase := diagramPhase(t)
	// Artifact missing required "path".
	writeFile(t, root, phase.File, `{
		"metadata": {"total_count": 1, "generated_at": "2026-01-15T10:00:00Z"},
		"ascii_diagrams": [{"id": "ad-001", "lesson_id": "les-1", "type": "ascii_diagram", "subject": "Physics", "title": "Lever"}]
	}`)

	_, err := NewStore(root).Load(phase)
	var ce *CorruptError
	if !errors.As(err, &ce) {
		t.Fatalf("expected CorruptError, got %v", err)
	}
}

func TestLoadCachesFirstRead(t *testing.T) {
	root := t.TempDir()
	phase := diagramPhase(t)
	writeFile(t, root, phase.File, diagramManifest)

	s := NewStore(root)
	first, err := s.Load(phase)
	if err != nil {
		t.Fatalf("first Load: %v", err)
	}

	// Corrupt the file on disk; the cached manifest must still be served.
	writeFile(t, root, phase.File, `not json`)
	second, err := s.Load(phase)
	if err != nil {
		t.Fatalf("second Load: %v", err)
	}
	if second != first {
		t.Error("expected cached manifest pointer on second load")
	}
}

const questionBank = `{
	"metadata": {"total_count": 5, "generated_at": "2026-01-20T08:30:00Z", "phase": 4},
	"questions": [
		{"id": "q-mc", "subject": "Mathematics", "topic": "Algebra", "grade": "7", "question_type": "multiple_choice",
		 "difficulty": "easy", "points": 5, "estimated_time": 60, "question": "2+2?",
		 "options": ["3", "4", "5"], "correct_answer": 1, "explanation": "Basic addition."},
		{"id": "q-tf", "subject": "Physics", "question_type": "true_false", "difficulty": "easy", "points": 2,
		 "question": "Light is faster than sound.", "correct_answer": true, "explanation": "It is."},
		{"id": "q-fb", "subject": "Geography", "question_type": "fill_blank", "difficulty": "medium", "points": 3,
		 "question": "Capital of France?", "correct_answer": "paris", "alternative_answers": ["city of paris"]},
		{"id": "q-match", "subject": "Chemistry", "question_type": "matching", "difficulty": "hard", "points": 8,
		 "question": "Match symbols.", "left_items": ["H", "O"], "right_items": ["Hydrogen", "Oxygen"],
		 "correct_pairs": {"0": 0, "1": 1}},
		{"id": "q-sa", "subject": "History", "question_type": "short_answer", "difficulty": "hard", "points": 10,
		 "question": "Explain the causes.", "sample_answer": "Several factors...", "marking_criteria": ["names two causes"]}
	]
}`

func TestLoadQuestionBank(t *testing.T) {
	root := t.TempDir()
	phase := QuestionPhase()
	writeFile(t, root, phase.File, questionBank)

	m, err := NewStore(root).Load(phase)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(m.Questions) != 5 {
		t.Fatalf("expected 5 questions, got %d", len(m.Questions))
	}

	mc := m.Questions[0]
	if mc.MultipleChoice == nil || mc.MultipleChoice.CorrectAnswer != 1 {
		t.Errorf("multiple_choice payload not decoded: %+v", mc.MultipleChoice)
	}
	tf := m.Questions[1]
	if tf.TrueFalse == nil || !tf.TrueFalse.CorrectAnswer {
		t.Errorf("true_false payload not decoded: %+v", tf.TrueFalse)
	}
	fb := m.Questions[2]
	if fb.FillBlank == nil || fb.FillBlank.CorrectAnswer != "paris" {
		t.Errorf("fill_blank payload not decoded: %+v", fb.FillBlank)
	}
	match := m.Questions[3]
	if match.Matching == nil || match.Matching.CorrectPairs[1] != 1 {
		t.Errorf("matching payload not decoded: %+v", match.Matching)
	}
	sa := m.Questions[4]
	if sa.ShortAnswer == nil || len(sa.ShortAnswer.MarkingCriteria) != 1 {
		t.Errorf("short_answer payload not decoded: %+v", sa.ShortAnswer)
	}
}

func TestLoadQuestionUnknownTypeKeepsRecord(t *testing.T) {
	root := t.TempDir()
	phase := QuestionPhase()
	writeFile(t, root, phase.File, `{
		"metadata": {"total_count": 1, "generated_at": "2026-01-20T08:30:00Z"},
		"questions": [{"id": "q-x", "subject": "Art", "question_type": "essay", "difficulty": "hard", "points": 4, "question": "Discuss."}]
	}`)

	m, err := NewStore(root).Load(phase)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(m.Questions) != 1 {
		t.Fatalf("expected 1 question, got %d", len(m.Questions))
	}
	q := m.Questions[0]
	if q.MultipleChoice != nil || q.TrueFalse != nil || q.FillBlank != nil || q.Matching != nil || q.ShortAnswer != nil {
		t.Error("unknown type must have no payload")
	}
}

func TestLoadQuestionBadAnswerTypeIsCorrupt(t *testing.T) {
	root := t.TempDir()
	phase := QuestionPhase()
	writeFile(t, root, phase.File, `{
		"metadata": {"total_count": 1, "generated_at": "2026-01-20T08:30:00Z"},
		"questions": [{"id": "q-bad", "subject": "Math", "question_type": "multiple_choice", "difficulty": "easy",
		               "points": 5, "question": "2+2?", "options": ["4"], "correct_answer": "four"}]
	}`)

	_, err := NewStore(root).Load(phase)
	var ce *CorruptError
	if !errors.As(err, &ce) {
		t.Fatalf("expected CorruptError, got %v", err)
	}
}
