package manifest

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/edukit/lessond/internal/model"
)

// CorruptError reports a manifest file that exists but cannot be used:
// unreadable, syntactically invalid, or failing schema validation. A
// corrupt manifest is a deployment defect and is never swallowed.
type CorruptError struct {
	Path string
	Err  error
}

func (e *CorruptError) Error() string {
	return fmt.Sprintf("manifest %s corrupt: %v", e.Path, e.Err)
}

func (e *CorruptError) Unwrap() error { return e.Err }

// Manifest is one parsed phase catalog. Immutable for the process lifetime.
type Manifest struct {
	Phase     Phase
	Meta      model.ManifestMeta
	Artifacts []model.ArtifactRecord
	Questions []model.QuestionRecord
}

// Store loads phase manifests from the assets root and caches them for the
// process lifetime. A missing manifest file yields an empty manifest, so a
// partial deployment serves whatever phases exist. Safe for concurrent use:
// concurrent first loads of the same phase may both read the file, but a
// single parsed value wins the cache.
type Store struct {
	root  string
	cache sync.Map // phase name -> loadResult
}

type loadResult struct {
	m   *Manifest
	err error
}

// NewStore creates a manifest store rooted at the given assets directory.
func NewStore(root string) *Store {
	return &Store{root: root}
}

// Root returns the assets root directory.
func (s *Store) Root() string { return s.root }

// Load returns the manifest for a phase, reading it from disk on first call
// and from cache afterwards. Corrupt manifests fail permanently for the
// process lifetime.
func (s *Store) Load(phase Phase) (*Manifest, error) {
	if v, ok := s.cache.Load(phase.Name); ok {
		r := v.(loadResult)
		return r.m, r.err
	}
	m, err := s.read(phase)
	v, _ := s.cache.LoadOrStore(phase.Name, loadResult{m: m, err: err})
	r := v.(loadResult)
	return r.m, r.err
}

func (s *Store) read(phase Phase) (*Manifest, error) {
	path := filepath.Join(s.root, phase.File)

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		slog.Warn("manifest missing, phase served empty", "phase", phase.Name, "path", path)
		return &Manifest{Phase: phase}, nil
	}
	if err != nil {
		return nil, &CorruptError{Path: path, Err: err}
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, &CorruptError{Path: path, Err: err}
	}
	if err := validateAgainstSchema(phase, data); err != nil {
		return nil, &CorruptError{Path: path, Err: err}
	}

	m := &Manifest{Phase: phase}
	if metaRaw, ok := raw["metadata"]; ok {
		if err := json.Unmarshal(metaRaw, &m.Meta); err != nil {
			return nil, &CorruptError{Path: path, Err: fmt.Errorf("metadata: %w", err)}
		}
	}

	for _, key := range phase.listKeys {
		listRaw, ok := raw[key]
		if !ok {
			continue
		}
		if phase.questions {
			qs, err := decodeQuestions(listRaw)
			if err != nil {
				return nil, &CorruptError{Path: path, Err: fmt.Errorf("%s: %w", key, err)}
			}
			m.Questions = append(m.Questions, qs...)
			continue
		}
		var recs []model.ArtifactRecord
		if err := json.Unmarshal(listRaw, &recs); err != nil {
			return nil, &CorruptError{Path: path, Err: fmt.Errorf("%s: %w", key, err)}
		}
		m.Artifacts = append(m.Artifacts, recs...)
	}

	slog.Info("manifest loaded",
		"phase", phase.Name,
		"artifacts", len(m.Artifacts),
		"questions", len(m.Questions),
	)
	return m, nil
}

// questionJSON is the on-disk shape of a question: type-specific fields sit
// flat next to the common ones.
type questionJSON struct {
	ID            string             `json:"id"`
	Subject       string             `json:"subject"`
	Topic         string             `json:"topic"`
	Grade         string             `json:"grade"`
	Type          model.QuestionType `json:"question_type"`
	Difficulty    model.Difficulty   `json:"difficulty"`
	Points        int                `json:"points"`
	EstimatedTime int                `json:"estimated_time"`
	Tags          []string           `json:"tags"`
	Text          string             `json:"question"`

	Options            []string        `json:"options"`
	CorrectAnswer      json.RawMessage `json:"correct_answer"`
	AlternativeAnswers []string        `json:"alternative_answers"`
	LeftItems          []string        `json:"left_items"`
	RightItems         []string        `json:"right_items"`
	CorrectPairs       map[int]int     `json:"correct_pairs"`
	Explanation        string          `json:"explanation"`
	SampleAnswer       string          `json:"sample_answer"`
	MarkingCriteria    []string        `json:"marking_criteria"`
}

// decodeQuestions decodes the flat on-disk question objects into tagged
// records with exactly one typed payload. Decoding happens once at load
// time; a type/answer mismatch is a deployment defect.
func decodeQuestions(raw json.RawMessage) ([]model.QuestionRecord, error) {
	var in []questionJSON
	if err := json.Unmarshal(raw, &in); err != nil {
		return nil, err
	}

	out := make([]model.QuestionRecord, 0, len(in))
	for _, qj := range in {
		q := model.QuestionRecord{
			ID:            qj.ID,
			Subject:       qj.Subject,
			Topic:         qj.Topic,
			Grade:         qj.Grade,
			Type:          qj.Type,
			Difficulty:    qj.Difficulty,
			Points:        qj.Points,
			EstimatedTime: qj.EstimatedTime,
			Tags:          qj.Tags,
			Text:          qj.Text,
		}

		switch qj.Type {
		case model.QuestionMultipleChoice:
			var idx int
			if err := json.Unmarshal(qj.CorrectAnswer, &idx); err != nil {
				return nil, fmt.Errorf("question %s: correct_answer: %w", qj.ID, err)
			}
			q.MultipleChoice = &model.MultipleChoicePayload{
				Options:       qj.Options,
				CorrectAnswer: idx,
				Explanation:   qj.Explanation,
			}
		case model.QuestionTrueFalse:
			var b bool
			if err := json.Unmarshal(qj.CorrectAnswer, &b); err != nil {
				return nil, fmt.Errorf("question %s: correct_answer: %w", qj.ID, err)
			}
			q.TrueFalse = &model.TrueFalsePayload{
				CorrectAnswer: b,
				Explanation:   qj.Explanation,
			}
		case model.QuestionFillBlank:
			var s string
			if err := json.Unmarshal(qj.CorrectAnswer, &s); err != nil {
				return nil, fmt.Errorf("question %s: correct_answer: %w", qj.ID, err)
			}
			q.FillBlank = &model.FillBlankPayload{
				CorrectAnswer:      s,
				AlternativeAnswers: qj.AlternativeAnswers,
				Explanation:        qj.Explanation,
			}
		case model.QuestionMatching:
			pairs := qj.CorrectPairs
			if pairs == nil {
				pairs = map[int]int{}
			}
			q.Matching = &model.MatchingPayload{
				LeftItems:    qj.LeftItems,
				RightItems:   qj.RightItems,
				CorrectPairs: pairs,
				Explanation:  qj.Explanation,
			}
		case model.QuestionShortAnswer:
			q.ShortAnswer = &model.ShortAnswerPayload{
				SampleAnswer:    qj.SampleAnswer,
				MarkingCriteria: qj.MarkingCriteria,
			}
		default:
			// Unknown type: keep the record so lookups and statistics see
			// it, but leave all payloads nil. Grading reports it as
			// unsupported instead of failing the whole manifest.
			slog.Warn("question has unknown type", "id", qj.ID, "type", qj.Type)
		}

		out = append(out, q)
	}
	return out, nil
}
