// Package question specializes the manifest store for the question-bank
// phase: id lookup, case-insensitive field filters, and unbiased random
// sampling.
package question

import (
	"math/rand"
	"strings"

	"github.com/edukit/lessond/internal/manifest"
	"github.com/edukit/lessond/internal/model"
)

// Filters narrows GetRandom's population. Empty fields match everything.
type Filters struct {
	Subject    string
	Difficulty model.Difficulty
}

// Repository holds the loaded question bank. Immutable after construction.
type Repository struct {
	questions []model.QuestionRecord
	byID      map[string]model.QuestionRecord
}

// NewRepository loads the question-bank phase from the store. A missing
// bank yields an empty repository; a corrupt one is a deployment defect.
func NewRepository(store *manifest.Store) (*Repository, error) {
	m, err := store.Load(manifest.QuestionPhase())
	if err != nil {
		return nil, err
	}

	r := &Repository{
		questions: m.Questions,
		byID:      make(map[string]model.QuestionRecord, len(m.Questions)),
	}
	for _, q := range m.Questions {
		r.byID[q.ID] = q
	}
	return r, nil
}

// Len returns the number of questions in the bank.
func (r *Repository) Len() int { return len(r.questions) }

// All returns every question in manifest order. The slice is shared; do not
// modify it.
func (r *Repository) All() []model.QuestionRecord { return r.questions }

// GetByID returns the question with the given id.
func (r *Repository) GetByID(id string) (model.QuestionRecord, bool) {
	q, ok := r.byID[id]
	return q, ok
}

// GetBySubject returns up to limit questions for a subject, in manifest
// order. Matching is case-insensitive; limit <= 0 means no limit.
func (r *Repository) GetBySubject(subject string, limit int) []model.QuestionRecord {
	return r.filter(limit, func(q model.QuestionRecord) bool {
		return strings.EqualFold(q.Subject, subject)
	})
}

// GetByType returns up to limit questions of a question type.
func (r *Repository) GetByType(qt model.QuestionType, limit int) []model.QuestionRecord {
	return r.filter(limit, func(q model.QuestionRecord) bool {
		return strings.EqualFold(string(q.Type), string(qt))
	})
}

// GetByDifficulty returns up to limit questions of a difficulty.
func (r *Repository) GetByDifficulty(d model.Difficulty, limit int) []model.QuestionRecord {
	return r.filter(limit, func(q model.QuestionRecord) bool {
		return strings.EqualFold(string(q.Difficulty), string(d))
	})
}

func (r *Repository) filter(limit int, keep func(model.QuestionRecord) bool) []model.QuestionRecord {
	var out []model.QuestionRecord
	for _, q := range r.questions {
		if !keep(q) {
			continue
		}
		out = append(out, q)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out
}

// GetRandom returns an unbiased sample without replacement of size
// min(count, filtered population). Asking for more questions than exist
// returns the full filtered population; it is not an error.
func (r *Repository) GetRandom(count int, f Filters) []model.QuestionRecord {
	matches := r.filter(0, func(q model.QuestionRecord) bool {
		if f.Subject != "" && !strings.EqualFold(q.Subject, f.Subject) {
			return false
		}
		if f.Difficulty != "" && !strings.EqualFold(string(q.Difficulty), string(f.Difficulty)) {
			return false
		}
		return true
	})

	if count <= 0 {
		return nil
	}
	rand.Shuffle(len(matches), func(i, j int) {
		matches[i], matches[j] = matches[j], matches[i]
	})
	if count < len(matches) {
		matches = matches[:count]
	}
	return matches
}
