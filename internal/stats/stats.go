// Package stats computes corpus-wide counts over the manifests and the
// question bank. Everything is derived in a single pass at call time;
// corpora are small and statistics are not on a hot path.
package stats

import (
	"strings"

	"github.com/edukit/lessond/internal/manifest"
	"github.com/edukit/lessond/internal/model"
	"github.com/edukit/lessond/internal/question"
)

// QuestionStats summarizes the question bank.
type QuestionStats struct {
	Total              int                        `json:"total"`
	ByType             map[model.QuestionType]int `json:"by_type"`
	ByDifficulty       map[model.Difficulty]int   `json:"by_difficulty"`
	BySubject          map[string]int             `json:"by_subject"`
	TotalPoints        int                        `json:"total_points"`
	TotalEstimatedTime int                        `json:"total_estimated_time_seconds"`
}

// Statistics is the corpus-wide report.
type Statistics struct {
	ArtifactsByPhase map[string]int             `json:"artifacts_by_phase"`
	ArtifactsByType  map[model.ArtifactType]int `json:"artifacts_by_type"`
	TotalArtifacts   int                        `json:"total_artifacts"`
	Questions        QuestionStats              `json:"questions"`
}

// SubjectStatistics is the per-subject report.
type SubjectStatistics struct {
	Subject            string                     `json:"subject"`
	Artifacts          int                        `json:"artifacts"`
	Questions          int                        `json:"questions"`
	QuestionsByType    map[model.QuestionType]int `json:"questions_by_type"`
	ByDifficulty       map[model.Difficulty]int   `json:"questions_by_difficulty"`
	TotalPoints        int                        `json:"total_points"`
	TotalEstimatedTime int                        `json:"total_estimated_time_seconds"`
}

// Aggregator reads counts from the manifest store and question repository.
type Aggregator struct {
	store *manifest.Store
	repo  *question.Repository
}

// New creates an aggregator.
func New(store *manifest.Store, repo *question.Repository) *Aggregator {
	return &Aggregator{store: store, repo: repo}
}

// Statistics computes the corpus-wide report.
func (a *Aggregator) Statistics() (Statistics, error) {
	s := Statistics{
		ArtifactsByPhase: make(map[string]int),
		ArtifactsByType:  make(map[model.ArtifactType]int),
		Questions: QuestionStats{
			ByType:       make(map[model.QuestionType]int),
			ByDifficulty: make(map[model.Difficulty]int),
			BySubject:    make(map[string]int),
		},
	}

	for _, phase := range manifest.ContentPhases() {
		m, err := a.store.Load(phase)
		if err != nil {
			return Statistics{}, err
		}
		s.ArtifactsByPhase[phase.Name] = len(m.Artifacts)
		s.TotalArtifacts += len(m.Artifacts)
		for _, rec := range m.Artifacts {
			s.ArtifactsByType[rec.Type]++
		}
	}

	for _, q := range a.repo.All() {
		s.Questions.Total++
		s.Questions.ByType[q.Type]++
		s.Questions.ByDifficulty[q.Difficulty]++
		s.Questions.BySubject[q.Subject]++
		s.Questions.TotalPoints += q.Points
		s.Questions.TotalEstimatedTime += q.EstimatedTime
	}

	return s, nil
}

// SubjectStatistics computes the report for one subject, matched
// case-insensitively.
func (a *Aggregator) SubjectStatistics(subject string) (SubjectStatistics, error) {
	s := SubjectStatistics{
		Subject:         subject,
		QuestionsByType: make(map[model.QuestionType]int),
		ByDifficulty:    make(map[model.Difficulty]int),
	}

	for _, phase := range manifest.ContentPhases() {
		m, err := a.store.Load(phase)
		if err != nil {
			return SubjectStatistics{}, err
		}
		for _, rec := range m.Artifacts {
			if strings.EqualFold(rec.Subject, subject) {
				s.Artifacts++
			}
		}
	}

	for _, q := range a.repo.All() {
		if !strings.EqualFold(q.Subject, subject) {
			continue
		}
		s.Questions++
		s.QuestionsByType[q.Type]++
		s.ByDifficulty[q.Difficulty]++
		s.TotalPoints += q.Points
		s.TotalEstimatedTime += q.EstimatedTime
	}

	return s, nil
}
