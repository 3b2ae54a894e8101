package model

import "time"

// ArtifactType identifies what kind of generated asset a record describes.
type ArtifactType string

const (
	TypeASCIIDiagram      ArtifactType = "ascii_diagram"
	TypeTruthTable        ArtifactType = "truth_table"
	TypeFunctionGraph     ArtifactType = "function_graph"
	TypeVenn2             ArtifactType = "venn_2"
	TypeVenn3             ArtifactType = "venn_3"
	TypeFlowchart         ArtifactType = "flowchart"
	TypeCircuitElectrical ArtifactType = "circuit_electrical"
	TypeChemistryReaction ArtifactType = "chemistry_reaction"
)

// Format tags the content encoding of a resolved artifact.
type Format string

const (
	FormatText Format = "text"
	FormatHTML Format = "html"
	FormatSVG  Format = "svg"
)

// Difficulty represents question or artifact difficulty level.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// ArtifactRecord is one catalog entry from a phase manifest. The record
// points at a content file on disk; it does not carry the content itself.
type ArtifactRecord struct {
	ID         string         `json:"id"`
	LessonID   string         `json:"lesson_id"`
	Type       ArtifactType   `json:"type"`
	Subject    string         `json:"subject"`
	Title      string         `json:"title"`
	Path       string         `json:"path"`
	Difficulty Difficulty     `json:"difficulty,omitempty"`
	Metadata   map[string]any `json:"metadata,omitempty"`
}

// ResolvedArtifact is an ArtifactRecord with its content loaded from disk.
// Write-once: never mutated after creation.
type ResolvedArtifact struct {
	ArtifactRecord
	Content string `json:"content"`
	Format  Format `json:"format"`
}

// ManifestMeta is the metadata block every phase manifest carries.
type ManifestMeta struct {
	TotalCount  int       `json:"total_count"`
	GeneratedAt time.Time `json:"generated_at"`
	Phase       int       `json:"phase"`
}

// QuestionType identifies the grading policy for a question.
type QuestionType string

const (
	QuestionMultipleChoice QuestionType = "multiple_choice"
	QuestionTrueFalse      QuestionType = "true_false"
	QuestionFillBlank      QuestionType = "fill_blank"
	QuestionMatching       QuestionType = "matching"
	QuestionShortAnswer    QuestionType = "short_answer"
)

// MultipleChoicePayload holds the options and the index of the correct one.
type MultipleChoicePayload struct {
	Options       []string `json:"options"`
	CorrectAnswer int      `json:"correct_answer"`
	Explanation   string   `json:"explanation"`
}

// TrueFalsePayload holds the expected boolean answer.
type TrueFalsePayload struct {
	CorrectAnswer bool   `json:"correct_answer"`
	Explanation   string `json:"explanation"`
}

// FillBlankPayload holds the accepted answer strings.
type FillBlankPayload struct {
	CorrectAnswer      string   `json:"correct_answer"`
	AlternativeAnswers []string `json:"alternative_answers,omitempty"`
	Explanation        string   `json:"explanation"`
}

// MatchingPayload maps left item indexes to their matching right indexes.
type MatchingPayload struct {
	LeftItems    []string    `json:"left_items,omitempty"`
	RightItems   []string    `json:"right_items,omitempty"`
	CorrectPairs map[int]int `json:"correct_pairs"`
	Explanation  string      `json:"explanation"`
}

// ShortAnswerPayload holds material for a human grader; short answers are
// never graded automatically.
type ShortAnswerPayload struct {
	SampleAnswer    string   `json:"sample_answer"`
	MarkingCriteria []string `json:"marking_criteria,omitempty"`
}

// QuestionRecord is one entry from the question-bank manifest. Exactly one
// payload field is non-nil, matching Type; a record with an unrecognized
// type has no payload and fails validation with "unsupported type".
type QuestionRecord struct {
	ID            string       `json:"id"`
	Subject       string       `json:"subject"`
	Topic         string       `json:"topic"`
	Grade         string       `json:"grade"`
	Type          QuestionType `json:"question_type"`
	Difficulty    Difficulty   `json:"difficulty"`
	Points        int          `json:"points"`
	EstimatedTime int          `json:"estimated_time"`
	Tags          []string     `json:"tags,omitempty"`
	Text          string       `json:"question"`

	MultipleChoice *MultipleChoicePayload `json:"multiple_choice,omitempty"`
	TrueFalse      *TrueFalsePayload      `json:"true_false,omitempty"`
	FillBlank      *FillBlankPayload      `json:"fill_blank,omitempty"`
	Matching       *MatchingPayload       `json:"matching,omitempty"`
	ShortAnswer    *ShortAnswerPayload    `json:"short_answer,omitempty"`
}

// ValidationResult is the structured outcome of grading one submission.
// Valid=false means the request itself was malformed (unknown id, unknown
// type, wrong input shape); an incorrect answer is a valid result with
// Correct=false.
type ValidationResult struct {
	Valid bool   `json:"valid"`
	Error string `json:"error,omitempty"`

	QuestionID   string       `json:"question_id,omitempty"`
	QuestionType QuestionType `json:"question_type,omitempty"`

	Correct        *bool    `json:"correct"`
	PointsEarned   *float64 `json:"points_earned"`
	PointsPossible int      `json:"points_possible"`
	Explanation    string   `json:"explanation,omitempty"`

	// Matching diagnostics. Degenerate flags a question with zero pairs.
	CorrectCount int  `json:"correct_count,omitempty"`
	TotalPairs   int  `json:"total_pairs,omitempty"`
	Degenerate   bool `json:"degenerate,omitempty"`

	// Short-answer terminal state.
	RequiresManualGrading bool     `json:"requires_manual_grading,omitempty"`
	SampleAnswer          string   `json:"sample_answer,omitempty"`
	MarkingCriteria       []string `json:"marking_criteria,omitempty"`
}

// Lesson is the record this engine enriches. The lesson store owns the
// lifecycle; the engine only fills GeneratedAssets.
type Lesson struct {
	ID              string         `json:"id"`
	Title           string         `json:"title"`
	Subject         string         `json:"subject"`
	Body            string         `json:"body"`
	GeneratedAssets map[string]any `json:"generated_assets,omitempty"`
}

// LessonImport is used for loading lessons from JSON files.
type LessonImport struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}
