package manifest

// Phase describes one generation batch: its manifest filename under the
// assets root and the top-level keys that hold record lists.
type Phase struct {
	Number int
	Name   string
	File   string

	listKeys  []string
	questions bool
}

var phases = []Phase{
	{Number: 1, Name: "diagrams", File: "diagram_manifest.json", listKeys: []string{"ascii_diagrams", "truth_tables"}},
	{Number: 2, Name: "graphs", File: "graph_manifest.json", listKeys: []string{"graphs"}},
	{Number: 3, Name: "phase3", File: "phase3_manifest.json", listKeys: []string{"diagrams"}},
	{Number: 4, Name: "questions", File: "question_bank.json", listKeys: []string{"questions"}, questions: true},
}

// Phases returns all known phases in ascending phase order.
func Phases() []Phase {
	out := make([]Phase, len(phases))
	copy(out, phases)
	return out
}

// ContentPhases returns the artifact-bearing phases (everything but the
// question bank) in ascending phase order.
func ContentPhases() []Phase {
	var out []Phase
	for _, p := range phases {
		if !p.questions {
			out = append(out, p)
		}
	}
	return out
}

// QuestionPhase returns the question-bank phase.
func QuestionPhase() Phase {
	for _, p := range phases {
		if p.questions {
			return p
		}
	}
	panic("manifest: no question phase configured")
}
