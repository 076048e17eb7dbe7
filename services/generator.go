package services

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"trial-hand/llm"
	"trial-hand/providers/ctgov"
)

// Narrative bündelt die generierten Patienten-Texte einer Studie.
type Narrative struct {
	ShortTitle    string
	Summary       string
	Purpose       string
	Treatments    string
	Design        string
	Eligibility   string
	Participation string
	Leadership    string
	PriorResearch string
	Locations     string
}

// MissingFields listet die Pflichtfelder auf, die nach Generierung und
// Fallbacks immer noch leer sind. Kurztitel, Summary und Treatments sind
// bewusst nicht dabei, sie dürfen in Randfällen leer bleiben.
func (n *Narrative) MissingFields() []string {
	var missing []string
	for name, value := range map[string]string{
		FieldPurpose:       n.Purpose,
		FieldDesign:        n.Design,
		FieldEligibility:   n.Eligibility,
		FieldParticipation: n.Participation,
		FieldLeadership:    n.Leadership,
		FieldPriorResearch: n.PriorResearch,
		FieldLocations:     n.Locations,
	} {
		if value == "" {
			missing = append(missing, name)
		}
	}
	return missing
}

// Generator erzeugt die Patienten-Texte für eine Studie. Alle Feld-Tasks
// laufen durch denselben Runner: Static-Kurzschluss, Backend-Aufruf,
// Validierung, Fallback.
type Generator struct {
	Completer llm.Completer
	Logger    *zap.Logger
}

// NewGenerator erstellt einen neuen Generator.
func NewGenerator(completer llm.Completer, logger *zap.Logger) *Generator {
	return &Generator{Completer: completer, Logger: logger}
}

// Generate erzeugt alle Felder für eine Studie. Scheitert ein Pflichtfeld
// trotz Fallback, schlägt die gesamte Generierung fehl; es wird nie ein
// teilweiser Record zurückgegeben.
func (g *Generator) Generate(ctx context.Context, study ctgov.Study) (Narrative, error) {
	out := make(map[string]string, len(fieldTasks))

	for _, task := range fieldTasks {
		text, err := g.runTask(ctx, task, study)
		if err != nil {
			return Narrative{}, err
		}
		out[task.Name] = text
	}

	n := Narrative{
		ShortTitle:    out[FieldShortTitle],
		Summary:       out[FieldSummary],
		Purpose:       out[FieldPurpose],
		Treatments:    out[FieldTreatments],
		Design:        out[FieldDesign],
		Eligibility:   out[FieldEligibility],
		Participation: out[FieldParticipation],
		Leadership:    out[FieldLeadership],
		PriorResearch: out[FieldPriorResearch],
		Locations:     out[FieldLocations],
	}

	if missing := n.MissingFields(); len(missing) > 0 {
		return Narrative{}, fmt.Errorf("unvollständige Generierung, leere Felder: %s", strings.Join(missing, ", "))
	}

	return n, nil
}

// runTask führt einen einzelnen Feld-Task aus.
func (g *Generator) runTask(ctx context.Context, task FieldTask, study ctgov.Study) (string, error) {
	if task.Static != nil {
		if text, ok := task.Static(study); ok {
			return text, nil
		}
	}

	result, err := g.Completer.Complete(ctx, task.Build(study))
	if err != nil {
		// Transportfehler gehen als Studienfehler nach oben, die Deny-Listen
		// greifen nur bei inhaltlich schlechten Antworten.
		return "", fmt.Errorf("feld %s: %w", task.Name, err)
	}

	if result == "" || (task.Valid != nil && !task.Valid(result)) {
		if task.Fallback != nil {
			g.Logger.Debug("Backend-Antwort verworfen, nutze Fallback",
				zap.String("field", task.Name),
				zap.Int("result_len", len(result)))
			return task.Fallback(study), nil
		}
	}

	return result, nil
}
