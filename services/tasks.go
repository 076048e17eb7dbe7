package services

import (
	"fmt"
	"strings"

	"trial-hand/llm"
	"trial-hand/providers/ctgov"
)

// FieldTask beschreibt ein einzelnes generiertes Feld als einheitlichen
// Deskriptor: Prompt-Aufbau, Validierung und Fallback laufen für alle Felder
// durch denselben Runner im Generator.
type FieldTask struct {
	Name string
	// Static liefert einen festen Text und überspringt das Backend komplett.
	Static func(study ctgov.Study) (string, bool)
	// Build baut die Anfrage an das Text-Backend.
	Build func(study ctgov.Study) llm.CompletionOptions
	// Valid prüft die Backend-Antwort; bei false greift der Fallback. Die
	// Deny-Listen hängen am jeweiligen Task, nicht am Runner.
	Valid func(result string) bool
	// Fallback liefert den deterministischen Ersatztext.
	Fallback func(study ctgov.Study) string
}

// Feldnamen der Tasks.
const (
	FieldShortTitle    = "short_title"
	FieldSummary       = "summary"
	FieldPurpose       = "purpose"
	FieldTreatments    = "treatments"
	FieldDesign        = "design"
	FieldEligibility   = "eligibility"
	FieldParticipation = "participation"
	FieldLeadership    = "leadership"
	FieldPriorResearch = "prior_research"
	FieldLocations     = "locations"
)

// Feste Fallback-Sätze.
const (
	purposeFallback       = "The purpose of this study is to evaluate a specific treatment approach described by the study team."
	treatmentsNoDrug      = "This study does not test a specific drug or device."
	participationFallback = "The study team will explain what participation involves."
	leadershipFallback    = "This study is being run by the study team listed on ClinicalTrials.gov."
	locationsDecentral    = "This is a decentralized study, which means it can be done remotely."
	designObservational   = "This is an observational study where researchers collect information over time without assigning treatments or interventions."
)

var purposeDenyList = []string{
	"better understand",
	"learn more",
	"future research",
	"being evaluated",
	"being reviewed",
	"focuses on",
	"not enough information",
}

var treatmentsDenyList = []string{
	"paste",
	"provide more",
	"not enough information",
	"cannot determine",
	"i need more",
}

var participationDenyList = []string{
	"not provided",
	"wasn't provided",
	"missing",
	"no information",
	"cannot summarize",
	"can't summarize",
	"please",
	"paste",
	"looks like",
	"based on the text provided",
}

// containsAny prüft case-insensitiv auf eine der Phrasen.
func containsAny(text string, phrases []string) bool {
	lower := strings.ToLower(text)
	for _, p := range phrases {
		if strings.Contains(lower, p) {
			return true
		}
	}
	return false
}

// fieldTasks definiert die Generierungsreihenfolge. locations ist rein
// deterministisch und ruft das Backend nie auf.
var fieldTasks = []FieldTask{
	{
		Name:  FieldShortTitle,
		Build: buildShortTitlePrompt,
	},
	{
		Name:  FieldSummary,
		Build: buildSummaryPrompt,
	},
	{
		Name:  FieldPurpose,
		Build: buildPurposePrompt,
		Valid: func(result string) bool {
			return len(result) >= 60 && !containsAny(result, purposeDenyList)
		},
		Fallback: func(ctgov.Study) string { return purposeFallback },
	},
	{
		Name: FieldTreatments,
		Static: func(study ctgov.Study) (string, bool) {
			// Ohne Interventionen gibt es nichts zu generieren.
			if len(study.InterventionNames()) == 0 {
				return treatmentsNoDrug, true
			}
			return "", false
		},
		Build: buildTreatmentsPrompt,
		Valid: func(result string) bool {
			return !containsAny(result, treatmentsDenyList)
		},
		Fallback: func(study ctgov.Study) string {
			return fmt.Sprintf("The study is testing %s.", strings.Join(study.InterventionNames(), ", "))
		},
	},
	{
		Name: FieldDesign,
		Static: func(study ctgov.Study) (string, bool) {
			if isObservational(study) && designSourceText(study) == "" {
				return designObservational, true
			}
			return "", false
		},
		Build: buildDesignPrompt,
	},
	{
		Name:  FieldEligibility,
		Build: buildEligibilityPrompt,
	},
	{
		Name: FieldParticipation,
		Static: func(study ctgov.Study) (string, bool) {
			// Unter ~40 Zeichen Quelltext liefert das Backend nur Ausflüchte.
			if len(strings.TrimSpace(participationSourceText(study))) < 40 {
				return participationFallback, true
			}
			return "", false
		},
		Build: buildParticipationPrompt,
		Valid: func(result string) bool {
			return len(result) >= 20 && !containsAny(result, participationDenyList)
		},
		Fallback: func(ctgov.Study) string { return participationFallback },
	},
	{
		Name: FieldLeadership,
		Static: func(study ctgov.Study) (string, bool) {
			sponsor := study.ProtocolSection.SponsorCollaboratorsModule.LeadSponsor.Name
			contacts := study.ProtocolSection.ContactsLocationsModule.CentralContacts
			if sponsor == "" && len(contacts) == 0 {
				return leadershipFallback, true
			}
			if len(contacts) == 0 {
				return fmt.Sprintf("This study is being run by %s.", sponsor), true
			}
			return "", false
		},
		Build: buildLeadershipPrompt,
	},
	{
		Name:  FieldPriorResearch,
		Build: buildPriorResearchPrompt,
	},
	{
		Name: FieldLocations,
		Static: func(study ctgov.Study) (string, bool) {
			return formatLocations(study), true
		},
	},
}

func isObservational(study ctgov.Study) bool {
	return strings.EqualFold(study.ProtocolSection.DesignModule.StudyType, "observational")
}

func isInterventional(study ctgov.Study) bool {
	return strings.EqualFold(study.ProtocolSection.DesignModule.StudyType, "interventional")
}

// designSourceText ist der Freitext, aus dem das Design-Feld für
// Beobachtungsstudien generiert wird.
func designSourceText(study ctgov.Study) string {
	return study.ProtocolSection.DescriptionModule.DetailedDescription
}

// participationSourceText ist der Freitext für das Participation-Feld.
func participationSourceText(study ctgov.Study) string {
	d := study.ProtocolSection.DescriptionModule
	if d.DetailedDescription != "" {
		return d.DetailedDescription
	}
	return d.BriefSummary
}

// formatLocations erzeugt die Orte-Zeile rein deterministisch: Stadt, Staat und
// Land pro Standort, mit Semikolon verbunden.
func formatLocations(study ctgov.Study) string {
	locations := study.ProtocolSection.ContactsLocationsModule.Locations
	if len(locations) == 0 {
		return locationsDecentral
	}

	var parts []string
	for _, l := range locations {
		var fields []string
		for _, v := range []string{l.City, l.State, l.Country} {
			if v != "" {
				fields = append(fields, v)
			}
		}
		if len(fields) > 0 {
			parts = append(parts, strings.Join(fields, ", "))
		}
	}
	if len(parts) == 0 {
		return locationsDecentral
	}
	return strings.Join(parts, "; ")
}

func buildShortTitlePrompt(study ctgov.Study) llm.CompletionOptions {
	p := study.ProtocolSection
	conditions := strings.Join(p.ConditionsModule.Conditions, ", ")
	drugs := strings.Join(study.InterventionNames(), ", ")

	// Interventionelle Studien mit benannten Wirkstoffen bekommen das strikte
	// Template, alles andere einen lockereren beschreibenden Titel.
	if isInterventional(study) && drugs != "" {
		drugsText := drugs
		conditionsText := conditions
		if conditionsText == "" {
			conditionsText = "Not specified"
		}
		return llm.CompletionOptions{
			Temperature: 0.1,
			Prompt: fmt.Sprintf(`Create a short, patient-friendly study title.

Rules (must follow ALL):
- Format EXACTLY: [Drug or Drugs] for [Specific disease or tumor]
- Use the SPECIFIC tumor or condition being treated
- If the condition occurs within a larger disorder, name only the tumor
- Use real drug name(s)
- 3-6 words total
- No punctuation
- No phase numbers
- Do NOT use the words "study", "trial", or "treatment"

Drug(s): %s
Condition being treated: %s

Return ONLY the title.`, drugsText, conditionsText),
		}
	}

	return llm.CompletionOptions{
		Temperature: 0.2,
		Prompt: fmt.Sprintf(`You are writing a short, patient-facing title for a clinical research study.

Rules:
- 3-5 words
- Clear and descriptive
- Written for patients
- No punctuation
- No phase numbers

Conditions: %s

Study description: %s`, conditions, p.DescriptionModule.BriefSummary),
	}
}

func buildSummaryPrompt(study ctgov.Study) llm.CompletionOptions {
	p := study.ProtocolSection
	conditions := strings.Join(p.ConditionsModule.Conditions, ", ")
	if conditions == "" {
		conditions = "the condition being studied"
	}
	studyType := strings.ToLower(p.DesignModule.StudyType)
	if studyType == "" {
		studyType = "observational"
	}
	interventions := "None"
	if names := study.InterventionNames(); len(names) > 0 {
		interventions = strings.Join(names, ", ")
	}

	return llm.CompletionOptions{
		SystemPrompt: llm.PatientSystemPrompt,
		Temperature:  0.3,
		Prompt: fmt.Sprintf(`Write ONE clear, patient-friendly summary paragraph (5-7 sentences).

Explain:
1. The specific disease or tumor being treated (be precise)
2. What type of study this is (interventional or observational)
3. What drug, device, or approach is being tested
4. What type of drug or approach this is and how it works in simple terms
5. What participants are asked to do
6. How the information from the study will be used

STRICT RULES (must follow ALL):
- Use plain text only
- DO NOT use markdown, asterisks (*), bold, italics, or symbols
- Always name the SPECIFIC disease or tumor being treated
- If the condition is part of a genetic disorder, name the tumor, not the disorder
- If a drug is tested, explain how it works in ONE simple sentence
- Do NOT promise benefit
- Do NOT describe disease biology in detail
- Do NOT mention missing or unclear information
- Calm, neutral, plain language
- One paragraph only

Study type: %s
Condition or tumor treated: %s
Drug(s) or intervention(s): %s`, studyType, conditions, interventions),
	}
}

func buildPurposePrompt(study ctgov.Study) llm.CompletionOptions {
	p := study.ProtocolSection
	indication := strings.Join(p.ConditionsModule.Conditions, ", ")
	drugs := strings.Join(study.InterventionNames(), ", ")
	if drugs == "" {
		drugs = "Not specified"
	}
	source := joinNonEmpty("\n\n",
		p.DescriptionModule.BriefSummary,
		p.DescriptionModule.DetailedDescription,
	)

	return llm.CompletionOptions{
		SystemPrompt: llm.PatientSystemPrompt,
		Temperature:  0.3,
		Prompt: fmt.Sprintf(`Answer this question for a patient:

"What is the purpose of this study?"

STRICT RULES (must follow ALL):
- Clearly state WHAT drug, therapy, or approach is being tested
- Clearly state the SPECIFIC disease, tumor, or condition being treated
- Explain WHAT the study is measuring (for example: tumor shrinkage, safety, side effects, symptom control)
- Use concrete, plain language
- Do NOT describe disease biology
- Do NOT use vague phrases like "to better understand", "researchers want to learn more", "being evaluated", "for future research"
- Do NOT mention missing information
- Do NOT mention ClinicalTrials.gov
- 2-3 sentences total

If the purpose cannot be clearly determined, return EXACTLY this sentence:
"%s"

Indication: %s
Drug(s) or intervention(s): %s
Study description: %s`, purposeFallback, indication, drugs, source),
	}
}

func buildTreatmentsPrompt(study ctgov.Study) llm.CompletionOptions {
	return llm.CompletionOptions{
		SystemPrompt: llm.PatientSystemPrompt,
		Temperature:  0.3,
		Prompt: fmt.Sprintf(`Answer this question for a patient: "What treatments are being tested?"

Rules:
- Clearly name the treatment(s)
- If the study does not explain how they work, say so briefly and neutrally
- Do NOT mention missing text
- Do NOT ask for more information
- Do NOT speculate
- 1-2 sentences
- Plain language

Treatments: %s`, strings.Join(study.InterventionNames(), ", ")),
	}
}

func buildDesignPrompt(study ctgov.Study) llm.CompletionOptions {
	p := study.ProtocolSection

	if isObservational(study) {
		return llm.CompletionOptions{
			SystemPrompt: llm.PatientSystemPrompt,
			Temperature:  0.3,
			Prompt: fmt.Sprintf(`Explain how this observational study works. Rules: Describe what information is collected and how participants are followed. Mention surveys, interviews, medical record review, imaging, or follow-ups if listed. Do NOT describe treatments or assignments. Do NOT ask for more information. Do NOT mention missing text. 2-4 sentences. Plain language. Text: %s`, designSourceText(study)),
		}
	}

	var arms []string
	for _, a := range p.ArmsInterventionsModule.ArmGroups {
		arms = append(arms, a.Label+": "+a.Description)
	}
	source := joinNonEmpty("\n\n",
		p.DesignModule.StudyType,
		p.DesignModule.DesignInfo.Allocation,
		p.DesignModule.DesignInfo.InterventionModel,
		p.DesignModule.DesignInfo.MaskingInfo.Masking,
		strings.Join(arms, "\n"),
		p.DescriptionModule.DetailedDescription,
	)

	return llm.CompletionOptions{
		SystemPrompt: llm.PatientSystemPrompt,
		Temperature:  0.3,
		Prompt: fmt.Sprintf(`Explain how this study works for someone who joins. Rules: Describe STEP BY STEP what participants will do. Mention groups and what each group receives, if applicable. Mention surveys, interviews, videos, navigation, follow-ups if listed. Do NOT define study types. Do NOT use generic phrases like "the study team will explain". 3-5 sentences. Must be specific to this study. Text: %s`, source),
	}
}

func buildEligibilityPrompt(study ctgov.Study) llm.CompletionOptions {
	return llm.CompletionOptions{
		SystemPrompt: llm.PatientSystemPrompt,
		Temperature:  0.3,
		Prompt: fmt.Sprintf(`Create two bullet lists: Who may be able to join, Who may not be able to join. Rules: Use only the eligibility text. Plain language. No extra explanations. Text: %s`, study.ProtocolSection.EligibilityModule.EligibilityCriteria),
	}
}

func buildParticipationPrompt(study ctgov.Study) llm.CompletionOptions {
	return llm.CompletionOptions{
		SystemPrompt: llm.PatientSystemPrompt,
		Temperature:  0.3,
		Prompt: fmt.Sprintf(`You are writing for patients. Answer the question: "What is participation like?" STRICT RULES: Describe what participants actually DO. Mention visits, procedures, surveys, imaging, medications, or follow-ups if listed. If randomized, say participants may be assigned to a group. Do NOT mention missing information. Do NOT say text was not provided. Do NOT hedge or apologize. Do NOT ask questions. 2-3 sentences MAX. Plain, neutral language. Use ONLY the text provided. Text: %s`, participationSourceText(study)),
	}
}

func buildLeadershipPrompt(study ctgov.Study) llm.CompletionOptions {
	sponsor := study.ProtocolSection.SponsorCollaboratorsModule.LeadSponsor.Name

	var contacts []string
	for _, c := range study.ProtocolSection.ContactsLocationsModule.CentralContacts {
		phone := c.Phone
		if phone == "" {
			phone = "no phone listed"
		}
		email := c.Email
		if email == "" {
			email = "no email listed"
		}
		contacts = append(contacts, fmt.Sprintf("%s (%s, %s)", c.Name, phone, email))
	}

	return llm.CompletionOptions{
		SystemPrompt: llm.PatientSystemPrompt,
		Temperature:  0.3,
		Prompt: fmt.Sprintf(`Explain who is running the study. Rules: Use plain text only. Do NOT ask the reader for information. Do NOT say "share it and I can add it". Do NOT mention missing information. Name the sponsor. List contact details exactly as provided. Short and factual. Sponsor: %s Contacts: %s`, sponsor, strings.Join(contacts, "\n")),
	}
}

func buildPriorResearchPrompt(study ctgov.Study) llm.CompletionOptions {
	condition := strings.Join(study.ProtocolSection.ConditionsModule.Conditions, ", ")
	if condition == "" {
		condition = "Not specified"
	}
	interventions := strings.Join(study.InterventionNames(), ", ")
	if interventions == "" {
		interventions = "Not specified"
	}

	return llm.CompletionOptions{
		SystemPrompt: llm.PatientSystemPrompt,
		Temperature:  0.3,
		Prompt: fmt.Sprintf(`You are writing a short "Prior Research" section for a patient-facing clinical trial summary. This section should summarize general background research related to the condition and treatment. Important rules: Do NOT claim that this trial itself produced these results. Do NOT invent study names, years, authors, or citations. Speak generally (e.g. "previous studies have shown...", "earlier research suggests..."). If little is known, say so clearly. 1-2 short paragraphs, plain language. Condition: %s Treatment / Intervention: %s`, condition, interventions),
	}
}

// joinNonEmpty verbindet die nicht-leeren Teile mit dem Separator.
func joinNonEmpty(sep string, parts ...string) string {
	var kept []string
	for _, p := range parts {
		if p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, sep)
}
