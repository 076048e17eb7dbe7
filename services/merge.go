package services

import "trial-hand/models"

// MergeTrial führt einen bestehenden und einen frisch generierten Trial-Record
// zusammen. Generierte Felder werden nur übernommen, wenn der zugehörige
// manuelle Override fehlt; sonst bleibt der bestehende Wert stehen. Hat eines
// der drei primären Felder (Kurztitel, Summary, Purpose) einen Override, wird
// auch der Source-Hash NICHT aktualisiert: der Record bleibt gegen künftige
// Skip-/Regenerate-Entscheidungen gepinnt. Last-Synced wird immer erneuert.
// Die Funktion arbeitet rein auf In-Memory-Records, damit die
// Override-Invariante ohne Datenbank testbar ist.
func MergeTrial(existing, incoming models.ClinicalTrial) models.ClinicalTrial {
	merged := incoming

	// Identität und Lifecycle des bestehenden Records behalten.
	merged.ID = existing.ID
	merged.CreatedAt = existing.CreatedAt
	merged.IsActive = existing.IsActive

	// Manuelle Overrides überleben jeden Sync.
	merged.ShortTitleManual = existing.ShortTitleManual
	merged.AiSummaryManual = existing.AiSummaryManual
	merged.AiPurposeManual = existing.AiPurposeManual
	merged.AiTreatmentsManual = existing.AiTreatmentsManual
	merged.AiDesignManual = existing.AiDesignManual
	merged.AiEligibilityManual = existing.AiEligibilityManual
	merged.AiParticipationManual = existing.AiParticipationManual
	merged.AiLeadershipManual = existing.AiLeadershipManual
	merged.AiPriorResearchManual = existing.AiPriorResearchManual
	merged.AiLocationsManual = existing.AiLocationsManual

	if existing.ShortTitleManual != nil {
		merged.ShortTitle = existing.ShortTitle
	}
	if existing.AiSummaryManual != nil {
		merged.AiSummary = existing.AiSummary
		merged.AiSummaryUpdatedAt = existing.AiSummaryUpdatedAt
	}
	if existing.AiPurposeManual != nil {
		merged.AiPurpose = existing.AiPurpose
	}
	if existing.AiTreatmentsManual != nil {
		merged.AiTreatments = existing.AiTreatments
	}
	if existing.AiDesignManual != nil {
		merged.AiDesign = existing.AiDesign
	}
	if existing.AiEligibilityManual != nil {
		merged.AiEligibility = existing.AiEligibility
	}
	if existing.AiParticipationManual != nil {
		merged.AiParticipation = existing.AiParticipation
	}
	if existing.AiLeadershipManual != nil {
		merged.AiLeadership = existing.AiLeadership
	}
	if existing.AiPriorResearchManual != nil {
		merged.AiPriorResearch = existing.AiPriorResearch
	}
	if existing.AiLocationsManual != nil {
		merged.AiLocations = existing.AiLocations
	}

	if existing.HasPrimaryOverride() {
		merged.SourceHash = existing.SourceHash
	}

	return merged
}
