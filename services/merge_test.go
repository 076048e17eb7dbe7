package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"trial-hand/models"
)

func strPtr(s string) *string { return &s }

func mergeFixtures() (models.ClinicalTrial, models.ClinicalTrial) {
	oldTime := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	newTime := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)

	existing := models.ClinicalTrial{
		ID:                 7,
		CreatedAt:          oldTime,
		NCTID:              "NCT00000001",
		Tenant:             "HS",
		ShortTitle:         "Old Short Title",
		AiSummary:          "Old summary.",
		AiSummaryUpdatedAt: &oldTime,
		AiPurpose:          "Old purpose.",
		AiEligibility:      "Old eligibility.",
		SourceHash:         "oldhash",
		LastSyncedAt:       &oldTime,
		IsActive:           false,
	}
	incoming := models.ClinicalTrial{
		NCTID:              "NCT00000001",
		Tenant:             "HS",
		ShortTitle:         "New Short Title",
		AiSummary:          "New summary.",
		AiSummaryUpdatedAt: &newTime,
		AiPurpose:          "New purpose.",
		AiEligibility:      "New eligibility.",
		SourceHash:         "newhash",
		LastSyncedAt:       &newTime,
		IsActive:           true,
	}
	return existing, incoming
}

func TestMergeTrialWithoutOverrides(t *testing.T) {
	existing, incoming := mergeFixtures()

	merged := MergeTrial(existing, incoming)

	assert.Equal(t, uint(7), merged.ID)
	assert.Equal(t, existing.CreatedAt, merged.CreatedAt)
	assert.Equal(t, "New Short Title", merged.ShortTitle)
	assert.Equal(t, "New summary.", merged.AiSummary)
	assert.Equal(t, "New purpose.", merged.AiPurpose)
	assert.Equal(t, "newhash", merged.SourceHash)
	assert.Equal(t, incoming.LastSyncedAt, merged.LastSyncedAt)
}

func TestMergeTrialKeepsActiveFlag(t *testing.T) {
	// Ein redaktionell deaktivierter Trial darf durch den Sync nicht wieder
	// aktiv werden.
	existing, incoming := mergeFixtures()
	merged := MergeTrial(existing, incoming)
	assert.False(t, merged.IsActive)
}

func TestMergeTrialOverrideProtectsGeneratedTwin(t *testing.T) {
	existing, incoming := mergeFixtures()
	existing.AiEligibilityManual = strPtr("Editor eligibility.")

	merged := MergeTrial(existing, incoming)

	assert.Equal(t, "Old eligibility.", merged.AiEligibility)
	assert.Equal(t, strPtr("Editor eligibility."), merged.AiEligibilityManual)
	// Eligibility ist kein primäres Feld, der Hash wird trotzdem erneuert.
	assert.Equal(t, "newhash", merged.SourceHash)
	// Felder ohne Override werden normal aktualisiert.
	assert.Equal(t, "New summary.", merged.AiSummary)
}

func TestMergeTrialPrimaryOverridePinsFingerprint(t *testing.T) {
	for _, set := range []func(*models.ClinicalTrial){
		func(tr *models.ClinicalTrial) { tr.ShortTitleManual = strPtr("x") },
		func(tr *models.ClinicalTrial) { tr.AiSummaryManual = strPtr("x") },
		func(tr *models.ClinicalTrial) { tr.AiPurposeManual = strPtr("x") },
	} {
		existing, incoming := mergeFixtures()
		set(&existing)
		merged := MergeTrial(existing, incoming)
		assert.Equal(t, "oldhash", merged.SourceHash)
	}
}

func TestMergeTrialSummaryOverrideKeepsTimestamp(t *testing.T) {
	existing, incoming := mergeFixtures()
	existing.AiSummaryManual = strPtr("Editor summary.")

	merged := MergeTrial(existing, incoming)

	assert.Equal(t, "Old summary.", merged.AiSummary)
	assert.Equal(t, existing.AiSummaryUpdatedAt, merged.AiSummaryUpdatedAt)
}

func TestMergeTrialAllOverridesSurvive(t *testing.T) {
	existing, incoming := mergeFixtures()
	existing.ShortTitleManual = strPtr("a")
	existing.AiSummaryManual = strPtr("b")
	existing.AiPurposeManual = strPtr("c")
	existing.AiTreatmentsManual = strPtr("d")
	existing.AiDesignManual = strPtr("e")
	existing.AiEligibilityManual = strPtr("f")
	existing.AiParticipationManual = strPtr("g")
	existing.AiLeadershipManual = strPtr("h")
	existing.AiPriorResearchManual = strPtr("i")
	existing.AiLocationsManual = strPtr("j")

	merged := MergeTrial(existing, incoming)

	assert.Equal(t, strPtr("a"), merged.ShortTitleManual)
	assert.Equal(t, strPtr("b"), merged.AiSummaryManual)
	assert.Equal(t, strPtr("c"), merged.AiPurposeManual)
	assert.Equal(t, strPtr("d"), merged.AiTreatmentsManual)
	assert.Equal(t, strPtr("e"), merged.AiDesignManual)
	assert.Equal(t, strPtr("f"), merged.AiEligibilityManual)
	assert.Equal(t, strPtr("g"), merged.AiParticipationManual)
	assert.Equal(t, strPtr("h"), merged.AiLeadershipManual)
	assert.Equal(t, strPtr("i"), merged.AiPriorResearchManual)
	assert.Equal(t, strPtr("j"), merged.AiLocationsManual)
}
