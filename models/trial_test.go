package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func completeTrial() ClinicalTrial {
	return ClinicalTrial{
		AiSummary: "s", AiPurpose: "p", AiTreatments: "t", AiDesign: "d",
		AiEligibility: "e", AiParticipation: "pa", AiLeadership: "l",
		AiPriorResearch: "pr", AiLocations: "lo",
	}
}

func TestGeneratedComplete(t *testing.T) {
	trial := completeTrial()
	assert.True(t, trial.GeneratedComplete())

	trial.AiDesign = ""
	assert.False(t, trial.GeneratedComplete())

	assert.False(t, (&ClinicalTrial{}).GeneratedComplete())
}

func TestHasPrimaryOverride(t *testing.T) {
	v := "override"

	trial := completeTrial()
	assert.False(t, trial.HasPrimaryOverride())

	trial.ShortTitleManual = &v
	assert.True(t, trial.HasPrimaryOverride())

	trial = completeTrial()
	trial.AiSummaryManual = &v
	assert.True(t, trial.HasPrimaryOverride())

	trial = completeTrial()
	trial.AiPurposeManual = &v
	assert.True(t, trial.HasPrimaryOverride())

	// Sekundäre Overrides pinnen den Fingerprint nicht.
	trial = completeTrial()
	trial.AiLocationsManual = &v
	assert.False(t, trial.HasPrimaryOverride())
}
