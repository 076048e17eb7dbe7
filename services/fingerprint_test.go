package services

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"trial-hand/providers/ctgov"
)

func fingerprintStudy() ctgov.Study {
	var s ctgov.Study
	s.ProtocolSection.IdentificationModule.BriefTitle = "A Study of Something"
	s.ProtocolSection.ConditionsModule.Conditions = []string{"Hidradenitis Suppurativa"}
	s.ProtocolSection.EligibilityModule.EligibilityCriteria = "Inclusion: adults. Exclusion: none."
	s.ProtocolSection.StatusModule.OverallStatus = "RECRUITING"
	return s
}

func TestFingerprintDeterministic(t *testing.T) {
	s := fingerprintStudy()
	assert.Equal(t, Fingerprint(s), Fingerprint(s))
	assert.Len(t, Fingerprint(s), 64)
}

func TestFingerprintIgnoresIrrelevantFields(t *testing.T) {
	a := fingerprintStudy()
	b := fingerprintStudy()
	// Änderungen außerhalb der vier Fingerprint-Felder dürfen den Hash nicht kippen.
	b.ProtocolSection.DescriptionModule.BriefSummary = "completely new description"
	b.ProtocolSection.StatusModule.LastUpdatePostDateStruct.Date = "2026-01-01"
	b.ProtocolSection.SponsorCollaboratorsModule.LeadSponsor.Name = "New Sponsor Inc."
	assert.Equal(t, Fingerprint(a), Fingerprint(b))
}

func TestFingerprintChangesOnRelevantFields(t *testing.T) {
	base := Fingerprint(fingerprintStudy())

	title := fingerprintStudy()
	title.ProtocolSection.IdentificationModule.BriefTitle = "Renamed Study"
	assert.NotEqual(t, base, Fingerprint(title))

	status := fingerprintStudy()
	status.ProtocolSection.StatusModule.OverallStatus = "COMPLETED"
	assert.NotEqual(t, base, Fingerprint(status))

	eligibility := fingerprintStudy()
	eligibility.ProtocolSection.EligibilityModule.EligibilityCriteria = "Inclusion: adults over 21."
	assert.NotEqual(t, base, Fingerprint(eligibility))

	conditions := fingerprintStudy()
	conditions.ProtocolSection.ConditionsModule.Conditions = []string{"Hidradenitis Suppurativa", "Acne Inversa"}
	assert.NotEqual(t, base, Fingerprint(conditions))
}

func TestFingerprintNilConditionsStable(t *testing.T) {
	// nil und leere Condition-Liste müssen denselben Hash ergeben, sonst
	// würde jede Registry-Antwort ohne Conditions eine Regenerierung auslösen.
	a := fingerprintStudy()
	a.ProtocolSection.ConditionsModule.Conditions = nil
	b := fingerprintStudy()
	b.ProtocolSection.ConditionsModule.Conditions = []string{}
	assert.Equal(t, Fingerprint(a), Fingerprint(b))
}
