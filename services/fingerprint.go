package services

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"

	"trial-hand/providers/ctgov"
)

// fingerprintSource ist das kanonische Objekt, über das der Fingerprint
// gebildet wird. Feste Feldreihenfolge, nur diese vier Felder: Änderungen an
// allem anderen in der Studie dürfen keine Regenerierung auslösen.
type fingerprintSource struct {
	Title       string   `json:"title"`
	Conditions  []string `json:"conditions"`
	Eligibility string   `json:"eligibility"`
	Status      string   `json:"status"`
}

// Fingerprint berechnet den SHA-256-Hexdigest über die vier inhaltlich
// relevanten Felder einer Studie.
func Fingerprint(study ctgov.Study) string {
	p := study.ProtocolSection

	conditions := p.ConditionsModule.Conditions
	if conditions == nil {
		conditions = []string{}
	}

	src := fingerprintSource{
		Title:       p.IdentificationModule.BriefTitle,
		Conditions:  conditions,
		Eligibility: p.EligibilityModule.EligibilityCriteria,
		Status:      p.StatusModule.OverallStatus,
	}

	// json.Marshal über ein Struct ist deterministisch (Feldreihenfolge = Deklarationsreihenfolge).
	payload, _ := json.Marshal(src)
	sum := sha256.Sum256(payload)
	return hex.EncodeToString(sum[:])
}
