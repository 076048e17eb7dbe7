package services

import (
	"strings"

	"trial-hand/models"
	"trial-hand/providers/ctgov"
)

// MatchesTenant prüft, ob eine Studie für einen Tenant relevant ist. Die
// Conditions der Studie werden zu einem lowercase-Haystack zusammengefügt;
// mindestens ein Required-Keyword muss als Substring vorkommen und keines der
// Exclude-Keywords darf vorkommen. Unbekannte Tenants matchen nie.
func MatchesTenant(study ctgov.Study, tenantKey string) bool {
	profile, ok := models.ProfileFor(tenantKey)
	if !ok {
		return false
	}

	haystack := strings.ToLower(strings.Join(study.ProtocolSection.ConditionsModule.Conditions, " "))

	matchesRequired := false
	for _, term := range profile.Required {
		if strings.Contains(haystack, strings.ToLower(term)) {
			matchesRequired = true
			break
		}
	}
	if !matchesRequired {
		return false
	}

	for _, term := range profile.Exclude {
		if strings.Contains(haystack, strings.ToLower(term)) {
			return false
		}
	}

	return true
}
