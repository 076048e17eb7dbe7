package models

// TenantProfile beschreibt die Keyword-Regeln eines Tenants: mindestens ein
// Required-Begriff muss in den Conditions vorkommen, kein Exclude-Begriff darf
// vorkommen.
type TenantProfile struct {
	Required []string
	Exclude  []string
}

// TenantProfiles ist die statische Tenant-Konfiguration. Bewusst nicht in der
// Datenbank, die Profile ändern sich nur mit einem Deployment.
var TenantProfiles = map[string]TenantProfile{
	"HS": {
		Required: []string{"hidradenitis suppurativa", "hidradenitis"},
		Exclude:  []string{"mood", "parkinson", "glioblastoma"},
	},
	"NF": {
		Required: []string{"neurofibromatosis", "nf1", "nf2", "schwannomatosis"},
	},
	"EB": {
		Required: []string{"epidermolysis bullosa"},
	},
	"CF": {
		Required: []string{"cystic fibrosis"},
	},
}

// ProfileFor schlägt das Profil eines Tenants nach.
func ProfileFor(tenantKey string) (TenantProfile, bool) {
	p, ok := TenantProfiles[tenantKey]
	return p, ok
}
