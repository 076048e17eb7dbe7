package models

import (
	"time"

	"gorm.io/datatypes"
)

// ClinicalTrial repräsentiert eine Studie aus ClinicalTrials.gov inklusive der
// generierten Patienten-Texte. Eindeutig pro Tenant + NCT-ID.
type ClinicalTrial struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	NCTID  string `json:"nct_id" gorm:"column:nct_id;uniqueIndex:idx_trials_tenant_nct;not null"`
	Tenant string `json:"tenant" gorm:"uniqueIndex:idx_trials_tenant_nct;not null;index"`

	// Status- und Datumsfelder, normalisiert auf volle Kalendertage.
	OverallStatus         string     `json:"overall_status,omitempty" gorm:"index"`
	StartDate             *time.Time `json:"start_date,omitempty"`
	PrimaryCompletionDate *time.Time `json:"primary_completion_date,omitempty"`
	CompletionDate        *time.Time `json:"completion_date,omitempty"`
	LastUpdateDate        *time.Time `json:"last_update_date,omitempty"`

	Conditions datatypes.JSON `json:"conditions,omitempty" gorm:"type:jsonb"`
	Keywords   datatypes.JSON `json:"keywords,omitempty" gorm:"type:jsonb"`
	// Vollständiger Roh-Snapshot der Studie aus der Registry.
	RawData datatypes.JSON `json:"raw_data,omitempty" gorm:"type:jsonb"`

	// Generierte Patienten-Texte
	ShortTitle        string     `json:"short_title,omitempty" gorm:"type:text"`
	AiSummary         string     `json:"ai_summary,omitempty" gorm:"type:text"`
	AiSummaryUpdatedAt *time.Time `json:"ai_summary_updated_at,omitempty"`
	AiPurpose         string     `json:"ai_purpose,omitempty" gorm:"type:text"`
	AiTreatments      string     `json:"ai_treatments,omitempty" gorm:"type:text"`
	AiDesign          string     `json:"ai_design,omitempty" gorm:"type:text"`
	AiEligibility     string     `json:"ai_eligibility,omitempty" gorm:"type:text"`
	AiParticipation   string     `json:"ai_participation,omitempty" gorm:"type:text"`
	AiLeadership      string     `json:"ai_leadership,omitempty" gorm:"type:text"`
	AiPriorResearch   string     `json:"ai_prior_research,omitempty" gorm:"type:text"`
	AiLocations       string     `json:"ai_locations,omitempty" gorm:"type:text"`

	// Manuelle Overrides aus der Redaktion. NULL = kein Override, der
	// generierte Zwilling darf beim nächsten Sync überschrieben werden.
	ShortTitleManual      *string `json:"short_title_manual,omitempty" gorm:"type:text"`
	AiSummaryManual       *string `json:"ai_summary_manual,omitempty" gorm:"type:text"`
	AiPurposeManual       *string `json:"ai_purpose_manual,omitempty" gorm:"type:text"`
	AiTreatmentsManual    *string `json:"ai_treatments_manual,omitempty" gorm:"type:text"`
	AiDesignManual        *string `json:"ai_design_manual,omitempty" gorm:"type:text"`
	AiEligibilityManual   *string `json:"ai_eligibility_manual,omitempty" gorm:"type:text"`
	AiParticipationManual *string `json:"ai_participation_manual,omitempty" gorm:"type:text"`
	AiLeadershipManual    *string `json:"ai_leadership_manual,omitempty" gorm:"type:text"`
	AiPriorResearchManual *string `json:"ai_prior_research_manual,omitempty" gorm:"type:text"`
	AiLocationsManual     *string `json:"ai_locations_manual,omitempty" gorm:"type:text"`

	// Fingerprint über {title, conditions, eligibility, status} der Quelle.
	SourceHash   string     `json:"source_hash,omitempty" gorm:"index"`
	LastSyncedAt *time.Time `json:"last_synced_at,omitempty"`
	IsActive     bool       `json:"is_active" gorm:"default:true"`
}

// TableName gibt explizit den Tabellennamen an.
func (ClinicalTrial) TableName() string {
	return "clinical_trials"
}

// GeneratedComplete meldet, ob alle neun generierten Textfelder belegt sind.
// Ein unvollständiger früherer Lauf erzwingt so eine Neugenerierung.
func (t *ClinicalTrial) GeneratedComplete() bool {
	fields := []string{
		t.AiSummary,
		t.AiPurpose,
		t.AiTreatments,
		t.AiDesign,
		t.AiEligibility,
		t.AiParticipation,
		t.AiLeadership,
		t.AiPriorResearch,
		t.AiLocations,
	}
	for _, f := range fields {
		if f == "" {
			return false
		}
	}
	return true
}

// HasPrimaryOverride meldet, ob eines der drei primären Felder (Kurztitel,
// Summary, Purpose) manuell überschrieben wurde. Solche Records behalten ihren
// Fingerprint und bleiben damit gegen automatische Regenerierung gepinnt.
func (t *ClinicalTrial) HasPrimaryOverride() bool {
	return t.ShortTitleManual != nil || t.AiSummaryManual != nil || t.AiPurposeManual != nil
}
