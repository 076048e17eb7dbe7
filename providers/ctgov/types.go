// Package ctgov enthält die Logik für die Interaktion mit der ClinicalTrials.gov API v2.
package ctgov

// SearchResponse repräsentiert eine Seite der /studies-Suche.
type SearchResponse struct {
	Studies       []Study `json:"studies"`
	NextPageToken string  `json:"nextPageToken"`
}

// Study repräsentiert eine einzelne Studie. Die Registry liefert deutlich mehr
// Felder; hier sind nur die Teilbäume typisiert, die wir tatsächlich lesen.
type Study struct {
	ProtocolSection ProtocolSection `json:"protocolSection"`
}

// ProtocolSection bündelt die Module des Studienprotokolls.
type ProtocolSection struct {
	IdentificationModule       IdentificationModule       `json:"identificationModule"`
	StatusModule               StatusModule               `json:"statusModule"`
	DescriptionModule          DescriptionModule          `json:"descriptionModule"`
	ConditionsModule           ConditionsModule           `json:"conditionsModule"`
	DesignModule               DesignModule               `json:"designModule"`
	ArmsInterventionsModule    ArmsInterventionsModule    `json:"armsInterventionsModule"`
	EligibilityModule          EligibilityModule          `json:"eligibilityModule"`
	ContactsLocationsModule    ContactsLocationsModule    `json:"contactsLocationsModule"`
	SponsorCollaboratorsModule SponsorCollaboratorsModule `json:"sponsorCollaboratorsModule"`
}

// IdentificationModule enthält NCT-ID und Titel.
type IdentificationModule struct {
	NCTID      string `json:"nctId"`
	BriefTitle string `json:"briefTitle"`
}

// DateStruct ist ein partielles Datum der Registry ("2024", "2024-03" oder "2024-03-15").
type DateStruct struct {
	Date string `json:"date"`
}

// StatusModule enthält Lifecycle-Status und Schlüsseldaten.
type StatusModule struct {
	OverallStatus             string     `json:"overallStatus"`
	StartDateStruct           DateStruct `json:"startDateStruct"`
	PrimaryCompletionDateStruct DateStruct `json:"primaryCompletionDateStruct"`
	CompletionDateStruct      DateStruct `json:"completionDateStruct"`
	LastUpdatePostDateStruct  DateStruct `json:"lastUpdatePostDateStruct"`
}

// DescriptionModule enthält die Freitext-Beschreibungen.
type DescriptionModule struct {
	BriefSummary        string `json:"briefSummary"`
	DetailedDescription string `json:"detailedDescription"`
}

// ConditionsModule enthält Indikationen und Keywords.
type ConditionsModule struct {
	Conditions []string `json:"conditions"`
	Keywords   []string `json:"keywords"`
}

// DesignModule beschreibt den Studientyp und das Design.
type DesignModule struct {
	StudyType  string     `json:"studyType"`
	DesignInfo DesignInfo `json:"designInfo"`
}

// DesignInfo enthält Allocation, Interventionsmodell und Verblindung.
type DesignInfo struct {
	Allocation        string      `json:"allocation"`
	InterventionModel string      `json:"interventionModel"`
	MaskingInfo       MaskingInfo `json:"maskingInfo"`
}

// MaskingInfo enthält die Verblindungsangabe.
type MaskingInfo struct {
	Masking string `json:"masking"`
}

// ArmsInterventionsModule enthält Studienarme und Interventionen.
type ArmsInterventionsModule struct {
	ArmGroups     []ArmGroup     `json:"armGroups"`
	Interventions []Intervention `json:"interventions"`
}

// ArmGroup ist ein einzelner Studienarm.
type ArmGroup struct {
	Label       string `json:"label"`
	Description string `json:"description"`
}

// Intervention ist eine getestete Intervention (Medikament, Device, Verfahren).
type Intervention struct {
	Type string `json:"type"`
	Name string `json:"name"`
}

// EligibilityModule enthält den Einschluss-/Ausschluss-Freitext.
type EligibilityModule struct {
	EligibilityCriteria string `json:"eligibilityCriteria"`
}

// ContactsLocationsModule enthält zentrale Kontakte und Studienorte.
type ContactsLocationsModule struct {
	CentralContacts []Contact  `json:"centralContacts"`
	Locations       []Location `json:"locations"`
}

// Contact ist ein zentraler Ansprechpartner der Studie.
type Contact struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
	Email string `json:"email"`
}

// Location ist ein einzelner Studienort.
type Location struct {
	Facility string `json:"facility"`
	City     string `json:"city"`
	State    string `json:"state"`
	Country  string `json:"country"`
}

// SponsorCollaboratorsModule enthält den Sponsor.
type SponsorCollaboratorsModule struct {
	LeadSponsor LeadSponsor `json:"leadSponsor"`
}

// LeadSponsor ist der federführende Sponsor.
type LeadSponsor struct {
	Name string `json:"name"`
}

// NCTID ist ein Bequemlichkeits-Accessor für die Registry-ID.
func (s *Study) NCTID() string {
	return s.ProtocolSection.IdentificationModule.NCTID
}

// InterventionNames gibt die nicht-leeren Namen aller Interventionen zurück.
func (s *Study) InterventionNames() []string {
	var names []string
	for _, iv := range s.ProtocolSection.ArmsInterventionsModule.Interventions {
		if iv.Name != "" {
			names = append(names, iv.Name)
		}
	}
	return names
}
