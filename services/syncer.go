package services

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"time"

	"go.uber.org/zap"
	"gorm.io/datatypes"

	"trial-hand/config"
	"trial-hand/models"
	"trial-hand/providers/ctgov"
)

// Registry liefert die Studien für einen Tenant.
type Registry interface {
	FetchAll(ctx context.Context, tenantKey string) ([]ctgov.Study, error)
}

// NarrativeGenerator erzeugt die Patienten-Texte für eine Studie.
type NarrativeGenerator interface {
	Generate(ctx context.Context, study ctgov.Study) (Narrative, error)
}

// TrialStore ist der persistente Speicher für Trial-Records. Lookup gibt
// (nil, nil) zurück, wenn noch kein Record existiert.
type TrialStore interface {
	Lookup(ctx context.Context, tenant, nctID string) (*models.ClinicalTrial, error)
	Upsert(ctx context.Context, trial models.ClinicalTrial) error
}

// SnapshotArchive archiviert den Roh-Snapshot einer Studie. Optional.
type SnapshotArchive interface {
	Archive(ctx context.Context, tenant, nctID string, raw []byte) error
}

// Result fasst die Zähler eines Sync-Laufs zusammen.
type Result struct {
	Processed int
	Skipped   int
	Errors    int
	Total     int
}

// Syncer orchestriert einen kompletten Sync-Lauf: Fetch, Tenant-Filter und pro
// Studie Freshness-Gate, Generierung und Upsert. Die Studien werden bewusst
// sequenziell verarbeitet: das hält die Progress-Events strikt geordnet und
// begrenzt die Last auf dem Generierungs-Backend.
type Syncer struct {
	Config    *config.Config
	Logger    *zap.Logger
	Registry  Registry
	Generator NarrativeGenerator
	Store     TrialStore
	Archive   SnapshotArchive
}

// NewSyncer erstellt einen neuen Syncer. archive darf nil sein.
func NewSyncer(cfg *config.Config, logger *zap.Logger, registry Registry, generator NarrativeGenerator, store TrialStore, archive SnapshotArchive) *Syncer {
	return &Syncer{
		Config:    cfg,
		Logger:    logger,
		Registry:  registry,
		Generator: generator,
		Store:     store,
		Archive:   archive,
	}
}

// Run führt einen Sync-Lauf für einen Tenant aus und emittiert pro Schritt
// Events über emit. Fehler an einzelnen Studien zählen hoch und der Lauf geht
// weiter; nur unbekannte Tenants und Fetch-Fehler sind fatal.
func (s *Syncer) Run(ctx context.Context, tenantKey string, emit EmitFunc) (Result, error) {
	log := s.Logger.With(zap.String("tenant", tenantKey))
	var res Result

	if _, ok := models.ProfileFor(tenantKey); !ok {
		err := fmt.Errorf("unbekannter tenant: %s", tenantKey)
		emit(FatalEvent{Type: EventFatal, Message: err.Error()})
		return res, err
	}

	emit(StatusEvent{
		Type:    EventStatus,
		Message: "Fetching studies from ClinicalTrials.gov...",
		Tenant:  tenantKey,
	})

	allStudies, err := s.Registry.FetchAll(ctx, tenantKey)
	if err != nil {
		log.Error("Studien-Fetch fehlgeschlagen", zap.Error(err))
		emit(FatalEvent{Type: EventFatal, Message: err.Error()})
		return res, err
	}

	var matching []ctgov.Study
	for _, study := range allStudies {
		if MatchesTenant(study, tenantKey) {
			matching = append(matching, study)
		}
	}
	res.Total = len(matching)

	emit(StatusEvent{
		Type:    EventStatus,
		Message: fmt.Sprintf("Found %d studies, %d match %s", len(allStudies), len(matching), tenantKey),
		Total:   len(matching),
	})
	log.Info("Studien gefiltert", zap.Int("fetched", len(allStudies)), zap.Int("matching", len(matching)))

	for i, study := range matching {
		// Abbruch nur zwischen zwei Studien, nie mitten in der Generierung.
		if err := ctx.Err(); err != nil {
			log.Warn("Sync-Lauf abgebrochen", zap.Int("current", i), zap.Error(err))
			return res, err
		}

		current := i + 1
		nctID := study.NCTID()

		if nctID == "" {
			res.Errors++
			emit(ErrorEvent{
				Type: EventError, Message: "study without nctId",
				Processed: res.Processed, Skipped: res.Skipped, Errors: res.Errors,
				Current: current, Total: res.Total, Percent: percent(current, res.Total),
			})
			continue
		}

		skip, err := s.shouldSkip(ctx, tenantKey, nctID, study)
		if err == nil && skip {
			res.Skipped++
			emit(ProgressEvent{
				Type: EventProgress, NCTID: nctID, Action: ActionSkipped, Reason: "Already up to date",
				Processed: res.Processed, Skipped: res.Skipped, Errors: res.Errors,
				Current: current, Total: res.Total, Percent: percent(current, res.Total),
			})
			continue
		}
		if err == nil {
			err = s.processStudy(ctx, tenantKey, nctID, study)
		}

		if err != nil {
			res.Errors++
			log.Error("Trial-Verarbeitung fehlgeschlagen", zap.String("nct_id", nctID), zap.Error(err))
			emit(ErrorEvent{
				Type: EventError, NCTID: nctID, Message: err.Error(),
				Processed: res.Processed, Skipped: res.Skipped, Errors: res.Errors,
				Current: current, Total: res.Total, Percent: percent(current, res.Total),
			})
			continue
		}

		res.Processed++
		emit(ProgressEvent{
			Type: EventProgress, NCTID: nctID, Action: ActionProcessed,
			Processed: res.Processed, Skipped: res.Skipped, Errors: res.Errors,
			Current: current, Total: res.Total, Percent: percent(current, res.Total),
		})
	}

	emit(CompleteEvent{
		Type: EventComplete, Message: "Sync complete!",
		Processed: res.Processed, Skipped: res.Skipped, Errors: res.Errors,
		Total: res.Total, Tenant: tenantKey,
	})
	log.Info("Sync-Lauf abgeschlossen",
		zap.Int("processed", res.Processed),
		zap.Int("skipped", res.Skipped),
		zap.Int("errors", res.Errors),
		zap.Int("total", res.Total))

	return res, nil
}

// shouldSkip entscheidet, ob die zwischengespeicherte Generierung noch gültig
// ist: ein früherer Record existiert, sein Fingerprint stimmt mit dem neuen
// überein, er ist jünger als das Freshness-Fenster und alle neun generierten
// Felder sind belegt. Ein unvollständiger früherer Lauf erzwingt Regenerierung,
// egal wie frisch er ist.
func (s *Syncer) shouldSkip(ctx context.Context, tenantKey, nctID string, study ctgov.Study) (bool, error) {
	newHash := Fingerprint(study)

	prior, err := s.Store.Lookup(ctx, tenantKey, nctID)
	if err != nil {
		return false, fmt.Errorf("lookup %s: %w", nctID, err)
	}
	if prior == nil || prior.SourceHash != newHash {
		return false, nil
	}
	if prior.LastSyncedAt == nil {
		return false, nil
	}
	freshness := time.Duration(s.Config.FreshnessDays) * 24 * time.Hour
	if time.Since(*prior.LastSyncedAt) > freshness {
		return false, nil
	}
	return prior.GeneratedComplete(), nil
}

// processStudy generiert die Texte für eine Studie und schreibt den Record.
func (s *Syncer) processStudy(ctx context.Context, tenantKey, nctID string, study ctgov.Study) error {
	narrative, err := s.Generator.Generate(ctx, study)
	if err != nil {
		return err
	}

	trial := buildTrial(tenantKey, study, narrative, Fingerprint(study), time.Now())
	if err := s.Store.Upsert(ctx, trial); err != nil {
		return fmt.Errorf("upsert %s: %w", nctID, err)
	}

	// Snapshot-Archiv ist Best-Effort; ein Fehler macht den Trial nicht kaputt.
	if s.Archive != nil {
		if err := s.Archive.Archive(ctx, tenantKey, nctID, trial.RawData); err != nil {
			s.Logger.Warn("Snapshot-Archivierung fehlgeschlagen",
				zap.String("nct_id", nctID), zap.Error(err))
		}
	}

	return nil
}

// buildTrial baut aus Studie und Narrative den zu persistierenden Record.
func buildTrial(tenantKey string, study ctgov.Study, n Narrative, hash string, now time.Time) models.ClinicalTrial {
	p := study.ProtocolSection

	conditions := p.ConditionsModule.Conditions
	if conditions == nil {
		conditions = []string{}
	}
	keywords := p.ConditionsModule.Keywords
	if keywords == nil {
		keywords = []string{}
	}

	conditionsJSON, _ := json.Marshal(conditions)
	keywordsJSON, _ := json.Marshal(keywords)
	rawJSON, _ := json.Marshal(study)

	return models.ClinicalTrial{
		NCTID:  p.IdentificationModule.NCTID,
		Tenant: tenantKey,

		OverallStatus:         p.StatusModule.OverallStatus,
		StartDate:             NormalizeDate(p.StatusModule.StartDateStruct.Date),
		PrimaryCompletionDate: NormalizeDate(p.StatusModule.PrimaryCompletionDateStruct.Date),
		CompletionDate:        NormalizeDate(p.StatusModule.CompletionDateStruct.Date),
		LastUpdateDate:        NormalizeDate(p.StatusModule.LastUpdatePostDateStruct.Date),

		Conditions: datatypes.JSON(conditionsJSON),
		Keywords:   datatypes.JSON(keywordsJSON),
		RawData:    datatypes.JSON(rawJSON),

		ShortTitle:         n.ShortTitle,
		AiSummary:          n.Summary,
		AiSummaryUpdatedAt: &now,
		AiPurpose:          n.Purpose,
		AiTreatments:       n.Treatments,
		AiDesign:           n.Design,
		AiEligibility:      n.Eligibility,
		AiParticipation:    n.Participation,
		AiLeadership:       n.Leadership,
		AiPriorResearch:    n.PriorResearch,
		AiLocations:        n.Locations,

		SourceHash:   hash,
		LastSyncedAt: &now,
		IsActive:     true,
	}
}

// percent rundet den Fortschritt auf ganze Prozent.
func percent(current, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(float64(current) / float64(total) * 100))
}
