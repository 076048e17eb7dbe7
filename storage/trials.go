package storage

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"trial-hand/models"
	"trial-hand/services"
)

// TrialStore ist der GORM-basierte Speicher für Trial-Records.
type TrialStore struct {
	DB     *gorm.DB
	Logger *zap.Logger
}

// NewTrialStore erstellt einen neuen TrialStore.
func NewTrialStore(db *gorm.DB, logger *zap.Logger) *TrialStore {
	return &TrialStore{DB: db, Logger: logger}
}

// Lookup holt den bestehenden Record für (tenant, nctID). Gibt (nil, nil)
// zurück, wenn keiner existiert.
func (s *TrialStore) Lookup(ctx context.Context, tenant, nctID string) (*models.ClinicalTrial, error) {
	var trial models.ClinicalTrial
	err := s.DB.WithContext(ctx).
		Where("tenant = ? AND nct_id = ?", tenant, nctID).
		First(&trial).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &trial, nil
}

// Upsert schreibt einen Trial-Record atomar: Insert, wenn noch keiner
// existiert, sonst Merge mit dem bestehenden Record. Der Merge selbst passiert
// in services.MergeTrial im Speicher; die Transaktion sorgt dafür, dass
// Lesen und Schreiben nicht auseinanderlaufen.
func (s *TrialStore) Upsert(ctx context.Context, incoming models.ClinicalTrial) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing models.ClinicalTrial
		err := tx.Where("tenant = ? AND nct_id = ?", incoming.Tenant, incoming.NCTID).
			First(&existing).Error

		if errors.Is(err, gorm.ErrRecordNotFound) {
			if err := tx.Create(&incoming).Error; err != nil {
				s.Logger.Error("Trial-Insert fehlgeschlagen",
					zap.String("nct_id", incoming.NCTID), zap.Error(err))
				return err
			}
			return nil
		}
		if err != nil {
			return err
		}

		merged := services.MergeTrial(existing, incoming)
		if err := tx.Save(&merged).Error; err != nil {
			s.Logger.Error("Trial-Update fehlgeschlagen",
				zap.String("nct_id", incoming.NCTID), zap.Error(err))
			return err
		}
		return nil
	})
}
