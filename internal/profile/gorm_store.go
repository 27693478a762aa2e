// File: internal/profile/gorm_store.go
package profile

import (
	"context"
	"errors"
	"fmt"

	"cv_bank_backend/internal/common"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type gormStore struct {
	db *gorm.DB
}

// NewGORMStore creates the relational entity store. It serves both the
// embedded SQLite backend and the hosted PostgreSQL backend; owner isolation
// is the user_id filter on every query.
func NewGORMStore(db *gorm.DB) Store {
	return &gormStore{db: db}
}

func (s *gormStore) owned(ctx context.Context, ownerID uuid.UUID) *gorm.DB {
	return s.db.WithContext(ctx).Where("user_id = ?", ownerID)
}

// --- Professional experiences ---

func (s *gormStore) ListExperiences(ctx context.Context, ownerID uuid.UUID) ([]ProfessionalExperience, error) {
	var exps []ProfessionalExperience
	if err := s.owned(ctx, ownerID).Order("start_date DESC").Find(&exps).Error; err != nil {
		return nil, fmt.Errorf("failed to list experiences: %w", err)
	}
	return exps, nil
}

func (s *gormStore) CreateExperience(ctx context.Context, exp *ProfessionalExperience) error {
	if err := s.db.WithContext(ctx).Create(exp).Error; err != nil {
		return fmt.Errorf("failed to create experience: %w", err)
	}
	return nil
}

func (s *gormStore) UpdateExperience(ctx context.Context, ownerID, id uuid.UUID, exp *ProfessionalExperience) error {
	var existing ProfessionalExperience
	err := s.owned(ctx, ownerID).First(&existing, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return common.ErrNotFound.WithDetails("Experience not found.")
		}
		return fmt.Errorf("failed to find experience for update: %w", err)
	}

	existing.Company = exp.Company
	existing.Role = exp.Role
	existing.Country = exp.Country
	existing.StartDate = exp.StartDate
	existing.EndDate = exp.EndDate
	existing.IsCurrent = exp.IsCurrent
	existing.Description = exp.Description

	if err := s.db.WithContext(ctx).Save(&existing).Error; err != nil {
		return fmt.Errorf("failed to update experience: %w", err)
	}
	*exp = existing
	return nil
}

func (s *gormStore) DeleteExperience(ctx context.Context, ownerID, id uuid.UUID) error {
	// Idempotent: zero rows affected is still success.
	if err := s.owned(ctx, ownerID).Where("id = ?", id).Delete(&ProfessionalExperience{}).Error; err != nil {
		return fmt.Errorf("failed to delete experience: %w", err)
	}
	return nil
}

// --- Academic records ---

func (s *gormStore) ListAcademicRecords(ctx context.Context, ownerID uuid.UUID) ([]AcademicRecord, error) {
	var recs []AcademicRecord
	if err := s.owned(ctx, ownerID).Order("start_date DESC").Find(&recs).Error; err != nil {
		return nil, fmt.Errorf("failed to list academic records: %w", err)
	}
	return recs, nil
}

func (s *gormStore) CreateAcademicRecord(ctx context.Context, rec *AcademicRecord) error {
	if err := s.db.WithContext(ctx).Create(rec).Error; err != nil {
		return fmt.Errorf("failed to create academic record: %w", err)
	}
	return nil
}

func (s *gormStore) UpdateAcademicRecord(ctx context.Context, ownerID, id uuid.UUID, rec *AcademicRecord) error {
	var existing AcademicRecord
	err := s.owned(ctx, ownerID).First(&existing, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return common.ErrNotFound.WithDetails("Academic record not found.")
		}
		return fmt.Errorf("failed to find academic record for update: %w", err)
	}

	existing.Institution = rec.Institution
	existing.Degree = rec.Degree
	existing.FieldOfStudy = rec.FieldOfStudy
	existing.StartDate = rec.StartDate
	existing.EndDate = rec.EndDate
	existing.InProgress = rec.InProgress
	existing.Description = rec.Description

	if err := s.db.WithContext(ctx).Save(&existing).Error; err != nil {
		return fmt.Errorf("failed to update academic record: %w", err)
	}
	*rec = existing
	return nil
}

func (s *gormStore) DeleteAcademicRecord(ctx context.Context, ownerID, id uuid.UUID) error {
	if err := s.owned(ctx, ownerID).Where("id = ?", id).Delete(&AcademicRecord{}).Error; err != nil {
		return fmt.Errorf("failed to delete academic record: %w", err)
	}
	return nil
}

// --- Languages ---

func (s *gormStore) ListLanguages(ctx context.Context, ownerID uuid.UUID) ([]Language, error) {
	var langs []Language
	if err := s.owned(ctx, ownerID).Order("name ASC").Find(&langs).Error; err != nil {
		return nil, fmt.Errorf("failed to list languages: %w", err)
	}
	return langs, nil
}

func (s *gormStore) CreateLanguage(ctx context.Context, lang *Language) error {
	if err := s.db.WithContext(ctx).Create(lang).Error; err != nil {
		return fmt.Errorf("failed to create language: %w", err)
	}
	return nil
}

func (s *gormStore) DeleteLanguage(ctx context.Context, ownerID, id uuid.UUID) error {
	if err := s.owned(ctx, ownerID).Where("id = ?", id).Delete(&Language{}).Error; err != nil {
		return fmt.Errorf("failed to delete language: %w", err)
	}
	return nil
}

// --- Tools ---

func (s *gormStore) ListTools(ctx context.Context, ownerID uuid.UUID) ([]Tool, error) {
	var tools []Tool
	if err := s.owned(ctx, ownerID).Order("name ASC").Find(&tools).Error; err != nil {
		return nil, fmt.Errorf("failed to list tools: %w", err)
	}
	return tools, nil
}

func (s *gormStore) CreateTool(ctx context.Context, tool *Tool) error {
	if err := s.db.WithContext(ctx).Create(tool).Error; err != nil {
		return fmt.Errorf("failed to create tool: %w", err)
	}
	return nil
}

func (s *gormStore) DeleteTool(ctx context.Context, ownerID, id uuid.UUID) error {
	if err := s.owned(ctx, ownerID).Where("id = ?", id).Delete(&Tool{}).Error; err != nil {
		return fmt.Errorf("failed to delete tool: %w", err)
	}
	return nil
}

// --- References ---

func (s *gormStore) ListReferences(ctx context.Context, ownerID uuid.UUID) ([]Reference, error) {
	var refs []Reference
	if err := s.owned(ctx, ownerID).Order("name ASC").Find(&refs).Error; err != nil {
		return nil, fmt.Errorf("failed to list references: %w", err)
	}
	return refs, nil
}

func (s *gormStore) CreateReference(ctx context.Context, ref *Reference) error {
	if err := s.db.WithContext(ctx).Create(ref).Error; err != nil {
		return fmt.Errorf("failed to create reference: %w", err)
	}
	return nil
}

func (s *gormStore) UpdateReference(ctx context.Context, ownerID, id uuid.UUID, ref *Reference) error {
	var existing Reference
	err := s.owned(ctx, ownerID).First(&existing, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return common.ErrNotFound.WithDetails("Reference not found.")
		}
		return fmt.Errorf("failed to find reference for update: %w", err)
	}

	existing.Name = ref.Name
	existing.Relationship = ref.Relationship
	existing.Company = ref.Company
	existing.Email = ref.Email
	existing.Phone = ref.Phone

	if err := s.db.WithContext(ctx).Save(&existing).Error; err != nil {
		return fmt.Errorf("failed to update reference: %w", err)
	}
	*ref = existing
	return nil
}

func (s *gormStore) DeleteReference(ctx context.Context, ownerID, id uuid.UUID) error {
	if err := s.owned(ctx, ownerID).Where("id = ?", id).Delete(&Reference{}).Error; err != nil {
		return fmt.Errorf("failed to delete reference: %w", err)
	}
	return nil
}

// --- Singletons ---

func (s *gormStore) GetPersonalData(ctx context.Context, ownerID uuid.UUID) (*PersonalData, error) {
	var data PersonalData
	err := s.owned(ctx, ownerID).First(&data).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.ErrNotFound.WithDetails("Personal data not written yet.")
		}
		return nil, fmt.Errorf("failed to get personal data: %w", err)
	}
	return &data, nil
}

func (s *gormStore) UpsertPersonalData(ctx context.Context, data *PersonalData) error {
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"full_name", "email", "phone", "address", "city", "country", "summary", "updated_at",
		}),
	}).Create(data).Error
	if err != nil {
		return fmt.Errorf("failed to upsert personal data: %w", err)
	}
	return nil
}

func (s *gormStore) GetSettings(ctx context.Context, ownerID uuid.UUID) (*UserSettings, error) {
	var settings UserSettings
	err := s.owned(ctx, ownerID).First(&settings).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.ErrNotFound.WithDetails("Settings not written yet.")
		}
		return nil, fmt.Errorf("failed to get settings: %w", err)
	}
	return &settings, nil
}

func (s *gormStore) UpsertSettings(ctx context.Context, settings *UserSettings) error {
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"notify_new_opportunity", "updated_at",
		}),
	}).Create(settings).Error
	if err != nil {
		return fmt.Errorf("failed to upsert settings: %w", err)
	}
	return nil
}
