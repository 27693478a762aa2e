// File: internal/profile/store.go
package profile

import (
	"context"

	"github.com/google/uuid"
)

// Store is the owner-scoped entity store behind the profile service. Every
// operation filters by owner at the storage boundary; a caller can never
// reach another owner's rows through this interface.
//
// Deletes are idempotent: removing an id that does not exist (or is owned by
// someone else) is a successful no-op. Updates of a missing or foreign id
// return common.ErrNotFound. Singleton reads return common.ErrNotFound when
// never written; the service layer substitutes defaults.
type Store interface {
	ListExperiences(ctx context.Context, ownerID uuid.UUID) ([]ProfessionalExperience, error)
	CreateExperience(ctx context.Context, exp *ProfessionalExperience) error
	UpdateExperience(ctx context.Context, ownerID, id uuid.UUID, exp *ProfessionalExperience) error
	DeleteExperience(ctx context.Context, ownerID, id uuid.UUID) error

	ListAcademicRecords(ctx context.Context, ownerID uuid.UUID) ([]AcademicRecord, error)
	CreateAcademicRecord(ctx context.Context, rec *AcademicRecord) error
	UpdateAcademicRecord(ctx context.Context, ownerID, id uuid.UUID, rec *AcademicRecord) error
	DeleteAcademicRecord(ctx context.Context, ownerID, id uuid.UUID) error

	ListLanguages(ctx context.Context, ownerID uuid.UUID) ([]Language, error)
	CreateLanguage(ctx context.Context, lang *Language) error
	DeleteLanguage(ctx context.Context, ownerID, id uuid.UUID) error

	ListTools(ctx context.Context, ownerID uuid.UUID) ([]Tool, error)
	CreateTool(ctx context.Context, tool *Tool) error
	DeleteTool(ctx context.Context, ownerID, id uuid.UUID) error

	ListReferences(ctx context.Context, ownerID uuid.UUID) ([]Reference, error)
	CreateReference(ctx context.Context, ref *Reference) error
	UpdateReference(ctx context.Context, ownerID, id uuid.UUID, ref *Reference) error
	DeleteReference(ctx context.Context, ownerID, id uuid.UUID) error

	GetPersonalData(ctx context.Context, ownerID uuid.UUID) (*PersonalData, error)
	UpsertPersonalData(ctx context.Context, data *PersonalData) error

	GetSettings(ctx context.Context, ownerID uuid.UUID) (*UserSettings, error)
	UpsertSettings(ctx context.Context, settings *UserSettings) error
}
