// File: internal/profile/firestore_store.go
package profile

import (
	"context"
	"fmt"
	"sort"
	"time"

	"cv_bank_backend/internal/common"

	"cloud.google.com/go/firestore"
	"github.com/google/uuid"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Firestore collection names mirror the relational table names.
const (
	colPersonalData = "personal_data"
	colExperiences  = "professional_experiences"
	colAcademic     = "academic_records"
	colLanguages    = "languages"
	colTools        = "tools"
	colReferences   = "references"
	colSettings     = "user_settings"
)

type firestoreStore struct {
	client *firestore.Client
}

// NewFirestoreStore creates the Cloud Firestore entity store (firebase
// backend). Generated entities are documents keyed by UUID with a user_id
// field; singletons are keyed by the owner's ID so the upsert is a plain Set.
func NewFirestoreStore(client *firestore.Client) Store {
	return &firestoreStore{client: client}
}

// experienceDoc is the Firestore projection of ProfessionalExperience.
type experienceDoc struct {
	UserID      string     `firestore:"user_id"`
	Company     string     `firestore:"company"`
	Role        string     `firestore:"role"`
	Country     string     `firestore:"country"`
	StartDate   time.Time  `firestore:"start_date"`
	EndDate     *time.Time `firestore:"end_date"`
	IsCurrent   bool       `firestore:"is_current"`
	Description string     `firestore:"description"`
	CreatedAt   time.Time  `firestore:"created_at"`
	UpdatedAt   time.Time  `firestore:"updated_at"`
}

type academicDoc struct {
	UserID       string     `firestore:"user_id"`
	Institution  string     `firestore:"institution"`
	Degree       string     `firestore:"degree"`
	FieldOfStudy string     `firestore:"field_of_study"`
	StartDate    time.Time  `firestore:"start_date"`
	EndDate      *time.Time `firestore:"end_date"`
	InProgress   bool       `firestore:"in_progress"`
	Description  string     `firestore:"description"`
	CreatedAt    time.Time  `firestore:"created_at"`
	UpdatedAt    time.Time  `firestore:"updated_at"`
}

type languageDoc struct {
	UserID    string    `firestore:"user_id"`
	Name      string    `firestore:"name"`
	Level     string    `firestore:"level"`
	CreatedAt time.Time `firestore:"created_at"`
	UpdatedAt time.Time `firestore:"updated_at"`
}

type toolDoc struct {
	UserID    string    `firestore:"user_id"`
	Name      string    `firestore:"name"`
	Category  string    `firestore:"category"`
	CreatedAt time.Time `firestore:"created_at"`
	UpdatedAt time.Time `firestore:"updated_at"`
}

type referenceDoc struct {
	UserID       string    `firestore:"user_id"`
	Name         string    `firestore:"name"`
	Relationship string    `firestore:"relationship"`
	Company      string    `firestore:"company"`
	Email        string    `firestore:"email"`
	Phone        string    `firestore:"phone"`
	CreatedAt    time.Time `firestore:"created_at"`
	UpdatedAt    time.Time `firestore:"updated_at"`
}

type personalDataDoc struct {
	UserID    string    `firestore:"user_id"`
	FullName  string    `firestore:"full_name"`
	Email     string    `firestore:"email"`
	Phone     string    `firestore:"phone"`
	Address   string    `firestore:"address"`
	City      string    `firestore:"city"`
	Country   string    `firestore:"country"`
	Summary   string    `firestore:"summary"`
	CreatedAt time.Time `firestore:"created_at"`
	UpdatedAt time.Time `firestore:"updated_at"`
}

type settingsDoc struct {
	UserID               string    `firestore:"user_id"`
	NotifyNewOpportunity bool      `firestore:"notify_new_opportunity"`
	CreatedAt            time.Time `firestore:"created_at"`
	UpdatedAt            time.Time `firestore:"updated_at"`
}

// stampNew assigns an ID and timestamps to a freshly created entity.
func stampNew(m *common.BaseModel) {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	now := time.Now().UTC()
	m.CreatedAt = now
	m.UpdatedAt = now
}

func parseEntityID(docID string) (uuid.UUID, error) {
	id, err := uuid.Parse(docID)
	if err != nil {
		return uuid.Nil, fmt.Errorf("stored entity has malformed ID %q: %w", docID, err)
	}
	return id, nil
}

// ownedSnap fetches a document and verifies it belongs to ownerID. A missing
// document or an owner mismatch both come back as nil snapshot, no error,
// so deletes stay idempotent and updates can map to NotFound.
func (s *firestoreStore) ownedSnap(ctx context.Context, col string, ownerID, id uuid.UUID) (*firestore.DocumentSnapshot, error) {
	snap, err := s.client.Collection(col).Doc(id.String()).Get(ctx)
	if status.Code(err) == codes.NotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	owner, err := snap.DataAt("user_id")
	if err != nil {
		return nil, err
	}
	if ownerStr, ok := owner.(string); !ok || ownerStr != ownerID.String() {
		return nil, nil
	}
	return snap, nil
}

func (s *firestoreStore) ownedQuery(col string, ownerID uuid.UUID) firestore.Query {
	return s.client.Collection(col).Where("user_id", "==", ownerID.String())
}

func (s *firestoreStore) deleteOwned(ctx context.Context, col string, ownerID, id uuid.UUID) error {
	snap, err := s.ownedSnap(ctx, col, ownerID, id)
	if err != nil {
		return err
	}
	if snap == nil {
		return nil // idempotent
	}
	_, err = snap.Ref.Delete(ctx)
	return err
}

// --- Professional experiences ---

func (s *firestoreStore) ListExperiences(ctx context.Context, ownerID uuid.UUID) ([]ProfessionalExperience, error) {
	iter := s.ownedQuery(colExperiences, ownerID).Documents(ctx)
	defer iter.Stop()

	var exps []ProfessionalExperience
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, err
		}
		var doc experienceDoc
		if err := snap.DataTo(&doc); err != nil {
			return nil, err
		}
		id, err := parseEntityID(snap.Ref.ID)
		if err != nil {
			return nil, err
		}
		exps = append(exps, ProfessionalExperience{
			BaseModel:   common.BaseModel{ID: id, CreatedAt: doc.CreatedAt, UpdatedAt: doc.UpdatedAt},
			UserID:      ownerID,
			Company:     doc.Company,
			Role:        doc.Role,
			Country:     doc.Country,
			StartDate:   doc.StartDate,
			EndDate:     doc.EndDate,
			IsCurrent:   doc.IsCurrent,
			Description: doc.Description,
		})
	}
	// Sorting client-side avoids a composite index on (user_id, start_date).
	sort.Slice(exps, func(i, j int) bool { return exps[i].StartDate.After(exps[j].StartDate) })
	return exps, nil
}

func (s *firestoreStore) CreateExperience(ctx context.Context, exp *ProfessionalExperience) error {
	stampNew(&exp.BaseModel)
	_, err := s.client.Collection(colExperiences).Doc(exp.ID.String()).Create(ctx, experienceDoc{
		UserID:      exp.UserID.String(),
		Company:     exp.Company,
		Role:        exp.Role,
		Country:     exp.Country,
		StartDate:   exp.StartDate,
		EndDate:     exp.EndDate,
		IsCurrent:   exp.IsCurrent,
		Description: exp.Description,
		CreatedAt:   exp.CreatedAt,
		UpdatedAt:   exp.UpdatedAt,
	})
	return err
}

func (s *firestoreStore) UpdateExperience(ctx context.Context, ownerID, id uuid.UUID, exp *ProfessionalExperience) error {
	snap, err := s.ownedSnap(ctx, colExperiences, ownerID, id)
	if err != nil {
		return err
	}
	if snap == nil {
		return common.ErrNotFound.WithDetails("Experience not found.")
	}
	var existing experienceDoc
	if err := snap.DataTo(&existing); err != nil {
		return err
	}
	exp.ID = id
	exp.UserID = ownerID
	exp.CreatedAt = existing.CreatedAt
	exp.UpdatedAt = time.Now().UTC()
	_, err = snap.Ref.Set(ctx, experienceDoc{
		UserID:      ownerID.String(),
		Company:     exp.Company,
		Role:        exp.Role,
		Country:     exp.Country,
		StartDate:   exp.StartDate,
		EndDate:     exp.EndDate,
		IsCurrent:   exp.IsCurrent,
		Description: exp.Description,
		CreatedAt:   exp.CreatedAt,
		UpdatedAt:   exp.UpdatedAt,
	})
	return err
}

func (s *firestoreStore) DeleteExperience(ctx context.Context, ownerID, id uuid.UUID) error {
	return s.deleteOwned(ctx, colExperiences, ownerID, id)
}

// --- Academic records ---

func (s *firestoreStore) ListAcademicRecords(ctx context.Context, ownerID uuid.UUID) ([]AcademicRecord, error) {
	iter := s.ownedQuery(colAcademic, ownerID).Documents(ctx)
	defer iter.Stop()

	var recs []AcademicRecord
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, err
		}
		var doc academicDoc
		if err := snap.DataTo(&doc); err != nil {
			return nil, err
		}
		id, err := parseEntityID(snap.Ref.ID)
		if err != nil {
			return nil, err
		}
		recs = append(recs, AcademicRecord{
			BaseModel:    common.BaseModel{ID: id, CreatedAt: doc.CreatedAt, UpdatedAt: doc.UpdatedAt},
			UserID:       ownerID,
			Institution:  doc.Institution,
			Degree:       doc.Degree,
			FieldOfStudy: doc.FieldOfStudy,
			StartDate:    doc.StartDate,
			EndDate:      doc.EndDate,
			InProgress:   doc.InProgress,
			Description:  doc.Description,
		})
	}
	sort.Slice(recs, func(i, j int) bool { return recs[i].StartDate.After(recs[j].StartDate) })
	return recs, nil
}

func (s *firestoreStore) CreateAcademicRecord(ctx context.Context, rec *AcademicRecord) error {
	stampNew(&rec.BaseModel)
	_, err := s.client.Collection(colAcademic).Doc(rec.ID.String()).Create(ctx, academicDoc{
		UserID:       rec.UserID.String(),
		Institution:  rec.Institution,
		Degree:       rec.Degree,
		FieldOfStudy: rec.FieldOfStudy,
		StartDate:    rec.StartDate,
		EndDate:      rec.EndDate,
		InProgress:   rec.InProgress,
		Description:  rec.Description,
		CreatedAt:    rec.CreatedAt,
		UpdatedAt:    rec.UpdatedAt,
	})
	return err
}

func (s *firestoreStore) UpdateAcademicRecord(ctx context.Context, ownerID, id uuid.UUID, rec *AcademicRecord) error {
	snap, err := s.ownedSnap(ctx, colAcademic, ownerID, id)
	if err != nil {
		return err
	}
	if snap == nil {
		return common.ErrNotFound.WithDetails("Academic record not found.")
	}
	var existing academicDoc
	if err := snap.DataTo(&existing); err != nil {
		return err
	}
	rec.ID = id
	rec.UserID = ownerID
	rec.CreatedAt = existing.CreatedAt
	rec.UpdatedAt = time.Now().UTC()
	_, err = snap.Ref.Set(ctx, academicDoc{
		UserID:       ownerID.String(),
		Institution:  rec.Institution,
		Degree:       rec.Degree,
		FieldOfStudy: rec.FieldOfStudy,
		StartDate:    rec.StartDate,
		EndDate:      rec.EndDate,
		InProgress:   rec.InProgress,
		Description:  rec.Description,
		CreatedAt:    rec.CreatedAt,
		UpdatedAt:    rec.UpdatedAt,
	})
	return err
}

func (s *firestoreStore) DeleteAcademicRecord(ctx context.Context, ownerID, id uuid.UUID) error {
	return s.deleteOwned(ctx, colAcademic, ownerID, id)
}

// --- Languages ---

func (s *firestoreStore) ListLanguages(ctx context.Context, ownerID uuid.UUID) ([]Language, error) {
	iter := s.ownedQuery(colLanguages, ownerID).Documents(ctx)
	defer iter.Stop()

	var langs []Language
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, err
		}
		var doc languageDoc
		if err := snap.DataTo(&doc); err != nil {
			return nil, err
		}
		id, err := parseEntityID(snap.Ref.ID)
		if err != nil {
			return nil, err
		}
		langs = append(langs, Language{
			BaseModel: common.BaseModel{ID: id, CreatedAt: doc.CreatedAt, UpdatedAt: doc.UpdatedAt},
			UserID:    ownerID,
			Name:      doc.Name,
			Level:     doc.Level,
		})
	}
	sort.Slice(langs, func(i, j int) bool { return langs[i].Name < langs[j].Name })
	return langs, nil
}

func (s *firestoreStore) CreateLanguage(ctx context.Context, lang *Language) error {
	stampNew(&lang.BaseModel)
	_, err := s.client.Collection(colLanguages).Doc(lang.ID.String()).Create(ctx, languageDoc{
		UserID:    lang.UserID.String(),
		Name:      lang.Name,
		Level:     lang.Level,
		CreatedAt: lang.CreatedAt,
		UpdatedAt: lang.UpdatedAt,
	})
	return err
}

func (s *firestoreStore) DeleteLanguage(ctx context.Context, ownerID, id uuid.UUID) error {
	return s.deleteOwned(ctx, colLanguages, ownerID, id)
}

// --- Tools ---

func (s *firestoreStore) ListTools(ctx context.Context, ownerID uuid.UUID) ([]Tool, error) {
	iter := s.ownedQuery(colTools, ownerID).Documents(ctx)
	defer iter.Stop()

	var tools []Tool
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, err
		}
		var doc toolDoc
		if err := snap.DataTo(&doc); err != nil {
			return nil, err
		}
		id, err := parseEntityID(snap.Ref.ID)
		if err != nil {
			return nil, err
		}
		tools = append(tools, Tool{
			BaseModel: common.BaseModel{ID: id, CreatedAt: doc.CreatedAt, UpdatedAt: doc.UpdatedAt},
			UserID:    ownerID,
			Name:      doc.Name,
			Category:  doc.Category,
		})
	}
	sort.Slice(tools, func(i, j int) bool { return tools[i].Name < tools[j].Name })
	return tools, nil
}

func (s *firestoreStore) CreateTool(ctx context.Context, tool *Tool) error {
	stampNew(&tool.BaseModel)
	_, err := s.client.Collection(colTools).Doc(tool.ID.String()).Create(ctx, toolDoc{
		UserID:    tool.UserID.String(),
		Name:      tool.Name,
		Category:  tool.Category,
		CreatedAt: tool.CreatedAt,
		UpdatedAt: tool.UpdatedAt,
	})
	return err
}

func (s *firestoreStore) DeleteTool(ctx context.Context, ownerID, id uuid.UUID) error {
	return s.deleteOwned(ctx, colTools, ownerID, id)
}

// --- References ---

func (s *firestoreStore) ListReferences(ctx context.Context, ownerID uuid.UUID) ([]Reference, error) {
	iter := s.ownedQuery(colReferences, ownerID).Documents(ctx)
	defer iter.Stop()

	var refs []Reference
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, err
		}
		var doc referenceDoc
		if err := snap.DataTo(&doc); err != nil {
			return nil, err
		}
		id, err := parseEntityID(snap.Ref.ID)
		if err != nil {
			return nil, err
		}
		refs = append(refs, Reference{
			BaseModel:    common.BaseModel{ID: id, CreatedAt: doc.CreatedAt, UpdatedAt: doc.UpdatedAt},
			UserID:       ownerID,
			Name:         doc.Name,
			Relationship: doc.Relationship,
			Company:      doc.Company,
			Email:        doc.Email,
			Phone:        doc.Phone,
		})
	}
	sort.Slice(refs, func(i, j int) bool { return refs[i].Name < refs[j].Name })
	return refs, nil
}

func (s *firestoreStore) CreateReference(ctx context.Context, ref *Reference) error {
	stampNew(&ref.BaseModel)
	_, err := s.client.Collection(colReferences).Doc(ref.ID.String()).Create(ctx, referenceDoc{
		UserID:       ref.UserID.String(),
		Name:         ref.Name,
		Relationship: ref.Relationship,
		Company:      ref.Company,
		Email:        ref.Email,
		Phone:        ref.Phone,
		CreatedAt:    ref.CreatedAt,
		UpdatedAt:    ref.UpdatedAt,
	})
	return err
}

func (s *firestoreStore) UpdateReference(ctx context.Context, ownerID, id uuid.UUID, ref *Reference) error {
	snap, err := s.ownedSnap(ctx, colReferences, ownerID, id)
	if err != nil {
		return err
	}
	if snap == nil {
		return common.ErrNotFound.WithDetails("Reference not found.")
	}
	var existing referenceDoc
	if err := snap.DataTo(&existing); err != nil {
		return err
	}
	ref.ID = id
	ref.UserID = ownerID
	ref.CreatedAt = existing.CreatedAt
	ref.UpdatedAt = time.Now().UTC()
	_, err = snap.Ref.Set(ctx, referenceDoc{
		UserID:       ownerID.String(),
		Name:         ref.Name,
		Relationship: ref.Relationship,
		Company:      ref.Company,
		Email:        ref.Email,
		Phone:        ref.Phone,
		CreatedAt:    ref.CreatedAt,
		UpdatedAt:    ref.UpdatedAt,
	})
	return err
}

func (s *firestoreStore) DeleteReference(ctx context.Context, ownerID, id uuid.UUID) error {
	return s.deleteOwned(ctx, colReferences, ownerID, id)
}

// --- Singletons (document ID == owner ID, so upsert is a plain Set) ---

func (s *firestoreStore) GetPersonalData(ctx context.Context, ownerID uuid.UUID) (*PersonalData, error) {
	snap, err := s.client.Collection(colPersonalData).Doc(ownerID.String()).Get(ctx)
	if status.Code(err) == codes.NotFound {
		return nil, common.ErrNotFound.WithDetails("Personal data not written yet.")
	}
	if err != nil {
		return nil, err
	}
	var doc personalDataDoc
	if err := snap.DataTo(&doc); err != nil {
		return nil, err
	}
	return &PersonalData{
		BaseModel: common.BaseModel{ID: ownerID, CreatedAt: doc.CreatedAt, UpdatedAt: doc.UpdatedAt},
		UserID:    ownerID,
		FullName:  doc.FullName,
		Email:     doc.Email,
		Phone:     doc.Phone,
		Address:   doc.Address,
		City:      doc.City,
		Country:   doc.Country,
		Summary:   doc.Summary,
	}, nil
}

func (s *firestoreStore) UpsertPersonalData(ctx context.Context, data *PersonalData) error {
	now := time.Now().UTC()
	if data.CreatedAt.IsZero() {
		data.CreatedAt = now
	}
	data.UpdatedAt = now
	data.ID = data.UserID
	_, err := s.client.Collection(colPersonalData).Doc(data.UserID.String()).Set(ctx, personalDataDoc{
		UserID:    data.UserID.String(),
		FullName:  data.FullName,
		Email:     data.Email,
		Phone:     data.Phone,
		Address:   data.Address,
		City:      data.City,
		Country:   data.Country,
		Summary:   data.Summary,
		CreatedAt: data.CreatedAt,
		UpdatedAt: data.UpdatedAt,
	})
	return err
}

func (s *firestoreStore) GetSettings(ctx context.Context, ownerID uuid.UUID) (*UserSettings, error) {
	snap, err := s.client.Collection(colSettings).Doc(ownerID.String()).Get(ctx)
	if status.Code(err) == codes.NotFound {
		return nil, common.ErrNotFound.WithDetails("Settings not written yet.")
	}
	if err != nil {
		return nil, err
	}
	var doc settingsDoc
	if err := snap.DataTo(&doc); err != nil {
		return nil, err
	}
	return &UserSettings{
		BaseModel:            common.BaseModel{ID: ownerID, CreatedAt: doc.CreatedAt, UpdatedAt: doc.UpdatedAt},
		UserID:               ownerID,
		NotifyNewOpportunity: doc.NotifyNewOpportunity,
	}, nil
}

func (s *firestoreStore) UpsertSettings(ctx context.Context, settings *UserSettings) error {
	now := time.Now().UTC()
	if settings.CreatedAt.IsZero() {
		settings.CreatedAt = now
	}
	settings.UpdatedAt = now
	settings.ID = settings.UserID
	_, err := s.client.Collection(colSettings).Doc(settings.UserID.String()).Set(ctx, settingsDoc{
		UserID:               settings.UserID.String(),
		NotifyNewOpportunity: settings.NotifyNewOpportunity,
		CreatedAt:            settings.CreatedAt,
		UpdatedAt:            settings.UpdatedAt,
	})
	return err
}
