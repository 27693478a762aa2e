package profile

import (
	"context"
	"errors"
	"testing"

	"cv_bank_backend/internal/common"
	"cv_bank_backend/internal/user"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// MockStore is a mock implementation of the Store interface.
type MockStore struct {
	mock.Mock
}

func (m *MockStore) ListExperiences(ctx context.Context, ownerID uuid.UUID) ([]ProfessionalExperience, error) {
	args := m.Called(ctx, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]ProfessionalExperience), args.Error(1)
}

func (m *MockStore) CreateExperience(ctx context.Context, exp *ProfessionalExperience) error {
	args := m.Called(ctx, exp)
	return args.Error(0)
}

func (m *MockStore) UpdateExperience(ctx context.Context, ownerID, id uuid.UUID, exp *ProfessionalExperience) error {
	args := m.Called(ctx, ownerID, id, exp)
	return args.Error(0)
}

func (m *MockStore) DeleteExperience(ctx context.Context, ownerID, id uuid.UUID) error {
	args := m.Called(ctx, ownerID, id)
	return args.Error(0)
}

func (m *MockStore) ListAcademicRecords(ctx context.Context, ownerID uuid.UUID) ([]AcademicRecord, error) {
	args := m.Called(ctx, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]AcademicRecord), args.Error(1)
}

func (m *MockStore) CreateAcademicRecord(ctx context.Context, rec *AcademicRecord) error {
	args := m.Called(ctx, rec)
	return args.Error(0)
}

func (m *MockStore) UpdateAcademicRecord(ctx context.Context, ownerID, id uuid.UUID, rec *AcademicRecord) error {
	args := m.Called(ctx, ownerID, id, rec)
	return args.Error(0)
}

func (m *MockStore) DeleteAcademicRecord(ctx context.Context, ownerID, id uuid.UUID) error {
	args := m.Called(ctx, ownerID, id)
	return args.Error(0)
}

func (m *MockStore) ListLanguages(ctx context.Context, ownerID uuid.UUID) ([]Language, error) {
	args := m.Called(ctx, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]Language), args.Error(1)
}

func (m *MockStore) CreateLanguage(ctx context.Context, lang *Language) error {
	args := m.Called(ctx, lang)
	return args.Error(0)
}

func (m *MockStore) DeleteLanguage(ctx context.Context, ownerID, id uuid.UUID) error {
	args := m.Called(ctx, ownerID, id)
	return args.Error(0)
}

func (m *MockStore) ListTools(ctx context.Context, ownerID uuid.UUID) ([]Tool, error) {
	args := m.Called(ctx, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]Tool), args.Error(1)
}

func (m *MockStore) CreateTool(ctx context.Context, tool *Tool) error {
	args := m.Called(ctx, tool)
	return args.Error(0)
}

func (m *MockStore) DeleteTool(ctx context.Context, ownerID, id uuid.UUID) error {
	args := m.Called(ctx, ownerID, id)
	return args.Error(0)
}

func (m *MockStore) ListReferences(ctx context.Context, ownerID uuid.UUID) ([]Reference, error) {
	args := m.Called(ctx, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]Reference), args.Error(1)
}

func (m *MockStore) CreateReference(ctx context.Context, ref *Reference) error {
	args := m.Called(ctx, ref)
	return args.Error(0)
}

func (m *MockStore) UpdateReference(ctx context.Context, ownerID, id uuid.UUID, ref *Reference) error {
	args := m.Called(ctx, ownerID, id, ref)
	return args.Error(0)
}

func (m *MockStore) DeleteReference(ctx context.Context, ownerID, id uuid.UUID) error {
	args := m.Called(ctx, ownerID, id)
	return args.Error(0)
}

func (m *MockStore) GetPersonalData(ctx context.Context, ownerID uuid.UUID) (*PersonalData, error) {
	args := m.Called(ctx, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*PersonalData), args.Error(1)
}

func (m *MockStore) UpsertPersonalData(ctx context.Context, data *PersonalData) error {
	args := m.Called(ctx, data)
	return args.Error(0)
}

func (m *MockStore) GetSettings(ctx context.Context, ownerID uuid.UUID) (*UserSettings, error) {
	args := m.Called(ctx, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*UserSettings), args.Error(1)
}

func (m *MockStore) UpsertSettings(ctx context.Context, settings *UserSettings) error {
	args := m.Called(ctx, settings)
	return args.Error(0)
}

// MockUserRepository is a mock implementation of user.Repository.
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, u *user.User) error {
	args := m.Called(ctx, u)
	return args.Error(0)
}

func (m *MockUserRepository) FindByEmail(ctx context.Context, email string) (*user.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*user.User), args.Error(1)
}

func (m *MockUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*user.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*user.User), args.Error(1)
}

func (m *MockUserRepository) ListByRole(ctx context.Context, role string) ([]user.User, error) {
	args := m.Called(ctx, role)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]user.User), args.Error(1)
}

func newTestService(store Store, users user.Repository) *Service {
	return NewService(store, users, zap.NewNop())
}

// expectEmptyProfileFetches arranges a full set of not-found reads for one owner.
func expectEmptyProfileFetches(store *MockStore, ownerID uuid.UUID) {
	store.On("GetPersonalData", mock.Anything, ownerID).Return(nil, common.ErrNotFound)
	store.On("ListExperiences", mock.Anything, ownerID).Return([]ProfessionalExperience{}, nil)
	store.On("ListAcademicRecords", mock.Anything, ownerID).Return([]AcademicRecord{}, nil)
	store.On("ListLanguages", mock.Anything, ownerID).Return([]Language{}, nil)
	store.On("ListTools", mock.Anything, ownerID).Return([]Tool{}, nil)
	store.On("ListReferences", mock.Anything, ownerID).Return([]Reference{}, nil)
	store.On("GetSettings", mock.Anything, ownerID).Return(nil, common.ErrNotFound)
}

func TestGetOwnProfileRequiresOwner(t *testing.T) {
	store := new(MockStore)
	svc := newTestService(store, new(MockUserRepository))

	_, err := svc.GetOwnProfile(context.Background(), uuid.Nil)
	assert.ErrorIs(t, err, common.ErrUnauthorized)
	store.AssertNotCalled(t, "GetPersonalData", mock.Anything, mock.Anything)
}

func TestGetOwnProfileDefaults(t *testing.T) {
	store := new(MockStore)
	svc := newTestService(store, new(MockUserRepository))
	owner := uuid.New()
	expectEmptyProfileFetches(store, owner)

	p, err := svc.GetOwnProfile(context.Background(), owner)
	require.NoError(t, err)
	assert.Equal(t, owner, p.PersonalData.UserID)
	assert.True(t, p.Settings.NotifyNewOpportunity, "notifications default to on")
	assert.Empty(t, p.Experiences)
	assert.Empty(t, p.Languages)
	store.AssertExpectations(t)
}

func TestGetOwnProfileDegradesFailedFetch(t *testing.T) {
	store := new(MockStore)
	svc := newTestService(store, new(MockUserRepository))
	owner := uuid.New()

	data := &PersonalData{UserID: owner, FullName: "Ana Ruiz"}
	store.On("GetPersonalData", mock.Anything, owner).Return(data, nil)
	store.On("ListExperiences", mock.Anything, owner).Return(nil, errors.New("disk on fire"))
	store.On("ListAcademicRecords", mock.Anything, owner).Return([]AcademicRecord{}, nil)
	store.On("ListLanguages", mock.Anything, owner).Return([]Language{{UserID: owner, Name: "English", Level: LevelAdvanced}}, nil)
	store.On("ListTools", mock.Anything, owner).Return([]Tool{}, nil)
	store.On("ListReferences", mock.Anything, owner).Return([]Reference{}, nil)
	store.On("GetSettings", mock.Anything, owner).Return(nil, common.ErrNotFound)

	p, err := svc.GetOwnProfile(context.Background(), owner)
	require.NoError(t, err, "a single failing sub-resource must not fail the aggregate")
	assert.Equal(t, "Ana Ruiz", p.PersonalData.FullName)
	assert.Empty(t, p.Experiences, "failed fetch degrades to empty")
	assert.Len(t, p.Languages, 1, "healthy sub-resources are unaffected")
}

func TestCreateExperienceNormalizesCurrent(t *testing.T) {
	store := new(MockStore)
	svc := newTestService(store, new(MockUserRepository))
	owner := uuid.New()

	end := date(2023, 1, 1)
	exp := &ProfessionalExperience{Company: "Acme", Role: "Dev", StartDate: date(2021, 1, 1), EndDate: &end, IsCurrent: true}
	store.On("CreateExperience", mock.Anything, exp).Return(nil)

	require.NoError(t, svc.CreateExperience(context.Background(), owner, exp))
	assert.Nil(t, exp.EndDate, "current position keeps no end date")
	assert.Equal(t, owner, exp.UserID)
}

func TestCreateLanguageRejectsUnknownLevel(t *testing.T) {
	store := new(MockStore)
	svc := newTestService(store, new(MockUserRepository))
	owner := uuid.New()

	err := svc.CreateLanguage(context.Background(), owner, &Language{Name: "Elvish", Level: "Fluent"})
	assert.ErrorIs(t, err, common.ErrBadRequest)
	store.AssertNotCalled(t, "CreateLanguage", mock.Anything, mock.Anything)
}

func TestListAllProfilesPreservesOrder(t *testing.T) {
	store := new(MockStore)
	users := new(MockUserRepository)
	svc := newTestService(store, users)

	var accounts []user.User
	for _, name := range []string{"first", "second", "third"} {
		u := user.User{Name: name, Email: name + "@example.com", Role: common.RoleUser}
		u.ID = uuid.New()
		accounts = append(accounts, u)
		expectEmptyProfileFetches(store, u.ID)
	}
	users.On("ListByRole", mock.Anything, common.RoleUser).Return(accounts, nil)

	got, err := svc.ListAllProfiles(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 3)
	for i, name := range []string{"first", "second", "third"} {
		assert.Equal(t, name, got[i].User.Name)
		assert.Equal(t, accounts[i].ID, got[i].Profile.PersonalData.UserID)
	}
}

func TestExperienceBucket(t *testing.T) {
	now := date(2026, 1, 1)
	end2022 := date(2022, 1, 1)
	end2021 := date(2021, 6, 1)

	tests := []struct {
		name string
		exps []ProfessionalExperience
		want string
	}{
		{"no entries", nil, BucketNone},
		{"one short job", []ProfessionalExperience{{StartDate: date(2021, 1, 1), EndDate: &end2022}}, BucketUpToTwo},
		{"open-ended counts to now", []ProfessionalExperience{{StartDate: date(2022, 1, 1), IsCurrent: true}}, BucketThreeFive},
		{"entries accumulate", []ProfessionalExperience{
			{StartDate: date(2020, 1, 1), EndDate: &end2021},
			{StartDate: date(2021, 6, 1), IsCurrent: true},
		}, BucketSixTen},
		{"long career", []ProfessionalExperience{{StartDate: date(2010, 1, 1), IsCurrent: true}}, BucketTenPlus},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, experienceBucket(tt.exps, now))
		})
	}
}

func TestDashboardStatsTopTools(t *testing.T) {
	store := new(MockStore)
	users := new(MockUserRepository)
	svc := newTestService(store, users)

	toolSets := [][]string{
		{"Go", "Postgres", "Docker"},
		{"Go", "Postgres", "Kubernetes"},
		{"Go", "Excel", "Figma", "Docker"},
	}
	var accounts []user.User
	for _, names := range toolSets {
		u := user.User{Name: "candidate", Email: uuid.NewString() + "@example.com", Role: common.RoleUser}
		u.ID = uuid.New()
		accounts = append(accounts, u)

		tools := make([]Tool, 0, len(names))
		for _, n := range names {
			tools = append(tools, Tool{UserID: u.ID, Name: n})
		}
		store.On("GetPersonalData", mock.Anything, u.ID).Return(nil, common.ErrNotFound)
		store.On("ListExperiences", mock.Anything, u.ID).Return([]ProfessionalExperience{}, nil)
		store.On("ListAcademicRecords", mock.Anything, u.ID).Return([]AcademicRecord{}, nil)
		store.On("ListLanguages", mock.Anything, u.ID).Return([]Language{}, nil)
		store.On("ListTools", mock.Anything, u.ID).Return(tools, nil)
		store.On("ListReferences", mock.Anything, u.ID).Return([]Reference{}, nil)
		store.On("GetSettings", mock.Anything, u.ID).Return(nil, common.ErrNotFound)
	}
	users.On("ListByRole", mock.Anything, common.RoleUser).Return(accounts, nil)

	stats, err := svc.DashboardStats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, stats.TotalCandidates)
	assert.Equal(t, 3, stats.ExperienceDistribution[BucketNone])

	require.Len(t, stats.TopTools, 5, "ranking is capped at five tools")
	assert.Equal(t, ToolCount{Name: "Go", Count: 3}, stats.TopTools[0])
	assert.Equal(t, ToolCount{Name: "Docker", Count: 2}, stats.TopTools[1])
	assert.Equal(t, ToolCount{Name: "Postgres", Count: 2}, stats.TopTools[2], "ties rank alphabetically")
}

func TestGetProfileForUserUnknownUser(t *testing.T) {
	store := new(MockStore)
	users := new(MockUserRepository)
	svc := newTestService(store, users)

	id := uuid.New()
	users.On("FindByID", mock.Anything, id).Return(nil, common.ErrNotFound)

	_, err := svc.GetProfileForUser(context.Background(), id)
	assert.ErrorIs(t, err, common.ErrNotFound)
}
