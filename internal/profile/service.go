// File: internal/profile/service.go
package profile

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"cv_bank_backend/internal/common"
	"cv_bank_backend/internal/user"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// listAllConcurrency bounds the profile fan-out when assembling every
// candidate for the admin listing.
const listAllConcurrency = 8

// Service assembles profile aggregates on top of the entity store and
// exposes the privileged admin views.
type Service struct {
	store  Store
	users  user.Repository
	logger *zap.Logger
}

// NewService creates a profile service.
func NewService(store Store, users user.Repository, logger *zap.Logger) *Service {
	return &Service{store: store, users: users, logger: logger.Named("profile-service")}
}

// UserProfile pairs a user summary with the assembled profile, for the
// admin listing and detail views.
type UserProfile struct {
	User    user.Summary `json:"user"`
	Profile Profile      `json:"profile"`
}

// ToolCount is one entry of the dashboard's most-used-tools ranking.
type ToolCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// DashboardStats aggregates all candidate profiles for the admin dashboard.
type DashboardStats struct {
	TotalCandidates        int            `json:"total_candidates"`
	ExperienceDistribution map[string]int `json:"experience_distribution"`
	TopTools               []ToolCount    `json:"top_tools"`
}

// Experience-years distribution buckets.
const (
	BucketNone      = "none"
	BucketUpToTwo   = "0-2"
	BucketThreeFive = "3-5"
	BucketSixTen    = "6-10"
	BucketTenPlus   = "10+"
)

func requireOwner(ownerID uuid.UUID) error {
	if ownerID == uuid.Nil {
		return common.ErrUnauthorized.WithDetails("No authenticated user for this operation.")
	}
	return nil
}

// GetOwnProfile assembles the caller's full profile. All seven sub-resources
// are fetched concurrently; a failing fetch degrades that sub-resource to its
// default instead of failing the aggregate.
func (s *Service) GetOwnProfile(ctx context.Context, ownerID uuid.UUID) (*Profile, error) {
	if err := requireOwner(ownerID); err != nil {
		return nil, err
	}

	p := EmptyProfile(ownerID)
	var wg sync.WaitGroup
	wg.Add(7)

	go func() {
		defer wg.Done()
		if data, err := s.store.GetPersonalData(ctx, ownerID); err == nil {
			p.PersonalData = *data
		} else if !errors.Is(err, common.ErrNotFound) {
			s.logger.Warn("personal data fetch degraded to default", zap.String("owner", ownerID.String()), zap.Error(err))
		}
	}()
	go func() {
		defer wg.Done()
		if exps, err := s.store.ListExperiences(ctx, ownerID); err == nil && exps != nil {
			p.Experiences = exps
		} else if err != nil {
			s.logger.Warn("experiences fetch degraded to empty", zap.String("owner", ownerID.String()), zap.Error(err))
		}
	}()
	go func() {
		defer wg.Done()
		if recs, err := s.store.ListAcademicRecords(ctx, ownerID); err == nil && recs != nil {
			p.Education = recs
		} else if err != nil {
			s.logger.Warn("academic records fetch degraded to empty", zap.String("owner", ownerID.String()), zap.Error(err))
		}
	}()
	go func() {
		defer wg.Done()
		if langs, err := s.store.ListLanguages(ctx, ownerID); err == nil && langs != nil {
			p.Languages = langs
		} else if err != nil {
			s.logger.Warn("languages fetch degraded to empty", zap.String("owner", ownerID.String()), zap.Error(err))
		}
	}()
	go func() {
		defer wg.Done()
		if tools, err := s.store.ListTools(ctx, ownerID); err == nil && tools != nil {
			p.Tools = tools
		} else if err != nil {
			s.logger.Warn("tools fetch degraded to empty", zap.String("owner", ownerID.String()), zap.Error(err))
		}
	}()
	go func() {
		defer wg.Done()
		if refs, err := s.store.ListReferences(ctx, ownerID); err == nil && refs != nil {
			p.References = refs
		} else if err != nil {
			s.logger.Warn("references fetch degraded to empty", zap.String("owner", ownerID.String()), zap.Error(err))
		}
	}()
	go func() {
		defer wg.Done()
		if settings, err := s.store.GetSettings(ctx, ownerID); err == nil {
			p.Settings = *settings
		} else if !errors.Is(err, common.ErrNotFound) {
			s.logger.Warn("settings fetch degraded to default", zap.String("owner", ownerID.String()), zap.Error(err))
		}
	}()

	wg.Wait()
	return &p, nil
}

// GetProfileForUser returns a user summary plus their assembled profile.
// Admin only; NotFound when no such user exists.
func (s *Service) GetProfileForUser(ctx context.Context, userID uuid.UUID) (*UserProfile, error) {
	u, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	p, err := s.GetOwnProfile(ctx, u.ID)
	if err != nil {
		return nil, err
	}
	return &UserProfile{User: user.ToSummary(u), Profile: *p}, nil
}

// ListAllProfiles assembles every candidate (role=user) with their profile.
// The fan-out is bounded; output order follows account creation time.
func (s *Service) ListAllProfiles(ctx context.Context) ([]UserProfile, error) {
	users, err := s.users.ListByRole(ctx, common.RoleUser)
	if err != nil {
		return nil, err
	}

	results := make([]UserProfile, len(users))
	sem := make(chan struct{}, listAllConcurrency)
	var wg sync.WaitGroup

	for i := range users {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			u := users[i]
			p, err := s.GetOwnProfile(ctx, u.ID)
			if err != nil {
				s.logger.Warn("profile assembly degraded to empty in listing",
					zap.String("user", u.ID.String()), zap.Error(err))
				empty := EmptyProfile(u.ID)
				p = &empty
			}
			results[i] = UserProfile{User: user.ToSummary(&u), Profile: *p}
		}(i)
	}
	wg.Wait()
	return results, nil
}

// DashboardStats computes the admin dashboard aggregation: candidate count,
// experience-years distribution and the five most common tools.
func (s *Service) DashboardStats(ctx context.Context) (*DashboardStats, error) {
	profiles, err := s.ListAllProfiles(ctx)
	if err != nil {
		return nil, err
	}

	stats := &DashboardStats{
		TotalCandidates: len(profiles),
		ExperienceDistribution: map[string]int{
			BucketNone:      0,
			BucketUpToTwo:   0,
			BucketThreeFive: 0,
			BucketSixTen:    0,
			BucketTenPlus:   0,
		},
	}

	toolCounts := make(map[string]int)
	now := time.Now()
	for _, up := range profiles {
		stats.ExperienceDistribution[experienceBucket(up.Profile.Experiences, now)]++
		for _, t := range up.Profile.Tools {
			toolCounts[t.Name]++
		}
	}

	for name, count := range toolCounts {
		stats.TopTools = append(stats.TopTools, ToolCount{Name: name, Count: count})
	}
	sort.Slice(stats.TopTools, func(i, j int) bool {
		if stats.TopTools[i].Count != stats.TopTools[j].Count {
			return stats.TopTools[i].Count > stats.TopTools[j].Count
		}
		return stats.TopTools[i].Name < stats.TopTools[j].Name
	})
	if len(stats.TopTools) > 5 {
		stats.TopTools = stats.TopTools[:5]
	}
	return stats, nil
}

// experienceBucket classifies a candidate by total years across all
// experience entries. Open-ended entries count up to now.
func experienceBucket(exps []ProfessionalExperience, now time.Time) string {
	if len(exps) == 0 {
		return BucketNone
	}
	var total time.Duration
	for _, e := range exps {
		end := now
		if e.EndDate != nil && !e.IsCurrent {
			end = *e.EndDate
		}
		if end.After(e.StartDate) {
			total += end.Sub(e.StartDate)
		}
	}
	years := total.Hours() / (24 * 365.25)
	switch {
	case years <= 2:
		return BucketUpToTwo
	case years <= 5:
		return BucketThreeFive
	case years <= 10:
		return BucketSixTen
	default:
		return BucketTenPlus
	}
}

// --- Owner-scoped writes (normalization + delegation) ---

// normalizeExperience enforces the open-ended invariant: a current position
// has no end date. A non-current entry keeps whatever end date the caller
// supplied.
func normalizeExperience(exp *ProfessionalExperience) {
	if exp.IsCurrent {
		exp.EndDate = nil
	}
}

func normalizeAcademicRecord(rec *AcademicRecord) {
	if rec.InProgress {
		rec.EndDate = nil
	}
}

func (s *Service) ListExperiences(ctx context.Context, ownerID uuid.UUID) ([]ProfessionalExperience, error) {
	if err := requireOwner(ownerID); err != nil {
		return nil, err
	}
	exps, err := s.store.ListExperiences(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	if exps == nil {
		exps = []ProfessionalExperience{}
	}
	return exps, nil
}

func (s *Service) CreateExperience(ctx context.Context, ownerID uuid.UUID, exp *ProfessionalExperience) error {
	if err := requireOwner(ownerID); err != nil {
		return err
	}
	exp.UserID = ownerID
	normalizeExperience(exp)
	return s.store.CreateExperience(ctx, exp)
}

func (s *Service) UpdateExperience(ctx context.Context, ownerID, id uuid.UUID, exp *ProfessionalExperience) error {
	if err := requireOwner(ownerID); err != nil {
		return err
	}
	normalizeExperience(exp)
	return s.store.UpdateExperience(ctx, ownerID, id, exp)
}

func (s *Service) DeleteExperience(ctx context.Context, ownerID, id uuid.UUID) error {
	if err := requireOwner(ownerID); err != nil {
		return err
	}
	return s.store.DeleteExperience(ctx, ownerID, id)
}

func (s *Service) ListAcademicRecords(ctx context.Context, ownerID uuid.UUID) ([]AcademicRecord, error) {
	if err := requireOwner(ownerID); err != nil {
		return nil, err
	}
	recs, err := s.store.ListAcademicRecords(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	if recs == nil {
		recs = []AcademicRecord{}
	}
	return recs, nil
}

func (s *Service) CreateAcademicRecord(ctx context.Context, ownerID uuid.UUID, rec *AcademicRecord) error {
	if err := requireOwner(ownerID); err != nil {
		return err
	}
	rec.UserID = ownerID
	normalizeAcademicRecord(rec)
	return s.store.CreateAcademicRecord(ctx, rec)
}

func (s *Service) UpdateAcademicRecord(ctx context.Context, ownerID, id uuid.UUID, rec *AcademicRecord) error {
	if err := requireOwner(ownerID); err != nil {
		return err
	}
	normalizeAcademicRecord(rec)
	return s.store.UpdateAcademicRecord(ctx, ownerID, id, rec)
}

func (s *Service) DeleteAcademicRecord(ctx context.Context, ownerID, id uuid.UUID) error {
	if err := requireOwner(ownerID); err != nil {
		return err
	}
	return s.store.DeleteAcademicRecord(ctx, ownerID, id)
}

func (s *Service) ListLanguages(ctx context.Context, ownerID uuid.UUID) ([]Language, error) {
	if err := requireOwner(ownerID); err != nil {
		return nil, err
	}
	langs, err := s.store.ListLanguages(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	if langs == nil {
		langs = []Language{}
	}
	return langs, nil
}

func (s *Service) CreateLanguage(ctx context.Context, ownerID uuid.UUID, lang *Language) error {
	if err := requireOwner(ownerID); err != nil {
		return err
	}
	if !IsValidLevel(lang.Level) {
		return common.ErrBadRequest.WithDetails("Invalid proficiency level. Must be one of: Basic, Intermediate, Advanced, Native.")
	}
	lang.UserID = ownerID
	return s.store.CreateLanguage(ctx, lang)
}

func (s *Service) DeleteLanguage(ctx context.Context, ownerID, id uuid.UUID) error {
	if err := requireOwner(ownerID); err != nil {
		return err
	}
	return s.store.DeleteLanguage(ctx, ownerID, id)
}

func (s *Service) ListTools(ctx context.Context, ownerID uuid.UUID) ([]Tool, error) {
	if err := requireOwner(ownerID); err != nil {
		return nil, err
	}
	tools, err := s.store.ListTools(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	if tools == nil {
		tools = []Tool{}
	}
	return tools, nil
}

func (s *Service) CreateTool(ctx context.Context, ownerID uuid.UUID, tool *Tool) error {
	if err := requireOwner(ownerID); err != nil {
		return err
	}
	tool.UserID = ownerID
	return s.store.CreateTool(ctx, tool)
}

func (s *Service) DeleteTool(ctx context.Context, ownerID, id uuid.UUID) error {
	if err := requireOwner(ownerID); err != nil {
		return err
	}
	return s.store.DeleteTool(ctx, ownerID, id)
}

func (s *Service) ListReferences(ctx context.Context, ownerID uuid.UUID) ([]Reference, error) {
	if err := requireOwner(ownerID); err != nil {
		return nil, err
	}
	refs, err := s.store.ListReferences(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	if refs == nil {
		refs = []Reference{}
	}
	return refs, nil
}

func (s *Service) CreateReference(ctx context.Context, ownerID uuid.UUID, ref *Reference) error {
	if err := requireOwner(ownerID); err != nil {
		return err
	}
	ref.UserID = ownerID
	return s.store.CreateReference(ctx, ref)
}

func (s *Service) UpdateReference(ctx context.Context, ownerID, id uuid.UUID, ref *Reference) error {
	if err := requireOwner(ownerID); err != nil {
		return err
	}
	return s.store.UpdateReference(ctx, ownerID, id, ref)
}

func (s *Service) DeleteReference(ctx context.Context, ownerID, id uuid.UUID) error {
	if err := requireOwner(ownerID); err != nil {
		return err
	}
	return s.store.DeleteReference(ctx, ownerID, id)
}

func (s *Service) GetPersonalData(ctx context.Context, ownerID uuid.UUID) (*PersonalData, error) {
	if err := requireOwner(ownerID); err != nil {
		return nil, err
	}
	data, err := s.store.GetPersonalData(ctx, ownerID)
	if errors.Is(err, common.ErrNotFound) {
		def := DefaultPersonalData(ownerID)
		return &def, nil
	}
	if err != nil {
		return nil, err
	}
	return data, nil
}

func (s *Service) UpsertPersonalData(ctx context.Context, ownerID uuid.UUID, data *PersonalData) error {
	if err := requireOwner(ownerID); err != nil {
		return err
	}
	data.UserID = ownerID
	return s.store.UpsertPersonalData(ctx, data)
}

func (s *Service) GetSettings(ctx context.Context, ownerID uuid.UUID) (*UserSettings, error) {
	if err := requireOwner(ownerID); err != nil {
		return nil, err
	}
	settings, err := s.store.GetSettings(ctx, ownerID)
	if errors.Is(err, common.ErrNotFound) {
		def := DefaultSettings(ownerID)
		return &def, nil
	}
	if err != nil {
		return nil, err
	}
	return settings, nil
}

func (s *Service) UpsertSettings(ctx context.Context, ownerID uuid.UUID, settings *UserSettings) error {
	if err := requireOwner(ownerID); err != nil {
		return err
	}
	settings.UserID = ownerID
	return s.store.UpsertSettings(ctx, settings)
}
