// File: internal/profile/model.go
package profile

import (
	"time"

	"cv_bank_backend/internal/common"

	"github.com/google/uuid"
)

// Language proficiency levels.
const (
	LevelBasic        = "Basic"
	LevelIntermediate = "Intermediate"
	LevelAdvanced     = "Advanced"
	LevelNative       = "Native"
)

// ValidLevels lists the accepted language proficiency levels, ordered from
// lowest to highest.
var ValidLevels = []string{LevelBasic, LevelIntermediate, LevelAdvanced, LevelNative}

// IsValidLevel reports whether level is an accepted proficiency level.
func IsValidLevel(level string) bool {
	for _, l := range ValidLevels {
		if l == level {
			return true
		}
	}
	return false
}

// PersonalData is the per-user singleton holding contact and summary
// information. At most one row per user; written via upsert.
type PersonalData struct {
	common.BaseModel
	UserID   uuid.UUID `gorm:"type:uuid;not null;uniqueIndex" json:"user_id"`
	FullName string    `gorm:"type:varchar(255)" json:"full_name"`
	Email    string    `gorm:"type:varchar(255)" json:"email"`
	Phone    string    `gorm:"type:varchar(50)" json:"phone"`
	Address  string    `gorm:"type:varchar(255)" json:"address"`
	City     string    `gorm:"type:varchar(100)" json:"city"`
	Country  string    `gorm:"type:varchar(100)" json:"country"`
	Summary  string    `gorm:"type:text" json:"summary"`
}

func (PersonalData) TableName() string { return "personal_data" }

// ProfessionalExperience is one work-history entry.
type ProfessionalExperience struct {
	common.BaseModel
	UserID      uuid.UUID  `gorm:"type:uuid;not null;index" json:"user_id"`
	Company     string     `gorm:"type:varchar(255);not null" json:"company"`
	Role        string     `gorm:"type:varchar(255);not null" json:"role"`
	Country     string     `gorm:"type:varchar(100)" json:"country"`
	StartDate   time.Time  `gorm:"not null" json:"start_date"`
	EndDate     *time.Time `json:"end_date"`
	IsCurrent   bool       `gorm:"not null;default:false" json:"is_current"`
	Description string     `gorm:"type:text" json:"description"`
}

func (ProfessionalExperience) TableName() string { return "professional_experiences" }

// AcademicRecord is one education entry.
type AcademicRecord struct {
	common.BaseModel
	UserID       uuid.UUID  `gorm:"type:uuid;not null;index" json:"user_id"`
	Institution  string     `gorm:"type:varchar(255);not null" json:"institution"`
	Degree       string     `gorm:"type:varchar(255);not null" json:"degree"`
	FieldOfStudy string     `gorm:"type:varchar(255)" json:"field_of_study"`
	StartDate    time.Time  `gorm:"not null" json:"start_date"`
	EndDate      *time.Time `json:"end_date"`
	InProgress   bool       `gorm:"not null;default:false" json:"in_progress"`
	Description  string     `gorm:"type:text" json:"description"`
}

func (AcademicRecord) TableName() string { return "academic_records" }

// Language is one spoken-language entry with a proficiency level.
type Language struct {
	common.BaseModel
	UserID uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	Name   string    `gorm:"type:varchar(100);not null" json:"name"`
	Level  string    `gorm:"type:varchar(50);not null" json:"level"`
}

func (Language) TableName() string { return "languages" }

// Tool is one tool or technology the candidate works with.
type Tool struct {
	common.BaseModel
	UserID   uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	Name     string    `gorm:"type:varchar(100);not null" json:"name"`
	Category string    `gorm:"type:varchar(100)" json:"category"`
}

func (Tool) TableName() string { return "tools" }

// Reference is one professional reference contact.
type Reference struct {
	common.BaseModel
	UserID       uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	Name         string    `gorm:"type:varchar(255);not null" json:"name"`
	Relationship string    `gorm:"type:varchar(100)" json:"relationship"`
	Company      string    `gorm:"type:varchar(255)" json:"company"`
	Email        string    `gorm:"type:varchar(255)" json:"email"`
	Phone        string    `gorm:"type:varchar(50)" json:"phone"`
}

func (Reference) TableName() string { return "references" }

// UserSettings is the per-user singleton of notification preferences.
type UserSettings struct {
	common.BaseModel
	UserID               uuid.UUID `gorm:"type:uuid;not null;uniqueIndex" json:"user_id"`
	NotifyNewOpportunity bool      `gorm:"not null;default:true" json:"notify_new_opportunities"`
}

func (UserSettings) TableName() string { return "user_settings" }

// Profile is the assembled aggregate of every sub-resource a profile page
// renders. Missing singletons resolve to defaults, missing collections to
// empty slices, so the aggregate is always renderable.
type Profile struct {
	PersonalData PersonalData             `json:"personal_data"`
	Experiences  []ProfessionalExperience `json:"experiences"`
	Education    []AcademicRecord         `json:"education"`
	Languages    []Language               `json:"languages"`
	Tools        []Tool                   `json:"tools"`
	References   []Reference              `json:"references"`
	Settings     UserSettings             `json:"settings"`
}

// EmptyProfile returns the default aggregate for an owner whose profile has
// never been written.
func EmptyProfile(ownerID uuid.UUID) Profile {
	return Profile{
		PersonalData: DefaultPersonalData(ownerID),
		Experiences:  []ProfessionalExperience{},
		Education:    []AcademicRecord{},
		Languages:    []Language{},
		Tools:        []Tool{},
		References:   []Reference{},
		Settings:     DefaultSettings(ownerID),
	}
}

// DefaultPersonalData is the empty singleton returned when none was written.
func DefaultPersonalData(ownerID uuid.UUID) PersonalData {
	return PersonalData{UserID: ownerID}
}

// DefaultSettings is the singleton returned when none was written.
// Opportunity notifications are on until the user opts out.
func DefaultSettings(ownerID uuid.UUID) UserSettings {
	return UserSettings{UserID: ownerID, NotifyNewOpportunity: true}
}
