// File: internal/user/model.go
package user

import (
	"time"

	"cv_bank_backend/internal/common"

	"github.com/google/uuid"
)

// User represents a registered account. The role is assigned at registration
// and is immutable from the client's perspective.
type User struct {
	common.BaseModel        // Embeds ID, CreatedAt, UpdatedAt
	Name             string `gorm:"type:varchar(255);not null"`
	Email            string `gorm:"type:varchar(255);not null;uniqueIndex"`
	Role             string `gorm:"type:varchar(50);not null;default:'user'"`
	// Credential holds opaque credential material. Its encoding is owned by
	// the authentication gateway for the active backend (the hosted gateway
	// stores a bcrypt hash; the embedded one stores the raw secret).
	Credential *string `gorm:"type:varchar(255)"`
}

// TableName specifies the table name for the User model.
func (User) TableName() string {
	return "users"
}

// Summary is the user projection exposed to admin listings and API
// responses. It never carries credential material.
type Summary struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

// ToSummary converts a User model to its API projection.
func ToSummary(u *User) Summary {
	return Summary{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Role:      u.Role,
		CreatedAt: u.CreatedAt,
	}
}
