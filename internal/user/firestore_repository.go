// File: internal/user/firestore_repository.go
package user

import (
	"context"
	"time"

	"cv_bank_backend/internal/common"

	"cloud.google.com/go/firestore"
	"github.com/google/uuid"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const usersCollection = "users"

// userDoc is the Firestore projection of a User. IDs are stored as strings;
// the document ID is the user ID.
type userDoc struct {
	Name       string    `firestore:"name"`
	Email      string    `firestore:"email"`
	Role       string    `firestore:"role"`
	Credential string    `firestore:"credential,omitempty"`
	CreatedAt  time.Time `firestore:"created_at"`
	UpdatedAt  time.Time `firestore:"updated_at"`
}

type firestoreRepository struct {
	client *firestore.Client
}

// NewFirestoreRepository creates a Firestore user repository (firebase
// backend). User documents live in the users collection, keyed by user ID.
func NewFirestoreRepository(client *firestore.Client) Repository {
	return &firestoreRepository{client: client}
}

func toUserDoc(u *User) userDoc {
	doc := userDoc{
		Name:      u.Name,
		Email:     u.Email,
		Role:      u.Role,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
	if u.Credential != nil {
		doc.Credential = *u.Credential
	}
	return doc
}

func fromUserDoc(id string, doc userDoc) (*User, error) {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return nil, common.ErrInternalServer.WithDetails("Stored user ID is not a valid UUID.")
	}
	u := &User{
		BaseModel: common.BaseModel{ID: parsed, CreatedAt: doc.CreatedAt, UpdatedAt: doc.UpdatedAt},
		Name:      doc.Name,
		Email:     doc.Email,
		Role:      doc.Role,
	}
	if doc.Credential != "" {
		cred := doc.Credential
		u.Credential = &cred
	}
	return u, nil
}

func (r *firestoreRepository) Create(ctx context.Context, user *User) error {
	user.Email = NormalizeEmail(user.Email)
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	now := time.Now().UTC()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	user.UpdatedAt = now

	// Email uniqueness has no native constraint in Firestore; re-check inside
	// the write path so a concurrent registration still loses.
	if existing, err := r.FindByEmail(ctx, user.Email); err == nil && existing != nil {
		return common.ErrConflict.WithDetails("User with this email already exists.")
	}

	_, err := r.client.Collection(usersCollection).Doc(user.ID.String()).Create(ctx, toUserDoc(user))
	if status.Code(err) == codes.AlreadyExists {
		return common.ErrConflict.WithDetails("User with this email already exists.")
	}
	return err
}

func (r *firestoreRepository) FindByEmail(ctx context.Context, email string) (*User, error) {
	iter := r.client.Collection(usersCollection).
		Where("email", "==", NormalizeEmail(email)).
		Limit(1).
		Documents(ctx)
	defer iter.Stop()

	snap, err := iter.Next()
	if err == iterator.Done {
		return nil, common.ErrNotFound.WithDetails("User not found with this email.")
	}
	if err != nil {
		return nil, err
	}
	var doc userDoc
	if err := snap.DataTo(&doc); err != nil {
		return nil, err
	}
	return fromUserDoc(snap.Ref.ID, doc)
}

func (r *firestoreRepository) FindByID(ctx context.Context, id uuid.UUID) (*User, error) {
	snap, err := r.client.Collection(usersCollection).Doc(id.String()).Get(ctx)
	if status.Code(err) == codes.NotFound {
		return nil, common.ErrNotFound.WithDetails("User not found with this ID.")
	}
	if err != nil {
		return nil, err
	}
	var doc userDoc
	if err := snap.DataTo(&doc); err != nil {
		return nil, err
	}
	return fromUserDoc(snap.Ref.ID, doc)
}

func (r *firestoreRepository) ListByRole(ctx context.Context, role string) ([]User, error) {
	iter := r.client.Collection(usersCollection).
		Where("role", "==", role).
		OrderBy("created_at", firestore.Asc).
		Documents(ctx)
	defer iter.Stop()

	var users []User
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, err
		}
		var doc userDoc
		if err := snap.DataTo(&doc); err != nil {
			return nil, err
		}
		u, err := fromUserDoc(snap.Ref.ID, doc)
		if err != nil {
			return nil, err
		}
		users = append(users, *u)
	}
	return users, nil
}
