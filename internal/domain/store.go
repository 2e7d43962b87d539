package domain

import (
	"context"
	"time"
)

// Store is the tenant root. Every other entity transitively belongs to
// exactly one Store, and the subdomain is globally unique and immutable
// once created.
type Store struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Subdomain   string `json:"subdomain"`
	UserID      string `json:"userId"` // owning dashboard user
	Logo        string `json:"logo,omitempty"`
	Description string `json:"description,omitempty"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// StoreRef is the single-field projection the request router needs.
// Routing does a point lookup on the subdomain index and nothing more.
type StoreRef struct {
	ID        string `json:"id"`
	Subdomain string `json:"subdomain"`
}

// StoreRepository defines data access for stores
type StoreRepository interface {
	Create(ctx context.Context, store *Store) error
	GetByID(ctx context.Context, id string) (*Store, error)
	GetBySubdomain(ctx context.Context, subdomain string) (*Store, error)
	// RefBySubdomain is the router's point lookup: id + subdomain only.
	RefBySubdomain(ctx context.Context, subdomain string) (*StoreRef, error)
	GetByUserID(ctx context.Context, userID string) (*Store, error)
	Update(ctx context.Context, store *Store) error
}

// User represents a dashboard account (store owner)
type User struct {
	ID           string
	Email        string
	Username     string
	PasswordHash string // bcrypt hash, never serialized
	CreatedAt    time.Time
	UpdatedAt    time.Time
	IsActive     bool
}

// UserRepository defines data access for users
type UserRepository interface {
	Create(ctx context.Context, user *User) error
	GetByID(ctx context.Context, id string) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByUsername(ctx context.Context, username string) (*User, error)
	Update(ctx context.Context, user *User) error
}
