package model

import (
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// Host is an authenticated user who can create and run events.
type Host struct {
	ID           uuid.UUID `json:"id" db:"id"`
	Email        string    `json:"email" db:"email"`
	Name         string    `json:"name" db:"name"`
	PasswordHash string    `json:"-" db:"password_hash"`
	CreatedAt    time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt    time.Time `json:"updatedAt" db:"updated_at"`
}

// NewHost creates a host record, hashing the supplied password.
func NewHost(email, name, password string) (*Host, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	return &Host{
		ID:           uuid.New(),
		Email:        email,
		Name:         name,
		PasswordHash: string(hashed),
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

// ComparePassword reports whether password matches the stored hash.
func (h *Host) ComparePassword(password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(h.PasswordHash), []byte(password)) == nil
}
