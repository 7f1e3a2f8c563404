// Package riders resolves the rider a booking is made for.
package riders

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/angelmondragon/rentflow-backend/pkg/db"
	"github.com/angelmondragon/rentflow-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/rentflow-backend/pkg/errors"
	"github.com/angelmondragon/rentflow-backend/pkg/security"
)

const generatedPasswordLength = 12

// Profile is the contact and KYC data captured at the counter.
type Profile struct {
	FullName    string  `json:"fullName" validate:"required,max=120"`
	Phone       string  `json:"phone" validate:"required,min=7,max=20"`
	Email       *string `json:"email,omitempty" validate:"omitempty,email"`
	KYCIDType   *string `json:"kycIdType,omitempty" validate:"omitempty,max=40"`
	KYCIDNumber *string `json:"kycIdNumber,omitempty" validate:"omitempty,max=60"`
	Address     *string `json:"address,omitempty" validate:"omitempty,max=500"`
	Password    string  `json:"password,omitempty" validate:"omitempty,min=8,max=128"`
}

// Resolution is the rider a booking attaches to.
type Resolution struct {
	Rider   models.Rider
	Created bool
	// GeneratedPassword is set when a new rider was created without a password.
	GeneratedPassword string
}

// Service finds or registers riders inside a booking transaction.
type Service interface {
	FindOrCreate(ctx context.Context, tx *gorm.DB, profile Profile) (*Resolution, error)
}

type service struct {
	repo   Repository
	hasher *security.Hasher
}

func NewService(repo Repository, hasher *security.Hasher) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("riders repository required")
	}
	if hasher == nil {
		return nil, fmt.Errorf("password hasher required")
	}
	return &service{repo: repo, hasher: hasher}, nil
}

// FindOrCreate returns the rider owning profile.Phone, registering one when the
// phone is unknown. Existing riders keep their stored details.
func (s *service) FindOrCreate(ctx context.Context, tx *gorm.DB, profile Profile) (*Resolution, error) {
	phone := strings.TrimSpace(profile.Phone)
	name := strings.TrimSpace(profile.FullName)
	if phone == "" || name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "rider name and phone are required")
	}
	repo := s.repo.WithTx(tx)

	existing, err := repo.FindByPhone(ctx, phone)
	if err == nil {
		return &Resolution{Rider: *existing}, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup rider")
	}

	password := profile.Password
	generated := ""
	if password == "" {
		generated, err = security.GeneratePassword(generatedPasswordLength)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "generate rider password")
		}
		password = generated
	}
	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash rider password")
	}

	rider := models.Rider{
		FullName:     name,
		Phone:        phone,
		Email:        trimmed(profile.Email),
		KYCIDType:    trimmed(profile.KYCIDType),
		KYCIDNumber:  trimmed(profile.KYCIDNumber),
		Address:      trimmed(profile.Address),
		PasswordHash: hash,
	}
	if err := repo.Create(ctx, &rider); err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.Wrap(pkgerrors.CodeConflict, err, "rider phone already registered")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create rider")
	}
	return &Resolution{Rider: rider, Created: true, GeneratedPassword: generated}, nil
}

func trimmed(value *string) *string {
	if value == nil {
		return nil
	}
	v := strings.TrimSpace(*value)
	if v == "" {
		return nil
	}
	return &v
}
