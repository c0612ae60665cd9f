package services

import (
	"errors"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	apperrors "budgetplan/internal/errors"
	"budgetplan/internal/models"
)

// staffService handles staff account logic.
type staffService struct {
	db *gorm.DB
}

// NewStaffService creates a new StaffServicer.
func NewStaffService(db *gorm.DB) StaffServicer {
	return &staffService{db: db}
}

// CreateStaff registers a new staff member
func (s *staffService) CreateStaff(email, password, firstName, lastName, position string) (*models.Staff, error) {
	if email == "" || password == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "email and password are required")
	}
	email = strings.ToLower(strings.TrimSpace(email))

	var count int64
	if err := s.db.Model(&models.Staff{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if count > 0 {
		return nil, apperrors.ErrDuplicateEmail
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	staff := &models.Staff{
		Email:     email,
		Password:  string(hashedPassword),
		FirstName: firstName,
		LastName:  lastName,
		Position:  position,
		IsActive:  true,
	}

	if err := s.db.Create(staff).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	return staff, nil
}

// GetStaffByEmail retrieves an active staff member by email
func (s *staffService) GetStaffByEmail(email string) (*models.Staff, error) {
	var staff models.Staff
	if err := s.db.Where("email = ? AND is_active = ?", strings.ToLower(strings.TrimSpace(email)), true).First(&staff).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrStaffNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &staff, nil
}

// GetStaffByID retrieves a staff member by ID
func (s *staffService) GetStaffByID(id string) (*models.Staff, error) {
	var staff models.Staff
	if err := s.db.Where("id = ?", id).First(&staff).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrStaffNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &staff, nil
}

// AttemptLogin verifies credentials and stamps the login time. Unknown
// emails and wrong passwords both return ErrInvalidCredentials.
func (s *staffService) AttemptLogin(email, password string) (*models.Staff, error) {
	staff, err := s.GetStaffByEmail(email)
	if err != nil {
		if errors.Is(err, apperrors.ErrStaffNotFound) {
			return nil, apperrors.ErrInvalidCredentials
		}
		return nil, err
	}

	if bcrypt.CompareHashAndPassword([]byte(staff.Password), []byte(password)) != nil {
		return nil, apperrors.ErrInvalidCredentials
	}

	now := time.Now()
	if err := s.db.Model(staff).Update("last_login_at", now).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	staff.LastLoginAt = &now
	return staff, nil
}
