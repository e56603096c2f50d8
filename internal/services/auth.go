package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/mxcollect/cobradash/internal/common"
	"github.com/mxcollect/cobradash/internal/creds"
	"github.com/mxcollect/cobradash/internal/dbx"
	"github.com/mxcollect/cobradash/internal/logging"
	"github.com/mxcollect/cobradash/internal/models"
	"github.com/mxcollect/cobradash/internal/repositories/users"
)

// Seeded administrator account, created on first start so the issue
// management surface is reachable on a fresh database.
const (
	AdminEmail           = "admin@coppel.com"
	adminDefaultPassword = "admin123"
)

// RegisterInput carries the fields collected by the registration form.
type RegisterInput struct {
	Name            string
	Email           string
	Password        string
	ConfirmPassword string
	EmployeeNumber  string
	Title           string
	Company         string
	City            string
}

// AuthService handles credential verification and account management.
// Plaintext passwords never reach the repositories; hashing is delegated
// to the creds boundary.
type AuthService struct {
	db       *sql.DB
	users    users.Repository
	sessions *SessionService
	hasher   creds.Hasher
	log      logging.Logger
}

func NewAuthService(db *sql.DB, users users.Repository, sessions *SessionService, hasher creds.Hasher, log logging.Logger) *AuthService {
	return &AuthService{db: db, users: users, sessions: sessions, hasher: hasher, log: log}
}

// Login verifies the credentials and records the session on success.
// A missing account and a wrong password both surface as
// common.ErrInvalidCredentials so the caller cannot probe for emails.
func (s *AuthService) Login(ctx context.Context, email, password string) (*models.User, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, fmt.Errorf("%w: email and password are required", common.ErrValidation)
	}

	u, err := s.users.FindByEmail(ctx, email)
	if errors.Is(err, common.ErrNotFound) {
		return nil, common.ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if !s.hasher.Compare(u.PasswordHash, password) {
		return nil, common.ErrInvalidCredentials
	}

	if err := s.sessions.RecordLogin(ctx, u.ID); err != nil {
		return nil, err
	}
	s.log.Info(ctx, "user logged in", "user_id", u.ID)
	return u, nil
}

// Register creates a new non-admin account and logs it in.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	if err := validateRegistration(in); err != nil {
		return nil, err
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, err
	}
	u := &models.User{
		Name:           strings.TrimSpace(in.Name),
		Email:          strings.TrimSpace(in.Email),
		PasswordHash:   hash,
		EmployeeNumber: strings.TrimSpace(in.EmployeeNumber),
		Title:          strings.TrimSpace(in.Title),
		Company:        strings.TrimSpace(in.Company),
		City:           strings.TrimSpace(in.City),
	}

	id, err := s.users.Insert(ctx, u)
	if err != nil {
		return nil, err
	}
	if err := s.sessions.RecordLogin(ctx, id); err != nil {
		return nil, err
	}
	s.log.Info(ctx, "user registered", "user_id", id)
	return u, nil
}

// ChangePassword verifies the current password before storing a new hash.
// The read and the write run in one transaction so a concurrent edit cannot
// be clobbered by the full-record update.
func (s *AuthService) ChangePassword(ctx context.Context, userID int64, current, next string) error {
	if next == "" {
		return fmt.Errorf("%w: new password is required", common.ErrValidation)
	}
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.users.WithTx(tx)
		u, err := repo.GetByID(ctx, userID)
		if err != nil {
			return err
		}
		if !s.hasher.Compare(u.PasswordHash, current) {
			return common.ErrInvalidCredentials
		}
		hash, err := s.hasher.Hash(next)
		if err != nil {
			return err
		}
		u.PasswordHash = hash
		return repo.Update(ctx, u)
	})
}

// UpdateProfile replaces the editable profile fields of an existing account.
// Credential fields are ignored; use ChangePassword for those.
func (s *AuthService) UpdateProfile(ctx context.Context, userID int64, name, title, company, city string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("%w: name is required", common.ErrValidation)
	}
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.users.WithTx(tx)
		u, err := repo.GetByID(ctx, userID)
		if err != nil {
			return err
		}
		u.Name = strings.TrimSpace(name)
		u.Title = strings.TrimSpace(title)
		u.Company = strings.TrimSpace(company)
		u.City = strings.TrimSpace(city)
		return repo.Update(ctx, u)
	})
}

// SeedAdmin inserts the default administrator account if it does not exist
// yet. Safe to call on every start.
func (s *AuthService) SeedAdmin(ctx context.Context) error {
	_, err := s.users.FindByEmail(ctx, AdminEmail)
	if err == nil {
		return nil
	}
	if !errors.Is(err, common.ErrNotFound) {
		return err
	}

	hash, err := s.hasher.Hash(adminDefaultPassword)
	if err != nil {
		return err
	}
	_, err = s.users.Insert(ctx, &models.User{
		Name:           "Administrador",
		Email:          AdminEmail,
		PasswordHash:   hash,
		IsAdmin:        true,
		EmployeeNumber: "00000",
		Title:          "Administrador",
		Company:        "Coppel",
	})
	if errors.Is(err, common.ErrEmailTaken) {
		// Raced with another starter; the account exists, which is all
		// the seed guarantees.
		return nil
	}
	if err == nil {
		s.log.Info(ctx, "seeded default admin account", "email", AdminEmail)
	}
	return err
}

func validateRegistration(in RegisterInput) error {
	name := strings.TrimSpace(in.Name)
	email := strings.TrimSpace(in.Email)
	switch {
	case name == "":
		return fmt.Errorf("%w: name is required", common.ErrValidation)
	case email == "":
		return fmt.Errorf("%w: email is required", common.ErrValidation)
	case !strings.Contains(email, "@") || strings.HasPrefix(email, "@") || strings.HasSuffix(email, "@"):
		return fmt.Errorf("%w: malformed email", common.ErrValidation)
	case in.Password == "":
		return fmt.Errorf("%w: password is required", common.ErrValidation)
	case in.Password != in.ConfirmPassword:
		return fmt.Errorf("%w: passwords do not match", common.ErrValidation)
	}
	return nil
}
