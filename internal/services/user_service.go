package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"bakeshop/internal/models"
	"bakeshop/internal/repositories"
)

type UserService interface {
	Create(ctx context.Context, user *models.User, password string) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	Update(ctx context.Context, user *models.User) error
	UpdatePassword(ctx context.Context, id uuid.UUID, password string) error
	Delete(ctx context.Context, id, currentUserID uuid.UUID) error
	FindAnyMatching(ctx context.Context, filter string, limit, offset int) ([]*models.User, error)
	CountAnyMatching(ctx context.Context, filter string) (int, error)

	// Authenticate checks credentials and returns the user on success.
	Authenticate(ctx context.Context, email, password string) (*models.User, error)
	// EnsureAdmin creates the bootstrap admin account when no admin exists.
	EnsureAdmin(ctx context.Context, email, password string) error
}

type userService struct {
	userRepo repositories.UserRepository
}

func NewUserService(userRepo repositories.UserRepository) UserService {
	return &userService{userRepo: userRepo}
}

func validateUser(user *models.User) error {
	if strings.TrimSpace(user.Email) == "" {
		return fmt.Errorf("email is required")
	}
	if strings.TrimSpace(user.FirstName) == "" || strings.TrimSpace(user.LastName) == "" {
		return fmt.Errorf("first and last name are required")
	}
	if user.Role != models.RoleAdmin && user.Role != models.RoleBarista {
		return fmt.Errorf("role must be admin or barista")
	}
	return nil
}

func (s *userService) Create(ctx context.Context, user *models.User, password string) error {
	if err := validateUser(user); err != nil {
		return err
	}
	if len(password) < 8 {
		return fmt.Errorf("password must be at least 8 characters")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	user.PasswordHash = string(hash)
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	user.Email = strings.ToLower(strings.TrimSpace(user.Email))

	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, repositories.ErrDuplicateEmail) {
			return ErrDuplicateEmail
		}
		return err
	}
	return nil
}

func (s *userService) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return user, nil
}

func (s *userService) Update(ctx context.Context, user *models.User) error {
	if err := validateUser(user); err != nil {
		return err
	}

	existing, err := s.GetByID(ctx, user.ID)
	if err != nil {
		return err
	}
	if existing.Locked && user.Locked {
		return ErrUserLocked
	}
	user.Email = strings.ToLower(strings.TrimSpace(user.Email))

	if err := s.userRepo.Update(ctx, user); err != nil {
		switch {
		case errors.Is(err, repositories.ErrDuplicateEmail):
			return ErrDuplicateEmail
		case errors.Is(err, repositories.ErrNotFound):
			return ErrNotFound
		}
		return err
	}
	return nil
}

func (s *userService) UpdatePassword(ctx context.Context, id uuid.UUID, password string) error {
	if len(password) < 8 {
		return fmt.Errorf("password must be at least 8 characters")
	}
	existing, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if existing.Locked {
		return ErrUserLocked
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	err = s.userRepo.UpdatePassword(ctx, id, string(hash))
	if errors.Is(err, repositories.ErrNotFound) {
		return ErrNotFound
	}
	return err
}

func (s *userService) Delete(ctx context.Context, id, currentUserID uuid.UUID) error {
	if id == currentUserID {
		return ErrDeleteOwnAccount
	}
	existing, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if existing.Locked {
		return ErrUserLocked
	}

	err = s.userRepo.Delete(ctx, id)
	if errors.Is(err, repositories.ErrNotFound) {
		return ErrNotFound
	}
	return err
}

func (s *userService) FindAnyMatching(ctx context.Context, filter string, limit, offset int) ([]*models.User, error) {
	return s.userRepo.FindAnyMatching(ctx, filter, limit, offset)
}

func (s *userService) CountAnyMatching(ctx context.Context, filter string) (int, error) {
	return s.userRepo.CountAnyMatching(ctx, filter)
}

func (s *userService) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	if user.Locked {
		return nil, ErrUserLocked
	}
	return user, nil
}

func (s *userService) EnsureAdmin(ctx context.Context, email, password string) error {
	count, err := s.userRepo.CountByRole(ctx, models.RoleAdmin)
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	admin := &models.User{
		Email:     email,
		FirstName: "Admin",
		LastName:  "User",
		Role:      models.RoleAdmin,
	}
	if err := s.Create(ctx, admin, password); err != nil {
		return fmt.Errorf("failed to bootstrap admin user: %w", err)
	}
	log.Printf("Bootstrapped admin account %s", admin.Email)
	return nil
}
