package services

import (
	"strings"

	"yamdb/internal/apperrors"
	"yamdb/internal/models"
	"yamdb/internal/policy"
	"yamdb/internal/repositories"
	"yamdb/internal/validation"
)

// UserCreate is the payload an admin submits to create an account.
type UserCreate struct {
	Username  string `json:"username" validate:"required,max=150,username"`
	Email     string `json:"email" validate:"required,email,max=254"`
	FirstName string `json:"first_name" validate:"max=150"`
	LastName  string `json:"last_name" validate:"max=150"`
	Bio       string `json:"bio"`
	Role      string `json:"role" validate:"omitempty,oneof=user moderator admin"`
}

// ProfileUpdate is a partial profile edit. Nil fields are left unchanged.
type ProfileUpdate struct {
	Username  *string `json:"username" validate:"omitempty,max=150,username"`
	Email     *string `json:"email" validate:"omitempty,email,max=254"`
	FirstName *string `json:"first_name" validate:"omitempty,max=150"`
	LastName  *string `json:"last_name" validate:"omitempty,max=150"`
	Bio       *string `json:"bio"`
	Role      *string `json:"role" validate:"omitempty,oneof=user moderator admin"`
}

// UserService handles profile reads and edits.
type UserService struct {
	userRepo repositories.UserRepository
}

// NewUserService creates a new UserService.
func NewUserService(userRepo repositories.UserRepository) *UserService {
	return &UserService{userRepo: userRepo}
}

// List returns accounts matching search. Admin only.
func (s *UserService) List(actor *models.User, search string, page repositories.Page) ([]models.User, int64, error) {
	if err := authorize(read(policy.Profile, actor, false)); err != nil {
		return nil, 0, err
	}
	return s.userRepo.List(strings.TrimSpace(search), page)
}

// Create registers an account on behalf of an admin.
func (s *UserService) Create(actor *models.User, req UserCreate) (*models.User, error) {
	if err := authorize(write(policy.Profile, actor, false)); err != nil {
		return nil, err
	}
	req.Email = normalizeEmail(req.Email)
	if err := validation.Struct(req); err != nil {
		return nil, err
	}

	user := &models.User{
		Username:  req.Username,
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Bio:       req.Bio,
		Role:      policy.RoleUser,
	}
	if req.Role != "" {
		user.Role = policy.Role(req.Role)
	}
	if err := s.userRepo.Create(user); err != nil {
		return nil, err
	}
	return user, nil
}

// Get returns the profile named username. Users may read their own profile;
// admins may read any.
func (s *UserService) Get(actor *models.User, username string) (*models.User, error) {
	if err := authorize(read(policy.Profile, actor, isSelf(actor, username))); err != nil {
		return nil, err
	}
	if isSelf(actor, username) {
		return actor, nil
	}
	return s.userRepo.GetByUsername(username)
}

// Update applies a partial edit to the profile named username. The role field
// is only honoured for admins; for everyone else it is read-only and ignored.
func (s *UserService) Update(actor *models.User, username string, upd ProfileUpdate) (*models.User, error) {
	if err := authorize(write(policy.Profile, actor, isSelf(actor, username))); err != nil {
		return nil, err
	}
	if upd.Email != nil {
		normalized := normalizeEmail(*upd.Email)
		upd.Email = &normalized
	}
	if err := validation.Struct(upd); err != nil {
		return nil, err
	}

	target := actor
	if !isSelf(actor, username) {
		var err error
		if target, err = s.userRepo.GetByUsername(username); err != nil {
			return nil, err
		}
	}

	updated := *target
	if upd.Username != nil {
		updated.Username = *upd.Username
	}
	if upd.Email != nil {
		updated.Email = *upd.Email
	}
	if upd.FirstName != nil {
		updated.FirstName = *upd.FirstName
	}
	if upd.LastName != nil {
		updated.LastName = *upd.LastName
	}
	if upd.Bio != nil {
		updated.Bio = *upd.Bio
	}
	if upd.Role != nil && policy.CanAssignRole(actor.Subject()) {
		role, err := policy.ParseRole(*upd.Role)
		if err != nil {
			return nil, apperrors.NewValidationError("role", err.Error())
		}
		updated.Role = role
	}

	if err := s.userRepo.Update(&updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

func isSelf(actor *models.User, username string) bool {
	return actor != nil && (username == validation.ReservedUsername || actor.Username == username)
}
