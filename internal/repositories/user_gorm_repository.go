package repositories

import (
	"errors"
	"fmt"

	"yamdb/internal/apperrors"
	"yamdb/internal/models"
	"yamdb/internal/policy"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GORMUserRepository is a GORM implementation of UserRepository.
type GORMUserRepository struct {
	db *gorm.DB
}

// NewGORMUserRepository creates a new instance of GORMUserRepository.
func NewGORMUserRepository(db *gorm.DB) *GORMUserRepository {
	return &GORMUserRepository{
		db: db,
	}
}

// Create creates a new user in the database.
func (r *GORMUserRepository) Create(user *models.User) error {
	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	if user.Role == "" {
		user.Role = policy.RoleUser
	}
	if err := r.db.Create(user).Error; err != nil {
		return translate(err, "failed to create user %s", user.Username)
	}
	return nil
}

// GetByID retrieves a user by their ID from the database.
func (r *GORMUserRepository) GetByID(id string) (*models.User, error) {
	var user models.User
	if err := r.db.First(&user, "id = ?", id).Error; err != nil {
		return nil, translate(err, "user with ID %s", id)
	}
	return &user, nil
}

// GetByUsername retrieves a user by their username from the database.
func (r *GORMUserRepository) GetByUsername(username string) (*models.User, error) {
	var user models.User
	if err := r.db.First(&user, "username = ?", username).Error; err != nil {
		return nil, translate(err, "user with username %s", username)
	}
	return &user, nil
}

// GetByEmail retrieves a user by their email from the database.
func (r *GORMUserRepository) GetByEmail(email string) (*models.User, error) {
	var user models.User
	if err := r.db.First(&user, "email = ?", email).Error; err != nil {
		return nil, translate(err, "user with email %s", email)
	}
	return &user, nil
}

// List returns users whose username contains search, ordered by username.
func (r *GORMUserRepository) List(search string, page Page) ([]models.User, int64, error) {
	query := r.db.Model(&models.User{})
	if search != "" {
		query = query.Where("LOWER(username) LIKE ?", containsPattern(search))
	}
	query = query.Session(&gorm.Session{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count users: %w", err)
	}

	var users []models.User
	if err := query.Scopes(page.scope).Order("username").Find(&users).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list users: %w", err)
	}
	return users, total, nil
}

// Update writes the editable profile columns of user.
func (r *GORMUserRepository) Update(user *models.User) error {
	res := r.db.Model(&models.User{ID: user.ID}).Updates(map[string]any{
		"username":   user.Username,
		"email":      user.Email,
		"first_name": user.FirstName,
		"last_name":  user.LastName,
		"bio":        user.Bio,
		"role":       user.Role,
	})
	if res.Error != nil {
		return translate(res.Error, "failed to update user %s", user.ID)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("user with ID %s: %w", user.ID, apperrors.ErrNotFound)
	}
	return nil
}

// IssueCode inserts the account if absent and stores the new code hash, in one transaction.
func (r *GORMUserRepository) IssueCode(email, username, codeHash string) (*models.User, error) {
	var user models.User
	err := r.db.Transaction(func(tx *gorm.DB) error {
		candidate := models.User{
			ID:       uuid.New().String(),
			Email:    email,
			Username: username,
			Role:     policy.RoleUser,
		}
		// Concurrent signups for the same pair both land here; the loser's
		// insert becomes a no-op and it reads the winner's row below.
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&candidate).Error; err != nil {
			return err
		}

		if err := tx.First(&user, "email = ?", email).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("username %s is already taken: %w", username, apperrors.ErrConflict)
			}
			return err
		}
		if user.Username != username {
			return fmt.Errorf("email %s is registered to another username: %w", email, apperrors.ErrConflict)
		}

		user.ConfirmationCode = codeHash
		return tx.Model(&user).Update("confirmation_code", codeHash).Error
	})
	if err != nil {
		if errors.Is(err, apperrors.ErrConflict) {
			return nil, err
		}
		return nil, translate(err, "failed to issue confirmation code for %s", email)
	}
	return &user, nil
}

// ConsumeCode clears the stored code hash with a conditional update, so two
// exchanges racing on the same code cannot both succeed.
func (r *GORMUserRepository) ConsumeCode(userID, codeHash string) (bool, error) {
	res := r.db.Model(&models.User{}).
		Where("id = ? AND confirmation_code = ?", userID, codeHash).
		Update("confirmation_code", "")
	if res.Error != nil {
		return false, fmt.Errorf("failed to consume confirmation code for user %s: %w", userID, res.Error)
	}
	return res.RowsAffected == 1, nil
}
