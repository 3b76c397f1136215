package repositories

import "yamdb/internal/models"

// UserRepository defines the interface for user data access.
type UserRepository interface {
	Create(user *models.User) error
	GetByID(id string) (*models.User, error)
	GetByUsername(username string) (*models.User, error)
	GetByEmail(email string) (*models.User, error)
	List(search string, page Page) ([]models.User, int64, error)
	Update(user *models.User) error

	// IssueCode creates the user for (email, username) unless it already
	// exists, then replaces its confirmation code hash. It fails with
	// apperrors.ErrConflict when the email or username belongs to another account.
	IssueCode(email, username, codeHash string) (*models.User, error)

	// ConsumeCode clears the confirmation code if it still equals codeHash and
	// reports whether it did.
	ConsumeCode(userID, codeHash string) (bool, error)
}
