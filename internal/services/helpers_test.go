package services_test

import (
	"strings"
	"sync"
	"testing"
	"time"

	"yamdb/internal/database"
	"yamdb/internal/models"
	"yamdb/internal/policy"
	"yamdb/internal/repositories"
	"yamdb/internal/services"
	"yamdb/pkg/mail"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// mailbox records every message handed to it.
type mailbox struct {
	mu   sync.Mutex
	sent []mail.Message
}

func (m *mailbox) Send(msg mail.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, msg)
	return nil
}

// lastCode returns the confirmation code from the latest message sent to addr.
func (m *mailbox) lastCode(t *testing.T, addr string) string {
	t.Helper()
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := len(m.sent) - 1; i >= 0; i-- {
		if m.sent[i].To == addr {
			body := m.sent[i].Body
			return body[strings.LastIndex(body, " ")+1:]
		}
	}
	t.Fatalf("no mail sent to %s", addr)
	return ""
}

type env struct {
	db      *gorm.DB
	mails   *mailbox
	users   repositories.UserRepository
	auth    *services.AuthService
	profile *services.UserService
	catalog *services.CatalogService
	reviews *services.ReviewService
}

func newEnv(t *testing.T) *env {
	t.Helper()
	db := database.OpenTest(t)
	users := repositories.NewGORMUserRepository(db)
	titles := repositories.NewGORMTitleRepository(db)
	e := &env{
		db:    db,
		mails: &mailbox{},
		users: users,
	}
	e.auth = services.NewAuthService(users, e.mails, services.AuthConfig{
		JWTSecret: "test_jwt_secret",
		TokenTTL:  time.Hour,
		MailFrom:  "noreply@yamdb.test",
	})
	e.profile = services.NewUserService(users)
	e.catalog = services.NewCatalogService(
		repositories.NewGORMCategoryRepository(db),
		repositories.NewGORMGenreRepository(db),
		titles,
	)
	e.reviews = services.NewReviewService(
		titles,
		repositories.NewGORMReviewRepository(db),
		repositories.NewGORMCommentRepository(db),
	)
	return e
}

func (e *env) user(t *testing.T, username string, role policy.Role) *models.User {
	t.Helper()
	u := &models.User{Username: username, Email: username + "@example.com", Role: role}
	require.NoError(t, e.users.Create(u))
	return u
}

func (e *env) title(t *testing.T, admin *models.User, name string) *models.Title {
	t.Helper()
	title, err := e.catalog.CreateTitle(admin, services.TitleInput{Name: name, Year: 2001})
	require.NoError(t, err)
	return title
}
