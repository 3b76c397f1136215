// Package importer loads the CSV fixture set into the database.
package importer

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"yamdb/internal/models"
	"yamdb/internal/policy"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// row is one CSV record addressed by header name.
type row map[string]string

func (r row) str(key string) string { return strings.TrimSpace(r[key]) }

func (r row) optional(key string) *string {
	if v := r.str(key); v != "" {
		return &v
	}
	return nil
}

func (r row) integer(key string) (int, error) {
	n, err := strconv.Atoi(r.str(key))
	if err != nil {
		return 0, fmt.Errorf("column %s: %w", key, err)
	}
	return n, nil
}

func (r row) timestamp(key string) (time.Time, error) {
	raw := r.str(key)
	if raw == "" {
		return time.Now(), nil
	}
	t, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("column %s: %w", key, err)
	}
	return t, nil
}

type loader struct {
	file string
	load func(tx *gorm.DB, r row) error
}

// loaders lists the fixture files in load order; later files reference earlier ones.
var loaders = []loader{
	{"category.csv", func(tx *gorm.DB, r row) error {
		return insert(tx, &models.Category{ID: r.str("id"), Name: r.str("name"), Slug: r.str("slug")})
	}},
	{"genre.csv", func(tx *gorm.DB, r row) error {
		return insert(tx, &models.Genre{ID: r.str("id"), Name: r.str("name"), Slug: r.str("slug")})
	}},
	{"users.csv", func(tx *gorm.DB, r row) error {
		role := policy.RoleUser
		if raw := r.str("role"); raw != "" {
			parsed, err := policy.ParseRole(raw)
			if err != nil {
				return err
			}
			role = parsed
		}
		return insert(tx, &models.User{
			ID:        r.str("id"),
			Username:  r.str("username"),
			Email:     strings.ToLower(r.str("email")),
			Role:      role,
			Bio:       r.str("bio"),
			FirstName: r.str("first_name"),
			LastName:  r.str("last_name"),
		})
	}},
	{"titles.csv", func(tx *gorm.DB, r row) error {
		year, err := r.integer("year")
		if err != nil {
			return err
		}
		return insert(tx, &models.Title{
			ID:          r.str("id"),
			Name:        r.str("name"),
			Year:        year,
			Description: r.optional("description"),
			CategoryID:  r.optional("category"),
		})
	}},
	{"genre_title.csv", func(tx *gorm.DB, r row) error {
		return tx.Table("title_genres").
			Clauses(clause.OnConflict{DoNothing: true}).
			Create(map[string]any{"title_id": r.str("title_id"), "genre_id": r.str("genre_id")}).Error
	}},
	{"review.csv", func(tx *gorm.DB, r row) error {
		score, err := r.integer("score")
		if err != nil {
			return err
		}
		pubDate, err := r.timestamp("pub_date")
		if err != nil {
			return err
		}
		return insert(tx, &models.Review{
			ID:       r.str("id"),
			TitleID:  r.str("title_id"),
			AuthorID: r.str("author"),
			Text:     r.str("text"),
			Score:    score,
			PubDate:  pubDate,
		})
	}},
	{"comments.csv", func(tx *gorm.DB, r row) error {
		pubDate, err := r.timestamp("pub_date")
		if err != nil {
			return err
		}
		return insert(tx, &models.Comment{
			ID:       r.str("id"),
			ReviewID: r.str("review_id"),
			AuthorID: r.str("author"),
			Text:     r.str("text"),
			PubDate:  pubDate,
		})
	}},
}

func insert(tx *gorm.DB, value any) error {
	return tx.Omit(clause.Associations).Clauses(clause.OnConflict{DoNothing: true}).Create(value).Error
}

// Importer loads fixture directories.
type Importer struct {
	db *gorm.DB
}

// New creates an Importer writing to db.
func New(db *gorm.DB) *Importer {
	return &Importer{db: db}
}

// Run imports every known file found in dir inside a single transaction and
// reports how many rows each file contained. Missing files are skipped; rows
// whose id already exists are left untouched.
func (im *Importer) Run(dir string) (map[string]int, error) {
	counts := make(map[string]int, len(loaders))
	err := im.db.Transaction(func(tx *gorm.DB) error {
		for _, l := range loaders {
			path := filepath.Join(dir, l.file)
			n, err := loadFile(tx, path, l.load)
			if errors.Is(err, os.ErrNotExist) {
				logrus.WithField("file", l.file).Info("fixture file not found, skipping")
				continue
			}
			if err != nil {
				return fmt.Errorf("import %s: %w", l.file, err)
			}
			counts[l.file] = n
			logrus.WithFields(logrus.Fields{"file": l.file, "rows": n}).Info("fixture file imported")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return counts, nil
}

func loadFile(tx *gorm.DB, path string, load func(*gorm.DB, row) error) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	reader := csv.NewReader(f)
	header, err := reader.Read()
	if err == io.EOF {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("read header: %w", err)
	}
	for i := range header {
		header[i] = strings.TrimSpace(strings.TrimPrefix(header[i], "\ufeff"))
	}

	n := 0
	for {
		record, err := reader.Read()
		if err == io.EOF {
			return n, nil
		}
		if err != nil {
			return n, fmt.Errorf("line %d: %w", n+2, err)
		}
		r := make(row, len(header))
		for i, name := range header {
			if i < len(record) {
				r[name] = record[i]
			}
		}
		if err := load(tx, r); err != nil {
			return n, fmt.Errorf("line %d: %w", n+2, err)
		}
		n++
	}
}
