package models

import "time"

// Category groups titles by kind (book, film, music, ...).
type Category struct {
	ID   string `json:"-" gorm:"primaryKey;type:varchar(36)"`
	Name string `json:"name" gorm:"type:varchar(256);not null;index"`
	Slug string `json:"slug" gorm:"uniqueIndex;type:varchar(50);not null"`
}

// Genre tags titles; a title may carry many genres.
type Genre struct {
	ID   string `json:"-" gorm:"primaryKey;type:varchar(36)"`
	Name string `json:"name" gorm:"type:varchar(256);not null;index"`
	Slug string `json:"slug" gorm:"uniqueIndex;type:varchar(50);not null"`
}

// Title is a reviewable work.
type Title struct {
	ID          string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Name        string    `json:"name" gorm:"type:varchar(256);not null;index"`
	Year        int       `json:"year" gorm:"not null;index"`
	Description *string   `json:"description" gorm:"type:text"`
	CategoryID  *string   `json:"-" gorm:"type:varchar(36);index"`
	Category    *Category `json:"category" gorm:"constraint:OnDelete:SET NULL"`
	Genres      []Genre   `json:"genre" gorm:"many2many:title_genres;constraint:OnDelete:CASCADE"`

	// Rating is the mean review score, filled by the read queries and never stored.
	Rating *float64 `json:"rating" gorm:"->;-:migration"`

	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`
}
