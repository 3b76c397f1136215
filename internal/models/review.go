package models

import "time"

// Review is a user's scored opinion of a title. A user reviews a title at most once.
type Review struct {
	ID       string `json:"id" gorm:"primaryKey;type:varchar(36)"`
	TitleID  string `json:"-" gorm:"type:varchar(36);not null;uniqueIndex:idx_reviews_author_title"`
	Title    *Title `json:"-" gorm:"constraint:OnDelete:CASCADE"`
	AuthorID string `json:"-" gorm:"type:varchar(36);not null;uniqueIndex:idx_reviews_author_title"`
	Author   *User  `json:"-" gorm:"constraint:OnDelete:CASCADE"`
	Text     string `json:"text" gorm:"type:text;not null"`
	Score    int    `json:"score" gorm:"not null;check:chk_reviews_score,score >= 1 AND score <= 10"`

	PubDate time.Time `json:"pub_date" gorm:"autoCreateTime;index"`
}

// Comment is a reply attached to a review.
type Comment struct {
	ID       string  `json:"id" gorm:"primaryKey;type:varchar(36)"`
	ReviewID string  `json:"-" gorm:"type:varchar(36);not null;index"`
	Review   *Review `json:"-" gorm:"constraint:OnDelete:CASCADE"`
	AuthorID string  `json:"-" gorm:"type:varchar(36);not null;index"`
	Author   *User   `json:"-" gorm:"constraint:OnDelete:CASCADE"`
	Text     string  `json:"text" gorm:"type:text;not null"`

	PubDate time.Time `json:"pub_date" gorm:"autoCreateTime;index"`
}

// AuthorName returns the author's username, or an empty string when the author
// was not loaded.
func (r *Review) AuthorName() string {
	if r.Author == nil {
		return ""
	}
	return r.Author.Username
}

// AuthorName returns the author's username, or an empty string when the author
// was not loaded.
func (c *Comment) AuthorName() string {
	if c.Author == nil {
		return ""
	}
	return c.Author.Username
}
