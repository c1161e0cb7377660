package models

import "time"

type Review struct {
	ID       int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	TitleID  int64     `json:"title_id" gorm:"not null;index;uniqueIndex:uniq_review_author_title"`
	AuthorID string    `json:"author_id" gorm:"type:uuid;not null;uniqueIndex:uniq_review_author_title"`
	Text     string    `json:"text" gorm:"not null;type:text"`
	Score    int       `json:"score" gorm:"not null;check:score >= 1 AND score <= 10"`
	PubDate  time.Time `json:"pub_date" gorm:"autoCreateTime"`

	// Associations
	Author User  `json:"author,omitempty" gorm:"foreignKey:AuthorID;constraint:OnDelete:CASCADE;"`
	Title  Title `json:"-" gorm:"foreignKey:TitleID;constraint:OnDelete:CASCADE;"`
}

// OwnerID identifies the review's author for object-level permission checks.
func (r *Review) OwnerID() string {
	return r.AuthorID
}

func (Review) TableName() string {
	return "reviews"
}
