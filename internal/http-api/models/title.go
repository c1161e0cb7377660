package models

import "time"

type Title struct {
	ID          int64   `json:"id" gorm:"primaryKey;autoIncrement"`
	Name        string  `json:"name" gorm:"size:256;not null"`
	Year        int     `json:"year" gorm:"not null"`
	Description string  `json:"description" gorm:"type:text"`
	CategoryID  *string `json:"-" gorm:"size:50"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`

	// Associations. Category is a weak reference: deleting a category must
	// leave its titles in place with a null category.
	Category *Category `json:"category,omitempty" gorm:"foreignKey:CategoryID;references:Slug;constraint:OnDelete:SET NULL;"`
	Genres   []Genre   `json:"genres,omitempty" gorm:"many2many:title_genres;constraint:OnDelete:CASCADE;"`
}

func (Title) TableName() string {
	return "titles"
}
