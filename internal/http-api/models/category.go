package models

type Category struct {
	Slug        string `json:"slug" gorm:"primaryKey;size:50"`
	Name        string `json:"name" gorm:"size:256;not null"`
	Description string `json:"description,omitempty" gorm:"type:text"`
}

func (Category) TableName() string {
	return "categories"
}
