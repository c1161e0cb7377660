package models

type Genre struct {
	Slug string `json:"slug" gorm:"primaryKey;size:50"`
	Name string `json:"name" gorm:"size:256;not null"`
}

func (Genre) TableName() string {
	return "genres"
}
