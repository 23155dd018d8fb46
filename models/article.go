package models

import "time"

// MaxNameLength bounds category and tag names.
const MaxNameLength = 32

type Category struct {
	Name string `gorm:"primaryKey;size:32"`
}

type Tag struct {
	Name string `gorm:"primaryKey;size:32"`
}

type Article struct {
	ID           uint   `gorm:"primaryKey"`
	AuthorID     uint   `gorm:"not null;index"`
	Author       User   `gorm:"constraint:OnDelete:CASCADE"`
	Title        string `gorm:"size:100;not null"`
	Content      string `gorm:"type:text;not null"`
	CoverID      *uint
	Cover        *UploadedImage `gorm:"constraint:OnDelete:SET NULL"`
	CategoryName *string        `gorm:"size:32;index"`
	Category     *Category      `gorm:"foreignKey:CategoryName;references:Name;constraint:OnDelete:SET NULL"`
	Tags         []Tag          `gorm:"many2many:article_tags;constraint:OnDelete:CASCADE"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type Comment struct {
	ID        uint     `gorm:"primaryKey"`
	ArticleID uint     `gorm:"not null;index"`
	Article   Article  `gorm:"constraint:OnDelete:CASCADE"`
	AuthorID  *uint    `gorm:"index"`
	Author    *User    `gorm:"constraint:OnDelete:SET NULL"`
	ReplyToID *uint    `gorm:"index"`
	ReplyTo   *Comment `gorm:"constraint:OnDelete:CASCADE"`
	Content   string   `gorm:"type:text;not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (Category) TableName() string {
	return "categories"
}

func (Tag) TableName() string {
	return "tags"
}

func (Article) TableName() string {
	return "articles"
}

func (Comment) TableName() string {
	return "comments"
}
