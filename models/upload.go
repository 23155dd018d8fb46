package models

import "time"

type UploadedImage struct {
	ID           uint   `gorm:"primaryKey"`
	Ref          string `gorm:"size:255;uniqueIndex;not null"`
	OriginalName string `gorm:"size:255"`
	ContentType  string `gorm:"size:100"`
	Size         int64
	UserID       uint `gorm:"not null;index"`
	User         User `gorm:"constraint:OnDelete:CASCADE"`
	UploadedAt   time.Time
}

type UploadedFile struct {
	ID           uint   `gorm:"primaryKey"`
	Ref          string `gorm:"size:255;uniqueIndex;not null"`
	OriginalName string `gorm:"size:255"`
	ContentType  string `gorm:"size:100"`
	Size         int64
	UserID       uint `gorm:"not null;index"`
	User         User `gorm:"constraint:OnDelete:CASCADE"`
	UploadedAt   time.Time
}

// CasbinRule is the persisted form of an authorization policy line.
type CasbinRule struct {
	ID    uint   `gorm:"primaryKey;autoIncrement"`
	Ptype string `gorm:"size:100;uniqueIndex:unique_index"`
	V0    string `gorm:"size:100;uniqueIndex:unique_index"`
	V1    string `gorm:"size:100;uniqueIndex:unique_index"`
	V2    string `gorm:"size:100;uniqueIndex:unique_index"`
	V3    string `gorm:"size:100;uniqueIndex:unique_index"`
	V4    string `gorm:"size:100;uniqueIndex:unique_index"`
	V5    string `gorm:"size:100;uniqueIndex:unique_index"`
}

func (UploadedImage) TableName() string {
	return "uploaded_images"
}

func (UploadedFile) TableName() string {
	return "uploaded_files"
}

func (CasbinRule) TableName() string {
	return "casbin_rule"
}

// All lists every model in migration order.
func All() []interface{} {
	return []interface{}{
		&User{},
		&UploadedImage{},
		&UploadedFile{},
		&Profile{},
		&Category{},
		&Tag{},
		&Article{},
		&Comment{},
		&ArticleRate{},
		&CommentRate{},
		&ArticleFavorite{},
		&ProfileSubscription{},
	}
}
