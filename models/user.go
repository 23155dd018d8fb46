package models

import "time"

type User struct {
	ID        uint   `gorm:"primaryKey"`
	Username  string `gorm:"size:150;uniqueIndex;not null"`
	Password  string `gorm:"size:255;not null"`
	CreatedAt time.Time
}

// Profile is the public identity of a User. Exactly one exists per User.
type Profile struct {
	ID         uint   `gorm:"primaryKey"`
	UserID     uint   `gorm:"uniqueIndex;not null"`
	User       User   `gorm:"constraint:OnDelete:CASCADE"`
	Username   string `gorm:"size:150;uniqueIndex;not null"`
	PublicName string `gorm:"size:150"`
	AvatarID   *uint
	Avatar     *UploadedImage `gorm:"constraint:OnDelete:SET NULL"`
	Bio        string         `gorm:"type:text"`
}

func (User) TableName() string {
	return "users"
}

func (Profile) TableName() string {
	return "profiles"
}
