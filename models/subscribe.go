package models

import "time"

// ProfileSubscription is a user following a profile.
type ProfileSubscription struct {
	ID           uint    `gorm:"primaryKey"`
	UserID       uint    `gorm:"not null;uniqueIndex:idx_profile_subscriptions_user_profile"`
	User         User    `gorm:"constraint:OnDelete:CASCADE"`
	ProfileID    uint    `gorm:"not null;uniqueIndex:idx_profile_subscriptions_user_profile;index"`
	Profile      Profile `gorm:"constraint:OnDelete:CASCADE"`
	SubscribedAt time.Time
}

func (ProfileSubscription) TableName() string {
	return "profile_subscriptions"
}
