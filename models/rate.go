package models

import "time"

// ArticleRate is a like (IsPositive) or dislike of an article. One per (user, article).
type ArticleRate struct {
	ID         uint    `gorm:"primaryKey"`
	UserID     uint    `gorm:"not null;uniqueIndex:idx_article_rates_user_article"`
	User       User    `gorm:"constraint:OnDelete:CASCADE"`
	ArticleID  uint    `gorm:"not null;uniqueIndex:idx_article_rates_user_article;index"`
	Article    Article `gorm:"constraint:OnDelete:CASCADE"`
	IsPositive bool    `gorm:"not null"`
	RatedAt    time.Time
}

// CommentRate is a like (IsPositive) or dislike of a comment. One per (user, comment).
type CommentRate struct {
	ID         uint    `gorm:"primaryKey"`
	UserID     uint    `gorm:"not null;uniqueIndex:idx_comment_rates_user_comment"`
	User       User    `gorm:"constraint:OnDelete:CASCADE"`
	CommentID  uint    `gorm:"not null;uniqueIndex:idx_comment_rates_user_comment;index"`
	Comment    Comment `gorm:"constraint:OnDelete:CASCADE"`
	IsPositive bool    `gorm:"not null"`
	RatedAt    time.Time
}

type ArticleFavorite struct {
	ID        uint    `gorm:"primaryKey"`
	UserID    uint    `gorm:"not null;uniqueIndex:idx_article_favorites_user_article"`
	User      User    `gorm:"constraint:OnDelete:CASCADE"`
	ArticleID uint    `gorm:"not null;uniqueIndex:idx_article_favorites_user_article;index"`
	Article   Article `gorm:"constraint:OnDelete:CASCADE"`
	FavoredAt time.Time
}

func (ArticleRate) TableName() string {
	return "article_rates"
}

func (CommentRate) TableName() string {
	return "comment_rates"
}

func (ArticleFavorite) TableName() string {
	return "article_favorites"
}
