package services

import "time"

type RatingsCount struct {
	Positive int64 `json:"positive"`
	Negative int64 `json:"negative"`
}

func (r RatingsCount) Rating() int64 {
	return r.Positive - r.Negative
}

type UserView struct {
	ID        uint      `json:"id"`
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"created_at"`
}

type ArticleView struct {
	ID             uint         `json:"id"`
	Author         uint         `json:"author"`
	AuthorUsername string       `json:"author_username"`
	Title          string       `json:"title"`
	Content        string       `json:"content"`
	Cover          *uint        `json:"cover"`
	CoverURL       *string      `json:"cover_url"`
	Category       *string      `json:"category"`
	Tags           []string     `json:"tags"`
	CreatedAt      time.Time    `json:"created_at"`
	UpdatedAt      time.Time    `json:"updated_at"`
	Rating         int64        `json:"rating"`
	RatingsCount   RatingsCount `json:"ratings_count"`
	YourRate       *bool        `json:"your_rate"`
	IsYourBookmark bool         `json:"is_your_bookmark"`
	YouAuthor      bool         `json:"you_author"`
}

type CommentView struct {
	ID             uint         `json:"id"`
	Article        uint         `json:"article"`
	Author         *uint        `json:"author"`
	AuthorUsername *string      `json:"author_username"`
	ReplyTo        *uint        `json:"reply_to"`
	Content        string       `json:"content"`
	CreatedAt      time.Time    `json:"created_at"`
	UpdatedAt      time.Time    `json:"updated_at"`
	Rating         int64        `json:"rating"`
	RatingsCount   RatingsCount `json:"ratings_count"`
	RepliesCount   int64        `json:"replies_count"`
	HasReplies     bool         `json:"has_replies"`
	YourRate       *bool        `json:"your_rate"`
	YouAuthor      bool         `json:"you_author"`
}

type ProfileView struct {
	Username            string  `json:"username"`
	PublicName          string  `json:"public_name"`
	Avatar              *uint   `json:"avatar"`
	AvatarURL           *string `json:"avatar_url"`
	Bio                 string  `json:"bio"`
	ArticlesCount       int64   `json:"articles_count"`
	SubscribersCount    int64   `json:"subscribers_count"`
	TotalArticlesRating int64   `json:"total_articles_rating"`
	IsYou               bool    `json:"is_you"`
	AreYouSubscribed    bool    `json:"are_you_subscribed"`
}

// TaxonomyView is a category or a tag.
type TaxonomyView struct {
	Name          string `json:"name"`
	ArticlesCount int64  `json:"articles_count"`
}

type UploadView struct {
	ID          uint      `json:"id"`
	URL         string    `json:"url"`
	Name        string    `json:"name"`
	ContentType string    `json:"content_type"`
	Size        int64     `json:"size"`
	User        uint      `json:"user"`
	UploadedAt  time.Time `json:"uploaded_at"`
}
