package services

import (
	"fmt"
	"strings"
	"time"

	"github.com/ProgramMysticxxx/blog-project/access"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// DateLayout is the layout of calendar day filters.
const DateLayout = "2006-01-02"

// ArticleQuery narrows and orders an article list.
type ArticleQuery struct {
	// Flags, applied only for authenticated principals.
	Favorited  bool
	Rated      bool
	Subscribed bool

	Search    string
	CreatedOn string
	UpdatedOn string
	Author    string
	AuthorID  *uint
	Category  string
	Tags      []string
	Ordering  string
}

// CommentQuery narrows and orders a comment list. TopLevel keeps only
// comments that reply to nothing and wins over ReplyTo.
type CommentQuery struct {
	Article  *uint
	Author   *uint
	ReplyTo  *uint
	TopLevel bool
	Ordering string
}

type ProfileQuery struct {
	Subscribed bool
	Ordering   string
}

type TaxonomyQuery struct {
	Search   string
	Ordering string
}

func articleOrdering(p access.Principal) map[string]orderTerm {
	favoritedAt := expr("(SELECT MAX(af.favored_at) FROM article_favorites af WHERE af.article_id = articles.id)")
	if p.Authenticated() {
		favoritedAt = expr("(SELECT af.favored_at FROM article_favorites af WHERE af.article_id = articles.id AND af.user_id = ?)", p.ID)
	}
	return map[string]orderTerm{
		"created_at":   column("articles.created_at"),
		"updated_at":   column("articles.updated_at"),
		"rating":       column(ratingExpr("article_rates", "article_id", "articles")),
		"favorited_at": favoritedAt,
	}
}

var commentOrdering = map[string]orderTerm{
	"created_at": column("comments.created_at"),
	"rating":     column(ratingExpr("comment_rates", "comment_id", "comments")),
}

func profileOrdering(p access.Principal) map[string]orderTerm {
	return map[string]orderTerm{
		"username":      column("profiles.username"),
		"subscribed_at": expr("(SELECT ps.subscribed_at FROM profile_subscriptions ps WHERE ps.profile_id = profiles.id AND ps.user_id = ?)", p.ID),
	}
}

var (
	categoryOrdering = map[string]orderTerm{
		"name":           column("categories.name"),
		"articles_count": column(categoryArticlesCountExpr),
	}
	tagOrdering = map[string]orderTerm{
		"name":           column("tags.name"),
		"articles_count": column(tagArticlesCountExpr),
	}
)

// dayRange returns the bounds of the calendar day named by value.
func dayRange(field, value string) (time.Time, time.Time, error) {
	day, err := time.ParseInLocation(DateLayout, strings.TrimSpace(value), time.UTC)
	if err != nil {
		return time.Time{}, time.Time{}, fieldError(field, "enter a valid date (YYYY-MM-DD)")
	}
	return day, day.AddDate(0, 0, 1), nil
}

// filterArticles applies the flags, search and field filters of q.
func filterArticles(db *gorm.DB, p access.Principal, q ArticleQuery) (*gorm.DB, error) {
	if p.Authenticated() {
		if q.Favorited {
			db = db.Where("EXISTS (SELECT 1 FROM article_favorites af WHERE af.article_id = articles.id AND af.user_id = ?)", p.ID)
		}
		if q.Rated {
			db = db.Where("EXISTS (SELECT 1 FROM article_rates ar WHERE ar.article_id = articles.id AND ar.user_id = ?)", p.ID)
		}
		if q.Subscribed {
			db = db.Where("articles.author_id IN (SELECT pr.user_id FROM profiles pr JOIN profile_subscriptions ps ON ps.profile_id = pr.id WHERE ps.user_id = ?)", p.ID)
		}
	}

	if strings.TrimSpace(q.Search) != "" {
		like := likePattern(q.Search)
		db = db.Where(
			"LOWER(articles.title) LIKE ?"+likeEscape+" OR LOWER(articles.content) LIKE ?"+likeEscape+
				" OR LOWER(articles.category_name) LIKE ?"+likeEscape+
				" OR EXISTS (SELECT 1 FROM users u WHERE u.id = articles.author_id AND LOWER(u.username) LIKE ?"+likeEscape+")"+
				" OR EXISTS (SELECT 1 FROM article_tags tg WHERE tg.article_id = articles.id AND LOWER(tg.tag_name) LIKE ?"+likeEscape+")",
			like, like, like, like, like,
		)
	}

	if q.CreatedOn != "" {
		from, to, err := dayRange("created_at", q.CreatedOn)
		if err != nil {
			return nil, err
		}
		db = db.Where("articles.created_at >= ? AND articles.created_at < ?", from, to)
	}
	if q.UpdatedOn != "" {
		from, to, err := dayRange("updated_at", q.UpdatedOn)
		if err != nil {
			return nil, err
		}
		db = db.Where("articles.updated_at >= ? AND articles.updated_at < ?", from, to)
	}
	if q.Author != "" {
		db = db.Where("articles.author_id IN (SELECT u.id FROM users u WHERE u.username = ?)", q.Author)
	}
	if q.AuthorID != nil {
		db = db.Where("articles.author_id = ?", *q.AuthorID)
	}
	if q.Category != "" {
		db = db.Where("articles.category_name = ?", q.Category)
	}
	if len(q.Tags) > 0 {
		db = db.Where("EXISTS (SELECT 1 FROM article_tags tg WHERE tg.article_id = articles.id AND tg.tag_name IN ?)", q.Tags)
	}
	return db, nil
}

func filterComments(db *gorm.DB, q CommentQuery) *gorm.DB {
	if q.Article != nil {
		db = db.Where("comments.article_id = ?", *q.Article)
	}
	if q.Author != nil {
		db = db.Where("comments.author_id = ?", *q.Author)
	}
	switch {
	case q.TopLevel:
		db = db.Where("comments.reply_to_id IS NULL")
	case q.ReplyTo != nil:
		db = db.Where("comments.reply_to_id = ?", *q.ReplyTo)
	}
	return db
}

func filterProfiles(db *gorm.DB, p access.Principal, q ProfileQuery) *gorm.DB {
	if p.Authenticated() && q.Subscribed {
		db = db.Where("profiles.id IN (SELECT ps.profile_id FROM profile_subscriptions ps WHERE ps.user_id = ?)", p.ID)
	}
	return db
}

func filterNames(db *gorm.DB, table string, q TaxonomyQuery) *gorm.DB {
	if strings.TrimSpace(q.Search) != "" {
		db = db.Where(fmt.Sprintf("LOWER(%s.name) LIKE ?%s", table, likeEscape), likePattern(q.Search))
	}
	return db
}

// page counts the rows matched by base, then hands the ordered and limited
// query to find, which loads the rows and returns how many it got.
func page(base func() *gorm.DB, order clause.OrderBy, params PageParams, find func(tx *gorm.DB) (int, error)) (*PaginationResult, error) {
	var total int64
	if err := base().Count(&total).Error; err != nil {
		return nil, fmt.Errorf("failed to count rows: %w", err)
	}

	params = params.normalized()
	n, err := find(base().Clauses(order).Offset(params.Offset()).Limit(params.PageSize))
	if err != nil {
		return nil, fmt.Errorf("failed to load page: %w", err)
	}
	return paginate(params, n, total)
}
