package services

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/ProgramMysticxxx/blog-project/access"
	"github.com/ProgramMysticxxx/blog-project/models"
	"github.com/ProgramMysticxxx/blog-project/storage"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const maxTitleLength = 100

// ArticleInput is the writable part of an article. Absent fields are left
// untouched by partial updates.
type ArticleInput struct {
	Title    *string          `json:"title"`
	Content  *string          `json:"content"`
	Cover    Nullable[uint]   `json:"cover"`
	Category Nullable[string] `json:"category"`
	Tags     *[]string        `json:"tags"`
}

type ArticleService struct {
	deps
}

func NewArticleService(db *gorm.DB, authz *access.Authorizer, store storage.BlobStore) *ArticleService {
	return &ArticleService{deps: deps{db: db, authz: authz, store: store}}
}

// normalizeTags trims and de-duplicates tag names, keeping their order.
// problem is set when a name is invalid.
func normalizeTags(names []string) (result []string, problem string) {
	seen := make(map[string]bool, len(names))
	result = make([]string, 0, len(names))
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			return nil, "Tag names may not be blank."
		}
		if utf8.RuneCountInString(name) > models.MaxNameLength {
			return nil, fmt.Sprintf("Ensure tag names have no more than %d characters.", models.MaxNameLength)
		}
		if !seen[name] {
			seen[name] = true
			result = append(result, name)
		}
	}
	return result, ""
}

// validate checks the input. full requires every mandatory field.
func (in *ArticleInput) validate(full bool) error {
	verr := &ValidationError{}
	if in.Title != nil {
		title := strings.TrimSpace(*in.Title)
		in.Title = &title
		if title == "" {
			verr.Add("title", "This field may not be blank.")
		} else if utf8.RuneCountInString(title) > maxTitleLength {
			verr.Add("title", fmt.Sprintf("Ensure this field has no more than %d characters.", maxTitleLength))
		}
	} else if full {
		verr.Add("title", "This field is required.")
	}
	if in.Content != nil {
		if strings.TrimSpace(*in.Content) == "" {
			verr.Add("content", "This field may not be blank.")
		}
	} else if full {
		verr.Add("content", "This field is required.")
	}
	if in.Tags != nil {
		if tags, problem := normalizeTags(*in.Tags); problem != "" {
			verr.Add("tags", problem)
		} else {
			in.Tags = &tags
		}
	}
	return verr.OrNil()
}

// checkReferences makes sure the cover image and the category exist.
func (in *ArticleInput) checkReferences(tx *gorm.DB) error {
	verr := &ValidationError{}
	if in.Cover.Set && in.Cover.Value != nil {
		var n int64
		if err := tx.Model(&models.UploadedImage{}).Where("id = ?", *in.Cover.Value).Count(&n).Error; err != nil {
			return err
		}
		if n == 0 {
			verr.Add("cover", fmt.Sprintf("Invalid pk \"%d\" - object does not exist.", *in.Cover.Value))
		}
	}
	if in.Category.Set && in.Category.Value != nil {
		var n int64
		if err := tx.Model(&models.Category{}).Where("name = ?", *in.Category.Value).Count(&n).Error; err != nil {
			return err
		}
		if n == 0 {
			verr.Add("category", fmt.Sprintf("Object with name=%s does not exist.", *in.Category.Value))
		}
	}
	return verr.OrNil()
}

// setTags resolves or creates the named tags and makes them the tags of the
// article.
func setTags(tx *gorm.DB, articleID uint, names []string) error {
	if err := tx.Exec("DELETE FROM article_tags WHERE article_id = ?", articleID).Error; err != nil {
		return err
	}
	if len(names) == 0 {
		return nil
	}

	tags := make([]models.Tag, len(names))
	links := make([]map[string]interface{}, len(names))
	for i, name := range names {
		tags[i] = models.Tag{Name: name}
		links[i] = map[string]interface{}{"article_id": articleID, "tag_name": name}
	}
	if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&tags).Error; err != nil {
		return err
	}
	return tx.Table("article_tags").Create(links).Error
}

// Create publishes an article written by p.
func (s *ArticleService) Create(ctx context.Context, p access.Principal, in ArticleInput) (*ArticleView, error) {
	if err := s.authz.Authorize(p, access.Create, access.Article, nil); err != nil {
		return nil, err
	}
	if err := in.validate(true); err != nil {
		return nil, err
	}

	var article models.Article
	err := s.tx(ctx, func(tx *gorm.DB) error {
		if err := in.checkReferences(tx); err != nil {
			return err
		}

		article = models.Article{
			AuthorID:     p.ID,
			Title:        *in.Title,
			Content:      *in.Content,
			CoverID:      in.Cover.Value,
			CategoryName: in.Category.Value,
		}
		if err := tx.Omit(clause.Associations).Create(&article).Error; err != nil {
			return err
		}

		var tags []string
		if in.Tags != nil {
			tags = *in.Tags
		}
		return setTags(tx, article.ID, tags)
	})
	if err != nil {
		return nil, wrap(err, "failed to create article")
	}
	return s.Get(ctx, p, article.ID)
}

// Update modifies an article of p. partial keeps the absent fields.
func (s *ArticleService) Update(ctx context.Context, p access.Principal, id uint, in ArticleInput, partial bool) (*ArticleView, error) {
	article, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.authz.Authorize(p, access.Update, access.Article, &article.AuthorID); err != nil {
		return nil, err
	}
	if err := in.validate(!partial); err != nil {
		return nil, err
	}

	err = s.tx(ctx, func(tx *gorm.DB) error {
		if err := in.checkReferences(tx); err != nil {
			return err
		}

		// Every modification refreshes updated_at, tag changes included
		changes := map[string]interface{}{"updated_at": time.Now()}
		if in.Title != nil {
			changes["title"] = *in.Title
		}
		if in.Content != nil {
			changes["content"] = *in.Content
		}
		if in.Cover.Set || !partial {
			changes["cover_id"] = in.Cover.Value
		}
		if in.Category.Set || !partial {
			changes["category_name"] = in.Category.Value
		}
		if err := tx.Model(&models.Article{ID: article.ID}).Omit(clause.Associations).Updates(changes).Error; err != nil {
			return err
		}

		if in.Tags != nil {
			return setTags(tx, article.ID, *in.Tags)
		}
		if !partial {
			return setTags(tx, article.ID, nil)
		}
		return nil
	})
	if err != nil {
		return nil, wrap(err, "failed to update article")
	}
	return s.Get(ctx, p, article.ID)
}

// Delete removes an article of p with its comments, rates, favorites and
// tag links.
func (s *ArticleService) Delete(ctx context.Context, p access.Principal, id uint) error {
	article, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	if err := s.authz.Authorize(p, access.Delete, access.Article, &article.AuthorID); err != nil {
		return err
	}

	err = s.tx(ctx, func(tx *gorm.DB) error {
		return deleteArticles(tx, []uint{article.ID})
	})
	return wrap(err, "failed to delete article")
}

func deleteArticles(tx *gorm.DB, ids []uint) error {
	if len(ids) == 0 {
		return nil
	}

	var commentIDs []uint
	if err := tx.Model(&models.Comment{}).Where("article_id IN ?", ids).Pluck("id", &commentIDs).Error; err != nil {
		return err
	}
	if err := deleteComments(tx, commentIDs); err != nil {
		return err
	}

	if err := tx.Where("article_id IN ?", ids).Delete(&models.ArticleRate{}).Error; err != nil {
		return err
	}
	if err := tx.Where("article_id IN ?", ids).Delete(&models.ArticleFavorite{}).Error; err != nil {
		return err
	}
	if err := tx.Exec("DELETE FROM article_tags WHERE article_id IN ?", ids).Error; err != nil {
		return err
	}
	return tx.Where("id IN ?", ids).Delete(&models.Article{}).Error
}

// Get retrieves one article as seen by p.
func (s *ArticleService) Get(ctx context.Context, p access.Principal, id uint) (*ArticleView, error) {
	if err := s.authz.Authorize(p, access.Retrieve, access.Article, nil); err != nil {
		return nil, err
	}

	var article models.Article
	err := s.preload(s.db.WithContext(ctx)).First(&article, id).Error
	if err != nil {
		if isNotFound(err) {
			return nil, notFound("article")
		}
		return nil, fmt.Errorf("failed to load article: %w", err)
	}

	views, err := s.views(ctx, p, []models.Article{article})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

// List returns one page of the articles matching q.
func (s *ArticleService) List(ctx context.Context, p access.Principal, q ArticleQuery, params PageParams) ([]ArticleView, *PaginationResult, error) {
	if err := s.authz.Authorize(p, access.List, access.Article, nil); err != nil {
		return nil, nil, err
	}

	order, err := orderBy(q.Ordering, "-created_at", articleOrdering(p), "articles.id")
	if err != nil {
		return nil, nil, err
	}
	// Validate the filters once before building queries from them
	if _, err := filterArticles(s.db, p, q); err != nil {
		return nil, nil, err
	}
	base := func() *gorm.DB {
		db, _ := filterArticles(s.db.WithContext(ctx).Model(&models.Article{}), p, q)
		return db
	}

	var articles []models.Article
	pagination, err := page(base, order, params, func(tx *gorm.DB) (int, error) {
		err := s.preload(tx).Find(&articles).Error
		return len(articles), err
	})
	if err != nil {
		return nil, nil, err
	}

	views, err := s.views(ctx, p, articles)
	if err != nil {
		return nil, nil, err
	}
	return views, pagination, nil
}

// Favorite bookmarks an article for p. Favoriting twice is a no-op.
func (s *ArticleService) Favorite(ctx context.Context, p access.Principal, id uint) error {
	if err := s.authz.Authorize(p, access.Favorite, access.Article, nil); err != nil {
		return err
	}
	if _, err := s.load(ctx, id); err != nil {
		return err
	}

	favorite := models.ArticleFavorite{UserID: p.ID, ArticleID: id, FavoredAt: time.Now()}
	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "article_id"}},
			DoNothing: true,
		}).
		Omit(clause.Associations).
		Create(&favorite).Error
	return wrap(err, "failed to favorite article")
}

func (s *ArticleService) Unfavorite(ctx context.Context, p access.Principal, id uint) error {
	if err := s.authz.Authorize(p, access.Favorite, access.Article, nil); err != nil {
		return err
	}
	if _, err := s.load(ctx, id); err != nil {
		return err
	}

	err := s.db.WithContext(ctx).Where("user_id = ? AND article_id = ?", p.ID, id).Delete(&models.ArticleFavorite{}).Error
	return wrap(err, "failed to unfavorite article")
}

// Rate likes (positive) or dislikes an article. A second rate replaces the
// first one.
func (s *ArticleService) Rate(ctx context.Context, p access.Principal, id uint, positive bool) error {
	if err := s.authz.Authorize(p, access.Rate, access.Article, nil); err != nil {
		return err
	}
	if _, err := s.load(ctx, id); err != nil {
		return err
	}

	rate := models.ArticleRate{UserID: p.ID, ArticleID: id, IsPositive: positive, RatedAt: time.Now()}
	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "article_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"is_positive", "rated_at"}),
		}).
		Omit(clause.Associations).
		Create(&rate).Error
	return wrap(err, "failed to rate article")
}

func (s *ArticleService) Unrate(ctx context.Context, p access.Principal, id uint) error {
	if err := s.authz.Authorize(p, access.Rate, access.Article, nil); err != nil {
		return err
	}
	if _, err := s.load(ctx, id); err != nil {
		return err
	}

	err := s.db.WithContext(ctx).Where("user_id = ? AND article_id = ?", p.ID, id).Delete(&models.ArticleRate{}).Error
	return wrap(err, "failed to unrate article")
}

func (s *ArticleService) load(ctx context.Context, id uint) (*models.Article, error) {
	var article models.Article
	if err := s.db.WithContext(ctx).First(&article, id).Error; err != nil {
		if isNotFound(err) {
			return nil, notFound("article")
		}
		return nil, fmt.Errorf("failed to load article: %w", err)
	}
	return &article, nil
}

func (s *ArticleService) preload(db *gorm.DB) *gorm.DB {
	return db.Preload("Author").Preload("Cover").Preload("Tags", func(db *gorm.DB) *gorm.DB {
		return db.Order("tags.name")
	})
}

// views annotates a page of articles with their aggregates and the state of
// the viewer.
func (s *ArticleService) views(ctx context.Context, p access.Principal, articles []models.Article) ([]ArticleView, error) {
	ids := make([]uint, len(articles))
	for i, a := range articles {
		ids[i] = a.ID
	}

	ratings, err := articleRatings(ctx, s.db, ids)
	if err != nil {
		return nil, err
	}
	viewer, err := articleViewer(ctx, s.db, p, ids)
	if err != nil {
		return nil, err
	}

	views := make([]ArticleView, len(articles))
	for i, a := range articles {
		tags := make([]string, len(a.Tags))
		for j, t := range a.Tags {
			tags[j] = t.Name
		}
		var coverURL *string
		if a.Cover != nil {
			url := s.blobURL(a.Cover.Ref)
			coverURL = &url
		}
		views[i] = ArticleView{
			ID:             a.ID,
			Author:         a.AuthorID,
			AuthorUsername: a.Author.Username,
			Title:          a.Title,
			Content:        a.Content,
			Cover:          a.CoverID,
			CoverURL:       coverURL,
			Category:       a.CategoryName,
			Tags:           tags,
			CreatedAt:      a.CreatedAt,
			UpdatedAt:      a.UpdatedAt,
			Rating:         ratings[a.ID].Rating(),
			RatingsCount:   ratings[a.ID],
			YourRate:       viewer.rate(a.ID),
			IsYourBookmark: viewer.favorites[a.ID],
			YouAuthor:      p.Is(a.AuthorID),
		}
	}
	return views, nil
}
