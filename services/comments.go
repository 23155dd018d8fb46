package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ProgramMysticxxx/blog-project/access"
	"github.com/ProgramMysticxxx/blog-project/models"
	"github.com/ProgramMysticxxx/blog-project/storage"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CommentInput is the writable part of a comment. Article and ReplyTo are
// only read on creation.
type CommentInput struct {
	Article *uint   `json:"article"`
	ReplyTo *uint   `json:"reply_to"`
	Content *string `json:"content"`
}

type CommentService struct {
	deps
}

func NewCommentService(db *gorm.DB, authz *access.Authorizer, store storage.BlobStore) *CommentService {
	return &CommentService{deps: deps{db: db, authz: authz, store: store}}
}

func contentProblem(content *string, required bool) string {
	switch {
	case content == nil && required:
		return "This field is required."
	case content != nil && strings.TrimSpace(*content) == "":
		return "This field may not be blank."
	}
	return ""
}

// Create posts a comment of p under an article, optionally replying to
// another comment of the same article.
func (s *CommentService) Create(ctx context.Context, p access.Principal, in CommentInput) (*CommentView, error) {
	if err := s.authz.Authorize(p, access.Create, access.Comment, nil); err != nil {
		return nil, err
	}
	verr := &ValidationError{}
	if in.Article == nil {
		verr.Add("article", "This field is required.")
	}
	if problem := contentProblem(in.Content, true); problem != "" {
		verr.Add("content", problem)
	}
	if err := verr.OrNil(); err != nil {
		return nil, err
	}

	comment := models.Comment{
		ArticleID: *in.Article,
		AuthorID:  uintPtr(p.ID),
		ReplyToID: in.ReplyTo,
		Content:   *in.Content,
	}
	err := s.tx(ctx, func(tx *gorm.DB) error {
		var n int64
		if err := tx.Model(&models.Article{}).Where("id = ?", comment.ArticleID).Count(&n).Error; err != nil {
			return err
		}
		if n == 0 {
			return fieldError("article", "Invalid pk \"%d\" - object does not exist.", comment.ArticleID)
		}

		if comment.ReplyToID != nil {
			var parent models.Comment
			if err := tx.Select("id", "article_id").First(&parent, *comment.ReplyToID).Error; err != nil {
				if isNotFound(err) {
					return fieldError("reply_to", "Invalid pk \"%d\" - object does not exist.", *comment.ReplyToID)
				}
				return err
			}
			if parent.ArticleID != comment.ArticleID {
				return fieldError("reply_to", "The comment you reply to belongs to another article.")
			}
		}

		return tx.Omit(clause.Associations).Create(&comment).Error
	})
	if err != nil {
		return nil, wrap(err, "failed to create comment")
	}
	return s.Get(ctx, p, comment.ID)
}

// Update changes the content of a comment of p.
func (s *CommentService) Update(ctx context.Context, p access.Principal, id uint, in CommentInput, partial bool) (*CommentView, error) {
	comment, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.authz.Authorize(p, access.Update, access.Comment, comment.AuthorID); err != nil {
		return nil, err
	}
	if problem := contentProblem(in.Content, !partial); problem != "" {
		return nil, fieldError("content", "%s", problem)
	}

	changes := map[string]interface{}{"updated_at": time.Now()}
	if in.Content != nil {
		changes["content"] = *in.Content
	}
	err = s.db.WithContext(ctx).Model(&models.Comment{ID: comment.ID}).Omit(clause.Associations).Updates(changes).Error
	if err != nil {
		return nil, fmt.Errorf("failed to update comment: %w", err)
	}
	return s.Get(ctx, p, comment.ID)
}

// Delete removes a comment of p together with every reply below it.
func (s *CommentService) Delete(ctx context.Context, p access.Principal, id uint) error {
	comment, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	if err := s.authz.Authorize(p, access.Delete, access.Comment, comment.AuthorID); err != nil {
		return err
	}

	err = s.tx(ctx, func(tx *gorm.DB) error {
		return deleteComments(tx, []uint{comment.ID})
	})
	return wrap(err, "failed to delete comment")
}

// deleteComments removes the comments, their replies at any depth and the
// rates of all of them. The deepest replies go first.
func deleteComments(tx *gorm.DB, ids []uint) error {
	if len(ids) == 0 {
		return nil
	}

	levels := [][]uint{ids}
	seen := make(map[uint]bool, len(ids))
	for _, id := range ids {
		seen[id] = true
	}
	for frontier := ids; len(frontier) > 0; {
		var replies []uint
		if err := tx.Model(&models.Comment{}).Where("reply_to_id IN ?", frontier).Pluck("id", &replies).Error; err != nil {
			return err
		}
		next := make([]uint, 0, len(replies))
		for _, id := range replies {
			if !seen[id] {
				seen[id] = true
				next = append(next, id)
			}
		}
		if len(next) > 0 {
			levels = append(levels, next)
		}
		frontier = next
	}

	for i := len(levels) - 1; i >= 0; i-- {
		if err := tx.Where("comment_id IN ?", levels[i]).Delete(&models.CommentRate{}).Error; err != nil {
			return err
		}
		if err := tx.Where("id IN ?", levels[i]).Delete(&models.Comment{}).Error; err != nil {
			return err
		}
	}
	return nil
}

// Get retrieves one comment as seen by p.
func (s *CommentService) Get(ctx context.Context, p access.Principal, id uint) (*CommentView, error) {
	if err := s.authz.Authorize(p, access.Retrieve, access.Comment, nil); err != nil {
		return nil, err
	}

	var comment models.Comment
	if err := s.db.WithContext(ctx).Preload("Author").First(&comment, id).Error; err != nil {
		if isNotFound(err) {
			return nil, notFound("comment")
		}
		return nil, fmt.Errorf("failed to load comment: %w", err)
	}

	views, err := s.views(ctx, p, []models.Comment{comment})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

// List returns one page of the comments matching q.
func (s *CommentService) List(ctx context.Context, p access.Principal, q CommentQuery, params PageParams) ([]CommentView, *PaginationResult, error) {
	if err := s.authz.Authorize(p, access.List, access.Comment, nil); err != nil {
		return nil, nil, err
	}

	order, err := orderBy(q.Ordering, "created_at", commentOrdering, "comments.id")
	if err != nil {
		return nil, nil, err
	}
	base := func() *gorm.DB {
		return filterComments(s.db.WithContext(ctx).Model(&models.Comment{}), q)
	}

	var comments []models.Comment
	pagination, err := page(base, order, params, func(tx *gorm.DB) (int, error) {
		err := tx.Preload("Author").Find(&comments).Error
		return len(comments), err
	})
	if err != nil {
		return nil, nil, err
	}

	views, err := s.views(ctx, p, comments)
	if err != nil {
		return nil, nil, err
	}
	return views, pagination, nil
}

// Rate likes (positive) or dislikes a comment. A second rate replaces the
// first one.
func (s *CommentService) Rate(ctx context.Context, p access.Principal, id uint, positive bool) error {
	if err := s.authz.Authorize(p, access.Rate, access.Comment, nil); err != nil {
		return err
	}
	if _, err := s.load(ctx, id); err != nil {
		return err
	}

	rate := models.CommentRate{UserID: p.ID, CommentID: id, IsPositive: positive, RatedAt: time.Now()}
	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "comment_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"is_positive", "rated_at"}),
		}).
		Omit(clause.Associations).
		Create(&rate).Error
	return wrap(err, "failed to rate comment")
}

func (s *CommentService) Unrate(ctx context.Context, p access.Principal, id uint) error {
	if err := s.authz.Authorize(p, access.Rate, access.Comment, nil); err != nil {
		return err
	}
	if _, err := s.load(ctx, id); err != nil {
		return err
	}

	err := s.db.WithContext(ctx).Where("user_id = ? AND comment_id = ?", p.ID, id).Delete(&models.CommentRate{}).Error
	return wrap(err, "failed to unrate comment")
}

func (s *CommentService) load(ctx context.Context, id uint) (*models.Comment, error) {
	var comment models.Comment
	if err := s.db.WithContext(ctx).First(&comment, id).Error; err != nil {
		if isNotFound(err) {
			return nil, notFound("comment")
		}
		return nil, fmt.Errorf("failed to load comment: %w", err)
	}
	return &comment, nil
}

func (s *CommentService) views(ctx context.Context, p access.Principal, comments []models.Comment) ([]CommentView, error) {
	ids := make([]uint, len(comments))
	for i, c := range comments {
		ids[i] = c.ID
	}

	ratings, err := commentRatings(ctx, s.db, ids)
	if err != nil {
		return nil, err
	}
	replies, err := repliesCounts(ctx, s.db, ids)
	if err != nil {
		return nil, err
	}
	viewer, err := commentViewer(ctx, s.db, p, ids)
	if err != nil {
		return nil, err
	}

	views := make([]CommentView, len(comments))
	for i, c := range comments {
		var authorUsername *string
		if c.Author != nil {
			authorUsername = &c.Author.Username
		}
		views[i] = CommentView{
			ID:             c.ID,
			Article:        c.ArticleID,
			Author:         c.AuthorID,
			AuthorUsername: authorUsername,
			ReplyTo:        c.ReplyToID,
			Content:        c.Content,
			CreatedAt:      c.CreatedAt,
			UpdatedAt:      c.UpdatedAt,
			Rating:         ratings[c.ID].Rating(),
			RatingsCount:   ratings[c.ID],
			RepliesCount:   replies[c.ID],
			HasReplies:     replies[c.ID] > 0,
			YourRate:       viewer.rate(c.ID),
			YouAuthor:      c.AuthorID != nil && p.Is(*c.AuthorID),
		}
	}
	return views, nil
}
