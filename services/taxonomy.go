package services

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/ProgramMysticxxx/blog-project/access"
	"github.com/ProgramMysticxxx/blog-project/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// TaxonomyService serves categories and tags. Tags are read only here, they
// come and go with articles.
type TaxonomyService struct {
	deps
}

func NewTaxonomyService(db *gorm.DB, authz *access.Authorizer) *TaxonomyService {
	return &TaxonomyService{deps: deps{db: db, authz: authz}}
}

func (s *TaxonomyService) ListCategories(ctx context.Context, p access.Principal, q TaxonomyQuery, params PageParams) ([]TaxonomyView, *PaginationResult, error) {
	if err := s.authz.Authorize(p, access.List, access.Category, nil); err != nil {
		return nil, nil, err
	}
	order, err := orderBy(q.Ordering, "name", categoryOrdering, "categories.name")
	if err != nil {
		return nil, nil, err
	}

	var categories []models.Category
	pagination, err := page(func() *gorm.DB {
		return filterNames(s.db.WithContext(ctx).Model(&models.Category{}), "categories", q)
	}, order, params, func(tx *gorm.DB) (int, error) {
		err := tx.Find(&categories).Error
		return len(categories), err
	})
	if err != nil {
		return nil, nil, err
	}

	names := make([]string, len(categories))
	for i, c := range categories {
		names[i] = c.Name
	}
	views, err := s.views(ctx, names, categoryArticleCounts)
	if err != nil {
		return nil, nil, err
	}
	return views, pagination, nil
}

func (s *TaxonomyService) GetCategory(ctx context.Context, p access.Principal, name string) (*TaxonomyView, error) {
	if err := s.authz.Authorize(p, access.Retrieve, access.Category, nil); err != nil {
		return nil, err
	}
	if err := s.db.WithContext(ctx).First(&models.Category{}, "name = ?", name).Error; err != nil {
		if isNotFound(err) {
			return nil, notFound("category")
		}
		return nil, fmt.Errorf("failed to load category: %w", err)
	}

	views, err := s.views(ctx, []string{name}, categoryArticleCounts)
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

// CreateCategory adds a category. Reserved to admins.
func (s *TaxonomyService) CreateCategory(ctx context.Context, p access.Principal, name string) (*TaxonomyView, error) {
	if err := s.authz.Authorize(p, access.Create, access.Category, nil); err != nil {
		return nil, err
	}
	name, err := validateName(name)
	if err != nil {
		return nil, err
	}

	result := s.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&models.Category{Name: name})
	if result.Error != nil {
		return nil, fmt.Errorf("failed to create category: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, fieldError("name", "category with this name already exists.")
	}
	return &TaxonomyView{Name: name}, nil
}

// DeleteCategory removes a category. Its articles stay, uncategorised.
func (s *TaxonomyService) DeleteCategory(ctx context.Context, p access.Principal, name string) error {
	if err := s.authz.Authorize(p, access.Delete, access.Category, nil); err != nil {
		return err
	}

	err := s.tx(ctx, func(tx *gorm.DB) error {
		if err := tx.First(&models.Category{}, "name = ?", name).Error; err != nil {
			if isNotFound(err) {
				return notFound("category")
			}
			return err
		}
		if err := tx.Model(&models.Article{}).Where("category_name = ?", name).UpdateColumn("category_name", nil).Error; err != nil {
			return err
		}
		return tx.Where("name = ?", name).Delete(&models.Category{}).Error
	})
	return wrap(err, "failed to delete category")
}

// EnsureCategories creates the missing categories among names.
func (s *TaxonomyService) EnsureCategories(ctx context.Context, names []string) error {
	categories := make([]models.Category, 0, len(names))
	for _, name := range names {
		name, err := validateName(name)
		if err != nil {
			return err
		}
		categories = append(categories, models.Category{Name: name})
	}
	if len(categories) == 0 {
		return nil
	}
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&categories).Error
}

func (s *TaxonomyService) ListTags(ctx context.Context, p access.Principal, q TaxonomyQuery, params PageParams) ([]TaxonomyView, *PaginationResult, error) {
	if err := s.authz.Authorize(p, access.List, access.Tag, nil); err != nil {
		return nil, nil, err
	}
	order, err := orderBy(q.Ordering, "name", tagOrdering, "tags.name")
	if err != nil {
		return nil, nil, err
	}

	var tags []models.Tag
	pagination, err := page(func() *gorm.DB {
		return filterNames(s.db.WithContext(ctx).Model(&models.Tag{}), "tags", q)
	}, order, params, func(tx *gorm.DB) (int, error) {
		err := tx.Find(&tags).Error
		return len(tags), err
	})
	if err != nil {
		return nil, nil, err
	}

	names := make([]string, len(tags))
	for i, t := range tags {
		names[i] = t.Name
	}
	views, err := s.views(ctx, names, tagArticleCounts)
	if err != nil {
		return nil, nil, err
	}
	return views, pagination, nil
}

func (s *TaxonomyService) GetTag(ctx context.Context, p access.Principal, name string) (*TaxonomyView, error) {
	if err := s.authz.Authorize(p, access.Retrieve, access.Tag, nil); err != nil {
		return nil, err
	}
	if err := s.db.WithContext(ctx).First(&models.Tag{}, "name = ?", name).Error; err != nil {
		if isNotFound(err) {
			return nil, notFound("tag")
		}
		return nil, fmt.Errorf("failed to load tag: %w", err)
	}

	views, err := s.views(ctx, []string{name}, tagArticleCounts)
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

type nameCounter func(ctx context.Context, db *gorm.DB, names []string) (map[string]int64, error)

func (s *TaxonomyService) views(ctx context.Context, names []string, count nameCounter) ([]TaxonomyView, error) {
	counts, err := count(ctx, s.db, names)
	if err != nil {
		return nil, err
	}
	views := make([]TaxonomyView, len(names))
	for i, name := range names {
		views[i] = TaxonomyView{Name: name, ArticlesCount: counts[name]}
	}
	return views, nil
}

func validateName(name string) (string, error) {
	name = strings.TrimSpace(name)
	switch {
	case name == "":
		return "", fieldError("name", "This field may not be blank.")
	case utf8.RuneCountInString(name) > models.MaxNameLength:
		return "", fieldError("name", "Ensure this field has no more than %d characters.", models.MaxNameLength)
	}
	return name, nil
}
