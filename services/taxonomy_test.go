package services

import (
	"errors"
	"testing"

	"github.com/ProgramMysticxxx/blog-project/access"
	"github.com/ProgramMysticxxx/blog-project/models"
)

func TestCategoryAdministration(t *testing.T) {
	f := setupFixture(t)
	admin := f.register(t, "admin")
	bob := f.register(t, "bob")
	if err := f.authz.GrantRole(admin.Username, access.RoleAdmin); err != nil {
		t.Fatalf("GrantRole() error: %v", err)
	}

	if _, err := f.taxonomy.CreateCategory(ctx, bob, "news"); !errors.Is(err, access.ErrForbidden) {
		t.Errorf("CreateCategory() by bob = %v, want ErrForbidden", err)
	}
	if _, err := f.taxonomy.CreateCategory(ctx, admin, " news "); err != nil {
		t.Fatalf("CreateCategory() error: %v", err)
	}
	_, err := f.taxonomy.CreateCategory(ctx, admin, "news")
	assertValidation(t, err, "name")

	a, err := f.articles.Create(ctx, bob, ArticleInput{Title: strPtr("t"), Content: strPtr("x"), Category: Of("news")})
	if err != nil {
		t.Fatalf("Create() error: %v", err)
	}

	v, err := f.taxonomy.GetCategory(ctx, access.Principal{}, "news")
	if err != nil {
		t.Fatalf("GetCategory() error: %v", err)
	}
	if v.ArticlesCount != 1 {
		t.Errorf("articles_count = %d, want 1", v.ArticlesCount)
	}

	if err := f.taxonomy.DeleteCategory(ctx, bob, "news"); !errors.Is(err, access.ErrForbidden) {
		t.Errorf("DeleteCategory() by bob = %v, want ErrForbidden", err)
	}
	if err := f.taxonomy.DeleteCategory(ctx, admin, "news"); err != nil {
		t.Fatalf("DeleteCategory() error: %v", err)
	}
	if err := f.taxonomy.DeleteCategory(ctx, admin, "news"); !errors.Is(err, ErrNotFound) {
		t.Errorf("second DeleteCategory() = %v, want ErrNotFound", err)
	}

	got, err := f.articles.Get(ctx, bob, a.ID)
	if err != nil {
		t.Fatalf("article deleted with its category: %v", err)
	}
	if got.Category != nil {
		t.Errorf("category = %v, want null", *got.Category)
	}
}

func TestEnsureCategories(t *testing.T) {
	f := setupFixture(t)

	for i := 0; i < 2; i++ {
		if err := f.taxonomy.EnsureCategories(ctx, []string{"news", "tech"}); err != nil {
			t.Fatalf("EnsureCategories() error: %v", err)
		}
	}
	if n := f.count(t, &models.Category{}, ""); n != 2 {
		t.Errorf("%d categories, want 2", n)
	}
	if err := f.taxonomy.EnsureCategories(ctx, []string{""}); err == nil {
		t.Error("blank category names should be rejected")
	}
}

func TestListTaxonomy(t *testing.T) {
	f := setupFixture(t)
	alice := f.register(t, "alice")
	if err := f.taxonomy.EnsureCategories(ctx, []string{"art", "books", "cinema"}); err != nil {
		t.Fatalf("EnsureCategories() error: %v", err)
	}
	for _, c := range []string{"books", "books", "cinema"} {
		if _, err := f.articles.Create(ctx, alice, ArticleInput{Title: strPtr("t"), Content: strPtr("x"), Category: Of(c)}); err != nil {
			t.Fatalf("Create() error: %v", err)
		}
	}
	f.article(t, alice, "one", "go", "sql")
	f.article(t, alice, "two", "go")

	names := func(views []TaxonomyView) []string {
		result := make([]string, len(views))
		for i, v := range views {
			result[i] = v.Name
		}
		return result
	}

	categories, pagination, err := f.taxonomy.ListCategories(ctx, access.Principal{}, TaxonomyQuery{}, PageParams{})
	if err != nil {
		t.Fatalf("ListCategories() error: %v", err)
	}
	if got := names(categories); !equal(got, []string{"art", "books", "cinema"}) {
		t.Errorf("categories = %v", got)
	}
	if categories[1].ArticlesCount != 2 || categories[0].ArticlesCount != 0 {
		t.Errorf("articles_count = %+v", categories)
	}
	if pagination.TotalCount != 3 {
		t.Errorf("total_count = %d", pagination.TotalCount)
	}

	categories, _, err = f.taxonomy.ListCategories(ctx, access.Principal{}, TaxonomyQuery{Ordering: "-articles_count"}, PageParams{})
	if err != nil {
		t.Fatalf("ListCategories() error: %v", err)
	}
	if got := names(categories); !equal(got, []string{"books", "cinema", "art"}) {
		t.Errorf("categories by -articles_count = %v", got)
	}

	categories, _, err = f.taxonomy.ListCategories(ctx, access.Principal{}, TaxonomyQuery{Search: "OO"}, PageParams{})
	if err != nil {
		t.Fatalf("ListCategories() error: %v", err)
	}
	if got := names(categories); !equal(got, []string{"books"}) {
		t.Errorf("categories matching OO = %v", got)
	}

	tags, _, err := f.taxonomy.ListTags(ctx, access.Principal{}, TaxonomyQuery{Ordering: "-articles_count,name"}, PageParams{})
	if err != nil {
		t.Fatalf("ListTags() error: %v", err)
	}
	if got := names(tags); !equal(got, []string{"go", "sql"}) {
		t.Errorf("tags = %v", got)
	}
	if tags[0].ArticlesCount != 2 || tags[1].ArticlesCount != 1 {
		t.Errorf("tag counts = %+v", tags)
	}

	tag, err := f.taxonomy.GetTag(ctx, access.Principal{}, "sql")
	if err != nil {
		t.Fatalf("GetTag() error: %v", err)
	}
	if tag.ArticlesCount != 1 {
		t.Errorf("articles_count of sql = %d", tag.ArticlesCount)
	}
	if _, err := f.taxonomy.GetTag(ctx, access.Principal{}, "rust"); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetTag() of a missing tag = %v, want ErrNotFound", err)
	}

	_, _, err = f.taxonomy.ListTags(ctx, access.Principal{}, TaxonomyQuery{Ordering: "created_at"}, PageParams{})
	assertValidation(t, err, "ordering")
}

func TestListTaxonomyStableOrder(t *testing.T) {
	f := setupFixture(t)
	if err := f.taxonomy.EnsureCategories(ctx, []string{"cinema", "art", "books"}); err != nil {
		t.Fatalf("EnsureCategories() error: %v", err)
	}

	var got []string
	for pageNum := 1; pageNum <= 3; pageNum++ {
		categories, _, err := f.taxonomy.ListCategories(ctx, access.Principal{}, TaxonomyQuery{Ordering: "articles_count"}, PageParams{PageNum: pageNum, PageSize: 1})
		if err != nil {
			t.Fatalf("ListCategories(page %d) error: %v", pageNum, err)
		}
		for _, c := range categories {
			got = append(got, c.Name)
		}
	}
	if !equal(got, []string{"art", "books", "cinema"}) {
		t.Errorf("pages by articles_count = %v, want art, books, cinema", got)
	}
}

func TestSearchTaxonomyWildcards(t *testing.T) {
	f := setupFixture(t)
	alice := f.register(t, "alice")
	if err := f.taxonomy.EnsureCategories(ctx, []string{"a%b", "ab"}); err != nil {
		t.Fatalf("EnsureCategories() error: %v", err)
	}
	f.article(t, alice, "one", "go_lang", "golang")

	categories, _, err := f.taxonomy.ListCategories(ctx, access.Principal{}, TaxonomyQuery{Search: "%"}, PageParams{})
	if err != nil {
		t.Fatalf("ListCategories() error: %v", err)
	}
	if len(categories) != 1 || categories[0].Name != "a%b" {
		t.Errorf("categories matching %% = %+v", categories)
	}

	tags, _, err := f.taxonomy.ListTags(ctx, access.Principal{}, TaxonomyQuery{Search: "_"}, PageParams{})
	if err != nil {
		t.Fatalf("ListTags() error: %v", err)
	}
	if len(tags) != 1 || tags[0].Name != "go_lang" {
		t.Errorf("tags matching _ = %+v", tags)
	}
}
