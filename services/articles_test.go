package services

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"testing"

	"github.com/ProgramMysticxxx/blog-project/access"
	"github.com/ProgramMysticxxx/blog-project/models"
)

func TestRateArticle(t *testing.T) {
	f := setupFixture(t)
	alice := f.register(t, "alice")
	bob := f.register(t, "bob")
	carol := f.register(t, "carol")
	a := f.article(t, alice, "Hello")

	rating := func(p access.Principal) *ArticleView {
		t.Helper()
		v, err := f.articles.Get(ctx, p, a.ID)
		if err != nil {
			t.Fatalf("Get() error: %v", err)
		}
		return v
	}

	steps := []struct {
		name     string
		do       func() error
		want     int64
		wantPos  int64
		wantNeg  int64
		wantRows int64
	}{
		{"bob likes", func() error { return f.articles.Rate(ctx, bob, a.ID, true) }, 1, 1, 0, 1},
		{"bob likes again", func() error { return f.articles.Rate(ctx, bob, a.ID, true) }, 1, 1, 0, 1},
		{"carol dislikes", func() error { return f.articles.Rate(ctx, carol, a.ID, false) }, 0, 1, 1, 2},
		{"bob flips", func() error { return f.articles.Rate(ctx, bob, a.ID, false) }, -2, 0, 2, 2},
		{"carol unrates", func() error { return f.articles.Unrate(ctx, carol, a.ID) }, -1, 0, 1, 1},
		{"carol unrates again", func() error { return f.articles.Unrate(ctx, carol, a.ID) }, -1, 0, 1, 1},
	}
	for _, step := range steps {
		if err := step.do(); err != nil {
			t.Fatalf("%s: %v", step.name, err)
		}
		v := rating(alice)
		if v.Rating != step.want || v.RatingsCount.Positive != step.wantPos || v.RatingsCount.Negative != step.wantNeg {
			t.Errorf("%s: rating = %d %+v, want %d", step.name, v.Rating, v.RatingsCount, step.want)
		}
		if rows := f.count(t, &models.ArticleRate{}, "article_id = ?", a.ID); rows != step.wantRows {
			t.Errorf("%s: %d rate rows, want %d", step.name, rows, step.wantRows)
		}
	}

	var rate models.ArticleRate
	if err := f.db.Where("user_id = ? AND article_id = ?", bob.ID, a.ID).First(&rate).Error; err != nil {
		t.Fatalf("rate of bob not found: %v", err)
	}
	if rate.IsPositive {
		t.Error("flipped rate should be negative")
	}

	if got := rating(bob).YourRate; got == nil || *got {
		t.Errorf("your_rate of bob = %v, want false", got)
	}
	if got := rating(carol).YourRate; got != nil {
		t.Errorf("your_rate of carol = %v, want null", *got)
	}
	if got := rating(access.Principal{}).YourRate; got != nil {
		t.Error("your_rate of anonymous should be null")
	}
}

func TestRateArticleRequiresAuthentication(t *testing.T) {
	f := setupFixture(t)
	alice := f.register(t, "alice")
	a := f.article(t, alice, "Hello")

	if err := f.articles.Rate(ctx, access.Principal{}, a.ID, true); !errors.Is(err, access.ErrUnauthenticated) {
		t.Errorf("anonymous Rate() = %v, want ErrUnauthenticated", err)
	}
	if err := f.articles.Favorite(ctx, access.Principal{}, a.ID); !errors.Is(err, access.ErrUnauthenticated) {
		t.Errorf("anonymous Favorite() = %v, want ErrUnauthenticated", err)
	}
	if err := f.articles.Rate(ctx, alice, a.ID+100, true); !errors.Is(err, ErrNotFound) {
		t.Errorf("Rate() on a missing article = %v, want ErrNotFound", err)
	}
}

func TestArticleTags(t *testing.T) {
	f := setupFixture(t)
	alice := f.register(t, "alice")
	f.article(t, alice, "First", "existing-tag")

	a := f.article(t, alice, "Second", "new-tag", " existing-tag ", "new-tag")

	if n := f.count(t, &models.Tag{}, ""); n != 2 {
		t.Errorf("%d tags, want 2", n)
	}
	tags := append([]string(nil), a.Tags...)
	sort.Strings(tags)
	if len(tags) != 2 || tags[0] != "existing-tag" || tags[1] != "new-tag" {
		t.Errorf("tags = %v", a.Tags)
	}

	// Tag-only updates are updates
	updated, err := f.articles.Update(ctx, alice, a.ID, ArticleInput{Tags: &[]string{"other"}}, true)
	if err != nil {
		t.Fatalf("Update() error: %v", err)
	}
	if len(updated.Tags) != 1 || updated.Tags[0] != "other" {
		t.Errorf("tags after update = %v", updated.Tags)
	}
	if updated.Title != "Second" {
		t.Errorf("partial update changed the title to %q", updated.Title)
	}
	if updated.UpdatedAt.Before(a.UpdatedAt) {
		t.Error("updated_at went backwards")
	}
	if n := f.count(t, &models.Tag{}, ""); n != 3 {
		t.Errorf("tags are kept when unlinked: %d tags, want 3", n)
	}

	_, err = f.articles.Update(ctx, alice, a.ID, ArticleInput{Tags: &[]string{"this-tag-name-is-far-too-long-to-be-stored"}}, true)
	assertValidation(t, err, "tags")
}

func TestCreateArticleValidation(t *testing.T) {
	f := setupFixture(t)
	alice := f.register(t, "alice")

	_, err := f.articles.Create(ctx, alice, ArticleInput{Content: strPtr("body")})
	assertValidation(t, err, "title")

	_, err = f.articles.Create(ctx, alice, ArticleInput{Title: strPtr("t"), Content: strPtr("body"), Category: Of("missing")})
	assertValidation(t, err, "category")

	_, err = f.articles.Create(ctx, alice, ArticleInput{Title: strPtr("t"), Content: strPtr("body"), Cover: Of(uint(42))})
	assertValidation(t, err, "cover")

	if n := f.count(t, &models.Article{}, ""); n != 0 {
		t.Errorf("%d articles created by invalid requests", n)
	}

	if _, err := f.articles.Create(ctx, access.Principal{}, ArticleInput{Title: strPtr("t"), Content: strPtr("body")}); !errors.Is(err, access.ErrUnauthenticated) {
		t.Errorf("anonymous Create() = %v, want ErrUnauthenticated", err)
	}
}

func TestUpdateArticlePermissions(t *testing.T) {
	f := setupFixture(t)
	alice := f.register(t, "alice")
	bob := f.register(t, "bob")
	a := f.article(t, alice, "Hello")

	in := ArticleInput{Title: strPtr("Hijacked")}
	if _, err := f.articles.Update(ctx, bob, a.ID, in, true); !errors.Is(err, access.ErrForbidden) {
		t.Errorf("Update() by bob = %v, want ErrForbidden", err)
	}
	if _, err := f.articles.Update(ctx, access.Principal{}, a.ID, in, true); !errors.Is(err, access.ErrUnauthenticated) {
		t.Errorf("anonymous Update() = %v, want ErrUnauthenticated", err)
	}
	if err := f.articles.Delete(ctx, bob, a.ID); !errors.Is(err, access.ErrForbidden) {
		t.Errorf("Delete() by bob = %v, want ErrForbidden", err)
	}
	if _, err := f.articles.Update(ctx, alice, a.ID+100, in, true); !errors.Is(err, ErrNotFound) {
		t.Errorf("Update() of a missing article = %v, want ErrNotFound", err)
	}

	// A full update needs every required field
	_, err := f.articles.Update(ctx, alice, a.ID, in, false)
	assertValidation(t, err, "content")

	v, err := f.articles.Update(ctx, alice, a.ID, in, true)
	if err != nil {
		t.Fatalf("Update() by alice error: %v", err)
	}
	if v.Title != "Hijacked" || !v.YouAuthor {
		t.Errorf("updated article = %+v", v)
	}
}

func TestDeleteArticleCascade(t *testing.T) {
	f := setupFixture(t)
	alice := f.register(t, "alice")
	bob := f.register(t, "bob")
	a := f.article(t, alice, "Hello", "go")
	keep := f.article(t, alice, "Kept", "go")

	c := f.comment(t, bob, a.ID, nil)
	f.comment(t, alice, a.ID, &c.ID)
	f.comment(t, bob, keep.ID, nil)
	if err := f.comments.Rate(ctx, alice, c.ID, true); err != nil {
		t.Fatalf("comment Rate() error: %v", err)
	}
	if err := f.articles.Rate(ctx, bob, a.ID, true); err != nil {
		t.Fatalf("Rate() error: %v", err)
	}
	if err := f.articles.Favorite(ctx, bob, a.ID); err != nil {
		t.Fatalf("Favorite() error: %v", err)
	}

	if err := f.articles.Delete(ctx, alice, a.ID); err != nil {
		t.Fatalf("Delete() error: %v", err)
	}

	checks := []struct {
		model interface{}
		want  int64
	}{
		{&models.Article{}, 1},
		{&models.Comment{}, 1},
		{&models.CommentRate{}, 0},
		{&models.ArticleRate{}, 0},
		{&models.ArticleFavorite{}, 0},
		{&models.Tag{}, 1},
	}
	for _, c := range checks {
		if n := f.count(t, c.model, ""); n != c.want {
			t.Errorf("%T: %d rows, want %d", c.model, n, c.want)
		}
	}
	var links int64
	f.db.Table("article_tags").Where("article_id = ?", a.ID).Count(&links)
	if links != 0 {
		t.Errorf("%d tag links left", links)
	}
	if _, err := f.articles.Get(ctx, alice, a.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get() after Delete() = %v, want ErrNotFound", err)
	}
}

func titles(views []ArticleView) []string {
	result := make([]string, len(views))
	for i, v := range views {
		result[i] = v.Title
	}
	return result
}

func equal(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestListArticlesFlags(t *testing.T) {
	f := setupFixture(t)
	alice := f.register(t, "alice")
	bob := f.register(t, "bob")
	carol := f.register(t, "carol")

	a1 := f.article(t, alice, "Alice one")
	f.article(t, alice, "Alice two")
	b1 := f.article(t, bob, "Bob one")

	if err := f.articles.Favorite(ctx, carol, a1.ID); err != nil {
		t.Fatalf("Favorite() error: %v", err)
	}
	if err := f.articles.Favorite(ctx, carol, a1.ID); err != nil {
		t.Fatalf("second Favorite() error: %v", err)
	}
	if err := f.articles.Rate(ctx, carol, b1.ID, false); err != nil {
		t.Fatalf("Rate() error: %v", err)
	}
	if err := f.profiles.Subscribe(ctx, carol, "bob"); err != nil {
		t.Fatalf("Subscribe() error: %v", err)
	}

	tests := []struct {
		name string
		p    access.Principal
		q    ArticleQuery
		want []string
	}{
		{"anonymous ignores favorited", access.Principal{}, ArticleQuery{Favorited: true}, []string{"Bob one", "Alice two", "Alice one"}},
		{"anonymous ignores subscribed", access.Principal{}, ArticleQuery{Subscribed: true}, []string{"Bob one", "Alice two", "Alice one"}},
		{"favorited", carol, ArticleQuery{Favorited: true}, []string{"Alice one"}},
		{"rated", carol, ArticleQuery{Rated: true}, []string{"Bob one"}},
		{"subscribed", carol, ArticleQuery{Subscribed: true}, []string{"Bob one"}},
		{"nothing favorited", bob, ArticleQuery{Favorited: true}, []string{}},
		{"author", carol, ArticleQuery{Author: "alice", Ordering: "created_at"}, []string{"Alice one", "Alice two"}},
		{"author id", carol, ArticleQuery{AuthorID: &bob.ID}, []string{"Bob one"}},
		{"search", access.Principal{}, ArticleQuery{Search: "TWO"}, []string{"Alice two"}},
		{"search author", access.Principal{}, ArticleQuery{Search: "bo"}, []string{"Bob one"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			views, pagination, err := f.articles.List(ctx, tt.p, tt.q, PageParams{})
			if err != nil {
				t.Fatalf("List() error: %v", err)
			}
			if got := titles(views); !equal(got, tt.want) {
				t.Errorf("List() = %v, want %v", got, tt.want)
			}
			if pagination.TotalCount != int64(len(tt.want)) {
				t.Errorf("total_count = %d, want %d", pagination.TotalCount, len(tt.want))
			}
		})
	}

	views, _, err := f.articles.List(ctx, carol, ArticleQuery{Favorited: true}, PageParams{})
	if err != nil {
		t.Fatalf("List() error: %v", err)
	}
	if len(views) != 1 || !views[0].IsYourBookmark {
		t.Error("favorited article should be a bookmark of carol")
	}
}

func TestListArticlesFilters(t *testing.T) {
	f := setupFixture(t)
	admin := f.register(t, "admin")
	if err := f.authz.GrantRole(admin.Username, access.RoleAdmin); err != nil {
		t.Fatalf("GrantRole() error: %v", err)
	}
	if _, err := f.taxonomy.CreateCategory(ctx, admin, "news"); err != nil {
		t.Fatalf("CreateCategory() error: %v", err)
	}

	news, err := f.articles.Create(ctx, admin, ArticleInput{Title: strPtr("News"), Content: strPtr("x"), Category: Of("news"), Tags: &[]string{"go"}})
	if err != nil {
		t.Fatalf("Create() error: %v", err)
	}
	f.article(t, admin, "Other", "rust")

	tests := []struct {
		name string
		q    ArticleQuery
		want []string
	}{
		{"category", ArticleQuery{Category: "news"}, []string{"News"}},
		{"tags any match", ArticleQuery{Tags: []string{"go", "rust"}, Ordering: "created_at"}, []string{"News", "Other"}},
		{"one tag", ArticleQuery{Tags: []string{"rust"}}, []string{"Other"}},
		{"search tag", ArticleQuery{Search: "rus"}, []string{"Other"}},
		{"search category", ArticleQuery{Search: "NEWS"}, []string{"News"}},
		{"created today", ArticleQuery{CreatedOn: news.CreatedAt.UTC().Format(DateLayout), Ordering: "created_at"}, []string{"News", "Other"}},
		{"created another day", ArticleQuery{CreatedOn: "2001-01-01"}, []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			views, _, err := f.articles.List(ctx, access.Principal{}, tt.q, PageParams{})
			if err != nil {
				t.Fatalf("List() error: %v", err)
			}
			if got := titles(views); !equal(got, tt.want) {
				t.Errorf("List() = %v, want %v", got, tt.want)
			}
		})
	}

	_, _, err = f.articles.List(ctx, access.Principal{}, ArticleQuery{CreatedOn: "yesterday"}, PageParams{})
	assertValidation(t, err, "created_at")
}

func TestListArticlesOrdering(t *testing.T) {
	f := setupFixture(t)
	alice := f.register(t, "alice")
	bob := f.register(t, "bob")
	carol := f.register(t, "carol")

	low := f.article(t, alice, "Low")
	high := f.article(t, alice, "High")
	mid := f.article(t, alice, "Mid")

	for _, r := range []struct {
		p   access.Principal
		id  uint
		pos bool
	}{
		{bob, high.ID, true},
		{carol, high.ID, true},
		{bob, low.ID, false},
		{carol, mid.ID, true},
		{bob, mid.ID, false},
	} {
		if err := f.articles.Rate(ctx, r.p, r.id, r.pos); err != nil {
			t.Fatalf("Rate() error: %v", err)
		}
	}

	views, _, err := f.articles.List(ctx, access.Principal{}, ArticleQuery{Ordering: "-rating"}, PageParams{})
	if err != nil {
		t.Fatalf("List() error: %v", err)
	}
	if got := titles(views); !equal(got, []string{"High", "Mid", "Low"}) {
		t.Errorf("-rating = %v", got)
	}
	if views[0].Rating != 2 || views[1].Rating != 0 || views[2].Rating != -1 {
		t.Errorf("ratings = %d %d %d", views[0].Rating, views[1].Rating, views[2].Rating)
	}

	views, _, err = f.articles.List(ctx, access.Principal{}, ArticleQuery{Ordering: "rating"}, PageParams{})
	if err != nil {
		t.Fatalf("List() error: %v", err)
	}
	if got := titles(views); !equal(got, []string{"Low", "Mid", "High"}) {
		t.Errorf("rating = %v", got)
	}

	_, _, err = f.articles.List(ctx, access.Principal{}, ArticleQuery{Ordering: "-password"}, PageParams{})
	assertValidation(t, err, "ordering")
}

func TestListArticlesPagination(t *testing.T) {
	f := setupFixture(t)
	alice := f.register(t, "alice")
	for _, title := range []string{"1", "2", "3", "4", "5"} {
		f.article(t, alice, title)
	}

	views, pagination, err := f.articles.List(ctx, access.Principal{}, ArticleQuery{Ordering: "created_at"}, PageParams{PageNum: 2, PageSize: 2})
	if err != nil {
		t.Fatalf("List() error: %v", err)
	}
	if got := titles(views); !equal(got, []string{"3", "4"}) {
		t.Errorf("page 2 = %v", got)
	}
	if pagination.TotalPages != 3 || pagination.TotalCount != 5 || !pagination.HasNext || !pagination.HasPrev {
		t.Errorf("pagination = %+v", pagination)
	}

	_, _, err = f.articles.List(ctx, access.Principal{}, ArticleQuery{}, PageParams{PageNum: 4, PageSize: 2})
	assertValidation(t, err, "pageNum")
}

func TestSearchMatchesWildcardsLiterally(t *testing.T) {
	f := setupFixture(t)
	alice := f.register(t, "alice")
	f.article(t, alice, "plain title", "go")
	f.article(t, alice, "100% sure")
	f.article(t, alice, "snake_case!")

	tests := []struct {
		search string
		want   []string
	}{
		{"%", []string{"100% sure"}},
		{"0%", []string{"100% sure"}},
		{"_", []string{"snake_case!"}},
		{"E_C", []string{"snake_case!"}},
		{"!", []string{"snake_case!"}},
		{"title", []string{"plain title"}},
		{"%%", []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.search, func(t *testing.T) {
			views, _, err := f.articles.List(ctx, access.Principal{}, ArticleQuery{Search: tt.search}, PageParams{})
			if err != nil {
				t.Fatalf("List() error: %v", err)
			}
			if got := titles(views); !equal(got, tt.want) {
				t.Errorf("List(search=%q) = %v, want %v", tt.search, got, tt.want)
			}
		})
	}
}

func TestConcurrentUpserts(t *testing.T) {
	f := setupFixture(t)
	alice := f.register(t, "alice")
	bob := f.register(t, "bob")
	a := f.article(t, alice, "Hello")

	const n = 20
	var wg sync.WaitGroup
	errs := make(chan error, 3*n)
	for i := 0; i < n; i++ {
		wg.Add(3)
		go func(positive bool) {
			defer wg.Done()
			if err := f.articles.Rate(ctx, bob, a.ID, positive); err != nil {
				errs <- fmt.Errorf("Rate: %w", err)
			}
		}(i%2 == 0)
		go func() {
			defer wg.Done()
			if err := f.articles.Favorite(ctx, bob, a.ID); err != nil {
				errs <- fmt.Errorf("Favorite: %w", err)
			}
		}()
		go func() {
			defer wg.Done()
			if err := f.profiles.Subscribe(ctx, bob, "alice"); err != nil {
				errs <- fmt.Errorf("Subscribe: %w", err)
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Errorf("concurrent upsert error: %v", err)
	}

	if got := f.count(t, &models.ArticleRate{}, "user_id = ? AND article_id = ?", bob.ID, a.ID); got != 1 {
		t.Errorf("rates = %d, want 1", got)
	}
	if got := f.count(t, &models.ArticleFavorite{}, "user_id = ? AND article_id = ?", bob.ID, a.ID); got != 1 {
		t.Errorf("favorites = %d, want 1", got)
	}
	if got := f.count(t, &models.ProfileSubscription{}, "user_id = ?", bob.ID); got != 1 {
		t.Errorf("subscriptions = %d, want 1", got)
	}
}
