package services

import (
	"errors"
	"testing"

	"github.com/ProgramMysticxxx/blog-project/access"
	"github.com/ProgramMysticxxx/blog-project/models"
)

func TestCreateComment(t *testing.T) {
	f := setupFixture(t)
	alice := f.register(t, "alice")
	bob := f.register(t, "bob")
	a := f.article(t, alice, "Hello")
	other := f.article(t, alice, "Other")

	c := f.comment(t, bob, a.ID, nil)
	if c.Article != a.ID || c.Author == nil || *c.Author != bob.ID || *c.AuthorUsername != "bob" {
		t.Errorf("comment = %+v", c)
	}
	if !c.YouAuthor {
		t.Error("bob should be the author of his comment")
	}

	reply := f.comment(t, alice, a.ID, &c.ID)
	if reply.ReplyTo == nil || *reply.ReplyTo != c.ID {
		t.Errorf("reply_to = %v", reply.ReplyTo)
	}

	content := "wrong thread"
	_, err := f.comments.Create(ctx, alice, CommentInput{Article: &other.ID, ReplyTo: &c.ID, Content: &content})
	assertValidation(t, err, "reply_to")

	missing := uint(999)
	_, err = f.comments.Create(ctx, alice, CommentInput{Article: &missing, Content: &content})
	assertValidation(t, err, "article")

	_, err = f.comments.Create(ctx, alice, CommentInput{Article: &a.ID, Content: strPtr("   ")})
	assertValidation(t, err, "content")

	if _, err := f.comments.Create(ctx, access.Principal{}, CommentInput{Article: &a.ID, Content: &content}); !errors.Is(err, access.ErrUnauthenticated) {
		t.Errorf("anonymous Create() = %v, want ErrUnauthenticated", err)
	}

	got, err := f.comments.Get(ctx, access.Principal{}, c.ID)
	if err != nil {
		t.Fatalf("Get() error: %v", err)
	}
	if got.RepliesCount != 1 || !got.HasReplies {
		t.Errorf("replies_count = %d, has_replies = %v", got.RepliesCount, got.HasReplies)
	}
	if got.YouAuthor {
		t.Error("anonymous is never the author")
	}
}

func TestUpdateComment(t *testing.T) {
	f := setupFixture(t)
	alice := f.register(t, "alice")
	bob := f.register(t, "bob")
	a := f.article(t, alice, "Hello")
	c := f.comment(t, bob, a.ID, nil)

	if _, err := f.comments.Update(ctx, alice, c.ID, CommentInput{Content: strPtr("edited")}, true); !errors.Is(err, access.ErrForbidden) {
		t.Errorf("Update() by alice = %v, want ErrForbidden", err)
	}
	v, err := f.comments.Update(ctx, bob, c.ID, CommentInput{Content: strPtr("edited")}, false)
	if err != nil {
		t.Fatalf("Update() error: %v", err)
	}
	if v.Content != "edited" {
		t.Errorf("content = %q", v.Content)
	}
	_, err = f.comments.Update(ctx, bob, c.ID, CommentInput{}, false)
	assertValidation(t, err, "content")
}

func TestDeleteCommentRecursive(t *testing.T) {
	f := setupFixture(t)
	alice := f.register(t, "alice")
	bob := f.register(t, "bob")
	a := f.article(t, alice, "Hello")

	root := f.comment(t, bob, a.ID, nil)
	child := f.comment(t, alice, a.ID, &root.ID)
	grandchild := f.comment(t, bob, a.ID, &child.ID)
	sibling := f.comment(t, alice, a.ID, nil)

	for _, id := range []uint{root.ID, child.ID, grandchild.ID, sibling.ID} {
		if err := f.comments.Rate(ctx, alice, id, true); err != nil {
			t.Fatalf("Rate() error: %v", err)
		}
	}

	if err := f.comments.Delete(ctx, alice, root.ID); !errors.Is(err, access.ErrForbidden) {
		t.Fatalf("Delete() by alice = %v, want ErrForbidden", err)
	}
	if err := f.comments.Delete(ctx, bob, root.ID); err != nil {
		t.Fatalf("Delete() error: %v", err)
	}

	if n := f.count(t, &models.Comment{}, ""); n != 1 {
		t.Errorf("%d comments left, want 1", n)
	}
	if n := f.count(t, &models.CommentRate{}, ""); n != 1 {
		t.Errorf("%d comment rates left, want 1", n)
	}
	if _, err := f.comments.Get(ctx, bob, grandchild.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("grandchild Get() = %v, want ErrNotFound", err)
	}
}

func TestRateComment(t *testing.T) {
	f := setupFixture(t)
	alice := f.register(t, "alice")
	bob := f.register(t, "bob")
	a := f.article(t, alice, "Hello")
	c := f.comment(t, alice, a.ID, nil)

	if err := f.comments.Rate(ctx, bob, c.ID, true); err != nil {
		t.Fatalf("Rate() error: %v", err)
	}
	if err := f.comments.Rate(ctx, bob, c.ID, false); err != nil {
		t.Fatalf("Rate() error: %v", err)
	}
	v, err := f.comments.Get(ctx, bob, c.ID)
	if err != nil {
		t.Fatalf("Get() error: %v", err)
	}
	if v.Rating != -1 || v.YourRate == nil || *v.YourRate {
		t.Errorf("rating = %d, your_rate = %v", v.Rating, v.YourRate)
	}
	if n := f.count(t, &models.CommentRate{}, ""); n != 1 {
		t.Errorf("%d rate rows, want 1", n)
	}

	if err := f.comments.Unrate(ctx, bob, c.ID); err != nil {
		t.Fatalf("Unrate() error: %v", err)
	}
	if err := f.comments.Unrate(ctx, bob, c.ID); err != nil {
		t.Fatalf("second Unrate() error: %v", err)
	}
	if err := f.comments.Rate(ctx, access.Principal{}, c.ID, true); !errors.Is(err, access.ErrUnauthenticated) {
		t.Errorf("anonymous Rate() = %v, want ErrUnauthenticated", err)
	}
}

func TestListComments(t *testing.T) {
	f := setupFixture(t)
	alice := f.register(t, "alice")
	bob := f.register(t, "bob")
	a := f.article(t, alice, "Hello")
	other := f.article(t, alice, "Other")

	first := f.comment(t, bob, a.ID, nil)
	reply := f.comment(t, alice, a.ID, &first.ID)
	second := f.comment(t, alice, a.ID, nil)
	f.comment(t, bob, other.ID, nil)
	if err := f.comments.Rate(ctx, bob, second.ID, true); err != nil {
		t.Fatalf("Rate() error: %v", err)
	}

	ids := func(views []CommentView) []uint {
		result := make([]uint, len(views))
		for i, v := range views {
			result[i] = v.ID
		}
		return result
	}

	tests := []struct {
		name string
		q    CommentQuery
		want []uint
	}{
		{"article", CommentQuery{Article: &a.ID}, []uint{first.ID, reply.ID, second.ID}},
		{"top level", CommentQuery{Article: &a.ID, TopLevel: true}, []uint{first.ID, second.ID}},
		{"replies", CommentQuery{ReplyTo: &first.ID}, []uint{reply.ID}},
		{"author", CommentQuery{Article: &a.ID, Author: &alice.ID}, []uint{reply.ID, second.ID}},
		{"by rating", CommentQuery{Article: &a.ID, TopLevel: true, Ordering: "-rating"}, []uint{second.ID, first.ID}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			views, _, err := f.comments.List(ctx, access.Principal{}, tt.q, PageParams{})
			if err != nil {
				t.Fatalf("List() error: %v", err)
			}
			got := ids(views)
			if len(got) != len(tt.want) {
				t.Fatalf("List() = %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Fatalf("List() = %v, want %v", got, tt.want)
				}
			}
		})
	}

	_, _, err := f.comments.List(ctx, access.Principal{}, CommentQuery{Ordering: "updated_at"}, PageParams{})
	assertValidation(t, err, "ordering")
}
