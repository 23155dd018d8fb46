// Package services implements the blog's use cases on top of gorm: the entity
// store operations, the aggregation and viewer passes that annotate results,
// the query filters of list endpoints and the mutation pipelines.
//
// Every operation receives the acting access.Principal and checks it with the
// access.Authorizer before touching the store.
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"math"
	"strings"

	"github.com/ProgramMysticxxx/blog-project/access"
	"github.com/ProgramMysticxxx/blog-project/storage"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type deps struct {
	db    *gorm.DB
	authz *access.Authorizer
	store storage.BlobStore

	// Logger receives the outcome of best effort cleanups. May be nil.
	Logger *slog.Logger
}

func (d deps) tx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return d.db.WithContext(ctx).Transaction(fn)
}

func (d deps) log() *slog.Logger {
	if d.Logger == nil {
		return slog.Default()
	}
	return d.Logger
}

// removeBlobs deletes blobs whose rows are already gone. Failures only leave
// orphan files behind, so they are logged and skipped.
func (d deps) removeBlobs(ctx context.Context, refs []string) {
	if d.store == nil {
		return
	}
	for _, ref := range refs {
		if err := d.store.Delete(ctx, ref); err != nil {
			d.log().Warn("Failed to remove blob", "ref", ref, "error", err)
		}
	}
}

func (d deps) blobURL(ref string) string {
	if d.store == nil {
		return ref
	}
	return d.store.URL(ref)
}

// Nullable is a JSON field that distinguishes "absent" from "null".
type Nullable[T any] struct {
	Set   bool
	Value *T
}

func (n *Nullable[T]) UnmarshalJSON(data []byte) error {
	n.Set = true
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		n.Value = nil
		return nil
	}
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	n.Value = &v
	return nil
}

// Of returns a Nullable holding v.
func Of[T any](v T) Nullable[T] {
	return Nullable[T]{Set: true, Value: &v}
}

// Null returns a Nullable explicitly set to null.
func Null[T any]() Nullable[T] {
	return Nullable[T]{Set: true}
}

const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// PageParams is a struct that holds pagination parameters.
type PageParams struct {
	PageNum  int
	PageSize int
}

func (p PageParams) normalized() PageParams {
	if p.PageNum < 1 {
		p.PageNum = 1
	}
	if p.PageSize < 1 {
		p.PageSize = DefaultPageSize
	}
	if p.PageSize > MaxPageSize {
		p.PageSize = MaxPageSize
	}
	return p
}

func (p PageParams) Offset() int {
	p = p.normalized()
	return (p.PageNum - 1) * p.PageSize
}

// PaginationResult is a struct that holds pagination result.
type PaginationResult struct {
	CurrentPage  int   `json:"current_page"`
	TotalPages   int   `json:"total_pages"`
	CurrentCount int   `json:"current_count"`
	TotalCount   int64 `json:"total_count"`
	HasNext      bool  `json:"has_next"`
	HasPrev      bool  `json:"has_prev"`
}

func paginate(params PageParams, dataCount int, totalCount int64) (*PaginationResult, error) {
	params = params.normalized()

	// Calculate the total number of pages
	totalPages := int(math.Ceil(float64(totalCount) / float64(params.PageSize)))
	if params.PageNum > 1 && params.PageNum > totalPages {
		return nil, fieldError("pageNum", "exceeds total number of pages")
	}

	return &PaginationResult{
		CurrentPage:  params.PageNum,
		TotalPages:   totalPages,
		CurrentCount: dataCount,
		TotalCount:   totalCount,
		HasNext:      params.PageNum < totalPages,
		HasPrev:      params.PageNum > 1,
	}, nil
}

// orderTerm renders one ORDER BY term. desc is the requested direction.
type orderTerm func(desc bool) clause.Expr

func column(sql string) orderTerm {
	return func(desc bool) clause.Expr {
		return clause.Expr{SQL: sql + direction(desc)}
	}
}

func expr(sql string, vars ...interface{}) orderTerm {
	return func(desc bool) clause.Expr {
		return clause.Expr{SQL: sql + direction(desc), Vars: vars}
	}
}

func direction(desc bool) string {
	if desc {
		return " DESC"
	}
	return " ASC"
}

// orderBy parses a comma separated ordering ("-rating,created_at") against
// the allowed fields. The tiebreak column follows the direction of the first
// field and keeps pages stable.
func orderBy(raw, fallback string, allowed map[string]orderTerm, tiebreak string) (clause.OrderBy, error) {
	if strings.TrimSpace(raw) == "" {
		raw = fallback
	}

	var (
		parts     []string
		vars      []interface{}
		firstDesc *bool
	)
	for _, field := range strings.Split(raw, ",") {
		field = strings.TrimSpace(field)
		if field == "" {
			continue
		}
		desc := strings.HasPrefix(field, "-")
		if firstDesc == nil {
			firstDesc = &desc
		}
		term, ok := allowed[strings.TrimPrefix(field, "-")]
		if !ok {
			return clause.OrderBy{}, fieldError("ordering", "unknown ordering field %q", strings.TrimPrefix(field, "-"))
		}
		e := term(desc)
		parts = append(parts, e.SQL)
		vars = append(vars, e.Vars...)
	}
	if tiebreak != "" {
		parts = append(parts, tiebreak+direction(firstDesc != nil && *firstDesc))
	}

	return clause.OrderBy{Expression: clause.Expr{
		SQL:                strings.Join(parts, ", "),
		Vars:               vars,
		WithoutParentheses: true,
	}}, nil
}

// likeEscaper escapes the LIKE wildcards of a search term. Every LIKE built
// from likePattern declares the escape character with likeEscape. A backslash
// is not portable as the escape character since MySQL unescapes it in literals.
var likeEscaper = strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")

const likeEscape = " ESCAPE '!'"

// likePattern matches term as a case-insensitive substring.
func likePattern(term string) string {
	return "%" + likeEscaper.Replace(strings.ToLower(strings.TrimSpace(term))) + "%"
}

func isNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

func uintPtr(v uint) *uint {
	return &v
}
