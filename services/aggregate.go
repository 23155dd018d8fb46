package services

import (
	"context"
	"fmt"

	"gorm.io/gorm"
)

// Aggregates are computed per page with one GROUP BY query each, never per row.

type ratingRow struct {
	TargetID uint
	Positive int64
	Negative int64
}

type countRow struct {
	TargetID uint
	Total    int64
}

type nameCountRow struct {
	Name  string
	Total int64
}

func articleRatings(ctx context.Context, db *gorm.DB, ids []uint) (map[uint]RatingsCount, error) {
	return ratings(ctx, db, "article_rates", "article_id", ids)
}

func commentRatings(ctx context.Context, db *gorm.DB, ids []uint) (map[uint]RatingsCount, error) {
	return ratings(ctx, db, "comment_rates", "comment_id", ids)
}

func ratings(ctx context.Context, db *gorm.DB, table, target string, ids []uint) (map[uint]RatingsCount, error) {
	result := make(map[uint]RatingsCount, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	var rows []ratingRow
	err := db.WithContext(ctx).Table(table).
		Select(target+" AS target_id, "+
			"SUM(CASE WHEN is_positive THEN 1 ELSE 0 END) AS positive, "+
			"SUM(CASE WHEN is_positive THEN 0 ELSE 1 END) AS negative").
		Where(target+" IN ?", ids).
		Group(target).
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to count %s: %w", table, err)
	}
	for _, r := range rows {
		result[r.TargetID] = RatingsCount{Positive: r.Positive, Negative: r.Negative}
	}
	return result, nil
}

// ratingExpr is the rating of the row of outer as a correlated subquery.
func ratingExpr(table, target, outer string) string {
	return fmt.Sprintf("(SELECT COALESCE(SUM(CASE WHEN r.is_positive THEN 1 ELSE -1 END), 0) FROM %s r WHERE r.%s = %s.id)", table, target, outer)
}

func repliesCounts(ctx context.Context, db *gorm.DB, ids []uint) (map[uint]int64, error) {
	return counts(ctx, db, "comments", "reply_to_id", ids)
}

func counts(ctx context.Context, db *gorm.DB, table, target string, ids []uint) (map[uint]int64, error) {
	result := make(map[uint]int64, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	var rows []countRow
	err := db.WithContext(ctx).Table(table).
		Select(target+" AS target_id, COUNT(*) AS total").
		Where(target+" IN ?", ids).
		Group(target).
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to count %s: %w", table, err)
	}
	for _, r := range rows {
		result[r.TargetID] = r.Total
	}
	return result, nil
}

func namedCounts(ctx context.Context, db *gorm.DB, table, target string, names []string) (map[string]int64, error) {
	result := make(map[string]int64, len(names))
	if len(names) == 0 {
		return result, nil
	}

	var rows []nameCountRow
	err := db.WithContext(ctx).Table(table).
		Select(target+" AS name, COUNT(*) AS total").
		Where(target+" IN ?", names).
		Group(target).
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to count %s: %w", table, err)
	}
	for _, r := range rows {
		result[r.Name] = r.Total
	}
	return result, nil
}

func categoryArticleCounts(ctx context.Context, db *gorm.DB, names []string) (map[string]int64, error) {
	return namedCounts(ctx, db, "articles", "category_name", names)
}

func tagArticleCounts(ctx context.Context, db *gorm.DB, names []string) (map[string]int64, error) {
	return namedCounts(ctx, db, "article_tags", "tag_name", names)
}

const (
	categoryArticlesCountExpr = "(SELECT COUNT(*) FROM articles a WHERE a.category_name = categories.name)"
	tagArticlesCountExpr      = "(SELECT COUNT(*) FROM article_tags tg WHERE tg.tag_name = tags.name)"
)

type profileStats struct {
	articles    map[uint]int64
	subscribers map[uint]int64
	rating      map[uint]int64
}

// profileAggregates loads the derived counters of profiles. Article counters
// are keyed by user id, subscriber counts by profile id.
func profileAggregates(ctx context.Context, db *gorm.DB, userIDs, profileIDs []uint) (*profileStats, error) {
	articles, err := counts(ctx, db, "articles", "author_id", userIDs)
	if err != nil {
		return nil, err
	}
	subscribers, err := counts(ctx, db, "profile_subscriptions", "profile_id", profileIDs)
	if err != nil {
		return nil, err
	}

	rating := make(map[uint]int64, len(userIDs))
	if len(userIDs) > 0 {
		var rows []countRow
		err := db.WithContext(ctx).Table("article_rates r").
			Select("a.author_id AS target_id, COALESCE(SUM(CASE WHEN r.is_positive THEN 1 ELSE -1 END), 0) AS total").
			Joins("JOIN articles a ON a.id = r.article_id").
			Where("a.author_id IN ?", userIDs).
			Group("a.author_id").
			Scan(&rows).Error
		if err != nil {
			return nil, fmt.Errorf("failed to sum article ratings: %w", err)
		}
		for _, r := range rows {
			rating[r.TargetID] = r.Total
		}
	}

	return &profileStats{articles: articles, subscribers: subscribers, rating: rating}, nil
}
