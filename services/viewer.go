package services

import (
	"context"
	"fmt"

	"github.com/ProgramMysticxxx/blog-project/access"
	"gorm.io/gorm"
)

// viewerState holds what the principal did to a page of entities. The zero
// value is the state of an anonymous principal.
type viewerState struct {
	rates      map[uint]bool
	favorites  map[uint]bool
	subscribed map[uint]bool
}

func (v viewerState) rate(id uint) *bool {
	r, ok := v.rates[id]
	if !ok {
		return nil
	}
	return &r
}

type rateRow struct {
	TargetID   uint
	IsPositive bool
}

func viewerRates(ctx context.Context, db *gorm.DB, p access.Principal, table, target string, ids []uint) (map[uint]bool, error) {
	result := make(map[uint]bool)
	if !p.Authenticated() || len(ids) == 0 {
		return result, nil
	}

	var rows []rateRow
	err := db.WithContext(ctx).Table(table).
		Select(target+" AS target_id, is_positive").
		Where("user_id = ? AND "+target+" IN ?", p.ID, ids).
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load rates of viewer: %w", err)
	}
	for _, r := range rows {
		result[r.TargetID] = r.IsPositive
	}
	return result, nil
}

func viewerSet(ctx context.Context, db *gorm.DB, p access.Principal, table, target string, ids []uint) (map[uint]bool, error) {
	result := make(map[uint]bool)
	if !p.Authenticated() || len(ids) == 0 {
		return result, nil
	}

	var found []uint
	err := db.WithContext(ctx).Table(table).
		Where("user_id = ? AND "+target+" IN ?", p.ID, ids).
		Pluck(target, &found).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load %s of viewer: %w", table, err)
	}
	for _, id := range found {
		result[id] = true
	}
	return result, nil
}

func articleViewer(ctx context.Context, db *gorm.DB, p access.Principal, ids []uint) (viewerState, error) {
	rates, err := viewerRates(ctx, db, p, "article_rates", "article_id", ids)
	if err != nil {
		return viewerState{}, err
	}
	favorites, err := viewerSet(ctx, db, p, "article_favorites", "article_id", ids)
	if err != nil {
		return viewerState{}, err
	}
	return viewerState{rates: rates, favorites: favorites}, nil
}

func commentViewer(ctx context.Context, db *gorm.DB, p access.Principal, ids []uint) (viewerState, error) {
	rates, err := viewerRates(ctx, db, p, "comment_rates", "comment_id", ids)
	if err != nil {
		return viewerState{}, err
	}
	return viewerState{rates: rates}, nil
}

func profileViewer(ctx context.Context, db *gorm.DB, p access.Principal, ids []uint) (viewerState, error) {
	subscribed, err := viewerSet(ctx, db, p, "profile_subscriptions", "profile_id", ids)
	if err != nil {
		return viewerState{}, err
	}
	return viewerState{subscribed: subscribed}, nil
}
