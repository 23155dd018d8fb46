package services

import (
	"context"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/ProgramMysticxxx/blog-project/access"
	"github.com/ProgramMysticxxx/blog-project/models"
	"github.com/ProgramMysticxxx/blog-project/storage"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const maxPublicNameLength = 150

// ProfileInput is the writable part of a profile. The username follows the
// user and cannot be changed.
type ProfileInput struct {
	PublicName *string        `json:"public_name"`
	Avatar     Nullable[uint] `json:"avatar"`
	Bio        *string        `json:"bio"`
}

type ProfileService struct {
	deps
}

func NewProfileService(db *gorm.DB, authz *access.Authorizer, store storage.BlobStore) *ProfileService {
	return &ProfileService{deps: deps{db: db, authz: authz, store: store}}
}

// Get retrieves a profile by username as seen by p.
func (s *ProfileService) Get(ctx context.Context, p access.Principal, username string) (*ProfileView, error) {
	if err := s.authz.Authorize(p, access.Retrieve, access.Profile, nil); err != nil {
		return nil, err
	}

	var profile models.Profile
	if err := s.db.WithContext(ctx).Preload("Avatar").Where("username = ?", username).First(&profile).Error; err != nil {
		if isNotFound(err) {
			return nil, notFound("profile")
		}
		return nil, fmt.Errorf("failed to load profile: %w", err)
	}

	views, err := s.views(ctx, p, []models.Profile{profile})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

// List returns the profiles p is subscribed to. Listing every profile is
// not allowed to anyone.
func (s *ProfileService) List(ctx context.Context, p access.Principal, q ProfileQuery, params PageParams) ([]ProfileView, *PaginationResult, error) {
	act := access.List
	if q.Subscribed {
		act = access.ListSubscribed
	}
	if err := s.authz.Authorize(p, act, access.Profile, nil); err != nil {
		return nil, nil, err
	}

	order, err := orderBy(q.Ordering, "username", profileOrdering(p), "profiles.id")
	if err != nil {
		return nil, nil, err
	}
	base := func() *gorm.DB {
		return filterProfiles(s.db.WithContext(ctx).Model(&models.Profile{}), p, q)
	}

	var profiles []models.Profile
	pagination, err := page(base, order, params, func(tx *gorm.DB) (int, error) {
		err := tx.Preload("Avatar").Find(&profiles).Error
		return len(profiles), err
	})
	if err != nil {
		return nil, nil, err
	}

	views, err := s.views(ctx, p, profiles)
	if err != nil {
		return nil, nil, err
	}
	return views, pagination, nil
}

// Update modifies the profile of p. partial keeps the absent fields.
func (s *ProfileService) Update(ctx context.Context, p access.Principal, username string, in ProfileInput, partial bool) (*ProfileView, error) {
	profile, err := s.load(ctx, username)
	if err != nil {
		return nil, err
	}
	if err := s.authz.Authorize(p, access.Update, access.Profile, &profile.UserID); err != nil {
		return nil, err
	}

	verr := &ValidationError{}
	if in.PublicName != nil && utf8.RuneCountInString(*in.PublicName) > maxPublicNameLength {
		verr.Add("public_name", fmt.Sprintf("Ensure this field has no more than %d characters.", maxPublicNameLength))
	}
	if err := verr.OrNil(); err != nil {
		return nil, err
	}

	err = s.tx(ctx, func(tx *gorm.DB) error {
		if in.Avatar.Value != nil {
			var n int64
			if err := tx.Model(&models.UploadedImage{}).Where("id = ?", *in.Avatar.Value).Count(&n).Error; err != nil {
				return err
			}
			if n == 0 {
				return fieldError("avatar", "Invalid pk \"%d\" - object does not exist.", *in.Avatar.Value)
			}
		}

		changes := map[string]interface{}{}
		if in.PublicName != nil || !partial {
			changes["public_name"] = deref(in.PublicName)
		}
		if in.Bio != nil || !partial {
			changes["bio"] = deref(in.Bio)
		}
		if in.Avatar.Set || !partial {
			changes["avatar_id"] = in.Avatar.Value
		}
		if len(changes) == 0 {
			return nil
		}
		return tx.Model(&models.Profile{ID: profile.ID}).Omit(clause.Associations).Updates(changes).Error
	})
	if err != nil {
		return nil, wrap(err, "failed to update profile")
	}
	return s.Get(ctx, p, username)
}

// Delete always fails once the profile is found: profiles live and die with
// their user.
func (s *ProfileService) Delete(ctx context.Context, p access.Principal, username string) error {
	profile, err := s.load(ctx, username)
	if err != nil {
		return err
	}
	return s.authz.Authorize(p, access.Delete, access.Profile, &profile.UserID)
}

// Subscribe makes p follow the profile. Following twice is a no-op.
func (s *ProfileService) Subscribe(ctx context.Context, p access.Principal, username string) error {
	profile, err := s.subscriptionTarget(ctx, p, username)
	if err != nil {
		return err
	}

	subscription := models.ProfileSubscription{UserID: p.ID, ProfileID: profile.ID, SubscribedAt: time.Now()}
	err = s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "profile_id"}},
			DoNothing: true,
		}).
		Omit(clause.Associations).
		Create(&subscription).Error
	return wrap(err, "failed to subscribe")
}

func (s *ProfileService) Unsubscribe(ctx context.Context, p access.Principal, username string) error {
	profile, err := s.subscriptionTarget(ctx, p, username)
	if err != nil {
		return err
	}

	err = s.db.WithContext(ctx).Where("user_id = ? AND profile_id = ?", p.ID, profile.ID).Delete(&models.ProfileSubscription{}).Error
	return wrap(err, "failed to unsubscribe")
}

func (s *ProfileService) subscriptionTarget(ctx context.Context, p access.Principal, username string) (*models.Profile, error) {
	if err := s.authz.Authorize(p, access.Subscribe, access.Profile, nil); err != nil {
		return nil, err
	}
	profile, err := s.load(ctx, username)
	if err != nil {
		return nil, err
	}
	if p.Is(profile.UserID) {
		return nil, ErrSelfSubscription
	}
	return profile, nil
}

func (s *ProfileService) load(ctx context.Context, username string) (*models.Profile, error) {
	var profile models.Profile
	if err := s.db.WithContext(ctx).Where("username = ?", username).First(&profile).Error; err != nil {
		if isNotFound(err) {
			return nil, notFound("profile")
		}
		return nil, fmt.Errorf("failed to load profile: %w", err)
	}
	return &profile, nil
}

func (s *ProfileService) views(ctx context.Context, p access.Principal, profiles []models.Profile) ([]ProfileView, error) {
	userIDs := make([]uint, len(profiles))
	profileIDs := make([]uint, len(profiles))
	for i, pr := range profiles {
		userIDs[i] = pr.UserID
		profileIDs[i] = pr.ID
	}

	stats, err := profileAggregates(ctx, s.db, userIDs, profileIDs)
	if err != nil {
		return nil, err
	}
	viewer, err := profileViewer(ctx, s.db, p, profileIDs)
	if err != nil {
		return nil, err
	}

	views := make([]ProfileView, len(profiles))
	for i, pr := range profiles {
		var avatarURL *string
		if pr.Avatar != nil {
			url := s.blobURL(pr.Avatar.Ref)
			avatarURL = &url
		}
		views[i] = ProfileView{
			Username:            pr.Username,
			PublicName:          pr.PublicName,
			Avatar:              pr.AvatarID,
			AvatarURL:           avatarURL,
			Bio:                 pr.Bio,
			ArticlesCount:       stats.articles[pr.UserID],
			SubscribersCount:    stats.subscribers[pr.ID],
			TotalArticlesRating: stats.rating[pr.UserID],
			IsYou:               p.Is(pr.UserID),
			AreYouSubscribed:    viewer.subscribed[pr.ID],
		}
	}
	return views, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
