package services

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/ProgramMysticxxx/blog-project/access"
	"github.com/ProgramMysticxxx/blog-project/models"
	"github.com/ProgramMysticxxx/blog-project/storage"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	maxUsernameLength = 150
	minPasswordLength = 6
)

var usernameRegex = regexp.MustCompile(`^[\w.@+-]+$`)

type UserService struct {
	deps
}

func NewUserService(db *gorm.DB, authz *access.Authorizer, store storage.BlobStore) *UserService {
	return &UserService{deps: deps{db: db, authz: authz, store: store}}
}

func userView(u *models.User) *UserView {
	return &UserView{ID: u.ID, Username: u.Username, CreatedAt: u.CreatedAt}
}

func validateCredentials(username, password string) error {
	verr := &ValidationError{}
	switch {
	case username == "":
		verr.Add("username", "This field is required.")
	case len(username) > maxUsernameLength:
		verr.Add("username", fmt.Sprintf("Ensure this field has no more than %d characters.", maxUsernameLength))
	case !usernameRegex.MatchString(username):
		verr.Add("username", "Enter a valid username. This value may contain only letters, numbers, and @/./+/-/_ characters.")
	}
	switch {
	case password == "":
		verr.Add("password", "This field is required.")
	case len(password) < minPasswordLength:
		verr.Add("password", fmt.Sprintf("Ensure this field has at least %d characters.", minPasswordLength))
	}
	return verr.OrNil()
}

// Register creates a user and its profile in one transaction.
func (s *UserService) Register(ctx context.Context, username, password string) (*UserView, error) {
	username = strings.TrimSpace(username)
	if err := validateCredentials(username, password); err != nil {
		return nil, err
	}

	// Hash the password
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), 10)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := models.User{Username: username, Password: string(hashedPassword)}
	err = s.tx(ctx, func(tx *gorm.DB) error {
		var taken int64
		if err := tx.Model(&models.User{}).Where("username = ?", username).Count(&taken).Error; err != nil {
			return err
		}
		if taken == 0 {
			// A profile left behind under this name would break the unique index
			if err := tx.Model(&models.Profile{}).Where("username = ?", username).Count(&taken).Error; err != nil {
				return err
			}
		}
		if taken > 0 {
			return fieldError("username", "A user with that username already exists.")
		}

		if err := tx.Create(&user).Error; err != nil {
			return err
		}
		return tx.Omit(clause.Associations).Create(&models.Profile{UserID: user.ID, Username: user.Username}).Error
	})
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return nil, fieldError("username", "A user with that username already exists.")
	}
	if err != nil {
		var verr *ValidationError
		if errors.As(err, &verr) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return userView(&user), nil
}

// Login checks the credentials of a user.
func (s *UserService) Login(ctx context.Context, username, password string) (*UserView, error) {
	username = strings.TrimSpace(username)
	verr := &ValidationError{}
	if username == "" {
		verr.Add("username", "This field is required.")
	}
	if password == "" {
		verr.Add("password", "This field is required.")
	}
	if err := verr.OrNil(); err != nil {
		return nil, err
	}

	// Look up the user in the database by username
	var user models.User
	if err := s.db.WithContext(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		if isNotFound(err) {
			return nil, notFound("user")
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	// Compare the password with the hashed password in the database
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, ErrBadCredentials
	}
	return userView(&user), nil
}

// Principal loads the principal of the user with the given id.
func (s *UserService) Principal(ctx context.Context, id uint) (access.Principal, error) {
	var user models.User
	if err := s.db.WithContext(ctx).Select("id", "username").First(&user, id).Error; err != nil {
		if isNotFound(err) {
			return access.Principal{}, notFound("user")
		}
		return access.Principal{}, fmt.Errorf("failed to load user: %w", err)
	}
	return access.Principal{ID: user.ID, Username: user.Username}, nil
}

// Delete removes the account of p with everything it owns. Comments of the
// user survive without an author. Blobs are removed once the rows are gone.
func (s *UserService) Delete(ctx context.Context, p access.Principal) error {
	if err := s.authz.Authorize(p, access.Delete, access.Account, uintPtr(p.ID)); err != nil {
		return err
	}

	var refs []string
	err := s.tx(ctx, func(tx *gorm.DB) error {
		var user models.User
		if err := tx.First(&user, p.ID).Error; err != nil {
			if isNotFound(err) {
				return notFound("user")
			}
			return err
		}

		// Uploads of the user stop being referenced before they go
		imageIDs := tx.Model(&models.UploadedImage{}).Select("id").Where("user_id = ?", user.ID)
		if err := tx.Model(&models.Article{}).Where("cover_id IN (?)", imageIDs).UpdateColumn("cover_id", nil).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.Profile{}).Where("avatar_id IN (?)", imageIDs).UpdateColumn("avatar_id", nil).Error; err != nil {
			return err
		}

		// Comments are kept, anonymised
		if err := tx.Model(&models.Comment{}).Where("author_id = ?", user.ID).UpdateColumn("author_id", nil).Error; err != nil {
			return err
		}

		var articleIDs []uint
		if err := tx.Model(&models.Article{}).Where("author_id = ?", user.ID).Pluck("id", &articleIDs).Error; err != nil {
			return err
		}
		if err := deleteArticles(tx, articleIDs); err != nil {
			return err
		}

		for _, m := range []interface{}{&models.ArticleRate{}, &models.CommentRate{}, &models.ArticleFavorite{}, &models.ProfileSubscription{}} {
			if err := tx.Where("user_id = ?", user.ID).Delete(m).Error; err != nil {
				return err
			}
		}
		if err := tx.Where("profile_id IN (?)", tx.Model(&models.Profile{}).Select("id").Where("user_id = ?", user.ID)).
			Delete(&models.ProfileSubscription{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", user.ID).Delete(&models.Profile{}).Error; err != nil {
			return err
		}

		for _, m := range []interface{}{&models.UploadedImage{}, &models.UploadedFile{}} {
			var owned []string
			if err := tx.Model(m).Where("user_id = ?", user.ID).Pluck("ref", &owned).Error; err != nil {
				return err
			}
			refs = append(refs, owned...)
			if err := tx.Where("user_id = ?", user.ID).Delete(m).Error; err != nil {
				return err
			}
		}

		return tx.Delete(&user).Error
	})
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return err
		}
		return fmt.Errorf("failed to delete user: %w", err)
	}

	if err := s.authz.RevokeAll(p.Username); err != nil {
		s.log().Warn("Failed to revoke rules of deleted user", "user", p.Username, "error", err)
	}
	s.removeBlobs(ctx, refs)
	return nil
}
