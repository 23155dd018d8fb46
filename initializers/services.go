package initializers

import (
	"context"

	"github.com/ProgramMysticxxx/blog-project/services"
	"github.com/ProgramMysticxxx/blog-project/storage"
)

var (
	STORE    *storage.LocalStore
	USERS    *services.UserService
	ARTICLES *services.ArticleService
	COMMENTS *services.CommentService
	PROFILES *services.ProfileService
	TAXONOMY *services.TaxonomyService
	UPLOADS  *services.UploadService
)

func InitStorage() {
	var err error
	STORE, err = storage.NewLocalStore(Cfg.UploadsDir, Cfg.MediaURL)
	if err != nil {
		panic("Failed to initialize storage: " + err.Error())
	}
}

// InitServices wires the services on DB, AUTHZ and STORE.
func InitServices() {
	USERS = services.NewUserService(DB, AUTHZ, STORE)
	ARTICLES = services.NewArticleService(DB, AUTHZ, STORE)
	COMMENTS = services.NewCommentService(DB, AUTHZ, STORE)
	PROFILES = services.NewProfileService(DB, AUTHZ, STORE)
	TAXONOMY = services.NewTaxonomyService(DB, AUTHZ)
	UPLOADS = services.NewUploadService(DB, AUTHZ, STORE)

	USERS.Logger = LOGGER
	ARTICLES.Logger = LOGGER
	COMMENTS.Logger = LOGGER
	PROFILES.Logger = LOGGER
	TAXONOMY.Logger = LOGGER
	UPLOADS.Logger = LOGGER

	if Cfg.MaxImageBytes > 0 {
		UPLOADS.MaxImageBytes = Cfg.MaxImageBytes
	}
	if Cfg.MaxFileBytes > 0 {
		UPLOADS.MaxFileBytes = Cfg.MaxFileBytes
	}
}

// SeedCategories creates the configured categories that don't exist yet.
func SeedCategories() {
	names := SplitList(Cfg.Categories)
	if err := TAXONOMY.EnsureCategories(context.Background(), names); err != nil {
		panic("Failed to seed categories: " + err.Error())
	}
	if len(names) > 0 {
		LOGGER.Info("Categories seeded", "categories", names)
	}
}
