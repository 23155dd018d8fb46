package services

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/ProgramMysticxxx/blog-project/access"
	"github.com/ProgramMysticxxx/blog-project/models"
	"github.com/ProgramMysticxxx/blog-project/storage"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	DefaultMaxImageBytes = 5 << 20
	DefaultMaxFileBytes  = 20 << 20
)

var imageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".webp": true,
}

// Upload is an incoming blob with its client-side metadata.
type Upload struct {
	Name        string
	ContentType string
	Size        int64
	Body        io.Reader
}

type UploadService struct {
	deps

	MaxImageBytes int64
	MaxFileBytes  int64
}

func NewUploadService(db *gorm.DB, authz *access.Authorizer, store storage.BlobStore) *UploadService {
	return &UploadService{
		deps:          deps{db: db, authz: authz, store: store},
		MaxImageBytes: DefaultMaxImageBytes,
		MaxFileBytes:  DefaultMaxFileBytes,
	}
}

func (s *UploadService) check(field string, u Upload, limit int64, images bool) (string, error) {
	ext := strings.ToLower(filepath.Ext(u.Name))
	switch {
	case u.Body == nil || u.Size == 0:
		return "", fieldError(field, "The submitted file is empty.")
	case u.Size > limit:
		return "", fieldError(field, "File size must not exceed %d bytes.", limit)
	case images && !imageExtensions[ext]:
		return "", fieldError(field, "Upload a valid image. Allowed extensions are jpg, jpeg, png, gif and webp.")
	}
	return ext, nil
}

// save writes the blob, then its row. A failed insert removes the blob again.
func (s *UploadService) save(ctx context.Context, prefix, ext string, u Upload, insert func(ref string) error) error {
	ref, err := s.store.Save(ctx, prefix, ext, io.LimitReader(u.Body, u.Size))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStorage, err)
	}
	if err := insert(ref); err != nil {
		if rmErr := s.store.Delete(ctx, ref); rmErr != nil {
			s.log().Warn("Failed to remove blob of a failed upload", "ref", ref, "error", rmErr)
		}
		return err
	}
	return nil
}

// UploadImage stores an image owned by p.
func (s *UploadService) UploadImage(ctx context.Context, p access.Principal, u Upload) (*UploadView, error) {
	if err := s.authz.Authorize(p, access.Create, access.Image, nil); err != nil {
		return nil, err
	}
	ext, err := s.check("image", u, s.MaxImageBytes, true)
	if err != nil {
		return nil, err
	}

	var image models.UploadedImage
	err = s.save(ctx, "images", ext, u, func(ref string) error {
		image = models.UploadedImage{
			Ref:          ref,
			OriginalName: filepath.Base(u.Name),
			ContentType:  u.ContentType,
			Size:         u.Size,
			UserID:       p.ID,
			UploadedAt:   time.Now(),
		}
		return s.db.WithContext(ctx).Omit(clause.Associations).Create(&image).Error
	})
	if err != nil {
		return nil, wrap(err, "failed to save image")
	}
	return s.imageView(&image), nil
}

func (s *UploadService) GetImage(ctx context.Context, p access.Principal, id uint) (*UploadView, error) {
	if err := s.authz.Authorize(p, access.Retrieve, access.Image, nil); err != nil {
		return nil, err
	}
	image, err := s.loadImage(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.imageView(image), nil
}

// DeleteImage removes an image of p. Covers and avatars showing it are
// cleared.
func (s *UploadService) DeleteImage(ctx context.Context, p access.Principal, id uint) error {
	image, err := s.loadImage(ctx, id)
	if err != nil {
		return err
	}
	if err := s.authz.Authorize(p, access.Delete, access.Image, &image.UserID); err != nil {
		return err
	}

	err = s.tx(ctx, func(tx *gorm.DB) error {
		if err := tx.Model(&models.Article{}).Where("cover_id = ?", image.ID).UpdateColumn("cover_id", nil).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.Profile{}).Where("avatar_id = ?", image.ID).UpdateColumn("avatar_id", nil).Error; err != nil {
			return err
		}
		return tx.Delete(&models.UploadedImage{}, image.ID).Error
	})
	if err != nil {
		return fmt.Errorf("failed to delete image: %w", err)
	}
	s.removeBlobs(ctx, []string{image.Ref})
	return nil
}

// UploadFile stores an arbitrary file owned by p.
func (s *UploadService) UploadFile(ctx context.Context, p access.Principal, u Upload) (*UploadView, error) {
	if err := s.authz.Authorize(p, access.Create, access.File, nil); err != nil {
		return nil, err
	}
	ext, err := s.check("file", u, s.MaxFileBytes, false)
	if err != nil {
		return nil, err
	}

	var file models.UploadedFile
	err = s.save(ctx, "files", ext, u, func(ref string) error {
		file = models.UploadedFile{
			Ref:          ref,
			OriginalName: filepath.Base(u.Name),
			ContentType:  u.ContentType,
			Size:         u.Size,
			UserID:       p.ID,
			UploadedAt:   time.Now(),
		}
		return s.db.WithContext(ctx).Omit(clause.Associations).Create(&file).Error
	})
	if err != nil {
		return nil, wrap(err, "failed to save file")
	}
	return s.fileView(&file), nil
}

func (s *UploadService) GetFile(ctx context.Context, p access.Principal, id uint) (*UploadView, error) {
	if err := s.authz.Authorize(p, access.Retrieve, access.File, nil); err != nil {
		return nil, err
	}
	var file models.UploadedFile
	if err := s.db.WithContext(ctx).First(&file, id).Error; err != nil {
		if isNotFound(err) {
			return nil, notFound("file")
		}
		return nil, fmt.Errorf("failed to load file: %w", err)
	}
	return s.fileView(&file), nil
}

func (s *UploadService) loadImage(ctx context.Context, id uint) (*models.UploadedImage, error) {
	var image models.UploadedImage
	if err := s.db.WithContext(ctx).First(&image, id).Error; err != nil {
		if isNotFound(err) {
			return nil, notFound("image")
		}
		return nil, fmt.Errorf("failed to load image: %w", err)
	}
	return &image, nil
}

func (s *UploadService) imageView(i *models.UploadedImage) *UploadView {
	return &UploadView{
		ID:          i.ID,
		URL:         s.blobURL(i.Ref),
		Name:        i.OriginalName,
		ContentType: i.ContentType,
		Size:        i.Size,
		User:        i.UserID,
		UploadedAt:  i.UploadedAt,
	}
}

func (s *UploadService) fileView(f *models.UploadedFile) *UploadView {
	return &UploadView{
		ID:          f.ID,
		URL:         s.blobURL(f.Ref),
		Name:        f.OriginalName,
		ContentType: f.ContentType,
		Size:        f.Size,
		User:        f.UserID,
		UploadedAt:  f.UploadedAt,
	}
}
