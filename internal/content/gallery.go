package content

import (
	"context"
	"errors"
	"fmt"
	"mime"
	"net/http"
	"net/url"
	"path"
	"strings"

	"github.com/iwvelando/temple-portal/internal/store"
	"github.com/iwvelando/temple-portal/pkg/constants"
	"go.uber.org/zap"
)

// LinkedMediaName names gallery items added by URL.
const LinkedMediaName = "Linked Media"

// ErrStorageUnavailable is returned for uploads when no media storage is
// configured.
var ErrStorageUnavailable = errors.New("media storage unavailable")

// GalleryLimit returns the maximum number of items of a media type.
func GalleryLimit(mediaType string) int {
	if mediaType == constants.MediaTypeVideo {
		return constants.MaxGalleryVideos
	}
	return constants.MaxGalleryPhotos
}

// MediaType classifies an upload as photo or video from its content type,
// falling back to the file extension and then to sniffing the data.
func MediaType(filename, contentType string, data []byte) (string, bool) {
	candidates := []string{contentType, mime.TypeByExtension(strings.ToLower(path.Ext(filename)))}
	if len(data) > 0 {
		candidates = append(candidates, http.DetectContentType(data))
	}
	for _, ct := range candidates {
		switch {
		case strings.HasPrefix(ct, "image/"):
			return constants.MediaTypePhoto, true
		case strings.HasPrefix(ct, "video/"):
			return constants.MediaTypeVideo, true
		}
	}
	return "", false
}

func validMediaType(mediaType string) bool {
	return mediaType == constants.MediaTypePhoto || mediaType == constants.MediaTypeVideo
}

func (s *Service) checkLimit(ctx context.Context, mediaType string) error {
	n, err := s.store.CountMedia(ctx, mediaType)
	if err != nil {
		return err
	}
	if limit := GalleryLimit(mediaType); n >= limit {
		return fmt.Errorf("%w: reached the limit of %d %ss, delete old items first", ErrGalleryFull, limit, mediaType)
	}
	return nil
}

// UploadMedia stores an uploaded file and adds it to the gallery. want, when
// set, must match the detected type.
func (s *Service) UploadMedia(ctx context.Context, filename, contentType, want string, data []byte) (store.MediaItem, error) {
	if s.media == nil {
		return store.MediaItem{}, ErrStorageUnavailable
	}
	if len(data) == 0 {
		return store.MediaItem{}, fmt.Errorf("%w: empty upload", ErrValidation)
	}
	mediaType, ok := MediaType(filename, contentType, data)
	if !ok {
		return store.MediaItem{}, fmt.Errorf("%w: only images and videos can be uploaded", ErrValidation)
	}
	if want != "" && want != mediaType {
		return store.MediaItem{}, fmt.Errorf("%w: expected a %s upload, got a %s", ErrValidation, want, mediaType)
	}
	if err := s.checkLimit(ctx, mediaType); err != nil {
		s.rejected(mediaType, err)
		return store.MediaItem{}, err
	}

	obj, err := s.media.Put(ctx, filename, data)
	if err != nil {
		return store.MediaItem{}, err
	}
	item, err := s.store.CreateMedia(ctx, store.MediaItem{
		URL:      obj.URL,
		Type:     mediaType,
		Name:     filename,
		FullPath: obj.FullPath,
	})
	if err != nil {
		if derr := s.media.Delete(ctx, obj.FullPath); derr != nil {
			s.logger.Warn("failed to remove orphaned media object",
				zap.String("op", "content.UploadMedia"),
				zap.String("key", obj.FullPath),
				zap.Error(derr),
			)
		}
		return store.MediaItem{}, err
	}
	return item, nil
}

// LinkMedia adds an externally hosted photo or video to the gallery.
func (s *Service) LinkMedia(ctx context.Context, rawURL, mediaType string) (store.MediaItem, error) {
	rawURL = strings.TrimSpace(rawURL)
	u, err := url.Parse(rawURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return store.MediaItem{}, fmt.Errorf("%w: a http(s) URL is required", ErrValidation)
	}
	if !validMediaType(mediaType) {
		return store.MediaItem{}, fmt.Errorf("%w: type must be %s or %s", ErrValidation, constants.MediaTypePhoto, constants.MediaTypeVideo)
	}
	if err := s.checkLimit(ctx, mediaType); err != nil {
		s.rejected(mediaType, err)
		return store.MediaItem{}, err
	}
	return s.store.CreateMedia(ctx, store.MediaItem{URL: rawURL, Type: mediaType, Name: LinkedMediaName})
}

// DeleteMedia removes a gallery item and, for uploads, its stored file. A
// failure to remove the file does not fail the deletion.
func (s *Service) DeleteMedia(ctx context.Context, id string) error {
	item, err := s.store.GetMedia(ctx, id)
	if err != nil {
		return err
	}
	if item.FullPath != "" && s.media != nil {
		if err := s.media.Delete(ctx, item.FullPath); err != nil {
			s.logger.Warn("failed to delete media object, removing gallery entry anyway",
				zap.String("op", "content.DeleteMedia"),
				zap.String("id", id),
				zap.String("key", item.FullPath),
				zap.Error(err),
			)
		}
	}
	return s.store.DeleteMedia(ctx, id)
}

// ListMedia returns gallery items newest first, optionally of one type.
func (s *Service) ListMedia(ctx context.Context, mediaType string) ([]store.MediaItem, error) {
	if mediaType != "" && !validMediaType(mediaType) {
		return nil, fmt.Errorf("%w: unknown media type %q", ErrValidation, mediaType)
	}
	return s.store.ListMedia(ctx, mediaType)
}

func (s *Service) rejected(mediaType string, err error) {
	s.logger.Info("gallery limit reached",
		zap.String("op", "content.gallery"),
		zap.String("type", mediaType),
		zap.Error(err),
	)
}
