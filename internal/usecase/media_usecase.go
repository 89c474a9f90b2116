package usecase

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"time"

	"storefront/internal/domain/model"
	repo "storefront/internal/repository"
)

// 動画・バナー（管理画面）
type MediaUsecase struct {
	videos  repo.VideoRepository
	banners repo.BannerRepository
	audit   repo.AuditLogRepository
}

func NewMediaUsecase(videos repo.VideoRepository, banners repo.BannerRepository, audit repo.AuditLogRepository) *MediaUsecase {
	return &MediaUsecase{videos: videos, banners: banners, audit: audit}
}

type VideoInput struct {
	Title     string
	URL       string
	SortOrder int
	IsActive  bool
}

type BannerInput struct {
	Title     string
	ImageURL  string
	LinkURL   string
	SortOrder int
	IsActive  bool
}

func validURL(s string) bool {
	u, err := url.Parse(strings.TrimSpace(s))
	return err == nil && (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// 公開側は有効なものだけ
func (u *MediaUsecase) ListVideos(ctx context.Context, onlyActive bool) ([]model.Video, error) {
	out, err := u.videos.List(ctx, onlyActive)
	if err != nil {
		return nil, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return out, nil
}

func (u *MediaUsecase) CreateVideo(ctx context.Context, in VideoInput) (model.Video, error) {
	if strings.TrimSpace(in.Title) == "" {
		return model.Video{}, NewHTTPError(http.StatusBadRequest, "title required")
	}
	if !validURL(in.URL) {
		return model.Video{}, NewHTTPError(http.StatusBadRequest, "invalid url")
	}

	v, err := u.videos.Create(ctx, model.Video{
		Title:     strings.TrimSpace(in.Title),
		URL:       strings.TrimSpace(in.URL),
		SortOrder: in.SortOrder,
		IsActive:  in.IsActive,
	})
	if err != nil {
		return model.Video{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return v, nil
}

func (u *MediaUsecase) UpdateVideo(ctx context.Context, id int64, in VideoInput) error {
	if id <= 0 {
		return NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	if strings.TrimSpace(in.Title) == "" {
		return NewHTTPError(http.StatusBadRequest, "title required")
	}
	if !validURL(in.URL) {
		return NewHTTPError(http.StatusBadRequest, "invalid url")
	}

	return mediaErr(u.videos.Update(ctx, model.Video{
		ID:        id,
		Title:     strings.TrimSpace(in.Title),
		URL:       strings.TrimSpace(in.URL),
		SortOrder: in.SortOrder,
		IsActive:  in.IsActive,
	}))
}

func (u *MediaUsecase) DeleteVideo(ctx context.Context, adminUserID int64, id int64) error {
	if id <= 0 {
		return NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	if err := u.videos.Delete(ctx, id); err != nil {
		return mediaErr(err)
	}
	return u.auditDelete(ctx, adminUserID, model.AuditResourceVideo, id)
}

func (u *MediaUsecase) ListBanners(ctx context.Context, onlyActive bool) ([]model.Banner, error) {
	out, err := u.banners.List(ctx, onlyActive)
	if err != nil {
		return nil, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return out, nil
}

func (u *MediaUsecase) CreateBanner(ctx context.Context, in BannerInput) (model.Banner, error) {
	if err := validateBanner(in); err != nil {
		return model.Banner{}, err
	}

	b, err := u.banners.Create(ctx, model.Banner{
		Title:     strings.TrimSpace(in.Title),
		ImageURL:  strings.TrimSpace(in.ImageURL),
		LinkURL:   strings.TrimSpace(in.LinkURL),
		SortOrder: in.SortOrder,
		IsActive:  in.IsActive,
	})
	if err != nil {
		return model.Banner{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return b, nil
}

func (u *MediaUsecase) UpdateBanner(ctx context.Context, id int64, in BannerInput) error {
	if id <= 0 {
		return NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	if err := validateBanner(in); err != nil {
		return err
	}

	return mediaErr(u.banners.Update(ctx, model.Banner{
		ID:        id,
		Title:     strings.TrimSpace(in.Title),
		ImageURL:  strings.TrimSpace(in.ImageURL),
		LinkURL:   strings.TrimSpace(in.LinkURL),
		SortOrder: in.SortOrder,
		IsActive:  in.IsActive,
	}))
}

func (u *MediaUsecase) DeleteBanner(ctx context.Context, adminUserID int64, id int64) error {
	if id <= 0 {
		return NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	if err := u.banners.Delete(ctx, id); err != nil {
		return mediaErr(err)
	}
	return u.auditDelete(ctx, adminUserID, model.AuditResourceBanner, id)
}

func validateBanner(in BannerInput) error {
	if strings.TrimSpace(in.Title) == "" {
		return NewHTTPError(http.StatusBadRequest, "title required")
	}
	if !validURL(in.ImageURL) {
		return NewHTTPError(http.StatusBadRequest, "invalid image_url")
	}
	//リンク先はサイト内パスでもよい
	if l := strings.TrimSpace(in.LinkURL); l != "" && !strings.HasPrefix(l, "/") && !validURL(l) {
		return NewHTTPError(http.StatusBadRequest, "invalid link_url")
	}
	return nil
}

func (u *MediaUsecase) auditDelete(ctx context.Context, adminUserID int64, rt model.AuditResourceType, id int64) error {
	if err := u.audit.Create(ctx, model.AuditLog{
		ActorUserID:  adminUserID,
		Action:       model.AuditActionDeleteMedia,
		ResourceType: rt,
		ResourceID:   id,
		CreatedAt:    time.Now(),
	}); err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return nil
}

func mediaErr(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, repo.ErrNotFound) {
		return NewHTTPError(http.StatusNotFound, "not found")
	}
	return NewHTTPError(http.StatusInternalServerError, "db error")
}
