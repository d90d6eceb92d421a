package moments

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"marathon-api/internal/apperr"
	"marathon-api/internal/filestore"
	"marathon-api/internal/logger"
	"marathon-api/internal/metrics"
)

// Repo：动态与媒体的持久化
// 约束：CreatePost 在同一事务内写入动态及其媒体并回填 ID；Get*/Delete* 未命中返回 ErrNotFound。
type Repo interface {
	CreatePost(ctx context.Context, p *Post) error
	UpdatePost(ctx context.Context, p *Post) error
	GetPost(ctx context.Context, id int64) (*Post, error)
	DeletePost(ctx context.Context, id int64) error
	ListPosts(ctx context.Context, f Filter) ([]Post, int, error)
	Stats(ctx context.Context, dayStart time.Time) (Stats, error)
	ListMedia(ctx context.Context, postID int64) ([]Media, error)
	GetMedia(ctx context.Context, id int64) (*Media, error)
	DeleteMedia(ctx context.Context, id int64) error
}

type Service struct {
	repo  Repo
	files filestore.Store
	now   func() time.Time
	log   *slog.Logger
}

func NewService(repo Repo, files filestore.Store) *Service {
	return &Service{repo: repo, files: files, now: time.Now, log: logger.With("moments")}
}

func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

func (s *Service) FileURL(path string) string {
	if path == "" {
		return ""
	}
	return s.files.URL(path)
}

// Create：校验后先保存文件再写库；任一步失败时删除已保存的文件
func (s *Service) Create(ctx context.Context, in CreateInput) (*Post, error) {
	fe := apperr.FieldErrors{}
	content := cleanText(in.Content)
	tags := CleanTags(cleanText(in.Tags))
	checkContent(fe, content)
	checkTags(fe, tags)
	types := mediaTypes(fe, in.Files, in.Types)
	if err := fe.Err(); err != nil {
		return nil, err
	}

	now := s.now()
	p := &Post{Content: content, IsPinned: in.IsPinned, Tags: tags, CreatedAt: now, UpdatedAt: now}
	dir := now.Format(mediaDirLayout)
	for i, f := range in.Files {
		stored, err := s.files.Save(ctx, f.Body, dir+f.Name)
		if err != nil {
			s.discard(ctx, p.Media)
			return nil, fmt.Errorf("save media %d: %w", i, err)
		}
		p.Media = append(p.Media, Media{MediaType: types[i], File: stored, Order: i, CreatedAt: now})
	}
	if err := s.repo.CreatePost(ctx, p); err != nil {
		s.discard(ctx, p.Media)
		return nil, fmt.Errorf("create post: %w", err)
	}
	metrics.UploadsTotal.WithLabelValues("moment").Add(float64(len(p.Media)))
	s.log.Info("post_created", "id", p.ID, "media", len(p.Media))
	return p, nil
}

func (s *Service) Update(ctx context.Context, id int64, in UpdateInput) (*Post, error) {
	p, err := s.repo.GetPost(ctx, id)
	if err != nil {
		return nil, err
	}
	fe := apperr.FieldErrors{}
	if in.Content != nil {
		p.Content = cleanText(*in.Content)
		checkContent(fe, p.Content)
	}
	if in.Tags != nil {
		p.Tags = CleanTags(cleanText(*in.Tags))
		checkTags(fe, p.Tags)
	}
	if in.IsPinned != nil {
		p.IsPinned = *in.IsPinned
	}
	if err := fe.Err(); err != nil {
		return nil, err
	}
	p.UpdatedAt = s.now()
	if err := s.repo.UpdatePost(ctx, p); err != nil {
		return nil, fmt.Errorf("update post: %w", err)
	}
	return p, nil
}

// Delete：媒体行随动态级联删除，文件在记录删除成功后清理
func (s *Service) Delete(ctx context.Context, id int64) error {
	p, err := s.repo.GetPost(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.DeletePost(ctx, id); err != nil {
		return err
	}
	s.discard(ctx, p.Media)
	return nil
}

func (s *Service) Get(ctx context.Context, id int64) (*Post, error) {
	return s.repo.GetPost(ctx, id)
}

// Page：分页结果
type Page struct {
	Count    int
	Page     int
	PageSize int
	Results  []Post
}

func (s *Service) List(ctx context.Context, f Filter) (Page, error) {
	f.normalize()
	f.Search = cleanText(f.Search)
	posts, total, err := s.repo.ListPosts(ctx, f)
	if err != nil {
		return Page{}, err
	}
	return Page{Count: total, Page: f.Page, PageSize: f.PageSize, Results: posts}, nil
}

// Stats：today_count 以服务所在时区的当天零点为界
func (s *Service) Stats(ctx context.Context) (Stats, error) {
	now := s.now()
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	return s.repo.Stats(ctx, dayStart)
}

// ListMedia：postID 为 0 时返回全部
func (s *Service) ListMedia(ctx context.Context, postID int64) ([]Media, error) {
	return s.repo.ListMedia(ctx, postID)
}

func (s *Service) GetMedia(ctx context.Context, id int64) (*Media, error) {
	return s.repo.GetMedia(ctx, id)
}

func (s *Service) DeleteMedia(ctx context.Context, id int64) error {
	m, err := s.repo.GetMedia(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.DeleteMedia(ctx, id); err != nil {
		return err
	}
	s.discard(ctx, []Media{*m})
	return nil
}

func (s *Service) discard(ctx context.Context, media []Media) {
	for _, m := range media {
		if err := s.files.Delete(ctx, m.File); err != nil {
			s.log.Warn("media_delete_failed", "path", m.File, "err", err)
		}
	}
}
