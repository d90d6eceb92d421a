// 包 moments：朋友圈动态（文字、标签、最多九个媒体文件）
package moments

import (
	"io"
	"time"

	"marathon-api/internal/apperr"
)

var ErrNotFound = apperr.ErrNotFound

type MediaType string

const (
	MediaImage MediaType = "image"
	MediaLive  MediaType = "live"
	MediaVideo MediaType = "video"
)

func (t MediaType) Valid() bool {
	switch t {
	case MediaImage, MediaLive, MediaVideo:
		return true
	}
	return false
}

const (
	MaxMedia        = 9
	MaxVideos       = 1
	MaxContentRunes = 200
	MaxTagsRunes    = 200
	DefaultPageSize = 20
	MaxPageSize     = 100
	createdAtLayout = "2006-01-02 15:04:05"
	mediaDirLayout  = "posts/2006/01/02/"
)

// Post：一条动态；Media 按 Order、CreatedAt 升序
type Post struct {
	ID        int64
	Content   string
	IsPinned  bool
	Tags      string
	Media     []Media
	CreatedAt time.Time
	UpdatedAt time.Time
}

type Media struct {
	ID        int64
	PostID    int64
	MediaType MediaType
	File      string
	Order     int
	CreatedAt time.Time
}

// Upload：一个待保存的上传文件
type Upload struct {
	Name string
	Body io.Reader
}

// CreateInput：Types 为空时按扩展名推断媒体类型
type CreateInput struct {
	Content  string
	IsPinned bool
	Tags     string
	Files    []Upload
	Types    []string
}

// UpdateInput：部分更新，nil 字段保持不变
type UpdateInput struct {
	Content  *string `json:"content"`
	IsPinned *bool   `json:"is_pinned"`
	Tags     *string `json:"tags"`
}

// Filter：Search 匹配内容或标签；日期按天包含两端
type Filter struct {
	Search    string
	StartDate *time.Time
	EndDate   *time.Time
	Page      int
	PageSize  int
}

// Limit/Offset：由 Page/PageSize 换算，调用前应先 normalize
func (f Filter) Limit() int  { return f.PageSize }
func (f Filter) Offset() int { return (f.Page - 1) * f.PageSize }

func (f *Filter) normalize() {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.PageSize < 1 {
		f.PageSize = DefaultPageSize
	}
	if f.PageSize > MaxPageSize {
		f.PageSize = MaxPageSize
	}
}

type Stats struct {
	TotalCount     int `json:"total_count"`
	PinnedCount    int `json:"pinned_count"`
	WithMediaCount int `json:"with_media_count"`
	TodayCount     int `json:"today_count"`
}
