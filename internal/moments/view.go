package moments

import "time"

type MediaView struct {
	ID        int64     `json:"id"`
	MediaType MediaType `json:"media_type"`
	File      string    `json:"file"`
	FileURL   *string   `json:"file_url"`
	Order     int       `json:"order"`
	CreatedAt time.Time `json:"created_at"`
}

type PostView struct {
	ID                 int64       `json:"id"`
	Content            string      `json:"content"`
	IsPinned           bool        `json:"is_pinned"`
	Tags               string      `json:"tags"`
	Media              []MediaView `json:"media"`
	MediaCount         int         `json:"media_count"`
	CreatedAt          time.Time   `json:"created_at"`
	CreatedAtFormatted string      `json:"created_at_formatted"`
	UpdatedAt          time.Time   `json:"updated_at"`
}

type PageView struct {
	Count    int        `json:"count"`
	Page     int        `json:"page"`
	PageSize int        `json:"page_size"`
	Results  []PostView `json:"results"`
}

func (s *Service) MediaView(m Media) MediaView {
	v := MediaView{ID: m.ID, MediaType: m.MediaType, File: m.File, Order: m.Order, CreatedAt: m.CreatedAt}
	if u := s.FileURL(m.File); u != "" {
		v.FileURL = &u
	}
	return v
}

func (s *Service) PostView(p Post) PostView {
	media := make([]MediaView, 0, len(p.Media))
	for _, m := range p.Media {
		media = append(media, s.MediaView(m))
	}
	return PostView{
		ID:                 p.ID,
		Content:            p.Content,
		IsPinned:           p.IsPinned,
		Tags:               p.Tags,
		Media:              media,
		MediaCount:         len(media),
		CreatedAt:          p.CreatedAt,
		CreatedAtFormatted: p.CreatedAt.Format(createdAtLayout),
		UpdatedAt:          p.UpdatedAt,
	}
}

func (s *Service) PageView(pg Page) PageView {
	out := PageView{Count: pg.Count, Page: pg.Page, PageSize: pg.PageSize, Results: make([]PostView, 0, len(pg.Results))}
	for _, p := range pg.Results {
		out.Results = append(out.Results, s.PostView(p))
	}
	return out
}
