package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"

	"marathon-api/internal/moments"
)

const (
	postColumns  = `id, content, is_pinned, tags, created_at, updated_at`
	mediaColumns = `id, post_id, media_type, file, sort_order, created_at`
)

func scanPost(sc scanner) (moments.Post, error) {
	var p moments.Post
	err := sc.Scan(&p.ID, &p.Content, &p.IsPinned, &p.Tags, &p.CreatedAt, &p.UpdatedAt)
	return p, err
}

func scanMedia(sc scanner) (moments.Media, error) {
	var m moments.Media
	var typ string
	err := sc.Scan(&m.ID, &m.PostID, &typ, &m.File, &m.Order, &m.CreatedAt)
	m.MediaType = moments.MediaType(typ)
	return m, err
}

// CreatePost：动态与媒体在同一事务内写入
func (s *Store) CreatePost(ctx context.Context, p *moments.Post) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if err := tx.QueryRowContext(ctx, `INSERT INTO moments_posts(content, is_pinned, tags, created_at, updated_at)
        VALUES($1,$2,$3,$4,$5) RETURNING id`,
		p.Content, p.IsPinned, p.Tags, p.CreatedAt, p.UpdatedAt).Scan(&p.ID); err != nil {
		return fmt.Errorf("insert post: %w", err)
	}
	for i := range p.Media {
		m := &p.Media[i]
		m.PostID = p.ID
		if err := tx.QueryRowContext(ctx, `INSERT INTO moments_media(post_id, media_type, file, sort_order, created_at)
            VALUES($1,$2,$3,$4,$5) RETURNING id`,
			m.PostID, string(m.MediaType), m.File, m.Order, m.CreatedAt).Scan(&m.ID); err != nil {
			return fmt.Errorf("insert media %d: %w", i, err)
		}
	}
	return tx.Commit()
}

func (s *Store) UpdatePost(ctx context.Context, p *moments.Post) error {
	return mustAffect(s.db.ExecContext(ctx,
		`UPDATE moments_posts SET content=$2, is_pinned=$3, tags=$4, updated_at=$5 WHERE id=$1`,
		p.ID, p.Content, p.IsPinned, p.Tags, p.UpdatedAt))
}

func (s *Store) GetPost(ctx context.Context, id int64) (*moments.Post, error) {
	p, err := scanPost(s.db.QueryRowContext(ctx, `SELECT `+postColumns+` FROM moments_posts WHERE id=$1`, id))
	if err != nil {
		return nil, notFound(err)
	}
	if p.Media, err = s.ListMedia(ctx, id); err != nil {
		return nil, err
	}
	return &p, nil
}

// DeletePost：媒体行由外键级联删除
func (s *Store) DeletePost(ctx context.Context, id int64) error {
	return mustAffect(s.db.ExecContext(ctx, `DELETE FROM moments_posts WHERE id=$1`, id))
}

// ListPosts：置顶优先、时间倒序；返回当前页与总数
func (s *Store) ListPosts(ctx context.Context, f moments.Filter) ([]moments.Post, int, error) {
	var where []string
	var args []any
	if f.Search != "" {
		args = append(args, "%"+escapeLike(f.Search)+"%")
		where = append(where, fmt.Sprintf("(content ILIKE $%d OR tags ILIKE $%d)", len(args), len(args)))
	}
	if f.StartDate != nil {
		args = append(args, *f.StartDate)
		where = append(where, fmt.Sprintf("created_at >= $%d", len(args)))
	}
	if f.EndDate != nil {
		args = append(args, f.EndDate.AddDate(0, 0, 1))
		where = append(where, fmt.Sprintf("created_at < $%d", len(args)))
	}
	cond := ""
	if len(where) > 0 {
		cond = ` WHERE ` + strings.Join(where, " AND ")
	}

	var total int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM moments_posts`+cond, args...).Scan(&total); err != nil {
		return nil, 0, err
	}
	args = append(args, f.Limit(), f.Offset())
	q := fmt.Sprintf(`SELECT %s FROM moments_posts%s ORDER BY is_pinned DESC, created_at DESC, id DESC LIMIT $%d OFFSET $%d`,
		postColumns, cond, len(args)-1, len(args))
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	posts := []moments.Post{}
	ids := []int64{}
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, 0, err
		}
		posts = append(posts, p)
		ids = append(ids, p.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	if len(ids) == 0 {
		return posts, total, nil
	}
	media, err := s.mediaFor(ctx, ids)
	if err != nil {
		return nil, 0, err
	}
	for i := range posts {
		posts[i].Media = media[posts[i].ID]
	}
	return posts, total, nil
}

func (s *Store) mediaFor(ctx context.Context, postIDs []int64) (map[int64][]moments.Media, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+mediaColumns+` FROM moments_media
        WHERE post_id = ANY($1) ORDER BY post_id, sort_order, created_at`, pq.Array(postIDs))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := map[int64][]moments.Media{}
	for rows.Next() {
		m, err := scanMedia(rows)
		if err != nil {
			return nil, err
		}
		out[m.PostID] = append(out[m.PostID], m)
	}
	return out, rows.Err()
}

func (s *Store) Stats(ctx context.Context, dayStart time.Time) (moments.Stats, error) {
	var st moments.Stats
	err := s.db.QueryRowContext(ctx, `SELECT
            COUNT(*),
            COUNT(*) FILTER (WHERE is_pinned),
            COUNT(*) FILTER (WHERE EXISTS (SELECT 1 FROM moments_media m WHERE m.post_id = p.id)),
            COUNT(*) FILTER (WHERE created_at >= $1)
        FROM moments_posts p`, dayStart).Scan(&st.TotalCount, &st.PinnedCount, &st.WithMediaCount, &st.TodayCount)
	return st, err
}

// ListMedia：postID 为 0 时返回全部
func (s *Store) ListMedia(ctx context.Context, postID int64) ([]moments.Media, error) {
	var rows *sql.Rows
	var err error
	if postID > 0 {
		rows, err = s.db.QueryContext(ctx, `SELECT `+mediaColumns+` FROM moments_media
            WHERE post_id=$1 ORDER BY sort_order, created_at`, postID)
	} else {
		rows, err = s.db.QueryContext(ctx, `SELECT `+mediaColumns+` FROM moments_media
            ORDER BY post_id, sort_order, created_at`)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []moments.Media{}
	for rows.Next() {
		m, err := scanMedia(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (s *Store) GetMedia(ctx context.Context, id int64) (*moments.Media, error) {
	m, err := scanMedia(s.db.QueryRowContext(ctx, `SELECT `+mediaColumns+` FROM moments_media WHERE id=$1`, id))
	if err != nil {
		return nil, notFound(err)
	}
	return &m, nil
}

func (s *Store) DeleteMedia(ctx context.Context, id int64) error {
	return mustAffect(s.db.ExecContext(ctx, `DELETE FROM moments_media WHERE id=$1`, id))
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
