package api

import (
	"context"
	"time"

	"marathon-api/internal/admin"
	"marathon-api/internal/apperr"
	"marathon-api/internal/georef"
	"marathon-api/internal/marathon"
	"marathon-api/internal/moments"
	"marathon-api/internal/visitor"
)

type geoSource struct {
	provinces []georef.Entity
	cities    []georef.Entity
}

func children(es []georef.Entity, parent int64) []georef.Option {
	out := []georef.Option{}
	for _, e := range es {
		if parent < 0 || e.ParentID == parent {
			out = append(out, georef.Option{ID: e.ID, Name: e.Name})
		}
	}
	return out
}

func find(es []georef.Entity, id int64) *georef.Entity {
	for _, e := range es {
		if e.ID == id {
			return &e
		}
	}
	return nil
}

func (g *geoSource) ListProvinces(ctx context.Context) ([]georef.Option, error) {
	return children(g.provinces, -1), nil
}
func (g *geoSource) ListCities(ctx context.Context, provinceID int64) ([]georef.Option, error) {
	return children(g.cities, provinceID), nil
}
func (g *geoSource) ListDistricts(ctx context.Context, cityID int64) ([]georef.Option, error) {
	return []georef.Option{}, nil
}
func (g *geoSource) GetProvince(ctx context.Context, id int64) (*georef.Entity, error) {
	return find(g.provinces, id), nil
}
func (g *geoSource) GetCity(ctx context.Context, id int64) (*georef.Entity, error) {
	return find(g.cities, id), nil
}
func (g *geoSource) GetDistrict(ctx context.Context, id int64) (*georef.Entity, error) {
	return nil, nil
}

type eventRepo struct {
	next   int64
	events map[int64]marathon.Event
	regs   map[int64]marathon.Registration
}

func (m *eventRepo) ListEvents(ctx context.Context, f marathon.EventFilter) ([]marathon.Event, error) {
	out := []marathon.Event{}
	for id := int64(1); id <= m.next; id++ {
		if e, ok := m.events[id]; ok && (f.Province == "" || e.Province == f.Province) {
			out = append(out, e)
		}
	}
	return out, nil
}
func (m *eventRepo) GetEvent(ctx context.Context, id int64) (*marathon.Event, error) {
	e, ok := m.events[id]
	if !ok {
		return nil, apperr.ErrNotFound
	}
	return &e, nil
}
func (m *eventRepo) CreateEvent(ctx context.Context, e *marathon.Event) error {
	m.next++
	e.ID = m.next
	m.events[e.ID] = *e
	return nil
}
func (m *eventRepo) UpdateEvent(ctx context.Context, e *marathon.Event) error {
	if _, ok := m.events[e.ID]; !ok {
		return apperr.ErrNotFound
	}
	m.events[e.ID] = *e
	return nil
}
func (m *eventRepo) DeleteEvent(ctx context.Context, id int64) error {
	if _, ok := m.events[id]; !ok {
		return apperr.ErrNotFound
	}
	delete(m.events, id)
	return nil
}
func (m *eventRepo) SetCertificate(ctx context.Context, id int64, path string, at time.Time) error {
	e, ok := m.events[id]
	if !ok {
		return apperr.ErrNotFound
	}
	e.Certificate, e.UpdatedAt = path, at
	m.events[id] = e
	return nil
}
func (m *eventRepo) ListRegistrations(ctx context.Context, f marathon.RegistrationFilter) ([]marathon.Registration, error) {
	out := []marathon.Registration{}
	for id := int64(1); id <= m.next; id++ {
		if r, ok := m.regs[id]; ok {
			out = append(out, r)
		}
	}
	return out, nil
}
func (m *eventRepo) GetRegistration(ctx context.Context, id int64) (*marathon.Registration, error) {
	r, ok := m.regs[id]
	if !ok {
		return nil, apperr.ErrNotFound
	}
	return &r, nil
}
func (m *eventRepo) CreateRegistration(ctx context.Context, r *marathon.Registration) error {
	m.next++
	r.ID = m.next
	m.regs[r.ID] = *r
	return nil
}
func (m *eventRepo) UpdateRegistration(ctx context.Context, r *marathon.Registration) error {
	if _, ok := m.regs[r.ID]; !ok {
		return apperr.ErrNotFound
	}
	m.regs[r.ID] = *r
	return nil
}
func (m *eventRepo) DeleteRegistration(ctx context.Context, id int64) error {
	if _, ok := m.regs[id]; !ok {
		return apperr.ErrNotFound
	}
	delete(m.regs, id)
	return nil
}

type postRepo struct {
	next  int64
	posts map[int64]moments.Post
}

func (m *postRepo) CreatePost(ctx context.Context, p *moments.Post) error {
	m.next++
	p.ID = m.next
	for i := range p.Media {
		m.next++
		p.Media[i].ID, p.Media[i].PostID = m.next, p.ID
	}
	m.posts[p.ID] = *p
	return nil
}
func (m *postRepo) UpdatePost(ctx context.Context, p *moments.Post) error {
	m.posts[p.ID] = *p
	return nil
}
func (m *postRepo) GetPost(ctx context.Context, id int64) (*moments.Post, error) {
	p, ok := m.posts[id]
	if !ok {
		return nil, apperr.ErrNotFound
	}
	return &p, nil
}
func (m *postRepo) DeletePost(ctx context.Context, id int64) error {
	if _, ok := m.posts[id]; !ok {
		return apperr.ErrNotFound
	}
	delete(m.posts, id)
	return nil
}
func (m *postRepo) ListPosts(ctx context.Context, f moments.Filter) ([]moments.Post, int, error) {
	out := []moments.Post{}
	for id := m.next; id >= 1; id-- {
		if p, ok := m.posts[id]; ok {
			out = append(out, p)
		}
	}
	return out, len(out), nil
}
func (m *postRepo) Stats(ctx context.Context, dayStart time.Time) (moments.Stats, error) {
	return moments.Stats{TotalCount: len(m.posts)}, nil
}
func (m *postRepo) ListMedia(ctx context.Context, postID int64) ([]moments.Media, error) {
	out := []moments.Media{}
	for id, p := range m.posts {
		if postID == 0 || id == postID {
			out = append(out, p.Media...)
		}
	}
	return out, nil
}
func (m *postRepo) GetMedia(ctx context.Context, id int64) (*moments.Media, error) {
	for _, p := range m.posts {
		for _, md := range p.Media {
			if md.ID == id {
				return &md, nil
			}
		}
	}
	return nil, apperr.ErrNotFound
}
func (m *postRepo) DeleteMedia(ctx context.Context, id int64) error {
	for pid, p := range m.posts {
		for i, md := range p.Media {
			if md.ID == id {
				p.Media = append(p.Media[:i], p.Media[i+1:]...)
				m.posts[pid] = p
				return nil
			}
		}
	}
	return apperr.ErrNotFound
}

type settingsRepo struct {
	st *admin.Settings
}

func (m *settingsRepo) Get(ctx context.Context) (*admin.Settings, error) {
	if m.st == nil {
		return nil, apperr.ErrNotFound
	}
	cp := *m.st
	return &cp, nil
}
func (m *settingsRepo) Create(ctx context.Context, hash string, at time.Time) (*admin.Settings, error) {
	if m.st == nil {
		m.st = &admin.Settings{PasswordHash: hash, CreatedAt: at, UpdatedAt: at}
	}
	cp := *m.st
	return &cp, nil
}
func (m *settingsRepo) UpdatePassword(ctx context.Context, hash string, at time.Time) error {
	m.st.PasswordHash, m.st.UpdatedAt = hash, at
	return nil
}

type visitStore struct {
	total int64
	prov  map[string]int64
}

func (m *visitStore) RecordVisit(ctx context.Context, day time.Time, province string) error {
	m.total++
	if province != "" {
		m.prov[province]++
	}
	return nil
}
func (m *visitStore) VisitSummary(ctx context.Context, day time.Time) (visitor.Summary, error) {
	s := visitor.Summary{Total: m.total, Today: m.total}
	for name, n := range m.prov {
		s.Provinces = append(s.Provinces, visitor.ProvinceCount{Name: name, Count: n})
	}
	return s, nil
}

type staticResolver map[string]visitor.Region

func (m staticResolver) Lookup(ip string) (visitor.Region, bool) {
	r, ok := m[ip]
	return r, ok
}
