package marathon

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"marathon-api/internal/apperr"
	"marathon-api/internal/filestore"
	"marathon-api/internal/geo"
	"marathon-api/internal/georef"
	"marathon-api/internal/logger"
	"marathon-api/internal/metrics"
)

// Repo：赛事与报名记录的持久化
// 约束：Get*/Update*/Delete* 未命中返回 ErrNotFound；Create* 回填 ID。
type Repo interface {
	ListEvents(ctx context.Context, f EventFilter) ([]Event, error)
	GetEvent(ctx context.Context, id int64) (*Event, error)
	CreateEvent(ctx context.Context, e *Event) error
	UpdateEvent(ctx context.Context, e *Event) error
	DeleteEvent(ctx context.Context, id int64) error
	SetCertificate(ctx context.Context, id int64, path string, updatedAt time.Time) error

	ListRegistrations(ctx context.Context, f RegistrationFilter) ([]Registration, error)
	GetRegistration(ctx context.Context, id int64) (*Registration, error)
	CreateRegistration(ctx context.Context, r *Registration) error
	UpdateRegistration(ctx context.Context, r *Registration) error
	DeleteRegistration(ctx context.Context, id int64) error
}

// GeoLookup：按 id 查询参照表实体，由 georef.Service 实现
type GeoLookup interface {
	Province(ctx context.Context, id int64) (georef.Entity, bool, error)
	City(ctx context.Context, id int64) (georef.Entity, bool, error)
	District(ctx context.Context, id int64) (georef.Entity, bool, error)
}

var certificateExts = map[string]struct{}{
	"jpg": {}, "jpeg": {}, "png": {}, "gif": {}, "webp": {}, "bmp": {},
}

type Service struct {
	repo  Repo
	geo   GeoLookup
	files filestore.Store
	now   func() time.Time
	log   *slog.Logger
}

func NewService(repo Repo, lookup GeoLookup, files filestore.Store) *Service {
	return &Service{repo: repo, geo: lookup, files: files, now: time.Now, log: logger.With("marathon")}
}

// WithClock：测试中固定时间
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// CertificateURL：证书存储路径 -> 可访问 URL；无证书返回空串
func (s *Service) CertificateURL(path string) string {
	if path == "" || s.files == nil {
		return ""
	}
	return s.files.URL(path)
}

func (s *Service) List(ctx context.Context, f EventFilter) ([]Event, error) {
	f.Province = geo.NormalizeProvince(clean(f.Province))
	return s.repo.ListEvents(ctx, f)
}

func (s *Service) Get(ctx context.Context, id int64) (*Event, error) {
	return s.repo.GetEvent(ctx, id)
}

func (s *Service) Create(ctx context.Context, in EventInput) (*Event, error) {
	ev, err := in.Validate()
	if err != nil {
		return nil, err
	}
	if err := s.prepareEvent(ctx, &ev); err != nil {
		return nil, err
	}
	now := s.now()
	ev.CreatedAt, ev.UpdatedAt = now, now
	if err := s.repo.CreateEvent(ctx, &ev); err != nil {
		return nil, fmt.Errorf("create event: %w", err)
	}
	s.log.Info("event_created", "id", ev.ID, "province", ev.Province)
	return &ev, nil
}

// Update：整体替换可编辑字段，证书与创建时间保持不变
func (s *Service) Update(ctx context.Context, id int64, in EventInput) (*Event, error) {
	cur, err := s.repo.GetEvent(ctx, id)
	if err != nil {
		return nil, err
	}
	ev, err := in.Validate()
	if err != nil {
		return nil, err
	}
	if err := s.prepareEvent(ctx, &ev); err != nil {
		return nil, err
	}
	ev.ID = cur.ID
	ev.Certificate = cur.Certificate
	ev.CreatedAt = cur.CreatedAt
	ev.UpdatedAt = s.now()
	if err := s.repo.UpdateEvent(ctx, &ev); err != nil {
		return nil, fmt.Errorf("update event: %w", err)
	}
	return &ev, nil
}

// Delete：删除记录后再删除证书文件；文件删除失败只记录日志
func (s *Service) Delete(ctx context.Context, id int64) error {
	cur, err := s.repo.GetEvent(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.DeleteEvent(ctx, id); err != nil {
		return err
	}
	s.removeFile(ctx, cur.Certificate)
	return nil
}

// UploadCertificate：保存新证书并替换旧文件
func (s *Service) UploadCertificate(ctx context.Context, id int64, r io.Reader, filename string) (*Event, error) {
	ext := filestore.Ext(filename)
	if _, ok := certificateExts[ext]; !ok {
		return nil, apperr.Field("certificate", "unsupported file type")
	}
	cur, err := s.repo.GetEvent(ctx, id)
	if err != nil {
		return nil, err
	}
	stored, err := s.files.Save(ctx, r, "marathon/certificates/certificate."+ext)
	if err != nil {
		return nil, fmt.Errorf("save certificate: %w", err)
	}
	now := s.now()
	if err := s.repo.SetCertificate(ctx, id, stored, now); err != nil {
		s.removeFile(ctx, stored)
		return nil, err
	}
	metrics.UploadsTotal.WithLabelValues("certificate").Inc()
	s.removeFile(ctx, cur.Certificate)
	cur.Certificate = stored
	cur.UpdatedAt = now
	return cur, nil
}

func (s *Service) ListRegistrations(ctx context.Context, f RegistrationFilter) ([]Registration, error) {
	return s.repo.ListRegistrations(ctx, f)
}

func (s *Service) GetRegistration(ctx context.Context, id int64) (*Registration, error) {
	return s.repo.GetRegistration(ctx, id)
}

func (s *Service) CreateRegistration(ctx context.Context, in RegistrationInput) (*Registration, error) {
	r, err := in.Validate()
	if err != nil {
		return nil, err
	}
	prepareRegistration(&r)
	now := s.now()
	r.CreatedAt, r.UpdatedAt = now, now
	if err := s.repo.CreateRegistration(ctx, &r); err != nil {
		return nil, fmt.Errorf("create registration: %w", err)
	}
	return &r, nil
}

func (s *Service) UpdateRegistration(ctx context.Context, id int64, in RegistrationInput) (*Registration, error) {
	cur, err := s.repo.GetRegistration(ctx, id)
	if err != nil {
		return nil, err
	}
	r, err := in.Validate()
	if err != nil {
		return nil, err
	}
	prepareRegistration(&r)
	r.ID = cur.ID
	r.CreatedAt = cur.CreatedAt
	r.UpdatedAt = s.now()
	if err := s.repo.UpdateRegistration(ctx, &r); err != nil {
		return nil, fmt.Errorf("update registration: %w", err)
	}
	return &r, nil
}

func (s *Service) DeleteRegistration(ctx context.Context, id int64) error {
	return s.repo.DeleteRegistration(ctx, id)
}

// prepareEvent：保存前的地名回填与标准化
// 规则：某级引用存在时，字符串字段取被引用实体名称的标准化结果；引用指向的实体不存在时清空引用（等同外键 SET NULL），
// 字符串字段按原值标准化；无引用时直接标准化字符串字段。
// 约束：执行后 Province/City/District 均为规范形式，重复执行结果不变。
func (s *Service) prepareEvent(ctx context.Context, ev *Event) error {
	before := geo.Location{Province: ev.Province, City: ev.City, District: ev.District}

	if err := s.copyDown(ctx, &ev.ProvinceRef, &ev.Province, s.geo.Province); err != nil {
		return fmt.Errorf("lookup province: %w", err)
	}
	if err := s.copyDown(ctx, &ev.CityRef, &ev.City, s.geo.City); err != nil {
		return fmt.Errorf("lookup city: %w", err)
	}
	if err := s.copyDown(ctx, &ev.DistrictRef, &ev.District, s.geo.District); err != nil {
		return fmt.Errorf("lookup district: %w", err)
	}
	loc := geo.Normalize(geo.Location{Province: ev.Province, City: ev.City, District: ev.District})
	ev.Province, ev.City, ev.District = loc.Province, loc.City, loc.District
	countChanged(before, loc)
	return nil
}

type lookupFunc func(ctx context.Context, id int64) (georef.Entity, bool, error)

func (s *Service) copyDown(ctx context.Context, ref **int64, name *string, lookup lookupFunc) error {
	if *ref == nil {
		return nil
	}
	ent, found, err := lookup(ctx, **ref)
	if err != nil {
		return err
	}
	if !found {
		s.log.Warn("geo_ref_missing", "ref", **ref)
		*ref = nil
		return nil
	}
	*name = ent.Name
	return nil
}

// prepareRegistration：报名记录没有参照表引用，只做标准化
func prepareRegistration(r *Registration) {
	before := geo.Location{Province: r.Province, City: r.City, District: r.District}
	loc := geo.Normalize(before)
	r.Province, r.City, r.District = loc.Province, loc.City, loc.District
	countChanged(before, loc)
}

func countChanged(before, after geo.Location) {
	if before.Province != after.Province {
		metrics.GeoNormalizedTotal.WithLabelValues("province").Inc()
	}
	if before.City != after.City {
		metrics.GeoNormalizedTotal.WithLabelValues("city").Inc()
	}
	if before.District != after.District {
		metrics.GeoNormalizedTotal.WithLabelValues("district").Inc()
	}
}

func (s *Service) removeFile(ctx context.Context, path string) {
	if path == "" || s.files == nil {
		return
	}
	if err := s.files.Delete(ctx, path); err != nil && !errors.Is(err, filestore.ErrBadPath) {
		s.log.Warn("file_delete_failed", "path", path, "err", err)
	}
}

// ParseYear：列表筛选的年份参数，非法值视为不过滤
func ParseYear(s string) int {
	s = strings.TrimSpace(s)
	if len(s) != 4 {
		return 0
	}
	y, err := strconv.Atoi(s)
	if err != nil || y <= 0 {
		return 0
	}
	return y
}
