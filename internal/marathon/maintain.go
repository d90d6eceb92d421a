package marathon

import (
	"context"
	"fmt"
	"strings"

	"marathon-api/internal/geo"
	"marathon-api/internal/logger"
)

// LocationFixer：存量数据地名修复所需的仓储能力
type LocationFixer interface {
	ListEvents(ctx context.Context, f EventFilter) ([]Event, error)
	UpdateEventLocation(ctx context.Context, id int64, loc geo.Location) error
	ListRegistrations(ctx context.Context, f RegistrationFilter) ([]Registration, error)
	UpdateRegistrationLocation(ctx context.Context, id int64, loc geo.Location) error
}

// PaceFixer：存量配速修复所需的仓储能力
type PaceFixer interface {
	ListEvents(ctx context.Context, f EventFilter) ([]Event, error)
	UpdateEventPace(ctx context.Context, id int64, pace string) error
}

// FixStats：批量修复计数
type FixStats struct {
	Scanned int
	Updated int
	Skipped int
}

// FixOptions：Backfill 为 true 时，省/市为空的记录按 location 推断；DryRun 只统计不写库
type FixOptions struct {
	Backfill bool
	DryRun   bool
}

// backfill：location 为已知城市简称时补齐省与市，区县清空
func backfill(loc geo.Location, location string) (geo.Location, bool) {
	if loc.Province != "" && loc.City != "" {
		return loc, false
	}
	city := strings.TrimSpace(location)
	p, ok := geo.ProvinceForCity(city)
	if !ok {
		return loc, false
	}
	return geo.Location{Province: p, City: city}, true
}

func fixLocation(cur geo.Location, location string, opt FixOptions) (geo.Location, bool) {
	next := geo.Normalize(cur)
	if opt.Backfill {
		if b, ok := backfill(next, location); ok {
			next = b
		}
	}
	return next, next != cur
}

// fixEvent：有引用的层级以参照表名称为准，Backfill 只补没有引用的层级
// 约束：推断的省份与已引用的省份不一致时放弃补齐。
func (s *Service) fixEvent(ctx context.Context, e Event, opt FixOptions) (geo.Location, bool, error) {
	cur := geo.Location{Province: e.Province, City: e.City, District: e.District}
	ev := e
	if err := s.prepareEvent(ctx, &ev); err != nil {
		return cur, false, err
	}
	next := geo.Location{Province: ev.Province, City: ev.City, District: ev.District}
	if opt.Backfill {
		if b, ok := backfill(next, e.Location); ok && (e.ProvinceRef == nil || next.Province == b.Province) {
			if e.ProvinceRef == nil {
				next.Province = b.Province
			}
			if e.CityRef == nil {
				next.City = b.City
			}
			if e.DistrictRef == nil {
				next.District = ""
			}
		}
	}
	return next, next != cur, nil
}

// NormalizeLocations：对赛事与报名记录重新执行名称标准化，赛事的已设引用同时回填参照表名称
// 约束：幂等，第二次执行 Updated 为 0；单条写入失败立即返回，已写入的不回滚。
func (s *Service) NormalizeLocations(ctx context.Context, fx LocationFixer, opt FixOptions) (FixStats, error) {
	log := logger.With("maintain")
	var st FixStats
	events, err := fx.ListEvents(ctx, EventFilter{})
	if err != nil {
		return st, fmt.Errorf("list events: %w", err)
	}
	for _, e := range events {
		st.Scanned++
		next, changed, err := s.fixEvent(ctx, e, opt)
		if err != nil {
			return st, fmt.Errorf("event %d: %w", e.ID, err)
		}
		if !changed {
			st.Skipped++
			continue
		}
		log.Info("event_location_fixed", "id", e.ID, "province", e.Province, "to", next.Province, "city", e.City, "to_city", next.City, "dry_run", opt.DryRun)
		if !opt.DryRun {
			if err := fx.UpdateEventLocation(ctx, e.ID, next); err != nil {
				return st, fmt.Errorf("update event %d: %w", e.ID, err)
			}
		}
		st.Updated++
	}
	regs, err := fx.ListRegistrations(ctx, RegistrationFilter{})
	if err != nil {
		return st, fmt.Errorf("list registrations: %w", err)
	}
	for _, r := range regs {
		st.Scanned++
		next, changed := fixLocation(geo.Location{Province: r.Province, City: r.City, District: r.District}, r.Location, opt)
		if !changed {
			st.Skipped++
			continue
		}
		log.Info("registration_location_fixed", "id", r.ID, "province", r.Province, "to", next.Province, "dry_run", opt.DryRun)
		if !opt.DryRun {
			if err := fx.UpdateRegistrationLocation(ctx, r.ID, next); err != nil {
				return st, fmt.Errorf("update registration %d: %w", r.ID, err)
			}
		}
		st.Updated++
	}
	return st, nil
}

// FixPaces：把 "5:30/km" 一类的历史配速改写为 "05:30"；无法识别的记录跳过并记录日志
func FixPaces(ctx context.Context, fx PaceFixer, dryRun bool) (FixStats, error) {
	log := logger.With("maintain")
	var st FixStats
	events, err := fx.ListEvents(ctx, EventFilter{})
	if err != nil {
		return st, fmt.Errorf("list events: %w", err)
	}
	for _, e := range events {
		if e.Pace == "" {
			continue
		}
		st.Scanned++
		next, ok := NormalizePace(e.Pace)
		if !ok {
			log.Warn("pace_unrecognized", "id", e.ID, "pace", e.Pace)
			st.Skipped++
			continue
		}
		if next == e.Pace {
			st.Skipped++
			continue
		}
		log.Info("pace_fixed", "id", e.ID, "from", e.Pace, "to", next, "dry_run", dryRun)
		if !dryRun {
			if err := fx.UpdateEventPace(ctx, e.ID, next); err != nil {
				return st, fmt.Errorf("update event %d: %w", e.ID, err)
			}
		}
		st.Updated++
	}
	return st, nil
}
