package marathon

import (
	"strconv"
	"time"
)

// 列表接口返回精简字段，详情接口返回完整字段

type EventSummary struct {
	ID         int64     `json:"id"`
	EventName  string    `json:"event_name"`
	EventDate  string    `json:"event_date"`
	Location   string    `json:"location"`
	Province   string    `json:"province"`
	City       string    `json:"city"`
	District   string    `json:"district"`
	EventType  EventType `json:"event_type"`
	FinishTime string    `json:"finish_time"`
	Pace       string    `json:"pace"`
}

type EventDetail struct {
	EventSummary
	ProvinceRef *int64    `json:"province_ref"`
	CityRef     *int64    `json:"city_ref"`
	DistrictRef *int64    `json:"district_ref"`
	Certificate *string   `json:"certificate"`
	Description string    `json:"description"`
	EventLog    string    `json:"event_log"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func Summarize(e Event) EventSummary {
	return EventSummary{
		ID:         e.ID,
		EventName:  e.EventName,
		EventDate:  e.EventDate.Format(dateLayout),
		Location:   e.Location,
		Province:   e.Province,
		City:       e.City,
		District:   e.District,
		EventType:  e.EventType,
		FinishTime: e.FinishTime,
		Pace:       e.Pace,
	}
}

// Detail：certificateURL 为空时输出 null
func Detail(e Event, certificateURL string) EventDetail {
	d := EventDetail{
		EventSummary: Summarize(e),
		ProvinceRef:  e.ProvinceRef,
		CityRef:      e.CityRef,
		DistrictRef:  e.DistrictRef,
		Description:  e.Description,
		EventLog:     e.EventLog,
		CreatedAt:    e.CreatedAt,
		UpdatedAt:    e.UpdatedAt,
	}
	if certificateURL != "" {
		d.Certificate = &certificateURL
	}
	return d
}

type RegistrationSummary struct {
	ID                 int64              `json:"id"`
	EventName          string             `json:"event_name"`
	EventDate          string             `json:"event_date"`
	Location           string             `json:"location"`
	Province           string             `json:"province"`
	City               string             `json:"city"`
	District           string             `json:"district"`
	EventType          EventType          `json:"event_type"`
	RegistrationStatus RegistrationStatus `json:"registration_status"`
	RegistrationFee    *string            `json:"registration_fee"`
}

type RegistrationDetail struct {
	RegistrationSummary
	RegistrationDate *string   `json:"registration_date"`
	DrawDate         *string   `json:"draw_date"`
	Transport        *Booking  `json:"transport"`
	Accommodation    *Booking  `json:"accommodation"`
	Notes            string    `json:"notes"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

func SummarizeRegistration(r Registration) RegistrationSummary {
	s := RegistrationSummary{
		ID:                 r.ID,
		EventName:          r.EventName,
		EventDate:          r.EventDate.Format(dateLayout),
		Location:           r.Location,
		Province:           r.Province,
		City:               r.City,
		District:           r.District,
		EventType:          r.EventType,
		RegistrationStatus: r.RegistrationStatus,
	}
	if r.RegistrationFee != nil {
		v := strconv.FormatFloat(*r.RegistrationFee, 'f', 2, 64)
		s.RegistrationFee = &v
	}
	return s
}

func DetailRegistration(r Registration) RegistrationDetail {
	return RegistrationDetail{
		RegistrationSummary: SummarizeRegistration(r),
		RegistrationDate:    formatDate(r.RegistrationDate),
		DrawDate:            formatDate(r.DrawDate),
		Transport:           r.Transport,
		Accommodation:       r.Accommodation,
		Notes:               r.Notes,
		CreatedAt:           r.CreatedAt,
		UpdatedAt:           r.UpdatedAt,
	}
}

func formatDate(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(dateLayout)
	return &s
}
