// 包 marathon：赛事记录与报名记录
package marathon

import (
	"time"

	"marathon-api/internal/apperr"
)

var ErrNotFound = apperr.ErrNotFound

type EventType string

const (
	Type5K   EventType = "5km"
	Type10K  EventType = "10km"
	Type15K  EventType = "15km"
	TypeHalf EventType = "half"
	TypeFull EventType = "full"
)

func (t EventType) Valid() bool {
	switch t {
	case Type5K, Type10K, Type15K, TypeHalf, TypeFull:
		return true
	}
	return false
}

type RegistrationStatus string

const (
	StatusPreparing RegistrationStatus = "preparing"
	StatusPending   RegistrationStatus = "pending"
	StatusWon       RegistrationStatus = "won"
	StatusLost      RegistrationStatus = "lost"
	StatusAbandoned RegistrationStatus = "abandoned"
	StatusWaitlist  RegistrationStatus = "waitlist"
)

func (s RegistrationStatus) Valid() bool {
	switch s {
	case StatusPreparing, StatusPending, StatusWon, StatusLost, StatusAbandoned, StatusWaitlist:
		return true
	}
	return false
}

// Booking：交通/住宿预订情况
type Booking string

const (
	BookingBooked    Booking = "booked"
	BookingNotBooked Booking = "not_booked"
	BookingLocal     Booking = "local"
)

func (b Booking) Valid() bool {
	switch b {
	case BookingBooked, BookingNotBooked, BookingLocal:
		return true
	}
	return false
}

// Event：已完赛的赛事记录
// 约束：Province/City/District 为展示用冗余字段；对应的 *Ref 非空时，字符串字段必须是由参照表名称标准化得到的值。
type Event struct {
	ID          int64
	EventName   string
	EventDate   time.Time
	Location    string
	Province    string
	City        string
	District    string
	ProvinceRef *int64
	CityRef     *int64
	DistrictRef *int64
	EventType   EventType
	FinishTime  string
	Pace        string
	Certificate string
	Description string
	EventLog    string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Registration：报名中的赛事
type Registration struct {
	ID                 int64
	EventName          string
	EventDate          time.Time
	Location           string
	Province           string
	City               string
	District           string
	EventType          EventType
	RegistrationStatus RegistrationStatus
	RegistrationDate   *time.Time
	RegistrationFee    *float64
	DrawDate           *time.Time
	Transport          *Booking
	Accommodation      *Booking
	Notes              string
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// EventFilter：列表筛选，零值表示不过滤
type EventFilter struct {
	Province  string
	EventType EventType
	Year      int
}

type RegistrationFilter struct {
	Status    RegistrationStatus
	EventType EventType
}
