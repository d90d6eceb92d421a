package marathon

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/unicode/norm"

	"marathon-api/internal/apperr"
	"marathon-api/internal/geo"
	"marathon-api/internal/logger"
)

const dateLayout = "2006-01-02"

// EventInput：创建/更新赛事的请求体（PUT 为整体替换）
type EventInput struct {
	EventName   string `json:"event_name"`
	EventDate   string `json:"event_date"`
	Location    string `json:"location"`
	Province    string `json:"province"`
	City        string `json:"city"`
	District    string `json:"district"`
	ProvinceRef *int64 `json:"province_ref"`
	CityRef     *int64 `json:"city_ref"`
	DistrictRef *int64 `json:"district_ref"`
	EventType   string `json:"event_type"`
	FinishTime  string `json:"finish_time"`
	Pace        string `json:"pace"`
	Description string `json:"description"`
	EventLog    string `json:"event_log"`
}

// Validate：校验并产出待保存的赛事（地名已标准化）
// 约束：所有字段错误一次性返回，类型为 apperr.FieldErrors。
func (in EventInput) Validate() (Event, error) {
	fe := apperr.FieldErrors{}
	ev := Event{
		EventName:   clean(in.EventName),
		Location:    clean(in.Location),
		ProvinceRef: positive(in.ProvinceRef),
		CityRef:     positive(in.CityRef),
		DistrictRef: positive(in.DistrictRef),
		FinishTime:  clean(in.FinishTime),
		Description: clean(in.Description),
		EventLog:    clean(in.EventLog),
	}
	requireText(fe, "event_name", ev.EventName, 200)
	requireText(fe, "location", ev.Location, 200)
	ev.EventDate = requireDate(fe, "event_date", in.EventDate)

	loc := normalizeLocation(in.Province, in.City, in.District)
	ev.Province, ev.City, ev.District = loc.Province, loc.City, loc.District

	ev.EventType = TypeFull
	if t := clean(in.EventType); t != "" {
		ev.EventType = EventType(t)
		if !ev.EventType.Valid() {
			fe.Add("event_type", "invalid choice: "+t)
		}
	}
	if p := clean(in.Pace); p != "" {
		v, ok := NormalizePace(p)
		if !ok {
			fe.Add("pace", "pace must look like mm:ss")
		}
		ev.Pace = v
	}
	return ev, fe.Err()
}

// RegistrationInput：创建/更新报名记录的请求体
// registration_fee 接受数字或数字字符串；日期与枚举字段空串视为未填写。
type RegistrationInput struct {
	EventName          string       `json:"event_name"`
	EventDate          string       `json:"event_date"`
	Location           string       `json:"location"`
	Province           string       `json:"province"`
	City               string       `json:"city"`
	District           string       `json:"district"`
	EventType          string       `json:"event_type"`
	RegistrationStatus string       `json:"registration_status"`
	RegistrationDate   *string      `json:"registration_date"`
	RegistrationFee    *json.Number `json:"registration_fee"`
	DrawDate           *string      `json:"draw_date"`
	Transport          *string      `json:"transport"`
	Accommodation      *string      `json:"accommodation"`
	Notes              string       `json:"notes"`
}

func (in RegistrationInput) Validate() (Registration, error) {
	fe := apperr.FieldErrors{}
	r := Registration{
		EventName: clean(in.EventName),
		Location:  clean(in.Location),
		Notes:     clean(in.Notes),
	}
	requireText(fe, "event_name", r.EventName, 200)
	requireText(fe, "location", r.Location, 200)
	r.EventDate = requireDate(fe, "event_date", in.EventDate)

	loc := normalizeLocation(in.Province, in.City, in.District)
	r.Province, r.City, r.District = loc.Province, loc.City, loc.District

	r.EventType = TypeFull
	if t := clean(in.EventType); t != "" {
		r.EventType = EventType(t)
		if !r.EventType.Valid() {
			fe.Add("event_type", "invalid choice: "+t)
		}
	}
	r.RegistrationStatus = StatusPreparing
	if s := clean(in.RegistrationStatus); s != "" {
		r.RegistrationStatus = RegistrationStatus(s)
		if !r.RegistrationStatus.Valid() {
			fe.Add("registration_status", "invalid choice: "+s)
		}
	}
	r.RegistrationDate = optionalDate(fe, "registration_date", in.RegistrationDate)
	r.DrawDate = optionalDate(fe, "draw_date", in.DrawDate)
	r.Transport = optionalBooking(fe, "transport", in.Transport)
	r.Accommodation = optionalBooking(fe, "accommodation", in.Accommodation)

	if in.RegistrationFee != nil {
		fee, msg := parseFee(string(*in.RegistrationFee))
		if msg != "" {
			fe.Add("registration_fee", msg)
		} else {
			r.RegistrationFee = &fee
		}
	}
	return r, fe.Err()
}

// normalizeLocation：校验阶段的标准化入口，城市/区县缺少行政后缀时记录提示
func normalizeLocation(province, city, district string) geo.Location {
	loc := geo.Normalize(geo.Location{
		Province: clean(province),
		City:     clean(city),
		District: clean(district),
	})
	if loc.City != "" && !geo.CityHasSuffix(loc.City) {
		logger.L().Debug("city_without_suffix", "city", loc.City)
	}
	if loc.District != "" && !geo.DistrictHasSuffix(loc.District) {
		logger.L().Debug("district_without_suffix", "district", loc.District)
	}
	return loc
}

// clean：去首尾空白并统一为 NFC，避免同形异码的地名被视为不同取值
func clean(s string) string {
	return norm.NFC.String(strings.TrimSpace(s))
}

func positive(p *int64) *int64 {
	if p == nil || *p <= 0 {
		return nil
	}
	v := *p
	return &v
}

func requireText(fe apperr.FieldErrors, field, v string, max int) {
	if v == "" {
		fe.Add(field, "this field is required")
		return
	}
	if len([]rune(v)) > max {
		fe.Add(field, "ensure this field has no more than "+strconv.Itoa(max)+" characters")
	}
}

func requireDate(fe apperr.FieldErrors, field, v string) time.Time {
	v = strings.TrimSpace(v)
	if v == "" {
		fe.Add(field, "this field is required")
		return time.Time{}
	}
	t, err := time.Parse(dateLayout, v)
	if err != nil {
		fe.Add(field, "date must be YYYY-MM-DD")
	}
	return t
}

func optionalDate(fe apperr.FieldErrors, field string, v *string) *time.Time {
	if v == nil || strings.TrimSpace(*v) == "" {
		return nil
	}
	t, err := time.Parse(dateLayout, strings.TrimSpace(*v))
	if err != nil {
		fe.Add(field, "date must be YYYY-MM-DD")
		return nil
	}
	return &t
}

func optionalBooking(fe apperr.FieldErrors, field string, v *string) *Booking {
	if v == nil || strings.TrimSpace(*v) == "" {
		return nil
	}
	b := Booking(strings.TrimSpace(*v))
	if !b.Valid() {
		fe.Add(field, "invalid choice: "+string(b))
		return nil
	}
	return &b
}

// parseFee：非负，最多两位小数，整数部分不超过 8 位（NUMERIC(10,2)）
func parseFee(s string) (float64, string) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, "a valid number is required"
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || strings.ContainsAny(s, "eE") {
		return 0, "a valid number is required"
	}
	if f < 0 {
		return 0, "ensure this value is greater than or equal to 0"
	}
	whole, frac, _ := strings.Cut(strings.TrimPrefix(s, "+"), ".")
	if len(frac) > 2 {
		return 0, "ensure that there are no more than 2 decimal places"
	}
	if len(strings.TrimLeft(whole, "0")) > 8 {
		return 0, "ensure that there are no more than 10 digits in total"
	}
	return f, ""
}
