package visitor

import (
	"net"
	"strings"

	"github.com/lionsoul2014/ip2region/binding/golang/xdb"
	"github.com/oschwald/geoip2-golang"
	"github.com/oschwald/maxminddb-golang"

	"marathon-api/internal/logger"
)

// Region：解析结果，Province 为数据源原始名称（未标准化）
type Region struct {
	Country  string
	Province string
	City     string
}

type Resolver interface {
	Lookup(ip string) (Region, bool)
}

// IP2Region：ip2region xdb 文件查询，region 格式 "国家|区域|省份|城市|ISP"
type IP2Region struct {
	v4 *xdb.Searcher
	v6 *xdb.Searcher
}

// NewIP2Region：路径为空的版本不加载；两者都为空返回 nil
func NewIP2Region(v4Path, v6Path string) (*IP2Region, error) {
	if v4Path == "" && v6Path == "" {
		return nil, nil
	}
	r := &IP2Region{}
	var err error
	if v4Path != "" {
		if r.v4, err = xdb.NewWithFileOnly(xdb.IPv4, v4Path); err != nil {
			return nil, err
		}
	}
	if v6Path != "" {
		if r.v6, err = xdb.NewWithFileOnly(xdb.IPv6, v6Path); err != nil {
			r.Close()
			return nil, err
		}
	}
	return r, nil
}

func (r *IP2Region) Lookup(ip string) (Region, bool) {
	p := net.ParseIP(ip)
	if r == nil || p == nil {
		return Region{}, false
	}
	s := r.v4
	if p.To4() == nil {
		s = r.v6
	}
	if s == nil {
		return Region{}, false
	}
	region, err := s.SearchByStr(ip)
	if err != nil || region == "" {
		return Region{}, false
	}
	reg := parseRegion(region)
	return reg, reg.Province != ""
}

func (r *IP2Region) Close() {
	if r.v4 != nil {
		r.v4.Close()
	}
	if r.v6 != nil {
		r.v6.Close()
	}
}

func parseRegion(s string) Region {
	parts := strings.Split(s, "|")
	var reg Region
	if len(parts) > 0 {
		reg.Country = safe(parts[0])
	}
	if len(parts) > 2 {
		reg.Province = safe(parts[2])
	}
	if len(parts) > 3 {
		reg.City = safe(parts[3])
	}
	return reg
}

func safe(s string) string {
	if s == "0" || s == "" || strings.EqualFold(s, "unknown") {
		return ""
	}
	return s
}

// GeoIP：GeoLite2-City mmdb 查询，取简体中文名称
type GeoIP struct {
	db *geoip2.Reader
}

func NewGeoIP(path string) (*GeoIP, error) {
	if path == "" {
		return nil, nil
	}
	db, err := geoip2.Open(path)
	if err != nil {
		return nil, err
	}
	var md maxminddb.Metadata = db.Metadata()
	logger.L().Info("geoip_loaded", "type", md.DatabaseType, "build_epoch", md.BuildEpoch)
	return &GeoIP{db: db}, nil
}

func (g *GeoIP) Lookup(ip string) (Region, bool) {
	p := net.ParseIP(ip)
	if g == nil || p == nil {
		return Region{}, false
	}
	rec, err := g.db.City(p)
	if err != nil || len(rec.Subdivisions) == 0 {
		return Region{}, false
	}
	reg := Region{
		Country:  zh(rec.Country.Names, rec.Country.IsoCode),
		Province: zh(rec.Subdivisions[0].Names, ""),
		City:     zh(rec.City.Names, ""),
	}
	return reg, reg.Province != ""
}

func (g *GeoIP) Close() error { return g.db.Close() }

func zh(names map[string]string, fallback string) string {
	if v := names["zh-CN"]; v != "" {
		return v
	}
	return fallback
}

// Chain：依次查询，第一个命中的结果生效；nil 成员跳过
type Chain []Resolver

func (c Chain) Lookup(ip string) (Region, bool) {
	for _, r := range c {
		if r == nil {
			continue
		}
		if reg, ok := r.Lookup(ip); ok {
			return reg, true
		}
	}
	return Region{}, false
}
