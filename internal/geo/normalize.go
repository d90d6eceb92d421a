// 包 geo：省/市/区县名称标准化，输出与地图渲染数据一致的完整名称
package geo

import "strings"

// Location：一条记录上的三级地名
type Location struct {
	Province string
	City     string
	District string
}

// NormalizeProvince：省份名称标准化为完整格式
// 背景：地图数据以完整名称（如“广西壮族自治区”“北京市”）作为键；录入时常见简称，需统一。
// 规则：空串原样返回；已是完整名称原样返回；命中简称映射返回完整名称；
// 其余已带行政后缀的原样返回，否则直辖市简称补“市”、其他补“省”。
// 约束：纯函数，无错误分支，幂等。
func NormalizeProvince(name string) string {
	if name == "" {
		return name
	}
	if _, ok := canonicalSet[name]; ok {
		return name
	}
	if full, ok := shortProvinces[name]; ok {
		return full
	}
	if hasSuffix(name, provinceSuffixes) {
		return name
	}
	if _, ok := municipalities[name]; ok {
		return name + "市"
	}
	return name + "省"
}

// NormalizeCity：城市名称保持原样
// 背景：市级简称无法可靠判断应补“市”“州”还是“地区”，因此不自动补后缀，格式由录入端约束。
func NormalizeCity(name string) string { return name }

// NormalizeDistrict：区县名称保持原样，理由同 NormalizeCity
func NormalizeDistrict(name string) string { return name }

// CityHasSuffix：城市名称是否带可识别的行政后缀（市/县/区/自治州/盟/地区/自治县）
// 背景：缺后缀的城市名通常无法与地图数据匹配，校验层据此记录提示日志。
func CityHasSuffix(name string) bool { return hasSuffix(name, citySuffixes) }

// DistrictHasSuffix：区县名称是否带可识别的行政后缀（区/县/市/自治县/自治旗）
func DistrictHasSuffix(name string) bool { return hasSuffix(name, districtSuffixes) }

// Normalize：三级名称一起标准化
func Normalize(l Location) Location {
	return Location{
		Province: NormalizeProvince(l.Province),
		City:     NormalizeCity(l.City),
		District: NormalizeDistrict(l.District),
	}
}

// IsCanonicalProvince：是否为完整省份名称
func IsCanonicalProvince(name string) bool {
	_, ok := canonicalSet[name]
	return ok
}

// ProvinceSeed：种子数据条目
type ProvinceSeed struct {
	Name string
	Code string
}

// Provinces：按行政区划代码顺序返回完整省份名称及代码（副本，调用方可修改）
func Provinces() []ProvinceSeed {
	out := make([]ProvinceSeed, 0, len(canonicalProvinces))
	for _, p := range canonicalProvinces {
		out = append(out, ProvinceSeed{Name: p, Code: provinceCodes[p]})
	}
	return out
}

func hasSuffix(s string, suffixes []string) bool {
	for _, suf := range suffixes {
		if strings.HasSuffix(s, suf) {
			return true
		}
	}
	return false
}
