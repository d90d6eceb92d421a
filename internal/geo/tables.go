package geo

// 文档注释：省级行政区完整名称（地图数据使用的规范形式）
// 背景：顺序与 GB/T 2260 省级代码一致，迁移种子数据按此顺序写入，使省份 id 顺序稳定。
// 约束：进程级只读数据，禁止在运行时修改。
var canonicalProvinces = []string{
	"北京市", "天津市", "河北省", "山西省", "内蒙古自治区",
	"辽宁省", "吉林省", "黑龙江省",
	"上海市", "江苏省", "浙江省", "安徽省", "福建省", "江西省", "山东省",
	"河南省", "湖北省", "湖南省", "广东省", "广西壮族自治区", "海南省",
	"重庆市", "四川省", "贵州省", "云南省", "西藏自治区",
	"陕西省", "甘肃省", "青海省", "宁夏回族自治区", "新疆维吾尔自治区",
	"台湾省", "香港特别行政区", "澳门特别行政区",
}

// provinceCodes：省级行政区划代码，与 canonicalProvinces 一一对应
var provinceCodes = map[string]string{
	"北京市": "110000", "天津市": "120000", "河北省": "130000", "山西省": "140000",
	"内蒙古自治区": "150000", "辽宁省": "210000", "吉林省": "220000", "黑龙江省": "230000",
	"上海市": "310000", "江苏省": "320000", "浙江省": "330000", "安徽省": "340000",
	"福建省": "350000", "江西省": "360000", "山东省": "370000", "河南省": "410000",
	"湖北省": "420000", "湖南省": "430000", "广东省": "440000", "广西壮族自治区": "450000",
	"海南省": "460000", "重庆市": "500000", "四川省": "510000", "贵州省": "520000",
	"云南省": "530000", "西藏自治区": "540000", "陕西省": "610000", "甘肃省": "620000",
	"青海省": "630000", "宁夏回族自治区": "640000", "新疆维吾尔自治区": "650000",
	"台湾省": "710000", "香港特别行政区": "810000", "澳门特别行政区": "820000",
}

// shortProvinces：简称 -> 完整名称
var shortProvinces = map[string]string{
	"北京": "北京市", "天津": "天津市", "上海": "上海市", "重庆": "重庆市",
	"河北": "河北省", "山西": "山西省", "辽宁": "辽宁省", "吉林": "吉林省", "黑龙江": "黑龙江省",
	"江苏": "江苏省", "浙江": "浙江省", "安徽": "安徽省", "福建": "福建省", "江西": "江西省", "山东": "山东省",
	"河南": "河南省", "湖北": "湖北省", "湖南": "湖南省", "广东": "广东省", "广西": "广西壮族自治区", "海南": "海南省",
	"四川": "四川省", "贵州": "贵州省", "云南": "云南省", "西藏": "西藏自治区", "陕西": "陕西省", "甘肃": "甘肃省",
	"青海": "青海省", "宁夏": "宁夏回族自治区", "新疆": "新疆维吾尔自治区", "内蒙古": "内蒙古自治区",
	"香港": "香港特别行政区", "澳门": "澳门特别行政区", "台湾": "台湾省",
}

// municipalities：直辖市简称，兜底规则中补“市”而非“省”
var municipalities = map[string]struct{}{
	"北京": {}, "天津": {}, "上海": {}, "重庆": {},
}

var (
	provinceSuffixes = []string{"特别行政区", "自治区", "省", "市"}
	citySuffixes     = []string{"自治州", "自治县", "地区", "市", "县", "区", "盟"}
	districtSuffixes = []string{"自治县", "自治旗", "区", "县", "市"}
)

// canonicalSet：完整名称集合，初始化时由 canonicalProvinces 构建一次
var canonicalSet = func() map[string]struct{} {
	m := make(map[string]struct{}, len(canonicalProvinces))
	for _, p := range canonicalProvinces {
		m[p] = struct{}{}
	}
	return m
}()
