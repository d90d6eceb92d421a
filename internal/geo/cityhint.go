package geo

// 文档注释：常见城市简称 -> 所属省份完整名称
// 背景：历史赛事只填写了“地点”自由文本（多为城市简称），补录省/市字段时据此推断省份。
// 约束：只覆盖省会与常办赛事的城市；未命中时调用方应跳过而非猜测。
var cityProvince = map[string]string{
	"北京": "北京市", "上海": "上海市", "天津": "天津市", "重庆": "重庆市",
	"广州": "广东省", "深圳": "广东省", "珠海": "广东省", "东莞": "广东省", "佛山": "广东省",
	"杭州": "浙江省", "宁波": "浙江省", "温州": "浙江省",
	"南京": "江苏省", "苏州": "江苏省", "无锡": "江苏省", "常州": "江苏省",
	"武汉": "湖北省", "成都": "四川省", "西安": "陕西省", "郑州": "河南省", "长沙": "湖南省",
	"合肥": "安徽省", "福州": "福建省", "厦门": "福建省", "济南": "山东省", "青岛": "山东省",
	"沈阳": "辽宁省", "大连": "辽宁省", "长春": "吉林省", "哈尔滨": "黑龙江省",
	"石家庄": "河北省", "太原": "山西省", "呼和浩特": "内蒙古自治区", "南昌": "江西省",
	"南宁": "广西壮族自治区", "海口": "海南省", "昆明": "云南省", "贵阳": "贵州省",
	"兰州": "甘肃省", "西宁": "青海省", "银川": "宁夏回族自治区", "乌鲁木齐": "新疆维吾尔自治区",
	"拉萨": "西藏自治区", "台北": "台湾省", "香港": "香港特别行政区", "澳门": "澳门特别行政区",
}

// ProvinceForCity：按城市简称推断省份完整名称，也接受带“市”后缀的写法
func ProvinceForCity(city string) (string, bool) {
	if p, ok := cityProvince[city]; ok {
		return p, true
	}
	if n := len(city); n > len("市") && city[n-len("市"):] == "市" {
		p, ok := cityProvince[city[:n-len("市")]]
		return p, ok
	}
	return "", false
}
