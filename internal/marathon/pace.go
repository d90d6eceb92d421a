package marathon

import (
	"fmt"
	"strconv"
	"strings"
)

// NormalizePace：配速统一为 mm:ss
// 例："5:30/km" -> "05:30"；"05:30" 原样返回。
// 返回 ok=false 表示无法识别（缺少冒号、分钟非数字、秒数不是两位 0-59）。
func NormalizePace(s string) (string, bool) {
	p := strings.TrimSpace(strings.ReplaceAll(s, "/km", ""))
	parts := strings.Split(p, ":")
	if len(parts) != 2 {
		return s, false
	}
	min, err := strconv.Atoi(parts[0])
	if err != nil || min < 0 || min > 99 {
		return s, false
	}
	sec := parts[1]
	if n, err := strconv.Atoi(sec); err != nil || len(sec) != 2 || n > 59 || n < 0 {
		return s, false
	}
	return fmt.Sprintf("%02d:%s", min, sec), true
}
