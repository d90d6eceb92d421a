package georef

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"marathon-api/internal/geo"
)

// Node：导入文件中的一个行政区节点（省/市/区县共用结构）
// 背景：兼容常见的 pca-code.json 格式：[{"code":"51","name":"四川省","children":[...]}]。
type Node struct {
	Code     string `json:"code"`
	Name     string `json:"name"`
	Children []Node `json:"children"`
}

// Writer：导入目标；按 code 幂等写入并返回行 id
type Writer interface {
	UpsertProvince(ctx context.Context, name, code string) (int64, error)
	UpsertCity(ctx context.Context, provinceID int64, name, code string) (int64, error)
	UpsertDistrict(ctx context.Context, cityID int64, name, code string) (int64, error)
}

// ImportStats：导入计数
type ImportStats struct {
	Provinces int
	Cities    int
	Districts int
}

// DecodeNodes：解析导入文件
func DecodeNodes(r io.Reader) ([]Node, error) {
	var nodes []Node
	if err := json.NewDecoder(r).Decode(&nodes); err != nil {
		return nil, fmt.Errorf("decode geo nodes: %w", err)
	}
	return nodes, nil
}

// Import：逐级写入省/市/区县
// 约束：省份名称写入前按地图格式标准化，使外键回填时得到的名称已是规范形式；
// 市/区县名称只去除首尾空白；code 为空的节点跳过。
func Import(ctx context.Context, w Writer, nodes []Node) (ImportStats, error) {
	var st ImportStats
	for _, p := range nodes {
		name := geo.NormalizeProvince(strings.TrimSpace(p.Name))
		if p.Code == "" || name == "" {
			continue
		}
		pid, err := w.UpsertProvince(ctx, name, p.Code)
		if err != nil {
			return st, fmt.Errorf("province %s: %w", p.Code, err)
		}
		st.Provinces++
		for _, c := range p.Children {
			cname := strings.TrimSpace(c.Name)
			if c.Code == "" || cname == "" {
				continue
			}
			cid, err := w.UpsertCity(ctx, pid, cname, c.Code)
			if err != nil {
				return st, fmt.Errorf("city %s: %w", c.Code, err)
			}
			st.Cities++
			for _, d := range c.Children {
				dname := strings.TrimSpace(d.Name)
				if d.Code == "" || dname == "" {
					continue
				}
				if _, err := w.UpsertDistrict(ctx, cid, dname, d.Code); err != nil {
					return st, fmt.Errorf("district %s: %w", d.Code, err)
				}
				st.Districts++
			}
		}
	}
	return st, nil
}
