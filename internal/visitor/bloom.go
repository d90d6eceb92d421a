package visitor

import (
	"context"
	"hash/fnv"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	bloomBits   uint32 = 1 << 20
	bloomHashes        = 4
)

// 文档注释：计算布隆过滤器位置
// 背景：FNV64a 加索引扰动生成 k 个位置，用于 GetBit/SetBit。
// 约束：m、k 需结合日访问量调参，误判只会少计一次访问。
func bloomPositions(data []byte, m uint32, k int) []int64 {
	pos := make([]int64, k)
	for i := 0; i < k; i++ {
		h := fnv.New64a()
		h.Write([]byte{byte(i)})
		h.Write(data)
		pos[i] = int64(uint32(h.Sum64() % uint64(m)))
	}
	return pos
}

// Dedup：同一 IP 每天只计一次访问
// 约束：rc 为 nil 时全部视为首次访问；Redis 故障时放行并返回错误，由调用方记录日志。
type Dedup struct {
	rc  *redis.Client
	ttl time.Duration
}

func NewDedup(rc *redis.Client) *Dedup {
	return &Dedup{rc: rc, ttl: 48 * time.Hour}
}

// First：首次见到返回 true 并写入位图
func (d *Dedup) First(ctx context.Context, day time.Time, ip string) (bool, error) {
	if d == nil || d.rc == nil {
		return true, nil
	}
	key := "visit:bloom:" + day.Format("20060102")
	positions := bloomPositions([]byte(ip), bloomBits, bloomHashes)
	seen := true
	for _, p := range positions {
		b, err := d.rc.GetBit(ctx, key, p).Result()
		if err != nil {
			return true, err
		}
		if b == 0 {
			seen = false
		}
	}
	if seen {
		return false, nil
	}
	pipe := d.rc.Pipeline()
	for _, p := range positions {
		pipe.SetBit(ctx, key, p, 1)
	}
	pipe.Expire(ctx, key, d.ttl)
	_, err := pipe.Exec(ctx)
	return true, err
}
