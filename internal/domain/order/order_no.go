package order

import (
	"fmt"
	"math/rand"
	"strings"
	"time"
)

const orderNoRandomLen = 6

var base36Chars = []byte("0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ")

// GenerateOrderNo 生成订单号
// 格式:ORD-日期(YYYYMMDD)-6位base36随机串
// 示例:ORD-20260831-X7K2M9
//
// 设计说明:
// 1. 日期前缀便于人工排查和按天归档
// 2. 6位base36约21亿种组合,同一天内碰撞概率极低
// 3. 唯一性最终由数据库order_no唯一索引兜底,碰撞时调用方重新生成并重试
func GenerateOrderNo() string {
	var sb strings.Builder
	for i := 0; i < orderNoRandomLen; i++ {
		sb.WriteByte(base36Chars[rand.Intn(len(base36Chars))])
	}
	return fmt.Sprintf("ORD-%s-%s", time.Now().Format("20060102"), sb.String())
}
