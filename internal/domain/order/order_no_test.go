package order

import (
	"regexp"
	"testing"
	"time"
)

// TestGenerateOrderNo_Format 订单号格式校验
func TestGenerateOrderNo_Format(t *testing.T) {
	pattern := regexp.MustCompile(`^ORD-\d{8}-[0-9A-Z]{6}$`)

	no := GenerateOrderNo()
	if !pattern.MatchString(no) {
		t.Errorf("订单号格式不符: %s", no)
	}

	// 日期段应为当天
	today := time.Now().Format("20060102")
	if no[4:12] != today {
		t.Errorf("订单号日期段应为%s, 实际: %s", today, no[4:12])
	}
}

// TestGenerateOrderNo_Uniqueness 批量生成基本不碰撞
// 6位base36约21亿组合,1万次生成出现碰撞说明随机源有问题
func TestGenerateOrderNo_Uniqueness(t *testing.T) {
	seen := make(map[string]bool, 10000)
	for i := 0; i < 10000; i++ {
		no := GenerateOrderNo()
		if seen[no] {
			t.Fatalf("订单号碰撞: %s", no)
		}
		seen[no] = true
	}
}
