package predictor

import (
	"math/rand"
	"sync"
	"time"
)

// RandSource 预测使用的随机源，测试中可替换为固定序列
type RandSource interface {
	// Intn 返回 [0, n) 内的均匀随机整数
	Intn(n int) int
}

// lockedRand 并发安全的 math/rand 随机源
type lockedRand struct {
	mu sync.Mutex
	r  *rand.Rand
}

// NewRandSource 创建随机源，seed 为 0 时使用当前时间
func NewRandSource(seed int64) RandSource {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &lockedRand{r: rand.New(rand.NewSource(seed))}
}

func (l *lockedRand) Intn(n int) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.r.Intn(n)
}
