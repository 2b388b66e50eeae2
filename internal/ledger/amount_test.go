package ledger

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestApplyBps(t *testing.T) {
	// 30% of 10000
	assert.Equal(t, int64(3000), ApplyBps(10000, 3000))
	// 2% 手续费
	assert.Equal(t, int64(60), ApplyBps(3000, 200))
	// 向下取整
	assert.Equal(t, int64(0), ApplyBps(33, 100))
	assert.Equal(t, int64(1), ApplyBps(67, 200))
	// 零与负数输入
	assert.Equal(t, int64(0), ApplyBps(0, 3000))
	assert.Equal(t, int64(0), ApplyBps(-100, 3000))
	assert.Equal(t, int64(0), ApplyBps(10000, 0))
}

func TestApplyBpsNoOverflow(t *testing.T) {
	// amount * bps 超出 int64，中间结果必须走大数
	huge := int64(math.MaxInt64 / 2)
	got := ApplyBps(huge, 10000)
	assert.Equal(t, huge, got)

	got = ApplyBps(huge, 5000)
	assert.Equal(t, huge/2, got)
}

func TestProRata(t *testing.T) {
	// 6000出资、未放款余额7000、总出资10000 → 4200
	assert.Equal(t, int64(4200), ProRata(6000, 7000, 10000))
	// 向下取整
	assert.Equal(t, int64(333), ProRata(1000, 1, 3))
	// 全额比例恒等于原额
	assert.Equal(t, int64(12345), ProRata(12345, 10000, 10000))
	// 零与负数输入
	assert.Equal(t, int64(0), ProRata(0, 1, 2))
	assert.Equal(t, int64(0), ProRata(100, 0, 2))
	assert.Equal(t, int64(0), ProRata(100, 1, 0))
	assert.Equal(t, int64(0), ProRata(-5, 1, 2))

	// 大数不溢出
	huge := int64(math.MaxInt64 / 2)
	assert.Equal(t, huge, ProRata(huge, huge, huge))
}

func TestFeeAndNet(t *testing.T) {
	// 2% 手续费：4000 放款 → 80 手续费 / 3920 净额
	assert.Equal(t, int64(80), Fee(4000, 200))
	assert.Equal(t, int64(3920), Net(4000, 200))

	// 毛额恒等于手续费加净额
	for _, amount := range []int64{1, 99, 3000, 123456789} {
		assert.Equal(t, amount, Fee(amount, 200)+Net(amount, 200))
	}

	// 零费率
	assert.Equal(t, int64(0), Fee(4000, 0))
	assert.Equal(t, int64(4000), Net(4000, 0))
}

func TestCheckAmount(t *testing.T) {
	assert.NoError(t, CheckAmount(1))
	assert.ErrorIs(t, CheckAmount(0), ErrNegativeAmount)
	assert.ErrorIs(t, CheckAmount(-5), ErrNegativeAmount)
}
