package ledger

import (
	"errors"
	"math/big"
)

// Amount 账本金额，以最小单位计价的定点数
type Amount = int64

// 基点常量
const (
	BpsDenominator int64 = 10000 // 基点分母，100% = 10000 bps
)

var (
	// ErrNegativeAmount 金额为负
	ErrNegativeAmount = errors.New("金额不能为负数")
	// ErrAmountOverflow 金额溢出
	ErrAmountOverflow = errors.New("金额计算溢出")
)

// CheckAmount 校验金额必须大于0
func CheckAmount(amount Amount) error {
	if amount <= 0 {
		return ErrNegativeAmount
	}
	return nil
}

// ApplyBps 按基点比例计算金额，向下取整
// 中间结果使用 big.Int，避免 pledged * bps 溢出
func ApplyBps(amount Amount, bps int64) Amount {
	if amount <= 0 || bps <= 0 {
		return 0
	}
	result := new(big.Int).Mul(big.NewInt(amount), big.NewInt(bps))
	result.Div(result, big.NewInt(BpsDenominator))
	return result.Int64()
}

// ProRata 按比例分摊金额 amount * numerator / denominator，向下取整
// 中间结果使用 big.Int，避免乘法溢出
func ProRata(amount, numerator, denominator Amount) Amount {
	if amount <= 0 || numerator <= 0 || denominator <= 0 {
		return 0
	}
	result := new(big.Int).Mul(big.NewInt(amount), big.NewInt(numerator))
	result.Div(result, big.NewInt(denominator))
	return result.Int64()
}

// Fee 计算平台手续费 fee = amount * feeBps / 10000
func Fee(amount Amount, feeBps int64) Amount {
	return ApplyBps(amount, feeBps)
}

// Net 计算扣除手续费后的净额 net = amount - fee
func Net(amount Amount, feeBps int64) Amount {
	return amount - Fee(amount, feeBps)
}
