package ledger

import (
	"errors"
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

var (
	// ErrInvalidAddress 地址格式错误
	ErrInvalidAddress = errors.New("地址格式不正确")
	// ErrZeroAddress 零地址不能作为参与方
	ErrZeroAddress = errors.New("零地址不能参与操作")
)

// NormalizeAddress 规范化地址：校验十六进制格式并转为小写标准形式
// 所有账本记录以规范化地址作为身份键，避免大小写差异造成重复身份
func NormalizeAddress(addr string) (string, error) {
	if !common.IsHexAddress(addr) {
		return "", ErrInvalidAddress
	}
	parsed := common.HexToAddress(addr)
	if parsed == (common.Address{}) {
		return "", ErrZeroAddress
	}
	return strings.ToLower(parsed.Hex()), nil
}

// SameAddress 比较两个地址是否为同一身份
func SameAddress(a, b string) bool {
	if !common.IsHexAddress(a) || !common.IsHexAddress(b) {
		return false
	}
	return common.HexToAddress(a) == common.HexToAddress(b)
}
