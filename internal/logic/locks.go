package logic

import (
	"fmt"
	"sync"
)

// KeyLocks 按键互斥锁
// 每个活动、每个提案一把独占锁，保证状态变更操作串行化
// 锁定顺序约定：先提案后活动（提案执行/取消回调里程碑时），避免死锁
type KeyLocks struct {
	locks sync.Map // map[string]*sync.Mutex
}

// NewKeyLocks 创建按键互斥锁
func NewKeyLocks() *KeyLocks {
	return &KeyLocks{}
}

func (k *KeyLocks) lock(key string) func() {
	value, _ := k.locks.LoadOrStore(key, &sync.Mutex{})
	mu := value.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}

// LockCampaign 锁定活动，返回解锁函数
func (k *KeyLocks) LockCampaign(campaignId int64) func() {
	return k.lock(fmt.Sprintf("campaign:%d", campaignId))
}

// LockProposal 锁定提案，返回解锁函数
func (k *KeyLocks) LockProposal(proposalId int64) func() {
	return k.lock(fmt.Sprintf("proposal:%d", proposalId))
}
