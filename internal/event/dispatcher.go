package event

import (
	"sync"

	"github.com/hoddukzoa12/crowdmantle-sub000/internal/logger"
	"github.com/hoddukzoa12/crowdmantle-sub000/internal/model"
	"github.com/panjf2000/ants/v2"
	"gorm.io/gorm"
)

// Subscriber 事件订阅回调
type Subscriber func(event model.EventModel)

// Dispatcher 事件分发器
// 把已落库的事件异步推送给进程内订阅者（索引器、通知等）
// 分发只影响读模型，失败不回滚账本状态
type Dispatcher struct {
	db          *gorm.DB
	pool        *ants.Pool
	mu          sync.RWMutex
	subscribers []Subscriber
}

// NewDispatcher 创建事件分发器
func NewDispatcher(db *gorm.DB, poolSize int) (*Dispatcher, error) {
	pool, err := ants.NewPool(poolSize)
	if err != nil {
		return nil, err
	}
	return &Dispatcher{
		db:   db,
		pool: pool,
	}, nil
}

// Subscribe 注册订阅者
func (d *Dispatcher) Subscribe(s Subscriber) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.subscribers = append(d.subscribers, s)
}

// DispatchPending 分发所有未分发事件，返回分发条数
// 先标记后推送：重启丢失的推送可以接受，重复推送不可以
func (d *Dispatcher) DispatchPending() (int, error) {
	var events []model.EventModel
	if err := d.db.Where("dispatched = ?", false).
		Order("id ASC").
		Limit(200).
		Find(&events).Error; err != nil {
		return 0, err
	}

	dispatched := 0
	for _, ev := range events {
		if err := d.db.Model(&model.EventModel{}).
			Where("id = ?", ev.Id).
			Update("dispatched", true).Error; err != nil {
			logger.Error("Failed to mark event %d dispatched: %v", ev.Id, err)
			continue
		}

		d.mu.RLock()
		subs := make([]Subscriber, len(d.subscribers))
		copy(subs, d.subscribers)
		d.mu.RUnlock()

		for _, sub := range subs {
			sub := sub
			ev := ev
			if err := d.pool.Submit(func() {
				sub(ev)
			}); err != nil {
				logger.Error("Failed to submit event %d to pool: %v", ev.Id, err)
			}
		}
		dispatched++
	}

	return dispatched, nil
}

// Release 关闭工作池
func (d *Dispatcher) Release() {
	d.pool.Release()
}
