package event

import (
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/hoddukzoa12/crowdmantle-sub000/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
	"gorm.io/gorm/schema"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{
		Logger: gormLogger.Default.LogMode(gormLogger.Silent),
		NamingStrategy: &schema.NamingStrategy{
			SingularTable: true,
		},
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&model.EventModel{}))
	return db
}

func TestRecorderRecord(t *testing.T) {
	db := newTestDB(t)
	recorder := NewRecorder()

	err := recorder.Record(db, model.EventPledged, 1, 0, map[string]interface{}{
		"campaign_id": 1,
		"investor":    "0x1111111111111111111111111111111111111111",
		"amount":      500,
	})
	require.NoError(t, err)

	var record model.EventModel
	require.NoError(t, db.First(&record).Error)
	assert.Equal(t, model.EventPledged, record.EventType)
	assert.Equal(t, int64(1), record.CampaignId)
	assert.False(t, record.Dispatched)
	assert.Contains(t, record.Data, `"amount":500`)
}

func TestGetCampaignEventsOrdering(t *testing.T) {
	db := newTestDB(t)
	recorder := NewRecorder()

	require.NoError(t, recorder.Record(db, model.EventCampaignCreated, 1, 0, map[string]interface{}{"n": 1}))
	require.NoError(t, recorder.Record(db, model.EventPledged, 1, 0, map[string]interface{}{"n": 2}))
	require.NoError(t, recorder.Record(db, model.EventPledged, 2, 0, map[string]interface{}{"n": 3}))

	events, total, err := recorder.GetCampaignEvents(db, 1, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	require.Len(t, events, 2)
	// 事件流按写入顺序返回
	assert.Equal(t, model.EventCampaignCreated, events[0].EventType)
	assert.Equal(t, model.EventPledged, events[1].EventType)
}

func TestDispatchPending(t *testing.T) {
	db := newTestDB(t)
	recorder := NewRecorder()

	dispatcher, err := NewDispatcher(db, 4)
	require.NoError(t, err)
	defer dispatcher.Release()

	var mu sync.Mutex
	var received []model.EventType
	dispatcher.Subscribe(func(ev model.EventModel) {
		mu.Lock()
		defer mu.Unlock()
		received = append(received, ev.EventType)
	})

	require.NoError(t, recorder.Record(db, model.EventPledged, 1, 0, map[string]interface{}{"n": 1}))
	require.NoError(t, recorder.Record(db, model.EventRefunded, 1, 0, map[string]interface{}{"n": 2}))

	count, err := dispatcher.DispatchPending()
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	// 等待工作池完成推送
	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(received) == 2
	}, 2*time.Second, 10*time.Millisecond)

	// 已分发事件不再重复推送
	count, err = dispatcher.DispatchPending()
	require.NoError(t, err)
	assert.Equal(t, 0, count)

	var pending int64
	require.NoError(t, db.Model(&model.EventModel{}).Where("dispatched = ?", false).Count(&pending).Error)
	assert.Equal(t, int64(0), pending)
}
