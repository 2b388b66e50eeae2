package token

import (
	"path/filepath"
	"testing"

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
	require.NoError(t, db.AutoMigrate(&model.TokenBalanceModel{}, &model.MintRecordModel{}))
	return db
}

func TestLedgerIssuerMint(t *testing.T) {
	db := newTestDB(t)
	issuer := NewLedgerIssuer(false)

	addr := "0x1111111111111111111111111111111111111111"

	require.NoError(t, issuer.Mint(db, 1, addr, 100))
	require.NoError(t, issuer.Mint(db, 1, addr, 50))

	balance, err := issuer.BalanceOf(db, 1, addr)
	require.NoError(t, err)
	assert.Equal(t, int64(150), balance)

	// 不同活动的账本互相独立
	balance, err = issuer.BalanceOf(db, 2, addr)
	require.NoError(t, err)
	assert.Equal(t, int64(0), balance)
}

func TestLedgerIssuerMintInvalidAmount(t *testing.T) {
	db := newTestDB(t)
	issuer := NewLedgerIssuer(false)

	addr := "0x1111111111111111111111111111111111111111"
	assert.ErrorIs(t, issuer.Mint(db, 1, addr, 0), model.ErrInvalidAmount)
	assert.ErrorIs(t, issuer.Mint(db, 1, addr, -10), model.ErrInvalidAmount)
}

func TestLedgerIssuerTotalSupply(t *testing.T) {
	db := newTestDB(t)
	issuer := NewLedgerIssuer(false)

	a := "0x1111111111111111111111111111111111111111"
	b := "0x2222222222222222222222222222222222222222"

	supply, err := issuer.TotalSupply(db, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(0), supply)

	require.NoError(t, issuer.Mint(db, 1, a, 100))
	require.NoError(t, issuer.Mint(db, 1, b, 300))
	require.NoError(t, issuer.Mint(db, 2, a, 999))

	supply, err = issuer.TotalSupply(db, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(400), supply)
}

func TestLedgerIssuerMirrorRecords(t *testing.T) {
	db := newTestDB(t)
	addr := "0x1111111111111111111111111111111111111111"

	// 镜像关闭时不登记待上链记录
	require.NoError(t, NewLedgerIssuer(false).Mint(db, 1, addr, 100))
	var count int64
	require.NoError(t, db.Model(&model.MintRecordModel{}).Count(&count).Error)
	assert.Equal(t, int64(0), count)

	// 镜像开启时每次铸币登记一条 pending 记录
	require.NoError(t, NewLedgerIssuer(true).Mint(db, 1, addr, 100))
	var record model.MintRecordModel
	require.NoError(t, db.First(&record).Error)
	assert.Equal(t, model.MintStatusPending, record.Status)
	assert.Equal(t, int64(100), record.Amount)
	assert.Equal(t, addr, record.Address)
}
