package storage

import (
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"simustruct/entity"
)

func openTestDb(t *testing.T) *Database {
	db, err := Open(filepath.Join(t.TempDir(), "test.sqlite3"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestSaveAndLoadAssets(t *testing.T) {
	db := openTestDb(t)

	require.NoError(t, db.SaveAsset(entity.NewAsset("gold")))
	require.NoError(t, db.SaveAsset(entity.NewAsset("silver")))

	assets, err := db.GetAssets()
	require.NoError(t, err)
	require.Len(t, assets, 2)
	require.Equal(t, "gold", assets[0].Name)
	require.Equal(t, "silver", assets[1].Name)
	require.True(t, assets[0].TotalSupply.IsZero())
}

func TestSaveAccountRewritesHoldings(t *testing.T) {
	db := openTestDb(t)

	gold := entity.NewAsset("gold")
	silver := entity.NewAsset("silver")
	alice := entity.NewAccount("alice")
	alice.AddAsset(gold, decimal.NewFromInt(10))
	alice.AddAsset(silver, decimal.NewFromInt(4))
	require.NoError(t, db.SaveAccount(alice))

	// removing the full silver balance deletes the key; the saved state
	// must not resurrect it
	require.True(t, alice.RemoveAsset(silver, decimal.NewFromInt(4)))
	require.NoError(t, db.SaveAccount(alice))

	accounts, err := db.GetAccounts()
	require.NoError(t, err)
	require.Len(t, accounts, 1)
	require.Equal(t, "alice", accounts[0].Owner)
	require.Len(t, accounts[0].Holdings, 1)
	require.True(t, accounts[0].Holdings["gold"].Equal(decimal.NewFromInt(10)))
}

func TestSaveExchangePreservesPoolOrder(t *testing.T) {
	db := openTestDb(t)

	gold := entity.NewAsset("gold")
	silver := entity.NewAsset("silver")
	copper := entity.NewAsset("copper")

	dex := entity.NewExchange("DEX")
	dex.AddPool(silver, gold)
	dex.AddPool(gold, silver)
	dex.AddPool(gold, copper)
	dex.Pools[1].Reserves["gold"] = decimal.NewFromInt(7)

	require.NoError(t, db.SaveExchange(dex))

	exchanges, err := db.GetExchanges()
	require.NoError(t, err)
	require.Len(t, exchanges, 1)

	loaded := exchanges[0]
	require.Equal(t, "DEX", loaded.Name)
	require.Len(t, loaded.Pools, 3)
	require.Equal(t, "silver-gold", loaded.Pools[0].Key)
	require.Equal(t, "gold-silver", loaded.Pools[1].Key)
	require.Equal(t, "gold-copper", loaded.Pools[2].Key)
	require.True(t, loaded.Pools[1].Reserves["gold"].Equal(decimal.NewFromInt(7)))
}

func TestTransactionLogRoundTrip(t *testing.T) {
	db := openTestDb(t)

	err := db.LogTransaction(TransactionLogEntry{
		Action:  "deposit",
		Account: "alice",
		Asset:   "gold",
		Amount:  decimal.NewFromInt(5),
		Detail:  "DEX",
	})
	require.NoError(t, err)

	var n int
	require.NoError(t, db.QueryRow(`SELECT count(*) FROM transaction_log`).Scan(&n))
	require.Equal(t, 1, n)
}
