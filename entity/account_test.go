package entity

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestAddAssetNewHolding(t *testing.T) {
	gold := NewAsset("gold")
	alice := NewAccount("alice")

	alice.AddAsset(gold, decimal.NewFromInt(10))

	require.True(t, alice.GetBalance(gold).Equal(decimal.NewFromInt(10)))
}

func TestAddAssetAccumulates(t *testing.T) {
	gold := NewAsset("gold")
	alice := NewAccount("alice")

	alice.AddAsset(gold, decimal.NewFromInt(10))
	alice.AddAsset(gold, decimal.NewFromFloat(2.5))

	require.Equal(t, "12.5", alice.GetBalance(gold).String())
}

func TestAddAssetDoesNotSignCheck(t *testing.T) {
	// negative amounts pass straight through and can drive the balance
	// below zero, bypassing the gate in RemoveAsset
	gold := NewAsset("gold")
	alice := NewAccount("alice")

	alice.AddAsset(gold, decimal.NewFromInt(-5))

	require.Equal(t, "-5", alice.GetBalance(gold).String())
}

func TestRemoveAssetInsufficientBalance(t *testing.T) {
	gold := NewAsset("gold")
	alice := NewAccount("alice")
	alice.AddAsset(gold, decimal.NewFromInt(10))

	require.False(t, alice.RemoveAsset(gold, decimal.NewFromInt(15)))
	require.True(t, alice.GetBalance(gold).Equal(decimal.NewFromInt(10)))
}

func TestRemoveAssetNotHeld(t *testing.T) {
	gold := NewAsset("gold")
	alice := NewAccount("alice")

	require.False(t, alice.RemoveAsset(gold, decimal.NewFromInt(1)))
	require.Empty(t, alice.Holdings)
}

func TestRemoveAssetRoundTrip(t *testing.T) {
	gold := NewAsset("gold")
	alice := NewAccount("alice")

	alice.AddAsset(gold, decimal.NewFromInt(10))
	require.True(t, alice.RemoveAsset(gold, decimal.NewFromInt(10)))

	require.True(t, alice.GetBalance(gold).IsZero())

	// a balance that reaches exactly zero is removed, not stored as zero
	_, held := alice.Holdings["gold"]
	require.False(t, held)
}

func TestRemoveAssetPartialKeepsKey(t *testing.T) {
	gold := NewAsset("gold")
	alice := NewAccount("alice")
	alice.AddAsset(gold, decimal.NewFromInt(10))

	require.True(t, alice.RemoveAsset(gold, decimal.NewFromInt(4)))

	balance, held := alice.Holdings["gold"]
	require.True(t, held)
	require.True(t, balance.Equal(decimal.NewFromInt(6)))
}

func TestGetBalanceUnknownAsset(t *testing.T) {
	alice := NewAccount("alice")

	require.True(t, alice.GetBalance(NewAsset("copper")).IsZero())
}

func TestHoldingsStayPositive(t *testing.T) {
	gold := NewAsset("gold")
	silver := NewAsset("silver")
	alice := NewAccount("alice")

	alice.AddAsset(gold, decimal.NewFromInt(3))
	alice.AddAsset(silver, decimal.NewFromInt(7))
	require.True(t, alice.RemoveAsset(silver, decimal.NewFromInt(7)))
	require.False(t, alice.RemoveAsset(gold, decimal.NewFromInt(4)))

	for name, balance := range alice.Holdings {
		require.True(t, balance.IsPositive(), "holding %v is not positive", name)
	}
}

func TestHoldingsSnapshotIsCopy(t *testing.T) {
	gold := NewAsset("gold")
	alice := NewAccount("alice")
	alice.AddAsset(gold, decimal.NewFromInt(10))

	snapshot := alice.HoldingsSnapshot()
	snapshot["gold"] = decimal.Zero

	require.True(t, alice.GetBalance(gold).Equal(decimal.NewFromInt(10)))
}
