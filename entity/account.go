package entity

import "github.com/shopspring/decimal"

// Account holds per-asset balances for one owner. An asset name is
// present in Holdings only while its balance is above zero; a balance
// that reaches exactly zero is deleted from the map.
type Account struct {
	Owner    string
	Holdings map[string]decimal.Decimal
}

func NewAccount(owner string) *Account {
	return &Account{
		Owner:    owner,
		Holdings: make(map[string]decimal.Decimal),
	}
}

// AddAsset increments the balance of the given asset. Amounts are not
// sign-checked here; a negative amount decrements and can drive the
// balance below zero, bypassing the gate in RemoveAsset.
func (acc *Account) AddAsset(asset *Asset, amount decimal.Decimal) {
	acc.Holdings[asset.Name] = acc.GetBalance(asset).Add(amount)
}

// RemoveAsset decrements the balance of the given asset. It fails
// without touching the account when the asset is not held or the
// balance is smaller than amount.
func (acc *Account) RemoveAsset(asset *Asset, amount decimal.Decimal) bool {
	balance, ok := acc.Holdings[asset.Name]
	if !ok || balance.LessThan(amount) {
		return false
	}

	balance = balance.Sub(amount)
	if balance.IsZero() {
		delete(acc.Holdings, asset.Name)
	} else {
		acc.Holdings[asset.Name] = balance
	}

	return true
}

// GetBalance returns the held balance of the given asset, zero if the
// asset is not held.
func (acc *Account) GetBalance(asset *Asset) decimal.Decimal {
	if balance, ok := acc.Holdings[asset.Name]; ok {
		return balance
	}
	return decimal.Zero
}

// HoldingsSnapshot returns a copy of the holdings safe to hand to
// display layers.
func (acc *Account) HoldingsSnapshot() map[string]decimal.Decimal {
	snapshot := make(map[string]decimal.Decimal, len(acc.Holdings))
	for name, balance := range acc.Holdings {
		snapshot[name] = balance
	}
	return snapshot
}
