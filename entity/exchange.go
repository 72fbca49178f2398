package entity

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Pool is one directional reserve pair. Its key encodes an ordered
// asset pair: "gold-silver" and "silver-gold" are distinct pools, and a
// trade only matches the pool registered for its exact direction.
type Pool struct {
	Key      string
	Reserves map[string]decimal.Decimal
}

// Exchange is a named collection of two-asset pools, kept in insertion
// order. Deposit scans pools in that order, so the order is part of the
// contract rather than a display concern.
type Exchange struct {
	Name  string
	Pools []*Pool
}

func NewExchange(name string) *Exchange {
	return &Exchange{Name: name}
}

// PoolKey builds the composite key for an ordered asset pair.
func PoolKey(assetA, assetB *Asset) string {
	return fmt.Sprintf("%v-%v", assetA.Name, assetB.Name)
}

func (ex *Exchange) findPool(key string) *Pool {
	for _, pool := range ex.Pools {
		if pool.Key == key {
			return pool
		}
	}
	return nil
}

// AddPool registers a pool for the ordered pair (assetA, assetB) with
// both reserves at zero. Registering the same ordered pair again resets
// the existing pool.
func (ex *Exchange) AddPool(assetA, assetB *Asset) {
	reserves := map[string]decimal.Decimal{
		assetA.Name: decimal.Zero,
		assetB.Name: decimal.Zero,
	}

	key := PoolKey(assetA, assetB)
	if pool := ex.findPool(key); pool != nil {
		pool.Reserves = reserves
		return
	}

	ex.Pools = append(ex.Pools, &Pool{Key: key, Reserves: reserves})
}

// Deposit withdraws amount of asset from the account and credits the
// first pool whose reserve map carries the asset's name. Only a failed
// withdrawal yields false: once the account has been debited the
// deposit reports success even when no pool carries the asset and the
// amount ends up nowhere.
func (ex *Exchange) Deposit(asset *Asset, amount decimal.Decimal, account *Account) bool {
	if !account.RemoveAsset(asset, amount) {
		return false
	}

	for _, pool := range ex.Pools {
		if reserve, ok := pool.Reserves[asset.Name]; ok {
			pool.Reserves[asset.Name] = reserve.Add(amount)
			break
		}
	}

	return true
}

// Trade moves amount from the assetFrom side of the pool registered for
// exactly this direction to its assetTo side and credits the account
// with the outgoing asset. The account is only ever credited here; the
// amount leaving the pool has no account-side debit.
func (ex *Exchange) Trade(assetFrom, assetTo *Asset, amount decimal.Decimal, account *Account) bool {
	pool := ex.findPool(PoolKey(assetFrom, assetTo))
	if pool == nil {
		return false
	}

	if pool.Reserves[assetFrom.Name].LessThan(amount) {
		return false
	}

	pool.Reserves[assetFrom.Name] = pool.Reserves[assetFrom.Name].Sub(amount)
	pool.Reserves[assetTo.Name] = pool.Reserves[assetTo.Name].Add(amount)
	account.AddAsset(NewAsset(assetTo.Name), amount)

	return true
}

// PoolSnapshot returns a copy of all pools keyed by pool key, safe to
// hand to display layers.
func (ex *Exchange) PoolSnapshot() map[string]map[string]decimal.Decimal {
	snapshot := make(map[string]map[string]decimal.Decimal, len(ex.Pools))
	for _, pool := range ex.Pools {
		reserves := make(map[string]decimal.Decimal, len(pool.Reserves))
		for name, reserve := range pool.Reserves {
			reserves[name] = reserve
		}
		snapshot[pool.Key] = reserves
	}
	return snapshot
}
