package serviceEconomy

import (
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"simustruct/entity"
	"simustruct/storage"
)

// Economy owns the three entity collections the original display layer
// kept in global state: assets, accounts and exchanges, each unique by
// name. All access goes through its lock; the entities themselves carry
// no locking and must not be shared outside it.
//
// Every mutation is persisted through the attached database (nil keeps
// the economy in memory only, which the tests use) and published as a
// LedgerEvent for display layers.
type Economy struct {
	mu        sync.RWMutex
	assets    map[string]*entity.Asset
	accounts  map[string]*entity.Account
	exchanges map[string]*entity.Exchange

	db     *storage.Database
	events chan entity.LedgerEvent
}

func NewEconomy(db *storage.Database) *Economy {
	return &Economy{
		assets:    make(map[string]*entity.Asset),
		accounts:  make(map[string]*entity.Account),
		exchanges: make(map[string]*entity.Exchange),
		db:        db,
		events:    make(chan entity.LedgerEvent, 64),
	}
}

// Load restores an economy from the database.
func Load(db *storage.Database) (*Economy, error) {
	eco := NewEconomy(db)
	if db == nil {
		return eco, nil
	}

	assets, err := db.GetAssets()
	if err != nil {
		return nil, err
	}
	for _, asset := range assets {
		eco.assets[asset.Name] = asset
	}

	accounts, err := db.GetAccounts()
	if err != nil {
		return nil, err
	}
	for _, acc := range accounts {
		eco.accounts[acc.Owner] = acc
	}

	exchanges, err := db.GetExchanges()
	if err != nil {
		return nil, err
	}
	for _, ex := range exchanges {
		eco.exchanges[ex.Name] = ex
	}

	return eco, nil
}

// Events returns the stream of mutation events. The channel is drained
// best effort: when no consumer keeps up, events are dropped rather
// than stalling the mutation path.
func (eco *Economy) Events() <-chan entity.LedgerEvent {
	return eco.events
}

func (eco *Economy) publish(ev entity.LedgerEvent) {
	ev.When = time.Now()
	select {
	case eco.events <- ev:
	default:
	}
}

func (eco *Economy) journal(action, account, asset string, amount decimal.Decimal, detail string) {
	if eco.db == nil {
		return
	}

	err := eco.db.LogTransaction(storage.TransactionLogEntry{
		Time:    time.Now(),
		Action:  action,
		Account: account,
		Asset:   asset,
		Amount:  amount,
		Detail:  detail,
	})
	if err != nil {
		// journaling is informational, the mutation itself stands
		log.Printf("%v", err)
	}
}

func (eco *Economy) asset(name string) (*entity.Asset, error) {
	asset, ok := eco.assets[name]
	if !ok {
		return nil, fmt.Errorf("no such asset: %v", name)
	}
	return asset, nil
}

func (eco *Economy) account(owner string) (*entity.Account, error) {
	acc, ok := eco.accounts[owner]
	if !ok {
		return nil, fmt.Errorf("no such account: %v", owner)
	}
	return acc, nil
}

func (eco *Economy) exchange(name string) (*entity.Exchange, error) {
	ex, ok := eco.exchanges[name]
	if !ok {
		return nil, fmt.Errorf("no such exchange: %v", name)
	}
	return ex, nil
}

func (eco *Economy) CreateAsset(name string) error {
	eco.mu.Lock()
	defer eco.mu.Unlock()

	if name == "" {
		return fmt.Errorf("asset name must not be empty")
	}
	if _, ok := eco.assets[name]; ok {
		return fmt.Errorf("asset '%v' already exists", name)
	}

	asset := entity.NewAsset(name)
	if eco.db != nil {
		if err := eco.db.SaveAsset(asset); err != nil {
			return err
		}
	}

	eco.assets[name] = asset
	eco.publish(entity.LedgerEvent{Action: "asset", Asset: name})

	return nil
}

func (eco *Economy) CreateAccount(owner string) error {
	eco.mu.Lock()
	defer eco.mu.Unlock()

	if owner == "" {
		return fmt.Errorf("account owner must not be empty")
	}
	if _, ok := eco.accounts[owner]; ok {
		return fmt.Errorf("account '%v' already exists", owner)
	}

	acc := entity.NewAccount(owner)
	if eco.db != nil {
		if err := eco.db.SaveAccount(acc); err != nil {
			return err
		}
	}

	eco.accounts[owner] = acc
	eco.publish(entity.LedgerEvent{Action: "account", Account: owner})

	return nil
}

func (eco *Economy) CreateExchange(name string) error {
	eco.mu.Lock()
	defer eco.mu.Unlock()

	if name == "" {
		return fmt.Errorf("exchange name must not be empty")
	}
	if _, ok := eco.exchanges[name]; ok {
		return fmt.Errorf("exchange '%v' already exists", name)
	}

	ex := entity.NewExchange(name)
	if eco.db != nil {
		if err := eco.db.SaveExchange(ex); err != nil {
			return err
		}
	}

	eco.exchanges[name] = ex
	eco.publish(entity.LedgerEvent{Action: "exchange", Detail: name})

	return nil
}

// AddPool registers a pool for the ordered pair (assetA, assetB) on the
// given exchange. Registering the same ordered pair again resets the
// pool's reserves.
func (eco *Economy) AddPool(exchangeName, assetA, assetB string) error {
	eco.mu.Lock()
	defer eco.mu.Unlock()

	ex, err := eco.exchange(exchangeName)
	if err != nil {
		return err
	}

	a, err := eco.asset(assetA)
	if err != nil {
		return err
	}
	b, err := eco.asset(assetB)
	if err != nil {
		return err
	}

	ex.AddPool(a, b)

	if eco.db != nil {
		if err := eco.db.SaveExchange(ex); err != nil {
			return err
		}
	}

	eco.publish(entity.LedgerEvent{Action: "pool", Detail: entity.PoolKey(a, b)})

	return nil
}

// AddHolding credits an account with an amount of a registered asset.
func (eco *Economy) AddHolding(owner, assetName string, amount decimal.Decimal) error {
	eco.mu.Lock()
	defer eco.mu.Unlock()

	acc, err := eco.account(owner)
	if err != nil {
		return err
	}
	asset, err := eco.asset(assetName)
	if err != nil {
		return err
	}

	acc.AddAsset(asset, amount)

	if eco.db != nil {
		if err := eco.db.SaveAccount(acc); err != nil {
			return err
		}
	}

	eco.journal("add", owner, assetName, amount, "")
	eco.publish(entity.LedgerEvent{Action: "add", Account: owner, Asset: assetName, Amount: amount})

	return nil
}

// RemoveHolding debits an amount of an asset from an account.
func (eco *Economy) RemoveHolding(owner, assetName string, amount decimal.Decimal) error {
	eco.mu.Lock()
	defer eco.mu.Unlock()

	acc, err := eco.account(owner)
	if err != nil {
		return err
	}
	asset, err := eco.asset(assetName)
	if err != nil {
		return err
	}

	if !acc.RemoveAsset(asset, amount) {
		return fmt.Errorf("account %v has not enough of %v for the requested amount", owner, assetName)
	}

	if eco.db != nil {
		if err := eco.db.SaveAccount(acc); err != nil {
			return err
		}
	}

	eco.journal("remove", owner, assetName, amount, "")
	eco.publish(entity.LedgerEvent{Action: "remove", Account: owner, Asset: assetName, Amount: amount})

	return nil
}

// Deposit moves an amount of an asset from an account into the first
// matching pool of the given exchange.
func (eco *Economy) Deposit(exchangeName, assetName string, amount decimal.Decimal, owner string) error {
	eco.mu.Lock()
	defer eco.mu.Unlock()

	ex, err := eco.exchange(exchangeName)
	if err != nil {
		return err
	}
	asset, err := eco.asset(assetName)
	if err != nil {
		return err
	}
	acc, err := eco.account(owner)
	if err != nil {
		return err
	}

	if !ex.Deposit(asset, amount, acc) {
		return fmt.Errorf("account %v has not enough of %v for the requested deposit", owner, assetName)
	}

	if eco.db != nil {
		if err := eco.db.SaveAccount(acc); err != nil {
			return err
		}
		if err := eco.db.SaveExchange(ex); err != nil {
			return err
		}
	}

	eco.journal("deposit", owner, assetName, amount, exchangeName)
	eco.publish(entity.LedgerEvent{Action: "deposit", Account: owner, Asset: assetName, Amount: amount, Detail: exchangeName})

	return nil
}

// Trade swaps an amount through the pool registered for exactly the
// direction assetFrom->assetTo and credits the account with assetTo.
func (eco *Economy) Trade(exchangeName, assetFrom, assetTo string, amount decimal.Decimal, owner string) error {
	eco.mu.Lock()
	defer eco.mu.Unlock()

	ex, err := eco.exchange(exchangeName)
	if err != nil {
		return err
	}
	from, err := eco.asset(assetFrom)
	if err != nil {
		return err
	}
	to, err := eco.asset(assetTo)
	if err != nil {
		return err
	}
	acc, err := eco.account(owner)
	if err != nil {
		return err
	}

	if !ex.Trade(from, to, amount, acc) {
		return fmt.Errorf("exchange %v has no %v pool with sufficient reserves",
			exchangeName, entity.PoolKey(from, to))
	}

	if eco.db != nil {
		if err := eco.db.SaveAccount(acc); err != nil {
			return err
		}
		if err := eco.db.SaveExchange(ex); err != nil {
			return err
		}
	}

	eco.journal("trade", owner, assetFrom, amount, entity.PoolKey(from, to))
	eco.publish(entity.LedgerEvent{Action: "trade", Account: owner, Asset: assetTo, Amount: amount, Detail: entity.PoolKey(from, to)})

	return nil
}
