package serviceEconomy

import (
	"sort"

	"github.com/shopspring/decimal"

	"simustruct/entity"
)

// AccountView is a read-only copy of one account, safe to serialize.
type AccountView struct {
	Owner    string
	Holdings map[string]decimal.Decimal
}

// ExchangeView is a read-only copy of one exchange and its pools.
type ExchangeView struct {
	Name  string
	Pools map[string]map[string]decimal.Decimal
}

// Assets lists all registered assets ordered by name.
func (eco *Economy) Assets() []entity.Asset {
	eco.mu.RLock()
	defer eco.mu.RUnlock()

	assets := make([]entity.Asset, 0, len(eco.assets))
	for _, asset := range eco.assets {
		assets = append(assets, *asset)
	}

	sort.Slice(assets, func(i, j int) bool {
		return assets[i].Name < assets[j].Name
	})

	return assets
}

// Accounts lists all accounts with their holdings, ordered by owner.
func (eco *Economy) Accounts() []AccountView {
	eco.mu.RLock()
	defer eco.mu.RUnlock()

	accList := make([]AccountView, 0, len(eco.accounts))
	for _, acc := range eco.accounts {
		accList = append(accList, AccountView{
			Owner:    acc.Owner,
			Holdings: acc.HoldingsSnapshot(),
		})
	}

	sort.Slice(accList, func(i, j int) bool {
		return accList[i].Owner < accList[j].Owner
	})

	return accList
}

// Account returns a single account's view.
func (eco *Economy) Account(owner string) (AccountView, error) {
	eco.mu.RLock()
	defer eco.mu.RUnlock()

	acc, err := eco.account(owner)
	if err != nil {
		return AccountView{}, err
	}

	return AccountView{
		Owner:    acc.Owner,
		Holdings: acc.HoldingsSnapshot(),
	}, nil
}

// Balance returns the balance one account holds of one asset, zero if
// the asset is not held.
func (eco *Economy) Balance(owner, assetName string) (decimal.Decimal, error) {
	eco.mu.RLock()
	defer eco.mu.RUnlock()

	acc, err := eco.account(owner)
	if err != nil {
		return decimal.Zero, err
	}
	asset, err := eco.asset(assetName)
	if err != nil {
		return decimal.Zero, err
	}

	return acc.GetBalance(asset), nil
}

// Exchanges lists all exchanges with their pools, ordered by name.
func (eco *Economy) Exchanges() []ExchangeView {
	eco.mu.RLock()
	defer eco.mu.RUnlock()

	exList := make([]ExchangeView, 0, len(eco.exchanges))
	for _, ex := range eco.exchanges {
		exList = append(exList, ExchangeView{
			Name:  ex.Name,
			Pools: ex.PoolSnapshot(),
		})
	}

	sort.Slice(exList, func(i, j int) bool {
		return exList[i].Name < exList[j].Name
	})

	return exList
}

// Exchange returns a single exchange's view.
func (eco *Economy) Exchange(name string) (ExchangeView, error) {
	eco.mu.RLock()
	defer eco.mu.RUnlock()

	ex, err := eco.exchange(name)
	if err != nil {
		return ExchangeView{}, err
	}

	return ExchangeView{
		Name:  ex.Name,
		Pools: ex.PoolSnapshot(),
	}, nil
}
