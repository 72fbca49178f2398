package entity

import "github.com/shopspring/decimal"

// Asset identifies a fungible resource type by name. Accounts and
// exchanges reference assets by name only; an Asset value is a
// disposable identity token, not a shared object.
type Asset struct {
	Name        string
	TotalSupply decimal.Decimal
}

func NewAsset(name string) *Asset {
	return &Asset{
		Name:        name,
		TotalSupply: decimal.Zero,
	}
}
