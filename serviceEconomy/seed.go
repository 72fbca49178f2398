package serviceEconomy

import "github.com/shopspring/decimal"

// Seed populates a small demo economy: two assets, two funded accounts
// and one exchange carrying a pool per trade direction.
func (eco *Economy) Seed() error {
	steps := []func() error{
		func() error { return eco.CreateAsset("gold") },
		func() error { return eco.CreateAsset("silver") },
		func() error { return eco.CreateAccount("alice") },
		func() error { return eco.CreateAccount("bob") },
		func() error { return eco.CreateExchange("DEX") },
		func() error { return eco.AddPool("DEX", "gold", "silver") },
		func() error { return eco.AddPool("DEX", "silver", "gold") },
		func() error { return eco.AddHolding("alice", "gold", decimal.NewFromInt(100)) },
		func() error { return eco.AddHolding("alice", "silver", decimal.NewFromInt(50)) },
		func() error { return eco.AddHolding("bob", "silver", decimal.NewFromInt(80)) },
		func() error { return eco.Deposit("DEX", "gold", decimal.NewFromInt(20), "alice") },
		func() error { return eco.Deposit("DEX", "silver", decimal.NewFromInt(20), "bob") },
	}

	for _, step := range steps {
		if err := step(); err != nil {
			return err
		}
	}

	return nil
}
