package storage

import (
	"database/sql"
	"fmt"
	"log"
	"os"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	"simustruct/entity"
)

const defaultDbFile = "simustruct.sqlite3"

type Database struct {
	*sql.DB
}

var db *Database
var dbMu sync.Mutex

// GetDatabase returns the process-wide database, opening (and if needed
// initializing) the default file on first use.
func GetDatabase() *Database {
	dbMu.Lock()
	defer dbMu.Unlock()

	if db != nil {
		return db
	}

	var err error
	db, err = Open(defaultDbFile)
	if err != nil {
		log.Fatalf("could not open database: %v\n", err)
	}

	return db
}

// Open opens the given sqlite file, creating the schema when the file
// did not exist before.
func Open(file string) (*Database, error) {
	freshlyCreated := false
	if _, err := os.Stat(file); os.IsNotExist(err) {
		freshlyCreated = true
		f, err := os.Create(file)
		if err != nil {
			return nil, fmt.Errorf("could not create file %v: %v", file, err)
		}
		f.Close()
	}

	sqlite3Db, err := sql.Open("sqlite3", file)
	if err != nil {
		return nil, err
	}

	d := &Database{sqlite3Db}

	// enable foreign keys
	if _, err = d.Exec("PRAGMA foreign_keys = ON;"); err != nil {
		return nil, fmt.Errorf("could not activate foreign key checks: %v", err)
	}

	if freshlyCreated {
		if err = d.initDatabase(); err != nil {
			return nil, err
		}
	}

	return d, nil
}

func (db *Database) initDatabase() error {
	queries := []string{
		`CREATE TABLE assets (
    name varchar(64) PRIMARY KEY,
    total_supply real NOT NULL
                      )`,
		`CREATE TABLE accounts (owner varchar(64) PRIMARY KEY)`,
		`CREATE TABLE holdings (
    owner varchar(64),
    asset varchar(64),
    amount real NOT NULL,
    PRIMARY KEY (owner, asset),
    FOREIGN KEY (owner) REFERENCES accounts (owner)
                      )`,
		`CREATE TABLE exchanges (name varchar(64) PRIMARY KEY)`,
		`CREATE TABLE pools (
    exchange varchar(64),
    pool_key varchar(129),
    asset varchar(64),
    reserve real NOT NULL,
    PRIMARY KEY (exchange, pool_key, asset),
    FOREIGN KEY (exchange) REFERENCES exchanges (name)
                      )`,
		`CREATE TABLE transaction_log (
    time varchar(64),
    action varchar(16),
    account varchar(64),
    asset varchar(64),
    amount real,
    detail varchar(255)
                      )`,
		`CREATE TABLE access_log (
    time varchar(64),
    duration real,
    path varchar(255),
    status int,
    address varchar(64)
                      )`,
	}

	for _, q := range queries {
		if _, err := db.Exec(q); err != nil {
			return fmt.Errorf("could not create schema: %v", err)
		}
	}

	return nil
}

func (db *Database) SaveAsset(asset *entity.Asset) error {
	supply, _ := asset.TotalSupply.Float64()

	q := `INSERT OR REPLACE INTO assets (name, total_supply) VALUES (?, ?)`
	_, err := db.Exec(q, asset.Name, supply)
	if err != nil {
		return fmt.Errorf("save asset %v failed: %v", asset.Name, err)
	}

	return nil
}

func (db *Database) GetAssets() ([]*entity.Asset, error) {
	var assets []*entity.Asset

	q := `SELECT name, total_supply FROM assets ORDER BY name`
	res, err := db.Query(q)
	if err != nil {
		return nil, fmt.Errorf("query assets failed: %v", err)
	}
	defer res.Close()

	for res.Next() {
		var name string
		var supply float64
		if err := res.Scan(&name, &supply); err != nil {
			return nil, fmt.Errorf("scan assets failed: %v", err)
		}

		asset := entity.NewAsset(name)
		asset.TotalSupply = decimal.NewFromFloat(supply)
		assets = append(assets, asset)
	}

	return assets, nil
}

// SaveAccount stores the account and its full holdings. Holdings are
// rewritten wholesale so that keys deleted in memory disappear from the
// database as well.
func (db *Database) SaveAccount(acc *entity.Account) error {
	q1 := `INSERT OR REPLACE INTO accounts (owner) VALUES (?)`
	if _, err := db.Exec(q1, acc.Owner); err != nil {
		return fmt.Errorf("save account %v failed: %v", acc.Owner, err)
	}

	q2 := `DELETE FROM holdings WHERE owner = ?`
	if _, err := db.Exec(q2, acc.Owner); err != nil {
		return fmt.Errorf("clear holdings for account %v failed: %v", acc.Owner, err)
	}

	for name, balance := range acc.Holdings {
		amount, _ := balance.Float64()

		q3 := `INSERT INTO holdings (owner, asset, amount) VALUES (?, ?, ?)`
		if _, err := db.Exec(q3, acc.Owner, name, amount); err != nil {
			return fmt.Errorf("insert holding %v for account %v failed: %v", name, acc.Owner, err)
		}
	}

	return nil
}

func (db *Database) GetAccounts() ([]*entity.Account, error) {
	var accList []*entity.Account

	q := `SELECT owner FROM accounts ORDER BY owner`
	res, err := db.Query(q)
	if err != nil {
		return nil, fmt.Errorf("query accounts failed: %v", err)
	}
	defer res.Close()

	for res.Next() {
		var owner string
		if err = res.Scan(&owner); err != nil {
			return nil, fmt.Errorf("scan account row failed: %v", err)
		}

		accList = append(accList, entity.NewAccount(owner))
	}

	for _, acc := range accList {
		if err = db.getAccountHoldings(acc); err != nil {
			return nil, err
		}
	}

	return accList, nil
}

func (db *Database) getAccountHoldings(acc *entity.Account) error {
	q := `SELECT asset, amount FROM holdings WHERE owner = ? ORDER BY asset`
	res, err := db.Query(q, acc.Owner)
	if err != nil {
		return fmt.Errorf("query account's holdings failed: %v", err)
	}
	defer res.Close()

	for res.Next() {
		var name string
		var amount float64
		if err = res.Scan(&name, &amount); err != nil {
			return fmt.Errorf("scan account's holding failed: %v", err)
		}

		acc.Holdings[name] = decimal.NewFromFloat(amount)
	}

	return nil
}

// SaveExchange stores the exchange and all its pools. Pool rows are
// rewritten in pool order; rowid order restores insertion order on
// load, which Deposit's first-match scan depends on.
func (db *Database) SaveExchange(ex *entity.Exchange) error {
	q1 := `INSERT OR REPLACE INTO exchanges (name) VALUES (?)`
	if _, err := db.Exec(q1, ex.Name); err != nil {
		return fmt.Errorf("save exchange %v failed: %v", ex.Name, err)
	}

	q2 := `DELETE FROM pools WHERE exchange = ?`
	if _, err := db.Exec(q2, ex.Name); err != nil {
		return fmt.Errorf("clear pools for exchange %v failed: %v", ex.Name, err)
	}

	for _, pool := range ex.Pools {
		for name, reserve := range pool.Reserves {
			amount, _ := reserve.Float64()

			q3 := `INSERT INTO pools (exchange, pool_key, asset, reserve) VALUES (?, ?, ?, ?)`
			if _, err := db.Exec(q3, ex.Name, pool.Key, name, amount); err != nil {
				return fmt.Errorf("insert pool %v for exchange %v failed: %v", pool.Key, ex.Name, err)
			}
		}
	}

	return nil
}

func (db *Database) GetExchanges() ([]*entity.Exchange, error) {
	var exList []*entity.Exchange

	q := `SELECT name FROM exchanges ORDER BY name`
	res, err := db.Query(q)
	if err != nil {
		return nil, fmt.Errorf("query exchanges failed: %v", err)
	}
	defer res.Close()

	for res.Next() {
		var name string
		if err = res.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan exchange row failed: %v", err)
		}

		exList = append(exList, entity.NewExchange(name))
	}

	for _, ex := range exList {
		if err = db.getExchangePools(ex); err != nil {
			return nil, err
		}
	}

	return exList, nil
}

func (db *Database) getExchangePools(ex *entity.Exchange) error {
	q := `SELECT pool_key, asset, reserve FROM pools WHERE exchange = ? ORDER BY rowid`
	res, err := db.Query(q, ex.Name)
	if err != nil {
		return fmt.Errorf("query exchange's pools failed: %v", err)
	}
	defer res.Close()

	pools := make(map[string]*entity.Pool)
	for res.Next() {
		var key, name string
		var reserve float64
		if err = res.Scan(&key, &name, &reserve); err != nil {
			return fmt.Errorf("scan exchange's pool failed: %v", err)
		}

		pool, ok := pools[key]
		if !ok {
			pool = &entity.Pool{
				Key:      key,
				Reserves: make(map[string]decimal.Decimal),
			}
			pools[key] = pool
			ex.Pools = append(ex.Pools, pool)
		}

		pool.Reserves[name] = decimal.NewFromFloat(reserve)
	}

	return nil
}

type TransactionLogEntry struct {
	Time    time.Time
	Action  string
	Account string
	Asset   string
	Amount  decimal.Decimal
	Detail  string
}

func (db *Database) LogTransaction(entry TransactionLogEntry) error {
	amount, _ := entry.Amount.Float64()

	q := `INSERT INTO transaction_log (time, action, account, asset, amount, detail) VALUES (?, ?, ?, ?, ?, ?)`
	_, err := db.Exec(q, entry.Time.Format(time.RFC3339Nano), entry.Action, entry.Account, entry.Asset, amount, entry.Detail)
	if err != nil {
		return fmt.Errorf("write transaction log failed: %v", err)
	}

	return nil
}

type AccessLogEntry struct {
	Time          time.Time
	Duration      float64
	Path          string
	StatusCode    int
	RemoteAddress string
}

func (db *Database) LogAccess(entry AccessLogEntry) error {
	q := `INSERT INTO access_log (time, duration, path, status, address) VALUES (?, ?, ?, ?, ?)`
	_, err := db.Exec(q, entry.Time.Format(time.RFC3339Nano), entry.Duration, entry.Path, entry.StatusCode, entry.RemoteAddress)
	if err != nil {
		return fmt.Errorf("write access log failed: %v", err)
	}

	return nil
}
