package serviceJournal

import (
	"database/sql"
	"fmt"
	"log"
	"sort"
	"strings"

	"simustruct/storage"
)

type logEntry struct {
	Time     string
	Origin   string // account for mutations, remote address for accesses
	Action   string // mutation action or request path
	Status   int    // optional: HTTP status
	Duration float64
	Detail   string // optional: asset, amount, exchange/pool
}

// ShowLastLog prints the last <count> mutation journal entries and the
// last <count> access log entries to the console, newest first.
func ShowLastLog(count int) {
	db := storage.GetDatabase()

	q1 := `SELECT time,action,account,asset,amount,detail FROM transaction_log ORDER BY time DESC LIMIT ?`
	res1, err := db.Query(q1, count)
	if err != nil {
		log.Fatalf("transaction log query failed: %v", err)
	}

	var logs []logEntry
	for res1.Next() {
		logs = append(logs, packLogTransaction(res1))
	}

	res1.Close()

	q2 := `SELECT time,duration,path,status,address FROM access_log ORDER BY time DESC LIMIT ?`
	res2, err := db.Query(q2, count)
	if err != nil {
		log.Fatalf("access log query failed: %v", err)
	}

	for res2.Next() {
		logs = append(logs, packLogAccess(res2))
	}

	res2.Close()

	sort.Slice(logs, func(i, j int) bool {
		// newest first
		return logs[i].Time > logs[j].Time
	})

	for _, l := range logs {
		fmt.Println(l.String())
	}
}

func packLogTransaction(row *sql.Rows) logEntry {
	var l logEntry
	var asset string
	var amount float64

	err := row.Scan(&l.Time, &l.Action, &l.Origin, &asset, &amount, &l.Detail)
	if err != nil {
		log.Fatalf("scan transaction log: %v", err)
	}

	l.Detail = strings.TrimSpace(fmt.Sprintf("%v %.3f %v", asset, amount, l.Detail))

	return l
}

func packLogAccess(row *sql.Rows) logEntry {
	var l logEntry

	err := row.Scan(&l.Time, &l.Duration, &l.Action, &l.Status, &l.Origin)
	if err != nil {
		log.Fatalf("scan access log: %v", err)
	}

	return l
}

func (l logEntry) String() string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("%v|%v|%v|", l.Time, l.Origin, l.Action))

	if l.Status != 0 {
		sb.WriteString(fmt.Sprintf("%.3f sec|ACCESS|%v", l.Duration, l.Status))
	} else {
		sb.WriteString(fmt.Sprintf("LEDGER|%v", l.Detail))
	}

	return sb.String()
}

// ResetLog clears both the mutation journal and the access log.
func ResetLog() {
	db := storage.GetDatabase()

	for _, table := range []string{"transaction_log", "access_log"} {
		res, err := db.Exec(fmt.Sprintf("DELETE FROM %v", table))
		if err != nil {
			log.Fatalf("failed clearing %v: %v", table, err)
		}

		n, err := res.RowsAffected()
		if err != nil {
			log.Fatalf("clearing %v row count failed: %v", table, err)
		}
		log.Printf("Cleared %v rows from %v.\n", n, table)
	}
}
