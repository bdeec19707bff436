package sqlite

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/kdziekansky/telegram2/internal/domain"
)

// ─── Credit Store ───────────────────────────────────────────────────────────
// Implements domain.CreditStore. Debit and Credit each run inside one SQL
// transaction: the balance row and the ledger row commit together or not
// at all.

// Balance returns the current balance, 0 for unknown users.
func (db *DB) Balance(userID int64) (int64, error) {
	var current int64
	err := db.db.QueryRow(
		`SELECT current FROM credit_balances WHERE user_id = ?`, userID,
	).Scan(&current)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("query balance: %w", err)
	}
	return current, nil
}

// Debit atomically decrements the balance and appends the ledger row.
// The decrement is conditional — "WHERE current >= cost" re-validates the
// balance at write time, so a stale earlier read can never drive the
// balance negative. Zero rows affected means insufficient funds.
func (db *DB) Debit(userID int64, cost int64, tx domain.CreditTransaction) (int64, error) {
	sqlTx, err := db.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("begin debit: %w", err)
	}
	defer sqlTx.Rollback()

	res, err := sqlTx.Exec(
		`UPDATE credit_balances SET current = current - ? WHERE user_id = ? AND current >= ?`,
		cost, userID, cost,
	)
	if err != nil {
		return 0, fmt.Errorf("debit balance: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("debit balance: %w", err)
	}
	if n == 0 {
		return 0, domain.ErrInsufficientCredits
	}

	if err := insertTransaction(sqlTx, tx); err != nil {
		return 0, err
	}

	var newBalance int64
	if err := sqlTx.QueryRow(
		`SELECT current FROM credit_balances WHERE user_id = ?`, userID,
	).Scan(&newBalance); err != nil {
		return 0, fmt.Errorf("reread balance: %w", err)
	}

	if err := sqlTx.Commit(); err != nil {
		return 0, fmt.Errorf("commit debit: %w", err)
	}
	return newBalance, nil
}

// Credit atomically increments the balance and appends the ledger row.
// Purchase rows also bump lifetime counters and the last-purchase stamp.
func (db *DB) Credit(userID int64, tx domain.CreditTransaction) (int64, error) {
	sqlTx, err := db.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("begin credit: %w", err)
	}
	defer sqlTx.Rollback()

	if _, err := sqlTx.Exec(
		`INSERT INTO credit_balances (user_id, current) VALUES (?, 0)
		 ON CONFLICT(user_id) DO NOTHING`, userID,
	); err != nil {
		return 0, fmt.Errorf("ensure balance row: %w", err)
	}

	if tx.Kind == domain.TxPurchase {
		if _, err := sqlTx.Exec(
			`UPDATE credit_balances SET
				current         = current + ?,
				total_purchased = total_purchased + ?,
				total_spent     = total_spent + ?,
				last_purchase   = ?
			 WHERE user_id = ?`,
			tx.Amount, tx.Amount, tx.Price, formatTime(tx.CreatedAt), userID,
		); err != nil {
			return 0, fmt.Errorf("credit balance: %w", err)
		}
	} else {
		if _, err := sqlTx.Exec(
			`UPDATE credit_balances SET current = current + ? WHERE user_id = ?`,
			tx.Amount, userID,
		); err != nil {
			return 0, fmt.Errorf("credit balance: %w", err)
		}
	}

	if err := insertTransaction(sqlTx, tx); err != nil {
		return 0, err
	}

	var newBalance int64
	if err := sqlTx.QueryRow(
		`SELECT current FROM credit_balances WHERE user_id = ?`, userID,
	).Scan(&newBalance); err != nil {
		return 0, fmt.Errorf("reread balance: %w", err)
	}

	if err := sqlTx.Commit(); err != nil {
		return 0, fmt.Errorf("commit credit: %w", err)
	}
	return newBalance, nil
}

func insertTransaction(sqlTx *sql.Tx, tx domain.CreditTransaction) error {
	_, err := sqlTx.Exec(
		`INSERT INTO credit_transactions (id, user_id, amount, kind, description, price, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		tx.ID, tx.UserID, tx.Amount, string(tx.Kind), tx.Description, tx.Price, formatTime(tx.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("append transaction: %w", err)
	}
	return nil
}

// BalanceRow returns the full denormalized row, zero row for unknown users.
func (db *DB) BalanceRow(userID int64) (domain.CreditBalance, error) {
	row := domain.CreditBalance{UserID: userID}
	var lastPurchase sql.NullString
	err := db.db.QueryRow(
		`SELECT current, total_purchased, total_spent, last_purchase
		 FROM credit_balances WHERE user_id = ?`, userID,
	).Scan(&row.Current, &row.TotalPurchased, &row.TotalSpent, &lastPurchase)
	if err == sql.ErrNoRows {
		return row, nil
	}
	if err != nil {
		return row, fmt.Errorf("query balance row: %w", err)
	}
	if lastPurchase.Valid {
		t, err := parseTime(lastPurchase.String)
		if err != nil {
			return row, fmt.Errorf("query balance row: %w", err)
		}
		row.LastPurchase = &t
	}
	return row, nil
}

// Recent returns up to n transactions, newest first. Ties on the second
// break by insertion order.
func (db *DB) Recent(userID int64, n int) ([]domain.CreditTransaction, error) {
	rows, err := db.db.Query(
		`SELECT id, user_id, amount, kind, description, price, created_at
		 FROM credit_transactions WHERE user_id = ?
		 ORDER BY created_at DESC, rowid DESC LIMIT ?`, userID, n,
	)
	if err != nil {
		return nil, fmt.Errorf("query transactions: %w", err)
	}
	defer rows.Close()
	return scanTransactions(rows)
}

// DebitsSince returns debit transactions created at or after since,
// newest first.
func (db *DB) DebitsSince(userID int64, since time.Time) ([]domain.CreditTransaction, error) {
	rows, err := db.db.Query(
		`SELECT id, user_id, amount, kind, description, price, created_at
		 FROM credit_transactions
		 WHERE user_id = ? AND kind = ? AND created_at >= ?
		 ORDER BY created_at DESC, rowid DESC`,
		userID, string(domain.TxDebit), formatTime(since),
	)
	if err != nil {
		return nil, fmt.Errorf("query debits: %w", err)
	}
	defer rows.Close()
	return scanTransactions(rows)
}

// TransactionSum recomputes the signed sum of the user's ledger for the
// reconciliation invariant.
func (db *DB) TransactionSum(userID int64) (int64, error) {
	var sum int64
	err := db.db.QueryRow(
		`SELECT COALESCE(SUM(amount), 0) FROM credit_transactions WHERE user_id = ?`, userID,
	).Scan(&sum)
	if err != nil {
		return 0, fmt.Errorf("sum transactions: %w", err)
	}
	return sum, nil
}

func scanTransactions(rows *sql.Rows) ([]domain.CreditTransaction, error) {
	var out []domain.CreditTransaction
	for rows.Next() {
		var tx domain.CreditTransaction
		var kind, created string
		if err := rows.Scan(&tx.ID, &tx.UserID, &tx.Amount, &kind, &tx.Description, &tx.Price, &created); err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		tx.Kind = domain.TransactionKind(kind)
		var err error
		if tx.CreatedAt, err = parseTime(created); err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		out = append(out, tx)
	}
	return out, rows.Err()
}
