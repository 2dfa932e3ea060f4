package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"bilancio/internal/core"
)

const transactionColumns = `t.id, t.type, t.amount_cents, t.date, t.category_id, t.description, c.name`

const transactionFrom = `FROM transactions t LEFT JOIN categories c ON c.id = t.category_id`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTransaction(s rowScanner) (core.TransactionView, error) {
	var (
		v        core.TransactionView
		date     string
		category sql.NullString
		desc     sql.NullString
		catName  sql.NullString
	)
	if err := s.Scan(&v.ID, &v.Type, &v.Amount.Cents, &date, &category, &desc, &catName); err != nil {
		return core.TransactionView{}, err
	}
	t, err := time.Parse(dateLayout, date)
	if err != nil {
		return core.TransactionView{}, fmt.Errorf("parse transaction date %q: %w", date, err)
	}
	v.Date = core.Date{Time: t}
	v.CategoryID = stringPtr(category)
	v.Description = stringPtr(desc)
	v.CategoryName = stringPtr(catName)
	return v, nil
}

// CreateTransaction inserts a transaction and returns it with its new id.
func (r *SQLiteRepository) CreateTransaction(ctx context.Context, tx core.Transaction) (core.Transaction, error) {
	tx.ID = newID()
	now := r.timestamp()
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO transactions (id, type, amount_cents, date, category_id, description, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		tx.ID, int(tx.Type), tx.Amount.Cents, tx.Date.String(), nullString(tx.CategoryID), nullString(tx.Description), now, now)
	if err != nil {
		return core.Transaction{}, mapError("create transaction", err)
	}

	slog.InfoContext(ctx, "Transaction saved to SQLite",
		"id", tx.ID,
		"type", tx.Type.String(),
		"amount_cents", tx.Amount.Cents,
		"date", tx.Date.String())
	return tx, nil
}

func (r *SQLiteRepository) GetTransaction(ctx context.Context, id string) (core.TransactionView, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+transactionColumns+` `+transactionFrom+` WHERE t.id = ?`, id)
	v, err := scanTransaction(row)
	if err != nil {
		return core.TransactionView{}, mapError("get transaction", err)
	}
	return v, nil
}

// UpdateTransaction replaces every mutable field of an existing transaction.
func (r *SQLiteRepository) UpdateTransaction(ctx context.Context, tx core.Transaction) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE transactions
		 SET type = ?, amount_cents = ?, date = ?, category_id = ?, description = ?, updated_at = ?
		 WHERE id = ?`,
		int(tx.Type), tx.Amount.Cents, tx.Date.String(), nullString(tx.CategoryID), nullString(tx.Description), r.timestamp(), tx.ID)
	if err != nil {
		return mapError("update transaction", err)
	}
	if err := expectOne(res); err != nil {
		return err
	}

	slog.InfoContext(ctx, "Transaction updated in SQLite", "id", tx.ID, "amount_cents", tx.Amount.Cents)
	return nil
}

func (r *SQLiteRepository) DeleteTransaction(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM transactions WHERE id = ?`, id)
	if err != nil {
		return mapError("delete transaction", err)
	}
	if err := expectOne(res); err != nil {
		return err
	}

	slog.InfoContext(ctx, "Transaction deleted from SQLite", "id", id)
	return nil
}

// ListTransactions returns transactions newest first (date desc, then type desc).
// A nil period lists everything.
func (r *SQLiteRepository) ListTransactions(ctx context.Context, p *core.Period) ([]core.TransactionView, error) {
	var (
		query strings.Builder
		args  []any
	)
	query.WriteString(`SELECT ` + transactionColumns + ` ` + transactionFrom)
	if p != nil {
		query.WriteString(` WHERE t.date >= ? AND t.date < ?`)
		args = append(args, p.Start().String(), p.End().String())
	}
	query.WriteString(` ORDER BY t.date DESC, t.type DESC, t.created_at DESC`)

	rows, err := r.db.QueryContext(ctx, query.String(), args...)
	if err != nil {
		return nil, mapError("list transactions", err)
	}
	defer rows.Close()

	txs := []core.TransactionView{}
	for rows.Next() {
		v, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		txs = append(txs, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transactions: %w", err)
	}
	return txs, nil
}
