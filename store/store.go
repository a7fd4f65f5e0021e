// Package store persists the transaction log and the derived position and
// lot rows in a single SQLite database.
//
// Transactions are the input side: collaborators insert and delete them and
// then ask the engine for a rebuild. Positions and lots are entirely
// derived; ReplacePositions swaps them wholesale inside one SQL transaction
// so a reader never observes a half-rebuilt portfolio.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	_ "modernc.org/sqlite" // pure Go SQLite driver

	"github.com/shafron/lotfolio"
)

// ErrNotFound reports a row that does not exist.
var ErrNotFound = errors.New("not found")

const schema = `
CREATE TABLE IF NOT EXISTS transactions (
	id            INTEGER PRIMARY KEY AUTOINCREMENT,
	portfolio     TEXT NOT NULL,
	seq           INTEGER NOT NULL,
	type          TEXT NOT NULL,
	as_of_date    TEXT NOT NULL,
	symbol        TEXT NOT NULL,
	quantity      TEXT NOT NULL,
	price         TEXT NOT NULL,
	total         TEXT NOT NULL,
	linked_symbol TEXT
);
CREATE INDEX IF NOT EXISTS idx_transactions_portfolio ON transactions(portfolio, as_of_date, seq);

CREATE TABLE IF NOT EXISTS positions (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	portfolio   TEXT NOT NULL,
	as_of_date  TEXT NOT NULL,
	symbol      TEXT NOT NULL,
	quantity    TEXT NOT NULL,
	cost_price  TEXT NOT NULL,
	cost_basis  TEXT NOT NULL,
	realized_pl TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_positions_portfolio ON positions(portfolio, as_of_date, symbol);

CREATE TABLE IF NOT EXISTS lots (
	id              INTEGER PRIMARY KEY AUTOINCREMENT,
	position_id     INTEGER NOT NULL REFERENCES positions(id),
	open_date       TEXT,
	quantity        TEXT NOT NULL,
	price           TEXT NOT NULL,
	total           TEXT NOT NULL,
	close_date      TEXT,
	closed_quantity TEXT NOT NULL,
	close_price     TEXT NOT NULL,
	closed_total    TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_lots_position ON lots(position_id);
`

// Store wraps the SQLite database holding transactions, positions and lots.
type Store struct {
	db  *sql.DB
	log zerolog.Logger
}

// Store is the persistence backend of the reconstruction orchestrator.
var _ lotfolio.Store = (*Store)(nil)

// Open opens (creating if needed) the database at the given path and applies
// the schema. Use "file:lotfolio?mode=memory&cache=shared" for an in-memory
// database.
func Open(path string, log zerolog.Logger) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database %q: %w", path, err)
	}
	// The sqlite driver serializes writes; one connection avoids
	// SQLITE_BUSY on concurrent rebuilds.
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("applying schema: %w", err)
	}
	return &Store{db: db, log: log.With().Str("component", "store").Logger()}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error { return s.db.Close() }

// InsertTransaction records a new transaction and returns its id. The
// insertion sequence is assigned monotonically per portfolio so FIFO order
// stays stable among same-date transactions.
func (s *Store) InsertTransaction(ctx context.Context, portfolio string, tx lotfolio.Transaction) (int64, error) {
	if err := tx.Validate(); err != nil {
		return 0, err
	}
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO transactions (portfolio, seq, type, as_of_date, symbol, quantity, price, total, linked_symbol)
		VALUES (?, (SELECT COALESCE(MAX(seq), 0) + 1 FROM transactions WHERE portfolio = ?), ?, ?, ?, ?, ?, ?, ?)`,
		portfolio, portfolio, string(tx.Type), tx.Date.String(), tx.Symbol,
		tx.Quantity.String(), tx.Price.Plain(), tx.Total.Plain(), nullable(tx.LinkedSymbol),
	)
	if err != nil {
		return 0, fmt.Errorf("inserting transaction: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("inserting transaction: %w", err)
	}
	s.log.Debug().Str("portfolio", portfolio).Int64("id", id).Stringer("date", tx.Date).Msg("transaction recorded")
	return id, nil
}

// DeleteTransaction removes one transaction. It returns ErrNotFound when the
// id does not belong to the portfolio.
func (s *Store) DeleteTransaction(ctx context.Context, portfolio string, id int64) error {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM transactions WHERE portfolio = ? AND id = ?`, portfolio, id)
	if err != nil {
		return fmt.Errorf("deleting transaction %d: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("deleting transaction %d: %w", id, err)
	}
	if n == 0 {
		return fmt.Errorf("transaction %d in %q: %w", id, portfolio, ErrNotFound)
	}
	return nil
}

// DeleteTransactions removes every transaction of the portfolio.
func (s *Store) DeleteTransactions(ctx context.Context, portfolio string) error {
	if _, err := s.db.ExecContext(ctx,
		`DELETE FROM transactions WHERE portfolio = ?`, portfolio); err != nil {
		return fmt.Errorf("deleting transactions of %q: %w", portfolio, err)
	}
	return nil
}

// Transactions returns the portfolio's full transaction log, newest first.
// The engine re-sorts ascending before replay.
func (s *Store) Transactions(ctx context.Context, portfolio string) ([]lotfolio.Transaction, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, seq, type, as_of_date, symbol, quantity, price, total, COALESCE(linked_symbol, '')
		FROM transactions WHERE portfolio = ? ORDER BY as_of_date DESC, seq DESC`, portfolio)
	if err != nil {
		return nil, fmt.Errorf("querying transactions of %q: %w", portfolio, err)
	}
	defer rows.Close()

	var txs []lotfolio.Transaction
	for rows.Next() {
		var tx lotfolio.Transaction
		var typ, date, quantity, price, total string
		if err := rows.Scan(&tx.ID, &tx.Seq, &typ, &date, &tx.Symbol, &quantity, &price, &total, &tx.LinkedSymbol); err != nil {
			return nil, fmt.Errorf("scanning transaction: %w", err)
		}
		if tx.Type, err = lotfolio.ParseTxType(typ); err != nil {
			return nil, err
		}
		if tx.Date, err = lotfolio.ParseDate(date); err != nil {
			return nil, err
		}
		if tx.Quantity, err = lotfolio.ParseQuantity(quantity); err != nil {
			return nil, fmt.Errorf("scanning transaction %d quantity: %w", tx.ID, err)
		}
		if tx.Price, err = lotfolio.ParseAmount(price); err != nil {
			return nil, fmt.Errorf("scanning transaction %d price: %w", tx.ID, err)
		}
		if tx.Total, err = lotfolio.ParseAmount(total); err != nil {
			return nil, fmt.Errorf("scanning transaction %d total: %w", tx.ID, err)
		}
		txs = append(txs, tx)
	}
	return txs, rows.Err()
}

// HasPositions reports whether any derived rows exist for the portfolio.
func (s *Store) HasPositions(ctx context.Context, portfolio string) (bool, error) {
	var one int
	err := s.db.QueryRowContext(ctx,
		`SELECT 1 FROM positions WHERE portfolio = ? LIMIT 1`, portfolio).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("checking positions of %q: %w", portfolio, err)
	}
	return true, nil
}

// ReplacePositions atomically swaps all derived rows of the portfolio:
// previous lots and positions are deleted and the new series inserted within
// one SQL transaction. Lot rows attach to the latest date's position of
// their symbol.
func (s *Store) ReplacePositions(ctx context.Context, portfolio string, positions []lotfolio.Position, lots []lotfolio.Lot) error {
	dbtx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("replacing positions of %q: %w", portfolio, err)
	}
	defer dbtx.Rollback()

	if _, err := dbtx.ExecContext(ctx, `
		DELETE FROM lots WHERE position_id IN (SELECT id FROM positions WHERE portfolio = ?)`,
		portfolio); err != nil {
		return fmt.Errorf("deleting lots of %q: %w", portfolio, err)
	}
	if _, err := dbtx.ExecContext(ctx,
		`DELETE FROM positions WHERE portfolio = ?`, portfolio); err != nil {
		return fmt.Errorf("deleting positions of %q: %w", portfolio, err)
	}

	var latest lotfolio.Date
	for _, p := range positions {
		if p.AsOf.After(latest) {
			latest = p.AsOf
		}
	}

	// Lots reference their owning position by generated id: remember the
	// ids of the latest date's rows while inserting.
	owners := make(map[string]int64)
	for _, p := range positions {
		res, err := dbtx.ExecContext(ctx, `
			INSERT INTO positions (portfolio, as_of_date, symbol, quantity, cost_price, cost_basis, realized_pl)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			portfolio, p.AsOf.String(), p.Symbol,
			p.Quantity.String(), p.CostPrice.Plain(), p.CostBasis.Plain(), p.RealizedPL.Plain(),
		)
		if err != nil {
			return fmt.Errorf("inserting position %s/%s: %w", p.Symbol, p.AsOf, err)
		}
		if p.AsOf == latest {
			id, err := res.LastInsertId()
			if err != nil {
				return fmt.Errorf("inserting position %s/%s: %w", p.Symbol, p.AsOf, err)
			}
			owners[p.Symbol] = id
		}
	}

	for _, l := range lots {
		owner, ok := owners[l.Symbol]
		if !ok {
			return fmt.Errorf("lot of %q has no owning position on %s", l.Symbol, latest)
		}
		if _, err := dbtx.ExecContext(ctx, `
			INSERT INTO lots (position_id, open_date, quantity, price, total, close_date, closed_quantity, close_price, closed_total)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			owner, nullableDate(l.OpenDate),
			l.Quantity.String(), l.Price.Plain(), l.Total.Plain(),
			nullableDate(l.CloseDate),
			l.ClosedQuantity.String(), l.ClosePrice.Plain(), l.ClosedTotal.Plain(),
		); err != nil {
			return fmt.Errorf("inserting lot of %q: %w", l.Symbol, err)
		}
	}

	if err := dbtx.Commit(); err != nil {
		return fmt.Errorf("replacing positions of %q: %w", portfolio, err)
	}
	return nil
}

// LatestPositions returns all positions of the portfolio's most recent
// snapshot date, ordered by symbol. An unbuilt portfolio yields an empty
// slice.
func (s *Store) LatestPositions(ctx context.Context, portfolio string) ([]lotfolio.Position, error) {
	return s.queryPositions(ctx, `
		SELECT id, symbol, as_of_date, quantity, cost_price, cost_basis, realized_pl
		FROM positions
		WHERE portfolio = ? AND as_of_date = (SELECT MAX(as_of_date) FROM positions WHERE portfolio = ?)
		ORDER BY symbol`, portfolio, portfolio)
}

// PositionHistory returns the full date series of one symbol, oldest first.
// Read alongside a price history, it backs performance charts.
func (s *Store) PositionHistory(ctx context.Context, portfolio, symbol string) ([]lotfolio.Position, error) {
	return s.queryPositions(ctx, `
		SELECT id, symbol, as_of_date, quantity, cost_price, cost_basis, realized_pl
		FROM positions
		WHERE portfolio = ? AND symbol = ?
		ORDER BY as_of_date`, portfolio, symbol)
}

func (s *Store) queryPositions(ctx context.Context, query string, args ...any) ([]lotfolio.Position, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying positions: %w", err)
	}
	defer rows.Close()

	var positions []lotfolio.Position
	for rows.Next() {
		var p lotfolio.Position
		var date, quantity, costPrice, costBasis, realized string
		if err := rows.Scan(&p.ID, &p.Symbol, &date, &quantity, &costPrice, &costBasis, &realized); err != nil {
			return nil, fmt.Errorf("scanning position: %w", err)
		}
		if p.AsOf, err = lotfolio.ParseDate(date); err != nil {
			return nil, err
		}
		if p.Quantity, err = lotfolio.ParseQuantity(quantity); err != nil {
			return nil, fmt.Errorf("scanning position %d quantity: %w", p.ID, err)
		}
		if p.CostPrice, err = lotfolio.ParseAmount(costPrice); err != nil {
			return nil, fmt.Errorf("scanning position %d cost price: %w", p.ID, err)
		}
		if p.CostBasis, err = lotfolio.ParseAmount(costBasis); err != nil {
			return nil, fmt.Errorf("scanning position %d cost basis: %w", p.ID, err)
		}
		if p.RealizedPL, err = lotfolio.ParseAmount(realized); err != nil {
			return nil, fmt.Errorf("scanning position %d realized pl: %w", p.ID, err)
		}
		positions = append(positions, p)
	}
	return positions, rows.Err()
}

// Lots returns the lot detail rows of one position, in the order the
// matcher emitted them.
func (s *Store) Lots(ctx context.Context, positionID int64) ([]lotfolio.Lot, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT p.symbol, l.open_date, l.quantity, l.price, l.total,
		       l.close_date, l.closed_quantity, l.close_price, l.closed_total
		FROM lots l JOIN positions p ON p.id = l.position_id
		WHERE l.position_id = ?
		ORDER BY l.id`, positionID)
	if err != nil {
		return nil, fmt.Errorf("querying lots of position %d: %w", positionID, err)
	}
	defer rows.Close()

	var lots []lotfolio.Lot
	for rows.Next() {
		var l lotfolio.Lot
		var openDate, closeDate sql.NullString
		var quantity, price, total, closedQuantity, closePrice, closedTotal string
		if err := rows.Scan(&l.Symbol, &openDate, &quantity, &price, &total,
			&closeDate, &closedQuantity, &closePrice, &closedTotal); err != nil {
			return nil, fmt.Errorf("scanning lot: %w", err)
		}
		if openDate.Valid {
			if l.OpenDate, err = lotfolio.ParseDate(openDate.String); err != nil {
				return nil, err
			}
		}
		if closeDate.Valid {
			if l.CloseDate, err = lotfolio.ParseDate(closeDate.String); err != nil {
				return nil, err
			}
		}
		if l.Quantity, err = lotfolio.ParseQuantity(quantity); err != nil {
			return nil, fmt.Errorf("scanning lot quantity: %w", err)
		}
		if l.Price, err = lotfolio.ParseAmount(price); err != nil {
			return nil, fmt.Errorf("scanning lot price: %w", err)
		}
		if l.Total, err = lotfolio.ParseAmount(total); err != nil {
			return nil, fmt.Errorf("scanning lot total: %w", err)
		}
		if l.ClosedQuantity, err = lotfolio.ParseQuantity(closedQuantity); err != nil {
			return nil, fmt.Errorf("scanning lot closed quantity: %w", err)
		}
		if l.ClosePrice, err = lotfolio.ParseAmount(closePrice); err != nil {
			return nil, fmt.Errorf("scanning lot close price: %w", err)
		}
		if l.ClosedTotal, err = lotfolio.ParseAmount(closedTotal); err != nil {
			return nil, fmt.Errorf("scanning lot closed total: %w", err)
		}
		lots = append(lots, l)
	}
	return lots, rows.Err()
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func nullableDate(d lotfolio.Date) any {
	if d.IsZero() {
		return nil
	}
	return d.String()
}
