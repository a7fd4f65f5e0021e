package lotfolio

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog"
)

// Store is the persistence boundary of the engine. The transaction log is
// read-only input; the derived Position and Lot rows are exclusively owned
// by the Rebuilder, which replaces them wholesale on every reconstruction.
//
// ReplacePositions must be atomic: a reader may never observe a half-rebuilt
// portfolio.
type Store interface {
	// Transactions returns every transaction of the portfolio, in any order.
	Transactions(ctx context.Context, portfolio string) ([]Transaction, error)
	// HasPositions reports whether any derived rows exist for the portfolio.
	HasPositions(ctx context.Context, portfolio string) (bool, error)
	// ReplacePositions atomically swaps all derived rows of the portfolio
	// for the given series. The lots back the latest date's positions.
	ReplacePositions(ctx context.Context, portfolio string, positions []Position, lots []Lot) error
}

// Rebuilder drives reconstructions end to end: it loads the transaction set,
// replays it through BuildPositions, and atomically replaces the persisted
// rows. Rebuilds of the same portfolio are serialized; different portfolios
// run concurrently without coordination.
type Rebuilder struct {
	store Store
	log   zerolog.Logger

	mu    sync.Mutex
	locks map[string]*sync.Mutex // per-portfolio
}

// NewRebuilder creates a Rebuilder over the given store.
func NewRebuilder(store Store, log zerolog.Logger) *Rebuilder {
	return &Rebuilder{
		store: store,
		log:   log.With().Str("component", "rebuilder").Logger(),
		locks: make(map[string]*sync.Mutex),
	}
}

// Refresh is the lazy trigger: it rebuilds only when the portfolio has
// transactions but no persisted positions, i.e. it was never built. Any
// transaction mutation should use Rebuild instead.
func (r *Rebuilder) Refresh(ctx context.Context, portfolio string) error {
	lock := r.portfolioLock(portfolio)
	lock.Lock()
	defer lock.Unlock()

	txs, err := r.store.Transactions(ctx, portfolio)
	if err != nil {
		return fmt.Errorf("loading transactions for %q: %w", portfolio, err)
	}
	if len(txs) == 0 {
		return nil
	}
	built, err := r.store.HasPositions(ctx, portfolio)
	if err != nil {
		return fmt.Errorf("checking positions for %q: %w", portfolio, err)
	}
	if built {
		return nil
	}
	return r.rebuild(ctx, portfolio, txs)
}

// Rebuild is the forced trigger: a full replay of the current transaction
// set, regardless of what is persisted. Callers invoke it after any
// transaction mutation (add, edit, delete, bulk delete or import commit)
// because FIFO matching is not incrementally updatable.
func (r *Rebuilder) Rebuild(ctx context.Context, portfolio string) error {
	lock := r.portfolioLock(portfolio)
	lock.Lock()
	defer lock.Unlock()

	txs, err := r.store.Transactions(ctx, portfolio)
	if err != nil {
		return fmt.Errorf("loading transactions for %q: %w", portfolio, err)
	}
	return r.rebuild(ctx, portfolio, txs)
}

// rebuild runs the replay and swaps the derived rows. A failed replay leaves
// the previous snapshot set authoritative: nothing is persisted unless the
// whole series was computed.
func (r *Rebuilder) rebuild(ctx context.Context, portfolio string, txs []Transaction) error {
	positions, lots, err := BuildPositions(txs)
	if err != nil {
		return fmt.Errorf("rebuilding %q: %w", portfolio, err)
	}
	if err := r.store.ReplacePositions(ctx, portfolio, positions, lots); err != nil {
		return fmt.Errorf("persisting positions for %q: %w", portfolio, err)
	}
	r.log.Debug().
		Str("portfolio", portfolio).
		Int("transactions", len(txs)).
		Int("positions", len(positions)).
		Int("lots", len(lots)).
		Msg("rebuilt positions")
	return nil
}

func (r *Rebuilder) portfolioLock(portfolio string) *sync.Mutex {
	r.mu.Lock()
	defer r.mu.Unlock()
	lock, ok := r.locks[portfolio]
	if !ok {
		lock = &sync.Mutex{}
		r.locks[portfolio] = lock
	}
	return lock
}
