// Package lotfolio reconstructs investor positions and tax lots from a
// chronological transaction log.
//
// Given the full set of BUY, SELL, DEPOSIT, WITHDRAW and ADJUST transactions
// of a portfolio, the engine replays them date by date and derives, for every
// date present in the log, a per-symbol Position (quantity, cost basis,
// realized P/L) together with the lot-level detail behind the latest
// snapshot: which shares were bought when, at what price, and how and when
// they were closed.
//
// The core pieces are:
//   - LotBuilder: a per-symbol FIFO matcher maintaining open long and short
//     lot queues and emitting closed lots as positions are reduced.
//   - The cash ledger: a lot-free running balance for the reserved cash
//     symbol, fed by deposits, withdrawals, trade proceeds and adjustments.
//   - BuildPositions: the per-date walk that composes both into the full
//     historical series of Position snapshots.
//   - Rebuilder: the orchestrator that decides when to replay and atomically
//     replaces the persisted rows through a Store.
//
// Positions and lots are entirely derived: every reconstruction discards the
// previous rows and regenerates them from scratch, so the engine carries no
// state across calls. All arithmetic is exact decimal arithmetic with a
// single quantity tolerance below which residues are snapped to zero.
//
// This package is the foundational logic for the `lf` command-line tool.
package lotfolio
