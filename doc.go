// Package folio is a valuation and snapshot engine for investment portfolios.
// It is designed to be deterministic and auditable: every figure it produces
// can be replayed from the transaction ledger and the price history that
// produced it.
//
// The core functionalities include:
//   - Position Reconstruction: Replaying a portfolio's transaction ledger
//     (buys, sells, dividends, coupons, bonus capital increases, rights
//     issues) into derived holdings as of any date.
//   - Valuation: Converting holdings into a reporting currency through a
//     price and FX oracle, with per-line staleness tracking when market data
//     is unavailable.
//   - Money-Weighted Returns: An XIRR solver for irregular cash-flow series,
//     used to annualize a portfolio's performance since inception.
//   - Snapshots: Immutable point-in-time records of portfolios, cash-flow
//     streams, salary/savings streams and dividend income, persisted with
//     human-readable unique slugs and comparable along their series.
//
// This package serves as the foundational logic for the `folio` command-line
// tool; the quotes, store and scheduler subpackages supply market data,
// persistence and recurring snapshot jobs.
package folio
