// Package dataprocessing turns the raw research inputs into the tables the
// panels are built from.
//
// # Inputs
//
// The package reads four sources:
//
//   - the UCDP/PRIO armed conflict workbook (ParseConflicts)
//   - the SIPRI arms-industry revenue ranking (ParseRevenue)
//   - the Bloomberg company and index CSV exports (LoadPriceFeed, LoadIndexFeed)
//   - the coded LexisNexis content-analysis workbook (LoadContent)
//
// Workbooks are read with excelize using raw cell values, so date cells
// arrive as Excel serial numbers and are converted with ExcelDateToTime.
//
// # Transformations
//
// NormalizeEpisodes resolves the two recorded start dates of a conflict into
// one authoritative start per episode and splits first episodes whose dates
// lie more than SplitGapDays apart into an additional zero episode.
//
// QualifiedCompanies keeps firms whose arms sales are at least the configured
// share of total sales.
//
// ConsolidateMarket merges the price feeds, drops unusable rows, attaches the
// country index and builds the trading calendar.
//
// MatchEpisodes attributes every episode to the first trading date of every
// market country, discarding dates more than MaxGapDays after the start.
//
// JoinConflictPanel and JoinNewsPanel produce the two output panels.
//
// # Data Flow
//
//	conflict workbook → ParseConflicts → NormalizeEpisodes ─┐
//	revenue workbook  → ParseRevenue → QualifiedCompanies   │
//	price/index feeds → ConsolidateMarket ──────────────────┼→ MatchEpisodes → JoinConflictPanel
//	content workbook  → LoadContent → AdaptContent ─────────┴──────────────────→ JoinNewsPanel
//
// # Error Handling
//
// Unreadable files, missing columns and unparsable values are returned as
// typed errors from conflictpanel/internal/errors (STORAGE, SCHEMA, PARSING)
// with the file and row attached as context.
package dataprocessing
