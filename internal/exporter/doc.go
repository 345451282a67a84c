// Package exporter writes the output tables of a panel run.
//
// CSVWriter is the low-level writer. It hands out a StreamWriter per file,
// which writes the header and then one record at a time.
//
// The four output tables (EpisodesTable, PricesTable, ConflictPanelTable and
// NewsPanelTable) implement Table and fix the column order of each file.
//
// OutputWriter commits a run. The target directory must not exist; tables are
// staged in a hidden sibling directory which is renamed into place only after
// every table was written, so a failed run leaves no partial output behind.
//
// Example usage:
//
//	writer := exporter.NewOutputWriter("outputs", logger)
//	counts, err := writer.WriteAll(ctx,
//	    exporter.EpisodesTable{FileName: "Armed Conflict Dataset.csv", Episodes: episodes},
//	    exporter.PricesTable{FileName: "Bloomberg.csv", Prices: prices},
//	)
package exporter
