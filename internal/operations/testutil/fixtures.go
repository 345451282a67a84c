package testutil

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"conflictpanel/internal/config"
)

// Expected row counts of the tables produced from WriteInputs
const (
	FixtureEpisodes      = 3
	FixturePrices        = 2
	FixtureConflictPanel = 2
	FixtureNewsPanel     = 3
)

// Day returns midnight UTC of the given date
func Day(y, m, d int) time.Time {
	return time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)
}

// NewTestConfig returns the default configuration rooted at baseDir with
// telemetry and file logging switched off
func NewTestConfig(baseDir string) *config.Config {
	cfg := config.Default()
	cfg.BaseDir = baseDir
	cfg.Logging.Output = "console"
	cfg.Telemetry.TraceExporter = "none"
	cfg.Telemetry.MetricExporter = "none"
	return cfg
}

// WriteInputs writes a small but complete set of inputs into the configured
// input directory:
//   - conflict 100 starts on 2020-01-15; conflict 200 is split into an
//     episode on 2020-01-16 and a zero episode on 2019-12-01; conflict 300
//     has no precise start
//   - Lockheed qualifies on arms share, Boeing does not
//   - Lockheed trades on 2020-01-15 and 2020-01-16 in the US
//   - two news items are dated 2020-01-15 and one is undated
func WriteInputs(t *testing.T, cfg *config.Config) *config.Paths {
	t.Helper()

	paths, err := config.GetPaths(cfg)
	require.NoError(t, err)
	require.NoError(t, os.MkdirAll(paths.InputDir, 0755))

	WriteWorkbook(t, paths.ConflictWorkbook, "Sheet1", [][]interface{}{
		{"conflict_id", "location", "side_a", "side_b", "incompatibility", "territory_name",
			"year", "intensity_level", "type_of_conflict", "start_date", "start_prec",
			"start_date2", "start_prec2", "region", "version"},
		{100, "Ukraine", "Government of Ukraine", "Insurgents", 1, "Donetsk", 2020, 2, 3,
			Day(2020, 1, 15), 1, Day(2020, 1, 15), 1, "1", "20.1"},
		{200, "Mali", "Government of Mali", "AQIM", 2, "", 2020, 2, 4,
			Day(2019, 12, 1), 2, Day(2020, 1, 16), 1, "4", "20.1"},
		{300, "Chad", "Government of Chad", "FACT", 2, "", 2020, 1, 3,
			Day(2020, 1, 1), 4, Day(2020, 1, 1), 5, "4", "20.1"},
	})

	WriteWorkbook(t, paths.RevenueWorkbook, cfg.Inputs.RevenueSheet, [][]interface{}{
		{"The SIPRI Top 100 arms-producing and military services companies, 2018"},
		{"Figures are in US$ millions"},
		{},
		{"Rank 2018", "Company (c)", "Country", "Arms sales as a % of total sales (2018)"},
		{1, "Lockheed", "USA", 90},
		{2, "Boeing", "USA", 29},
		{3, "Almaz-Antey", "Russia", ". ."},
	})

	priceHeader := "Dates,company_ticker,company_name,otc,PX_LAST,BOOK_VAL_PER_SH,PX_TO_BOOK_RATIO,CUR_MKT_CAP,country"
	WriteCSV(t, paths.PricesUSCSV, "\ufeff"+priceHeader,
		"15.01.2020,LMT US Equity,Lockheed,0,390.5,12.1,32.3,110000,US",
		"16.01.2020,LMT US Equity,Lockheed,0,391,12.1,32.4,110200,US",
		"#NAME?,LMT US Equity,Lockheed,0,,,,,US",
		"15.01.2020,BA US Equity,Boeing,0,330,,,,US",
	)
	WriteCSV(t, paths.PricesOtherCSV, priceHeader,
		"15.01.2020,BA/ LN Equity,BAE,0,6.1,,,,UK",
	)
	WriteCSV(t, paths.IndicesCSV, "Dates,index_name,PX_LAST,country",
		"15.01.2020,SPX,3289.29,US",
		"16.01.2020,SPX,3316.81,US",
	)

	WriteWorkbook(t, paths.ContentWorkbook, cfg.Inputs.ContentSheet, [][]interface{}{
		{"article_id", "date", "conflict_episode_id", "conflict_id", "start_date3", "location", "tone"},
		{"A1", Day(2020, 1, 15), "100_20200115", 100, Day(2020, 1, 15), "Ukraine", -2},
		{"A2", Day(2020, 1, 15), "", "", "", "", 1},
		{"A3", "", "", "", "", "", 0},
	})

	return paths
}

// WriteWorkbook saves rows into a single-sheet workbook at path
func WriteWorkbook(t *testing.T, path, sheet string, rows [][]interface{}) {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	if sheet != "Sheet1" {
		require.NoError(t, f.SetSheetName("Sheet1", sheet))
	}
	for i := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, cell, &rows[i]))
	}

	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, f.SaveAs(path))
}

// WriteCSV writes header and lines as a newline-terminated file
func WriteCSV(t *testing.T, path, header string, lines ...string) {
	t.Helper()
	content := header + "\n" + strings.Join(lines, "\n") + "\n"
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}
