package operations_test

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"conflictpanel/internal/config"
	apperrors "conflictpanel/internal/errors"
	"conflictpanel/internal/infrastructure"
	"conflictpanel/internal/operations"
	"conflictpanel/internal/operations/testutil"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func newPipeline(t *testing.T, cfg *config.Config) (*operations.Pipeline, *config.Paths) {
	t.Helper()
	paths, err := config.GetPaths(cfg)
	require.NoError(t, err)

	providers, err := infrastructure.InitializeOTel(cfg.Telemetry, quietLogger())
	require.NoError(t, err)
	t.Cleanup(func() { _ = providers.Shutdown(context.Background()) })

	pipeline, err := operations.NewPipeline(&operations.Dependencies{
		Config: cfg,
		Paths:  paths,
		Logger: quietLogger(),
	}, providers)
	require.NoError(t, err)
	return pipeline, paths
}

func TestPipeline_Run(t *testing.T) {
	cfg := testutil.NewTestConfig(t.TempDir())
	testutil.WriteInputs(t, cfg)
	pipeline, paths := newPipeline(t, cfg)

	manifest, err := pipeline.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "completed", manifest.Status)
	assert.Len(t, manifest.CompletedStages, 6)
	for _, st := range manifest.CompletedStages {
		assert.Equal(t, "completed", st.Status, st.StageID)
	}
	assert.Equal(t, map[string]int{
		paths.ConflictPanelCSV: testutil.FixtureConflictPanel,
		paths.NewsPanelCSV:     testutil.FixtureNewsPanel,
		paths.EpisodesCSV:      testutil.FixtureEpisodes,
		paths.PricesCSV:        testutil.FixturePrices,
	}, manifest.Outputs)

	require.NotNil(t, manifest.Stats)
	assert.Equal(t, 1, manifest.Stats.Episodes.Imprecise)
	assert.Equal(t, 1, manifest.Stats.Episodes.ZeroEpisodes)
	assert.Equal(t, 1, manifest.Stats.Revenue.Qualified)
	assert.Equal(t, 2, manifest.Stats.Matches.Matched)

	prices := testutil.ReadTable(t, paths.GetOutputPath(paths.PricesCSV))
	require.Len(t, prices, 1+testutil.FixturePrices)
	assert.Equal(t, "", prices[0][0])
	assert.Equal(t, []string{"0", "2020-01-15"}, prices[1][:2])

	panel := testutil.ReadTable(t, paths.GetOutputPath(paths.ConflictPanelCSV))
	header := panel[0]
	col := func(name string) int {
		for i, h := range header {
			if h == name {
				return i
			}
		}
		t.Fatalf("column %s missing", name)
		return -1
	}
	assert.Equal(t, "100_20200115", panel[1][col("conflict_episode_id")])
	assert.Equal(t, "200_20200116", panel[2][col("conflict_episode_id")])
	assert.Equal(t, "0 days", panel[2][col("difference_dates")])

	news := testutil.ReadTable(t, paths.GetOutputPath(paths.NewsPanelCSV))
	assert.Contains(t, news[0], "conflict_episode_id_news")
	assert.Len(t, news, 1+testutil.FixtureNewsPanel)

	_, err = os.Stat(paths.GetOutputPath(paths.ManifestJSON))
	assert.NoError(t, err)
}

func TestPipeline_RefusesExistingOutput(t *testing.T) {
	cfg := testutil.NewTestConfig(t.TempDir())
	testutil.WriteInputs(t, cfg)
	pipeline, paths := newPipeline(t, cfg)

	_, err := pipeline.Run(context.Background())
	require.NoError(t, err)
	before := testutil.ReadDir(t, paths.OutputDir)

	manifest, err := pipeline.Run(context.Background())
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeOutputExists))
	errType, _ := operations.GetErrorType(err)
	assert.Equal(t, operations.ErrorTypePreflight, errType)
	assert.Equal(t, "failed", manifest.Status)
	assert.Empty(t, manifest.CompletedStages)

	assert.Equal(t, before, testutil.ReadDir(t, paths.OutputDir))
}

func TestPipeline_RerunIsByteIdentical(t *testing.T) {
	base := t.TempDir()
	cfg := testutil.NewTestConfig(base)
	testutil.WriteInputs(t, cfg)

	first, firstPaths := newPipeline(t, cfg)
	_, err := first.Run(context.Background())
	require.NoError(t, err)

	second := testutil.NewTestConfig(base)
	second.Outputs.Dir = "outputs-rerun"
	rerun, rerunPaths := newPipeline(t, second)
	_, err = rerun.Run(context.Background())
	require.NoError(t, err)

	a := testutil.ReadDir(t, firstPaths.OutputDir)
	b := testutil.ReadDir(t, rerunPaths.OutputDir)
	delete(a, firstPaths.ManifestJSON)
	delete(b, rerunPaths.ManifestJSON)
	assert.Len(t, a, 4)
	assert.Equal(t, a, b)
}

func TestPipeline_FailureLeavesNoOutput(t *testing.T) {
	tests := []struct {
		name     string
		mutate   func(t *testing.T, paths *config.Paths)
		step     string
		errType  apperrors.ErrorType
		opErr    operations.ErrorType
		preStart bool
	}{
		{
			name: "missing input",
			mutate: func(t *testing.T, paths *config.Paths) {
				require.NoError(t, os.Remove(paths.IndicesCSV))
			},
			errType:  apperrors.ErrTypeNotFound,
			opErr:    operations.ErrorTypePreflight,
			preStart: true,
		},
		{
			name: "unparsable price date",
			mutate: func(t *testing.T, paths *config.Paths) {
				testutil.WriteCSV(t, paths.PricesOtherCSV,
					"Dates,company_ticker,company_name,otc,PX_LAST,BOOK_VAL_PER_SH,PX_TO_BOOK_RATIO,CUR_MKT_CAP,country",
					"2020/01/15,BA/ LN Equity,BAE,0,6.1,,,,UK")
			},
			step:    operations.StageIDConsolidateMarket,
			errType: apperrors.ErrTypeParsing,
			opErr:   operations.ErrorTypeExecution,
		},
		{
			name: "missing revenue sheet",
			mutate: func(t *testing.T, paths *config.Paths) {
				testutil.WriteWorkbook(t, paths.RevenueWorkbook, "2017", [][]interface{}{{"Company (c)"}})
			},
			step:    operations.StageIDFilterRevenue,
			errType: apperrors.ErrTypeNotFound,
			opErr:   operations.ErrorTypeExecution,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testutil.NewTestConfig(t.TempDir())
			paths := testutil.WriteInputs(t, cfg)
			tt.mutate(t, paths)
			pipeline, _ := newPipeline(t, cfg)

			manifest, err := pipeline.Run(context.Background())
			require.Error(t, err)
			assert.True(t, apperrors.IsType(err, tt.errType), err.Error())
			errType, ok := operations.GetErrorType(err)
			require.True(t, ok)
			assert.Equal(t, tt.opErr, errType)
			assert.Equal(t, "failed", manifest.Status)

			if tt.preStart {
				assert.Empty(t, manifest.CompletedStages)
			} else {
				var opErr *operations.OperationError
				require.ErrorAs(t, err, &opErr)
				assert.Equal(t, tt.step, opErr.Step)
				assert.False(t, manifest.IsStageCompleted(operations.StageIDJoinWrite))
			}

			_, statErr := os.Stat(paths.OutputDir)
			assert.True(t, os.IsNotExist(statErr))
			staged, _ := filepath.Glob(filepath.Join(filepath.Dir(paths.OutputDir), ".*-staging-*"))
			assert.Empty(t, staged)
		})
	}
}

func TestPipeline_Cancelled(t *testing.T) {
	cfg := testutil.NewTestConfig(t.TempDir())
	paths := testutil.WriteInputs(t, cfg)
	pipeline, _ := newPipeline(t, cfg)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := pipeline.Run(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)

	_, statErr := os.Stat(paths.OutputDir)
	assert.True(t, os.IsNotExist(statErr))
}

func TestNewPipeline_RequiresPaths(t *testing.T) {
	_, err := operations.NewPipeline(&operations.Dependencies{Config: config.Default()}, nil)
	assert.Error(t, err)
}
