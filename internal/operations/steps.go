package operations

import (
	"context"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"conflictpanel/internal/config"
	"conflictpanel/internal/dataprocessing"
	"conflictpanel/internal/exporter"
	"conflictpanel/internal/infrastructure"
	"conflictpanel/internal/validation"
)

// Step IDs
const (
	StageIDNormalizeConflicts = "normalize_conflicts"
	StageIDFilterRevenue      = "filter_revenue"
	StageIDConsolidateMarket  = "consolidate_market"
	StageIDAdaptContent       = "adapt_content"
	StageIDMatchEpisodes      = "match_episodes"
	StageIDJoinWrite          = "join_write"
)

// Step names
const (
	StageNameNormalizeConflicts = "Conflict Episodes"
	StageNameFilterRevenue      = "Arms Revenue Filter"
	StageNameConsolidateMarket  = "Market Consolidation"
	StageNameAdaptContent       = "News Content"
	StageNameMatchEpisodes      = "Trading Date Matching"
	StageNameJoinWrite          = "Panel Join and Export"
)

// Dependencies are the collaborators shared by every step of a run
type Dependencies struct {
	Config  *config.Config
	Paths   *config.Paths
	Logger  *slog.Logger
	Metrics *infrastructure.PipelineMetrics
	Output  *exporter.OutputWriter
}

func (d *Dependencies) stepLogger(id string) *slog.Logger {
	logger := d.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return logger.With(slog.String("step", id))
}

// DefaultSteps returns the pipeline steps in execution order
func DefaultSteps(deps *Dependencies) []Step {
	return []Step{
		NewNormalizeConflictsStage(deps),
		NewFilterRevenueStage(deps),
		NewConsolidateMarketStage(deps),
		NewAdaptContentStage(deps),
		NewMatchEpisodesStage(deps),
		NewJoinWriteStage(deps),
	}
}

// NormalizeConflictsStage reads the conflict dataset and resolves one start
// date per episode
type NormalizeConflictsStage struct {
	BaseStage
	deps      *Dependencies
	logger    *slog.Logger
	validator *validation.EpisodeValidator
}

// NewNormalizeConflictsStage creates the conflict normalization step
func NewNormalizeConflictsStage(deps *Dependencies) *NormalizeConflictsStage {
	return &NormalizeConflictsStage{
		BaseStage: NewBaseStage(StageIDNormalizeConflicts, StageNameNormalizeConflicts, nil),
		deps:      deps,
		logger:    deps.stepLogger(StageIDNormalizeConflicts),
		validator: validation.NewEpisodeValidator(),
	}
}

// Execute parses, normalizes and validates the conflict episodes
func (s *NormalizeConflictsStage) Execute(ctx context.Context, state *RunState) error {
	stepState := state.Step(s.ID(), s.Name())

	records, err := dataprocessing.ParseConflicts(s.deps.Paths.ConflictWorkbook, s.deps.Config.Inputs.ConflictSheet)
	if err != nil {
		return err
	}
	s.deps.Metrics.RecordRead(ctx, "conflicts", len(records))

	episodes, stats := dataprocessing.NormalizeEpisodes(records, dataprocessing.EpisodeOptions{
		SplitGapDays: s.deps.Config.Pipeline.SplitGapDays,
	})

	if err := s.validator.Validate(episodes); err != nil {
		return err
	}
	if dups := validation.DuplicateIDs(episodes); len(dups) > 0 {
		s.logger.WarnContext(ctx, "Duplicate episode ids",
			slog.Int("count", len(dups)),
			slog.Any("ids", dups))
	}

	s.deps.Metrics.RecordDropped(ctx, s.ID(), "imprecise_start", stats.Imprecise)
	s.deps.Metrics.RecordDropped(ctx, s.ID(), "duplicate", stats.Duplicates)
	s.deps.Metrics.RecordDropped(ctx, s.ID(), "unresolved_date", stats.UnresolvedDate)
	s.deps.Metrics.RecordDropped(ctx, s.ID(), "imprecise_outcome", stats.ImpreciseOutcome)
	if m := s.deps.Metrics; m != nil {
		m.Episodes.Add(ctx, int64(stats.Episodes-stats.ZeroEpisodes),
			metric.WithAttributes(attribute.String("kind", "recorded")))
		m.Episodes.Add(ctx, int64(stats.ZeroEpisodes),
			metric.WithAttributes(attribute.String("kind", "zero")))
	}

	state.Episodes = episodes
	state.Stats.Episodes = stats

	stepState.Metadata["episodes"] = stats.Episodes
	stepState.Metadata["zero_episodes"] = stats.ZeroEpisodes
	stepState.Message = fmt.Sprintf("%d episodes from %d rows", stats.Episodes, stats.Read)

	s.logger.InfoContext(ctx, "Conflict episodes normalized",
		slog.Int("rows", stats.Read),
		slog.Int("imprecise", stats.Imprecise),
		slog.Int("duplicates", stats.Duplicates),
		slog.Int("split", stats.Split),
		slog.Int("unresolved_date", stats.UnresolvedDate),
		slog.Int("episodes", stats.Episodes),
		slog.Int("zero_episodes", stats.ZeroEpisodes))
	return nil
}

// FilterRevenueStage selects the companies whose arms sales dominate revenue
type FilterRevenueStage struct {
	BaseStage
	deps   *Dependencies
	logger *slog.Logger
}

// NewFilterRevenueStage creates the revenue filter step
func NewFilterRevenueStage(deps *Dependencies) *FilterRevenueStage {
	return &FilterRevenueStage{
		BaseStage: NewBaseStage(StageIDFilterRevenue, StageNameFilterRevenue, nil),
		deps:      deps,
		logger:    deps.stepLogger(StageIDFilterRevenue),
	}
}

// Execute reads the ranking and applies the share threshold
func (s *FilterRevenueStage) Execute(ctx context.Context, state *RunState) error {
	stepState := state.Step(s.ID(), s.Name())
	in := s.deps.Config.Inputs

	revenues, parsed, err := dataprocessing.ParseRevenue(s.deps.Paths.RevenueWorkbook, dataprocessing.RevenueOptions{
		Sheet:         in.RevenueSheet,
		SkipRows:      in.RevenueSkip,
		MissingMarker: in.RevenueMissing,
		CompanyColumn: in.RevenueCompany,
		ShareColumn:   in.RevenueShare,
	})
	if err != nil {
		return err
	}
	s.deps.Metrics.RecordRead(ctx, "revenue", len(revenues))

	qualified, stats := dataprocessing.QualifiedCompanies(revenues, s.deps.Config.Pipeline.ArmsShareThreshold)
	stats.Unparsable = parsed.Unparsable
	s.deps.Metrics.RecordDropped(ctx, s.ID(), "unreported", stats.Unreported)
	s.deps.Metrics.RecordDropped(ctx, s.ID(), "below_threshold", stats.BelowCutoff)

	if len(qualified) == 0 {
		s.logger.WarnContext(ctx, "No company passes the arms share threshold",
			slog.Float64("threshold", s.deps.Config.Pipeline.ArmsShareThreshold))
	}

	state.Qualified = qualified
	state.Stats.Revenue = stats

	stepState.Metadata["qualified"] = stats.Qualified
	stepState.Message = fmt.Sprintf("%d of %d companies qualified", stats.Qualified, stats.Read)

	s.logger.InfoContext(ctx, "Arms revenue filter applied",
		slog.Int("companies", stats.Read),
		slog.Int("unreported", stats.Unreported),
		slog.Int("unparsable", stats.Unparsable),
		slog.Int("below_threshold", stats.BelowCutoff),
		slog.Int("qualified", stats.Qualified))
	return nil
}

// ConsolidateMarketStage merges the price feeds and the country indices
type ConsolidateMarketStage struct {
	BaseStage
	deps   *Dependencies
	logger *slog.Logger
}

// NewConsolidateMarketStage creates the market consolidation step
func NewConsolidateMarketStage(deps *Dependencies) *ConsolidateMarketStage {
	return &ConsolidateMarketStage{
		BaseStage: NewBaseStage(StageIDConsolidateMarket, StageNameConsolidateMarket,
			[]string{StageIDFilterRevenue}),
		deps:   deps,
		logger: deps.stepLogger(StageIDConsolidateMarket),
	}
}

// Execute loads both price feeds and the index feed and builds the calendar
func (s *ConsolidateMarketStage) Execute(ctx context.Context, state *RunState) error {
	stepState := state.Step(s.ID(), s.Name())

	var feeds [][]dataprocessing.RawPrice
	for _, path := range []string{s.deps.Paths.PricesUSCSV, s.deps.Paths.PricesOtherCSV} {
		if err := ctx.Err(); err != nil {
			return err
		}
		rows, err := dataprocessing.LoadPriceFeed(path)
		if err != nil {
			return err
		}
		s.deps.Metrics.RecordRead(ctx, "prices", len(rows))
		feeds = append(feeds, rows)
	}

	indices, err := dataprocessing.LoadIndexFeed(s.deps.Paths.IndicesCSV)
	if err != nil {
		return err
	}
	s.deps.Metrics.RecordRead(ctx, "indices", len(indices))

	opts := dataprocessing.DefaultMarketOptions()
	opts.DateLayout = s.deps.Config.Pipeline.PriceDateLayout

	market, stats, err := dataprocessing.ConsolidateMarket(feeds, indices, state.Qualified, opts)
	if err != nil {
		return err
	}

	s.deps.Metrics.RecordDropped(ctx, s.ID(), "invalid_date", stats.InvalidDate)
	s.deps.Metrics.RecordDropped(ctx, s.ID(), "empty", stats.Empty)
	s.deps.Metrics.RecordDropped(ctx, s.ID(), "unqualified", stats.Unqualified)

	state.Market = market
	state.Stats.Market = stats

	stepState.Metadata["rows"] = stats.Rows
	stepState.Metadata["countries"] = stats.Countries
	stepState.Message = fmt.Sprintf("%d price rows in %d countries", stats.Rows, stats.Countries)

	s.logger.InfoContext(ctx, "Market data consolidated",
		slog.Int("price_rows", stats.PriceRows),
		slog.Int("index_rows", stats.IndexRows),
		slog.Int("invalid_date", stats.InvalidDate),
		slog.Int("empty", stats.Empty),
		slog.Int("unqualified", stats.Unqualified),
		slog.Int("unindexed", stats.Unindexed),
		slog.Int("rows", stats.Rows),
		slog.Int("calendar_entries", stats.CalendarEntries),
		slog.Any("countries", market.Countries))
	return nil
}

// AdaptContentStage prepares the coded news sheet for the date join
type AdaptContentStage struct {
	BaseStage
	deps   *Dependencies
	logger *slog.Logger
}

// NewAdaptContentStage creates the content adaptation step
func NewAdaptContentStage(deps *Dependencies) *AdaptContentStage {
	return &AdaptContentStage{
		BaseStage: NewBaseStage(StageIDAdaptContent, StageNameAdaptContent, nil),
		deps:      deps,
		logger:    deps.stepLogger(StageIDAdaptContent),
	}
}

// Execute reads and adapts the content-analysis sheet
func (s *AdaptContentStage) Execute(ctx context.Context, state *RunState) error {
	stepState := state.Step(s.ID(), s.Name())

	sheet, err := dataprocessing.LoadContent(s.deps.Paths.ContentWorkbook, s.deps.Config.Inputs.ContentSheet)
	if err != nil {
		return err
	}
	s.deps.Metrics.RecordRead(ctx, "news", len(sheet.Rows))

	news, stats, err := dataprocessing.AdaptContent(sheet)
	if err != nil {
		return err
	}
	s.deps.Metrics.RecordDropped(ctx, s.ID(), "blank", stats.Blank)

	if stats.Undated > 0 {
		s.logger.WarnContext(ctx, "News items without a date never join the panel",
			slog.Int("undated", stats.Undated))
	}

	state.News = news
	state.Stats.News = stats

	stepState.Metadata["records"] = stats.Records
	stepState.Message = fmt.Sprintf("%d news items", stats.Records)

	s.logger.InfoContext(ctx, "News content adapted",
		slog.Int("rows", stats.Read),
		slog.Int("records", stats.Records),
		slog.Int("columns", stats.Columns),
		slog.Int("suffixed", stats.Suffixed))
	return nil
}

// MatchEpisodesStage attributes each episode to a trading date per country
type MatchEpisodesStage struct {
	BaseStage
	deps   *Dependencies
	logger *slog.Logger
}

// NewMatchEpisodesStage creates the trading date matching step
func NewMatchEpisodesStage(deps *Dependencies) *MatchEpisodesStage {
	return &MatchEpisodesStage{
		BaseStage: NewBaseStage(StageIDMatchEpisodes, StageNameMatchEpisodes,
			[]string{StageIDNormalizeConflicts, StageIDConsolidateMarket}),
		deps:   deps,
		logger: deps.stepLogger(StageIDMatchEpisodes),
	}
}

// Execute matches every episode against every market country
func (s *MatchEpisodesStage) Execute(ctx context.Context, state *RunState) error {
	stepState := state.Step(s.ID(), s.Name())

	matches, stats := dataprocessing.MatchEpisodes(state.Episodes, state.Market.Countries,
		state.Market.Calendar, dataprocessing.MatchOptions{MaxGapDays: s.deps.Config.Pipeline.MaxMatchGapDays})

	if m := s.deps.Metrics; m != nil {
		for result, n := range map[string]int{
			"matched":         stats.Matched,
			"no_trading_date": stats.NoTradingDate,
			"gap_exceeded":    stats.GapExceeded,
		} {
			m.Matches.Add(ctx, int64(n), metric.WithAttributes(attribute.String("result", result)))
		}
	}

	state.Matches = matches
	state.Stats.Matches = stats

	stepState.Metadata["pairs"] = stats.Pairs
	stepState.Metadata["matched"] = stats.Matched
	stepState.Message = fmt.Sprintf("%d of %d episode/country pairs matched", stats.Matched, stats.Pairs)

	s.logger.InfoContext(ctx, "Episodes matched to trading dates",
		slog.Int("pairs", stats.Pairs),
		slog.Int("matched", stats.Matched),
		slog.Int("no_trading_date", stats.NoTradingDate),
		slog.Int("gap_exceeded", stats.GapExceeded),
		slog.Int("max_gap_days", s.deps.Config.Pipeline.MaxMatchGapDays))
	return nil
}

// Validate also rejects a negative match window before any work is done
func (s *MatchEpisodesStage) Validate(state *RunState) error {
	if err := s.BaseStage.Validate(state); err != nil {
		return err
	}
	if gap := s.deps.Config.Pipeline.MaxMatchGapDays; gap < 0 {
		return NewValidationError(s.ID(), fmt.Sprintf("max match gap must not be negative, got %d", gap))
	}
	return nil
}

// JoinWriteStage builds both panels and persists the four output tables
type JoinWriteStage struct {
	BaseStage
	deps   *Dependencies
	logger *slog.Logger
}

// NewJoinWriteStage creates the join and export step
func NewJoinWriteStage(deps *Dependencies) *JoinWriteStage {
	return &JoinWriteStage{
		BaseStage: NewBaseStage(StageIDJoinWrite, StageNameJoinWrite,
			[]string{StageIDMatchEpisodes, StageIDAdaptContent}),
		deps:   deps,
		logger: deps.stepLogger(StageIDJoinWrite),
	}
}

// Execute joins the panels and writes every table in one commit
func (s *JoinWriteStage) Execute(ctx context.Context, state *RunState) error {
	stepState := state.Step(s.ID(), s.Name())
	paths := s.deps.Paths

	state.ConflictPanel = dataprocessing.JoinConflictPanel(state.Market.Prices, state.Matches)
	state.NewsPanel = dataprocessing.JoinNewsPanel(state.Market.Prices, state.News)

	outputs, err := s.deps.Output.WriteAll(ctx,
		exporter.ConflictPanelTable{FileName: paths.ConflictPanelCSV, Rows: state.ConflictPanel},
		exporter.NewsPanelTable{FileName: paths.NewsPanelCSV, NewsHeader: state.News.Header, Rows: state.NewsPanel},
		exporter.EpisodesTable{FileName: paths.EpisodesCSV, Episodes: state.Episodes},
		exporter.PricesTable{FileName: paths.PricesCSV, Prices: state.Market.Prices},
	)
	if err != nil {
		return err
	}

	state.Outputs = outputs
	for name, rows := range outputs {
		stepState.Metadata[name] = rows
	}
	stepState.Message = fmt.Sprintf("%d tables written to %s", len(outputs), s.deps.Output.Dir())

	s.logger.InfoContext(ctx, "Panels written",
		slog.Int("conflict_panel_rows", len(state.ConflictPanel)),
		slog.Int("news_panel_rows", len(state.NewsPanel)),
		slog.Int("episodes", len(state.Episodes)),
		slog.Int("prices", len(state.Market.Prices)),
		slog.String("output_dir", s.deps.Output.Dir()))
	return nil
}
