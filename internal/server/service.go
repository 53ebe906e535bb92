package server

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/lox/pokertrainer/analysis"
	"github.com/lox/pokertrainer/gto"
	"github.com/lox/pokertrainer/icm"
	"github.com/lox/pokertrainer/internal/randutil"
	"github.com/lox/pokertrainer/poker"
)

// DefaultQueryTimeout bounds a single equity or ICM computation. Clients
// that need longer computations should run them locally.
const DefaultQueryTimeout = 10 * time.Second

// QueryService answers strategy queries against the engines. Strategy
// tables are served through a gto.Store, so an operator can hot-swap a
// regenerated table under live connections.
type QueryService struct {
	logger       *log.Logger
	tables       *gto.Store
	preflop      *analysis.PreflopTable
	queryTimeout time.Duration
}

// NewQueryService wires the engines behind a query front end. preflop
// may be nil if no precomputed table is available; preflop_request then
// returns an error to the client.
func NewQueryService(logger *log.Logger, tables *gto.Store, preflop *analysis.PreflopTable) *QueryService {
	return &QueryService{
		logger:       logger.WithPrefix("query"),
		tables:       tables,
		preflop:      preflop,
		queryTimeout: DefaultQueryTimeout,
	}
}

// Tables returns the table store so operators can swap in replacements.
func (s *QueryService) Tables() *gto.Store {
	return s.tables
}

// ComputeEquity parses and runs an equity request.
func (s *QueryService) ComputeEquity(ctx context.Context, data EquityRequestData) (*EquityResultData, error) {
	if len(data.Ranges) < 2 {
		return nil, fmt.Errorf("need at least 2 ranges, got %d", len(data.Ranges))
	}

	participants := make([]*analysis.Range, len(data.Ranges))
	for i, notation := range data.Ranges {
		r, err := analysis.ParseRange(notation)
		if err != nil {
			return nil, fmt.Errorf("range %d: %w", i, err)
		}
		participants[i] = r
	}

	board, err := parseOptionalCards(data.Board)
	if err != nil {
		return nil, fmt.Errorf("board: %w", err)
	}
	dead, err := parseOptionalCards(data.Dead)
	if err != nil {
		return nil, fmt.Errorf("dead: %w", err)
	}

	opts := analysis.Options{
		Iterations: data.Iterations,
		Seed:       data.Seed,
	}
	switch data.Mode {
	case "", "auto":
		opts.Mode = analysis.ModeAuto
	case "exact":
		opts.Mode = analysis.ModeExact
	case "montecarlo":
		opts.Mode = analysis.ModeMonteCarlo
	default:
		return nil, fmt.Errorf("unknown mode %q", data.Mode)
	}

	ctx, cancel := context.WithTimeout(ctx, s.queryTimeout)
	defer cancel()

	eq, err := analysis.ComputeEquity(ctx, participants, board, dead, opts)
	if err != nil {
		return nil, err
	}

	result := &EquityResultData{
		Results: make([]ParticipantResult, len(eq.Results)),
		Mode:    eq.Mode.String(),
		Trials:  eq.Trials,
		Partial: eq.Partial,
	}
	for i, r := range eq.Results {
		result.Results[i] = ParticipantResult{
			Range:  data.Ranges[i],
			Win:    r.Win,
			Tie:    r.Tie,
			Lose:   r.Lose,
			Equity: r.Equity,
		}
	}
	return result, nil
}

// ComputeICM runs an ICM request.
func (s *QueryService) ComputeICM(data ICMRequestData) (*ICMResultData, error) {
	var opts []icm.Option
	if data.Simulated {
		opts = append(opts, icm.WithSimulation())
	}
	if data.Trials > 0 {
		opts = append(opts, icm.WithTrials(data.Trials))
	}
	if data.Seed != 0 {
		opts = append(opts, icm.WithSeed(data.Seed))
	}

	res, err := icm.Compute(data.Stacks, data.Payouts, opts...)
	if err != nil {
		return nil, err
	}

	return &ICMResultData{
		Shares: res.Shares,
		Mode:   res.Mode.String(),
		Trials: res.Trials,
	}, nil
}

// LookupFrequencies queries the current strategy table.
func (s *QueryService) LookupFrequencies(data LookupRequestData) (*FrequenciesData, error) {
	freqs, err := s.tables.Lookup(data.Situation)
	if err != nil {
		return nil, err
	}

	out := make(map[string]float64, len(freqs))
	for action, freq := range freqs {
		out[string(action)] = freq
	}
	return &FrequenciesData{Situation: data.Situation, Frequencies: out}, nil
}

// SampleAction draws one action for a situation. The seed makes the
// draw reproducible, which the drill mode uses to replay sessions.
func (s *QueryService) SampleAction(data SampleRequestData) (*SampledActionData, error) {
	action, err := s.tables.SampleAction(data.Situation, randutil.New(data.Seed))
	if err != nil {
		return nil, err
	}
	return &SampledActionData{Situation: data.Situation, Action: string(action)}, nil
}

// PreflopEquity looks up the precomputed multiway equity table.
func (s *QueryService) PreflopEquity(data PreflopRequestData) (*PreflopResultData, error) {
	if s.preflop == nil {
		return nil, fmt.Errorf("no preflop table loaded")
	}
	eq, err := s.preflop.Equity(data.HandClass, data.Opponents)
	if err != nil {
		return nil, err
	}
	return &PreflopResultData{
		HandClass: data.HandClass,
		Opponents: data.Opponents,
		Equity:    eq,
	}, nil
}

func parseOptionalCards(s string) ([]poker.Card, error) {
	if s == "" {
		return nil, nil
	}
	return poker.ParseCards(s)
}
