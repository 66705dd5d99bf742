package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"payoff/internal/amqp"
	"payoff/internal/budget"
	"payoff/internal/cache"
	"payoff/internal/core"
	"payoff/internal/events"
	"payoff/internal/log"
	"payoff/internal/projection"
	"payoff/internal/report"
	"payoff/internal/storage"
)

var ErrExportUnavailable = errors.New("no export destination configured")

// ExportQueue hands export requests to a worker.
type ExportQueue interface {
	PublishExport(ctx context.Context, req amqp.ExportRequest) error
}

// Projection is one run of the engine for one owner.
type Projection struct {
	RunID    string            `json:"run_id"`
	OwnerID  int64             `json:"owner_id"`
	Strategy core.Strategy     `json:"strategy"`
	Start    time.Time         `json:"start"`
	Analysis budget.Analysis   `json:"analysis"`
	Result   projection.Result `json:"result"`
	Cached   bool              `json:"cached"`
}

type StrategySummary struct {
	Strategy      core.Strategy   `json:"strategy"`
	Months        int             `json:"months"`
	TotalInterest decimal.Decimal `json:"total_interest"`
	FinalSavings  decimal.Decimal `json:"final_savings"`
}

// Comparison contrasts avalanche with snowball on the same snapshot. Saved
// amounts are what avalanche saves over snowball and may be negative.
type Comparison struct {
	Avalanche     StrategySummary `json:"avalanche"`
	Snowball      StrategySummary `json:"snowball"`
	InterestSaved decimal.Decimal `json:"interest_saved"`
	MonthsSaved   int             `json:"months_saved"`
	Recommended   core.Strategy   `json:"recommended"`
}

// ExportTicket reports where an export went. Queued exports have no Ref yet.
type ExportTicket struct {
	RunID  string `json:"run_id"`
	Queued bool   `json:"queued"`
	Ref    string `json:"ref,omitempty"`
}

type ProjectionService struct {
	store   storage.EntityStore
	results cache.Cache[projection.Result]
	events  events.Publisher
	queue   ExportQueue
	sink    report.Sink
	logger  *log.StructuredLogger

	now   func() time.Time
	newID func() string
}

// ProjectionOption configures optional collaborators of a ProjectionService.
type ProjectionOption func(*ProjectionService)

func WithResultCache(c cache.Cache[projection.Result]) ProjectionOption {
	return func(s *ProjectionService) { s.results = c }
}

func WithEvents(p events.Publisher) ProjectionOption {
	return func(s *ProjectionService) { s.events = p }
}

func WithExportQueue(q ExportQueue) ProjectionOption {
	return func(s *ProjectionService) { s.queue = q }
}

func WithReportSink(sink report.Sink) ProjectionOption {
	return func(s *ProjectionService) { s.sink = sink }
}

func WithClock(now func() time.Time) ProjectionOption {
	return func(s *ProjectionService) { s.now = now }
}

func NewProjectionService(store storage.EntityStore, logger *log.Logger, opts ...ProjectionOption) *ProjectionService {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	s := &ProjectionService{
		store:  store,
		events: events.Nop{},
		logger: log.NewStructuredLogger(logger),
		now:    time.Now,
		newID:  uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *ProjectionService) Analyze(ctx context.Context, owner int64) (budget.Analysis, error) {
	snap, err := s.store.Snapshot(ctx, owner)
	if err != nil {
		return budget.Analysis{}, fmt.Errorf("load snapshot: %w", err)
	}
	return budget.Analyze(snap), nil
}

// Project runs strategy on the owner's current snapshot starting today.
func (s *ProjectionService) Project(ctx context.Context, owner int64, strategy core.Strategy) (Projection, error) {
	return s.ProjectAt(ctx, owner, strategy, s.now())
}

// ProjectAt runs strategy as if today were start. Identical snapshots and
// start dates give identical ledgers.
func (s *ProjectionService) ProjectAt(ctx context.Context, owner int64, strategy core.Strategy, start time.Time) (Projection, error) {
	snap, err := s.store.Snapshot(ctx, owner)
	if err != nil {
		return Projection{}, fmt.Errorf("load snapshot: %w", err)
	}
	return s.run(ctx, owner, snap, strategy, start)
}

func (s *ProjectionService) run(ctx context.Context, owner int64, snap core.Snapshot, strategy core.Strategy, start time.Time) (Projection, error) {
	in, analysis, err := budget.Prepare(snap, strategy, start)
	if err != nil {
		return Projection{}, err
	}

	p := Projection{
		RunID:    s.newID(),
		OwnerID:  owner,
		Strategy: strategy,
		Start:    start,
		Analysis: analysis,
	}

	key := resultKey(snap, strategy, start)
	if s.results != nil {
		if res, ok := s.results.Get(key); ok {
			p.Result, p.Cached = res, true
			s.logRun(ctx, p)
			return p, nil
		}
	}

	res, err := projection.Run(in)
	s.publish(ctx, p, res, err)
	if err != nil {
		return Projection{}, err
	}

	p.Result = res
	if s.results != nil {
		s.results.Set(key, res)
	}
	s.logRun(ctx, p)
	return p, nil
}

// Compare runs both strategies on one snapshot concurrently.
func (s *ProjectionService) Compare(ctx context.Context, owner int64) (Comparison, error) {
	snap, err := s.store.Snapshot(ctx, owner)
	if err != nil {
		return Comparison{}, fmt.Errorf("load snapshot: %w", err)
	}
	start := s.now()

	var avalanche, snowball Projection
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		avalanche, err = s.run(gctx, owner, snap, core.StrategyAvalanche, start)
		return err
	})
	g.Go(func() error {
		var err error
		snowball, err = s.run(gctx, owner, snap, core.StrategySnowball, start)
		return err
	})
	if err := g.Wait(); err != nil {
		return Comparison{}, err
	}

	c := Comparison{
		Avalanche:     summarize(avalanche),
		Snowball:      summarize(snowball),
		InterestSaved: snowball.Result.TotalInterestPaid.Sub(avalanche.Result.TotalInterestPaid),
		MonthsSaved:   snowball.Result.MonthsToFreedom - avalanche.Result.MonthsToFreedom,
		Recommended:   core.StrategyAvalanche,
	}
	if c.InterestSaved.IsNegative() || (c.InterestSaved.IsZero() && c.MonthsSaved < 0) {
		c.Recommended = core.StrategySnowball
	}
	return c, nil
}

func summarize(p Projection) StrategySummary {
	return StrategySummary{
		Strategy:      p.Strategy,
		Months:        p.Result.MonthsToFreedom,
		TotalInterest: p.Result.TotalInterestPaid,
		FinalSavings:  p.Result.FinalSavings,
	}
}

// RequestExport validates that the plan converges, then queues its export or,
// without a queue, writes it to the report sink directly.
func (s *ProjectionService) RequestExport(ctx context.Context, owner int64, strategy core.Strategy) (ExportTicket, error) {
	if s.queue == nil && s.sink == nil {
		return ExportTicket{}, ErrExportUnavailable
	}

	p, err := s.Project(ctx, owner, strategy)
	if err != nil {
		return ExportTicket{}, err
	}

	if s.queue != nil {
		req := amqp.ExportRequest{
			RunID:       p.RunID,
			OwnerID:     owner,
			Strategy:    strategy,
			Start:       p.Start,
			RequestedAt: s.now(),
		}
		if err := s.queue.PublishExport(ctx, req); err != nil {
			return ExportTicket{}, fmt.Errorf("queue export: %w", err)
		}
		return ExportTicket{RunID: p.RunID, Queued: true}, nil
	}

	ref, err := s.export(ctx, p)
	if err != nil {
		return ExportTicket{}, err
	}
	return ExportTicket{RunID: p.RunID, Ref: ref}, nil
}

// Export replays the projection described by req and writes its report.
func (s *ProjectionService) Export(ctx context.Context, req amqp.ExportRequest) (string, error) {
	if s.sink == nil {
		return "", ErrExportUnavailable
	}
	p, err := s.ProjectAt(ctx, req.OwnerID, req.Strategy, req.Start)
	if err != nil {
		return "", err
	}
	p.RunID = req.RunID
	return s.export(ctx, p)
}

func (s *ProjectionService) export(ctx context.Context, p Projection) (string, error) {
	r := report.BuildReport(ReportTitle(p), p.Result, p.Analysis)
	ref, err := s.sink.Export(ctx, r)
	if err != nil {
		return "", fmt.Errorf("export report: %w", err)
	}
	log.FromContext(ctx).InfoContext(ctx, "Report exported",
		log.FieldRunID, p.RunID,
		log.FieldOwnerID, p.OwnerID,
		log.FieldReportRef, ref)
	return ref, nil
}

// ReportTitle names the exported report of p.
func ReportTitle(p Projection) string {
	id := p.RunID
	if len(id) > 8 {
		id = id[:8]
	}
	return fmt.Sprintf("%s %s %s", p.Strategy, p.Start.Format(time.DateOnly), id)
}

func (s *ProjectionService) publish(ctx context.Context, p Projection, res projection.Result, runErr error) {
	e := events.ProjectionCompleted{
		RunID:         p.RunID,
		OwnerID:       p.OwnerID,
		Strategy:      p.Strategy,
		Succeeded:     runErr == nil,
		Months:        res.MonthsToFreedom,
		TotalInterest: res.TotalInterestPaid,
		At:            s.now(),
	}
	if runErr != nil {
		e.Months = projection.HorizonMonths
	}
	if err := s.events.PublishProjectionCompleted(ctx, e); err != nil {
		s.logger.LogError(ctx, "Failed to publish projection event", err, log.ComponentEvents, log.OpProject,
			log.NewFields().WithOwner(p.OwnerID))
	}
}

func (s *ProjectionService) logRun(ctx context.Context, p Projection) {
	fields := log.NewFields().
		WithProjection(p.RunID, string(p.Strategy), p.Result.MonthsToFreedom, p.Result.TotalInterestPaid)
	fields[log.FieldExtraPower] = p.Analysis.ExtraPower.StringFixed(2)
	fields[log.FieldCached] = p.Cached
	s.logger.LogProjection(ctx, p.OwnerID, fields)
}

// resultKey identifies a run by its inputs. The start day matters because
// installment debts activate on a calendar date.
func resultKey(snap core.Snapshot, strategy core.Strategy, start time.Time) string {
	h := sha256.New()
	if err := json.NewEncoder(h).Encode(snap); err != nil {
		// Snapshot always encodes; fall back to an uncacheable key.
		return uuid.NewString()
	}
	fmt.Fprintf(h, "|%s|%s", strategy, start.UTC().Format(time.DateOnly))
	return hex.EncodeToString(h.Sum(nil))
}
