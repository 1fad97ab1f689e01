// Package billing computes the apuração of invoice line items per competência
// and keeps the report sessions that own the returns overlay and the
// cancellation ledger.
package billing

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/LuisEduardoPedra/apuracaoFaturamento/internal/core/cancellation"
	"github.com/LuisEduardoPedra/apuracaoFaturamento/internal/core/returns"
	"github.com/LuisEduardoPedra/apuracaoFaturamento/internal/core/sequence"
	"github.com/LuisEduardoPedra/apuracaoFaturamento/internal/domain"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

var (
	ErrSessionNotFound = errors.New("sessão de apuração não encontrada")
	ErrPeriodNotFound  = errors.New("competência não encontrada")
	ErrNoRecords       = errors.New("nenhum registro para apurar")
	ErrGapSpanTooLarge = errors.New("intervalo de numeração grande demais para apurar faltantes")
)

// DefaultMaxGapSpan bounds max-min of a series' document numbers.
const DefaultMaxGapSpan = 100000

// Service defines the report session operations.
type Service interface {
	CreateSession(ctx context.Context, items []domain.LineItem) (*domain.SessionSummary, error)
	Summary(ctx context.Context, id string) (*domain.SessionSummary, error)
	Reports(ctx context.Context, id string) ([]domain.PeriodReport, error)
	Report(ctx context.Context, id string, period domain.PeriodKey) (domain.PeriodReport, error)
	Returns(ctx context.Context, id string) (domain.ReturnsState, error)
	SetReturnAmount(ctx context.Context, id, cfop string, value decimal.Decimal) error
	ConfirmReturns(ctx context.Context, id string) ([]domain.PeriodReport, error)
	ResetReturns(ctx context.Context, id string) error
	MarkCancelled(ctx context.Context, id string, period domain.PeriodKey, series string, number int) error
	UnmarkCancelled(ctx context.Context, id string, period domain.PeriodKey, series string, number int) error
	Cancellations(ctx context.Context, id string) ([]string, error)
	Export(ctx context.Context, id string) (string, []domain.PeriodExport, error)
	DeleteSession(ctx context.Context, id string) error
	PurgeIdle(maxIdle time.Duration) int
}

// session holds the raw records of one upload. Reports are always rebuilt
// from these records so the overlay is never applied twice.
type session struct {
	id           string
	organization string
	periods      []domain.PeriodKey
	records      map[domain.PeriodKey][]domain.LineItem
	total        int
	overlay      *returns.Overlay
	ledger       *cancellation.Ledger

	mu       sync.Mutex
	lastSeen time.Time
}

func (s *session) touch(now time.Time) {
	s.mu.Lock()
	s.lastSeen = now
	s.mu.Unlock()
}

func (s *session) idleSince() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSeen
}

func (s *session) summary() *domain.SessionSummary {
	periods := make([]domain.PeriodKey, len(s.periods))
	copy(periods, s.periods)
	return &domain.SessionSummary{
		ID:             s.id,
		OrganizationID: s.organization,
		Periods:        periods,
		Records:        s.total,
	}
}

func (s *session) report(period domain.PeriodKey) domain.PeriodReport {
	report := Aggregate(s.records[period], s.overlay.State())
	report.Period = period
	return report
}

func (s *session) reports() []domain.PeriodReport {
	out := make([]domain.PeriodReport, 0, len(s.periods))
	for _, p := range s.periods {
		out = append(out, s.report(p))
	}
	return out
}

type service struct {
	repo       cancellation.Repository
	logger     *zap.Logger
	now        func() time.Time
	maxGapSpan int

	mu       sync.RWMutex
	sessions map[string]*session
}

// Option configures the billing service.
type Option func(*service)

// WithMaxGapSpan sets the largest number range a series may cover. Values
// below one keep the default.
func WithMaxGapSpan(span int) Option {
	return func(s *service) {
		if span > 0 {
			s.maxGapSpan = span
		}
	}
}

// NewService creates a billing service. Ledger marks are persisted through repo.
func NewService(repo cancellation.Repository, logger *zap.Logger, opts ...Option) Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &service{
		repo:       repo,
		logger:     logger,
		now:        time.Now,
		maxGapSpan: DefaultMaxGapSpan,
		sessions:   make(map[string]*session),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *service) CreateSession(ctx context.Context, items []domain.LineItem) (*domain.SessionSummary, error) {
	if len(items) == 0 {
		return nil, ErrNoRecords
	}

	records, periods := PartitionByPeriod(items)
	if err := s.checkGapSpan(records, periods); err != nil {
		s.logger.Warn("apuração recusada", zap.Error(err))
		return nil, err
	}
	sess := &session{
		id:       uuid.NewString(),
		periods:  periods,
		records:  records,
		total:    len(items),
		overlay:  returns.NewOverlay(),
		ledger:   cancellation.NewLedger(),
		lastSeen: s.now(),
	}

	if org, ok := DetectOrganization(items); ok {
		sess.organization = org
		keys, err := s.repo.Load(ctx, org)
		if err != nil {
			return nil, fmt.Errorf("falha ao carregar cancelamentos de %s: %w", org, err)
		}
		sess.ledger.Load(keys)
	}

	s.mu.Lock()
	s.sessions[sess.id] = sess
	s.mu.Unlock()

	s.logger.Info("sessão de apuração criada",
		zap.String("session", sess.id),
		zap.String("cnpj", sess.organization),
		zap.Int("records", len(items)),
		zap.Int("periods", len(periods)),
	)
	return sess.summary(), nil
}

// checkGapSpan rejects uploads whose gap lists would be unreasonably large,
// usually a mistyped document number.
func (s *service) checkGapSpan(records map[domain.PeriodKey][]domain.LineItem, periods []domain.PeriodKey) error {
	for _, period := range periods {
		for series, nums := range seriesNumbers(records[period]) {
			if span := sequence.Span(nums); span > s.maxGapSpan {
				return fmt.Errorf("%w: competência %s, série %s, intervalo %d (limite %d)",
					ErrGapSpanTooLarge, period, series, span, s.maxGapSpan)
			}
		}
	}
	return nil
}

func (s *service) get(id string) (*session, error) {
	s.mu.RLock()
	sess, ok := s.sessions[id]
	s.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	sess.touch(s.now())
	return sess, nil
}

func (s *service) Summary(_ context.Context, id string) (*domain.SessionSummary, error) {
	sess, err := s.get(id)
	if err != nil {
		return nil, err
	}
	return sess.summary(), nil
}

func (s *service) Reports(_ context.Context, id string) ([]domain.PeriodReport, error) {
	sess, err := s.get(id)
	if err != nil {
		return nil, err
	}
	return sess.reports(), nil
}

func (s *service) Report(_ context.Context, id string, period domain.PeriodKey) (domain.PeriodReport, error) {
	sess, err := s.get(id)
	if err != nil {
		return domain.PeriodReport{}, err
	}
	if _, ok := sess.records[period]; !ok {
		return domain.PeriodReport{}, fmt.Errorf("%w: %s", ErrPeriodNotFound, period)
	}
	return sess.report(period), nil
}

func (s *service) Returns(_ context.Context, id string) (domain.ReturnsState, error) {
	sess, err := s.get(id)
	if err != nil {
		return domain.ReturnsState{}, err
	}
	return sess.overlay.State(), nil
}

func (s *service) SetReturnAmount(_ context.Context, id, cfop string, value decimal.Decimal) error {
	sess, err := s.get(id)
	if err != nil {
		return err
	}
	return sess.overlay.SetAmount(cfop, value)
}

// ConfirmReturns sets the overlay flag and recomputes every period from the
// stored raw records.
func (s *service) ConfirmReturns(_ context.Context, id string) ([]domain.PeriodReport, error) {
	sess, err := s.get(id)
	if err != nil {
		return nil, err
	}
	sess.overlay.Confirm()
	s.logger.Info("devoluções confirmadas",
		zap.String("session", id),
		zap.String("total", sess.overlay.Total().StringFixed(2)),
	)
	return sess.reports(), nil
}

func (s *service) ResetReturns(_ context.Context, id string) error {
	sess, err := s.get(id)
	if err != nil {
		return err
	}
	sess.overlay.Reset()
	return nil
}

func (s *service) MarkCancelled(ctx context.Context, id string, period domain.PeriodKey, series string, number int) error {
	sess, err := s.get(id)
	if err != nil {
		return err
	}
	key := cancellation.Key(period, series, number)
	if sess.organization != "" {
		if err := s.repo.Save(ctx, sess.organization, key); err != nil {
			return err
		}
	}
	sess.ledger.Mark(key)
	return nil
}

func (s *service) UnmarkCancelled(ctx context.Context, id string, period domain.PeriodKey, series string, number int) error {
	sess, err := s.get(id)
	if err != nil {
		return err
	}
	key := cancellation.Key(period, series, number)
	if sess.organization != "" {
		if err := s.repo.Delete(ctx, sess.organization, key); err != nil {
			return err
		}
	}
	sess.ledger.Unmark(key)
	return nil
}

// Cancellations lists the marked ledger keys of the session, sorted.
func (s *service) Cancellations(_ context.Context, id string) ([]string, error) {
	sess, err := s.get(id)
	if err != nil {
		return nil, err
	}
	return sess.ledger.Keys(), nil
}

// Export returns the organization and, per period, the report with every
// missing number tagged FALTANTE or CANC/INUT.
func (s *service) Export(_ context.Context, id string) (string, []domain.PeriodExport, error) {
	sess, err := s.get(id)
	if err != nil {
		return "", nil, err
	}
	reports := sess.reports()
	exports := make([]domain.PeriodExport, 0, len(reports))
	for _, report := range reports {
		exp := domain.PeriodExport{Report: report}
		for _, gaps := range report.Gaps {
			series := domain.SeriesExport{Series: gaps.Series, Entries: make([]domain.MissingEntry, 0, len(gaps.Missing))}
			for _, n := range gaps.Missing {
				series.Entries = append(series.Entries, domain.MissingEntry{
					Number: n,
					Status: sess.ledger.Status(cancellation.Key(report.Period, gaps.Series, n)),
				})
			}
			exp.Series = append(exp.Series, series)
		}
		exports = append(exports, exp)
	}
	return sess.organization, exports, nil
}

func (s *service) DeleteSession(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[id]; !ok {
		return fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	delete(s.sessions, id)
	return nil
}

// PurgeIdle drops sessions not used for longer than maxIdle and returns how
// many were removed.
func (s *service) PurgeIdle(maxIdle time.Duration) int {
	cutoff := s.now().Add(-maxIdle)
	s.mu.Lock()
	defer s.mu.Unlock()
	removed := 0
	for id, sess := range s.sessions {
		if sess.idleSince().Before(cutoff) {
			delete(s.sessions, id)
			removed++
		}
	}
	if removed > 0 {
		s.logger.Info("sessões expiradas removidas", zap.Int("removed", removed), zap.Int("remaining", len(s.sessions)))
	}
	return removed
}
