package marketdata

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/treviro/treviro_service/internal/domain/repositories"
	"github.com/treviro/treviro_service/internal/infrastructure/config"
	"github.com/treviro/treviro_service/internal/infrastructure/marketdata"
	"github.com/treviro/treviro_service/pkg/logger"
	"github.com/treviro/treviro_service/pkg/metrics"
)

// Scheduler runs the market data ingestion jobs on cron schedules. Each job
// fetches one external source and upserts the reference tables; a failed
// fetch is logged and skipped, leaving the previous snapshot in place.
type Scheduler struct {
	cron   *cron.Cron
	client *marketdata.Client
	repo   repositories.MarketDataRepository
	cfg    config.MarketDataConfig
	logger *logger.Logger
}

// NewScheduler creates a scheduler for the three ingestion jobs.
func NewScheduler(
	client *marketdata.Client,
	repo repositories.MarketDataRepository,
	cfg config.MarketDataConfig,
	log *logger.Logger,
) *Scheduler {
	return &Scheduler{
		cron:   cron.New(),
		client: client,
		repo:   repo,
		cfg:    cfg,
		logger: log,
	}
}

// Start registers the jobs and starts the cron loop.
func (s *Scheduler) Start() error {
	jobs := []struct {
		name     string
		schedule string
		run      func(ctx context.Context) error
	}{
		{"exchange_rates", s.cfg.ExchangeRatesSchedule, s.ingestExchangeRates},
		{"gold_prices", s.cfg.GoldPricesSchedule, s.ingestGoldPrices},
		{"stock_quotes", s.cfg.StockQuotesSchedule, s.ingestStockQuotes},
	}

	for _, job := range jobs {
		job := job
		if _, err := s.cron.AddFunc(job.schedule, func() {
			s.runJob(job.name, job.run)
		}); err != nil {
			return fmt.Errorf("failed to schedule %s job: %w", job.name, err)
		}
	}

	s.cron.Start()
	s.logger.Infow("market data scheduler started",
		"exchange_rates_schedule", s.cfg.ExchangeRatesSchedule,
		"gold_prices_schedule", s.cfg.GoldPricesSchedule,
		"stock_quotes_schedule", s.cfg.StockQuotesSchedule,
	)
	return nil
}

// Stop stops the cron loop and waits for running jobs to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Infow("market data scheduler stopped")
}

func (s *Scheduler) runJob(name string, run func(ctx context.Context) error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	start := time.Now()
	err := run(ctx)
	metrics.IngestionDuration.WithLabelValues(name).Observe(time.Since(start).Seconds())

	if err != nil {
		metrics.IngestionRunsTotal.WithLabelValues(name, "failed").Inc()
		s.logger.Errorw("ingestion job failed", "job", name, "error", err)
		return
	}
	metrics.IngestionRunsTotal.WithLabelValues(name, "success").Inc()
	s.logger.Infow("ingestion job completed", "job", name, "duration", time.Since(start))
}

func (s *Scheduler) ingestExchangeRates(ctx context.Context) error {
	rates, asOf, err := s.client.FetchExchangeRates(ctx)
	if err != nil {
		return err
	}
	if len(rates) == 0 {
		return fmt.Errorf("exchange rate source returned no rates")
	}
	return s.repo.UpsertExchangeRates(ctx, rates, asOf)
}

func (s *Scheduler) ingestGoldPrices(ctx context.Context) error {
	prices, err := s.client.FetchGoldPrices(ctx)
	if err != nil {
		return err
	}
	return s.repo.UpsertGoldPrices(ctx, prices)
}

func (s *Scheduler) ingestStockQuotes(ctx context.Context) error {
	securities, err := s.client.FetchStockQuotes(ctx)
	if err != nil {
		return err
	}
	if len(securities) == 0 {
		return fmt.Errorf("stock quote source returned no securities")
	}
	return s.repo.UpsertSecurities(ctx, securities)
}
