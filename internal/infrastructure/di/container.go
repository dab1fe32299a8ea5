package di

import (
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/jmoiron/sqlx"

	"github.com/treviro/treviro_service/internal/domain/services/session"
	"github.com/treviro/treviro_service/internal/infrastructure/cache"
	"github.com/treviro/treviro_service/internal/infrastructure/config"
	"github.com/treviro/treviro_service/internal/infrastructure/marketdata"
	"github.com/treviro/treviro_service/internal/infrastructure/repositories"
	"github.com/treviro/treviro_service/pkg/logger"
)

// Container holds all application dependencies
type Container struct {
	Config *config.Config
	DB     *sqlx.DB
	Redis  *redis.Client
	Logger *logger.Logger

	// Repositories
	InvestmentRepo      *repositories.InvestmentRepository
	TransactionRepo     *repositories.TransactionRepository
	FinancialRecordRepo *repositories.FinancialRecordRepository
	DashboardRepo       *repositories.DashboardRepository
	MarketDataRepo      *repositories.MarketDataRepository

	// Infrastructure
	SummaryCache     *cache.SummaryCache
	MarketDataClient *marketdata.Client

	// Per-user service sessions
	Sessions *session.Registry
}

// NewContainer wires all dependencies.
func NewContainer(cfg *config.Config, db *sqlx.DB, redisClient *redis.Client, log *logger.Logger) *Container {
	c := &Container{
		Config: cfg,
		DB:     db,
		Redis:  redisClient,
		Logger: log,
	}

	c.InvestmentRepo = repositories.NewInvestmentRepository(db, log)
	c.TransactionRepo = repositories.NewTransactionRepository(db, log)
	c.FinancialRecordRepo = repositories.NewFinancialRecordRepository(db, log)
	c.DashboardRepo = repositories.NewDashboardRepository(db, log)
	c.MarketDataRepo = repositories.NewMarketDataRepository(db, log)

	c.SummaryCache = cache.NewSummaryCache(
		redisClient,
		time.Duration(cfg.Redis.SummaryTTL)*time.Second,
		log,
	)
	c.MarketDataClient = marketdata.NewClient(cfg.MarketData, log)

	c.Sessions = session.NewRegistry(session.Deps{
		Investments:  c.InvestmentRepo,
		Transactions: c.TransactionRepo,
		Records:      c.FinancialRecordRepo,
		Dashboard:    c.DashboardRepo,
		Cache:        c.SummaryCache,
		Logger:       log,
	})

	return c
}
