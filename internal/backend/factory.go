package backend

import (
	"context"
	"fmt"

	"monetra/internal/amqp"
	"monetra/internal/ledger"
	"monetra/internal/ledger/memory"
	"monetra/internal/log"
	"monetra/internal/receipts"
	"monetra/internal/services"
	"monetra/internal/storage"
)

// DefaultFactory implements the Factory interface.
type DefaultFactory struct {
	logger *log.Logger
}

// NewFactory creates a new backend factory.
func NewFactory(logger *log.Logger) Factory {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	return &DefaultFactory{
		logger: logger.WithComponent(log.ComponentBackend),
	}
}

// CreateBackend builds the store, services and receipt storage for the
// configured backend type.
func (f *DefaultFactory) CreateBackend(_ context.Context, config Config) (*Result, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	switch config.Type {
	case SQLiteBackend:
		return f.createSQLiteBackend(config)
	case MemoryBackend:
		return f.createMemoryBackend(config)
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}
}

func (f *DefaultFactory) createSQLiteBackend(config Config) (*Result, error) {
	repo, err := storage.NewSQLiteRepository(config.SQLiteDBPath)
	if err != nil {
		return nil, fmt.Errorf("initialize SQLite repository: %w", err)
	}

	// AMQP is optional: without a broker, writes simply stay local.
	var amqpClient *amqp.Client
	if config.AMQPURL != "" {
		amqpClient, err = amqp.NewClient(config.AMQPURL, config.AMQPExchange, config.AMQPQueue)
		if err != nil {
			f.logger.Warn("Failed to initialize AMQP client, continuing without sync", log.FieldError, err)
			amqpClient = nil
		} else {
			f.logger.Info("Initialized AMQP client",
				"exchange", config.AMQPExchange,
				"queue", config.AMQPQueue)
		}
	}

	var publisher services.SyncPublisher
	if amqpClient != nil {
		publisher = amqpClient
	}

	result, err := f.assemble(repo, publisher, config.ReceiptsDir)
	if err != nil {
		repo.Close()
		if amqpClient != nil {
			amqpClient.Close()
		}
		return nil, err
	}
	result.Cleanup = func() error {
		result.Dashboards.Stop()
		if amqpClient != nil {
			amqpClient.Close()
		}
		return repo.Close()
	}

	f.logger.Info("Initialized SQLite backend",
		"db_path", config.SQLiteDBPath,
		"amqp_enabled", amqpClient != nil)
	return result, nil
}

func (f *DefaultFactory) createMemoryBackend(config Config) (*Result, error) {
	result, err := f.assemble(memory.New(), nil, config.ReceiptsDir)
	if err != nil {
		return nil, err
	}
	result.Cleanup = func() error {
		result.Dashboards.Stop()
		return nil
	}
	f.logger.Info("Initialized memory backend")
	return result, nil
}

// assemble wires the services over a store. Dashboard caches are
// invalidated on every ledger write.
func (f *DefaultFactory) assemble(store ledger.TransactionStore, publisher services.SyncPublisher, receiptsDir string) (*Result, error) {
	receiptStore, err := receipts.NewStore(receiptsDir)
	if err != nil {
		return nil, fmt.Errorf("initialize receipt store: %w", err)
	}

	transactions := services.NewTransactionService(store, publisher)
	dashboards := services.NewDashboardService(store)
	transactions.OnWrite(dashboards.Invalidate)

	return &Result{
		Transactions: transactions,
		Dashboards:   dashboards,
		Receipts:     receiptStore,
	}, nil
}
