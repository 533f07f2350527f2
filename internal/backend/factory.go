package backend

import (
	"context"
	"errors"
	"fmt"

	"spendwise/internal/amqp"
	"spendwise/internal/log"
	"spendwise/internal/notify"
	gsheet "spendwise/internal/sheets/google"
	"spendwise/internal/storage"
	"spendwise/internal/store"
	"spendwise/internal/store/memory"
)

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *log.Logger
}

// NewFactory creates a new backend factory
func NewFactory(logger *log.Logger) Factory {
	return &DefaultFactory{
		logger: logger.WithComponent(log.ComponentBackend),
	}
}

// CreateBackend implements Factory.CreateBackend
func (f *DefaultFactory) CreateBackend(ctx context.Context, config Config) (*BackendResult, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	var (
		st  store.Store
		err error
	)
	switch config.Type {
	case SQLiteBackend:
		st, err = f.createSQLiteStore(config)
	case MemoryBackend:
		st = f.createMemoryStore()
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}
	if err != nil {
		return nil, err
	}

	res := &BackendResult{Store: st}
	closers := []func() error{st.Close}

	notifier, closeNotifier := f.createNotifier(config)
	res.Notifier = notifier
	if closeNotifier != nil {
		closers = append(closers, closeNotifier)
	}

	if config.GoogleSpreadsheetID != "" {
		client, err := gsheet.New(ctx, gsheet.Config{
			SpreadsheetID:   config.GoogleSpreadsheetID,
			SheetName:       config.GoogleReportSheetName,
			CredentialsJSON: config.GoogleServiceAccountJSON,
			CredentialsFile: config.GoogleServiceAccountFile,
		})
		if err != nil {
			_ = closeAll(closers)
			return nil, fmt.Errorf("failed to initialize Google Sheets client: %w", err)
		}
		res.Reports = client
		f.logger.Info("Initialized Google Sheets report export",
			"spreadsheet_id", config.GoogleSpreadsheetID,
			"sheet", config.GoogleReportSheetName)
	}

	res.Cleanup = func() error { return closeAll(closers) }
	return res, nil
}

func (f *DefaultFactory) createSQLiteStore(config Config) (store.Store, error) {
	sqliteRepo, err := storage.NewSQLiteRepository(config.SQLiteDBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize SQLite repository: %w", err)
	}
	f.logger.Info("Initialized SQLite backend", "db_path", config.SQLiteDBPath)
	return sqliteRepo, nil
}

func (f *DefaultFactory) createMemoryStore() store.Store {
	f.logger.Warn("Initialized memory backend, data is lost on restart")
	return memory.New()
}

// createNotifier publishes through the broker when one is configured and
// reachable, otherwise events are only logged.
func (f *DefaultFactory) createNotifier(config Config) (notify.Notifier, func() error) {
	if config.AMQPURL == "" {
		f.logger.Info("AMQP disabled, notifications will be logged only")
		return notify.NewLogNotifier(f.logger), nil
	}

	amqpClient, err := amqp.NewClient(config.AMQPURL, config.AMQPExchange, config.AMQPQueue)
	if err != nil {
		f.logger.Warn("Failed to initialize AMQP client, notifications will be logged only", "error", err)
		return notify.NewLogNotifier(f.logger), nil
	}
	f.logger.Info("Initialized AMQP client",
		"exchange", config.AMQPExchange,
		"queue", config.AMQPQueue)
	return amqpClient, amqpClient.Close
}

// closeAll runs closers last to first and joins their errors.
func closeAll(closers []func() error) error {
	var errs []error
	for i := len(closers) - 1; i >= 0; i-- {
		if err := closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
