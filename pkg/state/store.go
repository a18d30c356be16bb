// Package state persists the URN set emitted by each pipeline pass so the
// next pass can soft-delete entities that disappeared from the tracking
// server ("stale entity removal"). The backend is selected by the state
// store URL scheme.
package state

import (
	"context"
	"fmt"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/ncruces/go-sqlite3/gormlite"
	"github.com/sirupsen/logrus"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlserver"
	"gorm.io/gorm"

	"github.com/acryldata/datahub-mlflow-source/pkg/contract"
)

const batchSize = 500

type Store struct {
	db       *gorm.DB
	pipeline string
}

func NewStore(storeURL, pipeline string, log *logrus.Logger) (*Store, error) {
	db, err := openDatabase(storeURL, log)
	if err != nil {
		return nil, err
	}

	if err := db.AutoMigrate(&EmittedURN{}); err != nil {
		return nil, contract.NewErrorf(contract.ErrorCodeStateStore, "failed to migrate state schema: %v", err)
	}

	return &Store{db: db, pipeline: pipeline}, nil
}

func openDatabase(storeURL string, log *logrus.Logger) (*gorm.DB, error) {
	parsed, err := url.Parse(storeURL)
	if err != nil {
		return nil, contract.NewErrorf(contract.ErrorCodeStateStore, "invalid state store url %q: %v", storeURL, err)
	}

	logger := NewLoggerAdaptor(log, LoggerAdaptorConfig{
		SlowThreshold:             500 * time.Millisecond,
		IgnoreRecordNotFoundError: true,
	})

	var dialector gorm.Dialector
	switch parsed.Scheme {
	case "", "file", "sqlite":
		dialector = gormlite.Open(strings.TrimPrefix(storeURL, parsed.Scheme+"://"))
	case "postgres", "postgresql":
		dialector = postgres.Open(storeURL)
	case "mysql":
		dialector = mysql.Open(strings.TrimPrefix(storeURL, "mysql://"))
	case "sqlserver":
		dialector = sqlserver.Open(storeURL)
	default:
		return nil, contract.NewErrorf(
			contract.ErrorCodeStateStore, "unsupported state store scheme %q", parsed.Scheme,
		)
	}

	db, err := gorm.Open(dialector, &gorm.Config{Logger: logger})
	if err != nil {
		return nil, contract.NewErrorf(contract.ErrorCodeStateStore, "failed to open state store: %v", err)
	}

	return db, nil
}

// PreviousURNs returns the URN set recorded by the pipeline's last pass.
func (s *Store) PreviousURNs(ctx context.Context) (map[string]struct{}, error) {
	var urns []string
	err := s.db.WithContext(ctx).
		Model(&EmittedURN{}).
		Where("pipeline = ?", s.pipeline).
		Pluck("urn", &urns).Error
	if err != nil {
		return nil, contract.NewErrorf(contract.ErrorCodeStateStore, "failed to load previous pass: %v", err)
	}

	previous := make(map[string]struct{}, len(urns))
	for _, urn := range urns {
		previous[urn] = struct{}{}
	}

	return previous, nil
}

// RecordPass replaces the pipeline's URN set with the one just emitted.
// The input may repeat URNs (one per aspect); they are stored once.
func (s *Store) RecordPass(ctx context.Context, ingestionRunID string, urns []string) error {
	now := time.Now().UnixMilli()

	seen := make(map[string]struct{}, len(urns))
	records := make([]EmittedURN, 0, len(urns))
	for _, urn := range urns {
		if _, ok := seen[urn]; ok {
			continue
		}
		seen[urn] = struct{}{}
		records = append(records, EmittedURN{
			Pipeline:       s.pipeline,
			URN:            urn,
			IngestionRunID: ingestionRunID,
			LastSeenAt:     now,
		})
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("pipeline = ?", s.pipeline).Delete(&EmittedURN{}).Error; err != nil {
			return err
		}
		if len(records) == 0 {
			return nil
		}

		return tx.CreateInBatches(records, batchSize).Error
	})
	if err != nil {
		return contract.NewErrorf(contract.ErrorCodeStateStore, "failed to record pass: %v", err)
	}

	return nil
}

func (s *Store) Close() error {
	db, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying connection: %w", err)
	}

	return db.Close()
}

// Stale returns the URNs present in the previous pass but absent from the
// current one, sorted for deterministic emission order.
func Stale(previous map[string]struct{}, current []string) []string {
	seen := make(map[string]struct{}, len(current))
	for _, urn := range current {
		seen[urn] = struct{}{}
	}

	var stale []string
	for urn := range previous {
		if _, ok := seen[urn]; !ok {
			stale = append(stale, urn)
		}
	}
	sort.Strings(stale)

	return stale
}
