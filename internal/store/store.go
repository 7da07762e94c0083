package store

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/nlstn/go-odata-mock/internal/dataset"
	"github.com/nlstn/go-odata-mock/internal/metadata"
)

// URIColumn holds the entity's __metadata uri in every seeded table.
const URIColumn = "__uri"

const insertBatchSize = 100

// Store writes generated datasets into SQL tables, one table per entity set.
type Store struct {
	db     *gorm.DB
	logger *slog.Logger
}

// Open connects to a database. Supported dialects are sqlite and postgres.
func Open(dialect, dsn string, logger *slog.Logger) (*Store, error) {
	var dialector gorm.Dialector
	switch dialect {
	case "sqlite", "sqlite3":
		dialector = sqlite.Open(dsn)
	case "postgres", "postgresql":
		dialector = postgres.Open(dsn)
	default:
		return nil, fmt.Errorf("database dialect '%s' is not supported", dialect)
	}

	db, err := gorm.Open(dialector, &gorm.Config{Logger: gormlogger.Default.LogMode(gormlogger.Silent)})
	if err != nil {
		return nil, fmt.Errorf("failed to open %s database: %w", dialect, err)
	}
	return New(db, logger), nil
}

// New wraps an existing connection.
func New(db *gorm.DB, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{db: db, logger: logger}
}

// DB returns the underlying connection.
func (s *Store) DB() *gorm.DB {
	return s.db
}

// Close closes the underlying connection pool.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Seed recreates one table per generated entity set and inserts its records in a single
// transaction. Columns follow the entity type's properties plus URIColumn. It returns the
// number of inserted rows.
func (s *Store) Seed(ctx context.Context, schema *metadata.Schema, data dataset.Dataset) (int, error) {
	dialect := s.db.Name()
	inserted := 0

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, set := range schema.EntitySets {
			records, ok := data[set.Name]
			if !ok {
				continue
			}

			var props []metadata.Property
			if entityType, found := schema.EntityType(set.Type); found {
				props = entityType.Properties
			}

			if err := tx.Exec("DROP TABLE IF EXISTS " + quoteIdent(set.Name)).Error; err != nil {
				return fmt.Errorf("failed to drop table %s: %w", set.Name, err)
			}
			text := textColumns(props, records)
			if err := tx.Exec(createTableSQL(dialect, set.Name, props, text)).Error; err != nil {
				return fmt.Errorf("failed to create table %s: %w", set.Name, err)
			}
			if len(records) == 0 {
				continue
			}

			rows, err := toRows(props, records, text)
			if err != nil {
				return fmt.Errorf("failed to convert records of %s: %w", set.Name, err)
			}
			if err := tx.Table(set.Name).CreateInBatches(rows, insertBatchSize).Error; err != nil {
				return fmt.Errorf("failed to insert records into %s: %w", set.Name, err)
			}

			inserted += len(rows)
			s.logger.Debug("Seeded entity set", "entitySet", set.Name, "rows", len(rows))
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	s.logger.Info("Seeded dataset", "dialect", dialect, "rows", inserted)
	return inserted, nil
}

// Count returns the number of rows in the table of entitySet.
func (s *Store) Count(ctx context.Context, entitySet string) (int64, error) {
	var n int64
	if err := s.db.WithContext(ctx).Table(entitySet).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("failed to count %s: %w", entitySet, err)
	}
	return n, nil
}

func toRows(props []metadata.Property, records []dataset.Record, text map[string]bool) ([]map[string]any, error) {
	rows := make([]map[string]any, 0, len(records))
	for _, record := range records {
		row := make(map[string]any, len(props)+1)
		for _, prop := range props {
			if _, exists := row[prop.Name]; exists {
				continue
			}
			value, err := columnValue(prop, record[prop.Name], text[prop.Name])
			if err != nil {
				return nil, fmt.Errorf("property %s: %w", prop.Name, err)
			}
			row[prop.Name] = value
		}
		if meta, ok := record.Metadata(); ok {
			row[URIColumn] = meta.URI
		} else {
			row[URIColumn] = nil
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// columnValue stores structured values as JSON text. Numbers bound for a Decimal column
// are converted to decimal.Decimal and rounded to the declared scale.
func columnValue(prop metadata.Property, v any, text bool) (any, error) {
	if !text && prop.Kind() == metadata.KindDecimal {
		if d, ok := toDecimal(v); ok {
			if _, scale, bounded := numericBounds(prop); bounded {
				d = d.Round(int32(scale))
			}
			return d, nil
		}
	}

	switch v.(type) {
	case nil, string:
		return v, nil
	case dataset.Record, map[string]any, []any:
		raw, err := json.Marshal(v)
		if err != nil {
			return nil, err
		}
		return string(raw), nil
	}
	if text {
		return fmt.Sprint(v), nil
	}
	return v, nil
}

func toDecimal(v any) (decimal.Decimal, bool) {
	switch n := v.(type) {
	case int:
		return decimal.NewFromInt(int64(n)), true
	case int32:
		return decimal.NewFromInt32(n), true
	case int64:
		return decimal.NewFromInt(n), true
	case float32:
		return decimal.NewFromFloat32(n), true
	case float64:
		return decimal.NewFromFloat(n), true
	}
	return decimal.Decimal{}, false
}
