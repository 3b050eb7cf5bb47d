package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/vizlab/dataviz-api/internal/cache"
	apierrors "github.com/vizlab/dataviz-api/internal/errors"
	"github.com/vizlab/dataviz-api/internal/models"
	"github.com/vizlab/dataviz-api/internal/repository"
)

// csvTableName is the single synthetic table a csv source exposes.
const csvTableName = "default_csv_table"

// ColumnInfo describes one column of a data source table.
type ColumnInfo struct {
	ColumnName string `json:"column_name"`
	DataType   string `json:"data_type"`
}

// EngineOpener opens a connection to a registered external engine. The
// returned cleanup func closes it. Swapped out in tests.
type EngineOpener func(dsType models.DataSourceType, connectionString string) (*gorm.DB, func(), error)

// DefaultEngineOpener dials the engine named by the data source type using
// its stored connection descriptor verbatim.
func DefaultEngineOpener(dsType models.DataSourceType, connectionString string) (*gorm.DB, func(), error) {
	cfg := &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)}

	var (
		db  *gorm.DB
		err error
	)
	switch dsType {
	case models.DataSourceTypePostgres:
		db, err = gorm.Open(postgres.Open(connectionString), cfg)
	case models.DataSourceTypeMySQL:
		db, err = gorm.Open(mysql.Open(connectionString), cfg)
	default:
		return nil, nil, fmt.Errorf("unsupported engine type %q", dsType)
	}
	if err != nil {
		return nil, nil, err
	}

	cleanup := func() {
		if sqlDB, dbErr := db.DB(); dbErr == nil {
			sqlDB.Close()
		}
	}
	return db, cleanup, nil
}

// QueryService is the execution gateway between registered data sources and
// their underlying engines. Results and schema introspection are cached with
// independent TTLs; a repeated identical call within the TTL is served
// without touching the engine.
type QueryService struct {
	dsRepo  repository.DataSourceRepository
	cache   *cache.Coordinator
	opener  EngineOpener
	timeout time.Duration
	logger  zerolog.Logger
}

// NewQueryService creates a new QueryService. A nil opener falls back to
// DefaultEngineOpener.
func NewQueryService(dsRepo repository.DataSourceRepository, coordinator *cache.Coordinator, opener EngineOpener, timeout time.Duration, logger zerolog.Logger) *QueryService {
	if opener == nil {
		opener = DefaultEngineOpener
	}
	return &QueryService{
		dsRepo:  dsRepo,
		cache:   coordinator,
		opener:  opener,
		timeout: timeout,
		logger:  logger,
	}
}

// ExecuteQuery runs queryString against the data source and returns row
// records. Relational queries are passed through verbatim. For csv sources
// the stored content is the whole table and every row is returned regardless
// of the query string; the csv branch does no filtering.
func (s *QueryService) ExecuteQuery(ctx context.Context, dataSourceID, ownerID uint64, queryString string) ([]map[string]any, error) {
	ds, err := s.lookup(dataSourceID, ownerID)
	if err != nil {
		return nil, err
	}

	key := cache.QueryKey(dataSourceID, ownerID, queryString)
	var records []map[string]any
	if s.cache.GetJSON(ctx, key, &records) {
		return records, nil
	}

	switch {
	case ds.Type.Relational():
		records, err = s.runRaw(ctx, ds, queryString)
	case ds.Type == models.DataSourceTypeCSV:
		records, err = csvRecords(ds.ConnectionString)
		if err != nil {
			err = apierrors.Executionf(err, "CSV data processing failed")
		}
	default:
		err = apierrors.Validationf("Unsupported data source type for query execution: %s", ds.Type)
	}
	if err != nil {
		return nil, err
	}

	s.cache.SetJSON(ctx, key, records, cache.QueryTTL)
	return records, nil
}

// ListTables returns the tables the data source exposes. A csv source has
// exactly one synthetic table.
func (s *QueryService) ListTables(ctx context.Context, dataSourceID, ownerID uint64) ([]string, error) {
	ds, err := s.lookup(dataSourceID, ownerID)
	if err != nil {
		return nil, err
	}

	key := cache.TablesKey(dataSourceID, ownerID)
	var tables []string
	if s.cache.GetJSON(ctx, key, &tables) {
		return tables, nil
	}

	switch ds.Type {
	case models.DataSourceTypeCSV:
		tables = []string{csvTableName}
	case models.DataSourceTypePostgres:
		tables, err = s.queryStrings(ctx, ds,
			"SELECT tablename FROM pg_catalog.pg_tables WHERE schemaname NOT IN ('pg_catalog', 'information_schema')")
	case models.DataSourceTypeMySQL:
		tables, err = s.queryStrings(ctx, ds, "SHOW TABLES")
	default:
		err = apierrors.Validationf("Unsupported data source type for table fetching: %s", ds.Type)
	}
	if err != nil {
		return nil, err
	}

	s.cache.SetJSON(ctx, key, tables, cache.SchemaTTL)
	return tables, nil
}

// ListColumns returns column name/type pairs for one table. For csv sources
// the dtypes are inferred from the first parse of the stored content.
func (s *QueryService) ListColumns(ctx context.Context, dataSourceID, ownerID uint64, tableName string) ([]ColumnInfo, error) {
	ds, err := s.lookup(dataSourceID, ownerID)
	if err != nil {
		return nil, err
	}

	key := cache.ColumnsKey(dataSourceID, ownerID, tableName)
	var columns []ColumnInfo
	if s.cache.GetJSON(ctx, key, &columns) {
		return columns, nil
	}

	switch ds.Type {
	case models.DataSourceTypeCSV:
		columns, err = csvColumns(ds.ConnectionString)
		if err != nil {
			err = apierrors.Executionf(err, "Failed to parse CSV columns")
		}
	case models.DataSourceTypePostgres:
		columns, err = s.queryColumns(ctx, ds,
			"SELECT column_name, data_type FROM information_schema.columns WHERE table_schema = 'public' AND table_name = ?", tableName)
	case models.DataSourceTypeMySQL:
		columns, err = s.queryColumns(ctx, ds,
			"SELECT column_name, data_type FROM information_schema.columns WHERE table_schema = DATABASE() AND table_name = ?", tableName)
	default:
		err = apierrors.Validationf("Unsupported data source type for column fetching: %s", ds.Type)
	}
	if err != nil {
		return nil, err
	}

	s.cache.SetJSON(ctx, key, columns, cache.SchemaTTL)
	return columns, nil
}

// lookup resolves the data source. Per the gateway contract, an absent or
// foreign source is the caller's fault, not a 404.
func (s *QueryService) lookup(dataSourceID, ownerID uint64) (*models.DataSource, error) {
	ds, err := s.dsRepo.FindByIDAndOwner(dataSourceID, ownerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &apierrors.ValidationError{Message: "Data source not found or unauthorized."}
		}
		return nil, fmt.Errorf("failed to find data source: %w", err)
	}
	return ds, nil
}

func (s *QueryService) queryStrings(ctx context.Context, ds *models.DataSource, query string, args ...any) ([]string, error) {
	records, err := s.runRaw(ctx, ds, query, args...)
	if err != nil {
		return nil, err
	}

	results := make([]string, 0, len(records))
	for _, record := range records {
		for _, value := range record {
			results = append(results, fmt.Sprintf("%v", value))
			break
		}
	}
	return results, nil
}

func (s *QueryService) queryColumns(ctx context.Context, ds *models.DataSource, query string, args ...any) ([]ColumnInfo, error) {
	db, cleanup, err := s.opener(ds.Type, ds.ConnectionString)
	if err != nil {
		return nil, apierrors.Executionf(err, "Failed to connect to data source")
	}
	defer cleanup()

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	rows, err := db.WithContext(ctx).Raw(query, args...).Rows()
	if err != nil {
		return nil, s.executionError(ctx, err)
	}
	defer rows.Close()

	columns := make([]ColumnInfo, 0)
	for rows.Next() {
		var info ColumnInfo
		if err := rows.Scan(&info.ColumnName, &info.DataType); err != nil {
			return nil, apierrors.Executionf(err, "Failed to fetch table columns")
		}
		columns = append(columns, info)
	}
	if err := rows.Err(); err != nil {
		return nil, s.executionError(ctx, err)
	}

	return columns, nil
}

func (s *QueryService) runRaw(ctx context.Context, ds *models.DataSource, query string, args ...any) ([]map[string]any, error) {
	db, cleanup, err := s.opener(ds.Type, ds.ConnectionString)
	if err != nil {
		return nil, apierrors.Executionf(err, "Failed to connect to data source")
	}
	defer cleanup()

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	rows, err := db.WithContext(ctx).Raw(query, args...).Rows()
	if err != nil {
		return nil, s.executionError(ctx, err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, apierrors.Executionf(err, "Database query failed")
	}

	records := make([]map[string]any, 0)
	values := make([]any, len(columns))
	pointers := make([]any, len(columns))
	for i := range values {
		pointers[i] = &values[i]
	}
	for rows.Next() {
		if err := rows.Scan(pointers...); err != nil {
			return nil, apierrors.Executionf(err, "Database query failed")
		}
		record := make(map[string]any, len(columns))
		for i, column := range columns {
			record[column] = normalizeValue(values[i])
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, s.executionError(ctx, err)
	}

	return records, nil
}

// executionError classifies an engine failure, surfacing deadline expiry as a
// timeout.
func (s *QueryService) executionError(ctx context.Context, err error) error {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) || errors.Is(err, context.DeadlineExceeded) {
		s.logger.Warn().Err(err).Msg("query timed out")
		return apierrors.Executionf(err, "Query timed out")
	}
	s.logger.Warn().Err(err).Msg("query failed")
	return apierrors.Executionf(err, "Database query failed")
}

// normalizeValue makes driver values JSON-friendly.
func normalizeValue(value any) any {
	if b, ok := value.([]byte); ok {
		return string(b)
	}
	return value
}
