package services

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/vizlab/dataviz-api/internal/cache"
	apierrors "github.com/vizlab/dataviz-api/internal/errors"
	"github.com/vizlab/dataviz-api/internal/models"
	"github.com/vizlab/dataviz-api/internal/repository"
)

type queryTestEnv struct {
	db     *gorm.DB
	dsRepo repository.DataSourceRepository
	cache  *cache.Coordinator
}

func setupQueryTestEnv(t *testing.T) *queryTestEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.Role{}, &models.DataSource{}))

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	store := cache.NewMemoryStore()
	t.Cleanup(store.Stop)

	return &queryTestEnv{
		db:     db,
		dsRepo: repository.NewDataSourceRepository(db),
		cache:  cache.NewCoordinator(store, zerolog.Nop()),
	}
}

func (env *queryTestEnv) createSource(t *testing.T, ownerID uint64, dsType models.DataSourceType, connectionString string) *models.DataSource {
	t.Helper()

	ds := &models.DataSource{
		Name:             "source",
		Type:             dsType,
		ConnectionString: connectionString,
		UserID:           ownerID,
	}
	require.NoError(t, env.db.Create(ds).Error)
	return ds
}

// mockOpener returns an EngineOpener backed by sqlmock and counts how often
// an engine connection is opened.
func mockOpener(t *testing.T, opened *int, expect func(sqlmock.Sqlmock)) EngineOpener {
	t.Helper()

	return func(dsType models.DataSourceType, connectionString string) (*gorm.DB, func(), error) {
		*opened++

		sqlDB, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
		require.NoError(t, err)
		expect(mock)

		db, err := gorm.Open(mysql.New(mysql.Config{
			Conn:                      sqlDB,
			SkipInitializeWithVersion: true,
		}), &gorm.Config{Logger: gormlogger.Default.LogMode(gormlogger.Silent)})
		require.NoError(t, err)

		return db, func() { sqlDB.Close() }, nil
	}
}

func TestQueryService_ExecuteQuery_CSV(t *testing.T) {
	env := setupQueryTestEnv(t)
	ds := env.createSource(t, 1, models.DataSourceTypeCSV, "id,score,label\n1,9.5,good\n2,3,bad\n")

	svc := NewQueryService(env.dsRepo, env.cache, nil, time.Second, zerolog.Nop())

	records, err := svc.ExecuteQuery(context.Background(), ds.ID, 1, "")
	require.NoError(t, err)
	require.Len(t, records, 2)
	require.EqualValues(t, 1, records[0]["id"])
	require.EqualValues(t, 9.5, records[0]["score"])
	require.Equal(t, "good", records[0]["label"])
}

func TestQueryService_ExecuteQuery_CSVIgnoresQueryString(t *testing.T) {
	env := setupQueryTestEnv(t)
	ds := env.createSource(t, 1, models.DataSourceTypeCSV, "id\n1\n2\n3\n")

	svc := NewQueryService(env.dsRepo, env.cache, nil, time.Second, zerolog.Nop())

	records, err := svc.ExecuteQuery(context.Background(), ds.ID, 1, "SELECT * FROM default_csv_table LIMIT 1")
	require.NoError(t, err)
	require.Len(t, records, 3)
}

func TestQueryService_ExecuteQuery_UnknownSource(t *testing.T) {
	env := setupQueryTestEnv(t)

	svc := NewQueryService(env.dsRepo, env.cache, nil, time.Second, zerolog.Nop())

	_, err := svc.ExecuteQuery(context.Background(), 999, 1, "SELECT 1")
	var validationErr *apierrors.ValidationError
	require.ErrorAs(t, err, &validationErr)
}

func TestQueryService_ExecuteQuery_ForeignSourceRejected(t *testing.T) {
	env := setupQueryTestEnv(t)
	ds := env.createSource(t, 1, models.DataSourceTypeCSV, "id\n1\n")

	svc := NewQueryService(env.dsRepo, env.cache, nil, time.Second, zerolog.Nop())

	_, err := svc.ExecuteQuery(context.Background(), ds.ID, 2, "")
	var validationErr *apierrors.ValidationError
	require.ErrorAs(t, err, &validationErr)
}

func TestQueryService_ExecuteQuery_Relational(t *testing.T) {
	env := setupQueryTestEnv(t)
	ds := env.createSource(t, 1, models.DataSourceTypeMySQL, "dsn")

	var opened int
	opener := mockOpener(t, &opened, func(mock sqlmock.Sqlmock) {
		mock.ExpectQuery("SELECT \\* FROM metrics").WillReturnRows(
			sqlmock.NewRows([]string{"id", "value"}).AddRow(1, 42).AddRow(2, 7))
	})

	svc := NewQueryService(env.dsRepo, env.cache, opener, time.Second, zerolog.Nop())

	records, err := svc.ExecuteQuery(context.Background(), ds.ID, 1, "SELECT * FROM metrics")
	require.NoError(t, err)
	require.Len(t, records, 2)
	require.EqualValues(t, 1, records[0]["id"])
	require.EqualValues(t, 42, records[0]["value"])
	require.Equal(t, 1, opened)
}

func TestQueryService_ExecuteQuery_ResultIsCached(t *testing.T) {
	env := setupQueryTestEnv(t)
	ds := env.createSource(t, 1, models.DataSourceTypeMySQL, "dsn")

	var opened int
	opener := mockOpener(t, &opened, func(mock sqlmock.Sqlmock) {
		mock.ExpectQuery("SELECT \\* FROM metrics").WillReturnRows(
			sqlmock.NewRows([]string{"id"}).AddRow(1))
	})

	svc := NewQueryService(env.dsRepo, env.cache, opener, time.Second, zerolog.Nop())

	_, err := svc.ExecuteQuery(context.Background(), ds.ID, 1, "SELECT * FROM metrics")
	require.NoError(t, err)
	require.Equal(t, 1, opened)

	// A repeated identical call within the TTL never reaches the engine
	records, err := svc.ExecuteQuery(context.Background(), ds.ID, 1, "SELECT * FROM metrics")
	require.NoError(t, err)
	require.Len(t, records, 1)
	require.Equal(t, 1, opened)

	// A different query string misses the cache
	opener2 := mockOpener(t, &opened, func(mock sqlmock.Sqlmock) {
		mock.ExpectQuery("SELECT id FROM metrics").WillReturnRows(
			sqlmock.NewRows([]string{"id"}).AddRow(1))
	})
	svc2 := NewQueryService(env.dsRepo, env.cache, opener2, time.Second, zerolog.Nop())
	_, err = svc2.ExecuteQuery(context.Background(), ds.ID, 1, "SELECT id FROM metrics")
	require.NoError(t, err)
	require.Equal(t, 2, opened)
}

func TestQueryService_ExecuteQuery_EngineFailure(t *testing.T) {
	env := setupQueryTestEnv(t)
	ds := env.createSource(t, 1, models.DataSourceTypeMySQL, "dsn")

	var opened int
	opener := mockOpener(t, &opened, func(mock sqlmock.Sqlmock) {
		mock.ExpectQuery("SELECT").WillReturnError(context.DeadlineExceeded)
	})

	svc := NewQueryService(env.dsRepo, env.cache, opener, time.Second, zerolog.Nop())

	_, err := svc.ExecuteQuery(context.Background(), ds.ID, 1, "SELECT * FROM metrics")
	var executionErr *apierrors.ExecutionError
	require.ErrorAs(t, err, &executionErr)
}

func TestQueryService_ListTables_CSV(t *testing.T) {
	env := setupQueryTestEnv(t)
	ds := env.createSource(t, 1, models.DataSourceTypeCSV, "id\n1\n")

	svc := NewQueryService(env.dsRepo, env.cache, nil, time.Second, zerolog.Nop())

	tables, err := svc.ListTables(context.Background(), ds.ID, 1)
	require.NoError(t, err)
	require.Equal(t, []string{"default_csv_table"}, tables)
}

func TestQueryService_ListTables_MySQL(t *testing.T) {
	env := setupQueryTestEnv(t)
	ds := env.createSource(t, 1, models.DataSourceTypeMySQL, "dsn")

	var opened int
	opener := mockOpener(t, &opened, func(mock sqlmock.Sqlmock) {
		mock.ExpectQuery("SHOW TABLES").WillReturnRows(
			sqlmock.NewRows([]string{"Tables_in_db"}).AddRow("orders").AddRow("users"))
	})

	svc := NewQueryService(env.dsRepo, env.cache, opener, time.Second, zerolog.Nop())

	tables, err := svc.ListTables(context.Background(), ds.ID, 1)
	require.NoError(t, err)
	require.Equal(t, []string{"orders", "users"}, tables)

	// Schema reads are cached too
	_, err = svc.ListTables(context.Background(), ds.ID, 1)
	require.NoError(t, err)
	require.Equal(t, 1, opened)
}

func TestQueryService_ListColumns_MySQL(t *testing.T) {
	env := setupQueryTestEnv(t)
	ds := env.createSource(t, 1, models.DataSourceTypeMySQL, "dsn")

	var opened int
	opener := mockOpener(t, &opened, func(mock sqlmock.Sqlmock) {
		mock.ExpectQuery("SELECT column_name, data_type FROM information_schema.columns").
			WithArgs("orders").
			WillReturnRows(sqlmock.NewRows([]string{"column_name", "data_type"}).
				AddRow("id", "bigint").
				AddRow("total", "decimal"))
	})

	svc := NewQueryService(env.dsRepo, env.cache, opener, time.Second, zerolog.Nop())

	columns, err := svc.ListColumns(context.Background(), ds.ID, 1, "orders")
	require.NoError(t, err)
	require.Equal(t, []ColumnInfo{
		{ColumnName: "id", DataType: "bigint"},
		{ColumnName: "total", DataType: "decimal"},
	}, columns)
}

func TestQueryService_ListColumns_CSV(t *testing.T) {
	env := setupQueryTestEnv(t)
	ds := env.createSource(t, 1, models.DataSourceTypeCSV, "id,score,label\n1,9.5,good\n")

	svc := NewQueryService(env.dsRepo, env.cache, nil, time.Second, zerolog.Nop())

	columns, err := svc.ListColumns(context.Background(), ds.ID, 1, "default_csv_table")
	require.NoError(t, err)
	require.Equal(t, []ColumnInfo{
		{ColumnName: "id", DataType: "int64"},
		{ColumnName: "score", DataType: "float64"},
		{ColumnName: "label", DataType: "object"},
	}, columns)
}
