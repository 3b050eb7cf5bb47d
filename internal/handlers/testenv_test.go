package handlers

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/vizlab/dataviz-api/internal/auth"
	"github.com/vizlab/dataviz-api/internal/cache"
	"github.com/vizlab/dataviz-api/internal/models"
	"github.com/vizlab/dataviz-api/internal/repository"
	"github.com/vizlab/dataviz-api/internal/services"
)

type testEnv struct {
	db          *gorm.DB
	router      *gin.Engine
	tokens      *auth.TokenIssuer
	store       *cache.MemoryStore
	authService *services.AuthService
}

func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	err = db.AutoMigrate(
		&models.User{},
		&models.Role{},
		&models.DataSource{},
		&models.Visualization{},
		&models.Dashboard{},
	)
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	store := cache.NewMemoryStore()
	t.Cleanup(store.Stop)
	coordinator := cache.NewCoordinator(store, zerolog.Nop())

	tokens := auth.NewTokenIssuer("test-secret", time.Hour, 24*time.Hour)

	userRepo := repository.NewUserRepository(db)
	dsRepo := repository.NewDataSourceRepository(db)
	vizRepo := repository.NewVisualizationRepository(db)
	dashRepo := repository.NewDashboardRepository(db)

	authService := services.NewAuthService(userRepo, tokens)
	dsService := services.NewDataSourceService(dsRepo)
	queryService := services.NewQueryService(dsRepo, coordinator, nil, 5*time.Second, zerolog.Nop())
	vizService := services.NewVisualizationService(vizRepo, queryService)
	dashService := services.NewDashboardService(dashRepo, vizRepo)

	r := gin.New()
	RegisterRoutes(r, RouterDeps{
		Tokens:         tokens,
		Auth:           NewAuthHandler(authService),
		DataSources:    NewDataSourceHandler(dsService, queryService, coordinator),
		Visualizations: NewVisualizationHandler(vizService, coordinator),
		Dashboards:     NewDashboardHandler(dashService, coordinator),
	})

	return &testEnv{
		db:          db,
		router:      r,
		tokens:      tokens,
		store:       store,
		authService: authService,
	}
}

// registerUser creates a user with the given roles and returns its id and a
// valid access token.
func (env *testEnv) registerUser(t *testing.T, username string, roles ...string) (uint64, string) {
	t.Helper()

	user, err := env.authService.Register(services.RegisterInput{
		Username:  username,
		Email:     username + "@example.com",
		Password:  "supersecret",
		RoleNames: roles,
	})
	require.NoError(t, err)

	token, err := env.tokens.AccessToken(user.ID, user.RoleNames())
	require.NoError(t, err)
	return user.ID, token
}

// doJSON performs a request against the router with an optional bearer token
// and JSON body.
func (env *testEnv) doJSON(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)
	return w
}
