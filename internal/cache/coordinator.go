package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

// Entity key prefixes.
const (
	EntityDataSources    = "datasources"
	EntityVisualizations = "visualizations"
	EntityDashboards     = "dashboards"
)

// Per-entry TTLs. Each class of entry expires independently.
const (
	ListTTL    = time.Minute
	DetailTTL  = time.Minute
	PublicTTL  = 5 * time.Minute
	QueryTTL   = 5 * time.Minute
	SchemaTTL  = 5 * time.Minute
	VizDataTTL = 3 * time.Minute
)

// ListKey caches a per-owner list read.
func ListKey(entity string, ownerID uint64) string {
	return fmt.Sprintf("%s:list:%d", entity, ownerID)
}

// DetailKey caches a per-id detail read, scoped to the owner so entries are
// never served across owners.
func DetailKey(entity string, id, ownerID uint64) string {
	return fmt.Sprintf("%s:detail:%d:%d", entity, id, ownerID)
}

// PublicKey caches a public detail read. No owner scope.
func PublicKey(entity string, id uint64) string {
	return fmt.Sprintf("%s:public:%d", entity, id)
}

// QueryKey caches a query-execution result for a (source, owner, query) triple.
func QueryKey(dataSourceID, ownerID uint64, query string) string {
	sum := sha256.Sum256([]byte(query))
	return fmt.Sprintf("query:%d:%d:%s", dataSourceID, ownerID, hex.EncodeToString(sum[:16]))
}

// TablesKey caches the table list of a data source.
func TablesKey(dataSourceID, ownerID uint64) string {
	return fmt.Sprintf("schema:tables:%d:%d", dataSourceID, ownerID)
}

// ColumnsKey caches the column list of one table.
func ColumnsKey(dataSourceID, ownerID uint64, table string) string {
	return fmt.Sprintf("schema:columns:%d:%d:%s", dataSourceID, ownerID, table)
}

// VizDataKey caches the rendered data rows of a visualization.
func VizDataKey(vizID, ownerID uint64) string {
	return fmt.Sprintf("vizdata:%d:%d", vizID, ownerID)
}

// Coordinator wraps a Store with JSON encoding and targeted invalidation.
// Cache failures are logged and swallowed: a broken cache degrades to
// uncached reads, it never fails a request.
type Coordinator struct {
	store  Store
	logger zerolog.Logger
}

func NewCoordinator(store Store, logger zerolog.Logger) *Coordinator {
	return &Coordinator{store: store, logger: logger}
}

// GetJSON loads key into dest. Returns false on miss, decode failure, or
// store error.
func (c *Coordinator) GetJSON(ctx context.Context, key string, dest any) bool {
	data, ok, err := c.store.Get(ctx, key)
	if err != nil {
		c.logger.Warn().Err(err).Str("key", key).Msg("cache read failed")
		return false
	}
	if !ok {
		return false
	}
	if err := json.Unmarshal(data, dest); err != nil {
		c.logger.Warn().Err(err).Str("key", key).Msg("cache entry undecodable")
		return false
	}
	return true
}

// SetJSON stores value under key for the given TTL.
func (c *Coordinator) SetJSON(ctx context.Context, key string, value any, ttl time.Duration) {
	data, err := json.Marshal(value)
	if err != nil {
		c.logger.Warn().Err(err).Str("key", key).Msg("cache encode failed")
		return
	}
	if err := c.store.Set(ctx, key, data, ttl); err != nil {
		c.logger.Warn().Err(err).Str("key", key).Msg("cache write failed")
	}
}

// Invalidate drops the given keys. Called synchronously from write paths so a
// follow-up read within the old TTL cannot observe the pre-write value.
//
// Cross-entity edges are intentionally not tracked: deleting a visualization
// leaves dashboard detail entries that embed it to expire by TTL, editing
// a visualization's query_config leaves query-result entries keyed by the old
// parameters in place until their TTL lapses, and editing a data source's
// connection descriptor leaves query-result and schema entries for that
// source serving the old data until theirs do.
func (c *Coordinator) Invalidate(ctx context.Context, keys ...string) {
	if err := c.store.Delete(ctx, keys...); err != nil {
		c.logger.Warn().Err(err).Strs("keys", keys).Msg("cache invalidation failed")
	}
}
