package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vizlab/dataviz-api/internal/dto"
	"github.com/vizlab/dataviz-api/internal/models"
)

const testCSV = "id,name,value\n1,alpha,10\n2,beta,20\n"

func createCSVSource(t *testing.T, env *testEnv, token, name string) dto.DataSourceDTO {
	t.Helper()

	w := env.doJSON(t, http.MethodPost, "/api/data_sources", token, map[string]any{
		"name":              name,
		"type":              "csv",
		"connection_string": testCSV,
	})
	require.Equal(t, http.StatusCreated, w.Code)

	var ds dto.DataSourceDTO
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &ds))
	return ds
}

func TestDataSourceHandler_Create(t *testing.T) {
	env := setupTestEnv(t)
	userID, token := env.registerUser(t, "owner", "editor")

	ds := createCSVSource(t, env, token, "sales")
	require.Equal(t, "sales", ds.Name)
	require.Equal(t, "csv", ds.Type)
	require.Equal(t, userID, ds.UserID)
}

func TestDataSourceHandler_Create_RequiresEditorRole(t *testing.T) {
	env := setupTestEnv(t)
	_, token := env.registerUser(t, "plainuser")

	w := env.doJSON(t, http.MethodPost, "/api/data_sources", token, map[string]any{
		"name":              "sales",
		"type":              "csv",
		"connection_string": testCSV,
	})
	require.Equal(t, http.StatusForbidden, w.Code)

	var count int64
	env.db.Model(&models.DataSource{}).Count(&count)
	require.Zero(t, count)
}

func TestDataSourceHandler_Create_DuplicateNameSameOwner(t *testing.T) {
	env := setupTestEnv(t)
	_, token := env.registerUser(t, "owner", "editor")
	createCSVSource(t, env, token, "sales")

	w := env.doJSON(t, http.MethodPost, "/api/data_sources", token, map[string]any{
		"name":              "sales",
		"type":              "csv",
		"connection_string": testCSV,
	})
	require.Equal(t, http.StatusConflict, w.Code)

	var response map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	require.Equal(t, "CONFLICT", response["code"])
}

func TestDataSourceHandler_Create_SameNameDifferentOwners(t *testing.T) {
	env := setupTestEnv(t)
	_, tokenA := env.registerUser(t, "alice", "editor")
	_, tokenB := env.registerUser(t, "bob", "editor")

	createCSVSource(t, env, tokenA, "sales")
	createCSVSource(t, env, tokenB, "sales")
}

func TestDataSourceHandler_Get_CrossOwnerIs404(t *testing.T) {
	env := setupTestEnv(t)
	_, tokenA := env.registerUser(t, "alice", "editor")
	_, tokenB := env.registerUser(t, "bob", "editor")

	ds := createCSVSource(t, env, tokenA, "sales")

	w := env.doJSON(t, http.MethodGet, fmt.Sprintf("/api/data_sources/%d", ds.ID), tokenB, nil)
	require.Equal(t, http.StatusNotFound, w.Code)

	// Indistinguishable from a genuinely absent id
	w = env.doJSON(t, http.MethodGet, "/api/data_sources/999999", tokenB, nil)
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestDataSourceHandler_List(t *testing.T) {
	env := setupTestEnv(t)
	_, token := env.registerUser(t, "owner", "editor")
	_, other := env.registerUser(t, "other", "editor")

	createCSVSource(t, env, token, "sales")
	createCSVSource(t, env, token, "marketing")
	createCSVSource(t, env, other, "unrelated")

	w := env.doJSON(t, http.MethodGet, "/api/data_sources", token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var sources []dto.DataSourceDTO
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &sources))
	require.Len(t, sources, 2)
}

func TestDataSourceHandler_Update(t *testing.T) {
	env := setupTestEnv(t)
	_, token := env.registerUser(t, "owner", "editor")
	ds := createCSVSource(t, env, token, "sales")

	w := env.doJSON(t, http.MethodPut, fmt.Sprintf("/api/data_sources/%d", ds.ID), token, map[string]any{
		"name": "sales_v2",
	})
	require.Equal(t, http.StatusOK, w.Code)

	var updated dto.DataSourceDTO
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &updated))
	require.Equal(t, "sales_v2", updated.Name)
	require.Equal(t, "csv", updated.Type)

	// A follow-up read must see the rename, not a cached snapshot
	w = env.doJSON(t, http.MethodGet, fmt.Sprintf("/api/data_sources/%d", ds.ID), token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var fetched dto.DataSourceDTO
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &fetched))
	require.Equal(t, "sales_v2", fetched.Name)
}

func TestDataSourceHandler_Delete_FreesName(t *testing.T) {
	env := setupTestEnv(t)
	_, token := env.registerUser(t, "owner", "editor")
	ds := createCSVSource(t, env, token, "sales")

	w := env.doJSON(t, http.MethodDelete, fmt.Sprintf("/api/data_sources/%d", ds.ID), token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	// Deleting again is a 404
	w = env.doJSON(t, http.MethodDelete, fmt.Sprintf("/api/data_sources/%d", ds.ID), token, nil)
	require.Equal(t, http.StatusNotFound, w.Code)

	// The name is free for reuse
	createCSVSource(t, env, token, "sales")
}

func TestDataSourceHandler_Query_CSVReturnsAllRows(t *testing.T) {
	env := setupTestEnv(t)
	_, token := env.registerUser(t, "owner", "editor")
	ds := createCSVSource(t, env, token, "sales")

	// The query string is ignored for csv sources; every row comes back
	w := env.doJSON(t, http.MethodPost, fmt.Sprintf("/api/data_sources/%d/query", ds.ID), token, map[string]any{
		"query": "SELECT * FROM default_csv_table WHERE id = 1",
	})
	require.Equal(t, http.StatusOK, w.Code)

	var response struct {
		Data []map[string]any `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	require.Len(t, response.Data, 2)
	require.Equal(t, "alpha", response.Data[0]["name"])
	require.EqualValues(t, 10, response.Data[0]["value"])
}

func TestDataSourceHandler_Tables_CSV(t *testing.T) {
	env := setupTestEnv(t)
	_, token := env.registerUser(t, "owner", "editor")
	ds := createCSVSource(t, env, token, "sales")

	w := env.doJSON(t, http.MethodGet, fmt.Sprintf("/api/data_sources/%d/tables", ds.ID), token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var response struct {
		Tables []string `json:"tables"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	require.Equal(t, []string{"default_csv_table"}, response.Tables)
}

func TestDataSourceHandler_Columns_CSV(t *testing.T) {
	env := setupTestEnv(t)
	_, token := env.registerUser(t, "owner", "editor")
	ds := createCSVSource(t, env, token, "sales")

	w := env.doJSON(t, http.MethodGet, fmt.Sprintf("/api/data_sources/%d/tables/default_csv_table/columns", ds.ID), token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var response struct {
		Columns []struct {
			ColumnName string `json:"column_name"`
			DataType   string `json:"data_type"`
		} `json:"columns"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	require.Len(t, response.Columns, 3)
	require.Equal(t, "id", response.Columns[0].ColumnName)
	require.Equal(t, "int64", response.Columns[0].DataType)
	require.Equal(t, "name", response.Columns[1].ColumnName)
	require.Equal(t, "object", response.Columns[1].DataType)
}
