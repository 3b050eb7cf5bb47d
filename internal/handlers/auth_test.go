package handlers

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vizlab/dataviz-api/internal/dto"
)

func TestAuthHandler_Register(t *testing.T) {
	env := setupTestEnv(t)

	w := env.doJSON(t, http.MethodPost, "/api/auth/register", "", map[string]any{
		"username": "newuser",
		"email":    "newuser@example.com",
		"password": "supersecret",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	var response dto.UserDTO
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	require.Equal(t, "newuser", response.Username)
	require.Equal(t, []string{"user"}, response.Roles)
	require.True(t, response.IsActive)
}

func TestAuthHandler_Register_DuplicateUsername(t *testing.T) {
	env := setupTestEnv(t)
	env.registerUser(t, "taken")

	w := env.doJSON(t, http.MethodPost, "/api/auth/register", "", map[string]any{
		"username": "taken",
		"email":    "other@example.com",
		"password": "supersecret",
	})
	require.Equal(t, http.StatusConflict, w.Code)
}

func TestAuthHandler_Register_ShortPassword(t *testing.T) {
	env := setupTestEnv(t)

	w := env.doJSON(t, http.MethodPost, "/api/auth/register", "", map[string]any{
		"username": "shorty",
		"email":    "shorty@example.com",
		"password": "short",
	})
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAuthHandler_Login(t *testing.T) {
	env := setupTestEnv(t)
	env.registerUser(t, "existing", "editor")

	w := env.doJSON(t, http.MethodPost, "/api/auth/login", "", map[string]any{
		"username": "existing",
		"password": "supersecret",
	})
	require.Equal(t, http.StatusOK, w.Code)

	var response dto.LoginResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	require.Equal(t, "existing", response.User.Username)
	require.NotEmpty(t, response.AccessToken)
	require.NotEmpty(t, response.RefreshToken)

	claims, err := env.tokens.Parse(response.AccessToken)
	require.NoError(t, err)
	require.Contains(t, claims.Roles, "editor")
}

func TestAuthHandler_Login_WrongPassword(t *testing.T) {
	env := setupTestEnv(t)
	env.registerUser(t, "existing")

	w := env.doJSON(t, http.MethodPost, "/api/auth/login", "", map[string]any{
		"username": "existing",
		"password": "wrongpassword",
	})
	require.Equal(t, http.StatusUnauthorized, w.Code)

	var response map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	require.Equal(t, "INVALID_CREDENTIALS", response["code"])
}

func TestAuthHandler_Refresh(t *testing.T) {
	env := setupTestEnv(t)
	env.registerUser(t, "refresher")

	login := env.doJSON(t, http.MethodPost, "/api/auth/login", "", map[string]any{
		"username": "refresher",
		"password": "supersecret",
	})
	require.Equal(t, http.StatusOK, login.Code)

	var loginResp dto.LoginResponse
	require.NoError(t, json.Unmarshal(login.Body.Bytes(), &loginResp))

	w := env.doJSON(t, http.MethodPost, "/api/auth/refresh", "", map[string]any{
		"refresh_token": loginResp.RefreshToken,
	})
	require.Equal(t, http.StatusOK, w.Code)

	var refreshResp dto.RefreshResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &refreshResp))
	require.NotEmpty(t, refreshResp.AccessToken)

	claims, err := env.tokens.Parse(refreshResp.AccessToken)
	require.NoError(t, err)
	require.Equal(t, "access", claims.TokenType)
}

func TestAuthHandler_Refresh_AccessTokenRejected(t *testing.T) {
	env := setupTestEnv(t)
	_, token := env.registerUser(t, "refresher")

	w := env.doJSON(t, http.MethodPost, "/api/auth/refresh", "", map[string]any{
		"refresh_token": token,
	})
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthHandler_Me(t *testing.T) {
	env := setupTestEnv(t)
	userID, token := env.registerUser(t, "current", "editor")

	w := env.doJSON(t, http.MethodGet, "/api/auth/me", token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var response dto.UserDTO
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	require.Equal(t, userID, response.ID)
	require.Equal(t, "current", response.Username)
	require.Equal(t, []string{"editor"}, response.Roles)
}
