package controllers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/petcode/petcode-api/config"
	"github.com/petcode/petcode-api/models"
	"github.com/petcode/petcode-api/services"
	"github.com/stretchr/testify/assert"
)

// setupMockAuth0Server creates a mock HTTP server that simulates Auth0's
// /userinfo endpoint, keyed by access token
func setupMockAuth0Server(userInfoMap map[string]*services.Auth0UserInfo) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/userinfo" {
			w.WriteHeader(http.StatusNotFound)
			return
		}

		authHeader := r.Header.Get("Authorization")
		if len(authHeader) < 8 {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		token := authHeader[7:] // Remove "Bearer " prefix

		userInfo, exists := userInfoMap[token]
		if !exists {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(userInfo)
	}))
}

func TestGetMyClientLazyCreation(t *testing.T) {
	db := setupTestDB(t)

	mockServer := setupMockAuth0Server(map[string]*services.Auth0UserInfo{
		"token-new": {
			Sub:        "auth0|new123",
			Email:      "maria@example.com",
			Name:       "Maria Lopez",
			GivenName:  "Maria",
			FamilyName: "Lopez",
		},
	})
	defer mockServer.Close()
	config.SetConfig(&config.Config{Auth0Domain: mockServer.URL})

	router := setupTestRouter()
	router.GET("/api/v1/clients/me", mockAuthMiddleware("auth0|new123", "token-new"), GetMyClient)

	// First fetch creates the client from Auth0 userinfo
	w := performRequest(router, "GET", "/api/v1/clients/me", nil, "")
	assert.Equal(t, http.StatusCreated, w.Code)

	response := parseResponse(t, w)
	assert.Equal(t, true, response["success"])
	data := response["data"].(map[string]interface{})
	assert.Equal(t, "maria@example.com", data["email"])
	assert.Equal(t, "Maria", data["first_name"])
	assert.Equal(t, "Lopez", data["last_name"])
	assert.Equal(t, "user", data["role"], "New clients always get the default role")

	// Second fetch returns the same record without creating another
	w = performRequest(router, "GET", "/api/v1/clients/me", nil, "")
	assert.Equal(t, http.StatusOK, w.Code)

	var count int64
	db.Model(&models.Client{}).Where("auth0_id = ?", "auth0|new123").Count(&count)
	assert.Equal(t, int64(1), count, "At most one client per Auth0 subject")
}

func TestGetMyClientExisting(t *testing.T) {
	db := setupTestDB(t)
	createTestClient(t, db, "auth0|abc123", "maria@example.com", "user")

	router := setupTestRouter()
	router.GET("/api/v1/clients/me", mockAuthMiddleware("auth0|abc123", "token-abc"), GetMyClient)

	// Existing clients are returned without any Auth0 call
	w := performRequest(router, "GET", "/api/v1/clients/me", nil, "")
	assert.Equal(t, http.StatusOK, w.Code)

	response := parseResponse(t, w)
	data := response["data"].(map[string]interface{})
	assert.Equal(t, "maria@example.com", data["email"])
}

func TestGetMyClientAuth0Failure(t *testing.T) {
	setupTestDB(t)

	mockServer := setupMockAuth0Server(map[string]*services.Auth0UserInfo{})
	defer mockServer.Close()
	config.SetConfig(&config.Config{Auth0Domain: mockServer.URL})

	router := setupTestRouter()
	router.GET("/api/v1/clients/me", mockAuthMiddleware("auth0|unknown", "bad-token"), GetMyClient)

	w := performRequest(router, "GET", "/api/v1/clients/me", nil, "")
	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Equal(t, "AUTH0_ERROR", errorCode(parseResponse(t, w)))
}

func TestGetMyClientMissingEmail(t *testing.T) {
	setupTestDB(t)

	mockServer := setupMockAuth0Server(map[string]*services.Auth0UserInfo{
		"token-noemail": {Sub: "auth0|noemail", Name: "Sin Correo"},
	})
	defer mockServer.Close()
	config.SetConfig(&config.Config{Auth0Domain: mockServer.URL})

	router := setupTestRouter()
	router.GET("/api/v1/clients/me", mockAuthMiddleware("auth0|noemail", "token-noemail"), GetMyClient)

	w := performRequest(router, "GET", "/api/v1/clients/me", nil, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "MISSING_EMAIL", errorCode(parseResponse(t, w)))
}

func TestUpdateMyClient(t *testing.T) {
	db := setupTestDB(t)
	createTestClient(t, db, "auth0|abc123", "maria@example.com", "user")

	router := setupTestRouter()
	router.PUT("/api/v1/clients/me", mockAuthMiddleware("auth0|abc123", "token-abc"), UpdateMyClient)

	body := jsonBody(t, map[string]string{
		"phone":       "+34 611 111 111",
		"address":     "Gran Via 10",
		"city":        "Barcelona",
		"postal_code": "08001",
		"country":     "España",
	})
	w := performRequest(router, "PUT", "/api/v1/clients/me", body, "application/json")
	assert.Equal(t, http.StatusOK, w.Code)

	var updated models.Client
	db.Where("auth0_id = ?", "auth0|abc123").First(&updated)
	assert.Equal(t, "Gran Via 10", updated.Address)
	assert.Equal(t, "Barcelona", updated.City)
	assert.Equal(t, "+34 611 111 111", updated.Phone)
	assert.Equal(t, "maria@example.com", updated.Email, "Fields not in the request stay unchanged")
}

func TestUpdateMyClientCannotSetRole(t *testing.T) {
	db := setupTestDB(t)
	createTestClient(t, db, "auth0|abc123", "maria@example.com", "user")

	router := setupTestRouter()
	router.PUT("/api/v1/clients/me", mockAuthMiddleware("auth0|abc123", "token-abc"), UpdateMyClient)

	body := jsonBody(t, map[string]string{"role": "admin", "city": "Sevilla"})
	w := performRequest(router, "PUT", "/api/v1/clients/me", body, "application/json")
	assert.Equal(t, http.StatusOK, w.Code)

	var updated models.Client
	db.Where("auth0_id = ?", "auth0|abc123").First(&updated)
	assert.Equal(t, "user", updated.Role, "Role must not be settable through profile updates")
	assert.Equal(t, "Sevilla", updated.City)
}

func TestUpdateMyClientDuplicateEmail(t *testing.T) {
	db := setupTestDB(t)
	createTestClient(t, db, "auth0|abc123", "maria@example.com", "user")
	createTestClient(t, db, "auth0|other", "taken@example.com", "user")

	router := setupTestRouter()
	router.PUT("/api/v1/clients/me", mockAuthMiddleware("auth0|abc123", "token-abc"), UpdateMyClient)

	body := jsonBody(t, map[string]string{"email": "taken@example.com"})
	w := performRequest(router, "PUT", "/api/v1/clients/me", body, "application/json")
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "EMAIL_EXISTS", errorCode(parseResponse(t, w)))
}

func TestUpdateMyClientNotFound(t *testing.T) {
	setupTestDB(t)

	router := setupTestRouter()
	router.PUT("/api/v1/clients/me", mockAuthMiddleware("auth0|ghost", "token-ghost"), UpdateMyClient)

	body := jsonBody(t, map[string]string{"city": "Madrid"})
	w := performRequest(router, "PUT", "/api/v1/clients/me", body, "application/json")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "CLIENT_NOT_FOUND", errorCode(parseResponse(t, w)))
}

func TestClientLookupErrorIsNotTreatedAsMissing(t *testing.T) {
	db := setupTestDB(t)
	createTestClient(t, db, "auth0|abc123", "maria@example.com", "user")

	// Break the store underneath the handler: the lookup now fails with a
	// real error, which must not be reported as an absent profile
	assert.NoError(t, db.Migrator().DropTable(&models.Client{}))

	router := setupTestRouter()
	router.PUT("/api/v1/clients/me", mockAuthMiddleware("auth0|abc123", "token-abc"), UpdateMyClient)
	router.GET("/api/v1/clients/me", mockAuthMiddleware("auth0|abc123", "token-abc"), GetMyClient)

	w := performRequest(router, "PUT", "/api/v1/clients/me",
		jsonBody(t, map[string]string{"city": "Madrid"}), "application/json")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "DATABASE_ERROR", errorCode(parseResponse(t, w)))

	// The lazy-create path must not run on a store failure either
	w = performRequest(router, "GET", "/api/v1/clients/me", nil, "")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "DATABASE_ERROR", errorCode(parseResponse(t, w)))
}
