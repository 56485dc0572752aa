package controllers

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/auth0/go-jwt-middleware/v2/validator"
	"github.com/gin-gonic/gin"
	"github.com/petcode/petcode-api/config"
	"github.com/petcode/petcode-api/middleware"
	"github.com/petcode/petcode-api/models"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}

	if err := db.AutoMigrate(&models.Client{}, &models.PetProfile{}, &models.QROrder{}); err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}

	config.SetDB(db)
	return db
}

func setupTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	return gin.New()
}

// mockAuthMiddleware simulates the Auth0 JWT middleware for testing.
// It sets up the context exactly as the real EnsureValidToken middleware does.
func mockAuthMiddleware(auth0ID, accessToken string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("user_id", auth0ID)
		c.Set("access_token", accessToken)
		c.Set("validated_claims", &validator.ValidatedClaims{
			RegisteredClaims: validator.RegisteredClaims{Subject: auth0ID},
			CustomClaims:     &middleware.CustomClaims{},
		})
		c.Next()
	}
}

// createTestClient inserts a client with a complete shipping address
func createTestClient(t *testing.T, db *gorm.DB, auth0ID, email, role string) *models.Client {
	t.Helper()

	client := &models.Client{
		Auth0ID:    auth0ID,
		Email:      email,
		FirstName:  "Maria",
		LastName:   "Lopez",
		Phone:      "+34 600 000 000",
		Address:    "Calle Mayor 1",
		City:       "Madrid",
		PostalCode: "28001",
		Country:    "España",
		Role:       role,
	}
	if err := db.Create(client).Error; err != nil {
		t.Fatalf("Failed to create test client: %v", err)
	}
	return client
}

// createTestPet inserts a pet profile with its QR order, mirroring the
// creation workflow's end state
func createTestPet(t *testing.T, db *gorm.DB, client *models.Client, name, slug string) (*models.PetProfile, *models.QROrder) {
	t.Helper()

	pet := &models.PetProfile{
		ClientID:    client.ID,
		PetName:     name,
		Breed:       "Mestizo",
		Age:         "3 años",
		ProfileSlug: slug,
		IsActive:    true,
	}
	if err := db.Create(pet).Error; err != nil {
		t.Fatalf("Failed to create test pet: %v", err)
	}

	order := &models.QROrder{
		ClientID:         client.ID,
		PetProfileID:     pet.ID,
		ClientEmail:      client.Email,
		ClientFirstName:  client.FirstName,
		ClientLastName:   client.LastName,
		ClientPhone:      client.Phone,
		ClientAddress:    client.Address,
		ClientCity:       client.City,
		ClientPostalCode: client.PostalCode,
		ClientCountry:    client.Country,
		PetName:          pet.PetName,
		ProfileSlug:      pet.ProfileSlug,
		Status:           models.OrderStatusPending,
	}
	if err := db.Create(order).Error; err != nil {
		t.Fatalf("Failed to create test order: %v", err)
	}

	return pet, order
}

// multipartBody builds a multipart form body from fields and an optional file
func multipartBody(t *testing.T, fields map[string]string, fileField, filename string, fileContent []byte) (*bytes.Buffer, string) {
	t.Helper()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	for k, v := range fields {
		assert.NoError(t, writer.WriteField(k, v))
	}
	if fileField != "" {
		part, err := writer.CreateFormFile(fileField, filename)
		assert.NoError(t, err)
		_, err = part.Write(fileContent)
		assert.NoError(t, err)
	}
	assert.NoError(t, writer.Close())

	return body, writer.FormDataContentType()
}

// jsonBody marshals v into a request body
func jsonBody(t *testing.T, v interface{}) io.Reader {
	t.Helper()

	data, err := json.Marshal(v)
	assert.NoError(t, err)
	return bytes.NewReader(data)
}

// performRequest runs a request through the router and returns the recorder
func performRequest(router *gin.Engine, method, path string, body io.Reader, contentType string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

// parseResponse unmarshals the response envelope
func parseResponse(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()

	var response map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(t, err, "Response should be valid JSON")
	return response
}

// itoa renders a record ID as a path segment
func itoa(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}

// errorCode extracts error.code from the response envelope
func errorCode(response map[string]interface{}) string {
	errObj, ok := response["error"].(map[string]interface{})
	if !ok {
		return ""
	}
	code, _ := errObj["code"].(string)
	return code
}
