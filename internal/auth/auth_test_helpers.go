package auth

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/XevilA/spu-nexus-sub000/internal/database"
	"github.com/XevilA/spu-nexus-sub000/internal/logger"
	"github.com/XevilA/spu-nexus-sub000/internal/service"
)

// TestIssuer signs the tokens of handler tests in every package.
var TestIssuer = NewJwtIssuer("test-secret-key", time.Hour)

// GetAccessToken is a helper function to obtain an access token for a user by simulating a login API call.
// It takes the testing object, database connection, username, and password as parameters.
// It returns the access token as a string and any error encountered during the process.
func GetAccessToken(
	t *testing.T,
	db *database.DBinstanceStruct,
	username string,
	password string,
) (string, error) {
	t.Helper()
	services := service.New(service.Deps{DB: db, Log: logger.Discard()})
	handler := NewLocalAuthHandler(services.Identity, TestIssuer, logger.Discard())
	rec, resp, err := serveJSON(handler.LocalLoginHandler, "/login", http.MethodPost, map[string]string{
		"username": username,
		"password": password,
	})
	if err != nil {
		return "", err
	}
	if rec.Code != http.StatusOK {
		return "", fmt.Errorf("login Failed: status %d, body: %s", rec.Code, rec.Body.String())
	}
	if resp["access_token"] == nil {
		return "", fmt.Errorf("login Failed: no access_token in response: %s", rec.Body.String())
	}
	return resp["access_token"].(string), nil
}

// serveJSON registers handler on a bare engine at target's path, sends it body as
// JSON and decodes the JSON reply. A nil body sends no payload.
func serveJSON(
	handler gin.HandlerFunc,
	target string,
	method string,
	body any,
) (*httptest.ResponseRecorder, map[string]interface{}, error) {
	var payload io.Reader = http.NoBody
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, nil, err
		}
		payload = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, target, payload)
	req.Header.Set("Content-Type", "application/json")

	engine := gin.New()
	engine.Handle(method, req.URL.Path, handler)
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)

	var resp map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		return rec, nil, err
	}
	return rec, resp, nil
}
