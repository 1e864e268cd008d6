package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/bizmatters/agent-builder/catalog-chatbot/internal/models"
)

const testSecret = "test-secret-key-for-testing-only"

func TestNewTokenManager_RequiresSecret(t *testing.T) {
	_, err := NewTokenManager("")
	assert.Error(t, err)
}

func TestTokenManager_RoundTrip(t *testing.T) {
	tm, err := NewTokenManager(testSecret)
	require.NoError(t, err)

	token, err := tm.GenerateToken(context.Background(), "storefront", []string{"chat"}, time.Hour)
	require.NoError(t, err)

	claims, err := tm.ValidateToken(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, "storefront", claims.Subject)
	assert.Equal(t, []string{"chat"}, claims.Roles)
	assert.Equal(t, issuer, claims.Issuer)
}

func TestTokenManager_Rejections(t *testing.T) {
	tm, err := NewTokenManager(testSecret)
	require.NoError(t, err)
	other, err := NewTokenManager("a-different-secret")
	require.NoError(t, err)
	ctx := context.Background()

	expired, err := tm.GenerateToken(ctx, "storefront", nil, -time.Minute)
	require.NoError(t, err)
	foreign, err := other.GenerateToken(ctx, "storefront", nil, time.Hour)
	require.NoError(t, err)
	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{"sub": "x"}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
		want  error
	}{
		{"empty", "", ErrMissingToken},
		{"garbage", "not.a.token", ErrInvalidToken},
		{"expired", expired, ErrTokenExpired},
		{"wrong secret", foreign, ErrInvalidToken},
		{"alg none", none, ErrInvalidToken},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tm.ValidateToken(ctx, tt.token)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func newGatedRouter(t *testing.T, enabled bool, tm *TokenManager) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Gate(enabled, tm, zaptest.NewLogger(t)))
	r.GET("/ping", func(c *gin.Context) {
		subject, _ := c.Get(SubjectKey)
		c.JSON(http.StatusOK, gin.H{"subject": subject})
	})
	return r
}

func TestGate(t *testing.T) {
	tm, err := NewTokenManager(testSecret)
	require.NoError(t, err)
	valid, err := tm.GenerateToken(context.Background(), "storefront", nil, time.Hour)
	require.NoError(t, err)

	tests := []struct {
		name       string
		enabled    bool
		header     string
		query      string
		wantStatus int
		wantError  string
	}{
		{"disabled passes through", false, "", "", http.StatusOK, ""},
		{"missing token", true, "", "", http.StatusUnauthorized, "Authorization header missing"},
		{"invalid token", true, "Bearer nope", "", http.StatusUnauthorized, "Invalid token"},
		{"valid header", true, "Bearer " + valid, "", http.StatusOK, ""},
		{"valid query", true, "", valid, http.StatusOK, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newGatedRouter(t, tt.enabled, tm)
			target := "/ping"
			if tt.query != "" {
				target += "?token=" + tt.query
			}
			req := httptest.NewRequest(http.MethodGet, target, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
			if tt.wantError != "" {
				var body models.ErrorResponse
				require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
				assert.Equal(t, tt.wantError, body.Error)
				assert.Equal(t, models.ErrCodeUnauthorized, body.Code)
			}
		})
	}
}
