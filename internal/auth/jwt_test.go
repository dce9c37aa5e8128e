package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWT_RoundTrip(t *testing.T) {
	svc := NewJWTService("secret", 2)
	token, claims, err := svc.Generate("r@lab.org", "Crystals", RoleResearcher)
	require.NoError(t, err)
	assert.NotEmpty(t, claims.ID)

	got, err := svc.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, "r@lab.org", got.Email)
	assert.Equal(t, "Crystals", got.Project)
	assert.Equal(t, RoleResearcher, got.Role)
	assert.Equal(t, claims.ID, got.ID)
	assert.InDelta(t, (2 * time.Hour).Seconds(), got.TTL(time.Now()).Seconds(), 5)
}

func TestJWT_UniqueIDs(t *testing.T) {
	svc := NewJWTService("secret", 1)
	_, a, err := svc.Generate("r@lab.org", "", RoleResearcher)
	require.NoError(t, err)
	_, b, err := svc.Generate("r@lab.org", "", RoleResearcher)
	require.NoError(t, err)
	assert.NotEqual(t, a.ID, b.ID)
}

func TestJWT_RejectsForeignSecret(t *testing.T) {
	token, _, err := NewJWTService("one", 1).Generate("r@lab.org", "", RoleAdmin)
	require.NoError(t, err)

	_, err = NewJWTService("two", 1).Validate(token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = NewJWTService("one", 1).Validate("garbage")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenFromRequest(t *testing.T) {
	gin.SetMode(gin.TestMode)
	tests := []struct {
		name   string
		header string
		cookie string
		want   string
	}{
		{"bearer", "Bearer abc", "", "abc"},
		{"bearer wins over cookie", "Bearer abc", "def", "abc"},
		{"malformed header", "Token abc", "def", ""},
		{"cookie", "", "def", "def"},
		{"none", "", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				c.Request.Header.Set("Authorization", tt.header)
			}
			if tt.cookie != "" {
				c.Request.AddCookie(&http.Cookie{Name: SessionCookie, Value: tt.cookie})
			}
			assert.Equal(t, tt.want, TokenFromRequest(c))
		})
	}
}
