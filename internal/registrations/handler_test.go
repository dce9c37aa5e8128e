package registrations

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campus-rcs/site-coordination/internal/models"
)

type fakeStore struct {
	created []*models.Registration
	listQ   string
	err     error
}

func (f *fakeStore) Create(_ context.Context, reg *models.Registration) error {
	if f.err != nil {
		return f.err
	}
	reg.Status = models.RegistrationStatusPending
	f.created = append(f.created, reg)
	return nil
}

func (f *fakeStore) List(_ context.Context, q string) ([]*models.Registration, error) {
	f.listQ = q
	return f.created, nil
}

type fakeUsers map[string]bool

func (f fakeUsers) Exists(_ context.Context, email string) (bool, error) {
	return f[email], nil
}

type fakeLifecycle struct {
	approved []string
	err      error
}

func (f *fakeLifecycle) ApproveRegistration(_ context.Context, email string) (*models.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.approved = append(f.approved, email)
	return &models.User{Email: email, Password: "secret"}, nil
}

func (f *fakeLifecycle) DenyRegistration(_ context.Context, email string) (*models.Registration, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &models.Registration{Email: email, Status: models.RegistrationStatusDenied}, nil
}

func newRouter(store *fakeStore, users fakeUsers, lc *fakeLifecycle) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewHandler(store, users, lc, nil)
	r := gin.New()
	r.POST("/registrations/manual", h.Manual)
	r.GET("/registrations", h.List)
	r.POST("/registrations/:email/approve", h.Approve)
	r.POST("/registrations/:email/deny", h.Deny)
	return r
}

func do(r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func manualBody(raw string) string {
	b, _ := json.Marshal(ManualRequest{RawEmail: raw})
	return string(b)
}

func TestManual_StoresPending(t *testing.T) {
	store := &fakeStore{}
	r := newRouter(store, fakeUsers{}, &fakeLifecycle{})

	w := do(r, http.MethodPost, "/registrations/manual",
		manualBody("Email: Ada@Example.org\nFirst name: Ada\nLast name: Lovelace\nProject: Engines"))
	require.Equal(t, http.StatusCreated, w.Code)
	require.Len(t, store.created, 1)
	assert.Equal(t, "ada@example.org", store.created[0].Email)
	assert.Equal(t, "Engines", store.created[0].Project)
}

func TestManual_ParseError(t *testing.T) {
	store := &fakeStore{}
	r := newRouter(store, fakeUsers{}, &fakeLifecycle{})

	w := do(r, http.MethodPost, "/registrations/manual", manualBody("hello, please register me"))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Empty(t, store.created)
}

func TestManual_ExistingUser(t *testing.T) {
	store := &fakeStore{}
	r := newRouter(store, fakeUsers{"ada@example.org": true}, &fakeLifecycle{})

	w := do(r, http.MethodPost, "/registrations/manual",
		manualBody("Email: ada@example.org\nVorname: Ada\nNachname: Lovelace"))
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Empty(t, store.created)
}

func TestManual_DuplicateRegistration(t *testing.T) {
	store := &fakeStore{err: models.ErrRegistrationExists}
	r := newRouter(store, fakeUsers{}, &fakeLifecycle{})

	w := do(r, http.MethodPost, "/registrations/manual",
		manualBody("Email: ada@example.org\nVorname: Ada\nNachname: Lovelace"))
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestList_PassesQuery(t *testing.T) {
	store := &fakeStore{}
	r := newRouter(store, fakeUsers{}, &fakeLifecycle{})

	w := do(r, http.MethodGet, "/registrations?q=Love%27%3B--", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Love';--", store.listQ)
}

func TestApprove(t *testing.T) {
	lc := &fakeLifecycle{}
	r := newRouter(&fakeStore{}, fakeUsers{}, lc)

	w := do(r, http.MethodPost, "/registrations/Ada@Example.org/approve", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"ada@example.org"}, lc.approved)
	assert.NotContains(t, w.Body.String(), "secret")
}

func TestApprove_ErrorMapping(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{models.ErrRegistrationNotFound, http.StatusNotFound},
		{models.ErrUserExists, http.StatusConflict},
		{fmt.Errorf("registration is denied: %w", models.ErrNotPending), http.StatusConflict},
	}
	for _, tt := range tests {
		r := newRouter(&fakeStore{}, fakeUsers{}, &fakeLifecycle{err: tt.err})
		assert.Equal(t, tt.want, do(r, http.MethodPost, "/registrations/x@y.org/approve", "").Code, tt.err.Error())
		assert.Equal(t, tt.want, do(r, http.MethodPost, "/registrations/x@y.org/deny", "").Code, tt.err.Error())
	}
}
