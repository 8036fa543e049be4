package handler

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"github.com/go-chi/chi/v5"

	"github.com/kellyw/taskdeck/internal/apperror"
	"github.com/kellyw/taskdeck/internal/auth"
	"github.com/kellyw/taskdeck/internal/model"
	"github.com/kellyw/taskdeck/internal/repository"
	"github.com/kellyw/taskdeck/internal/service"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeUserRepo holds a single canned user and records enough behavior to
// exercise the handler's status mapping.
type fakeUserRepo struct {
	user *model.User
}

var _ repository.UserRepository = (*fakeUserRepo)(nil)

func (f *fakeUserRepo) Create(ctx context.Context, p repository.CreateUserParams) (*model.User, error) {
	if f.user != nil && f.user.Username == p.Username {
		return nil, apperror.DuplicateUsername(p.Username)
	}
	if f.user != nil && f.user.Email == p.Email {
		return nil, apperror.DuplicateEmail(p.Email)
	}
	u := &model.User{ID: 1234567890, Username: p.Username, Email: p.Email, IsActive: true, PasswordHash: p.PasswordHash}
	f.user = u
	return u, nil
}

func (f *fakeUserRepo) CreateOAuth(ctx context.Context, p repository.CreateOAuthUserParams) (*model.User, error) {
	u := &model.User{ID: 1234567890, Username: p.Username, Email: p.Email, IsActive: true, OAuthProvider: p.Provider, OAuthID: p.OAuthID}
	f.user = u
	return u, nil
}

func (f *fakeUserRepo) GetByID(ctx context.Context, id string) (*model.User, error) {
	if f.user != nil && f.user.Key() == id {
		return f.user, nil
	}
	return nil, nil
}

func (f *fakeUserRepo) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	if f.user != nil && f.user.Username == username {
		return f.user, nil
	}
	return nil, nil
}

func (f *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	if f.user != nil && f.user.Email == email {
		return f.user, nil
	}
	return nil, nil
}

func (f *fakeUserRepo) GetByOAuthIdentity(ctx context.Context, provider, oauthID string) (*model.User, error) {
	if f.user != nil && f.user.OAuthProvider == provider && f.user.OAuthID == oauthID {
		return f.user, nil
	}
	return nil, nil
}

func (f *fakeUserRepo) List(ctx context.Context) ([]model.User, error) {
	if f.user == nil {
		return []model.User{}, nil
	}
	return []model.User{*f.user}, nil
}

func (f *fakeUserRepo) Update(ctx context.Context, id string, fields map[string]any) (*model.User, error) {
	if f.user == nil || f.user.Key() != id {
		return nil, apperror.NotFound("user", id)
	}
	if v, ok := fields["first_name"].(string); ok {
		f.user.FirstName = v
	}
	return f.user, nil
}

func (f *fakeUserRepo) Delete(ctx context.Context, id string) error {
	if f.user != nil && f.user.Key() == id {
		f.user = nil
	}
	return nil
}

func (f *fakeUserRepo) LinkOAuthIdentity(ctx context.Context, id, provider, oauthID string) (*model.User, error) {
	if f.user == nil || f.user.Key() != id {
		return nil, apperror.NotFound("user", id)
	}
	f.user.OAuthProvider = provider
	f.user.OAuthID = oauthID
	return f.user, nil
}

func newUserTestHandler(repo *fakeUserRepo) *UserHandler {
	svc := service.NewUserService(repo, auth.NewPasswordServiceForTest(bcrypt.MinCost), discardLogger())
	return NewUserHandler(svc, discardLogger())
}

func TestHandleCreateUser(t *testing.T) {
	h := newUserTestHandler(&fakeUserRepo{})

	body := `{"username":"sam","email":"sam@co.com","first_name":"Sam"}`
	req := httptest.NewRequest(http.MethodPost, "/api/users", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.HandleCreate(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201; body = %s", rec.Code, rec.Body.String())
	}

	var user model.User
	if err := json.NewDecoder(rec.Body).Decode(&user); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if user.Username != "sam" {
		t.Errorf("Username = %q, want sam", user.Username)
	}
}

func TestHandleCreateUser_NeverLeaksPasswordHash(t *testing.T) {
	h := newUserTestHandler(&fakeUserRepo{})

	body := `{"username":"sam","email":"sam@co.com","password":"hunter22"}`
	req := httptest.NewRequest(http.MethodPost, "/api/users", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.HandleCreate(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201", rec.Code)
	}
	if strings.Contains(rec.Body.String(), "password") || strings.Contains(rec.Body.String(), "$2a$") {
		t.Errorf("response leaks password material: %s", rec.Body.String())
	}
}

func TestHandleCreateUser_StatusMapping(t *testing.T) {
	seeded := &model.User{ID: 1234567890, Username: "sam", Email: "sam@co.com", IsActive: true}

	cases := []struct {
		name       string
		body       string
		wantStatus int
		wantError  string
	}{
		{"duplicate username", `{"username":"sam","email":"new@co.com"}`, http.StatusConflict, "conflict"},
		{"duplicate email", `{"username":"pat","email":"sam@co.com"}`, http.StatusConflict, "conflict"},
		{"missing username", `{"email":"new@co.com"}`, http.StatusBadRequest, "validation_error"},
		{"malformed JSON", `{"username":`, http.StatusBadRequest, "bad_request"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h := newUserTestHandler(&fakeUserRepo{user: seeded})

			req := httptest.NewRequest(http.MethodPost, "/api/users", strings.NewReader(tc.body))
			rec := httptest.NewRecorder()
			h.HandleCreate(rec, req)

			if rec.Code != tc.wantStatus {
				t.Fatalf("status = %d, want %d; body = %s", rec.Code, tc.wantStatus, rec.Body.String())
			}

			var resp ErrorResponse
			if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
				t.Fatalf("decoding error response: %v", err)
			}
			if resp.Error != tc.wantError {
				t.Errorf("error = %q, want %q", resp.Error, tc.wantError)
			}
		})
	}
}

func TestHandleGetUser_NotFound(t *testing.T) {
	h := newUserTestHandler(&fakeUserRepo{})

	req := httptest.NewRequest(http.MethodGet, "/api/users/9999999999", nil)
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("id", "9999999999")
	req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
	rec := httptest.NewRecorder()
	h.HandleGet(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestHandleDeleteUser_AbsentIDStill204(t *testing.T) {
	h := newUserTestHandler(&fakeUserRepo{})

	req := httptest.NewRequest(http.MethodDelete, "/api/users/9999999999", nil)
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("id", "9999999999")
	req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
	rec := httptest.NewRecorder()
	h.HandleDelete(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Errorf("status = %d, want 204", rec.Code)
	}
}
