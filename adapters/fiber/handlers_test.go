package fiber

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v3"

	"github.com/lborres/careerguide/backend"
	"github.com/lborres/careerguide/core"
	"github.com/lborres/careerguide/pkg/crypto"
)

func newTestApp(t *testing.T) *fiber.App {
	t.Helper()
	b, err := backend.New(backend.Config{Passwords: crypto.NewFastArgon2()})
	if err != nil {
		t.Fatalf("backend.New() error = %v", err)
	}
	if err := b.SeedDemoAccounts(); err != nil {
		t.Fatalf("SeedDemoAccounts() error = %v", err)
	}

	app := fiber.New()
	if err := New(app, b).RegisterRoutes(""); err != nil {
		t.Fatalf("RegisterRoutes() error = %v", err)
	}
	return app
}

func do(t *testing.T, app *fiber.App, method, path, token, body string) (int, map[string]any) {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, DefaultBasePath+path, r)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test(%s %s) error = %v", method, path, err)
	}
	defer resp.Body.Close()

	out := map[string]any{}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode %s %s: %v", method, path, err)
	}
	return resp.StatusCode, out
}

func loginToken(t *testing.T, app *fiber.App) string {
	t.Helper()
	status, body := do(t, app, http.MethodPost, "/login.php", "",
		`{"email":"`+backend.DemoStudentEmail+`","password":"`+backend.DemoPassword+`","loginAs":"user"}`)
	if status != http.StatusOK {
		t.Fatalf("login status = %d, body = %v", status, body)
	}
	return body["token"].(string)
}

// Requirement: login returns the token, role and the profile under the role key
func TestLogin(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		wantStatus int
		wantKey    string
	}{
		{
			name:       "student",
			body:       `{"email":"` + backend.DemoStudentEmail + `","password":"password123","loginAs":"user"}`,
			wantStatus: http.StatusOK,
			wantKey:    "user",
		},
		{
			name:       "counselor",
			body:       `{"email":"` + backend.DemoCounselorEmail + `","password":"password123","loginAs":"counselor"}`,
			wantStatus: http.StatusOK,
			wantKey:    "counselor",
		},
		{
			name:       "wrong password",
			body:       `{"email":"` + backend.DemoStudentEmail + `","password":"bad","loginAs":"user"}`,
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "wrong login type",
			body:       `{"email":"` + backend.DemoStudentEmail + `","password":"password123","loginAs":"counselor"}`,
			wantStatus: http.StatusForbidden,
		},
		{
			name:       "malformed body",
			body:       `{`,
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			// Arrange
			app := newTestApp(t)

			// Act
			status, body := do(t, app, http.MethodPost, "/login.php", "", test.body)

			// Assert
			if status != test.wantStatus {
				t.Fatalf("status = %d, want %d (body %v)", status, test.wantStatus, body)
			}
			if test.wantKey == "" {
				if body["success"] != false || body["message"] == "" {
					t.Errorf("failure envelope = %v", body)
				}
				return
			}
			if body["success"] != true || body["token"] == "" {
				t.Errorf("body = %v", body)
			}
			if _, ok := body[test.wantKey].(map[string]any); !ok {
				t.Errorf("profile missing under %q: %v", test.wantKey, body)
			}
		})
	}
}

func TestRegisterThenLogin(t *testing.T) {
	app := newTestApp(t)

	status, body := do(t, app, http.MethodPost, "/register.php", "",
		`{"firstName":"New","lastName":"Person","email":"new@careerguide.dev","password":"secret1","role":"student"}`)
	if status != http.StatusCreated || body["success"] != true {
		t.Fatalf("register = %d %v", status, body)
	}
	if _, ok := body["token"]; ok {
		t.Error("register must not issue a token")
	}

	status, _ = do(t, app, http.MethodPost, "/register.php", "",
		`{"firstName":"New","lastName":"Person","email":"new@careerguide.dev","password":"secret1","role":"student"}`)
	if status != http.StatusConflict {
		t.Errorf("duplicate register status = %d, want 409", status)
	}

	status, _ = do(t, app, http.MethodPost, "/login.php", "",
		`{"email":"new@careerguide.dev","password":"secret1","loginAs":"user"}`)
	if status != http.StatusOK {
		t.Errorf("login after register status = %d", status)
	}
}

// Requirement: protected endpoints reject requests without a valid bearer token
func TestProtectedRoutesRequireToken(t *testing.T) {
	app := newTestApp(t)

	for _, path := range []string{"/profile.php", "/resume.php", "/learning_journey.php", "/get_messages.php?counselor_id=1"} {
		status, body := do(t, app, http.MethodGet, path, "", "")
		if status != http.StatusUnauthorized || body["success"] != false {
			t.Errorf("GET %s = %d %v, want 401", path, status, body)
		}

		status, _ = do(t, app, http.MethodGet, path, "not-a-token", "")
		if status != http.StatusUnauthorized {
			t.Errorf("GET %s with bad token = %d, want 401", path, status)
		}
	}
}

func TestProfileUpdateShouldMerge(t *testing.T) {
	app := newTestApp(t)
	token := loginToken(t, app)

	status, body := do(t, app, http.MethodPost, "/profile.php", token, `{"bio":"Hello"}`)
	if status != http.StatusOK {
		t.Fatalf("update = %d %v", status, body)
	}

	_, body = do(t, app, http.MethodGet, "/profile.php", token, "")
	user := body["user"].(map[string]any)
	if user["bio"] != "Hello" || user["firstName"] != "Sam" {
		t.Errorf("profile = %v", user)
	}
}

func TestLogoutShouldRevokeToken(t *testing.T) {
	app := newTestApp(t)
	token := loginToken(t, app)

	status, _ := do(t, app, http.MethodPost, "/logout.php", token, "")
	if status != http.StatusOK {
		t.Fatalf("logout = %d", status)
	}

	status, _ = do(t, app, http.MethodGet, "/profile.php", token, "")
	if status != http.StatusUnauthorized {
		t.Errorf("profile after logout = %d, want 401", status)
	}
}

func TestCounselorDirectory(t *testing.T) {
	app := newTestApp(t)

	status, body := do(t, app, http.MethodGet, "/get_counselors.php", "", "")
	if status != http.StatusOK {
		t.Fatalf("status = %d", status)
	}
	if n := len(body["counselors"].([]any)); n != 5 {
		t.Errorf("len(counselors) = %d, want 5", n)
	}

	status, body = do(t, app, http.MethodGet, "/get_counselor.php?id=2", "", "")
	if status != http.StatusOK || body["counselor"].(map[string]any)["name"] != "Michael Chen" {
		t.Errorf("get_counselor = %d %v", status, body)
	}

	status, _ = do(t, app, http.MethodGet, "/get_counselor.php?id=42", "", "")
	if status != http.StatusNotFound {
		t.Errorf("unknown counselor status = %d, want 404", status)
	}
}

func TestMessagesAndDocuments(t *testing.T) {
	app := newTestApp(t)
	token := loginToken(t, app)

	status, body := do(t, app, http.MethodPost, "/send_message.php", token, `{"counselor_id":"1","message":"Hi"}`)
	if status != http.StatusCreated || body["data"] == nil {
		t.Fatalf("send = %d %v", status, body)
	}

	_, body = do(t, app, http.MethodGet, "/get_messages.php?counselor_id=1", token, "")
	if n := len(body["messages"].([]any)); n != 1 {
		t.Errorf("len(messages) = %d, want 1", n)
	}

	status, _ = do(t, app, http.MethodPost, "/resume.php", token, `{"headline":"Engineer"}`)
	if status != http.StatusOK {
		t.Fatalf("save resume = %d", status)
	}
	_, body = do(t, app, http.MethodGet, "/resume.php", token, "")
	if body["data"].(map[string]any)["headline"] != "Engineer" {
		t.Errorf("resume = %v", body)
	}

	status, _ = do(t, app, http.MethodPost, "/learning_journey.php", token, `not json`)
	if status != http.StatusBadRequest {
		t.Errorf("invalid journey status = %d, want 400", status)
	}
}

// Requirement: mapErrorToStatus maps backend errors to correct HTTP status codes
func TestMapErrorToStatus_ErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{name: "maps ErrInvalidCredentials to 401", err: backend.ErrInvalidCredentials, wantStatus: http.StatusUnauthorized},
		{name: "maps ErrInvalidToken to 401", err: backend.ErrInvalidToken, wantStatus: http.StatusUnauthorized},
		{name: "maps ErrWrongLoginType to 403", err: backend.ErrWrongLoginType, wantStatus: http.StatusForbidden},
		{name: "maps ErrCounselorNotFound to 404", err: backend.ErrCounselorNotFound, wantStatus: http.StatusNotFound},
		{name: "maps ErrEmailTaken to 409", err: backend.ErrEmailTaken, wantStatus: http.StatusConflict},
		{name: "maps ErrPasswordTooShort to 400", err: core.ErrPasswordTooShort, wantStatus: http.StatusBadRequest},
		{name: "maps ErrInvalidDocument to 400", err: backend.ErrInvalidDocument, wantStatus: http.StatusBadRequest},
		{name: "defaults unknown errors to 500", err: errors.New("unknown error"), wantStatus: http.StatusInternalServerError},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			// Act
			status := mapErrorToStatus(test.err)

			// Assert
			if status != test.wantStatus {
				t.Errorf("mapErrorToStatus should map error to %d; got %d", test.wantStatus, status)
			}
		})
	}
}
