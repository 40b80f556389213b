package app

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"devlink/internal/config"
)

type envelope struct {
	Status  int             `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type testServer struct {
	t   *testing.T
	app *App
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	cfg := config.Config{
		App:      config.AppConfig{AppName: "devlink-test", Environment: "test", StorageDriver: config.DriverMemory},
		Database: config.DatabaseConfig{QueryTimeout: time.Second},
		JWT:      config.JWTConfig{Secret: "test-secret", ExpiresIn: time.Hour},
		Auth:     config.AuthConfig{BcryptCost: 4},
	}
	c, err := NewContainer(context.Background(), cfg, log.New(io.Discard, "", 0))
	if err != nil {
		t.Fatalf("container: %v", err)
	}
	t.Cleanup(func() { _ = c.Close() })
	return &testServer{t: t, app: New(c)}
}

func (s *testServer) do(method, path, token string, body any) (int, envelope) {
	s.t.Helper()
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			s.t.Fatalf("marshal: %v", err)
		}
		rd = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, rd)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("x-auth-token", token)
	}

	resp, err := s.app.Fiber.Test(req)
	if err != nil {
		s.t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()

	var env envelope
	raw, _ := io.ReadAll(resp.Body)
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &env); err != nil {
			s.t.Fatalf("%s %s: decode %q: %v", method, path, raw, err)
		}
	}
	return resp.StatusCode, env
}

func (s *testServer) register(name, email string) string {
	s.t.Helper()
	code, env := s.do(http.MethodPost, "/api/users", "", map[string]string{
		"name": name, "email": email, "password": "secret",
	})
	if code != http.StatusOK {
		s.t.Fatalf("register: status %d message %q", code, env.Message)
	}
	var data struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(env.Data, &data); err != nil || data.Token == "" {
		s.t.Fatalf("register: no token in %s", env.Data)
	}
	return data.Token
}

type profileBody struct {
	ID   string `json:"id"`
	User struct {
		ID     string `json:"id"`
		Name   string `json:"name"`
		Avatar string `json:"avatar"`
	} `json:"user"`
	Status     string            `json:"status"`
	Company    string            `json:"company"`
	Skills     []string          `json:"skills"`
	Social     map[string]string `json:"social"`
	Experience []struct {
		ID      string  `json:"id"`
		Title   string  `json:"title"`
		Company string  `json:"company"`
		From    string  `json:"from"`
		To      *string `json:"to"`
		Current bool    `json:"current"`
	} `json:"experience"`
	Education []struct {
		ID     string `json:"id"`
		School string `json:"school"`
	} `json:"education"`
}

type fieldErrors struct {
	Errors []struct {
		Field   string `json:"field"`
		Message string `json:"message"`
	} `json:"errors"`
}

func reportedFields(t *testing.T, env envelope) map[string]string {
	t.Helper()
	var data fieldErrors
	if err := json.Unmarshal(env.Data, &data); err != nil {
		t.Fatalf("decode errors: %v (%s)", err, env.Data)
	}
	out := map[string]string{}
	for _, e := range data.Errors {
		out[e.Field] = e.Message
	}
	return out
}

func decodeProfile(t *testing.T, env envelope) profileBody {
	t.Helper()
	var p profileBody
	if err := json.Unmarshal(env.Data, &p); err != nil {
		t.Fatalf("decode profile: %v (%s)", err, env.Data)
	}
	return p
}

func TestAPI_RegisterAddExperienceGetOwnProfile(t *testing.T) {
	s := newTestServer(t)
	tok := s.register("Ada", "ada@example.com")

	code, env := s.do(http.MethodPut, "/api/profile/experience", tok, map[string]any{
		"title": "Dev", "company": "Acme", "from": "2020-01-01",
	})
	if code != http.StatusBadRequest || env.Message != "There is no profile for this user" {
		t.Fatalf("expected no-profile error, got %d %q", code, env.Message)
	}

	code, env = s.do(http.MethodPost, "/api/profile", tok, map[string]any{
		"status": "Developer", "skills": "go, rust , ts", "twitter": "https://twitter.com/ada",
	})
	if code != http.StatusOK {
		t.Fatalf("create profile: %d %q", code, env.Message)
	}

	code, env = s.do(http.MethodPut, "/api/profile/experience", tok, map[string]any{
		"title": "Dev", "company": "Acme", "from": "2020-01-01",
	})
	if code != http.StatusOK {
		t.Fatalf("add experience: %d %q", code, env.Message)
	}

	code, env = s.do(http.MethodGet, "/api/profile/me", tok, nil)
	if code != http.StatusOK {
		t.Fatalf("get own profile: %d %q", code, env.Message)
	}
	p := decodeProfile(t, env)

	if p.User.Name != "Ada" || p.User.Avatar == "" {
		t.Fatalf("expected owner joined, got %+v", p.User)
	}
	if len(p.Skills) != 3 || p.Skills[1] != "rust" {
		t.Fatalf("unexpected skills %v", p.Skills)
	}
	if p.Social["twitter"] != "https://twitter.com/ada" {
		t.Fatalf("unexpected social %v", p.Social)
	}
	if _, ok := p.Social["facebook"]; ok {
		t.Fatalf("absent social keys must be omitted: %v", p.Social)
	}
	if len(p.Experience) != 1 {
		t.Fatalf("expected one experience entry, got %d", len(p.Experience))
	}
	e := p.Experience[0]
	if e.ID == "" || e.Title != "Dev" || e.Company != "Acme" || e.Current || e.To != nil {
		t.Fatalf("unexpected experience entry %+v", e)
	}
}

func TestAPI_ProtectedRoutesRejectBadTokens(t *testing.T) {
	s := newTestServer(t)

	for _, tok := range []string{"", "not-a-jwt"} {
		code, env := s.do(http.MethodGet, "/api/profile/me", tok, nil)
		if code != http.StatusUnauthorized || env.Message != "Token is not valid" {
			t.Fatalf("token %q: got %d %q", tok, code, env.Message)
		}
	}

	code, _ := s.do(http.MethodGet, "/api/profile", "", nil)
	if code != http.StatusOK {
		t.Fatalf("public list must not require a token, got %d", code)
	}
}

func TestAPI_RegisterValidationReportsEveryField(t *testing.T) {
	s := newTestServer(t)

	code, env := s.do(http.MethodPost, "/api/users", "", map[string]string{
		"name": "", "email": "nope", "password": "123",
	})
	if code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", code)
	}
	fields := reportedFields(t, env)
	if fields["name"] == "" || fields["email"] == "" || fields["password"] == "" {
		t.Fatalf("expected all three fields reported, got %+v", fields)
	}
}

func TestAPI_CreateProfileReportsEveryMissingField(t *testing.T) {
	s := newTestServer(t)
	tok := s.register("Ada", "ada@example.com")

	code, env := s.do(http.MethodPost, "/api/profile", tok, map[string]any{})
	if code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d %q", code, env.Message)
	}
	fields := reportedFields(t, env)
	if fields["status"] != "Status is required" || fields["skills"] != "Skills is required" {
		t.Fatalf("expected status and skills reported, got %+v", fields)
	}
}

func TestAPI_UpsertWebsiteBlankOrBareDomain(t *testing.T) {
	s := newTestServer(t)
	tok := s.register("Ada", "ada@example.com")

	code, env := s.do(http.MethodPost, "/api/profile", tok, map[string]any{
		"status": "Dev", "skills": "go", "website": "example.com",
	})
	if code != http.StatusOK {
		t.Fatalf("bare domain: %d %q", code, env.Message)
	}

	code, env = s.do(http.MethodPost, "/api/profile", tok, map[string]any{
		"status": "Dev", "skills": "go", "website": "",
	})
	if code != http.StatusOK {
		t.Fatalf("blank website: %d %q", code, env.Message)
	}
	var p struct {
		Website string `json:"website"`
	}
	if err := json.Unmarshal(env.Data, &p); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if p.Website != "example.com" {
		t.Fatalf("expected blank website to keep stored value, got %q", p.Website)
	}
}

func TestAPI_DuplicateAndLogin(t *testing.T) {
	s := newTestServer(t)
	s.register("Ada", "ada@example.com")

	code, env := s.do(http.MethodPost, "/api/users", "", map[string]string{
		"name": "Ada", "email": "ADA@example.com", "password": "secret",
	})
	if code != http.StatusBadRequest || env.Message != "User already exists" {
		t.Fatalf("expected duplicate error, got %d %q", code, env.Message)
	}

	code, _ = s.do(http.MethodPost, "/api/auth", "", map[string]string{"email": "ada@example.com", "password": "secret"})
	if code != http.StatusOK {
		t.Fatalf("login: %d", code)
	}

	_, wrong := s.do(http.MethodPost, "/api/auth", "", map[string]string{"email": "ada@example.com", "password": "wrong!"})
	_, unknown := s.do(http.MethodPost, "/api/auth", "", map[string]string{"email": "bob@example.com", "password": "secret"})
	if wrong.Message != unknown.Message || wrong.Status != http.StatusBadRequest {
		t.Fatalf("login failures must look alike: %+v vs %+v", wrong, unknown)
	}
}

func TestAPI_DeleteAccount(t *testing.T) {
	s := newTestServer(t)
	tok := s.register("Ada", "ada@example.com")

	code, env := s.do(http.MethodGet, "/api/auth/me", tok, nil)
	if code != http.StatusOK {
		t.Fatalf("me: %d", code)
	}
	var me struct {
		ID           string `json:"id"`
		PasswordHash string `json:"password_hash"`
	}
	_ = json.Unmarshal(env.Data, &me)
	if me.ID == "" || me.PasswordHash != "" {
		t.Fatalf("unexpected user payload %s", env.Data)
	}

	if code, env := s.do(http.MethodPost, "/api/profile", tok, map[string]any{"status": "Dev", "skills": "go"}); code != http.StatusOK {
		t.Fatalf("create profile: %d %q", code, env.Message)
	}

	if code, env := s.do(http.MethodDelete, "/api/profile", tok, nil); code != http.StatusOK {
		t.Fatalf("delete: %d %q", code, env.Message)
	}

	if code, _ := s.do(http.MethodGet, "/api/auth/me", tok, nil); code != http.StatusNotFound {
		t.Fatalf("expected 404 after deletion, got %d", code)
	}
	code, env = s.do(http.MethodGet, "/api/profile/user/"+me.ID, "", nil)
	if code != http.StatusBadRequest || env.Message != "Profile not found" {
		t.Fatalf("expected profile gone, got %d %q", code, env.Message)
	}

	code, env = s.do(http.MethodPost, "/api/profile", tok, map[string]any{"status": "Dev", "skills": "go"})
	if code != http.StatusNotFound || env.Message != "User not found" {
		t.Fatalf("expected upsert after deletion rejected, got %d %q", code, env.Message)
	}
	code, env = s.do(http.MethodGet, "/api/profile", "", nil)
	if code != http.StatusOK {
		t.Fatalf("list: %d %q", code, env.Message)
	}
	var list []json.RawMessage
	if err := json.Unmarshal(env.Data, &list); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(list) != 0 {
		t.Fatalf("expected no profiles after deletion, got %d", len(list))
	}
	if got, _ := s.app.Container.store.profiles.List(context.Background()); len(got) != 0 {
		t.Fatalf("expected nothing stored, got %d profiles", len(got))
	}
}

func TestAPI_HealthAndMetrics(t *testing.T) {
	s := newTestServer(t)

	if code, env := s.do(http.MethodGet, "/health", "", nil); code != http.StatusOK {
		t.Fatalf("health: %d %q", code, env.Message)
	}

	resp, err := s.app.Fiber.Test(httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if err != nil {
		t.Fatalf("metrics: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("metrics: %d", resp.StatusCode)
	}
}

func TestListenAddr(t *testing.T) {
	if got, _ := ListenAddr("8080"); got != ":8080" {
		t.Fatalf("got %q", got)
	}
	if got, _ := ListenAddr(":9090"); got != ":9090" {
		t.Fatalf("got %q", got)
	}
	if _, err := ListenAddr(" "); err == nil {
		t.Fatalf("expected error")
	}
}
