package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testToken = "tok-123"

// fakeAPI serves a customer account with one job and one quote.
func fakeAPI(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	authorized := func(w http.ResponseWriter, r *http.Request) bool {
		if r.Header.Get("Authorization") != "Bearer "+testToken {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"detail":"Could not validate credentials"}`))
			return false
		}
		return true
	}
	reply := func(w http.ResponseWriter, body string) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	}

	mux.HandleFunc("/api/v1/auth/login", func(w http.ResponseWriter, r *http.Request) {
		_ = r.ParseForm()
		if r.PostForm.Get("username") != "cara@example.com" || r.PostForm.Get("password") != "secret123" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"detail":"Incorrect email or password"}`))
			return
		}
		reply(w, `{"access_token":"`+testToken+`","token_type":"bearer"}`)
	})
	mux.HandleFunc("/api/v1/auth/me", func(w http.ResponseWriter, r *http.Request) {
		if authorized(w, r) {
			reply(w, `{"id":5,"email":"cara@example.com","full_name":"Cara Customer","role":"customer"}`)
		}
	})
	mux.HandleFunc("/api/v1/jobs/", func(w http.ResponseWriter, r *http.Request) {
		if authorized(w, r) {
			reply(w, `[{"id":1,"customer_id":5,"title":"Fix sink","location":"Westlands","urgency":"urgent","status":"open","budget_max":200}]`)
		}
	})
	mux.HandleFunc("/api/v1/quotes/", func(w http.ResponseWriter, r *http.Request) {
		if authorized(w, r) {
			reply(w, `[{"id":10,"job_id":1,"professional_id":8,"professional_name":"Pat","customer_id":5,"amount":150,"status":"accepted"}]`)
		}
	})
	mux.HandleFunc("/api/v1/services/", func(w http.ResponseWriter, r *http.Request) {
		reply(w, `[{"id":1,"name":"Plumbing","category":"home"}]`)
	})

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

type harness struct {
	t         *testing.T
	apiURL    string
	tokenFile string
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	return &harness{
		t:         t,
		apiURL:    fakeAPI(t).URL + "/api/v1",
		tokenFile: filepath.Join(t.TempDir(), "session.json"),
	}
}

func (h *harness) run(args ...string) (string, error) {
	h.t.Helper()
	root := NewRootCommand()
	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetIn(strings.NewReader("secret123\n"))
	root.SetArgs(append([]string{
		"--api-url", h.apiURL,
		"--token-file", h.tokenFile,
		"--no-color",
	}, args...))
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestServicesList_Anonymous(t *testing.T) {
	h := newHarness(t)

	out, err := h.run("services", "list", "-o", "json")
	require.NoError(t, err)

	var body struct {
		Count    int `json:"count"`
		Services []struct {
			Name string `json:"name"`
		} `json:"services"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &body))
	assert.Equal(t, 1, body.Count)
	assert.Equal(t, "Plumbing", body.Services[0].Name)
}

func TestDashboard_RequiresLogin(t *testing.T) {
	h := newHarness(t)

	_, err := h.run("dashboard")
	require.Error(t, err)
	assert.ErrorIs(t, err, errLoginRequired)
}

func TestLoginDashboardLogout(t *testing.T) {
	h := newHarness(t)

	out, err := h.run("login", "--email", "cara@example.com", "--password-stdin")
	require.NoError(t, err)
	assert.Contains(t, out, "Logged in as Cara Customer (Homeowner)")
	assert.Contains(t, out, "/dashboard")
	assert.FileExists(t, h.tokenFile)

	out, err = h.run("dashboard")
	require.NoError(t, err)
	assert.Contains(t, out, "Welcome back, Cara Customer")
	assert.Contains(t, out, "Fix sink")
	assert.Contains(t, out, "Accepted:        1 (100%)")

	out, err = h.run("whoami", "-o", "yaml")
	require.NoError(t, err)
	assert.Contains(t, out, "email: cara@example.com")

	_, err = h.run("jobs", "open")
	assert.ErrorIs(t, err, errRoleRequired)

	_, err = h.run("logout")
	require.NoError(t, err)
	_, statErr := os.Stat(h.tokenFile)
	assert.True(t, os.IsNotExist(statErr))

	_, err = h.run("dashboard")
	assert.ErrorIs(t, err, errLoginRequired)
}

func TestLogin_BadPassword(t *testing.T) {
	h := newHarness(t)

	_, err := h.run("login", "--email", "cara@example.com", "--password", "wrong")
	require.Error(t, err)
	assert.Equal(t, "Incorrect email or password", err.Error())
	assert.NoFileExists(t, h.tokenFile)
}

func TestStaleTokenIsDiscarded(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, os.WriteFile(h.tokenFile,
		[]byte(`{"version":1,"token":"revoked","saved_at":"2026-01-01T00:00:00Z"}`), 0o600))

	_, err := h.run("dashboard")
	assert.ErrorIs(t, err, errLoginRequired)
	assert.NoFileExists(t, h.tokenFile)
}

func TestMetricsTextfile(t *testing.T) {
	h := newHarness(t)
	metricsFile := filepath.Join(t.TempDir(), "handyctl.prom")

	_, err := h.run("services", "list", "--metrics-textfile", metricsFile)
	require.NoError(t, err)

	data, err := os.ReadFile(metricsFile)
	require.NoError(t, err)
	assert.Contains(t, string(data), `handyctl_api_requests_total{code="200",method="get"} 1`)
}

func TestPrintError(t *testing.T) {
	noColor = true
	var buf bytes.Buffer
	printError(&buf, errLoginRequired)
	assert.Equal(t, "Error: not logged in\nLog in first with 'handyctl login'.\n", buf.String())
}
