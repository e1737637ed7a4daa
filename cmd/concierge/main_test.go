package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/careroute/concierge/pkg/config"
)

func TestToolsCommandPrintsCatalogue(t *testing.T) {
	var out bytes.Buffer
	toolsCmd.SetOut(&out)
	t.Cleanup(func() { toolsCmd.SetOut(nil) })

	if err := toolsCmd.RunE(toolsCmd, nil); err != nil {
		t.Fatalf("tools: %v", err)
	}

	var defs []struct {
		Name       string         `json:"name"`
		Parameters map[string]any `json:"parameters"`
	}
	if err := json.Unmarshal(out.Bytes(), &defs); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, out.String())
	}
	if len(defs) != 12 {
		t.Fatalf("tools = %d, want 12", len(defs))
	}
	for _, d := range defs {
		if d.Parameters["type"] != "object" {
			t.Errorf("%s: parameters.type = %v, want object", d.Name, d.Parameters["type"])
		}
	}
}

func TestOpenMemoryStoreWithSeed(t *testing.T) {
	seed := filepath.Join(t.TempDir(), "seed.yaml")
	content := "facilities:\n  - id: f1\n    name: Clinica Dental Tijuana\n    country: Mexico\n    rating: 4.6\n"
	if err := os.WriteFile(seed, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg := config.Defaults().Storage
	cfg.Memory.SeedFile = seed

	ctx := context.Background()
	store, err := openStore(ctx, cfg, discardLogger())
	if err != nil {
		t.Fatalf("openStore: %v", err)
	}
	defer store.Close()

	f, err := store.FindFacilityByName(ctx, "Clinica Dental Tijuana")
	if err != nil {
		t.Fatalf("FindFacilityByName: %v", err)
	}
	if f.ID != "f1" {
		t.Errorf("facility id = %q, want f1", f.ID)
	}
}

func TestOpenStoreUnknownType(t *testing.T) {
	cfg := config.Defaults().Storage
	cfg.Type = "redis"
	if _, err := openStore(context.Background(), cfg, discardLogger()); err == nil {
		t.Fatal("expected error for unknown storage type")
	}
}

func TestNewGateway(t *testing.T) {
	tests := []struct {
		name     string
		cfg      config.EngineConfig
		wantName string
		wantErr  bool
	}{
		{name: "openai", cfg: config.EngineConfig{Provider: "openai", BackendURL: "http://localhost:8000"}, wantName: "openai"},
		{name: "anthropic", cfg: config.EngineConfig{Provider: "anthropic", APIKey: "sk-ant"}, wantName: "anthropic"},
		{name: "openai without url", cfg: config.EngineConfig{Provider: "openai"}, wantErr: true},
		{name: "unknown", cfg: config.EngineConfig{Provider: "vllm"}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gw, err := newGateway(tt.cfg)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("newGateway: %v", err)
			}
			defer gw.Close()
			if gw.Name() != tt.wantName {
				t.Errorf("Name() = %q, want %q", gw.Name(), tt.wantName)
			}
		})
	}
}

func TestAuthMiddleware(t *testing.T) {
	mw, err := newAuthMiddleware(config.AuthConfig{Type: "none"}, "/metrics")
	if err != nil || mw != nil {
		t.Fatalf("auth none: mw=%v err=%v, want nil middleware", mw != nil, err)
	}

	cfg := config.Defaults().Auth
	cfg.Type = "jwt"
	cfg.JWT.Secret = "test-secret"
	mw, err = newAuthMiddleware(cfg, "/internal/metrics")
	if err != nil {
		t.Fatalf("auth jwt: %v", err)
	}

	next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusNoContent) })
	h := mw(next)

	tests := []struct {
		path   string
		header string
		want   int
	}{
		{path: "/v1/chat", want: http.StatusNoContent},
		{path: "/v1/chat", header: "Bearer not-a-jwt", want: http.StatusUnauthorized},
		{path: "/internal/metrics", header: "Bearer not-a-jwt", want: http.StatusNoContent},
	}
	for _, tt := range tests {
		req := httptest.NewRequest(http.MethodPost, tt.path, nil)
		if tt.header != "" {
			req.Header.Set("Authorization", tt.header)
		}
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		if rec.Code != tt.want {
			t.Errorf("%s %q: status = %d, want %d", tt.path, tt.header, rec.Code, tt.want)
		}
	}
}

func TestLoadEnvFile(t *testing.T) {
	if err := loadEnvFile(filepath.Join(t.TempDir(), "missing.env")); err != nil {
		t.Errorf("missing default env file: %v", err)
	}

	path := filepath.Join(t.TempDir(), "test.env")
	if err := os.WriteFile(path, []byte("CONCIERGE_TEST_ENV_VALUE=from-dotenv\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("CONCIERGE_TEST_ENV_VALUE", "")
	os.Unsetenv("CONCIERGE_TEST_ENV_VALUE")

	if err := loadEnvFile(path); err != nil {
		t.Fatalf("loadEnvFile: %v", err)
	}
	if got := os.Getenv("CONCIERGE_TEST_ENV_VALUE"); got != "from-dotenv" {
		t.Errorf("env = %q, want from-dotenv", got)
	}
}

func TestMigrateRejectsMemory(t *testing.T) {
	if err := migrate(context.Background(), config.Defaults().Storage, ""); err == nil {
		t.Fatal("expected error migrating memory storage")
	}
}

func TestMigrateSQLiteWithSeed(t *testing.T) {
	dir := t.TempDir()
	seed := filepath.Join(dir, "seed.yaml")
	if err := os.WriteFile(seed, []byte("facilities:\n  - id: f1\n    name: Bumrungrad International\n    country: Thailand\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	cfg := config.Defaults().Storage
	cfg.Type = "sqlite"
	cfg.SQLite.Path = filepath.Join(dir, "concierge.db")

	if err := migrate(context.Background(), cfg, seed); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	if _, err := os.Stat(cfg.SQLite.Path); err != nil {
		t.Errorf("database file not created: %v", err)
	}
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
