package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.App.Env != "local" || cfg.App.MetricsPort != "9095" {
		t.Errorf("unexpected app defaults: %+v", cfg.App)
	}
	if cfg.Leagues.NFLKey != "americanfootball_nfl" {
		t.Errorf("unexpected nfl key %q", cfg.Leagues.NFLKey)
	}
	if cfg.Kafka.Enabled {
		t.Error("kafka should default to disabled")
	}
}

func TestLoadFileOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
[app]
env = "dev"
refresh_ui_seconds = 10

[oddsapi]
api_key = "inline-key"
markets = ["h2h"]

[leagues]
ufc_key = "mma_ufc"

[books]
allow = ["draftkings", "fanduel"]
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.App.Env != "dev" || cfg.App.RefreshUISeconds != 10 {
		t.Errorf("file values not applied: %+v", cfg.App)
	}
	// valores ausentes no arquivo mantêm o default
	if cfg.App.MetricsPort != "9095" {
		t.Errorf("expected default metrics port, got %q", cfg.App.MetricsPort)
	}
	if len(cfg.OddsAPI.Markets) != 1 || cfg.OddsAPI.Markets[0] != "h2h" {
		t.Errorf("unexpected markets: %v", cfg.OddsAPI.Markets)
	}
	if cfg.Leagues.UFCKey != "mma_ufc" {
		t.Errorf("unexpected ufc key %q", cfg.Leagues.UFCKey)
	}
	if len(cfg.Books.Allow) != 2 {
		t.Errorf("unexpected books allow list: %v", cfg.Books.Allow)
	}
	if cfg.APIKey() != "inline-key" {
		t.Errorf("expected inline api key, got %q", cfg.APIKey())
	}
}

func TestLoadEnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
[app]
env = "dev"

[storage]
postgres_dsn = "postgres://file/db"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	t.Setenv("ENV", "prod")
	t.Setenv("POSTGRES_DSN", "postgres://env/db")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.App.Env != "prod" {
		t.Errorf("env var should win, got %q", cfg.App.Env)
	}
	if cfg.Storage.PostgresDSN != "postgres://env/db" {
		t.Errorf("env var should win, got %q", cfg.Storage.PostgresDSN)
	}
}

func TestLoadRejectsInvalidTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("[app\nenv=broken"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestAPIKeyFallsBackToEnvVar(t *testing.T) {
	cfg := Default()
	cfg.OddsAPI.APIKeyEnv = "BETBOARD_TEST_KEY"
	t.Setenv("BETBOARD_TEST_KEY", "from-env")
	if got := cfg.APIKey(); got != "from-env" {
		t.Errorf("expected key from env, got %q", got)
	}
}

func TestResolveLeagues(t *testing.T) {
	cfg := Default()

	tests := []struct {
		label   string
		want    []string
		wantErr bool
	}{
		{label: "NFL", want: []string{"americanfootball_nfl"}},
		{label: "CFB", want: []string{"americanfootball_ncaaf"}},
		{label: "UFC", want: []string{"ufc"}},
		{label: "", want: []string{"americanfootball_nfl", "americanfootball_ncaaf", "ufc"}},
		{label: "NHL", wantErr: true},
	}

	for _, tc := range tests {
		t.Run("label="+tc.label, func(t *testing.T) {
			got, err := cfg.ResolveLeagues(tc.label)
			if tc.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("ResolveLeagues: %v", err)
			}
			if len(got) != len(tc.want) {
				t.Fatalf("got %v, want %v", got, tc.want)
			}
			for i := range got {
				if got[i] != tc.want[i] {
					t.Errorf("got %v, want %v", got, tc.want)
				}
			}
		})
	}
}

func TestResolveLeaguesUsesDiscoveredUFCKey(t *testing.T) {
	cfg := Default()
	cfg.Leagues.UFCKey = "mma_ufc"
	got, err := cfg.ResolveLeagues("UFC")
	if err != nil {
		t.Fatalf("ResolveLeagues: %v", err)
	}
	if len(got) != 1 || got[0] != "mma_ufc" {
		t.Errorf("expected discovered key, got %v", got)
	}
}

func TestSaveUFCKeyPreservesOtherTables(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
[app]
env = "dev"

[leagues]
nfl_key = "americanfootball_nfl"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	if err := SaveUFCKey(path, "mma_ufc"); err != nil {
		t.Fatalf("SaveUFCKey: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load after save: %v", err)
	}
	if cfg.Leagues.UFCKey != "mma_ufc" {
		t.Errorf("ufc key not saved, got %q", cfg.Leagues.UFCKey)
	}
	if cfg.Leagues.NFLKey != "americanfootball_nfl" {
		t.Errorf("existing leagues entry lost, got %q", cfg.Leagues.NFLKey)
	}
	if cfg.App.Env != "dev" {
		t.Errorf("app table lost, got %q", cfg.App.Env)
	}
}

func TestSaveUFCKeyCreatesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	if err := SaveUFCKey(path, "mma_ufc"); err != nil {
		t.Fatalf("SaveUFCKey: %v", err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Leagues.UFCKey != "mma_ufc" {
		t.Errorf("ufc key not saved, got %q", cfg.Leagues.UFCKey)
	}
}
