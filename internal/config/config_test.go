package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadMissingFile(t *testing.T) {
	dir := t.TempDir()

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.BackendURL != "" || cfg.Shop != "" {
		t.Errorf("expected zero config, got %+v", cfg)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()

	want := &Config{
		BackendURL: "http://localhost:9000/backend",
		AppURL:     "https://app.example.com",
		Shop:       "demo.myshopify.com",
	}
	if err := Save(dir, want); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if *got != *want {
		t.Errorf("round trip: got %+v, want %+v", got, want)
	}
}

func TestSetShop(t *testing.T) {
	dir := t.TempDir()

	if err := SetShop(dir, "first.myshopify.com"); err != nil {
		t.Fatalf("SetShop: %v", err)
	}
	if err := SetShop(dir, "second.myshopify.com"); err != nil {
		t.Fatalf("SetShop: %v", err)
	}

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Shop != "second.myshopify.com" {
		t.Errorf("Shop = %q, want second.myshopify.com", cfg.Shop)
	}
}

func TestResolve(t *testing.T) {
	tests := []struct {
		name        string
		file        *Config
		env         map[string]string
		wantBackend string
		wantShop    string
	}{
		{
			name:        "defaults when nothing set",
			wantBackend: DefaultBackendURL,
		},
		{
			name:        "file value used",
			file:        &Config{BackendURL: "http://file.example", Shop: "file-shop"},
			wantBackend: "http://file.example",
			wantShop:    "file-shop",
		},
		{
			name: "env wins over file",
			file: &Config{BackendURL: "http://file.example", Shop: "file-shop"},
			env: map[string]string{
				EnvBackendURL: "http://env.example",
				EnvShop:       "env-shop",
			},
			wantBackend: "http://env.example",
			wantShop:    "env-shop",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			if tt.file != nil {
				if err := Save(dir, tt.file); err != nil {
					t.Fatalf("Save: %v", err)
				}
			}
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			cfg, err := Resolve(dir)
			if err != nil {
				t.Fatalf("Resolve: %v", err)
			}
			if cfg.BackendURL != tt.wantBackend {
				t.Errorf("BackendURL = %q, want %q", cfg.BackendURL, tt.wantBackend)
			}
			if cfg.Shop != tt.wantShop {
				t.Errorf("Shop = %q, want %q", cfg.Shop, tt.wantShop)
			}
		})
	}
}

func TestResolveDotEnv(t *testing.T) {
	dir := t.TempDir()

	envFile := filepath.Join(dir, ".env")
	if err := os.WriteFile(envFile, []byte(EnvAppURL+"=https://dotenv.example\n"), 0644); err != nil {
		t.Fatalf("write .env: %v", err)
	}
	t.Cleanup(func() { os.Unsetenv(EnvAppURL) })

	cfg, err := Resolve(dir)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if cfg.AppURL != "https://dotenv.example" {
		t.Errorf("AppURL = %q, want https://dotenv.example", cfg.AppURL)
	}
}
