package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig(t.TempDir())
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Server.Address != ":8080" {
		t.Errorf("server.address: got %q", cfg.Server.Address)
	}
	if cfg.Export.URLExpiry != 15*time.Minute {
		t.Errorf("export.url_expiry: got %v", cfg.Export.URLExpiry)
	}
	if cfg.Planner.DefaultThresholdPaceSecPerKm != 330 || cfg.Planner.DefaultThresholdHrBpm != 165 {
		t.Errorf("planner defaults: got %+v", cfg.Planner)
	}
	if cfg.S3.Enabled {
		t.Errorf("s3 should be disabled by default")
	}
	if cfg.SQLite.Path != "spartan.db" {
		t.Errorf("sqlite.path: got %q", cfg.SQLite.Path)
	}
}

func TestLoadConfigFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	yaml := `
server:
  address: ":9090"
database:
  name: from_file
s3:
  enabled: true
  bucket_name: plans
export:
  url_expiry: 1h
planner:
  default_threshold_hr_bpm: 170
`
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("DATABASE_NAME", "from_env")
	t.Setenv("PLANNER_DEFAULT_THRESHOLD_PACE_SEC_PER_KM", "300")

	cfg, err := LoadConfig(dir)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Server.Address != ":9090" {
		t.Errorf("server.address: got %q", cfg.Server.Address)
	}
	if cfg.Database.Name != "from_env" {
		t.Errorf("env should override file, got %q", cfg.Database.Name)
	}
	if !cfg.S3.Enabled || cfg.S3.BucketName != "plans" {
		t.Errorf("s3: got %+v", cfg.S3)
	}
	if cfg.Export.URLExpiry != time.Hour {
		t.Errorf("export.url_expiry: got %v", cfg.Export.URLExpiry)
	}
	if cfg.Planner.DefaultThresholdPaceSecPerKm != 300 || cfg.Planner.DefaultThresholdHrBpm != 170 {
		t.Errorf("planner: got %+v", cfg.Planner)
	}
}

func TestLoadConfigMalformedFile(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("server: [unclosed"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadConfig(dir); err == nil {
		t.Fatalf("expected parse error")
	}
}
