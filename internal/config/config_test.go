package config

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func resetGlobalConfig() {
	globalConfig = defaultConfig()
}

func TestLoad_CompareFullStruct(t *testing.T) {
	resetGlobalConfig()
	yamlContent := `
databasePath: "/var/lib/boarding"
bindAddr: "127.0.0.1"
feeMode: "snapshot"
shutdownTimeout: "10s"
runMode: "dev"
blobCacheSize: 8388608
airdropLimit: 1000000
apiPort: 9000
metricsPort: 9001
strictDecisions: true
eventStream: false
tracing: true
`

	tmpDir := t.TempDir()
	tmpFile := filepath.Join(tmpDir, "test-boarding.yaml")

	err := os.WriteFile(tmpFile, []byte(yamlContent), 0o644)
	if err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	expected := defaultConfig()
	expected.DatabasePath = "/var/lib/boarding"
	expected.BindAddr = "127.0.0.1"
	expected.FeeMode = "snapshot"
	expected.ShutdownTimeout = "10s"
	expected.RunMode = RunModeDev
	expected.BlobCacheSize = 8388608
	expected.AirdropLimit = 1000000
	expected.ApiPort = 9000
	expected.MetricsPort = 9001
	expected.StrictDecisions = true
	expected.EventStream = false
	expected.Tracing = true

	actual, err := LoadConfig(tmpFile)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if !reflect.DeepEqual(actual, expected) {
		t.Errorf(
			"Loaded config does not match expected.\nActual: %+v\nExpected: %+v",
			actual,
			expected,
		)
	}
}

func TestLoad_WithoutConfigFile_UsesDefaults(t *testing.T) {
	resetGlobalConfig()
	// Keep a config file in the home directory from leaking into the test
	t.Setenv("HOME", t.TempDir())

	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}

	expected := defaultConfig()
	if !reflect.DeepEqual(cfg, expected) {
		t.Errorf(
			"config mismatch without file:\nExpected: %+v\nGot:      %+v",
			expected,
			cfg,
		)
	}
}

func TestLoad_ConfigSection(t *testing.T) {
	resetGlobalConfig()
	yamlContent := `
config:
  apiPort: 7000
  strictDecisions: true
`
	tmpFile := filepath.Join(t.TempDir(), "section.yaml")
	if err := os.WriteFile(tmpFile, []byte(yamlContent), 0o644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}
	cfg, err := LoadConfig(tmpFile)
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}

	// Only the named values change, every other default is kept
	expected := defaultConfig()
	expected.ApiPort = 7000
	expected.StrictDecisions = true
	if !reflect.DeepEqual(cfg, expected) {
		t.Errorf(
			"config mismatch with config section:\nExpected: %+v\nGot:      %+v",
			expected,
			cfg,
		)
	}
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	resetGlobalConfig()
	tmpFile := filepath.Join(t.TempDir(), "env.yaml")
	if err := os.WriteFile(tmpFile, []byte("apiPort: 7000\n"), 0o644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}
	t.Setenv("BOARDING_API_PORT", "7100")
	t.Setenv("BOARDING_RUN_MODE", "dev")
	cfg, err := LoadConfig(tmpFile)
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if cfg.ApiPort != 7100 {
		t.Errorf("expected apiPort 7100, got: %d", cfg.ApiPort)
	}
	if !cfg.RunMode.IsDevMode() {
		t.Errorf("expected dev run mode, got: %s", cfg.RunMode)
	}
}

func TestLoad_InvalidValues(t *testing.T) {
	testDefs := []struct {
		name string
		yaml string
	}{
		{name: "run mode", yaml: "runMode: \"load\"\n"},
		{name: "fee mode", yaml: "feeMode: \"sometimes\"\n"},
		{name: "program ID", yaml: "programId: \"not-base58-0OIl\"\n"},
		{name: "shutdown timeout", yaml: "shutdownTimeout: \"soon\"\n"},
	}
	for _, testDef := range testDefs {
		t.Run(testDef.name, func(t *testing.T) {
			resetGlobalConfig()
			tmpFile := filepath.Join(t.TempDir(), "invalid.yaml")
			if err := os.WriteFile(tmpFile, []byte(testDef.yaml), 0o644); err != nil {
				t.Fatalf("failed to write config file: %v", err)
			}
			if _, err := LoadConfig(tmpFile); err == nil {
				t.Errorf("expected error for invalid %s", testDef.name)
			}
		})
	}
}
