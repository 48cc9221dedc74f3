package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

// chdir changes into dir for the duration of the test, restoring the
// original working directory on cleanup. (testing.T.Chdir needs Go 1.24.)
func chdir(t *testing.T, dir string) {
	t.Helper()
	orig, err := os.Getwd()
	if err != nil {
		t.Fatalf("failed to get working directory: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("failed to change directory: %v", err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(orig); err != nil {
			t.Fatalf("failed to restore working directory: %v", err)
		}
	})
}

func TestDefaultTimeouts(t *testing.T) {
	timeouts := DefaultTimeouts()

	tests := []struct {
		name string
		got  time.Duration
		want time.Duration
	}{
		{"Request", timeouts.Request, 30 * time.Second},
		{"Upload", timeouts.Upload, 2 * time.Minute},
		{"Health", timeouts.Health, 5 * time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("DefaultTimeouts().%s = %v, want %v", tt.name, tt.got, tt.want)
			}
		})
	}
}

func TestGetTimeouts(t *testing.T) {
	t.Run("returns defaults when no overrides", func(t *testing.T) {
		cfg := &Config{}
		timeouts := cfg.GetTimeouts()

		if timeouts.Request != 30*time.Second {
			t.Errorf("GetTimeouts().Request = %v, want 30s", timeouts.Request)
		}
		if timeouts.Upload != 2*time.Minute {
			t.Errorf("GetTimeouts().Upload = %v, want 2m", timeouts.Upload)
		}
	})

	t.Run("merges partial overrides", func(t *testing.T) {
		requestSeconds := 10
		cfg := &Config{
			Timeouts: &TimeoutOverrides{
				RequestSeconds: &requestSeconds,
			},
		}
		timeouts := cfg.GetTimeouts()

		// Overridden value
		if timeouts.Request != 10*time.Second {
			t.Errorf("GetTimeouts().Request = %v, want 10s", timeouts.Request)
		}
		// Default value preserved
		if timeouts.Upload != 2*time.Minute {
			t.Errorf("GetTimeouts().Upload = %v, want 2m", timeouts.Upload)
		}
	})
}

func TestGetPushSettings(t *testing.T) {
	t.Run("returns defaults when no overrides", func(t *testing.T) {
		cfg := &Config{}
		settings := cfg.GetPushSettings()

		if settings.ReconnectInitial != time.Second {
			t.Errorf("GetPushSettings().ReconnectInitial = %v, want 1s", settings.ReconnectInitial)
		}
		if settings.ReconnectMax != 2*time.Minute {
			t.Errorf("GetPushSettings().ReconnectMax = %v, want 2m", settings.ReconnectMax)
		}
	})

	t.Run("merges partial overrides", func(t *testing.T) {
		maxSeconds := 30
		cfg := &Config{
			Push: &PushOverrides{
				ReconnectMaxSeconds: &maxSeconds,
			},
		}
		settings := cfg.GetPushSettings()

		if settings.ReconnectMax != 30*time.Second {
			t.Errorf("GetPushSettings().ReconnectMax = %v, want 30s", settings.ReconnectMax)
		}
		if settings.ReconnectInitial != time.Second {
			t.Errorf("GetPushSettings().ReconnectInitial = %v, want 1s", settings.ReconnectInitial)
		}
	})
}

func TestMergeConfig(t *testing.T) {
	t.Run("local scalar wins when set", func(t *testing.T) {
		global := &Config{Server: "https://global.example.com", District: "Northside"}
		local := &Config{Server: "https://local.example.com"}

		merged := mergeConfig(global, local)

		if merged.Server != "https://local.example.com" {
			t.Errorf("merged.Server = %q, want local value", merged.Server)
		}
		// Unset local field preserves global
		if merged.District != "Northside" {
			t.Errorf("merged.District = %q, want %q", merged.District, "Northside")
		}
	})

	t.Run("section overrides merge field by field", func(t *testing.T) {
		globalRequest := 15
		localUpload := 60
		global := &Config{Timeouts: &TimeoutOverrides{RequestSeconds: &globalRequest}}
		local := &Config{Timeouts: &TimeoutOverrides{UploadSeconds: &localUpload}}

		merged := mergeConfig(global, local)

		if merged.Timeouts == nil {
			t.Fatal("merged.Timeouts is nil")
		}
		if merged.Timeouts.RequestSeconds == nil || *merged.Timeouts.RequestSeconds != 15 {
			t.Errorf("merged.Timeouts.RequestSeconds = %v, want 15", merged.Timeouts.RequestSeconds)
		}
		if merged.Timeouts.UploadSeconds == nil || *merged.Timeouts.UploadSeconds != 60 {
			t.Errorf("merged.Timeouts.UploadSeconds = %v, want 60", merged.Timeouts.UploadSeconds)
		}
	})

	t.Run("empty sections collapse to nil", func(t *testing.T) {
		merged := mergeConfig(&Config{}, &Config{})

		if merged.Timeouts != nil {
			t.Errorf("merged.Timeouts = %v, want nil", merged.Timeouts)
		}
		if merged.Push != nil {
			t.Errorf("merged.Push = %v, want nil", merged.Push)
		}
	})
}

func TestServerURL(t *testing.T) {
	t.Run("environment variable wins", func(t *testing.T) {
		t.Setenv("CIVICA_SERVER", "https://env.example.com")
		cfg := &Config{Server: "https://file.example.com"}

		if got := cfg.ServerURL(); got != "https://env.example.com" {
			t.Errorf("ServerURL() = %q, want env value", got)
		}
	})

	t.Run("config file wins over default", func(t *testing.T) {
		t.Setenv("CIVICA_SERVER", "")
		cfg := &Config{Server: "https://file.example.com"}

		if got := cfg.ServerURL(); got != "https://file.example.com" {
			t.Errorf("ServerURL() = %q, want file value", got)
		}
	})

	t.Run("falls back to default", func(t *testing.T) {
		t.Setenv("CIVICA_SERVER", "")
		cfg := &Config{}

		if got := cfg.ServerURL(); got != DefaultServer {
			t.Errorf("ServerURL() = %q, want %q", got, DefaultServer)
		}
	})
}

func TestTokenFromEnv(t *testing.T) {
	t.Setenv("CIVICA_TOKEN", "env-token")
	cfg := &Config{}

	if got := cfg.TokenFromEnv(); got != "env-token" {
		t.Errorf("TokenFromEnv() = %q, want %q", got, "env-token")
	}
}

func TestLoadReturnsDefaultsWhenNoFiles(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	chdir(t, t.TempDir())

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() returned error: %v", err)
	}

	if cfg.Server != DefaultServer {
		t.Errorf("Load().Server = %q, want %q", cfg.Server, DefaultServer)
	}
	if cfg.DefaultFormat != "table" {
		t.Errorf("Load().DefaultFormat = %q, want %q", cfg.DefaultFormat, "table")
	}
}

func TestLoadMergesLocalOverGlobal(t *testing.T) {
	configHome := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", configHome)

	globalDir := filepath.Join(configHome, "civica")
	if err := os.MkdirAll(globalDir, 0700); err != nil {
		t.Fatalf("failed to create config dir: %v", err)
	}
	globalYAML := "server: https://global.example.com\ndistrict: Northside\n"
	if err := os.WriteFile(filepath.Join(globalDir, "config.yaml"), []byte(globalYAML), 0600); err != nil {
		t.Fatalf("failed to write global config: %v", err)
	}

	workDir := t.TempDir()
	chdir(t, workDir)
	localYAML := "server: https://local.example.com\n"
	if err := os.WriteFile(filepath.Join(workDir, ".civica.yaml"), []byte(localYAML), 0600); err != nil {
		t.Fatalf("failed to write local config: %v", err)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() returned error: %v", err)
	}

	if cfg.Server != "https://local.example.com" {
		t.Errorf("Load().Server = %q, want local value", cfg.Server)
	}
	if cfg.District != "Northside" {
		t.Errorf("Load().District = %q, want global value %q", cfg.District, "Northside")
	}
}

func TestSaveWritesRestrictedFile(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	chdir(t, t.TempDir())

	cfg := &Config{Server: "https://saved.example.com", DefaultFormat: "json"}
	if err := cfg.Save(); err != nil {
		t.Fatalf("Save() returned error: %v", err)
	}

	info, err := os.Stat(ConfigPath())
	if err != nil {
		t.Fatalf("config file not written: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0600 {
		t.Errorf("config file mode = %o, want 0600", perm)
	}

	loaded, err := Load()
	if err != nil {
		t.Fatalf("Load() returned error: %v", err)
	}
	if loaded.Server != "https://saved.example.com" {
		t.Errorf("Load().Server = %q, want saved value", loaded.Server)
	}
	if loaded.DefaultFormat != "json" {
		t.Errorf("Load().DefaultFormat = %q, want %q", loaded.DefaultFormat, "json")
	}
}
