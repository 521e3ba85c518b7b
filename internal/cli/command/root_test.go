package command

import (
	"testing"
	"time"

	"github.com/urfave/cli/v2"
)

func TestApp(t *testing.T) {
	app := App()
	if app.Name != "evalboard" {
		t.Errorf("Name = %q, want %q", app.Name, "evalboard")
	}
	if app.Usage == "" {
		t.Error("Usage should not be empty")
	}

	commandNames := make(map[string]bool)
	for _, cmd := range app.Commands {
		commandNames[cmd.Name] = true
	}
	for _, name := range []string{"analyze", "review", "play", "health", "config"} {
		if !commandNames[name] {
			t.Errorf("missing command: %s", name)
		}
	}
}

func TestApp_GlobalFlags(t *testing.T) {
	flagNames := make(map[string]bool)
	for _, flag := range App().Flags {
		flagNames[flag.Names()[0]] = true
	}
	for _, name := range []string{"server", "config", "output", "depth", "drop-stale", "request-timeout", "log-level"} {
		if !flagNames[name] {
			t.Errorf("missing flag: %s", name)
		}
	}
}

func TestParseGlobalFlags(t *testing.T) {
	app := &cli.App{
		Flags: globalFlags(),
		Action: func(c *cli.Context) error {
			flags := ParseGlobalFlags(c)
			want := map[string]any{
				"server":          "http://engine:9000",
				"output":          "json",
				"depth":           12,
				"drop_stale":      true,
				"request_timeout": 3 * time.Second,
				"log.level":       "debug",
			}
			if len(flags.Overrides) != len(want) {
				t.Errorf("overrides = %v, want %v", flags.Overrides, want)
			}
			for k, v := range want {
				if flags.Overrides[k] != v {
					t.Errorf("override %s = %v, want %v", k, flags.Overrides[k], v)
				}
			}
			if flags.ConfigPath != "/tmp/cli.yaml" {
				t.Errorf("ConfigPath = %q", flags.ConfigPath)
			}
			return nil
		},
	}

	err := app.Run([]string{
		"test",
		"--server", "http://engine:9000",
		"--config", "/tmp/cli.yaml",
		"--output", "json",
		"--depth", "12",
		"--drop-stale",
		"--request-timeout", "3s",
		"--log-level", "debug",
	})
	if err != nil {
		t.Fatalf("app.Run failed: %v", err)
	}
}

func TestParseGlobalFlags_Unset(t *testing.T) {
	app := &cli.App{
		Flags: globalFlags(),
		Action: func(c *cli.Context) error {
			if flags := ParseGlobalFlags(c); len(flags.Overrides) != 0 {
				t.Errorf("overrides = %v, want none", flags.Overrides)
			}
			return nil
		},
	}
	if err := app.Run([]string{"test"}); err != nil {
		t.Fatalf("app.Run failed: %v", err)
	}
}

func TestLoadConfig(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("EVALBOARD_DEPTH", "8")

	app := &cli.App{
		Flags: globalFlags(),
		Action: func(c *cli.Context) error {
			cfg, err := LoadConfig(c)
			if err != nil {
				return err
			}
			if cfg.Server != "http://engine:9000" {
				t.Errorf("Server = %q", cfg.Server)
			}
			if cfg.Depth != 8 {
				t.Errorf("Depth = %d, want 8 from env", cfg.Depth)
			}
			again, err := LoadConfig(c)
			if err != nil {
				return err
			}
			if again != cfg {
				t.Error("LoadConfig should reuse the loaded configuration")
			}
			if GetLogger(c) == nil {
				t.Error("logger should be set")
			}
			return nil
		},
	}
	if err := app.Run([]string{"test", "--server", "http://engine:9000"}); err != nil {
		t.Fatalf("app.Run failed: %v", err)
	}
}

func TestLoadConfig_Invalid(t *testing.T) {
	_, _, err := runApp(t, "", "--output", "xml", "health")
	if err == nil {
		t.Error("invalid output format should fail")
	}
}
