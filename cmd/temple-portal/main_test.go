package main

import (
	"bytes"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/iwvelando/temple-portal/internal/config"
	"github.com/iwvelando/temple-portal/pkg/validation"
	"golang.org/x/crypto/bcrypt"
)

func TestInitializeLogger(t *testing.T) {
	tests := []struct {
		name      string
		cfg       config.LoggingConfig
		override  string
		expectErr bool
	}{
		{name: "defaults", cfg: config.LoggingConfig{}},
		{name: "console debug", cfg: config.LoggingConfig{Level: "debug", Format: "console"}},
		{name: "override wins", cfg: config.LoggingConfig{Level: "bogus"}, override: "warn"},
		{name: "invalid level", cfg: config.LoggingConfig{Level: "loud"}, expectErr: true},
		{name: "invalid format", cfg: config.LoggingConfig{Format: "xml"}, expectErr: true},
		{name: "file output", cfg: config.LoggingConfig{OutputFile: filepath.Join(t.TempDir(), "logs", "temple.log")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, err := initializeLogger(tt.cfg, tt.override)
			if tt.expectErr {
				if err == nil {
					t.Fatal("expected error but got none")
				}
				return
			}
			if err != nil {
				t.Fatalf("initializeLogger() error = %v", err)
			}
			if logger == nil {
				t.Fatal("expected a logger")
			}
		})
	}
}

func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestTamilDateCommand(t *testing.T) {
	out, err := execute(t, "", "tamil-date", "--output-format", "pretty", "--log-level", "error", "2026-01-15", "2026-02-12")
	if err != nil {
		t.Fatalf("tamil-date error = %v", err)
	}
	if !strings.Contains(out, "2026-01-15 | தை 1") || !strings.Contains(out, "2026-02-12 | தை 29") {
		t.Errorf("unexpected output:\n%s", out)
	}

	if _, err := execute(t, "", "tamil-date", "--output-format", "pretty", "--log-level", "error", "2026-02-30"); err == nil {
		t.Error("expected an error for an impossible date")
	}
	if _, err := execute(t, "", "tamil-date", "--output-format", "json", "2026-01-15"); err == nil {
		t.Error("expected an error for an unsupported output format")
	}
}

func TestTransitionsCommand(t *testing.T) {
	out, err := execute(t, "", "transitions", "--output-format", "csv", "2026")
	if err != nil {
		t.Fatalf("transitions error = %v", err)
	}
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 13 {
		t.Fatalf("expected header plus 12 rows, got %d lines", len(lines))
	}
	if lines[1] != `"2026","2026-01-15","தை","Thai","override"` {
		t.Errorf("unexpected first row %s", lines[1])
	}

	out, err = execute(t, "", "transitions", "--output-format", "pretty", "2040")
	if err != nil {
		t.Fatalf("transitions error = %v", err)
	}
	if !strings.Contains(out, "note: 2040 is not calibrated") || !strings.Contains(out, "calibrated years: 2026") {
		t.Errorf("expected a calibration note, got:\n%s", out)
	}

	out, err = execute(t, "", "transitions", "--output-format", "CSV", "2026")
	if err != nil {
		t.Fatalf("transitions with upper-case format error = %v", err)
	}
	if strings.Contains(out, "calibrated years") {
		t.Errorf("csv output should carry only rows, got:\n%s", out)
	}

	for _, year := range []string{"year", "0", "10000"} {
		_, err := execute(t, "", "transitions", "--output-format", "pretty", year)
		if !errors.Is(err, validation.ErrYear) {
			t.Errorf("transitions %s error = %v, expected ErrYear", year, err)
		}
	}
	if _, err := execute(t, "", "transitions", "--output-format", "json", "2026"); !errors.Is(err, validation.ErrOutputFormat) {
		t.Errorf("transitions json error = %v, expected ErrOutputFormat", err)
	}
}

func TestHashPasswordCommand(t *testing.T) {
	out, err := execute(t, "s3cret\n", "hash-password")
	if err != nil {
		t.Fatalf("hash-password error = %v", err)
	}
	hash := strings.TrimSpace(out)
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte("s3cret")); err != nil {
		t.Errorf("printed hash does not match password: %v", err)
	}

	if _, err := execute(t, "\n", "hash-password"); err == nil {
		t.Error("expected an error for an empty password")
	}
}
