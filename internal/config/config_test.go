package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/iwvelando/temple-portal/pkg/constants"
	"github.com/iwvelando/temple-portal/pkg/tamildate"
)

const sampleConfig = `site:
  name: Sri Murugan Temple
store:
  path: /var/lib/temple/temple.db
media:
  dir: /var/lib/temple/media
admin:
  email: admin@example.org
  passwordHash: $2a$10$abcdefghijklmnopqrstuv
  sessionSecret: s3cret
  sessionTTLHours: 4
calendar:
  overrides:
    "2027":
      Thai: 15
      மாசி: 12
logging:
  level: debug
  format: console
`

func writeConfig(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(contents), 0600); err != nil {
		t.Fatalf("failed to write temp config: %v", err)
	}
	return path
}

func TestLoadConfiguration(t *testing.T) {
	tests := []struct {
		name       string
		configPath string
		wantError  bool
	}{
		{
			name:       "Non-existent config file",
			configPath: "nonexistent.yaml",
			wantError:  true,
		},
		{
			name:       "Sample config file",
			configPath: writeConfig(t, sampleConfig),
			wantError:  false,
		},
		{
			name:       "Malformed YAML",
			configPath: writeConfig(t, "site: [unterminated"),
			wantError:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config, err := LoadConfiguration(tt.configPath)
			if tt.wantError {
				if err == nil {
					t.Errorf("LoadConfiguration() expected error but got none")
				}
				return
			}
			if err != nil {
				t.Errorf("LoadConfiguration() error = %v", err)
				return
			}
			if config == nil {
				t.Errorf("LoadConfiguration() returned nil config")
			}
		})
	}
}

func TestLoadConfigurationValues(t *testing.T) {
	conf, err := LoadConfiguration(writeConfig(t, sampleConfig))
	if err != nil {
		t.Fatalf("LoadConfiguration() error = %v", err)
	}

	if conf.Site.Name != "Sri Murugan Temple" {
		t.Errorf("Site.Name = %q", conf.Site.Name)
	}
	if conf.Site.TimeZone != "Asia/Kolkata" {
		t.Errorf("Site.TimeZone = %q, expected default", conf.Site.TimeZone)
	}
	if conf.Store.Path != "/var/lib/temple/temple.db" {
		t.Errorf("Store.Path = %q", conf.Store.Path)
	}
	if conf.Media.URLPrefix != "/media/" {
		t.Errorf("Media.URLPrefix = %q, expected default", conf.Media.URLPrefix)
	}
	if conf.Admin.Email != "admin@example.org" || conf.Admin.SessionTTLHours != 4 {
		t.Errorf("Admin = %+v", conf.Admin)
	}
	if conf.Logging.Level != "debug" || conf.Logging.Format != "console" {
		t.Errorf("Logging = %+v", conf.Logging)
	}
}

func TestLoadConfigurationFromReader(t *testing.T) {
	conf, err := LoadConfigurationFromReader(strings.NewReader("store:\n  path: other.db\n"))
	if err != nil {
		t.Fatalf("LoadConfigurationFromReader() error = %v", err)
	}
	if conf.Store.Path != "other.db" {
		t.Errorf("Store.Path = %q, expected other.db", conf.Store.Path)
	}
	if conf.Media.Dir != constants.DefaultMediaDir {
		t.Errorf("Media.Dir = %q, expected default", conf.Media.Dir)
	}
}

func TestEnvironmentOverridesFile(t *testing.T) {
	t.Setenv("TEMPLE_ADMIN_EMAIL", "env@example.org")
	t.Setenv("TEMPLE_STORE_PATH", "env.db")

	conf, err := LoadConfiguration(writeConfig(t, sampleConfig))
	if err != nil {
		t.Fatalf("LoadConfiguration() error = %v", err)
	}
	if conf.Admin.Email != "env@example.org" {
		t.Errorf("Admin.Email = %q, expected environment value", conf.Admin.Email)
	}
	if conf.Store.Path != "env.db" {
		t.Errorf("Store.Path = %q, expected environment value", conf.Store.Path)
	}
}

func TestDefaults(t *testing.T) {
	conf := Defaults()
	if conf.Store.Path != constants.DefaultDatabasePath {
		t.Errorf("Store.Path = %q, expected %q", conf.Store.Path, constants.DefaultDatabasePath)
	}
	if conf.Admin.SessionTTLHours != constants.DefaultSessionTTLHours {
		t.Errorf("Admin.SessionTTLHours = %d", conf.Admin.SessionTTLHours)
	}
	if len(conf.Calendar.Overrides) != 0 {
		t.Errorf("expected no calendar overrides by default, got %v", conf.Calendar.Overrides)
	}
}

func TestBuildCalendar(t *testing.T) {
	conf, err := LoadConfiguration(writeConfig(t, sampleConfig))
	if err != nil {
		t.Fatalf("LoadConfiguration() error = %v", err)
	}

	cal, err := conf.BuildCalendar()
	if err != nil {
		t.Fatalf("BuildCalendar() error = %v", err)
	}

	tests := []struct {
		date      string
		wantMonth string
		wantDay   int
	}{
		{"2027-01-15", tamildate.Thai, 1},
		{"2027-01-14", tamildate.Margazhi, 30},
		{"2027-02-12", tamildate.Maasi, 1},
		// built-in 2026 calibration is still present
		{"2026-01-15", tamildate.Thai, 1},
	}
	for _, tt := range tests {
		r, err := cal.ResolveString(tt.date)
		if err != nil {
			t.Fatalf("ResolveString(%s) error = %v", tt.date, err)
		}
		if r.Month != tt.wantMonth || r.Day != tt.wantDay {
			t.Errorf("ResolveString(%s) = %s, expected %s %d", tt.date, r, tt.wantMonth, tt.wantDay)
		}
	}
}

func TestBuildCalendarWithoutOverrides(t *testing.T) {
	cal, err := Defaults().BuildCalendar()
	if err != nil {
		t.Fatalf("BuildCalendar() error = %v", err)
	}
	if cal != tamildate.Default() {
		t.Error("expected the built-in calendar when no overrides are configured")
	}
}

func TestBuildCalendarErrors(t *testing.T) {
	tests := []struct {
		name      string
		overrides map[string]map[string]int
		wantErr   error
	}{
		{
			name:      "Year is not a number",
			overrides: map[string]map[string]int{"next": {"Thai": 15}},
		},
		{
			name:      "Unknown month",
			overrides: map[string]map[string]int{"2027": {"Vishu": 15}},
			wantErr:   tamildate.ErrUnknownMonth,
		},
		{
			name:      "Day outside month",
			overrides: map[string]map[string]int{"2027": {"Maasi": 30}},
			wantErr:   tamildate.ErrInvalidOverride,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			conf := Defaults()
			conf.Calendar.Overrides = tt.overrides
			_, err := conf.BuildCalendar()
			if err == nil {
				t.Fatal("BuildCalendar() expected error but got none")
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("BuildCalendar() error = %v, expected %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateConfiguration(t *testing.T) {
	conf := Defaults()
	conf.Calendar.Overrides = map[string]map[string]int{"2027": {"Vishu": 15}}

	warnings := conf.ValidateConfiguration()
	if len(warnings) != 2 {
		t.Fatalf("expected 2 warnings, got %d: %v", len(warnings), warnings)
	}
	if !strings.Contains(warnings[0], "content panel is disabled") {
		t.Errorf("unexpected first warning %q", warnings[0])
	}
	if !strings.Contains(warnings[1], "Vishu") {
		t.Errorf("unexpected second warning %q", warnings[1])
	}

	conf, err := LoadConfiguration(writeConfig(t, sampleConfig))
	if err != nil {
		t.Fatalf("LoadConfiguration() error = %v", err)
	}
	if warnings := conf.ValidateConfiguration(); len(warnings) != 0 {
		t.Errorf("expected no warnings for sample config, got %v", warnings)
	}
}

func TestExampleConfiguration(t *testing.T) {
	conf, err := LoadConfiguration(filepath.Join("..", "..", constants.ExampleConfigFile))
	if err != nil {
		t.Fatalf("LoadConfiguration() error = %v", err)
	}
	if conf.Site.TimeZone != "Asia/Kolkata" {
		t.Errorf("expected Asia/Kolkata, got %q", conf.Site.TimeZone)
	}

	warnings := conf.ValidateConfiguration()
	if len(warnings) != 1 || !strings.Contains(warnings[0], "content panel is disabled") {
		t.Errorf("expected only the disabled panel warning, got %v", warnings)
	}

	cal, err := conf.BuildCalendar()
	if err != nil {
		t.Fatalf("BuildCalendar() error = %v", err)
	}
	day, overridden, err := cal.StartDay(2027, tamildate.Thai)
	if err != nil || day != 15 || !overridden {
		t.Errorf("StartDay(2027, Thai) = %d, %v, %v; expected 15, true, nil", day, overridden, err)
	}
}
