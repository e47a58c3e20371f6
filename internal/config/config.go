// Package config defines the data structures related to configuration and
// includes functions for loading and validating the site configuration.
package config

import (
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/iwvelando/temple-portal/pkg/constants"
	"github.com/iwvelando/temple-portal/pkg/tamildate"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes environment variables that override config file keys,
// e.g. TEMPLE_ADMIN_PASSWORDHASH.
const EnvPrefix = "TEMPLE"

// Configuration holds all configuration for temple-portal.
type Configuration struct {
	Site     SiteConfig
	Store    StoreConfig
	Media    MediaConfig
	Admin    AdminConfig
	Calendar CalendarConfig
	Logging  LoggingConfig `yaml:"logging,omitempty"`
}

// SiteConfig holds presentation details of the temple.
type SiteConfig struct {
	Name     string
	TimeZone string
}

// StoreConfig locates the document database.
type StoreConfig struct {
	Path string
}

// MediaConfig locates uploaded gallery files and the URL prefix they are
// served under.
type MediaConfig struct {
	Dir       string
	URLPrefix string
}

// AdminConfig holds the single administrator account.
type AdminConfig struct {
	Email           string
	PasswordHash    string // bcrypt
	TOTPSecret      string // optional second factor
	SessionSecret   string
	SessionTTLHours int
}

// CalendarConfig carries Tamil month start corrections confirmed by the
// temple for specific years. They are layered over the built-in table.
type CalendarConfig struct {
	// year -> month name (Tamil or transliterated) -> start day
	Overrides map[string]map[string]int
}

// LoggingConfig holds logging configuration options
type LoggingConfig struct {
	Level      string `yaml:"level,omitempty"`      // debug, info, warn, error
	Format     string `yaml:"format,omitempty"`     // json, console
	OutputFile string `yaml:"outputFile,omitempty"` // optional file output
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("site.name", "")
	v.SetDefault("site.timezone", "Asia/Kolkata")
	v.SetDefault("store.path", constants.DefaultDatabasePath)
	v.SetDefault("media.dir", constants.DefaultMediaDir)
	v.SetDefault("media.urlprefix", "/media/")
	v.SetDefault("admin.email", "")
	v.SetDefault("admin.passwordhash", "")
	v.SetDefault("admin.totpsecret", "")
	v.SetDefault("admin.sessionsecret", "")
	v.SetDefault("admin.sessionttlhours", constants.DefaultSessionTTLHours)
	v.SetDefault("logging.level", "")
	v.SetDefault("logging.format", "")
	v.SetDefault("logging.outputfile", "")
	return v
}

// LoadConfiguration takes a file path as input and loads the YAML-formatted
// configuration there.
func LoadConfiguration(configPath string) (*Configuration, error) {
	v := newViper()
	v.SetConfigFile(configPath)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file, %s", err)
	}
	return decode(v)
}

// LoadConfigurationFromReader loads YAML-formatted configuration from r.
func LoadConfigurationFromReader(r io.Reader) (*Configuration, error) {
	v := newViper()
	if err := v.ReadConfig(r); err != nil {
		return nil, fmt.Errorf("error reading config data, %s", err)
	}
	return decode(v)
}

// Defaults returns the configuration used when no file is given.
func Defaults() *Configuration {
	conf, err := decode(newViper())
	if err != nil {
		// Defaults are static and always decode.
		panic(err)
	}
	return conf
}

func decode(v *viper.Viper) (*Configuration, error) {
	var configuration Configuration
	if err := v.Unmarshal(&configuration); err != nil {
		return nil, fmt.Errorf("unable to decode into struct, %s", err)
	}
	return &configuration, nil
}

// CalendarOverrides converts the configured overrides into the resolver's
// year-keyed form.
func (c *Configuration) CalendarOverrides() (tamildate.Overrides, error) {
	out := make(tamildate.Overrides, len(c.Calendar.Overrides))
	for yearKey, days := range c.Calendar.Overrides {
		year, err := strconv.Atoi(strings.TrimSpace(yearKey))
		if err != nil {
			return nil, fmt.Errorf("invalid calendar override year %q: %w", yearKey, err)
		}
		named := make(map[string]int, len(days))
		for name, day := range days {
			named[name] = day
		}
		out[year] = named
	}
	return out, nil
}

// BuildCalendar returns the built-in Tamil calendar with the configured
// overrides layered on top.
func (c *Configuration) BuildCalendar() (*tamildate.Calendar, error) {
	overrides, err := c.CalendarOverrides()
	if err != nil {
		return nil, err
	}
	if len(overrides) == 0 {
		return tamildate.Default(), nil
	}
	cal, err := tamildate.Default().WithOverrides(overrides)
	if err != nil {
		return nil, fmt.Errorf("invalid calendar overrides: %w", err)
	}
	return cal, nil
}

// ValidateConfiguration performs general validation of the configuration and
// returns warnings for settings that degrade rather than break the site.
func (c *Configuration) ValidateConfiguration() []string {
	var warnings []string

	if c.Admin.Email == "" || c.Admin.PasswordHash == "" {
		warnings = append(warnings, "admin email or password hash not set; the content panel is disabled")
	}
	if c.Admin.PasswordHash != "" && c.Admin.SessionSecret == "" {
		warnings = append(warnings, "admin session secret not set; a random secret is used and sessions end on restart")
	}
	if c.Admin.SessionTTLHours <= 0 {
		warnings = append(warnings, fmt.Sprintf("admin session TTL %d is not positive; using %d hours",
			c.Admin.SessionTTLHours, constants.DefaultSessionTTLHours))
	}

	years := make([]string, 0, len(c.Calendar.Overrides))
	for year := range c.Calendar.Overrides {
		years = append(years, year)
	}
	sort.Strings(years)
	for _, year := range years {
		for name := range c.Calendar.Overrides[year] {
			if _, ok := tamildate.CanonicalName(name); !ok {
				warnings = append(warnings, fmt.Sprintf("calendar override for %s names unknown month %q", year, name))
			}
		}
	}

	return warnings
}
