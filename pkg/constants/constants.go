// Package constants provides shared constants for the temple-portal application.
package constants

// DateLayout is the civil date format used by forms, the store and the API.
const DateLayout = "2006-01-02"

// TimeLayout is the time-of-day format used for pooja schedules.
const TimeLayout = "15:04"

// Calendar constants
const (
	// MonthsPerYear is the number of months in a year
	MonthsPerYear = 12

	// MaxTamilMonthLength is the longest a Tamil month runs. Larger day counts
	// point at a missing or wrong transition.
	MaxTamilMonthLength = 32
)

// Gallery constants
const (
	// MediaTypePhoto marks an image gallery item
	MediaTypePhoto = "photo"

	// MediaTypeVideo marks a video gallery item
	MediaTypeVideo = "video"

	// MaxGalleryPhotos is the number of photos the gallery may hold
	MaxGalleryPhotos = 50

	// MaxGalleryVideos is the number of videos the gallery may hold
	MaxGalleryVideos = 5

	// GalleryPrefix is the object key prefix for uploaded media
	GalleryPrefix = "gallery"
)

// Configuration file constants
const (
	// DefaultConfigFile is the default site configuration file name
	DefaultConfigFile = "config.yaml"

	// ExampleConfigFile is the example configuration file name
	ExampleConfigFile = "config.yaml.example"

	// DefaultServerConfigFile is the default server configuration file name
	DefaultServerConfigFile = "server-config.yaml"
)

// Server configuration defaults
const (
	// DefaultServerAddress is the default HTTP listen address
	DefaultServerAddress = ":8080"

	// DefaultMaxUploadSizeBytes is the default maximum gallery upload size (10 MB)
	DefaultMaxUploadSizeBytes int64 = 10 * 1024 * 1024

	// DefaultDatabasePath is the default SQLite database location
	DefaultDatabasePath = "temple.db"

	// DefaultMediaDir is the default directory for uploaded media
	DefaultMediaDir = "media"

	// DefaultSessionTTLHours is how long an admin session token stays valid
	DefaultSessionTTLHours = 12
)

// Log format constants
const (
	// LogFormatJSON is the structured production log format
	LogFormatJSON = "json"

	// LogFormatConsole is the human-readable development log format
	LogFormatConsole = "console"
)

// Output format constants
const (
	// OutputFormatPretty is the human-readable CLI table format
	OutputFormatPretty = "pretty"

	// OutputFormatCSV is the comma-separated CLI format
	OutputFormatCSV = "csv"
)
