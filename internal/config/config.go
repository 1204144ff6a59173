package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	Recognition RecognitionConfig
	Liveness    LivenessConfig
	Alerting    AlertingConfig
	Attendance  AttendanceConfig
	Kiosk       KioskConfig
	Inference   InferenceConfig
	Database    DatabaseConfig
	Upload      UploadConfig
}

type RecognitionConfig struct {
	SimilarityThreshold float64 // minimum margin-adjusted score to accept a match
	Margin              float64 // angular margin added before re-projection (radians)
	Scale               float64 // scale factor applied to the re-projected cosine
	GalleryPath         string  // path to the gallery YAML file
}

type LivenessConfig struct {
	RealThreshold  int // consecutive real frames before a face is confirmed live
	SpoofThreshold int // consecutive spoof frames before a presentation attack is confirmed
}

type AlertingConfig struct {
	SpoofCooldown   time.Duration // minimum gap between spoof snapshot uploads
	UnknownCooldown time.Duration // minimum gap between unknown-face snapshot uploads
	ViolationsDir   string        // local directory for violation crops
}

type AttendanceConfig struct {
	LateCutoff     ClockTime // check-ins after this time-of-day count as late
	CheckOutCutoff ClockTime // check-outs only allowed after this time-of-day
}

type KioskConfig struct {
	TargetRegionSize int // side length in pixels of the centered target square
	FrameWidth       int
	FrameHeight      int
}

type InferenceConfig struct {
	URL string // base URL of the detection/antispoofing inference server
}

type DatabaseConfig struct {
	URL          string // PostgreSQL connection URL
	MaxOpenConns int    // Maximum open connections (default 25)
	MaxIdleConns int    // Maximum idle connections (default 5)
}

type UploadConfig struct {
	URL    string // base URL of the snapshot upload endpoint
	Folder string // remote folder prefix for uploaded violation images
}

// ClockTime is a time-of-day cutoff without a date component.
type ClockTime struct {
	Hour, Minute, Second int
}

// ParseClockTime parses a "HH:MM:SS" string.
func ParseClockTime(s string) (ClockTime, error) {
	t, err := time.Parse("15:04:05", s)
	if err != nil {
		return ClockTime{}, fmt.Errorf("invalid time-of-day %q: %w", s, err)
	}
	return ClockTime{Hour: t.Hour(), Minute: t.Minute(), Second: t.Second()}, nil
}

// Before reports whether the cutoff falls strictly before the time-of-day of
// t, i.e. whether t has passed the cutoff. Mirrors time.Time.Before.
func (c ClockTime) Before(t time.Time) bool {
	th, tm, ts := t.Clock()
	return th*3600+tm*60+ts > c.Hour*3600+c.Minute*60+c.Second
}

func (c ClockTime) String() string {
	return fmt.Sprintf("%02d:%02d:%02d", c.Hour, c.Minute, c.Second)
}

// envInt reads an environment variable and parses it as a positive integer.
// Returns the default value if the env var is unset, empty, or invalid.
func envInt(key string, defaultVal int) int {
	s := os.Getenv(key)
	if s == "" {
		return defaultVal
	}
	if n, err := strconv.Atoi(s); err == nil && n > 0 {
		return n
	}
	return defaultVal
}

// envFloat reads an environment variable and parses it as a float64.
// Returns the default value if the env var is unset, empty, or invalid.
func envFloat(key string, defaultVal float64) float64 {
	s := os.Getenv(key)
	if s == "" {
		return defaultVal
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}
	return defaultVal
}

// envDuration reads an environment variable and parses it as a time.Duration
// (e.g. "10s", "2m"). Returns the default value if unset or invalid.
func envDuration(key string, defaultVal time.Duration) time.Duration {
	s := os.Getenv(key)
	if s == "" {
		return defaultVal
	}
	if d, err := time.ParseDuration(s); err == nil && d > 0 {
		return d
	}
	return defaultVal
}

// envClockTime reads an environment variable holding a "HH:MM:SS" cutoff.
// Returns the default value if unset or invalid.
func envClockTime(key string, defaultVal ClockTime) ClockTime {
	s := os.Getenv(key)
	if s == "" {
		return defaultVal
	}
	if c, err := ParseClockTime(s); err == nil {
		return c
	}
	return defaultVal
}

func envString(key, defaultVal string) string {
	if s := os.Getenv(key); s != "" {
		return s
	}
	return defaultVal
}

func Load() *Config {
	return &Config{
		Recognition: RecognitionConfig{
			SimilarityThreshold: envFloat("SIMILARITY_THRESHOLD", 25.0),
			Margin:              envFloat("ANGULAR_MARGIN", 0.5),
			Scale:               envFloat("SCALE", 64.0),
			GalleryPath:         envString("GALLERY_PATH", "gallery.yaml"),
		},
		Liveness: LivenessConfig{
			RealThreshold:  envInt("REAL_THRESHOLD", 3),
			SpoofThreshold: envInt("SPOOF_THRESHOLD", 3),
		},
		Alerting: AlertingConfig{
			SpoofCooldown:   envDuration("SPOOF_ALERT_COOLDOWN", 10*time.Second),
			UnknownCooldown: envDuration("UNKNOWN_ALERT_COOLDOWN", 10*time.Second),
			ViolationsDir:   envString("VIOLATIONS_DIR", "violations"),
		},
		Attendance: AttendanceConfig{
			LateCutoff:     envClockTime("LATE_CUTOFF", ClockTime{Hour: 8, Minute: 30}),
			CheckOutCutoff: envClockTime("CHECKOUT_CUTOFF", ClockTime{Hour: 17}),
		},
		Kiosk: KioskConfig{
			TargetRegionSize: envInt("TARGET_REGION_SIZE", 350),
			FrameWidth:       envInt("FRAME_WIDTH", 434),
			FrameHeight:      envInt("FRAME_HEIGHT", 540),
		},
		Inference: InferenceConfig{
			URL: envString("INFERENCE_URL", "http://localhost:8000"),
		},
		Database: DatabaseConfig{
			URL:          os.Getenv("DATABASE_URL"),
			MaxOpenConns: envInt("DATABASE_MAX_OPEN_CONNS", 25),
			MaxIdleConns: envInt("DATABASE_MAX_IDLE_CONNS", 5),
		},
		Upload: UploadConfig{
			URL:    os.Getenv("UPLOAD_URL"),
			Folder: envString("UPLOAD_FOLDER", "alerts"),
		},
	}
}
