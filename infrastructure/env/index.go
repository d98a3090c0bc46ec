package env

import (
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Port     string
	GinMode  string
	AppEnv   string
	Origins  []string
	Database DatabaseConfig
	Redis    RedisConfig
	Vision   VisionConfig
	Monitor  MonitorConfig
	Storage  StorageConfig
	Email    EmailConfig
	Session  SessionConfig
	FFmpeg   string
}

type DatabaseConfig struct {
	URL  string
	Name string
}

type RedisConfig struct {
	Addr     string
	Password string
}

// Enabled reports whether a redis server was configured. Without one the cooldown, sampling and
// queue layers fall back to in-process implementations.
func (r RedisConfig) Enabled() bool {
	return r.Addr != ""
}

type VisionConfig struct {
	DetectorURL    string
	FaceEncoderURL string
	OCRURL         string
	DlibModelDir   string
	Timeout        time.Duration
}

type MonitorConfig struct {
	FaceTolerance    float64
	AlertCooldown    time.Duration
	MouseSampleEvery int64
}

type StorageConfig struct {
	SnapshotDir        string
	AzureAccountName   string
	AzureAccountKey    string
	AzureContainerName string
}

type EmailConfig struct {
	ResendAPIKey  string
	DefaultSender string
	ProctorEmail  string
}

type SessionConfig struct {
	SigningKey  string
	TTL         time.Duration
	// GeoIPDBPath points at a GeoLite2 City database used to record where sessions start.
	GeoIPDBPath string
}

var Settings = defaults()

func defaults() *Config {
	return build(newViper())
}

func newViper() *viper.Viper {
	conf := viper.New()
	conf.SetTypeByDefaultValue(true)
	conf.SetDefault("PORT", "8000")
	conf.SetDefault("GIN_MODE", "debug")
	conf.SetDefault("APP_ENV", "dev")
	conf.SetDefault("CORS_ORIGINS", "http://localhost:8000")
	conf.SetDefault("DB_URL", "mongodb://localhost:27017/")
	conf.SetDefault("DB_NAME", "candidate_registration")
	conf.SetDefault("REDIS_ADDR", "")
	conf.SetDefault("REDIS_PASSWORD", "")
	conf.SetDefault("DETECTOR_URL", "http://localhost:9000")
	conf.SetDefault("FACE_ENCODER_URL", "http://localhost:9001")
	conf.SetDefault("OCR_URL", "")
	conf.SetDefault("DLIB_MODEL_DIR", "")
	conf.SetDefault("VISION_TIMEOUT", 10*time.Second)
	conf.SetDefault("FACE_TOLERANCE", 0.55)
	conf.SetDefault("ALERT_COOLDOWN", 30*time.Second)
	conf.SetDefault("MOUSE_SAMPLE_EVERY", int64(5))
	conf.SetDefault("FFMPEG_PATH", "ffmpeg")
	conf.SetDefault("SNAPSHOT_DIR", "alerts")
	conf.SetDefault("AZURE_STORAGE_ACCOUNT_NAME", "")
	conf.SetDefault("AZURE_STORAGE_ACCOUNT_KEY", "")
	conf.SetDefault("AZURE_CONTAINER_NAME", "")
	conf.SetDefault("RESEND_API_KEY", "")
	conf.SetDefault("RESEND_DEFAULT_EMAIL", "proctor@invigil.io")
	conf.SetDefault("PROCTOR_EMAIL", "")
	conf.SetDefault("SESSION_SIGNING_KEY", "")
	conf.SetDefault("SESSION_TTL", 4*time.Hour)
	conf.SetDefault("GEOIP_DB_PATH", "")
	conf.AutomaticEnv()
	return conf
}

func build(conf *viper.Viper) *Config {
	origins := []string{}
	for _, origin := range strings.Split(conf.GetString("CORS_ORIGINS"), ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			origins = append(origins, origin)
		}
	}
	return &Config{
		Port:    conf.GetString("PORT"),
		GinMode: conf.GetString("GIN_MODE"),
		AppEnv:  conf.GetString("APP_ENV"),
		Origins: origins,
		Database: DatabaseConfig{
			URL:  conf.GetString("DB_URL"),
			Name: conf.GetString("DB_NAME"),
		},
		Redis: RedisConfig{
			Addr:     conf.GetString("REDIS_ADDR"),
			Password: conf.GetString("REDIS_PASSWORD"),
		},
		Vision: VisionConfig{
			DetectorURL:    conf.GetString("DETECTOR_URL"),
			FaceEncoderURL: conf.GetString("FACE_ENCODER_URL"),
			OCRURL:         conf.GetString("OCR_URL"),
			DlibModelDir:   conf.GetString("DLIB_MODEL_DIR"),
			Timeout:        conf.GetDuration("VISION_TIMEOUT"),
		},
		Monitor: MonitorConfig{
			FaceTolerance:    conf.GetFloat64("FACE_TOLERANCE"),
			AlertCooldown:    conf.GetDuration("ALERT_COOLDOWN"),
			MouseSampleEvery: conf.GetInt64("MOUSE_SAMPLE_EVERY"),
		},
		Storage: StorageConfig{
			SnapshotDir:        conf.GetString("SNAPSHOT_DIR"),
			AzureAccountName:   conf.GetString("AZURE_STORAGE_ACCOUNT_NAME"),
			AzureAccountKey:    conf.GetString("AZURE_STORAGE_ACCOUNT_KEY"),
			AzureContainerName: conf.GetString("AZURE_CONTAINER_NAME"),
		},
		Email: EmailConfig{
			ResendAPIKey:  conf.GetString("RESEND_API_KEY"),
			DefaultSender: conf.GetString("RESEND_DEFAULT_EMAIL"),
			ProctorEmail:  conf.GetString("PROCTOR_EMAIL"),
		},
		Session: SessionConfig{
			SigningKey:  conf.GetString("SESSION_SIGNING_KEY"),
			TTL:         conf.GetDuration("SESSION_TTL"),
			GeoIPDBPath: conf.GetString("GEOIP_DB_PATH"),
		},
		FFmpeg: conf.GetString("FFMPEG_PATH"),
	}
}

// LoadEnv reads an optional .env file and rebuilds Settings from the environment.
func LoadEnv() *Config {
	// .env is optional
	_ = godotenv.Load()
	Settings = build(newViper())
	return Settings
}
