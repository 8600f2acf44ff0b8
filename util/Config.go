package util

import (
	"time"

	"storefront-otp/model"
)

// Config holds every runtime setting, read once at startup.
type Config struct {
	Port     string
	AppName  string
	LogLevel string

	// Storage backend: "postgres", "redis" or "memory"
	Store    string
	DBHost   string
	DBUser   string
	DBPass   string
	DBName   string
	DBPort   string
	DBSSL    string
	RedisURL string

	OtpTTL        time.Duration
	AllowReplay   bool
	SweepInterval time.Duration
	ExposeCode    bool

	// Delivery channel: "sms", "email" or "log"
	Delivery      string
	SMSGatewayURL string
	SMSAPIKey     string
	SMSFrom       string
	SMTPHost      string
	SMTPPort      int
	SMTPUser      string
	SMTPPass      string
	SMTPSender    string
	SMSMailDomain string

	AdminJWTSecret string

	// ExposeActive opens the active listing when no admin secret is set. Development only.
	ExposeActive bool

	RateLimitMax    int
	RateLimitWindow time.Duration
}

func LoadConfig() *Config {
	return &Config{
		Port:     getEnv("PORT", "4000"),
		AppName:  getEnv("APP_NAME", "storefront"),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		Store:    getEnv("OTP_STORE", "postgres"),
		DBHost:   getEnv("DB_HOST", "localhost"),
		DBUser:   getEnv("DB_USER", "postgres"),
		DBPass:   getEnv("DB_PASSWORD", "postgres"),
		DBName:   getEnv("DB_NAME", "storefront"),
		DBPort:   getEnv("DB_PORT", "5432"),
		DBSSL:    getEnv("DB_SSLMODE", "disable"),
		RedisURL: getEnv("REDIS_URL", "redis://localhost:6379/0"),

		OtpTTL:        getEnvAsDuration("OTP_TTL", model.OtpTTL),
		AllowReplay:   getEnvAsBool("OTP_ALLOW_REPLAY", true),
		SweepInterval: getEnvAsDuration("OTP_SWEEP_INTERVAL", 5*time.Minute),
		ExposeCode:    getEnvAsBool("OTP_EXPOSE_CODE", false),

		Delivery:      getEnv("OTP_DELIVERY", "log"),
		SMSGatewayURL: getEnv("SMS_GATEWAY_URL", "https://gateway.seven.io/api/sms"),
		SMSAPIKey:     getEnv("SMS_API_KEY", ""),
		SMSFrom:       getEnv("SMS_FROM", ""),
		SMTPHost:      getEnv("SMTP_HOST", "localhost"),
		SMTPPort:      getEnvAsInt("SMTP_PORT", 587),
		SMTPUser:      getEnv("SMTP_USER", ""),
		SMTPPass:      getEnv("SMTP_PASS", ""),
		SMTPSender:    getEnv("SMTP_SENDER_NAME", "Storefront"),
		SMSMailDomain: getEnv("SMS_MAIL_DOMAIN", ""),

		AdminJWTSecret:  getEnv("ADMIN_JWT_SECRET", ""),
		ExposeActive:    getEnvAsBool("OTP_EXPOSE_ACTIVE", false),
		RateLimitMax:    getEnvAsInt("RATE_LIMIT_MAX", 5),
		RateLimitWindow: getEnvAsDuration("RATE_LIMIT_WINDOW", time.Minute),
	}
}
