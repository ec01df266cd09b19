package config

import (
	"log"
	"time"

	"github.com/joho/godotenv"

	"cardapio/internal/models"
)

var AppEnv Config

type Config struct {
	Port              string
	MongoURI          string
	DBName            string
	JWTSecret         string
	AdminEmail        string
	AdminPasswordHash string
	AccessTokenTTL    time.Duration
	RedisAddr         string
	RedisPassword     string
	RedisDB           int
	SessionTTL        time.Duration
	UploadDir         string
	CloudinaryURL     string
	LogLevel          string
	LogEncoding       string
	CouponsFile       string
	Coupons           []models.Coupon
}

// Load reads .env (when present) and the process environment into AppEnv.
// The coupon table comes from COUPONS_FILE; without it the built-in
// coupons are used by the caller.
func Load() error {
	if err := godotenv.Load(); err != nil {
		log.Println(".env not loaded:", err)
	}

	v := newEnv()
	AppEnv = Config{
		Port:              getEnvOrDefault(v, "PORT", "8080"),
		MongoURI:          getEnvOrDefault(v, "MONGO_URI", ""),
		DBName:            getEnvOrDefault(v, "DB_NAME", "cardapio"),
		JWTSecret:         getEnvOrDefault(v, "JWT_SECRET", ""),
		AdminEmail:        getEnvOrDefault(v, "ADMIN_EMAIL", ""),
		AdminPasswordHash: getEnvOrDefault(v, "ADMIN_PASSWORD_HASH", ""),
		AccessTokenTTL:    getDurationEnv(v, "ACCESS_TOKEN_TTL", 12*60, time.Minute),
		RedisAddr:         getEnvOrDefault(v, "REDIS_ADDR", ""),
		RedisPassword:     getEnvOrDefault(v, "REDIS_PASSWORD", ""),
		RedisDB:           getIntEnv(v, "REDIS_DB", 0),
		SessionTTL:        getDurationEnv(v, "SESSION_TTL", 12*60, time.Minute),
		UploadDir:         getEnvOrDefault(v, "UPLOAD_DIR", "./public/uploads"),
		CloudinaryURL:     getEnvOrDefault(v, "CLOUDINARY_URL", ""),
		LogLevel:          getEnvOrDefault(v, "LOG_LEVEL", "info"),
		LogEncoding:       getEnvOrDefault(v, "LOG_ENCODING", "json"),
		CouponsFile:       getEnvOrDefault(v, "COUPONS_FILE", ""),
	}

	if AppEnv.CouponsFile != "" {
		coupons, err := LoadCoupons(AppEnv.CouponsFile)
		if err != nil {
			return err
		}
		AppEnv.Coupons = coupons
	}
	return nil
}

func (c Config) RedisEnabled() bool {
	return c.RedisAddr != ""
}

func (c Config) AuthEnabled() bool {
	return c.JWTSecret != ""
}
