package config

import (
	"log"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var DB *gorm.DB

// Settings holds the service configuration read from the environment.
type Settings struct {
	Port       string
	DSN        string
	JWTSecret  string
	UploadDir  string
	UseGCS     bool
	GCSBucket  string
	SensorMode string
}

// Load reads Settings from the environment, loading .env first if present.
func Load() Settings {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	s := Settings{
		Port:       getEnv("PORT", "8080"),
		DSN:        os.Getenv("DB_DSN"),
		JWTSecret:  os.Getenv("JWT_SECRET"),
		UploadDir:  getEnv("UPLOAD_DIR", "./static/img/uploads"),
		GCSBucket:  os.Getenv("GCS_BUCKET"),
		SensorMode: strings.ToLower(getEnv("SENSOR_MODE", "stub")),
	}
	// Cloud Run sets K_SERVICE
	s.UseGCS = os.Getenv("USE_GCS") == "true" || (s.GCSBucket != "" && os.Getenv("K_SERVICE") != "")
	return s
}

// Connect opens the database and runs migrations.
func Connect(s Settings) {
	var err error
	DB, err = gorm.Open(postgres.Open(s.DSN), &gorm.Config{})
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}

	if err := Migrations(DB); err != nil {
		log.Fatal("Failed to run migrations:", err)
	}
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}
