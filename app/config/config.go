package config

import (
	"database/sql"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
)

type Config struct {
	DB      *sql.DB
	DataDir string
	Email   EmailConfig
	Notify  NotifyConfig
	MFA     MFAConfig
}

// EmailConfig holds the Resend transactional email settings.
type EmailConfig struct {
	ResendAPIKey string
	ResendFrom   string
	TemplateID   string
}

// NotifyConfig holds recipients and origin restrictions for the notify endpoint.
type NotifyConfig struct {
	AlertRecipient    string
	PayrunRecipient   string
	OvertimeRecipient string
	AllowedOrigins    []string
}

type MFAConfig struct {
	AdminSetupCodeHash string
	Issuer             string
}

var AppConfig *Config

// Init loads environment configuration and opens the remote database
// connection. The database being unreachable is not fatal here: the store
// layer probes health itself and falls back to the local cache, so we keep
// the handle around for later probes instead of exiting.
func Init() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	dataDir := os.Getenv("DATA_DIR")
	if dataDir == "" {
		dataDir = "./data"
	}

	var db *sql.DB
	var err error
	if url := os.Getenv("DATABASE_URL"); url != "" {
		db, err = sql.Open("postgres", url)
	} else {
		host := getenv("DB_HOST", "localhost")
		port := getenv("DB_PORT", "5432")
		user := getenv("DB_USER", "postgres")
		password := os.Getenv("DB_PASSWORD")
		dbname := getenv("DB_NAME", "hurly")

		psqlInfo := fmt.Sprintf("host=%s port=%s user=%s dbname=%s sslmode=disable connect_timeout=10", host, port, user, dbname)
		if password != "" {
			psqlInfo += " password=" + password
		}
		db, err = sql.Open("postgres", psqlInfo)
	}
	if err != nil {
		log.Fatal("Failed to open database connection:", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)

	origins := strings.Split(getenv("ALLOWED_ORIGINS", "*"), ",")
	for i := range origins {
		origins[i] = strings.TrimSpace(origins[i])
	}

	AppConfig = &Config{
		DB:      db,
		DataDir: dataDir,
		Email: EmailConfig{
			ResendAPIKey: os.Getenv("RESEND_API_KEY"),
			ResendFrom:   os.Getenv("RESEND_FROM"),
			TemplateID:   os.Getenv("RESEND_TEMPLATE_ID"),
		},
		Notify: NotifyConfig{
			AlertRecipient:    os.Getenv("ALERT_RECIPIENT"),
			PayrunRecipient:   getenv("PAYRUN_RECIPIENT", os.Getenv("ALERT_RECIPIENT")),
			OvertimeRecipient: getenv("OVERTIME_RECIPIENT", os.Getenv("ALERT_RECIPIENT")),
			AllowedOrigins:    origins,
		},
		MFA: MFAConfig{
			AdminSetupCodeHash: os.Getenv("ADMIN_SETUP_CODE_HASH"),
			Issuer:             getenv("MFA_ISSUER", "Hurly"),
		},
	}
	log.Println("Configuration initialized")
}

func GetDB() *sql.DB {
	return AppConfig.DB
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
