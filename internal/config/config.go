package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config, uygulamanın ortam değişkenlerinden okunan tüm ayarlarını taşır.
type Config struct {
	// Sunucu ayarları
	Host    string
	Port    string
	BaseURL string
	AppEnv  string // development | production
	DBPath  string

	// Güvenlik olayları log dosyası
	SecurityLogPath string

	// Telegram ayarları
	TelegramBotToken string
	TelegramChatID   string
	TelegramAPIBase  string

	// SMTP ayarları
	SMTPHost      string
	SMTPPort      int
	SMTPUser      string
	SMTPPass      string
	OperatorEmail string

	// Admin girişi
	AdminUsername     string
	AdminPasswordHash string
}

// Load, .env dosyasını (varsa) ve ortam değişkenlerini okuyarak Config oluşturur.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println(".env dosyası bulunamadı, ortam değişkenleri kullanılıyor")
	}

	return &Config{
		Host:    getenv("HOST", "0.0.0.0"),
		Port:    getenv("PORT", "9394"),
		BaseURL: getenv("BASE_URL", "http://localhost:9394"),
		AppEnv:  getenv("APP_ENV", "development"),
		DBPath:  getenv("DB_PATH", "./cihazal.db"),

		SecurityLogPath: getenv("SECURITY_LOG_PATH", "security.log"),

		TelegramBotToken: os.Getenv("TELEGRAM_BOT_TOKEN"),
		TelegramChatID:   os.Getenv("TELEGRAM_CHAT_ID"),
		// Boş bırakılırsa resmi Bot API adresi kullanılır
		TelegramAPIBase: os.Getenv("TELEGRAM_API_BASE"),

		SMTPHost:      getenv("SMTP_HOST", "smtp.gmail.com"),
		SMTPPort:      getenvInt("SMTP_PORT", 587),
		SMTPUser:      os.Getenv("SMTP_USER"),
		SMTPPass:      os.Getenv("SMTP_PASS"),
		OperatorEmail: os.Getenv("OPERATOR_EMAIL"),

		AdminUsername:     getenv("ADMIN_USERNAME", "admin"),
		AdminPasswordHash: os.Getenv("ADMIN_PASSWORD_HASH"),
	}
}

// IsProduction, bildirimlerin arka planda mı yoksa senkron mu gönderileceğini belirler.
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// TelegramEnabled, her iki Telegram ayarının da mevcut olup olmadığını döndürür.
func (c *Config) TelegramEnabled() bool {
	return c.TelegramBotToken != "" && c.TelegramChatID != ""
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getenvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Printf("%s değeri sayı değil (%q), varsayılan kullanılıyor: %d", key, v, fallback)
		return fallback
	}
	return n
}
