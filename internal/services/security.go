package services

import (
	"fmt"
	"log"
	"os"
	"time"
)

// SecurityLogger, güvenlik açısından önemli olayları (başarısız admin girişleri,
// reddedilen talepler) ayrı bir dosyaya loglar.
type SecurityLogger struct {
	file *os.File
}

// NewSecurityLogger, yeni bir güvenlik logger'ı oluşturur.
// Dosya açılamazsa logger sessizce devre dışı kalır.
func NewSecurityLogger(path string) *SecurityLogger {
	if path == "" {
		path = "security.log"
	}
	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		log.Printf("Güvenlik log dosyası oluşturulamadı: %v", err)
		return &SecurityLogger{}
	}
	return &SecurityLogger{file: file}
}

// LogEvent, güvenlik olayını zaman damgasıyla dosyaya yazar.
func (sl *SecurityLogger) LogEvent(eventType, details, ipAddress string) {
	if sl == nil || sl.file == nil {
		return
	}

	timestamp := time.Now().Format("2006-01-02 15:04:05")
	entry := fmt.Sprintf("[%s] %s - %s - IP: %s\n", timestamp, eventType, details, ipAddress)
	if _, err := sl.file.WriteString(entry); err != nil {
		log.Printf("Güvenlik log yazma hatası: %v", err)
	}
}

// LogFailedAdminLogin, başarısız admin giriş denemesini kaydeder.
func (sl *SecurityLogger) LogFailedAdminLogin(username, ipAddress string) {
	sl.LogEvent("admin_login_failed", fmt.Sprintf("kullanıcı: %s", username), ipAddress)
}

// LogRejectedSellRequest, doğrulamadan geçemeyen geri alım talebini kaydeder.
func (sl *SecurityLogger) LogRejectedSellRequest(reason, ipAddress string) {
	sl.LogEvent("sell_request_rejected", reason, ipAddress)
}

// Close, log dosyasını kapatır.
func (sl *SecurityLogger) Close() {
	if sl != nil && sl.file != nil {
		sl.file.Close()
	}
}
