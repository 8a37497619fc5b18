package services

import (
	"fmt"
	"log"

	"gopkg.in/gomail.v2"

	"cihazal/internal/models"
)

// EmailService, operatöre e-posta ile bildirim göndermek için kullanılır.
// SMTP ayarları eksikse servis sessizce devre dışı kalır; e-posta kanalı da
// Telegram gibi best-effort çalışır.
type EmailService struct {
	dialer *gomail.Dialer
	from   string
	to     string
}

// NewEmailService, yeni bir EmailService örneği oluşturur.
// Kullanıcı adı, şifre veya operatör adresi boşsa gönderim devre dışı kalır.
func NewEmailService(host string, port int, user, pass, operator string) *EmailService {
	if user == "" || pass == "" || operator == "" {
		log.Println("SMTP bilgileri ayarlanmamış. E-posta bildirimi devre dışı.")
		return &EmailService{}
	}

	return &EmailService{
		dialer: gomail.NewDialer(host, port, user, pass),
		from:   user,
		to:     operator,
	}
}

// SendSellRequestCopy, yeni geri alım talebinin bir kopyasını operatöre e-postayla
// iletir. Hatalar loglanır, asla çağırana dönmez.
func (es *EmailService) SendSellRequestCopy(product *models.Product, sr *models.SellRequest, adminURL string) {
	if es.dialer == nil {
		log.Printf("E-posta gönderimi devre dışı. Talep: #%d", sr.ID)
		return
	}

	ref := sr.TransactionRef
	if ref == "" {
		ref = "–"
	}

	subject := fmt.Sprintf("Yeni geri alım talebi — %s", product.Name)
	body := fmt.Sprintf(`
		<h2>Cihaz geri alım talebi</h2>
		<p>Ürün: <b>%s</b></p>
		<p>Müşteri: %s — %s</p>
		<p>Banka: %s / Hesap: %s</p>
		<p>Alış fiyatı: %s ₺ — Ödenecek: %s ₺</p>
		<p>İşlem no: %s</p>
		<p><a href="%s">Kaydı yönetim panelinde aç</a></p>
	`, product.Name, sr.CustomerName, sr.Phone, sr.BankName, sr.AccountNumber,
		sr.PurchasePrice.StringFixed(2), sr.PayoutAmount.StringFixed(2), ref, adminURL)

	m := gomail.NewMessage()
	m.SetHeader("From", es.from)
	m.SetHeader("To", es.to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", body)

	if err := es.dialer.DialAndSend(m); err != nil {
		log.Printf("E-posta gönderimi başarısız: %v", err)
		return
	}

	log.Printf("Geri alım talebi e-postası gönderildi: #%d", sr.ID)
}
