package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"cihazal/internal/models"
)

// DefaultTelegramAPIBase, resmi Bot API adresi. Self-hosted Bot API sunucusu
// kullanan kurulumlar için ayarlardan değiştirilebilir.
const DefaultTelegramAPIBase = "https://api.telegram.org"

// TelegramService, yeni geri alım taleplerini sabit bir Telegram sohbetine bildirir.
// Bildirim tamamen "best effort" çalışır: eksik ayar veya gönderim hatası hiçbir
// zaman kullanıcıya yansımaz, sadece loga yazılır.
type TelegramService struct {
	token   string
	chatID  string
	apiBase string

	// Mesaj ve dosya gönderimi için ayrı timeout'lar (dosya yüklemesi daha uzun sürer)
	msgClient *http.Client
	docClient *http.Client

	// true ise gönderimler ayrı bir goroutine'de yapılır (prod); false ise
	// handler'ın kendi akışında, hatalar geliştirme sırasında hemen görünsün diye (dev)
	async bool
}

// NewTelegramService, yeni bir TelegramService örneği oluşturur.
// Token veya chat ID ayarlanmamışsa servis devre dışı modda çalışır.
func NewTelegramService(token, chatID, apiBase string, async bool) *TelegramService {
	if token == "" || chatID == "" {
		log.Println("Telegram ayarları eksik (token/chat_id). Bildirimler devre dışı.")
	}
	if apiBase == "" {
		apiBase = DefaultTelegramAPIBase
	}
	return &TelegramService{
		token:     token,
		chatID:    chatID,
		apiBase:   apiBase,
		msgClient: &http.Client{Timeout: 10 * time.Second},
		docClient: &http.Client{Timeout: 20 * time.Second},
		async:     async,
	}
}

// enabled, gönderim için gerekli ayarların var olup olmadığını döndürür.
func (ts *TelegramService) enabled() bool {
	if ts.token == "" || ts.chatID == "" {
		log.Println("Telegram bildirimi atlandı: token/chat_id eksik")
		return false
	}
	return true
}

// Dispatch, gönderim stratejisini uygular: prod'da fire-and-forget goroutine,
// dev'de senkron çağrı. Goroutine beklenmez, sonucu izlenmez, retry yapılmaz.
func (ts *TelegramService) Dispatch(fn func()) {
	if ts.async {
		go fn()
		return
	}
	fn()
}

// SendMessage, sohbete HTML formatlı bir metin mesajı gönderir.
// Hata durumunda sadece log yazar, asla hata döndürmez.
func (ts *TelegramService) SendMessage(text string) {
	if !ts.enabled() {
		return
	}

	url := fmt.Sprintf("%s/bot%s/sendMessage", ts.apiBase, ts.token)
	payload, err := json.Marshal(map[string]interface{}{
		"chat_id":                  ts.chatID,
		"text":                     text,
		"parse_mode":               "HTML",
		"disable_web_page_preview": true,
	})
	if err != nil {
		log.Printf("Telegram sendMessage payload hatası: %v", err)
		return
	}

	resp, err := ts.msgClient.Post(url, "application/json", bytes.NewReader(payload))
	if err != nil {
		log.Printf("Telegram sendMessage hatası: %v", err)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusOK {
		log.Println("Telegram sendMessage OK")
	} else {
		log.Printf("Telegram sendMessage FAILED %d: %s", resp.StatusCode, readBody(resp.Body))
	}
}

// SendDocument, sohbete açıklamalı bir dosya (ispat görseli) yükler.
// Dosya bulunamazsa veya gönderim başarısız olursa sadece log yazar.
func (ts *TelegramService) SendDocument(filePath, caption string) {
	if !ts.enabled() {
		return
	}

	f, err := os.Open(filePath)
	if err != nil {
		log.Printf("Telegram sendDocument dosya açılamadı: %v", err)
		return
	}
	defer f.Close()

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	_ = w.WriteField("chat_id", ts.chatID)
	_ = w.WriteField("caption", caption)
	part, err := w.CreateFormFile("document", filepath.Base(filePath))
	if err != nil {
		log.Printf("Telegram sendDocument form hatası: %v", err)
		return
	}
	if _, err := io.Copy(part, f); err != nil {
		log.Printf("Telegram sendDocument dosya okunamadı: %v", err)
		return
	}
	if err := w.Close(); err != nil {
		log.Printf("Telegram sendDocument form kapatılamadı: %v", err)
		return
	}

	url := fmt.Sprintf("%s/bot%s/sendDocument", ts.apiBase, ts.token)
	resp, err := ts.docClient.Post(url, w.FormDataContentType(), &body)
	if err != nil {
		log.Printf("Telegram sendDocument hatası: %v", err)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusOK {
		log.Println("Telegram sendDocument OK")
	} else {
		log.Printf("Telegram sendDocument FAILED %d: %s", resp.StatusCode, readBody(resp.Body))
	}
}

// NotifySellRequest, talebin bildirim mesajını kurar ve aktif stratejiye göre
// gönderir. İspat görseli varsa ayrı bir dosya mesajı olarak yüklenir.
func (ts *TelegramService) NotifySellRequest(product *models.Product, sr *models.SellRequest, adminURL string) {
	ref := sr.TransactionRef
	if ref == "" {
		ref = "–"
	}

	msg := fmt.Sprintf(
		"📨 <b>Cihaz geri alım talebi</b>\n"+
			"— Ürün: <b>%s</b>\n"+
			"— Müşteri: <b>%s</b>\n"+
			"— Telefon: <code>%s</code>\n"+
			"— Banka: <b>%s</b>\n"+
			"— Hesap: <code>%s</code>\n"+
			"— Alış fiyatı: <b>%s ₺</b>\n"+
			"— Ödenecek tutar (%%30 kesinti sonrası): <b>%s ₺</b>\n"+
			"— İşlem no: <code>%s</code>\n"+
			"— Yönetim: <a href=\"%s\">kaydı aç</a>",
		product.Name, sr.CustomerName, sr.Phone, sr.BankName, sr.AccountNumber,
		sr.PurchasePrice.StringFixed(2), sr.PayoutAmount.StringFixed(2), ref, adminURL,
	)

	ts.Dispatch(func() { ts.SendMessage(msg) })

	if path := ProofFilePath(sr.ProofImage); path != "" {
		caption := fmt.Sprintf("Satın alma ispatı — %s", product.Name)
		ts.Dispatch(func() { ts.SendDocument(path, caption) })
	}
}

// ProofFilePath, veritabanında tutulan web yolunu ("/static/uploads/...") diskteki
// dosya yoluna çevirir. Dosya yoksa boş döner.
func ProofFilePath(webPath string) string {
	if webPath == "" {
		return ""
	}
	local := filepath.Join(".", filepath.FromSlash(webPath))
	if _, err := os.Stat(local); err != nil {
		log.Printf("İspat görseli bulunamadı: %s", local)
		return ""
	}
	return local
}

// readBody, yanıt gövdesinin ilk 500 baytını log için okur.
func readBody(r io.Reader) string {
	b, err := io.ReadAll(io.LimitReader(r, 500))
	if err != nil {
		return ""
	}
	return string(b)
}
