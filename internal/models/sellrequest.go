package models

import (
	"errors"
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Telefon: opsiyonel + ve ardından 8-15 rakam
var phoneRe = regexp.MustCompile(`^\+?\d{8,15}$`)

// Hesap numarası IBAN uzunluğuna kadar kabul edilir
const maxAccountNumberLen = 34

// SellRequest, satın alınan bir cihazın geri alım talebini temsil eder.
// Ürün silinirse ona bağlı talepler de silinir.
type SellRequest struct {
	ID             uint            `gorm:"primaryKey" json:"id"`
	ProductID      uint            `gorm:"not null;index" json:"product_id"`
	Product        Product         `gorm:"constraint:OnDelete:CASCADE" json:"product"`
	CustomerName   string          `gorm:"size:255;not null" json:"customer_name"`
	Phone          string          `gorm:"size:20;not null" json:"phone"`
	AccountNumber  string          `gorm:"size:34;not null" json:"account_number"`
	BankName       string          `gorm:"size:100;not null" json:"bank_name"`
	TransactionRef string          `gorm:"size:100" json:"transaction_ref"`
	ProofImage     string          `gorm:"size:255" json:"proof_image"`
	PurchasePrice  decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"purchase_price"`
	PayoutAmount   decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"payout_amount"`
	CreatedAt      time.Time       `json:"created_at"`
}

// SellRequestForm, vitrindeki geri alım formunu temsil eder.
// PurchasePrice metin olarak gelir; parse edilemezse ürünün kayıtlı fiyatına düşülür.
type SellRequestForm struct {
	ProductID      uint   `form:"product"`
	CustomerName   string `form:"customer_name"`
	Phone          string `form:"phone"`
	AccountNumber  string `form:"account_number"`
	BankName       string `form:"bank_name"`
	TransactionRef string `form:"transaction_ref"`
	PurchasePrice  string `form:"purchase_price"`
}

// Validate, formun zorunlu alanlarını ve alan kurallarını denetler.
// hasProof, isteğe bağlı ispat görselinin yüklenip yüklenmediğini belirtir.
// Kural: işlem numarası veya ispat görseli; ikisi birden boşsa talep reddedilir.
func (f *SellRequestForm) Validate(hasProof bool) error {
	if f.ProductID == 0 {
		return errors.New("ürün seçilmedi")
	}
	if strings.TrimSpace(f.CustomerName) == "" {
		return errors.New("müşteri adı zorunludur")
	}
	phone := strings.TrimSpace(f.Phone)
	if !phoneRe.MatchString(phone) {
		return errors.New("telefon numarası geçersiz")
	}
	account := strings.TrimSpace(f.AccountNumber)
	if account == "" || len(account) > maxAccountNumberLen {
		return errors.New("hesap numarası geçersiz")
	}
	if strings.TrimSpace(f.BankName) == "" {
		return errors.New("banka adı zorunludur")
	}
	if strings.TrimSpace(f.TransactionRef) == "" && !hasProof {
		return errors.New("işlem numarası veya satın alma ispatı gereklidir")
	}
	return nil
}
