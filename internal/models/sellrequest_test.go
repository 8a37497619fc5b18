package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func validForm() SellRequestForm {
	return SellRequestForm{
		ProductID:      1,
		CustomerName:   "Ahmet Yılmaz",
		Phone:          "+9665512345678",
		AccountNumber:  "TR330006100519786457841326",
		BankName:       "Ziraat",
		TransactionRef: "TXN-123",
	}
}

func TestSellRequestForm_Validate(t *testing.T) {
	t.Run("geçerli form kabul edilir", func(t *testing.T) {
		f := validForm()
		assert.NoError(t, f.Validate(false))
	})

	t.Run("işlem no olmadan ispat görseli yeterlidir", func(t *testing.T) {
		f := validForm()
		f.TransactionRef = ""
		assert.NoError(t, f.Validate(true))
	})

	t.Run("işlem no ve ispat ikisi de yoksa reddedilir", func(t *testing.T) {
		f := validForm()
		f.TransactionRef = "   "
		assert.Error(t, f.Validate(false))
	})

	t.Run("ürün seçilmemişse reddedilir", func(t *testing.T) {
		f := validForm()
		f.ProductID = 0
		assert.Error(t, f.Validate(false))
	})

	t.Run("müşteri adı zorunludur", func(t *testing.T) {
		f := validForm()
		f.CustomerName = "  "
		assert.Error(t, f.Validate(false))
	})

	t.Run("banka adı zorunludur", func(t *testing.T) {
		f := validForm()
		f.BankName = ""
		assert.Error(t, f.Validate(false))
	})

	t.Run("hesap numarası 34 karakteri aşamaz", func(t *testing.T) {
		f := validForm()
		f.AccountNumber = "TR3300061005197864578413260000000000"
		assert.Error(t, f.Validate(false))
	})
}

func TestSellRequestForm_PhonePattern(t *testing.T) {
	accepted := []string{
		"+9665512345678",
		"905551234567",
		"12345678",
		"+123456789012345",
	}
	rejected := []string{
		"12345",            // çok kısa
		"abc12345678",      // harf içeriyor
		"1234567890123456", // çok uzun
		"+12 345 678 90",   // boşluk içeriyor
		"++905551234567",
		"",
	}

	for _, phone := range accepted {
		f := validForm()
		f.Phone = phone
		assert.NoError(t, f.Validate(false), "kabul edilmeliydi: %q", phone)
	}
	for _, phone := range rejected {
		f := validForm()
		f.Phone = phone
		assert.Error(t, f.Validate(false), "reddedilmeliydi: %q", phone)
	}
}
