package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Ürün kategorileri. Boş kategori de geçerlidir (kategorisiz ürün).
const (
	CategoryNew         = "new"
	CategoryUsed        = "used"
	CategoryGames       = "games"
	CategoryComputers   = "computers"
	CategoryAccessories = "accessories"
)

// Categories, vitrin filtresinde gösterilen sabit kategori listesi.
var Categories = []string{
	CategoryNew,
	CategoryUsed,
	CategoryGames,
	CategoryComputers,
	CategoryAccessories,
}

// CategoryLabels, kategori kodlarının ekranda görünen karşılıkları.
var CategoryLabels = map[string]string{
	CategoryNew:         "Sıfır",
	CategoryUsed:        "İkinci El",
	CategoryGames:       "Oyunlar",
	CategoryComputers:   "Bilgisayarlar",
	CategoryAccessories: "Aksesuarlar",
}

// ValidCategory, verilen kategorinin tanımlı seçeneklerden biri olup olmadığını döndürür.
// Boş kategori geçerli sayılır.
func ValidCategory(category string) bool {
	if category == "" {
		return true
	}
	for _, c := range Categories {
		if c == category {
			return true
		}
	}
	return false
}

// Product, vitrindeki bir ürünü temsil eder
type Product struct {
	ID        uint            `gorm:"primaryKey" json:"id"`
	Name      string          `gorm:"size:255;not null" json:"name"`
	Category  string          `gorm:"size:20;index" json:"category"`
	Badge     string          `gorm:"size:50" json:"badge"`
	Price     decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"price"`
	Details   string          `gorm:"type:text" json:"details"`
	Image     string          `gorm:"size:255" json:"image"`
	StoreURL  string          `gorm:"size:255" json:"store_url"`
	// default tag yok: GORM, default'lu sıfır değerleri INSERT'e koymaz,
	// false hiçbir zaman kaydedilemezdi
	IsActive  bool            `json:"is_active"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// ProductForm, admin panelindeki ürün ekleme/düzenleme formunu temsil eder
type ProductForm struct {
	Name     string `form:"name" binding:"required"`
	Category string `form:"category"`
	Badge    string `form:"badge"`
	Price    string `form:"price" binding:"required"`
	Details  string `form:"details"`
	StoreURL string `form:"store_url"`
	IsActive bool   `form:"is_active"`
}

// ProductFilter, vitrin listeleme sorgusunun parametrelerini taşır.
// Tüm alanlar opsiyoneldir; sıfır değerleri "filtre yok" anlamına gelir.
type ProductFilter struct {
	Query    string
	Category string
	MaxPrice *decimal.Decimal
	Sort     string // newest | price_asc | price_desc
	Page     int
	PageSize int
}
