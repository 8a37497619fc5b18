package database

import (
	"errors"
	"fmt"
	"log"
	"strings"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"cihazal/internal/models"
)

// ErrNotFound, aranan kayıt bulunamadığında döner.
var ErrNotFound = errors.New("kayıt bulunamadı")

// Database, ürün ve geri alım taleplerini SQLite üzerinde yönetir.
type Database struct {
	conn *gorm.DB
}

// NewDatabase, veritabanı bağlantısını açar ve şemayı migrate eder.
func NewDatabase(path string) (*Database, error) {
	conn, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("veritabanı açılamadı: %w", err)
	}

	if err := conn.AutoMigrate(&models.Product{}, &models.SellRequest{}); err != nil {
		return nil, fmt.Errorf("migration başarısız: %w", err)
	}

	return &Database{conn: conn}, nil
}

// --- Ürün işlemleri ---

// GetAllProducts, aktif/pasif ayrımı yapmadan tüm ürünleri döndürür (admin paneli için).
func (db *Database) GetAllProducts() ([]models.Product, error) {
	var products []models.Product
	if err := db.conn.Order("created_at DESC").Find(&products).Error; err != nil {
		return nil, fmt.Errorf("ürünler okunamadı: %w", err)
	}
	return products, nil
}

// QueryProducts, vitrin listeleme sorgusunu çalıştırır: sadece aktif ürünler,
// opsiyonel metin/kategori/azami fiyat filtreleri, sıralama ve sayfalama.
// Eşleşen toplam kayıt sayısını da döndürür.
func (db *Database) QueryProducts(f models.ProductFilter) ([]models.Product, int64, error) {
	// Aynı filtre seti hem sayım hem sayfa sorgusu için ayrı ayrı kurulur
	filtered := func() *gorm.DB {
		q := db.conn.Model(&models.Product{}).Where("is_active = ?", true)
		if f.Query != "" {
			like := "%" + strings.ToLower(f.Query) + "%"
			q = q.Where("LOWER(name) LIKE ? OR LOWER(details) LIKE ?", like, like)
		}
		if f.Category != "" {
			// Bilinmeyen kategori hata değildir, sadece boş sonuç verir
			q = q.Where("category = ?", f.Category)
		}
		if f.MaxPrice != nil {
			q = q.Where("price <= ?", f.MaxPrice)
		}
		return q
	}

	var total int64
	if err := filtered().Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("ürün sayısı okunamadı: %w", err)
	}

	// Fiyat sıralamalarında eşit fiyatlar en yeniden eskiye dizilir
	order := "created_at DESC"
	switch f.Sort {
	case "price_asc":
		order = "price ASC, created_at DESC"
	case "price_desc":
		order = "price DESC, created_at DESC"
	}

	page := f.Page
	if page < 1 {
		page = 1
	}
	size := f.PageSize
	if size < 1 {
		size = 12
	}

	var products []models.Product
	err := filtered().Order(order).Offset((page - 1) * size).Limit(size).Find(&products).Error
	if err != nil {
		return nil, 0, fmt.Errorf("ürünler okunamadı: %w", err)
	}
	return products, total, nil
}

// GetProductByID, belirli bir ID'ye sahip ürünü döndürür.
func (db *Database) GetProductByID(id uint) (*models.Product, error) {
	var product models.Product
	if err := db.conn.First(&product, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("ürün okunamadı: %w", err)
	}
	return &product, nil
}

// CreateProduct, yeni bir ürün kaydeder.
func (db *Database) CreateProduct(product *models.Product) error {
	if err := db.conn.Create(product).Error; err != nil {
		return fmt.Errorf("ürün eklenemedi: %w", err)
	}
	return nil
}

// UpdateProduct, mevcut bir ürünün tüm alanlarını günceller.
func (db *Database) UpdateProduct(product *models.Product) error {
	result := db.conn.Model(&models.Product{}).Where("id = ?", product.ID).
		Select("Name", "Category", "Badge", "Price", "Details", "Image", "StoreURL", "IsActive").
		Updates(product)
	if err := result.Error; err != nil {
		return fmt.Errorf("ürün güncellenemedi: %w", err)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteProduct, ürünü ve ona bağlı tüm geri alım taleplerini siler.
func (db *Database) DeleteProduct(id uint) error {
	return db.conn.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("product_id = ?", id).Delete(&models.SellRequest{}).Error; err != nil {
			return fmt.Errorf("talepler silinemedi: %w", err)
		}
		result := tx.Delete(&models.Product{}, id)
		if err := result.Error; err != nil {
			return fmt.Errorf("ürün silinemedi: %w", err)
		}
		if result.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}

// --- Geri alım talebi işlemleri ---

// CreateSellRequest, yeni bir geri alım talebi kaydeder.
func (db *Database) CreateSellRequest(sr *models.SellRequest) error {
	if err := db.conn.Omit("Product").Create(sr).Error; err != nil {
		return fmt.Errorf("talep kaydedilemedi: %w", err)
	}
	return nil
}

// GetAllSellRequests, tüm talepleri ürün bilgisiyle birlikte, en yeniden eskiye döndürür.
func (db *Database) GetAllSellRequests() ([]models.SellRequest, error) {
	var requests []models.SellRequest
	if err := db.conn.Preload("Product").Order("created_at DESC").Find(&requests).Error; err != nil {
		return nil, fmt.Errorf("talepler okunamadı: %w", err)
	}
	return requests, nil
}

// GetSellRequestByID, belirli bir talebi ürün bilgisiyle birlikte döndürür.
func (db *Database) GetSellRequestByID(id uint) (*models.SellRequest, error) {
	var sr models.SellRequest
	if err := db.conn.Preload("Product").First(&sr, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("talep okunamadı: %w", err)
	}
	return &sr, nil
}

// SeedProducts, veritabanı boşsa birkaç örnek ürün ekler (ilk kurulum için).
func (db *Database) SeedProducts(products []models.Product) {
	var count int64
	if err := db.conn.Model(&models.Product{}).Count(&count).Error; err != nil || count > 0 {
		return
	}
	for i := range products {
		if err := db.conn.Create(&products[i]).Error; err != nil {
			log.Printf("Örnek ürün eklenemedi (%s): %v", products[i].Name, err)
		}
	}
	log.Printf("%d örnek ürün eklendi", len(products))
}
