package main

import (
	"html/template"
	"log"
	"os"
	"path/filepath"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"cihazal/internal/config"
	"cihazal/internal/database"
	"cihazal/internal/handlers"
	"cihazal/internal/models"
)

func main() {
	cfg := config.Load()

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.NewDatabase(cfg.DBPath)
	if err != nil {
		log.Fatalf("Veritabanı başlatılamadı: %v", err)
	}
	db.SeedProducts(sampleProducts())

	// Yükleme dizinleri baştan hazırlanır
	for _, dir := range []string{"static/uploads/products", "static/uploads/proofs"} {
		if err := os.MkdirAll(filepath.FromSlash(dir), 0755); err != nil {
			log.Fatalf("Yükleme dizini oluşturulamadı (%s): %v", dir, err)
		}
	}

	h := handlers.NewHandler(db, cfg)

	r := gin.New()
	r.Use(gin.Logger())
	r.Use(gin.Recovery())
	r.SetTrustedProxies([]string{"127.0.0.1", "::1"})

	// Her sayfa için ayrı template setleri oluştur
	templates := map[string]*template.Template{}
	templateFiles := map[string][]string{
		"landing.html":                  {"templates/landing.html", "templates/base.html"},
		"admin_login.html":              {"templates/admin_login.html", "templates/base.html"},
		"admin.html":                    {"templates/admin.html", "templates/base.html"},
		"admin_sellrequests.html":       {"templates/admin_sellrequests.html", "templates/base.html"},
		"admin_sellrequest_detail.html": {"templates/admin_sellrequest_detail.html", "templates/base.html"},
	}

	for name, files := range templateFiles {
		tmpl, err := template.New(name).Funcs(handlers.TemplateFuncs).ParseFiles(files...)
		if err != nil {
			log.Fatalf("Template yüklenemedi %s: %v", name, err)
		}
		templates[name] = tmpl
	}

	r.HTMLRender = &handlers.HTMLRenderer{
		Templates: templates,
	}

	// Static dosyaları serve et
	r.Static("/static", "./static")

	// Vitrin rotaları
	r.GET("/", h.LandingPage)
	r.POST("/sell-requests", h.CreateSellRequest)

	// Admin authentication rotaları (korumasız)
	r.GET("/admin/login", h.AdminLoginPage)
	r.POST("/admin/login", h.AdminLogin)
	r.GET("/admin/logout", h.AdminLogout)

	// Admin paneli rotaları (korumalı)
	admin := r.Group("/admin")
	admin.Use(h.AuthMiddleware())
	{
		admin.GET("", h.AdminPage)
		admin.POST("/products", h.AddProduct)
		admin.POST("/products/:id/update", h.UpdateProduct)
		admin.POST("/products/:id/delete", h.DeleteProduct)
		admin.GET("/sell-requests", h.AdminSellRequests)
		admin.GET("/sell-requests/:id", h.AdminSellRequestDetail)
	}

	addr := cfg.Host + ":" + cfg.Port
	log.Printf("Sunucu başlatılıyor: %s (%s, telegram: %v)", addr, cfg.AppEnv, cfg.TelegramEnabled())
	if err := r.Run(addr); err != nil {
		log.Fatalf("Sunucu başlatılamadı: %v", err)
	}
}

// sampleProducts, boş veritabanını ilk kurulumda dolduran örnek kayıtlar.
func sampleProducts() []models.Product {
	return []models.Product{
		{
			Name:     "PlayStation 5 Slim",
			Category: models.CategoryNew,
			Badge:    "Yeni",
			Price:    decimal.NewFromInt(23999),
			Details:  "1 TB SSD, DualSense kumandalı sıfır konsol.",
			StoreURL: "https://magaza.cihazal.com/ps5-slim",
			IsActive: true,
		},
		{
			Name:     "MacBook Air M2",
			Category: models.CategoryComputers,
			Badge:    "Fırsat",
			Price:    decimal.NewFromInt(34499),
			Details:  "13 inç, 8 GB RAM, 256 GB SSD, gümüş.",
			StoreURL: "https://magaza.cihazal.com/macbook-air-m2",
			IsActive: true,
		},
		{
			Name:     "Xbox Kablosuz Kumanda",
			Category: models.CategoryAccessories,
			Price:    decimal.NewFromInt(1899),
			Details:  "Karbon siyahı, Bluetooth destekli.",
			StoreURL: "https://magaza.cihazal.com/xbox-kumanda",
			IsActive: true,
		},
	}
}
