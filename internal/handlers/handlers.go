package handlers

import (
	"errors"
	"fmt"
	"log"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"

	"cihazal/internal/config"
	"cihazal/internal/database"
	"cihazal/internal/models"
	"cihazal/internal/services"
)

// Vitrin sayfa başına ürün sayısı
const pageSize = 12

// Flash mesajları kısa ömürlü cookie'lerde taşınır
const (
	flashErrorCookie   = "flash_error"
	flashSuccessCookie = "flash_success"
	flashCookieAge     = 10 // saniye
)

// DBInterface, veritabanı işlemlerini tanımlar.
type DBInterface interface {
	// Ürün işlemleri
	GetAllProducts() ([]models.Product, error)
	QueryProducts(filter models.ProductFilter) ([]models.Product, int64, error)
	GetProductByID(id uint) (*models.Product, error)
	CreateProduct(product *models.Product) error
	UpdateProduct(product *models.Product) error
	DeleteProduct(id uint) error
	// Geri alım talebi işlemleri
	CreateSellRequest(sr *models.SellRequest) error
	GetAllSellRequests() ([]models.SellRequest, error)
	GetSellRequestByID(id uint) (*models.SellRequest, error)
}

// Handler, HTTP isteklerini yönetir.
type Handler struct {
	db       DBInterface
	cfg      *config.Config
	telegram *services.TelegramService
	email    *services.EmailService
	seclog   *services.SecurityLogger
}

// NewHandler, yeni bir Handler örneği oluşturur. Bildirim stratejisi (senkron/arka plan)
// burada, başlangıçta bir kez çözülür; istek başına ortam bayrağına bakılmaz.
func NewHandler(db DBInterface, cfg *config.Config) *Handler {
	return &Handler{
		db:       db,
		cfg:      cfg,
		telegram: services.NewTelegramService(cfg.TelegramBotToken, cfg.TelegramChatID, cfg.TelegramAPIBase, cfg.IsProduction()),
		email:    services.NewEmailService(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass, cfg.OperatorEmail),
		seclog:   services.NewSecurityLogger(cfg.SecurityLogPath),
	}
}

// --- Flash yardımcıları ---

func setFlash(c *gin.Context, name, msg string) {
	c.SetCookie(name, msg, flashCookieAge, "/", "", false, true)
}

// popFlash, flash mesajını okur ve cookie'yi temizler.
func popFlash(c *gin.Context, name string) string {
	msg, err := c.Cookie(name)
	if err != nil || msg == "" {
		return ""
	}
	c.SetCookie(name, "", -1, "/", "", false, true)
	return msg
}

// redirectWithError, kullanıcıyı genel bir hata mesajıyla vitrine geri gönderir.
// Teknik detaylar kullanıcıya gösterilmez, sadece loga yazılır.
func (h *Handler) redirectWithError(c *gin.Context, msg string) {
	setFlash(c, flashErrorCookie, msg)
	c.Redirect(http.StatusSeeOther, "/")
}

// --- Vitrin ---

// LandingPage, vitrin sayfasını oluşturur. Desteklenen parametreler:
//   - q: ad/detay içinde büyük-küçük harf duyarsız arama
//   - category: kategori filtresi (bilinmeyen değer boş sonuç verir)
//   - max_price: azami fiyat (parse edilemezse yok sayılır)
//   - sort: newest | price_asc | price_desc
//   - page: sayfa numarası
func (h *Handler) LandingPage(c *gin.Context) {
	q := strings.TrimSpace(c.Query("q"))
	category := strings.TrimSpace(c.Query("category"))
	maxPriceRaw := strings.TrimSpace(c.Query("max_price"))
	sort := strings.TrimSpace(c.DefaultQuery("sort", "newest"))

	page, err := strconv.Atoi(c.Query("page"))
	if err != nil || page < 1 {
		page = 1
	}

	filter := models.ProductFilter{
		Query:    q,
		Category: category,
		Sort:     sort,
		Page:     page,
		PageSize: pageSize,
	}
	if maxPriceRaw != "" {
		// Parse edilemeyen max_price filtre uygulamamakla eşdeğerdir
		if mp, err := decimal.NewFromString(maxPriceRaw); err == nil {
			filter.MaxPrice = &mp
		}
	}

	products, total, err := h.db.QueryProducts(filter)
	if err != nil {
		log.Printf("Vitrin sorgusu başarısız: %v", err)
		products = []models.Product{}
		total = 0
	}

	totalPages := int((total + pageSize - 1) / pageSize)
	if totalPages < 1 {
		totalPages = 1
	}
	// Aralık dışı sayfa isteklerinde son sayfanın kayıtları gösterilir
	if page > totalPages {
		page = totalPages
		filter.Page = page
		if products, total, err = h.db.QueryProducts(filter); err != nil {
			log.Printf("Vitrin sorgusu başarısız: %v", err)
			products = []models.Product{}
			total = 0
		}
	}

	c.HTML(http.StatusOK, "landing.html", gin.H{
		"title":          "Cihazal - Vitrin",
		"products":       products,
		"total":          total,
		"page":           page,
		"totalPages":     totalPages,
		"hasPrev":        page > 1,
		"hasNext":        page < totalPages,
		"prevPage":       page - 1,
		"nextPage":       page + 1,
		"q":              q,
		"category":       category,
		"maxPrice":       maxPriceRaw,
		"sort":           sort,
		"categories":     models.Categories,
		"categoryLabels": models.CategoryLabels,
		"error":          popFlash(c, flashErrorCookie),
		"success":        popFlash(c, flashSuccessCookie),
	})
}

// --- Geri alım talebi ---

// CreateSellRequest, geri alım formunu işler:
// doğrula -> ürünü çöz -> fiyatı hesapla -> kaydet -> bildir -> yönlendir.
// Bildirim hatası kaydı asla geri almaz; ikisi bilinçli olarak ayrıktır.
func (h *Handler) CreateSellRequest(c *gin.Context) {
	var form models.SellRequestForm
	if err := c.ShouldBind(&form); err != nil {
		log.Printf("Geri alım formu bind hatası: %v", err)
		h.redirectWithError(c, "Alanları kontrol edip yeniden deneyin.")
		return
	}

	// İspat görseli opsiyoneldir; yükleme ancak doğrulama geçtikten sonra kaydedilir
	proofFile, _ := c.FormFile("proof_image")

	if err := form.Validate(proofFile != nil); err != nil {
		log.Printf("Geri alım formu doğrulama hatası: %v", err)
		h.seclog.LogRejectedSellRequest(err.Error(), c.ClientIP())
		h.redirectWithError(c, "Alanları kontrol edip yeniden deneyin.")
		return
	}

	product, err := h.db.GetProductByID(form.ProductID)
	if err != nil {
		if !errors.Is(err, database.ErrNotFound) {
			log.Printf("Ürün sorgusu başarısız: %v", err)
		}
		h.redirectWithError(c, "Ürün bulunamadı.")
		return
	}

	// Müşterinin gönderdiği fiyat parse edilemezse ürünün kayıtlı fiyatı kullanılır
	purchase, payout := services.ComputePayout(services.ParsePriceOr(form.PurchasePrice, product.Price))

	var proofPath string
	if proofFile != nil {
		proofPath, err = saveUpload(c, proofFile, "proofs")
		if err != nil {
			log.Printf("İspat görseli kaydedilemedi: %v", err)
			h.redirectWithError(c, "Dosya yüklenemedi, yeniden deneyin.")
			return
		}
	}

	sr := &models.SellRequest{
		ProductID:      product.ID,
		CustomerName:   strings.TrimSpace(form.CustomerName),
		Phone:          strings.TrimSpace(form.Phone),
		AccountNumber:  strings.TrimSpace(form.AccountNumber),
		BankName:       strings.TrimSpace(form.BankName),
		TransactionRef: strings.TrimSpace(form.TransactionRef),
		ProofImage:     proofPath,
		PurchasePrice:  purchase,
		PayoutAmount:   payout,
	}

	if err := h.db.CreateSellRequest(sr); err != nil {
		log.Printf("Talep kaydedilemedi: %v", err)
		h.redirectWithError(c, "Talep kaydedilemedi, yeniden deneyin.")
		return
	}

	adminURL := fmt.Sprintf("%s/admin/sell-requests/%d", h.cfg.BaseURL, sr.ID)
	h.telegram.NotifySellRequest(product, sr, adminURL)
	h.telegram.Dispatch(func() { h.email.SendSellRequestCopy(product, sr, adminURL) })

	setFlash(c, flashSuccessCookie, "Talebiniz alındı. En kısa sürede sizinle iletişime geçeceğiz.")
	c.Redirect(http.StatusSeeOther, "/")
}

// saveUpload, yüklenen dosyayı uuid ile adlandırıp static/uploads altına kaydeder
// ve web yolunu döndürür.
func saveUpload(c *gin.Context, file *multipart.FileHeader, subdir string) (string, error) {
	ext := strings.ToLower(filepath.Ext(file.Filename))
	if ext != ".jpg" && ext != ".jpeg" && ext != ".png" && ext != ".gif" {
		return "", fmt.Errorf("desteklenmeyen dosya türü: %s", ext)
	}

	filename := uuid.New().String() + ext
	uploadPath := filepath.Join("static", "uploads", subdir, filename)
	if err := c.SaveUploadedFile(file, uploadPath); err != nil {
		return "", err
	}
	return "/static/uploads/" + subdir + "/" + filename, nil
}

// --- Admin ---

// AuthMiddleware, admin oturumunu denetler.
func (h *Handler) AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		session, err := c.Cookie("admin_session")
		if err != nil || session == "" {
			c.Redirect(http.StatusSeeOther, "/admin/login")
			c.Abort()
			return
		}
		c.Next()
	}
}

func (h *Handler) AdminLoginPage(c *gin.Context) {
	c.HTML(http.StatusOK, "admin_login.html", gin.H{
		"title": "Admin Girişi",
	})
}

// AdminLogin, kullanıcı adını ve bcrypt hash'lenmiş şifreyi denetler.
func (h *Handler) AdminLogin(c *gin.Context) {
	username := c.PostForm("username")
	password := c.PostForm("password")

	if h.cfg.AdminPasswordHash == "" {
		log.Println("ADMIN_PASSWORD_HASH ayarlanmamış, admin girişi kapalı")
		c.HTML(http.StatusUnauthorized, "admin_login.html", gin.H{
			"title": "Admin Girişi",
			"error": "Admin girişi yapılandırılmamış",
		})
		return
	}

	hashErr := bcrypt.CompareHashAndPassword([]byte(h.cfg.AdminPasswordHash), []byte(password))
	if username != h.cfg.AdminUsername || hashErr != nil {
		log.Printf("Başarısız admin giriş denemesi: %s", username)
		h.seclog.LogFailedAdminLogin(username, c.ClientIP())
		c.HTML(http.StatusUnauthorized, "admin_login.html", gin.H{
			"title": "Admin Girişi",
			"error": "Geçersiz kullanıcı adı veya şifre",
		})
		return
	}

	sessionID := uuid.New().String()
	c.SetCookie("admin_session", sessionID, 3600, "/", "", false, true)
	c.Redirect(http.StatusSeeOther, "/admin")
}

func (h *Handler) AdminLogout(c *gin.Context) {
	c.SetCookie("admin_session", "", -1, "/", "", false, true)
	c.Redirect(http.StatusSeeOther, "/admin/login")
}

// AdminPage, ürün listesini ve ekleme formunu gösterir.
func (h *Handler) AdminPage(c *gin.Context) {
	products, err := h.db.GetAllProducts()
	if err != nil {
		log.Printf("Ürünler okunamadı: %v", err)
		products = []models.Product{}
	}

	c.HTML(http.StatusOK, "admin.html", gin.H{
		"title":          "Admin Paneli",
		"products":       products,
		"categories":     models.Categories,
		"categoryLabels": models.CategoryLabels,
		"error":          popFlash(c, flashErrorCookie),
		"success":        popFlash(c, flashSuccessCookie),
	})
}

// parseProductForm, form verisinden Product alanlarını üretir.
// Admin formunda fiyat zorunludur ve negatif olamaz.
func parseProductForm(form *models.ProductForm) (*models.Product, error) {
	price, err := decimal.NewFromString(strings.TrimSpace(form.Price))
	if err != nil || price.IsNegative() {
		return nil, errors.New("fiyat geçersiz")
	}
	if !models.ValidCategory(form.Category) {
		return nil, errors.New("kategori geçersiz")
	}

	return &models.Product{
		Name:     strings.TrimSpace(form.Name),
		Category: form.Category,
		Badge:    strings.TrimSpace(form.Badge),
		Price:    services.RoundMoney(price),
		Details:  form.Details,
		StoreURL: strings.TrimSpace(form.StoreURL),
		IsActive: form.IsActive,
	}, nil
}

// AddProduct, admin panelinden yeni ürün ekler.
func (h *Handler) AddProduct(c *gin.Context) {
	var form models.ProductForm
	if err := c.ShouldBind(&form); err != nil {
		setFlash(c, flashErrorCookie, "Form verileri eksik veya hatalı")
		c.Redirect(http.StatusSeeOther, "/admin")
		return
	}

	product, err := parseProductForm(&form)
	if err != nil {
		setFlash(c, flashErrorCookie, "Form verileri eksik veya hatalı")
		c.Redirect(http.StatusSeeOther, "/admin")
		return
	}

	if file, err := c.FormFile("image"); err == nil && file != nil {
		imagePath, err := saveUpload(c, file, "products")
		if err != nil {
			log.Printf("Ürün görseli kaydedilemedi: %v", err)
			setFlash(c, flashErrorCookie, "Görsel yüklenemedi")
			c.Redirect(http.StatusSeeOther, "/admin")
			return
		}
		product.Image = imagePath
	}

	if err := h.db.CreateProduct(product); err != nil {
		log.Printf("Ürün eklenemedi: %v", err)
		setFlash(c, flashErrorCookie, "Ürün eklenirken hata oluştu")
		c.Redirect(http.StatusSeeOther, "/admin")
		return
	}

	setFlash(c, flashSuccessCookie, "Ürün eklendi")
	c.Redirect(http.StatusSeeOther, "/admin")
}

// UpdateProduct, mevcut bir ürünü günceller. Yeni görsel yüklenmezse eski görsel korunur.
func (h *Handler) UpdateProduct(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		setFlash(c, flashErrorCookie, "Geçersiz ürün ID")
		c.Redirect(http.StatusSeeOther, "/admin")
		return
	}

	existing, err := h.db.GetProductByID(uint(id))
	if err != nil {
		setFlash(c, flashErrorCookie, "Ürün bulunamadı")
		c.Redirect(http.StatusSeeOther, "/admin")
		return
	}

	var form models.ProductForm
	if err := c.ShouldBind(&form); err != nil {
		setFlash(c, flashErrorCookie, "Form verileri eksik veya hatalı")
		c.Redirect(http.StatusSeeOther, "/admin")
		return
	}

	product, err := parseProductForm(&form)
	if err != nil {
		setFlash(c, flashErrorCookie, "Form verileri eksik veya hatalı")
		c.Redirect(http.StatusSeeOther, "/admin")
		return
	}
	product.ID = existing.ID
	product.Image = existing.Image

	if file, err := c.FormFile("image"); err == nil && file != nil {
		imagePath, err := saveUpload(c, file, "products")
		if err != nil {
			log.Printf("Ürün görseli kaydedilemedi: %v", err)
			setFlash(c, flashErrorCookie, "Görsel yüklenemedi")
			c.Redirect(http.StatusSeeOther, "/admin")
			return
		}
		product.Image = imagePath
	}

	if err := h.db.UpdateProduct(product); err != nil {
		log.Printf("Ürün güncellenemedi: %v", err)
		setFlash(c, flashErrorCookie, "Ürün güncellenirken hata oluştu")
		c.Redirect(http.StatusSeeOther, "/admin")
		return
	}

	setFlash(c, flashSuccessCookie, "Ürün güncellendi")
	c.Redirect(http.StatusSeeOther, "/admin")
}

// DeleteProduct, ürünü ve bağlı talepleri siler.
func (h *Handler) DeleteProduct(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		setFlash(c, flashErrorCookie, "Geçersiz ürün ID")
		c.Redirect(http.StatusSeeOther, "/admin")
		return
	}

	if err := h.db.DeleteProduct(uint(id)); err != nil {
		log.Printf("Ürün silinemedi: %v", err)
		setFlash(c, flashErrorCookie, "Ürün silinirken hata oluştu")
		c.Redirect(http.StatusSeeOther, "/admin")
		return
	}

	setFlash(c, flashSuccessCookie, "Ürün silindi")
	c.Redirect(http.StatusSeeOther, "/admin")
}

// AdminSellRequests, tüm geri alım taleplerini listeler.
func (h *Handler) AdminSellRequests(c *gin.Context) {
	requests, err := h.db.GetAllSellRequests()
	if err != nil {
		log.Printf("Talepler okunamadı: %v", err)
		requests = []models.SellRequest{}
	}

	c.HTML(http.StatusOK, "admin_sellrequests.html", gin.H{
		"title":    "Geri Alım Talepleri",
		"requests": requests,
		"error":    popFlash(c, flashErrorCookie),
	})
}

// AdminSellRequestDetail, bildirim mesajlarındaki bağlantının açtığı detay sayfasıdır.
func (h *Handler) AdminSellRequestDetail(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		setFlash(c, flashErrorCookie, "Geçersiz talep ID")
		c.Redirect(http.StatusSeeOther, "/admin/sell-requests")
		return
	}

	sr, err := h.db.GetSellRequestByID(uint(id))
	if err != nil {
		if !errors.Is(err, database.ErrNotFound) {
			log.Printf("Talep okunamadı: %v", err)
		}
		setFlash(c, flashErrorCookie, "Talep bulunamadı")
		c.Redirect(http.StatusSeeOther, "/admin/sell-requests")
		return
	}

	c.HTML(http.StatusOK, "admin_sellrequest_detail.html", gin.H{
		"title":   fmt.Sprintf("Talep #%d", sr.ID),
		"request": sr,
	})
}
