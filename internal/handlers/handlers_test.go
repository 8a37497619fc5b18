package handlers

import (
	"bytes"
	"html/template"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"cihazal/internal/config"
	"cihazal/internal/database"
	"cihazal/internal/models"
	"cihazal/internal/services"
)

// fakeDB, DBInterface'in testler için bellek içi sahtesi.
type fakeDB struct {
	products    map[uint]*models.Product
	created     []*models.SellRequest
	queryResult []models.Product
	queryTotal  int64
	lastFilter  models.ProductFilter
}

func newFakeDB() *fakeDB {
	return &fakeDB{products: map[uint]*models.Product{}}
}

func (f *fakeDB) GetAllProducts() ([]models.Product, error) {
	var out []models.Product
	for _, p := range f.products {
		out = append(out, *p)
	}
	return out, nil
}

func (f *fakeDB) QueryProducts(filter models.ProductFilter) ([]models.Product, int64, error) {
	f.lastFilter = filter
	return f.queryResult, f.queryTotal, nil
}

func (f *fakeDB) GetProductByID(id uint) (*models.Product, error) {
	p, ok := f.products[id]
	if !ok {
		return nil, database.ErrNotFound
	}
	return p, nil
}

func (f *fakeDB) CreateProduct(p *models.Product) error {
	p.ID = uint(len(f.products) + 1)
	f.products[p.ID] = p
	return nil
}

func (f *fakeDB) UpdateProduct(p *models.Product) error {
	if _, ok := f.products[p.ID]; !ok {
		return database.ErrNotFound
	}
	f.products[p.ID] = p
	return nil
}

func (f *fakeDB) DeleteProduct(id uint) error {
	delete(f.products, id)
	return nil
}

func (f *fakeDB) CreateSellRequest(sr *models.SellRequest) error {
	sr.ID = uint(len(f.created) + 1)
	f.created = append(f.created, sr)
	return nil
}

func (f *fakeDB) GetAllSellRequests() ([]models.SellRequest, error) {
	var out []models.SellRequest
	for _, sr := range f.created {
		out = append(out, *sr)
	}
	return out, nil
}

func (f *fakeDB) GetSellRequestByID(id uint) (*models.SellRequest, error) {
	for _, sr := range f.created {
		if sr.ID == id {
			return sr, nil
		}
	}
	return nil, database.ErrNotFound
}

// newTestHandler, bildirim kanalları devre dışı bir Handler kurar.
func newTestHandler(db *fakeDB) *Handler {
	cfg := &config.Config{
		BaseURL:       "http://test.local",
		AdminUsername: "admin",
	}
	return &Handler{
		db:       db,
		cfg:      cfg,
		telegram: services.NewTelegramService("", "", "", false),
		email:    services.NewEmailService("", 0, "", "", ""),
	}
}

func testTemplates() map[string]*template.Template {
	parse := func(name, body string) *template.Template {
		return template.Must(template.New(name).Parse(body))
	}
	return map[string]*template.Template{
		"landing.html":     parse("landing.html", `ürün sayısı: {{len .products}}`),
		"admin_login.html": parse("admin_login.html", `giriş {{.error}}`),
		"admin.html":       parse("admin.html", `admin {{len .products}}`),
	}
}

func newRouter(h *Handler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.HTMLRender = &HTMLRenderer{Templates: testTemplates()}

	r.GET("/", h.LandingPage)
	r.POST("/sell-requests", h.CreateSellRequest)
	r.GET("/admin/login", h.AdminLoginPage)
	r.POST("/admin/login", h.AdminLogin)
	admin := r.Group("/admin")
	admin.Use(h.AuthMiddleware())
	admin.GET("", h.AdminPage)
	return r
}

// chTempDir, testi geçici bir çalışma dizinine taşır (dosya yüklemeleri için).
func chTempDir(t *testing.T) {
	t.Helper()
	old, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(old) })
}

func postForm(r *gin.Engine, path string, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func hasCookie(w *httptest.ResponseRecorder, name string) bool {
	for _, c := range w.Result().Cookies() {
		if c.Name == name && c.Value != "" {
			return true
		}
	}
	return false
}

func validSellForm() url.Values {
	return url.Values{
		"product":         {"1"},
		"customer_name":   {"Ahmet Yılmaz"},
		"phone":           {"+905551234567"},
		"account_number":  {"TR330006100519786457841326"},
		"bank_name":       {"Ziraat"},
		"transaction_ref": {"TXN-123"},
		"purchase_price":  {"100.00"},
	}
}

func TestCreateSellRequest_Success(t *testing.T) {
	db := newFakeDB()
	db.products[1] = &models.Product{ID: 1, Name: "Konsol", Price: decimal.RequireFromString("100.00"), IsActive: true}
	r := newRouter(newTestHandler(db))

	w := postForm(r, "/sell-requests", validSellForm())

	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/", w.Header().Get("Location"))
	assert.True(t, hasCookie(w, "flash_success"))
	require.Len(t, db.created, 1)

	sr := db.created[0]
	assert.Equal(t, uint(1), sr.ProductID)
	assert.Equal(t, "Ahmet Yılmaz", sr.CustomerName)
	assert.Equal(t, "100.00", sr.PurchasePrice.StringFixed(2))
	assert.Equal(t, "70.00", sr.PayoutAmount.StringFixed(2))
}

func TestCreateSellRequest_MissingRefAndProofRejected(t *testing.T) {
	db := newFakeDB()
	db.products[1] = &models.Product{ID: 1, Name: "Konsol", Price: decimal.RequireFromString("100.00")}
	r := newRouter(newTestHandler(db))

	form := validSellForm()
	form.Set("transaction_ref", "  ")
	w := postForm(r, "/sell-requests", form)

	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/", w.Header().Get("Location"))
	assert.True(t, hasCookie(w, "flash_error"))
	assert.Empty(t, db.created)
}

func TestCreateSellRequest_InvalidPhoneRejected(t *testing.T) {
	db := newFakeDB()
	db.products[1] = &models.Product{ID: 1, Name: "Konsol", Price: decimal.RequireFromString("100.00")}
	r := newRouter(newTestHandler(db))

	for _, phone := range []string{"12345", "abc12345678"} {
		form := validSellForm()
		form.Set("phone", phone)
		w := postForm(r, "/sell-requests", form)

		assert.Equal(t, http.StatusSeeOther, w.Code, "telefon: %q", phone)
		assert.True(t, hasCookie(w, "flash_error"), "telefon: %q", phone)
	}
	assert.Empty(t, db.created)
}

func TestCreateSellRequest_UnknownProductRejected(t *testing.T) {
	db := newFakeDB()
	r := newRouter(newTestHandler(db))

	w := postForm(r, "/sell-requests", validSellForm())

	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.True(t, hasCookie(w, "flash_error"))
	assert.Empty(t, db.created)
}

func TestCreateSellRequest_UnparsablePriceFallsBack(t *testing.T) {
	db := newFakeDB()
	db.products[1] = &models.Product{ID: 1, Name: "Konsol", Price: decimal.RequireFromString("249.90")}
	r := newRouter(newTestHandler(db))

	form := validSellForm()
	form.Set("purchase_price", "fiyat-degil")
	w := postForm(r, "/sell-requests", form)

	assert.Equal(t, http.StatusSeeOther, w.Code)
	require.Len(t, db.created, 1)
	assert.Equal(t, "249.90", db.created[0].PurchasePrice.StringFixed(2))
	assert.Equal(t, "174.93", db.created[0].PayoutAmount.StringFixed(2))
}

func TestCreateSellRequest_ProofImageWithoutRef(t *testing.T) {
	chTempDir(t)
	require.NoError(t, os.MkdirAll("static/uploads/proofs", 0755))

	db := newFakeDB()
	db.products[1] = &models.Product{ID: 1, Name: "Konsol", Price: decimal.RequireFromString("100.00")}
	r := newRouter(newTestHandler(db))

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	form := validSellForm()
	form.Del("transaction_ref")
	for key, vals := range form {
		_ = mw.WriteField(key, vals[0])
	}
	part, err := mw.CreateFormFile("proof_image", "fis.jpg")
	require.NoError(t, err)
	_, err = io.WriteString(part, "gorsel-verisi")
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/sell-requests", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.True(t, hasCookie(w, "flash_success"))
	require.Len(t, db.created, 1)

	sr := db.created[0]
	assert.True(t, strings.HasPrefix(sr.ProofImage, "/static/uploads/proofs/"))
	saved := strings.TrimPrefix(sr.ProofImage, "/")
	content, err := os.ReadFile(saved)
	require.NoError(t, err)
	assert.Equal(t, "gorsel-verisi", string(content))
}

func TestCreateSellRequest_NotifierFailureDoesNotBlock(t *testing.T) {
	// Kapatılmış sunucu: her gönderim transport hatası üretir
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	db := newFakeDB()
	db.products[1] = &models.Product{ID: 1, Name: "Konsol", Price: decimal.RequireFromString("100.00")}
	h := newTestHandler(db)
	h.telegram = services.NewTelegramService("token", "42", srv.URL, false)
	r := newRouter(h)

	w := postForm(r, "/sell-requests", validSellForm())

	// Bildirim hatasına rağmen kayıt ve başarı yönlendirmesi tamamlanır
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/", w.Header().Get("Location"))
	assert.True(t, hasCookie(w, "flash_success"))
	require.Len(t, db.created, 1)
}

func TestLandingPage_Filters(t *testing.T) {
	db := newFakeDB()
	db.queryResult = []models.Product{{Name: "A"}, {Name: "B"}}
	db.queryTotal = 20 // 2 sayfa; page=2 aralık içinde
	r := newRouter(newTestHandler(db))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/?q=konsol&category=games&max_price=150.00&sort=price_asc&page=2", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "ürün sayısı: 2")

	f := db.lastFilter
	assert.Equal(t, "konsol", f.Query)
	assert.Equal(t, "games", f.Category)
	assert.Equal(t, "price_asc", f.Sort)
	assert.Equal(t, 2, f.Page)
	assert.Equal(t, 12, f.PageSize)
	require.NotNil(t, f.MaxPrice)
	assert.True(t, f.MaxPrice.Equal(decimal.RequireFromString("150.00")))
}

func TestLandingPage_OutOfRangePageShowsLastPage(t *testing.T) {
	db := newFakeDB()
	db.queryResult = []models.Product{{Name: "A"}, {Name: "B"}, {Name: "C"}}
	db.queryTotal = 3 // tek sayfa
	r := newRouter(newTestHandler(db))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/?page=5", nil)
	r.ServeHTTP(w, req)

	// Aralık dışı sayfa istekleri son sayfaya çekilir ve kayıtları gösterilir
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, db.lastFilter.Page)
	assert.Contains(t, w.Body.String(), "ürün sayısı: 3")
}

func TestLandingPage_UnparsableMaxPriceIgnored(t *testing.T) {
	db := newFakeDB()
	r := newRouter(newTestHandler(db))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/?max_price=yok-boyle-fiyat", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Nil(t, db.lastFilter.MaxPrice)
}

func TestAuthMiddleware(t *testing.T) {
	db := newFakeDB()
	r := newRouter(newTestHandler(db))

	t.Run("oturumsuz istek girişe yönlenir", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/admin", nil)
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusSeeOther, w.Code)
		assert.Equal(t, "/admin/login", w.Header().Get("Location"))
	})

	t.Run("oturumlu istek geçer", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/admin", nil)
		req.AddCookie(&http.Cookie{Name: "admin_session", Value: "abc"})
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
	})
}

func TestAdminLogin(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("gizli123"), bcrypt.DefaultCost)
	require.NoError(t, err)

	db := newFakeDB()
	h := newTestHandler(db)
	h.cfg.AdminPasswordHash = string(hash)
	r := newRouter(h)

	t.Run("doğru şifre oturum açar", func(t *testing.T) {
		w := postForm(r, "/admin/login", url.Values{
			"username": {"admin"},
			"password": {"gizli123"},
		})
		assert.Equal(t, http.StatusSeeOther, w.Code)
		assert.Equal(t, "/admin", w.Header().Get("Location"))
		assert.True(t, hasCookie(w, "admin_session"))
	})

	t.Run("yanlış şifre reddedilir", func(t *testing.T) {
		w := postForm(r, "/admin/login", url.Values{
			"username": {"admin"},
			"password": {"yanlis"},
		})
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.False(t, hasCookie(w, "admin_session"))
	})

	t.Run("hash yapılandırılmamışsa giriş kapalıdır", func(t *testing.T) {
		h2 := newTestHandler(db)
		r2 := newRouter(h2)
		w := postForm(r2, "/admin/login", url.Values{
			"username": {"admin"},
			"password": {"gizli123"},
		})
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}
