package slideshow

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"gikai/admin"
	"gikai/models"
	"gikai/storage"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	assert.NoError(t, err)

	err = db.AutoMigrate(&models.User{}, &models.AdminUser{}, &models.SlideshowSlide{}, &models.StoredFile{})
	assert.NoError(t, err)
	return db
}

func setupRouter(t *testing.T, db *gorm.DB) (*gin.Engine, *storage.StorageModule) {
	t.Setenv("UPLOAD_DIR", t.TempDir())

	gin.SetMode(gin.TestMode)
	router := gin.New()
	store := cookie.NewStore([]byte("test-secret"))
	router.Use(sessions.Sessions("gikai-session", store))

	router.POST("/test/login/:id", func(c *gin.Context) {
		id, _ := strconv.Atoi(c.Param("id"))
		session := sessions.Default(c)
		session.Set("user_id", id)
		session.Save()
		c.Status(http.StatusOK)
	})

	gate := admin.NewGate(db)
	blobStore := storage.NewStorageModule(db, gate)
	module := NewSlideshowModule(db, gate, blobStore)
	module.RegisterRoutes(router)
	return router, blobStore
}

func loginAsAdmin(t *testing.T, db *gorm.DB, router *gin.Engine) []*http.Cookie {
	user := models.User{Name: "管理者", Email: "admin@example.com", PasswordHash: "x", EmailVerified: true}
	assert.NoError(t, db.Create(&user).Error)
	assert.NoError(t, db.Create(&models.AdminUser{UserID: user.ID, Role: models.RoleAdmin}).Error)

	req := httptest.NewRequest("POST", "/test/login/"+strconv.Itoa(user.ID), nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	return w.Result().Cookies()
}

func doJSON(router *gin.Engine, method, path string, body interface{}, cookies []*http.Cookie) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for _, c := range cookies {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestPublicListShowsActiveSlidesInOrder(t *testing.T) {
	db := setupTestDB(t)
	router, _ := setupRouter(t, db)

	db.Create(&models.SlideshowSlide{Title: "二枚目", SortOrder: 2, IsActive: true})
	db.Create(&models.SlideshowSlide{Title: "一枚目", SortOrder: 1, IsActive: true})
	db.Create(&models.SlideshowSlide{Title: "非表示", SortOrder: 0, IsActive: false})

	w := doJSON(router, "GET", "/api/slideshow", nil, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	var slides []models.SlideshowSlide
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &slides))
	assert.Len(t, slides, 2)
	assert.Equal(t, "一枚目", slides[0].Title)
	assert.Equal(t, "二枚目", slides[1].Title)
}

func TestCreateResolvesImageReference(t *testing.T) {
	db := setupTestDB(t)
	router, _ := setupRouter(t, db)
	cookies := loginAsAdmin(t, db, router)

	body := gin.H{"title": "新スライド", "image_url": "/api/storage/deadbeef00112233"}
	w := doJSON(router, "POST", "/api/admin/slideshow", body, cookies)
	assert.Equal(t, http.StatusCreated, w.Code)

	var slide models.SlideshowSlide
	assert.NoError(t, db.First(&slide).Error)
	assert.Equal(t, "deadbeef00112233", slide.ImageID)
	assert.NotZero(t, slide.CreatedBy)
	assert.True(t, slide.IsActive)
}

func TestDeleteRemovesImageBlob(t *testing.T) {
	db := setupTestDB(t)
	router, blobStore := setupRouter(t, db)
	cookies := loginAsAdmin(t, db, router)

	blobPath := filepath.Join(blobStore.UploadDir(), "img001.png")
	assert.NoError(t, os.WriteFile(blobPath, []byte("png"), 0o644))
	assert.NoError(t, db.Create(&models.StoredFile{ID: "img001", Filename: "s.png", ContentType: "image/png", Path: "img001.png"}).Error)

	slide := models.SlideshowSlide{Title: "画像つき", ImageID: "img001", IsActive: true}
	assert.NoError(t, db.Create(&slide).Error)

	w := doJSON(router, "DELETE", "/api/admin/slideshow/"+strconv.Itoa(slide.ID), nil, cookies)
	assert.Equal(t, http.StatusOK, w.Code)

	_, err := os.Stat(blobPath)
	assert.True(t, os.IsNotExist(err))
}
