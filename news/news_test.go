package news

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

	err = db.AutoMigrate(&models.User{}, &models.AdminUser{}, &models.News{}, &models.StoredFile{})
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
	module := NewNewsModule(db, gate, blobStore)
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

func TestPublicListOnlyShowsPublished(t *testing.T) {
	db := setupTestDB(t)
	router, _ := setupRouter(t, db)

	db.Create(&models.News{Title: "公開記事", IsPublished: true, AuthorID: 1, PublishDate: 100})
	db.Create(&models.News{Title: "下書き", IsPublished: false, AuthorID: 1, PublishDate: 200})

	w := doJSON(router, "GET", "/api/news", nil, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	var list []models.News
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	assert.Len(t, list, 1)
	assert.Equal(t, "公開記事", list[0].Title)
}

func TestUnpublishedDetailHiddenFromPublic(t *testing.T) {
	db := setupTestDB(t)
	router, _ := setupRouter(t, db)

	draft := models.News{Title: "下書き", IsPublished: false, AuthorID: 1}
	assert.NoError(t, db.Create(&draft).Error)

	w := doJSON(router, "GET", "/api/news/"+strconv.Itoa(draft.ID), nil, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	cookies := loginAsAdmin(t, db, router)
	w = doJSON(router, "GET", "/api/news/"+strconv.Itoa(draft.ID), nil, cookies)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestDetailRendersMarkdown(t *testing.T) {
	db := setupTestDB(t)
	router, _ := setupRouter(t, db)

	item := models.News{Title: "議会だより", Content: "# 見出し\n\n本文です。", IsPublished: true, AuthorID: 1}
	assert.NoError(t, db.Create(&item).Error)

	w := doJSON(router, "GET", "/api/news/"+strconv.Itoa(item.ID), nil, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	var body map[string]interface{}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Contains(t, body["content_html"], "<h1")
	assert.Contains(t, body["content_html"], "見出し")
}

func TestCreateStampsAuthor(t *testing.T) {
	db := setupTestDB(t)
	router, _ := setupRouter(t, db)
	cookies := loginAsAdmin(t, db, router)

	w := doJSON(router, "POST", "/api/admin/news", gin.H{"title": "新着情報", "is_published": true}, cookies)
	assert.Equal(t, http.StatusCreated, w.Code)

	var item models.News
	assert.NoError(t, db.First(&item).Error)
	assert.NotZero(t, item.AuthorID)
	assert.NotZero(t, item.PublishDate)
}

func TestDeleteRemovesThumbnailBlob(t *testing.T) {
	db := setupTestDB(t)
	router, blobStore := setupRouter(t, db)
	cookies := loginAsAdmin(t, db, router)

	blobPath := filepath.Join(blobStore.UploadDir(), "abc123.png")
	assert.NoError(t, os.WriteFile(blobPath, []byte("png bytes"), 0o644))
	assert.NoError(t, db.Create(&models.StoredFile{ID: "abc123", Filename: "t.png", ContentType: "image/png", Path: "abc123.png"}).Error)

	item := models.News{Title: "画像つき記事", IsPublished: true, AuthorID: 1, ThumbnailID: "abc123"}
	assert.NoError(t, db.Create(&item).Error)

	w := doJSON(router, "DELETE", "/api/admin/news/"+strconv.Itoa(item.ID), nil, cookies)
	assert.Equal(t, http.StatusOK, w.Code)

	_, err := os.Stat(blobPath)
	assert.True(t, os.IsNotExist(err))
	var count int64
	db.Model(&models.StoredFile{}).Count(&count)
	assert.Zero(t, count)
}
