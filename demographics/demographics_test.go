package demographics

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"gikai/admin"
	"gikai/models"

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

	err = db.AutoMigrate(&models.User{}, &models.AdminUser{}, &models.UserDemographic{})
	assert.NoError(t, err)
	return db
}

func setupRouter(db *gorm.DB) *gin.Engine {
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

	module := NewDemographicsModule(db, admin.NewGate(db))
	module.RegisterRoutes(router)
	return router
}

func loginAs(t *testing.T, router *gin.Engine, userID int) []*http.Cookie {
	req := httptest.NewRequest("POST", "/test/login/"+strconv.Itoa(userID), nil)
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

func TestUpsertKeepsOneRecordPerUser(t *testing.T) {
	db := setupTestDB(t)
	router := setupRouter(db)
	cookies := loginAs(t, router, 7)

	w := doJSON(router, "POST", "/api/demographics", gin.H{"age_group": "30代", "gender": "女性", "region": "市内"}, cookies)
	assert.Equal(t, http.StatusOK, w.Code)

	w = doJSON(router, "POST", "/api/demographics", gin.H{"age_group": "40代", "gender": "女性", "region": "市内"}, cookies)
	assert.Equal(t, http.StatusOK, w.Code)

	var records []models.UserDemographic
	assert.NoError(t, db.Find(&records).Error)
	assert.Len(t, records, 1)
	assert.Equal(t, "40代", records[0].AgeGroup)
	assert.NotZero(t, records[0].RegisteredAt)
}

func TestUpsertRequiresAuth(t *testing.T) {
	db := setupTestDB(t)
	router := setupRouter(db)

	w := doJSON(router, "POST", "/api/demographics", gin.H{"age_group": "30代"}, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	var count int64
	db.Model(&models.UserDemographic{}).Count(&count)
	assert.Zero(t, count)
}

func TestStatsAggregates(t *testing.T) {
	db := setupTestDB(t)
	router := setupRouter(db)

	db.Create(&models.UserDemographic{UserID: 1, AgeGroup: "30代", Gender: "女性", Region: "市内"})
	db.Create(&models.UserDemographic{UserID: 2, AgeGroup: "30代", Gender: "男性", Region: "市外"})
	db.Create(&models.UserDemographic{UserID: 3, AgeGroup: "50代", Gender: "女性", Region: "市内"})

	adminUser := models.User{Name: "管理者", Email: "admin@example.com", PasswordHash: "x", EmailVerified: true}
	assert.NoError(t, db.Create(&adminUser).Error)
	assert.NoError(t, db.Create(&models.AdminUser{UserID: adminUser.ID, Role: models.RoleAdmin}).Error)
	cookies := loginAs(t, router, adminUser.ID)

	w := doJSON(router, "GET", "/api/admin/demographics/stats", nil, cookies)
	assert.Equal(t, http.StatusOK, w.Code)

	var stats struct {
		Total     int              `json:"total"`
		AgeGroups map[string]int64 `json:"age_groups"`
		Genders   map[string]int64 `json:"genders"`
		Regions   map[string]int64 `json:"regions"`
	}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &stats))
	assert.Equal(t, 3, stats.Total)
	assert.Equal(t, int64(2), stats.AgeGroups["30代"])
	assert.Equal(t, int64(2), stats.Genders["女性"])
	assert.Equal(t, int64(2), stats.Regions["市内"])
}
