package admin

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"gikai/models"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	assert.NoError(t, err)

	err = db.AutoMigrate(
		&models.User{},
		&models.AdminUser{},
		&models.News{},
		&models.Like{},
		&models.UserDemographic{},
	)
	assert.NoError(t, err)
	return db
}

func setupRouter(db *gorm.DB) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	store := cookie.NewStore([]byte("test-secret"))
	router.Use(sessions.Sessions("gikai-session", store))

	module := NewAdminModule(db, NewGate(db), nil)
	module.RegisterRoutes(router)
	return router
}

func createTestUser(t *testing.T, db *gorm.DB, name, email string) models.User {
	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	assert.NoError(t, err)

	user := models.User{
		Name:          name,
		Email:         email,
		PasswordHash:  string(hash),
		EmailVerified: true,
	}
	assert.NoError(t, db.Create(&user).Error)
	return user
}

func grantRole(t *testing.T, db *gorm.DB, userID int, role string) {
	row := models.AdminUser{UserID: userID, Role: role, GrantedBy: userID}
	assert.NoError(t, db.Create(&row).Error)
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

func loginAs(t *testing.T, router *gin.Engine, email string) []*http.Cookie {
	w := doJSON(router, "POST", "/api/auth/login", gin.H{"email": email, "password": "password123"}, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	return w.Result().Cookies()
}

func TestGateDefaultsToUserRole(t *testing.T) {
	db := setupTestDB(t)
	gate := NewGate(db)

	user := createTestUser(t, db, "一般", "user@example.com")
	assert.Equal(t, models.RoleUser, gate.GetRole(user.ID))
	assert.False(t, gate.IsAdmin(user.ID))
	assert.False(t, gate.IsSuperAdmin(user.ID))

	grantRole(t, db, user.ID, models.RoleAdmin)
	assert.True(t, gate.IsAdmin(user.ID))
	assert.False(t, gate.IsSuperAdmin(user.ID))
}

func TestGateSuperAdminIsAlsoAdmin(t *testing.T) {
	db := setupTestDB(t)
	gate := NewGate(db)

	user := createTestUser(t, db, "運営", "super@example.com")
	grantRole(t, db, user.ID, models.RoleSuperAdmin)

	assert.True(t, gate.IsAdmin(user.ID))
	assert.True(t, gate.IsSuperAdmin(user.ID))
}

func TestRegisterRejectsDuplicateEmail(t *testing.T) {
	db := setupTestDB(t)
	router := setupRouter(db)

	body := gin.H{"name": "新規", "email": "new@example.com", "password": "password123"}
	w := doJSON(router, "POST", "/api/auth/register", body, nil)
	assert.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(router, "POST", "/api/auth/register", body, nil)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestLoginRequiresVerifiedEmail(t *testing.T) {
	db := setupTestDB(t)
	router := setupRouter(db)

	hash, _ := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	user := models.User{
		Name:                   "未確認",
		Email:                  "pending@example.com",
		PasswordHash:           string(hash),
		EmailVerificationToken: "tok123",
	}
	assert.NoError(t, db.Create(&user).Error)

	w := doJSON(router, "POST", "/api/auth/login", gin.H{"email": user.Email, "password": "password123"}, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = doJSON(router, "GET", "/api/auth/confirm/tok123", nil, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = doJSON(router, "POST", "/api/auth/login", gin.H{"email": user.Email, "password": "password123"}, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestBootstrapOnlyWorksOnce(t *testing.T) {
	db := setupTestDB(t)
	router := setupRouter(db)

	first := createTestUser(t, db, "一人目", "first@example.com")
	second := createTestUser(t, db, "二人目", "second@example.com")

	cookies := loginAs(t, router, first.Email)
	w := doJSON(router, "POST", "/api/auth/bootstrap", nil, cookies)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, models.RoleSuperAdmin, NewGate(db).GetRole(first.ID))

	cookies = loginAs(t, router, second.Email)
	w = doJSON(router, "POST", "/api/auth/bootstrap", nil, cookies)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, models.RoleUser, NewGate(db).GetRole(second.ID))
}

func TestChangeRolePromotesAndDemotes(t *testing.T) {
	db := setupTestDB(t)
	router := setupRouter(db)

	super := createTestUser(t, db, "運営", "super@example.com")
	grantRole(t, db, super.ID, models.RoleSuperAdmin)
	target := createTestUser(t, db, "対象", "target@example.com")

	cookies := loginAs(t, router, super.Email)
	gate := NewGate(db)

	w := doJSON(router, "PUT", "/api/admin/users/"+strconv.Itoa(target.ID)+"/role", gin.H{"role": "admin"}, cookies)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, models.RoleAdmin, gate.GetRole(target.ID))

	w = doJSON(router, "PUT", "/api/admin/users/"+strconv.Itoa(target.ID)+"/role", gin.H{"role": "user"}, cookies)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, models.RoleUser, gate.GetRole(target.ID))
}

func TestChangeRoleProtectsOwnSuperAdminRole(t *testing.T) {
	db := setupTestDB(t)
	router := setupRouter(db)

	super := createTestUser(t, db, "運営", "super@example.com")
	grantRole(t, db, super.ID, models.RoleSuperAdmin)

	cookies := loginAs(t, router, super.Email)
	w := doJSON(router, "PUT", "/api/admin/users/"+strconv.Itoa(super.ID)+"/role", gin.H{"role": "admin"}, cookies)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, models.RoleSuperAdmin, NewGate(db).GetRole(super.ID))
}

func TestUserManagementRequiresSuperAdmin(t *testing.T) {
	db := setupTestDB(t)
	router := setupRouter(db)

	adminUser := createTestUser(t, db, "管理者", "admin@example.com")
	grantRole(t, db, adminUser.ID, models.RoleAdmin)

	cookies := loginAs(t, router, adminUser.Email)
	w := doJSON(router, "GET", "/api/admin/users", nil, cookies)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = doJSON(router, "GET", "/api/admin/users", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestDeleteUserCascades(t *testing.T) {
	db := setupTestDB(t)
	router := setupRouter(db)

	super := createTestUser(t, db, "運営", "super@example.com")
	grantRole(t, db, super.ID, models.RoleSuperAdmin)
	target := createTestUser(t, db, "退会者", "leaver@example.com")
	grantRole(t, db, target.ID, models.RoleAdmin)

	assert.NoError(t, db.Create(&models.Like{UserID: target.ID, QuestionID: 1}).Error)
	assert.NoError(t, db.Create(&models.UserDemographic{UserID: target.ID, AgeGroup: "30代"}).Error)
	assert.NoError(t, db.Create(&models.News{Title: "退会者の記事", AuthorID: target.ID}).Error)

	cookies := loginAs(t, router, super.Email)
	w := doJSON(router, "DELETE", "/api/admin/users/"+strconv.Itoa(target.ID), nil, cookies)
	assert.Equal(t, http.StatusOK, w.Code)

	var count int64
	db.Model(&models.User{}).Where("id = ?", target.ID).Count(&count)
	assert.Zero(t, count)
	db.Model(&models.AdminUser{}).Where("user_id = ?", target.ID).Count(&count)
	assert.Zero(t, count)
	db.Model(&models.Like{}).Where("user_id = ?", target.ID).Count(&count)
	assert.Zero(t, count)
	db.Model(&models.UserDemographic{}).Where("user_id = ?", target.ID).Count(&count)
	assert.Zero(t, count)
	db.Model(&models.News{}).Where("author_id = ?", target.ID).Count(&count)
	assert.Zero(t, count)
}

func TestDeleteOwnAccountForbidden(t *testing.T) {
	db := setupTestDB(t)
	router := setupRouter(db)

	super := createTestUser(t, db, "運営", "super@example.com")
	grantRole(t, db, super.ID, models.RoleSuperAdmin)

	cookies := loginAs(t, router, super.Email)
	w := doJSON(router, "DELETE", "/api/admin/users/"+strconv.Itoa(super.ID), nil, cookies)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	var count int64
	db.Model(&models.User{}).Where("id = ?", super.ID).Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestMeReportsAnonymousAsPlainUser(t *testing.T) {
	db := setupTestDB(t)
	router := setupRouter(db)

	w := doJSON(router, "GET", "/api/auth/me", nil, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	var body map[string]interface{}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Nil(t, body["user"])
	assert.Equal(t, models.RoleUser, body["role"])
}
