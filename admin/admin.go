package admin

import (
	"crypto/rand"
	"encoding/base64"
	"log"
	"net/http"
	"strconv"
	"time"

	"gikai/email"
	"gikai/models"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type AdminModule struct {
	db     *gorm.DB
	gate   *Gate
	mailer *email.Service
}

func NewAdminModule(db *gorm.DB, gate *Gate, mailer *email.Service) *AdminModule {
	return &AdminModule{db: db, gate: gate, mailer: mailer}
}

func (a *AdminModule) RegisterRoutes(router *gin.Engine) {
	auth := router.Group("/api/auth")
	{
		auth.POST("/register", a.register)
		auth.POST("/login", a.login)
		auth.POST("/logout", a.logout)
		auth.GET("/me", a.me)
		auth.GET("/confirm/:token", a.confirmEmail)
		auth.POST("/bootstrap", a.gate.RequireAuth, a.bootstrapSuperAdmin)
	}

	users := router.Group("/api/admin/users")
	users.Use(a.gate.RequireAuth, a.gate.RequireSuperAdmin)
	{
		users.GET("", a.listUsers)
		users.PUT("/:id/role", a.changeRole)
		users.PUT("/:id", a.updateUser)
		users.DELETE("/:id", a.deleteUser)
	}
}

func generateToken() string {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		log.Printf("Error generating token: %v", err)
		return ""
	}
	return base64.RawURLEncoding.EncodeToString(b)
}

type registerRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
}

func (a *AdminModule) register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "入力内容を確認してください"})
		return
	}

	var existing models.User
	if err := a.db.Where("email = ?", req.Email).First(&existing).Error; err == nil {
		c.JSON(http.StatusConflict, gin.H{"error": "このメールアドレスは既に登録されています"})
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "登録に失敗しました"})
		return
	}

	user := models.User{
		Name:                   req.Name,
		Email:                  req.Email,
		PasswordHash:           string(hash),
		EmailVerificationToken: generateToken(),
	}
	if err := a.db.Create(&user).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "登録に失敗しました"})
		return
	}

	if a.mailer != nil {
		// mail failure must not block registration, the token can be resent
		if err := a.mailer.SendVerification(user.Email, user.Name, user.EmailVerificationToken); err != nil {
			log.Printf("verification mail for user %d not sent: %v", user.ID, err)
		}
	}

	c.JSON(http.StatusCreated, gin.H{"message": "確認メールを送信しました"})
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (a *AdminModule) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "入力内容を確認してください"})
		return
	}

	var user models.User
	if err := a.db.Where("email = ?", req.Email).First(&user).Error; err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "メールアドレスまたはパスワードが正しくありません"})
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "メールアドレスまたはパスワードが正しくありません"})
		return
	}
	if !user.EmailVerified {
		c.JSON(http.StatusForbidden, gin.H{"error": "メールアドレスが確認されていません"})
		return
	}

	session := sessions.Default(c)
	session.Set("user_id", user.ID)
	if err := session.Save(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "ログインに失敗しました"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user": user,
		"role": a.gate.GetRole(user.ID),
	})
}

func (a *AdminModule) logout(c *gin.Context) {
	session := sessions.Default(c)
	session.Clear()
	if err := session.Save(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "ログアウトに失敗しました"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "ログアウトしました"})
}

func (a *AdminModule) me(c *gin.Context) {
	userID, ok := CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusOK, gin.H{"user": nil, "role": models.RoleUser})
		return
	}

	var user models.User
	if err := a.db.First(&user, userID).Error; err != nil {
		c.JSON(http.StatusOK, gin.H{"user": nil, "role": models.RoleUser})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user": user,
		"role": a.gate.GetRole(user.ID),
	})
}

func (a *AdminModule) confirmEmail(c *gin.Context) {
	token := c.Param("token")
	if token == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "無効なトークンです"})
		return
	}

	var user models.User
	if err := a.db.Where("email_verification_token = ?", token).First(&user).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "無効なトークンです"})
		return
	}

	user.EmailVerified = true
	user.EmailVerificationToken = ""
	if err := a.db.Save(&user).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "確認に失敗しました"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "メールアドレスを確認しました"})
}

// bootstrapSuperAdmin promotes the caller to superAdmin, but only while no
// superAdmin exists yet. Used once on a fresh deployment.
func (a *AdminModule) bootstrapSuperAdmin(c *gin.Context) {
	userID := c.GetInt("user_id")

	var count int64
	a.db.Model(&models.AdminUser{}).Where("role = ?", models.RoleSuperAdmin).Count(&count)
	if count > 0 {
		c.JSON(http.StatusForbidden, gin.H{"error": "既に運営者が存在します"})
		return
	}

	adminUser := models.AdminUser{
		UserID:    userID,
		Role:      models.RoleSuperAdmin,
		GrantedBy: userID,
		GrantedAt: time.Now().UnixMilli(),
	}
	if err := a.db.Create(&adminUser).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "権限の付与に失敗しました"})
		return
	}

	log.Printf("user %d bootstrapped as superAdmin", userID)
	c.JSON(http.StatusOK, gin.H{"message": "運営者権限を付与しました", "role": models.RoleSuperAdmin})
}

func (a *AdminModule) listUsers(c *gin.Context) {
	var users []models.User
	if err := a.db.Order("created_at desc").Find(&users).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "ユーザー一覧の取得に失敗しました"})
		return
	}

	var adminRows []models.AdminUser
	a.db.Find(&adminRows)
	roles := make(map[int]string, len(adminRows))
	for _, row := range adminRows {
		roles[row.UserID] = row.Role
	}

	type userWithRole struct {
		models.User
		Role string `json:"role"`
	}
	result := make([]userWithRole, 0, len(users))
	for _, user := range users {
		role, ok := roles[user.ID]
		if !ok {
			role = models.RoleUser
		}
		result = append(result, userWithRole{User: user, Role: role})
	}

	c.JSON(http.StatusOK, result)
}

type changeRoleRequest struct {
	Role string `json:"role" binding:"required"`
}

func (a *AdminModule) changeRole(c *gin.Context) {
	callerID := c.GetInt("user_id")
	targetID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "無効なユーザーIDです"})
		return
	}

	var req changeRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "入力内容を確認してください"})
		return
	}
	if req.Role != models.RoleUser && req.Role != models.RoleAdmin && req.Role != models.RoleSuperAdmin {
		c.JSON(http.StatusBadRequest, gin.H{"error": "無効な権限です"})
		return
	}

	// a superAdmin cannot remove their own superAdmin role, someone else
	// has to do it
	if targetID == callerID && req.Role != models.RoleSuperAdmin {
		c.JSON(http.StatusBadRequest, gin.H{"error": "自分の運営者権限は変更できません"})
		return
	}

	var target models.User
	if err := a.db.First(&target, targetID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "ユーザーが見つかりません"})
		return
	}

	if req.Role == models.RoleUser {
		if err := a.db.Where("user_id = ?", targetID).Delete(&models.AdminUser{}).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "権限の変更に失敗しました"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "権限を変更しました", "role": models.RoleUser})
		return
	}

	var adminUser models.AdminUser
	err = a.db.Where("user_id = ?", targetID).First(&adminUser).Error
	if err != nil {
		adminUser = models.AdminUser{UserID: targetID}
	}
	adminUser.Role = req.Role
	adminUser.GrantedBy = callerID
	adminUser.GrantedAt = time.Now().UnixMilli()

	if err := a.db.Save(&adminUser).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "権限の変更に失敗しました"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "権限を変更しました", "role": req.Role})
}

type updateUserRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

func (a *AdminModule) updateUser(c *gin.Context) {
	targetID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "無効なユーザーIDです"})
		return
	}

	var req updateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "入力内容を確認してください"})
		return
	}

	var user models.User
	if err := a.db.First(&user, targetID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "ユーザーが見つかりません"})
		return
	}

	if req.Name != "" {
		user.Name = req.Name
	}
	if req.Email != "" && req.Email != user.Email {
		var other models.User
		if err := a.db.Where("email = ? AND id <> ?", req.Email, targetID).First(&other).Error; err == nil {
			c.JSON(http.StatusConflict, gin.H{"error": "このメールアドレスは既に使用されています"})
			return
		}
		user.Email = req.Email
	}

	if err := a.db.Save(&user).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "ユーザーの更新に失敗しました"})
		return
	}

	c.JSON(http.StatusOK, user)
}

func (a *AdminModule) deleteUser(c *gin.Context) {
	callerID := c.GetInt("user_id")
	targetID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "無効なユーザーIDです"})
		return
	}
	if targetID == callerID {
		c.JSON(http.StatusBadRequest, gin.H{"error": "自分のアカウントは削除できません"})
		return
	}

	var user models.User
	if err := a.db.First(&user, targetID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "ユーザーが見つかりません"})
		return
	}

	// remove everything hanging off the account before the account itself
	a.db.Where("user_id = ?", targetID).Delete(&models.Like{})
	a.db.Where("user_id = ?", targetID).Delete(&models.UserDemographic{})
	a.db.Where("user_id = ?", targetID).Delete(&models.AdminUser{})
	a.db.Where("author_id = ?", targetID).Delete(&models.News{})

	if err := a.db.Delete(&user).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "ユーザーの削除に失敗しました"})
		return
	}

	log.Printf("user %d deleted by superAdmin %d", targetID, callerID)
	c.JSON(http.StatusOK, gin.H{"message": "ユーザーを削除しました"})
}
