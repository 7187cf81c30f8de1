package admin

import (
	"errors"
	"net/http"

	"gikai/models"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

var (
	ErrNotAuthenticated = errors.New("認証が必要です")
	ErrNotAdmin         = errors.New("管理者権限が必要です")
	ErrNotSuperAdmin    = errors.New("運営者権限が必要です")
)

// Gate resolves user roles. Every module that exposes privileged routes
// holds one and checks through it instead of reading admin rows itself.
type Gate struct {
	db *gorm.DB
}

func NewGate(db *gorm.DB) *Gate {
	return &Gate{db: db}
}

// GetRole returns the role for a user. Users without an AdminUser row are
// plain users.
func (g *Gate) GetRole(userID int) string {
	var adminUser models.AdminUser
	err := g.db.Where("user_id = ?", userID).First(&adminUser).Error
	if err != nil {
		return models.RoleUser
	}
	return adminUser.Role
}

func (g *Gate) IsAdmin(userID int) bool {
	role := g.GetRole(userID)
	return role == models.RoleAdmin || role == models.RoleSuperAdmin
}

func (g *Gate) IsSuperAdmin(userID int) bool {
	return g.GetRole(userID) == models.RoleSuperAdmin
}

// AdminRecord returns the admin row for a user, or ErrNotAdmin.
func (g *Gate) AdminRecord(userID int) (*models.AdminUser, error) {
	if userID == 0 {
		return nil, ErrNotAuthenticated
	}
	var adminUser models.AdminUser
	err := g.db.Where("user_id = ?", userID).First(&adminUser).Error
	if err != nil {
		return nil, ErrNotAdmin
	}
	if adminUser.Role != models.RoleAdmin && adminUser.Role != models.RoleSuperAdmin {
		return nil, ErrNotAdmin
	}
	return &adminUser, nil
}

// SuperAdminRecord returns the admin row for a user, or ErrNotSuperAdmin.
func (g *Gate) SuperAdminRecord(userID int) (*models.AdminUser, error) {
	adminUser, err := g.AdminRecord(userID)
	if err != nil {
		return nil, err
	}
	if adminUser.Role != models.RoleSuperAdmin {
		return nil, ErrNotSuperAdmin
	}
	return adminUser, nil
}

// CurrentUserID reads the logged-in user from the session without failing
// the request. Public queries use it to personalize results.
func CurrentUserID(c *gin.Context) (int, bool) {
	session := sessions.Default(c)
	raw := session.Get("user_id")
	if raw == nil {
		return 0, false
	}
	id, ok := raw.(int)
	if !ok || id == 0 {
		return 0, false
	}
	return id, true
}

// RequireAuth aborts with 401 unless a user is logged in. Stores the id in
// the context under "user_id" for downstream handlers.
func (g *Gate) RequireAuth(c *gin.Context) {
	id, ok := CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": ErrNotAuthenticated.Error()})
		c.Abort()
		return
	}
	c.Set("user_id", id)
	c.Next()
}

// RequireAdmin must run after RequireAuth.
func (g *Gate) RequireAdmin(c *gin.Context) {
	if !g.IsAdmin(c.GetInt("user_id")) {
		c.JSON(http.StatusForbidden, gin.H{"error": ErrNotAdmin.Error()})
		c.Abort()
		return
	}
	c.Next()
}

// RequireSuperAdmin must run after RequireAuth.
func (g *Gate) RequireSuperAdmin(c *gin.Context) {
	if !g.IsSuperAdmin(c.GetInt("user_id")) {
		c.JSON(http.StatusForbidden, gin.H{"error": ErrNotSuperAdmin.Error()})
		c.Abort()
		return
	}
	c.Next()
}
