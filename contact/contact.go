package contact

import (
	"net/http"
	"strconv"

	"gikai/admin"
	"gikai/models"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type ContactModule struct {
	db   *gorm.DB
	gate *admin.Gate
}

func NewContactModule(db *gorm.DB, gate *admin.Gate) *ContactModule {
	return &ContactModule{db: db, gate: gate}
}

func (m *ContactModule) RegisterRoutes(router *gin.Engine) {
	router.POST("/api/contact", m.submit)

	grp := router.Group("/api/admin/contact")
	grp.Use(m.gate.RequireAuth, m.gate.RequireAdmin)
	{
		grp.GET("", m.list)
		grp.PUT("/:id/read", m.markRead)
		grp.DELETE("/:id", m.remove)
	}
}

type contactRequest struct {
	Name    string `json:"name" binding:"required"`
	Email   string `json:"email" binding:"required,email"`
	Subject string `json:"subject"`
	Message string `json:"message" binding:"required"`
}

func (m *ContactModule) submit(c *gin.Context) {
	var req contactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "入力内容を確認してください"})
		return
	}

	msg := models.ContactMessage{
		Name:    req.Name,
		Email:   req.Email,
		Subject: req.Subject,
		Message: req.Message,
	}
	if err := m.db.Create(&msg).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "送信に失敗しました"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "お問い合わせを受け付けました"})
}

func (m *ContactModule) list(c *gin.Context) {
	query := m.db.Order("created_at desc")
	if c.Query("unread") == "true" {
		query = query.Where("is_read = ?", false)
	}

	var messages []models.ContactMessage
	if err := query.Find(&messages).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "お問い合わせの取得に失敗しました"})
		return
	}
	c.JSON(http.StatusOK, messages)
}

func (m *ContactModule) markRead(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "無効なIDです"})
		return
	}

	var msg models.ContactMessage
	if err := m.db.First(&msg, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "お問い合わせが見つかりません"})
		return
	}

	msg.IsRead = true
	if err := m.db.Save(&msg).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "更新に失敗しました"})
		return
	}
	c.JSON(http.StatusOK, msg)
}

func (m *ContactModule) remove(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "無効なIDです"})
		return
	}

	var msg models.ContactMessage
	if err := m.db.First(&msg, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "お問い合わせが見つかりません"})
		return
	}
	if err := m.db.Delete(&msg).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "削除に失敗しました"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "お問い合わせを削除しました"})
}
