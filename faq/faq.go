package faq

import (
	"net/http"
	"strconv"

	"gikai/admin"
	"gikai/models"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type FAQModule struct {
	db   *gorm.DB
	gate *admin.Gate
}

func NewFAQModule(db *gorm.DB, gate *admin.Gate) *FAQModule {
	return &FAQModule{db: db, gate: gate}
}

func (m *FAQModule) RegisterRoutes(router *gin.Engine) {
	router.GET("/api/faq", m.listPublished)

	grp := router.Group("/api/admin/faq")
	grp.Use(m.gate.RequireAuth, m.gate.RequireAdmin)
	{
		grp.GET("", m.listAll)
		grp.POST("", m.create)
		grp.PUT("/:id", m.update)
		grp.DELETE("/:id", m.remove)
	}
}

// listPublished groups visible items per category, in sort order.
func (m *FAQModule) listPublished(c *gin.Context) {
	var items []models.FAQItem
	err := m.db.Where("is_published = ?", true).Order("category asc, sort_order asc").Find(&items).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "FAQの取得に失敗しました"})
		return
	}

	type categoryGroup struct {
		Category string           `json:"category"`
		Items    []models.FAQItem `json:"items"`
	}
	var groups []categoryGroup
	for _, item := range items {
		if len(groups) == 0 || groups[len(groups)-1].Category != item.Category {
			groups = append(groups, categoryGroup{Category: item.Category})
		}
		groups[len(groups)-1].Items = append(groups[len(groups)-1].Items, item)
	}
	if groups == nil {
		groups = []categoryGroup{}
	}
	c.JSON(http.StatusOK, groups)
}

func (m *FAQModule) listAll(c *gin.Context) {
	var items []models.FAQItem
	if err := m.db.Order("category asc, sort_order asc").Find(&items).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "FAQの取得に失敗しました"})
		return
	}
	c.JSON(http.StatusOK, items)
}

type faqRequest struct {
	Category    string `json:"category"`
	Question    string `json:"question" binding:"required"`
	Answer      string `json:"answer"`
	IsPublished *bool  `json:"is_published"`
	SortOrder   int    `json:"sort_order"`
}

func (m *FAQModule) create(c *gin.Context) {
	var req faqRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "入力内容を確認してください"})
		return
	}

	published := true
	if req.IsPublished != nil {
		published = *req.IsPublished
	}
	item := models.FAQItem{
		Category:    req.Category,
		Question:    req.Question,
		Answer:      req.Answer,
		IsPublished: published,
		SortOrder:   req.SortOrder,
		CreatedBy:   c.GetInt("user_id"),
	}
	if err := m.db.Create(&item).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "FAQの登録に失敗しました"})
		return
	}
	c.JSON(http.StatusCreated, item)
}

func (m *FAQModule) update(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "無効なIDです"})
		return
	}

	var item models.FAQItem
	if err := m.db.First(&item, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "FAQが見つかりません"})
		return
	}

	var req faqRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "入力内容を確認してください"})
		return
	}

	item.Category = req.Category
	item.Question = req.Question
	item.Answer = req.Answer
	if req.IsPublished != nil {
		item.IsPublished = *req.IsPublished
	}
	item.SortOrder = req.SortOrder

	if err := m.db.Save(&item).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "FAQの更新に失敗しました"})
		return
	}
	c.JSON(http.StatusOK, item)
}

func (m *FAQModule) remove(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "無効なIDです"})
		return
	}

	var item models.FAQItem
	if err := m.db.First(&item, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "FAQが見つかりません"})
		return
	}
	if err := m.db.Delete(&item).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "FAQの削除に失敗しました"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "FAQを削除しました"})
}
