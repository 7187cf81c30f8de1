package slideshow

import (
	"net/http"
	"strconv"

	"gikai/admin"
	"gikai/models"
	"gikai/storage"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type SlideshowModule struct {
	db    *gorm.DB
	gate  *admin.Gate
	store *storage.StorageModule
}

func NewSlideshowModule(db *gorm.DB, gate *admin.Gate, store *storage.StorageModule) *SlideshowModule {
	return &SlideshowModule{db: db, gate: gate, store: store}
}

func (m *SlideshowModule) RegisterRoutes(router *gin.Engine) {
	router.GET("/api/slideshow", m.listActive)

	grp := router.Group("/api/admin/slideshow")
	grp.Use(m.gate.RequireAuth, m.gate.RequireAdmin)
	{
		grp.GET("", m.listAll)
		grp.POST("", m.create)
		grp.PUT("/:id", m.update)
		grp.DELETE("/:id", m.remove)
	}
}

func (m *SlideshowModule) listActive(c *gin.Context) {
	var slides []models.SlideshowSlide
	err := m.db.Where("is_active = ?", true).Order("sort_order asc").Find(&slides).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "スライドの取得に失敗しました"})
		return
	}
	c.JSON(http.StatusOK, slides)
}

func (m *SlideshowModule) listAll(c *gin.Context) {
	var slides []models.SlideshowSlide
	if err := m.db.Order("sort_order asc").Find(&slides).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "スライドの取得に失敗しました"})
		return
	}
	c.JSON(http.StatusOK, slides)
}

type slideRequest struct {
	Title           string `json:"title" binding:"required"`
	Description     string `json:"description"`
	ImageURL        string `json:"image_url"`
	LinkURL         string `json:"link_url"`
	BackgroundColor string `json:"background_color"`
	SortOrder       int    `json:"sort_order"`
	IsActive        *bool  `json:"is_active"`
}

func (m *SlideshowModule) create(c *gin.Context) {
	var req slideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "入力内容を確認してください"})
		return
	}

	active := true
	if req.IsActive != nil {
		active = *req.IsActive
	}

	slide := models.SlideshowSlide{
		Title:           req.Title,
		Description:     req.Description,
		ImageURL:        req.ImageURL,
		ImageID:         storage.IDFromURL(req.ImageURL),
		LinkURL:         req.LinkURL,
		BackgroundColor: req.BackgroundColor,
		SortOrder:       req.SortOrder,
		IsActive:        active,
		CreatedBy:       c.GetInt("user_id"),
	}
	if err := m.db.Create(&slide).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "スライドの登録に失敗しました"})
		return
	}
	c.JSON(http.StatusCreated, slide)
}

func (m *SlideshowModule) update(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "無効なIDです"})
		return
	}

	var slide models.SlideshowSlide
	if err := m.db.First(&slide, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "スライドが見つかりません"})
		return
	}

	var req slideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "入力内容を確認してください"})
		return
	}

	newImageID := storage.IDFromURL(req.ImageURL)
	if slide.ImageID != "" && slide.ImageID != newImageID {
		m.store.Delete(slide.ImageID)
	}

	slide.Title = req.Title
	slide.Description = req.Description
	slide.ImageURL = req.ImageURL
	slide.ImageID = newImageID
	slide.LinkURL = req.LinkURL
	slide.BackgroundColor = req.BackgroundColor
	slide.SortOrder = req.SortOrder
	if req.IsActive != nil {
		slide.IsActive = *req.IsActive
	}
	slide.UpdatedBy = c.GetInt("user_id")

	if err := m.db.Save(&slide).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "スライドの更新に失敗しました"})
		return
	}
	c.JSON(http.StatusOK, slide)
}

func (m *SlideshowModule) remove(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "無効なIDです"})
		return
	}

	var slide models.SlideshowSlide
	if err := m.db.First(&slide, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "スライドが見つかりません"})
		return
	}

	if slide.ImageID != "" {
		m.store.Delete(slide.ImageID)
	}
	if err := m.db.Delete(&slide).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "スライドの削除に失敗しました"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "スライドを削除しました"})
}
