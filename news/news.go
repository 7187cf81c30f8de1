package news

import (
	"bytes"
	"log"
	"net/http"
	"strconv"
	"time"

	"gikai/admin"
	"gikai/models"
	"gikai/storage"

	"github.com/gin-gonic/gin"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
	"gorm.io/gorm"
)

type NewsModule struct {
	db    *gorm.DB
	gate  *admin.Gate
	store *storage.StorageModule
	md    goldmark.Markdown
}

func NewNewsModule(db *gorm.DB, gate *admin.Gate, store *storage.StorageModule) *NewsModule {
	md := goldmark.New(
		goldmark.WithExtensions(extension.GFM, extension.Linkify),
		goldmark.WithRendererOptions(html.WithUnsafe()),
	)
	return &NewsModule{db: db, gate: gate, store: store, md: md}
}

func (m *NewsModule) RegisterRoutes(router *gin.Engine) {
	router.GET("/api/news", m.list)
	router.GET("/api/news/categories", m.categories)
	router.GET("/api/news/recent", m.recent)
	router.GET("/api/news/:id", m.get)

	grp := router.Group("/api/admin/news")
	grp.Use(m.gate.RequireAuth, m.gate.RequireAdmin)
	{
		grp.GET("", m.listAll)
		grp.POST("", m.create)
		grp.PUT("/:id", m.update)
		grp.DELETE("/:id", m.remove)
	}
}

func (m *NewsModule) renderMarkdown(content string) string {
	var buf bytes.Buffer
	if err := m.md.Convert([]byte(content), &buf); err != nil {
		log.Printf("Error rendering markdown: %v", err)
		return ""
	}
	return buf.String()
}

func (m *NewsModule) list(c *gin.Context) {
	query := m.db.Where("is_published = ?", true).Order("publish_date desc")
	if category := c.Query("category"); category != "" {
		query = query.Where("category = ?", category)
	}

	var items []models.News
	if err := query.Find(&items).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "お知らせの取得に失敗しました"})
		return
	}
	c.JSON(http.StatusOK, items)
}

func (m *NewsModule) categories(c *gin.Context) {
	var categories []string
	err := m.db.Model(&models.News{}).
		Distinct("category").
		Where("category <> '' AND is_published = ?", true).
		Pluck("category", &categories).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "カテゴリの取得に失敗しました"})
		return
	}
	c.JSON(http.StatusOK, categories)
}

func (m *NewsModule) recent(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "5"))
	if limit < 1 || limit > 50 {
		limit = 5
	}
	var items []models.News
	err := m.db.Where("is_published = ?", true).Order("publish_date desc").Limit(limit).Find(&items).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "お知らせの取得に失敗しました"})
		return
	}
	c.JSON(http.StatusOK, items)
}

func (m *NewsModule) get(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "無効なIDです"})
		return
	}

	var item models.News
	if err := m.db.First(&item, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "お知らせが見つかりません"})
		return
	}

	// drafts stay invisible to everyone but staff
	if !item.IsPublished {
		userID, ok := admin.CurrentUserID(c)
		if !ok || !m.gate.IsAdmin(userID) {
			c.JSON(http.StatusNotFound, gin.H{"error": "お知らせが見つかりません"})
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"news":         item,
		"content_html": m.renderMarkdown(item.Content),
	})
}

func (m *NewsModule) listAll(c *gin.Context) {
	var items []models.News
	if err := m.db.Order("created_at desc").Find(&items).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "お知らせの取得に失敗しました"})
		return
	}
	c.JSON(http.StatusOK, items)
}

type newsRequest struct {
	Title        string `json:"title" binding:"required"`
	Content      string `json:"content"`
	Category     string `json:"category"`
	IsPublished  bool   `json:"is_published"`
	PublishDate  int64  `json:"publish_date"`
	ThumbnailURL string `json:"thumbnail_url"`
	ThumbnailID  string `json:"thumbnail_id"`
}

func (m *NewsModule) create(c *gin.Context) {
	var req newsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "入力内容を確認してください"})
		return
	}

	publishDate := req.PublishDate
	if publishDate == 0 {
		publishDate = time.Now().UnixMilli()
	}

	thumbnailID := req.ThumbnailID
	if thumbnailID == "" {
		thumbnailID = storage.IDFromURL(req.ThumbnailURL)
	}

	item := models.News{
		Title:        req.Title,
		Content:      req.Content,
		Category:     req.Category,
		IsPublished:  req.IsPublished,
		PublishDate:  publishDate,
		AuthorID:     c.GetInt("user_id"),
		ThumbnailURL: req.ThumbnailURL,
		ThumbnailID:  thumbnailID,
	}
	if err := m.db.Create(&item).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "お知らせの登録に失敗しました"})
		return
	}
	c.JSON(http.StatusCreated, item)
}

func (m *NewsModule) update(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "無効なIDです"})
		return
	}

	var item models.News
	if err := m.db.First(&item, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "お知らせが見つかりません"})
		return
	}

	var req newsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "入力内容を確認してください"})
		return
	}

	// replacing the thumbnail orphans the old blob, clean it up
	newThumbnailID := req.ThumbnailID
	if newThumbnailID == "" {
		newThumbnailID = storage.IDFromURL(req.ThumbnailURL)
	}
	if item.ThumbnailID != "" && item.ThumbnailID != newThumbnailID {
		m.store.Delete(item.ThumbnailID)
	}

	item.Title = req.Title
	item.Content = req.Content
	item.Category = req.Category
	item.IsPublished = req.IsPublished
	if req.PublishDate != 0 {
		item.PublishDate = req.PublishDate
	}
	item.ThumbnailURL = req.ThumbnailURL
	item.ThumbnailID = newThumbnailID

	if err := m.db.Save(&item).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "お知らせの更新に失敗しました"})
		return
	}
	c.JSON(http.StatusOK, item)
}

func (m *NewsModule) remove(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "無効なIDです"})
		return
	}

	var item models.News
	if err := m.db.First(&item, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "お知らせが見つかりません"})
		return
	}

	if item.ThumbnailID != "" {
		m.store.Delete(item.ThumbnailID)
	}
	if err := m.db.Delete(&item).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "お知らせの削除に失敗しました"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "お知らせを削除しました"})
}
