package likes

import (
	"net/http"
	"strconv"

	"gikai/admin"
	"gikai/models"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type LikesModule struct {
	db   *gorm.DB
	gate *admin.Gate
}

func NewLikesModule(db *gorm.DB, gate *admin.Gate) *LikesModule {
	return &LikesModule{db: db, gate: gate}
}

func (m *LikesModule) RegisterRoutes(router *gin.Engine) {
	router.POST("/api/questions/:id/like", m.gate.RequireAuth, m.toggle)
	router.GET("/api/questions/:id/likes", m.count)
	router.GET("/api/likes/mine", m.mine)
}

// toggle flips the caller's like on a question. A second call undoes the
// first one.
func (m *LikesModule) toggle(c *gin.Context) {
	userID := c.GetInt("user_id")
	questionID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "無効なIDです"})
		return
	}

	var question models.Question
	if err := m.db.First(&question, questionID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "質問が見つかりません"})
		return
	}

	var existing models.Like
	err = m.db.Where("user_id = ? AND question_id = ?", userID, questionID).First(&existing).Error
	if err == nil {
		if err := m.db.Delete(&existing).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "いいねの解除に失敗しました"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"liked": false})
		return
	}

	like := models.Like{UserID: userID, QuestionID: questionID}
	if err := m.db.Create(&like).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "いいねに失敗しました"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"liked": true})
}

func (m *LikesModule) count(c *gin.Context) {
	questionID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "無効なIDです"})
		return
	}

	var count int64
	m.db.Model(&models.Like{}).Where("question_id = ?", questionID).Count(&count)

	isLiked := false
	if userID, ok := admin.CurrentUserID(c); ok {
		var mine int64
		m.db.Model(&models.Like{}).Where("user_id = ? AND question_id = ?", userID, questionID).Count(&mine)
		isLiked = mine > 0
	}

	c.JSON(http.StatusOK, gin.H{"count": count, "is_liked": isLiked})
}

// mine lists the question ids the caller has liked. Anonymous callers get
// an empty list, not an error.
func (m *LikesModule) mine(c *gin.Context) {
	userID, ok := admin.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusOK, []int{})
		return
	}

	var ids []int
	err := m.db.Model(&models.Like{}).Where("user_id = ?", userID).Pluck("question_id", &ids).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "いいねの取得に失敗しました"})
		return
	}
	if ids == nil {
		ids = []int{}
	}
	c.JSON(http.StatusOK, ids)
}
