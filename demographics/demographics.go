package demographics

import (
	"net/http"
	"time"

	"gikai/admin"
	"gikai/models"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// DemographicsModule stores one optional demographic record per user and
// aggregates them for the admin dashboard. Individual records are never
// exposed to other users.
type DemographicsModule struct {
	db   *gorm.DB
	gate *admin.Gate
}

func NewDemographicsModule(db *gorm.DB, gate *admin.Gate) *DemographicsModule {
	return &DemographicsModule{db: db, gate: gate}
}

func (m *DemographicsModule) RegisterRoutes(router *gin.Engine) {
	router.POST("/api/demographics", m.gate.RequireAuth, m.upsert)
	router.GET("/api/demographics/me", m.gate.RequireAuth, m.mine)
	router.GET("/api/admin/demographics/stats", m.gate.RequireAuth, m.gate.RequireAdmin, m.stats)
}

type demographicRequest struct {
	AgeGroup string `json:"age_group"`
	Gender   string `json:"gender"`
	Region   string `json:"region"`
}

func (m *DemographicsModule) upsert(c *gin.Context) {
	userID := c.GetInt("user_id")

	var req demographicRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "入力内容を確認してください"})
		return
	}

	var demo models.UserDemographic
	err := m.db.Where("user_id = ?", userID).First(&demo).Error
	if err != nil {
		demo = models.UserDemographic{
			UserID:       userID,
			RegisteredAt: time.Now().UnixMilli(),
		}
	}
	demo.AgeGroup = req.AgeGroup
	demo.Gender = req.Gender
	demo.Region = req.Region

	if err := m.db.Save(&demo).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "保存に失敗しました"})
		return
	}
	c.JSON(http.StatusOK, demo)
}

func (m *DemographicsModule) mine(c *gin.Context) {
	userID := c.GetInt("user_id")

	var demo models.UserDemographic
	if err := m.db.Where("user_id = ?", userID).First(&demo).Error; err != nil {
		c.JSON(http.StatusOK, nil)
		return
	}
	c.JSON(http.StatusOK, demo)
}

func (m *DemographicsModule) stats(c *gin.Context) {
	countBy := func(column string) map[string]int64 {
		type row struct {
			Value string
			Count int64
		}
		var rows []row
		m.db.Model(&models.UserDemographic{}).
			Select(column + " as value, count(*) as count").
			Where(column + " <> ''").
			Group(column).
			Scan(&rows)
		result := make(map[string]int64, len(rows))
		for _, r := range rows {
			result[r.Value] = r.Count
		}
		return result
	}

	var total int64
	m.db.Model(&models.UserDemographic{}).Count(&total)

	c.JSON(http.StatusOK, gin.H{
		"total":      total,
		"age_groups": countBy("age_group"),
		"genders":    countBy("gender"),
		"regions":    countBy("region"),
	})
}
