package members

import (
	"net/http"
	"strconv"

	"gikai/admin"
	"gikai/models"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type MembersModule struct {
	db   *gorm.DB
	gate *admin.Gate
}

func NewMembersModule(db *gorm.DB, gate *admin.Gate) *MembersModule {
	return &MembersModule{db: db, gate: gate}
}

func (m *MembersModule) RegisterRoutes(router *gin.Engine) {
	router.GET("/api/members", m.list)
	router.GET("/api/members/:id", m.get)

	grp := router.Group("/api/admin/members")
	grp.Use(m.gate.RequireAuth, m.gate.RequireAdmin)
	{
		grp.POST("", m.create)
		grp.PUT("/:id", m.update)
		grp.DELETE("/:id", m.remove)
	}
}

func (m *MembersModule) list(c *gin.Context) {
	query := m.db.Order("name asc")
	if c.Query("active") == "true" {
		query = query.Where("is_active = ?", true)
	}

	var members []models.CouncilMember
	if err := query.Find(&members).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "議員一覧の取得に失敗しました"})
		return
	}
	c.JSON(http.StatusOK, members)
}

func (m *MembersModule) get(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "無効なIDです"})
		return
	}

	var member models.CouncilMember
	if err := m.db.First(&member, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "議員が見つかりません"})
		return
	}

	var questionCount int64
	m.db.Model(&models.Question{}).Where("council_member_id = ?", member.ID).Count(&questionCount)

	c.JSON(http.StatusOK, gin.H{
		"member":         member,
		"question_count": questionCount,
	})
}

type memberRequest struct {
	Name           string `json:"name" binding:"required"`
	Party          string `json:"party"`
	Position       string `json:"position"`
	PoliticalParty string `json:"political_party"`
	ElectionCount  int    `json:"election_count"`
	Committee      string `json:"committee"`
	Address        string `json:"address"`
	Phone          string `json:"phone"`
	Email          string `json:"email"`
	Website        string `json:"website"`
	Bio            string `json:"bio"`
	PhotoURL       string `json:"photo_url"`
	TermStart      int64  `json:"term_start"`
	TermEnd        int64  `json:"term_end"`
	IsActive       *bool  `json:"is_active"`
}

func (r memberRequest) apply(member *models.CouncilMember) {
	member.Name = r.Name
	member.Party = r.Party
	member.Position = r.Position
	member.PoliticalParty = r.PoliticalParty
	member.ElectionCount = r.ElectionCount
	member.Committee = r.Committee
	member.Address = r.Address
	member.Phone = r.Phone
	member.Email = r.Email
	member.Website = r.Website
	member.Bio = r.Bio
	member.PhotoURL = r.PhotoURL
	member.TermStart = r.TermStart
	member.TermEnd = r.TermEnd
	if r.IsActive != nil {
		member.IsActive = *r.IsActive
	} else {
		member.IsActive = true
	}
}

func (m *MembersModule) create(c *gin.Context) {
	var req memberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "入力内容を確認してください"})
		return
	}

	var member models.CouncilMember
	req.apply(&member)
	if err := m.db.Create(&member).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "議員の登録に失敗しました"})
		return
	}
	c.JSON(http.StatusCreated, member)
}

func (m *MembersModule) update(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "無効なIDです"})
		return
	}

	var member models.CouncilMember
	if err := m.db.First(&member, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "議員が見つかりません"})
		return
	}

	var req memberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "入力内容を確認してください"})
		return
	}

	req.apply(&member)
	if err := m.db.Save(&member).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "議員の更新に失敗しました"})
		return
	}
	c.JSON(http.StatusOK, member)
}

func (m *MembersModule) remove(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "無効なIDです"})
		return
	}

	var member models.CouncilMember
	if err := m.db.First(&member, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "議員が見つかりません"})
		return
	}

	var questionCount int64
	m.db.Model(&models.Question{}).Where("council_member_id = ?", id).Count(&questionCount)
	if questionCount > 0 {
		c.JSON(http.StatusConflict, gin.H{"error": "質問が紐づいている議員は削除できません"})
		return
	}

	if err := m.db.Delete(&member).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "議員の削除に失敗しました"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "議員を削除しました"})
}
