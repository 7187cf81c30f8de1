package questions

import (
	"net/http"
	"sort"
	"strconv"

	"gikai/admin"
	"gikai/models"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// QuestionsModule serves the assembly questions archive: public listings
// with aggregated counts, and the admin CRUD for questions and their
// official responses.
type QuestionsModule struct {
	db   *gorm.DB
	gate *admin.Gate
}

func NewQuestionsModule(db *gorm.DB, gate *admin.Gate) *QuestionsModule {
	return &QuestionsModule{db: db, gate: gate}
}

func (m *QuestionsModule) RegisterRoutes(router *gin.Engine) {
	router.GET("/api/questions", m.list)
	router.GET("/api/questions/paginated", m.listPaginated)
	router.GET("/api/questions/recent", m.recent)
	router.GET("/api/questions/popular", m.popular)
	router.GET("/api/questions/stats", m.stats)
	router.GET("/api/questions/categories", m.categories)
	router.GET("/api/questions/sessions", m.sessionNumbers)
	router.GET("/api/questions/:id", m.get)
	router.GET("/api/questions/:id/responses", m.listResponses)

	grp := router.Group("/api/admin/questions")
	grp.Use(m.gate.RequireAuth, m.gate.RequireAdmin)
	{
		grp.POST("", m.create)
		grp.PUT("/:id", m.update)
		grp.DELETE("/:id", m.remove)
		grp.POST("/:id/responses", m.addResponse)
	}
	router.DELETE("/api/admin/responses/:id", m.gate.RequireAuth, m.gate.RequireAdmin, m.removeResponse)
}

type questionDetails struct {
	models.Question
	CouncilMemberName string `json:"council_member_name"`
	ResponseCount     int64  `json:"response_count"`
	LikeCount         int64  `json:"like_count"`
	IsLiked           bool   `json:"is_liked"`
}

// decorate joins each question with its member name and counters. userID 0
// means anonymous, is_liked stays false.
func (m *QuestionsModule) decorate(questions []models.Question, userID int) []questionDetails {
	var members []models.CouncilMember
	m.db.Find(&members)
	memberNames := make(map[int]string, len(members))
	for _, member := range members {
		memberNames[member.ID] = member.Name
	}

	likedSet := make(map[int]bool)
	if userID != 0 {
		var likes []models.Like
		m.db.Where("user_id = ?", userID).Find(&likes)
		for _, like := range likes {
			likedSet[like.QuestionID] = true
		}
	}

	result := make([]questionDetails, 0, len(questions))
	for _, question := range questions {
		var responseCount, likeCount int64
		m.db.Model(&models.Response{}).Where("question_id = ?", question.ID).Count(&responseCount)
		m.db.Model(&models.Like{}).Where("question_id = ?", question.ID).Count(&likeCount)
		result = append(result, questionDetails{
			Question:          question,
			CouncilMemberName: memberNames[question.CouncilMemberID],
			ResponseCount:     responseCount,
			LikeCount:         likeCount,
			IsLiked:           likedSet[question.ID],
		})
	}
	return result
}

func (m *QuestionsModule) filteredQuery(c *gin.Context) *gorm.DB {
	query := m.db.Order("session_date desc")
	if category := c.Query("category"); category != "" {
		query = query.Where("category = ?", category)
	}
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}
	if memberID := c.Query("memberId"); memberID != "" {
		query = query.Where("council_member_id = ?", memberID)
	}
	if search := c.Query("search"); search != "" {
		like := "%" + search + "%"
		query = query.Where("title LIKE ? OR content LIKE ?", like, like)
	}
	return query
}

func (m *QuestionsModule) list(c *gin.Context) {
	var questions []models.Question
	if err := m.filteredQuery(c).Find(&questions).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "質問一覧の取得に失敗しました"})
		return
	}
	userID, _ := admin.CurrentUserID(c)
	c.JSON(http.StatusOK, m.decorate(questions, userID))
}

func (m *QuestionsModule) listPaginated(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	if page < 1 {
		page = 1
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))
	if limit < 1 || limit > 100 {
		limit = 10
	}

	var total int64
	m.filteredQuery(c).Model(&models.Question{}).Count(&total)

	var questions []models.Question
	err := m.filteredQuery(c).Offset((page - 1) * limit).Limit(limit).Find(&questions).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "質問一覧の取得に失敗しました"})
		return
	}

	userID, _ := admin.CurrentUserID(c)
	c.JSON(http.StatusOK, gin.H{
		"questions": m.decorate(questions, userID),
		"total":     total,
		"page":      page,
		"limit":     limit,
	})
}

func (m *QuestionsModule) recent(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "5"))
	if limit < 1 || limit > 50 {
		limit = 5
	}

	var questions []models.Question
	if err := m.db.Order("created_at desc").Limit(limit).Find(&questions).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "質問一覧の取得に失敗しました"})
		return
	}
	userID, _ := admin.CurrentUserID(c)
	c.JSON(http.StatusOK, m.decorate(questions, userID))
}

func (m *QuestionsModule) popular(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "5"))
	if limit < 1 || limit > 50 {
		limit = 5
	}

	var questions []models.Question
	if err := m.db.Find(&questions).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "質問一覧の取得に失敗しました"})
		return
	}

	userID, _ := admin.CurrentUserID(c)
	details := m.decorate(questions, userID)
	sort.SliceStable(details, func(i, j int) bool {
		return details[i].LikeCount > details[j].LikeCount
	})
	if len(details) > limit {
		details = details[:limit]
	}
	c.JSON(http.StatusOK, details)
}

func (m *QuestionsModule) stats(c *gin.Context) {
	var totalQuestions, answered, activeMembers, totalLikes int64
	m.db.Model(&models.Question{}).Count(&totalQuestions)
	m.db.Model(&models.Question{}).Where("status = ?", models.StatusAnswered).Count(&answered)
	m.db.Model(&models.CouncilMember{}).Where("is_active = ?", true).Count(&activeMembers)
	m.db.Model(&models.Like{}).Count(&totalLikes)

	c.JSON(http.StatusOK, gin.H{
		"total_questions":    totalQuestions,
		"answered_questions": answered,
		"active_members":     activeMembers,
		"total_likes":        totalLikes,
	})
}

func (m *QuestionsModule) categories(c *gin.Context) {
	type categoryCount struct {
		Category string `json:"category"`
		Count    int64  `json:"count"`
	}
	var counts []categoryCount
	err := m.db.Model(&models.Question{}).
		Select("category, count(*) as count").
		Where("category <> ''").
		Group("category").
		Order("count desc").
		Scan(&counts).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "カテゴリの取得に失敗しました"})
		return
	}
	c.JSON(http.StatusOK, counts)
}

func (m *QuestionsModule) sessionNumbers(c *gin.Context) {
	var sessions []string
	err := m.db.Model(&models.Question{}).
		Distinct("session_number").
		Where("session_number <> ''").
		Order("session_number desc").
		Pluck("session_number", &sessions).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "定例会の取得に失敗しました"})
		return
	}
	c.JSON(http.StatusOK, sessions)
}

func (m *QuestionsModule) get(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "無効なIDです"})
		return
	}

	var question models.Question
	if err := m.db.First(&question, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "質問が見つかりません"})
		return
	}

	var member models.CouncilMember
	m.db.First(&member, question.CouncilMemberID)

	var responses []models.Response
	m.db.Where("question_id = ?", id).Order("response_date asc").Find(&responses)

	var likeCount int64
	m.db.Model(&models.Like{}).Where("question_id = ?", id).Count(&likeCount)

	isLiked := false
	if userID, ok := admin.CurrentUserID(c); ok {
		var count int64
		m.db.Model(&models.Like{}).Where("user_id = ? AND question_id = ?", userID, id).Count(&count)
		isLiked = count > 0
	}

	c.JSON(http.StatusOK, gin.H{
		"question":       question,
		"council_member": member,
		"responses":      responses,
		"like_count":     likeCount,
		"is_liked":       isLiked,
	})
}

func (m *QuestionsModule) listResponses(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "無効なIDです"})
		return
	}
	var responses []models.Response
	if err := m.db.Where("question_id = ?", id).Order("response_date asc").Find(&responses).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "答弁の取得に失敗しました"})
		return
	}
	c.JSON(http.StatusOK, responses)
}

type questionRequest struct {
	Title           string `json:"title" binding:"required"`
	Content         string `json:"content"`
	Category        string `json:"category"`
	CouncilMemberID int    `json:"council_member_id" binding:"required"`
	SessionDate     int64  `json:"session_date"`
	SessionNumber   string `json:"session_number"`
	Status          string `json:"status"`
	YoutubeURL      string `json:"youtube_url"`
	DocumentURL     string `json:"document_url"`
}

func (m *QuestionsModule) create(c *gin.Context) {
	var req questionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "入力内容を確認してください"})
		return
	}

	var member models.CouncilMember
	if err := m.db.First(&member, req.CouncilMemberID).Error; err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "議員が見つかりません"})
		return
	}

	status := req.Status
	if status == "" {
		status = models.StatusPending
	}
	question := models.Question{
		Title:           req.Title,
		Content:         req.Content,
		Category:        req.Category,
		CouncilMemberID: req.CouncilMemberID,
		SessionDate:     req.SessionDate,
		SessionNumber:   req.SessionNumber,
		Status:          status,
		YoutubeURL:      req.YoutubeURL,
		DocumentURL:     req.DocumentURL,
	}
	if err := m.db.Create(&question).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "質問の登録に失敗しました"})
		return
	}
	c.JSON(http.StatusCreated, question)
}

func (m *QuestionsModule) update(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "無効なIDです"})
		return
	}

	var question models.Question
	if err := m.db.First(&question, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "質問が見つかりません"})
		return
	}

	var req questionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "入力内容を確認してください"})
		return
	}

	question.Title = req.Title
	question.Content = req.Content
	question.Category = req.Category
	question.CouncilMemberID = req.CouncilMemberID
	question.SessionDate = req.SessionDate
	question.SessionNumber = req.SessionNumber
	if req.Status != "" {
		question.Status = req.Status
	}
	question.YoutubeURL = req.YoutubeURL
	question.DocumentURL = req.DocumentURL

	if err := m.db.Save(&question).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "質問の更新に失敗しました"})
		return
	}
	c.JSON(http.StatusOK, question)
}

func (m *QuestionsModule) remove(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "無効なIDです"})
		return
	}

	var question models.Question
	if err := m.db.First(&question, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "質問が見つかりません"})
		return
	}

	// responses and likes belong to the question, drop them with it
	m.db.Where("question_id = ?", id).Delete(&models.Response{})
	m.db.Where("question_id = ?", id).Delete(&models.Like{})
	if err := m.db.Delete(&question).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "質問の削除に失敗しました"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "質問を削除しました"})
}

type responseRequest struct {
	Content         string `json:"content" binding:"required"`
	RespondentTitle string `json:"respondent_title"`
	Department      string `json:"department"`
	ResponseDate    int64  `json:"response_date"`
	DocumentURL     string `json:"document_url"`
}

func (m *QuestionsModule) addResponse(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "無効なIDです"})
		return
	}

	var question models.Question
	if err := m.db.First(&question, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "質問が見つかりません"})
		return
	}

	var req responseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "入力内容を確認してください"})
		return
	}

	response := models.Response{
		QuestionID:      question.ID,
		Content:         req.Content,
		RespondentTitle: req.RespondentTitle,
		Department:      req.Department,
		ResponseDate:    req.ResponseDate,
		DocumentURL:     req.DocumentURL,
	}
	if err := m.db.Create(&response).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "答弁の登録に失敗しました"})
		return
	}

	// the first official response settles the question
	if question.Status == models.StatusPending {
		question.Status = models.StatusAnswered
		m.db.Save(&question)
	}

	c.JSON(http.StatusCreated, response)
}

func (m *QuestionsModule) removeResponse(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "無効なIDです"})
		return
	}

	var response models.Response
	if err := m.db.First(&response, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "答弁が見つかりません"})
		return
	}
	if err := m.db.Delete(&response).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "答弁の削除に失敗しました"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "答弁を削除しました"})
}
