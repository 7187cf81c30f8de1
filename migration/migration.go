package migration

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"gikai/admin"
	"gikai/models"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// MigrationModule moves the whole civic dataset between deployments as one
// JSON snapshot. Export reads every table, import replays a snapshot into
// the current database while rebuilding cross-table references.
type MigrationModule struct {
	db   *gorm.DB
	gate *admin.Gate
}

func NewMigrationModule(db *gorm.DB, gate *admin.Gate) *MigrationModule {
	return &MigrationModule{db: db, gate: gate}
}

func (m *MigrationModule) RegisterRoutes(router *gin.Engine) {
	grp := router.Group("/api/admin/data")
	grp.Use(m.gate.RequireAuth, m.gate.RequireAdmin)
	{
		grp.GET("/export", m.exportData)
		grp.POST("/import", m.importData)
	}
}

// ExportAll reads every table into a Snapshot. Any read failure aborts the
// whole export, a partial snapshot is worse than none.
func (m *MigrationModule) ExportAll() (*Snapshot, error) {
	var members []models.CouncilMember
	if err := m.db.Find(&members).Error; err != nil {
		return nil, err
	}
	var questions []models.Question
	if err := m.db.Find(&questions).Error; err != nil {
		return nil, err
	}
	var responses []models.Response
	if err := m.db.Find(&responses).Error; err != nil {
		return nil, err
	}
	var news []models.News
	if err := m.db.Find(&news).Error; err != nil {
		return nil, err
	}
	var slides []models.SlideshowSlide
	if err := m.db.Find(&slides).Error; err != nil {
		return nil, err
	}
	var faqItems []models.FAQItem
	if err := m.db.Find(&faqItems).Error; err != nil {
		return nil, err
	}
	var contacts []models.ContactMessage
	if err := m.db.Find(&contacts).Error; err != nil {
		return nil, err
	}
	var demographics []models.UserDemographic
	if err := m.db.Find(&demographics).Error; err != nil {
		return nil, err
	}
	var likes []models.Like
	if err := m.db.Find(&likes).Error; err != nil {
		return nil, err
	}

	memberNames := make(map[int]string, len(members))
	for _, member := range members {
		memberNames[member.ID] = member.Name
	}
	questionTitles := make(map[int]string, len(questions))
	for _, question := range questions {
		questionTitles[question.ID] = question.Title
	}

	data := &SnapshotData{
		CouncilMembers:   make([]MemberRecord, 0, len(members)),
		Questions:        make([]QuestionRecord, 0, len(questions)),
		Responses:        make([]ResponseRecord, 0, len(responses)),
		News:             make([]NewsRecord, 0, len(news)),
		SlideshowSlides:  make([]SlideRecord, 0, len(slides)),
		FAQItems:         make([]FAQRecord, 0, len(faqItems)),
		ContactMessages:  make([]ContactRecord, 0, len(contacts)),
		UserDemographics: make([]DemographicRecord, 0, len(demographics)),
		Likes:            make([]LikeRecord, 0, len(likes)),
	}

	for _, member := range members {
		data.CouncilMembers = append(data.CouncilMembers, MemberRecord{
			ID:             member.ID,
			CreationTime:   member.CreatedAt,
			Name:           member.Name,
			Party:          member.Party,
			Position:       member.Position,
			PoliticalParty: member.PoliticalParty,
			ElectionCount:  member.ElectionCount,
			Committee:      member.Committee,
			Address:        member.Address,
			Phone:          member.Phone,
			Email:          member.Email,
			Website:        member.Website,
			Bio:            member.Bio,
			PhotoURL:       member.PhotoURL,
			TermStart:      member.TermStart,
			TermEnd:        member.TermEnd,
			IsActive:       member.IsActive,
		})
	}
	for _, question := range questions {
		data.Questions = append(data.Questions, QuestionRecord{
			ID:                question.ID,
			CreationTime:      question.CreatedAt,
			Title:             question.Title,
			Content:           question.Content,
			Category:          question.Category,
			CouncilMemberID:   question.CouncilMemberID,
			CouncilMemberName: memberNames[question.CouncilMemberID],
			SessionDate:       question.SessionDate,
			SessionNumber:     question.SessionNumber,
			Status:            question.Status,
			YoutubeURL:        question.YoutubeURL,
			DocumentURL:       question.DocumentURL,
		})
	}
	for _, response := range responses {
		data.Responses = append(data.Responses, ResponseRecord{
			ID:              response.ID,
			CreationTime:    response.CreatedAt,
			QuestionID:      response.QuestionID,
			QuestionTitle:   questionTitles[response.QuestionID],
			Content:         response.Content,
			RespondentTitle: response.RespondentTitle,
			Department:      response.Department,
			ResponseDate:    response.ResponseDate,
			DocumentURL:     response.DocumentURL,
		})
	}
	for _, item := range news {
		data.News = append(data.News, NewsRecord{
			ID:           item.ID,
			CreationTime: item.CreatedAt,
			Title:        item.Title,
			Content:      item.Content,
			Category:     item.Category,
			IsPublished:  item.IsPublished,
			PublishDate:  item.PublishDate,
			AuthorID:     item.AuthorID,
			ThumbnailURL: item.ThumbnailURL,
		})
	}
	for _, slide := range slides {
		data.SlideshowSlides = append(data.SlideshowSlides, SlideRecord{
			ID:              slide.ID,
			CreationTime:    slide.CreatedAt,
			Title:           slide.Title,
			Description:     slide.Description,
			ImageURL:        slide.ImageURL,
			LinkURL:         slide.LinkURL,
			BackgroundColor: slide.BackgroundColor,
			SortOrder:       slide.SortOrder,
			IsActive:        slide.IsActive,
			CreatedBy:       slide.CreatedBy,
			UpdatedBy:       slide.UpdatedBy,
		})
	}
	for _, item := range faqItems {
		data.FAQItems = append(data.FAQItems, FAQRecord{
			ID:           item.ID,
			CreationTime: item.CreatedAt,
			Category:     item.Category,
			Question:     item.Question,
			Answer:       item.Answer,
			IsPublished:  item.IsPublished,
			SortOrder:    item.SortOrder,
			CreatedBy:    item.CreatedBy,
			CreatedAt:    item.CreatedAt,
		})
	}
	for _, msg := range contacts {
		data.ContactMessages = append(data.ContactMessages, ContactRecord{
			ID:           msg.ID,
			CreationTime: msg.CreatedAt,
			Name:         msg.Name,
			Email:        msg.Email,
			Subject:      msg.Subject,
			Message:      msg.Message,
			IsRead:       msg.IsRead,
		})
	}
	for _, demo := range demographics {
		data.UserDemographics = append(data.UserDemographics, DemographicRecord{
			ID:           demo.ID,
			CreationTime: demo.CreatedAt,
			UserID:       demo.UserID,
			AgeGroup:     demo.AgeGroup,
			Gender:       demo.Gender,
			Region:       demo.Region,
			RegisteredAt: demo.RegisteredAt,
		})
	}
	for _, like := range likes {
		data.Likes = append(data.Likes, LikeRecord{
			ID:           like.ID,
			CreationTime: like.CreatedAt,
			UserID:       like.UserID,
			QuestionID:   like.QuestionID,
		})
	}

	return &Snapshot{ExportedAt: time.Now().UnixMilli(), Data: data}, nil
}

// ClearAll empties every content table before a replacing import. Tables
// holding references go first. A table that fails to clear is logged and
// skipped so one bad table cannot leave every other one untouched.
func (m *MigrationModule) ClearAll() {
	tables := []struct {
		name  string
		model interface{}
	}{
		{"responses", &models.Response{}},
		{"questions", &models.Question{}},
		{"council_members", &models.CouncilMember{}},
		{"news", &models.News{}},
		{"slideshow_slides", &models.SlideshowSlide{}},
		{"faq_items", &models.FAQItem{}},
		{"contact_messages", &models.ContactMessage{}},
		{"user_demographics", &models.UserDemographic{}},
		{"likes", &models.Like{}},
	}
	for _, table := range tables {
		err := m.db.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(table.model).Error
		if err != nil {
			log.Printf("clear %s failed: %v", table.name, err)
		}
	}
}

// Import replays a snapshot into the database. Tables are processed in
// dependency order so that remap tables for council members and questions
// exist before anything referencing them. A record that cannot be stored is
// counted as skipped and the run continues.
func (m *MigrationModule) Import(data *SnapshotData, skipDuplicates bool, currentUserID int) *Stats {
	stats := &Stats{}

	memberIDMap := make(map[int]int)
	for _, rec := range data.CouncilMembers {
		if skipDuplicates {
			var existing models.CouncilMember
			if err := m.db.Where("name = ?", rec.Name).First(&existing).Error; err == nil {
				memberIDMap[rec.ID] = existing.ID
				stats.CouncilMembers.Skipped++
				continue
			}
		}
		member := rec.toModel()
		if err := m.db.Create(&member).Error; err != nil {
			log.Printf("import council member %q: %v", rec.Name, err)
			stats.CouncilMembers.Skipped++
			continue
		}
		memberIDMap[rec.ID] = member.ID
		stats.CouncilMembers.Imported++
	}

	questionIDMap := make(map[int]int)
	for _, rec := range data.Questions {
		memberID := 0
		if rec.CouncilMemberID != 0 {
			if id, ok := memberIDMap[rec.CouncilMemberID]; ok {
				memberID = id
			}
		}
		if memberID == 0 && rec.CouncilMemberName != "" {
			var member models.CouncilMember
			if err := m.db.Where("name = ?", rec.CouncilMemberName).First(&member).Error; err == nil {
				memberID = member.ID
			}
		}
		if memberID == 0 {
			log.Printf("import question %q: council member not found", rec.Title)
			stats.Questions.Skipped++
			continue
		}

		if skipDuplicates {
			var existing models.Question
			err := m.db.Where("title = ? AND council_member_id = ?", rec.Title, memberID).First(&existing).Error
			if err == nil {
				questionIDMap[rec.ID] = existing.ID
				stats.Questions.Skipped++
				continue
			}
		}

		question := rec.toModel()
		question.CouncilMemberID = memberID
		if err := m.db.Create(&question).Error; err != nil {
			log.Printf("import question %q: %v", rec.Title, err)
			stats.Questions.Skipped++
			continue
		}
		questionIDMap[rec.ID] = question.ID
		stats.Questions.Imported++
	}

	for _, rec := range data.Responses {
		questionID := 0
		if rec.QuestionID != 0 {
			if id, ok := questionIDMap[rec.QuestionID]; ok {
				questionID = id
			}
		}
		if questionID == 0 && rec.QuestionTitle != "" {
			var question models.Question
			if err := m.db.Where("title = ?", rec.QuestionTitle).First(&question).Error; err == nil {
				questionID = question.ID
			}
		}
		if questionID == 0 {
			log.Printf("import response: question not found (title %q)", rec.QuestionTitle)
			stats.Responses.Skipped++
			continue
		}

		response := rec.toModel()
		response.QuestionID = questionID
		if err := m.db.Create(&response).Error; err != nil {
			log.Printf("import response for question %d: %v", questionID, err)
			stats.Responses.Skipped++
			continue
		}
		stats.Responses.Imported++
	}

	for _, rec := range data.News {
		if skipDuplicates {
			var existing models.News
			if err := m.db.Where("title = ?", rec.Title).First(&existing).Error; err == nil {
				stats.News.Skipped++
				continue
			}
		}
		item := rec.toModel()
		// authorship belongs to whoever runs the import, source user ids
		// mean nothing here
		item.AuthorID = currentUserID
		if err := m.db.Create(&item).Error; err != nil {
			log.Printf("import news %q: %v", rec.Title, err)
			stats.News.Skipped++
			continue
		}
		stats.News.Imported++
	}

	for _, rec := range data.SlideshowSlides {
		slide := rec.toModel()
		slide.CreatedBy = currentUserID
		if err := m.db.Create(&slide).Error; err != nil {
			log.Printf("import slide %q: %v", rec.Title, err)
			stats.SlideshowSlides.Skipped++
			continue
		}
		stats.SlideshowSlides.Imported++
	}

	for _, rec := range data.FAQItems {
		if skipDuplicates {
			var existing models.FAQItem
			if err := m.db.Where("question = ?", rec.Question).First(&existing).Error; err == nil {
				stats.FAQItems.Skipped++
				continue
			}
		}
		item := rec.toModel()
		item.CreatedBy = currentUserID
		if err := m.db.Create(&item).Error; err != nil {
			log.Printf("import faq %q: %v", rec.Question, err)
			stats.FAQItems.Skipped++
			continue
		}
		stats.FAQItems.Imported++
	}

	for _, rec := range data.ContactMessages {
		msg := rec.toModel()
		if err := m.db.Create(&msg).Error; err != nil {
			log.Printf("import contact message from %q: %v", rec.Email, err)
			stats.ContactMessages.Skipped++
			continue
		}
		stats.ContactMessages.Imported++
	}

	for _, rec := range data.UserDemographics {
		demo := rec.toModel()
		if err := m.db.Create(&demo).Error; err != nil {
			log.Printf("import demographic for user %d: %v", rec.UserID, err)
			stats.UserDemographics.Skipped++
			continue
		}
		stats.UserDemographics.Imported++
	}

	for _, rec := range data.Likes {
		questionID := rec.QuestionID
		if id, ok := questionIDMap[rec.QuestionID]; ok {
			questionID = id
		}
		var question models.Question
		if err := m.db.First(&question, questionID).Error; err != nil {
			stats.Likes.Skipped++
			continue
		}
		like := models.Like{UserID: rec.UserID, QuestionID: questionID}
		if err := m.db.Create(&like).Error; err != nil {
			log.Printf("import like user=%d question=%d: %v", rec.UserID, questionID, err)
			stats.Likes.Skipped++
			continue
		}
		stats.Likes.Imported++
	}

	return stats
}

// ImportJSON is the outer boundary: it parses and validates the uploaded
// document before anything touches the database.
func (m *MigrationModule) ImportJSON(jsonData string, opts ImportOptions, currentUserID int) *ImportResult {
	var snapshot Snapshot
	if err := json.Unmarshal([]byte(jsonData), &snapshot); err != nil {
		return &ImportResult{
			Success: false,
			Message: "インポートエラー: JSONの解析に失敗しました: " + err.Error(),
		}
	}
	if snapshot.Data == nil {
		return &ImportResult{
			Success: false,
			Message: "無効なデータ形式です。エクスポートしたJSONファイルを使用してください。",
		}
	}

	if opts.ClearExistingData {
		m.ClearAll()
	}

	stats := m.Import(snapshot.Data, opts.SkipDuplicates, currentUserID)
	return &ImportResult{
		Success: true,
		Message: "データのインポートが完了しました",
		Stats:   stats,
	}
}

func (m *MigrationModule) exportData(c *gin.Context) {
	snapshot, err := m.ExportAll()
	if err != nil {
		log.Printf("export failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "エクスポートに失敗しました"})
		return
	}
	c.JSON(http.StatusOK, snapshot)
}

type importRequest struct {
	JSONData string        `json:"jsonData" binding:"required"`
	Options  ImportOptions `json:"options"`
}

func (m *MigrationModule) importData(c *gin.Context) {
	var req importRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "入力内容を確認してください"})
		return
	}

	result := m.ImportJSON(req.JSONData, req.Options, c.GetInt("user_id"))
	if !result.Success {
		c.JSON(http.StatusBadRequest, result)
		return
	}
	c.JSON(http.StatusOK, result)
}
