package migration

import "gikai/models"

// Snapshot is the portable JSON document produced by export and consumed by
// import. Record ids travel under "_id" and creation stamps under
// "_creationTime"; both are source-side values and never survive import
// directly, they only feed the remap tables.
type Snapshot struct {
	ExportedAt int64         `json:"exportedAt"`
	Data       *SnapshotData `json:"data"`
}

type SnapshotData struct {
	CouncilMembers   []MemberRecord      `json:"councilMembers"`
	Questions        []QuestionRecord    `json:"questions"`
	Responses        []ResponseRecord    `json:"responses"`
	News             []NewsRecord        `json:"news"`
	SlideshowSlides  []SlideRecord       `json:"slideshowSlides"`
	FAQItems         []FAQRecord         `json:"faqItems"`
	ContactMessages  []ContactRecord     `json:"contactMessages"`
	UserDemographics []DemographicRecord `json:"userDemographics"`
	Likes            []LikeRecord        `json:"likes"`
}

type MemberRecord struct {
	ID             int    `json:"_id"`
	CreationTime   int64  `json:"_creationTime"`
	Name           string `json:"name"`
	Party          string `json:"party,omitempty"`
	Position       string `json:"position,omitempty"`
	PoliticalParty string `json:"politicalParty,omitempty"`
	ElectionCount  int    `json:"electionCount,omitempty"`
	Committee      string `json:"committee,omitempty"`
	Address        string `json:"address,omitempty"`
	Phone          string `json:"phone,omitempty"`
	Email          string `json:"email,omitempty"`
	Website        string `json:"website,omitempty"`
	Bio            string `json:"bio,omitempty"`
	PhotoURL       string `json:"photoUrl,omitempty"`
	TermStart      int64  `json:"termStart,omitempty"`
	TermEnd        int64  `json:"termEnd,omitempty"`
	IsActive       bool   `json:"isActive"`
}

func (r MemberRecord) toModel() models.CouncilMember {
	return models.CouncilMember{
		Name:           r.Name,
		Party:          r.Party,
		Position:       r.Position,
		PoliticalParty: r.PoliticalParty,
		ElectionCount:  r.ElectionCount,
		Committee:      r.Committee,
		Address:        r.Address,
		Phone:          r.Phone,
		Email:          r.Email,
		Website:        r.Website,
		Bio:            r.Bio,
		PhotoURL:       r.PhotoURL,
		TermStart:      r.TermStart,
		TermEnd:        r.TermEnd,
		IsActive:       r.IsActive,
	}
}

type QuestionRecord struct {
	ID              int    `json:"_id"`
	CreationTime    int64  `json:"_creationTime"`
	Title           string `json:"title"`
	Content         string `json:"content,omitempty"`
	Category        string `json:"category,omitempty"`
	CouncilMemberID int    `json:"councilMemberId,omitempty"`
	// CouncilMemberName lets an import resolve the owner when the source id
	// is unknown to the target database.
	CouncilMemberName string `json:"councilMemberName,omitempty"`
	SessionDate       int64  `json:"sessionDate,omitempty"`
	SessionNumber     string `json:"sessionNumber,omitempty"`
	Status            string `json:"status,omitempty"`
	YoutubeURL        string `json:"youtubeUrl,omitempty"`
	DocumentURL       string `json:"documentUrl,omitempty"`
}

func (r QuestionRecord) toModel() models.Question {
	status := r.Status
	if status == "" {
		status = models.StatusPending
	}
	return models.Question{
		Title:         r.Title,
		Content:       r.Content,
		Category:      r.Category,
		SessionDate:   r.SessionDate,
		SessionNumber: r.SessionNumber,
		Status:        status,
		YoutubeURL:    r.YoutubeURL,
		DocumentURL:   r.DocumentURL,
	}
}

type ResponseRecord struct {
	ID           int    `json:"_id"`
	CreationTime int64  `json:"_creationTime"`
	QuestionID   int    `json:"questionId,omitempty"`
	// QuestionTitle is the fallback key when the source question id does not
	// resolve.
	QuestionTitle   string `json:"questionTitle,omitempty"`
	Content         string `json:"content,omitempty"`
	RespondentTitle string `json:"respondentTitle,omitempty"`
	Department      string `json:"department,omitempty"`
	ResponseDate    int64  `json:"responseDate,omitempty"`
	DocumentURL     string `json:"documentUrl,omitempty"`
}

func (r ResponseRecord) toModel() models.Response {
	return models.Response{
		Content:         r.Content,
		RespondentTitle: r.RespondentTitle,
		Department:      r.Department,
		ResponseDate:    r.ResponseDate,
		DocumentURL:     r.DocumentURL,
	}
}

type NewsRecord struct {
	ID           int    `json:"_id"`
	CreationTime int64  `json:"_creationTime"`
	Title        string `json:"title"`
	Content      string `json:"content,omitempty"`
	Category     string `json:"category,omitempty"`
	IsPublished  bool   `json:"isPublished"`
	PublishDate  int64  `json:"publishDate,omitempty"`
	AuthorID     int    `json:"authorId,omitempty"`
	ThumbnailURL string `json:"thumbnailUrl,omitempty"`
}

func (r NewsRecord) toModel() models.News {
	return models.News{
		Title:        r.Title,
		Content:      r.Content,
		Category:     r.Category,
		IsPublished:  r.IsPublished,
		PublishDate:  r.PublishDate,
		ThumbnailURL: r.ThumbnailURL,
	}
}

type SlideRecord struct {
	ID              int    `json:"_id"`
	CreationTime    int64  `json:"_creationTime"`
	Title           string `json:"title"`
	Description     string `json:"description,omitempty"`
	ImageURL        string `json:"imageUrl,omitempty"`
	LinkURL         string `json:"linkUrl,omitempty"`
	BackgroundColor string `json:"backgroundColor,omitempty"`
	SortOrder       int    `json:"sortOrder,omitempty"`
	IsActive        bool   `json:"isActive"`
	CreatedBy       int    `json:"createdBy,omitempty"`
	UpdatedBy       int    `json:"updatedBy,omitempty"`
}

func (r SlideRecord) toModel() models.SlideshowSlide {
	return models.SlideshowSlide{
		Title:           r.Title,
		Description:     r.Description,
		ImageURL:        r.ImageURL,
		LinkURL:         r.LinkURL,
		BackgroundColor: r.BackgroundColor,
		SortOrder:       r.SortOrder,
		IsActive:        r.IsActive,
		UpdatedBy:       r.UpdatedBy,
	}
}

type FAQRecord struct {
	ID           int    `json:"_id"`
	CreationTime int64  `json:"_creationTime"`
	Category     string `json:"category,omitempty"`
	Question     string `json:"question"`
	Answer       string `json:"answer,omitempty"`
	IsPublished  bool   `json:"isPublished"`
	SortOrder    int    `json:"sortOrder,omitempty"`
	CreatedBy    int    `json:"createdBy,omitempty"`
	CreatedAt    int64  `json:"createdAt,omitempty"`
}

func (r FAQRecord) toModel() models.FAQItem {
	return models.FAQItem{
		// a zero CreatedAt gets stamped with the current time on insert
		CreatedAt:   r.CreatedAt,
		Category:    r.Category,
		Question:    r.Question,
		Answer:      r.Answer,
		IsPublished: r.IsPublished,
		SortOrder:   r.SortOrder,
	}
}

type ContactRecord struct {
	ID           int    `json:"_id"`
	CreationTime int64  `json:"_creationTime"`
	Name         string `json:"name,omitempty"`
	Email        string `json:"email,omitempty"`
	Subject      string `json:"subject,omitempty"`
	Message      string `json:"message,omitempty"`
	IsRead       bool   `json:"isRead"`
}

func (r ContactRecord) toModel() models.ContactMessage {
	return models.ContactMessage{
		Name:    r.Name,
		Email:   r.Email,
		Subject: r.Subject,
		Message: r.Message,
		IsRead:  r.IsRead,
	}
}

type DemographicRecord struct {
	ID           int    `json:"_id"`
	CreationTime int64  `json:"_creationTime"`
	UserID       int    `json:"userId,omitempty"`
	AgeGroup     string `json:"ageGroup,omitempty"`
	Gender       string `json:"gender,omitempty"`
	Region       string `json:"region,omitempty"`
	RegisteredAt int64  `json:"registeredAt,omitempty"`
}

func (r DemographicRecord) toModel() models.UserDemographic {
	return models.UserDemographic{
		UserID:       r.UserID,
		AgeGroup:     r.AgeGroup,
		Gender:       r.Gender,
		Region:       r.Region,
		RegisteredAt: r.RegisteredAt,
	}
}

type LikeRecord struct {
	ID           int   `json:"_id"`
	CreationTime int64 `json:"_creationTime"`
	UserID       int   `json:"userId,omitempty"`
	QuestionID   int   `json:"questionId,omitempty"`
}

// ImportOptions mirrors the options object sent by the admin panel.
type ImportOptions struct {
	ClearExistingData bool `json:"clearExistingData"`
	SkipDuplicates    bool `json:"skipDuplicates"`
}

type TableStats struct {
	Imported int `json:"imported"`
	Skipped  int `json:"skipped"`
}

// Stats counts the outcome of one import run, per table.
type Stats struct {
	CouncilMembers   TableStats `json:"councilMembers"`
	Questions        TableStats `json:"questions"`
	Responses        TableStats `json:"responses"`
	News             TableStats `json:"news"`
	SlideshowSlides  TableStats `json:"slideshowSlides"`
	FAQItems         TableStats `json:"faqItems"`
	ContactMessages  TableStats `json:"contactMessages"`
	UserDemographics TableStats `json:"userDemographics"`
	Likes            TableStats `json:"likes"`
}

type ImportResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Stats   *Stats `json:"stats"`
}
