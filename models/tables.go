package models

import "time"

// Role values stored in AdminUser. A user with no AdminUser row has RoleUser.
const (
	RoleUser       = "user"
	RoleAdmin      = "admin"
	RoleSuperAdmin = "superAdmin"
)

// Question status values.
const (
	StatusPending  = "pending"
	StatusAnswered = "answered"
	StatusArchived = "archived"
)

type User struct {
	ID                     int       `gorm:"primary_key;autoIncrement" json:"id"`
	Name                   string    `json:"name"`
	Email                  string    `gorm:"unique;not null" json:"email"`
	PasswordHash           string    `gorm:"not null" json:"-"` // json:"-" prevents password from being exposed in API
	EmailVerified          bool      `gorm:"default:false" json:"email_verified"`
	EmailVerificationToken string    `json:"-"`
	CreatedAt              time.Time `json:"created_at"`
}

// AdminUser maps a User to an elevated role. Absence of a row means the
// default "user" role.
type AdminUser struct {
	ID        int    `gorm:"primary_key;autoIncrement" json:"id"`
	UserID    int    `gorm:"uniqueIndex;not null" json:"user_id"`
	Role      string `gorm:"not null" json:"role"` // admin | superAdmin
	GrantedBy int    `json:"granted_by"`
	GrantedAt int64  `json:"granted_at"` // epoch ms
}

type CouncilMember struct {
	ID             int    `gorm:"primary_key;autoIncrement" json:"id"`
	CreatedAt      int64  `gorm:"autoCreateTime:milli" json:"created_at"`
	Name           string `gorm:"not null;index" json:"name"`
	Party          string `json:"party"`
	Position       string `json:"position"`
	PoliticalParty string `json:"political_party"`
	ElectionCount  int    `json:"election_count"`
	Committee      string `json:"committee"`
	Address        string `json:"address"`
	Phone          string `json:"phone"`
	Email          string `json:"email"`
	Website        string `json:"website"`
	Bio            string `gorm:"type:text" json:"bio"`
	PhotoURL       string `json:"photo_url"`
	TermStart      int64  `json:"term_start"` // epoch ms
	TermEnd        int64  `json:"term_end,omitempty"`
	IsActive       bool   `gorm:"default:true;index" json:"is_active"`
}

type Question struct {
	ID              int    `gorm:"primary_key;autoIncrement" json:"id"`
	CreatedAt       int64  `gorm:"autoCreateTime:milli" json:"created_at"`
	Title           string `gorm:"not null;index" json:"title"`
	Content         string `gorm:"type:text" json:"content"`
	Category        string `gorm:"index" json:"category"`
	CouncilMemberID int    `gorm:"not null;index" json:"council_member_id"`
	SessionDate     int64  `gorm:"index" json:"session_date"` // epoch ms
	SessionNumber   string `json:"session_number,omitempty"`
	Status          string `gorm:"default:pending" json:"status"` // pending | answered | archived
	YoutubeURL      string `json:"youtube_url,omitempty"`
	DocumentURL     string `json:"document_url,omitempty"`
}

type Response struct {
	ID              int    `gorm:"primary_key;autoIncrement" json:"id"`
	CreatedAt       int64  `gorm:"autoCreateTime:milli" json:"created_at"`
	QuestionID      int    `gorm:"not null;index" json:"question_id"`
	Content         string `gorm:"type:text" json:"content"`
	RespondentTitle string `json:"respondent_title"`
	Department      string `json:"department,omitempty"`
	ResponseDate    int64  `json:"response_date"` // epoch ms
	DocumentURL     string `json:"document_url,omitempty"`
}

type News struct {
	ID           int    `gorm:"primary_key;autoIncrement" json:"id"`
	CreatedAt    int64  `gorm:"autoCreateTime:milli" json:"created_at"`
	Title        string `gorm:"not null;index" json:"title"`
	Content      string `gorm:"type:text" json:"content"`
	Category     string `gorm:"index" json:"category"`
	IsPublished  bool   `gorm:"default:false;index" json:"is_published"`
	PublishDate  int64  `json:"publish_date"` // epoch ms
	AuthorID     int    `gorm:"not null;index" json:"author_id"`
	ThumbnailURL string `json:"thumbnail_url,omitempty"`
	ThumbnailID  string `json:"thumbnail_id,omitempty"` // stored-file reference
}

type SlideshowSlide struct {
	ID              int    `gorm:"primary_key;autoIncrement" json:"id"`
	CreatedAt       int64  `gorm:"autoCreateTime:milli" json:"created_at"`
	Title           string `gorm:"not null" json:"title"`
	Description     string `gorm:"type:text" json:"description"`
	ImageURL        string `json:"image_url,omitempty"`
	ImageID         string `json:"image_id,omitempty"` // stored-file reference
	LinkURL         string `json:"link_url,omitempty"`
	BackgroundColor string `json:"background_color"`
	SortOrder       int    `gorm:"index" json:"sort_order"`
	IsActive        bool   `gorm:"default:true" json:"is_active"`
	CreatedBy       int    `json:"created_by"`
	UpdatedBy       int    `json:"updated_by,omitempty"`
}

type FAQItem struct {
	ID          int    `gorm:"primary_key;autoIncrement" json:"id"`
	CreatedAt   int64  `gorm:"autoCreateTime:milli" json:"created_at"`
	Category    string `gorm:"index" json:"category"`
	Question    string `gorm:"not null;index" json:"question"`
	Answer      string `gorm:"type:text" json:"answer"`
	IsPublished bool   `gorm:"default:true" json:"is_published"`
	SortOrder   int    `json:"sort_order"`
	CreatedBy   int    `json:"created_by"`
}

type ContactMessage struct {
	ID        int    `gorm:"primary_key;autoIncrement" json:"id"`
	CreatedAt int64  `gorm:"autoCreateTime:milli" json:"created_at"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Subject   string `json:"subject"`
	Message   string `gorm:"type:text" json:"message"`
	IsRead    bool   `gorm:"default:false" json:"is_read"`
}

// Like is unique per (user, question).
type Like struct {
	ID         int   `gorm:"primary_key;autoIncrement" json:"id"`
	CreatedAt  int64 `gorm:"autoCreateTime:milli" json:"created_at"`
	UserID     int   `gorm:"not null;index;uniqueIndex:idx_user_question" json:"user_id"`
	QuestionID int   `gorm:"not null;index;uniqueIndex:idx_user_question" json:"question_id"`
}

// UserDemographic is unique per user.
type UserDemographic struct {
	ID           int    `gorm:"primary_key;autoIncrement" json:"id"`
	CreatedAt    int64  `gorm:"autoCreateTime:milli" json:"created_at"`
	UserID       int    `gorm:"uniqueIndex;not null" json:"user_id"`
	AgeGroup     string `json:"age_group"`
	Gender       string `json:"gender"`
	Region       string `json:"region"`
	RegisteredAt int64  `json:"registered_at"` // epoch ms
}

// StoredFile records a blob kept on local disk.
type StoredFile struct {
	ID          string    `gorm:"primary_key" json:"id"`
	Filename    string    `json:"filename"`
	ContentType string    `json:"content_type"`
	Size        int64     `json:"size"`
	Path        string    `json:"-"`
	CreatedAt   time.Time `json:"created_at"`
}
