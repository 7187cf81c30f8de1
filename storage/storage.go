package storage

import (
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"gikai/admin"
	"gikai/models"

	"github.com/cespare/xxhash/v2"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// StorageModule keeps uploaded blobs on local disk and hands out stable
// opaque ids. Content is addressed by an xxhash of the bytes, so uploading
// the same file twice yields the same id.
type StorageModule struct {
	db        *gorm.DB
	gate      *admin.Gate
	uploadDir string
}

func NewStorageModule(db *gorm.DB, gate *admin.Gate) *StorageModule {
	dir := os.Getenv("UPLOAD_DIR")
	if dir == "" {
		dir = "./uploads"
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		log.Printf("Error creating upload dir %s: %v", dir, err)
	}
	return &StorageModule{db: db, gate: gate, uploadDir: dir}
}

func (m *StorageModule) UploadDir() string {
	return m.uploadDir
}

func (m *StorageModule) RegisterRoutes(router *gin.Engine) {
	router.GET("/api/storage/:id", m.redirect)

	grp := router.Group("/api/admin/images")
	grp.Use(m.gate.RequireAuth, m.gate.RequireAdmin)
	{
		grp.POST("", m.upload)
		grp.GET("", m.list)
		grp.DELETE("/:id", m.remove)
	}
}

// FileURL is the public address of a stored file.
func FileURL(id string) string {
	return "/api/storage/" + id
}

// IDFromURL extracts a stored-file id from a public file URL, returning ""
// when the URL does not point into the store.
func IDFromURL(url string) string {
	idx := strings.Index(url, "/api/storage/")
	if idx < 0 {
		return ""
	}
	return url[idx+len("/api/storage/"):]
}

// Save writes an uploaded file to disk and records it. Re-uploading
// identical content returns the existing record.
func (m *StorageModule) Save(fileHeader *multipart.FileHeader) (*models.StoredFile, error) {
	src, err := fileHeader.Open()
	if err != nil {
		return nil, err
	}
	defer src.Close()

	content, err := io.ReadAll(src)
	if err != nil {
		return nil, err
	}

	id := fmt.Sprintf("%016x", xxhash.Sum64(content))

	var existing models.StoredFile
	if err := m.db.First(&existing, "id = ?", id).Error; err == nil {
		return &existing, nil
	}

	name := id + filepath.Ext(fileHeader.Filename)
	if err := os.WriteFile(filepath.Join(m.uploadDir, name), content, 0o644); err != nil {
		return nil, err
	}

	contentType := fileHeader.Header.Get("Content-Type")
	file := models.StoredFile{
		ID:          id,
		Filename:    fileHeader.Filename,
		ContentType: contentType,
		Size:        int64(len(content)),
		Path:        name,
	}
	if err := m.db.Create(&file).Error; err != nil {
		os.Remove(filepath.Join(m.uploadDir, name))
		return nil, err
	}
	return &file, nil
}

// Delete removes a stored file from disk and from the table. Unknown ids
// are not an error, callers clean up references opportunistically.
func (m *StorageModule) Delete(id string) {
	if id == "" {
		return
	}
	var file models.StoredFile
	if err := m.db.First(&file, "id = ?", id).Error; err != nil {
		return
	}
	if err := os.Remove(filepath.Join(m.uploadDir, file.Path)); err != nil && !os.IsNotExist(err) {
		log.Printf("Error removing stored file %s: %v", id, err)
	}
	m.db.Delete(&file)
}

func (m *StorageModule) redirect(c *gin.Context) {
	id := c.Param("id")
	var file models.StoredFile
	if err := m.db.First(&file, "id = ?", id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "ファイルが見つかりません"})
		return
	}
	c.Redirect(http.StatusFound, "/uploads/"+file.Path)
}

func (m *StorageModule) upload(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ファイルが必要です"})
		return
	}
	if !strings.HasPrefix(fileHeader.Header.Get("Content-Type"), "image/") {
		c.JSON(http.StatusBadRequest, gin.H{"error": "画像ファイルのみアップロードできます"})
		return
	}

	file, err := m.Save(fileHeader)
	if err != nil {
		log.Printf("upload failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "アップロードに失敗しました"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"id":       file.ID,
		"url":      FileURL(file.ID),
		"filename": file.Filename,
		"size":     file.Size,
	})
}

func (m *StorageModule) list(c *gin.Context) {
	var files []models.StoredFile
	if err := m.db.Where("content_type LIKE ?", "image/%").Order("created_at desc").Find(&files).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "一覧の取得に失敗しました"})
		return
	}

	type imageInfo struct {
		models.StoredFile
		URL string `json:"url"`
	}
	result := make([]imageInfo, 0, len(files))
	for _, file := range files {
		result = append(result, imageInfo{StoredFile: file, URL: FileURL(file.ID)})
	}
	c.JSON(http.StatusOK, result)
}

func (m *StorageModule) remove(c *gin.Context) {
	id := c.Param("id")
	var file models.StoredFile
	if err := m.db.First(&file, "id = ?", id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "ファイルが見つかりません"})
		return
	}
	m.Delete(id)
	c.JSON(http.StatusOK, gin.H{"message": "ファイルを削除しました"})
}
