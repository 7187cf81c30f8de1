package storage

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"gikai/admin"
	"gikai/models"

	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTestModule(t *testing.T) (*StorageModule, *gorm.DB) {
	t.Setenv("UPLOAD_DIR", t.TempDir())

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	assert.NoError(t, err)
	assert.NoError(t, db.AutoMigrate(&models.User{}, &models.AdminUser{}, &models.StoredFile{}))

	return NewStorageModule(db, admin.NewGate(db)), db
}

func makeFileHeader(t *testing.T, filename string, content []byte) *multipart.FileHeader {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", filename)
	assert.NoError(t, err)
	_, err = fw.Write(content)
	assert.NoError(t, err)
	assert.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	_, fileHeader, err := req.FormFile("file")
	assert.NoError(t, err)
	return fileHeader
}

func TestFileURLRoundTrip(t *testing.T) {
	url := FileURL("abc123")
	assert.Equal(t, "/api/storage/abc123", url)
	assert.Equal(t, "abc123", IDFromURL(url))
	assert.Equal(t, "abc123", IDFromURL("https://example.com/api/storage/abc123"))
	assert.Equal(t, "", IDFromURL("https://example.com/pic.png"))
}

func TestSaveIsContentAddressed(t *testing.T) {
	m, db := setupTestModule(t)

	first, err := m.Save(makeFileHeader(t, "photo.png", []byte("same bytes")))
	assert.NoError(t, err)
	assert.NotEmpty(t, first.ID)

	onDisk := filepath.Join(m.UploadDir(), first.Path)
	_, err = os.Stat(onDisk)
	assert.NoError(t, err)

	// identical content maps to the same record
	second, err := m.Save(makeFileHeader(t, "copy.png", []byte("same bytes")))
	assert.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	var count int64
	db.Model(&models.StoredFile{}).Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestDeleteRemovesDiskAndRow(t *testing.T) {
	m, db := setupTestModule(t)

	file, err := m.Save(makeFileHeader(t, "photo.png", []byte("bytes")))
	assert.NoError(t, err)
	onDisk := filepath.Join(m.UploadDir(), file.Path)

	m.Delete(file.ID)

	_, err = os.Stat(onDisk)
	assert.True(t, os.IsNotExist(err))
	var count int64
	db.Model(&models.StoredFile{}).Count(&count)
	assert.Zero(t, count)

	// deleting again is harmless
	m.Delete(file.ID)
	m.Delete("")
}
