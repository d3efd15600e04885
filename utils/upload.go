package utils

import (
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"edutrack/errs"

	"github.com/google/uuid"
)

// MaxUploadSize bounds a single uploaded document.
const MaxUploadSize = 10 << 20

// Upload folders under the upload root.
const (
	FolderPaymentProof = "registration_payment"
	FolderCertificate  = "certificate_files"
	FolderUserCert     = "user_certificate_files"
)

var allowedUploadTypes = map[string]bool{
	"image/jpeg":         true,
	"image/jpg":          true,
	"image/png":          true,
	"image/heic":         true,
	"image/webp":         true,
	"application/pdf":    true,
	"application/msword": true,
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": true,
	"application/zip":              true,
	"application/x-rar-compressed": true,
}

// Uploads is where uploaded documents are written and how they are addressed.
type Uploads struct {
	Dir     string
	BaseURL string
}

// CheckUpload rejects files that are too large or of an unsupported type.
func CheckUpload(file *multipart.FileHeader) error {
	if file.Size > MaxUploadSize {
		return errs.Validation("File size exceeds 10MB limit")
	}
	contentType := strings.ToLower(strings.TrimSpace(strings.SplitN(file.Header.Get("Content-Type"), ";", 2)[0]))
	if !allowedUploadTypes[contentType] {
		return errs.Validation("Only image, PDF, DOCX, or ZIP files are allowed")
	}
	return nil
}

// Save writes file under folder and returns its public URL.
func (u Uploads) Save(file *multipart.FileHeader, folder string) (string, error) {
	if err := CheckUpload(file); err != nil {
		return "", err
	}

	src, err := file.Open()
	if err != nil {
		return "", errs.Storage(err)
	}
	defer src.Close()

	destDir := filepath.Join(u.Dir, folder)
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return "", errs.Storage(err)
	}

	ext := strings.ToLower(filepath.Ext(file.Filename))
	name := fmt.Sprintf("%s-%s%s", time.Now().Format("20060102150405"), uuid.NewString()[:8], ext)
	dst, err := os.Create(filepath.Join(destDir, name))
	if err != nil {
		return "", errs.Storage(err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return "", errs.Storage(err)
	}
	return u.URL(path.Join(folder, name)), nil
}

// URL maps a path relative to the upload root to its public address.
func (u Uploads) URL(rel string) string {
	base := strings.TrimRight(u.BaseURL, "/")
	if base == "" {
		base = "/uploads"
	}
	return base + "/" + strings.TrimLeft(rel, "/")
}
