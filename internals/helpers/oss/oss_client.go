// internals/helpers/oss/oss_client.go
package helper

import (
	"fmt"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/aliyun/aliyun-oss-go-sdk/oss"
	"github.com/google/uuid"
)

/* ==============================
   OSS client (upload bukti transfer dsb.)
============================== */

type OSSService struct {
	Bucket    *oss.Bucket
	BaseURL   string
	KeyPrefix string
}

func getEnv(k string) string { return strings.TrimSpace(os.Getenv(k)) }

// NewOSSServiceFromEnv membuat service upload dari ENV:
// OSS_ENDPOINT, OSS_ACCESS_KEY_ID, OSS_ACCESS_KEY_SECRET, OSS_BUCKET, OSS_PUBLIC_BASE_URL
func NewOSSServiceFromEnv() (*OSSService, error) {
	endpoint := getEnv("OSS_ENDPOINT")
	keyID := getEnv("OSS_ACCESS_KEY_ID")
	keySecret := getEnv("OSS_ACCESS_KEY_SECRET")
	bucketName := getEnv("OSS_BUCKET")
	if endpoint == "" || keyID == "" || keySecret == "" || bucketName == "" {
		return nil, fmt.Errorf("OSS env belum lengkap (OSS_ENDPOINT/OSS_ACCESS_KEY_ID/OSS_ACCESS_KEY_SECRET/OSS_BUCKET)")
	}

	client, err := oss.New(endpoint, keyID, keySecret)
	if err != nil {
		return nil, fmt.Errorf("init OSS client: %w", err)
	}
	bucket, err := client.Bucket(bucketName)
	if err != nil {
		return nil, fmt.Errorf("open OSS bucket: %w", err)
	}

	baseURL := getEnv("OSS_PUBLIC_BASE_URL")
	if baseURL == "" {
		baseURL = fmt.Sprintf("https://%s.%s", bucketName, endpoint)
	}

	return &OSSService{
		Bucket:    bucket,
		BaseURL:   strings.TrimRight(baseURL, "/"),
		KeyPrefix: getEnvDefault("OSS_KEY_PREFIX", "uploads"),
	}, nil
}

// UploadFromFormFile mengunggah satu file multipart, balikin URL publik.
func (s *OSSService) UploadFromFormFile(fh *multipart.FileHeader, dir string) (string, error) {
	if fh == nil {
		return "", fmt.Errorf("file kosong")
	}
	src, err := fh.Open()
	if err != nil {
		return "", fmt.Errorf("buka file: %w", err)
	}
	defer src.Close()

	ext := strings.ToLower(filepath.Ext(fh.Filename))
	if ext == "" {
		ext = ".bin"
	}
	key := fmt.Sprintf("%s/%s/%s-%s%s",
		s.KeyPrefix,
		strings.Trim(dir, "/"),
		time.Now().Format("20060102"),
		uuid.New().String()[:8],
		ext,
	)

	if err := s.Bucket.PutObject(key, src); err != nil {
		return "", fmt.Errorf("upload OSS: %w", err)
	}
	return s.BaseURL + "/" + key, nil
}

func getEnvDefault(k, def string) string {
	if v := getEnv(k); v != "" {
		return v
	}
	return def
}
