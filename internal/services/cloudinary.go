package services

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"path"
	"regexp"
	"strings"
	"time"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

// MaxUploadSize caps image uploads.
const MaxUploadSize = 10 << 20

// mediaFolders maps an upload purpose to its storage folder.
var mediaFolders = map[string]string{
	"spot":   "catchlog/spots",
	"catch":  "catchlog/catches",
	"avatar": "catchlog/avatars",
}

// MediaFolder resolves the folder for an upload purpose.
func MediaFolder(purpose string) (string, bool) {
	folder, ok := mediaFolders[strings.ToLower(strings.TrimSpace(purpose))]
	return folder, ok
}

var unsafeNameChars = regexp.MustCompile(`[^a-zA-Z0-9._-]+`)

// objectKey builds a unique, URL-safe storage key for fileName in folder.
func objectKey(folder, fileName string, now time.Time) string {
	name := unsafeNameChars.ReplaceAllString(path.Base(strings.ReplaceAll(fileName, `\`, "/")), "_")
	if name == "" || name == "." || name == "/" {
		name = "upload"
	}
	return folder + "/" + now.UTC().Format("20060102150405") + "-" + name
}

// CloudinaryService uploads spot images and catch photos.
type CloudinaryService struct {
	cld *cloudinary.Cloudinary
}

func NewCloudinaryService(cloudName, apiKey, apiSecret string) (*CloudinaryService, error) {
	cld, err := cloudinary.NewFromParams(cloudName, apiKey, apiSecret)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Cloudinary: %w", err)
	}

	return &CloudinaryService{
		cld: cld,
	}, nil
}

func (s *CloudinaryService) UploadFile(ctx context.Context, file multipart.File, folder string) (string, error) {
	fileBytes, err := io.ReadAll(io.LimitReader(file, MaxUploadSize+1))
	if err != nil {
		return "", fmt.Errorf("failed to read file: %w", err)
	}
	if len(fileBytes) > MaxUploadSize {
		return "", fmt.Errorf("file exceeds %d bytes", MaxUploadSize)
	}

	uploadResult, err := s.cld.Upload.Upload(ctx, fileBytes, uploader.UploadParams{
		Folder:       folder,
		ResourceType: "image",
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload to Cloudinary: %w", err)
	}

	return uploadResult.SecureURL, nil
}

func (s *CloudinaryService) UploadFileFromHeader(ctx context.Context, fileHeader *multipart.FileHeader, folder string) (string, error) {
	file, err := fileHeader.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	return s.UploadFile(ctx, file, folder)
}
