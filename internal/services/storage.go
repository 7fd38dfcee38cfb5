package services

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"alfredoptarigan/intelliapply/internal/document"
)

var ErrInvalidFileName = errors.New("invalid file name")

// StorageService keeps uploaded resumes on disk, one directory per user.
type StorageService interface {
	SaveFile(userID string, file *multipart.FileHeader, kind string) (string, string, error)
	GetFilePath(userID, filename string) (string, error)
	DeleteFile(userID, filename string) error
	EnsureUploadDir() error
}

type storageService struct {
	uploadPath  string
	maxFileSize int64
}

func NewStorageService(uploadPath string, maxFileSize int64) StorageService {
	if maxFileSize <= 0 || maxFileSize > document.MaxUploadSize {
		maxFileSize = document.MaxUploadSize
	}
	return &storageService{
		uploadPath:  uploadPath,
		maxFileSize: maxFileSize,
	}
}

func (s *storageService) EnsureUploadDir() error {
	if err := os.MkdirAll(s.uploadPath, 0755); err != nil {
		return fmt.Errorf("failed to create upload directory: %w", err)
	}

	return nil
}

// SaveFile validates and stores the upload. It returns the stored file name and
// its full path.
func (s *storageService) SaveFile(userID string, file *multipart.FileHeader, kind string) (string, string, error) {
	if file.Size > s.maxFileSize {
		return "", "", document.ErrFileTooLarge
	}
	if err := document.ValidateUpload(file.Filename, file.Size); err != nil {
		return "", "", err
	}

	dir, err := s.userDir(userID)
	if err != nil {
		return "", "", err
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", "", fmt.Errorf("failed to create user directory: %w", err)
	}

	ext := strings.ToLower(filepath.Ext(file.Filename))
	uniqueFilename := fmt.Sprintf("%s_%s%s", kind, uuid.New().String(), ext)
	filePath := filepath.Join(dir, uniqueFilename)

	src, err := file.Open()
	if err != nil {
		return "", "", fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer src.Close()

	dst, err := os.Create(filePath)
	if err != nil {
		return "", "", fmt.Errorf("failed to create destination file: %w", err)
	}
	defer dst.Close()

	// the multipart header size is client supplied, so cap the copy too
	n, err := io.Copy(dst, io.LimitReader(src, s.maxFileSize+1))
	if err != nil {
		return "", "", fmt.Errorf("failed to save file: %w", err)
	}
	if n > s.maxFileSize {
		dst.Close()
		os.Remove(filePath)
		return "", "", document.ErrFileTooLarge
	}

	return uniqueFilename, filePath, nil
}

func (s *storageService) GetFilePath(userID, filename string) (string, error) {
	if filename == "" || filename != filepath.Base(filename) || strings.HasPrefix(filename, ".") {
		return "", ErrInvalidFileName
	}
	dir, err := s.userDir(userID)
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, filename), nil
}

func (s *storageService) DeleteFile(userID, filename string) error {
	filePath, err := s.GetFilePath(userID, filename)
	if err != nil {
		return err
	}
	if err := os.Remove(filePath); err != nil {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}

func (s *storageService) userDir(userID string) (string, error) {
	if userID == "" || userID != filepath.Base(userID) || strings.HasPrefix(userID, ".") {
		return "", ErrInvalidFileName
	}
	return filepath.Join(s.uploadPath, userID), nil
}
