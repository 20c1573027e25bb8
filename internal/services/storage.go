package services

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"alfredoptarigan/resume-matcher/internal/models"
)

// StorageService archives the raw uploaded resumes on disk.
type StorageService interface {
	EnsureUploadDir() error
	SaveUpload(candidateID uuid.UUID, fileType models.FileType, data []byte) (string, error)
	GetFilePath(candidateID uuid.UUID, fileType models.FileType) string
	DeleteUpload(candidateID uuid.UUID, fileType models.FileType) error
}

type storageService struct {
	uploadPath string
}

func NewStorageService(uploadPath string) StorageService {
	return &storageService{uploadPath: uploadPath}
}

func (s *storageService) EnsureUploadDir() error {
	if err := os.MkdirAll(s.uploadPath, 0o755); err != nil {
		return fmt.Errorf("failed to create upload directory: %w", err)
	}
	return nil
}

// SaveUpload writes data as <candidate_id>.<type> and returns the path.
func (s *storageService) SaveUpload(candidateID uuid.UUID, fileType models.FileType, data []byte) (string, error) {
	path := s.GetFilePath(candidateID, fileType)

	// Written to a temp file and renamed into place.
	tmp, err := os.CreateTemp(s.uploadPath, ".upload-*")
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return "", fmt.Errorf("failed to write upload: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return "", fmt.Errorf("failed to close upload: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return "", fmt.Errorf("failed to save upload: %w", err)
	}

	return path, nil
}

func (s *storageService) GetFilePath(candidateID uuid.UUID, fileType models.FileType) string {
	return filepath.Join(s.uploadPath, fmt.Sprintf("%s.%s", candidateID, fileType))
}

func (s *storageService) DeleteUpload(candidateID uuid.UUID, fileType models.FileType) error {
	if err := os.Remove(s.GetFilePath(candidateID, fileType)); err != nil {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}
