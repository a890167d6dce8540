package supabase

import (
	"bytes"
	"fmt"
	"path"
	"strings"

	"github.com/google/uuid"
	storage "github.com/supabase-community/storage-go"
)

type StorageClient struct {
	client  *storage.Client
	bucket  string
	baseURL string
}

func NewStorageClient(supabaseURL, serviceRoleKey, bucket string) *StorageClient {
	baseURL := strings.TrimRight(supabaseURL, "/")
	return &StorageClient{
		client:  storage.NewClient(baseURL+"/storage/v1", serviceRoleKey, nil),
		bucket:  bucket,
		baseURL: baseURL,
	}
}

// UploadAvatar stores the image under users/{user_id}/cards/{card_id}/ and
// returns its public URL. Re-uploads overwrite.
func (s *StorageClient) UploadAvatar(userID, cardID uuid.UUID, filename, contentType string, data []byte) (string, error) {
	storagePath := fmt.Sprintf("users/%s/cards/%s/avatar%s", userID, cardID, strings.ToLower(path.Ext(filename)))

	upsert := true
	_, err := s.client.UploadFile(s.bucket, storagePath, bytes.NewReader(data), storage.FileOptions{
		ContentType: &contentType,
		Upsert:      &upsert,
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload avatar: %w", err)
	}

	return s.PublicURL(storagePath), nil
}

func (s *StorageClient) PublicURL(storagePath string) string {
	return fmt.Sprintf("%s/storage/v1/object/public/%s/%s", s.baseURL, s.bucket, storagePath)
}

// DeleteCardFiles removes everything stored for a card. Missing files are not an error.
func (s *StorageClient) DeleteCardFiles(userID, cardID uuid.UUID) error {
	prefix := fmt.Sprintf("users/%s/cards/%s/", userID, cardID)

	files, err := s.client.ListFiles(s.bucket, prefix, storage.FileSearchOptions{Limit: 100})
	if err != nil {
		return fmt.Errorf("failed to list card files: %w", err)
	}
	if len(files) == 0 {
		return nil
	}

	paths := make([]string, len(files))
	for i, file := range files {
		paths[i] = prefix + file.Name
	}
	if _, err := s.client.RemoveFile(s.bucket, paths); err != nil {
		return fmt.Errorf("failed to delete card files: %w", err)
	}
	return nil
}
