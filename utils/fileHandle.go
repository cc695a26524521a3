package utils

import (
	"fmt"
	"io"
	"mime/multipart"
	"path/filepath"
)

// ReadUploadedFile loads a multipart upload into memory and returns it with a
// sanitized base name for use as a storage hint.
func ReadUploadedFile(file *multipart.FileHeader, maxBytes int64) ([]byte, string, error) {
	src, err := file.Open()
	if err != nil {
		return nil, "", err
	}
	defer src.Close()

	reader := io.Reader(src)
	if maxBytes > 0 {
		reader = io.LimitReader(src, maxBytes+1)
	}
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, "", err
	}
	if maxBytes > 0 && int64(len(data)) > maxBytes {
		return nil, "", fmt.Errorf("upload exceeds %d bytes", maxBytes)
	}
	return data, filepath.Base(filepath.Clean("/" + file.Filename)), nil
}
