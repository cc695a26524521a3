package storage

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStore(t *testing.T) {
	dir := t.TempDir()
	s := NewLocalStore(dir, "http://localhost:3000/uploads/")

	url, err := s.Store(context.Background(), []byte("hello"), "../../Essay.PDF")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(url, "http://localhost:3000/uploads/"))
	assert.True(t, strings.HasSuffix(url, ".pdf"))

	name := filepath.Base(url)
	data, err := os.ReadFile(filepath.Join(dir, name))
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))
}

func TestHTTPStore(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer tkn", r.Header.Get("Authorization"))
		f, hdr, err := r.FormFile("file")
		require.NoError(t, err)
		body, _ := io.ReadAll(f)
		assert.Equal(t, "data", string(body))
		assert.True(t, strings.HasSuffix(hdr.Filename, ".docx"))
		_ = json.NewEncoder(w).Encode(map[string]string{"url": "https://cdn.example.com/x.docx"})
	}))
	defer srv.Close()

	url, err := NewHTTPStore(srv.URL, "tkn").Store(context.Background(), []byte("data"), "work.docx")
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/x.docx", url)
}

func TestHTTPStoreError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "disk full", http.StatusInsufficientStorage)
	}))
	defer srv.Close()

	_, err := NewHTTPStore(srv.URL, "").Store(context.Background(), []byte("data"), "a.pdf")
	assert.Error(t, err)
}

func TestS3Store(t *testing.T) {
	var gotPath, gotMethod string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath, gotMethod = r.URL.Path, r.Method
		_, _ = io.Copy(io.Discard, r.Body)
		w.Header().Set("ETag", `"abc"`)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	s, err := NewS3Store(context.Background(), Config{
		S3Endpoint: srv.URL, S3Region: "us-east-1", S3Bucket: "certs",
		S3AccessKeyID: "AKID", S3SecretKey: "SECRET",
	})
	require.NoError(t, err)

	url, err := s.Store(context.Background(), []byte("%PDF-1.4"), "cert.pdf")
	require.NoError(t, err)
	assert.Equal(t, http.MethodPut, gotMethod)
	assert.True(t, strings.HasPrefix(gotPath, "/certs/uploads/"))
	assert.True(t, strings.HasPrefix(url, srv.URL+"/certs/uploads/"))
}

func TestNewRejectsUnknownBackend(t *testing.T) {
	_, err := New(context.Background(), Config{Backend: "ftp"})
	assert.Error(t, err)

	_, err = New(context.Background(), Config{Backend: "http"})
	assert.Error(t, err)

	s, err := New(context.Background(), Config{Backend: "local", UploadDir: t.TempDir(), Origin: "http://x", PublicPath: "/uploads"})
	require.NoError(t, err)
	assert.IsType(t, &LocalStore{}, s)
}
