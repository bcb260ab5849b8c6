package storage

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	infraconfig "github.com/rst/farmcontrol/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type recordedRequest struct {
	Method      string
	Path        string
	ContentType string
	ACL         string
	Body        string
}

func newRecordingServer(t *testing.T, respond func(w http.ResponseWriter, r *http.Request)) (*httptest.Server, func() []recordedRequest) {
	t.Helper()
	var (
		mu   sync.Mutex
		reqs []recordedRequest
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		mu.Lock()
		reqs = append(reqs, recordedRequest{
			Method:      r.Method,
			Path:        r.URL.Path,
			ContentType: r.Header.Get("Content-Type"),
			ACL:         r.Header.Get("x-amz-acl"),
			Body:        string(body),
		})
		mu.Unlock()
		respond(w, r)
	}))
	t.Cleanup(srv.Close)
	return srv, func() []recordedRequest {
		mu.Lock()
		defer mu.Unlock()
		return append([]recordedRequest(nil), reqs...)
	}
}

func TestNewS3ObjectStorage_Validation(t *testing.T) {
	ctx := context.Background()
	tests := []struct {
		name    string
		cfg     *infraconfig.StorageConfig
		wantErr string
	}{
		{"nil config", nil, "configuration is required"},
		{"missing bucket", &infraconfig.StorageConfig{}, "bucket is required"},
		{"access key without secret", &infraconfig.StorageConfig{Bucket: "b", AccessKeyID: "k"}, "must be set together"},
		{"secret without access key", &infraconfig.StorageConfig{Bucket: "b", SecretAccessKey: "s"}, "must be set together"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewS3ObjectStorage(ctx, tt.cfg)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestS3ObjectStorage_PublicURL(t *testing.T) {
	ctx := context.Background()
	tests := []struct {
		name string
		cfg  infraconfig.StorageConfig
		want string
	}{
		{
			name: "aws virtual hosted",
			cfg:  infraconfig.StorageConfig{Bucket: "rst-notas", Region: "sa-east-1"},
			want: "https://rst-notas.s3.sa-east-1.amazonaws.com/notas_fiscais/a.pdf",
		},
		{
			name: "default region",
			cfg:  infraconfig.StorageConfig{Bucket: "rst-notas"},
			want: "https://rst-notas.s3.us-east-1.amazonaws.com/notas_fiscais/a.pdf",
		},
		{
			name: "path style endpoint",
			cfg:  infraconfig.StorageConfig{Bucket: "rst-notas", Endpoint: "http://minio:9000/", UsePathStyle: true},
			want: "http://minio:9000/rst-notas/notas_fiscais/a.pdf",
		},
		{
			name: "endpoint without scheme",
			cfg:  infraconfig.StorageConfig{Bucket: "rst-notas", Endpoint: "r2.example.com"},
			want: "https://rst-notas.r2.example.com/notas_fiscais/a.pdf",
		},
		{
			name: "public base wins",
			cfg:  infraconfig.StorageConfig{Bucket: "rst-notas", Endpoint: "http://minio:9000", PublicBaseURL: "https://cdn.rst.farm/"},
			want: "https://cdn.rst.farm/notas_fiscais/a.pdf",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.cfg.AccessKeyID = "key"
			tt.cfg.SecretAccessKey = "secret"
			s, err := NewS3ObjectStorage(ctx, &tt.cfg)
			require.NoError(t, err)
			assert.Equal(t, tt.want, s.PublicURL("notas_fiscais/a.pdf"))
			assert.Equal(t, "rst-notas", s.Bucket())
		})
	}
}

func TestS3ObjectStorage_Upload(t *testing.T) {
	ctx := context.Background()

	t.Run("puts object with public acl", func(t *testing.T) {
		srv, requests := newRecordingServer(t, func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusOK)
		})
		s, err := NewS3ObjectStorage(ctx, &infraconfig.StorageConfig{
			Bucket:          "rst-notas",
			Endpoint:        srv.URL,
			UsePathStyle:    true,
			AccessKeyID:     "key",
			SecretAccessKey: "secret",
		}, WithLogger(zaptest.NewLogger(t)))
		require.NoError(t, err)

		url, err := s.Upload(ctx, "notas_fiscais/20260312_101500_abcd1234.pdf", "application/pdf", []byte("%PDF-1.4 nota"))
		require.NoError(t, err)
		assert.Equal(t, srv.URL+"/rst-notas/notas_fiscais/20260312_101500_abcd1234.pdf", url)

		reqs := requests()
		require.Len(t, reqs, 1)
		assert.Equal(t, http.MethodPut, reqs[0].Method)
		assert.Equal(t, "/rst-notas/notas_fiscais/20260312_101500_abcd1234.pdf", reqs[0].Path)
		assert.Equal(t, "application/pdf", reqs[0].ContentType)
		assert.Equal(t, "public-read", reqs[0].ACL)
		assert.Contains(t, reqs[0].Body, "%PDF-1.4 nota")
	})

	t.Run("server error is wrapped", func(t *testing.T) {
		srv, _ := newRecordingServer(t, func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "application/xml")
			w.WriteHeader(http.StatusForbidden)
			_, _ = io.WriteString(w, `<?xml version="1.0" encoding="UTF-8"?><Error><Code>AccessDenied</Code><Message>denied</Message></Error>`)
		})
		s, err := NewS3ObjectStorage(ctx, &infraconfig.StorageConfig{
			Bucket:          "rst-notas",
			Endpoint:        srv.URL,
			UsePathStyle:    true,
			AccessKeyID:     "key",
			SecretAccessKey: "secret",
		})
		require.NoError(t, err)

		_, err = s.Upload(ctx, "notas_fiscais/x.png", "image/png", []byte{0x89})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to upload object notas_fiscais/x.png")
	})

	t.Run("empty key", func(t *testing.T) {
		s, err := NewS3ObjectStorage(ctx, &infraconfig.StorageConfig{Bucket: "b", AccessKeyID: "k", SecretAccessKey: "s"})
		require.NoError(t, err)
		_, err = s.Upload(ctx, "", "image/png", []byte{1})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "storage key is required")
	})
}

func TestGCSObjectStorage_Upload(t *testing.T) {
	ctx := context.Background()
	srv, requests := newRecordingServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if r.URL.Query().Get("uploadType") == "resumable" {
			w.Header().Set("Location", "http://"+r.Host+"/upload/session")
			w.WriteHeader(http.StatusOK)
			return
		}
		_, _ = io.WriteString(w, `{"bucket":"rst-notas","name":"notas_fiscais/a.jpg","size":"4"}`)
	})
	t.Setenv("STORAGE_EMULATOR_HOST", strings.TrimPrefix(srv.URL, "http://"))

	s, err := NewGCSObjectStorage(ctx, &infraconfig.StorageConfig{Bucket: "rst-notas"}, zaptest.NewLogger(t))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	url, err := s.Upload(ctx, "notas_fiscais/a.jpg", "image/jpeg", []byte("jpeg"))
	require.NoError(t, err)
	assert.Equal(t, "https://storage.googleapis.com/rst-notas/notas_fiscais/a.jpg", url)

	reqs := requests()
	require.NotEmpty(t, reqs)
	assert.Contains(t, reqs[0].Path, "/b/rst-notas/o")
	assert.Contains(t, reqs[len(reqs)-1].Body, "jpeg")
}

func TestNewGCSObjectStorage_Validation(t *testing.T) {
	_, err := NewGCSObjectStorage(context.Background(), &infraconfig.StorageConfig{}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bucket is required")
}

func TestGCSObjectStorage_PublicBaseURL(t *testing.T) {
	t.Setenv("STORAGE_EMULATOR_HOST", "localhost:1")
	s, err := NewGCSObjectStorage(context.Background(), &infraconfig.StorageConfig{
		Bucket:        "rst-notas",
		PublicBaseURL: "https://firebasestorage.example/rst/",
	}, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	assert.Equal(t, "https://firebasestorage.example/rst/k.pdf", s.PublicURL("k.pdf"))
}

func TestStubObjectStorage(t *testing.T) {
	ctx := context.Background()
	s := NewStubObjectStorage("https://storage.firebase.com/placeholder/")

	url, err := s.Upload(ctx, "notas_fiscais/a.png", "image/png", []byte{1, 2, 3})
	require.NoError(t, err)
	assert.Equal(t, "https://storage.firebase.com/placeholder/notas_fiscais/a.png", url)

	obj, ok := s.Object("notas_fiscais/a.png")
	require.True(t, ok)
	assert.Equal(t, "image/png", obj.ContentType)
	assert.Equal(t, []byte{1, 2, 3}, obj.Data)
	assert.Equal(t, 1, s.Len())

	_, err = s.Upload(ctx, "", "image/png", nil)
	assert.Error(t, err)

	boom := errors.New("bucket unavailable")
	s.FailWith(boom)
	_, err = s.Upload(ctx, "notas_fiscais/b.png", "image/png", []byte{1})
	assert.ErrorIs(t, err, boom)
	s.FailWith(nil)

	assert.Equal(t, "https://storage.example.com", NewStubObjectStorage("").BaseURL)
	assert.NoError(t, s.Close())
}

func TestNew(t *testing.T) {
	ctx := context.Background()
	logger := zaptest.NewLogger(t)

	t.Run("stub", func(t *testing.T) {
		b, err := New(ctx, infraconfig.StorageConfig{Provider: infraconfig.StorageStub, PlaceholderBaseURL: "https://p"}, logger)
		require.NoError(t, err)
		assert.IsType(t, &StubObjectStorage{}, b)
	})

	t.Run("s3", func(t *testing.T) {
		b, err := New(ctx, infraconfig.StorageConfig{Provider: infraconfig.StorageS3, Bucket: "b", AccessKeyID: "k", SecretAccessKey: "s"}, logger)
		require.NoError(t, err)
		assert.IsType(t, &S3ObjectStorage{}, b)
		assert.NoError(t, b.Close())
	})

	t.Run("unknown provider", func(t *testing.T) {
		_, err := New(ctx, infraconfig.StorageConfig{Provider: "ftp"}, logger)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unknown storage provider")
	})
}
