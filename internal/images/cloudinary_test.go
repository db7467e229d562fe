package images_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vagaroute/backend/internal/domain"
	"github.com/vagaroute/backend/internal/images"
)

func TestUploader_Upload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(1<<20))

		assert.Equal(t, "vagaroute", r.FormValue("upload_preset"))

		file, header, err := r.FormFile("file")
		require.NoError(t, err)
		defer file.Close()

		assert.Equal(t, "profile.jpg", header.Filename)
		data, err := io.ReadAll(file)
		require.NoError(t, err)
		assert.Equal(t, "fake-jpeg-bytes", string(data))

		w.Write([]byte(`{"secure_url": "https://res.example.com/image/upload/abc.jpg"}`))
	}))
	defer srv.Close()

	u := images.NewUploader(srv.URL, "vagaroute", srv.Client())

	url, err := u.Upload(context.Background(), "profile.jpg", strings.NewReader("fake-jpeg-bytes"))

	require.NoError(t, err)
	assert.Equal(t, "https://res.example.com/image/upload/abc.jpg", url)
}

func TestUploader_Upload_MissingURLInResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"error": {"message": "Upload preset not found"}}`))
	}))
	defer srv.Close()

	u := images.NewUploader(srv.URL, "vagaroute", srv.Client())

	_, err := u.Upload(context.Background(), "profile.jpg", strings.NewReader("x"))

	assert.ErrorIs(t, err, domain.ErrUpstream)
}

func TestUploader_Upload_UpstreamStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	u := images.NewUploader(srv.URL, "vagaroute", srv.Client())

	_, err := u.Upload(context.Background(), "profile.jpg", strings.NewReader("x"))

	assert.ErrorIs(t, err, domain.ErrUpstream)
}
