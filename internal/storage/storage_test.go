package storage

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/templui/plateshare/internal/config"
)

func TestImgBB_Upload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "secret", r.FormValue("key"))

		file, header, err := r.FormFile("image")
		if assert.NoError(t, err) {
			data, _ := io.ReadAll(file)
			assert.Equal(t, "image-bytes", string(data))
			assert.True(t, strings.HasSuffix(header.Filename, ".png"))
		}

		_, _ = w.Write([]byte(`{"success":true,"status":200,"data":{"url":"https://i.ibb.co/x/pizza.png"}}`))
	}))
	t.Cleanup(srv.Close)

	u := NewImgBB("secret", srv.URL)
	url, err := u.Upload(context.Background(), "Pizza.PNG", strings.NewReader("image-bytes"))
	require.NoError(t, err)
	assert.Equal(t, "https://i.ibb.co/x/pizza.png", url)
}

func TestImgBB_Rejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"success":false,"status":400,"error":{"message":"Invalid API v1 key."}}`))
	}))
	t.Cleanup(srv.Close)

	_, err := NewImgBB("bad", srv.URL).Upload(context.Background(), "a.jpg", strings.NewReader("x"))
	assert.ErrorContains(t, err, "Invalid API v1 key.")
}

func TestNew_Disabled(t *testing.T) {
	_, err := New(&config.Config{})
	assert.ErrorIs(t, err, ErrDisabled)

	_, err = New(&config.Config{ImageUploader: config.UploaderImgBB})
	assert.ErrorIs(t, err, ErrDisabled, "imgbb without a key")

	u, err := New(&config.Config{ImageUploader: config.UploaderImgBB, ImgBBAPIKey: "k", ImgBBEndpoint: "http://example.test"})
	require.NoError(t, err)
	assert.IsType(t, &ImgBB{}, u)
}

func TestObjectName(t *testing.T) {
	a := objectName("Photo.JPG")
	b := objectName("Photo.JPG")
	assert.NotEqual(t, a, b)
	assert.True(t, strings.HasSuffix(a, ".jpg"))
}
