package cloudinary

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSign(t *testing.T) {
	c := New("demo", "key", "abcd", "")
	got := c.sign(map[string]string{
		"timestamp": "1315060510",
		"public_id": "sample_image",
		"eager":     "w_400,h_300,c_pad|w_260,h_200,c_crop",
		"api_key":   "ignored",
	})
	// sha1("eager=w_400,h_300,c_pad|w_260,h_200,c_crop&public_id=sample_image&timestamp=1315060510abcd")
	assert.Equal(t, "bfd09f95f331f558cbd1320e67aa8d488770583e", got)
}

func TestUploadBytes(t *testing.T) {
	var form map[string][]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/demo/image/upload", r.URL.Path)
		require.NoError(t, r.ParseMultipartForm(1<<20))
		form = r.MultipartForm.Value
		_, _, err := r.FormFile("file")
		assert.NoError(t, err)
		_, _ = w.Write([]byte(`{"public_id":"classroom/student-7","secure_url":"https://cdn.test/student-7.jpg","width":10,"height":10,"bytes":4}`))
	}))
	defer srv.Close()

	c := New("demo", "key", "secret", "classroom")
	c.BaseURL = srv.URL
	c.now = func() time.Time { return time.Unix(1700000000, 0) }

	res, err := c.UploadBytes(context.Background(), StudentPublicID(7), []byte("jpeg"), "me.jpg")
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.test/student-7.jpg", res.SecureURL)

	assert.Equal(t, []string{"student-7"}, form["public_id"])
	assert.Equal(t, []string{"true"}, form["overwrite"])
	assert.Equal(t, []string{"1700000000"}, form["timestamp"])
	assert.Equal(t, []string{c.sign(map[string]string{
		"timestamp": "1700000000",
		"folder":    "classroom",
		"public_id": "student-7",
		"overwrite": "true",
	})}, form["signature"])
}

func TestUpload_Errors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"message":"Invalid Signature"}}`, http.StatusUnauthorized)
	}))
	defer srv.Close()

	c := New("demo", "key", "secret", "")
	c.BaseURL = srv.URL
	_, err := c.UploadBase64(context.Background(), "x", "data:image/png;base64,AAAA")
	assert.ErrorContains(t, err, "upload failed (401)")

	_, err = New("", "", "", "").UploadBase64(context.Background(), "x", "AAAA")
	assert.ErrorIs(t, err, ErrNotConfigured)
}
