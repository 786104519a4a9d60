package validation

import (
	"bytes"
	"mime/multipart"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidatePassword(t *testing.T) {
	tests := []struct {
		password string
		ok       bool
	}{
		{"Abcdef", true},
		{"abcdef", false},
		{"ABCDEF", false},
		{"Abc", false},
		{"Secret123", true},
	}
	for _, tt := range tests {
		t.Run(tt.password, func(t *testing.T) {
			err := ValidatePassword(tt.password)
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestValidateEmail(t *testing.T) {
	assert.NoError(t, ValidateEmail("donor@example.com"))
	assert.Error(t, ValidateEmail(""))
	assert.Error(t, ValidateEmail("not-an-email"))
}

func TestValidateImageURL(t *testing.T) {
	assert.NoError(t, ValidateImageURL(""))
	assert.NoError(t, ValidateImageURL("https://i.ibb.co/abc/pizza.jpg"))
	assert.Error(t, ValidateImageURL("ftp://example.com/a.png"))
	assert.Error(t, ValidateImageURL("/relative.png"))
}

func TestValidatePhone(t *testing.T) {
	assert.NoError(t, ValidatePhone("+880 1712-345678"))
	assert.NoError(t, ValidatePhone("(555) 123 4567"))
	assert.Error(t, ValidatePhone(""))
	assert.Error(t, ValidatePhone("call me"))
	assert.Error(t, ValidatePhone("123"))
	assert.Error(t, ValidatePhone("1+2345678"))
}

func TestValidateExpireDate(t *testing.T) {
	today := time.Date(2024, 5, 10, 15, 0, 0, 0, time.UTC)

	assert.NoError(t, ValidateExpireDate("", today))
	assert.NoError(t, ValidateExpireDate("2024-05-10", today))
	assert.NoError(t, ValidateExpireDate("2024-06-01", today))
	assert.Error(t, ValidateExpireDate("2024-05-09", today))
	assert.Error(t, ValidateExpireDate("10/05/2024", today))
}

func TestErrors(t *testing.T) {
	errs := Errors{}
	errs.Check("name", Required("Food name", " "))
	errs.Check("name", Required("Other", ""))
	errs.Check("location", nil)

	require.Error(t, errs.Err())
	assert.Equal(t, "Food name is required", errs["name"])
	assert.Equal(t, "name: Food name is required", errs.Error())
	assert.Equal(t, "Food name is required", errs.First())
	assert.NoError(t, Errors{}.Err())
}

func fileHeader(t *testing.T, filename string, content []byte) *multipart.FileHeader {
	t.Helper()

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	part, err := w.CreateFormFile("image", filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest("POST", "/add-food", &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	require.NoError(t, req.ParseMultipartForm(10<<20))

	_, header, err := req.FormFile("image")
	require.NoError(t, err)
	return header
}

func TestValidateImage(t *testing.T) {
	png := []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")
	gif := []byte("GIF89a\x01\x00\x01\x00")

	ct, err := ValidateImage(fileHeader(t, "pizza.png", png))
	require.NoError(t, err)
	assert.Equal(t, "image/png", ct)

	ct, err = ValidateImage(fileHeader(t, "bread.GIF", gif))
	require.NoError(t, err)
	assert.Equal(t, "image/gif", ct)

	_, err = ValidateImage(fileHeader(t, "pizza.png", []byte("plain text")))
	assert.ErrorContains(t, err, "invalid file type")

	_, err = ValidateImage(fileHeader(t, "pizza.exe", png))
	assert.ErrorContains(t, err, "invalid file extension")
}
