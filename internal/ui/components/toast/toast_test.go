package toast

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func render(t *testing.T, p Props) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, Toast(p).Render(context.Background(), &buf))
	return buf.String()
}

func TestToast(t *testing.T) {
	html := render(t, Props{
		Title:       "Error",
		Description: "Failed to add food <script>",
		Variant:     VariantError,
		Icon:        true,
		Dismissible: true,
	})

	assert.Contains(t, html, `role="alert"`)
	assert.Contains(t, html, "bg-red-50")
	assert.Contains(t, html, "data-toast-dismiss")
	assert.Contains(t, html, "&lt;script&gt;")
	assert.NotContains(t, html, "<script>")
}

func TestToast_ClassOverride(t *testing.T) {
	html := render(t, Props{Description: "Saved", Variant: VariantSuccess, Class: "w-96"})

	assert.Contains(t, html, "w-96")
	assert.NotContains(t, html, "w-80")
	assert.Contains(t, html, `role="status"`)
	assert.NotContains(t, html, "data-toast-dismiss")
}

func TestToast_DefaultVariant(t *testing.T) {
	html := render(t, Props{Description: "Hello"})
	assert.Contains(t, html, `data-variant="default"`)
}
