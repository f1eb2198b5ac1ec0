package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObjectNameRoundTripsPublicURL(t *testing.T) {
	url := PublicURL("civic-bucket", "public/avatars/u1")
	assert.Equal(t, "https://storage.googleapis.com/civic-bucket/public/avatars/u1", url)

	name, err := ObjectName("civic-bucket", url)
	require.NoError(t, err)
	assert.Equal(t, "public/avatars/u1", name)
}

func TestObjectNameRejectsForeignURLs(t *testing.T) {
	for _, url := range []string{
		"https://example.com/civic-bucket/a.jpg",
		"https://storage.googleapis.com/other-bucket/a.jpg",
		"https://storage.googleapis.com/civic-bucket/",
	} {
		_, err := ObjectName("civic-bucket", url)
		assert.Error(t, err, url)
	}
}

func TestVisibilityFolder(t *testing.T) {
	assert.Equal(t, "public/tickets", visibilityFolder("tickets", true))
	assert.Equal(t, "private/tickets", visibilityFolder("tickets", false))
	assert.Equal(t, "public/avatars/u1", visibilityFolder("public/avatars/u1", false))
	assert.Equal(t, ".webp", extensionFor("image/webp"))
	assert.Equal(t, ".bin", extensionFor("application/octet-stream"))
}
