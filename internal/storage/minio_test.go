package storage

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObjectName(t *testing.T) {
	png := ObjectName("image/png")
	assert.True(t, strings.HasPrefix(png, "doctor_avatars/"))
	assert.True(t, strings.HasSuffix(png, ".png"))
	assert.NotEqual(t, png, ObjectName("image/png"))

	assert.True(t, strings.HasSuffix(ObjectName("image/jpeg"), ".jpg"))
	assert.True(t, strings.HasSuffix(ObjectName("image/webp"), ".webp"))
}

func TestPublicBaseURL(t *testing.T) {
	assert.Equal(t, "http://localhost:9000", PublicBaseURL(MinioConfig{Endpoint: "localhost:9000"}))
	assert.Equal(t, "https://s3.example.com", PublicBaseURL(MinioConfig{Endpoint: "s3.example.com", UseSSL: true}))
	assert.Equal(t, "https://cdn.example.com", PublicBaseURL(MinioConfig{Endpoint: "minio:9000", PublicURL: "https://cdn.example.com/"}))
}

func TestObjectURL(t *testing.T) {
	assert.Equal(t,
		"http://localhost:9000/doctor-avatars/doctor_avatars/a.png",
		ObjectURL("http://localhost:9000/", "doctor-avatars", "doctor_avatars/a.png"))
}

func TestReadOnlyPolicyIsJSON(t *testing.T) {
	var policy map[string]any
	require.NoError(t, json.Unmarshal([]byte(readOnlyPolicy("doctor-avatars")), &policy))
	assert.Contains(t, readOnlyPolicy("doctor-avatars"), "arn:aws:s3:::doctor-avatars/*")
}
