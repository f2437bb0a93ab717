package stores

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOSSStore_PublicURL(t *testing.T) {
	o := &OSSStore{Endpoint: "oss-cn-hangzhou.aliyuncs.com", BucketName: "memes"}
	assert.Equal(t, "http://memes.oss-cn-hangzhou.aliyuncs.com/a/b.png", o.PublicURL("/a/b.png"))

	o.UseHTTPS = true
	assert.Equal(t, "https://memes.oss-cn-hangzhou.aliyuncs.com/a.png", o.PublicURL("a.png"))

	o.Endpoint = "https://oss-cn-beijing.aliyuncs.com"
	assert.Equal(t, "https://memes.oss-cn-beijing.aliyuncs.com/a.png", o.PublicURL("a.png"))

	o.Domain = "cdn.example.com/"
	assert.Equal(t, "https://cdn.example.com/a.png", o.PublicURL("a.png"))

	o.Domain = "http://img.example.com"
	assert.Equal(t, "http://img.example.com/a.png", o.PublicURL("a.png"))
}

func TestNewOSSStore_Env(t *testing.T) {
	t.Setenv("OSS_ENDPOINT", "oss-cn-hangzhou.aliyuncs.com")
	t.Setenv("OSS_ACCESS_KEY_ID", "ak")
	t.Setenv("OSS_ACCESS_KEY_SECRET", "sk")
	t.Setenv("OSS_BUCKET", "memes")
	t.Setenv("OSS_USE_HTTPS", "true")

	o := NewOSSStore().(*OSSStore)
	assert.Equal(t, "oss-cn-hangzhou.aliyuncs.com", o.Endpoint)
	assert.Equal(t, "ak", o.AccessKeyID)
	assert.Equal(t, "memes", o.BucketName)
	assert.True(t, o.UseHTTPS)
}

func TestIntegration_OSS_CRUD(t *testing.T) {
	if !envReady("OSS_TEST_ENDPOINT", "OSS_TEST_ACCESS_KEY_ID", "OSS_TEST_ACCESS_KEY_SECRET", "OSS_TEST_BUCKET") {
		t.Skip("skip integration test: OSS_TEST_* env not fully set")
	}
	t.Setenv("OSS_ENDPOINT", getenv("OSS_TEST_ENDPOINT"))
	t.Setenv("OSS_ACCESS_KEY_ID", getenv("OSS_TEST_ACCESS_KEY_ID"))
	t.Setenv("OSS_ACCESS_KEY_SECRET", getenv("OSS_TEST_ACCESS_KEY_SECRET"))
	t.Setenv("OSS_BUCKET", getenv("OSS_TEST_BUCKET"))
	storeRoundTrip(t, NewOSSStore())
}
