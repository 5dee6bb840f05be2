package monitoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolveServiceName(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "custom-service", ResolveServiceName("custom-service", "127.0.0.1", "sqlpassdb"))
	assert.Equal(t, "instance", ResolveServiceName("127.0.0.1", "instance", "sqlpassdb"))
	assert.Equal(t, "instance", ResolveServiceName("[::1]:4318", " instance ", "sqlpassdb"))
	assert.NotEqual(t, "127.0.0.1", ResolveServiceName("", "127.0.0.1", "sqlpassdb"))
	assert.NotEmpty(t, ResolveServiceName("", "", ""))
}

func TestLooksLikeIP(t *testing.T) {
	t.Parallel()

	assert.True(t, looksLikeIP("10.0.0.1"))
	assert.True(t, looksLikeIP("[2001:db8::1]"))
	assert.True(t, looksLikeIP("10.0.0.1:4318"))
	assert.False(t, looksLikeIP("collector.example.com"))
	assert.False(t, looksLikeIP(""))
}
