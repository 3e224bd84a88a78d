package version

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetVersion(t *testing.T) {
	orig := version
	t.Cleanup(func() { version = orig })

	assert.Equal(t, "dev", GetVersion())

	version = "v1.4.0"
	assert.Equal(t, "1.4.0", GetVersion())
}
