package version

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestString(t *testing.T) {
	assert.Equal(t, "dev (none)", String())

	t.Cleanup(func() { Version, Commit, Date, Dirty = "dev", "none", "", "false" })
	Version, Commit, Date, Dirty = "v1.0.0", "abc123", "2026-01-02", "true"
	assert.True(t, IsDirty())
	assert.Equal(t, "v1.0.0 (abc123, 2026-01-02, dirty)", String())
}
