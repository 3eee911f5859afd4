package version

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInfo(t *testing.T) {
	v, c, d := Info()
	assert.NotEmpty(t, v)
	assert.NotEmpty(t, c)
	assert.NotEmpty(t, d)
	assert.Equal(t, v, Version())
}

func TestString(t *testing.T) {
	s := String()
	assert.Contains(t, s, "version=")
	assert.Contains(t, s, "commit=")
	assert.Contains(t, s, "date=")
}

func TestFields(t *testing.T) {
	fields := Fields()
	v, c, d := Info()
	assert.Equal(t, v, fields["version"])
	assert.Equal(t, c, fields["commit"])
	assert.Equal(t, d, fields["build_date"])
}
