package ws

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dkeye/Meet/internal/core"
)

func TestDecodeTarget(t *testing.T) {
	id, ok := decodeTarget([]byte(`{"targetId":"c2"}`))
	assert.True(t, ok)
	assert.Equal(t, core.ConnID("c2"), id)

	// Older clients send the target as a bare string.
	id, ok = decodeTarget([]byte(`"c3"`))
	assert.True(t, ok)
	assert.Equal(t, core.ConnID("c3"), id)

	_, ok = decodeTarget([]byte(`{"targetId":""}`))
	assert.False(t, ok)

	_, ok = decodeTarget([]byte(`{}`))
	assert.False(t, ok)

	_, ok = decodeTarget([]byte(`not json`))
	assert.False(t, ok)
}
