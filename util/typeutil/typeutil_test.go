package typeutil

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestByteSize(t *testing.T) {
	var b ByteSize
	assert.NoError(t, b.UnmarshalText([]byte("64MB")))
	assert.Equal(t, ByteSize(64*1024*1024), b)

	data, err := json.Marshal(b)
	assert.NoError(t, err)
	assert.Equal(t, `"64MiB"`, string(data))

	var c ByteSize
	assert.NoError(t, json.Unmarshal(data, &c))
	assert.Equal(t, b, c)

	assert.Error(t, c.UnmarshalText([]byte("64 apples")))
}

func TestDuration(t *testing.T) {
	var d Duration
	assert.NoError(t, d.UnmarshalText([]byte("1m30s")))
	assert.Equal(t, 90*time.Second, d.Duration)

	data, err := json.Marshal(NewDuration(time.Second))
	assert.NoError(t, err)
	assert.Equal(t, `"1s"`, string(data))

	assert.NoError(t, json.Unmarshal(data, &d))
	assert.Equal(t, time.Second, d.Duration)
	assert.Error(t, d.UnmarshalText([]byte("soon")))
}
