package app_test

import (
	"bytes"
	"regexp"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"saavi_admin/internal/app"
)

var idShape = regexp.MustCompile(`^[0-9a-z]+-[0-9a-z]{8}$`)

func TestNewHotelID_ShapeAndTimestamp(t *testing.T) {
	now := time.UnixMilli(1718000000000)
	id, err := app.NewHotelID(now, nil)
	require.NoError(t, err)
	assert.Regexp(t, idShape, id)

	ms, err := strconv.ParseInt(strings.SplitN(id, "-", 2)[0], 36, 64)
	require.NoError(t, err)
	assert.Equal(t, now.UnixMilli(), ms)
}

func TestNewHotelID_NeverRepeats(t *testing.T) {
	now := time.Now()
	seen := map[string]bool{}
	for i := 0; i < 2000; i++ {
		id, err := app.NewHotelID(now, nil)
		require.NoError(t, err)
		require.False(t, seen[id], "duplicate id %s", id)
		seen[id] = true
	}
}

func TestNewHotelID_SkipsBiasedBytes(t *testing.T) {
	// 255 is rejected; 0 maps to '0', 37 to '1'
	src := bytes.NewReader(append(bytes.Repeat([]byte{255}, 8), append([]byte{0, 37}, bytes.Repeat([]byte{35}, 22)...)...))
	id, err := app.NewHotelID(time.UnixMilli(0), src)
	require.NoError(t, err)
	assert.Equal(t, "0-01zzzzzz", id)
}

func TestNewHotelID_EntropyFailure(t *testing.T) {
	_, err := app.NewHotelID(time.Now(), bytes.NewReader(nil))
	assert.Error(t, err)
}
