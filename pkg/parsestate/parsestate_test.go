package parsestate

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func validBlob() []byte {
	return []byte{'P', 'L', 'S', '1', 0x00, 0x01, 3, 2}
}

func TestParse_ValidHeaderYieldsParsedFields(t *testing.T) {
	result := Parse(validBlob())
	assert.True(t, result.OK)
	assert.Equal(t, uint16(1), result.Parsed.FormatVersion)
	assert.Equal(t, uint8(3), result.Parsed.PartySize)
	assert.Equal(t, uint8(2), result.Parsed.BadgeCount)
	assert.Contains(t, result.Formatted, "party=3")
}

func TestParse_TooShortFailsWithoutFabricatingFields(t *testing.T) {
	result := Parse([]byte{'P', 'L', 'S'})
	assert.False(t, result.OK)
	assert.Equal(t, Parsed{}, result.Parsed)
	assert.NotEmpty(t, result.Reason)
}

func TestParse_UnrecognizedMagicFails(t *testing.T) {
	blob := []byte{'X', 'X', 'X', 'X', 0, 1, 3, 2}
	result := Parse(blob)
	assert.False(t, result.OK)
	assert.Contains(t, result.Reason, "unrecognized header")
}

func TestParse_OutOfRangePartySizeFails(t *testing.T) {
	blob := []byte{'P', 'L', 'S', '1', 0, 1, 200, 2}
	result := Parse(blob)
	assert.False(t, result.OK)
	assert.Equal(t, Parsed{}, result.Parsed)
}
