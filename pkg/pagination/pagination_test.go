package pagination

import (
	"testing"

	"github.com/angelmondragon/icecream-backend/pkg/enums"
	"github.com/stretchr/testify/assert"
)

func TestParseLimit(t *testing.T) {
	assert.Equal(t, 20, ParseLimit("", 20))
	assert.Equal(t, 100, ParseLimit("abc", 100))
	assert.Equal(t, 20, ParseLimit("0", 20))
	assert.Equal(t, 20, ParseLimit("-5", 20))
	assert.Equal(t, 5000, ParseLimit("5000", 20))
	assert.Equal(t, 7, ParseLimit(" 7 ", 20))
	assert.Equal(t, DefaultLimit, ParseLimit("", 0))
}

func TestParse(t *testing.T) {
	p := Parse("3", "asc", 20)
	assert.Equal(t, Params{Limit: 3, Direction: enums.SortAsc}, p)

	p = Parse("x", "whatever", 100)
	assert.Equal(t, Params{Limit: 100, Direction: enums.SortDesc}, p)
}

func TestParamsNormalize(t *testing.T) {
	p := Params{}.Normalize(100)
	assert.Equal(t, 100, p.Limit)
	assert.Equal(t, enums.SortDesc, p.Direction)

	p = Params{Limit: 2, Direction: enums.SortAsc}.Normalize(100)
	assert.Equal(t, Params{Limit: 2, Direction: enums.SortAsc}, p)
}
