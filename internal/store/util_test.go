package store

import (
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestGenerateRunIDFormat(t *testing.T) {
	ts := time.Date(2026, 8, 30, 14, 30, 52, 0, time.UTC)

	id := GenerateRunID(ts, "acme/widgets", 7)

	assert.Regexp(t, regexp.MustCompile(`^run-20260830T143052Z-[0-9a-f]{6}$`), id)
}

func TestGenerateRunIDUsesUTC(t *testing.T) {
	loc := time.FixedZone("UTC+2", 2*3600)
	ts := time.Date(2026, 8, 30, 16, 0, 0, 0, loc)

	id := GenerateRunID(ts, "acme/widgets", 7)

	assert.Contains(t, id, "20260830T140000Z")
}

func TestGenerateRunIDUniqueness(t *testing.T) {
	ts := time.Now()

	a := GenerateRunID(ts, "acme/widgets", 7)
	b := GenerateRunID(ts, "acme/widgets", 8)
	c := GenerateRunID(ts.Add(time.Nanosecond), "acme/widgets", 7)

	assert.NotEqual(t, a, b)
	assert.NotEqual(t, a, c)
}
