package checkers_test

import (
	"math/rand"
	"strings"
	"testing"

	"github.com/programme-lv/cpkit/internal/checkers"
	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"6\n", "6"},
		{"1 2  \n3\t\n", "1 2\n3"},
		{"\n\n  a\nb  \n\n", "a\nb"},
		{"a\r\nb\r\n", "a\nb"},
		{"", ""},
		{"   \n\t\n", ""},
		{"a\n\nb", "a\n\nb"},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, checkers.Normalize(c.in), "input %q", c.in)
	}
}

func TestEqual(t *testing.T) {
	assert.True(t, checkers.Equal("6", "6\n"))
	assert.True(t, checkers.Equal("1 2 3\n4 5 6", "1 2 3   \r\n4 5 6\r\n\r\n"))
	assert.False(t, checkers.Equal("5", "6\n"))
	assert.False(t, checkers.Equal("1 2", "1  2"), "inner whitespace is significant")
	assert.False(t, checkers.Equal("a\nb", "a b"))
}

const alphabet = "abc123 \t"

func randomText(r *rand.Rand) string {
	var lines []string
	for range r.Intn(6) {
		var b strings.Builder
		for range r.Intn(8) {
			b.WriteByte(alphabet[r.Intn(len(alphabet))])
		}
		lines = append(lines, b.String())
	}
	return strings.Join(lines, "\n")
}

// smudge adds whitespace only where normalization ignores it.
func smudge(r *rand.Rand, s string) string {
	pads := []string{"", " ", "\t", "  ", "\r"}
	lines := strings.Split(s, "\n")
	for i := range lines {
		lines[i] += pads[r.Intn(len(pads))]
	}
	return strings.Repeat("\n", r.Intn(3)) + strings.Join(lines, "\n") + strings.Repeat("\n", r.Intn(3))
}

func TestEqualIgnoresTrailingWhitespace(t *testing.T) {
	r := rand.New(rand.NewSource(1))
	for range 500 {
		s := randomText(r)
		out := smudge(r, s)
		assert.True(t, checkers.Equal(s, out), "%q vs %q", s, out)
	}
}

func TestEqualDetectsContentChange(t *testing.T) {
	r := rand.New(rand.NewSource(2))
	for range 500 {
		s := randomText(r) + "x"
		changed := []byte(s)
		changed[len(changed)-1] = 'y'
		assert.False(t, checkers.Equal(s, string(changed)), "%q", s)
		assert.False(t, checkers.Equal(s, s+"z"))
	}
}
