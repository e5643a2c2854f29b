package table

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"already canonical", "tramite de empadronamiento", "tramite de empadronamiento"},
		{"accents", "Trámite de Empadronamiento", "tramite de empadronamiento"},
		{"enye", "Señor Muñoz", "senor munoz"},
		{"all vowels", "á é í ó ú", "a e i o u"},
		{"punctuation collapses", "acta--no.  45/2024", "acta no 45 2024"},
		{"leading trailing", "  ¿Dónde?  ", "donde"},
		{"tabs and newlines", "uno\t\tdos\ntres", "uno dos tres"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Normalize(tc.in))
		})
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	inputs := []string{
		"Trámite de Empadronamiento",
		"  ¡Atención!  Señaló—algo  ",
		"plain ascii text",
		"",
	}
	for _, in := range inputs {
		once := Normalize(in)
		assert.Equal(t, once, Normalize(once), "input %q", in)
	}
}

func TestMatch(t *testing.T) {
	assert.True(t, Match("alic", "Alícia"))
	assert.True(t, Match("ALIC", "alícia"))
	assert.True(t, Match("", "anything"))
	assert.True(t, Match("licencia obra", "Licencia   de... obra menor") == false)
	assert.True(t, Match("licencia de obra", "Licencia   de... obra menor"))
	assert.False(t, Match("bob", "Alícia"))
}

func TestMatchWord(t *testing.T) {
	assert.True(t, MatchWord("obra", "Licencia de obra menor"))
	assert.False(t, MatchWord("obr", "Licencia de obra menor"))
	assert.True(t, MatchWord("obra menor", "licencia de obra menor"))
	assert.True(t, MatchWord("", "x"))
}

func TestNormalizeThroughput(t *testing.T) {
	long := strings.Repeat("Trámite de Empadronamiento — Ayuntamiento de Alcañiz. ", 20)
	start := time.Now()
	for i := 0; i < 1000; i++ {
		_ = Normalize(long)
	}
	elapsed := time.Since(start)
	require.Less(t, elapsed, 100*time.Millisecond, "1000 normalizations took %s", elapsed)
}
