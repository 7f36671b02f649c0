package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestText(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"   ", ""},
		{"João  Silva", "joao silva"},
		{"MARIA-JOSÉ D'ÁVILA", "mariajose davila"},
		{"Açaí & Café Ltda.", "acai cafe ltda"},
		{"  Widget   Pro  ", "widget pro"},
		{"ÀÉÎÕÜ ç", "aeiou c"},
		{"a_b", "a_b"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, Text(tc.in), "Text(%q)", tc.in)
	}
}

func TestTextIdempotent(t *testing.T) {
	samples := []string{
		"", "João Silva", "  Açaí, café!  ", "already normalized", "123-456", "Ç_ç",
	}
	for _, s := range samples {
		once := Text(s)
		assert.Equal(t, once, Text(once), "Text not idempotent for %q", s)
	}
}

func TestIdentifier(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"123.456.789-00", "12345678900"},
		{"12.345.678/0001-95", "12345678000195"},
		{"abc", ""},
		{"12345678900", "12345678900"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, Identifier(tc.in), "Identifier(%q)", tc.in)
	}
}

func TestIdentifierIdempotent(t *testing.T) {
	samples := []string{"", "123.456.789-00", "00000000000", "doc: 42"}
	for _, s := range samples {
		once := Identifier(s)
		assert.Equal(t, once, Identifier(once))
	}
}
