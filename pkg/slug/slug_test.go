// Copyright (c) 2026 Pokedex. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package slug_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/taibuivan/pokedex/pkg/slug"
)

/*
TestFrom verifies display names fold into the upstream kebab-case form.
*/
func TestFrom(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"simple_lowercase", "pikachu", "pikachu"},
		{"display_casing", "Bulbasaur", "bulbasaur"},
		{"punctuated_name", "Mr. Mime", "mr-mime"},
		{"accented_name", "Flabébé", "flabebe"},
		{"apostrophe", "Farfetch'd", "farfetch-d"},
		{"gender_suffix", "Nidoran F", "nidoran-f"},
		{"numeric_id", "25", "25"},
		{"surrounding_whitespace", "  pikachu  ", "pikachu"},
		{"only_symbols", "!!!", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, slug.From(tt.input))
		})
	}
}
