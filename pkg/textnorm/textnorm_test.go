// Copyright (c) 2026 Tubely. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package textnorm_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/taibuivan/tubely/pkg/textnorm"
)

func TestUsername(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"Alice", "alice"},
		{"  BOB  ", "bob"},
		{"Ａｌｉｃｅ", "alice"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, textnorm.Username(tt.input))
		})
	}
}

func TestEmail(t *testing.T) {
	assert.Equal(t, "alice@example.com", textnorm.Email(" Alice@Example.COM "))
}

func TestDisplay(t *testing.T) {
	assert.Equal(t, "Alice Liddell", textnorm.Display("  Alice \t  Liddell "))
}
