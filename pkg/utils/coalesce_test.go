// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCoalesceString(t *testing.T) {
	tests := []struct {
		name     string
		values   []string
		expected string
	}{
		{"returns first non-empty string", []string{"", "", "hello", "world"}, "hello"},
		{"returns empty string when all empty", []string{"", "", ""}, ""},
		{"returns empty string when no arguments", []string{}, ""},
		{"returns first value when non-empty", []string{"first", "second"}, "first"},
		{"skips blank strings", []string{"  ", "\t", "found"}, "found"},
		{"trims the winner", []string{" 16778240 "}, "16778240"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, CoalesceString(tt.values...))
		})
	}
}
