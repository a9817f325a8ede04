package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCommandArgs(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want []string
	}{
		{"NoConfig", []string{"cart"}, []string{"cart"}},
		{"ConfigSeparate", []string{"--config", "c.yaml", "cart"}, []string{"cart"}},
		{"ConfigInline", []string{"--config=c.yaml", "products", "--page", "2"},
			[]string{"products", "--page", "2"}},
		{"ConfigAfterCommand", []string{"cart", "--config", "c.yaml"},
			[]string{"cart", "--config", "c.yaml"}},
		{"OnlyConfig", []string{"--config", "c.yaml"}, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, commandArgs(tt.args))
		})
	}
}
