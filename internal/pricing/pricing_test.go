package pricing

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPrice(t *testing.T) {
	tests := []struct {
		name     string
		audience int
		want     int
	}{
		{"zero audience gets floor price", 0, 50},
		{"small audience gets floor price", 999, 50},
		{"exactly at floor boundary", 1000, 50},
		{"just above floor boundary", 1019, 50},
		{"scales above the floor", 1200, 60},
		{"large audience", 100000, 5000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Price(tt.audience))
		})
	}
}
