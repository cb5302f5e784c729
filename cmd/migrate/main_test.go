package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFlags(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		wantErr string
	}{
		{name: "up", args: []string{"-up"}},
		{name: "negative steps", args: []string{"-steps", "-1"}},
		{name: "force zero", args: []string{"-force", "0"}},
		{name: "confirmed drop", args: []string{"-drop", "-yes"}},
		{name: "no action", args: nil, wantErr: "choose one of"},
		{name: "two actions", args: []string{"-up", "-status"}, wantErr: "only one action"},
		{name: "down without confirmation", args: []string{"-down"}, wantErr: "without -yes"},
		{name: "drop without confirmation", args: []string{"-drop"}, wantErr: "without -yes"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseFlags(tt.args)
			if tt.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}

	o, err := parseFlags([]string{"-steps", "2", "-path", "/tmp/migrations"})
	require.NoError(t, err)
	assert.Equal(t, 2, o.steps)
	assert.Equal(t, "/tmp/migrations", o.dir)
}
