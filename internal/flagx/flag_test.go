package flagx

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFilterArgs(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		allowed []string
		want    []string
	}{
		{
			name:    "separate value kept",
			args:    []string{"-k", "plates.json", "-a", ":8080"},
			allowed: []string{"-k"},
			want:    []string{"-k", "plates.json"},
		},
		{
			name:    "equals form kept whole",
			args:    []string{"-config=server.json", "-s", "secret"},
			allowed: []string{"-config"},
			want:    []string{"-config=server.json"},
		},
		{
			name:    "unknown flags and positionals dropped",
			args:    []string{"-x", "1", "--y=2", "positional"},
			allowed: []string{"-c"},
			want:    []string{},
		},
		{
			name:    "trailing flag without value",
			args:    []string{"-c"},
			allowed: []string{"-c"},
			want:    []string{"-c"},
		},
		{
			name:    "next dash token is not a value",
			args:    []string{"-c", "-l", "pebble"},
			allowed: []string{"-c", "-l"},
			want:    []string{"-c", "-l", "pebble"},
		},
		{
			name:    "repeated flag preserved in order",
			args:    []string{"-c", "one.json", "-c", "two.json"},
			allowed: []string{"-c"},
			want:    []string{"-c", "one.json", "-c", "two.json"},
		},
		{
			name:    "empty args",
			args:    []string{},
			allowed: []string{"-c"},
			want:    []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FilterArgs(tt.args, tt.allowed))
		})
	}
}

func TestConfigFilePath(t *testing.T) {
	assert.Equal(t, "/etc/pk/short.json", ConfigFilePath([]string{"-c", "/etc/pk/short.json"}))
	assert.Equal(t, "/etc/pk/long.json", ConfigFilePath([]string{"-a", ":9090", "-config", "/etc/pk/long.json"}))
	assert.Equal(t, "/etc/pk/2.json", ConfigFilePath([]string{"-c", "/etc/pk/1.json", "-config=/etc/pk/2.json"}))
	assert.Empty(t, ConfigFilePath([]string{"-x", "1"}))
	assert.Empty(t, ConfigFilePath(nil))
}
