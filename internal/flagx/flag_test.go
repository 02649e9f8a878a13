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
			name:    "short flag with separate value",
			args:    []string{"-c", "conf.json", "-a", "localhost"},
			allowed: []string{"-c"},
			want:    []string{"-c", "conf.json"},
		},
		{
			name:    "inline value",
			args:    []string{"-config=alt.json", "-a", "localhost"},
			allowed: []string{"-c", "-config"},
			want:    []string{"-config=alt.json"},
		},
		{
			name:    "order preserved",
			args:    []string{"-config=first.json", "-c", "second.json", "-x", "1"},
			allowed: []string{"-c", "-config"},
			want:    []string{"-config=first.json", "-c", "second.json"},
		},
		{
			name:    "unknown flags and positionals dropped",
			args:    []string{"-x", "1", "-y=2", "positional"},
			allowed: []string{"-c"},
			want:    []string{},
		},
		{
			name:    "flag at end without value",
			args:    []string{"-c"},
			allowed: []string{"-c"},
			want:    []string{"-c"},
		},
		{
			name:    "next token that looks like a flag is not a value",
			args:    []string{"-c", "-notvalue"},
			allowed: []string{"-c"},
			want:    []string{"-c"},
		},
		{
			name:    "inline value may start with dashes",
			args:    []string{"-config=--weird.json"},
			allowed: []string{"-config"},
			want:    []string{"-config=--weird.json"},
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

func TestSourceFiles(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		wantJSON string
		wantEnv  string
	}{
		{"short -c", []string{"-c", "/etc/a.json"}, "/etc/a.json", ""},
		{"long -config", []string{"-config", "/etc/b.json"}, "/etc/b.json", ""},
		{"env file", []string{"-env", ".env.local", "-a", ":8080"}, "", ".env.local"},
		{"both", []string{"-d", "dsn", "-c=x.json", "-env=y.env"}, "x.json", "y.env"},
		{"last wins", []string{"-c", "1.json", "-config", "2.json"}, "2.json", ""},
		{"nothing", []string{"-x", "1"}, "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotJSON, gotEnv := SourceFiles(tt.args)
			assert.Equal(t, tt.wantJSON, gotJSON)
			assert.Equal(t, tt.wantEnv, gotEnv)
		})
	}
}
