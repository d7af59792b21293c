package flagx

import (
	"os"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFilterArgs(t *testing.T) {
	tests := []struct {
		name         string
		args         []string
		allowedFlags []string
		want         []string
	}{
		{
			name:         "keeps only allowed flags with values",
			args:         []string{"-a", ":9876", "-test.v", "-d", "dsn"},
			allowedFlags: []string{"-a", "-d"},
			want:         []string{"-a", ":9876", "-d", "dsn"},
		},
		{
			name:         "equals form passes through",
			args:         []string{"-t=30", "-test.run", "TestX"},
			allowedFlags: []string{"-t"},
			want:         []string{"-t=30"},
		},
		{
			name:         "next flag is not consumed as a value",
			args:         []string{"-s", "-k", "apikey"},
			allowedFlags: []string{"-s", "-k"},
			want:         []string{"-s", "-k", "apikey"},
		},
		{
			name:         "nothing allowed yields empty slice",
			args:         []string{"-test.v", "positional"},
			allowedFlags: []string{"-a"},
			want:         []string{},
		},
		{
			name:         "trailing flag without value kept",
			args:         []string{"-k"},
			allowedFlags: []string{"-k"},
			want:         []string{"-k"},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			got := FilterArgs(tt.args, tt.allowedFlags)
			if !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("FilterArgs() = %#v, want %#v", got, tt.want)
			}
		})
	}
}

func TestJsonConfigFlags(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	t.Run("short flag", func(t *testing.T) {
		os.Args = []string{"server", "-c", "/etc/taskroom.json"}
		assert.Equal(t, "/etc/taskroom.json", JsonConfigFlags())
	})

	t.Run("long flag wins over short", func(t *testing.T) {
		os.Args = []string{"server", "-c", "/tmp/a.json", "-config", "/tmp/b.json"}
		assert.Equal(t, "/tmp/b.json", JsonConfigFlags())
	})

	t.Run("absent flags yield empty path", func(t *testing.T) {
		os.Args = []string{"server", "-a", ":9876"}
		assert.Empty(t, JsonConfigFlags())
	})
}
