package main

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestTemplatesCommand(t *testing.T) {
	out, err := execute(t, "", "templates")
	require.NoError(t, err)
	assert.Contains(t, out, "ID")
	assert.Contains(t, out, "default")
	assert.Contains(t, out, "banner")

	out, err = execute(t, "", "templates", "--json")
	require.NoError(t, err)
	var meta []map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &meta))
	assert.Len(t, meta, 2)
}

func TestHTMLCommand(t *testing.T) {
	tests := []struct {
		name    string
		stdin   string
		args    []string
		want    []string
		wantErr string
	}{
		{
			name: "flags",
			args: []string{"html", "--name", "Jane Doe", "--role", "CTO", "--phone", "+1 555 0100"},
			want: []string{"Jane Doe", "CTO", "tel:+15550100"},
		},
		{
			name: "example with override",
			args: []string{"html", "--example", "--role", "Founder"},
			want: []string{"Abhyudaya Adulkar", "Founder"},
		},
		{
			name:  "json from stdin",
			stdin: `{"name":"Jane Doe","role":"CTO","template_id":"banner"}`,
			args:  []string{"html", "-d", "-"},
			want:  []string{"Jane Doe"},
		},
		{
			name:    "missing fields",
			args:    []string{"html", "--name", "Jane"},
			wantErr: "Role is required",
		},
		{
			name:    "unknown json field",
			stdin:   `{"name":"Jane","role":"CTO","email":"x"}`,
			args:    []string{"html", "-d", "-"},
			wantErr: "unknown field",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := execute(t, tt.stdin, tt.args...)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			for _, w := range tt.want {
				assert.Contains(t, out, w)
			}
		})
	}
}

func TestHTMLCommand_HidePhoto(t *testing.T) {
	with, err := execute(t, "", "html", "--name", "Jane", "--role", "CTO")
	require.NoError(t, err)
	without, err := execute(t, "", "html", "--name", "Jane", "--role", "CTO", "--no-photo")
	require.NoError(t, err)

	assert.Contains(t, with, "user-placeholder.png")
	assert.NotContains(t, without, "user-placeholder.png")
}

func TestExportCommand_RejectsFormat(t *testing.T) {
	_, err := execute(t, "", "export", "--example", "--format", "gif")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown format "gif"`)
}

func TestExportCommand_RejectsPixelRatio(t *testing.T) {
	_, err := execute(t, "", "export", "--example", "--pixel-ratio", "8")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--pixel-ratio must be between 1 and 4")
}
