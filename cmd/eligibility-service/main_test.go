package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "scheme-eligibility/internal/common/errors"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func writeProfile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestSchemesCommand(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		want    []string
		notWant []string
	}{
		{
			name: "table lists every scheme",
			args: []string{"schemes"},
			want: []string{"ID", "pm-kisan", "pmay", "widow-pension", "pk-1,pk-2"},
		},
		{
			name:    "category filter as json",
			args:    []string{"schemes", "--category", "healthcare", "-o", "json"},
			want:    []string{`"id": "ayushman-bharat"`},
			notWant: []string{"pm-kisan"},
		},
		{
			name: "query as yaml",
			args: []string{"schemes", "-q", "kisan", "-o", "yaml"},
			want: []string{"id: pm-kisan", "operator: lessThan"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := run(t, tt.args...)
			require.NoError(t, err)
			for _, w := range tt.want {
				assert.Contains(t, out, w)
			}
			for _, nw := range tt.notWant {
				assert.NotContains(t, out, nw)
			}
		})
	}
}

func TestSchemesCommand_UnknownFormat(t *testing.T) {
	_, err := run(t, "schemes", "-o", "xml")
	assert.Error(t, err)
}

func TestEvaluateCommand(t *testing.T) {
	yamlProfile := writeProfile(t, "farmer.yaml", "hasLand: true\nlandHolding: 1.5\n")
	jsonProfile := writeProfile(t, "farmer.json", `{"hasLand": true, "landHolding": 3}`)

	out, err := run(t, "evaluate", "--scheme", "pm-kisan", "--profile", yamlProfile)
	require.NoError(t, err)
	assert.Contains(t, out, "✓ pk-1")
	assert.Contains(t, out, "✓ pk-2")
	assert.Contains(t, out, "Passed 2/2, score 100%: ELIGIBLE")

	out, err = run(t, "evaluate", "-s", "pm-kisan", "-p", jsonProfile)
	require.NoError(t, err)
	assert.Contains(t, out, "✗ pk-2")
	assert.Contains(t, out, "Passed 1/2, score 50%: NOT FULLY ELIGIBLE")

	out, err = run(t, "evaluate", "-s", "pm-kisan", "-p", jsonProfile, "--json")
	require.NoError(t, err)
	assert.Contains(t, out, `"overallScore": 50`)
}

func TestEvaluateCommand_Errors(t *testing.T) {
	profile := writeProfile(t, "p.yaml", "age: 30\n")
	badProfile := writeProfile(t, "bad.yaml", "gender: robot\n")

	_, err := run(t, "evaluate", "-s", "nope", "-p", profile)
	assert.ErrorIs(t, err, apperrors.ErrSchemeNotFound)

	_, err = run(t, "evaluate", "-s", "pmay", "-p", badProfile)
	assert.Error(t, err)

	_, err = run(t, "evaluate", "-s", "pmay", "-p", filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	_, err = run(t, "evaluate", "-s", "pmay")
	assert.Error(t, err)
}
