package main

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func runCLI(input string, args ...string) (int, string, string) {
	var out, errOut bytes.Buffer
	code := run(append([]string{"socialfeed"}, args...), strings.NewReader(input), &out, &errOut)
	return code, out.String(), errOut.String()
}

func TestRun(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "badger")

	tests := []struct {
		name         string
		input        string
		args         []string
		expectedOut  string
		expectedErr  string
		expectedExit int
	}{
		{
			name:        "version",
			args:        []string{"version"},
			expectedOut: "socialfeed version dev",
		},
		{
			name:        "help",
			args:        []string{},
			expectedOut: "USAGE",
		},
		{
			name:         "unknown command",
			args:         []string{"bogus"},
			expectedErr:  "unknown command: bogus",
			expectedExit: 1,
		},
		{
			name:        "init",
			args:        []string{"init", "--db-path", dbPath},
			expectedOut: "Database initialized successfully",
		},
		{
			name:         "clean cancelled",
			input:        "n\n",
			args:         []string{"clean", "--db-path", dbPath},
			expectedOut:  "Operation cancelled",
			expectedExit: 1,
		},
		{
			name:        "clean confirmed",
			args:        []string{"clean", "--yes", "--db-path", dbPath},
			expectedOut: "Database cleaned successfully",
		},
		{
			name:         "restore without file",
			args:         []string{"restore", "--db-path", dbPath},
			expectedErr:  "backup file path required for restore",
			expectedExit: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, out, errOut := runCLI(tt.input, tt.args...)

			assert.Equal(t, tt.expectedExit, code)
			if tt.expectedOut != "" {
				assert.Contains(t, out, tt.expectedOut)
			}
			if tt.expectedErr != "" {
				assert.Contains(t, errOut, tt.expectedErr)
			}
		})
	}
}
