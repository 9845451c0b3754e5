package main

import (
	"flag"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"
)

func TestSetupLogger(t *testing.T) {
	tests := []struct {
		level   string
		wantErr bool
	}{
		{"debug", false},
		{"info", false},
		{"WARN", false},
		{"error", false},
		{"verbose", true},
		{"", true},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			set := flag.NewFlagSet("test", flag.ContinueOnError)
			set.String("log-level", tt.level, "")
			c := cli.NewContext(cli.NewApp(), set, nil)

			err := setupLogger(c)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestLoadDocuments(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "notes.txt")
	require.NoError(t, os.WriteFile(path, []byte("Some note content."), 0o644))

	docs, err := loadDocuments([]string{path})
	require.NoError(t, err)
	require.Len(t, docs, 1)

	assert.Equal(t, "notes", docs[0].ID)
	assert.Equal(t, path, docs[0].Source)
	assert.Equal(t, "Some note content.", docs[0].Content)
}

func TestLoadDocumentsErrors(t *testing.T) {
	_, err := loadDocuments(nil)
	assert.Error(t, err)

	_, err = loadDocuments([]string{"/nonexistent/file.txt"})
	assert.Error(t, err)
}

func TestCommonFlagDefaults(t *testing.T) {
	var host, model *cli.StringFlag
	for _, f := range commonFlags() {
		if sf, ok := f.(*cli.StringFlag); ok {
			switch sf.Name {
			case "embedding-host":
				host = sf
			case "embedding-model":
				model = sf
			}
		}
	}

	require.NotNil(t, host)
	assert.Equal(t, "http://localhost:11434/v1", host.Value)
	require.NotNil(t, model)
	assert.Equal(t, "embeddinggemma", model.Value)
}
