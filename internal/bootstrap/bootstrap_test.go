package bootstrap

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/botivate/sheetsync/config"
	"github.com/botivate/sheetsync/pkg/spreadsheet"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSource(t *testing.T) {
	ctx := context.Background()

	src, err := NewSource(ctx, config.SourceConfig{Kind: config.SourceXLSX, XLSXPath: "book.xlsx"})
	require.NoError(t, err)
	assert.IsType(t, &spreadsheet.XLSXSource{}, src)

	_, err = NewSource(ctx, config.SourceConfig{Kind: "memory"})
	assert.Error(t, err, "the in-process source is not buildable from config")

	_, err = NewSource(ctx, config.SourceConfig{
		Kind:            config.SourceGSheets,
		SpreadsheetID:   "abc",
		CredentialsFile: filepath.Join(t.TempDir(), "missing.json"),
	})
	assert.ErrorContains(t, err, "google credentials")
}
