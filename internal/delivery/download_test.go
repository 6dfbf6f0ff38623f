package delivery

import (
	"archive/zip"
	"context"
	"io"
	"path/filepath"
	"strings"
	"testing"

	"codegen-server/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestDownloadDeliverCreatesArchive(t *testing.T) {
	dir := t.TempDir()
	s := NewDownloadStrategy(dir, "https://downloads.example.com", zap.NewNop())

	files := []domain.GeneratedFile{
		{Filename: "a.js", Content: "console.log('a');"},
		{Filename: "b.js", Content: "console.log('b');"},
	}

	result, err := s.Deliver(context.Background(), files, domain.StackNode)
	require.NoError(t, err)

	assert.NotEmpty(t, result.DownloadURL)
	assert.True(t, strings.HasPrefix(result.DownloadURL, "https://downloads.example.com/"))
	assert.True(t, strings.HasSuffix(result.DownloadURL, ".zip"))
	assert.Len(t, result.CommitHash, 40)
	// Ровно один URL: download-доставка не выдает preview/deployment.
	assert.Empty(t, result.PreviewURL)
	assert.Empty(t, result.DeploymentURL)

	// Архив содержит файлы плюс README.md и install.sh, и ничего больше.
	archives, err := filepath.Glob(filepath.Join(dir, "*.zip"))
	require.NoError(t, err)
	require.Len(t, archives, 1)

	zr, err := zip.OpenReader(archives[0])
	require.NoError(t, err)
	defer zr.Close()

	entries := map[string]string{}
	for _, f := range zr.File {
		rc, err := f.Open()
		require.NoError(t, err)
		data, err := io.ReadAll(rc)
		require.NoError(t, err)
		rc.Close()
		entries[f.Name] = string(data)
	}

	require.Len(t, entries, 4)
	assert.Equal(t, "console.log('a');", entries["a.js"])
	assert.Equal(t, "console.log('b');", entries["b.js"])
	assert.Equal(t, domain.StackNode.Documentation(), entries["README.md"])
	assert.Equal(t, domain.StackNode.InstallScript(), entries["install.sh"])
}

func TestDownloadDeliverBadDirectory(t *testing.T) {
	s := NewDownloadStrategy("/proc/nonexistent/downloads", "https://downloads.example.com", zap.NewNop())

	_, err := s.Deliver(context.Background(), []domain.GeneratedFile{{Filename: "a.js", Content: "x"}}, domain.StackNode)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrArchiveFailed)
}
