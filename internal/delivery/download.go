package delivery

import (
	"archive/zip"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"codegen-server/internal/domain"

	"github.com/klauspost/compress/flate"
	"go.uber.org/zap"
)

// DownloadStrategy упаковывает файлы в сжатый архив и возвращает URL для
// скачивания.
type DownloadStrategy struct {
	downloadsDir string
	baseURL      string
	logger       *zap.Logger
}

// NewDownloadStrategy создает новую DownloadStrategy.
func NewDownloadStrategy(downloadsDir, baseURL string, logger *zap.Logger) *DownloadStrategy {
	return &DownloadStrategy{
		downloadsDir: downloadsDir,
		baseURL:      baseURL,
		logger:       logger.Named("DownloadStrategy"),
	}
}

// Deliver пишет zip-архив с максимальным сжатием: каждый сгенерированный файл
// по его относительному пути плюс README.md и install.sh в корне архива.
// Результат возвращается только после закрытия архива.
func (s *DownloadStrategy) Deliver(ctx context.Context, files []domain.GeneratedFile, stack domain.Stack) (domain.DeliveryResult, error) {
	downloadID := newArtifactID("download")

	if err := os.MkdirAll(s.downloadsDir, 0o755); err != nil {
		return domain.DeliveryResult{}, fmt.Errorf("%w: %v", domain.ErrArchiveFailed, err)
	}

	archivePath := filepath.Join(s.downloadsDir, downloadID+".zip")
	out, err := os.Create(archivePath)
	if err != nil {
		return domain.DeliveryResult{}, fmt.Errorf("%w: %v", domain.ErrArchiveFailed, err)
	}
	defer out.Close()

	zw := zip.NewWriter(out)
	zw.RegisterCompressor(zip.Deflate, func(w io.Writer) (io.WriteCloser, error) {
		return flate.NewWriter(w, flate.BestCompression)
	})

	entries := make([]domain.GeneratedFile, 0, len(files)+2)
	entries = append(entries, files...)
	entries = append(entries,
		domain.GeneratedFile{Filename: "README.md", Content: stack.Documentation()},
		domain.GeneratedFile{Filename: "install.sh", Content: stack.InstallScript()},
	)

	for _, entry := range entries {
		w, err := zw.Create(entry.Filename)
		if err != nil {
			zw.Close()
			return domain.DeliveryResult{}, fmt.Errorf("%w: failed to add %s: %v", domain.ErrArchiveFailed, entry.Filename, err)
		}
		if _, err := w.Write([]byte(entry.Content)); err != nil {
			zw.Close()
			return domain.DeliveryResult{}, fmt.Errorf("%w: failed to write %s: %v", domain.ErrArchiveFailed, entry.Filename, err)
		}
	}

	if err := zw.Close(); err != nil {
		return domain.DeliveryResult{}, fmt.Errorf("%w: %v", domain.ErrArchiveFailed, err)
	}

	s.logger.Info("Archive created",
		zap.String("download_id", downloadID),
		zap.String("path", archivePath),
		zap.Int("entries", len(entries)),
	)

	return domain.DeliveryResult{
		DownloadURL: fmt.Sprintf("%s/%s.zip", s.baseURL, downloadID),
		CommitHash:  newCommitToken(),
	}, nil
}
