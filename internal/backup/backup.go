package backup

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"

	"github.com/mediandina/SGC/internal/config"
)

// Service periodically copies the workbook files to a backup directory.
// The canonical stores are plain files, so a backup is a byte copy taken
// between requests; the per-store locks serialize writers, not readers
// of completed files.
type Service struct {
	sources []string
	config  config.Config
	logger  zerolog.Logger
}

// NewService creates a backup service for the given workbook paths.
func NewService(sources []string, cfg config.Config, logger zerolog.Logger) *Service {
	return &Service{
		sources: sources,
		config:  cfg,
		logger:  logger.With().Str("component", "backup").Logger(),
	}
}

// Start runs the backup loop until ctx is cancelled.
func (s *Service) Start(ctx context.Context) {
	if !s.config.Backup.Enabled {
		s.logger.Info().Msg("backup service is disabled")
		return
	}

	interval := time.Duration(s.config.Backup.IntervalHours) * time.Hour
	if interval <= 0 {
		interval = 24 * time.Hour
	}

	s.logger.Info().Dur("interval", interval).Msg("backup service started")

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	if err := s.PerformBackup(); err != nil {
		s.logger.Error().Err(err).Msg("initial backup failed")
	}

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := s.PerformBackup(); err != nil {
				s.logger.Error().Err(err).Msg("scheduled backup failed")
			}
			s.CleanupOldBackups()
		}
	}
}

// PerformBackup copies every source workbook into a timestamped set.
func (s *Service) PerformBackup() error {
	dir := s.config.Backup.Path
	if dir == "" {
		dir = "backups"
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create backup directory: %w", err)
	}

	timestamp := time.Now().Format("20060102_150405")
	for _, src := range s.sources {
		if _, err := os.Stat(src); os.IsNotExist(err) {
			continue
		}
		dest := filepath.Join(dir, fmt.Sprintf("%s_%s.xlsx", timestamp, trimExt(filepath.Base(src))))
		if err := copyFile(src, dest); err != nil {
			return err
		}
		s.logger.Info().Str("path", dest).Msg("workbook backed up")
	}
	return nil
}

// CleanupOldBackups removes backups older than the retention window.
func (s *Service) CleanupOldBackups() {
	if s.config.Backup.RetentionDays <= 0 {
		return
	}

	dir := s.config.Backup.Path
	files, err := os.ReadDir(dir)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to read backup directory for cleanup")
		return
	}

	cutoff := time.Now().AddDate(0, 0, -s.config.Backup.RetentionDays)

	for _, file := range files {
		if file.IsDir() {
			continue
		}
		info, err := file.Info()
		if err != nil {
			continue
		}
		if info.ModTime().Before(cutoff) {
			s.logger.Info().Str("file", file.Name()).Msg("deleting old backup")
			os.Remove(filepath.Join(dir, file.Name()))
		}
	}
}

func copyFile(src, dest string) error {
	source, err := os.Open(src)
	if err != nil {
		return err
	}
	defer source.Close()

	destination, err := os.Create(dest)
	if err != nil {
		return err
	}
	defer destination.Close()

	_, err = io.Copy(destination, source)
	return err
}

func trimExt(name string) string {
	return name[:len(name)-len(filepath.Ext(name))]
}
