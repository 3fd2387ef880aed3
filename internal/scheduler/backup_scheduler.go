package scheduler

import (
	"context"
	"encoding/json"
	"time"

	"github.com/MauroRinelli/Solship/internal/app/model"
	"github.com/MauroRinelli/Solship/internal/app/service"
	"github.com/MauroRinelli/Solship/internal/storage"
	"github.com/MauroRinelli/Solship/pkg/logger"
	"github.com/robfig/cron/v3"
)

// BackupScheduler periodically exports the demo workspace as a snapshot
// and uploads it to object storage.
type BackupScheduler struct {
	cron          *cron.Cron
	exportService service.ExportService
	store         *storage.S3Storage
	schedule      string
}

func NewBackupScheduler(exportService service.ExportService, store *storage.S3Storage, schedule string) *BackupScheduler {
	return &BackupScheduler{
		cron:          cron.New(),
		exportService: exportService,
		store:         store,
		schedule:      schedule,
	}
}

// Start registers the backup job and starts the cron loop.
func (s *BackupScheduler) Start() error {
	_, err := s.cron.AddFunc(s.schedule, s.runBackup)
	if err != nil {
		logger.Error("Failed to add cron job for snapshot backup", err)
		return err
	}

	s.cron.Start()
	logger.Info("Backup scheduler started", map[string]interface{}{
		"schedule": s.schedule,
	})
	return nil
}

func (s *BackupScheduler) runBackup() {
	logger.Info("Starting scheduled snapshot backup", nil)

	snapshot, err := s.exportService.ExportSnapshot(model.DemoUserID)
	if err != nil {
		logger.Error("Failed to export snapshot for backup", err)
		return
	}

	data, err := json.Marshal(snapshot)
	if err != nil {
		logger.Error("Failed to serialize snapshot for backup", err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	key, err := s.store.UploadSnapshot(ctx, data, snapshot.ExportDate)
	if err != nil {
		logger.Error("Failed to upload snapshot backup", err)
		return
	}

	logger.Info("Snapshot backup uploaded", map[string]interface{}{
		"key":          key,
		"destinations": len(snapshot.Destinations),
		"shipments":    len(snapshot.Shipments),
	})
}

// Stop halts the cron loop.
func (s *BackupScheduler) Stop() {
	logger.Info("Stopping backup scheduler...", nil)
	s.cron.Stop()
	logger.Info("Backup scheduler stopped", nil)
}
