package jobs

import (
	"context"
	"log"
	"time"

	"case_strategy_editor/config"
	"case_strategy_editor/models"
	"case_strategy_editor/services"

	"github.com/robfig/cron/v3"
	"gorm.io/gorm"
)

// RetentionSchedule runs the export purge every hour on the hour
const RetentionSchedule = "0 * * * *"

// StartScheduler starts the background jobs. Archived exports are purged
// once their retention window has passed. The caller stops the returned
// cron on shutdown.
func StartScheduler(database *gorm.DB, cfg *config.Config) *cron.Cron {
	c := cron.New(cron.WithLocation(time.UTC))

	if cfg.ArchiveExports {
		_, err := c.AddFunc(RetentionSchedule, func() {
			log.Println("[CRON] Purging expired exports...")
			PurgeExpiredExports(context.Background(), database, services.Storage, time.Now().UTC())
		})
		if err != nil {
			log.Fatalf("[CRON] Failed to schedule export purge: %v", err)
		}
	}

	c.Start()
	log.Println("[CRON] Scheduler started")
	return c
}

// PurgeExpiredExports deletes archived PDFs whose retention window ended
// before now and clears their storage key. The export record itself is kept
// as history. Returns how many objects were removed.
func PurgeExpiredExports(ctx context.Context, database *gorm.DB, storage services.StorageProvider, now time.Time) int {
	if storage == nil {
		return 0
	}

	var records []models.ExportRecord
	err := database.
		Where("storage_key != '' AND expires_at IS NOT NULL AND expires_at <= ?", now).
		Find(&records).Error
	if err != nil {
		log.Printf("[JOB] Error fetching expired exports: %v", err)
		return 0
	}

	purged := 0
	for _, rec := range records {
		if rec.StorageBackend != "" && rec.StorageBackend != storage.Name() {
			log.Printf("[JOB] Skipping export %s stored on %s", rec.ID, rec.StorageBackend)
			continue
		}
		if err := storage.Delete(ctx, rec.StorageKey); err != nil {
			log.Printf("[JOB] Failed to delete export %s: %v", rec.ID, err)
			continue
		}
		if err := database.Model(&models.ExportRecord{}).Where("id = ?", rec.ID).
			UpdateColumn("storage_key", "").Error; err != nil {
			log.Printf("[JOB] Failed to clear storage key for export %s: %v", rec.ID, err)
			continue
		}
		purged++
	}

	if len(records) > 0 {
		log.Printf("[JOB] Purged %d of %d expired exports", purged, len(records))
	}
	return purged
}
