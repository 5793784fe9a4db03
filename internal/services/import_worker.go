package services

import (
	"encoding/json"
	"log"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/mkeller/swu-tracker/backend/internal/collection"
	"github.com/mkeller/swu-tracker/backend/internal/csvio"
	"github.com/mkeller/swu-tracker/backend/internal/metrics"
	"github.com/mkeller/swu-tracker/backend/internal/models"
)

const (
	defaultImportConcurrency = 4
	importWriteBatchSize     = 400
	importCleanupAge         = 24 * time.Hour
	importCleanupInterval    = 1 * time.Hour
	importPollInterval       = 5 * time.Second
)

// ImportWorker processes CSV import jobs in the background so uploads return
// immediately.
type ImportWorker struct {
	db           *gorm.DB
	concurrency  int
	stopCh       chan struct{}
	wg           sync.WaitGroup
	mu           sync.Mutex
	currentJobID string
}

// NewImportWorker creates a worker. IMPORT_CONCURRENCY caps how many write
// batches are in flight per job.
func NewImportWorker(db *gorm.DB) *ImportWorker {
	concurrency := defaultImportConcurrency
	if envVal := os.Getenv("IMPORT_CONCURRENCY"); envVal != "" {
		if val, err := strconv.Atoi(envVal); err == nil && val > 0 {
			concurrency = val
		}
	}

	return &ImportWorker{
		db:          db,
		concurrency: concurrency,
		stopCh:      make(chan struct{}),
	}
}

// Start begins the background loops.
func (w *ImportWorker) Start() {
	w.wg.Add(1)
	go w.processLoop()

	w.wg.Add(1)
	go w.cleanupLoop()
}

// Stop gracefully shuts down the worker.
func (w *ImportWorker) Stop() {
	close(w.stopCh)
	w.wg.Wait()
}

func (w *ImportWorker) processLoop() {
	defer w.wg.Done()

	ticker := time.NewTicker(importPollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-w.stopCh:
			return
		case <-ticker.C:
			w.processPendingJobs()
		}
	}
}

func (w *ImportWorker) cleanupLoop() {
	defer w.wg.Done()

	ticker := time.NewTicker(importCleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-w.stopCh:
			return
		case <-ticker.C:
			w.cleanupOldJobs()
		}
	}
}

func (w *ImportWorker) processPendingJobs() {
	var jobs []models.ImportJob
	w.db.Where("status IN ?", []string{
		string(models.ImportStatusPending),
		string(models.ImportStatusProcessing),
	}).Order("created_at ASC").Find(&jobs)

	for _, job := range jobs {
		select {
		case <-w.stopCh:
			return
		default:
			w.processJob(job.ID)
		}
	}
}

// processJob parses the job's CSV and applies its rows to the collection.
// Only one job runs at a time.
func (w *ImportWorker) processJob(jobID string) {
	w.mu.Lock()
	if w.currentJobID != "" && w.currentJobID != jobID {
		w.mu.Unlock()
		return
	}
	w.currentJobID = jobID
	w.mu.Unlock()

	defer func() {
		w.mu.Lock()
		w.currentJobID = ""
		w.mu.Unlock()
	}()

	var job models.ImportJob
	if err := w.db.First(&job, "id = ?", jobID).Error; err != nil {
		log.Printf("Import job %s vanished: %v", jobID, err)
		return
	}

	w.db.Model(&models.ImportJob{}).Where("id = ?", jobID).
		Updates(map[string]interface{}{
			"status":     models.ImportStatusProcessing,
			"updated_at": time.Now(),
		})

	items, diagnostics, err := csvio.ParseCSV(job.RawCSV)
	if err != nil {
		w.markJobFailed(jobID, err.Error())
		return
	}

	records, recordDiags := recordsForItems(items)
	diagnostics = append(diagnostics, recordDiags...)

	// Write batches with a concurrency cap. The upsert adds quantities, so
	// batch order does not matter.
	var (
		writeWg  sync.WaitGroup
		writeMu  sync.Mutex
		writeErr error
		imported int
		sem      = make(chan struct{}, w.concurrency)
	)
	for _, batch := range csvio.Chunk(records, importWriteBatchSize) {
		select {
		case <-w.stopCh:
			// Leave the job in processing; the next start resumes it.
			writeWg.Wait()
			return
		default:
		}

		writeWg.Add(1)
		sem <- struct{}{}
		go func(batch []models.CollectionRecord) {
			defer writeWg.Done()
			defer func() { <-sem }()

			err := w.db.Clauses(clause.OnConflict{
				Columns: []clause.Column{{Name: "key"}},
				DoUpdates: clause.Assignments(map[string]interface{}{
					"quantity":   gorm.Expr("quantity + excluded.quantity"),
					"updated_at": time.Now(),
				}),
			}).Create(&batch).Error

			writeMu.Lock()
			defer writeMu.Unlock()
			if err != nil && writeErr == nil {
				writeErr = err
				return
			}
			if err == nil {
				imported += len(batch)
			}
		}(batch)
	}
	writeWg.Wait()

	if writeErr != nil {
		w.markJobFailed(jobID, writeErr.Error())
		return
	}

	diagJSON := "[]"
	if len(diagnostics) > 0 {
		if data, err := json.Marshal(diagnostics); err == nil {
			diagJSON = string(data)
		}
	}

	w.db.Model(&models.ImportJob{}).Where("id = ?", jobID).
		Updates(map[string]interface{}{
			"status":        models.ImportStatusCompleted,
			"total_rows":    len(items) + len(diagnostics),
			"imported_rows": imported,
			"diagnostics":   diagJSON,
			"updated_at":    time.Now(),
		})

	metrics.ImportJobsTotal.WithLabelValues(string(models.ImportStatusCompleted)).Inc()
	metrics.ImportRowsTotal.Add(float64(imported))
	metrics.UpdateCollectionMetrics(w.db)

	log.Printf("Import job %s completed: %d rows written, %d skipped", jobID, imported, len(diagnostics))
}

// recordsForItems converts parsed rows into collection records, merging rows
// that land on the same key. Items that cannot form a key are reported, not
// dropped silently.
func recordsForItems(items []models.ImportItem) ([]models.CollectionRecord, []string) {
	var (
		records     []models.CollectionRecord
		diagnostics []string
		byKey       = make(map[string]int)
	)

	for _, item := range items {
		key, err := collection.MakeKey(item.Set, item.Number, item.Foil)
		if err != nil {
			diagnostics = append(diagnostics, "row "+item.Name+": "+err.Error())
			continue
		}

		if idx, ok := byKey[key]; ok {
			records[idx].Quantity += item.Quantity
			continue
		}
		byKey[key] = len(records)
		records = append(records, models.CollectionRecord{
			Key:        key,
			SetCode:    item.Set,
			CardNumber: item.Number,
			Name:       item.Name,
			Quantity:   item.Quantity,
			Foil:       item.Foil,
			UpdatedAt:  time.Now(),
		})
	}
	return records, diagnostics
}

func (w *ImportWorker) markJobFailed(jobID, errMsg string) {
	log.Printf("Import job %s failed: %s", jobID, errMsg)
	w.db.Model(&models.ImportJob{}).Where("id = ?", jobID).
		Updates(map[string]interface{}{
			"status":     models.ImportStatusFailed,
			"error":      errMsg,
			"updated_at": time.Now(),
		})
	metrics.ImportJobsTotal.WithLabelValues(string(models.ImportStatusFailed)).Inc()
}

// cleanupOldJobs removes finished jobs older than the cleanup age.
func (w *ImportWorker) cleanupOldJobs() {
	cutoff := time.Now().Add(-importCleanupAge)
	result := w.db.Where("created_at < ? AND status IN ?", cutoff, []string{
		string(models.ImportStatusCompleted),
		string(models.ImportStatusFailed),
	}).Delete(&models.ImportJob{})
	if result.Error != nil {
		log.Printf("Warning: failed to clean up old import jobs: %v", result.Error)
		return
	}
	if result.RowsAffected > 0 {
		log.Printf("Cleaned up %d old import jobs", result.RowsAffected)
	}
}

// CreateJob stores a new pending job for the background loop to pick up.
func (w *ImportWorker) CreateJob(rawCSV, source string) (*models.ImportJob, error) {
	job := &models.ImportJob{
		ID:        uuid.New().String(),
		Status:    models.ImportStatusPending,
		Source:    source,
		RawCSV:    rawCSV,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}

	if err := w.db.Create(job).Error; err != nil {
		return nil, err
	}
	return job, nil
}

// GetJob retrieves one job by ID.
func (w *ImportWorker) GetJob(jobID string) (*models.ImportJob, error) {
	var job models.ImportJob
	if err := w.db.First(&job, "id = ?", jobID).Error; err != nil {
		return nil, err
	}
	return &job, nil
}

// GetCurrentJob retrieves the most recent job that isn't finished.
func (w *ImportWorker) GetCurrentJob() (*models.ImportJob, error) {
	var job models.ImportJob
	err := w.db.Where("status IN ?", []string{
		string(models.ImportStatusPending),
		string(models.ImportStatusProcessing),
	}).Order("created_at DESC").First(&job).Error
	if err != nil {
		return nil, err
	}
	return &job, nil
}

// HasActiveJob reports whether a job is pending or running, for enforcing
// one-at-a-time submissions.
func (w *ImportWorker) HasActiveJob() bool {
	var count int64
	w.db.Model(&models.ImportJob{}).Where("status IN ?", []string{
		string(models.ImportStatusPending),
		string(models.ImportStatusProcessing),
	}).Count(&count)
	return count > 0
}

// DeleteJob removes a job record.
func (w *ImportWorker) DeleteJob(jobID string) error {
	return w.db.Delete(&models.ImportJob{}, "id = ?", jobID).Error
}

// JobResponse converts a stored job into its API shape, decoding the
// diagnostics JSON.
func JobResponse(job *models.ImportJob) models.ImportJobResponse {
	var diags []string
	if job.Diagnostics != "" {
		if err := json.Unmarshal([]byte(job.Diagnostics), &diags); err != nil {
			diags = []string{job.Diagnostics}
		}
	}
	return models.ImportJobResponse{
		ID:           job.ID,
		Status:       job.Status,
		Source:       job.Source,
		TotalRows:    job.TotalRows,
		ImportedRows: job.ImportedRows,
		Diagnostics:  diags,
		Error:        job.Error,
		CreatedAt:    job.CreatedAt,
	}
}
