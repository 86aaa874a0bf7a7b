package geocode

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/CommonsAtlas/CA-Backend/internal/importer"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// ImportJob tracks one HTTP-triggered country import.
type ImportJob struct {
	ID          string     `json:"id"`
	Country     string     `json:"country"`
	MinLevel    int        `json:"min_level"`
	MaxLevel    int        `json:"max_level"`
	Status      string     `json:"status"` // "running", "completed", "failed"
	Error       string     `json:"error,omitempty"`
	StartedAt   time.Time  `json:"started_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

var (
	importJobs   = make(map[string]*ImportJob)
	importJobsMu sync.Mutex
)

// StartImport handles POST /admin/import
// Accepts {"country": "BEL", "min_level": 4, "max_level": 8}
func StartImport(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Country  string `json:"country"`
		MinLevel int    `json:"min_level"`
		MaxLevel int    `json:"max_level"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if body.MinLevel == 0 {
		body.MinLevel = importer.DefaultMinLevel
	}
	if body.MaxLevel == 0 {
		body.MaxLevel = importer.DefaultMaxLevel
	}

	job := &ImportJob{
		ID:        uuid.New().String(),
		Country:   body.Country,
		MinLevel:  body.MinLevel,
		MaxLevel:  body.MaxLevel,
		Status:    "running",
		StartedAt: time.Now(),
	}

	importJobsMu.Lock()
	importJobs[job.ID] = job
	importJobsMu.Unlock()

	go runImport(job)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	json.NewEncoder(w).Encode(map[string]string{
		"job_id": job.ID,
		"status": "running",
	})
}

func runImport(job *ImportJob) {
	log.Printf("[admin] job=%s importing %s levels %d-%d", job.ID, job.Country, job.MinLevel, job.MaxLevel)

	_, err := pipeline.ImportCountry(context.Background(), job.Country, job.MinLevel, job.MaxLevel)

	now := time.Now()
	importJobsMu.Lock()
	job.CompletedAt = &now
	if err != nil {
		job.Status = "failed"
		job.Error = err.Error()
	} else {
		job.Status = "completed"
	}
	importJobsMu.Unlock()

	log.Printf("[admin] job=%s finished status=%s", job.ID, job.Status)
}

// GetImportStatus handles GET /admin/import/{jobID}
func GetImportStatus(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "jobID")

	importJobsMu.Lock()
	job, ok := importJobs[jobID]
	var snapshot ImportJob
	if ok {
		snapshot = *job
	}
	importJobsMu.Unlock()

	if !ok {
		http.Error(w, "Job not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(snapshot)
}

// ListProgress handles GET /admin/progress
func ListProgress(w http.ResponseWriter, r *http.Request) {
	rows, err := pipeline.Tracker().All(r.Context())
	if err != nil {
		http.Error(w, "Failed to load progress", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(rows)
}
