package analyses

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"energydocs-backend/internal/extract"
	"energydocs-backend/internal/facts"
	"energydocs-backend/internal/llm"
	"energydocs-backend/internal/risk"
	"energydocs-backend/internal/shared/metrics"
	"energydocs-backend/internal/shared/telemetry"
	"energydocs-backend/internal/shared/util"
)

const previewLength = 500

// EntityResearcher looks up public context about a counterparty. An empty
// summary with a nil error means nothing useful was found.
type EntityResearcher interface {
	EntitySummary(ctx context.Context, entityName string) (string, error)
}

// Service runs the document analysis pipeline.
type Service struct {
	Repo            Repo
	Tasks           TaskCache
	LLM             llm.Client
	Research        EntityResearcher
	Rules           []risk.Rule
	UploadDir       string
	ResearchEnabled bool
}

// Submit validates and stores an uploaded document, registers a task, and
// kicks off asynchronous processing. It returns as soon as the file is on
// disk; callers poll the task id for progress.
func (s *Service) Submit(ctx context.Context, fileName string, r io.Reader) (string, error) {
	if !extract.Supported(fileName) {
		return "", fmt.Errorf("%w: allowed types are %s", ErrUnsupportedType, strings.Join(extract.SupportedExtensions, ", "))
	}
	sanitized, err := util.SanitizeFileName(fileName)
	if err != nil {
		return "", err
	}

	taskID := uuid.NewString()
	ext := strings.ToLower(filepath.Ext(sanitized))
	path := filepath.Join(s.UploadDir, taskID+ext)

	if err := os.MkdirAll(s.UploadDir, 0o755); err != nil {
		return "", fmt.Errorf("upload dir: %w", err)
	}
	dst, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("save upload: %w", err)
	}
	if _, err := io.Copy(dst, r); err != nil {
		dst.Close()
		os.Remove(path)
		return "", fmt.Errorf("save upload: %w", err)
	}
	if err := dst.Close(); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("save upload: %w", err)
	}

	s.Tasks.Set(taskID, TaskStatus{Status: StatusProcessing})
	go s.process(context.WithoutCancel(ctx), taskID, path, sanitized)

	return taskID, nil
}

// process runs the full pipeline for one uploaded file. Only text extraction
// is fatal; every later stage records a note and the run continues. The
// persisted record is updated before the task cache so a poller never sees a
// terminal status it cannot fetch.
func (s *Service) process(ctx context.Context, taskID, path, fileName string) {
	started := time.Now()
	metrics.IncAnalysisStarted()
	defer os.Remove(path)
	defer func() {
		metrics.ObservePipelineDurationMs(float64(time.Since(started).Milliseconds()))
	}()
	defer func() {
		if r := recover(); r != nil {
			telemetry.Error("pipeline.panic", map[string]any{"task_id": taskID, "panic": fmt.Sprint(r)})
			metrics.IncAnalysisFailed()
			s.Tasks.Set(taskID, TaskStatus{Status: StatusFailed, Message: "internal error"})
		}
	}()

	analysis := Analysis{
		ID:               uuid.NewString(),
		OriginalFilename: fileName,
		Status:           StatusProcessing,
		RiskFlags:        []string{},
		CreatedAt:        time.Now().UTC(),
	}
	if err := s.Repo.Create(ctx, analysis); err != nil {
		telemetry.Error("pipeline.create_record", map[string]any{"task_id": taskID, "err": err.Error()})
		metrics.IncAnalysisFailed()
		s.Tasks.Set(taskID, TaskStatus{Status: StatusFailed, Message: "failed to create analysis record"})
		return
	}

	text, err := extract.FromFile(ctx, path)
	if err != nil {
		s.finish(ctx, taskID, analysis, StatusFailed, fmt.Sprintf("failed to load document: %v", err))
		return
	}
	analysis.ExtractedTextPreview = preview(text)
	if err := s.Repo.Update(ctx, analysis); err != nil {
		telemetry.Warn("pipeline.preview_update", map[string]any{"analysis_id": analysis.ID, "err": err.Error()})
	}

	var notes []string

	projectFacts, summary, stageNotes := s.analyzeText(ctx, text)
	notes = append(notes, stageNotes...)
	analysis.Facts = projectFacts
	analysis.Summary = summary

	if projectFacts != nil {
		flags := risk.Evaluate(projectFacts, s.Rules)
		if flag, ok := risk.DensityFlag(projectFacts); ok {
			flags = append(flags, flag)
		}
		analysis.RiskFlags = flags
	}

	if s.ResearchEnabled && s.Research != nil && projectFacts != nil {
		devSummary, offSummary, researchNotes := s.researchParties(ctx, projectFacts)
		notes = append(notes, researchNotes...)
		analysis.DeveloperExternalSummary = devSummary
		analysis.OfftakerExternalSummary = offSummary
	}

	status := StatusCompleted
	if len(notes) > 0 {
		status = StatusPartial
	}
	analysis.Notes = notes
	s.finish(ctx, taskID, analysis, status, "")
}

// analyzeText runs fact extraction and summarization concurrently. Stage
// failures come back as notes, never as errors.
func (s *Service) analyzeText(ctx context.Context, text string) (*facts.ProjectFacts, string, []string) {
	var (
		projectFacts *facts.ProjectFacts
		factsErr     error
		summary      string
		summaryErr   error
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		raw, err := s.LLM.ExtractFacts(gctx, text)
		if err != nil {
			factsErr = err
			return nil
		}
		parsed, err := facts.Parse(raw)
		if err != nil {
			factsErr = err
			return nil
		}
		projectFacts = parsed
		return nil
	})
	g.Go(func() error {
		raw, err := s.LLM.Summarize(gctx, text)
		if err != nil {
			summaryErr = err
			return nil
		}
		summary = strings.TrimSpace(string(raw))
		return nil
	})
	_ = g.Wait()

	var notes []string
	if factsErr != nil {
		notes = append(notes, fmt.Sprintf("fact extraction failed: %v", factsErr))
	}
	if summaryErr != nil {
		notes = append(notes, fmt.Sprintf("summarization failed: %v", summaryErr))
	}
	return projectFacts, summary, notes
}

// researchParties looks up the developer and the offtaker concurrently.
func (s *Service) researchParties(ctx context.Context, f *facts.ProjectFacts) (string, string, []string) {
	var (
		devSummary string
		devErr     error
		offSummary string
		offErr     error
	)

	g, gctx := errgroup.WithContext(ctx)
	if f.DeveloperName != nil {
		name := *f.DeveloperName
		g.Go(func() error {
			devSummary, devErr = s.Research.EntitySummary(gctx, name)
			return nil
		})
	}
	if f.PurchaserOrOfftaker != nil {
		name := *f.PurchaserOrOfftaker
		g.Go(func() error {
			offSummary, offErr = s.Research.EntitySummary(gctx, name)
			return nil
		})
	}
	_ = g.Wait()

	var notes []string
	if devErr != nil {
		notes = append(notes, fmt.Sprintf("developer research failed: %v", devErr))
	}
	if offErr != nil {
		notes = append(notes, fmt.Sprintf("offtaker research failed: %v", offErr))
	}
	return devSummary, offSummary, notes
}

// finish persists the terminal record and only then publishes the task status.
func (s *Service) finish(ctx context.Context, taskID string, analysis Analysis, status, message string) {
	analysis.Status = status
	if status == StatusFailed && message != "" {
		analysis.Notes = append(analysis.Notes, message)
	}
	if err := s.Repo.Update(ctx, analysis); err != nil {
		telemetry.Error("pipeline.final_update", map[string]any{"analysis_id": analysis.ID, "err": err.Error()})
		metrics.IncAnalysisFailed()
		s.Tasks.Set(taskID, TaskStatus{Status: StatusFailed, AnalysisID: analysis.ID, Message: "failed to persist analysis"})
		return
	}

	switch status {
	case StatusCompleted:
		metrics.IncAnalysisCompleted()
		message = "analysis complete"
	case StatusPartial:
		metrics.IncAnalysisPartial()
		message = strings.Join(analysis.Notes, "; ")
	case StatusFailed:
		metrics.IncAnalysisFailed()
	}
	telemetry.Info("pipeline.finished", map[string]any{
		"task_id":     taskID,
		"analysis_id": analysis.ID,
		"status":      status,
		"risk_flags":  len(analysis.RiskFlags),
		"notes":       len(analysis.Notes),
	})
	s.Tasks.Set(taskID, TaskStatus{Status: status, AnalysisID: analysis.ID, Message: message})
}

// Get returns an analysis by ID.
func (s *Service) Get(ctx context.Context, analysisID string) (Analysis, error) {
	if analysisID == "" {
		return Analysis{}, ErrNotFound
	}
	return s.Repo.GetByID(ctx, analysisID)
}

// List returns analyses newest-first.
func (s *Service) List(ctx context.Context, limit, offset int) ([]Analysis, error) {
	return s.Repo.List(ctx, limit, offset)
}

// Task returns the polling payload for a task id.
func (s *Service) Task(taskID string) (TaskStatus, bool) {
	return s.Tasks.Get(taskID)
}

func preview(text string) string {
	runes := []rune(text)
	if len(runes) <= previewLength {
		return text
	}
	return string(runes[:previewLength])
}
