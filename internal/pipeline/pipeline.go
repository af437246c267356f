// Package pipeline orchestrates briefing generation: gather intelligence,
// look up campaign context, synthesize the document, persist it to the lead
// store, and journal the run.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/briefing-cli/internal/briefing"
	"github.com/sells-group/briefing-cli/internal/intel"
	"github.com/sells-group/briefing-cli/internal/leadstore"
	"github.com/sells-group/briefing-cli/internal/model"
	"github.com/sells-group/briefing-cli/internal/registry"
	"github.com/sells-group/briefing-cli/internal/store"
)

// Sentinel errors for the two client-visible failures. Both map to HTTP 400
// at the serve boundary; everything else Run absorbs into the response.
var (
	ErrInvalidRequest = eris.New("pipeline: invalid request")
	ErrNoIntelligence = eris.New("pipeline: no usable intelligence")
)

type requestError struct {
	reason string
}

func (e *requestError) Error() string { return e.reason }
func (e *requestError) Unwrap() error { return ErrInvalidRequest }

type intelligenceError struct {
	fetchError string
}

func (e *intelligenceError) Error() string {
	return "Failed to gather company intelligence: " + e.fetchError
}
func (e *intelligenceError) Unwrap() error { return ErrNoIntelligence }

// Gatherer assembles the intelligence snapshot for a company domain.
type Gatherer interface {
	Gather(ctx context.Context, domain string) model.IntelligenceSnapshot
}

// Synthesizer produces a briefing document from gathered inputs. It never
// returns an error; degraded documents carry their cause in the error tag.
type Synthesizer interface {
	Synthesize(ctx context.Context, snap model.IntelligenceSnapshot, record model.ContextRecord) *model.BriefingDocument
}

// Pipeline orchestrates one briefing generation end to end.
type Pipeline struct {
	intel    Gatherer
	registry *registry.Registry
	synth    Synthesizer
	leads    leadstore.Store
	runs     store.Store
}

// New creates a Pipeline with all dependencies. The run store may be nil,
// which disables journaling.
func New(gatherer Gatherer, reg *registry.Registry, synth Synthesizer, leads leadstore.Store, runs store.Store) *Pipeline {
	return &Pipeline{
		intel:    gatherer,
		registry: reg,
		synth:    synth,
		leads:    leads,
		runs:     runs,
	}
}

// Run executes the briefing pipeline for a single lead request. The returned
// error is non-nil only for the two client-visible failures (invalid request,
// unusable intelligence); every downstream fault is absorbed into the
// response per the degradation policy.
func (p *Pipeline) Run(ctx context.Context, req model.BriefingRequest) (resp *model.BriefingResponse, err error) {
	start := time.Now()

	req.Normalize()
	if vErr := req.Validate(); vErr != nil {
		return nil, &requestError{reason: vErr.Error()}
	}

	companyName := intel.CompanyNameFromDomain(req.CompanyDomain)
	log := zap.L().With(
		zap.String("lead_id", req.LeadID),
		zap.String("domain", req.CompanyDomain),
	)
	log.Info("pipeline: processing briefing request", zap.String("context_id", req.ContextID))

	// Journal the run. The journal is observability only; failures here must
	// never affect the request.
	var runID string
	if p.runs != nil {
		run, runErr := p.runs.CreateRun(ctx, req, companyName)
		if runErr != nil {
			log.Warn("pipeline: failed to journal run", zap.Error(runErr))
		} else {
			runID = run.ID
			log = log.With(zap.String("run_id", runID))
		}
	}
	completeRun := func(status model.RunStatus, doc *model.BriefingDocument, meta *model.Metadata) {
		if runID == "" {
			return
		}
		if cErr := p.runs.CompleteRun(ctx, runID, status, doc, meta); cErr != nil {
			log.Warn("pipeline: failed to complete run", zap.Error(cErr))
		}
	}

	// A panic anywhere below degrades to the fallback-briefing response shape
	// rather than a bodiless failure.
	defer func() {
		if r := recover(); r != nil {
			cause := fmt.Sprintf("%v", r)
			log.Error("pipeline: recovered from panic", zap.String("cause", cause))
			meta := model.Metadata{
				ProcessingTimeSeconds: time.Since(start).Seconds(),
				Error:                 cause,
			}
			resp = &model.BriefingResponse{
				Status:   model.StatusError,
				Message:  fmt.Sprintf("Briefing generation encountered issues for lead %s", req.LeadID),
				Briefing: briefing.FallbackDocument(cause),
				Metadata: meta,
			}
			err = nil
			completeRun(model.RunStatusFailed, resp.Briefing, &meta)
		}
	}()

	trackPhase := func(name string, fn func() error) {
		phaseStart := time.Now()
		phaseErr := fn()
		duration := time.Since(phaseStart).Milliseconds()
		if phaseErr != nil {
			log.Error("pipeline: phase failed",
				zap.String("phase", name),
				zap.Int64("duration_ms", duration),
				zap.Error(phaseErr),
			)
			return
		}
		log.Info("pipeline: phase complete",
			zap.String("phase", name),
			zap.Int64("duration_ms", duration),
		)
	}

	// Phase 1: gather intelligence from the website and news sources.
	var snap model.IntelligenceSnapshot
	trackPhase("gather_intelligence", func() error {
		snap = p.intel.Gather(ctx, req.CompanyDomain)
		if !snap.IsValid() {
			return eris.Errorf("snapshot unusable: %s", snap.FetchError)
		}
		return nil
	})
	if !snap.IsValid() {
		meta := model.Metadata{
			ProcessingTimeSeconds: time.Since(start).Seconds(),
			Error:                 snap.FetchError,
		}
		completeRun(model.RunStatusFailed, nil, &meta)
		return nil, &intelligenceError{fetchError: snap.FetchError}
	}

	// Phase 2: campaign context lookup. A miss is carried forward as an
	// empty context, never a failure.
	var record model.ContextRecord
	contextFound := false
	trackPhase("lookup_context", func() error {
		rec, lookupErr := p.registry.Lookup(req.ContextID)
		if lookupErr != nil {
			log.Warn("pipeline: context not found, continuing with empty context",
				zap.String("context_id", req.ContextID))
			return nil // missing context never aborts the run
		}
		record = rec
		contextFound = true
		return nil
	})

	// Phase 3: synthesize the briefing. Never fails; a degraded document
	// carries its cause in the error tag.
	var doc *model.BriefingDocument
	trackPhase("synthesize_briefing", func() error {
		doc = p.synth.Synthesize(ctx, snap, record)
		return nil
	})

	// Phase 4: persist the briefing to the lead record store. Failures fold
	// into the response metadata.
	storeUpdated := false
	var storeErr error
	trackPhase("update_lead_record", func() error {
		if upErr := p.leads.Upsert(ctx, req.LeadID, doc); upErr != nil {
			storeErr = upErr
			return upErr
		}
		storeUpdated = true
		return nil
	})

	meta := model.Metadata{
		ProcessingTimeSeconds: time.Since(start).Seconds(),
		RecordStoreUpdated:    storeUpdated,
		ContextFound:          contextFound,
		IntelligenceValid:     true,
	}

	status := model.RunStatusSucceeded
	journalMeta := meta
	if doc.Error != "" {
		status = model.RunStatusDegraded
		journalMeta.Error = doc.Error
	}
	if !storeUpdated {
		status = model.RunStatusDegraded
		if journalMeta.Error == "" && storeErr != nil {
			journalMeta.Error = storeErr.Error()
		}
	}
	completeRun(status, doc, &journalMeta)

	log.Info("pipeline: briefing complete",
		zap.String("status", string(status)),
		zap.Float64("processing_time_seconds", meta.ProcessingTimeSeconds),
		zap.Bool("record_store_updated", storeUpdated),
		zap.Bool("context_found", contextFound),
	)

	return &model.BriefingResponse{
		Status:   model.StatusSuccess,
		Message:  fmt.Sprintf("Successfully generated briefing for lead %s", req.LeadID),
		Briefing: doc,
		Metadata: meta,
	}, nil
}
