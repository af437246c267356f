package model

import (
	"strings"

	"github.com/rotisserie/eris"
)

// IntelligenceSnapshot holds the combined website and news results for one
// domain at one point in time. It is built fresh per request and discarded
// after synthesis.
type IntelligenceSnapshot struct {
	PageText   string   `json:"page_text"`
	Headlines  []string `json:"headlines"`
	FetchError string   `json:"fetch_error,omitempty"`
}

// IsValid reports whether the snapshot carries enough signal to synthesize
// from. FetchError is set only when the website fetch failed outright; a
// failed news fetch alone never invalidates the snapshot.
func (s IntelligenceSnapshot) IsValid() bool {
	return s.FetchError == "" && strings.TrimSpace(s.PageText) != ""
}

// ContextRecord is an opaque campaign/lead-context entry keyed by context_id.
type ContextRecord map[string]any

// ObjectionEntry pairs an anticipated objection with a suggested response.
type ObjectionEntry struct {
	Objection string `json:"objection"`
	Response  string `json:"response"`
}

// BriefingDocument is the fixed five-field output consumed by a sales rep.
// All five fields are always populated, even on degraded output; Error tags
// documents produced by the fallback path.
type BriefingDocument struct {
	CompanyProfile       string           `json:"company_profile"`
	KeyUpdates           []string         `json:"key_updates"`
	LeadAngle            string           `json:"lead_angle"`
	ConversationStarters []string         `json:"conversation_starters"`
	PotentialObjections  []ObjectionEntry `json:"potential_objections"`
	Error                string           `json:"error,omitempty"`
}

// BriefingRequest is the pipeline entry point payload.
type BriefingRequest struct {
	CompanyDomain string `json:"company_domain"`
	ContextID     string `json:"context_id"`
	LeadID        string `json:"lead_id"`
}

// Normalize lowercases the domain, strips any protocol prefix, and trims
// surrounding whitespace from all fields.
func (r *BriefingRequest) Normalize() {
	domain := strings.ToLower(strings.TrimSpace(r.CompanyDomain))
	domain = strings.TrimPrefix(domain, "http://")
	domain = strings.TrimPrefix(domain, "https://")
	r.CompanyDomain = domain
	r.ContextID = strings.TrimSpace(r.ContextID)
	r.LeadID = strings.TrimSpace(r.LeadID)
}

// Validate checks the request shape. This is the only fault class that
// produces a hard client error; call after Normalize.
func (r *BriefingRequest) Validate() error {
	if len(r.CompanyDomain) < 3 || len(r.CompanyDomain) > 100 {
		return eris.New("company_domain must be between 3 and 100 characters")
	}
	if !strings.Contains(r.CompanyDomain, ".") {
		return eris.New("company_domain must contain a dot")
	}
	if r.ContextID == "" || len(r.ContextID) > 50 {
		return eris.New("context_id must be between 1 and 50 characters")
	}
	if r.LeadID == "" || len(r.LeadID) > 50 {
		return eris.New("lead_id must be between 1 and 50 characters")
	}
	return nil
}

// Response status values.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Metadata describes how a briefing request was processed.
type Metadata struct {
	ProcessingTimeSeconds float64 `json:"processing_time_seconds"`
	RecordStoreUpdated    bool    `json:"record_store_updated"`
	ContextFound          bool    `json:"context_found"`
	IntelligenceValid     bool    `json:"intelligence_valid"`
	Error                 string  `json:"error,omitempty"`
}

// BriefingResponse is the shape returned to the boundary layer.
type BriefingResponse struct {
	Status   string            `json:"status"`
	Message  string            `json:"message"`
	Briefing *BriefingDocument `json:"briefing"`
	Metadata Metadata          `json:"metadata"`
}
