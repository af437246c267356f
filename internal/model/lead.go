package model

import "time"

// LeadStatus represents where a lead record sits in the briefing flow.
// The only transition is New -> BriefingGenerated, applied on upsert.
type LeadStatus string

const (
	LeadStatusNew               LeadStatus = "New"
	LeadStatusBriefingGenerated LeadStatus = "Briefing Generated"
)

// LeadRecord is a stored lead with its serialized briefing. Records are
// owned exclusively by the lead store; LeadID is the uniqueness invariant.
type LeadRecord struct {
	LeadID        string     `json:"lead_id"`
	DisplayName   string     `json:"display_name"`
	CompanyName   string     `json:"company_name"`
	Briefing      string     `json:"briefing"`
	Status        LeadStatus `json:"status"`
	CreatedAt     time.Time  `json:"created_at"`
	LastUpdatedAt time.Time  `json:"last_updated_at"`
}

// HasBriefing reports whether a briefing has been attached to the record.
func (l LeadRecord) HasBriefing() bool {
	return l.Briefing != ""
}
