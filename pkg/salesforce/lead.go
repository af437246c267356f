package salesforce

import (
	"context"
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
)

// Lead represents a Salesforce Lead record.
type Lead struct {
	ID       string `json:"Id" salesforce:"Id"`
	Name     string `json:"Name" salesforce:"Name"`
	Company  string `json:"Company" salesforce:"Company"`
	Email    string `json:"Email" salesforce:"Email"`
	Status   string `json:"Status" salesforce:"Status"`
	Briefing string `json:"AI_Pre_Call_Briefing__c" salesforce:"AI_Pre_Call_Briefing__c"`
}

// leadFields are the SOQL fields selected for Lead queries.
var leadFields = []string{
	"Id", "Name", "Company", "Email", "Status", "AI_Pre_Call_Briefing__c",
}

// FindLeadByID queries Salesforce for a Lead by its ID.
// Returns nil if no lead is found.
func FindLeadByID(ctx context.Context, c Client, id string) (*Lead, error) {
	soql := fmt.Sprintf(
		"SELECT %s FROM Lead WHERE Id = '%s' LIMIT 1",
		strings.Join(leadFields, ", "),
		escapeSoql(id),
	)

	var leads []Lead
	if err := c.Query(ctx, soql, &leads); err != nil {
		return nil, eris.Wrap(err, fmt.Sprintf("sf: find lead by id %s", id))
	}
	if len(leads) == 0 {
		return nil, nil
	}
	return &leads[0], nil
}

// ListLeads queries Salesforce for the most recently modified Leads.
func ListLeads(ctx context.Context, c Client, limit int) ([]Lead, error) {
	if limit <= 0 {
		limit = 200
	}
	soql := fmt.Sprintf(
		"SELECT %s FROM Lead ORDER BY LastModifiedDate DESC LIMIT %d",
		strings.Join(leadFields, ", "),
		limit,
	)

	var leads []Lead
	if err := c.Query(ctx, soql, &leads); err != nil {
		return nil, eris.Wrap(err, "sf: list leads")
	}
	return leads, nil
}

// escapeSoql escapes single quotes in SOQL string literals to prevent injection.
func escapeSoql(s string) string {
	return strings.ReplaceAll(s, "'", "\\'")
}
