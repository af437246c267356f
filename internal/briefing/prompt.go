// Package briefing synthesizes pre-call briefing documents from gathered
// intelligence and campaign context via a single completion call, under a
// strict five-field JSON contract with retry-then-fallback repair.
package briefing

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/sells-group/briefing-cli/internal/model"
)

// systemPrompt pins the model to the five-field JSON contract. The parser
// tolerates code fences and stray prose, but the instruction keeps repair
// work to a minimum.
const systemPrompt = `You are an expert B2B sales intelligence assistant. Generate concise pre-call briefings that help sales representatives prepare for prospect conversations.

CRITICAL: Reply with a single valid JSON object and nothing else. No markdown, no explanations, no text outside the JSON structure.

Required JSON structure:
{
  "company_profile": "string - concise business overview, industry, and key characteristics",
  "key_updates": ["array of strings - recent developments, news, or changes"],
  "lead_angle": "string - specific value proposition based on the lead context",
  "conversation_starters": ["array of 3-4 strings - open questions for the call"],
  "potential_objections": [{"objection": "string - likely objection", "response": "string - how to handle it"}]
}

Focus on actionable insights that enable more effective prospect conversations. Be specific, professional, and sales-oriented. Ensure all JSON strings are properly escaped.`

const userPromptTemplate = `Generate a pre-call briefing from this information:

COMPANY WEBSITE CONTENT:
%s

RECENT NEWS & UPDATES:
%s

LEAD CONTEXT & CAMPAIGN DATA:
%s

Provide the JSON briefing for the sales representative.`

// buildUserPrompt embeds the snapshot and context record into the user turn:
// page text verbatim, headlines as a bulleted block, context as indented JSON.
func buildUserPrompt(snap model.IntelligenceSnapshot, record model.ContextRecord) string {
	var news strings.Builder
	for _, h := range snap.Headlines {
		news.WriteString("- ")
		news.WriteString(h)
		news.WriteString("\n")
	}

	if record == nil {
		record = model.ContextRecord{}
	}
	contextJSON, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		contextJSON = []byte("{}")
	}

	return fmt.Sprintf(userPromptTemplate,
		snap.PageText,
		strings.TrimRight(news.String(), "\n"),
		contextJSON,
	)
}
