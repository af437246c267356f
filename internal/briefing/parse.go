package briefing

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/briefing-cli/internal/model"
)

// ErrContract marks replies that parsed or validated badly enough that a
// fresh model call is worth one more attempt. Transport failures are not
// contract violations.
var ErrContract = eris.New("briefing: reply violates output contract")

// defaultObjectionResponse fills in for objection entries the model returned
// as bare strings or without a response.
const defaultObjectionResponse = "Address this concern"

// requiredFields are the keys every reply must carry.
var requiredFields = []string{
	"company_profile",
	"key_updates",
	"lead_angle",
	"conversation_starters",
	"potential_objections",
}

// IsContractViolation reports whether err stems from a contract-violating
// reply rather than a transport failure.
func IsContractViolation(err error) bool {
	return errors.Is(err, ErrContract)
}

// parseDocument parses and repairs a raw model reply into a BriefingDocument.
// Non-JSON replies and missing required fields return an error wrapping
// ErrContract; malformed field shapes are coerced instead of failing.
func parseDocument(raw string) (*model.BriefingDocument, error) {
	cleaned := cleanJSON(raw)

	var fields map[string]any
	if err := json.Unmarshal([]byte(cleaned), &fields); err != nil {
		return nil, eris.Wrapf(ErrContract, "parse reply as JSON: %v", err)
	}

	for _, key := range requiredFields {
		if _, ok := fields[key]; !ok {
			return nil, eris.Wrapf(ErrContract, "missing required field %q", key)
		}
	}

	return &model.BriefingDocument{
		CompanyProfile:       toString(fields["company_profile"]),
		KeyUpdates:           toStringSlice(fields["key_updates"]),
		LeadAngle:            toString(fields["lead_angle"]),
		ConversationStarters: toStringSlice(fields["conversation_starters"]),
		PotentialObjections:  toObjections(fields["potential_objections"]),
	}, nil
}

// cleanJSON attempts to extract a JSON object from text that may contain
// markdown code fences or other wrapping.
func cleanJSON(text string) string {
	text = strings.TrimSpace(text)

	// Strip markdown code fences.
	if strings.HasPrefix(text, "```json") {
		text = strings.TrimPrefix(text, "```json")
		if idx := strings.LastIndex(text, "```"); idx >= 0 {
			text = text[:idx]
		}
	} else if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```")
		if idx := strings.LastIndex(text, "```"); idx >= 0 {
			text = text[:idx]
		}
	}

	// Find first { and last }.
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start >= 0 && end > start {
		text = text[start : end+1]
	}

	return strings.TrimSpace(text)
}

// toString renders any JSON value as a string. Structured values are
// re-serialized so an object returned in a string slot still lands as text.
func toString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case map[string]any, []any:
		b, err := json.Marshal(t)
		if err != nil {
			return fmt.Sprintf("%v", t)
		}
		return string(b)
	default:
		return fmt.Sprintf("%v", t)
	}
}

// toStringSlice coerces a JSON value into a string slice. Scalars wrap into
// a single-element slice; empty elements are dropped.
func toStringSlice(v any) []string {
	switch t := v.(type) {
	case nil:
		return nil
	case []any:
		out := make([]string, 0, len(t))
		for _, item := range t {
			if s := toString(item); s != "" {
				out = append(out, s)
			}
		}
		return out
	default:
		s := toString(t)
		if s == "" {
			return nil
		}
		return []string{s}
	}
}

// toObjections coerces the objections field into structured entries. Bare
// strings become an entry with the generic default response.
func toObjections(v any) []model.ObjectionEntry {
	switch t := v.(type) {
	case nil:
		return nil
	case []any:
		out := make([]model.ObjectionEntry, 0, len(t))
		for _, item := range t {
			if entry, ok := objectionFromMap(item); ok {
				out = append(out, entry)
				continue
			}
			if s := toString(item); s != "" {
				out = append(out, model.ObjectionEntry{Objection: s, Response: defaultObjectionResponse})
			}
		}
		return out
	default:
		if entry, ok := objectionFromMap(t); ok {
			return []model.ObjectionEntry{entry}
		}
		if s := toString(t); s != "" {
			return []model.ObjectionEntry{{Objection: s, Response: defaultObjectionResponse}}
		}
		return nil
	}
}

// objectionFromMap extracts a structured objection entry from a JSON object,
// filling a missing response with the default.
func objectionFromMap(v any) (model.ObjectionEntry, bool) {
	m, ok := v.(map[string]any)
	if !ok {
		return model.ObjectionEntry{}, false
	}
	objection := toString(m["objection"])
	if objection == "" {
		return model.ObjectionEntry{}, false
	}
	response := toString(m["response"])
	if response == "" {
		response = defaultObjectionResponse
	}
	return model.ObjectionEntry{Objection: objection, Response: response}, true
}
