package registry

import (
	"context"
	"strings"

	"github.com/jomei/notionapi"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/briefing-cli/internal/model"
	"github.com/sells-group/briefing-cli/pkg/notion"
)

// LoadContextsFromNotion queries a Notion database and flattens each page's
// properties into a context record. Pages without a Context ID property are
// skipped with a warning; they would be unreachable by Lookup anyway.
func LoadContextsFromNotion(ctx context.Context, client notion.Client, dbID string) ([]model.ContextRecord, error) {
	pages, err := notion.QueryAll(ctx, client, dbID, nil)
	if err != nil {
		return nil, eris.Wrap(err, "registry: load contexts from notion")
	}

	var records []model.ContextRecord
	for _, p := range pages {
		rec := flattenPage(p)
		if contextID(rec) == "" {
			zap.L().Warn("registry: skipping notion page without context id",
				zap.String("page_id", string(p.ID)),
			)
			continue
		}
		records = append(records, rec)
	}

	return records, nil
}

// flattenPage converts a Notion page's properties into a flat record.
// Property names are snake_cased so fixture-loaded and Notion-loaded
// records share one key scheme.
func flattenPage(p notionapi.Page) model.ContextRecord {
	rec := make(model.ContextRecord, len(p.Properties))

	for name, prop := range p.Properties {
		key := snakeKey(name)
		switch v := prop.(type) {
		case *notionapi.TitleProperty:
			rec[key] = plainText(v.Title)
		case *notionapi.RichTextProperty:
			rec[key] = plainText(v.RichText)
		case *notionapi.NumberProperty:
			rec[key] = v.Number
		case *notionapi.CheckboxProperty:
			rec[key] = v.Checkbox
		case *notionapi.SelectProperty:
			rec[key] = v.Select.Name
		case *notionapi.MultiSelectProperty:
			var opts []string
			for _, opt := range v.MultiSelect {
				opts = append(opts, opt.Name)
			}
			rec[key] = opts
		case *notionapi.URLProperty:
			rec[key] = v.URL
		default:
			// Unsupported property types are omitted rather than guessed at.
		}
	}

	return rec
}

// snakeKey converts a Notion property name to a snake_case record key.
func snakeKey(name string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), " ", "_")
}

func plainText(rts []notionapi.RichText) string {
	var s string
	for _, rt := range rts {
		s += rt.PlainText
	}
	return s
}
