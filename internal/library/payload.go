package library

import (
	"reflect"
	"strings"
)

// Payload is an asset listing as the library API sees it. The API is
// PHP-backed and loosely typed, so payloads stay as generic maps instead of
// a struct; helpers below know about the semantics of individual keys.
type Payload = map[string]any

// Volatile keys are set by the library server and must not be echoed back
// from an old payload when building an edit.
var volatileKeys = map[string]bool{
	"download_commit": true,
	"version_string":  true,
	"version":         true,
	"type":            true,
	"category":        true,
	"rating":          true,
	"support_level":   true,
	"searchable":      true,
	"author":          true,
	"author_id":       true,
	"modify_date":     true,
}

// Keys present only in edit payloads (plus category, which edits leave
// empty). Ignored when comparing a fresh payload against a pending edit.
var editOnlyKeys = map[string]bool{
	"edit_id":       true,
	"user_id":       true,
	"submit_date":   true,
	"modify_date":   true,
	"category":      true,
	"status":        true,
	"reason":        true,
	"support_level": true,
}

func normaliseNewlines(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.ReplaceAll(s, "\r", "\n")
}

// unmangle undoes the whitespace damage browser-originated edits inflict on
// string fields.
func unmangle(v any) any {
	if s, ok := v.(string); ok {
		return strings.Trim(normaliseNewlines(s), "\n")
	}
	return v
}

// previewList coerces the previews value of a payload, which may come from
// JSON decoding ([]any) or from our own construction ([]map[string]any).
func previewList(v any) []map[string]any {
	switch previews := v.(type) {
	case []map[string]any:
		return previews
	case []any:
		out := make([]map[string]any, 0, len(previews))
		for _, p := range previews {
			if m, ok := p.(map[string]any); ok {
				out = append(out, m)
			}
		}
		return out
	}
	return nil
}

func normalisePreviews(v any) []map[string]any {
	previews := previewList(v)
	out := make([]map[string]any, len(previews))
	for i, p := range previews {
		thumbnail := p["thumbnail"]
		if thumbnail == nil || thumbnail == "" {
			thumbnail = p["link"]
		}
		out[i] = map[string]any{
			"type":      p["type"],
			"link":      p["link"],
			"thumbnail": thumbnail,
		}
	}
	return out
}

// PayloadsEquivalent reports whether two payloads describe the same listing,
// ignoring newline mangling and preview bookkeeping fields.
func PayloadsEquivalent(payload, reference Payload) bool {
	normalise := func(p Payload) map[string]any {
		out := make(map[string]any, len(p)+1)
		for k, v := range p {
			out[k] = unmangle(v)
		}
		out["previews"] = normalisePreviews(p["previews"])
		return out
	}
	return reflect.DeepEqual(normalise(payload), normalise(reference))
}

// SameAsPending reports whether payload matches a pending edit, both viewed
// on top of the previously submitted payload. Edit-only bookkeeping keys are
// excluded from the comparison.
func SameAsPending(payload, previous, pending Payload) bool {
	keys := make(map[string]bool, len(payload)+len(pending))
	for k := range payload {
		keys[k] = true
	}
	for k := range pending {
		keys[k] = true
	}
	for k := range editOnlyKeys {
		delete(keys, k)
	}

	overlay := func(base, top Payload) Payload {
		out := make(Payload, len(base)+len(top))
		for k, v := range base {
			out[k] = v
		}
		for k, v := range top {
			out[k] = v
		}
		return out
	}
	restrict := func(p Payload) Payload {
		out := make(Payload, len(keys))
		for k := range keys {
			if v, ok := p[k]; ok {
				out[k] = v
			}
		}
		return out
	}
	return PayloadsEquivalent(
		restrict(overlay(previous, payload)),
		restrict(overlay(previous, pending)))
}

// MergePayload builds the payload for an edit submission: old non-volatile
// fields carried over, new fields overlaid, and previews turned into the
// insert/update/delete operations the edit endpoint expects. Unchanged
// previews produce no operation.
func MergePayload(newPayload, oldPayload Payload) Payload {
	merged := make(Payload)
	for k, v := range oldPayload {
		if !volatileKeys[k] && k != "previews" {
			merged[k] = v
		}
	}
	for k, v := range newPayload {
		if k != "previews" {
			merged[k] = v
		}
	}

	newPreviews := previewList(newPayload["previews"])
	oldPreviews := previewList(oldPayload["previews"])
	var ops []map[string]any
	for i := 0; i < len(newPreviews) || i < len(oldPreviews); i++ {
		var pNew, pOld map[string]any
		if i < len(newPreviews) {
			pNew = newPreviews[i]
		}
		if i < len(oldPreviews) {
			pOld = oldPreviews[i]
		}
		if reflect.DeepEqual(pNew, pOld) {
			continue
		}
		ops = append(ops, previewOperation(pNew, pOld))
	}
	merged["previews"] = ops
	return merged
}

func previewOperation(pNew, pOld map[string]any) map[string]any {
	if pNew == nil {
		return map[string]any{
			"operation":       "delete",
			"edit_preview_id": pOld["preview_id"],
		}
	}
	op := map[string]any{
		"enabled":   true,
		"type":      pNew["type"],
		"link":      pNew["link"],
		"thumbnail": pNew["link"],
	}
	if thumbnail, ok := pNew["thumbnail"]; ok && thumbnail != "" {
		op["thumbnail"] = thumbnail
	}
	if pOld != nil {
		op["operation"] = "update"
		op["edit_preview_id"] = pOld["preview_id"]
	} else {
		op["operation"] = "insert"
	}
	return op
}
