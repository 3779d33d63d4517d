package library

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPayloadsEquivalentNormalisesNewlines(t *testing.T) {
	a := Payload{"description": "line one\r\nline two\r\n"}
	b := Payload{"description": "line one\nline two"}
	require.True(t, PayloadsEquivalent(a, b))
}

func TestPayloadsEquivalentPreviewThumbnailDefaults(t *testing.T) {
	a := Payload{"previews": []map[string]any{
		{"type": "image", "link": "https://example.org/shot.png"},
	}}
	b := Payload{"previews": []any{
		map[string]any{
			"type":       "image",
			"link":       "https://example.org/shot.png",
			"thumbnail":  "https://example.org/shot.png",
			"preview_id": 42,
		},
	}}
	require.True(t, PayloadsEquivalent(a, b))
}

func TestPayloadsEquivalentDetectsDifferences(t *testing.T) {
	a := Payload{"title": "One"}
	b := Payload{"title": "Two"}
	require.False(t, PayloadsEquivalent(a, b))
}

func TestSameAsPendingIgnoresEditBookkeeping(t *testing.T) {
	previous := Payload{"title": "Plugin", "cost": "MIT", "description": "Does things."}
	payload := Payload{"title": "Plugin", "description": "Does more things."}
	pending := Payload{
		"title":       "Plugin",
		"description": "Does more things.\r\n",
		"edit_id":     17,
		"status":      "new",
		"category":    "",
	}
	require.True(t, SameAsPending(payload, previous, pending))

	pending["description"] = "Entirely different."
	require.False(t, SameAsPending(payload, previous, pending))
}

func TestMergePayloadDropsVolatileFields(t *testing.T) {
	old := Payload{
		"title":          "Old Title",
		"cost":           "MIT",
		"version":        5,
		"version_string": "1.0",
		"rating":         4,
		"author_id":      99,
	}
	merged := MergePayload(Payload{"title": "New Title"}, old)

	require.Equal(t, "New Title", merged["title"])
	require.Equal(t, "MIT", merged["cost"])
	require.NotContains(t, merged, "version")
	require.NotContains(t, merged, "version_string")
	require.NotContains(t, merged, "rating")
	require.NotContains(t, merged, "author_id")
}

func TestMergePayloadPreviewOperations(t *testing.T) {
	newPayload := Payload{"previews": []map[string]any{
		{"type": "image", "link": "https://example.org/new.png"},
		{"type": "video", "link": "https://youtube.com/watch?v=dQw4w9WgXcQ"},
	}}
	oldPayload := Payload{"previews": []any{
		map[string]any{"preview_id": 11, "type": "image", "link": "https://example.org/old.png"},
	}}

	merged := MergePayload(newPayload, oldPayload)
	ops := merged["previews"].([]map[string]any)
	require.Len(t, ops, 2)

	require.Equal(t, "update", ops[0]["operation"])
	require.Equal(t, 11, ops[0]["edit_preview_id"])
	require.Equal(t, "https://example.org/new.png", ops[0]["link"])
	require.Equal(t, "https://example.org/new.png", ops[0]["thumbnail"])
	require.Equal(t, true, ops[0]["enabled"])

	require.Equal(t, "insert", ops[1]["operation"])
	require.NotContains(t, ops[1], "edit_preview_id")
}

func TestMergePayloadDeletesExcessPreviews(t *testing.T) {
	oldPayload := Payload{"previews": []any{
		map[string]any{"preview_id": 11, "type": "image", "link": "https://example.org/old.png"},
		map[string]any{"preview_id": 12, "type": "image", "link": "https://example.org/gone.png"},
	}}
	merged := MergePayload(Payload{"previews": []map[string]any{
		{"preview_id": 11, "type": "image", "link": "https://example.org/old.png"},
	}}, oldPayload)

	ops := merged["previews"].([]map[string]any)
	require.Len(t, ops, 1)
	require.Equal(t, "delete", ops[0]["operation"])
	require.Equal(t, 12, ops[0]["edit_preview_id"])
}
