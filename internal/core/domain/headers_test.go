package domain

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseUpdateType(t *testing.T) {
	for _, known := range AllUpdateTypes {
		got, ok := ParseUpdateType(string(known))
		assert.True(t, ok, known)
		assert.Equal(t, known, got)
	}

	got, ok := ParseUpdateType("  Update ")
	assert.True(t, ok)
	assert.Equal(t, UpdateUpdate, got)

	_, ok = ParseUpdateType("exists")
	assert.False(t, ok)
}

func TestParseChangedFields(t *testing.T) {
	assert.Nil(t, ParseChangedFields(""))
	assert.Nil(t, ParseChangedFields("   "))
	assert.Equal(t,
		[]ChangedField{ChangedContent, ChangedProperties},
		ParseChangedFields("content, Properties,,"))
}

func TestParseWebhookHeaders(t *testing.T) {
	h := http.Header{}
	h.Set(HeaderChannelID, "chan-1")
	h.Set(HeaderChannelToken, "tok")
	h.Set(HeaderChannelExpiration, "Tue, 19 Nov 2026 01:13:52 GMT")
	h.Set(HeaderMessageNumber, "42")
	h.Set(HeaderResourceID, "res-1")
	h.Set(HeaderResourceState, "change")
	h.Set(HeaderResourceURI, "https://www.googleapis.com/drive/v3/changes")
	h.Set(HeaderChanged, "content")

	got := ParseWebhookHeaders(h.Get)

	assert.Equal(t, WebhookHeaders{
		ChannelID:         "chan-1",
		ChannelToken:      "tok",
		ChannelExpiration: "Tue, 19 Nov 2026 01:13:52 GMT",
		MessageNumber:     "42",
		ResourceID:        "res-1",
		ResourceState:     "change",
		ResourceURI:       "https://www.googleapis.com/drive/v3/changes",
		Changed:           "content",
	}, got)
	assert.True(t, got.Complete())
	assert.Equal(t, UpdateChange, got.State())
	assert.Equal(t, int64(42), got.Sequence())
}

func TestWebhookHeaders_Complete(t *testing.T) {
	full := WebhookHeaders{ResourceState: "sync", ResourceID: "r", ResourceURI: "u", MessageNumber: "1"}
	assert.True(t, full.Complete())

	for _, strip := range []func(*WebhookHeaders){
		func(h *WebhookHeaders) { h.ResourceState = "" },
		func(h *WebhookHeaders) { h.ResourceID = "" },
		func(h *WebhookHeaders) { h.ResourceURI = "" },
		func(h *WebhookHeaders) { h.MessageNumber = "" },
	} {
		h := full
		strip(&h)
		assert.False(t, h.Complete())
	}
}

func TestWebhookHeaders_PropertiesOnly(t *testing.T) {
	tests := []struct {
		changed string
		want    bool
	}{
		{"properties", true},
		{" Properties ", true},
		{"content,properties", false},
		{"content", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.changed, func(t *testing.T) {
			assert.Equal(t, tt.want, WebhookHeaders{Changed: tt.changed}.PropertiesOnly())
		})
	}
}

func TestWebhookHeaders_SequenceNotNumeric(t *testing.T) {
	assert.Zero(t, WebhookHeaders{MessageNumber: "abc"}.Sequence())
	assert.Zero(t, WebhookHeaders{}.Sequence())
}
