package domain

import (
	"strconv"
	"strings"
)

// Push-notification headers sent by Google with every delivery.
// See https://developers.google.com/drive/api/guides/push#understanding-drive-api-notification-events
const (
	HeaderChannelID         = "X-Goog-Channel-ID"
	HeaderChannelToken      = "X-Goog-Channel-Token"
	HeaderChannelExpiration = "X-Goog-Channel-Expiration"
	HeaderMessageNumber     = "X-Goog-Message-Number"
	HeaderResourceID        = "X-Goog-Resource-ID"
	HeaderResourceState     = "X-Goog-Resource-State"
	HeaderResourceURI       = "X-Goog-Resource-URI"
	HeaderChanged           = "X-Goog-Changed"
)

// UpdateType is the resource state reported by a delivery.
type UpdateType string

const (
	// UpdateSync is sent once when a channel is created.
	UpdateSync UpdateType = "sync"
	// UpdateAdd reports a resource was created or shared.
	UpdateAdd UpdateType = "add"
	// UpdateRemove reports a resource was deleted or unshared.
	UpdateRemove UpdateType = "remove"
	// UpdateUpdate reports one or more properties of a resource changed.
	UpdateUpdate UpdateType = "update"
	// UpdateTrash reports a resource moved to trash.
	UpdateTrash UpdateType = "trash"
	// UpdateUntrash reports a resource was restored from trash.
	UpdateUntrash UpdateType = "untrash"
	// UpdateChange reports changes to the change log (changes.watch channels).
	UpdateChange UpdateType = "change"
)

// AllUpdateTypes lists every resource state Google can deliver.
var AllUpdateTypes = []UpdateType{
	UpdateAdd, UpdateSync, UpdateRemove, UpdateUpdate, UpdateTrash, UpdateUntrash, UpdateChange,
}

// ParseUpdateType validates a resource state string.
func ParseUpdateType(s string) (UpdateType, bool) {
	t := UpdateType(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range AllUpdateTypes {
		if t == known {
			return t, true
		}
	}
	return "", false
}

// ChangedField is one dimension listed in the X-Goog-Changed header.
type ChangedField string

// Values Google uses in X-Goog-Changed.
const (
	ChangedContent     ChangedField = "content"
	ChangedParents     ChangedField = "parents"
	ChangedChildren    ChangedField = "children"
	ChangedPermissions ChangedField = "permissions"
	ChangedProperties  ChangedField = "properties"
)

// ParseChangedFields splits a comma separated X-Goog-Changed value.
// Empty elements are dropped.
func ParseChangedFields(s string) []ChangedField {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	fields := make([]ChangedField, 0, len(parts))
	for _, p := range parts {
		p = strings.ToLower(strings.TrimSpace(p))
		if p == "" {
			continue
		}
		fields = append(fields, ChangedField(p))
	}
	return fields
}

// WebhookHeaders carries the X-Goog-* headers of a single delivery.
type WebhookHeaders struct {
	ChannelID         string
	ChannelToken      string
	ChannelExpiration string
	MessageNumber     string
	ResourceID        string
	ResourceState     string
	ResourceURI       string
	Changed           string
}

// ParseWebhookHeaders reads delivery headers through get, which is
// typically http.Header.Get.
func ParseWebhookHeaders(get func(key string) string) WebhookHeaders {
	return WebhookHeaders{
		ChannelID:         get(HeaderChannelID),
		ChannelToken:      get(HeaderChannelToken),
		ChannelExpiration: get(HeaderChannelExpiration),
		MessageNumber:     get(HeaderMessageNumber),
		ResourceID:        get(HeaderResourceID),
		ResourceState:     get(HeaderResourceState),
		ResourceURI:       get(HeaderResourceURI),
		Changed:           get(HeaderChanged),
	}
}

// Complete reports whether the headers needed to process a delivery are present.
func (h WebhookHeaders) Complete() bool {
	return h.ResourceState != "" && h.ResourceID != "" && h.ResourceURI != "" && h.MessageNumber != ""
}

// State returns the resource state as an UpdateType.
func (h WebhookHeaders) State() UpdateType {
	return UpdateType(strings.ToLower(strings.TrimSpace(h.ResourceState)))
}

// ChangedFields returns the parsed X-Goog-Changed header.
func (h WebhookHeaders) ChangedFields() []ChangedField {
	return ParseChangedFields(h.Changed)
}

// PropertiesOnly reports whether "properties" is the sole changed dimension.
// A single edit can fire one "properties" delivery and one
// "content,properties" delivery; the first is usually noise.
func (h WebhookHeaders) PropertiesOnly() bool {
	fields := h.ChangedFields()
	return len(fields) == 1 && fields[0] == ChangedProperties
}

// Sequence returns the message number as an integer, or 0 if it is not numeric.
func (h WebhookHeaders) Sequence() int64 {
	n, err := strconv.ParseInt(strings.TrimSpace(h.MessageNumber), 10, 64)
	if err != nil {
		return 0
	}
	return n
}
