package domain

import "time"

// File is a changed Drive file as reported by the changes feed.
type File struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	MimeType     string    `json:"mimeType"`
	WebViewLink  string    `json:"webViewLink,omitempty"`
	ModifiedTime time.Time `json:"modifiedTime"`
	DriveID      string    `json:"driveId,omitempty"`
	Trashed      bool      `json:"trashed"`
}

// Comment is a comment on a Drive file.
type Comment struct {
	ID            string    `json:"id"`
	Content       string    `json:"content"`
	HTMLContent   string    `json:"htmlContent,omitempty"`
	Author        string    `json:"author,omitempty"`
	AuthorEmail   string    `json:"authorEmail,omitempty"`
	CreatedTime   time.Time `json:"createdTime"`
	ModifiedTime  time.Time `json:"modifiedTime"`
	Resolved      bool      `json:"resolved"`
	Deleted       bool      `json:"deleted"`
	QuotedContent string    `json:"quotedContent,omitempty"`
	ReplyCount    int       `json:"replyCount"`
}

// ChangeInfo describes the delivery that led to an event.
type ChangeInfo struct {
	State       string `json:"state"`
	ResourceURI string `json:"resourceURI"`
	Changed     string `json:"changed"`
}

// ChangeEvent is emitted once per new or modified comment.
type ChangeEvent struct {
	Comment Comment    `json:"comment"`
	File    File       `json:"file"`
	Change  ChangeInfo `json:"change"`
}

// EventMeta is the emission metadata attached to a ChangeEvent.
type EventMeta struct {
	// ID is the dedupe key: the delivery's X-Goog-Message-Number.
	ID string `json:"id"`

	// Summary is a short human-readable description (the comment text).
	Summary string `json:"summary"`

	// Timestamp is the comment's modification time.
	Timestamp time.Time `json:"ts"`
}

// Emission pairs an event with its metadata.
type Emission struct {
	Event ChangeEvent `json:"event"`
	Meta  EventMeta   `json:"meta"`
}

// DedupeKey returns the key a local sink uses to drop repeated emissions.
// Several comments can share one delivery, so the comment ID is included.
func (e Emission) DedupeKey() string {
	return e.Meta.ID + "/" + e.Event.Comment.ID
}
