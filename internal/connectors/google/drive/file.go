package drive

import (
	"time"

	"google.golang.org/api/drive/v3"

	"github.com/custodia-labs/drivewatch/internal/core/domain"
)

// MimeTypeFolder is the MIME type of Drive folders. Folders carry no comments.
const MimeTypeFolder = "application/vnd.google-apps.folder"

// changeFields limits changes.list responses to what the poller uses.
const changeFields = "nextPageToken,newStartPageToken," +
	"changes(fileId,removed,changeType,file(id,name,mimeType,webViewLink,modifiedTime,driveId,trashed))"

// commentFields requests every comment field, including author and quote.
const commentFields = "*"

// ChangeToFile converts one entry of the changes feed to a domain file.
// It reports false for removals, drive-level changes and folders.
func ChangeToFile(change *drive.Change) (domain.File, bool) {
	if change == nil || change.Removed || change.File == nil {
		return domain.File{}, false
	}
	if change.ChangeType != "" && change.ChangeType != "file" {
		return domain.File{}, false
	}
	f := change.File
	if f.MimeType == MimeTypeFolder {
		return domain.File{}, false
	}

	id := f.Id
	if id == "" {
		id = change.FileId
	}

	return domain.File{
		ID:           id,
		Name:         f.Name,
		MimeType:     f.MimeType,
		WebViewLink:  ResolveWebURL(id, f.WebViewLink),
		ModifiedTime: parseTime(f.ModifiedTime),
		DriveID:      f.DriveId,
		Trashed:      f.Trashed,
	}, true
}

// ToComment converts a Drive comment to a domain comment. Timestamps that
// cannot be parsed are left zero.
func ToComment(c *drive.Comment) domain.Comment {
	out := domain.Comment{
		ID:           c.Id,
		Content:      c.Content,
		HTMLContent:  c.HtmlContent,
		CreatedTime:  parseTime(c.CreatedTime),
		ModifiedTime: parseTime(c.ModifiedTime),
		Resolved:     c.Resolved,
		Deleted:      c.Deleted,
		ReplyCount:   len(c.Replies),
	}
	if c.Author != nil {
		out.Author = c.Author.DisplayName
		out.AuthorEmail = c.Author.EmailAddress
	}
	if c.QuotedFileContent != nil {
		out.QuotedContent = c.QuotedFileContent.Value
	}
	return out
}

func parseTime(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
