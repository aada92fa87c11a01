package drive

// ResolveWebURL returns the browser URL of a file.
// The API-provided webViewLink takes precedence; otherwise the generic
// file viewer URL is built from the ID.
func ResolveWebURL(fileID, webViewLink string) string {
	if webViewLink != "" {
		return webViewLink
	}
	if fileID == "" {
		return ""
	}
	return "https://drive.google.com/file/d/" + fileID + "/view"
}
