// Package drive implements the Drive client used by the watcher.
//
// It wraps google.golang.org/api/drive/v3 behind the driven.DriveClient port:
// channel registration on the changes feed, change listing, start page
// tokens and comment listing. Calls share a rate limiter and Google API
// errors are mapped through google.WrapError.
//
// Configuration is read from the drive.* and webhook.* keys by ParseConfig.
package drive
