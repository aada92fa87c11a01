// Package connectors holds the clients for the remote services drivewatch
// talks to. Each connector adapts a vendor SDK to a driven port.
package connectors
