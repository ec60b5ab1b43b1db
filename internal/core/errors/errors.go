// Package errors provides centralized error definitions for the application.
// Errors are organized by pipeline stage to avoid duplication and provide
// consistent naming.
//
// Naming conventions:
//   - Exported errors (Err*): Use for errors that callers need to check with errors.Is
//   - All sentinel errors should be defined as variables, not inline errors.New calls
//   - Use fmt.Errorf with %w to wrap sentinel errors with context
package errors

import "errors"

// Link parsing errors.
var (
	// ErrParse indicates a URL did not match any supported Telegram link shape.
	ErrParse = errors.New("unrecognized telegram link")
)

// Fetch errors.
var (
	// ErrAccessDenied indicates the session lacks privileges for the chat.
	// The provider chain falls back to the next client on this error.
	ErrAccessDenied = errors.New("access denied")

	// ErrNotFound indicates the message is missing or inaccessible by every
	// configured client.
	ErrNotFound = errors.New("message not found")

	// ErrChannelNotFound indicates the chat referenced by the link could not
	// be resolved.
	ErrChannelNotFound = errors.New("channel not found")

	// ErrNotAChannel indicates the resolved peer is not a channel.
	ErrNotAChannel = errors.New("peer is not a channel")

	// ErrClientNotConfigured indicates no fetch client is available.
	ErrClientNotConfigured = errors.New("client not configured")

	// ErrUnexpectedType indicates an unexpected MTProto type was encountered.
	ErrUnexpectedType = errors.New("unexpected type")
)

// Delivery errors.
var (
	// ErrMediaSend indicates the transport rejected a media upload and the
	// text fallback also failed.
	ErrMediaSend = errors.New("media send failed")
)
