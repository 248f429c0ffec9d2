package domain

import "strings"

const unknownDescription = "Unknown"

// PasteService identifies a paste/publish backend. Chunk content is
// uploaded there and the resulting public URL is embedded in the
// delivered message.
type PasteService string

// Available paste services.
const (
	// PasteServiceDpaste is dpaste.org (no account required).
	PasteServiceDpaste PasteService = "dpaste"

	// PasteServiceSprunge is sprunge.us (no account required).
	PasteServiceSprunge PasteService = "sprunge"

	// PasteServiceGist is GitHub Gist (requires a token).
	PasteServiceGist PasteService = "gist"

	// PasteServiceGDrive is Google Drive (requires a token).
	PasteServiceGDrive PasteService = "gdrive"
)

// IsValid returns true if the paste service is recognised.
func (p PasteService) IsValid() bool {
	switch p {
	case PasteServiceDpaste, PasteServiceSprunge, PasteServiceGist, PasteServiceGDrive:
		return true
	default:
		return false
	}
}

// RequiresToken returns true if this service needs an access token.
func (p PasteService) RequiresToken() bool {
	return p == PasteServiceGist || p == PasteServiceGDrive
}

// String returns the string representation.
func (p PasteService) String() string {
	return string(p)
}

// Description returns a human-readable description of the service.
func (p PasteService) Description() string {
	switch p {
	case PasteServiceDpaste:
		return "dpaste.org (anonymous)"
	case PasteServiceSprunge:
		return "sprunge.us (anonymous)"
	case PasteServiceGist:
		return "GitHub Gist (token required)"
	case PasteServiceGDrive:
		return "Google Drive (token required)"
	default:
		return unknownDescription
	}
}

// PasteServices lists all supported services in display order.
func PasteServices() []PasteService {
	return []PasteService{
		PasteServiceDpaste,
		PasteServiceSprunge,
		PasteServiceGist,
		PasteServiceGDrive,
	}
}

// Default settings values.
const (
	// DefaultChunkSize is the chunk size limit in bytes.
	DefaultChunkSize = 2000

	// DefaultMessageFormat is the message template used when the user
	// has not configured one. See AppSettings.MessageFormat for the
	// placeholder set.
	DefaultMessageFormat = "Part {chunkIndex} of {chunkCount} from \"{title}\" ({chapter}, section {chapterChunkIndex}). Please read it and reply: {url}"
)

// MessageFormat placeholders, replaced at dispatch time.
const (
	PlaceholderTitle             = "{title}"
	PlaceholderChapter           = "{chapter}"
	PlaceholderChapterChunkIndex = "{chapterChunkIndex}"
	PlaceholderChunkIndex        = "{chunkIndex}"
	PlaceholderChunkCount        = "{chunkCount}"
	PlaceholderURL               = "{url}"
)

// AppSettings holds the user-facing configuration.
type AppSettings struct {
	// ChunkSize is the maximum chunk length in bytes. Always > 0.
	ChunkSize int

	// PasteService selects the publish backend.
	PasteService PasteService

	// MessageFormat is the template for delivered messages. Supported
	// placeholders: {title}, {chapter}, {chapterChunkIndex},
	// {chunkIndex}, {chunkCount}, {url}.
	MessageFormat string
}

// DefaultAppSettings returns the settings used before any configuration.
func DefaultAppSettings() AppSettings {
	return AppSettings{
		ChunkSize:     DefaultChunkSize,
		PasteService:  PasteServiceDpaste,
		MessageFormat: DefaultMessageFormat,
	}
}

// Validate checks the settings for consistency.
func (s AppSettings) Validate() error {
	if s.ChunkSize <= 0 {
		return ErrInvalidInput
	}
	if !s.PasteService.IsValid() {
		return ErrInvalidInput
	}
	if strings.TrimSpace(s.MessageFormat) == "" || !strings.Contains(s.MessageFormat, PlaceholderURL) {
		return ErrInvalidInput
	}
	return nil
}
