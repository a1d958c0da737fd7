package document

// MetadataMode defines how metadata should be handled when formatting documents.
// Different modes control which metadata fields are included in the output,
// allowing optimization for specific use cases like citation display or
// prompt packing.
type MetadataMode string

const (
	// MetadataModeAll includes all available metadata in the formatted content.
	// Use this mode when you need complete document information.
	MetadataModeAll MetadataMode = "all"

	// MetadataModeEmbed includes only metadata relevant for embedding processes.
	// This mode optimizes content for vector embedding generation.
	MetadataModeEmbed MetadataMode = "embed"

	// MetadataModeInference includes only metadata relevant for inference operations.
	// This mode focuses on metadata that affects model inference behavior.
	MetadataModeInference MetadataMode = "inference"

	// MetadataModeNone excludes all metadata from the formatted content.
	// Use this mode when you only need the raw document content.
	MetadataModeNone MetadataMode = "none"
)

// Formatter defines an interface for formatting document content with flexible
// metadata inclusion. Implementations should handle various document types
// and provide consistent output formatting across different metadata modes.
type Formatter interface {
	// Format produces a string representation of a document with controlled metadata.
	// The mode parameter determines which metadata fields are included in the output.
	// Implementations should handle nil documents gracefully and provide meaningful defaults.
	Format(doc *Document, mode MetadataMode) string
}
