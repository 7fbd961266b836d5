package driven

// Normaliser extracts plain text from one document format.
type Normaliser interface {
	// Normalise converts raw file bytes into plain text.
	// Corrupt or unreadable content is reported as an error.
	Normalise(content []byte) (string, error)

	// SupportedTypes returns the lowercase file extensions this normaliser
	// handles, including the leading dot (".pdf", ".txt").
	SupportedTypes() []string

	// Priority returns the normaliser priority (higher = more specific).
	//   50-89:  Format-specific (PDF, DOCX, Markdown)
	//   10-49:  Generic (plain text)
	Priority() int
}

// NormaliserRegistry selects a normaliser by file extension.
// When multiple normalisers match an extension, the highest priority one is used.
type NormaliserRegistry interface {
	// Get retrieves the best-matching normaliser for a path or extension.
	// Matching is case-insensitive. Returns nil if no normaliser handles it.
	Get(pathOrExt string) Normaliser

	// GetAll retrieves all normalisers for an extension, sorted by priority (highest first).
	GetAll(pathOrExt string) []Normaliser

	// Register registers a normaliser.
	Register(normaliser Normaliser)

	// List returns all registered extensions.
	List() []string
}

// PostProcessor transforms the chunks of one document.
// Processors form a pipeline: Chunker -> Trimmer -> Deduplicator.
type PostProcessor interface {
	// Process applies post-processing to content chunks.
	// The first processor (Chunker) receives a single chunk with the full text.
	Process(chunks []Chunk) []Chunk

	// Name returns the processor name for logging/debugging.
	Name() string

	// Order returns the processor order in the pipeline (lower = earlier).
	Order() int
}

// Chunk is a piece of document text moving through the pipeline.
type Chunk struct {
	// Content is the text content of the chunk
	Content string

	// Position is the chunk index within the document (0-based)
	Position int

	// StartOffset is the byte offset from document start
	StartOffset int

	// EndOffset is the byte offset for chunk end
	EndOffset int
}

// PostProcessorPipeline chains post-processors in order.
type PostProcessorPipeline interface {
	// Process splits raw document text into chunks ready for embedding.
	Process(content string) []Chunk

	// Add adds a processor to the pipeline.
	Add(processor PostProcessor)

	// List returns processor names in order.
	List() []string
}
