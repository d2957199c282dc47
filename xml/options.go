package xml

// ============================================================================
// CONFIGURATION
// ============================================================================

// options holds the parser configuration. The zero value is not meaningful
// on its own; use defaultOptions.
type options struct {
	ignoreUndefinedEntities bool
	preserveCdata           bool
	preserveComments        bool
	preserveDocumentType    bool
	resolveUndefinedEntity  func(name string) (string, bool)
}

// Option configures a Parse call.
type Option func(*options)

func defaultOptions() *options {
	return &options{
		preserveComments: true,
	}
}

// IgnoreUndefinedEntities makes unknown "&name;" references in content and
// attribute values pass through verbatim instead of raising UndefinedEntity.
func IgnoreUndefinedEntities() Option {
	return func(o *options) { o.ignoreUndefinedEntities = true }
}

// PreserveCDATA makes CDATA sections produce a distinct CDATA node instead
// of being folded into surrounding Text.
func PreserveCDATA() Option {
	return func(o *options) { o.preserveCdata = true }
}

// SuppressComments stops Comment nodes from being emitted into the tree.
// They are still parsed and validated; only emission is skipped.
func SuppressComments() Option {
	return func(o *options) { o.preserveComments = false }
}

// WithUndefinedEntityResolver registers a hook consulted before an undefined
// entity reference is treated as an error. Returning ok=false falls back to
// IgnoreUndefinedEntities or, failing that, an UndefinedEntity error.
func WithUndefinedEntityResolver(fn func(name string) (string, bool)) Option {
	return func(o *options) { o.resolveUndefinedEntity = fn }
}
