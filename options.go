package ooxmark

// ParseOptions holds configuration for document parsing.
type ParseOptions struct {
	// lenient drops malformed sheets or slides with a diagnostic instead
	// of failing the parse.
	lenient bool

	// includeHidden parses hidden worksheets as well.
	includeHidden bool

	// workers bounds the goroutines used for per-section parsing;
	// 0 selects GOMAXPROCS.
	workers int
}

// defaultOptions returns the default parse options.
func defaultOptions() ParseOptions {
	return ParseOptions{
		lenient:       false,
		includeHidden: false,
		workers:       0,
	}
}
