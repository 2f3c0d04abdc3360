// Package render turns the unified document model into Markdown, plain
// text, or JSON.
package render

// TableMode selects how tables with merged cells are rendered when a
// Markdown pipe table cannot express them.
type TableMode int

const (
	// TableMarkdown renders pipe tables, flattening merged cells.
	TableMarkdown TableMode = iota
	// TableHTML falls back to an HTML <table> subtree for merged cells.
	TableHTML
	// TableASCII falls back to a box-drawn grid for merged cells.
	TableASCII
)

// CleanupPreset names a bundle of text-normalization stages.
type CleanupPreset int

const (
	// CleanupNone applies no cleanup.
	CleanupNone CleanupPreset = iota
	// CleanupMinimal applies Unicode normalization and final whitespace
	// normalization.
	CleanupMinimal
	// CleanupStandard adds line cleaning (page numbers, running headers,
	// TOC leaders) to Minimal.
	CleanupStandard
	// CleanupAggressive adds structure filtering to Standard.
	CleanupAggressive
)

// Options configures Markdown rendering.
type Options struct {
	// FrontMatter emits a YAML frontmatter block from document metadata.
	FrontMatter bool
	// EscapeSpecial backslash-escapes Markdown control characters in run
	// text.
	EscapeSpecial bool
	// ParagraphSpacing puts two blank lines between blocks instead of one.
	ParagraphSpacing bool
	// TableMode picks the fallback for tables with merged cells.
	TableMode TableMode
	// Cleanup selects the text-cleanup preset applied to the output.
	Cleanup CleanupPreset
	// MaxHeading caps heading depth, 1-6.
	MaxHeading int
}

// DefaultOptions returns the default render options.
func DefaultOptions() Options {
	return Options{
		TableMode:  TableMarkdown,
		Cleanup:    CleanupNone,
		MaxHeading: 6,
	}
}

// Option flag bits, the binary contract used by embedders.
const (
	// FlagFrontMatter enables YAML frontmatter.
	FlagFrontMatter = 1
	// FlagEscapeSpecial enables Markdown escaping.
	FlagEscapeSpecial = 2
	// FlagParagraphSpacing doubles blank lines between blocks.
	FlagParagraphSpacing = 4
)

// OptionsFromFlags builds Options from OR-ed flag bits.
func OptionsFromFlags(flags int) Options {
	opts := DefaultOptions()
	opts.FrontMatter = flags&FlagFrontMatter != 0
	opts.EscapeSpecial = flags&FlagEscapeSpecial != 0
	opts.ParagraphSpacing = flags&FlagParagraphSpacing != 0
	return opts
}

// JSON output modes.
const (
	// JSONPretty indents with two spaces and ends with a newline.
	JSONPretty = 0
	// JSONCompact emits minified JSON.
	JSONCompact = 1
)

// normalized clamps option values into their valid ranges.
func (o Options) normalized() Options {
	if o.MaxHeading < 1 {
		o.MaxHeading = 6
	}
	if o.MaxHeading > 6 {
		o.MaxHeading = 6
	}
	return o
}
