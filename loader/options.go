package loader

type options struct {
	format   *Format
	indent   int
	comments bool
}

func newOptions(opts []Option) *options {
	res := &options{indent: 2, comments: true}
	for _, o := range opts {
		o(res)
	}
	return res
}

// Option configures reading and writing.
type Option func(*options)

// WithFormat forces the format of ReadFile and WriteFile instead of
// deriving it from the file extension.
func WithFormat(f Format) Option {
	return func(o *options) { o.format = &f }
}

// WithIndent sets the indentation width of encoded output. Zero makes JSON
// output compact.
func WithIndent(n int) Option {
	return func(o *options) { o.indent = n }
}

// WithComments controls whether YAML comments are read into the tree and
// written from it. It is on by default; other formats carry no comments.
func WithComments(v bool) Option {
	return func(o *options) { o.comments = v }
}
