package tui

import (
	"fmt"
	"io"
)

// Reporter writes categorized status lines to an output stream.
type Reporter struct {
	out    io.Writer
	styles Styles
}

func NewReporter(out io.Writer, styles Styles) *Reporter {
	return &Reporter{out: out, styles: styles}
}

// Writer exposes the underlying stream, e.g. for prompts that share it.
func (r *Reporter) Writer() io.Writer {
	return r.out
}

func (r *Reporter) Header(msg string) {
	r.emit(CategoryHeader, msg)
}

func (r *Reporter) Infof(format string, args ...any) {
	r.emit(CategoryInfo, fmt.Sprintf(format, args...))
}

func (r *Reporter) Successf(format string, args ...any) {
	r.emit(CategorySuccess, fmt.Sprintf(format, args...))
}

func (r *Reporter) Warnf(format string, args ...any) {
	r.emit(CategoryWarning, fmt.Sprintf(format, args...))
}

func (r *Reporter) Errorf(format string, args ...any) {
	r.emit(CategoryError, fmt.Sprintf(format, args...))
}

func (r *Reporter) emit(c Category, msg string) {
	fmt.Fprintln(r.out, r.styles.Format(c, msg))
}
