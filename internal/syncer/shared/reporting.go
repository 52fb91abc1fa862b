package shared

import (
	"fmt"
	"io"
	"os"

	"github.com/temirov/reposync/internal/utils"
)

// Reporter emits per-item progress and summary lines to an underlying sink.
type Reporter interface {
	Printf(format string, args ...any)
}

type writerReporter struct {
	writer io.Writer
}

// NewWriterReporter constructs a Reporter that writes to the provided
// io.Writer, falling back to standard output. Concurrent tasks share one
// reporter, so the sink is wrapped to serialize writes.
func NewWriterReporter(writer io.Writer) Reporter {
	if writer == nil || writer == io.Discard {
		writer = os.Stdout
	}
	return writerReporter{writer: utils.NewFlushingWriter(writer)}
}

func (reporter writerReporter) Printf(format string, args ...any) {
	if reporter.writer == nil {
		return
	}
	fmt.Fprintf(reporter.writer, format, args...)
}
