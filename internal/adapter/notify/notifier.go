package notify

import (
	"fmt"
	"io"
	"sync"

	"github.com/rs/zerolog"

	"github.com/rl1809/storefront/internal/log"
	"github.com/rl1809/storefront/internal/port"
)

// LogNotifier records user-facing messages in the structured log. It is the
// sink used by the HTTP server where there is no terminal to print to.
type LogNotifier struct {
	logger zerolog.Logger
}

func NewLogNotifier(logger zerolog.Logger) *LogNotifier {
	return &LogNotifier{logger: logger.With().Str(log.KeyTag, "notification").Logger()}
}

func (n *LogNotifier) Success(message string) {
	n.logger.Info().Msg(message)
}

func (n *LogNotifier) Error(message string) {
	n.logger.Warn().Msg(message)
}

// WriterNotifier prints one line per message.
type WriterNotifier struct {
	mu sync.Mutex
	w  io.Writer
}

func NewWriterNotifier(w io.Writer) *WriterNotifier {
	return &WriterNotifier{w: w}
}

func (n *WriterNotifier) Success(message string) {
	n.write("✓", message)
}

func (n *WriterNotifier) Error(message string) {
	n.write("✗", message)
}

func (n *WriterNotifier) write(mark, message string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	fmt.Fprintf(n.w, "%s %s\n", mark, message)
}

var (
	_ port.Notifier = (*LogNotifier)(nil)
	_ port.Notifier = (*WriterNotifier)(nil)
)
