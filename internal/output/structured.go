package output

import (
	"fmt"
	"io"

	"cosmossdk.io/log"
	"github.com/rs/zerolog"
)

// NewStructuredLogger builds the structured logger handed to the engine.
// format is "text" or "json".
func NewStructuredLogger(w io.Writer, level, format string, noColor bool) (log.Logger, error) {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}
	opts := []log.Option{log.LevelOption(lvl)}
	switch format {
	case "json":
		opts = append(opts, log.OutputJSONOption())
	case "text", "":
		opts = append(opts, log.ColorOption(!noColor && IsTerminal(w)))
	default:
		return nil, fmt.Errorf("invalid log format %q", format)
	}
	return log.NewLogger(w, opts...), nil
}
