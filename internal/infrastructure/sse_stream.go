package infrastructure

import (
	"bufio"
	"io"
	"strings"
	"sync"

	"github.com/vidgrab/vidgrab/internal/domain"
	"go.uber.org/zap"
)

// maxSSELine bounds a single stream line
const maxSSELine = 1 << 20

// sseStream decodes a text/event-stream body into download events.
// Only unnamed ("message") events are delivered; id and retry fields are ignored.
type sseStream struct {
	body    io.ReadCloser
	scanner *bufio.Scanner
	logger  *zap.Logger

	closeOnce sync.Once
	closeErr  error
}

func newSSEStream(body io.ReadCloser, logger *zap.Logger) *sseStream {
	scanner := bufio.NewScanner(body)
	scanner.Buffer(make([]byte, 0, 4096), maxSSELine)
	return &sseStream{
		body:    body,
		scanner: scanner,
		logger:  logger,
	}
}

// Next returns the next recognised event. Unknown or malformed messages are
// skipped. An error means the connection ended before a terminal event.
func (s *sseStream) Next() (domain.Event, error) {
	for {
		data, err := s.readMessage()
		if err != nil {
			return domain.Event{}, err
		}

		event, err := domain.ParseEvent(data)
		if err != nil {
			s.logger.Debug("Ignoring stream message",
				zap.String("data", data),
				zap.Error(err))
			continue
		}
		return event, nil
	}
}

// readMessage returns the data of the next dispatched message event
func (s *sseStream) readMessage() (string, error) {
	var lines []string
	eventName := ""
	for s.scanner.Scan() {
		line := s.scanner.Text()
		if line == "" {
			name := eventName
			data := lines
			lines, eventName = nil, ""
			if len(data) == 0 {
				continue
			}
			if name != "" && name != "message" {
				s.logger.Debug("Ignoring named stream event", zap.String("event", name))
				continue
			}
			return strings.Join(data, "\n"), nil
		}
		if strings.HasPrefix(line, ":") {
			continue
		}

		field, value, _ := strings.Cut(line, ":")
		value = strings.TrimPrefix(value, " ")
		switch field {
		case "data":
			lines = append(lines, value)
		case "event":
			eventName = value
		}
	}
	if err := s.scanner.Err(); err != nil {
		return "", err
	}
	// a partial message without its blank line is never dispatched
	return "", io.ErrUnexpectedEOF
}

// Close releases the underlying connection
func (s *sseStream) Close() error {
	s.closeOnce.Do(func() {
		s.closeErr = s.body.Close()
	})
	return s.closeErr
}
