package client

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"alfredoptarigan/intelliapply/internal/feed"
)

const maxFrameSize = 4 * 1024 * 1024

// readChanges decodes a server-sent event stream and hands each change to fn
// in arrival order. It returns when the stream ends. Frames that do not
// decode are skipped.
func readChanges(r io.Reader, fn func(feed.Change)) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), maxFrameSize)

	var data []string
	dispatch := func() {
		if len(data) == 0 {
			return
		}
		payload := strings.Join(data, "\n")
		data = data[:0]

		var c feed.Change
		if err := json.Unmarshal([]byte(payload), &c); err != nil {
			return
		}
		fn(c)
	}

	for scanner.Scan() {
		line := scanner.Text()
		switch {
		case line == "":
			dispatch()
		case strings.HasPrefix(line, ":"):
			// comment or heartbeat
		case strings.HasPrefix(line, "data:"):
			data = append(data, strings.TrimPrefix(strings.TrimPrefix(line, "data:"), " "))
		}
	}

	// an unterminated trailing frame is dropped
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("change feed: %w", err)
	}
	return nil
}
