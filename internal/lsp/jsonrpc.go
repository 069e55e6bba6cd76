package lsp

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// ErrMalformed marks a message whose framing or body could not be decoded.
// The stream is still usable after it.
var ErrMalformed = errors.New("malformed message")

// MaxMessageSize bounds the body of a single message.
const MaxMessageSize = 64 << 20

// readMessage reads one Content-Length framed JSON-RPC message.
func readMessage(r *bufio.Reader) (*JSONRPCMessage, error) {
	// Read headers
	contentLength := -1
	for {
		line, err := r.ReadString('\n')
		if err != nil {
			if errors.Is(err, io.EOF) && line != "" {
				return nil, io.ErrUnexpectedEOF
			}
			return nil, err
		}

		line = strings.TrimSpace(line)
		if line == "" {
			break // End of headers
		}

		name, value, ok := strings.Cut(line, ":")
		if !ok || !strings.EqualFold(strings.TrimSpace(name), "Content-Length") {
			continue
		}
		contentLength, err = strconv.Atoi(strings.TrimSpace(value))
		if err != nil || contentLength < 0 {
			return nil, fmt.Errorf("%w: invalid Content-Length %q", ErrMalformed, value)
		}
	}

	if contentLength < 0 {
		return nil, fmt.Errorf("%w: missing Content-Length header", ErrMalformed)
	}

	if contentLength > MaxMessageSize {
		// Skip the body so the next message is framed correctly.
		io.CopyN(io.Discard, r, int64(contentLength))
		return nil, fmt.Errorf("%w: body of %d bytes exceeds %d", ErrMalformed, contentLength, MaxMessageSize)
	}

	// Read body
	body := make([]byte, contentLength)
	if _, err := io.ReadFull(r, body); err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}

	var msg JSONRPCMessage
	if err := json.Unmarshal(body, &msg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return &msg, nil
}

// writeMessage writes msg with its Content-Length header.
func writeMessage(w io.Writer, msg *JSONRPCMessage) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}

	header := fmt.Sprintf("Content-Length: %d\r\n\r\n", len(body))
	if _, err := io.WriteString(w, header); err != nil {
		return err
	}
	_, err = w.Write(body)
	return err
}
