package protocol

import "github.com/google/shlex"

// CommandHandler is a function type for handling tokenized command lines
type CommandHandler func(tokens []string) error

// ErrorHandler receives handler and tokenizer failures
type ErrorHandler func(line string, err error)

// Transport assembles command lines from the host byte stream.
// A line ends at '\n', or at the first byte arriving once LineMax
// characters are buffered; that byte is consumed with the line.
type Transport struct {
	line    [LineMax]byte
	n       int
	handler CommandHandler
	onError ErrorHandler

	resetCallback func() // Called by Reset after the partial line is dropped
}

// NewTransport creates a new Transport instance
func NewTransport(handler CommandHandler) *Transport {
	return &Transport{handler: handler}
}

// Receive consumes all available input, dispatching each complete line.
// A partial line is kept for the next call.
func (t *Transport) Receive(input InputBuffer) {
	data := input.Data()
	consumed := 0

	for _, b := range data {
		consumed++
		if b == '\n' || t.n == LineMax {
			t.dispatch()
			continue
		}
		t.line[t.n] = b
		t.n++
	}

	if consumed > 0 {
		input.Pop(consumed)
	}
}

// dispatch tokenizes the buffered line and calls the handler
func (t *Transport) dispatch() {
	line := string(t.line[:t.n])
	t.n = 0
	if err := t.parseLine(line); err != nil && t.onError != nil {
		t.onError(line, err)
	}
}

// parseLine splits a line into shell-style tokens and hands them on.
// Blank lines are ignored.
func (t *Transport) parseLine(line string) (err error) {
	// Recover from any panics in command handlers to prevent firmware crash
	defer func() {
		if r := recover(); r != nil {
			t.n = 0
			if e, ok := r.(error); ok {
				err = e
			} else if s, ok := r.(string); ok {
				err = panicError(s)
			}
		}
	}()

	tokens, err := shlex.Split(line)
	if err != nil {
		return err
	}
	if len(tokens) == 0 || t.handler == nil {
		return nil
	}
	return t.handler(tokens)
}

// Pending returns the number of buffered bytes of an unterminated line
func (t *Transport) Pending() int {
	return t.n
}

// Reset drops any partial line (useful after USB disconnect/reconnect)
func (t *Transport) Reset() {
	t.n = 0
	if t.resetCallback != nil {
		t.resetCallback()
	}
}

// SetResetCallback sets a callback to be called on Reset
func (t *Transport) SetResetCallback(callback func()) {
	t.resetCallback = callback
}

// SetErrorHandler sets the callback for failed lines
func (t *Transport) SetErrorHandler(handler ErrorHandler) {
	t.onError = handler
}

type panicError string

func (e panicError) Error() string {
	return "handler panic: " + string(e)
}
