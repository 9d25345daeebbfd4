package rc5

// DefaultMaxTokenLength is the size of each token buffer, terminator
// included, so a token holds at most DefaultMaxTokenLength-1 characters.
const DefaultMaxTokenLength = 20

type parseState int

const (
	stateIdle parseState = iota
	stateReadingDevice
	stateReadingCommand
	stateComplete
)

func (s parseState) String() string {
	switch s {
	case stateIdle:
		return "idle"
	case stateReadingDevice:
		return "reading-device"
	case stateReadingCommand:
		return "reading-command"
	default:
		return "complete"
	}
}

// Tokens are the two names extracted from a request line. A token that was
// never terminated is empty.
type Tokens struct {
	Device  string
	Command string
}

// Parser extracts Tokens from request text one character at a time:
//
//	.../<device>/<command><space>...
//
// A blank line ends the request. Feed reports it; Finish hands back the
// tokens and rewinds the parser for the next request.
type Parser struct {
	max       int
	state     parseState
	device    []byte
	command   []byte
	lineBlank bool
	err       error
}

// NewParser returns a parser whose token buffers hold maxTokenLength bytes
// including the terminator. Values below 2 select DefaultMaxTokenLength.
func NewParser(maxTokenLength int) *Parser {
	if maxTokenLength < 2 {
		maxTokenLength = DefaultMaxTokenLength
	}
	p := &Parser{
		max:     maxTokenLength,
		device:  make([]byte, 0, maxTokenLength-1),
		command: make([]byte, 0, maxTokenLength-1),
	}
	p.Reset()
	return p
}

// Reset discards any partial request.
func (p *Parser) Reset() {
	p.state = stateIdle
	p.device = p.device[:0]
	p.command = p.command[:0]
	p.lineBlank = true
	p.err = nil
}

// Feed consumes one character and reports whether it ended the request
// (a newline on an otherwise blank line).
func (p *Parser) Feed(c byte) bool {
	switch p.state {
	case stateIdle:
		if c == '/' {
			p.state = stateReadingDevice
		}
	case stateReadingDevice:
		switch c {
		case '/':
			p.state = stateReadingCommand
		case '\r', '\n':
			p.device = p.device[:0]
			p.abandon(ErrMalformedRequest)
		default:
			p.device = p.push(p.device, c)
		}
	case stateReadingCommand:
		switch c {
		case ' ':
			p.state = stateComplete
		case '\r', '\n':
			p.command = p.command[:0]
			p.abandon(ErrMalformedRequest)
		default:
			p.command = p.push(p.command, c)
		}
	}

	switch c {
	case '\n':
		if p.lineBlank {
			return true
		}
		p.lineBlank = true
	case '\r':
	default:
		p.lineBlank = false
	}
	return false
}

// Finish returns the tokens of the request that just ended and resets the
// parser. err is ErrBufferOverflow or ErrMalformedRequest when the request
// line did not carry two terminated tokens.
func (p *Parser) Finish() (tok Tokens, err error) {
	err = p.err
	if err == nil && p.state != stateComplete {
		err = ErrMalformedRequest
	}
	tok.Device = string(p.device)
	if p.state == stateReadingDevice {
		tok.Device = ""
	}
	if p.state == stateComplete {
		tok.Command = string(p.command)
	}
	p.Reset()
	return tok, err
}

func (p *Parser) push(buf []byte, c byte) []byte {
	if len(buf)+1 >= p.max {
		p.abandon(ErrBufferOverflow)
		return buf[:0]
	}
	return append(buf, c)
}

func (p *Parser) abandon(err error) {
	if p.err == nil {
		p.err = err
	}
	p.state = stateComplete
}
