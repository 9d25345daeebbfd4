package server

import (
	"fmt"
	"io"
	"time"

	"github.com/derktes/rc5-remote/rc5"
	"github.com/google/uuid"
)

// dispatchRecord is the history entry kept for every completed request.
type dispatchRecord struct {
	ID             string    `json:"id"`
	Time           time.Time `json:"time"`
	Remote         string    `json:"remote"`
	Device         string    `json:"device"`
	Command        string    `json:"command"`
	DeviceKey      int       `json:"deviceKey"`
	CommandKey     int       `json:"commandKey"`
	Outcome        string    `json:"outcome"`
	Error          string    `json:"error,omitempty"`
	Frame          string    `json:"frame,omitempty"`
	Toggle         uint8     `json:"toggle"`
	DurationMicros int64     `json:"durationMicros,omitempty"`
}

func newDispatchRecord(remote string, r rc5.Result, toggle uint8) dispatchRecord {
	rec := dispatchRecord{
		ID:         uuid.NewString(),
		Time:       time.Now().UTC(),
		Remote:     remote,
		Device:     r.Tokens.Device,
		Command:    r.Tokens.Command,
		DeviceKey:  int(r.Device),
		CommandKey: int(r.Command),
		Outcome:    r.Outcome(),
		Toggle:     toggle,
	}
	if r.Err != nil {
		rec.Error = r.Err.Error()
	}
	if r.Frame != nil {
		rec.Frame = r.Frame.String()
		rec.DurationMicros = r.Waveform.Duration().Microseconds()
	}
	return rec
}

type statusResponse struct {
	Toggle   uint8  `json:"toggle"`
	Total    uint64 `json:"total"`
	Passed   uint64 `json:"passed"`
	Failed   uint64 `json:"failed"`
	Emitter  string `json:"emitter"`
	History  string `json:"history"`
	Capacity int    `json:"capacity"`
}

type registryResponse struct {
	Devices  []rc5.DeviceInfo  `json:"devices"`
	Commands []rc5.CommandInfo `json:"commands"`
}

// writeResponse sends the minimal HTTP reply carrying the PASS/FAIL marker.
func writeResponse(w io.Writer, r rc5.Result) error {
	_, err := fmt.Fprintf(w, "HTTP/1.1 200 OK\r\nContent-Type:text/html\r\nConnection: close\r\n\r\n<H4>%s</H4>\r\n", r.Outcome())
	return err
}
