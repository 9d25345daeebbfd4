package sender

import (
	"bytes"
	"net"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
)

func hostPort(t *testing.T, rawURL string) (string, string) {
	t.Helper()
	host, port, err := net.SplitHostPort(strings.TrimPrefix(rawURL, "http://"))
	if err != nil {
		t.Fatal(err)
	}
	return host, port
}

func TestRun(t *testing.T) {
	paths := make(chan string, 1)
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		paths <- r.URL.Path
		if r.URL.Path == "/tvset1/mute" {
			w.Write([]byte("<H4>PASS</H4>\r\n"))
			return
		}
		w.Write([]byte("<H4>FAIL</H4>\r\n"))
	}))
	defer ts.Close()
	host, port := hostPort(t, ts.URL)

	tests := []struct {
		command string
		code    int
		out     string
	}{
		{"mute", ExitPass, "PASS\n"},
		{"dance", ExitFail, "FAIL\n"},
	}
	for _, tt := range tests {
		var stdout, stderr bytes.Buffer
		code := Run([]string{"--server", host, "--port", port, "--device", "tvset1", "--command", tt.command}, &stdout, &stderr)
		if code != tt.code {
			t.Errorf("%s: exit %d, want %d (stderr %q)", tt.command, code, tt.code, stderr.String())
		}
		if stdout.String() != tt.out {
			t.Errorf("%s: stdout %q", tt.command, stdout.String())
		}
		if got := <-paths; got != "/tvset1/"+tt.command {
			t.Errorf("path = %s", got)
		}
	}
}

func TestRunRawServer(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	defer ln.Close()
	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		buf := make([]byte, 1024)
		var req []byte
		for !bytes.Contains(req, []byte("\r\n\r\n")) {
			n, err := conn.Read(buf)
			if err != nil {
				return
			}
			req = append(req, buf[:n]...)
		}
		conn.Write([]byte("HTTP/1.1 200 OK\r\nContent-Type:text/html\r\nConnection: close\r\n\r\n<H4>PASS</H4>\r\n"))
	}()

	port := strconv.Itoa(ln.Addr().(*net.TCPAddr).Port)
	var stdout, stderr bytes.Buffer
	if code := Run([]string{"--server", "127.0.0.1", "--port", port, "--device", "cd", "--command", "play"}, &stdout, &stderr); code != ExitPass {
		t.Errorf("exit %d, stderr %q", code, stderr.String())
	}
}

func TestRunErrors(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("hello"))
	}))
	defer ts.Close()
	host, port := hostPort(t, ts.URL)

	tests := []struct {
		name string
		args []string
	}{
		{"missing device", []string{"--command", "mute"}},
		{"missing command", []string{"--device", "cd"}},
		{"bad flag", []string{"--volume", "11"}},
		{"bad log level", []string{"--device", "cd", "--command", "mute", "--log-level", "loud"}},
		{"no marker", []string{"--server", host, "--port", port, "--device", "cd", "--command", "mute"}},
		{"refused", []string{"--server", "127.0.0.1", "--port", "1", "--device", "cd", "--command", "mute"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var stdout, stderr bytes.Buffer
			if code := Run(tt.args, &stdout, &stderr); code != ExitTransport {
				t.Errorf("exit %d, want %d", code, ExitTransport)
			}
			if stdout.Len() != 0 {
				t.Errorf("stdout %q", stdout.String())
			}
		})
	}
}

func TestParseOutcome(t *testing.T) {
	if got, err := parseOutcome([]byte("<H4>FAIL</H4>")); err != nil || got != OutcomeFail {
		t.Errorf("got %q, %v", got, err)
	}
	if _, err := parseOutcome([]byte("<H4>MAYBE</H4>")); err == nil {
		t.Error("unknown marker accepted")
	}
}
