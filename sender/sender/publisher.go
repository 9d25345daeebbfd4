package sender

import (
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

type sendClient struct {
	serverURL string
	http      *http.Client
}

func newSendClient(serverHost string, serverPort int, timeout time.Duration) (*sendClient, error) {
	serverURLString := fmt.Sprintf("http://%s:%d", serverHost, serverPort)
	if _, err := url.Parse(serverURLString); err != nil {
		return nil, err
	}
	return &sendClient{serverURL: serverURLString, http: &http.Client{Timeout: timeout}}, nil
}

// send issues GET /<device>/<command> and returns the outcome marker.
func (sc *sendClient) send(device, command string) (string, error) {
	target := sc.serverURL + "/" + url.PathEscape(device) + "/" + url.PathEscape(command)
	response, err := sc.http.Get(target)
	if err != nil {
		return "", err
	}
	defer response.Body.Close()
	if response.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected status %s", response.Status)
	}
	body, err := io.ReadAll(io.LimitReader(response.Body, maxResponseSize))
	if err != nil {
		return "", err
	}
	return parseOutcome(body)
}
