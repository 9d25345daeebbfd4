package sender

import (
	"bytes"
	"fmt"
)

// Outcome markers carried in the response body.
const (
	OutcomePass = "PASS"
	OutcomeFail = "FAIL"
)

const maxResponseSize = 4096

// parseOutcome finds the <H4>PASS</H4> or <H4>FAIL</H4> marker in body.
func parseOutcome(body []byte) (string, error) {
	for _, outcome := range []string{OutcomePass, OutcomeFail} {
		if bytes.Contains(body, []byte("<H4>"+outcome+"</H4>")) {
			return outcome, nil
		}
	}
	return "", fmt.Errorf("no outcome marker in response %q", bytes.TrimSpace(body))
}
