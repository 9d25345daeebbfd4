// Package sender is a command line client for the RC-5 remote server. It
// issues one request per invocation and reports the PASS/FAIL outcome.
package sender

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/pflag"
)

// Exit codes.
const (
	ExitPass      = 0
	ExitFail      = 1
	ExitTransport = 2
)

type flagSet struct {
	serverHost string
	serverPort int
	device     string
	command    string
	timeout    time.Duration
	logLevel   string
}

func (fs *flagSet) parseRequiredFlags(args []string, stderr io.Writer) error {
	flags := pflag.NewFlagSet("sender", pflag.ContinueOnError)
	flags.SetOutput(stderr)
	flags.StringVar(&fs.serverHost, "server", "localhost", "Specifies host name or IP address of the server")
	flags.IntVar(&fs.serverPort, "port", 80, "Specifies the port number of the server")
	flags.StringVar(&fs.device, "device", "", "Specifies the device name, e.g. tvset1")
	flags.StringVar(&fs.command, "command", "", "Specifies the command name, e.g. volumeup")
	flags.DurationVar(&fs.timeout, "timeout", 5*time.Second, "Specifies how long to wait for the server")
	flags.StringVar(&fs.logLevel, "log-level", "info", "Specifies the log level")
	if err := flags.Parse(args); err != nil {
		return err
	}
	if fs.device == "" {
		flags.Usage()
		return errors.New("device not specified")
	}
	if fs.command == "" {
		flags.Usage()
		return errors.New("command not specified")
	}
	return nil
}

// Run sends one request described by args and returns the process exit code.
func Run(args []string, stdout, stderr io.Writer) int {
	log := logrus.New()
	log.SetOutput(stderr)

	var fs flagSet
	if err := fs.parseRequiredFlags(args, stderr); err != nil {
		if !errors.Is(err, pflag.ErrHelp) {
			log.Error(err)
		}
		return ExitTransport
	}
	level, err := logrus.ParseLevel(fs.logLevel)
	if err != nil {
		log.Error(err)
		return ExitTransport
	}
	log.SetLevel(level)

	client, err := newSendClient(fs.serverHost, fs.serverPort, fs.timeout)
	if err != nil {
		log.WithError(err).Error("Error creating send client")
		return ExitTransport
	}
	log.Debugf("Requests will be sent to '%s'", client.serverURL)

	outcome, err := client.send(fs.device, fs.command)
	if err != nil {
		log.WithError(err).Error("Request failed")
		return ExitTransport
	}
	fmt.Fprintln(stdout, outcome)
	log.WithFields(logrus.Fields{
		"device":  fs.device,
		"command": fs.command,
		"outcome": outcome,
	}).Debug("Request complete")
	if outcome == OutcomePass {
		return ExitPass
	}
	return ExitFail
}
