package main

import (
	"os"

	"github.com/derktes/rc5-remote/sender/sender"
)

func main() {
	os.Exit(sender.Run(os.Args[1:], os.Stdout, os.Stderr))
}
