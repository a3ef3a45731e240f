// Command expensemail reads transaction-notification emails from a labeled
// inbox and appends the parsed purchases to a monthly spreadsheet tab.
package main

import (
	"fmt"
	"os"

	"github.com/imalan123/personal-llm-agent/pkg/logging"
)

func main() {
	logger := logging.Setup(logging.DefaultConfig())

	command := "run"
	if len(os.Args) > 1 {
		command = os.Args[1]
	}

	var err error
	switch command {
	case "run":
		err = runBatch(logger)
	case "setup":
		force := len(os.Args) > 2 && os.Args[2] == "--force"
		err = runSetup(logger, force)
	case "status":
		err = runStatus()
	case "help", "-h", "--help":
		usage()
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n", command)
		usage()
		os.Exit(2)
	}

	if err != nil {
		logger.Error("command failed", "command", command, "error", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Println(`Usage: expensemail [command]

Commands:
  run      Pull labeled notification emails and append them to the sheet (default)
  setup    Run the interactive Google authorization flow
  status   Report configuration and authentication health`)
}
