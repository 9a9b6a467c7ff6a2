/*
Cti starts an interactive cmdtree console session.

It connects a single operator player at management level and registers the
core commands. It will then read lines from stdin and dispatch each one as a
command of the operator, printing every message the operator receives to
stdout, until the "/quit" command is input or the input ends.

Usage:

	cti [flags]

The flags are:

	-v, --version
		Give the current version of cmdtree and then exit.

	-n, --name NAME
		Use the given name for the operator player. Defaults to "Console". The
		name must be a single word and cannot be a number.

	-d, --direct
		Force reading directly from the console as opposed to using GNU readline
		based routines for reading command input even if launched in a tty with
		stdin and stdout.

	--log-level LEVEL
		Write log output at or above the given level to stderr. Must be one of
		debug, info, warn, error, or fatal. Defaults to warn.

Once a session has started, type "/help" for a list of commands. Any line that
is not a command is echoed back as chat. To exit the console, type "/quit".
*/
package main

import (
	"fmt"
	"os"

	"github.com/dekarrin/cmdtree"
	"github.com/dekarrin/cmdtree/internal/logger"
	"github.com/dekarrin/cmdtree/internal/version"
	"github.com/spf13/pflag"
)

const (

	// ExitSuccess indicates a successful program execution.
	ExitSuccess = iota

	// ExitConsoleError indicates an unsuccessful program execution due to a
	// problem while the console was running.
	ExitConsoleError

	// ExitInitError indicates an unsuccessful program execution due to an issue
	// initializing the console.
	ExitInitError
)

var (
	returnCode      int = ExitSuccess
	flagVersion         = pflag.BoolP("version", "v", false, "Give the current version of cmdtree and then exit.")
	flagName            = pflag.StringP("name", "n", cmdtree.DefaultOperatorName, "Use the given name for the operator player.")
	flagForceDirect     = pflag.BoolP("direct", "d", false, "Force reading directly from stdin instead of going through GNU readline where possible.")
	flagLogLevel        = pflag.String("log-level", "warn", "Minimum level of log output written to stderr.")
)

func main() {
	defer func() {
		if panicErr := recover(); panicErr != nil {
			// we are panicking, make sure we dont lose the panic just because
			// we checked
			panic(fmt.Sprintf("unrecoverable panic occured: %v", panicErr))
		} else {
			os.Exit(returnCode)
		}
	}()

	pflag.Parse()

	if *flagVersion {
		fmt.Printf("%s\n", version.Current)
		return
	}

	if err := logger.Configure(*flagLogLevel, ""); err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: log level: %s\n", err.Error())
		returnCode = ExitInitError
		return
	}

	con, initErr := cmdtree.New(os.Stdin, os.Stdout, *flagName, *flagForceDirect)
	if initErr != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %s\n", initErr.Error())
		returnCode = ExitInitError
		return
	}
	defer con.Close()

	err := con.RunUntilQuit()
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %s\n", err.Error())
		returnCode = ExitConsoleError
		return
	}
}
