// Package cmdtree contains a console for driving the command system from an
// interactive shell. A single operator player is connected at management
// level and every line read is dispatched as that player until the /quit
// command is received.
package cmdtree

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/dekarrin/cmdtree/internal/actor"
	"github.com/dekarrin/cmdtree/internal/command"
	"github.com/dekarrin/cmdtree/internal/features/core"
	"github.com/dekarrin/cmdtree/internal/input"
	"github.com/dekarrin/cmdtree/internal/level"
	"github.com/dekarrin/cmdtree/internal/logger"
	"github.com/dekarrin/cmdtree/internal/message"
	"github.com/dekarrin/cmdtree/internal/players"
	"github.com/dekarrin/cmdtree/internal/strparse"
	"github.com/dekarrin/rosed"
)

// DefaultOperatorName is the name of the console player if none is given.
const DefaultOperatorName = "Console"

const consoleOutputWidth = 80

// Console contains the things needed to run the command system from an
// interactive shell attached to an input stream and an output stream.
type Console struct {
	players  *players.Manager
	commands *command.Manager
	core     *core.Feature
	operator *players.Player

	in          input.Reader
	out         *bufio.Writer
	forceDirect bool
	running     bool
	log         *log.Logger
}

// New creates a new console ready to operate on the given input and output
// streams, with an operator player called name. It will immediately open a
// buffered reader on the input stream and a buffered writer on the output
// stream.
//
// If nil is given for the input stream, a bufio.Reader is opened on stdin. If
// nil is given for the output stream, a bufio.Writer is opened on stdout. If
// name is empty, DefaultOperatorName is used.
func New(inputStream io.Reader, outputStream io.Writer, name string, forceDirectInput bool) (*Console, error) {
	if inputStream == nil {
		inputStream = os.Stdin
	}
	if outputStream == nil {
		outputStream = os.Stdout
	}
	if name == "" {
		name = DefaultOperatorName
	}

	con := &Console{
		players:     players.NewManager(),
		out:         bufio.NewWriter(outputStream),
		forceDirect: forceDirectInput,
		log:         logger.For("console"),
	}
	con.players.MessageWidth = 0
	con.commands = command.NewManager(con.players, nil)

	var err error
	con.operator, err = con.players.Connect(name, level.Management)
	if err != nil {
		return nil, fmt.Errorf("connect operator: %w", err)
	}

	con.core, err = core.New(con.commands, con.players)
	if err != nil {
		return nil, fmt.Errorf("register core commands: %w", err)
	}

	err = con.commands.Command("quit").Build(con.onQuit).Err()
	if err != nil {
		con.core.Dispose()
		return nil, fmt.Errorf("register quit command: %w", err)
	}

	useReadline := !forceDirectInput && inputStream == os.Stdin && outputStream == os.Stdout

	if useReadline {
		con.in, err = input.NewInteractiveReader()
		if err != nil {
			con.core.Dispose()
			return nil, fmt.Errorf("initializing interactive-mode input reader: %w", err)
		}
	} else {
		con.in = input.NewDirectReader(inputStream)
	}

	return con, nil
}

// Commands returns the command manager of the console so that additional
// command trees can be registered before it is run.
func (con *Console) Commands() *command.Manager {
	return con.commands
}

// Operator returns the player that input is dispatched as.
func (con *Console) Operator() *players.Player {
	return con.operator
}

// Close closes all resources associated with the Console, including any
// readline-related resources created for interactive mode.
func (con *Console) Close() error {
	if con.running {
		return fmt.Errorf("cannot close a running console")
	}

	con.core.Dispose()
	con.commands.Remove("quit")

	err := con.in.Close()
	if err != nil {
		return fmt.Errorf("close command reader: %w", err)
	}

	return nil
}

func (con *Console) onQuit(a actor.Actor, _ command.Args) bool {
	con.running = false
	return true
}

// RunUntilQuit begins reading lines from the input stream and dispatching
// them until the /quit command is received or the input ends.
func (con *Console) RunUntilQuit() error {
	introMsg := "cmdtree console\n"
	if con.forceDirect {
		introMsg += "(direct input mode)\n"
	}
	introMsg += "===============\n"
	introMsg += "\n"
	if err := con.write(introMsg); err != nil {
		return err
	}
	if err := con.print(message.Format(message.Welcome, con.operator.Name())); err != nil {
		return err
	}

	con.running = true
	defer func() {
		con.running = false
	}()

	for con.running {
		line, err := con.in.ReadCommand()
		if err == io.EOF {
			break
		} else if err != nil {
			return fmt.Errorf("get user command: %w", err)
		}

		con.handle(line)

		if err := con.print(con.operator.Drain()...); err != nil {
			return err
		}
	}

	return con.print(message.Goodbye)
}

func (con *Console) handle(line string) {
	if con.commands.Dispatch(con.operator, line) {
		return
	}

	if strings.HasPrefix(line, "/") {
		name := strparse.FirstWord(strings.TrimPrefix(line, "/"))
		con.log.Debug("unknown command", "command", name)
		con.operator.SendMessage(message.Format(message.CommandUnknown, name))
		return
	}

	con.players.Broadcast(level.Player, message.Format(message.Chat, con.operator.Name(), line))
}

// print writes each message wrapped to the console width.
func (con *Console) print(msgs ...string) error {
	var sb strings.Builder
	for _, m := range msgs {
		sb.WriteString(rosed.Edit(m).Wrap(consoleOutputWidth).String())
		sb.WriteRune('\n')
	}
	return con.write(sb.String())
}

func (con *Console) write(s string) error {
	if _, err := con.out.WriteString(s); err != nil {
		return fmt.Errorf("could not write output: %w", err)
	}
	if err := con.out.Flush(); err != nil {
		return fmt.Errorf("could not flush output: %w", err)
	}
	return nil
}
