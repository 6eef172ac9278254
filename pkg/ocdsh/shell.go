// Package ocdsh is an interactive shell on top of the OpenOCD Tcl RPC.
package ocdsh

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/abiosoft/ishell"

	"github.com/robotalks/blinky.go/pkg/config"
	"github.com/robotalks/blinky.go/pkg/extract"
	"github.com/robotalks/blinky.go/pkg/openocd"
)

// Debugger is the part of the OpenOCD client used by the shell.
type Debugger interface {
	extract.Target
	Resume() error
	ResumeAt(addr uint32) error
	ReadMemory(addr uint32, count, width int) ([]uint32, error)
	SetBreakpoint(addr uint32, length int, hardware bool) error
	RemoveBreakpoint(addr uint32) error
	Close() error
}

// Shell provides ishell backed interactive shell.
type Shell struct {
	Interactive bool
	OutputJSON  bool
	AutoConnect bool

	Shell    *ishell.Shell
	Config   *config.Config
	Debugger Debugger
	Addr     string

	extractor *extract.Extractor
	lastErr   error
}

const (
	shellKey          = "$shell"
	unconnectedPrompt = "[none] > "
	connectTimeout    = 5 * time.Second
)

var (
	// flags

	evalOnly   bool
	outputJSON bool

	commands []*ishell.Cmd
)

func init() {
	flag.BoolVar(&evalOnly, "e", evalOnly, "Evaluation only, no interactive shell.")
	flag.BoolVar(&outputJSON, "json", outputJSON, "Print output in JSON.")
}

// AddCmds is used by other commands providers during init func.
func AddCmds(cmds ...*ishell.Cmd) {
	commands = append(commands, cmds...)
}

// New creates a new shell.
func New(conf *config.Config) *Shell {
	s := &Shell{
		Interactive: !evalOnly,
		OutputJSON:  outputJSON,

		Shell:  ishell.New(),
		Config: conf,
	}
	s.Shell.Set(shellKey, s)
	s.Shell.SetPrompt(unconnectedPrompt)
	for _, cmd := range commands {
		s.Shell.AddCmd(cmd)
	}
	return s
}

// ShellFrom gets Shell from ishell context.
func ShellFrom(c *ishell.Context) *Shell {
	return c.Get(shellKey).(*Shell)
}

// WithAutoConnect sets AutoConnect.
func (s *Shell) WithAutoConnect(en bool) *Shell {
	s.AutoConnect = en
	return s
}

// Connect connects to OpenOCD at addr, the configured address if empty.
func (s *Shell) Connect(addr string) error {
	if addr == "" {
		addr = s.Config.OCDAddr
	}
	client := openocd.New(addr)
	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()
	if err := client.Connect(ctx); err != nil {
		return err
	}
	s.Disconnect()
	s.Attach(client, addr)
	return nil
}

// Attach uses a connected Debugger.
func (s *Shell) Attach(d Debugger, name string) {
	s.Debugger, s.Addr = d, name
	s.Shell.SetPrompt(fmt.Sprintf("%s > ", name))
}

// Disconnect closes the current connection.
func (s *Shell) Disconnect() {
	if s.Debugger != nil {
		s.Debugger.Close()
		s.Debugger, s.Addr, s.extractor = nil, "", nil
		s.Shell.SetPrompt(unconnectedPrompt)
	}
}

// Run runs the shell.
func (s *Shell) Run(args ...string) {
	if s.AutoConnect {
		addr := s.Config.OCDAddr
		if s.Interactive {
			s.Shell.Printf("Connecting %s ...\n", addr)
		}
		if err := s.Connect(addr); err != nil {
			log.Fatalf("connect %q failed: %v", addr, err)
		}
	}
	defer s.Disconnect()

	if len(args) > 0 {
		if err := s.Shell.Process(args...); err != nil {
			log.Fatalln(err)
		}
		if s.lastErr != nil {
			log.Fatalln(s.lastErr)
		}
		return
	}
	if s.Interactive {
		s.Shell.Run()
		return
	}
	log.Fatalln("command expected")
}

// Main is a helper to provide a single call in main.
func Main() {
	flag.Parse()
	New(config.NewConfig()).WithAutoConnect(true).Run(flag.Args()...)
}
