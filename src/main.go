package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/integrii/flaggy"

	"lifegrid/src/harness"
	"lifegrid/src/model"
	"lifegrid/src/server"
	"lifegrid/src/universe"
	"lifegrid/src/view"
)

type EnvOptions struct {
	interactive bool
	randomData  bool
	template    string
	noColor     bool
	path        string
}

type commands struct {
	run   *flaggy.Subcommand
	check *flaggy.Subcommand
	serve *flaggy.Subcommand
}

func main() {
	eo, uo, so, cmds := initOptions()

	switch {
	case cmds.check.Used:
		os.Exit(check(eo, uo))
	case cmds.serve.Used:
		os.Exit(serve(so))
	case cmds.run.Used:
		os.Exit(run(eo, uo))
	default:
		flaggy.ShowHelpAndExit("no command given")
	}
}

func initOptions() (eo *EnvOptions, uo *universe.Options, so *server.Options, cmds commands) {
	o := universe.DefaultUniverseOptions
	uo = &o
	s := server.DefaultServerOptions
	so = &s
	eo = &EnvOptions{template: "testSample1"}
	engines := "Engine to use [" + strings.Join(model.Engines(), "|") + "]"
	templateNames := make([]string, 0, len(universe.Templates))
	for _, t := range universe.Templates {
		templateNames = append(templateNames, t.Name)
	}

	flaggy.SetName("lifegrid")
	flaggy.SetDescription("Conway's Game of Life on a toroidal grid")
	flaggy.DefaultParser.ShowHelpOnUnexpected = true

	cmds.run = flaggy.NewSubcommand("run")
	cmds.run.Description = "Run the simulation"
	cmds.run.Int(&uo.Width, "x", "width", "Width of a simulation field")
	cmds.run.Int(&uo.Height, "y", "height", "Height of a simulation field")
	cmds.run.Duration(&uo.Interval, "i", "interval", "Simulation speed (interval between the steps) in format the number with 'ms' suffix, for example 150ms")
	cmds.run.Int(&uo.MaxSteps, "s", "maxSteps", "Limit the simulation to maxSteps")
	cmds.run.Int64(&uo.Seed, "", "seed", "Seed of the random data, 0 seeds by the clock")
	cmds.run.Bool(&eo.interactive, "n", "interactive", "Start interactive mode")
	cmds.run.Bool(&eo.randomData, "r", "random", "Settle with random data")
	cmds.run.String(&eo.template, "t", "template", "Template to settle ["+strings.Join(templateNames, "|")+"]")
	cmds.run.String(&uo.Engine, "e", "engine", engines)

	cmds.check = flaggy.NewSubcommand("check")
	cmds.check.Description = "Check the generations recorded in the test files"
	cmds.check.AddPositionalValue(&eo.path, "path", 1, true, "Test file or directory with test files")
	cmds.check.String(&uo.Engine, "e", "engine", engines)
	cmds.check.Bool(&eo.noColor, "", "no-color", "Disable colored output")

	cmds.serve = flaggy.NewSubcommand("serve")
	cmds.serve.Description = "Serve the front-end files over HTTP"
	cmds.serve.String(&so.Addr, "a", "addr", "Address to listen on")
	cmds.serve.String(&so.Root, "d", "dir", "Directory to serve")
	cmds.serve.Duration(&so.ReadTimeout, "", "readTimeout", "Read timeout per connection")

	flaggy.AttachSubcommand(cmds.run, 1)
	flaggy.AttachSubcommand(cmds.check, 1)
	flaggy.AttachSubcommand(cmds.serve, 1)
	flaggy.Parse()

	if !knownEngine(uo.Engine) {
		flaggy.ShowHelpAndExit("unknown engine")
	}
	return
}

func knownEngine(name string) bool {
	for _, e := range model.Engines() {
		if e == name {
			return true
		}
	}
	return false
}

func run(eo *EnvOptions, uo *universe.Options) int {
	u, err := universe.New(uo, nil)
	if err != nil {
		log.Printf("can't create the universe: %v", err)
		return 2
	}
	defer u.Close()
	universe.AddTemplates(u)

	if eo.randomData {
		u.SettleWithRandomData()
	} else if !u.SettleTemplate(eo.template) {
		log.Printf("unknown template %q", eo.template)
		return 2
	}

	if eo.interactive {
		v := view.NewViewTerminal()
		u.RegisterViewer(v)
		v.Start()
		return 0
	}

	c := view.NewConsoleOut(os.Stdout)
	u.RegisterViewer(c)
	c.Start()
	u.Run()
	<-c.Finished()
	return 0
}

func check(eo *EnvOptions, uo *universe.Options) int {
	c := harness.NewChecker(harness.ModelFactory(uo.Engine), os.Stdout, !eo.noColor)
	failed, err := c.Run([]string{eo.path})
	if err != nil {
		log.Printf("check: %v", err)
		return 2
	}
	if failed > 0 {
		return 1
	}
	return 0
}

func serve(so *server.Options) int {
	logger := log.New(os.Stderr, "", log.LstdFlags)
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := server.Serve(ctx, server.New(*so, logger), logger); err != nil {
		logger.Printf("serve: %v", err)
		return 1
	}
	return 0
}
