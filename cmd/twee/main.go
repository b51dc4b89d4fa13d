package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/twee-engine/twee"
	"github.com/twee-engine/twee/internal/host"
	"github.com/twee-engine/twee/internal/host/hostconfig"
)

// Grounded on _examples/clarete-langlang/go/cmd/langlang/main.go: a flat
// args struct populated by flag.* calls, read once at the top of main.
type args struct {
	sourcePath *string
	configPath *string
	seed       *int64
}

func readArgs() *args {
	a := &args{
		sourcePath: flag.String("source", "", "Path to the Twee source file"),
		configPath: flag.String("config", "", "Path to a host config file (optional)"),
		seed:       flag.Int64("seed", 0, "Seed for random(); 0 uses the wall clock"),
	}
	flag.Parse()
	return a
}

func main() {
	a := readArgs()
	if *a.sourcePath == "" {
		fmt.Fprintln(os.Stderr, "usage: twee -source <file> [-config <file>] [-seed N]")
		os.Exit(2)
	}

	src, err := os.ReadFile(*a.sourcePath)
	if err != nil {
		log.Fatalf("reading source: %v", err)
	}

	program, err := twee.ParseProgram(string(src))
	if err != nil {
		log.Fatalf("parsing %s: %v", *a.sourcePath, err)
	}

	cfg := hostconfig.NewConfig()
	if *a.configPath != "" {
		if err := cfg.LoadFile(*a.configPath); err != nil {
			log.Fatalf("loading config: %v", err)
		}
	}

	screen, err := host.NewTerminalScreen(cfg)
	if err != nil {
		log.Fatalf("opening screen: %v", err)
	}
	defer screen.Close()

	vm, err := twee.NewVM(program, screen)
	if err != nil {
		log.Fatalf("starting vm: %v", err)
	}
	vm.SetLineWidth(cfg.GetInt("text.line_max_len"))
	if *a.seed != 0 {
		vm.SetRand(host.NewSeededRand(*a.seed))
	}

	vm.Run()
	for vm.State() != twee.Stopped {
		if !screen.PollInput(vm) {
			return
		}
		vm.Run()
	}
}
