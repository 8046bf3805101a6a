package core

import (
	"flag"
	"os"

	"go.uber.org/zap"
)

// All the available arguments
type Arguments struct {
	RunCommand    *flag.FlagSet // Commands related to running a benchmark
	CheckCommand  *flag.FlagSet // Commands related to checking a configuration
	MirrorCommand *flag.FlagSet // Commands related to running the mirror server
	RunArgs       *RunArgs      // Run arguments
	CheckArgs     *CheckArgs    // Check arguments
	MirrorArgs    *MirrorArgs   // Mirror arguments
}

// Arguments for the run command
type RunArgs struct {
	BenchConfigPath string // Path to the benchmark configuration
	ResultPath      string // Directory the report is written into
	Verbose         bool   // Log at debug level
}

// Arguments for the check command
type CheckArgs struct {
	BenchConfigPath string // Path to the benchmark configuration
}

// Arguments for the mirror command
type MirrorArgs struct {
	ListenAddr string // Address the mirror server listens on
	Verbose    bool   // Log at debug level
}

// Initialise the arguments
func DefineArguments() *Arguments {

	runCommand := flag.NewFlagSet("run", flag.ExitOnError)
	checkCommand := flag.NewFlagSet("check", flag.ExitOnError)
	mirrorCommand := flag.NewFlagSet("mirror", flag.ExitOnError)

	runArgs := RunArgs{}
	checkArgs := CheckArgs{}
	mirrorArgs := MirrorArgs{}

	// General arguments
	// --config

	runCommand.StringVar(&runArgs.BenchConfigPath, "config", "", "--config=/path/to/config (required)")
	runCommand.StringVar(&runArgs.BenchConfigPath, "c", "", "-c /path/to/config")
	checkCommand.StringVar(&checkArgs.BenchConfigPath, "config", "", "--config=/path/to/config (required)")
	checkCommand.StringVar(&checkArgs.BenchConfigPath, "c", "", "-c /path/to/config")

	// Run Arguments
	runCommand.StringVar(&runArgs.ResultPath, "results", "results", "--results=/path/to/result/dir")
	runCommand.StringVar(&runArgs.ResultPath, "r", "results", "-r /path/to/result/dir")

	runCommand.BoolVar(&runArgs.Verbose, "verbose", false, "--verbose")
	runCommand.BoolVar(&runArgs.Verbose, "v", false, "-v")

	// Mirror Arguments
	mirrorCommand.StringVar(&mirrorArgs.ListenAddr, "listen", "127.0.0.1:9090", "--listen=host:port")
	mirrorCommand.StringVar(&mirrorArgs.ListenAddr, "l", "127.0.0.1:9090", "-l host:port")

	mirrorCommand.BoolVar(&mirrorArgs.Verbose, "verbose", false, "--verbose")
	mirrorCommand.BoolVar(&mirrorArgs.Verbose, "v", false, "-v")

	// Return all the arguments
	return &Arguments{
		RunCommand:    runCommand,    // The run command FlagSet
		CheckCommand:  checkCommand,  // The check command FlagSet
		MirrorCommand: mirrorCommand, // The mirror command FlagSet
		RunArgs:       &runArgs,      // The run argument list, contains config and other args
		CheckArgs:     &checkArgs,    // The check argument list
		MirrorArgs:    &mirrorArgs,   // The mirror argument list
	}
}

// Check the run arguments conform to specified requirements
func (ra *RunArgs) CheckArgs() {
	if ra.BenchConfigPath == "" {
		zap.L().Error("benchmark config not provided")
		os.Exit(1)
	}
}

// Checks that the check arguments are correct
func (ca *CheckArgs) CheckArgs() {
	if ca.BenchConfigPath == "" {
		zap.L().Error("benchmark config not provided")
		os.Exit(1)
	}
}

// Checks that the mirror arguments are correct
func (ma *MirrorArgs) CheckArgs() {
	if ma.ListenAddr == "" {
		zap.L().Error("listen address not provided")
		os.Exit(1)
	}
}
