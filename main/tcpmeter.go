package main

import (
	"fmt"
	"os"

	"tcpmeter/core"
	"tcpmeter/core/configs/parsers"
	"tcpmeter/mirror"

	"go.uber.org/zap"
)

func printWelcome(mode string) {
	fmt.Println("=====================")
	fmt.Println("  Welcome to tcpmeter")
	fmt.Printf("    %s\n", mode)
	fmt.Println("=====================")
}

// Run the benchmark
func runBenchmark(runArgs *core.RunArgs) {
	// Check the arguments
	runArgs.CheckArgs()

	zap.L().Info("loading config",
		zap.String("bench config", runArgs.BenchConfigPath),
	)

	// Parse the configuration.
	bConfig, err := parsers.ParseBenchConfig(runArgs.BenchConfigPath)

	if err != nil {
		zap.L().Error(err.Error())
		os.Exit(1)
	}

	// Initialise the benchmark
	b, err := core.InitBenchmark(bConfig, runArgs.ResultPath)

	if err != nil {
		zap.L().Error(err.Error())
		os.Exit(1)
	}

	// Run the benchmark flow
	if err := b.Run(); err != nil {
		os.Exit(1)
	}
}

// Check a configuration without sending anything
func runCheck(checkArgs *core.CheckArgs) {
	// Check the arguments
	checkArgs.CheckArgs()

	bConfig, err := parsers.ParseBenchConfig(checkArgs.BenchConfigPath)

	if err != nil {
		zap.L().Error(err.Error())
		os.Exit(1)
	}

	totalRequests, err := parsers.GetTotalNumberOfRequests(bConfig)

	if err != nil {
		zap.L().Error(err.Error())
		os.Exit(1)
	}

	zap.L().Info("configuration is valid",
		zap.String("name", bConfig.Name),
		zap.String("target", bConfig.Target.Address()),
		zap.String("framing", string(bConfig.Client.Type)),
		zap.Int("threads", bConfig.Threads),
		zap.Int("requests", len(bConfig.Requests)),
		zap.Int("planned samples", totalRequests),
	)
}

// Run the mirror server until the process is stopped
func runMirror(mirrorArgs *core.MirrorArgs) {
	// Check the arguments
	mirrorArgs.CheckArgs()

	srv, err := mirror.Listen(mirrorArgs.ListenAddr)

	if err != nil {
		zap.L().Error(err.Error())
		os.Exit(1)
	}

	zap.L().Info("mirror server listening",
		zap.String("address", srv.Addr()),
	)

	if err := srv.Serve(); err != nil {
		zap.L().Error(err.Error())
		os.Exit(1)
	}
}

// Main running function
func main() {
	args := core.DefineArguments()

	if len(os.Args) < 2 {
		// This is going to be a run
		args.RunCommand.Parse(os.Args[1:])
		core.PrepareLogger(args.RunArgs.Verbose)
		zap.L().Warn("No subcommand given, running the benchmark!")
		runBenchmark(args.RunArgs)
	} else {
		switch os.Args[1] {
		case "run":
			// Print the welcome message
			printWelcome("BENCHMARK RUN")

			// Parse the arguments
			args.RunCommand.Parse(os.Args[2:])

			core.PrepareLogger(args.RunArgs.Verbose)

			runBenchmark(args.RunArgs)

		case "check":
			// Print the welcome message
			printWelcome("CONFIG CHECK")

			// Parse the arguments
			args.CheckCommand.Parse(os.Args[2:])

			core.PrepareLogger(false)

			runCheck(args.CheckArgs)

		case "mirror":
			// Print the welcome message
			printWelcome("MIRROR SERVER")

			// Parse the arguments
			args.MirrorCommand.Parse(os.Args[2:])

			core.PrepareLogger(args.MirrorArgs.Verbose)

			runMirror(args.MirrorArgs)

		default:
			fmt.Printf("unknown subcommand %q, expected run, check or mirror\n", os.Args[1])
			os.Exit(1)
		}
	}
}
