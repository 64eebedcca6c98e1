package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/loopsim-dev/loopsim/sim"
)

var (
	showStateFlag bool
	autoFlag      bool
	tickMsFlag    int
	stepMsFlag    int
	maxStepsFlag  int
)

var runCmd = &cobra.Command{
	Use:   "run FILE",
	Short: "Run a source file or .toml scenario to completion",
	Args:  cobra.MinimumNArgs(1),
	Run:   runCommand,
}

func init() {
	runCmd.Flags().BoolVar(&showStateFlag, "state", false, "Print the final engine state snapshot")
	runCmd.Flags().BoolVar(&autoFlag, "auto", false, "Drive the run on real timer cadences instead of synchronously")
	runCmd.Flags().IntVar(&tickMsFlag, "tick", sim.DefaultTickIntervalMs, "Virtual tick interval in ms")
	runCmd.Flags().IntVar(&stepMsFlag, "step", sim.DefaultStepIntervalMs, "Auto-run step cadence in ms")
	runCmd.Flags().IntVar(&maxStepsFlag, "max-steps", sim.DefaultMaxSteps, "Abort after this many events")
}

func runCommand(cmd *cobra.Command, args []string) {
	filename := args[0]

	var scenario *sim.Scenario
	if strings.HasSuffix(filename, ".toml") {
		s, err := sim.LoadScenarioFromFile(filename)
		if err != nil {
			log.Fatal().Err(err).Msg("Couldn't load scenario file")
		}
		scenario = s
	} else {
		b, err := os.ReadFile(filename)
		if err != nil {
			log.Fatal().Err(err).Msg("Couldn't read source file")
		}
		scenario = &sim.Scenario{Source: sim.SourceDetails{Inline: string(b)}}
	}
	if cmd.Flags().Changed("tick") || scenario.Run.TickIntervalMs == 0 {
		scenario.Run.TickIntervalMs = tickMsFlag
	}
	if cmd.Flags().Changed("step") || scenario.Run.StepIntervalMs == 0 {
		scenario.Run.StepIntervalMs = stepMsFlag
	}
	if cmd.Flags().Changed("max-steps") || scenario.Run.MaxSteps == 0 {
		scenario.Run.MaxSteps = maxStepsFlag
	}

	simulator, err := scenario.BuildSimulator()
	if err != nil {
		log.Fatal().Err(err).Msg("Couldn't build simulator")
	}

	var report *sim.Report
	if autoFlag {
		report, err = runAuto(simulator, scenario.Run)
	} else {
		report, err = simulator.RunToEnd(scenario.Run.TickIntervalMs, scenario.Run.MaxSteps)
	}
	if err != nil {
		log.Fatal().Err(err).Msg("Simulation did not finish")
	}

	if showStateFlag {
		fmt.Fprint(os.Stderr, sim.FormatSnapshot(simulator.Snapshot()))
		fmt.Fprintln(os.Stderr)
	}
	fmt.Fprint(os.Stderr, sim.FormatReport(report))

	if len(scenario.Predict.Order) > 0 {
		verdict := simulator.CheckPrediction(scenario.Predict.Order)
		fmt.Fprintln(os.Stderr)
		fmt.Fprint(os.Stderr, sim.FormatVerdict(verdict))
	}
}

// runAuto drives the simulator on its real cadences and waits for it
// to quiesce, bounded by the step budget.
func runAuto(simulator *sim.Simulator, run sim.RunDetails) (*sim.Report, error) {
	stepEvery := time.Duration(run.StepIntervalMs) * time.Millisecond
	tickEvery := time.Duration(run.TickIntervalMs) * time.Millisecond
	if err := simulator.StartAuto(stepEvery, tickEvery); err != nil {
		return nil, err
	}
	defer simulator.StopAuto()

	deadline := time.Now().Add(time.Duration(run.MaxSteps) * stepEvery)
	for !simulator.Finished() {
		if time.Now().After(deadline) {
			return nil, fmt.Errorf("auto-run did not finish within %d steps", run.MaxSteps)
		}
		time.Sleep(stepEvery)
	}
	return simulator.ReportNow()
}
