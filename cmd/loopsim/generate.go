package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/loopsim-dev/loopsim/gen"
	"github.com/loopsim-dev/loopsim/parser"
	"github.com/loopsim-dev/loopsim/task"
)

var (
	nestedFlag    bool
	logFlag       bool
	timerFlag     bool
	promiseFlag   bool
	microtaskFlag bool
	nextTickFlag  bool
	immediateFlag bool
	expectedFlag  bool
	shuffleSeed   int64
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Emit a sample source for the selected features",
	Run:   generateCommand,
}

func init() {
	generateCmd.Flags().BoolVar(&nestedFlag, "nested", false, "Nest registrations inside async bodies")
	generateCmd.Flags().BoolVar(&logFlag, "log", true, "Include console.log statements")
	generateCmd.Flags().BoolVar(&timerFlag, "timer", true, "Include setTimeout")
	generateCmd.Flags().BoolVar(&promiseFlag, "promise", true, "Include Promise.resolve().then")
	generateCmd.Flags().BoolVar(&microtaskFlag, "microtask", false, "Include queueMicrotask")
	generateCmd.Flags().BoolVar(&nextTickFlag, "next-tick", false, "Include process.nextTick")
	generateCmd.Flags().BoolVar(&immediateFlag, "immediate", false, "Include setImmediate")
	generateCmd.Flags().BoolVar(&expectedFlag, "expected", false, "Also print the depth-first log order")
	generateCmd.Flags().Int64Var(&shuffleSeed, "shuffle", -1, "Also print a seeded shuffle of the log order")
}

func generateCommand(cmd *cobra.Command, args []string) {
	complexity := gen.Flat
	if nestedFlag {
		complexity = gen.Nested
	}
	source := gen.Generate(complexity, gen.Features{
		Log:       logFlag,
		Timer:     timerFlag,
		Promise:   promiseFlag,
		Microtask: microtaskFlag,
		NextTick:  nextTickFlag,
		Immediate: immediateFlag,
	})
	fmt.Print(source)

	if expectedFlag || shuffleSeed >= 0 {
		logs := task.Logs(parser.Parse(source))
		if expectedFlag {
			fmt.Printf("// source order: %s\n", strings.Join(logs, ", "))
		}
		if shuffleSeed >= 0 {
			fmt.Printf("// shuffled: %s\n", strings.Join(gen.Shuffle(logs, shuffleSeed), ", "))
		}
	}
}
