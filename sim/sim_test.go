package sim

import (
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func writeFile(path, content string) error {
	return os.WriteFile(path, []byte(content), 0o644)
}

const raceSource = `console.log('A')
setTimeout(() => {
  console.log('B')
}, 0)
Promise.resolve().then(() => {
  console.log('C')
})
console.log('D')`

func TestParseScenario(t *testing.T) {
	text := `
[Source]
Inline = "console.log('hi')"

[Run]
TickIntervalMs = 50

[Predict]
Order = ["hi"]
`
	s, err := parseScenario(strings.NewReader(text))
	require.NoError(t, err)
	require.Equal(t, "console.log('hi')", s.Source.Inline)
	require.Equal(t, 50, s.Run.TickIntervalMs)
	// Unset values get defaults.
	require.Equal(t, DefaultStepIntervalMs, s.Run.StepIntervalMs)
	require.Equal(t, DefaultMaxSteps, s.Run.MaxSteps)
	require.Equal(t, []string{"hi"}, s.Predict.Order)
}

func TestLoadScenarioDerivesSourceFile(t *testing.T) {
	dir := t.TempDir()
	tomlPath := dir + "/demo.toml"
	require.NoError(t, writeFile(tomlPath, "[Run]\nMaxSteps = 100\n"))
	require.NoError(t, writeFile(dir+"/demo.js", "console.log('from file')\n"))

	s, err := LoadScenarioFromFile(tomlPath)
	require.NoError(t, err)
	require.Equal(t, dir+"/demo.js", s.Source.File)

	text, err := s.SourceText()
	require.NoError(t, err)
	require.Equal(t, "console.log('from file')\n", text)

	simulator, err := s.BuildSimulator()
	require.NoError(t, err)
	report, err := simulator.RunToEnd(s.Run.TickIntervalMs, s.Run.MaxSteps)
	require.NoError(t, err)
	require.Equal(t, []string{"from file"}, report.Output)
}

func TestRunToEndAndVerdict(t *testing.T) {
	s := New(raceSource)
	report, err := s.RunToEnd(100, 10000)
	require.NoError(t, err)
	require.True(t, report.Finished)
	require.Equal(t, []string{"A", "D", "C", "B"}, report.Output)
	require.NotEmpty(t, report.Session)
	require.NotZero(t, report.Fingerprint)

	require.True(t, s.CheckPrediction([]string{"A", "D", "C", "B"}).Correct)

	verdict := s.CheckPrediction([]string{"A", "B", "C", "D"})
	require.False(t, verdict.Correct)
	require.Equal(t, []string{"A", "D", "C", "B"}, verdict.Actual)
}

func TestExpectedLogsAreSourceOrder(t *testing.T) {
	s := New(raceSource)
	require.Equal(t, []string{"A", "B", "C", "D"}, s.ExpectedLogs())
}

func TestSnapshotIsolation(t *testing.T) {
	s := New(`console.log('a')`)
	snap := s.Snapshot()
	snap.Log = append(snap.Log, "tampered")
	snap.Stack = nil
	fresh := s.Snapshot()
	require.Empty(t, fresh.Log)
	require.Len(t, fresh.Stack, 1)
}

func TestResetRebuildsFromSource(t *testing.T) {
	s := New(raceSource)
	_, err := s.RunToEnd(100, 10000)
	require.NoError(t, err)
	require.True(t, s.Finished())

	s.Reset()
	snap := s.Snapshot()
	require.False(t, snap.Finished)
	require.Empty(t, snap.Log)
	require.Len(t, snap.Stack, 1)
	require.Equal(t, "main", snap.Stack[0].Name)
}

func TestLoadReplacesSource(t *testing.T) {
	s := New(`console.log('old')`)
	s.Load(`console.log('new')`)
	report, err := s.RunToEnd(100, 1000)
	require.NoError(t, err)
	require.Equal(t, []string{"new"}, report.Output)
}

func TestAutoRunFinishes(t *testing.T) {
	s := New(raceSource)
	require.NoError(t, s.StartAuto(time.Millisecond, time.Millisecond))
	require.ErrorIs(t, s.StartAuto(time.Millisecond, time.Millisecond), ErrAutoRunning)

	deadline := time.Now().Add(5 * time.Second)
	for !s.Finished() && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	s.StopAuto()
	s.StopAuto() // idempotent

	require.True(t, s.Finished())
	require.Equal(t, []string{"A", "D", "C", "B"}, s.Snapshot().Log)
}

func TestFormatSnapshotSections(t *testing.T) {
	s := New(raceSource)
	s.Step() // log A
	s.Step() // register timer
	text := FormatSnapshot(s.Snapshot())
	require.Contains(t, text, "Call Stack:")
	require.Contains(t, text, "* main")
	require.Contains(t, text, "setTimeout remaining=0ms")
	require.Contains(t, text, "  A\n")
	require.Contains(t, text, "Status: running (line 2)")
}

func TestResetDuringAutoRun(t *testing.T) {
	s := New(raceSource)
	require.NoError(t, s.StartAuto(time.Millisecond, time.Millisecond))
	time.Sleep(10 * time.Millisecond)
	s.Reset()
	// Reset stopped the auto-run; state stays at the fresh parse.
	snap := s.Snapshot()
	time.Sleep(10 * time.Millisecond)
	after := s.Snapshot()
	require.Equal(t, snap.Log, after.Log)
	require.False(t, after.Finished)
}
