package script

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func newTestRunner(t *testing.T) *Runner {
	r := NewRunner(2)
	t.Cleanup(r.Close)
	return r
}

func TestExecuteReturnsMapAsData(t *testing.T) {
	r := newTestRunner(t)

	res := r.Execute(`return {greeting: "hello " + $input.name};`,
		map[string]any{"name": "ada"}, 0)

	require.True(t, res.Success)
	require.Equal(t, map[string]any{"greeting": "hello ada"}, res.Data)
	require.Nil(t, res.Output)
}

func TestExecuteReturnsScalarAsOutput(t *testing.T) {
	r := newTestRunner(t)

	res := r.Execute(`return 21 * 2;`, nil, 0)

	require.True(t, res.Success)
	require.Nil(t, res.Data)
	require.Equal(t, 42, res.Output)
}

func TestMarshalingRoundTripNarrowsIntegers(t *testing.T) {
	r := newTestRunner(t)

	res := r.Execute(`return {sum: $input.items.reduce(function(a, b) { return a + b; }, 0) + $input.n};`,
		map[string]any{"n": 3, "items": []any{1, 2, 3}}, 0)

	require.True(t, res.Success)
	require.Equal(t, 9, res.Data["sum"])
	require.IsType(t, int(0), res.Data["sum"])
}

func TestInputBoundUnderBothAliases(t *testing.T) {
	r := newTestRunner(t)

	res := r.Execute(`return {same: $input.x === $json.x, x: $json.x};`,
		map[string]any{"x": "v"}, 0)

	require.True(t, res.Success)
	require.Equal(t, true, res.Data["same"])
	require.Equal(t, "v", res.Data["x"])
}

func TestScriptCannotMutateHostInput(t *testing.T) {
	r := newTestRunner(t)
	input := map[string]any{"x": "original"}

	res := r.Execute(`$input.x = "mutated"; return $input.x;`, input, 0)

	require.True(t, res.Success)
	require.Equal(t, "mutated", res.Output)
	require.Equal(t, "original", input["x"])
}

func TestConsoleShimCapturesLogs(t *testing.T) {
	r := newTestRunner(t)

	res := r.Execute(`
console.log("plain", 42);
console.info("starting");
console.warn({level: "high"});
console.error("boom");
return null;`, nil, 0)

	require.True(t, res.Success)
	require.Equal(t, []string{
		"plain 42",
		"[INFO] starting",
		`[WARN] {"level":"high"}`,
		"[ERROR] boom",
	}, res.Logs)
}

func TestTimeoutClassification(t *testing.T) {
	r := newTestRunner(t)

	start := time.Now()
	res := r.Execute(`while (true) {}`, nil, 100)
	elapsed := time.Since(start)

	require.False(t, res.Success)
	require.Equal(t, TIMEOUT, res.ErrorType)
	require.Less(t, elapsed, 1100*time.Millisecond)
}

func TestTimeoutKeepsCapturedLogs(t *testing.T) {
	r := newTestRunner(t)

	res := r.Execute(`console.log("before the spin"); while (true) {}`, nil, 100)

	require.False(t, res.Success)
	require.Equal(t, TIMEOUT, res.ErrorType)
	require.Equal(t, []string{"before the spin"}, res.Logs)
}

func TestSyntaxErrorClassification(t *testing.T) {
	r := newTestRunner(t)

	res := r.Execute(`return {`, nil, 0)

	require.False(t, res.Success)
	require.Equal(t, SYNTAX_ERROR, res.ErrorType)
	require.NotEmpty(t, res.ErrorMessage)
}

func TestRuntimeErrorClassification(t *testing.T) {
	r := newTestRunner(t)

	res := r.Execute(`throw new Error("kaboom");`, nil, 0)

	require.False(t, res.Success)
	require.Equal(t, RUNTIME_ERROR, res.ErrorType)
	require.Contains(t, res.ErrorMessage, "kaboom")
}

func TestValidateSyntax(t *testing.T) {
	r := newTestRunner(t)

	require.True(t, r.ValidateSyntax(`return 1;`))
	require.True(t, r.ValidateSyntax(`throw new Error("parses fine, fails at runtime");`))
	require.False(t, r.ValidateSyntax(`return {`))
}

func TestIsAvailable(t *testing.T) {
	r := newTestRunner(t)
	require.True(t, r.IsAvailable())
}

func TestProgramCacheReusesCompilation(t *testing.T) {
	r := newTestRunner(t)

	first := r.Execute(`return 1;`, nil, 0)
	second := r.Execute(`return 1;`, nil, 0)

	require.True(t, first.Success)
	require.True(t, second.Success)
	require.Equal(t, 1, r.programs.ItemCount())
}
