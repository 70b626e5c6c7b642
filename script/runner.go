// Package script executes caller-supplied JavaScript against a bounded input
// value, under a wall-clock timeout, isolated from the host. Nothing beyond
// the input binding and the console shim is reachable from script code.
package script

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/aiinpocket/n3n-core/logger"
	"github.com/dop251/goja"
	c "github.com/patrickmn/go-cache"
	"go.uber.org/zap"
)

const DefaultTimeout = 30 * time.Second
const MaxTimeout = 5 * time.Minute
const DefaultPoolSize = 8

// timeoutSignal is the value passed to vm.Interrupt on deadline expiry.
const timeoutSignal = "execution timed out"

// Runner runs scripts on a bounded pool of daemon workers. Cancellation on
// timeout is best-effort via interpreter interrupts; a truly unresponsive
// script can pin its worker until the interrupt lands, which for pure
// JavaScript loops it always eventually does.
type Runner struct {
	jobs      chan func()
	closed    chan struct{}
	closeOnce sync.Once
	programs  *c.Cache
}

func NewRunner(poolSize int) *Runner {
	if poolSize <= 0 {
		poolSize = DefaultPoolSize
	}
	r := &Runner{
		jobs:     make(chan func()),
		closed:   make(chan struct{}),
		programs: c.New(30*time.Minute, 10*time.Minute),
	}
	for i := 0; i < poolSize; i++ {
		go r.worker()
	}
	return r
}

func (r *Runner) worker() {
	for {
		select {
		case job := <-r.jobs:
			job()
		case <-r.closed:
			return
		}
	}
}

// Close stops the worker pool. In-flight scripts finish or are abandoned;
// callers blocked in Execute return INTERRUPTED.
func (r *Runner) Close() {
	r.closeOnce.Do(func() {
		close(r.closed)
	})
}

// Execute runs code against input and waits at most timeoutMs for the
// result. timeoutMs <= 0 selects the 30s default; anything above 5 minutes
// is clamped down to it.
func (r *Runner) Execute(code string, input map[string]any, timeoutMs int64) ScriptResult {
	timeout := time.Duration(timeoutMs) * time.Millisecond
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if timeout > MaxTimeout {
		timeout = MaxTimeout
	}

	start := time.Now()
	buf := &logBuffer{}

	program, err := r.compile(code)
	if err != nil {
		return failure(SYNTAX_ERROR, err.Error(), nil, time.Since(start).Milliseconds())
	}

	vm := goja.New()
	done := make(chan ScriptResult, 1)
	job := func() {
		done <- r.run(vm, program, input, buf, start)
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	// hand the job to a worker; a saturated pool counts against the deadline
	select {
	case r.jobs <- job:
	case <-timer.C:
		return failure(TIMEOUT, timeoutMessage(timeout), buf.snapshot(), time.Since(start).Milliseconds())
	case <-r.closed:
		return failure(INTERRUPTED, "script execution was interrupted", buf.snapshot(), time.Since(start).Milliseconds())
	}

	select {
	case result := <-done:
		return result
	case <-timer.C:
		vm.Interrupt(timeoutSignal)
		return failure(TIMEOUT, timeoutMessage(timeout), buf.snapshot(), time.Since(start).Milliseconds())
	case <-r.closed:
		vm.Interrupt("runner closed")
		return failure(INTERRUPTED, "script execution was interrupted", buf.snapshot(), time.Since(start).Milliseconds())
	}
}

func (r *Runner) run(vm *goja.Runtime, program *goja.Program, input map[string]any, buf *logBuffer, start time.Time) ScriptResult {
	boundInput := toGuest(vm, input)
	vm.Set("$input", boundInput)
	vm.Set("$json", boundInput)
	vm.Set("console", newConsole(vm, buf))

	value, err := vm.RunProgram(program)
	tookMs := time.Since(start).Milliseconds()
	if err != nil {
		errType, message := classify(err)
		logger.Warn("script execution error", zap.String("errorType", string(errType)), zap.String("error", message))
		return failure(errType, message, buf.snapshot(), tookMs)
	}

	result := ScriptResult{
		Success:         true,
		Logs:            buf.snapshot(),
		ExecutionTimeMs: tookMs,
	}
	switch converted := fromGuest(value).(type) {
	case map[string]any:
		result.Data = converted
	default:
		result.Output = converted
	}
	return result
}

// ValidateSyntax parses without executing. Only a failure to parse makes the
// code invalid; a program that parses but would fail at runtime is valid.
func (r *Runner) ValidateSyntax(code string) bool {
	_, err := goja.Compile("syntax-check.js", "(function(){"+code+"})", false)
	return err == nil
}

// IsAvailable reports whether the engine can evaluate at all, without
// throwing when it cannot.
func (r *Runner) IsAvailable() (ok bool) {
	defer func() {
		if rec := recover(); rec != nil {
			ok = false
		}
	}()
	vm := goja.New()
	value, err := vm.RunString("1+1")
	return err == nil && value.ToInteger() == 2
}

// compile wraps the user code so its return value becomes the script result,
// caching compiled programs by code hash since they are reusable across
// runtimes.
func (r *Runner) compile(code string) (*goja.Program, error) {
	sum := sha256.Sum256([]byte(code))
	key := hex.EncodeToString(sum[:])
	if cached, found := r.programs.Get(key); found {
		return cached.(*goja.Program), nil
	}

	wrapped := fmt.Sprintf("(function() {\n%s\n})();", code)
	program, err := goja.Compile("user-script.js", wrapped, false)
	if err != nil {
		return nil, err
	}
	r.programs.Set(key, program, c.DefaultExpiration)
	return program, nil
}

func classify(err error) (ErrorType, string) {
	var interrupted *goja.InterruptedError
	if errors.As(err, &interrupted) {
		if fmt.Sprintf("%v", interrupted.Value()) == timeoutSignal {
			return TIMEOUT, "script execution timed out"
		}
		return CANCELLED, interrupted.Error()
	}
	var overflow *goja.StackOverflowError
	if errors.As(err, &overflow) {
		return RESOURCE_EXHAUSTED, overflow.Error()
	}
	var exception *goja.Exception
	if errors.As(err, &exception) {
		return RUNTIME_ERROR, exception.Error()
	}
	return EXECUTION_ERROR, err.Error()
}

func timeoutMessage(timeout time.Duration) string {
	return fmt.Sprintf("Script execution timed out after %dms", timeout.Milliseconds())
}

// logBuffer collects console output; the worker appends while the caller may
// snapshot concurrently on timeout.
type logBuffer struct {
	mu   sync.Mutex
	logs []string
}

func (b *logBuffer) append(line string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.logs = append(b.logs, line)
}

func (b *logBuffer) snapshot() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]string, len(b.logs))
	copy(out, b.logs)
	return out
}

// newConsole builds the minimal logging shim bound into the script scope.
// Output goes to the in-memory buffer, never to the host's streams.
func newConsole(vm *goja.Runtime, buf *logBuffer) *goja.Object {
	write := func(prefix string) func(goja.FunctionCall) goja.Value {
		return func(call goja.FunctionCall) goja.Value {
			parts := make([]string, 0, len(call.Arguments))
			for _, arg := range call.Arguments {
				parts = append(parts, formatLogValue(vm, arg))
			}
			buf.append(prefix + strings.Join(parts, " "))
			return goja.Undefined()
		}
	}
	console := vm.NewObject()
	console.Set("log", write(""))
	console.Set("info", write("[INFO] "))
	console.Set("warn", write("[WARN] "))
	console.Set("error", write("[ERROR] "))
	return console
}
