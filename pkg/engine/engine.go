// Package engine evaluates the mechanism DSL. Source is run in a fresh
// zygomys sandbox whose builtins (ground, rotary, hinge, slider, vec2)
// accumulate a linkage.Spec.
package engine

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	zygo "github.com/glycerine/zygomys/zygo"

	"github.com/chazu/linkage/pkg/linkage"
)

// EvalError represents a non-fatal error encountered during evaluation,
// such as a parse error or a runtime error in user code.
type EvalError struct {
	Line    int
	Col     int
	Message string
}

func (e EvalError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("line %d: %s", e.Line, e.Message)
	}
	return e.Message
}

// EvalWarning is a diagnostic about a mechanism that evaluated cleanly.
type EvalWarning struct {
	Ref     linkage.Ref
	Message string
}

// EvalResult bundles the full output of an evaluation for use by UI bindings.
type EvalResult struct {
	Spec     *linkage.Spec
	Names    map[string]linkage.Ref
	Errors   []EvalError
	Warnings []EvalWarning
}

// Engine wraps the zygomys interpreter. It is safe for concurrent use;
// each evaluation creates a fresh sandboxed environment for determinism.
type Engine struct {
	mu         sync.Mutex
	generation uint64

	// Timeout bounds a single evaluation. Zero means EvalTimeout.
	Timeout time.Duration
}

// NewEngine creates a new Engine instance.
func NewEngine() *Engine {
	return &Engine{}
}

// Evaluate runs DSL source and returns the mechanism it declares.
//
// Return semantics:
//   - On success: returns spec + nil errors + nil error
//   - On parse/eval failure: returns nil spec + eval errors + nil error
//   - On fatal failure (timeout, panic): returns nil + nil + error
func (e *Engine) Evaluate(source string) (*linkage.Spec, []EvalError, error) {
	res, err := e.EvaluateFull(source)
	if err != nil {
		return nil, nil, err
	}
	return res.Spec, res.Errors, nil
}

// EvaluateFull is Evaluate plus the name table and diagnostics of the
// resulting mechanism at drive angle zero.
func (e *Engine) EvaluateFull(source string) (EvalResult, error) {
	e.mu.Lock()
	e.generation++
	gen := e.generation
	timeout := e.Timeout
	e.mu.Unlock()
	if timeout == 0 {
		timeout = EvalTimeout
	}

	ch := make(chan evalResult, 1)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				ch <- evalResult{err: fmt.Errorf("engine: panic during evaluation: %v", r)}
			}
		}()

		res := e.evaluate(source)
		ch <- evalResult{res: res}
	}()

	res, err := waitWithTimeout(ch, gen, &e.mu, &e.generation, timeout)
	if err != nil {
		return EvalResult{}, err
	}
	if res.Spec != nil {
		for _, f := range linkage.Diagnose(linkage.New(*res.Spec), 0) {
			res.Warnings = append(res.Warnings, EvalWarning{Ref: f.Ref, Message: f.Error()})
		}
	}
	return res, nil
}

// evaluate performs the actual zygomys evaluation in a fresh sandbox.
func (e *Engine) evaluate(source string) EvalResult {
	// Empty source is a valid program that declares an empty mechanism.
	if strings.TrimSpace(source) == "" {
		return EvalResult{Spec: &linkage.Spec{}, Names: map[string]linkage.Ref{}}
	}

	// Sandbox mode prevents user code from accessing the filesystem or syscalls.
	env := zygo.NewZlispSandbox()
	defer env.Stop()

	b := newBuilder()
	registerBuiltins(env, b)

	if err := env.LoadString(preprocessSource(source)); err != nil {
		return EvalResult{Errors: parseZygomysError(err)}
	}
	if _, err := env.Run(); err != nil {
		return EvalResult{Errors: parseZygomysError(err)}
	}
	return EvalResult{Spec: &b.spec, Names: b.names}
}

// linePattern matches zygomys error messages that include "Error on line N: ..."
var linePattern = regexp.MustCompile(`(?i)(?:error )?on line (\d+):\s*(.*)`)

// linePatternShort matches simpler "line N: ..." patterns.
var linePatternShort = regexp.MustCompile(`(?i)^line (\d+):\s*(.*)`)

// parseZygomysError converts a zygomys error into an EvalError, extracting
// the line number when the message carries one.
func parseZygomysError(err error) []EvalError {
	msg := err.Error()
	for _, re := range []*regexp.Regexp{linePattern, linePatternShort} {
		if m := re.FindStringSubmatch(msg); m != nil {
			line, _ := strconv.Atoi(m[1])
			return []EvalError{{Line: line, Message: strings.TrimSpace(m[2])}}
		}
	}
	return []EvalError{{Message: strings.TrimSpace(msg)}}
}
