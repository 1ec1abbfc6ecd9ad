//go:build botguard

package botguard

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/dop251/goja"
)

// GojaSolver runs a user provided script to produce tokens. The script must
// define a global function `bgAttest(input)` returning a string token or an
// object { token: string, ttlSeconds?: number }.
type GojaSolver struct {
	name    string
	program *goja.Program
}

// NewSolver compiles the script at scriptPath.
func NewSolver(scriptPath string) (Solver, error) {
	if scriptPath == "" {
		return nil, errors.New("botguard: script path not set")
	}
	src, err := os.ReadFile(scriptPath)
	if err != nil {
		return nil, fmt.Errorf("botguard: read script: %w", err)
	}
	s, err := newGojaSolver(scriptPath, string(src))
	if err != nil {
		return nil, err
	}
	return s, nil
}

func newGojaSolver(name, src string) (*GojaSolver, error) {
	program, err := goja.Compile(name, src, false)
	if err != nil {
		return nil, fmt.Errorf("botguard: compile script: %w", err)
	}
	return &GojaSolver{name: name, program: program}, nil
}

func (s *GojaSolver) Attest(ctx context.Context, input Input) (Output, error) {
	vm := goja.New()
	stop := context.AfterFunc(ctx, func() { vm.Interrupt(ctx.Err()) })
	defer stop()

	_ = vm.Set("console", map[string]any{"log": func(...any) {}})

	inJSON, _ := json.Marshal(input)
	var inObj map[string]any
	_ = json.Unmarshal(inJSON, &inObj)

	if _, err := vm.RunProgram(s.program); err != nil {
		return Output{}, fmt.Errorf("botguard: run script: %w", err)
	}
	fn, ok := goja.AssertFunction(vm.Get("bgAttest"))
	if !ok {
		return Output{}, errors.New("botguard: bgAttest function not found in script")
	}
	res, err := fn(goja.Undefined(), vm.ToValue(inObj))
	if err != nil {
		return Output{}, fmt.Errorf("botguard: bgAttest: %w", err)
	}
	if goja.IsUndefined(res) || goja.IsNull(res) {
		return Output{}, errors.New("botguard: bgAttest returned undefined/null")
	}

	var out Output
	if str, ok := res.Export().(string); ok {
		out.Token = str
		return out, nil
	}
	obj := res.ToObject(vm)
	if v := obj.Get("token"); v != nil && !goja.IsUndefined(v) && !goja.IsNull(v) {
		out.Token = v.String()
	}
	if v := obj.Get("ttlSeconds"); v != nil && !goja.IsUndefined(v) && !goja.IsNull(v) {
		if n := v.ToInteger(); n > 0 {
			out.ExpiresAt = time.Now().Add(time.Duration(n) * time.Second)
		}
	}
	return out, nil
}
