// Package luaharness registers harnesses defined in Lua scripts. A script
// runs in a sandboxed interpreter and must return a table with a string
// field "name" and a function field "run"; run receives the decoded params
// value and returns the output value. Script failures are wiring failures:
// they surface through the adapter error channel, never as panics.
package luaharness

import (
	"context"
	"encoding/json"
	"fmt"
	"hash/fnv"
	"math/rand"
	"os"
	"time"

	lua "github.com/yuin/gopher-lua"

	"github.com/flarebyte/seshat-blessed/internal/harness"
)

const defaultTimeout = 2 * time.Second

// Load reads a Lua harness script and registers it under the name the
// script declares for itself.
func Load(reg *harness.Registry, path string) error {
	code, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read lua harness %s: %w", path, err)
	}
	name, err := scriptName(string(code))
	if err != nil {
		return fmt.Errorf("invalid lua harness %s: %w", path, err)
	}
	return reg.Register(harness.Entry{
		Name:   name,
		Invoke: invoker(string(code), name),
	})
}

// scriptName evaluates the script once to read its declared name and check
// the run field.
func scriptName(code string) (string, error) {
	L := newSandboxState("")
	defer L.Close()
	tbl, err := evalScript(L, code)
	if err != nil {
		return "", err
	}
	name, ok := tbl.RawGetString("name").(lua.LString)
	if !ok || name == "" {
		return "", fmt.Errorf("script must declare a string field 'name'")
	}
	if _, ok := tbl.RawGetString("run").(*lua.LFunction); !ok {
		return "", fmt.Errorf("script must declare a function field 'run'")
	}
	return string(name), nil
}

// invoker builds the uniform contract around one script. Every invocation
// gets a fresh interpreter: units may run concurrently and a Lua state is
// not safe to share.
func invoker(code, name string) harness.Invoke {
	return func(params json.RawMessage) (json.RawMessage, error) {
		var in any
		if err := json.Unmarshal(params, &in); err != nil {
			return nil, fmt.Errorf("Failed to deserialize input: %v", err)
		}

		L := newSandboxState(name)
		defer L.Close()
		ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
		defer cancel()
		L.SetContext(ctx)

		tbl, err := evalScript(L, code)
		if err != nil {
			return nil, fmt.Errorf("lua harness %q: %v", name, err)
		}
		run, ok := tbl.RawGetString("run").(*lua.LFunction)
		if !ok {
			return nil, fmt.Errorf("lua harness %q: run is not a function", name)
		}
		L.Push(run)
		L.Push(toLValue(L, in))
		if err := L.PCall(1, 1, nil); err != nil {
			return nil, fmt.Errorf("lua harness %q: %v", name, err)
		}
		ret := L.Get(-1)
		L.Pop(1)

		out, err := json.Marshal(fromLValue(ret))
		if err != nil {
			return nil, fmt.Errorf("Failed to serialize output: %v", err)
		}
		return out, nil
	}
}

func evalScript(L *lua.LState, code string) (*lua.LTable, error) {
	fn, err := L.LoadString(code)
	if err != nil {
		return nil, err
	}
	L.Push(fn)
	if err := L.PCall(0, 1, nil); err != nil {
		return nil, err
	}
	ret := L.Get(-1)
	L.Pop(1)
	tbl, ok := ret.(*lua.LTable)
	if !ok {
		return nil, fmt.Errorf("script must return a table")
	}
	return tbl, nil
}

// newSandboxState opens only base, string, table and math, and replaces
// math.random with a generator seeded from the harness name so repeated
// runs produce identical artifacts.
func newSandboxState(seedName string) *lua.LState {
	L := lua.NewState(lua.Options{
		SkipOpenLibs:    true,
		RegistrySize:    256,
		RegistryMaxSize: 4096,
	})
	openLib := func(name string, f lua.LGFunction) {
		L.Push(L.NewFunction(f))
		L.Push(lua.LString(name))
		L.Call(1, 0)
	}
	openLib("base", lua.OpenBase)
	openLib("string", lua.OpenString)
	openLib("table", lua.OpenTable)
	openLib("math", lua.OpenMath)
	installDeterministicRandom(L, deterministicSeed(seedName))
	return L
}

func deterministicSeed(name string) int64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(name))
	return int64(h.Sum64() & 0x7fffffffffffffff)
}

func installDeterministicRandom(L *lua.LState, seed int64) {
	mathTbl, ok := L.GetGlobal("math").(*lua.LTable)
	if !ok || mathTbl == nil {
		return
	}
	rng := rand.New(rand.NewSource(seed))
	mathTbl.RawSetString("random", L.NewFunction(func(L *lua.LState) int {
		top := L.GetTop()
		switch top {
		case 0:
			L.Push(lua.LNumber(rng.Float64()))
			return 1
		case 1:
			max := L.CheckInt(1)
			if max < 1 {
				L.ArgError(1, "interval is empty")
				return 0
			}
			L.Push(lua.LNumber(rng.Intn(max) + 1))
			return 1
		default:
			min := L.CheckInt(1)
			max := L.CheckInt(2)
			if max < min {
				L.ArgError(2, "interval is empty")
				return 0
			}
			L.Push(lua.LNumber(rng.Intn(max-min+1) + min))
			return 1
		}
	}))
	mathTbl.RawSetString("randomseed", L.NewFunction(func(L *lua.LState) int {
		return 0
	}))
}
