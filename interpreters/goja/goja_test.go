package goja

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/streamblocks/cal2am/sim"
)

func run(t *testing.T, i *Interpreter, src string, kind sim.Kind, env sim.Env) (interface{}, sim.Env, error) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	compiled, err := i.Compile(ctx, src, kind)
	if err != nil {
		t.Fatal(err)
	}
	return i.Exec(ctx, env, compiled)
}

func TestExpression(t *testing.T) {
	v, _, err := run(t, NewInterpreter(), `x >= 0`, sim.Expression, sim.Env{"x": 3})
	if err != nil {
		t.Fatal(err)
	}
	if b, is := v.(bool); !is || !b {
		t.Fatalf("got %#v", v)
	}

	v, _, err = run(t, NewInterpreter(), `{likes: "chips"}`, sim.Expression, nil)
	if err != nil {
		t.Fatal(err)
	}
	m, is := v.(map[string]interface{})
	if !is || m["likes"] != "chips" {
		t.Fatalf("got %#v", v)
	}
}

func TestStatements(t *testing.T) {
	env := sim.Env{"count": int64(1), "other": "tacos"}
	_, out, err := run(t, NewInterpreter(), `count = count + 1; var local = 3;`, sim.Statements, env)
	if err != nil {
		t.Fatal(err)
	}
	if out["count"] != int64(2) {
		t.Fatalf("count is %#v", out["count"])
	}
	if out["other"] != "tacos" {
		t.Fatalf("other is %#v", out["other"])
	}
	if _, have := out["local"]; have {
		t.Fatal("a local leaked into the environment")
	}
	if env["count"] != int64(1) {
		t.Fatal("input environment modified")
	}
}

func TestPrelude(t *testing.T) {
	i := NewInterpreter()
	i.Prelude = `function twice(x) { return 2 * x; }`
	for n := 0; n < 2; n++ {
		v, _, err := run(t, i, `twice(x)`, sim.Expression, sim.Env{"x": 4})
		if err != nil {
			t.Fatal(err)
		}
		if v != int64(8) {
			t.Fatalf("got %#v", v)
		}
	}
}

func TestTimeout(t *testing.T) {
	code := `for (;;) { sleep(10); } null;`

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	i := NewInterpreter()
	i.Testing = true
	compiled, err := i.Compile(ctx, code, sim.Statements)
	if err != nil {
		t.Fatal(err)
	}

	if _, _, err = i.Exec(ctx, nil, compiled); err == nil {
		t.Fatal("didn't timeout")
	}
	if err != Interrupted {
		t.Fatalf("surprised by \"%s\"", err)
	}
}

func TestError(t *testing.T) {
	if _, _, err := run(t, NewInterpreter(), `likes + tacos`, sim.Expression, nil); err == nil {
		t.Fatal("didn't protest")
	}
	if _, err := NewInterpreter().Compile(context.Background(), `x >=`, sim.Expression); err == nil {
		t.Fatal("compiled nonsense")
	}
}

func TestCronNextGood(t *testing.T) {
	cronExpr := "* 0 * * *"
	code := fmt.Sprintf(`_.cronNext("%s")`, cronExpr)

	v, _, err := run(t, NewInterpreter(), code, sim.Expression, nil)
	if err != nil {
		t.Fatal(err)
	}
	s, is := v.(string)
	if !is {
		t.Fatalf("got a %T", v)
	}
	if _, err = time.Parse(time.RFC3339Nano, s); err != nil {
		t.Fatal(err)
	}
}

func TestCronNextBad(t *testing.T) {
	code := `_.cronNext("bad")`
	if _, _, err := run(t, NewInterpreter(), code, sim.Expression, nil); err == nil {
		t.Fatal("didn't protest")
	}
}

func TestLog(t *testing.T) {
	v, _, err := run(t, NewInterpreter(), `_.log({n: 1})`, sim.Expression, nil)
	if err != nil {
		t.Fatal(err)
	}
	if _, is := v.(map[string]interface{}); !is {
		t.Fatalf("got %#v", v)
	}
}
