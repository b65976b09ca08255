package vm_test

import (
	"bytes"
	"testing"

	"github.com/maxc-lang/maxc/internal/analyzer"
	"github.com/maxc-lang/maxc/internal/lexer"
	"github.com/maxc-lang/maxc/internal/parser"
	"github.com/maxc-lang/maxc/internal/pipeline"
	"github.com/maxc-lang/maxc/internal/vm"
)

// run lexes, parses, analyzes, compiles, and executes src, returning
// whatever println/print wrote to stdout.
func run(t *testing.T, src string) string {
	t.Helper()
	ctx := pipeline.NewContext(src, "<test>")
	ctx = (lexer.Processor{}).Process(ctx)
	ctx = (parser.Processor{}).Process(ctx)
	ctx = (analyzer.Processor{}).Process(ctx)
	ctx = (vm.Processor{}).Process(ctx)
	if ctx.HasErrors() {
		var msgs []string
		for _, e := range ctx.Errors {
			msgs = append(msgs, e.Error())
		}
		t.Fatalf("pipeline failed for %q:\n%v", src, msgs)
	}

	machine := vm.New(ctx.NGlobals, ctx.Pool)
	var out bytes.Buffer
	machine.Out = &out
	if code := machine.Run(ctx.Code, nil); code != 0 {
		t.Fatalf("vm.Run returned exit code %d for %q", code, src)
	}
	return out.String()
}

// runExpectCode is run's counterpart for programs expected to end with a
// nonzero exit code (an uncaught runtime error propagating to the top
// frame, spec.md §7), returning stdout alongside the actual exit code.
func runExpectCode(t *testing.T, src string) (string, int) {
	t.Helper()
	ctx := pipeline.NewContext(src, "<test>")
	ctx = (lexer.Processor{}).Process(ctx)
	ctx = (parser.Processor{}).Process(ctx)
	ctx = (analyzer.Processor{}).Process(ctx)
	ctx = (vm.Processor{}).Process(ctx)
	if ctx.HasErrors() {
		var msgs []string
		for _, e := range ctx.Errors {
			msgs = append(msgs, e.Error())
		}
		t.Fatalf("pipeline failed for %q:\n%v", src, msgs)
	}

	machine := vm.New(ctx.NGlobals, ctx.Pool)
	var out bytes.Buffer
	machine.Out = &out
	code := machine.Run(ctx.Code, nil)
	return out.String(), code
}

func TestArithmeticAndPrintln(t *testing.T) {
	got := run(t, "println(1 + 2 * 3);")
	want := "7\n"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestFloatArithmetic(t *testing.T) {
	got := run(t, "println(1.5 + 2.5);")
	want := "4\n"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestVarDeclAndAssignment(t *testing.T) {
	got := run(t, "let x = 1; x = x + 41; println(x);")
	want := "42\n"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestIfExpression(t *testing.T) {
	got := run(t, "let x = if true { 1 } else { 2 }; println(x);")
	want := "1\n"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestWhileLoop(t *testing.T) {
	got := run(t, `
		let i = 0;
		let sum = 0;
		while i < 5 {
			sum = sum + i;
			i = i + 1;
		}
		println(sum);
	`)
	want := "10\n"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestForLoopOverList(t *testing.T) {
	got := run(t, `
		let total = 0;
		for x in [1, 2, 3, 4] {
			total = total + x;
		}
		println(total);
	`)
	want := "10\n"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestBreak(t *testing.T) {
	got := run(t, `
		let i = 0;
		while true {
			if i == 3 {
				break;
			}
			i = i + 1;
		}
		println(i);
	`)
	want := "3\n"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestFunctionCallAndRecursion(t *testing.T) {
	got := run(t, `
		fn fact(n: int): int {
			if n <= 1 {
				return 1;
			}
			return n * fact(n - 1);
		}
		println(fact(5));
	`)
	want := "120\n"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestStringConcatAndPrint(t *testing.T) {
	got := run(t, `println("hello, " + "world");`)
	want := "hello, world\n"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestListLengthAndSubscript(t *testing.T) {
	got := run(t, `
		let xs = [10, 20, 30];
		println(xs.len);
		println(xs[1]);
	`)
	want := "3\n20\n"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestStructFieldAccess(t *testing.T) {
	got := run(t, `
		object Point {
			x: int,
			y: int,
		}
		let p = new Point { x: 3, y: 4 };
		println(p.x + p.y);
	`)
	want := "7\n"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestOperatorOverload(t *testing.T) {
	got := run(t, `
		object Point {
			x: int,
			y: int,
		}
		fn ` + "`+`" + `(a: Point, b: Point): Point {
			return new Point { x: a.x + b.x, y: a.y + b.y };
		}
		let p = new Point { x: 1, y: 2 } + new Point { x: 3, y: 4 };
		println(p.x);
		println(p.y);
	`)
	want := "4\n6\n"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestFailureBlockOnError(t *testing.T) {
	got := run(t, `
		fn safeDiv(a: int, b: int): int? {
			if b == 0 {
				return error("division by zero");
			}
			return a / b;
		}
		let r = safeDiv(10, 0).FAILURE {
			println("caught");
			-1
		};
		println(r);
	`)
	want := "caught\n-1\n"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestPrintlnMultipleArgsSpacedNotTrailing(t *testing.T) {
	got := run(t, `println(1, 2, 3);`)
	want := "1 2 3\n"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestRecursiveTopLevelFunction(t *testing.T) {
	got := run(t, `
		fn fib(n: int): int {
			if n <= 1 {
				return n;
			}
			return fib(n - 1) + fib(n - 2);
		}
		println(fib(10));
	`)
	want := "55\n"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestUncaughtDivideByZeroExitsNonZero(t *testing.T) {
	_, code := runExpectCode(t, `println(10 / 0);`)
	if code != 1 {
		t.Fatalf("got exit code %d, want 1", code)
	}
}

func TestUncaughtSubscriptOutOfRangeExitsNonZero(t *testing.T) {
	_, code := runExpectCode(t, `
		let xs = [1, 2, 3];
		let y = xs[10];
	`)
	if code != 1 {
		t.Fatalf("got exit code %d, want 1", code)
	}
}

func TestCaughtDivideByZeroExitsZero(t *testing.T) {
	got, code := runExpectCode(t, `
		fn div(a: int, b: int): int? {
			return a / b;
		}
		let r = div(10, 0).FAILURE { -1 };
		println(r);
	`)
	if code != 0 {
		t.Fatalf("got exit code %d, want 0", code)
	}
	want := "-1\n"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}
