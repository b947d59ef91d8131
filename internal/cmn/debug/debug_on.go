//go:build debug

package debug

import "fmt"

func ON() bool { return true }

func Assert(cond bool, args ...any) {
	if !cond {
		panic(fmt.Sprintln(append([]any{"assertion failed:"}, args...)...))
	}
}

func AssertFunc(f func() bool, args ...any) { Assert(f(), args...) }

func AssertNoErr(err error) {
	if err != nil {
		panic(fmt.Sprintf("assertion failed: %v", err))
	}
}

func Assertf(cond bool, f string, args ...any) {
	if !cond {
		panic(fmt.Sprintf("assertion failed: "+f, args...))
	}
}
