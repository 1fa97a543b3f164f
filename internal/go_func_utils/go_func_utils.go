package go_func_utils

import (
	"log"
	"runtime/debug"
	"sync"
)

// SafeGo runs fn on a new goroutine. A panic is written to logger together
// with the goroutine name and stack, then re-raised: the curses screen owns
// stdout/stderr, so without this the crash reason would be lost.
func SafeGo(logger *log.Logger, name string, fn func()) {
	go func() {
		defer recoverAndLog(logger, name)
		fn()
	}()
}

// SafeGoWG is SafeGo for goroutines tracked by a WaitGroup. The Add happens
// before the goroutine starts and Done is deferred inside it.
func SafeGoWG(wg *sync.WaitGroup, logger *log.Logger, name string, fn func()) {
	wg.Add(1)
	go func() {
		defer wg.Done()
		defer recoverAndLog(logger, name)
		fn()
	}()
}

func recoverAndLog(logger *log.Logger, name string) {
	if r := recover(); r != nil {
		logger.Printf("PANIC in %s: %v\n%s", name, r, debug.Stack())
		panic(r)
	}
}
