package repl

import (
	"github.com/msto63/frege/internal/frege/service"
)

// Entry is one evaluated input shown in the result panel
type Entry struct {
	Source   string
	Evaluate bool
	Response *service.Response
	Err      error
}

// resultMsg carries the answer of the backend for one input
type resultMsg struct {
	entry Entry
}

// healthMsg reports whether a remote backend answered
type healthMsg struct {
	online bool
}
