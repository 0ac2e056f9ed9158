package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

const helpText = `Available commands:
  list                                   show documents
  add <type> <name> [number] [front] [back]
  edit <localId> field=value ...         fields: name, number, type, category, front, back, favorite, issue_date, ...
  fav <localId>                          toggle favorite
  delete <localId>
  sync                                   push pending changes
  usage                                  storage usage
  quit`

// execIface is the command surface the REPL dispatches to. The real App
// satisfies it; tests provide a lightweight stub.
type execIface interface {
	List(ctx context.Context, args []string) error
	Add(ctx context.Context, args []string) error
	Edit(ctx context.Context, args []string) error
	Favorite(ctx context.Context, args []string) error
	Delete(ctx context.Context, args []string) error
	Sync(ctx context.Context, args []string) error
	Usage(ctx context.Context, args []string) error
}

// runREPL reads one command per line and dispatches it. Errors from the
// handlers are printed and the loop goes on; it exits on EOF, "exit" or
// "quit".
func runREPL(ctx context.Context, a execIface, statusFn func() string, scanner *bufio.Scanner) {
	for {
		printlnFn(fmt.Sprintf("docvault %s> ", statusFn()))
		if !scanner.Scan() {
			return
		}
		parts := strings.Fields(scanner.Text())
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		var err error
		switch cmd {
		case "help":
			printlnFn(helpText)
		case "l", "list":
			err = a.List(ctx, args)
		case "add":
			err = a.Add(ctx, args)
		case "edit":
			err = a.Edit(ctx, args)
		case "fav":
			err = a.Favorite(ctx, args)
		case "delete", "rm":
			err = a.Delete(ctx, args)
		case "sync":
			err = a.Sync(ctx, args)
		case "usage":
			err = a.Usage(ctx, args)
		case "exit", "quit":
			printlnFn("Bye!")
			return
		default:
			printlnFn("Unknown command:", cmd)
		}

		if err != nil {
			printlnFn("Error:", err)
		}
	}
}
