// Command rcallsh is an interactive shell for exercising a Server and its
// registered functions/classes over a real wire transport. With -listen it
// only serves; with -connect it dials an existing listener; with neither, it
// spins up an in-process listener on a loopback TCP socket and dials that —
// so `rcallsh` alone is a
// complete, runnable worked example needing no separate server process.
package main

import (
	"flag"
	"fmt"
	"io"
	"net"
	"os"
	"strconv"
	"strings"

	"github.com/peterh/liner"

	"github.com/amarmer/RemoteCall/internal/looptrans"
	"github.com/amarmer/RemoteCall/pkg/rlog"
	"github.com/amarmer/RemoteCall/rcall"
	"github.com/amarmer/RemoteCall/rcalltest"
)

var (
	fListen   = flag.String("listen", "", "listen on this address and serve, instead of dialing -connect")
	fConnect  = flag.String("connect", "", "dial an existing rcallsh -listen instance")
	fClientID = flag.String("client", "", "client identifier sent with every call")
	fLevel    = flag.String("level", "warn", "log level: debug, info, warn, error")
)

func usage() {
	fmt.Fprintln(os.Stderr, "usage: rcallsh [-listen addr | -connect addr] [-client id] [-level level]")
	flag.PrintDefaults()
}

func main() {
	flag.Usage = usage
	flag.Parse()

	level, err := rlog.ParseLevel(*fLevel)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	rlog.AddLogger("stderr", os.Stderr, level, true)

	switch {
	case *fListen != "":
		if err := serveForever(*fListen); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
	case *fConnect != "":
		conn, err := net.Dial("tcp", *fConnect)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		runShell(looptrans.Dial(conn, *fClientID))
	default:
		ln, err := net.Listen("tcp", "127.0.0.1:0")
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		srv := rcall.NewServer()
		rcalltest.Register(srv)
		go looptrans.Serve(ln, srv, alwaysAlive)

		conn, err := net.Dial("tcp", ln.Addr().String())
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		fmt.Printf("serving Func1/Func2/Func3/CTest on %s\n", ln.Addr())
		runShell(looptrans.Dial(conn, *fClientID))
	}
}

func alwaysAlive(string) bool { return true }

func serveForever(addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	srv := rcall.NewServer()
	rcalltest.Register(srv)
	fmt.Printf("listening on %s\n", ln.Addr())
	looptrans.Serve(ln, srv, alwaysAlive)
	return nil
}

// shell holds the instances created during this REPL session so that
// `method <n> ...` and `destroy <n>` can address them by a short integer
// handle instead of the raw wire identifier.
type shell struct {
	tr        rcall.Transport
	clientID  string
	instances []*rcalltest.CTest
}

func runShell(tr rcall.Transport) {
	sh := &shell{tr: tr}

	input := liner.NewLiner()
	defer input.Close()
	input.SetCtrlCAborts(true)
	input.SetCompleter(sh.suggest)

	fmt.Println("commands: call Func1 <s> <c> | call Func2 | call Func3 | new | method <n> Method1 | method <n> Method2 <s> <c> | destroy <n> | list | quit")

	for {
		line, err := input.Prompt("rcall> ")
		if err == liner.ErrPromptAborted {
			continue
		} else if err == io.EOF {
			break
		} else if err != nil {
			fmt.Fprintln(os.Stderr, err)
			break
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		input.AppendHistory(line)

		if line == "quit" || line == "exit" {
			break
		}

		sh.dispatch(line)
	}
}

func (sh *shell) suggest(line string) []string {
	candidates := []string{"call Func1 ", "call Func2", "call Func3", "new", "method ", "destroy ", "list", "quit"}
	var out []string
	for _, c := range candidates {
		if strings.HasPrefix(c, line) {
			out = append(out, c)
		}
	}
	return out
}

func (sh *shell) dispatch(line string) {
	fields := strings.Fields(line)
	cmd := fields[0]

	var err error
	switch cmd {
	case "call":
		err = sh.call(fields[1:])
	case "new":
		err = sh.new()
	case "method":
		err = sh.method(fields[1:])
	case "destroy":
		err = sh.destroy(fields[1:])
	case "list":
		sh.list()
	default:
		err = fmt.Errorf("unknown command %q", cmd)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
	}
}

func (sh *shell) call(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: call Func1|Func2|Func3 ...")
	}
	switch args[0] {
	case "Func1":
		if len(args) != 3 || len(args[2]) != 1 {
			return fmt.Errorf("usage: call Func1 <string> <char>")
		}
		s := args[1]
		n, err := rcalltest.Func1(sh.tr, sh.clientID, &s, args[2][0])
		if err != nil {
			return err
		}
		fmt.Printf("-> %d, s=%q\n", n, s)
	case "Func3":
		m := map[int32]string{}
		if err := rcalltest.Func3(sh.tr, sh.clientID, &m); err != nil {
			return err
		}
		fmt.Printf("-> %v\n", m)
	case "Func2":
		v := []rcalltest.ABC{{S: "seed", N: 1}}
		sum, s, err := rcalltest.Func2(sh.tr, sh.clientID, &v, rcalltest.ABC{S: "added", N: 2})
		if err != nil {
			return err
		}
		fmt.Printf("-> sum=%d s=%q v=%v\n", sum, s, v)
	default:
		return fmt.Errorf("unknown function %q", args[0])
	}
	return nil
}

func (sh *shell) new() error {
	obj, err := rcalltest.NewCTest(sh.tr, sh.clientID)
	if err != nil {
		return err
	}
	sh.instances = append(sh.instances, obj)
	fmt.Printf("-> %d (id %s)\n", len(sh.instances)-1, obj.InstanceID)
	return nil
}

func (sh *shell) resolve(arg string) (*rcalltest.CTest, error) {
	n, err := strconv.Atoi(arg)
	if err != nil || n < 0 || n >= len(sh.instances) || sh.instances[n] == nil {
		return nil, fmt.Errorf("no such instance %q; see `list`", arg)
	}
	return sh.instances[n], nil
}

func (sh *shell) method(args []string) error {
	if len(args) < 2 {
		return fmt.Errorf("usage: method <n> Method1|Method2 [s c]")
	}
	obj, err := sh.resolve(args[0])
	if err != nil {
		return err
	}
	switch args[1] {
	case "Method1":
		if err := obj.Method1(); err != nil {
			return err
		}
		fmt.Println("-> ok")
	case "Method2":
		if len(args) != 4 || len(args[3]) != 1 {
			return fmt.Errorf("usage: method <n> Method2 <string> <char>")
		}
		s := args[2]
		n, err := obj.Method2(&s, args[3][0])
		if err != nil {
			return err
		}
		fmt.Printf("-> %d, s=%q\n", n, s)
	default:
		return fmt.Errorf("unknown method %q", args[1])
	}
	return nil
}

func (sh *shell) destroy(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: destroy <n>")
	}
	obj, err := sh.resolve(args[0])
	if err != nil {
		return err
	}
	if err := obj.Destroy(); err != nil {
		return err
	}
	idx, _ := strconv.Atoi(args[0])
	sh.instances[idx] = nil
	fmt.Println("-> destroyed")
	return nil
}

func (sh *shell) list() {
	any := false
	for i, obj := range sh.instances {
		if obj != nil {
			fmt.Printf("%d: %s\n", i, obj.InstanceID)
			any = true
		}
	}
	if !any {
		fmt.Println("(no live instances)")
	}
}
