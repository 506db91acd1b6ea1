// Package shell turns command lines into file system operations and their
// printed results.
package shell

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/mit-pdos/go-vfs/util"
	"github.com/mit-pdos/go-vfs/vfs"
)

const (
	OK             = "OK"
	UnknownCommand = "Unknown command detected"
	PathEnd        = "$"
)

// ErrExit is returned by Handle for the exit command.
var ErrExit = errors.New("exit")

var errLoadDepth = errors.New("LOAD NESTED TOO DEEP")

const maxLoadDepth = 16

// outcomes are the errors reported as output rather than returned.
var outcomes = []error{
	vfs.ErrNotFormatted,
	vfs.ErrPathNotFound,
	vfs.ErrFileNotFound,
	vfs.ErrExist,
	vfs.ErrNotEmpty,
	vfs.ErrCannotCreate,
	vfs.ErrDirFull,
	vfs.ErrMoveIntoSelf,
	errLoadDepth,
}

type Shell struct {
	fs    *vfs.FileSys
	depth int
}

func New(fs *vfs.FileSys) *Shell {
	return &Shell{fs: fs}
}

func (sh *Shell) Prompt() string {
	return sh.fs.Pwd() + PathEnd + " "
}

// Fields splits a command line into whitespace-delimited arguments.
func Fields(line string) []string {
	return strings.Fields(line)
}

func arg(args []string, i int) string {
	if i < len(args) {
		return args[i]
	}
	return ""
}

// report turns the result of an operation into its printed token. Errors
// that are not user-facing outcomes are returned.
func report(err error) (string, error) {
	if err == nil {
		return OK, nil
	}
	for _, o := range outcomes {
		if errors.Is(err, o) {
			util.DPrintf(1, "report: %v\n", err)
			return o.Error(), nil
		}
	}
	return "", err
}

// Handle runs one command line and returns what it prints, without a
// trailing newline. A non-nil error means the session must end: either
// ErrExit or a fatal file system error.
func (sh *Shell) Handle(line string) (string, error) {
	args := Fields(line)
	if len(args) == 0 {
		return "", nil
	}
	cmd := args[0]
	util.DPrintf(1, "Handle: %q\n", line)
	if cmd == "exit" {
		return "", ErrExit
	}
	if cmd != "format" && !sh.fs.Formatted() {
		return vfs.ErrNotFormatted.Error(), nil
	}

	switch cmd {
	case "format":
		return report(sh.fs.Format(arg(args, 1)))
	case "cp":
		return report(sh.fs.Cp(arg(args, 1), arg(args, 2)))
	case "mv":
		return report(sh.fs.Mv(arg(args, 1), arg(args, 2)))
	case "rm":
		return report(sh.fs.Rm(arg(args, 1)))
	case "mkdir":
		return report(sh.fs.Mkdir(arg(args, 1)))
	case "rmdir":
		return report(sh.fs.Rmdir(arg(args, 1)))
	case "ls":
		return sh.ls(arg(args, 1))
	case "cat":
		return sh.cat(arg(args, 1))
	case "cd":
		return report(sh.fs.Cd(arg(args, 1)))
	case "pwd":
		return sh.fs.Pwd(), nil
	case "info":
		return sh.info(arg(args, 1))
	case "incp":
		return report(sh.fs.Incp(arg(args, 1), arg(args, 2)))
	case "outcp":
		return report(sh.fs.Outcp(arg(args, 1), arg(args, 2)))
	case "ln":
		return report(sh.fs.Ln(arg(args, 1), arg(args, 2)))
	case "load":
		return sh.load(arg(args, 1))
	default:
		return UnknownCommand, nil
	}
}

func (sh *Shell) ls(p string) (string, error) {
	items, err := sh.fs.Ls(p)
	if err != nil {
		return report(err)
	}
	lines := make([]string, 0, len(items))
	for _, it := range items {
		kind := "-"
		if it.IsDir {
			kind = "+"
		}
		lines = append(lines, kind+it.Name)
	}
	return strings.Join(lines, "\n"), nil
}

func (sh *Shell) cat(p string) (string, error) {
	var sb strings.Builder
	if err := sh.fs.Cat(p, &sb); err != nil {
		return report(err)
	}
	return sb.String(), nil
}

func (sh *Shell) info(p string) (string, error) {
	info, err := sh.fs.Info(p)
	if err != nil {
		return report(err)
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s - %d B - i-node %d - clusters", info.Name, info.Size, info.Inum)
	for _, c := range info.Clusters {
		fmt.Fprintf(&sb, " %d", c)
	}
	if info.HasIndirect1 {
		fmt.Fprintf(&sb, " - indirect1 %d", info.Indirect1)
	}
	if info.HasIndirect2 {
		fmt.Fprintf(&sb, " - indirect2 %d", info.Indirect2)
	}
	return sb.String(), nil
}

// load runs every line of the host file p, echoing each after the prompt.
// A failing line does not stop the script; a fatal error or exit does.
func (sh *Shell) load(p string) (string, error) {
	if sh.depth >= maxLoadDepth {
		return report(errLoadDepth)
	}
	f, err := os.Open(p)
	if err != nil {
		return report(fmt.Errorf("%w: %v", vfs.ErrFileNotFound, err))
	}
	defer f.Close()

	sh.depth++
	defer func() { sh.depth-- }()

	var out []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}
		out = append(out, sh.Prompt()+line)
		res, err := sh.Handle(line)
		if res != "" {
			out = append(out, res)
		}
		if err != nil {
			return strings.Join(out, "\n"), err
		}
	}
	if err := scanner.Err(); err != nil {
		out = append(out, vfs.ErrFileNotFound.Error())
	} else {
		out = append(out, OK)
	}
	return strings.Join(out, "\n"), nil
}
