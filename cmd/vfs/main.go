package main

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/mit-pdos/go-vfs/shell"
	"github.com/mit-pdos/go-vfs/util"
	"github.com/mit-pdos/go-vfs/vfs"
)

func main() {
	debug := flag.Uint64("debug", 0, "trace level (0 is silent)")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: %s [-debug N] <container>\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()
	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(1)
	}
	util.Debug = *debug

	fs, err := vfs.Open(flag.Arg(0))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	os.Exit(run(fs))
}

func run(fs *vfs.FileSys) int {
	defer fs.Close()
	sh := shell.New(fs)
	scanner := bufio.NewScanner(os.Stdin)
	fmt.Print(sh.Prompt())
	for scanner.Scan() {
		out, err := sh.Handle(scanner.Text())
		if out != "" {
			fmt.Println(out)
		}
		if errors.Is(err, shell.ErrExit) {
			return 0
		}
		if err != nil {
			fmt.Println(err)
			return 1
		}
		fmt.Print(sh.Prompt())
	}
	fmt.Println()
	return 0
}
