package main

import (
	"fmt"
	"os"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}
	switch os.Args[1] {
	case "issue":
		os.Exit(runIssue(os.Args[2:]))
	case "verify":
		os.Exit(runVerify(os.Args[2:]))
	case "details":
		os.Exit(runDetails(os.Args[2:]))
	default:
		usage()
		os.Exit(2)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: wipecert <issue|verify|details> [flags]")
}
