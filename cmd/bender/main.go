package main

import (
	"fmt"
	"os"

	"github.com/Leahcim-1/rd-comment-service/internal/cli"
	"github.com/Leahcim-1/rd-comment-service/pkg/bender"
)

// Stamped with -ldflags "-X main.gitCommit=... -X main.buildDate=...".
var (
	gitCommit string
	buildDate string
)

func main() {
	if err := Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func Execute() error {
	bender.SetBuildInfo(gitCommit, buildDate, "")

	cmd := cli.NewRootCommand()
	return cmd.Execute()
}
