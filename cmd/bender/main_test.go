package main

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Leahcim-1/rd-comment-service/pkg/bender"
)

func TestExecuteStampsBuildInfo(t *testing.T) {
	gitCommit, buildDate = "abc123", "2026-01-02"
	t.Cleanup(func() { gitCommit, buildDate = "", "" })

	bender.SetBuildInfo(gitCommit, buildDate, "")
	assert.Contains(t, bender.FullVersionInfo(), "Git Commit: abc123")
	assert.Contains(t, bender.FullVersionInfo(), "Build Date: 2026-01-02")
}
