package cli

import (
	"os"
	"testing"
)

// chdir changes the working directory for the duration of the test,
// restoring it on cleanup (equivalent of testing.T.Chdir, Go 1.24+).
func chdir(t *testing.T, dir string) {
	t.Helper()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("chdir: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("chdir: %v", err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(wd); err != nil {
			t.Fatalf("chdir: restoring working directory: %v", err)
		}
	})
}
