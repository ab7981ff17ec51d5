package commands

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
)

// execute runs sub below a bare root carrying the global flags.
func execute(ctx context.Context, sub *cobra.Command, args ...string) (string, string, error) {
	root := &cobra.Command{Use: "leapmd", SilenceUsage: true, SilenceErrors: true}
	root.PersistentFlags().BoolP("verbose", "v", false, "")
	root.PersistentFlags().StringP("output", "o", "", "")
	root.AddCommand(sub)

	out, errOut := new(bytes.Buffer), new(bytes.Buffer)
	root.SetOut(out)
	root.SetErr(errOut)
	root.SetArgs(append([]string{sub.Name()}, args...))
	err := root.ExecuteContext(ctx)
	return out.String(), errOut.String(), err
}

func TestExitCode(t *testing.T) {
	assert.Equal(t, ExitOK, ExitCode(nil))
	assert.Equal(t, ExitFatal, ExitCode(errors.New("boom")))
	assert.Equal(t, ExitErrors, ExitCode(&ExitError{Code: ExitErrors}))

	wrapped := errors.Join(errors.New("context"), &ExitError{Code: ExitViolations, Err: errors.New("2 violations")})
	assert.Equal(t, ExitViolations, ExitCode(wrapped))

	assert.Equal(t, "exit status 3", (&ExitError{Code: ExitErrors}).Error())
	assert.Equal(t, "2 violations", (&ExitError{Code: ExitViolations, Err: errors.New("2 violations")}).Error())
}
