package ui

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/vvka-141/sparkify-dwh/pkg/dwh"
)

// InteractiveApprover asks the operator to type the database name before
// any table is dropped.
type InteractiveApprover struct {
	verbose bool
	input   io.Reader
	output  io.Writer
}

// NewInteractiveApprover creates a new InteractiveApprover on stdin/stderr.
func NewInteractiveApprover(verbose bool) dwh.Approver {
	return &InteractiveApprover{verbose: verbose, input: os.Stdin, output: os.Stderr}
}

// RequestApproval prompts the user to type the database name to confirm.
func (a *InteractiveApprover) RequestApproval(ctx context.Context, dbName string) (bool, error) {
	fmt.Fprintf(a.output, "\n%s You are about to DROP and RECREATE every table in database '%s'\n", warningStyle.Render("⚠️  WARNING:"), dbName)
	fmt.Fprintln(a.output, "This will permanently delete all staged and analytics data!")
	fmt.Fprintf(a.output, "\nTo confirm, type the database name '%s' and press Enter: ", dbName)

	// The read can block forever; run it aside so cancellation still returns.
	inputChan := make(chan string, 1)
	errChan := make(chan error, 1)

	go func() {
		reader := bufio.NewReader(a.input)
		input, err := reader.ReadString('\n')
		if err != nil && input == "" {
			errChan <- err
			return
		}
		inputChan <- strings.TrimSpace(input)
	}()

	select {
	case <-ctx.Done():
		return false, ctx.Err()
	case err := <-errChan:
		return false, fmt.Errorf("failed to read input: %w", err)
	case input := <-inputChan:
		if input == dbName {
			fmt.Fprintln(a.output, successStyle.Render("✓ Confirmed. Proceeding with table recreation..."))
			return true, nil
		}
		fmt.Fprintln(a.output, errorStyle.Render(fmt.Sprintf("✗ Input '%s' does not match database name '%s'. Operation cancelled.", input, dbName)))
		return false, nil
	}
}

var _ dwh.Approver = (*InteractiveApprover)(nil)
