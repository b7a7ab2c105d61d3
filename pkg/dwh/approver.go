package dwh

import "context"

// Approver handles operator confirmation before destructive operations,
// namely dropping and recreating every pipeline table.
//
// Implementations:
//   - ForcedApprover: Shows countdown and automatically approves
//   - InteractiveApprover: Prompts the operator to type the database name
type Approver interface {
	// RequestApproval asks for confirmation before the tables in target are dropped.
	// Returns true if approved, false if denied.
	RequestApproval(ctx context.Context, target string) (bool, error)
}
