// Package errors provides structured error types for better observability
// and programmatic error handling across rfcloud.
//
// Every failure the orchestrator surfaces to a command carries one of the
// codes declared here, so the CLI can print a readable message and pick an
// exit status without string matching:
//
//	VALIDATION            malformed manifest parameters, nothing was submitted
//	SUBMISSION            the control plane rejected a create outright
//	PROVISIONING_TIMEOUT  still pending when the wait deadline elapsed
//	PROVISIONING_FAILED   the control plane reported a terminal failure phase
//	DUPLICATE_SESSION     a ready login session exists in single-session mode
//
// Example usage:
//
//	err := errors.WrapWithContext(
//	    errors.ErrCodeProvisioningTimeout,
//	    "storage claim did not become ready",
//	    ctx.Err(),
//	    map[string]any{
//	        "user": user,
//	        "kind": "StorageClaim",
//	    },
//	)
package errors
