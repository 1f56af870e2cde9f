package shared

import "context"

// AuditCapture accumulates per-request facts for the audit trail. The
// access-decision middleware records the consumed permission, handlers
// attach change payloads, and the error responder notes the failure
// message. The whole request flows through one goroutine, so plain
// fields are sufficient.
type AuditCapture struct {
	PermissionUsed string
	Changes        any
	ErrorMessage   string
}

type auditCaptureContextKey struct{}

// ContextWithAuditCapture installs a fresh capture in the context.
func ContextWithAuditCapture(ctx context.Context) context.Context {
	return context.WithValue(ctx, auditCaptureContextKey{}, &AuditCapture{})
}

// AuditCaptureFromContext returns the capture, nil when auditing is not
// active for this request.
func AuditCaptureFromContext(ctx context.Context) *AuditCapture {
	c, _ := ctx.Value(auditCaptureContextKey{}).(*AuditCapture)
	return c
}

// SetAuditChanges attaches a change payload (e.g. {before, after}) to the
// current request's audit capture. No-op when auditing is inactive.
func SetAuditChanges(ctx context.Context, changes any) {
	if c := AuditCaptureFromContext(ctx); c != nil {
		c.Changes = changes
	}
}

// SetAuditPermission records the permission that authorized the request.
func SetAuditPermission(ctx context.Context, permission string) {
	if c := AuditCaptureFromContext(ctx); c != nil {
		c.PermissionUsed = permission
	}
}

// SetAuditError records the error message returned to the client.
func SetAuditError(ctx context.Context, message string) {
	if c := AuditCaptureFromContext(ctx); c != nil {
		c.ErrorMessage = message
	}
}
