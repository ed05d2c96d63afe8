package server

import "context"

// ServiceFunc implements one RPC-style request handler, per SPEC_FULL.md
// §4.5's service registry extension.
type ServiceFunc func(ctx context.Context, args map[string]any) (any, error)

// Service pairs a handler with whether the caller's client id should be
// injected into args before invocation, mirroring the original's
// Service.pass_client_id.
type Service struct {
	Name       string
	Fn         ServiceFunc
	PassSender bool
}
