package auth

import "context"

var _ Checker = (*SessionChecker)(nil)
var _ Checker = (*SessionTestChecker)(nil)

type Checker interface {
	GetSession(ctx context.Context, token string) (*Session, error)
}
