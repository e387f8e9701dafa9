package auth

import "context"

type SessionTestChecker struct {
	Sessions map[string]*Session
}

func NewSessionTestChecker() *SessionTestChecker {
	return &SessionTestChecker{
		Sessions: map[string]*Session{},
	}
}

func (c *SessionTestChecker) GetSession(_ context.Context, token string) (*Session, error) {
	session, ok := c.Sessions[token]
	if !ok {
		return nil, ErrNoSession
	}
	return session, nil
}
