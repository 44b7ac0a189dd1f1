package auth

import "context"

// Chain asks each Authenticator that supports a request in turn. The first
// acceptance wins; if all of them reject, the last rejection is returned.
// An internal error from any member stops the walk.
type Chain []Authenticator

// NewChain drops nil members.
func NewChain(members ...Authenticator) Chain {
	c := make(Chain, 0, len(members))
	for _, m := range members {
		if m != nil {
			c = append(c, m)
		}
	}
	return c
}

func (c Chain) Name() string { return "chain" }

func (c Chain) Supports(ctx context.Context, req *Request) bool {
	for _, m := range c {
		if m.Supports(ctx, req) {
			return true
		}
	}
	return false
}

func (c Chain) Authenticate(ctx context.Context, req *Request) (*Result, error) {
	last := Rejected(ErrMissingCredentials, c.Name())
	for _, m := range c {
		if !m.Supports(ctx, req) {
			continue
		}
		res, err := m.Authenticate(ctx, req)
		switch {
		case err != nil:
			return nil, err
		case res.Authenticated:
			return res, nil
		}
		last = res
	}
	return last, nil
}

var _ Authenticator = Chain(nil)
