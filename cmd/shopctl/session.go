package main

import (
	"context"
	"fmt"
	"io"

	"github.com/mkrupp/homecase-shop/internal/app"
	"github.com/mkrupp/homecase-shop/internal/domain"
	context_ "github.com/mkrupp/homecase-shop/internal/infra/context"
)

// session carries the state of one command invocation.
type session struct {
	app    *app.App
	out    io.Writer
	errOut io.Writer

	name     string
	password string
}

// login authenticates the credentials given on the command line and records the user
// as the actor of ctx.
func (s *session) login(ctx context.Context) (context.Context, domain.User, error) {
	if s.name == "" {
		return ctx, domain.User{}, fmt.Errorf("%w: pass -u and -p", domain.ErrUnauthenticated)
	}

	user, err := s.app.Users.Login(ctx, s.name, s.password)
	if err != nil {
		return ctx, domain.User{}, err
	}

	return context_.WithActor(ctx, user.ID), user, nil
}

func (s *session) loginAs(ctx context.Context, role domain.Role) (context.Context, domain.User, error) {
	ctx, user, err := s.login(ctx)
	if err != nil {
		return ctx, domain.User{}, err
	}

	if err := domain.Authorize(user, role); err != nil {
		return ctx, domain.User{}, err
	}

	return ctx, user, nil
}
