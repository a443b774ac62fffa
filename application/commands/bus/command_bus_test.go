package bus

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type pingCommand struct {
	Name string
}

func (c pingCommand) Validate() error {
	if c.Name == "" {
		return errors.New("name is required")
	}
	return nil
}

type recorder struct {
	names []string
	errs  []error
}

func (r *recorder) ObserveOperation(kind, name string, _ time.Time, err error) {
	r.names = append(r.names, kind+":"+name)
	r.errs = append(r.errs, err)
}

func TestCommandBus_Dispatch(t *testing.T) {
	b := NewCommandBus()
	var got string
	require.NoError(t, b.Register(pingCommand{}, CommandHandlerFunc(func(ctx context.Context, cmd Command) error {
		got = cmd.(pingCommand).Name
		return nil
	})))

	require.NoError(t, b.Send(context.Background(), pingCommand{Name: "hello"}))
	assert.Equal(t, "hello", got)
}

func TestCommandBus_Errors(t *testing.T) {
	b := NewCommandBus()
	boom := errors.New("boom")
	require.NoError(t, b.Register(pingCommand{}, CommandHandlerFunc(func(ctx context.Context, cmd Command) error {
		return boom
	})))

	assert.Error(t, b.Register(pingCommand{}, CommandHandlerFunc(func(ctx context.Context, cmd Command) error { return nil })))

	err := b.Send(context.Background(), pingCommand{})
	assert.ErrorContains(t, err, "command validation failed")

	err = b.Send(context.Background(), pingCommand{Name: "x"})
	assert.True(t, errors.Is(err, boom))

	err = NewCommandBus().Send(context.Background(), pingCommand{Name: "x"})
	assert.ErrorContains(t, err, "no handler registered")
}

func TestCommandBus_MiddlewareOrder(t *testing.T) {
	var order []string
	mark := func(name string) Middleware {
		return func(next CommandHandler) CommandHandler {
			return CommandHandlerFunc(func(ctx context.Context, cmd Command) error {
				order = append(order, name)
				return next.Handle(ctx, cmd)
			})
		}
	}
	rec := &recorder{}
	b := NewCommandBus(mark("outer"), mark("inner"), LoggingMiddleware(zap.NewNop()), MetricsMiddleware(rec))
	require.NoError(t, b.Register(pingCommand{}, CommandHandlerFunc(func(ctx context.Context, cmd Command) error {
		order = append(order, "handler")
		return nil
	})))

	require.NoError(t, b.Send(context.Background(), pingCommand{Name: "x"}))
	assert.Equal(t, []string{"outer", "inner", "handler"}, order)
	assert.Equal(t, []string{"command:pingCommand"}, rec.names)
	assert.Nil(t, rec.errs[0])
}
