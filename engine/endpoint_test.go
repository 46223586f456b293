package engine

import (
	"context"
	"errors"
	"io"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/abhissng/synapse/acl"
	"github.com/abhissng/synapse/adapters/events"
	"github.com/abhissng/synapse/adapters/events/memory"
	"github.com/abhissng/synapse/adapters/log"
	"github.com/abhissng/synapse/adapters/prometheus"
	"github.com/abhissng/synapse/adapters/secrets"
	"github.com/abhissng/synapse/auth"
	"github.com/abhissng/synapse/blame"
	"github.com/abhissng/synapse/utils/constant"
	"github.com/abhissng/synapse/utils/cryptography"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type op struct {
	Op string `json:"op"`
}

type mesh struct {
	bus   *memory.Transport
	store *secrets.MemoryStore
	once  sync.Map
}

func newMesh(t *testing.T) *mesh {
	t.Helper()
	bus := memory.New(memory.WithLogger(log.NewNopLogger()))
	t.Cleanup(func() { _ = bus.Close() })
	return &mesh{bus: bus, store: secrets.NewMemoryStore()}
}

// endpoint builds an authenticated endpoint; keys for name are seeded once.
func (m *mesh) endpoint(t *testing.T, name string, opts ...Option) *Endpoint {
	t.Helper()
	if _, seeded := m.once.LoadOrStore(name, true); !seeded {
		pub, priv, err := cryptography.GenerateEd25519KeyPair()
		require.NoError(t, err)
		ctx := context.Background()
		require.NoError(t, m.store.SetSecrets(ctx, secrets.PrivateKeyPath(name), map[string]string{constant.PrivateKeyField: priv}))
		require.NoError(t, m.store.SetSecrets(ctx, secrets.PublicKeyPath(name), map[string]string{constant.PublicKeyField: pub}))
	}
	a, err := auth.New(name, m.store, auth.WithLogger(log.NewNopLogger()))
	require.NoError(t, err)
	return m.open(t, name, append([]Option{WithAuthenticator(a)}, opts...)...)
}

func (m *mesh) open(t *testing.T, name string, opts ...Option) *Endpoint {
	t.Helper()
	e, err := NewEndpoint(name, m.bus, append([]Option{WithLogger(log.NewNopLogger())}, opts...)...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = e.Close(context.Background()) })
	return e
}

func waitCtx(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	t.Cleanup(cancel)
	return ctx
}

func pong(ctx context.Context, in op) (op, error) {
	return op{Op: "pong"}, nil
}

func TestPingPong(t *testing.T) {
	m := newMesh(t)
	metrics := prometheus.NewMetricsCollector(prometheus.WithServiceName("x"))
	x := m.endpoint(t, "x", WithMetrics(metrics))
	y := m.endpoint(t, "y")

	require.NoError(t, y.RegisterHandler("svc.y", Typed(pong)))

	res := x.Send(waitCtx(t), "svc.y", op{Op: "ping"}).Wait(waitCtx(t))
	require.True(t, res.IsSuccess(), "%v", res.Error())

	reply := res.ToValue()
	assert.Equal(t, "y", reply.Sender)
	var out op
	require.NoError(t, reply.DecodeWith(x.Codec(), &out))
	assert.Equal(t, "pong", out.Op)
	assert.Equal(t, 0, x.Pending())

	assert.Eventually(t, func() bool {
		rec := httptest.NewRecorder()
		metrics.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
		body, _ := io.ReadAll(rec.Body)
		return strings.Contains(string(body),
			`synapse_request_duration_seconds_count{outcome="ok",service="x",subject="svc.y"} 1`)
	}, time.Second, 10*time.Millisecond)
}

func TestCallDecodesReply(t *testing.T) {
	m := newMesh(t)
	x := m.endpoint(t, "x")
	y := m.endpoint(t, "y")
	require.NoError(t, y.RegisterHandler("svc.y", Typed(pong)))

	res := Call[op](waitCtx(t), x, "svc.y", op{Op: "ping"})
	require.True(t, res.IsSuccess(), "%v", res.Error())
	assert.Equal(t, "pong", res.ToValue().Op)
}

func TestForbiddenInboundRepliesWith403(t *testing.T) {
	m := newMesh(t)
	x := m.endpoint(t, "x")

	list := acl.New()
	list.RestrictTo("svc.other")
	y := m.endpoint(t, "y", WithAccessList(list))

	var called atomic.Bool
	require.NoError(t, y.RegisterHandler("svc.y", HandlerFunc(func(ctx context.Context, req *Request) (any, error) {
		called.Store(true)
		return op{Op: "pong"}, nil
	})))

	res := x.Send(waitCtx(t), "svc.y", op{Op: "ping"}).Wait(waitCtx(t))
	require.True(t, res.IsError())
	assert.Equal(t, constant.StatusForbidden, res.Error().FetchStatusCode())
	assert.Equal(t, "Forbidden", blame.Message(res.Error()))

	reply, _ := res.Value()
	require.NotNil(t, reply)
	assert.Nil(t, reply.Body)
	assert.Equal(t, "403", reply.Header[constant.CodeHeader])
	assert.False(t, called.Load())
}

func TestForbiddenRegistrationWithoutRespond(t *testing.T) {
	m := newMesh(t)
	list := acl.New()
	list.RestrictTo("svc.allowed")
	y := m.endpoint(t, "y", WithAccessList(list))

	err := y.RegisterHandler("svc.y", Typed(pong), WithRespond(false))
	assert.True(t, blame.HasCode(err, blame.ErrorForbiddenSubject))

	err = y.RegisterStreamHandler("svc.y", StreamHandlerFunc(func(context.Context, *Request) error { return nil }))
	assert.True(t, blame.HasCode(err, blame.ErrorForbiddenSubject))

	assert.NoError(t, y.RegisterStreamHandler("svc.allowed", StreamHandlerFunc(func(context.Context, *Request) error { return nil })))
}

func TestForbiddenOutbound(t *testing.T) {
	m := newMesh(t)
	list := acl.New()
	list.RestrictTo("svc.allowed")
	x := m.endpoint(t, "x", WithAccessList(list))

	res := x.Send(waitCtx(t), "svc.y", op{Op: "ping"}).Wait(waitCtx(t))
	require.True(t, res.IsError())
	assert.Equal(t, constant.StatusForbidden, res.Error().FetchStatusCode())
	assert.Equal(t, 0, x.Pending())

	err := x.Publish(waitCtx(t), "svc.y", op{Op: "ping"})
	assert.True(t, blame.HasCode(err, blame.ErrorForbiddenSubject))
}

func TestSendWithTimeoutDropsLateReply(t *testing.T) {
	m := newMesh(t)
	x := m.endpoint(t, "x")
	y := m.endpoint(t, "y")

	replied := make(chan struct{})
	require.NoError(t, y.RegisterHandler("svc.y", HandlerFunc(func(ctx context.Context, req *Request) (any, error) {
		time.Sleep(200 * time.Millisecond)
		defer close(replied)
		return op{Op: "pong"}, nil
	})))

	start := time.Now()
	future := x.SendWithTimeout(waitCtx(t), "svc.y", 50*time.Millisecond, op{Op: "ping"})
	res := future.Wait(waitCtx(t))
	elapsed := time.Since(start)

	require.True(t, res.IsError())
	assert.True(t, blame.HasCode(res.Error(), blame.ErrorRequestTimeout))
	assert.Equal(t, constant.StatusRequestTimeout, res.Error().FetchStatusCode())
	assert.Contains(t, blame.Message(res.Error()), "svc.y")
	assert.GreaterOrEqual(t, elapsed, 50*time.Millisecond)
	assert.Less(t, elapsed, 180*time.Millisecond)
	assert.False(t, x.table.Has(future.MessageID()))

	<-replied
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, 0, x.Pending())
	assert.True(t, blame.HasCode(future.Result().Error(), blame.ErrorRequestTimeout))
}

func TestForgedReplyRejectedWith401(t *testing.T) {
	m := newMesh(t)
	x := m.endpoint(t, "x")

	future := x.SendWithTimeout(waitCtx(t), "svc.nobody", time.Second, op{Op: "ping"})

	forged := events.NewMessage(x.ReplySubject(), []byte(`{"body":{"op":"pong"}}`))
	forged.Header.Set(constant.MessageIDHeader, future.MessageID())
	forged.Header.Set(constant.ServiceTokenHeader, "not.a.token")
	require.NoError(t, m.bus.Publish(waitCtx(t), forged))

	res := future.Wait(waitCtx(t))
	require.True(t, res.IsError())
	assert.Equal(t, constant.StatusUnauthorized, res.Error().FetchStatusCode())

	// the listener keeps going
	y := m.endpoint(t, "y")
	require.NoError(t, y.RegisterHandler("svc.y", Typed(pong)))
	assert.True(t, x.Send(waitCtx(t), "svc.y", op{Op: "ping"}).Wait(waitCtx(t)).IsSuccess())
}

func TestHandlerErrorsBecomeErrorBodies(t *testing.T) {
	m := newMesh(t)
	x := m.endpoint(t, "x")
	y := m.endpoint(t, "y")

	require.NoError(t, y.RegisterHandler("svc.fail", HandlerFunc(func(context.Context, *Request) (any, error) {
		return nil, errors.New("boom")
	})))
	require.NoError(t, y.RegisterHandler("svc.panic", HandlerFunc(func(context.Context, *Request) (any, error) {
		panic("kaboom")
	})))
	require.NoError(t, y.RegisterHandler("svc.blame", HandlerFunc(func(context.Context, *Request) (any, error) {
		return nil, blame.RemoteError("payment declined", 402)
	})))

	res := x.Send(waitCtx(t), "svc.fail", nil).Wait(waitCtx(t))
	require.True(t, res.IsError())
	assert.Equal(t, "boom", blame.Message(res.Error()))
	assert.Equal(t, constant.StatusInternalError, res.Error().FetchStatusCode())

	res = x.Send(waitCtx(t), "svc.panic", nil).Wait(waitCtx(t))
	require.True(t, res.IsError())
	assert.Equal(t, constant.StatusInternalError, res.Error().FetchStatusCode())

	res = x.Send(waitCtx(t), "svc.blame", nil).Wait(waitCtx(t))
	require.True(t, res.IsError())
	assert.Equal(t, "payment declined", blame.Message(res.Error()))
	assert.Equal(t, 402, res.Error().FetchStatusCode())

	// the handler loop survives the panic
	res = x.Send(waitCtx(t), "svc.panic", nil).Wait(waitCtx(t))
	assert.True(t, res.IsError())
}

func TestStreamHandlerFailuresDoNotStopDelivery(t *testing.T) {
	m := newMesh(t)
	x := m.endpoint(t, "x")
	y := m.endpoint(t, "y")

	var mu sync.Mutex
	var seen []string
	require.NoError(t, y.RegisterStreamHandler("audit.events", TypedStream(func(ctx context.Context, in op) error {
		mu.Lock()
		seen = append(seen, in.Op)
		mu.Unlock()
		if in.Op == "bad" {
			return errors.New("rejected")
		}
		if in.Op == "worse" {
			panic("worse")
		}
		return nil
	})))

	for _, name := range []string{"bad", "worse", "good"} {
		require.NoError(t, x.Publish(waitCtx(t), "audit.events", op{Op: name}))
	}

	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(seen) == 3
	}, time.Second, 5*time.Millisecond)
	assert.Equal(t, []string{"bad", "worse", "good"}, seen)
}

func TestStreamHandlerRejectsUnverifiedSender(t *testing.T) {
	m := newMesh(t)
	y := m.endpoint(t, "y")
	var calls atomic.Int32
	require.NoError(t, y.RegisterStreamHandler("audit.events", StreamHandlerFunc(func(context.Context, *Request) error {
		calls.Add(1)
		return nil
	})))

	forged := events.NewMessage("audit.events", []byte(`{"op":"x"}`))
	forged.Header.Set(constant.ServiceTokenHeader, "not.a.token")
	require.NoError(t, m.bus.Publish(waitCtx(t), forged))

	x := m.endpoint(t, "x")
	require.NoError(t, x.Publish(waitCtx(t), "audit.events", op{Op: "ok"}))

	assert.Eventually(t, func() bool { return calls.Load() == 1 }, time.Second, 5*time.Millisecond)
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, int32(1), calls.Load())
}

func TestLoadBalancing(t *testing.T) {
	for _, tc := range []struct {
		name     string
		opts     []HandlerOption
		expected int32
	}{
		{name: "queue group", expected: 10},
		{name: "fan out", opts: []HandlerOption{WithLoadBalancing(false)}, expected: 20},
	} {
		t.Run(tc.name, func(t *testing.T) {
			m := newMesh(t)
			x := m.endpoint(t, "x")
			y1 := m.endpoint(t, "y")
			y2 := m.endpoint(t, "y")

			var total, first atomic.Int32
			count := func(self *atomic.Int32) Handler {
				return HandlerFunc(func(context.Context, *Request) (any, error) {
					total.Add(1)
					if self != nil {
						self.Add(1)
					}
					return "ok", nil
				})
			}
			require.NoError(t, y1.RegisterHandler("svc.y", count(&first), tc.opts...))
			require.NoError(t, y2.RegisterHandler("svc.y", count(nil), tc.opts...))

			for range 10 {
				res := x.Send(waitCtx(t), "svc.y", nil).Wait(waitCtx(t))
				require.True(t, res.IsSuccess())
			}
			assert.Eventually(t, func() bool { return total.Load() == tc.expected }, time.Second, 5*time.Millisecond)
			assert.Positive(t, first.Load())
			assert.Less(t, first.Load(), tc.expected)
			assert.Equal(t, 0, x.Pending())
		})
	}
}

func TestSendWithoutReply(t *testing.T) {
	m := newMesh(t)
	x := m.endpoint(t, "x")
	y := m.endpoint(t, "y")

	got := make(chan *Request, 1)
	require.NoError(t, y.RegisterHandler("svc.y", HandlerFunc(func(ctx context.Context, req *Request) (any, error) {
		got <- req
		return "ignored", nil
	})))

	future := x.Send(waitCtx(t), "svc.y", op{Op: "fire"}, WithoutReply(), WithMessageID("fire-1"), WithHeader("tenant", "acme"))
	select {
	case <-future.Done():
	default:
		t.Fatal("future without reply should settle on publish")
	}
	assert.True(t, future.Result().IsSuccess())
	assert.Equal(t, 0, x.Pending())

	req := <-got
	assert.Equal(t, "fire-1", req.MessageID)
	assert.Empty(t, req.Reply)
	assert.Equal(t, "x", req.Sender)
	assert.Equal(t, "acme", req.Header.Get("tenant"))
}

func TestDuplicateMessageID(t *testing.T) {
	m := newMesh(t)
	x := m.endpoint(t, "x")

	first := x.Send(waitCtx(t), "svc.nobody", nil, WithMessageID("dup"))
	second := x.Send(waitCtx(t), "svc.nobody", nil, WithMessageID("dup"))

	res := second.Wait(waitCtx(t))
	require.True(t, res.IsError())
	assert.True(t, blame.HasCode(res.Error(), blame.ErrorDuplicateMessageID))
	assert.True(t, x.table.Has("dup"))
	assert.Nil(t, first.Result())
}

func TestCloseRejectsPending(t *testing.T) {
	m := newMesh(t)
	x := m.endpoint(t, "x", WithRequestTimeout(0))

	future := x.Send(waitCtx(t), "svc.nobody", nil)
	require.Equal(t, 1, x.Pending())

	require.NoError(t, x.Close(waitCtx(t)))
	res := future.Wait(waitCtx(t))
	require.True(t, res.IsError())
	assert.Equal(t, constant.StatusClientClosed, res.Error().FetchStatusCode())
	assert.Equal(t, 0, x.Pending())

	after := x.Send(waitCtx(t), "svc.nobody", nil).Wait(waitCtx(t))
	assert.True(t, blame.HasCode(after.Error(), blame.ErrorEndpointClosed))
	assert.True(t, blame.HasCode(x.RegisterHandler("svc.x", Typed(pong)), blame.ErrorEndpointClosed))
	assert.NoError(t, x.Close(waitCtx(t)))
	assert.Equal(t, 0, m.bus.SubscriptionCount())
}

func TestWaitCancellationEvicts(t *testing.T) {
	m := newMesh(t)
	x := m.endpoint(t, "x", WithRequestTimeout(0))

	future := x.Send(waitCtx(t), "svc.nobody", nil)
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	res := future.Wait(ctx)
	require.True(t, res.IsError())
	assert.True(t, blame.HasCode(res.Error(), blame.ErrorRequestCancelled))
	assert.Equal(t, 0, x.Pending())
}

func TestAuthDisabledEndpoints(t *testing.T) {
	m := newMesh(t)
	x := m.open(t, "x")
	y := m.open(t, "y")
	assert.False(t, x.Authenticator().Enabled())

	require.NoError(t, y.RegisterHandler("svc.y", HandlerFunc(func(ctx context.Context, req *Request) (any, error) {
		assert.Empty(t, req.Sender)
		return op{Op: "pong"}, nil
	})))

	res := Call[op](waitCtx(t), x, "svc.y", op{Op: "ping"})
	require.True(t, res.IsSuccess(), "%v", res.Error())
	assert.Equal(t, "pong", res.ToValue().Op)
}

func TestRequireTokenRejectsUnsignedCaller(t *testing.T) {
	m := newMesh(t)
	x := m.open(t, "x")

	pub, priv, err := cryptography.GenerateEd25519KeyPair()
	require.NoError(t, err)
	ctx := context.Background()
	require.NoError(t, m.store.SetSecrets(ctx, secrets.PrivateKeyPath("y"), map[string]string{constant.PrivateKeyField: priv}))
	require.NoError(t, m.store.SetSecrets(ctx, secrets.PublicKeyPath("y"), map[string]string{constant.PublicKeyField: pub}))
	a, err := auth.New("y", m.store, auth.WithLogger(log.NewNopLogger()), auth.WithRequireToken(true))
	require.NoError(t, err)
	y := m.open(t, "y", WithAuthenticator(a))

	var called atomic.Bool
	require.NoError(t, y.RegisterHandler("svc.y", HandlerFunc(func(context.Context, *Request) (any, error) {
		called.Store(true)
		return nil, nil
	})))

	res := x.Send(waitCtx(t), "svc.y", op{Op: "ping"}).Wait(waitCtx(t))
	require.True(t, res.IsError())
	assert.Equal(t, constant.StatusUnauthorized, res.Error().FetchStatusCode())
	assert.False(t, called.Load())
}

func TestDedupeDropsRedelivery(t *testing.T) {
	m := newMesh(t)
	x := m.endpoint(t, "x")
	y := m.endpoint(t, "y")

	var calls atomic.Int32
	require.NoError(t, y.RegisterStreamHandler("audit.events", StreamHandlerFunc(func(context.Context, *Request) error {
		calls.Add(1)
		return nil
	})))

	require.NoError(t, x.Publish(waitCtx(t), "audit.events", op{Op: "a"}, WithMessageID("m-1")))
	require.NoError(t, x.Publish(waitCtx(t), "audit.events", op{Op: "a"}, WithMessageID("m-1")))
	require.NoError(t, x.Publish(waitCtx(t), "audit.events", op{Op: "b"}, WithMessageID("m-2")))

	assert.Eventually(t, func() bool { return calls.Load() == 2 }, time.Second, 5*time.Millisecond)
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, int32(2), calls.Load())
}

func TestSubscriptionsBuilder(t *testing.T) {
	m := newMesh(t)
	x := m.endpoint(t, "x")
	y := m.endpoint(t, "y")

	var audited atomic.Int32
	subs := NewSubscriptions("v1", WithDefaultHandlerOptions(WithQueueGroup("y-workers"))).
		Handle("echo", Typed(func(ctx context.Context, in op) (op, error) { return in, nil })).
		Stream("audit", StreamHandlerFunc(func(context.Context, *Request) error {
			audited.Add(1)
			return nil
		}))
	assert.Equal(t, []string{"v1.echo", "v1.audit"}, subs.Subjects())
	require.NoError(t, y.RegisterAll(subs))

	res := Call[op](waitCtx(t), x, "v1.echo", op{Op: "hello"})
	require.True(t, res.IsSuccess(), "%v", res.Error())
	assert.Equal(t, "hello", res.ToValue().Op)

	require.NoError(t, x.Publish(waitCtx(t), "v1.audit", nil))
	assert.Eventually(t, func() bool { return audited.Load() == 1 }, time.Second, 5*time.Millisecond)
}

func TestNewEndpointValidation(t *testing.T) {
	_, err := NewEndpoint("", memory.New())
	assert.Error(t, err)

	_, err = NewEndpoint("x", nil)
	assert.Error(t, err)

	m := newMesh(t)
	x := m.open(t, "x", WithReplyPrefix("_inbox"))
	assert.Regexp(t, `^_inbox\.x\.[0-9a-f-]{36}$`, x.ReplySubject())
	assert.Error(t, x.RegisterHandler("svc.x", nil))
}

func TestForgedCopyDoesNotConsumeMessageID(t *testing.T) {
	m := newMesh(t)
	x := m.endpoint(t, "x")
	y := m.endpoint(t, "y")
	require.NoError(t, y.RegisterHandler("svc.y", Typed(pong)))

	forged := events.NewMessage("svc.y", []byte(`{"op":"ping"}`))
	forged.Header.Set(constant.MessageIDHeader, "req-1")
	forged.Header.Set(constant.ServiceTokenHeader, "not.a.token")
	require.NoError(t, m.bus.Publish(waitCtx(t), forged))

	res := Call[op](waitCtx(t), x, "svc.y", op{Op: "ping"}, WithMessageID("req-1"))
	require.True(t, res.IsSuccess(), "%v", res.Error())
	assert.Equal(t, "pong", res.ToValue().Op)
}

func TestForgedStreamCopyDoesNotConsumeMessageID(t *testing.T) {
	m := newMesh(t)
	y := m.endpoint(t, "y")
	var calls atomic.Int32
	require.NoError(t, y.RegisterStreamHandler("audit.events", StreamHandlerFunc(func(context.Context, *Request) error {
		calls.Add(1)
		return nil
	})))

	forged := events.NewMessage("audit.events", []byte(`{"op":"x"}`))
	forged.Header.Set(constant.MessageIDHeader, "m-1")
	forged.Header.Set(constant.ServiceTokenHeader, "not.a.token")
	require.NoError(t, m.bus.Publish(waitCtx(t), forged))

	x := m.endpoint(t, "x")
	require.NoError(t, x.Publish(waitCtx(t), "audit.events", op{Op: "ok"}, WithMessageID("m-1")))

	assert.Eventually(t, func() bool { return calls.Load() == 1 }, time.Second, 5*time.Millisecond)
}

func TestCloseWaitsForRunningHandlers(t *testing.T) {
	m := newMesh(t)
	x := m.endpoint(t, "x")
	y := m.endpoint(t, "y")

	started := make(chan struct{})
	var finished atomic.Bool
	require.NoError(t, y.RegisterHandler("svc.y", HandlerFunc(func(context.Context, *Request) (any, error) {
		close(started)
		time.Sleep(200 * time.Millisecond)
		finished.Store(true)
		return op{Op: "pong"}, nil
	})))

	future := x.SendWithTimeout(waitCtx(t), "svc.y", 500*time.Millisecond, op{Op: "ping"})
	<-started

	require.NoError(t, y.Close(waitCtx(t)))
	assert.True(t, finished.Load(), "Close returned before the handler did")

	res := future.Wait(waitCtx(t))
	require.True(t, res.IsError(), "closed endpoint still replied")
	assert.True(t, blame.HasCode(res.Error(), blame.ErrorRequestTimeout))
}

func TestInvokeRecoversPanics(t *testing.T) {
	req := &Request{Subject: "svc.y"}

	out, err := invoke(context.Background(), HandlerFunc(func(context.Context, *Request) (any, error) {
		panic(io.ErrUnexpectedEOF)
	}), req)
	assert.Nil(t, out)
	assert.Equal(t, constant.StatusInternalError, blame.StatusCode(err))

	err = invokeStream(context.Background(), StreamHandlerFunc(func(context.Context, *Request) error {
		panic("boom")
	}), req)
	assert.Equal(t, constant.StatusInternalError, blame.StatusCode(err))
}
