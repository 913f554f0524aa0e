package api

import (
	"context"
	"fmt"
	"io"
	"log"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	grpc_health_v1 "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/xtding233/gacha-arena/internal/account"
	"github.com/xtding233/gacha-arena/internal/config"
	"github.com/xtding233/gacha-arena/internal/gacha"
	"github.com/xtding233/gacha-arena/internal/session"
	"github.com/xtding233/gacha-arena/internal/storage"
	"github.com/xtding233/gacha-arena/internal/storage/memory"
)

type harness struct {
	client *Client
	conn   *grpc.ClientConn
}

func startServer(t *testing.T, opts ...ServerOption) harness {
	t.Helper()
	quiet := log.New(io.Discard, "", 0)
	store := memory.New()
	accts := account.New(store, account.WithCost(bcrypt.MinCost), account.WithLogger(quiet))
	require.NoError(t, accts.EnsureAdmin(context.Background(), "admin", "secret"))
	_, params, err := config.NewLoader("").Resolve("", config.Overrides{})
	require.NoError(t, err)
	svc, err := session.New(store, accts, params, session.WithRNG(gacha.NewSeededRNG(11)), session.WithLogger(quiet))
	require.NoError(t, err)

	lis := bufconn.Listen(1 << 20)
	srv := NewServer(lis, svc, append([]ServerOption{WithServerLogger(quiet)}, opts...)...)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Serve(ctx) }()

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) { return lis.DialContext(ctx) }),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = conn.Close()
		cancel()
		select {
		case err := <-done:
			assert.NoError(t, err)
		case <-time.After(5 * time.Second):
			t.Error("server did not stop")
		}
	})
	return harness{client: NewClient(conn), conn: conn}
}

func (h harness) call(t *testing.T, method string, fields map[string]any) *structpb.Struct {
	t.Helper()
	out, err := h.client.Call(context.Background(), method, fields)
	require.NoError(t, err, method)
	return out
}

func (h harness) login(t *testing.T, user, pass string) string {
	t.Helper()
	out := h.call(t, "Login", map[string]any{"username": user, "password": pass})
	return out.GetFields()["session"].GetStringValue()
}

func number(s *structpb.Struct, path ...string) float64 {
	for _, p := range path[:len(path)-1] {
		s = s.GetFields()[p].GetStructValue()
	}
	return s.GetFields()[path[len(path)-1]].GetNumberValue()
}

func codeOf(err error) codes.Code { return status.Code(err) }

func TestDrawAndMatchFlow(t *testing.T) {
	h := startServer(t)
	h.call(t, "Register", map[string]any{"username": "alice", "password": "pass1234"})
	tok := h.login(t, "alice", "pass1234")
	require.NotEmpty(t, tok)

	out := h.call(t, "Draw", map[string]any{"session": tok, "count": 3})
	assert.Len(t, out.GetFields()["cards"].GetListValue().GetValues(), 3)
	assert.Equal(t, 970.0, number(out, "player", "currency"))
	assert.Equal(t, 97.0, number(out, "affordable_draws"))
	assert.NotContains(t, out.GetFields(), "warning")

	out = h.call(t, "ListCollection", map[string]any{"session": tok})
	assert.Len(t, out.GetFields()["cards"].GetListValue().GetValues(), 3)

	out = h.call(t, "StartMatch", map[string]any{"session": tok, "indices": []any{2, 0, 1}})
	assert.Equal(t, "in_progress", out.GetFields()["match"].GetStructValue().GetFields()["state"].GetStringValue())

	var last *structpb.Struct
	for i := 0; i < 3; i++ {
		last = h.call(t, "PlayRound", map[string]any{"session": tok, "index": 0})
	}
	assert.True(t, last.GetFields()["completed"].GetBoolValue())
	assert.Contains(t, []string{"win", "loss", "draw"}, last.GetFields()["outcome"].GetStringValue())
	delta := number(last, "rating_delta")
	assert.Equal(t, 1000+delta, number(last, "player", "rating"))

	out = h.call(t, "GetMatch", map[string]any{"session": tok})
	m := out.GetFields()["match"].GetStructValue()
	assert.Equal(t, "completed", m.GetFields()["state"].GetStringValue())
	assert.Len(t, m.GetFields()["rounds"].GetListValue().GetValues(), 3)

	out = h.call(t, "History", map[string]any{"session": tok, "limit": 5})
	assert.Len(t, out.GetFields()["matches"].GetListValue().GetValues(), 1)

	before := number(last, "player", "currency")
	out = h.call(t, "DrawMatch", map[string]any{"session": tok})
	assert.Len(t, out.GetFields()["cards"].GetListValue().GetValues(), 10)
	assert.Equal(t, before-100, number(out, "player", "currency"))
	assert.Equal(t, 10.0, number(out, "match", "opponent_cards"))

	h.call(t, "Logout", map[string]any{"session": tok})
	_, err := h.client.Call(context.Background(), "Draw", map[string]any{"session": tok})
	assert.Equal(t, codes.Unauthenticated, codeOf(err))
}

func TestErrorCodes(t *testing.T) {
	h := startServer(t)
	ctx := context.Background()
	h.call(t, "Register", map[string]any{"username": "bob", "password": "pass1234"})

	_, err := h.client.Call(ctx, "Register", map[string]any{"username": "bob", "password": "pass1234"})
	assert.Equal(t, codes.AlreadyExists, codeOf(err))
	_, err = h.client.Call(ctx, "Register", map[string]any{"username": "eve", "password": "x"})
	assert.Equal(t, codes.InvalidArgument, codeOf(err))
	_, err = h.client.Call(ctx, "Login", map[string]any{"username": "bob", "password": "wrong"})
	assert.Equal(t, codes.Unauthenticated, codeOf(err))
	_, err = h.client.Call(ctx, "Draw", map[string]any{"count": 1})
	assert.Equal(t, codes.Unauthenticated, codeOf(err))

	tok := h.login(t, "bob", "pass1234")
	_, err = h.client.Call(ctx, "Draw", map[string]any{"session": tok, "count": 101})
	assert.Equal(t, codes.FailedPrecondition, codeOf(err))
	_, err = h.client.Call(ctx, "Draw", map[string]any{"session": tok, "count": 1.5})
	assert.Equal(t, codes.InvalidArgument, codeOf(err))
	_, err = h.client.Call(ctx, "Draw", map[string]any{"session": tok, "count": -1})
	assert.Equal(t, codes.InvalidArgument, codeOf(err))
	_, err = h.client.Call(ctx, "PlayRound", map[string]any{"session": tok, "index": 0})
	assert.Equal(t, codes.FailedPrecondition, codeOf(err))
	_, err = h.client.Call(ctx, "StartMatch", map[string]any{"session": tok, "indices": []any{0}})
	assert.Equal(t, codes.InvalidArgument, codeOf(err))

	h.call(t, "Draw", map[string]any{"session": tok, "count": 2})
	h.call(t, "StartMatch", map[string]any{"session": tok, "indices": []any{0, 1}})
	_, err = h.client.Call(ctx, "PlayRound", map[string]any{"session": tok, "index": 7})
	assert.Equal(t, codes.InvalidArgument, codeOf(err))
	_, err = h.client.Call(ctx, "StartMatch", map[string]any{"session": tok, "indices": []any{0}})
	assert.Equal(t, codes.FailedPrecondition, codeOf(err))

	_, err = h.client.Call(ctx, "Leaderboard", map[string]any{"by": "height"})
	assert.Equal(t, codes.InvalidArgument, codeOf(err))
	_, err = h.client.Call(ctx, "Purge", map[string]any{"session": tok, "target": "all"})
	assert.Equal(t, codes.PermissionDenied, codeOf(err))
}

func TestLeaderboardAndAdminPurge(t *testing.T) {
	h := startServer(t)
	for _, u := range []string{"carl", "dina"} {
		h.call(t, "Register", map[string]any{"username": u, "password": "pass1234"})
	}
	carl := h.login(t, "carl", "pass1234")
	dina := h.login(t, "dina", "pass1234")
	h.call(t, "Draw", map[string]any{"session": carl, "count": 5})
	h.call(t, "Draw", map[string]any{"session": dina, "count": 1})

	out := h.call(t, "Leaderboard", map[string]any{"by": "currency", "limit": 1})
	players := out.GetFields()["players"].GetListValue().GetValues()
	require.Len(t, players, 1)
	assert.Equal(t, "dina", players[0].GetStructValue().GetFields()["username"].GetStringValue())

	admin := h.login(t, "admin", "secret")
	_, err := h.client.Call(context.Background(), "Purge", map[string]any{"session": admin, "target": "nope"})
	assert.Equal(t, codes.InvalidArgument, codeOf(err))
	out = h.call(t, "Purge", map[string]any{"session": admin, "target": "cards"})
	assert.Equal(t, 6.0, number(out, "cards"))
	assert.Equal(t, 0.0, number(out, "records"))

	out = h.call(t, "ListCollection", map[string]any{"session": carl})
	assert.Empty(t, out.GetFields()["cards"].GetListValue().GetValues())
}

func TestRateLimit(t *testing.T) {
	h := startServer(t, WithRateLimit(0.001, 1))
	ctx := context.Background()
	_, err := h.client.Call(ctx, "Leaderboard", map[string]any{})
	require.NoError(t, err)
	_, err = h.client.Call(ctx, "Leaderboard", map[string]any{})
	assert.Equal(t, codes.ResourceExhausted, codeOf(err))
}

func TestHealthServing(t *testing.T) {
	h := startServer(t)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	resp, err := grpc_health_v1.NewHealthClient(h.conn).Check(ctx, &grpc_health_v1.HealthCheckRequest{Service: ServiceName})
	require.NoError(t, err)
	assert.Equal(t, grpc_health_v1.HealthCheckResponse_SERVING, resp.GetStatus())
}

func TestToStatusPassesThroughAndHidesInternals(t *testing.T) {
	orig := status.Error(codes.Aborted, "x")
	assert.Equal(t, orig, toStatus(orig))
	assert.Equal(t, codes.NotFound, codeOf(toStatus(fmt.Errorf("load: %w", storage.ErrNotFound))))
	err := toStatus(io.ErrUnexpectedEOF)
	assert.Equal(t, codes.Internal, codeOf(err))
	assert.NotContains(t, err.Error(), "EOF")
	assert.NoError(t, toStatus(nil))
}
