package api

import (
	"context"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/xtding233/gacha-arena/internal/session"
	"github.com/xtding233/gacha-arena/internal/storage"
)

// Handler implements ArenaServer on top of a session.Service.
type Handler struct {
	svc *session.Service
}

// NewHandler wraps svc.
func NewHandler(svc *session.Service) *Handler {
	return &Handler{svc: svc}
}

var _ ArenaServer = (*Handler)(nil)

func (h *Handler) session(req *structpb.Struct) (*session.Session, error) {
	token, err := stringField(req, "session")
	if err != nil {
		return nil, err
	}
	if token == "" {
		return nil, status.Error(codes.Unauthenticated, "session is required")
	}
	sess, err := h.svc.Session(token)
	if err != nil {
		return nil, toStatus(err)
	}
	return sess, nil
}

func credentials(req *structpb.Struct) (string, string, error) {
	user, err := stringField(req, "username")
	if err != nil {
		return "", "", err
	}
	pass, err := stringField(req, "password")
	if err != nil {
		return "", "", err
	}
	return user, pass, nil
}

func (h *Handler) Register(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	user, pass, err := credentials(req)
	if err != nil {
		return nil, err
	}
	if err := h.svc.Register(ctx, user, pass); err != nil {
		return nil, toStatus(err)
	}
	return newStruct(map[string]any{"username": user})
}

func (h *Handler) Login(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	user, pass, err := credentials(req)
	if err != nil {
		return nil, err
	}
	sess, err := h.svc.Login(ctx, user, pass)
	if err != nil {
		return nil, toStatus(err)
	}
	return newStruct(map[string]any{
		"session":          sess.Token(),
		"admin":            sess.IsAdmin(),
		"player":           playerValue(sess.Stats()),
		"xp_to_next_level": sess.XPToNextLevel(),
		"affordable_draws": sess.AffordableDraws(),
	})
}

func (h *Handler) Logout(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	token, err := stringField(req, "session")
	if err != nil {
		return nil, err
	}
	msg, err := warning(h.svc.Logout(ctx, token))
	if err != nil {
		return nil, toStatus(err)
	}
	return withWarning(map[string]any{}, msg)
}

func (h *Handler) Draw(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	sess, err := h.session(req)
	if err != nil {
		return nil, err
	}
	count, err := intField(req, "count", 1)
	if err != nil {
		return nil, err
	}
	cards, err := sess.Draw(ctx, count)
	msg, err := warning(err)
	if err != nil {
		return nil, toStatus(err)
	}
	return withWarning(map[string]any{
		"cards":            cardsValue(cards),
		"player":           playerValue(sess.Stats()),
		"affordable_draws": sess.AffordableDraws(),
	}, msg)
}

func (h *Handler) DrawMatch(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	sess, err := h.session(req)
	if err != nil {
		return nil, err
	}
	count, err := intField(req, "count", 0)
	if err != nil {
		return nil, err
	}
	cards, err := sess.DrawAndBattle(ctx, count)
	msg, err := warning(err)
	if err != nil {
		return nil, toStatus(err)
	}
	view, err := sess.Match()
	if err != nil {
		return nil, toStatus(err)
	}
	return withWarning(map[string]any{
		"cards":  cardsValue(cards),
		"match":  matchValue(view),
		"player": playerValue(sess.Stats()),
	}, msg)
}

func (h *Handler) StartMatch(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	sess, err := h.session(req)
	if err != nil {
		return nil, err
	}
	indices, err := intsField(req, "indices")
	if err != nil {
		return nil, err
	}
	if err := sess.StartMatch(ctx, indices); err != nil {
		return nil, toStatus(err)
	}
	view, err := sess.Match()
	if err != nil {
		return nil, toStatus(err)
	}
	return newStruct(map[string]any{"match": matchValue(view)})
}

func (h *Handler) PlayRound(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	sess, err := h.session(req)
	if err != nil {
		return nil, err
	}
	index, err := intField(req, "index", 0)
	if err != nil {
		return nil, err
	}
	rep, err := sess.PlayRound(ctx, index)
	msg, err := warning(err)
	if err != nil {
		return nil, toStatus(err)
	}
	out := map[string]any{
		"round":     roundValue(rep.Round),
		"score":     scoreValue(rep.Score),
		"state":     rep.State.String(),
		"completed": rep.Completed,
		"player":    playerValue(sess.Stats()),
	}
	if rep.Completed {
		out["outcome"] = rep.Outcome.String()
		out["rating_delta"] = rep.RatingDelta
	}
	return withWarning(out, msg)
}

func (h *Handler) GetMatch(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	sess, err := h.session(req)
	if err != nil {
		return nil, err
	}
	view, err := sess.Match()
	if err != nil {
		return nil, toStatus(err)
	}
	return newStruct(map[string]any{"match": matchValue(view)})
}

func (h *Handler) ListCollection(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	sess, err := h.session(req)
	if err != nil {
		return nil, err
	}
	return newStruct(map[string]any{
		"cards":  cardsValue(sess.OwnedCards()),
		"player": playerValue(sess.Stats()),
	})
}

func (h *Handler) Leaderboard(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	by, err := stringField(req, "by")
	if err != nil {
		return nil, err
	}
	order, err := storage.ParseOrder(by)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	limit, err := intField(req, "limit", 0)
	if err != nil {
		return nil, err
	}
	rows, err := h.svc.Leaderboard(ctx, order, limit)
	if err != nil {
		return nil, toStatus(err)
	}
	players := make([]any, 0, len(rows))
	for _, p := range rows {
		players = append(players, statsValue(p))
	}
	return newStruct(map[string]any{"by": string(order), "players": players})
}

func (h *Handler) History(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	sess, err := h.session(req)
	if err != nil {
		return nil, err
	}
	limit, err := intField(req, "limit", 0)
	if err != nil {
		return nil, err
	}
	recs, err := sess.History(ctx, limit)
	if err != nil {
		return nil, toStatus(err)
	}
	matches := make([]any, 0, len(recs))
	for _, r := range recs {
		matches = append(matches, recordValue(r))
	}
	return newStruct(map[string]any{"matches": matches})
}

func (h *Handler) Purge(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	sess, err := h.session(req)
	if err != nil {
		return nil, err
	}
	raw, err := stringField(req, "target")
	if err != nil {
		return nil, err
	}
	if !sess.IsAdmin() {
		return nil, toStatus(session.ErrForbidden)
	}
	target, err := session.ParsePurgeTarget(raw)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	res, err := h.svc.Purge(ctx, sess, target)
	if err != nil {
		return nil, toStatus(err)
	}
	return newStruct(map[string]any{"records": res.Records, "cards": res.Cards})
}

func withWarning(fields map[string]any, msg string) (*structpb.Struct, error) {
	if msg != "" {
		fields["warning"] = msg
	}
	return newStruct(fields)
}
