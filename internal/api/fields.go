package api

import (
	"math"
	"time"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/xtding233/gacha-arena/internal/card"
	"github.com/xtding233/gacha-arena/internal/match"
	"github.com/xtding233/gacha-arena/internal/progression"
	"github.com/xtding233/gacha-arena/internal/session"
	"github.com/xtding233/gacha-arena/internal/storage"
)

func stringField(req *structpb.Struct, key string) (string, error) {
	v, ok := req.GetFields()[key]
	if !ok {
		return "", nil
	}
	s, ok := v.GetKind().(*structpb.Value_StringValue)
	if !ok {
		return "", status.Errorf(codes.InvalidArgument, "%s must be a string", key)
	}
	return s.StringValue, nil
}

func toInt(key string, v *structpb.Value) (int, error) {
	n, ok := v.GetKind().(*structpb.Value_NumberValue)
	if !ok {
		return 0, status.Errorf(codes.InvalidArgument, "%s must be a number", key)
	}
	f := n.NumberValue
	if f != math.Trunc(f) || f > math.MaxInt32 || f < math.MinInt32 {
		return 0, status.Errorf(codes.InvalidArgument, "%s must be an integer", key)
	}
	return int(f), nil
}

// intField returns def when key is absent.
func intField(req *structpb.Struct, key string, def int) (int, error) {
	v, ok := req.GetFields()[key]
	if !ok {
		return def, nil
	}
	return toInt(key, v)
}

func intsField(req *structpb.Struct, key string) ([]int, error) {
	v, ok := req.GetFields()[key]
	if !ok {
		return nil, nil
	}
	list, ok := v.GetKind().(*structpb.Value_ListValue)
	if !ok {
		return nil, status.Errorf(codes.InvalidArgument, "%s must be a list", key)
	}
	out := make([]int, 0, len(list.ListValue.GetValues()))
	for _, item := range list.ListValue.GetValues() {
		n, err := toInt(key, item)
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, nil
}

func cardValue(c card.Card) map[string]any {
	return map[string]any{
		"name":        c.Name,
		"attribute":   string(c.Attribute),
		"rarity":      string(c.Rarity),
		"category":    string(c.Category),
		"description": c.Description,
		"power":       c.BasePower,
	}
}

func cardsValue(cards []card.Card) []any {
	out := make([]any, 0, len(cards))
	for _, c := range cards {
		out = append(out, cardValue(c))
	}
	return out
}

func playerValue(st progression.Stats) map[string]any {
	return map[string]any{
		"username": st.Username,
		"level":    st.Level,
		"xp":       st.XP,
		"currency": st.Currency,
		"rating":   st.Rating,
	}
}

func scoreValue(s match.Score) map[string]any {
	return map[string]any{"wins": s.Wins, "losses": s.Losses, "draws": s.Draws}
}

func roundValue(r match.Round) map[string]any {
	ups := make([]any, 0, len(r.Gain.LevelUps))
	for _, up := range r.Gain.LevelUps {
		ups = append(ups, map[string]any{"level": up.Level, "bonus": up.Bonus})
	}
	return map[string]any{
		"number":         r.Number,
		"player_card":    cardValue(r.PlayerCard),
		"opponent_card":  cardValue(r.OpponentCard),
		"player_power":   r.PlayerPower,
		"opponent_power": r.OpponentPower,
		"result":         r.Result.String(),
		"xp":             r.Gain.XP,
		"currency":       r.Gain.Currency,
		"level_ups":      ups,
	}
}

func matchValue(v session.MatchView) map[string]any {
	rounds := make([]any, 0, len(v.Rounds))
	for _, r := range v.Rounds {
		rounds = append(rounds, roundValue(r))
	}
	out := map[string]any{
		"id":             v.ID,
		"state":          v.State.String(),
		"opponent":       v.Opponent,
		"hand":           cardsValue(v.Hand),
		"opponent_cards": v.OpponentCards,
		"score":          scoreValue(v.Score),
		"rounds":         rounds,
	}
	if v.State == match.Completed {
		out["outcome"] = v.Outcome.String()
	}
	return out
}

func recordValue(r storage.MatchRecord) map[string]any {
	return map[string]any{
		"id":        r.ID,
		"opponent":  r.Opponent,
		"wins":      r.Wins,
		"losses":    r.Losses,
		"draws":     r.Draws,
		"played_at": r.PlayedAt.UTC().Format(time.RFC3339Nano),
	}
}

func statsValue(p storage.PlayerStats) map[string]any {
	return map[string]any{
		"username": p.Username,
		"level":    p.Level,
		"xp":       p.XP,
		"currency": p.Currency,
		"rating":   p.Rating,
	}
}

func newStruct(fields map[string]any) (*structpb.Struct, error) {
	out, err := structpb.NewStruct(fields)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "encode response: %v", err)
	}
	return out, nil
}
