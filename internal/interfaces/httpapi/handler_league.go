package httpapi

import (
	"net/http"
	"strings"

	"github.com/riskibarqy/golf-league/internal/domain/league"
	"github.com/riskibarqy/golf-league/internal/syncapi"
	"github.com/riskibarqy/golf-league/internal/usecase"
)

type createLeagueRequest struct {
	Name    string `json:"name" validate:"required,max=120"`
	Format  string `json:"format" validate:"required,oneof=stroke bracket"`
	Period  string `json:"period" validate:"omitempty,oneof=week month"`
	OwnerID int64  `json:"ownerId" validate:"required,gt=0"`
}

type joinLeagueRequest struct {
	UserID int64 `json:"userId" validate:"required,gt=0"`
}

type startTournamentRequest struct {
	Players []int64 `json:"players" validate:"omitempty,dive,gt=0"`
}

type advanceMatchRequest struct {
	LeagueMatchID int64  `json:"leagueMatchId" validate:"required,gt=0"`
	WinnerID      int64  `json:"winnerId" validate:"required,gt=0"`
	LinkedMatchID *int64 `json:"linkedMatchId,omitempty" validate:"omitempty,gt=0"`
}

type advanceMatchResponse struct {
	Match    syncapi.LeagueMatch  `json:"match"`
	Next     *syncapi.LeagueMatch `json:"next,omitempty"`
	Finished bool                 `json:"finished"`
}

func (h *Handler) CreateLeague(w http.ResponseWriter, r *http.Request) {
	ctx, span := handlerSpan(r, "CreateLeague")
	defer span.End()

	var req createLeagueRequest
	if err := decodeJSON(r, &req, true, false); err != nil {
		writeError(ctx, w, err)
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	created, err := h.leagueService.Create(ctx, league.League{
		Name:    strings.TrimSpace(req.Name),
		Format:  league.Format(req.Format),
		Period:  league.Period(req.Period),
		OwnerID: req.OwnerID,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "create league failed", "owner_id", req.OwnerID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusCreated, created)
}

func (h *Handler) GetLeague(w http.ResponseWriter, r *http.Request) {
	ctx, span := handlerSpan(r, "GetLeague")
	defer span.End()

	leagueID, err := pathID(r, "leagueID")
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	detail, err := h.leagueService.Get(ctx, leagueID)
	if err != nil {
		h.logger.WarnContext(ctx, "get league failed", "league_id", leagueID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, detail)
}

func (h *Handler) JoinLeague(w http.ResponseWriter, r *http.Request) {
	ctx, span := handlerSpan(r, "JoinLeague")
	defer span.End()

	leagueID, err := pathID(r, "leagueID")
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	var req joinLeagueRequest
	if err := decodeJSON(r, &req, true, false); err != nil {
		writeError(ctx, w, err)
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	if err := h.leagueService.Join(ctx, leagueID, req.UserID); err != nil {
		h.logger.WarnContext(ctx, "join league failed", "league_id", leagueID, "user_id", req.UserID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, map[string]int64{"leagueId": leagueID, "userId": req.UserID})
}

func (h *Handler) GetStandings(w http.ResponseWriter, r *http.Request) {
	ctx, span := handlerSpan(r, "GetStandings")
	defer span.End()

	leagueID, err := pathID(r, "leagueID")
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	table, err := h.leagueService.Standings(ctx, leagueID)
	if err != nil {
		h.logger.WarnContext(ctx, "get standings failed", "league_id", leagueID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, table)
}

func (h *Handler) StartTournament(w http.ResponseWriter, r *http.Request) {
	ctx, span := handlerSpan(r, "StartTournament")
	defer span.End()

	leagueID, err := pathID(r, "leagueID")
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	var req startTournamentRequest
	if err := decodeJSON(r, &req, true, true); err != nil {
		writeError(ctx, w, err)
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	nodes, err := h.bracketService.StartTournament(ctx, usecase.StartTournamentInput{
		LeagueID: leagueID,
		Players:  req.Players,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "start tournament failed", "league_id", leagueID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusCreated, leagueMatchesToWire(nodes))
}

func (h *Handler) AdvanceMatch(w http.ResponseWriter, r *http.Request) {
	ctx, span := handlerSpan(r, "AdvanceMatch")
	defer span.End()

	leagueID, err := pathID(r, "leagueID")
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	var req advanceMatchRequest
	if err := decodeJSON(r, &req, true, false); err != nil {
		writeError(ctx, w, err)
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	result, err := h.bracketService.AdvanceMatch(ctx, usecase.AdvanceMatchInput{
		LeagueID:      leagueID,
		LeagueMatchID: req.LeagueMatchID,
		WinnerID:      req.WinnerID,
		LinkedMatchID: req.LinkedMatchID,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "advance match failed",
			"league_id", leagueID,
			"league_match_id", req.LeagueMatchID,
			"winner_id", req.WinnerID,
			"error", err,
		)
		writeError(ctx, w, err)
		return
	}

	resp := advanceMatchResponse{Match: syncapi.LeagueMatchFrom(result.Match), Finished: result.Finished}
	if result.Next != nil {
		next := syncapi.LeagueMatchFrom(*result.Next)
		resp.Next = &next
	}
	writeSuccess(ctx, w, http.StatusOK, resp)
}

func (h *Handler) GetBracket(w http.ResponseWriter, r *http.Request) {
	ctx, span := handlerSpan(r, "GetBracket")
	defer span.End()

	leagueID, err := pathID(r, "leagueID")
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	nodes, err := h.bracketService.Bracket(ctx, leagueID)
	if err != nil {
		h.logger.WarnContext(ctx, "get bracket failed", "league_id", leagueID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, leagueMatchesToWire(nodes))
}

func leagueMatchesToWire(nodes []league.Match) []syncapi.LeagueMatch {
	out := make([]syncapi.LeagueMatch, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, syncapi.LeagueMatchFrom(n))
	}
	return out
}
