package command

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/AdamBeresnev/bracketd/internal/bracket"
	"github.com/AdamBeresnev/bracketd/internal/logging"
	"github.com/AdamBeresnev/bracketd/internal/metrics"
	"github.com/AdamBeresnev/bracketd/internal/service"
)

const (
	ReplyFinished = "Finished"
	replyError    = "Error"
)

// Handler executes parsed commands against the services and renders the
// single-line reply.
type Handler struct {
	tournaments *service.TournamentService
	matches     *service.MatchService
	players     *service.PlayerService
	recorder    *metrics.Recorder
	logger      *slog.Logger
}

func NewHandler(
	tournaments *service.TournamentService,
	matches *service.MatchService,
	players *service.PlayerService,
	recorder *metrics.Recorder,
	logger *slog.Logger,
) *Handler {
	return &Handler{
		tournaments: tournaments,
		matches:     matches,
		players:     players,
		recorder:    recorder,
		logger:      logger,
	}
}

// Handle parses and runs one request line. The reply never contains a newline.
func (h *Handler) Handle(ctx context.Context, line string) string {
	start := time.Now()

	cmd, err := Parse(line)
	if err != nil {
		h.recorder.RecordCommand("invalid", string(bracket.Kind(err)), time.Since(start))
		return ErrorReply(err)
	}

	reply, err := h.dispatch(ctx, cmd)
	outcome := "ok"
	if err != nil {
		kind := bracket.Kind(err)
		outcome = string(kind)
		if kind == bracket.KindInternal || kind == bracket.KindStorageUnavailable {
			logging.Error(h.logger, "command failed", err, logging.FieldCommand, string(cmd.Op))
		}
		reply = ErrorReply(err)
	}
	h.recorder.RecordCommand(cmd.Verb(), outcome, time.Since(start))
	return reply
}

func (h *Handler) dispatch(ctx context.Context, cmd Command) (string, error) {
	switch cmd.Op {
	case OpCreateTournament:
		data, err := h.tournaments.CreateTournament(ctx, cmd.ID, cmd.Name, cmd.Number)
		if err != nil {
			return "", err
		}
		h.recorder.RecordTournamentCreated(len(data.Matches))
	case OpCreatePlayer:
		if _, err := h.players.CreatePlayer(ctx, cmd.ID, cmd.Name, cmd.Number); err != nil {
			return "", err
		}
	case OpDeleteTournament:
		if err := h.tournaments.DeleteTournament(ctx, cmd.ID); err != nil {
			return "", err
		}
	case OpDeletePlayer:
		if err := h.players.DeletePlayer(ctx, cmd.ID); err != nil {
			return "", err
		}
	case OpRenameTournament:
		if err := h.tournaments.RenameTournament(ctx, cmd.ID, cmd.Name); err != nil {
			return "", err
		}
	case OpUpdatePlayer:
		if _, err := h.players.UpdatePlayer(ctx, cmd.ID, cmd.Name, cmd.Number); err != nil {
			return "", err
		}
	case OpScore:
		if _, err := h.matches.AdjustScore(ctx, cmd.ID, cmd.Slot, cmd.Delta); err != nil {
			return "", err
		}
	case OpAssign:
		if err := h.matches.SetMatchPlayer(ctx, cmd.ID, cmd.Slot, cmd.PlayerID); err != nil {
			return "", err
		}
	case OpFetchAll:
		snap, err := h.tournaments.FetchAll(ctx)
		if err != nil {
			return "", err
		}
		body, err := json.Marshal(snap)
		if err != nil {
			return "", fmt.Errorf("failed to encode snapshot: %w", err)
		}
		return string(body), nil
	default:
		return "", invalid("unsupported command %q", cmd.Op)
	}
	return ReplyFinished, nil
}

// ErrorReply renders err as "Error|<kind>|<message>". Internal errors do not
// leak their message.
func ErrorReply(err error) string {
	kind := bracket.Kind(err)
	msg := "internal error"
	if kind != bracket.KindInternal {
		msg = strings.NewReplacer("\n", " ", "\r", " ").Replace(err.Error())
	}
	return strings.Join([]string{replyError, string(kind), msg}, separator)
}
