package command

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/AdamBeresnev/bracketd/internal/bracket"
	"github.com/AdamBeresnev/bracketd/internal/utils"
)

const separator = "|"

type Op string

const (
	OpCreateTournament Op = "create|tournament"
	OpCreatePlayer     Op = "create|player"
	OpDeleteTournament Op = "delete|tournament"
	OpDeletePlayer     Op = "delete|player"
	OpRenameTournament Op = "rename|tournament"
	OpUpdatePlayer     Op = "update|player"
	OpScore            Op = "score"
	OpAssign           Op = "assign"
	OpFetchAll         Op = "fetchall"
)

// Command is one parsed request line. Which fields are set depends on Op.
type Command struct {
	Op   Op
	ID   int
	Name string
	// Player count for tournaments, skill for players.
	Number   int
	Slot     bracket.Slot
	Delta    int
	PlayerID *int
}

// Verb is the leading word of the command, used as a metrics label.
func (c Command) Verb() string {
	verb, _, _ := strings.Cut(string(c.Op), separator)
	return verb
}

// Parse reads a single request line. A trailing "\r\n" or "\n" is ignored.
func Parse(line string) (Command, error) {
	line = strings.TrimRight(line, "\r\n")
	if strings.TrimSpace(line) == "" {
		return Command{}, invalid("empty command")
	}
	fields := strings.Split(line, separator)

	switch fields[0] {
	case "fetchall":
		if len(fields) != 1 {
			return Command{}, invalid("fetchall takes no arguments")
		}
		return Command{Op: OpFetchAll}, nil
	case "create", "delete", "rename", "update":
		return parseEntity(fields)
	case "score":
		return parseScore(fields)
	case "assign":
		return parseAssign(fields)
	default:
		return Command{}, invalid("unknown command %q", fields[0])
	}
}

func parseEntity(fields []string) (Command, error) {
	if len(fields) < 3 {
		return Command{}, invalid("%s needs a target and an id", fields[0])
	}
	op := Op(fields[0] + separator + fields[1])

	var want int
	switch op {
	case OpCreateTournament, OpCreatePlayer, OpUpdatePlayer:
		want = 5
	case OpRenameTournament:
		want = 4
	case OpDeleteTournament, OpDeletePlayer:
		want = 3
	default:
		return Command{}, invalid("unknown target %q for %s", fields[1], fields[0])
	}
	if len(fields) != want {
		return Command{}, invalid("%s expects %d fields, got %d", op, want, len(fields))
	}

	id, err := parseInt("id", fields[2])
	if err != nil {
		return Command{}, err
	}
	cmd := Command{Op: op, ID: id}
	if want >= 4 {
		cmd.Name = fields[3]
	}
	if want == 5 {
		if cmd.Number, err = parseInt("count", fields[4]); err != nil {
			return Command{}, err
		}
	}
	return cmd, nil
}

// score|<gameId>|<1|2>|<+|->
func parseScore(fields []string) (Command, error) {
	if len(fields) != 4 {
		return Command{}, invalid("score expects 4 fields, got %d", len(fields))
	}
	id, err := parseInt("game id", fields[1])
	if err != nil {
		return Command{}, err
	}
	slot, err := parseSlot(fields[2])
	if err != nil {
		return Command{}, err
	}

	var delta int
	switch fields[3] {
	case "+", "+1":
		delta = 1
	case "-", "-1":
		delta = -1
	default:
		return Command{}, invalid("score delta must be + or -, got %q", fields[3])
	}
	return Command{Op: OpScore, ID: id, Slot: slot, Delta: delta}, nil
}

// assign|<matchId>|<1|2>|<playerId|null>
func parseAssign(fields []string) (Command, error) {
	if len(fields) != 4 {
		return Command{}, invalid("assign expects 4 fields, got %d", len(fields))
	}
	id, err := parseInt("match id", fields[1])
	if err != nil {
		return Command{}, err
	}
	slot, err := parseSlot(fields[2])
	if err != nil {
		return Command{}, err
	}

	cmd := Command{Op: OpAssign, ID: id, Slot: slot}
	if !strings.EqualFold(fields[3], "null") {
		playerID, err := parseInt("player id", fields[3])
		if err != nil {
			return Command{}, err
		}
		cmd.PlayerID = utils.Ptr(playerID)
	}
	return cmd, nil
}

func parseSlot(s string) (bracket.Slot, error) {
	n, err := parseInt("slot", s)
	if err != nil {
		return 0, err
	}
	slot := bracket.Slot(n)
	if !slot.Valid() {
		return 0, invalid("slot must be 1 or 2, got %d", n)
	}
	return slot, nil
}

func parseInt(field, s string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, invalid("%s must be an integer, got %q", field, s)
	}
	return n, nil
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", bracket.ErrInvalidArgument, fmt.Sprintf(format, args...))
}
