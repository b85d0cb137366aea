package logging

// Common structured log field keys to keep logs searchable/consistent.
const (
	FieldService      = "service"
	FieldVersion      = "version"
	FieldTournamentID = "tournament_id"
	FieldMatchID      = "match_id"
	FieldGameID       = "game_id"
	FieldPlayerID     = "player_id"
	FieldPlayerCount  = "player_count"
	FieldCount        = "count"
	FieldCommand      = "command"
	FieldConnID       = "conn_id"
	FieldRemoteAddr   = "remote_addr"
	FieldAddr         = "addr"
	FieldDurationMS   = "duration_ms"
)
