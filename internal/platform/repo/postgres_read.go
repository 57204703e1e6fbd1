package repo

import (
	"context"
	"database/sql"

	"github.com/ffarena/tournament-platform/internal/platform/dto"
)

// ReadRepo concentra as projeções somente-leitura do lobby
// (torneios, salas e leaderboard); o ciclo de vida dessas tabelas
// é de responsabilidade do backend, nunca do cliente
type ReadRepo struct {
	DB *sql.DB
}

func (r *ReadRepo) ListTournaments(ctx context.Context) ([]dto.Tournament, error) {
	const q = `
		SELECT id, name, entry_fee_type, entry_fee, date_time, prize_pool
		FROM tournaments
		ORDER BY id;
	`
	rows, err := r.DB.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []dto.Tournament
	for rows.Next() {
		var t dto.Tournament
		if err := rows.Scan(&t.ID, &t.Name, &t.EntryFeeType, &t.EntryFee, &t.DateTime, &t.PrizePool); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (r *ReadRepo) ListRooms(ctx context.Context) ([]dto.Room, error) {
	const q = `
		SELECT name, room_type, entry_fee, prize_pool, total_slots, joined_slots, start_time_ms, join_status
		FROM rooms
		ORDER BY start_time_ms;
	`
	rows, err := r.DB.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []dto.Room
	for rows.Next() {
		var rm dto.Room
		if err := rows.Scan(&rm.Name, &rm.RoomType, &rm.EntryFee, &rm.PrizePool, &rm.TotalSlots, &rm.JoinedSlots, &rm.StartTime, &rm.JoinStatus); err != nil {
			return nil, err
		}
		out = append(out, rm)
	}
	return out, rows.Err()
}

func (r *ReadRepo) Leaderboard(ctx context.Context) ([]dto.LeaderboardEntry, error) {
	const q = `
		SELECT rank, player_name, team_name, kills, total_points
		FROM leaderboard
		ORDER BY total_points DESC;
	`
	rows, err := r.DB.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []dto.LeaderboardEntry
	for rows.Next() {
		var e dto.LeaderboardEntry
		if err := rows.Scan(&e.Rank, &e.PlayerName, &e.TeamName, &e.Kills, &e.TotalPoints); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
