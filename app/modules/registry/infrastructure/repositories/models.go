package registrydb

import (
	"time"

	matchdomain "github.com/Black-And-White-Club/lockout-bot/app/modules/match/domain"
	problemdomain "github.com/Black-And-White-Club/lockout-bot/app/modules/problem/domain"
	"github.com/Black-And-White-Club/lockout-bot/app/modules/registry"
	"github.com/uptrace/bun"
)

// ParticipantRow is one registered user.
type ParticipantRow struct {
	bun.BaseModel  `bun:"table:participants,alias:p"`
	UserID         string                 `bun:"user_id,pk,type:varchar(32)"`
	Handle         string                 `bun:"handle,notnull,type:varchar(64)"`
	ChallengeScore int                    `bun:"challenge_score,notnull,default:0"`
	Challenge      *matchdomain.Challenge `bun:"challenge,type:jsonb"`
	MatchID        *int                   `bun:"match_id"`
	UpdatedAt      time.Time              `bun:"updated_at,nullzero,notnull,default:current_timestamp"`
}

// MatchRow is one active match. Roster, problems and the score vectors are
// stored as jsonb so their order survives.
type MatchRow struct {
	bun.BaseModel  `bun:"table:matches,alias:m"`
	ID             int                     `bun:"id,pk"`
	Kind           string                  `bun:"kind,notnull,type:varchar(16)"`
	State          string                  `bun:"state,notnull,type:varchar(16)"`
	ChannelID      string                  `bun:"channel_id,notnull,type:varchar(32)"`
	Roster         []matchdomain.Member    `bun:"roster,type:jsonb"`
	Problems       []problemdomain.Problem `bun:"problems,type:jsonb"`
	Scores         []int                   `bun:"scores,type:jsonb"`
	PointValues    []int                   `bun:"point_values,type:jsonb"`
	CreatedAt      time.Time               `bun:"created_at,notnull"`
	DurationNanos  int64                   `bun:"duration_ns,notnull"`
	AnnouncementID string                  `bun:"announcement_id,nullzero"`
	WinnerID       string                  `bun:"winner_id,nullzero"`
	UpdatedAt      time.Time               `bun:"updated_at,nullzero,notnull,default:current_timestamp"`
}

func participantRow(p matchdomain.Participant, now time.Time) *ParticipantRow {
	row := &ParticipantRow{
		UserID:         p.UserID,
		Handle:         p.Handle,
		ChallengeScore: p.ChallengeScore,
		UpdatedAt:      now,
	}
	if p.Challenge != nil {
		c := *p.Challenge
		row.Challenge = &c
	}
	if p.MatchID != nil {
		id := int(*p.MatchID)
		row.MatchID = &id
	}
	return row
}

func (row *ParticipantRow) toDomain() matchdomain.Participant {
	p := matchdomain.Participant{
		UserID:         row.UserID,
		Handle:         row.Handle,
		ChallengeScore: row.ChallengeScore,
	}
	if row.Challenge != nil {
		c := *row.Challenge
		p.Challenge = &c
	}
	if row.MatchID != nil {
		id := matchdomain.MatchID(*row.MatchID)
		p.MatchID = &id
	}
	return p
}

func matchRow(m matchdomain.Match, now time.Time) *MatchRow {
	c := m.Clone()
	return &MatchRow{
		ID:             int(c.ID),
		Kind:           string(c.Kind),
		State:          string(c.State),
		ChannelID:      c.ChannelID,
		Roster:         c.Roster,
		Problems:       c.Problems,
		Scores:         c.Scores,
		PointValues:    c.PointValues,
		CreatedAt:      c.CreatedAt,
		DurationNanos:  int64(c.Duration),
		AnnouncementID: c.AnnouncementID,
		WinnerID:       c.WinnerID,
		UpdatedAt:      now,
	}
}

func (row *MatchRow) toDomain() matchdomain.Match {
	m := matchdomain.Match{
		ID:             matchdomain.MatchID(row.ID),
		Kind:           matchdomain.Kind(row.Kind),
		State:          matchdomain.State(row.State),
		ChannelID:      row.ChannelID,
		Roster:         row.Roster,
		Problems:       row.Problems,
		Scores:         row.Scores,
		PointValues:    row.PointValues,
		CreatedAt:      row.CreatedAt,
		Duration:       time.Duration(row.DurationNanos),
		AnnouncementID: row.AnnouncementID,
		WinnerID:       row.WinnerID,
	}
	return m.Clone()
}

func toRows(st registry.State, now time.Time) ([]*ParticipantRow, []*MatchRow) {
	participants := make([]*ParticipantRow, len(st.Participants))
	for i, p := range st.Participants {
		participants[i] = participantRow(p, now)
	}
	matches := make([]*MatchRow, len(st.Matches))
	for i, m := range st.Matches {
		matches[i] = matchRow(m, now)
	}
	return participants, matches
}

func fromRows(participants []*ParticipantRow, matches []*MatchRow) registry.State {
	st := registry.State{
		Participants: make([]matchdomain.Participant, len(participants)),
		Matches:      make([]matchdomain.Match, len(matches)),
	}
	for i, row := range participants {
		st.Participants[i] = row.toDomain()
	}
	for i, row := range matches {
		st.Matches[i] = row.toDomain()
	}
	return st
}
