package matchservice

import (
	"context"
	"log/slog"
	"slices"

	"github.com/Black-And-White-Club/lockout-bot/app/chat"
	matchdomain "github.com/Black-And-White-Club/lockout-bot/app/modules/match/domain"
	"github.com/Black-And-White-Club/lockout-bot/app/modules/registry"
)

// negotiation is a finalised roster still held by its reservation.
type negotiation struct {
	roster      []matchdomain.Member
	reservation *registry.Reservation
	excluded    []*registry.BusyError
}

func (n *negotiation) handles() []string {
	out := make([]string, len(n.roster))
	for i, mb := range n.roster {
		out[i] = mb.Handle
	}
	return out
}

// negotiate invites inviteeIDs on behalf of initiatorID and waits for their
// accept tokens. Accepted users that are busy elsewhere are excluded and
// reported; the rest are reserved until the match is created or the caller
// releases them.
func (s *MatchService) negotiate(
	ctx context.Context,
	kind matchdomain.Kind,
	channelID string,
	initiatorID string,
	inviteeIDs []string,
) (*negotiation, error) {
	if _, ok := s.registry.Participant(initiatorID); !ok {
		return nil, registry.ErrNotRegistered
	}

	invitees := dedupe(inviteeIDs)
	if slices.Contains(invitees, initiatorID) {
		return nil, ErrSelfInvite
	}
	var unregistered []string
	invitees = slices.DeleteFunc(invitees, func(id string) bool {
		if _, ok := s.registry.Participant(id); ok {
			return false
		}
		unregistered = append(unregistered, id)
		return true
	})
	if len(unregistered) > 0 {
		s.announce(ctx, unregisteredAnnouncement(channelID, unregistered))
	}
	if len(invitees) == 0 {
		return nil, ErrNoInvitees
	}

	accepted, err := s.collectAccepts(ctx, kind, channelID, initiatorID, invitees)
	if err != nil {
		return nil, err
	}
	if len(accepted) == 0 {
		s.metrics.RecordNegotiation(ctx, string(kind), "cancelled")
		return nil, ErrCancelled
	}

	res, busy := s.registry.Reserve(append([]string{initiatorID}, accepted...))
	for _, b := range busy {
		s.announce(ctx, busyAnnouncement(channelID, b))
	}

	users := res.Users()
	if len(users) < 2 {
		s.registry.Release(res)
		s.metrics.RecordNegotiation(ctx, string(kind), "insufficient")
		return nil, ErrInsufficientRoster
	}

	roster := make([]matchdomain.Member, 0, len(users))
	for _, id := range users {
		p, _ := s.registry.Participant(id)
		roster = append(roster, matchdomain.Member{UserID: id, Handle: p.Handle})
	}

	s.metrics.RecordNegotiation(ctx, string(kind), "accepted")
	s.logger.InfoContext(ctx, "Negotiation finished",
		slog.String("kind", string(kind)),
		slog.String("initiator_id", initiatorID),
		slog.Any("roster", users),
		slog.Int("excluded", len(busy)),
	)
	return &negotiation{roster: roster, reservation: res, excluded: busy}, nil
}

// collectAccepts announces the invitation and gathers accept tokens for
// initiatorID from invitees in channelID until all have accepted or the
// accept window closes. Every message is measured against the same deadline.
func (s *MatchService) collectAccepts(
	ctx context.Context,
	kind matchdomain.Kind,
	channelID string,
	initiatorID string,
	invitees []string,
) ([]string, error) {
	invited := make(map[string]bool, len(invitees))
	for _, id := range invitees {
		invited[id] = true
	}

	sub := s.hub.Subscribe(func(msg chat.Message) bool {
		if msg.ChannelID != channelID || !invited[msg.AuthorID] {
			return false
		}
		tok, ok := chat.ParseToken(s.engine.CommandPrefix, msg.Content)
		return ok && tok.Kind == chat.TokenAccept && tok.Target == initiatorID
	})
	defer sub.Unsubscribe()

	s.announce(ctx, invitationAnnouncement(kind, channelID, initiatorID, invitees, s.engine.CommandPrefix, s.engine.AcceptWindow))

	window, cancel := context.WithTimeout(ctx, s.engine.AcceptWindow)
	defer cancel()

	accepted := make([]string, 0, len(invitees))
	seen := make(map[string]bool, len(invitees))
	for len(accepted) < len(invitees) {
		select {
		case msg, ok := <-sub.C():
			if !ok {
				return accepted, nil
			}
			if seen[msg.AuthorID] {
				continue
			}
			seen[msg.AuthorID] = true
			accepted = append(accepted, msg.AuthorID)
			s.logger.DebugContext(ctx, "Invitation accepted",
				slog.String("initiator_id", initiatorID),
				slog.String("user_id", msg.AuthorID),
			)
		case <-window.Done():
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			return accepted, nil
		}
	}
	return accepted, nil
}

func dedupe(ids []string) []string {
	out := make([]string, 0, len(ids))
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
