package matchservice

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/Black-And-White-Club/lockout-bot/app/chat"
	"github.com/Black-And-White-Club/lockout-bot/app/eventbus"
	matchevents "github.com/Black-And-White-Club/lockout-bot/app/events/match"
	matchdomain "github.com/Black-And-White-Club/lockout-bot/app/modules/match/domain"
	problemservice "github.com/Black-And-White-Club/lockout-bot/app/modules/problem/application"
	problemdomain "github.com/Black-And-White-Club/lockout-bot/app/modules/problem/domain"
	"github.com/Black-And-White-Club/lockout-bot/app/modules/registry"
	"github.com/Black-And-White-Club/lockout-bot/app/shared/handlerwrapper"
)

var medals = []string{"🥇", "🥈", "🥉"}

// announce posts ann and returns its id, or "" when posting failed.
func (s *MatchService) announce(ctx context.Context, ann chat.Announcement) chat.AnnouncementID {
	id, err := s.announcer.Post(ctx, ann)
	if err != nil {
		s.logger.WarnContext(ctx, "Failed to post announcement",
			slog.String("channel_id", ann.ChannelID),
			slog.Any("error", err),
		)
		return ""
	}
	return id
}

func (s *MatchService) edit(ctx context.Context, id chat.AnnouncementID, ann chat.Announcement) {
	if err := s.announcer.Edit(ctx, id, ann); err != nil {
		s.logger.WarnContext(ctx, "Failed to edit announcement",
			slog.String("announcement_id", string(id)),
			slog.Any("error", err),
		)
	}
}

func (s *MatchService) publishStarted(ctx context.Context, m matchdomain.Match) {
	payload := &matchevents.MatchStartedPayloadV1{
		MatchID: int(m.ID),
		Kind:    string(m.Kind),
		Roster:  m.UserIDs(),
	}
	for _, p := range m.Problems {
		payload.Problems = append(payload.Problems, matchevents.ProblemRefV1{
			ContestID: p.ContestID,
			Index:     p.Index,
			Name:      p.Name,
			Rating:    p.RatingValue(),
		})
	}
	s.publish(ctx, matchevents.MatchStartedV1, payload)
}

func (s *MatchService) publishFinished(ctx context.Context, m matchdomain.Match) {
	payload := &matchevents.MatchFinishedPayloadV1{
		MatchID: int(m.ID),
		Kind:    string(m.Kind),
		State:   string(m.State),
	}
	if m.WinnerID != "" {
		winner := m.WinnerID
		payload.WinnerID = &winner
	}
	s.publish(ctx, matchevents.MatchFinishedV1, payload)
}

func (s *MatchService) publish(ctx context.Context, topic string, payload any) {
	if s.publisher == nil {
		return
	}
	msg, err := eventbus.NewMessage(topic, payload, handlerwrapper.CorrelationID(ctx))
	if err == nil {
		msg.SetContext(ctx)
		err = s.publisher.Publish(topic, msg)
	}
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to publish match event",
			slog.String("topic", topic),
			slog.Any("error", err),
		)
	}
}

// FailureText is the user-facing explanation of a match operation error.
func FailureText(err error) string {
	var busy *registry.BusyError
	switch {
	case errors.Is(err, registry.ErrNotRegistered):
		return "Set your handle first."
	case errors.Is(err, ErrSelfInvite):
		return "You cannot invite yourself."
	case errors.Is(err, ErrNoInvitees):
		return "Invite some registered users."
	case errors.Is(err, ErrCancelled):
		return "Nobody accepted, the match is cancelled."
	case errors.Is(err, ErrInsufficientRoster):
		return "No one can join you right now."
	case errors.Is(err, ErrNoActiveMatch):
		return "You are not in a match."
	case errors.Is(err, ErrTokenNotAccepted):
		return "That command does not apply to your match."
	case errors.Is(err, ErrInvalidDuration):
		return "That duration is out of range."
	case errors.Is(err, problemservice.ErrInvalidProblemCount):
		return "That number of problems is out of range."
	case errors.Is(err, problemdomain.ErrNoCandidates), errors.Is(err, problemdomain.ErrNoCommonProblem):
		return "No unsolved problem fits everyone at that rating."
	case errors.Is(err, problemdomain.ErrJudgeUnavailable):
		return "Codeforces is not responding, try again later."
	case errors.As(err, &busy):
		return busyText(busy)
	case errors.Is(err, ErrShuttingDown):
		return "The bot is restarting, try again in a minute."
	default:
		return "Something went wrong, try again later."
	}
}

func failureAnnouncement(channelID, userID string, err error) chat.Announcement {
	return chat.ErrorAnnouncement(channelID, userID, FailureText(err))
}

func busyText(b *registry.BusyError) string {
	if b.MatchID == nil {
		return "is joining another match"
	}
	return fmt.Sprintf("is in match %s for another `%s`", *b.MatchID, FormatDuration(b.Remaining))
}

func busyAnnouncement(channelID string, b *registry.BusyError) chat.Announcement {
	return chat.Announcement{
		ChannelID:   channelID,
		Content:     chat.Mention(b.UserID),
		Mentions:    []string{b.UserID},
		Description: fmt.Sprintf("%s %s and was left out.", chat.Mention(b.UserID), busyText(b)),
		Color:       chat.ColorError,
	}
}

func unregisteredAnnouncement(channelID string, userIDs []string) chat.Announcement {
	mentions := make([]string, len(userIDs))
	for i, id := range userIDs {
		mentions[i] = chat.Mention(id)
	}
	text := "has not set a handle and was left out."
	if len(userIDs) > 1 {
		text = "have not set handles and were left out."
	}
	return chat.Announcement{
		ChannelID:   channelID,
		Content:     strings.Join(mentions, " "),
		Mentions:    userIDs,
		Description: strings.Join(mentions, ", ") + " " + text,
		Color:       chat.ColorError,
	}
}

func invitationAnnouncement(kind matchdomain.Kind, channelID, initiatorID string, invitees []string, prefix string, window time.Duration) chat.Announcement {
	mentions := make([]string, len(invitees))
	for i, id := range invitees {
		mentions[i] = chat.Mention(id)
	}
	return chat.Announcement{
		ChannelID: channelID,
		Content:   strings.Join(mentions, " "),
		Mentions:  invitees,
		Title:     kindTitle(kind) + " invitation",
		Description: fmt.Sprintf("%s invited you to a %s. Reply `%saccept %s` within %d seconds to join.",
			chat.Mention(initiatorID), strings.ToLower(kindTitle(kind)), prefix, chat.Mention(initiatorID), int(window.Seconds())),
		Color: chat.ColorInvite,
	}
}

func startAnnouncement(m matchdomain.Match, url func(problemdomain.Problem) string, prefix string) chat.Announcement {
	ann := matchAnnouncement(m.ChannelID, m, url)
	ann.Content = mentionAll(m)
	ann.Mentions = m.UserIDs()
	ann.Fields = append(ann.Fields, chat.Field{Name: "Duration", Value: "`" + FormatDuration(m.Duration) + "`", Inline: true})
	if m.Kind == matchdomain.KindDuel {
		ann.Footer = fmt.Sprintf("Type %smatch finish once you solve it, or %smatch giveup to concede.", prefix, prefix)
	} else {
		ann.Footer = fmt.Sprintf("Type %smatch update to claim solved problems, or %smatch giveup to leave.", prefix, prefix)
	}
	return ann
}

func statusAnnouncement(channelID string, m matchdomain.Match, url func(problemdomain.Problem) string, now time.Time) chat.Announcement {
	ann := matchAnnouncement(channelID, m, url)
	ann.Fields = append(ann.Fields, chat.Field{Name: "Time left", Value: "`" + FormatDuration(m.Remaining(now)) + "`", Inline: true})
	return ann
}

func standingsAnnouncement(channelID string, m matchdomain.Match, url func(problemdomain.Problem) string, now time.Time) chat.Announcement {
	ann := statusAnnouncement(channelID, m, url, now)
	ann.Title += " standings"
	return ann
}

func outcomeAnnouncement(m matchdomain.Match, url func(problemdomain.Problem) string) chat.Announcement {
	ann := matchAnnouncement(m.ChannelID, m, url)
	ann.Content = mentionAll(m)
	ann.Mentions = m.UserIDs()
	ann.Color = chat.ColorFinished

	switch m.State {
	case matchdomain.StateWon:
		ann.Description = fmt.Sprintf("%s won the %s!", chat.Mention(m.WinnerID), strings.ToLower(kindTitle(m.Kind)))
	case matchdomain.StateDrawn:
		ann.Description = "No one wins."
	default:
		ann.Description = "The match was abandoned."
	}
	return ann
}

// matchAnnouncement renders the problems of m and, for lockouts, the standings.
func matchAnnouncement(channelID string, m matchdomain.Match, url func(problemdomain.Problem) string) chat.Announcement {
	ann := chat.Announcement{
		ChannelID:   channelID,
		Title:       fmt.Sprintf("%s %s", kindTitle(m.Kind), m.ID),
		Description: versus(m),
		Color:       chat.ColorActive,
	}

	if m.Kind == matchdomain.KindDuel {
		p := m.Problems[0]
		ann.URL = url(p)
		ann.Fields = []chat.Field{
			{Name: "Problem", Value: fmt.Sprintf("[%s. %s](%s)", p.Key(), p.Name, url(p))},
			{Name: "Rating", Value: fmt.Sprintf("%d", p.RatingValue()), Inline: true},
		}
		return ann
	}

	ann.Fields = []chat.Field{
		{Name: "Problems", Value: problemLines(m, url)},
		{Name: "Standings", Value: standingLines(m)},
	}
	return ann
}

func problemLines(m matchdomain.Match, url func(problemdomain.Problem) string) string {
	lines := make([]string, len(m.Problems))
	for i, p := range m.Problems {
		if m.Locked(i) {
			lines[i] = fmt.Sprintf("[%s. %s](%s) %d", p.Key(), p.Name, url(p), m.PointValues[i])
		} else {
			lines[i] = fmt.Sprintf("~~%s. %s~~ Locked", p.Key(), p.Name)
		}
	}
	return strings.Join(lines, "\n")
}

func standingLines(m matchdomain.Match) string {
	ranking := m.Ranking()
	if len(ranking) == 0 {
		return "Nobody left."
	}
	lines := make([]string, len(ranking))
	for i, st := range ranking {
		place := fmt.Sprintf("%d.", st.Rank)
		if st.Rank <= len(medals) {
			place = medals[st.Rank-1]
		}
		lines[i] = fmt.Sprintf("%s %s (%s) %d", place, chat.Mention(st.Member.UserID), st.Member.Handle, st.Score)
	}
	return strings.Join(lines, "\n")
}

func mentionAll(m matchdomain.Match) string {
	mentions := make([]string, len(m.Roster))
	for i, mb := range m.Roster {
		mentions[i] = chat.Mention(mb.UserID)
	}
	return strings.Join(mentions, " ")
}

func versus(m matchdomain.Match) string {
	mentions := make([]string, len(m.Roster))
	for i, mb := range m.Roster {
		mentions[i] = chat.Mention(mb.UserID)
	}
	return strings.Join(mentions, " vs ")
}

func kindTitle(k matchdomain.Kind) string {
	if k == matchdomain.KindLockout {
		return "Lockout"
	}
	return "Duel"
}

// FormatDuration renders d as "01h 02m 03s".
func FormatDuration(d time.Duration) string {
	d = d.Round(time.Second)
	h := int(d / time.Hour)
	m := int(d % time.Hour / time.Minute)
	sec := int(d % time.Minute / time.Second)
	return fmt.Sprintf("%02dh %02dm %02ds", h, m, sec)
}
