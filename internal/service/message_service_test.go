package service

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/collabflow/collabflow-api/internal/dto"
	"github.com/collabflow/collabflow-api/internal/models"
	"github.com/collabflow/collabflow-api/internal/repository"
)

type stubMessageRepo struct {
	created []models.Message
}

func (s *stubMessageRepo) Create(ctx context.Context, message *models.Message) error {
	message.ID = "msg1"
	message.CreatedAt = time.Now()
	s.created = append(s.created, *message)
	return nil
}

func (s *stubMessageRepo) ListByTeam(ctx context.Context, teamID string, before time.Time, limit int) ([]models.Message, error) {
	return s.created, nil
}

var _ repository.MessageRepository = (*stubMessageRepo)(nil)

func newTestMessageService(messages *stubMessageRepo, teams *stubTeamRepo, notifier *stubNotifier, mail *stubMailer) MessageService {
	carol := "Carol"
	users := &stubUserRepo{users: map[string]models.User{
		"u2": {ID: "u2", Email: "bob@example.com"},
		"u3": {ID: "u3", Name: &carol, Email: "carol@example.com"},
	}}
	return NewMessageService(messages, teams, users, notifier, mail,
		nil, "", nil, testValidator(), zerolog.Nop(), "http://localhost:3000", 4)
}

func TestMessageServiceSendRejectsNonMembers(t *testing.T) {
	teams := &stubTeamRepo{members: rosterMembers()}
	svc := newTestMessageService(&stubMessageRepo{}, teams, &stubNotifier{}, &stubMailer{})

	_, err := svc.Send(context.Background(), "stranger", dto.MessageCreateRequest{
		TeamID:  "t1",
		Content: "hello",
	})
	require.ErrorIs(t, err, ErrNotTeamMember)
}

func TestMessageServiceSendResolvesMentionsAndNotifies(t *testing.T) {
	messages := &stubMessageRepo{}
	teams := &stubTeamRepo{
		team:    models.Team{ID: "t1", Name: "Core Team"},
		members: rosterMembers(),
	}
	notifier := &stubNotifier{}
	mail := &stubMailer{}
	svc := newTestMessageService(messages, teams, notifier, mail)

	response, err := svc.Send(context.Background(), "u3", dto.MessageCreateRequest{
		TeamID:  "t1",
		Content: "hey @bob can you review this?",
	})
	require.NoError(t, err)
	require.Equal(t, "msg1", response.ID)
	require.Equal(t, []string{"u2"}, response.Mentions)
	require.Contains(t, response.ContentHTML, `data-user-id="u2"`)

	require.Len(t, messages.created, 1)
	require.Equal(t, "u3", messages.created[0].AuthorID)

	mentions := notifier.byKind("mention")
	require.Len(t, mentions, 1)
	require.Equal(t, "u2", mentions[0].userID)
	require.Equal(t, "Carol", mentions[0].actor)
	require.Equal(t, "Core Team", mentions[0].where)

	emails := mail.byKind("mention")
	require.Len(t, emails, 1)
	require.Equal(t, "bob@example.com", emails[0].to)
}

func TestMessageServiceSendStripsMarkup(t *testing.T) {
	messages := &stubMessageRepo{}
	teams := &stubTeamRepo{
		team:    models.Team{ID: "t1", Name: "Core Team"},
		members: rosterMembers(),
	}
	svc := newTestMessageService(messages, teams, &stubNotifier{}, &stubMailer{})

	response, err := svc.Send(context.Background(), "u3", dto.MessageCreateRequest{
		TeamID:  "t1",
		Content: `<script>alert("x")</script>ship it`,
	})
	require.NoError(t, err)
	require.Equal(t, "ship it", response.Content)
	require.NotContains(t, response.Content, "<script>")
}

func TestMessageServiceSendSuppressesSelfMention(t *testing.T) {
	messages := &stubMessageRepo{}
	teams := &stubTeamRepo{
		team:    models.Team{ID: "t1", Name: "Core Team"},
		members: rosterMembers(),
	}
	notifier := &stubNotifier{}
	svc := newTestMessageService(messages, teams, notifier, &stubMailer{})

	response, err := svc.Send(context.Background(), "u3", dto.MessageCreateRequest{
		TeamID:  "t1",
		Content: "note to @carol: follow up tomorrow",
	})
	require.NoError(t, err)
	require.Equal(t, []string{"u3"}, response.Mentions)
	require.Empty(t, notifier.byKind("mention"))
}

func TestMessageServiceHistoryRequiresTeam(t *testing.T) {
	svc := newTestMessageService(&stubMessageRepo{}, &stubTeamRepo{}, &stubNotifier{}, &stubMailer{})

	_, err := svc.History(context.Background(), dto.MessageHistoryQuery{})
	require.Error(t, err)
}
