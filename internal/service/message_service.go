package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/collabflow/collabflow-api/internal/dto"
	"github.com/collabflow/collabflow-api/internal/mailer"
	"github.com/collabflow/collabflow-api/internal/mention"
	"github.com/collabflow/collabflow-api/internal/models"
	"github.com/collabflow/collabflow-api/internal/observability"
	"github.com/collabflow/collabflow-api/internal/repository"
)

const (
	messageRedisTTL       = 30 * time.Minute
	messageSendBufferSize = 32
)

// ErrNotTeamMember indicates the sender does not belong to the target team.
var ErrNotTeamMember = errors.New("sender is not a member of the team")

// MessageConnectionOptions wraps metadata extracted during the HTTP upgrade.
type MessageConnectionOptions struct {
	UserID        string
	TeamID        string
	CorrelationID string
	Context       context.Context
}

// MessageService manages team chat: websocket rooms keyed by team id,
// message persistence, mention fan-out and history.
type MessageService interface {
	ServeConnection(conn *websocket.Conn, opts MessageConnectionOptions)
	Send(ctx context.Context, authorID string, payload dto.MessageCreateRequest) (dto.MessageResponse, error)
	History(ctx context.Context, query dto.MessageHistoryQuery) ([]dto.MessageResponse, error)
	Start(ctx context.Context)
}

type messageService struct {
	messages    repository.MessageRepository
	teams       repository.TeamRepository
	users       repository.UserRepository
	notifier    Notifier
	mail        mailer.Mailer
	redis       *redis.Client
	redisStream string
	redisCache  string
	nats        *nats.Conn
	natsSubject string
	validator   *validator.Validate
	logger      zerolog.Logger
	tracer      trace.Tracer
	sanitizer   *bluemonday.Policy
	hub         *messageHub
	baseURL     string
	workers     int
	nodeID      string
}

// messageHub keeps track of active websocket clients per team room.
type messageHub struct {
	mu    sync.RWMutex
	rooms map[string]map[*messageClient]struct{}
	log   zerolog.Logger
}

type messageClient struct {
	conn    *websocket.Conn
	send    chan dto.MessageResponse
	options MessageConnectionOptions
	service *messageService
	closed  chan struct{}
	once    sync.Once
	baseCtx context.Context
}

type messageEvent struct {
	Source  string              `json:"source"`
	Message dto.MessageResponse `json:"message"`
	SentAt  time.Time           `json:"sent_at"`
}

// NewMessageService creates a team chat service instance. redisClient and
// natsConn may be nil.
func NewMessageService(
	messages repository.MessageRepository,
	teams repository.TeamRepository,
	users repository.UserRepository,
	notifier Notifier,
	mail mailer.Mailer,
	redisClient *redis.Client,
	channelBase string,
	natsConn *nats.Conn,
	validate *validator.Validate,
	logger zerolog.Logger,
	baseURL string,
	workers int,
) MessageService {
	sanitizer := bluemonday.UGCPolicy()
	sanitizer.AllowElements("br")

	if workers <= 0 {
		workers = 4
	}

	stream := ""
	cachePrefix := ""
	subject := ""
	if channelBase != "" {
		stream = channelBase + ":chat"
		cachePrefix = channelBase + ":chat:last"
		subject = strings.ReplaceAll(channelBase, ":", ".") + ".chat"
	}

	return &messageService{
		messages:    messages,
		teams:       teams,
		users:       users,
		notifier:    notifier,
		mail:        mail,
		redis:       redisClient,
		redisStream: stream,
		redisCache:  cachePrefix,
		nats:        natsConn,
		natsSubject: subject,
		validator:   validate,
		logger:      logger.With().Str("component", "message_service").Logger(),
		tracer:      otel.Tracer("github.com/collabflow/collabflow-api/internal/service/message"),
		sanitizer:   sanitizer,
		hub: &messageHub{
			rooms: make(map[string]map[*messageClient]struct{}),
			log:   logger.With().Str("component", "message_hub").Logger(),
		},
		baseURL: strings.TrimRight(baseURL, "/"),
		workers: workers,
		nodeID:  uuid.NewString(),
	}
}

func (s *messageService) Start(ctx context.Context) {
	if s.redis != nil && s.redisStream != "" {
		go s.consumeRedis(ctx)
	}
	if s.nats != nil && s.natsSubject != "" {
		go s.consumeNATS(ctx)
	}
}

func (s *messageService) ServeConnection(conn *websocket.Conn, opts MessageConnectionOptions) {
	baseCtx := opts.Context
	if baseCtx == nil {
		baseCtx = context.Background()
	}

	client := &messageClient{
		conn:    conn,
		send:    make(chan dto.MessageResponse, messageSendBufferSize),
		options: opts,
		service: s,
		closed:  make(chan struct{}),
		baseCtx: baseCtx,
	}

	s.hub.register(client)
	observability.ChatClientsActive().Inc()

	if last := s.fetchLastMessage(baseCtx, opts.TeamID); last != nil {
		select {
		case client.send <- *last:
		default:
			s.logger.Debug().Str("team_id", opts.TeamID).Msg("dropping cached message due to slow consumer")
		}
	}

	go client.writer()
	client.reader()
}

func (s *messageService) Send(ctx context.Context, authorID string, payload dto.MessageCreateRequest) (dto.MessageResponse, error) {
	payload.TeamID = strings.TrimSpace(payload.TeamID)

	if err := s.validator.Struct(payload); err != nil {
		return dto.MessageResponse{}, err
	}

	if _, err := s.teams.FindMember(ctx, payload.TeamID, authorID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.MessageResponse{}, ErrNotTeamMember
		}
		return dto.MessageResponse{}, err
	}

	clean := strings.TrimSpace(s.sanitizer.Sanitize(payload.Content))
	if clean == "" {
		return dto.MessageResponse{}, fmt.Errorf("message content empty after sanitization")
	}

	attrs := []attribute.KeyValue{
		attribute.String("chat.team_id", payload.TeamID),
		attribute.String("chat.author_id", authorID),
	}

	spanCtx, span := s.tracer.Start(ctx, "chat.send", trace.WithAttributes(attrs...))
	defer span.End()

	roster, err := s.roster(spanCtx, payload.TeamID)
	if err != nil {
		span.RecordError(err)
		return dto.MessageResponse{}, err
	}

	mentioned := mention.ResolveIDs(clean, roster)

	model := models.Message{
		TeamID:   payload.TeamID,
		AuthorID: authorID,
		Content:  clean,
		Mentions: datatypes.NewJSONSlice(mentioned),
	}

	if err := s.messages.Create(spanCtx, &model); err != nil {
		span.RecordError(err)
		return dto.MessageResponse{}, err
	}

	response := dto.NewMessageResponse(model)
	response.ContentHTML = mention.Format(clean, roster)

	s.cacheLastMessage(spanCtx, response)
	s.hub.broadcast(response.TeamID, response)
	if err := s.mirror(spanCtx, response); err != nil {
		s.logger.Warn().Err(err).Msg("failed to mirror chat event")
	}

	s.dispatchMentions(spanCtx, model, roster)

	return response, nil
}

func (s *messageService) History(ctx context.Context, query dto.MessageHistoryQuery) ([]dto.MessageResponse, error) {
	if err := s.validator.Struct(query); err != nil {
		return nil, err
	}

	before := time.Time{}
	if query.Before != nil {
		before = *query.Before
	}

	messages, err := s.messages.ListByTeam(ctx, query.TeamID, before, query.Limit)
	if err != nil {
		return nil, err
	}

	return dto.NewMessageResponseSlice(messages), nil
}

func (s *messageService) roster(ctx context.Context, teamID string) ([]mention.RosterEntry, error) {
	members, err := s.teams.ListMembers(ctx, teamID)
	if err != nil {
		return nil, err
	}

	roster := make([]mention.RosterEntry, 0, len(members))
	for _, member := range members {
		name := ""
		if member.User.Name != nil {
			name = *member.User.Name
		}
		roster = append(roster, mention.RosterEntry{
			ID:    member.UserID,
			Name:  name,
			Email: member.User.Email,
		})
	}
	return roster, nil
}

// dispatchMentions notifies mentioned members other than the author, with a
// best-effort email per recipient.
func (s *messageService) dispatchMentions(ctx context.Context, message models.Message, roster []mention.RosterEntry) {
	if len(message.Mentions) == 0 {
		return
	}

	author, err := s.users.FindByID(ctx, message.AuthorID)
	if err != nil {
		s.logger.Warn().Err(err).Str("author_id", message.AuthorID).Msg("message author lookup failed, skipping fan-out")
		return
	}
	authorName := author.DisplayName()

	where := "team chat"
	if team, err := s.teams.FindByID(ctx, message.TeamID); err == nil {
		where = team.Name
	}
	link := s.baseURL + "/teams/" + message.TeamID + "/chat"

	byID := make(map[string]mention.RosterEntry, len(roster))
	for _, entry := range roster {
		byID[entry.ID] = entry
	}

	recipients := make([]string, 0, len(message.Mentions))
	for _, userID := range message.Mentions {
		if userID == message.AuthorID {
			continue
		}
		recipients = append(recipients, userID)
	}

	fanOut(ctx, s.workers, recipients, func(ctx context.Context, userID string) {
		s.notifier.NotifyMention(ctx, userID, authorName, where, &link)
		entry, ok := byID[userID]
		if !ok || entry.Email == "" {
			return
		}
		if err := s.mail.SendMentionEmail(ctx, entry.Email, authorName, where, link); err != nil {
			s.logger.Warn().Err(err).Str("user_id", userID).Msg("mention email delivery failed")
		}
	})
}

func (s *messageService) cacheLastMessage(ctx context.Context, message dto.MessageResponse) {
	if s.redis == nil || s.redisCache == "" {
		return
	}

	payload, err := json.Marshal(message)
	if err != nil {
		s.logger.Warn().Err(err).Msg("failed to marshal chat message for cache")
		return
	}

	key := fmt.Sprintf("%s:%s", s.redisCache, message.TeamID)
	if err := s.redis.Set(ctx, key, payload, messageRedisTTL).Err(); err != nil {
		s.logger.Warn().Err(err).Msg("failed to cache chat message")
	}
}

func (s *messageService) fetchLastMessage(ctx context.Context, teamID string) *dto.MessageResponse {
	if s.redis == nil || s.redisCache == "" {
		return nil
	}

	key := fmt.Sprintf("%s:%s", s.redisCache, teamID)
	result, err := s.redis.Get(ctx, key).Result()
	if err != nil {
		return nil
	}

	var message dto.MessageResponse
	if err := json.Unmarshal([]byte(result), &message); err != nil {
		s.logger.Warn().Err(err).Msg("failed to unmarshal cached chat message")
		return nil
	}

	return &message
}

func (s *messageService) mirror(ctx context.Context, message dto.MessageResponse) error {
	event := messageEvent{
		Source:  s.nodeID,
		Message: message,
		SentAt:  time.Now().UTC(),
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}

	if s.redis != nil && s.redisStream != "" {
		if err := s.redis.Publish(ctx, s.redisStream, payload).Err(); err != nil {
			return err
		}
	}

	if s.nats != nil && s.natsSubject != "" {
		if err := s.nats.Publish(s.natsSubject, payload); err != nil {
			return err
		}
	}

	return nil
}

func (s *messageService) consumeRedis(ctx context.Context) {
	pubsub := s.redis.Subscribe(ctx, s.redisStream)
	defer func() { _ = pubsub.Close() }()

	for {
		msg, err := pubsub.ReceiveMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return
			}
			s.logger.Error().Err(err).Msg("chat redis subscription closed")
			return
		}
		s.handleEvent([]byte(msg.Payload))
	}
}

func (s *messageService) consumeNATS(ctx context.Context) {
	sub, err := s.nats.QueueSubscribe(s.natsSubject, "collabflow-chat", func(msg *nats.Msg) {
		s.handleEvent(msg.Data)
	})
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to subscribe to nats chat subject")
		return
	}

	go func() {
		<-ctx.Done()
		if err := sub.Drain(); err != nil {
			s.logger.Warn().Err(err).Msg("failed to drain chat nats subscription")
		}
	}()
}

func (s *messageService) handleEvent(data []byte) {
	var event messageEvent
	if err := json.Unmarshal(data, &event); err != nil {
		s.logger.Warn().Err(err).Msg("invalid chat event")
		return
	}

	if event.Source == s.nodeID {
		return
	}

	s.hub.broadcast(event.Message.TeamID, event.Message)
}

func (h *messageHub) register(client *messageClient) {
	h.mu.Lock()
	defer h.mu.Unlock()

	room := client.options.TeamID
	if _, exists := h.rooms[room]; !exists {
		h.rooms[room] = make(map[*messageClient]struct{})
	}
	h.rooms[room][client] = struct{}{}
	h.log.Debug().Str("team_id", room).Str("user_id", client.options.UserID).Msg("chat client connected")
}

func (h *messageHub) unregister(client *messageClient) {
	h.mu.Lock()
	defer h.mu.Unlock()

	room := client.options.TeamID
	if clients, ok := h.rooms[room]; ok {
		delete(clients, client)
		if len(clients) == 0 {
			delete(h.rooms, room)
		}
	}
	h.log.Debug().Str("team_id", room).Str("user_id", client.options.UserID).Msg("chat client disconnected")
}

func (h *messageHub) broadcast(teamID string, message dto.MessageResponse) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for client := range h.rooms[teamID] {
		select {
		case client.send <- message:
		default:
			h.log.Warn().Str("team_id", teamID).Str("user_id", client.options.UserID).Msg("dropping chat message for slow client")
		}
	}
}

func (c *messageClient) reader() {
	defer c.close()

	for {
		var payload dto.MessageCreateRequest
		if err := c.conn.ReadJSON(&payload); err != nil {
			c.service.logger.Debug().Err(err).Msg("chat read loop ended")
			return
		}
		if payload.TeamID == "" {
			payload.TeamID = c.options.TeamID
		}

		if _, err := c.service.Send(c.baseCtx, c.options.UserID, payload); err != nil {
			c.service.logger.Warn().Err(err).Msg("failed to process chat message")
		}
	}
}

func (c *messageClient) writer() {
	defer c.close()

	for {
		select {
		case message, ok := <-c.send:
			if !ok {
				return
			}
			if err := c.conn.WriteJSON(message); err != nil {
				c.service.logger.Debug().Err(err).Msg("chat write loop terminated")
				return
			}
		case <-time.After(30 * time.Second):
			if err := c.conn.WriteMessage(websocket.PingMessage, []byte("keepalive")); err != nil {
				c.service.logger.Debug().Err(err).Msg("chat ping failed")
				return
			}
		case <-c.closed:
			return
		}
	}
}

func (c *messageClient) close() {
	c.once.Do(func() {
		close(c.closed)
		c.service.hub.unregister(c)
		observability.ChatClientsActive().Dec()
		_ = c.conn.Close()
	})
}
