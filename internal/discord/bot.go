package discord

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"

	"github.com/username/workday-reminder-bot/internal/apperror"
	"github.com/username/workday-reminder-bot/internal/bot"
)

const (
	maxMessageLength      = 2000
	defaultCommandTimeout = 15 * time.Second
)

// Session is the part of *discordgo.Session the bot uses
type Session interface {
	AddHandler(handler interface{}) func()
	Open() error
	Close() error
	ChannelMessageSend(channelID string, content string, options ...discordgo.RequestOption) (*discordgo.Message, error)
	InteractionRespond(interaction *discordgo.Interaction, resp *discordgo.InteractionResponse, options ...discordgo.RequestOption) error
	InteractionResponseEdit(interaction *discordgo.Interaction, newresp *discordgo.WebhookEdit, options ...discordgo.RequestOption) (*discordgo.Message, error)
	ApplicationCommandBulkOverwrite(appID string, guildID string, commands []*discordgo.ApplicationCommand, options ...discordgo.RequestOption) ([]*discordgo.ApplicationCommand, error)
}

// Bot connects the command service to a Discord guild and delivers
// scheduled reminders.
type Bot struct {
	session        Session
	service        *bot.Service
	guildID        string
	logger         *zap.Logger
	commandTimeout time.Duration
	now            func() time.Time

	mu     sync.RWMutex
	userID string
	appID  string
}

// New opens no connection yet; call Run
func New(token, guildID string, service *bot.Service, logger *zap.Logger) (*Bot, error) {
	session, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, apperror.New(apperror.KindConfiguration, "discord.New", err)
	}
	session.Identify.Intents = discordgo.IntentsGuildMessages | discordgo.IntentMessageContent

	return NewWithSession(session, guildID, service, logger), nil
}

// NewWithSession creates a bot over an existing session and installs the
// event handlers.
func NewWithSession(session Session, guildID string, service *bot.Service, logger *zap.Logger) *Bot {
	b := &Bot{
		session:        session,
		service:        service,
		guildID:        guildID,
		logger:         logger,
		commandTimeout: defaultCommandTimeout,
		now:            time.Now,
	}

	session.AddHandler(b.onReady)
	session.AddHandler(b.onMessageCreate)
	session.AddHandler(b.onInteractionCreate)
	return b
}

// SetCommandTimeout bounds the work done for one slash command
func (b *Bot) SetCommandTimeout(d time.Duration) {
	if d > 0 {
		b.commandTimeout = d
	}
}

// Run connects to the gateway and blocks until ctx is cancelled
func (b *Bot) Run(ctx context.Context) error {
	if err := b.session.Open(); err != nil {
		return fmt.Errorf("failed to open discord session: %w", err)
	}
	b.logger.Info("Discord session opened", zap.String("guild_id", b.guildID))

	<-ctx.Done()
	return nil
}

// Close disconnects from the gateway
func (b *Bot) Close() error {
	if err := b.session.Close(); err != nil {
		return fmt.Errorf("failed to close discord session: %w", err)
	}
	b.logger.Info("Discord session closed")
	return nil
}

// SendMessage posts text to a channel
func (b *Bot) SendMessage(ctx context.Context, channelID, text string) error {
	_, err := b.session.ChannelMessageSend(channelID, truncate(text), discordgo.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("send to channel %s: %w", channelID, err)
	}
	return nil
}

func (b *Bot) onReady(_ *discordgo.Session, r *discordgo.Ready) {
	b.handleReady(r)
}

func (b *Bot) onMessageCreate(_ *discordgo.Session, m *discordgo.MessageCreate) {
	b.handleMessage(m.Message)
}

func (b *Bot) onInteractionCreate(_ *discordgo.Session, i *discordgo.InteractionCreate) {
	b.handleInteraction(i.Interaction)
}

func (b *Bot) handleReady(r *discordgo.Ready) {
	b.mu.Lock()
	if r.User != nil {
		b.userID = r.User.ID
	}
	if r.Application != nil {
		b.appID = r.Application.ID
	}
	appID := b.appID
	b.mu.Unlock()

	b.logger.Info("Discord ready",
		zap.String("user_id", b.botUserID()),
		zap.Int("guilds", len(r.Guilds)))

	if appID == "" || b.guildID == "" {
		b.logger.Warn("Skipping slash command registration",
			zap.String("app_id", appID),
			zap.String("guild_id", b.guildID))
		return
	}

	registered, err := b.session.ApplicationCommandBulkOverwrite(appID, b.guildID, Commands())
	if err != nil {
		b.logger.Error("Failed to register slash commands", zap.Error(err))
		return
	}
	b.logger.Info("Slash commands registered", zap.Int("count", len(registered)))
}

func (b *Bot) handleMessage(m *discordgo.Message) {
	if m == nil || m.Author == nil || m.Author.Bot || m.Author.ID == b.botUserID() {
		return
	}

	reply, ok := b.service.Ping(m.Content)
	if !ok {
		return
	}

	if _, err := b.session.ChannelMessageSend(m.ChannelID, reply); err != nil {
		b.logger.Error("Failed to reply",
			zap.String("channel_id", m.ChannelID),
			zap.Error(apperror.New(apperror.KindSendFailure, "reply", err)))
	}
}

func (b *Bot) handleInteraction(i *discordgo.Interaction) {
	if i == nil || i.Type != discordgo.InteractionApplicationCommand {
		return
	}

	data := i.ApplicationCommandData()
	userID := interactionUserID(i)
	logger := b.logger.With(
		zap.String("command", data.Name),
		zap.String("discord_id", userID))

	err := b.session.InteractionRespond(i, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{Flags: discordgo.MessageFlagsEphemeral},
	})
	if err != nil {
		logger.Error("Failed to acknowledge interaction", zap.Error(err))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), b.commandTimeout)
	defer cancel()

	reply := b.dispatch(ctx, data, userID)
	content := truncate(reply)

	if _, err := b.session.InteractionResponseEdit(i, &discordgo.WebhookEdit{Content: &content}); err != nil {
		logger.Error("Failed to send interaction reply",
			zap.Error(apperror.New(apperror.KindSendFailure, "interaction", err)))
		return
	}
	logger.Debug("Interaction handled")
}

func (b *Bot) dispatch(ctx context.Context, data discordgo.ApplicationCommandInteractionData, userID string) string {
	options := optionMap(data.Options)

	switch data.Name {
	case CommandMeetings:
		return b.service.MeetingsOn(ctx, userID, options[OptionDate], b.now())
	case CommandRegister:
		return b.service.Register(ctx, userID, options[OptionEmployeeID])
	case CommandWorkday:
		return b.service.Workday(ctx, b.now())
	default:
		b.logger.Warn("Unknown command", zap.String("command", data.Name))
		return apperror.UserMessage(apperror.Newf(apperror.KindInvalidArgument, "dispatch", "unknown command %s", data.Name))
	}
}

func (b *Bot) botUserID() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.userID
}

func interactionUserID(i *discordgo.Interaction) string {
	if i.Member != nil && i.Member.User != nil {
		return i.Member.User.ID
	}
	if i.User != nil {
		return i.User.ID
	}
	return ""
}

func optionMap(options []*discordgo.ApplicationCommandInteractionDataOption) map[string]string {
	m := make(map[string]string, len(options))
	for _, opt := range options {
		if opt.Type == discordgo.ApplicationCommandOptionString {
			m[opt.Name] = opt.StringValue()
		}
	}
	return m
}

func truncate(text string) string {
	runes := []rune(text)
	if len(runes) <= maxMessageLength {
		return text
	}
	return string(runes[:maxMessageLength-1]) + "…"
}
