package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/akinalp/tepki/apps"
	"github.com/akinalp/tepki/models"
	"github.com/akinalp/tepki/pkg"
	"github.com/akinalp/tepki/pkg/i18n"
	"github.com/akinalp/tepki/pkg/logger"
	"github.com/akinalp/tepki/pkg/metrics"
	"github.com/akinalp/tepki/repository"
)

// ReactionService, mesaj reaction toggle iş mantığı.
//
// SetReaction, reaction anahtarını normalize eder, doğrular ve kullanıcının
// o anahtardaki üyeliğini açar ya da kapatır. shouldReact nil ise mevcut
// durumun tersi istenir; mevcut durumla aynıysa hiçbir şey yazılmaz ve
// ReactionUnchanged döner.
type ReactionService interface {
	SetReaction(ctx context.Context, userID, reaction, messageID string, shouldReact *bool) (models.ReactionOutcome, error)
}

// ReactionDeps, reactionService bağımlılıkları.
type ReactionDeps struct {
	Users       repository.UserRepository
	Messages    repository.MessageRepository
	Rooms       repository.RoomRepository
	Emoji       EmojiRegistry
	Permissions PermissionService
	Hooks       *ReactionHooks
	Apps        apps.Bus
	Notifier    ChangeNotifier
	Syncer      LastMessageSyncer
	Runner      *BackgroundRunner
	Metrics     *metrics.Metrics
}

// reactionService, ReactionDeps'i "embed" eder (alan adı olmadan gömülü struct).
// Go'da embedding kalıtım değil, kompozisyondur: gömülü struct'ın alanları
// dış struct'a "promote" edilir, s.ReactionDeps.Rooms yerine s.Rooms yazılır.
type reactionService struct {
	ReactionDeps
	log zerolog.Logger
}

// NewReactionService, constructor.
func NewReactionService(deps ReactionDeps) ReactionService {
	return &reactionService{
		ReactionDeps: deps,
		log:          logger.Component("reaction"),
	}
}

// SetReaction karar sırası:
//  1. anahtar normalize edilip emoji olarak doğrulanır
//  2. kullanıcı ve mesaj yüklenir
//  3. istenen durum mevcut durumla aynıysa işlem biter (no-op)
//  4. oda yüklenir ve erişim kontrol edilir
//  5. apply: mute ve read-only kontrolleri, mutasyon, yazma, yan etkiler
func (s *reactionService) SetReaction(ctx context.Context, userID, reaction, messageID string, shouldReact *bool) (models.ReactionOutcome, error) {
	key := NormalizeReaction(reaction)

	known, err := s.Emoji.Exists(ctx, key)
	if err != nil {
		return s.fail(err)
	}
	if !known {
		return s.fail(pkg.NewInvalidInput(pkg.ReasonUnknownEmoji))
	}

	user, err := s.Users.GetByID(ctx, userID)
	if err != nil {
		return s.fail(notFoundAs(err, pkg.ReasonInvalidUser))
	}

	message, err := s.Messages.GetByID(ctx, messageID)
	if err != nil {
		return s.fail(notFoundAs(err, pkg.ReasonInvalidMessage))
	}

	alreadyReacted := message.HasReacted(key, user.Username)
	want := !alreadyReacted
	if shouldReact != nil {
		want = *shouldReact
	}
	if want == alreadyReacted {
		s.Metrics.Reaction(string(models.ReactionUnchanged))
		return models.ReactionUnchanged, nil
	}

	room, err := s.Rooms.GetByID(ctx, message.RoomID)
	if err != nil {
		return s.fail(notFoundAs(err, pkg.ReasonInvalidRoom))
	}

	loc := i18n.NewLocalizer(user.Language)

	allowed, err := s.Permissions.CanAccessRoom(ctx, room, user)
	if err != nil {
		return s.fail(err)
	}
	if !allowed {
		return s.fail(pkg.NewNotAllowed(pkg.ReasonNotAuthorized, room.ID, loc.T("reaction.notAuthorized")))
	}

	return s.apply(ctx, user, room, message, key, alreadyReacted, loc)
}

// apply, moderasyon kontrollerinden sonra mutasyonu yapar ve kalıcılaştırır.
// alreadyReacted true ise kaldırma, false ise ekleme yapılır.
func (s *reactionService) apply(
	ctx context.Context,
	user *models.User,
	room *models.Room,
	message *models.Message,
	key string,
	alreadyReacted bool,
	loc *i18n.Localizer,
) (models.ReactionOutcome, error) {
	if room.IsMuted(user.Username) {
		return s.fail(pkg.NewNotAllowed(pkg.ReasonMuted, room.ID, loc.T("reaction.muted")))
	}

	if room.ReadOnly && !room.ReactWhenReadOnly {
		canPost, err := s.Permissions.HasPermission(ctx, user.ID, models.PermPostReadOnly, room.ID)
		if err != nil {
			return s.fail(err)
		}
		if !canPost && !room.IsUnmuted(user.Username) {
			return s.fail(pkg.NewNotAllowed(pkg.ReasonReadOnly, room.ID, loc.T("reaction.readOnly")))
		}
	}

	isLast := room.IsLastMessage(message.ID)

	var (
		outcome    models.ReactionOutcome
		oldMessage *models.Message
	)
	if alreadyReacted {
		// Go'da map ve slice referans tipidir; düz kopya (*old = *message) aynı
		// Reactions map'ini paylaşır. Remove hook'una mutasyon öncesi hali
		// vermek için derin kopya alınır.
		oldMessage = message.Clone()
		message.RemoveReaction(key, user.Username)
		outcome = models.ReactionRemoved
	} else {
		message.AddReaction(key, user.Username)
		outcome = models.ReactionAdded
	}

	if err := s.persist(ctx, room.ID, message, isLast); err != nil {
		return s.fail(err)
	}

	event := ReactionEvent{
		Message:     message,
		OldMessage:  oldMessage,
		User:        user,
		Reaction:    key,
		ShouldReact: !alreadyReacted,
	}
	if alreadyReacted {
		s.Hooks.fireRemoved(event)
	} else {
		s.Hooks.fireAdded(event)
	}

	payload := &apps.MessageReacted{Message: message, User: user, Reaction: key, IsReacted: !alreadyReacted}
	s.Runner.Go(metrics.KindAppsEvent, func(ctx context.Context) error {
		return s.Apps.Publish(ctx, apps.EventPostMessageReacted, payload)
	})

	s.Notifier.NotifyRoomChanged(room.ID)
	s.Notifier.NotifyMessageChanged(message.ID)

	s.Metrics.Reaction(string(outcome))
	s.log.Debug().
		Str("user_id", user.ID).
		Str("message_id", message.ID).
		Str("reaction", key).
		Str("outcome", string(outcome)).
		Msg("reaction toggled")

	return outcome, nil
}

// persist, önce canonical mesajı, sonra (son mesajsa) odanın kopyasını yazar.
// İkinci yazma başarısız olursa toggle yine başarılı sayılır ve kopya
// arka planda LastMessageSyncer ile yeniden türetilir.
func (s *reactionService) persist(ctx context.Context, roomID string, message *models.Message, isLast bool) error {
	var err error
	if message.Reactions == nil {
		err = s.Messages.UnsetReactions(ctx, message.ID)
	} else {
		err = s.Messages.SetReactions(ctx, message.ID, message.Reactions)
	}
	if err != nil {
		return fmt.Errorf("failed to persist reactions: %w", err)
	}

	if !isLast {
		return nil
	}

	if message.Reactions == nil {
		err = s.Rooms.UnsetReactionsInLastMessage(ctx, roomID)
	} else {
		err = s.Rooms.SetReactionsInLastMessage(ctx, roomID, message.Reactions)
	}
	if err != nil {
		s.log.Warn().Err(err).Str("room_id", roomID).Msg("last message cache write failed, scheduling sync")
		s.Runner.Go(metrics.KindLastMsgSync, func(ctx context.Context) error {
			return s.Syncer.Sync(ctx, roomID)
		})
	}
	return nil
}

// fail, reddi metrics'e yazar ve error'ı olduğu gibi döner.
func (s *reactionService) fail(err error) (models.ReactionOutcome, error) {
	s.Metrics.Rejected(pkg.ReasonOf(err))
	return "", err
}

// notFoundAs, pkg.ErrNotFound'u verilen reason ile InvalidInput'a çevirir.
func notFoundAs(err error, reason string) error {
	if errors.Is(err, pkg.ErrNotFound) {
		return pkg.NewInvalidInput(reason)
	}
	return err
}
