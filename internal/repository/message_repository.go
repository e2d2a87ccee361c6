package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/digkill/TGUpdateStore/internal/database"
	"github.com/digkill/TGUpdateStore/internal/models"
)

// InsertMessage records a message once; later deliveries of the same
// (chat, id) change nothing. Every row the message references is written
// first: chat, sender, forward origin, via bot, joined or left members and
// the replied-to message, which is stored one level deep only.
func (s *Store) InsertMessage(ctx context.Context, msg *models.Message) error {
	if err := s.checkConnected(); err != nil {
		return err
	}
	if msg == nil || msg.Chat == nil || msg.MessageID == 0 {
		return fmt.Errorf("%w: message without chat or id", models.ErrValidation)
	}

	date := database.FromEpoch(msg.Date, s.now())
	chat := msg.Chat

	if msg.MigrateToChatID != 0 {
		// The message itself still belongs to the old chat id.
		if err := s.EnsureChat(ctx, chat, date); err != nil {
			return err
		}
		to := msg.MigrateToChatID
		if err := s.UpsertChat(ctx, chat, date, &to); err != nil {
			return err
		}
	} else if err := s.UpsertChat(ctx, chat, date, nil); err != nil {
		return err
	}

	if msg.From != nil {
		if err := s.UpsertUser(ctx, msg.From, date, chat); err != nil {
			return err
		}
	}
	if msg.ForwardFrom != nil {
		if err := s.UpsertUser(ctx, msg.ForwardFrom, date, nil); err != nil {
			return err
		}
	}
	if msg.ForwardFromChat != nil {
		if err := s.UpsertChat(ctx, msg.ForwardFromChat, date, nil); err != nil {
			return err
		}
	}
	if msg.ViaBot != nil {
		if err := s.UpsertUser(ctx, msg.ViaBot, date, nil); err != nil {
			return err
		}
	}

	var newMemberIDs []int64
	if len(msg.NewChatMembers) > 0 {
		newMemberIDs = make([]int64, 0, len(msg.NewChatMembers))
		for i := range msg.NewChatMembers {
			member := &msg.NewChatMembers[i]
			if err := s.UpsertUser(ctx, member, date, chat); err != nil {
				return err
			}
			newMemberIDs = append(newMemberIDs, member.ID)
		}
	} else if msg.LeftChatMember != nil {
		if err := s.UpsertUser(ctx, msg.LeftChatMember, date, chat); err != nil {
			return err
		}
	}

	var replyChat, replyID any
	if msg.ReplyToMessage != nil {
		reply := *msg.ReplyToMessage
		reply.ReplyToMessage = nil
		if reply.Chat == nil {
			reply.Chat = chat
		}
		if err := s.InsertMessage(ctx, &reply); err != nil {
			return err
		}
		replyChat, replyID = reply.Chat.ID, reply.MessageID
	}

	r, err := s.messageRow(msg, newMemberIDs)
	if err != nil {
		return err
	}
	r.set("reply_to_chat", replyChat)
	r.set("reply_to_message", replyID)

	query := s.dialect.InsertIgnore(s.tables.Message, r.cols)
	if _, err := s.db.ExecContext(ctx, query, r.args...); err != nil {
		return wrapStorage("insert message", err)
	}
	return nil
}

func (s *Store) messageRow(msg *models.Message, newMemberIDs []int64) (row, error) {
	entities, err := database.JSONArray(msg.Entities, nil)
	if err != nil {
		return row{}, err
	}
	captionEntities, err := database.JSONArray(msg.CaptionEntities, nil)
	if err != nil {
		return row{}, err
	}
	photo, err := database.JSONArray(msg.Photo, nil)
	if err != nil {
		return row{}, err
	}
	newChatPhoto, err := database.JSONArray(msg.NewChatPhoto, nil)
	if err != nil {
		return row{}, err
	}
	newMembers, err := database.JSONArray(newMemberIDs, nil)
	if err != nil {
		return row{}, err
	}

	var userID, forwardFrom, forwardFromChat, viaBot, leftMember any
	if msg.From != nil {
		userID = msg.From.ID
	}
	if msg.ForwardFrom != nil {
		forwardFrom = msg.ForwardFrom.ID
	}
	if msg.ForwardFromChat != nil {
		forwardFromChat = msg.ForwardFromChat.ID
	}
	if msg.ViaBot != nil {
		viaBot = msg.ViaBot.ID
	}
	if len(newMemberIDs) == 0 && msg.LeftChatMember != nil {
		leftMember = msg.LeftChatMember.ID
	}

	var r row
	r.set("bot_id", s.botID)
	r.set("chat_id", msg.Chat.ID)
	r.set("id", msg.MessageID)
	r.set("user_id", userID)
	r.set("date", database.EpochOrNull(msg.Date))
	r.set("forward_from", forwardFrom)
	r.set("forward_from_chat", forwardFromChat)
	r.set("forward_from_message_id", nullInt64(msg.ForwardFromMessageID))
	r.set("forward_signature", nullString(msg.ForwardSignature))
	r.set("forward_sender_name", nullString(msg.ForwardSenderName))
	r.set("forward_date", database.EpochOrNull(msg.ForwardDate))
	r.set("via_bot", viaBot)
	r.set("edit_date", database.EpochOrNull(msg.EditDate))
	r.set("media_group_id", nullString(msg.MediaGroupID))
	r.set("author_signature", nullString(msg.AuthorSignature))
	r.set("text", nullString(msg.Text))
	r.set("entities", entities)
	r.set("caption_entities", captionEntities)
	r.set("audio", database.JSONBlob(msg.Audio))
	r.set("document", database.JSONBlob(msg.Document))
	r.set("animation", database.JSONBlob(msg.Animation))
	r.set("game", database.JSONBlob(msg.Game))
	r.set("photo", photo)
	r.set("sticker", database.JSONBlob(msg.Sticker))
	r.set("video", database.JSONBlob(msg.Video))
	r.set("voice", database.JSONBlob(msg.Voice))
	r.set("video_note", database.JSONBlob(msg.VideoNote))
	r.set("caption", nullString(msg.Caption))
	r.set("contact", database.JSONBlob(msg.Contact))
	r.set("location", database.JSONBlob(msg.Location))
	r.set("venue", database.JSONBlob(msg.Venue))
	r.set("poll", database.JSONBlob(msg.Poll))
	r.set("dice", database.JSONBlob(msg.Dice))
	r.set("new_chat_members", newMembers)
	r.set("left_chat_member", leftMember)
	r.set("new_chat_title", nullString(msg.NewChatTitle))
	r.set("new_chat_photo", newChatPhoto)
	r.set("delete_chat_photo", msg.DeleteChatPhoto)
	r.set("group_chat_created", msg.GroupChatCreated)
	r.set("supergroup_chat_created", msg.SupergroupChatCreated)
	r.set("channel_chat_created", msg.ChannelChatCreated)
	r.set("migrate_to_chat_id", nullInt64(msg.MigrateToChatID))
	r.set("migrate_from_chat_id", nullInt64(msg.MigrateFromChatID))
	r.set("pinned_message", database.JSONBlob(msg.PinnedMessage))
	r.set("invoice", database.JSONBlob(msg.Invoice))
	r.set("successful_payment", database.JSONBlob(msg.SuccessfulPayment))
	r.set("connected_website", nullString(msg.ConnectedWebsite))
	r.set("passport_data", database.JSONBlob(msg.PassportData))
	r.set("reply_markup", database.JSONBlob(msg.ReplyMarkup))
	return r, nil
}

// MessageExists reports whether the message is already stored.
func (s *Store) MessageExists(ctx context.Context, chatID, messageID int64) (bool, error) {
	if err := s.checkConnected(); err != nil {
		return false, err
	}
	query := "SELECT 1 FROM " + database.Quote(s.tables.Message) +
		" WHERE `bot_id` = ? AND `chat_id` = ? AND `id` = ? LIMIT 1"
	var one int
	if err := s.db.QueryRowContext(ctx, query, s.botID, chatID, messageID).Scan(&one); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, wrapStorage("check message", err)
	}
	return true, nil
}
