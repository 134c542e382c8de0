// Package filters решает, с кем бот вообще разговаривает.
package filters

import (
	"github.com/mymmrac/telego"
	log "github.com/sirupsen/logrus"
)

// OwnerFilter пропускает сообщения из чата хозяина
// и из личных чатов разрешённых пользователей.
type OwnerFilter struct {
	ownerChatID int64
	allowed     map[int64]struct{}
}

func NewOwnerFilter(ownerChatID int64, allowedUserIDs []int64) *OwnerFilter {
	allowed := make(map[int64]struct{}, len(allowedUserIDs))
	for _, id := range allowedUserIDs {
		allowed[id] = struct{}{}
	}
	return &OwnerFilter{ownerChatID: ownerChatID, allowed: allowed}
}

func (f *OwnerFilter) CheckAccess(message *telego.Message) bool {
	if message == nil {
		log.WithField("component", "OwnerFilter").Warn("nil message")
		return false
	}
	if message.From == nil {
		log.WithFields(log.Fields{
			"component": "OwnerFilter",
			"chat_id":   message.Chat.ID,
			"chat_type": message.Chat.Type,
		}).Warn("nil message.From (service/channel message?)")
		return false
	}

	chatID := message.Chat.ID
	userID := message.From.ID

	logger := log.WithFields(log.Fields{
		"component": "OwnerFilter",
		"chat_id":   chatID,
		"chat_type": message.Chat.Type,
		"user_id":   userID,
	})

	// 1) Чат хозяина
	if f.ownerChatID != 0 && chatID == f.ownerChatID {
		logger.Debug("allow: owner chat")
		return true
	}

	// 2) Личка разрешённого пользователя
	if message.Chat.Type == telego.ChatTypePrivate {
		if _, ok := f.allowed[userID]; ok {
			logger.Debug("allow: private (allowed user)")
			return true
		}
		logger.Info("deny: private (unknown user)")
		return false
	}

	logger.Info("deny: not owner chat")
	return false
}
