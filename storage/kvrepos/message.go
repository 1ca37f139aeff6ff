package kvrepos

import (
	"context"

	"github.com/trezcool/scola/core"
	"github.com/trezcool/scola/core/message"
)

type messageRepository struct {
	messages collection[message.Message]
}

var _ message.Repository = (*messageRepository)(nil)

func NewMessageRepository(store core.KVStore) message.Repository {
	return &messageRepository{messages: collection[message.Message]{store: store, key: KeyMessages}}
}

func (repo *messageRepository) QueryMessages(ctx context.Context, userID string) ([]message.Message, error) {
	msgs, err := repo.messages.load(ctx)
	if err != nil {
		return nil, err
	}
	filtered := make([]message.Message, 0)
	for _, m := range msgs {
		if m.SenderID == userID || m.RecipientID == userID {
			filtered = append(filtered, m)
		}
	}
	return filtered, nil
}

func (repo *messageRepository) CreateMessage(ctx context.Context, msg message.Message) (message.Message, error) {
	msg.ID = core.NewID()
	err := repo.messages.update(ctx, func(msgs []message.Message) ([]message.Message, error) {
		return append(msgs, msg), nil
	})
	return msg, err
}

func (repo *messageRepository) MarkRead(ctx context.Context, recipientID, senderID string) (int, error) {
	count := 0
	err := repo.messages.update(ctx, func(msgs []message.Message) ([]message.Message, error) {
		for i, m := range msgs {
			if m.RecipientID == recipientID && m.SenderID == senderID && !m.Read {
				msgs[i].Read = true
				count++
			}
		}
		return msgs, nil
	})
	return count, err
}
