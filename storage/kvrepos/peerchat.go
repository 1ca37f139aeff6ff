package kvrepos

import (
	"context"

	"github.com/trezcool/scola/core"
	"github.com/trezcool/scola/core/peerchat"
)

type peerChatRepository struct {
	store core.KVStore
}

var _ peerchat.Repository = (*peerChatRepository)(nil)

func NewPeerChatRepository(store core.KVStore) peerchat.Repository {
	return &peerChatRepository{store: store}
}

func (repo *peerChatRepository) group(id string) collection[peerchat.Message] {
	return collection[peerchat.Message]{store: repo.store, key: PrefixChat + id}
}

func (repo *peerChatRepository) QueryMessages(ctx context.Context, groupID string) ([]peerchat.Message, error) {
	return repo.group(groupID).load(ctx)
}

func (repo *peerChatRepository) CreateMessage(ctx context.Context, msg peerchat.Message) (peerchat.Message, error) {
	msg.ID = core.NewID()
	err := repo.group(msg.Group).update(ctx, func(msgs []peerchat.Message) ([]peerchat.Message, error) {
		return append(msgs, msg), nil
	})
	return msg, err
}
