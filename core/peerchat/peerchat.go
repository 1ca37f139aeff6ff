// Package peerchat implements the student study-group chats.
package peerchat

import (
	"context"
	"sort"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/trezcool/scola/core"
	"github.com/trezcool/scola/core/user"
)

var ErrGroupNotFound = errors.WithMessage(core.ErrNotFound, "study group")

var Groups = []Group{
	{
		ID:      "math-group",
		Name:    "Mathematics Study Group",
		Members: []string{"Alice Johnson", "Bob Smith", "Carol Davis", "David Wilson"},
	},
	{
		ID:      "science-group",
		Name:    "Science Study Group",
		Members: []string{"Alice Johnson", "Eve Brown", "Frank Miller", "Grace Lee"},
	},
	{
		ID:      "english-group",
		Name:    "English Literature Group",
		Members: []string{"Bob Smith", "Henry Taylor", "Ivy Chen", "Jack Anderson"},
	},
}

type (
	Group struct {
		ID      string   `json:"id"`
		Name    string   `json:"name"`
		Members []string `json:"members"`
	}

	Message struct {
		ID        string    `json:"id"`
		Group     string    `json:"group"`
		SenderID  string    `json:"sender_id"`
		Sender    string    `json:"sender"`
		Content   string    `json:"content"`
		Timestamp time.Time `json:"timestamp"`
	}

	NewMessage struct {
		Content string `json:"content" validate:"required,notblank,max=2000"`
	}

	Repository interface {
		QueryMessages(ctx context.Context, groupID string) ([]Message, error)
		CreateMessage(ctx context.Context, msg Message) (Message, error)
	}

	Service struct {
		repo     Repository
		validate *validator.Validate
	}
)

func GetGroup(id string) (Group, error) {
	for _, g := range Groups {
		if g.ID == id {
			return g, nil
		}
	}
	return Group{}, ErrGroupNotFound
}

func NewService(repo Repository, validate *validator.Validate) *Service {
	return &Service{repo: repo, validate: validate}
}

// Messages returns the messages of a group, oldest first.
func (svc *Service) Messages(ctx context.Context, groupID string) ([]Message, error) {
	if _, err := GetGroup(groupID); err != nil {
		return nil, err
	}
	msgs, err := svc.repo.QueryMessages(ctx, groupID)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(msgs, func(i, j int) bool { return msgs[i].Timestamp.Before(msgs[j].Timestamp) })
	return msgs, nil
}

func (svc *Service) Post(ctx context.Context, sender user.User, groupID string, nm NewMessage) (Message, error) {
	if _, err := GetGroup(groupID); err != nil {
		return Message{}, err
	}
	nm.Content = core.CleanString(nm.Content)
	if err := svc.validate.Struct(nm); err != nil {
		return Message{}, err
	}
	return svc.repo.CreateMessage(ctx, Message{
		Group:     groupID,
		SenderID:  sender.ID,
		Sender:    sender.Name,
		Content:   nm.Content,
		Timestamp: core.Now(),
	})
}
