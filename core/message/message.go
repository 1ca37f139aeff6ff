// Package message implements direct messaging between users.
package message

import (
	"context"
	"sort"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/trezcool/scola/core"
	"github.com/trezcool/scola/core/user"
)

var ErrSelfMessage = errors.New("you cannot send a message to yourself")

type (
	Message struct {
		ID            string    `json:"id"`
		SenderID      string    `json:"sender_id"`
		SenderName    string    `json:"sender_name"`
		RecipientID   string    `json:"recipient_id"`
		RecipientName string    `json:"recipient_name"`
		Content       string    `json:"content"`
		Timestamp     time.Time `json:"timestamp"`
		Read          bool      `json:"read"`
	}

	NewMessage struct {
		RecipientID string `json:"recipient_id" validate:"required"`
		Content     string `json:"content" validate:"required,notblank,max=5000"`
	}

	Conversation struct {
		PartnerID   string  `json:"partner_id"`
		PartnerName string  `json:"partner_name"`
		LastMessage Message `json:"last_message"`
		Unread      int     `json:"unread"`
	}

	Repository interface {
		// QueryMessages returns every message sent or received by userID.
		QueryMessages(ctx context.Context, userID string) ([]Message, error)
		CreateMessage(ctx context.Context, msg Message) (Message, error)
		// MarkRead flags the messages from senderID to recipientID as read and returns how many changed.
		MarkRead(ctx context.Context, recipientID, senderID string) (int, error)
	}

	UserGetter interface {
		GetByID(ctx context.Context, id string) (user.User, error)
	}

	Service struct {
		repo     Repository
		users    UserGetter
		validate *validator.Validate
	}
)

func NewService(repo Repository, users UserGetter, validate *validator.Validate) *Service {
	return &Service{repo: repo, users: users, validate: validate}
}

func (svc *Service) Send(ctx context.Context, sender user.User, nm NewMessage) (Message, error) {
	nm.Content = core.CleanString(nm.Content)
	if err := svc.validate.Struct(nm); err != nil {
		return Message{}, err
	}
	if nm.RecipientID == sender.ID {
		return Message{}, core.NewValidationError(ErrSelfMessage)
	}
	recipient, err := svc.users.GetByID(ctx, nm.RecipientID)
	if err != nil {
		return Message{}, err
	}
	return svc.repo.CreateMessage(ctx, Message{
		SenderID:      sender.ID,
		SenderName:    sender.Name,
		RecipientID:   recipient.ID,
		RecipientName: recipient.Name,
		Content:       nm.Content,
		Timestamp:     core.Now(),
	})
}

// Conversations returns one entry per partner of usr, most recently active first.
func (svc *Service) Conversations(ctx context.Context, usr user.User) ([]Conversation, error) {
	msgs, err := svc.repo.QueryMessages(ctx, usr.ID)
	if err != nil {
		return nil, err
	}

	byPartner := make(map[string]*Conversation)
	for _, m := range msgs {
		partnerID, partnerName := m.RecipientID, m.RecipientName
		if m.RecipientID == usr.ID {
			partnerID, partnerName = m.SenderID, m.SenderName
		}
		conv, ok := byPartner[partnerID]
		if !ok {
			conv = &Conversation{PartnerID: partnerID, PartnerName: partnerName, LastMessage: m}
			byPartner[partnerID] = conv
		}
		if !m.Timestamp.Before(conv.LastMessage.Timestamp) {
			conv.LastMessage = m
		}
		if m.RecipientID == usr.ID && !m.Read {
			conv.Unread++
		}
	}

	convs := make([]Conversation, 0, len(byPartner))
	for _, c := range byPartner {
		convs = append(convs, *c)
	}
	sort.Slice(convs, func(i, j int) bool {
		ti, tj := convs[i].LastMessage.Timestamp, convs[j].LastMessage.Timestamp
		if !ti.Equal(tj) {
			return ti.After(tj)
		}
		return convs[i].PartnerID < convs[j].PartnerID
	})
	return convs, nil
}

// Thread returns the messages exchanged between usr & partnerID, oldest first.
func (svc *Service) Thread(ctx context.Context, usr user.User, partnerID string) ([]Message, error) {
	msgs, err := svc.repo.QueryMessages(ctx, usr.ID)
	if err != nil {
		return nil, err
	}
	thread := make([]Message, 0)
	for _, m := range msgs {
		if (m.SenderID == usr.ID && m.RecipientID == partnerID) || (m.SenderID == partnerID && m.RecipientID == usr.ID) {
			thread = append(thread, m)
		}
	}
	sort.SliceStable(thread, func(i, j int) bool { return thread[i].Timestamp.Before(thread[j].Timestamp) })
	return thread, nil
}

// MarkRead marks every message received by usr from partnerID as read.
func (svc *Service) MarkRead(ctx context.Context, usr user.User, partnerID string) (int, error) {
	return svc.repo.MarkRead(ctx, usr.ID, partnerID)
}

// UnreadCount returns the number of unread messages received by usr.
func (svc *Service) UnreadCount(ctx context.Context, usr user.User) (int, error) {
	msgs, err := svc.repo.QueryMessages(ctx, usr.ID)
	if err != nil {
		return 0, err
	}
	count := 0
	for _, m := range msgs {
		if m.RecipientID == usr.ID && !m.Read {
			count++
		}
	}
	return count, nil
}
