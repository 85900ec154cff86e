package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/hassan-khan07/Chat-App/internal/apperr"
	"github.com/hassan-khan07/Chat-App/internal/models"
	"github.com/hassan-khan07/Chat-App/internal/repository"
	"github.com/hassan-khan07/Chat-App/internal/storage"
)

// Deliverer hands freshly persisted messages to the realtime layer.
type Deliverer interface {
	DeliverDirect(msg *models.DirectMessage)
	DeliverGroup(msg *models.GroupMessage)
}

// MessageService validates and persists incoming messages, then requests
// live delivery. The caller always gets the persisted record back
// synchronously; pushes only go to the other side.
type MessageService struct {
	direct  repository.DirectMessageRepository
	grpMsgs repository.GroupMessageRepository
	groups  repository.GroupRepository
	store   storage.ObjectStore
	deliver Deliverer
	log     *zap.SugaredLogger
}

func NewMessageService(
	direct repository.DirectMessageRepository,
	grpMsgs repository.GroupMessageRepository,
	groups repository.GroupRepository,
	store storage.ObjectStore,
	deliver Deliverer,
	log *zap.SugaredLogger,
) *MessageService {
	return &MessageService{
		direct:  direct,
		grpMsgs: grpMsgs,
		groups:  groups,
		store:   store,
		deliver: deliver,
		log:     log,
	}
}

// SendDirect persists a one-to-one message and pushes it to the receiver if
// they are online.
func (s *MessageService) SendDirect(ctx context.Context, senderID, receiverID, text string, files []FileUpload) (*models.DirectMessage, error) {
	text = strings.TrimSpace(text)
	images, err := s.uploadAll(ctx, "messages", files)
	if err != nil {
		return nil, err
	}
	if text == "" && len(images) == 0 {
		return nil, apperr.Validation("message must have either text or image")
	}

	msg := &models.DirectMessage{
		SenderID:   senderID,
		ReceiverID: receiverID,
		Text:       text,
		Images:     images,
	}
	persisted, err := s.direct.Insert(ctx, msg)
	if err != nil {
		return nil, err
	}
	s.deliver.DeliverDirect(persisted)
	return persisted, nil
}

// SendGroup persists a group message and pushes it to the group's room. The
// sender must be a member of the group.
func (s *MessageService) SendGroup(ctx context.Context, senderID, groupID, text string, files []FileUpload) (*models.GroupMessage, error) {
	group, err := s.groups.FindByID(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if _, ok := group.Member(senderID); !ok {
		return nil, apperr.Permission("only group members can send messages")
	}

	text = strings.TrimSpace(text)
	images, err := s.uploadAll(ctx, "group_messages", files)
	if err != nil {
		return nil, err
	}
	if text == "" && len(images) == 0 {
		return nil, apperr.Validation("message must have either text or image")
	}

	msg := &models.GroupMessage{
		GroupID:  groupID,
		SenderID: senderID,
		Text:     text,
		Images:   images,
	}
	persisted, err := s.grpMsgs.Insert(ctx, msg)
	if err != nil {
		return nil, err
	}
	s.deliver.DeliverGroup(persisted)
	return persisted, nil
}

// uploadAll uploads every attachment, preserving input order. Any failure
// aborts the whole send; no message is ever saved with a partial image set.
func (s *MessageService) uploadAll(ctx context.Context, folder string, files []FileUpload) ([]string, error) {
	if len(files) == 0 {
		return nil, nil
	}
	urls := make([]string, 0, len(files))
	for _, f := range files {
		img, err := s.store.Upload(ctx, folder, f.Filename, f.ContentType, f.Data)
		if err != nil {
			return nil, apperr.Storage("failed to upload attachment", err)
		}
		urls = append(urls, img.URL)
	}
	return urls, nil
}

// DirectHistory returns the full conversation between two users, oldest
// first.
func (s *MessageService) DirectHistory(ctx context.Context, userID, otherUserID string) ([]*models.DirectMessage, error) {
	return s.direct.History(ctx, userID, otherUserID)
}

// GroupHistory returns a page of a group's messages in chronological order.
// The requester must be a member.
func (s *MessageService) GroupHistory(ctx context.Context, requesterID, groupID string, page, limit int64) ([]*models.GroupMessage, error) {
	group, err := s.groups.FindByID(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if _, ok := group.Member(requesterID); !ok {
		return nil, apperr.Permission("only group members can read messages")
	}
	return s.grpMsgs.History(ctx, groupID, page, limit)
}
