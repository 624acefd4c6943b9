package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Bekarys04/CollabTask_Manager/internal/apperrors"
	"github.com/Bekarys04/CollabTask_Manager/internal/models"
	"github.com/Bekarys04/CollabTask_Manager/pkg/logger"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CollaborationService handles the friend-request lifecycle: a request
// goes absent -> pending -> accepted and stops there. There is no reject,
// cancel or unfriend operation.
type CollaborationService struct {
	collabRepo CollaborationRepository
	userRepo   UserRepository
}

// NewCollaborationService creates a new CollaborationService.
func NewCollaborationService(collabRepo CollaborationRepository, userRepo UserRepository) *CollaborationService {
	return &CollaborationService{
		collabRepo: collabRepo,
		userRepo:   userRepo,
	}
}

// SendRequest creates a new pending request from sender to receiver.
// Self-requests are invalid; a live request between the pair, in either
// direction, is a conflict.
func (s *CollaborationService) SendRequest(ctx context.Context, senderID, receiverID primitive.ObjectID) (*models.CollaborationRequest, error) {
	if senderID == receiverID {
		return nil, fmt.Errorf("%w: you cannot send a request to yourself", apperrors.ErrInvalidRequest)
	}

	if _, err := s.userRepo.GetUserByID(ctx, receiverID); err != nil {
		return nil, err
	}

	request := &models.CollaborationRequest{
		SenderID:   senderID,
		ReceiverID: receiverID,
		Status:     models.RequestPending,
		CreatedAt:  time.Now(),
	}

	created, err := s.collabRepo.CreateRequest(ctx, request)
	if err != nil {
		logger.Log.WithError(err).WithFields(map[string]interface{}{
			"sender_id":   senderID.Hex(),
			"receiver_id": receiverID.Hex(),
		}).Warn("Failed to create collaboration request")
		return nil, err
	}

	logger.Log.WithField("request_id", created.ID.Hex()).Info("Collaboration request sent")
	return created, nil
}

// AcceptRequest transitions a pending request to accepted. Only the
// receiver may accept. Accepting is not idempotent: an already-accepted
// request is a conflict, an unknown id is not found.
func (s *CollaborationService) AcceptRequest(ctx context.Context, requestID, actorID primitive.ObjectID) (*models.CollaborationRequest, error) {
	request, err := s.collabRepo.GetRequestByID(ctx, requestID)
	if err != nil {
		return nil, err
	}

	if request.ReceiverID != actorID {
		return nil, fmt.Errorf("%w: only the receiver can accept a request", apperrors.ErrForbidden)
	}

	accepted, err := s.collabRepo.AcceptPending(ctx, requestID)
	if err != nil {
		// The request exists but no pending document matched, so it was
		// already processed.
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("%w: request already processed", apperrors.ErrConflict)
		}
		return nil, err
	}

	logger.Log.WithField("request_id", requestID.Hex()).Info("Collaboration request accepted")
	return accepted, nil
}

// GetRequests returns every request, pending or accepted, involving the
// user, with both parties' usernames populated.
func (s *CollaborationService) GetRequests(ctx context.Context, userID primitive.ObjectID) ([]models.CollaborationRequestView, error) {
	requests, err := s.collabRepo.GetRequestsByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get requests: %v", err)
	}
	return s.populateUsernames(ctx, requests)
}

// GetFriends returns the accepted requests involving the user. The caller
// derives the counterpart by comparing sender and receiver ids against its
// own; OtherParty on the record does exactly that.
func (s *CollaborationService) GetFriends(ctx context.Context, userID primitive.ObjectID) ([]models.CollaborationRequestView, error) {
	requests, err := s.collabRepo.GetAcceptedByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get friends: %v", err)
	}
	return s.populateUsernames(ctx, requests)
}

// AreCollaborators reports whether an accepted request exists between the
// unordered pair. Task assignment is gated on this, checked fresh on every
// call.
func (s *CollaborationService) AreCollaborators(ctx context.Context, a, b primitive.ObjectID) (bool, error) {
	_, err := s.collabRepo.GetAcceptedByPair(ctx, a, b)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (s *CollaborationService) populateUsernames(ctx context.Context, requests []models.CollaborationRequest) ([]models.CollaborationRequestView, error) {
	idSet := make(map[primitive.ObjectID]struct{})
	for _, req := range requests {
		idSet[req.SenderID] = struct{}{}
		idSet[req.ReceiverID] = struct{}{}
	}

	ids := make([]primitive.ObjectID, 0, len(idSet))
	for id := range idSet {
		ids = append(ids, id)
	}

	usernames := make(map[primitive.ObjectID]string, len(ids))
	if len(ids) > 0 {
		users, err := s.userRepo.GetUsersByIDs(ctx, ids)
		if err != nil {
			return nil, fmt.Errorf("failed to populate usernames: %v", err)
		}
		for _, user := range users {
			usernames[user.ID] = user.Username
		}
	}

	views := make([]models.CollaborationRequestView, 0, len(requests))
	for _, req := range requests {
		views = append(views, models.CollaborationRequestView{
			CollaborationRequest: req,
			SenderUsername:       usernames[req.SenderID],
			ReceiverUsername:     usernames[req.ReceiverID],
		})
	}
	return views, nil
}
