package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Bekarys04/CollabTask_Manager/internal/apperrors"
	"github.com/Bekarys04/CollabTask_Manager/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// CollaborationRepository handles database operations for collaboration
// requests.
type CollaborationRepository struct {
	collection *mongo.Collection
}

func NewCollaborationRepository(db *mongo.Database) *CollaborationRepository {
	return &CollaborationRepository{
		collection: db.Collection("collaboration_requests"),
	}
}

// CreateRequest inserts a new pending request. The unique partial index on
// pair_key rejects a second live request for the same unordered pair, so
// concurrent duplicate sends cannot both land.
func (r *CollaborationRepository) CreateRequest(ctx context.Context, req *models.CollaborationRequest) (*models.CollaborationRequest, error) {
	req.CreatedAt = time.Now()
	req.Status = models.RequestPending
	req.PairKey = models.PairKey(req.SenderID, req.ReceiverID)

	result, err := r.collection.InsertOne(ctx, req)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, fmt.Errorf("%w: request already exists", apperrors.ErrConflict)
		}
		return nil, fmt.Errorf("failed to create collaboration request: %v", err)
	}

	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return nil, fmt.Errorf("failed to cast inserted ID")
	}
	req.ID = insertedID

	return req, nil
}

// GetRequestByID fetches a request by its ID.
func (r *CollaborationRepository) GetRequestByID(ctx context.Context, id primitive.ObjectID) (*models.CollaborationRequest, error) {
	var request models.CollaborationRequest
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&request)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%w: request %s", apperrors.ErrNotFound, id.Hex())
		}
		return nil, fmt.Errorf("failed to find collaboration request: %v", err)
	}
	return &request, nil
}

// AcceptPending transitions a request from pending to accepted in a single
// guarded update. It returns ErrNotFound when no pending request with the
// id exists; the caller distinguishes "absent" from "already processed".
func (r *CollaborationRepository) AcceptPending(ctx context.Context, id primitive.ObjectID) (*models.CollaborationRequest, error) {
	var request models.CollaborationRequest
	err := r.collection.FindOneAndUpdate(
		ctx,
		bson.M{"_id": id, "status": models.RequestPending},
		bson.M{"$set": bson.M{"status": models.RequestAccepted}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&request)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%w: pending request %s", apperrors.ErrNotFound, id.Hex())
		}
		return nil, fmt.Errorf("failed to accept collaboration request: %v", err)
	}
	return &request, nil
}

// GetRequestsByUser returns every request, pending or accepted, in which
// the user is sender or receiver.
func (r *CollaborationRepository) GetRequestsByUser(ctx context.Context, userID primitive.ObjectID) ([]models.CollaborationRequest, error) {
	filter := bson.M{
		"$or": []bson.M{
			{"sender_id": userID},
			{"receiver_id": userID},
		},
	}
	return r.findRequests(ctx, filter)
}

// GetAcceptedByUser returns the accepted requests involving the user, i.e.
// the materialized friendship records.
func (r *CollaborationRepository) GetAcceptedByUser(ctx context.Context, userID primitive.ObjectID) ([]models.CollaborationRequest, error) {
	filter := bson.M{
		"$or": []bson.M{
			{"sender_id": userID, "status": models.RequestAccepted},
			{"receiver_id": userID, "status": models.RequestAccepted},
		},
	}
	return r.findRequests(ctx, filter)
}

// GetAcceptedByPair looks up the accepted request between an unordered
// pair of users via the normalized pair key.
func (r *CollaborationRepository) GetAcceptedByPair(ctx context.Context, a, b primitive.ObjectID) (*models.CollaborationRequest, error) {
	filter := bson.M{
		"pair_key": models.PairKey(a, b),
		"status":   models.RequestAccepted,
	}

	var request models.CollaborationRequest
	err := r.collection.FindOne(ctx, filter).Decode(&request)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%w: no accepted collaboration", apperrors.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to find accepted collaboration: %v", err)
	}
	return &request, nil
}

func (r *CollaborationRepository) findRequests(ctx context.Context, filter bson.M) ([]models.CollaborationRequest, error) {
	cursor, err := r.collection.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to find collaboration requests: %v", err)
	}
	defer cursor.Close(ctx)

	requests := make([]models.CollaborationRequest, 0)
	for cursor.Next(ctx) {
		var req models.CollaborationRequest
		if err := cursor.Decode(&req); err != nil {
			return nil, err
		}
		requests = append(requests, req)
	}

	return requests, nil
}
