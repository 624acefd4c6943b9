package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// RequestStatus is the lifecycle state of a collaboration request.
// There is no rejected or blocked state: a request is pending, accepted,
// or simply absent.
type RequestStatus string

const (
	RequestPending  RequestStatus = "pending"
	RequestAccepted RequestStatus = "accepted"
)

// CollaborationRequest is a directed request between two users. The
// direction (sender vs receiver) is kept permanently; once accepted the
// same record, read symmetrically, is the friendship.
type CollaborationRequest struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	SenderID   primitive.ObjectID `bson:"sender_id" json:"sender_id"`
	ReceiverID primitive.ObjectID `bson:"receiver_id" json:"receiver_id"`
	// PairKey identifies the unordered user pair. A unique partial index
	// over it guarantees at most one live request per pair.
	PairKey   string        `bson:"pair_key" json:"-"`
	Status    RequestStatus `bson:"status" json:"status"`
	CreatedAt time.Time     `bson:"created_at" json:"created_at"`
}

// PairKey normalizes an unordered user pair to a single lookup key by
// sorting the two hex ids.
func PairKey(a, b primitive.ObjectID) string {
	ah, bh := a.Hex(), b.Hex()
	if ah < bh {
		return ah + ":" + bh
	}
	return bh + ":" + ah
}

// OtherParty returns the counterpart of userID in the request.
func (r *CollaborationRequest) OtherParty(userID primitive.ObjectID) primitive.ObjectID {
	if r.SenderID == userID {
		return r.ReceiverID
	}
	return r.SenderID
}

// CollaborationRequestView is a request decorated with the usernames the
// client needs for display.
type CollaborationRequestView struct {
	CollaborationRequest
	SenderUsername   string `json:"sender_username"`
	ReceiverUsername string `json:"receiver_username"`
}
