package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/Bekarys04/CollabTask_Manager/internal/services"
	"github.com/Bekarys04/CollabTask_Manager/pkg/logger"
	"github.com/Bekarys04/CollabTask_Manager/pkg/middleware"
	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CollaborationHandler manages HTTP endpoints for the collaboration
// request lifecycle and user search.
type CollaborationHandler struct {
	Service     *services.CollaborationService
	UserService *services.UserService
}

// NewCollaborationHandler initializes a new CollaborationHandler.
func NewCollaborationHandler(service *services.CollaborationService, userService *services.UserService) *CollaborationHandler {
	return &CollaborationHandler{
		Service:     service,
		UserService: userService,
	}
}

// SearchUsersHandler returns users whose username contains the search
// term. An empty term returns everyone.
func (h *CollaborationHandler) SearchUsersHandler(w http.ResponseWriter, r *http.Request) {
	users, err := h.UserService.SearchUsers(r.Context(), r.URL.Query().Get("search"))
	if err != nil {
		logger.Log.WithError(err).Error("Failed to search users")
		http.Error(w, "Error searching users", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, users)
}

// SendRequestHandler allows a user to send a collaboration request.
func (h *CollaborationHandler) SendRequestHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		logger.Log.Warn("Unauthorized attempt to send collaboration request")
		return
	}

	var body struct {
		SenderID   string `json:"senderId"`
		ReceiverID string `json:"receiverId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		logger.Log.WithError(err).Warn("Failed to decode send request body")
		return
	}
	defer r.Body.Close()

	// The claimed sender must be the authenticated user.
	if body.SenderID != claims.UserID {
		logger.Log.WithFields(map[string]interface{}{
			"claimed_sender": body.SenderID,
			"authenticated":  claims.UserID,
		}).Warn("Sender id does not match authenticated user")
		http.Error(w, "Forbidden: sender does not match authenticated user", http.StatusForbidden)
		return
	}

	senderID, err := primitive.ObjectIDFromHex(body.SenderID)
	if err != nil {
		http.Error(w, "Invalid sender ID", http.StatusBadRequest)
		return
	}
	receiverID, err := primitive.ObjectIDFromHex(body.ReceiverID)
	if err != nil {
		http.Error(w, "Invalid receiver ID", http.StatusBadRequest)
		return
	}

	request, err := h.Service.SendRequest(r.Context(), senderID, receiverID)
	if err != nil {
		writeError(w, err)
		return
	}

	logger.Log.Infof("User %s sent a collaboration request to %s", body.SenderID, body.ReceiverID)
	writeJSON(w, http.StatusCreated, request)
}

// AcceptRequestHandler allows the receiver to accept a pending request.
func (h *CollaborationHandler) AcceptRequestHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		logger.Log.Warn("Unauthorized attempt to accept collaboration request")
		return
	}

	requestID, err := primitive.ObjectIDFromHex(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "Invalid request ID", http.StatusBadRequest)
		return
	}

	actorID, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		http.Error(w, "Invalid token subject", http.StatusUnauthorized)
		return
	}

	request, err := h.Service.AcceptRequest(r.Context(), requestID, actorID)
	if err != nil {
		logger.Log.WithError(err).Warnf("Failed to accept collaboration request %s", requestID.Hex())
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, request)
}

// GetRequestsHandler returns all requests, pending and accepted, in which
// the user participates.
func (h *CollaborationHandler) GetRequestsHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := primitive.ObjectIDFromHex(mux.Vars(r)["userId"])
	if err != nil {
		http.Error(w, "Invalid user ID", http.StatusBadRequest)
		return
	}

	requests, err := h.Service.GetRequests(r.Context(), userID)
	if err != nil {
		logger.Log.WithError(err).Error("Failed to get collaboration requests")
		http.Error(w, "Failed to get requests", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, requests)
}

// GetFriendsHandler returns the accepted requests involving the user.
func (h *CollaborationHandler) GetFriendsHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := primitive.ObjectIDFromHex(mux.Vars(r)["userId"])
	if err != nil {
		http.Error(w, "Invalid user ID", http.StatusBadRequest)
		return
	}

	friends, err := h.Service.GetFriends(r.Context(), userID)
	if err != nil {
		logger.Log.WithError(err).Errorf("Failed to fetch friends for user %s", userID.Hex())
		http.Error(w, "Failed to get friends", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, friends)
}
