package web

import (
	"crypto/subtle"
	"encoding/json"
	"net/http"
	"strconv"

	"telegram-media-publisher/internal/domain/model"
)

type loginRequest struct {
	Key string `json:"key"`
}

// loginHandler exchanges the ops API key for a short-lived session JWT.
func (s *Server) loginHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.apiKey == "" || s.auth == nil {
			s.log.Error().Msg("ops API key or auth manager is not configured")
			http.Error(w, "Forbidden", http.StatusForbidden)
			return
		}

		var req loginRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}
		if subtle.ConstantTimeCompare([]byte(req.Key), []byte(s.apiKey)) != 1 {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}

		token, err := s.auth.Mint(w)
		if err != nil {
			s.log.Error().Err(err).Msg("mint session token")
			http.Error(w, "Failed to create session", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(struct {
			Token string `json:"token"`
		}{Token: token})
	}
}

func (s *Server) logoutHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.auth != nil {
			s.auth.Clear(w)
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// queueStatusHandler reports queue depth and the configured destination.
func (s *Server) queueStatusHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		depth, dest, err := s.opsUC.Status(ctx)
		if err != nil {
			s.log.Error().Err(err).Msg("queue status")
			http.Error(w, "Failed to get queue status", http.StatusInternalServerError)
			return
		}

		response := struct {
			Depth       int64 `json:"depth"`
			Destination struct {
				ChatID  int64 `json:"chat_id"`
				TopicID int64 `json:"topic_id"`
			} `json:"destination"`
			DestinationSet bool `json:"destination_set"`
		}{Depth: depth, DestinationSet: !dest.IsZero()}
		response.Destination.ChatID = dest.ChatID
		response.Destination.TopicID = dest.TopicID

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(response)
	}
}

func (s *Server) queueClearHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := s.opsUC.ClearQueue(r.Context()); err != nil {
			s.log.Error().Err(err).Msg("clear queue")
			http.Error(w, "Failed to clear queue", http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// deliveriesHandler returns the most recent delivery records.
// It accepts a 'limit' query parameter.
func (s *Server) deliveriesHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
		if limit <= 0 || limit > 200 {
			limit = 50
		}

		rows, err := s.opsUC.RecentDeliveries(ctx, limit)
		if err != nil {
			s.log.Error().Err(err).Msg("list deliveries")
			http.Error(w, "Failed to list deliveries", http.StatusInternalServerError)
			return
		}
		if rows == nil {
			rows = []*model.Delivery{}
		}

		response := struct {
			Data []*model.Delivery `json:"data"`
		}{Data: rows}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(response)
	}
}
