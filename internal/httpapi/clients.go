package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/suifx/faucet/internal/clients"
)

type registerClientBody struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	HomepageURL string `json:"homepageUrl"`
	CallbackURL string `json:"callbackUrl"`
}

// HandleRegisterClient implements POST /api/v1/clients/register: public,
// unauthenticated self-service registration. The response is the only
// point at which apiKey and clientSecret are ever returned.
func (s *Server) HandleRegisterClient(w http.ResponseWriter, r *http.Request) {
	var body registerClientBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_REQUEST", "malformed JSON body")
		return
	}

	registered, err := s.registry.Register(r.Context(), clients.RegistrationInput{
		Name:        body.Name,
		Description: body.Description,
		HomepageURL: body.HomepageURL,
		CallbackURL: body.CallbackURL,
	})
	if err != nil {
		if errors.Is(err, clients.ErrValidation) {
			writeError(w, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, "SERVER_ERROR", err.Error())
		return
	}

	writeSuccessMessage(w, http.StatusCreated, "client registered", map[string]interface{}{
		"clientId":     registered.ClientID,
		"apiKey":       registered.APIKey,
		"clientSecret": registered.ClientSecret,
	})
}

// HandleGetClient implements GET /api/v1/clients/:id: public fields
// only, apiKey and clientSecret never included.
func (s *Server) HandleGetClient(w http.ResponseWriter, r *http.Request) {
	clientID := mux.Vars(r)["id"]
	client, err := s.registry.Get(r.Context(), clientID)
	if err != nil || client == nil {
		writeError(w, http.StatusNotFound, "NOT_FOUND", "client not found")
		return
	}

	writeSuccess(w, http.StatusOK, map[string]interface{}{
		"clientId":    client.ClientID,
		"name":        client.Name,
		"description": client.Description,
		"homepageUrl": client.HomepageURL,
		"callbackUrl": client.CallbackURL,
		"isActive":    client.IsActive,
		"usageCount":  client.UsageCount,
		"createdAt":   client.CreatedAt,
	})
}
