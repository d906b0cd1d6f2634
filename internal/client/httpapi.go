package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"chatspace/internal/apperr"
	"chatspace/internal/models"
)

// HTTPAPI implements API over the server's REST surface. Every request
// carries the bearer credential; server rejections are mapped back onto the
// domain error taxonomy by status code.
type HTTPAPI struct {
	BaseURL string
	Token   string
	Client  *http.Client
}

func NewHTTPAPI(baseURL, token string) *HTTPAPI {
	return &HTTPAPI{
		BaseURL: baseURL,
		Token:   token,
		Client:  &http.Client{Timeout: 15 * time.Second},
	}
}

func (a *HTTPAPI) ListRooms(ctx context.Context) ([]models.RoomView, error) {
	var rooms []models.RoomView
	if err := a.do(ctx, http.MethodGet, "/rooms", nil, &rooms); err != nil {
		return nil, err
	}
	return rooms, nil
}

func (a *HTTPAPI) ListUsers(ctx context.Context) ([]models.User, error) {
	var users []models.User
	if err := a.do(ctx, http.MethodGet, "/users", nil, &users); err != nil {
		return nil, err
	}
	return users, nil
}

func (a *HTTPAPI) RoomMessages(ctx context.Context, roomID string) ([]models.Message, error) {
	var messages []models.Message
	if err := a.do(ctx, http.MethodGet, "/messages/"+roomID, nil, &messages); err != nil {
		return nil, err
	}
	return messages, nil
}

func (a *HTTPAPI) CreateRoom(ctx context.Context, req models.CreateRoomRequest) (*models.RoomView, error) {
	var room models.RoomView
	if err := a.do(ctx, http.MethodPost, "/rooms", req, &room); err != nil {
		return nil, err
	}
	return &room, nil
}

func (a *HTTPAPI) AddMembers(ctx context.Context, roomID string, memberIDs []string) (*models.RoomView, error) {
	var room models.RoomView
	req := models.AddMembersRequest{MemberIDs: memberIDs}
	if err := a.do(ctx, http.MethodPost, "/rooms/"+roomID+"/members", req, &room); err != nil {
		return nil, err
	}
	return &room, nil
}

func (a *HTTPAPI) SendMessage(ctx context.Context, roomID, text string) (*models.Message, error) {
	var msg models.Message
	req := models.PostMessageRequest{Text: text}
	if err := a.do(ctx, http.MethodPost, "/messages/"+roomID, req, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

func (a *HTTPAPI) Summarize(ctx context.Context, roomID string) (*models.Message, error) {
	var msg models.Message
	if err := a.do(ctx, http.MethodPost, "/rooms/"+roomID+"/summary", nil, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

func (a *HTTPAPI) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, a.BaseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if a.Token != "" {
		req.Header.Set("Authorization", "Bearer "+a.Token)
	}

	resp, err := a.Client.Do(req)
	if err != nil {
		return apperr.Wrap(apperr.CodeUnavailable, "request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var errBody struct {
			Error string `json:"error"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&errBody)
		if errBody.Error == "" {
			errBody.Error = fmt.Sprintf("request failed with status %d", resp.StatusCode)
		}
		return apperr.FromStatus(resp.StatusCode, errBody.Error)
	}

	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
