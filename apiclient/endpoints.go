package apiclient

import (
	"context"
	"encoding/json"
	"net/url"

	"github.com/lborres/careerguide/core"
)

// Backend endpoints, relative to the base URL.
const (
	EndpointLogin           = "login.php"
	EndpointRegister        = "register.php"
	EndpointProfile         = "profile.php"
	EndpointCounselors      = "get_counselors.php"
	EndpointCounselor       = "get_counselor.php"
	EndpointSendMessage     = "send_message.php"
	EndpointMessages        = "get_messages.php"
	EndpointResume          = "resume.php"
	EndpointLearningJourney = "learning_journey.php"
)

func (c *Client) Login(ctx context.Context, req core.LoginRequest) (*core.AuthResponse, error) {
	var resp core.AuthResponse
	if err := c.post(ctx, EndpointLogin, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) Register(ctx context.Context, payload core.RegistrationPayload) (*core.Envelope, error) {
	var resp core.Envelope
	if err := c.post(ctx, EndpointRegister, payload, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) GetUserProfile(ctx context.Context) (*core.AuthResponse, error) {
	var resp core.AuthResponse
	if err := c.get(ctx, EndpointProfile, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) UpdateUserProfile(ctx context.Context, fields core.UserRecord) (*core.AuthResponse, error) {
	var resp core.AuthResponse
	if err := c.post(ctx, EndpointProfile, fields, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) GetCounselors(ctx context.Context) (*core.CounselorsResponse, error) {
	var resp core.CounselorsResponse
	if err := c.get(ctx, EndpointCounselors, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) GetCounselor(ctx context.Context, id string) (*core.CounselorResponse, error) {
	var resp core.CounselorResponse
	if err := c.get(ctx, EndpointCounselor, url.Values{"id": {id}}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) GetMessages(ctx context.Context, counselorID string) (*core.MessagesResponse, error) {
	var resp core.MessagesResponse
	if err := c.get(ctx, EndpointMessages, url.Values{"counselor_id": {counselorID}}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) SendMessage(ctx context.Context, req core.SendMessageRequest) (*core.SendMessageResponse, error) {
	var resp core.SendMessageResponse
	if err := c.post(ctx, EndpointSendMessage, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) GetResume(ctx context.Context) (*core.DocumentResponse, error) {
	var resp core.DocumentResponse
	if err := c.get(ctx, EndpointResume, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) SaveResume(ctx context.Context, data json.RawMessage) (*core.DocumentResponse, error) {
	var resp core.DocumentResponse
	if err := c.post(ctx, EndpointResume, data, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) GetLearningJourney(ctx context.Context) (*core.DocumentResponse, error) {
	var resp core.DocumentResponse
	if err := c.get(ctx, EndpointLearningJourney, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) SaveLearningJourney(ctx context.Context, data json.RawMessage) (*core.DocumentResponse, error) {
	var resp core.DocumentResponse
	if err := c.post(ctx, EndpointLearningJourney, data, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
