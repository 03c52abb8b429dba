package membersdk

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"time"
)

func (c *Client) GetLiveness(ctx context.Context) (*HealthResponse, error) {
	var out HealthResponse
	if err := c.call(ctx, http.MethodGet, "/livez", "", nil, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) GetReadiness(ctx context.Context) (*HealthResponse, error) {
	var out HealthResponse
	if err := c.call(ctx, http.MethodGet, "/readyz", "", nil, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) GetJWKS(ctx context.Context) (*JWKSResponse, error) {
	var out JWKSResponse
	if err := c.call(ctx, http.MethodGet, "/.well-known/jwks.json", "", nil, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

// Bootstrap creates the first community and administrator.
func (c *Client) Bootstrap(ctx context.Context, token string, req BootstrapRequest) (*BootstrapResponse, error) {
	resp, err := c.doWithHeader(ctx, http.MethodPost, "/v1/bootstrap", "X-Bootstrap-Token", token, req)
	if err != nil {
		return nil, err
	}
	var out BootstrapResponse
	if err := decodeJSON(resp, &out, http.StatusCreated); err != nil {
		return nil, err
	}
	return &out, nil
}

// Login exchanges credentials for a Session.
func (c *Client) Login(ctx context.Context, email, password string) (*Session, error) {
	var out LoginResponse
	err := c.call(ctx, http.MethodPost, "/v1/auth/login", "", LoginRequest{Email: email, Password: password}, &out, http.StatusOK)
	if err != nil {
		return nil, err
	}
	return &Session{
		client:      c,
		accessToken: out.AccessToken,
		scopes:      strings.Fields(out.Scope),
		expiresAt:   time.Now().Add(time.Duration(out.ExpiresIn) * time.Second),
		Member:      out.Member,
	}, nil
}

// ValidateInvite checks a typed code or a scanned QR payload without using it.
func (c *Client) ValidateInvite(ctx context.Context, req ValidateInviteRequest) (*InviteResolution, error) {
	var out InviteResolution
	if err := c.call(ctx, http.MethodPost, "/v1/invites/validate", "", req, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

// ResolveJoinLink follows a /join/{code} deep link.
func (c *Client) ResolveJoinLink(ctx context.Context, code string) (*InviteResolution, error) {
	var out InviteResolution
	if err := c.call(ctx, http.MethodGet, "/join/"+url.PathEscape(code), "", nil, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

// ValidateRegistrationStage validates one stage of the join flow.
func (c *Client) ValidateRegistrationStage(ctx context.Context, req ValidateStageRequest) (*ValidateStageResponse, error) {
	var out ValidateStageResponse
	if err := c.call(ctx, http.MethodPost, "/v1/registrations/validate", "", req, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

// Register submits a complete application.
func (c *Client) Register(ctx context.Context, req RegistrationRequest) (*Member, error) {
	var out Member
	if err := c.call(ctx, http.MethodPost, "/v1/registrations", "", req, &out, http.StatusCreated); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) doWithHeader(ctx context.Context, method, path, key, value string, in any) (*http.Response, error) {
	return c.doHeaders(ctx, method, path, map[string]string{key: value}, in)
}
