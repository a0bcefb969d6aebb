package graph

import (
	"context"
	"errors"
	"net/http"
	"net/url"
)

// DebugToken inspects a token through the debug_token endpoint using the app access token.
func (c *Client) DebugToken(ctx context.Context, token AccessToken) (*TokenMetadata, error) {
	if token.IsEmpty() {
		return nil, ErrEmptyToken
	}

	path := "/debug_token?" + url.Values{"input_token": {token.Value}}.Encode()
	resp, err := c.do(ctx, http.MethodGet, path, nil, c.AppAccessToken())
	if err != nil {
		return nil, err
	}

	var body struct {
		Data debugTokenData `json:"data"`
	}
	if err := resp.Decode(&body); err != nil {
		return nil, err
	}

	return body.Data.metadata(), nil
}

// ExchangeForLongLived swaps a short-lived user token for a long-lived one.
func (c *Client) ExchangeForLongLived(ctx context.Context, token AccessToken) (*AccessToken, error) {
	if token.IsEmpty() {
		return nil, ErrEmptyToken
	}

	params := url.Values{
		"grant_type":        {"fb_exchange_token"},
		"client_id":         {c.appID},
		"client_secret":     {c.appSecret},
		"fb_exchange_token": {token.Value},
	}
	resp, err := c.do(ctx, http.MethodGet, "/oauth/access_token?"+params.Encode(), nil, AccessToken{})
	if err != nil {
		return nil, err
	}

	var tr tokenResponse
	if err := resp.Decode(&tr); err != nil {
		return nil, err
	}
	if tr.AccessToken == "" {
		return nil, errors.Join(ErrDecodeFailed, errors.New("long-lived exchange returned no access_token"))
	}

	long := tr.token()
	return &long, nil
}
