// ABOUTME: Calendar API client setup for Google Calendar import
// ABOUTME: Creates an authenticated Calendar service from a stored OAuth token
package sync

import (
	"context"
	"fmt"

	"golang.org/x/oauth2"
	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"
)

// NewCalendarClient creates a Google Calendar API service from an OAuth
// token. Extra options are appended, which lets tests point it elsewhere.
func NewCalendarClient(ctx context.Context, token *oauth2.Token, opts ...option.ClientOption) (*calendar.Service, error) {
	if token == nil {
		return nil, fmt.Errorf("token cannot be nil")
	}

	client := NewOAuthConfig().Client(ctx, token)
	opts = append([]option.ClientOption{option.WithHTTPClient(client)}, opts...)
	service, err := calendar.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create calendar service: %w", err)
	}
	return service, nil
}
