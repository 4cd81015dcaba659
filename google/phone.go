// Package google bridges to Google's OAuth and People APIs.
package google

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/oauth2"
	googleoauth "golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	"google.golang.org/api/people/v1"
)

// Mobile clients hand us a server auth code minted for the "postmessage" redirect.
const postMessageRedirect = "postmessage"

var (
	ErrNotConfigured = errors.New("google oauth credentials not configured")
	ErrInvalidClient = errors.New("google oauth client rejected")
)

// PhoneLookup exchanges a server auth code and reads the account's phone numbers.
type PhoneLookup struct {
	oauth          *oauth2.Config
	peopleEndpoint string
}

func NewPhoneLookup(clientID, clientSecret string) *PhoneLookup {
	return &PhoneLookup{
		oauth: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			Endpoint:     googleoauth.Endpoint,
			RedirectURL:  postMessageRedirect,
			Scopes:       []string{people.UserPhonenumbersReadScope},
		},
	}
}

// WithEndpoints points the lookup at alternate token and People API hosts.
func (p *PhoneLookup) WithEndpoints(tokenURL, peopleURL string) *PhoneLookup {
	cfg := *p.oauth
	cfg.Endpoint = oauth2.Endpoint{TokenURL: tokenURL, AuthStyle: oauth2.AuthStyleInParams}
	return &PhoneLookup{oauth: &cfg, peopleEndpoint: peopleURL}
}

func (p *PhoneLookup) Configured() bool {
	return p.oauth.ClientID != "" && p.oauth.ClientSecret != ""
}

// PhoneNumber returns the first phone number on the account, or "" when there is none.
func (p *PhoneLookup) PhoneNumber(ctx context.Context, serverAuthCode string) (string, error) {
	if !p.Configured() {
		return "", ErrNotConfigured
	}

	tok, err := p.oauth.Exchange(ctx, serverAuthCode)
	if err != nil {
		var re *oauth2.RetrieveError
		if errors.As(err, &re) && re.ErrorCode == "invalid_client" {
			return "", fmt.Errorf("%w: %v", ErrInvalidClient, err)
		}
		return "", fmt.Errorf("exchange auth code: %w", err)
	}

	opts := []option.ClientOption{option.WithTokenSource(p.oauth.TokenSource(ctx, tok))}
	if p.peopleEndpoint != "" {
		opts = append(opts, option.WithEndpoint(p.peopleEndpoint))
	}
	svc, err := people.NewService(ctx, opts...)
	if err != nil {
		return "", fmt.Errorf("people client: %w", err)
	}

	person, err := svc.People.Get("people/me").PersonFields("phoneNumbers").Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("fetch phone numbers: %w", err)
	}
	for _, n := range person.PhoneNumbers {
		if n != nil && n.Value != "" {
			return n.Value, nil
		}
	}
	return "", nil
}
