package identity

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/vendorly/vendorly-api/internal/config"
)

// Provider exposes the slice of the identity provider's user API the
// resolver needs: the primary email for a subject. An empty email with a nil
// error means the provider has no usable address for that user.
type Provider interface {
	PrimaryEmail(ctx context.Context, subjectID string) (string, error)
}

// HTTPProvider calls the identity provider's backend API with a bearer
// API key.
type HTTPProvider struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

var _ Provider = (*HTTPProvider)(nil)

func NewHTTPProvider(cfg config.Config) *HTTPProvider {
	timeout := cfg.ProviderTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &HTTPProvider{
		baseURL: cfg.IdentityAPIURL,
		apiKey:  cfg.IdentityAPIKey,
		client:  &http.Client{Timeout: timeout},
	}
}

type providerUser struct {
	ID                    string `json:"id"`
	PrimaryEmailAddressID string `json:"primary_email_address_id"`
	EmailAddresses        []struct {
		ID           string `json:"id"`
		EmailAddress string `json:"email_address"`
	} `json:"email_addresses"`
}

func (p *HTTPProvider) PrimaryEmail(ctx context.Context, subjectID string) (string, error) {
	url := fmt.Sprintf("%s/v1/users/%s", p.baseURL, subjectID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("build provider request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+p.apiKey)

	resp, err := p.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch provider user: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("provider returned status %d for user %s", resp.StatusCode, subjectID)
	}

	var user providerUser
	if err := json.NewDecoder(resp.Body).Decode(&user); err != nil {
		return "", fmt.Errorf("decode provider user: %w", err)
	}

	for _, addr := range user.EmailAddresses {
		if addr.ID == user.PrimaryEmailAddressID {
			return addr.EmailAddress, nil
		}
	}
	if len(user.EmailAddresses) > 0 {
		return user.EmailAddresses[0].EmailAddress, nil
	}
	return "", nil
}
