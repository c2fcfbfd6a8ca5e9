package client

import (
	"context"
	"fmt"

	"github.com/fivetwenty-io/ptero/pkg/ptero"
)

// AccountClient implements ptero.AccountClient.
type AccountClient struct {
	transport ptero.Transport
}

// NewAccountClient creates a new account client.
func NewAccountClient(transport ptero.Transport) *AccountClient {
	return &AccountClient{
		transport: transport,
	}
}

// Get implements ptero.AccountClient.Get.
func (c *AccountClient) Get(ctx context.Context) (*ptero.Account, error) {
	item, err := execute[ptero.Item[ptero.Account]](ctx, c.transport, ptero.NewRequest(ptero.RouteGetAccount))
	if err != nil {
		return nil, fmt.Errorf("getting account: %w", err)
	}

	return &item.Attributes, nil
}

// ListAPIKeys implements ptero.AccountClient.ListAPIKeys.
func (c *AccountClient) ListAPIKeys(ctx context.Context) ([]ptero.APIKey, error) {
	list, err := execute[ptero.List[ptero.APIKey]](ctx, c.transport, ptero.NewRequest(ptero.RouteListAPIKeys))
	if err != nil {
		return nil, fmt.Errorf("listing API keys: %w", err)
	}

	return list.Values(), nil
}

// CreateAPIKey implements ptero.AccountClient.CreateAPIKey. The secret token
// is only returned here; it is copied from the response meta into the key.
func (c *AccountClient) CreateAPIKey(ctx context.Context, request *ptero.CreateAPIKeyRequest) (*ptero.APIKey, error) {
	err := validate(request)
	if err != nil {
		return nil, fmt.Errorf("creating API key: %w", err)
	}

	body := *request
	if body.AllowedIPs == nil {
		body.AllowedIPs = []string{}
	}

	item, err := execute[ptero.Item[ptero.APIKey]](ctx, c.transport, ptero.NewRequest(ptero.RouteCreateAPIKey).WithJSONBody(body))
	if err != nil {
		return nil, fmt.Errorf("creating API key: %w", err)
	}

	key := item.Attributes
	if secret, ok := item.Meta["secret_token"].(string); ok {
		key.SecretToken = secret
	}

	return &key, nil
}

// DeleteAPIKey implements ptero.AccountClient.DeleteAPIKey.
func (c *AccountClient) DeleteAPIKey(ctx context.Context, identifier string) error {
	err := checkNotEmpty("API key identifier", identifier)
	if err != nil {
		return fmt.Errorf("deleting API key: %w", err)
	}

	_, err = execute[ptero.NoContent](ctx, c.transport, ptero.NewRequest(ptero.RouteDeleteAPIKey, identifier))
	if err != nil {
		return fmt.Errorf("deleting API key: %w", err)
	}

	return nil
}

// GetTwoFactorSetup implements ptero.AccountClient.GetTwoFactorSetup.
func (c *AccountClient) GetTwoFactorSetup(ctx context.Context) (*ptero.TwoFactorSetup, error) {
	envelope, err := execute[ptero.DataEnvelope[ptero.TwoFactorSetup]](ctx, c.transport, ptero.NewRequest(ptero.RouteGetTwoFactor))
	if err != nil {
		return nil, fmt.Errorf("getting two-factor setup: %w", err)
	}

	return &envelope.Data, nil
}

// UpdateTwoFactor implements ptero.AccountClient.UpdateTwoFactor.
func (c *AccountClient) UpdateTwoFactor(ctx context.Context, request *ptero.TwoFactorRequest) ([]string, error) {
	err := validate(request)
	if err != nil {
		return nil, fmt.Errorf("updating two-factor authentication: %w", err)
	}

	if !request.Enables() {
		builder := ptero.NewRequest(ptero.RouteDisableTwoFactor).WithJSONBody(request)

		_, err = execute[ptero.NoContent](ctx, c.transport, builder)
		if err != nil {
			return nil, fmt.Errorf("disabling two-factor authentication: %w", err)
		}

		return nil, nil
	}

	builder := ptero.NewRequest(ptero.RouteEnableTwoFactor).WithJSONBody(request)

	item, err := execute[ptero.Item[ptero.RecoveryTokens]](ctx, c.transport, builder)
	if err != nil {
		return nil, fmt.Errorf("enabling two-factor authentication: %w", err)
	}

	return item.Attributes.Tokens, nil
}

// UpdateEmail implements ptero.AccountClient.UpdateEmail.
func (c *AccountClient) UpdateEmail(ctx context.Context, request *ptero.UpdateEmailRequest) error {
	err := validate(request)
	if err != nil {
		return fmt.Errorf("updating email: %w", err)
	}

	_, err = execute[ptero.NoContent](ctx, c.transport, ptero.NewRequest(ptero.RouteUpdateEmail).WithJSONBody(request))
	if err != nil {
		return fmt.Errorf("updating email: %w", err)
	}

	return nil
}

// UpdatePassword implements ptero.AccountClient.UpdatePassword. An empty
// confirmation repeats the new password.
func (c *AccountClient) UpdatePassword(ctx context.Context, request *ptero.UpdatePasswordRequest) error {
	request = withConfirmation(request)

	err := validate(request)
	if err != nil {
		return fmt.Errorf("updating password: %w", err)
	}

	_, err = execute[ptero.NoContent](ctx, c.transport, ptero.NewRequest(ptero.RouteUpdatePassword).WithJSONBody(request))
	if err != nil {
		return fmt.Errorf("updating password: %w", err)
	}

	return nil
}

// Update implements ptero.AccountClient.Update. Both parts are validated
// before the email is changed, then the password.
func (c *AccountClient) Update(ctx context.Context, request *ptero.UpdateAccountRequest) error {
	if request != nil {
		updated := *request
		updated.Password = withConfirmation(request.Password)
		request = &updated
	}

	err := validate(request)
	if err != nil {
		return fmt.Errorf("updating account: %w", err)
	}

	if request.Email != nil {
		err = c.UpdateEmail(ctx, request.Email)
		if err != nil {
			return fmt.Errorf("updating account: %w", err)
		}
	}

	if request.Password != nil {
		err = c.UpdatePassword(ctx, request.Password)
		if err != nil {
			return fmt.Errorf("updating account: %w", err)
		}
	}

	return nil
}

func withConfirmation(request *ptero.UpdatePasswordRequest) *ptero.UpdatePasswordRequest {
	if request == nil || request.PasswordConfirmation != "" {
		return request
	}

	filled := *request
	filled.PasswordConfirmation = filled.Password

	return &filled
}
