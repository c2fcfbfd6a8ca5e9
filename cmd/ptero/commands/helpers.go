package commands

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/fivetwenty-io/ptero/internal/constants"
	"github.com/fivetwenty-io/ptero/internal/logging"
	"github.com/fivetwenty-io/ptero/pkg/ptero"
	"github.com/fivetwenty-io/ptero/pkg/pteroclient"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Backoff bounds of --retry-rate-limited.
var (
	retryInitialInterval = constants.RateLimitInitialInterval
	retryMaxInterval     = constants.RateLimitMaxInterval
)

// createClient builds a panel client from the effective configuration.
func createClient(cmd *cobra.Command) (ptero.Client, error) {
	panelURL := viper.GetString("url")
	if panelURL == "" {
		return nil, constants.ErrNoPanelConfigured
	}

	token := viper.GetString("token")
	clientToken := viper.GetString("client_token")

	if token == "" && clientToken == "" {
		return nil, constants.ErrNoTokenConfigured
	}

	config := &ptero.Config{
		BaseURL:           panelURL,
		Token:             token,
		ClientToken:       clientToken,
		UserAgent:         "ptero-cli/" + constants.Version,
		RequestsPerMinute: viper.GetInt("requests_per_minute"),
	}

	if viper.GetBool("verbose") {
		config.Debug = true
		config.Logger = logging.New(logging.Options{
			Name:   "ptero",
			Level:  "debug",
			Output: cmd.ErrOrStderr(),
		})
	}

	return pteroclient.New(config)
}

// withRetry retries op while the panel answers 429, up to
// --retry-rate-limited times. Other errors are returned at once.
func withRetry[T any](ctx context.Context, op func(ctx context.Context) (T, error)) (T, error) {
	retries := viper.GetInt("retry_rate_limited")
	if retries <= 0 {
		return op(ctx)
	}

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = retryInitialInterval
	policy.MaxInterval = retryMaxInterval
	policy.MaxElapsedTime = 0

	operation := func() (T, error) {
		value, err := op(ctx)
		if err != nil && !ptero.IsRateLimited(err) {
			return value, backoff.Permanent(err)
		}

		return value, err
	}

	return backoff.RetryNotifyWithData(
		operation,
		backoff.WithMaxRetries(backoff.WithContext(policy, ctx), uint64(retries)),
		func(err error, wait time.Duration) {
			if viper.GetBool("verbose") {
				_, _ = fmt.Fprintf(os.Stderr, "rate limited, retrying in %s: %v\n", wait.Round(time.Millisecond), err)
			}
		},
	)
}

// do is withRetry for operations without a result.
func do(ctx context.Context, op func(ctx context.Context) error) error {
	_, err := withRetry(ctx, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, op(ctx)
	})

	return err
}

// collectAll drains a cursor from its current page. It stops after the last
// page or at the first empty page; any error aborts the walk.
func collectAll[T any](ctx context.Context, cursor *ptero.Cursor[T]) ([]T, error) {
	items, err := withRetry(ctx, cursor.FetchCurrentPage)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch page %d: %w", cursor.Page(), err)
	}

	for cursor.HasNext() {
		// Retries refetch the page advanced to on the first attempt.
		advanced := false

		page, err := withRetry(ctx, func(ctx context.Context) ([]T, error) {
			if advanced {
				return cursor.FetchCurrentPage(ctx)
			}

			advanced = true

			return cursor.AdvanceAndFetch(ctx)
		})
		if err != nil {
			return nil, fmt.Errorf("failed to fetch page %d: %w", cursor.Page(), err)
		}

		if len(page) == 0 {
			break
		}

		items = append(items, page...)
	}

	return items, nil
}

// listFlags are the flags shared by paginated list commands.
type listFlags struct {
	all     bool
	page    int
	perPage int
	filters []string
	sort    string
	include []string
}

func (f *listFlags) register(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&f.all, "all", false, "fetch all pages")
	cmd.Flags().IntVar(&f.page, "page", 1, "page to fetch")
	cmd.Flags().IntVar(&f.perPage, "per-page", ptero.DefaultPerPage, "results per page")
	cmd.Flags().StringArrayVar(&f.filters, "filter", nil, "filter as KEY=VALUE (repeatable)")
	cmd.Flags().StringVar(&f.sort, "sort", "", "sort field, prefix with - for descending")
	cmd.Flags().StringSliceVar(&f.include, "include", nil, "relations to include")
}

func (f *listFlags) options() (*ptero.ListOptions, error) {
	opts := ptero.NewListOptions()
	opts.Page = f.page
	opts.PerPage = f.perPage
	opts.Sort = f.sort
	opts.Include = f.include

	for _, filter := range f.filters {
		key, value, ok := strings.Cut(filter, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("%w: %q", constants.ErrInvalidFilter, filter)
		}

		opts.WithFilter(key, value)
	}

	return opts, nil
}

// listResult is one page, or every page when --all is set.
type listResult[T any] struct {
	items      []T
	pagination *ptero.Pagination
}

// fetchList runs a list command: a single page through list, or every page
// through a cursor when --all is set.
func fetchList[T any](
	ctx context.Context,
	flags *listFlags,
	list func(ctx context.Context, opts *ptero.ListOptions) (*ptero.ListResponse[T], error),
	cursor func(opts *ptero.ListOptions) *ptero.Cursor[T],
) (*listResult[T], error) {
	opts, err := flags.options()
	if err != nil {
		return nil, err
	}

	if flags.all && cursor != nil {
		items, err := collectAll(ctx, cursor(opts))
		if err != nil {
			return nil, err
		}

		return &listResult[T]{items: items}, nil
	}

	if flags.all {
		return fetchPages(ctx, opts, list)
	}

	response, err := withRetry(ctx, func(ctx context.Context) (*ptero.ListResponse[T], error) {
		return list(ctx, opts)
	})
	if err != nil {
		return nil, err
	}

	return &listResult[T]{items: response.Data, pagination: &response.Pagination}, nil
}

// fetchPages walks pages for resources without a cursor.
func fetchPages[T any](
	ctx context.Context,
	opts *ptero.ListOptions,
	list func(ctx context.Context, opts *ptero.ListOptions) (*ptero.ListResponse[T], error),
) (*listResult[T], error) {
	var items []T

	for {
		response, err := withRetry(ctx, func(ctx context.Context) (*ptero.ListResponse[T], error) {
			return list(ctx, opts)
		})
		if err != nil {
			return nil, fmt.Errorf("failed to fetch page %d: %w", opts.Page, err)
		}

		items = append(items, response.Data...)

		if len(response.Data) == 0 || !response.Pagination.HasNext() {
			return &listResult[T]{items: items}, nil
		}

		opts.Page = response.Pagination.CurrentPage + 1
	}
}

func parseID(value string) (int, error) {
	id, err := strconv.Atoi(value)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: %q", constants.ErrInvalidID, value)
	}

	return id, nil
}

func parseEnvironment(values []string) (map[string]string, error) {
	if len(values) == 0 {
		return nil, nil
	}

	environment := make(map[string]string, len(values))

	for _, value := range values {
		key, val, ok := strings.Cut(value, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("%w: %q", constants.ErrInvalidEnvironment, value)
		}

		environment[key] = val
	}

	return environment, nil
}

func getOptions(include []string) *ptero.GetOptions {
	if len(include) == 0 {
		return nil
	}

	return &ptero.GetOptions{Include: include}
}

func confirmDeletion(confirm bool) error {
	if !confirm {
		return constants.ErrConfirmDeletion
	}

	return nil
}

func capitalize(value string) string {
	if value == "" {
		return value
	}

	return strings.ToUpper(value[:1]) + value[1:]
}
