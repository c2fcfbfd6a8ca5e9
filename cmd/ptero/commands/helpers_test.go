package commands

import (
	"context"
	"errors"
	"testing"

	"github.com/fivetwenty-io/ptero/internal/constants"
	"github.com/fivetwenty-io/ptero/pkg/ptero"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseID(t *testing.T) {
	t.Parallel()

	id, err := parseID("42")
	require.NoError(t, err)
	assert.Equal(t, 42, id)

	for _, value := range []string{"", "0", "-1", "abc", "1.5"} {
		_, err := parseID(value)
		require.ErrorIs(t, err, constants.ErrInvalidID, value)
	}
}

func TestParseEnvironment(t *testing.T) {
	t.Parallel()

	environment, err := parseEnvironment([]string{"SERVER_JARFILE=server.jar", "MOTD=a=b", "EMPTY="})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"SERVER_JARFILE": "server.jar", "MOTD": "a=b", "EMPTY": ""}, environment)

	environment, err = parseEnvironment(nil)
	require.NoError(t, err)
	assert.Nil(t, environment)

	_, err = parseEnvironment([]string{"=value"})
	require.ErrorIs(t, err, constants.ErrInvalidEnvironment)
}

func TestListFlagsOptions(t *testing.T) {
	t.Parallel()

	var flags listFlags

	cmd := &cobra.Command{Use: "list"}
	flags.register(cmd)
	require.NoError(t, cmd.ParseFlags([]string{
		"--page", "3", "--per-page", "10", "--filter", "name=lobby", "--sort", "-id", "--include", "user,node",
	}))

	opts, err := flags.options()
	require.NoError(t, err)
	assert.Equal(t, 3, opts.Page)
	assert.Equal(t, 10, opts.PerPage)
	assert.Equal(t, map[string]string{"name": "lobby"}, opts.Filters)
	assert.Equal(t, "-id", opts.Sort)
	assert.Equal(t, []string{"user", "node"}, opts.Include)
}

func TestFormatters(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "512 B", formatBytes(512))
	assert.Equal(t, "1.5 KiB", formatBytes(1536))
	assert.Equal(t, "2.0 GiB", formatBytes(2*1024*1024*1024))
	assert.Equal(t, "unlimited", formatMiB(0))
	assert.Equal(t, "1024 MiB", formatMiB(1024))
	assert.Equal(t, "yes", formatBool(true))
	assert.Empty(t, formatOptional(nil))
	assert.Equal(t, "2024-05-01 10:00", formatTime("2024-05-01T10:00:00+00:00"))
	assert.Equal(t, "not a time", formatTime("not a time"))

	long := "A server description that is much longer than any table column should be"
	assert.Len(t, []rune(truncate(long)), constants.MaxDescriptionWidth)
	assert.Equal(t, "short", truncate("short"))

	assert.Equal(t, "ptla_abcd********", maskToken("ptla_abcdefghijkl"))
	assert.Equal(t, "****", maskToken("abcd"))
}

func TestWithRetry(t *testing.T) {
	rateLimited := &ptero.Error{Kind: ptero.KindRateLimited, StatusCode: 429}

	previous := retryInitialInterval
	retryInitialInterval = 1

	t.Cleanup(func() {
		retryInitialInterval = previous

		viper.Reset()
	})

	t.Run("disabled", func(t *testing.T) {
		viper.Set("retry_rate_limited", 0)

		calls := 0
		_, err := withRetry(context.Background(), func(context.Context) (int, error) {
			calls++

			return 0, rateLimited
		})
		require.ErrorIs(t, err, rateLimited)
		assert.Equal(t, 1, calls)
	})

	t.Run("retries rate limits only", func(t *testing.T) {
		viper.Set("retry_rate_limited", 5)

		calls := 0
		value, err := withRetry(context.Background(), func(context.Context) (int, error) {
			calls++
			if calls < 3 {
				return 0, rateLimited
			}

			return 7, nil
		})
		require.NoError(t, err)
		assert.Equal(t, 7, value)
		assert.Equal(t, 3, calls)

		other := errors.New("boom")
		calls = 0
		_, err = withRetry(context.Background(), func(context.Context) (int, error) {
			calls++

			return 0, other
		})
		require.ErrorIs(t, err, other)
		assert.Equal(t, 1, calls)
	})

	t.Run("gives up", func(t *testing.T) {
		viper.Set("retry_rate_limited", 2)

		calls := 0
		err := do(context.Background(), func(context.Context) error {
			calls++

			return rateLimited
		})
		require.Error(t, err)
		assert.True(t, ptero.IsRateLimited(err))
		assert.Equal(t, 3, calls)
	})
}
