package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/librento/librento/config"
	"github.com/librento/librento/ledger"
)

func Test_ParseEnv_UsesDefaults_WhenNothingIsSet(t *testing.T) {
	// act
	cfg, err := config.ParseEnv()

	// assert
	require.NoError(t, err)
	assert.Equal(t, 14, cfg.LoanPeriodDays)
	assert.InDelta(t, 5.0, cfg.FineRatePerDay, 0.0001)
	assert.Equal(t, "en", cfg.SortLocale)
	assert.Equal(t, int32(8), cfg.MaxConnections)
	assert.Equal(t, 5*time.Second, cfg.ConnectTimeout)
}

func Test_ParseEnv_ReadsOverridesFromTheEnvironment(t *testing.T) {
	// arrange
	t.Setenv("LIBRENTO_LOAN_PERIOD_DAYS", "7")
	t.Setenv("LIBRENTO_FINE_RATE_PER_DAY", "2.5")
	t.Setenv("LIBRENTO_POSTGRES_DSN", "postgres://u:p@db:5432/librento")

	// act
	cfg, err := config.ParseEnv()

	// assert
	require.NoError(t, err)
	assert.Equal(t, 7, cfg.LoanPeriodDays)
	assert.InDelta(t, 2.5, cfg.FineRatePerDay, 0.0001)
	assert.Equal(t, "postgres://u:p@db:5432/librento", cfg.PostgresDSN)
}

func Test_LedgerPolicy_BuildsFromTheConfiguredValues(t *testing.T) {
	// arrange
	t.Setenv("LIBRENTO_LOAN_PERIOD_DAYS", "7")
	t.Setenv("LIBRENTO_FINE_RATE_PER_DAY", "2.5")

	cfg, err := config.ParseEnv()
	require.NoError(t, err)

	// act
	policy, err := cfg.LedgerPolicy()

	// assert
	require.NoError(t, err)
	assert.Equal(t, 7*24*time.Hour, policy.LoanPeriod)
	assert.InDelta(t, 2.5, policy.FineRatePerDay, 0.0001)
}

func Test_LedgerPolicy_RejectsAnInvalidLoanPeriod(t *testing.T) {
	// arrange
	t.Setenv("LIBRENTO_LOAN_PERIOD_DAYS", "0")

	cfg, err := config.ParseEnv()
	require.NoError(t, err)

	// act
	_, err = cfg.LedgerPolicy()

	// assert
	assert.ErrorIs(t, err, ledger.ErrInvalidLoanPeriod)
}
