package explore

import (
	"testing"

	"gtdash/domain/incident"
	"gtdash/internal"
	"gtdash/internal/cleaning"
	"gtdash/internal/testkit"

	"github.com/stretchr/testify/require"
)

func cleanSynthetic(t *testing.T) (*incident.Dataset, *cleaning.CleanReport) {
	t.Helper()
	cleaner := cleaning.NewCleaner(cleaning.WithLogger(internal.NewNopLogger()))
	ds, report, err := cleaner.Clean(testkit.Synthetic(1500, 21))
	require.NoError(t, err)
	return ds, report
}
