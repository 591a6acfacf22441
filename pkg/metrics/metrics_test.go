package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
)

func TestRegisterCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	require.NotPanics(t, func() { RegisterCollectors(reg) })

	ArticleMutations.WithLabelValues("create").Inc()
	LoginAttempts.WithLabelValues("ok").Inc()

	families, err := reg.Gather()
	require.NoError(t, err)
	names := map[string]bool{}
	for _, f := range families {
		names[f.GetName()] = true
	}
	require.True(t, names["college_news_article_mutations_total"])
	require.True(t, names["college_news_login_attempts_total"])

	// registering twice on the same registry must panic
	require.Panics(t, func() { RegisterCollectors(reg) })
}
