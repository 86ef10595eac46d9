package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/require"

	"github.com/mcastellin/clustermemb/internal/membership"
)

func TestRecorderUpdatesCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	r := NewRecorder(reg)

	self := membership.Address{ID: 1, Port: 0}
	r.TableSize(self, 4)
	r.GossipSent(self)
	r.PeerRemoved(self)
	r.CodecError(self, "bad_tag")

	families, err := reg.Gather()
	require.NoError(t, err)

	byName := map[string]*dto.MetricFamily{}
	for _, f := range families {
		byName[f.GetName()] = f
	}

	require.Contains(t, byName, "clustermemb_table_size")
	require.Equal(t, float64(4), byName["clustermemb_table_size"].Metric[0].GetGauge().GetValue())

	require.Contains(t, byName, "clustermemb_gossip_sent_total")
	require.Equal(t, float64(1), byName["clustermemb_gossip_sent_total"].Metric[0].GetCounter().GetValue())

	require.Contains(t, byName, "clustermemb_peer_removed_total")
	require.Contains(t, byName, "clustermemb_codec_errors_total")
}
