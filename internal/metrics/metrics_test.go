package metrics

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"firestige.xyz/ptpwire/internal/pipeline"
)

func TestRegisterPipeline(t *testing.T) {
	m := New()
	stats := pipeline.Stats{Received: 10, Decoded: 8, Skipped: 2, Parsed: 8, Reported: 7, Dropped: 1}
	require.NoError(t, m.RegisterPipeline("gm.pcap", func() pipeline.Stats { return stats }))

	expected := `
# HELP ptpwire_pipeline_packets_total Total number of packets per pipeline stage
# TYPE ptpwire_pipeline_packets_total counter
ptpwire_pipeline_packets_total{source="gm.pcap",stage="decode_error"} 0
ptpwire_pipeline_packets_total{source="gm.pcap",stage="decoded"} 8
ptpwire_pipeline_packets_total{source="gm.pcap",stage="dropped"} 1
ptpwire_pipeline_packets_total{source="gm.pcap",stage="parse_error"} 0
ptpwire_pipeline_packets_total{source="gm.pcap",stage="parsed"} 8
ptpwire_pipeline_packets_total{source="gm.pcap",stage="received"} 10
ptpwire_pipeline_packets_total{source="gm.pcap",stage="report_error"} 0
ptpwire_pipeline_packets_total{source="gm.pcap",stage="reported"} 7
ptpwire_pipeline_packets_total{source="gm.pcap",stage="skipped"} 2
`
	assert.NoError(t, testutil.GatherAndCompare(m.Registry(), strings.NewReader(expected), "ptpwire_pipeline_packets_total"))

	// stats are read on every gather
	stats.Received = 11
	assert.NoError(t, testutil.GatherAndCompare(m.Registry(),
		strings.NewReader(strings.Replace(expected, `stage="received"} 10`, `stage="received"} 11`, 1)),
		"ptpwire_pipeline_packets_total"))

	// the same source twice collides
	assert.Error(t, m.RegisterPipeline("gm.pcap", func() pipeline.Stats { return stats }))
}

func TestMessageCounters(t *testing.T) {
	m := New()
	m.MessagesTotal.WithLabelValues("gm.pcap", "SYNC", "0").Add(3)
	m.MessageBytes.WithLabelValues("gm.pcap", "SYNC").Observe(44)

	assert.Equal(t, 3.0, testutil.ToFloat64(m.MessagesTotal.WithLabelValues("gm.pcap", "SYNC", "0")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.MessageBytes))
}

func TestWriteTextfile(t *testing.T) {
	m := New()
	m.MessagesTotal.WithLabelValues("gm.pcap", "ANNOUNCE", "24").Inc()

	path := filepath.Join(t.TempDir(), "ptpwire.prom")
	require.NoError(t, m.WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `ptpwire_messages_total{domain="24",message_type="ANNOUNCE",source="gm.pcap"} 1`)
}

func TestServerHandler(t *testing.T) {
	m := New()
	m.TwoStepMatchedTotal.WithLabelValues("gm.pcap", "FOLLOW_UP").Inc()

	srv := httptest.NewServer(NewServer("", "", m).Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), `ptpwire_two_step_matched_total{message_type="FOLLOW_UP",source="gm.pcap"} 1`)
}

func TestServerStartStop(t *testing.T) {
	s := NewServer("127.0.0.1:0", "/m", New())
	require.NoError(t, s.Start(context.Background()))

	resp, err := http.Get("http://" + s.Addr() + "/m")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	assert.NoError(t, s.Stop(context.Background()))
	assert.NoError(t, NewServer("", "", New()).Stop(context.Background()))
}
