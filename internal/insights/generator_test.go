// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package insights

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tejzpr/thread-mcp/internal/ai"
	"github.com/tejzpr/thread-mcp/internal/content"
	"github.com/tejzpr/thread-mcp/internal/metrics"
)

const aiResponse = `{"insights":[
	{"type":"summary","title":"Weekly recap","description":"Ops had a busy week","confidence":0.8,
	 "priority":"medium","thread_ids":["t1"],"keywords":["recap"],"actions":["Read"]},
	{"type":"suggestion","title":"Ghost","description":"points nowhere","confidence":0.9,
	 "priority":"high","thread_ids":["t404"]}
]}`

func sampleSnapshot() *content.Snapshot {
	th := thread("t1", "ops", ago(days(5)))
	return snap([]content.Thread{th}, []content.Message{msg("m1", "t1", "hello there", ago(days(5)))})
}

func newTestGenerator(c ai.Completer) *Generator {
	return NewGenerator(GeneratorConfig{
		Options:   DefaultOptions(),
		Completer: c,
		AITimeout: 200 * time.Millisecond,
		Metrics:   metrics.New(),
	})
}

func TestGenerate_AIResult(t *testing.T) {
	mock := ai.NewMockClient(aiResponse)
	res := newTestGenerator(mock).Generate(context.Background(), sampleSnapshot())

	assert.Equal(t, SourceAI, res.Source)
	assert.Equal(t, FallbackNone, res.Fallback)
	require.Len(t, res.Insights, 1)
	assert.Equal(t, KindSummary, res.Insights[0].Kind)
	assert.NotEmpty(t, res.Insights[0].ID)
	assert.Equal(t, testNow, res.Insights[0].CreatedAt)
	assert.Equal(t, 1, mock.Calls())

	req := mock.LastRequest()
	assert.Contains(t, req.Prompt, "id=t1")
	assert.Equal(t, "insights", req.Schema.Name)
}

func TestGenerate_Fallbacks(t *testing.T) {
	tests := []struct {
		name   string
		client ai.Completer
		want   FallbackReason
	}{
		{"nil completer", nil, FallbackUnavailable},
		{"unavailable", ai.Unavailable{}, FallbackUnavailable},
		{"error", &ai.MockClient{Err: errors.New("boom")}, FallbackError},
		{"breaker open", &ai.MockClient{Err: ai.ErrBreakerOpen}, FallbackBreakerOpen},
		{"bad enum", ai.NewMockClient(`{"insights":[{"type":"bogus","title":"x","description":"y","confidence":0.5,"priority":"low"}]}`), FallbackMalformed},
		{"bad confidence", ai.NewMockClient(`{"insights":[{"type":"summary","title":"x","description":"y","confidence":7,"priority":"low"}]}`), FallbackMalformed},
		{"not json", ai.NewMockClient(`nope`), FallbackMalformed},
		{"timeout", &ai.MockClient{Block: make(chan struct{})}, FallbackError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := newTestGenerator(tt.client)
			s := sampleSnapshot()

			res := g.Generate(context.Background(), s)
			assert.Equal(t, SourceHeuristic, res.Source)
			assert.Equal(t, tt.want, res.Fallback)

			expected := g.Heuristic(s)
			require.Len(t, res.Insights, len(expected))
			for i := range expected {
				assert.Equal(t, expected[i].Kind, res.Insights[i].Kind)
				assert.Equal(t, expected[i].ThreadIDs, res.Insights[i].ThreadIDs)
			}
		})
	}
}

func TestGenerate_UnavailableSkipsCall(t *testing.T) {
	g := newTestGenerator(ai.Unavailable{})
	res := g.Generate(context.Background(), sampleSnapshot())
	require.Len(t, res.Insights, 1)
	assert.Equal(t, KindForgottenThread, res.Insights[0].Kind)
}

func TestGenerate_EmptySnapshot(t *testing.T) {
	mock := ai.NewMockClient(aiResponse)
	res := newTestGenerator(mock).Generate(context.Background(), snap(nil, nil))

	assert.Empty(t, res.Insights)
	assert.NotNil(t, res.Insights)
	assert.Equal(t, 0, mock.Calls())
}

func TestGenerate_AIEmptyListIsValid(t *testing.T) {
	res := newTestGenerator(ai.NewMockClient(`{"insights":[]}`)).Generate(context.Background(), sampleSnapshot())
	assert.Equal(t, SourceAI, res.Source)
	assert.Empty(t, res.Insights)
}

func TestInsightSchema(t *testing.T) {
	js := InsightSchema().JSONSchema()
	item := js.Properties["insights"].Items
	require.NotNil(t, item)

	assert.Len(t, item.Properties["type"].Enum, len(ValidKinds()))
	conf := item.Properties["confidence"]
	require.NotNil(t, conf.Maximum)
	assert.Equal(t, 1.0, *conf.Maximum)
}
